package util

import "errors"

var (
	ErrCategoryRequired  = errors.New("question category is required")
	ErrQuestionRequired  = errors.New("question text is required")
	ErrOptionCount       = errors.New("invalid number of options for question type")
	ErrAnswerRequired    = errors.New("answer is required")
	ErrUnknownType       = errors.New("unknown question type")
	ErrOptionNotAllowed  = errors.New("question type does not support adding options")
	ErrOptionIndex       = errors.New("option index out of range")
	ErrUnknownCommand    = errors.New("unknown editor command")
	ErrUploadURLNotFound = errors.New("upload response does not contain a file url")
	ErrFileRequired      = errors.New("file is required")
	ErrFileType          = errors.New("invalid file type")
	ErrNotConfirmed      = errors.New("action not confirmed")
	ErrSessionNotFound   = errors.New("session not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidID         = errors.New("invalid id")
	ErrQuestionsRequired = errors.New("at least one question must be selected")
	ErrInvalidTest       = errors.New("invalid test data")
	ErrExportEmpty       = errors.New("export data not found")
	ErrAlreadySubmitting = errors.New("question is already being submitted")
)

// IsValidation reports errors raised before any call to the exam API.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrCategoryRequired, ErrQuestionRequired, ErrOptionCount, ErrAnswerRequired,
		ErrUnknownType, ErrOptionNotAllowed, ErrOptionIndex, ErrUnknownCommand,
		ErrFileRequired, ErrFileType, ErrInvalidID, ErrQuestionsRequired, ErrInvalidTest,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
