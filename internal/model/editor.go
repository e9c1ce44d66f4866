package model

import "time"

// FormStatus is the lifecycle of a question editor:
// idle -> editing -> submitting -> saved | failed, and back to editing on the next edit.
type FormStatus string

const (
	FormIdle       FormStatus = "idle"
	FormEditing    FormStatus = "editing"
	FormSubmitting FormStatus = "submitting"
	FormSaved      FormStatus = "saved"
	FormFailed     FormStatus = "failed"
)

// QuestionDraft is the serializable state of one question editor. Every
// lettered variant keeps its own option list so switching type loses nothing.
type QuestionDraft struct {
	Status             FormStatus                      `json:"status"`
	RecordID           *uint                           `json:"record_id,omitempty"`
	HydratedID         *uint                           `json:"hydrated_id,omitempty"`
	Type               QuestionType                    `json:"type"`
	QuestionCategoryID *uint                           `json:"question_category_id"`
	Question           string                          `json:"question"`
	Explanation        string                          `json:"explanation"`
	Answer             string                          `json:"answer"`
	TotalPoint         float64                         `json:"total_point"`
	ChoiceOptions      map[QuestionType][]ChoiceOption `json:"choice_options"`
	CategorizedOptions []CategorizedOption             `json:"categorized_options"`
	LastError          string                          `json:"last_error,omitempty"`
}

// EditorSession is a draft owned by one viewer, kept in Redis between requests.
type EditorSession struct {
	ID        string        `json:"id"`
	OwnerID   uint          `json:"owner_id"`
	Draft     QuestionDraft `json:"draft"`
	Saved     *Question     `json:"saved,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type EditorOp string

const (
	OpSetType             EditorOp = "set_type"
	OpSetCategory         EditorOp = "set_category"
	OpSetQuestion         EditorOp = "set_question"
	OpSetExplanation      EditorOp = "set_explanation"
	OpSetAnswer           EditorOp = "set_answer"
	OpSetTotalPoint       EditorOp = "set_total_point"
	OpAddOption           EditorOp = "add_option"
	OpRemoveOption        EditorOp = "remove_option"
	OpSetOptionText       EditorOp = "set_option_text"
	OpSetOptionPoint      EditorOp = "set_option_point"
	OpSetAccurate         EditorOp = "set_accurate"
	OpSetNotAccurate      EditorOp = "set_not_accurate"
	OpSetAccurateLabel    EditorOp = "set_accurate_label"
	OpSetNotAccurateLabel EditorOp = "set_not_accurate_label"
)

// EditorCommand is one edit sent to PATCH /questions/editor/:sid. Option
// commands address the option list of the current type by Index.
type EditorCommand struct {
	Op         EditorOp     `json:"op" binding:"required"`
	Type       QuestionType `json:"type,omitempty"`
	CategoryID *uint        `json:"question_category_id,omitempty"`
	Value      string       `json:"value,omitempty"`
	Index      int          `json:"index"`
	Point      *float64     `json:"point,omitempty"`
	Flag       *bool        `json:"flag,omitempty"`
}
