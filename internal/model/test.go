package model

import (
	"encoding/json"
	"strconv"
)

type TimerType string

const (
	TimerPerTest     TimerType = "per_test"
	TimerPerCategory TimerType = "per_category"
)

// FlexBool accepts true/false, 1/0 and "1"/"0" from the exam API.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true", "1", `"1"`, `"true"`:
		*b = true
	case "false", "0", `"0"`, `"false"`, "null", `""`:
		*b = false
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*b = n != 0
	}
	return nil
}

func (b FlexBool) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatBool(bool(b))), nil
}

// Test is a tryout row as listed by the exam API.
type Test struct {
	ID                    uint      `json:"id"`
	SchoolID              uint      `json:"school_id"`
	SchoolName            string    `json:"school_name,omitempty"`
	Title                 string    `json:"title"`
	SubTitle              *string   `json:"sub_title"`
	Slug                  string    `json:"slug,omitempty"`
	Description           *string   `json:"description"`
	StartDate             string    `json:"start_date,omitempty"`
	EndDate               string    `json:"end_date,omitempty"`
	TotalTime             int       `json:"total_time"`
	TimerType             TimerType `json:"timer_type"`
	ScoreType             string    `json:"score_type"`
	PassGrade             float64   `json:"pass_grade"`
	AssessmentType        string    `json:"assessment_type"`
	TotalQuestions        int       `json:"total_questions"`
	ShuffleQuestions      FlexBool  `json:"shuffle_questions"`
	Code                  *string   `json:"code"`
	MaxAttempts           *string   `json:"max_attempts"`
	UserID                *uint     `json:"user_id"`
	PengawasName          string    `json:"pengawas_name,omitempty"`
	Status                FlexBool  `json:"status"`
	IsGraded              FlexBool  `json:"is_graded"`
	IsExplanationReleased FlexBool  `json:"is_explanation_released"`
}

// TestForm is what an admin submits to create or edit a tryout.
type TestForm struct {
	SchoolID              uint      `json:"school_id" binding:"required"`
	Title                 string    `json:"title" binding:"required"`
	SubTitle              string    `json:"sub_title"`
	Slug                  string    `json:"slug"`
	Description           string    `json:"description"`
	StartDate             string    `json:"start_date"`
	EndDate               string    `json:"end_date"`
	TotalTime             int       `json:"total_time"`
	TimerType             TimerType `json:"timer_type" binding:"required"`
	ScoreType             string    `json:"score_type"`
	PassGrade             float64   `json:"pass_grade"`
	AssessmentType        string    `json:"assessment_type"`
	TotalQuestions        int       `json:"total_questions"`
	ShuffleQuestions      bool      `json:"shuffle_questions"`
	Code                  string    `json:"code"`
	MaxAttempts           string    `json:"max_attempts"`
	IsGraded              bool      `json:"is_graded"`
	IsExplanationReleased bool      `json:"is_explanation_released"`
	UserID                uint      `json:"user_id"`
	Status                bool      `json:"status"`
}

// DefaultTestForm mirrors the values a new tryout starts with.
func DefaultTestForm() TestForm {
	return TestForm{
		TotalTime:      3600,
		PassGrade:      70,
		AssessmentType: "irt",
		TimerType:      TimerPerTest,
		ScoreType:      "default",
		Status:         true,
	}
}

// TestPayload is the create/update body sent to the exam API.
type TestPayload struct {
	SchoolID              uint      `json:"school_id" validate:"required"`
	Title                 string    `json:"title" validate:"required"`
	SubTitle              *string   `json:"sub_title"`
	ShuffleQuestions      int       `json:"shuffle_questions" validate:"oneof=0 1"`
	TimerType             TimerType `json:"timer_type" validate:"required,oneof=per_test per_category"`
	ScoreType             string    `json:"score_type"`
	TotalTime             *int      `json:"total_time,omitempty" validate:"omitempty,gte=0"`
	StartDate             string    `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate               string    `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Slug                  string    `json:"slug"`
	Description           string    `json:"description"`
	TotalQuestions        int       `json:"total_questions" validate:"gte=0"`
	PassGrade             float64   `json:"pass_grade" validate:"gte=0"`
	AssessmentType        string    `json:"assessment_type"`
	Code                  string    `json:"code"`
	MaxAttempts           string    `json:"max_attempts"`
	IsGraded              bool      `json:"is_graded"`
	IsExplanationReleased bool      `json:"is_explanation_released"`
	UserID                uint      `json:"user_id"`
	Status                int       `json:"status" validate:"oneof=0 1"`
}

// TestListQuery mirrors the test list endpoint's query string.
type TestListQuery struct {
	Page             int
	Paginate         int
	Search           string
	SearchBySpecific string
	OrderBy          string
	OrderDirection   string
	SchoolID         uint
}

// AttachQuestionsRequest adds bank questions to a test section.
type AttachQuestionsRequest struct {
	QuestionIDs []uint `json:"question_ids" binding:"required,min=1"`
}
