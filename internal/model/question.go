package model

import (
	"encoding/json"
	"fmt"
)

// QuestionType selects the answer variant of a bank question.
type QuestionType string

const (
	MultipleChoice               QuestionType = "multiple_choice"
	TrueFalse                    QuestionType = "true_false"
	MultipleChoiceMultipleAnswer QuestionType = "multiple_choice_multiple_answer"
	MultipleChoiceCategorized    QuestionType = "multiple_choice_multiple_category"
	Essay                        QuestionType = "essay"
	Matching                     QuestionType = "matching"
)

// QuestionTypes lists every variant in display order.
var QuestionTypes = []QuestionType{
	MultipleChoice,
	TrueFalse,
	MultipleChoiceMultipleAnswer,
	MultipleChoiceCategorized,
	Essay,
	Matching,
}

func ParseQuestionType(s string) (QuestionType, error) {
	for _, t := range QuestionTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

// ChoiceOption is a lettered option of the multiple choice, true/false and
// multiple answer variants. Text is rich text (HTML).
type ChoiceOption struct {
	Option string  `json:"option"`
	Text   string  `json:"text"`
	Point  float64 `json:"point"`
}

// CategorizedOption is one statement of a multiple_choice_multiple_category
// question. Accurate and NotAccurate are never both true.
type CategorizedOption struct {
	Text             string  `json:"text"`
	Point            float64 `json:"point"`
	Accurate         bool    `json:"accurate"`
	NotAccurate      bool    `json:"not_accurate"`
	AccurateLabel    string  `json:"accurate_label"`
	NotAccurateLabel string  `json:"not_accurate_label"`
}

// Question is a bank question as returned by the exam API.
type Question struct {
	ID                 uint            `json:"id"`
	QuestionCategoryID *uint           `json:"question_category_id"`
	CategoryName       string          `json:"category_name,omitempty"`
	Type               QuestionType    `json:"type"`
	Question           string          `json:"question"`
	Explanation        string          `json:"explanation,omitempty"`
	Answer             string          `json:"answer,omitempty"`
	TotalPoint         *float64        `json:"total_point,omitempty"`
	Options            json.RawMessage `json:"options,omitempty"`
	CreatedAt          string          `json:"created_at,omitempty"`
	UpdatedAt          string          `json:"updated_at,omitempty"`
}

// CategoryQuestion groups bank questions.
type CategoryQuestion struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// QuestionListQuery mirrors the list endpoint's query string.
type QuestionListQuery struct {
	Page               int
	Paginate           int
	Search             string
	SearchBySpecific   string
	QuestionCategoryID uint
	OrderBy            string
	Order              string
}

// Page is the paginated envelope shared by every list endpoint.
type Page[T any] struct {
	Data        []T `json:"data"`
	LastPage    int `json:"last_page"`
	CurrentPage int `json:"current_page"`
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
}

// TransferResult is the answer of the asynchronous import/export endpoints.
type TransferResult struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// DataString returns Data when it is a JSON string, otherwise "".
func (r *TransferResult) DataString() string {
	if r == nil || len(r.Data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Data, &s); err != nil {
		return ""
	}
	return s
}
