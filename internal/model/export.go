package model

// TestExport is the nested payload of the test question export endpoint.
type TestExport struct {
	Test               ExportTestHeader `json:"test"`
	QuestionCategories []ExportSection  `json:"question_categories"`
}

type ExportTestHeader struct {
	Title    string  `json:"title"`
	SubTitle *string `json:"sub_title"`
	SchoolID uint    `json:"school_id"`
}

// ExportSection is one TestQuestionCategory with its selected questions.
type ExportSection struct {
	ID               uint                  `json:"id"`
	QuestionCategory ExportSectionCategory `json:"question_category"`
	Questions        []TestQuestionWrapper `json:"questions"`
}

type ExportSectionCategory struct {
	Name string `json:"name"`
}

type TestQuestionWrapper struct {
	ID       uint           `json:"id"`
	Question ExportQuestion `json:"question"`
}

type ExportQuestion struct {
	ID       uint           `json:"id"`
	Question string         `json:"question"`
	Type     QuestionType   `json:"type"`
	Answer   string         `json:"answer"`
	Options  []ExportOption `json:"options"`
}

type ExportOption struct {
	Option string  `json:"option"`
	Text   string  `json:"text"`
	Point  float64 `json:"point"`
}

// QuestionCount is the number of questions across all sections.
func (e *TestExport) QuestionCount() int {
	n := 0
	for _, s := range e.QuestionCategories {
		n += len(s.Questions)
	}
	return n
}
