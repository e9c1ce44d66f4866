package model

import (
	"encoding/json"
	"fmt"
)

// VariantShape says which of options, answer and total_point a variant carries.
type VariantShape struct {
	Options    bool
	Answer     bool
	TotalPoint bool
}

var variantShapes = map[QuestionType]VariantShape{
	MultipleChoice:               {Options: true, Answer: true},
	TrueFalse:                    {Options: true, Answer: true},
	MultipleChoiceMultipleAnswer: {Options: true, Answer: true, TotalPoint: true},
	MultipleChoiceCategorized:    {Options: true, TotalPoint: true},
	Essay:                        {Answer: true, TotalPoint: true},
	Matching:                     {},
}

func ShapeOf(t QuestionType) (VariantShape, bool) {
	s, ok := variantShapes[t]
	return s, ok
}

// DefaultTotalPoint seeds total_point for a new question.
const DefaultTotalPoint float64 = 5

// MinChoiceOptions is the smallest option list a multiple choice question may submit.
const MinChoiceOptions = 2

var (
	defaultMultipleChoice = []ChoiceOption{
		{Option: "a"}, {Option: "b"}, {Option: "c"}, {Option: "d"}, {Option: "e"},
	}
	defaultTrueFalse = []ChoiceOption{
		{Option: "a", Text: "True", Point: 1},
		{Option: "b", Text: "False", Point: 0},
	}
	defaultMultipleAnswer = []ChoiceOption{
		{Option: "a"}, {Option: "b"}, {Option: "c"},
	}
	defaultCategorized = []CategorizedOption{
		{Point: 1},
	}
)

// DefaultChoiceOptions returns a fresh copy of the seed for a lettered variant.
// Other variants get nil.
func DefaultChoiceOptions(t QuestionType) []ChoiceOption {
	switch t {
	case MultipleChoice:
		return cloneChoices(defaultMultipleChoice)
	case TrueFalse:
		return cloneChoices(defaultTrueFalse)
	case MultipleChoiceMultipleAnswer:
		return cloneChoices(defaultMultipleAnswer)
	}
	return nil
}

func DefaultCategorizedOptions() []CategorizedOption {
	return CloneCategorized(defaultCategorized)
}

// NewCategorizedOption is the item appended by "add item".
func NewCategorizedOption() CategorizedOption {
	return CategorizedOption{Point: 1}
}

// NextOptionLetter is the letter for an option appended at position n
// (0 -> "a"). Letters follow position, so a list that had an item removed
// can produce a letter that is already in use.
func NextOptionLetter(n int) string {
	return string(rune('a' + n))
}

func cloneChoices(list []ChoiceOption) []ChoiceOption {
	out := make([]ChoiceOption, len(list))
	copy(out, list)
	return out
}

func CloneChoices(list []ChoiceOption) []ChoiceOption {
	if list == nil {
		return nil
	}
	return cloneChoices(list)
}

func CloneCategorized(list []CategorizedOption) []CategorizedOption {
	if list == nil {
		return nil
	}
	out := make([]CategorizedOption, len(list))
	copy(out, list)
	return out
}

// DecodeChoiceOptions maps stored options onto a lettered variant. Legacy or
// corrupt data (not an array, empty, items without a letter, a true/false
// list that is not exactly two long) falls back to the variant's seed.
func DecodeChoiceOptions(t QuestionType, raw json.RawMessage) []ChoiceOption {
	items, ok := decodeItems(raw)
	if !ok {
		return DefaultChoiceOptions(t)
	}
	if t == TrueFalse && len(items) != 2 {
		return DefaultChoiceOptions(t)
	}

	out := make([]ChoiceOption, 0, len(items))
	for _, item := range items {
		letter, has := item["option"]
		if !has {
			return DefaultChoiceOptions(t)
		}
		var s string
		if err := json.Unmarshal(letter, &s); err != nil || s == "" {
			return DefaultChoiceOptions(t)
		}
		var opt ChoiceOption
		if err := remarshal(item, &opt); err != nil {
			return DefaultChoiceOptions(t)
		}
		out = append(out, opt)
	}
	return out
}

// DecodeCategorizedOptions is DecodeChoiceOptions for categorized statements;
// an item must carry at least one of the accurate flags.
func DecodeCategorizedOptions(raw json.RawMessage) []CategorizedOption {
	items, ok := decodeItems(raw)
	if !ok {
		return DefaultCategorizedOptions()
	}

	out := make([]CategorizedOption, 0, len(items))
	for _, item := range items {
		_, hasAccurate := item["accurate"]
		_, hasNotAccurate := item["not_accurate"]
		if !hasAccurate && !hasNotAccurate {
			return DefaultCategorizedOptions()
		}
		var opt CategorizedOption
		if err := remarshal(item, &opt); err != nil {
			return DefaultCategorizedOptions()
		}
		if opt.Accurate && opt.NotAccurate {
			opt.NotAccurate = false
		}
		out = append(out, opt)
	}
	return out
}

func decodeItems(raw json.RawMessage) ([]map[string]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return nil, false
	}
	return items, true
}

func remarshal(item map[string]json.RawMessage, dst any) error {
	b, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// PayloadBase holds the fields every variant submits.
type PayloadBase struct {
	QuestionCategoryID uint         `json:"question_category_id"`
	Question           string       `json:"question"`
	Type               QuestionType `json:"type"`
	Explanation        string       `json:"explanation,omitempty"`
}

// QuestionPayload is the create/update body for one variant.
type QuestionPayload interface {
	PayloadType() QuestionType
}

type MultipleChoicePayload struct {
	PayloadBase
	Options []ChoiceOption `json:"options"`
	Answer  string         `json:"answer"`
}

type TrueFalsePayload struct {
	PayloadBase
	Options []ChoiceOption `json:"options"`
	Answer  string         `json:"answer"`
}

type MultipleAnswerPayload struct {
	PayloadBase
	Options    []ChoiceOption `json:"options"`
	Answer     string         `json:"answer"`
	TotalPoint float64        `json:"total_point"`
}

type CategorizedPayload struct {
	PayloadBase
	Options    []CategorizedOption `json:"options"`
	TotalPoint float64             `json:"total_point"`
}

type EssayPayload struct {
	PayloadBase
	Answer     string  `json:"answer"`
	TotalPoint float64 `json:"total_point"`
}

// MatchingPayload only carries the base fields; the matching variant has no
// agreed option or answer format yet.
type MatchingPayload struct {
	PayloadBase
}

func (p MultipleChoicePayload) PayloadType() QuestionType { return MultipleChoice }
func (p TrueFalsePayload) PayloadType() QuestionType      { return TrueFalse }
func (p MultipleAnswerPayload) PayloadType() QuestionType { return MultipleChoiceMultipleAnswer }
func (p CategorizedPayload) PayloadType() QuestionType    { return MultipleChoiceCategorized }
func (p EssayPayload) PayloadType() QuestionType          { return Essay }
func (p MatchingPayload) PayloadType() QuestionType       { return Matching }

// PayloadVisitor has one method per variant. Adding a variant adds a method
// here, which breaks every builder until it handles the new type.
type PayloadVisitor interface {
	MultipleChoice() QuestionPayload
	TrueFalse() QuestionPayload
	MultipleAnswer() QuestionPayload
	Categorized() QuestionPayload
	Essay() QuestionPayload
	Matching() QuestionPayload
}

// Accept dispatches t to the matching visitor method.
func (t QuestionType) Accept(v PayloadVisitor) (QuestionPayload, error) {
	switch t {
	case MultipleChoice:
		return v.MultipleChoice(), nil
	case TrueFalse:
		return v.TrueFalse(), nil
	case MultipleChoiceMultipleAnswer:
		return v.MultipleAnswer(), nil
	case MultipleChoiceCategorized:
		return v.Categorized(), nil
	case Essay:
		return v.Essay(), nil
	case Matching:
		return v.Matching(), nil
	}
	return nil, fmt.Errorf("unknown question type %q", t)
}
