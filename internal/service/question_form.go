package service

import (
	"cbt_cms/internal/model"
	"cbt_cms/internal/util"
	"cbt_cms/pkg/pdfexport"
	"context"
	"fmt"
	"strings"
)

// QuestionGateway persists questions on the exam API.
type QuestionGateway interface {
	CreateQuestion(ctx context.Context, payload model.QuestionPayload) (*model.Question, error)
	UpdateQuestion(ctx context.Context, id uint, payload model.QuestionPayload) (*model.Question, error)
}

// QuestionForm is the editable state of one question.
type QuestionForm struct {
	d model.QuestionDraft
}

func NewQuestionForm() *QuestionForm {
	f := &QuestionForm{}
	f.reset()
	return f
}

// RestoreQuestionForm resumes a form from a stored draft.
func RestoreQuestionForm(d model.QuestionDraft) *QuestionForm {
	f := &QuestionForm{d: copyDraft(d)}
	if f.d.ChoiceOptions == nil {
		f.d.ChoiceOptions = map[model.QuestionType][]model.ChoiceOption{}
	}
	if f.d.Status == "" {
		f.d.Status = model.FormIdle
	}
	return f
}

func (f *QuestionForm) reset() {
	f.d = model.QuestionDraft{
		Status:     model.FormIdle,
		Type:       model.MultipleChoice,
		TotalPoint: model.DefaultTotalPoint,
		ChoiceOptions: map[model.QuestionType][]model.ChoiceOption{
			model.MultipleChoice:               model.DefaultChoiceOptions(model.MultipleChoice),
			model.TrueFalse:                    model.DefaultChoiceOptions(model.TrueFalse),
			model.MultipleChoiceMultipleAnswer: model.DefaultChoiceOptions(model.MultipleChoiceMultipleAnswer),
		},
		CategorizedOptions: model.DefaultCategorizedOptions(),
	}
}

// Draft returns a copy of the form state.
func (f *QuestionForm) Draft() model.QuestionDraft {
	return copyDraft(f.d)
}

func (f *QuestionForm) Status() model.FormStatus {
	return f.d.Status
}

func (f *QuestionForm) Type() model.QuestionType {
	return f.d.Type
}

// Hydrate loads q into the form once per record id. Calling it again with the
// same record keeps in-progress edits; a different record starts over.
func (f *QuestionForm) Hydrate(q *model.Question, defaultCategoryID *uint) bool {
	if q == nil {
		return false
	}
	if f.d.HydratedID != nil && *f.d.HydratedID == q.ID {
		return false
	}

	f.reset()
	f.d.RecordID = util.UintPtr(q.ID)
	f.d.HydratedID = util.UintPtr(q.ID)
	f.d.Status = model.FormEditing

	switch {
	case q.QuestionCategoryID != nil:
		f.d.QuestionCategoryID = util.UintPtr(*q.QuestionCategoryID)
	case defaultCategoryID != nil:
		f.d.QuestionCategoryID = util.UintPtr(*defaultCategoryID)
	}
	f.d.Question = q.Question
	f.d.Explanation = q.Explanation
	f.d.Answer = q.Answer
	if q.TotalPoint != nil {
		f.d.TotalPoint = *q.TotalPoint
	}

	if t, err := model.ParseQuestionType(string(q.Type)); err == nil {
		f.d.Type = t
	}
	switch f.d.Type {
	case model.MultipleChoice, model.TrueFalse, model.MultipleChoiceMultipleAnswer:
		f.d.ChoiceOptions[f.d.Type] = model.DecodeChoiceOptions(f.d.Type, q.Options)
	case model.MultipleChoiceCategorized:
		f.d.CategorizedOptions = model.DecodeCategorizedOptions(q.Options)
	}
	return true
}

// touch moves the form into editing on any change.
func (f *QuestionForm) touch() {
	f.d.Status = model.FormEditing
	f.d.LastError = ""
}

// SetType switches the variant. Option lists of other variants are kept.
func (f *QuestionForm) SetType(t model.QuestionType) error {
	if _, err := model.ParseQuestionType(string(t)); err != nil {
		return fmt.Errorf("%w: %q", util.ErrUnknownType, t)
	}
	f.d.Type = t
	if isLettered(t) && f.d.ChoiceOptions[t] == nil {
		f.d.ChoiceOptions[t] = model.DefaultChoiceOptions(t)
	}
	if t == model.MultipleChoiceCategorized && f.d.CategorizedOptions == nil {
		f.d.CategorizedOptions = model.DefaultCategorizedOptions()
	}
	f.touch()
	return nil
}

func (f *QuestionForm) SetCategory(id *uint) {
	if id != nil && *id == 0 {
		id = nil
	}
	f.d.QuestionCategoryID = id
	f.touch()
}

func (f *QuestionForm) SetQuestion(html string) {
	f.d.Question = html
	f.touch()
}

func (f *QuestionForm) SetExplanation(html string) {
	f.d.Explanation = html
	f.touch()
}

func (f *QuestionForm) SetAnswer(answer string) {
	f.d.Answer = answer
	f.touch()
}

func (f *QuestionForm) SetTotalPoint(p float64) {
	f.d.TotalPoint = p
	f.touch()
}

// Options returns the lettered options of the current variant.
func (f *QuestionForm) Options() []model.ChoiceOption {
	return model.CloneChoices(f.d.ChoiceOptions[f.d.Type])
}

func (f *QuestionForm) CategorizedOptions() []model.CategorizedOption {
	return model.CloneCategorized(f.d.CategorizedOptions)
}

// AddOption appends an option to the current variant. The new letter follows
// the list length, so it can repeat a letter left behind by a removal.
func (f *QuestionForm) AddOption() error {
	switch f.d.Type {
	case model.MultipleChoice, model.MultipleChoiceMultipleAnswer:
		list := f.d.ChoiceOptions[f.d.Type]
		f.d.ChoiceOptions[f.d.Type] = append(list, model.ChoiceOption{
			Option: model.NextOptionLetter(len(list)),
		})
	case model.MultipleChoiceCategorized:
		f.d.CategorizedOptions = append(f.d.CategorizedOptions, model.NewCategorizedOption())
	default:
		return fmt.Errorf("%w: %s", util.ErrOptionNotAllowed, f.d.Type)
	}
	f.touch()
	return nil
}

// RemoveOption drops the option at i. Remaining letters are left as they are.
func (f *QuestionForm) RemoveOption(i int) error {
	switch f.d.Type {
	case model.MultipleChoice, model.MultipleChoiceMultipleAnswer:
		list := f.d.ChoiceOptions[f.d.Type]
		if i < 0 || i >= len(list) {
			return util.ErrOptionIndex
		}
		f.d.ChoiceOptions[f.d.Type] = append(list[:i:i], list[i+1:]...)
	case model.MultipleChoiceCategorized:
		list := f.d.CategorizedOptions
		if i < 0 || i >= len(list) {
			return util.ErrOptionIndex
		}
		f.d.CategorizedOptions = append(list[:i:i], list[i+1:]...)
	default:
		return fmt.Errorf("%w: %s", util.ErrOptionNotAllowed, f.d.Type)
	}
	f.touch()
	return nil
}

func (f *QuestionForm) choiceAt(i int) (*model.ChoiceOption, error) {
	list := f.d.ChoiceOptions[f.d.Type]
	if !isLettered(f.d.Type) || i < 0 || i >= len(list) {
		return nil, util.ErrOptionIndex
	}
	return &list[i], nil
}

func (f *QuestionForm) categorizedAt(i int) (*model.CategorizedOption, error) {
	if f.d.Type != model.MultipleChoiceCategorized || i < 0 || i >= len(f.d.CategorizedOptions) {
		return nil, util.ErrOptionIndex
	}
	return &f.d.CategorizedOptions[i], nil
}

func (f *QuestionForm) SetOptionText(i int, text string) error {
	if f.d.Type == model.MultipleChoiceCategorized {
		opt, err := f.categorizedAt(i)
		if err != nil {
			return err
		}
		opt.Text = text
	} else {
		opt, err := f.choiceAt(i)
		if err != nil {
			return err
		}
		opt.Text = text
	}
	f.touch()
	return nil
}

func (f *QuestionForm) SetOptionPoint(i int, point float64) error {
	if f.d.Type == model.MultipleChoiceCategorized {
		opt, err := f.categorizedAt(i)
		if err != nil {
			return err
		}
		opt.Point = point
	} else {
		opt, err := f.choiceAt(i)
		if err != nil {
			return err
		}
		opt.Point = point
	}
	f.touch()
	return nil
}

// SetAccurate toggles the accurate flag of a categorized item; turning it on
// clears not_accurate on the same item.
func (f *QuestionForm) SetAccurate(i int, on bool) error {
	opt, err := f.categorizedAt(i)
	if err != nil {
		return err
	}
	opt.Accurate = on
	if on {
		opt.NotAccurate = false
	}
	f.touch()
	return nil
}

// SetNotAccurate is the mirror of SetAccurate.
func (f *QuestionForm) SetNotAccurate(i int, on bool) error {
	opt, err := f.categorizedAt(i)
	if err != nil {
		return err
	}
	opt.NotAccurate = on
	if on {
		opt.Accurate = false
	}
	f.touch()
	return nil
}

func (f *QuestionForm) SetAccurateLabel(i int, label string) error {
	opt, err := f.categorizedAt(i)
	if err != nil {
		return err
	}
	opt.AccurateLabel = label
	f.touch()
	return nil
}

func (f *QuestionForm) SetNotAccurateLabel(i int, label string) error {
	opt, err := f.categorizedAt(i)
	if err != nil {
		return err
	}
	opt.NotAccurateLabel = label
	f.touch()
	return nil
}

// Apply runs one editor command against the form.
func (f *QuestionForm) Apply(cmd model.EditorCommand) error {
	switch cmd.Op {
	case model.OpSetType:
		return f.SetType(cmd.Type)
	case model.OpSetCategory:
		f.SetCategory(cmd.CategoryID)
	case model.OpSetQuestion:
		f.SetQuestion(cmd.Value)
	case model.OpSetExplanation:
		f.SetExplanation(cmd.Value)
	case model.OpSetAnswer:
		f.SetAnswer(cmd.Value)
	case model.OpSetTotalPoint:
		if cmd.Point == nil {
			return fmt.Errorf("%w: point is required", util.ErrUnknownCommand)
		}
		f.SetTotalPoint(*cmd.Point)
	case model.OpAddOption:
		return f.AddOption()
	case model.OpRemoveOption:
		return f.RemoveOption(cmd.Index)
	case model.OpSetOptionText:
		return f.SetOptionText(cmd.Index, cmd.Value)
	case model.OpSetOptionPoint:
		if cmd.Point == nil {
			return fmt.Errorf("%w: point is required", util.ErrUnknownCommand)
		}
		return f.SetOptionPoint(cmd.Index, *cmd.Point)
	case model.OpSetAccurate:
		return f.SetAccurate(cmd.Index, cmd.Flag != nil && *cmd.Flag)
	case model.OpSetNotAccurate:
		return f.SetNotAccurate(cmd.Index, cmd.Flag != nil && *cmd.Flag)
	case model.OpSetAccurateLabel:
		return f.SetAccurateLabel(cmd.Index, cmd.Value)
	case model.OpSetNotAccurateLabel:
		return f.SetNotAccurateLabel(cmd.Index, cmd.Value)
	default:
		return fmt.Errorf("%w: %q", util.ErrUnknownCommand, cmd.Op)
	}
	return nil
}

// BuildPayload validates the form and assembles the body for its variant. It
// does not change the form.
func (f *QuestionForm) BuildPayload() (model.QuestionPayload, error) {
	d := f.d
	if d.QuestionCategoryID == nil || *d.QuestionCategoryID == 0 {
		return nil, util.ErrCategoryRequired
	}
	if pdfexport.IsBlank(d.Question) {
		return nil, util.ErrQuestionRequired
	}

	switch d.Type {
	case model.MultipleChoice:
		if len(d.ChoiceOptions[d.Type]) < model.MinChoiceOptions {
			return nil, fmt.Errorf("%w: multiple choice needs at least %d", util.ErrOptionCount, model.MinChoiceOptions)
		}
	case model.TrueFalse:
		if len(d.ChoiceOptions[d.Type]) != 2 {
			return nil, fmt.Errorf("%w: true/false needs exactly 2", util.ErrOptionCount)
		}
	}

	if shape, ok := model.ShapeOf(d.Type); ok && shape.Answer && strings.TrimSpace(d.Answer) == "" {
		return nil, util.ErrAnswerRequired
	}

	return d.Type.Accept(payloadBuilder{d: d})
}

// payloadBuilder produces exactly the field set of each variant.
type payloadBuilder struct {
	d model.QuestionDraft
}

func (b payloadBuilder) base() model.PayloadBase {
	return model.PayloadBase{
		QuestionCategoryID: *b.d.QuestionCategoryID,
		Question:           b.d.Question,
		Type:               b.d.Type,
		Explanation:        b.d.Explanation,
	}
}

func (b payloadBuilder) choices() []model.ChoiceOption {
	return model.CloneChoices(b.d.ChoiceOptions[b.d.Type])
}

func (b payloadBuilder) MultipleChoice() model.QuestionPayload {
	return model.MultipleChoicePayload{PayloadBase: b.base(), Options: b.choices(), Answer: b.d.Answer}
}

func (b payloadBuilder) TrueFalse() model.QuestionPayload {
	return model.TrueFalsePayload{PayloadBase: b.base(), Options: b.choices(), Answer: b.d.Answer}
}

func (b payloadBuilder) MultipleAnswer() model.QuestionPayload {
	return model.MultipleAnswerPayload{
		PayloadBase: b.base(),
		Options:     b.choices(),
		Answer:      b.d.Answer,
		TotalPoint:  b.d.TotalPoint,
	}
}

func (b payloadBuilder) Categorized() model.QuestionPayload {
	return model.CategorizedPayload{
		PayloadBase: b.base(),
		Options:     model.CloneCategorized(b.d.CategorizedOptions),
		TotalPoint:  b.d.TotalPoint,
	}
}

func (b payloadBuilder) Essay() model.QuestionPayload {
	return model.EssayPayload{PayloadBase: b.base(), Answer: b.d.Answer, TotalPoint: b.d.TotalPoint}
}

func (b payloadBuilder) Matching() model.QuestionPayload {
	return model.MatchingPayload{PayloadBase: b.base()}
}

// Submit validates, then creates or updates the question. A validation error
// returns before any network call and leaves the form editing; an API error
// moves it to failed with every field kept.
func (f *QuestionForm) Submit(ctx context.Context, gw QuestionGateway, rep Reporter) (*model.Question, error) {
	if f.d.Status == model.FormSubmitting {
		return nil, util.ErrAlreadySubmitting
	}

	payload, err := f.BuildPayload()
	if err != nil {
		f.d.Status = model.FormEditing
		rep.Notify(util.NotifyError, err.Error())
		return nil, err
	}

	f.d.Status = model.FormSubmitting
	var saved *model.Question
	if f.d.RecordID == nil {
		saved, err = gw.CreateQuestion(ctx, payload)
	} else {
		saved, err = gw.UpdateQuestion(ctx, *f.d.RecordID, payload)
	}
	if err != nil {
		f.d.Status = model.FormFailed
		f.d.LastError = err.Error()
		rep.Notify(util.NotifyError, "Gagal menyimpan pertanyaan.")
		return nil, fmt.Errorf("save question: %w", err)
	}

	f.d.Status = model.FormSaved
	f.d.RecordID = util.UintPtr(saved.ID)
	f.d.HydratedID = util.UintPtr(saved.ID)
	rep.Notify(util.NotifySuccess, "Pertanyaan disimpan.")
	return saved, nil
}

func isLettered(t model.QuestionType) bool {
	return t == model.MultipleChoice || t == model.TrueFalse || t == model.MultipleChoiceMultipleAnswer
}

func copyDraft(d model.QuestionDraft) model.QuestionDraft {
	out := d
	if d.RecordID != nil {
		out.RecordID = util.UintPtr(*d.RecordID)
	}
	if d.HydratedID != nil {
		out.HydratedID = util.UintPtr(*d.HydratedID)
	}
	if d.QuestionCategoryID != nil {
		out.QuestionCategoryID = util.UintPtr(*d.QuestionCategoryID)
	}
	out.ChoiceOptions = make(map[model.QuestionType][]model.ChoiceOption, len(d.ChoiceOptions))
	for t, list := range d.ChoiceOptions {
		out.ChoiceOptions[t] = model.CloneChoices(list)
	}
	out.CategorizedOptions = model.CloneCategorized(d.CategorizedOptions)
	return out
}
