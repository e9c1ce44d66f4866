package service

import (
	"cbt_cms/internal/model"
	"cbt_cms/internal/util"
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	created  []model.QuestionPayload
	updated  map[uint]model.QuestionPayload
	nextID   uint
	err      error
	calls    int
	response *model.Question
}

func (g *fakeGateway) CreateQuestion(ctx context.Context, p model.QuestionPayload) (*model.Question, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	g.created = append(g.created, p)
	g.nextID++
	if g.response != nil {
		return g.response, nil
	}
	return &model.Question{ID: g.nextID, Type: p.PayloadType()}, nil
}

func (g *fakeGateway) UpdateQuestion(ctx context.Context, id uint, p model.QuestionPayload) (*model.Question, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	if g.updated == nil {
		g.updated = map[uint]model.QuestionPayload{}
	}
	g.updated[id] = p
	return &model.Question{ID: id, Type: p.PayloadType()}, nil
}

func payloadKeys(t *testing.T, p model.QuestionPayload) []string {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func filledForm(t *testing.T, qt model.QuestionType) *QuestionForm {
	t.Helper()
	f := NewQuestionForm()
	require.NoError(t, f.SetType(qt))
	f.SetCategory(util.UintPtr(3))
	f.SetQuestion("<p>What?</p>")
	f.SetAnswer("a")
	return f
}

func TestBuildPayloadFieldSets(t *testing.T) {
	base := []string{"question", "question_category_id", "type"}
	cases := []struct {
		qt   model.QuestionType
		want []string
	}{
		{model.MultipleChoice, append([]string{"answer", "options"}, base...)},
		{model.TrueFalse, append([]string{"answer", "options"}, base...)},
		{model.MultipleChoiceMultipleAnswer, append([]string{"answer", "options", "total_point"}, base...)},
		{model.MultipleChoiceCategorized, append([]string{"options", "total_point"}, base...)},
		{model.Essay, append([]string{"answer", "total_point"}, base...)},
		{model.Matching, base},
	}

	for _, tc := range cases {
		t.Run(string(tc.qt), func(t *testing.T) {
			p, err := filledForm(t, tc.qt).BuildPayload()
			require.NoError(t, err)
			assert.Equal(t, tc.qt, p.PayloadType())

			want := append([]string(nil), tc.want...)
			sort.Strings(want)
			assert.Equal(t, want, payloadKeys(t, p))
		})
	}

	t.Run("explanation included when set", func(t *testing.T) {
		f := filledForm(t, model.Essay)
		f.SetExplanation("<p>because</p>")
		p, err := f.BuildPayload()
		require.NoError(t, err)
		assert.Contains(t, payloadKeys(t, p), "explanation")
	})
}

func TestBuildPayloadValidation(t *testing.T) {
	t.Run("missing category", func(t *testing.T) {
		f := filledForm(t, model.Essay)
		f.SetCategory(nil)
		_, err := f.BuildPayload()
		assert.ErrorIs(t, err, util.ErrCategoryRequired)

		f.SetCategory(util.UintPtr(0))
		_, err = f.BuildPayload()
		assert.ErrorIs(t, err, util.ErrCategoryRequired)
	})

	t.Run("category checked before anything else", func(t *testing.T) {
		f := NewQuestionForm()
		_, err := f.BuildPayload()
		assert.ErrorIs(t, err, util.ErrCategoryRequired)
	})

	t.Run("blank question", func(t *testing.T) {
		f := filledForm(t, model.Essay)
		f.SetQuestion("<p><br></p>")
		_, err := f.BuildPayload()
		assert.ErrorIs(t, err, util.ErrQuestionRequired)
	})

	t.Run("multiple choice needs two options", func(t *testing.T) {
		f := filledForm(t, model.MultipleChoice)
		for i := 0; i < 4; i++ {
			require.NoError(t, f.RemoveOption(0))
		}
		_, err := f.BuildPayload()
		assert.ErrorIs(t, err, util.ErrOptionCount)
	})

	t.Run("answer required", func(t *testing.T) {
		for _, qt := range []model.QuestionType{model.MultipleChoice, model.TrueFalse, model.MultipleChoiceMultipleAnswer, model.Essay} {
			f := filledForm(t, qt)
			f.SetAnswer("  ")
			_, err := f.BuildPayload()
			assert.ErrorIs(t, err, util.ErrAnswerRequired, qt)
		}
	})

	t.Run("categorized and matching need no answer", func(t *testing.T) {
		for _, qt := range []model.QuestionType{model.MultipleChoiceCategorized, model.Matching} {
			f := filledForm(t, qt)
			f.SetAnswer("")
			_, err := f.BuildPayload()
			assert.NoError(t, err, qt)
		}
	})

	t.Run("build does not change state", func(t *testing.T) {
		f := filledForm(t, model.MultipleChoice)
		before := f.Draft()
		_, err := f.BuildPayload()
		require.NoError(t, err)
		assert.Equal(t, before, f.Draft())
	})
}

func TestTypeSwitchKeepsOptions(t *testing.T) {
	f := filledForm(t, model.MultipleChoice)
	require.NoError(t, f.SetOptionText(1, "<p>two</p>"))
	require.NoError(t, f.SetOptionPoint(1, 4))
	require.NoError(t, f.AddOption())
	before, err := json.Marshal(f.Options())
	require.NoError(t, err)

	require.NoError(t, f.SetType(model.Essay))
	assert.Empty(t, f.Options())
	require.NoError(t, f.SetType(model.TrueFalse))
	require.NoError(t, f.SetType(model.MultipleChoice))

	after, err := json.Marshal(f.Options())
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestOptionLetters(t *testing.T) {
	t.Run("append to five gives f", func(t *testing.T) {
		f := filledForm(t, model.MultipleChoice)
		require.Len(t, f.Options(), 5)
		require.NoError(t, f.AddOption())
		opts := f.Options()
		require.Len(t, opts, 6)
		assert.Equal(t, model.ChoiceOption{Option: "f"}, opts[5])
	})

	t.Run("remove does not re-letter", func(t *testing.T) {
		f := filledForm(t, model.MultipleChoice)
		require.NoError(t, f.RemoveOption(2))
		var letters []string
		for _, o := range f.Options() {
			letters = append(letters, o.Option)
		}
		assert.Equal(t, []string{"a", "b", "d", "e"}, letters)
	})

	t.Run("append after remove follows position", func(t *testing.T) {
		f := filledForm(t, model.MultipleChoice)
		require.NoError(t, f.RemoveOption(2))
		require.NoError(t, f.AddOption())
		assert.Equal(t, "e", f.Options()[4].Option)
	})

	t.Run("true false and essay reject add", func(t *testing.T) {
		for _, qt := range []model.QuestionType{model.TrueFalse, model.Essay, model.Matching} {
			f := filledForm(t, qt)
			assert.ErrorIs(t, f.AddOption(), util.ErrOptionNotAllowed, qt)
		}
	})

	t.Run("remove out of range", func(t *testing.T) {
		f := filledForm(t, model.MultipleChoice)
		assert.ErrorIs(t, f.RemoveOption(9), util.ErrOptionIndex)
		assert.ErrorIs(t, f.RemoveOption(-1), util.ErrOptionIndex)
	})

	t.Run("new categorized item", func(t *testing.T) {
		f := filledForm(t, model.MultipleChoiceCategorized)
		require.NoError(t, f.AddOption())
		items := f.CategorizedOptions()
		require.Len(t, items, 2)
		assert.Equal(t, model.CategorizedOption{Point: 1}, items[1])
	})
}

func TestAccurateExclusive(t *testing.T) {
	f := filledForm(t, model.MultipleChoiceCategorized)

	require.NoError(t, f.SetNotAccurate(0, true))
	require.NoError(t, f.SetAccurate(0, true))
	item := f.CategorizedOptions()[0]
	assert.True(t, item.Accurate)
	assert.False(t, item.NotAccurate)

	require.NoError(t, f.SetNotAccurate(0, true))
	item = f.CategorizedOptions()[0]
	assert.True(t, item.NotAccurate)
	assert.False(t, item.Accurate)

	require.NoError(t, f.SetNotAccurate(0, false))
	item = f.CategorizedOptions()[0]
	assert.False(t, item.NotAccurate)
	assert.False(t, item.Accurate)

	assert.ErrorIs(t, f.SetAccurate(3, true), util.ErrOptionIndex)
}

func TestHydrate(t *testing.T) {
	cat := uint(5)
	point := 8.0
	q := &model.Question{
		ID:                 10,
		QuestionCategoryID: &cat,
		Type:               model.MultipleChoiceMultipleAnswer,
		Question:           "<p>Pick</p>",
		Answer:             "a,c",
		TotalPoint:         &point,
		Options:            json.RawMessage(`[{"option":"a","text":"x","point":1},{"option":"b","text":"y","point":0}]`),
	}

	t.Run("once per record", func(t *testing.T) {
		f := NewQuestionForm()
		assert.True(t, f.Hydrate(q, nil))
		assert.Equal(t, model.FormEditing, f.Status())
		assert.Len(t, f.Options(), 2)

		f.SetAnswer("b")
		assert.False(t, f.Hydrate(q, nil))
		assert.Equal(t, "b", f.Draft().Answer)

		other := *q
		other.ID = 11
		assert.True(t, f.Hydrate(&other, nil))
		assert.Equal(t, "a,c", f.Draft().Answer)
	})

	t.Run("legacy options fall back to seed", func(t *testing.T) {
		legacy := &model.Question{
			ID: 12, QuestionCategoryID: &cat, Type: model.TrueFalse,
			Options: json.RawMessage(`[{"text":"only one"}]`),
		}
		f := NewQuestionForm()
		f.Hydrate(legacy, nil)
		assert.Equal(t, model.DefaultChoiceOptions(model.TrueFalse), f.Options())
	})

	t.Run("categorized from choice shaped data", func(t *testing.T) {
		mixed := &model.Question{
			ID: 13, QuestionCategoryID: &cat, Type: model.MultipleChoiceCategorized,
			Options: json.RawMessage(`[{"option":"a","text":"x","point":1}]`),
		}
		f := NewQuestionForm()
		f.Hydrate(mixed, nil)
		assert.Equal(t, model.DefaultCategorizedOptions(), f.CategorizedOptions())
	})

	t.Run("default category", func(t *testing.T) {
		noCat := &model.Question{ID: 14, Type: model.Essay, Question: "q", Answer: "x"}
		f := NewQuestionForm()
		f.Hydrate(noCat, util.UintPtr(9))
		require.NotNil(t, f.Draft().QuestionCategoryID)
		assert.Equal(t, uint(9), *f.Draft().QuestionCategoryID)
		assert.Equal(t, model.DefaultTotalPoint, f.Draft().TotalPoint)
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("essay end to end", func(t *testing.T) {
		f := NewQuestionForm()
		require.NoError(t, f.SetType(model.Essay))
		f.SetCategory(util.UintPtr(3))
		f.SetQuestion("<p>6 x 7?</p>")
		f.SetAnswer("42")
		f.SetTotalPoint(10)

		p, err := f.BuildPayload()
		require.NoError(t, err)
		b, err := json.Marshal(p)
		require.NoError(t, err)
		assert.JSONEq(t, `{"question_category_id":3,"question":"<p>6 x 7?</p>","type":"essay","answer":"42","total_point":10}`, string(b))

		gw := &fakeGateway{nextID: 100}
		rep := NewRequestReporter(false)
		saved, err := f.Submit(ctx, gw, rep)
		require.NoError(t, err)
		assert.Equal(t, uint(101), saved.ID)
		assert.Equal(t, model.FormSaved, f.Status())
		require.NotNil(t, f.Draft().RecordID)
		assert.Equal(t, uint(101), *f.Draft().RecordID)
		assert.Equal(t, util.NotifySuccess, rep.Notifications()[0].Kind)

		f.SetAnswer("43")
		assert.Equal(t, model.FormEditing, f.Status())
		_, err = f.Submit(ctx, gw, rep)
		require.NoError(t, err)
		assert.Contains(t, gw.updated, uint(101))
	})

	t.Run("validation failure makes no call", func(t *testing.T) {
		f := filledForm(t, model.Essay)
		f.SetCategory(nil)
		gw := &fakeGateway{}
		rep := NewRequestReporter(false)
		_, err := f.Submit(ctx, gw, rep)
		assert.ErrorIs(t, err, util.ErrCategoryRequired)
		assert.Zero(t, gw.calls)
		assert.Equal(t, model.FormEditing, f.Status())
		assert.Equal(t, util.NotifyError, rep.Notifications()[0].Kind)
	})

	t.Run("api failure keeps state", func(t *testing.T) {
		f := filledForm(t, model.MultipleChoice)
		require.NoError(t, f.SetOptionText(0, "keep me"))
		before := f.Draft()

		gw := &fakeGateway{err: errors.New("boom")}
		_, err := f.Submit(ctx, gw, NewRequestReporter(false))
		require.Error(t, err)
		assert.Equal(t, model.FormFailed, f.Status())

		after := f.Draft()
		assert.Equal(t, "boom", after.LastError)
		after.Status, after.LastError = before.Status, before.LastError
		assert.Equal(t, before, after)
	})
}

func TestApply(t *testing.T) {
	f := NewQuestionForm()
	point := 2.5
	on := true
	cmds := []model.EditorCommand{
		{Op: model.OpSetType, Type: model.MultipleChoiceCategorized},
		{Op: model.OpSetCategory, CategoryID: util.UintPtr(4)},
		{Op: model.OpSetQuestion, Value: "<p>Nilai</p>"},
		{Op: model.OpAddOption},
		{Op: model.OpSetOptionText, Index: 1, Value: "second"},
		{Op: model.OpSetOptionPoint, Index: 1, Point: &point},
		{Op: model.OpSetAccurate, Index: 1, Flag: &on},
		{Op: model.OpSetAccurateLabel, Index: 1, Value: "Benar"},
		{Op: model.OpSetNotAccurateLabel, Index: 1, Value: "Salah"},
		{Op: model.OpSetTotalPoint, Point: &point},
	}
	for _, cmd := range cmds {
		require.NoError(t, f.Apply(cmd), cmd.Op)
	}

	items := f.CategorizedOptions()
	require.Len(t, items, 2)
	assert.Equal(t, model.CategorizedOption{
		Text: "second", Point: 2.5, Accurate: true, AccurateLabel: "Benar", NotAccurateLabel: "Salah",
	}, items[1])
	assert.Equal(t, 2.5, f.Draft().TotalPoint)

	assert.ErrorIs(t, f.Apply(model.EditorCommand{Op: "explode"}), util.ErrUnknownCommand)
	assert.ErrorIs(t, f.Apply(model.EditorCommand{Op: model.OpSetType, Type: "quiz"}), util.ErrUnknownType)
	assert.ErrorIs(t, f.Apply(model.EditorCommand{Op: model.OpSetOptionPoint, Index: 0}), util.ErrUnknownCommand)
}

func TestRestoreQuestionForm(t *testing.T) {
	f := filledForm(t, model.MultipleChoice)
	require.NoError(t, f.AddOption())

	b, err := json.Marshal(f.Draft())
	require.NoError(t, err)
	var d model.QuestionDraft
	require.NoError(t, json.Unmarshal(b, &d))

	restored := RestoreQuestionForm(d)
	assert.Equal(t, f.Options(), restored.Options())
	assert.Equal(t, f.Status(), restored.Status())
}
