package pdfexport

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"cbt_cms/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type textOp struct {
	page  int
	x, y  float64
	s     string
	style string
	color [3]int
}

// recorder is a Canvas that keeps every text it is asked to draw. Each rune is
// 2mm wide.
type recorder struct {
	pages   int
	current int
	style   string
	color   [3]int
	lines   int
	texts   []textOp
}

func (r *recorder) AddPage() { r.pages++; r.current = r.pages }
func (r *recorder) SetPage(n int) { r.current = n }
func (r *recorder) PageCount() int { return r.pages }
func (r *recorder) PageSize() (float64, float64) { return 210, 297 }
func (r *recorder) SetFont(style string, size float64) { r.style = style }
func (r *recorder) SetTextColor(red, g, b int) { r.color = [3]int{red, g, b} }
func (r *recorder) SetLineWidth(w float64) {}
func (r *recorder) Line(x1, y1, x2, y2 float64) { r.lines++ }
func (r *recorder) StringWidth(s string) float64 { return float64(len([]rune(s))) * 2 }

func (r *recorder) Text(x, y float64, s string) {
	r.texts = append(r.texts, textOp{page: r.current, x: x, y: y, s: s, style: r.style, color: r.color})
}

func (r *recorder) SplitText(s string, w float64) []string {
	per := int(w / 2)
	runes := []rune(s)
	var out []string
	for len(runes) > per {
		out = append(out, string(runes[:per]))
		runes = runes[per:]
	}
	return append(out, string(runes))
}

func (r *recorder) find(s string) (textOp, bool) {
	for _, t := range r.texts {
		if t.s == s {
			return t, true
		}
	}
	return textOp{}, false
}

func sampleExport(sections, perSection int) *model.TestExport {
	sub := "Sesi 1"
	e := &model.TestExport{Test: model.ExportTestHeader{Title: "UTBK 2024", SubTitle: &sub, SchoolID: 1}}
	for s := 0; s < sections; s++ {
		sec := model.ExportSection{ID: uint(s + 1), QuestionCategory: model.ExportSectionCategory{Name: fmt.Sprintf("Bagian %d", s+1)}}
		for q := 0; q < perSection; q++ {
			sec.Questions = append(sec.Questions, model.TestQuestionWrapper{
				ID: uint(q + 1),
				Question: model.ExportQuestion{
					ID:       uint(q + 1),
					Question: fmt.Sprintf("<p>Soal %d-%d</p>", s+1, q+1),
					Type:     model.MultipleChoice,
					Answer:   "B",
					Options: []model.ExportOption{
						{Option: "a", Text: "<p>1</p>"},
						{Option: "b", Text: "<p>2</p>"},
						{Option: "c", Text: "3"},
					},
				},
			})
		}
		e.QuestionCategories = append(e.QuestionCategories, sec)
	}
	return e
}

func TestLayoutHeader(t *testing.T) {
	r := &recorder{}
	printed := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	Layout(r, sampleExport(1, 1), Options{PrintedAt: printed})

	require.GreaterOrEqual(t, len(r.texts), 4)
	assert.Equal(t, DocumentTitle, r.texts[0].s)
	assert.Equal(t, 20.0, r.texts[0].y)
	assert.Equal(t, "B", r.texts[0].style)
	assert.Equal(t, "UTBK 2024", r.texts[1].s)
	assert.Equal(t, 27.0, r.texts[1].y)
	assert.Equal(t, "Sesi 1", r.texts[2].s)

	info := r.texts[3]
	assert.Equal(t, "Institusi: Sekolah Umum | Tgl Cetak: 15/10/2026", info.s)
	assert.Equal(t, [3]int{100, 100, 100}, info.color)
	assert.Equal(t, 1, r.lines)

	title, _ := r.find(DocumentTitle)
	assert.InDelta(t, (210-2*float64(len(DocumentTitle)))/2, title.x, 0.001)
}

func TestLayoutUntitledTest(t *testing.T) {
	r := &recorder{}
	e := sampleExport(1, 1)
	e.Test.Title = ""
	e.Test.SubTitle = nil
	Layout(r, e, Options{SchoolName: "SMA 1"})

	assert.Equal(t, "Ujian", r.texts[1].s)
	assert.True(t, strings.HasPrefix(r.texts[2].s, "Institusi: SMA 1 |"))
}

func TestLayoutNumbersAcrossSections(t *testing.T) {
	r := &recorder{}
	Layout(r, sampleExport(2, 2), Options{})

	for _, want := range []string{"Kategori: Bagian 1", "Kategori: Bagian 2", "1.", "2.", "3.", "4."} {
		_, ok := r.find(want)
		assert.True(t, ok, "missing %q", want)
	}
	_, ok := r.find("5.")
	assert.False(t, ok)

	q3, _ := r.find("3.")
	text, _ := r.find("Soal 2-1")
	assert.Equal(t, q3.y, text.y)
	assert.Equal(t, margin+8, text.x)
}

func TestLayoutHighlightsAnswer(t *testing.T) {
	r := &recorder{}
	Layout(r, sampleExport(1, 1), Options{})

	right, ok := r.find("B. 2")
	require.True(t, ok)
	assert.Equal(t, "B", right.style)
	assert.Equal(t, [3]int{0, 150, 0}, right.color)
	assert.Equal(t, margin+12, right.x)

	wrong, ok := r.find("A. 1")
	require.True(t, ok)
	assert.Equal(t, "", wrong.style)
	assert.Equal(t, [3]int{0, 0, 0}, wrong.color)
}

func TestLayoutHighlightsMultipleAnswers(t *testing.T) {
	r := &recorder{}
	e := sampleExport(1, 1)
	e.QuestionCategories[0].Questions[0].Question.Answer = "a, c"
	Layout(r, e, Options{})

	for _, s := range []string{"A. 1", "C. 3"} {
		op, _ := r.find(s)
		assert.Equal(t, [3]int{0, 150, 0}, op.color, s)
	}
	op, _ := r.find("B. 2")
	assert.Equal(t, [3]int{0, 0, 0}, op.color)
}

func TestLayoutEssayKey(t *testing.T) {
	r := &recorder{}
	e := sampleExport(1, 1)
	q := &e.QuestionCategories[0].Questions[0].Question
	q.Type = model.Essay
	q.Options = nil
	q.Answer = "<p>42</p>"
	Layout(r, e, Options{})

	_, ok := r.find("Kunci: 42")
	assert.True(t, ok)
}

func TestLayoutPageBreaksAndFooter(t *testing.T) {
	r := &recorder{}
	Layout(r, sampleExport(3, 15), Options{})

	require.Greater(t, r.pages, 1)
	for i := 1; i <= r.pages; i++ {
		footer, ok := r.find(fmt.Sprintf("Page %d of %d", i, r.pages))
		require.True(t, ok, "page %d has no footer", i)
		assert.Equal(t, i, footer.page)
		assert.Equal(t, 287.0, footer.y)
		assert.InDelta(t, 195, footer.x+2*float64(len(footer.s)), 0.001)
	}

	for _, op := range r.texts {
		if strings.HasPrefix(op.s, "Page ") {
			continue
		}
		assert.LessOrEqual(t, op.y, 297.0-15+5, "text %q drawn below the page body", op.s)
	}
}

func TestLayoutWrapsLongText(t *testing.T) {
	r := &recorder{}
	e := sampleExport(1, 1)
	e.QuestionCategories[0].Questions[0].Question.Question = strings.Repeat("x", 100)
	Layout(r, e, Options{})

	var rows []textOp
	for _, op := range r.texts {
		if strings.HasPrefix(op.s, "x") {
			rows = append(rows, op)
		}
	}
	require.Len(t, rows, 2)
	assert.Len(t, rows[0].s, 85)
	assert.Equal(t, rows[0].y+lineHeight, rows[1].y)
}

func TestRender(t *testing.T) {
	doc, err := Render(sampleExport(1, 2), Options{SchoolName: "SMA Négeri 1"})
	require.NoError(t, err)

	assert.Equal(t, "soal_utbk_2024.pdf", doc.FileName)
	assert.Equal(t, 1, doc.Pages)
	assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF")))
}

func TestRenderRichTextOutsideLatin1(t *testing.T) {
	e := sampleExport(1, 1)
	q := &e.QuestionCategories[0].Questions[0].Question
	q.Question = "<p>Apa arti &ldquo;kata&rdquo; ini&hellip; jika x &ge; 2 &mdash; √4?</p>" + strings.Repeat("<p>Lorem ipsum “dolor” sit amet… </p>", 20)
	q.Options[0].Text = "<p>≥ 5 — benar</p>"

	var doc *Document
	var err error
	require.NotPanics(t, func() {
		doc, err = Render(e, Options{SchoolName: "SMA “Harapan”"})
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc.Content, []byte("%PDF")))
}

func TestWrapWords(t *testing.T) {
	width := func(s string) float64 { return float64(len([]rune(s))) }

	t.Run("breaks on spaces", func(t *testing.T) {
		assert.Equal(t, []string{"“satu” dua", "tiga…"}, wrapWords("“satu” dua tiga…", 10, width))
	})

	t.Run("cuts long words by rune", func(t *testing.T) {
		assert.Equal(t, []string{"≥≥≥≥", "≥≥"}, wrapWords("≥≥≥≥≥≥", 4, width))
	})

	t.Run("blank input", func(t *testing.T) {
		assert.Equal(t, []string{""}, wrapWords("   ", 4, width))
	})
}
