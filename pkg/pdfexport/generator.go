package pdfexport

import (
	"bytes"
	"cbt_cms/internal/model"
	"fmt"
	"strings"
	"time"
)

const (
	DocumentTitle = "DOKUMEN SOAL & KUNCI JAWABAN"
	DefaultSchool = "Sekolah Umum"

	margin     = 15.0
	lineHeight = 5.0
	topY       = 20.0
)

// Canvas is the drawing surface the layout writes to. Coordinates are in mm
// with the origin at the top left; y is the text baseline.
type Canvas interface {
	AddPage()
	SetPage(n int)
	PageCount() int
	PageSize() (w, h float64)
	SetFont(style string, size float64)
	SetTextColor(r, g, b int)
	SetLineWidth(w float64)
	Line(x1, y1, x2, y2 float64)
	Text(x, y float64, s string)
	StringWidth(s string) float64
	SplitText(s string, w float64) []string
}

type Options struct {
	SchoolName string
	PrintedAt  time.Time
}

// Document is a rendered answer key.
type Document struct {
	FileName string
	Pages    int
	Content  []byte
}

// Render lays the export out on an A4 portrait page set.
func Render(export *model.TestExport, opts Options) (*Document, error) {
	c := newFPDFCanvas()
	Layout(c, export, opts)

	var buf bytes.Buffer
	if err := c.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return &Document{
		FileName: FileName(export.Test.Title),
		Pages:    c.PageCount(),
		Content:  buf.Bytes(),
	}, nil
}

type layout struct {
	c        Canvas
	pageW    float64
	pageH    float64
	maxWidth float64
	y        float64
}

// Layout draws header, numbered questions with their options and the page
// footers. Numbering runs across all sections.
func Layout(c Canvas, export *model.TestExport, opts Options) {
	c.AddPage()
	w, h := c.PageSize()
	l := &layout{c: c, pageW: w, pageH: h, maxWidth: w - 2*margin, y: topY}

	l.header(export.Test, opts)

	n := 0
	for _, section := range export.QuestionCategories {
		l.breakIfBelow(h - 30)
		c.SetFont("B", 11)
		c.SetTextColor(0, 0, 0)
		c.Text(margin, l.y, "Kategori: "+section.QuestionCategory.Name)
		l.y += 8

		for _, item := range section.Questions {
			n++
			l.question(n, item.Question)
		}
		l.y += 5
	}

	l.footers()
}

func (l *layout) header(t model.ExportTestHeader, opts Options) {
	school := strings.TrimSpace(opts.SchoolName)
	if school == "" {
		school = DefaultSchool
	}
	printed := opts.PrintedAt
	if printed.IsZero() {
		printed = time.Now()
	}
	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = "Ujian"
	}

	l.c.SetFont("B", 14)
	l.centered(DocumentTitle)
	l.y += 7

	l.c.SetFont("B", 12)
	l.centered(title)

	if t.SubTitle != nil && strings.TrimSpace(*t.SubTitle) != "" {
		l.y += 6
		l.c.SetFont("", 10)
		l.centered(strings.TrimSpace(*t.SubTitle))
	}

	l.y += 6
	l.c.SetFont("", 9)
	l.c.SetTextColor(100, 100, 100)
	l.centered(fmt.Sprintf("Institusi: %s | Tgl Cetak: %s", school, printed.Format("02/01/2006")))
	l.c.SetTextColor(0, 0, 0)

	l.y += 4
	l.c.SetLineWidth(0.5)
	l.c.Line(margin, l.y, l.pageW-margin, l.y)
	l.y += 10
}

func (l *layout) question(n int, q model.ExportQuestion) {
	l.breakIfBelow(l.pageH - 40)

	l.c.SetFont("B", 11)
	l.c.SetTextColor(0, 0, 0)
	l.c.Text(margin, l.y, fmt.Sprintf("%d.", n))

	l.c.SetFont("", 11)
	lines := l.wrap(HTMLToText(q.Question), l.maxWidth-10)
	l.lines(margin+8, lines)
	l.y += float64(len(lines))*lineHeight + 2

	answers := answerSet(q.Answer)
	for _, opt := range q.Options {
		l.breakIfBelow(l.pageH - 15)

		if answers[strings.ToLower(strings.TrimSpace(opt.Option))] {
			l.c.SetFont("B", 10)
			l.c.SetTextColor(0, 150, 0)
		} else {
			l.c.SetFont("", 10)
			l.c.SetTextColor(0, 0, 0)
		}

		label := "-"
		if opt.Option != "" {
			label = strings.ToUpper(opt.Option) + "."
		}
		lines := l.wrap(label+" "+HTMLToText(opt.Text), l.maxWidth-15)
		l.lines(margin+12, lines)
		l.y += float64(len(lines))*lineHeight + 1
	}

	if len(q.Options) == 0 && strings.TrimSpace(q.Answer) != "" {
		l.breakIfBelow(l.pageH - 15)
		l.c.SetFont("B", 10)
		l.c.SetTextColor(0, 150, 0)
		lines := l.wrap("Kunci: "+HTMLToText(q.Answer), l.maxWidth-15)
		l.lines(margin+12, lines)
		l.y += float64(len(lines))*lineHeight + 1
	}
	l.c.SetTextColor(0, 0, 0)
	l.y += 6
}

func (l *layout) footers() {
	total := l.c.PageCount()
	for i := 1; i <= total; i++ {
		l.c.SetPage(i)
		l.c.SetFont("", 8)
		l.c.SetTextColor(0, 0, 0)
		s := fmt.Sprintf("Page %d of %d", i, total)
		l.c.Text(l.pageW-margin-l.c.StringWidth(s), l.pageH-10, s)
	}
}

func (l *layout) breakIfBelow(limit float64) {
	if l.y > limit {
		l.c.AddPage()
		l.y = topY
	}
}

func (l *layout) centered(s string) {
	l.c.Text((l.pageW-l.c.StringWidth(s))/2, l.y, s)
}

func (l *layout) lines(x float64, lines []string) {
	for i, line := range lines {
		l.c.Text(x, l.y+float64(i)*lineHeight, line)
	}
}

// wrap splits on explicit newlines first, then by width.
func (l *layout) wrap(s string, w float64) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		if para == "" {
			out = append(out, "")
			continue
		}
		out = append(out, l.c.SplitText(para, w)...)
	}
	if len(out) == 0 {
		out = []string{""}
	}
	return out
}

// answerSet accepts a single letter or comma joined letters.
func answerSet(answer string) map[string]bool {
	set := map[string]bool{}
	for _, part := range strings.Split(answer, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			set[p] = true
		}
	}
	return set
}
