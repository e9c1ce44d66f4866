package pdfexport

import (
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

// fpdfCanvas draws on an A4 portrait document with the core Helvetica font.
type fpdfCanvas struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newFPDFCanvas() *fpdfCanvas {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", 11)
	return &fpdfCanvas{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (c *fpdfCanvas) AddPage() { c.pdf.AddPage() }

func (c *fpdfCanvas) SetPage(n int) { c.pdf.SetPage(n) }

func (c *fpdfCanvas) PageCount() int { return c.pdf.PageCount() }

func (c *fpdfCanvas) SetLineWidth(w float64) { c.pdf.SetLineWidth(w) }

func (c *fpdfCanvas) PageSize() (float64, float64) {
	return c.pdf.GetPageSize()
}

func (c *fpdfCanvas) SetFont(style string, size float64) {
	c.pdf.SetFont("Helvetica", style, size)
}

func (c *fpdfCanvas) SetTextColor(r, g, b int) {
	c.pdf.SetTextColor(r, g, b)
}

func (c *fpdfCanvas) Line(x1, y1, x2, y2 float64) {
	c.pdf.Line(x1, y1, x2, y2)
}

func (c *fpdfCanvas) Text(x, y float64, s string) {
	c.pdf.Text(x, y, c.tr(s))
}

func (c *fpdfCanvas) StringWidth(s string) float64 {
	return c.pdf.GetStringWidth(c.tr(s))
}

// SplitText takes UTF-8 and returns UTF-8 lines; they are translated when
// drawn. fpdf.SplitText indexes the core font width table by rune and panics
// above U+00FF, so widths are measured on the translated text instead.
func (c *fpdfCanvas) SplitText(s string, w float64) []string {
	return wrapWords(s, w, c.StringWidth)
}

// wrapWords breaks s on spaces so every line fits w. A word wider than w is
// cut by runes.
func wrapWords(s string, w float64, width func(string) float64) []string {
	var (
		out  []string
		line string
	)
	for _, word := range strings.Fields(s) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if width(candidate) <= w {
			line = candidate
			continue
		}
		if line != "" {
			out = append(out, line)
			line = ""
		}
		for width(word) > w {
			runes := []rune(word)
			n := 1
			for n < len(runes) && width(string(runes[:n+1])) <= w {
				n++
			}
			out = append(out, string(runes[:n]))
			word = string(runes[n:])
		}
		line = word
	}
	if line != "" || len(out) == 0 {
		out = append(out, line)
	}
	return out
}

func (c *fpdfCanvas) Output(w io.Writer) error {
	return c.pdf.Output(w)
}
