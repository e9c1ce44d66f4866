package pdfexport

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	brTag      = regexp.MustCompile(`(?i)<br\s*/?>`)
	pCloseTag  = regexp.MustCompile(`(?i)</p\s*>`)
	divClose   = regexp.MustCompile(`(?i)</div\s*>`)
	liCloseTag = regexp.MustCompile(`(?i)</li\s*>`)
	anyTag     = regexp.MustCompile(`<[^>]*>`)
	spaceRun   = regexp.MustCompile(` +`)
)

// HTMLToText flattens rich text into plain text. Block ends become line
// breaks, list items are dashed, entities are decoded and runs of spaces
// collapse while newlines survive.
func HTMLToText(s string) string {
	if s == "" {
		return ""
	}
	s = brTag.ReplaceAllString(s, "\n")
	s = pCloseTag.ReplaceAllString(s, "\n\n")
	s = divClose.ReplaceAllString(s, "\n")
	s = liCloseTag.ReplaceAllString(s, "\n- ")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// IsBlank reports rich text that renders no visible characters, like "<p><br></p>".
func IsBlank(s string) bool {
	return strings.IndexFunc(HTMLToText(s), func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}

// FileName builds the download name for a test title.
func FileName(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return "soal_" + b.String() + ".pdf"
}
