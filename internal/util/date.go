package util

import (
	"regexp"
	"strings"
	"time"
)

var dateOnlyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// loose layouts tried when the value is neither a plain date nor a timestamp
var looseDateLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
	"2006/01/02",
	"2006-1-2",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 January 2006",
	"Mon Jan 2 2006",
}

// DateOnly normalizes a date field to YYYY-MM-DD, or "" when the value is not a date.
func DateOnly(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}
	if dateOnlyPattern.MatchString(s) {
		return s
	}
	if strings.ContainsAny(s, "T ") && len(s) >= 10 {
		if _, err := time.Parse(DateFormat, s[:10]); err == nil {
			return s[:10]
		}
	}
	for _, layout := range looseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateFormat)
		}
	}
	return ""
}
