package merge

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

const fallbackComponent = "merged"

// Filename builds "{school}_{grade}학년_{category}[_{YYYYMMDD}].pdf". Each
// component is sanitized on its own; merge-all bundles use "{category}_전체"
// as the category component.
func Filename(req Request, at time.Time, datestamp bool) string {
	cat := sanitize(string(req.Category))
	if req.Kind == KindAll {
		cat += "_전체"
	}
	parts := []string{
		sanitize(req.School),
		strconv.Itoa(req.Grade) + "학년",
		cat,
	}
	if datestamp && !at.IsZero() {
		parts = append(parts, at.Format("20060102"))
	}
	return strings.Join(parts, "_") + ".pdf"
}

// sanitize keeps letters (Hangul included), digits, '-' and '.'; path
// separators, reserved characters and whitespace become '_'.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-':
			b.WriteRune(r)
		case r == '.' && b.Len() > 0:
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return fallbackComponent
	}
	return b.String()
}
