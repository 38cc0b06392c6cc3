// Package sanitize cleans user-authored text before it reaches the terminal.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func strict() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text strips HTML markup and terminal escape sequences from s. Entities
// escaped by the HTML policy are decoded again so "a < b" survives.
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = ansi.Strip(s)
	s = strict().Sanitize(s)
	s = html.UnescapeString(s)
	return stripControl(s)
}

// Line is Text collapsed to a single line and truncated to width cells
// (0 means no limit), for list rows and titles.
func Line(s string, width int) string {
	s = strings.Join(strings.Fields(Text(s)), " ")
	if width > 0 {
		s = ansi.Truncate(s, width, "…")
	}
	return s
}

// stripControl drops C0/C1 control characters other than newline and tab.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0):
			return -1
		default:
			return r
		}
	}, s)
}
