package users

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// CleanUsername produces the comparison form stored in username_clean:
// NFKC-normalised, case-folded, control characters removed and inner
// whitespace collapsed.
func CleanUsername(name string) string {
	s := norm.NFKC.String(name)
	s = folder.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
