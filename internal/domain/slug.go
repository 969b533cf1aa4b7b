package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugStripRegex    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapseRegex = regexp.MustCompile(`[-\s]+`)
)

// Slugify converts s into a URL-safe, lowercase, hyphenated identifier.
// Accented characters are reduced to their ASCII base letter and any other
// non-ASCII character is dropped, so "Café Olé!" becomes "cafe-ole".
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	ascii, _, err := transform.String(t, s)
	if err != nil {
		ascii = s
	}

	ascii = slugStripRegex.ReplaceAllString(strings.ToLower(ascii), "")
	return strings.Trim(slugCollapseRegex.ReplaceAllString(ascii, "-"), "-_")
}
