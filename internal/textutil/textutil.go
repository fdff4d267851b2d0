// Package textutil holds the text helpers shared by keyword classifiers
// and generated titles: accent-insensitive folding and display-width
// truncation.
package textutil

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Ellipsis terminates truncated text.
const Ellipsis = "…"

// Fold lowercases s and strips diacritics, so "Diseño" and "diseno" match.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// ContainsAny reports whether the folded text contains any folded keyword.
// text must already be folded; keywords are folded here.
func ContainsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		k = Fold(strings.TrimSpace(k))
		if k != "" && strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// FirstMatch returns the first keyword found in folded text.
func FirstMatch(text string, keywords []string) (string, bool) {
	for _, k := range keywords {
		fk := Fold(strings.TrimSpace(k))
		if fk != "" && strings.Contains(text, fk) {
			return k, true
		}
	}
	return "", false
}

// Truncate collapses whitespace in s and cuts it to at most width display
// cells, ending with Ellipsis when shortened.
func Truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

// Title capitalizes the first letter of each word using Spanish rules.
func Title(s string) string {
	return cases.Title(language.Spanish).String(s)
}
