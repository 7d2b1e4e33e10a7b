// Package textx provides text normalization helpers for local search.
package textx

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, trims surrounding whitespace and strips combining
// accent marks, so that "José" and "jose" compare equal. The result is the
// form stored in the entries search column and the form queries are folded
// into before matching.
func Normalize(s string) string {
	stripped, _, err := transform.String(transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	), s)
	if err != nil {
		stripped = s
	}
	return strings.ToLower(strings.TrimSpace(stripped))
}
