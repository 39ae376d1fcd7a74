// Package sanitize normalizes text decoded from optical codes so it can be
// handed to a JSON parser. It strips characters and does not validate the
// payload itself.
package sanitize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// escapedHex is the literal two-character sequence `\x` left behind by
// encoders that dump raw bytes as hex escapes.
const escapedHex = `\x`

var quoteReplacer = strings.NewReplacer(
	"'", `"`,
	"\u201c", `"`,
	"\u201d", `"`,
)

// CleanJSONString removes every control character (Unicode category Cc)
// from text, deletes `\x` sequences and rewrites single and typographic
// double quotes to straight double quotes. Invalid UTF-8 is replaced with
// U+FFFD first. Applying it twice gives the same result as applying it once.
func CleanJSONString(text string) string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}

	cleaned, _, err := transform.String(runes.Remove(runes.In(unicode.Cc)), text)
	if err != nil {
		cleaned = strings.Map(func(r rune) rune {
			if unicode.IsControl(r) {
				return -1
			}
			return r
		}, text)
	}

	// Deleting one occurrence can join a backslash and an 'x' into a new one.
	for strings.Contains(cleaned, escapedHex) {
		cleaned = strings.ReplaceAll(cleaned, escapedHex, "")
	}

	return quoteReplacer.Replace(cleaned)
}

// HasControl reports whether s contains any Unicode Cc character.
func HasControl(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}
