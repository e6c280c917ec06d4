package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldMarks decomposes text and drops the combining marks, turning accented
// letters into their ASCII base forms.
var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]`)

// NormalizeTones canonicalizes text for language-tolerant comparison:
// lower-case, strip diacritics via Unicode decomposition, fold the Vietnamese
// đ (which NFD cannot decompose), then drop everything that is not a letter,
// digit or space. The function is pure and idempotent.
func NormalizeTones(text string) string {
	if text == "" {
		return ""
	}
	s := strings.ToLower(text)
	folded, _, err := transform.String(foldMarks, s)
	if err == nil {
		s = folded
	}
	s = strings.ReplaceAll(s, "đ", "d")
	s = nonAlnum.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
