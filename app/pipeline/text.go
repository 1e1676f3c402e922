package pipeline

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldText lowercases and strips diacritics so keyword tables match
// accented spellings (Mbappé, Özil) as written.
func foldText(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// countWholeWord counts non-overlapping whole-word occurrences of
// needle in haystack. Both are expected to be folded already.
func countWholeWord(haystack, needle string) int {
	if needle == "" {
		return 0
	}

	count := 0
	offset := 0
	for {
		idx := strings.Index(haystack[offset:], needle)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(needle)

		if isWordBoundary(haystack, start-1) && isWordBoundary(haystack, end) {
			count++
		}
		offset = end
	}

	return count
}

func containsWholeWord(haystack, needle string) bool {
	return countWholeWord(haystack, needle) > 0
}

func isWordBoundary(s string, idx int) bool {
	if idx < 0 || idx >= len(s) {
		return true
	}
	c := rune(s[idx])
	return !unicode.IsLetter(c) && !unicode.IsDigit(c)
}

// tokenizeWords extracts the alphabetic words of length >= minLen
// from folded text, used by the trending table.
func tokenizeWords(s string, minLen int) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if len(w) >= minLen {
			words = append(words, w)
		}
	}
	return words
}
