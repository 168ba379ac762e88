// Package text implements the language processing primitives used by the
// matching pipeline: Spanish keyword extraction and subject similarity
// (Jaccard for short texts, TF-IDF cosine for long ones).
package text

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// wordRe matches words of four or more letters. Shorter tokens are almost
// always articles, prepositions, or codes that keyword overlap should ignore.
// The explicit class keeps accented Spanish letters inside one token, which
// RE2's ASCII-only \w would split.
var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]{4,}`)

// ExtractKeywords returns the set of significant lowercase words in a Spanish
// text. Texts shorter than 10 characters yield an empty set since they cannot
// describe a contract subject meaningfully.
func ExtractKeywords(s string) map[string]struct{} {
	out := make(map[string]struct{})
	if utf8.RuneCountInString(s) < 10 {
		return out
	}
	for _, w := range wordRe.FindAllString(strings.ToLower(s), -1) {
		if IsStopword(w) {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

// KeywordOverlap returns the Jaccard index of the two keyword sets, 0 when
// either is empty.
func KeywordOverlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
