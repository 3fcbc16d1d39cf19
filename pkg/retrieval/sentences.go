// Package retrieval selects the encyclopedia sentences most relevant to a species.
package retrieval

import (
	"strings"
	"unicode"
)

// MinSentenceLength is the exclusive lower bound on kept sentence length.
const MinSentenceLength = 20

// SplitSentences splits text after '.', '?' or '!' when followed by whitespace,
// trims each piece and keeps those longer than MinSentenceLength characters.
func SplitSentences(text string) []string {
	var out []string
	keep := func(s string) {
		s = strings.TrimSpace(s)
		if len([]rune(s)) > MinSentenceLength {
			out = append(out, s)
		}
	}

	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) || i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		keep(string(runes[start : i+1]))
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		keep(string(runes[start:]))
	}
	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}
