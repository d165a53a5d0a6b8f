package usecase

import (
	"github.com/pmezard/go-difflib/difflib"
)

// splitChars turns a string into one element per rune for the sequence matcher.
func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// charRatio scores two rune sequences 0-100 as 2*M/T, where M is the number of
// matched characters found by the sequence matcher and T the combined length.
// The score is computed from integers so identical strings give exactly 100
// and boundary values such as 95 are exact.
func charRatio(a, b []string) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 100
	}
	matcher := difflib.NewMatcher(a, b)
	matches := 0
	for _, block := range matcher.GetMatchingBlocks() {
		matches += block.Size
	}
	return 200 * float64(matches) / float64(total)
}

// charRatioUpperBound is the best score charRatio could return for sequences
// of these lengths.
func charRatioUpperBound(la, lb int) float64 {
	total := la + lb
	if total == 0 {
		return 100
	}
	return 200 * float64(min(la, lb)) / float64(total)
}

// SimilarityRatio is the character-level similarity of two strings, 0-100.
func SimilarityRatio(a, b string) float64 {
	return charRatio(splitChars(a), splitChars(b))
}
