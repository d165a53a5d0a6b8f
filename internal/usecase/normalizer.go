package usecase

import (
	"regexp"
	"strings"
)

// Unicode variants folded before comparison. Em-dash (U+2014) is kept as is.
var normalizeReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"«", `"`, "»", `"`,
	"‘", "'", "’", "'", "ʼ", "'",
	"–", "-", "\u2010", "-", "\u2011", "-",
	"\u00a0", " ", "\u202f", " ",
	"ﬁ", "fi", "ﬂ", "fl", "ﬀ", "ff", "ﬃ", "ffi", "ﬄ", "ffl",
)

var searchPunctuationRegex = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s]`)

// Normalize canonicalizes quotes, dashes, apostrophes, special spaces and
// ligatures, then collapses whitespace. Case and punctuation are preserved.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	folded := normalizeReplacer.Replace(text)
	return strings.Join(strings.Fields(folded), " ")
}

// NormalizeForSearch lower-cases Normalize's output and strips punctuation.
// It is only for pattern lookups, never for the exact-match comparison.
func NormalizeForSearch(text string) string {
	normalized := strings.ToLower(Normalize(text))
	normalized = searchPunctuationRegex.ReplaceAllString(normalized, "")
	return strings.Join(strings.Fields(normalized), " ")
}
