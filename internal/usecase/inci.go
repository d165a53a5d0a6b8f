package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	inciWordRegex      = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	inciSeparatorRegex = regexp.MustCompile(`[,;]`)
)

// inciConnectors stay lower case inside INCI names.
var inciConnectors = map[string]bool{
	"de": true, "du": true, "des": true, "la": true, "le": true, "les": true,
	"of": true, "the": true, "and": true, "with": true,
	"et": true, "cum": true,
}

// allowedAcronyms may appear in upper case anywhere.
var allowedAcronyms = map[string]bool{
	"ML": true, "FL": true, "OZ": true, "USA": true, "EU": true, "UK": true, "GB": true, "BE": true, "CA": true,
	"AHA": true, "BHA": true, "LHA": true, "NP": true, "SPF": true, "UV": true, "UVA": true, "UVB": true,
	"PEG": true, "PPG": true, "EDTA": true, "BHT": true,
	"NY": true, "NYC": true, "LA": true, "SF": true,
	"LLC": true, "INC": true, "CO": true, "LTD": true,
}

// INCIIssue describes the capitalization problems in one ingredient.
type INCIIssue struct {
	Ingredient string
	Problems   []string
}

// ValidateINCICapitalization checks one ingredient name: each word capitalized
// except connectors, which must be lower case.
func ValidateINCICapitalization(text string) []string {
	var problems []string
	for _, word := range inciWordRegex.FindAllString(text, -1) {
		lower := strings.ToLower(word)
		if inciConnectors[lower] {
			if first, _ := utf8.DecodeRuneInString(word); unicode.IsUpper(first) {
				problems = append(problems, fmt.Sprintf("'%s' should be lowercase '%s'", word, lower))
			}
			continue
		}
		if utf8.RuneCountInString(word) < 2 || isDigits(word) {
			continue
		}
		if isAllUpper(word) || allowedAcronyms[strings.ToUpper(word)] {
			continue
		}
		first, size := utf8.DecodeRuneInString(word)
		if unicode.IsLetter(first) && unicode.IsLower(first) {
			problems = append(problems, fmt.Sprintf("'%s' should be '%s'", word, string(unicode.ToUpper(first))+word[size:]))
		}
	}
	return problems
}

// ValidateIngredientList splits an ingredient list on commas and semicolons
// and validates each entry.
func ValidateIngredientList(text string) []INCIIssue {
	var issues []INCIIssue
	for _, ingredient := range inciSeparatorRegex.Split(text, -1) {
		ingredient = strings.TrimSpace(ingredient)
		if ingredient == "" {
			continue
		}
		if problems := ValidateINCICapitalization(ingredient); len(problems) > 0 {
			issues = append(issues, INCIIssue{Ingredient: truncate(ingredient, 50), Problems: problems})
		}
	}
	return issues
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func isUpperRune(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsTitle(r)
}

// isAllUpper mirrors a cased-letter check: at least one letter and no lower case.
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
