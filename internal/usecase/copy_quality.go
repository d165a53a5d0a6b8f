package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/labelproof/artcheck/internal/domain"
)

const legacyArrow = " -> "

// uppercaseAllowedFields may carry capitalized words anywhere in the text.
var uppercaseAllowedFields = []string{
	"address block",
	"biorius address",
	"formula country of origin",
	"formula country",
	"ingredient list",
	"fill weight",
	"net weight",
}

var wordRegex = regexp.MustCompile(`\p{L}+`)

// CopyQualityChecker flags problems in the approved copy itself, before it is
// compared against the artwork.
type CopyQualityChecker struct {
	logger *zap.Logger
}

// NewCopyQualityChecker creates a checker.
func NewCopyQualityChecker(logger *zap.Logger) *CopyQualityChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CopyQualityChecker{logger: logger}
}

// Analyze runs every quality rule over the active fields. Legacy and
// strikethrough fields are ignored.
func (c *CopyQualityChecker) Analyze(fields []domain.CopyField) []domain.CopyQualityIssue {
	issues := make([]domain.CopyQualityIssue, 0)
	for _, f := range fields {
		if !f.IsActive() {
			continue
		}
		issues = append(issues, checkCapitalization(f)...)
		issues = append(issues, checkPunctuation(f)...)
		issues = append(issues, checkLegacyArrow(f)...)
		issues = append(issues, checkInstructional(f)...)
	}

	for _, f := range fields {
		if !f.IsActive() || !strings.Contains(strings.ToLower(f.FieldName), "ingredient") {
			continue
		}
		for _, inci := range ValidateIngredientList(f.Text) {
			issues = append(issues, newIssue(f, domain.IssueINCICapitalization, strings.Join(inci.Problems, "; "), inci.Ingredient, domain.StatusAttn))
		}
	}

	c.logger.Info("copy quality analysis complete", zap.Int("issues", len(issues)))
	return issues
}

func newIssue(f domain.CopyField, kind domain.QualityIssueType, description, text string, status domain.StatusCode) domain.CopyQualityIssue {
	return domain.CopyQualityIssue{
		FieldName:   f.FieldName,
		Panel:       f.Panel,
		Language:    f.Language,
		IssueType:   kind,
		Description: description,
		Text:        text,
		Status:      status,
	}
}

func allowsUppercase(fieldName string) bool {
	name := strings.ToLower(fieldName)
	for _, allowed := range uppercaseAllowedFields {
		if strings.Contains(name, allowed) {
			return true
		}
	}
	return false
}

// checkCapitalization flags capitalized words that do not start a sentence.
func checkCapitalization(f domain.CopyField) []domain.CopyQualityIssue {
	if f.Text == "" || allowsUppercase(f.FieldName) {
		return nil
	}
	var issues []domain.CopyQualityIssue
	for _, loc := range wordRegex.FindAllStringIndex(f.Text, -1) {
		word := f.Text[loc[0]:loc[1]]
		if utf8.RuneCountInString(word) <= 1 || allowedAcronyms[strings.ToUpper(word)] {
			continue
		}
		first, _ := utf8.DecodeRuneInString(word)
		if !isUpperRune(first) || isAllUpper(word) {
			continue
		}
		before := strings.TrimRight(f.Text[:loc[0]], " \t\r\n")
		if before == "" || strings.ContainsAny(before[len(before)-1:], ".!?") {
			continue
		}
		issues = append(issues, newIssue(f, domain.IssueCapitalization,
			fmt.Sprintf("'%s' should be lowercase '%s'", word, strings.ToLower(word)), word, domain.StatusFail))
	}
	return issues
}

func checkPunctuation(f domain.CopyField) []domain.CopyQualityIssue {
	if f.Text == "" {
		return nil
	}
	var issues []domain.CopyQualityIssue
	excerpt := truncate(f.Text, 50)
	if hasDoublePeriod(f.Text) {
		issues = append(issues, newIssue(f, domain.IssuePunctuation, "Check for double periods", excerpt, domain.StatusAttn))
	}
	if strings.Contains(f.Text, ",,") {
		issues = append(issues, newIssue(f, domain.IssuePunctuation, "Remove double commas", excerpt, domain.StatusAttn))
	}
	if strings.Contains(f.Text, "  ") {
		issues = append(issues, newIssue(f, domain.IssueFormatting, "Remove extra spaces", excerpt, domain.StatusAttn))
	}
	return issues
}

// hasDoublePeriod reports a run of exactly two periods. Ellipses are allowed.
func hasDoublePeriod(text string) bool {
	run := 0
	for i := 0; i <= len(text); i++ {
		if i < len(text) && text[i] == '.' {
			run++
			continue
		}
		if run == 2 {
			return true
		}
		run = 0
	}
	return false
}

func checkLegacyArrow(f domain.CopyField) []domain.CopyQualityIssue {
	if !strings.Contains(f.Text, legacyArrow) {
		return nil
	}
	return []domain.CopyQualityIssue{newIssue(f, domain.IssueLegacyArrow,
		"Contains ` -> ` separator - old text should be removed", truncate(f.Text, 100), domain.StatusAttn)}
}

func checkInstructional(f domain.CopyField) []domain.CopyQualityIssue {
	ok, pattern := IsInstructional(f.Text)
	if !ok {
		return nil
	}
	return []domain.CopyQualityIssue{newIssue(f, domain.IssueInstructionalNote,
		fmt.Sprintf("Remove internal instruction (matched: %s)", truncate(pattern, 30)), truncate(f.Text, 100), domain.StatusFail)}
}
