package usecase

import "strings"

var instructionalPatternSources = []string{
	// yes/no answers left in copy
	`^yes\s*[-–—]`,
	`^no\s*[-–—]`,
	// placeholders
	`\bTBD\b`,
	`\bTBC\b`,
	`\bTODO\b`,
	`\bXXX+\b`,
	`\bPLACEHOLDER\b`,
	`\bpending\b`,
	// production references
	`\bPO\b`,
	`\bfirst\s+PO\b`,
	`\bproduction\b`,
	// conditional language
	`if\s+it\s+can\s+fit`,
	`need\s+to\s+wait`,
	`waiting\s+for`,
	`once\s+confirmed`,
	// parenthetical instructions
	`\(pending\)`,
	`\(see\s+attached\)`,
	`\(if\s+`,
	`\(TBD\)`,
	`\(optional\)`,
	// mentions and assignments
	`@\w+`,
	`\b(?:ask|check\s+with|confirm\s+with)\b`,
	// unresolved question
	`\?\s*$`,
	// dated notes
	`(?:updated|as\s+of|by)\s+\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`,
	// regulatory follow-ups
	`(?:Reg|regulatory)\s+confirmation`,
	`certification\s+(?:pending|needed)`,
}

var instructionalPatterns = compileExclusionPatterns(instructionalPatternSources)

var placeholderValues = map[string]bool{
	"-": true, "N/A": true, "n/a": true, "NA": true, "na": true, "—": true, "–": true,
}

// IsInstructional reports whether text reads like an internal note or
// placeholder rather than approved copy. The second value names what matched.
func IsInstructional(text string) (bool, string) {
	if text == "" {
		return false, ""
	}
	for _, p := range instructionalPatterns {
		if p.re.MatchString(text) {
			return true, p.source
		}
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || placeholderValues[trimmed] {
		return true, "empty/placeholder value"
	}
	return false, ""
}
