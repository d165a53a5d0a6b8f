package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/labelproof/artcheck/internal/domain"
)

// Exclusion reasons reported in diagnostics.
const (
	ReasonTooShort     = "empty or too short"
	ReasonExactTerm    = "non-product term"
	ReasonCompanyName  = "company name"
	ReasonPatternMatch = "technical pattern"
)

// exclusionTerms are production, colour-separation and orientation labels.
var exclusionTerms = []string{
	// colour callouts
	"white", "black", "cyan", "magenta", "yellow",
	"c", "m", "y", "k", "cmyk", "rgb",
	"spot gloss", "matte", "gloss", "foil",
	// packaging
	"bleed", "trim", "safe zone", "die cut", "dieline", "die line",
	"fold", "cut", "glue", "flap", "score",
	"crop marks", "fold here", "cut here", "glue flap",
	// proofing
	"proof", "draft", "final", "approved",
	"fpo", "for position only",
	"ol", "outlined",
	// orientation
	"front", "back", "side", "top", "bottom",
	"print side", "inside", "outside",
}

var exclusionCompanyNames = []string{
	"INTEGRATED PACKAGING INDUSTRIES",
	"Kroger Packaging Inc",
	"Heat Makes Sense",
	"NVI",
}

var exclusionPatternSources = []string{
	// dimensions: 3+7/8, 16 3/32, 9.828
	`^\d+\+?\d*/\d+$`,
	`^\d+\s+\d+/\d+$`,
	`^\d+\.\d{2,}$`,
	// reference numbers
	`^IP\d+[A-Z]?$`,
	`^VC[_-]?\d+$`,
	`^ref\s*#?\s*:`,
	`^code\s*#?\s*:`,
	// Pantone / PMS
	`^PMS\s*\d+`,
	`^Pantone\s*\d+`,
	`^PMS\s+\w+\.\s*\w+`,
	// drawing title block
	`^SCALE\s*:`,
	`^SIZE\s*:`,
	`^DATE\s*:`,
	`^DRAWN\s*:`,
	`^CHECKED\s*:`,
	`^APPROVED\s*:`,
	`^MATERIAL\s*:`,
	`^WEIGHT\s*:`,
	`^DWG\s*NO`,
	`^OFC\s*:`,
	// tolerances
	`^[X.]+±\d+`,
	`^\.\w+±\d+`,
	`^X°±\d+`,
	`GENERAL\s+TOLERANCES`,
	`MILLIMETRES`,
	`INCHES`,
	// boilerplate
	`INTEGRATED\s+PACKAGING`,
	`Kroger\s+Packaging`,
	`PROPRIETARY`,
	`CONFIDENTIAL`,
	`COPYRIGHT`,
	`This\s+design\s+concept\s+is\s+the\s+exclusive\s+property`,
	`all\s+rights\s+are\s+reserved`,
	`end\s+user\s*:`,
	`item\s*:`,
	`3RD\s+ANGLE\s+PROJECTION`,
	// label metadata
	`^Label\s+Dieline`,
	`^Customer\s*:`,
	`^Diameter`,
	`^CLEARANCE\s+AREA`,
	`^Deco\s+Area`,
	// date stamps
	`^\d{1,2}/\d{1,2}/\d{2,4}$`,
	`^\d{4}\.\d{2}\.\d{2}$`,
}

type exclusionPattern struct {
	source string
	re     *regexp.Regexp
}

var exclusionPatterns = compileExclusionPatterns(exclusionPatternSources)

func compileExclusionPatterns(sources []string) []exclusionPattern {
	patterns := make([]exclusionPattern, 0, len(sources))
	for _, src := range sources {
		patterns = append(patterns, exclusionPattern{source: src, re: regexp.MustCompile(`(?i)` + src)})
	}
	return patterns
}

// ExclusionConfig extends the built-in exclusion lists.
type ExclusionConfig struct {
	ExtraTerms        []string
	ExtraCompanyNames []string
	ExtraPatterns     []string
}

// ExclusionFilter drops artwork fragments that are production metadata rather
// than product copy.
type ExclusionFilter struct {
	terms     map[string]bool
	companies []exclusionPattern
	patterns  []exclusionPattern
	logger    *zap.Logger
}

// NewExclusionFilter builds a filter from the built-in lists plus cfg.
// Invalid extra patterns are rejected.
func NewExclusionFilter(cfg ExclusionConfig, logger *zap.Logger) (*ExclusionFilter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	terms := make(map[string]bool, len(exclusionTerms)+len(cfg.ExtraTerms))
	for _, term := range exclusionTerms {
		terms[term] = true
	}
	for _, term := range cfg.ExtraTerms {
		if strings.TrimSpace(term) == "" {
			continue
		}
		terms[strings.ToLower(strings.TrimSpace(term))] = true
	}

	// Company names match as whole words.
	names := append(append([]string{}, exclusionCompanyNames...), cfg.ExtraCompanyNames...)
	companies := make([]exclusionPattern, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(strings.TrimSpace(name)) + `\b`)
		companies = append(companies, exclusionPattern{source: name, re: re})
	}

	patterns := append([]exclusionPattern{}, exclusionPatterns...)
	for _, src := range cfg.ExtraPatterns {
		re, err := regexp.Compile(`(?i)` + src)
		if err != nil {
			return nil, fmt.Errorf("invalid exclusion pattern %q: %w", src, err)
		}
		patterns = append(patterns, exclusionPattern{source: src, re: re})
	}

	return &ExclusionFilter{
		terms:     terms,
		companies: companies,
		patterns:  patterns,
		logger:    logger,
	}, nil
}

// ShouldExclude reports whether text is non-product text, with a reason.
func (f *ExclusionFilter) ShouldExclude(text string) (bool, string) {
	clean := strings.TrimSpace(text)
	if len([]rune(clean)) < 2 {
		return true, ReasonTooShort
	}

	lower := strings.ToLower(clean)
	if f.terms[lower] {
		return true, fmt.Sprintf("%s: '%s'", ReasonExactTerm, clean)
	}

	for _, company := range f.companies {
		if company.re.MatchString(clean) {
			return true, fmt.Sprintf("%s: '%s'", ReasonCompanyName, company.source)
		}
	}

	for _, p := range f.patterns {
		if p.re.MatchString(clean) {
			return true, fmt.Sprintf("%s: %s", ReasonPatternMatch, p.source)
		}
	}

	return false, ""
}

// FilterFragments returns the fragments that survive exclusion, in their
// original order, and a summary of what was dropped.
func (f *ExclusionFilter) FilterFragments(fragments []domain.TextFragment) ([]domain.TextFragment, domain.ExclusionSummary) {
	kept := make([]domain.TextFragment, 0, len(fragments))
	summary := domain.ExclusionSummary{
		Total:    len(fragments),
		ByReason: make(map[string]int),
	}

	for _, frag := range fragments {
		exclude, reason := f.ShouldExclude(frag.Text)
		if !exclude {
			kept = append(kept, frag)
			continue
		}
		summary.Excluded++
		summary.ByReason[reasonCategory(reason)]++
		f.logger.Debug("excluded artwork text",
			zap.String("text", truncate(frag.Text, 50)),
			zap.Int("page", frag.PageNumber),
			zap.String("reason", reason))
	}
	summary.Kept = len(kept)

	if summary.Excluded > 0 {
		f.logger.Info("excluded non-product text elements", zap.Int("count", summary.Excluded))
	}
	return kept, summary
}

func reasonCategory(reason string) string {
	if idx := strings.Index(reason, ":"); idx > 0 {
		return reason[:idx]
	}
	return reason
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
