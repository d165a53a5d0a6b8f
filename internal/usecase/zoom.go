package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/labelproof/artcheck/internal/domain"
)

var (
	digitRegex   = regexp.MustCompile(`\d`)
	decimalRegex = regexp.MustCompile(`\d+\.\d+`)
)

var defaultUnitPatterns = []string{
	`\b\d+\s*(mg|g|kg|ml|mL|ML|l|L|oz|OZ|fl\.?\s*oz|FL\.?\s*OZ|pt|qt|gal)\b`,
	`\b\d+\s*(mm|cm|m|in|inch|inches|ft|feet)\b`,
	`\bUS\s+FL\.?\s*OZ\.?\b`,
}

var (
	englishNegations = []string{"no", "not", "free", "only", "without", "never", "none", "zero"}
	frenchNegations  = []string{"moins", "sans", "non", "aucun"}
)

// ZoomConfig controls when a finding needs human visual confirmation.
type ZoomConfig struct {
	FontSizeThreshold   float64 // points; at or below triggers
	ConfidenceThreshold float64 // percent; below triggers
	FuzzyThreshold      float64 // percent; below triggers
	OnNumbers           bool
	OnPercentage        bool
	OnDecimals          bool
	OnUnits             bool
	OnNegation          bool
	UnitPatterns        []string // overrides the built-in unit patterns when set
}

// DefaultZoomConfig returns the standard trigger set.
func DefaultZoomConfig() ZoomConfig {
	return ZoomConfig{
		FontSizeThreshold:   6.5,
		ConfidenceThreshold: 100,
		FuzzyThreshold:      100,
		OnNumbers:           true,
		OnPercentage:        true,
		OnDecimals:          true,
		OnUnits:             true,
		OnNegation:          true,
	}
}

type negationMatcher struct {
	word string
	re   *regexp.Regexp
}

// ZoomDetector flags content that must be confirmed visually regardless of
// how well it matched.
type ZoomDetector struct {
	cfg          ZoomConfig
	unitPatterns []*regexp.Regexp
	negations    map[domain.Language][]negationMatcher
	anyNegations []negationMatcher
}

// NewZoomDetector compiles the detector's patterns.
func NewZoomDetector(cfg ZoomConfig) (*ZoomDetector, error) {
	sources := cfg.UnitPatterns
	if len(sources) == 0 {
		sources = defaultUnitPatterns
	}
	units := make([]*regexp.Regexp, 0, len(sources))
	for _, src := range sources {
		re, err := regexp.Compile(`(?i)` + src)
		if err != nil {
			return nil, fmt.Errorf("invalid unit pattern %q: %w", src, err)
		}
		units = append(units, re)
	}

	english := compileNegations(englishNegations)
	french := compileNegations(frenchNegations)
	return &ZoomDetector{
		cfg:          cfg,
		unitPatterns: units,
		negations: map[domain.Language][]negationMatcher{
			domain.LanguageEN: english,
			domain.LanguageFR: french,
		},
		anyNegations: append(append([]negationMatcher{}, english...), french...),
	}, nil
}

// compileNegations matches whole words only. \b is ASCII-only in RE2, so
// the boundaries are spelled out to keep accented letters inside a word.
func compileNegations(words []string) []negationMatcher {
	const edge = `[^\p{L}\p{N}_]`
	out := make([]negationMatcher, 0, len(words))
	for _, w := range words {
		re := regexp.MustCompile(`(?:^|` + edge + `)` + regexp.QuoteMeta(w) + `(?:$|` + edge + `)`)
		out = append(out, negationMatcher{word: w, re: re})
	}
	return out
}

// ZoomInput is what the detector looks at for one field.
type ZoomInput struct {
	Text       string
	Language   domain.Language
	FontSize   float64 // 0 when unknown
	Confidence float64 // percent
	FuzzyScore float64 // percent
}

// CheckTriggers returns the reasons visual confirmation is required, in a
// fixed order. No reasons means no zoom is needed.
func (d *ZoomDetector) CheckTriggers(in ZoomInput) (bool, []string) {
	var reasons []string

	if in.FontSize > 0 && in.FontSize <= d.cfg.FontSizeThreshold {
		reasons = append(reasons, fmt.Sprintf("Font size %spt ≤ %spt threshold",
			formatPoints(in.FontSize), formatPoints(d.cfg.FontSizeThreshold)))
	}
	if in.Confidence < d.cfg.ConfidenceThreshold {
		reasons = append(reasons, fmt.Sprintf("Extraction confidence %.0f%% < %.0f%%",
			in.Confidence, d.cfg.ConfidenceThreshold))
	}
	if in.FuzzyScore < d.cfg.FuzzyThreshold {
		reasons = append(reasons, fmt.Sprintf("Fuzzy match %.1f%% < %.0f%%",
			in.FuzzyScore, d.cfg.FuzzyThreshold))
	}

	text := in.Text
	if text == "" {
		return len(reasons) > 0, reasons
	}

	if d.cfg.OnNumbers && digitRegex.MatchString(text) {
		reasons = append(reasons, "Contains numbers")
	}
	if d.cfg.OnPercentage && strings.Contains(text, "%") {
		reasons = append(reasons, "Contains percentage")
	}
	if d.cfg.OnDecimals && decimalRegex.MatchString(text) {
		reasons = append(reasons, "Contains decimal numbers")
	}
	if d.cfg.OnUnits {
		for _, re := range d.unitPatterns {
			if re.MatchString(text) {
				reasons = append(reasons, "Contains units")
				break
			}
		}
	}
	if d.cfg.OnNegation {
		lower := strings.ToLower(text)
		for _, n := range d.negationsFor(in.Language) {
			if n.re.MatchString(lower) {
				reasons = append(reasons, fmt.Sprintf("Contains negation word: '%s'", n.word))
				break
			}
		}
	}

	return len(reasons) > 0, reasons
}

func (d *ZoomDetector) negationsFor(lang domain.Language) []negationMatcher {
	if words, ok := d.negations[lang]; ok {
		return words
	}
	return d.anyNegations
}

// formatPoints renders 5 as "5.0" and 6.25 as "6.25".
func formatPoints(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
