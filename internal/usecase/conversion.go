package usecase

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/labelproof/artcheck/internal/domain"
)

var (
	millilitreRegex = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:ML|ml|mL|Ml)\b`)
	fluidOunceRegex = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:US\s*)?(?:FL\.?\s*OZ\.?|fl\.?\s*oz\.?|Fl\.?\s*Oz\.?)\b`)
)

// ConversionConfig controls the millilitre to fluid ounce cross-check.
type ConversionConfig struct {
	MLToFlOz     float64
	Tolerance    float64 // fl oz
	FieldKeyword string  // case-insensitive substring of the field name
}

// DefaultConversionConfig returns the US fluid ounce factor and a 0.10 fl oz tolerance.
func DefaultConversionConfig() ConversionConfig {
	return ConversionConfig{
		MLToFlOz:     0.033814,
		Tolerance:    0.10,
		FieldKeyword: "fill weight",
	}
}

// ConversionChecker verifies declared metric and imperial volumes agree.
type ConversionChecker struct {
	cfg    ConversionConfig
	logger *zap.Logger
}

// NewConversionChecker uses DefaultConversionConfig for a zero config. Otherwise
// the tolerance is used as given, including 0; a missing factor or keyword
// falls back to its default.
func NewConversionChecker(cfg ConversionConfig, logger *zap.Logger) *ConversionChecker {
	def := DefaultConversionConfig()
	if cfg == (ConversionConfig{}) {
		cfg = def
	}
	if cfg.MLToFlOz <= 0 {
		cfg.MLToFlOz = def.MLToFlOz
	}
	if strings.TrimSpace(cfg.FieldKeyword) == "" {
		cfg.FieldKeyword = def.FieldKeyword
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversionChecker{cfg: cfg, logger: logger}
}

// CheckConversions checks every fill weight field. A field whose text lacks
// either volume is reported as skipped with an FYI status, never as a failure.
func (c *ConversionChecker) CheckConversions(fields []domain.CopyField) []domain.ConversionCheck {
	keyword := strings.ToLower(c.cfg.FieldKeyword)
	var results []domain.ConversionCheck

	for i := range fields {
		f := &fields[i]
		if !strings.Contains(strings.ToLower(f.FieldName), keyword) {
			continue
		}
		results = append(results, c.checkField(f))
	}

	if len(results) == 0 {
		c.logger.Warn("no fill weight field found in copy", zap.String("keyword", c.cfg.FieldKeyword))
	}
	return results
}

func (c *ConversionChecker) checkField(f *domain.CopyField) domain.ConversionCheck {
	check := domain.ConversionCheck{
		FieldName:  f.FieldName,
		Panel:      f.Panel,
		Language:   f.Language,
		SourceText: f.Text,
	}

	ml, hasML := firstNumber(millilitreRegex, f.Text)
	flOz, hasFlOz := firstNumber(fluidOunceRegex, f.Text)
	if hasML {
		check.DeclaredML = &ml
	}
	if hasFlOz {
		check.DeclaredFlOz = &flOz
	}

	if !hasML || !hasFlOz {
		check.Skipped = true
		check.Status = domain.StatusFYI
		switch {
		case !hasML && !hasFlOz:
			check.Notes = "Skipped: no mL or fl oz volume found"
		case !hasML:
			check.Notes = "Skipped: no mL volume found"
		default:
			check.Notes = "Skipped: no fl oz volume found"
		}
		c.logger.Warn("could not extract volumes from fill weight",
			zap.String("field", f.FieldName),
			zap.String("text", f.Text))
		return check
	}

	calculated := ml * c.cfg.MLToFlOz
	diff := math.Abs(flOz - calculated)
	check.CalculatedFlOz = &calculated
	check.Difference = &diff

	passed := diff <= c.cfg.Tolerance
	if passed {
		check.Status = domain.StatusOK
	} else {
		check.Status = domain.StatusFail
	}
	check.Notes = fmt.Sprintf("Declared: %s fl oz | Calculated: %.2f fl oz | Diff: %.2f",
		strconv.FormatFloat(flOz, 'f', -1, 64), calculated, diff)

	c.logger.Info("conversion check",
		zap.String("field", f.FieldName),
		zap.Float64("ml", ml),
		zap.Float64("declared_floz", flOz),
		zap.Float64("calculated_floz", calculated),
		zap.Float64("difference", diff),
		zap.Bool("passed", passed))

	return check
}

func firstNumber(re *regexp.Regexp, text string) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
