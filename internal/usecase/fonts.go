package usecase

import (
	"strings"

	"github.com/labelproof/artcheck/internal/domain"
)

type fontKey struct {
	page int
	name string
	size float64
}

// FontMeasurements lists each distinct (page, font, size) combination seen in
// the fragments, in first-seen order. Fragments without a measured size are
// skipped.
func FontMeasurements(fragments []domain.TextFragment) []domain.FontMeasurement {
	seen := make(map[fontKey]bool)
	out := make([]domain.FontMeasurement, 0)
	for _, f := range fragments {
		text := strings.TrimSpace(f.Text)
		if !f.HasFontSize() || text == "" {
			continue
		}
		key := fontKey{page: f.PageNumber, name: f.FontName, size: f.FontSize}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, domain.FontMeasurement{
			PageNumber: f.PageNumber,
			FontName:   f.FontName,
			FontSize:   f.FontSize,
			SampleText: truncate(text, 50),
		})
	}
	return out
}

// SmallestFont returns the smallest measurement, the first one on ties, or
// nil when there are none.
func SmallestFont(measurements []domain.FontMeasurement) *domain.FontMeasurement {
	var smallest *domain.FontMeasurement
	for i := range measurements {
		if smallest == nil || measurements[i].FontSize < smallest.FontSize {
			smallest = &measurements[i]
		}
	}
	return smallest
}
