package extraction

import (
	"fmt"
	"strings"

	"github.com/labelproof/artcheck/internal/domain"
)

// ExtractResponse is the extraction service's response body.
type ExtractResponse struct {
	Method        string        `json:"method"`
	Pages         int           `json:"pages"`
	PagesWithText int           `json:"pagesWithText"`
	Fragments     []FragmentDTO `json:"fragments"`
	Warnings      []string      `json:"warnings"`
}

// FragmentDTO is one text span as reported by the service.
type FragmentDTO struct {
	Text       string    `json:"text"`
	Page       int       `json:"page"`
	BBox       []float64 `json:"bbox,omitempty"`
	FontName   string    `json:"fontName,omitempty"`
	FontSize   float64   `json:"fontSize,omitempty"`
	Confidence float64   `json:"confidence"`
	Rotation   float64   `json:"rotation,omitempty"`
}

const noTextWarning = "No text extracted - PDF may have outlined fonts"

// MapToExtraction converts the service response to our domain extraction.
// Blank fragments are dropped; a response without text is FAILED.
func MapToExtraction(name string, resp *ExtractResponse) *domain.ArtworkExtraction {
	warnings := append([]string(nil), resp.Warnings...)

	method := domain.ExtractionLiveText
	if resp.Method != "" {
		if err := method.UnmarshalText([]byte(strings.ToUpper(resp.Method))); err != nil {
			warnings = append(warnings, fmt.Sprintf("Unknown extraction method %q treated as LIVE_TEXT", resp.Method))
			method = domain.ExtractionLiveText
		}
	}

	fragments := make([]domain.TextFragment, 0, len(resp.Fragments))
	for _, dto := range resp.Fragments {
		if strings.TrimSpace(dto.Text) == "" {
			continue
		}
		fragments = append(fragments, mapFragment(dto, method))
	}

	pagesWithText := resp.PagesWithText
	if pagesWithText == 0 {
		pagesWithText = countPages(fragments)
	}

	extraction := &domain.ArtworkExtraction{
		SourceName:     name,
		Fragments:      fragments,
		PagesProcessed: resp.Pages,
		PagesWithText:  pagesWithText,
		Warnings:       warnings,
	}

	if method == domain.ExtractionFailed || len(fragments) == 0 {
		extraction.Summary = domain.ExtractionSummary{Method: domain.ExtractionFailed}
		if len(fragments) == 0 {
			extraction.Warnings = append(extraction.Warnings, noTextWarning)
		}
		return extraction
	}

	confidence := 1.0
	if resp.Pages > 0 {
		confidence = float64(pagesWithText) / float64(resp.Pages)
		if confidence > 1 {
			confidence = 1
		}
	}
	extraction.Summary = domain.ExtractionSummary{
		Method:        method,
		Confidence:    confidence,
		FragmentCount: len(fragments),
	}
	return extraction
}

func mapFragment(dto FragmentDTO, method domain.ExtractionMethod) domain.TextFragment {
	frag := domain.TextFragment{
		Text:             dto.Text,
		PageNumber:       dto.Page,
		FontName:         dto.FontName,
		FontSize:         dto.FontSize,
		ExtractionMethod: method,
		Confidence:       clamp01(dto.Confidence),
		RotationDegrees:  dto.Rotation,
	}
	if frag.PageNumber < 1 {
		frag.PageNumber = 1
	}
	if len(dto.BBox) == 4 {
		frag.BoundingBox = &domain.BoundingBox{X0: dto.BBox[0], Y0: dto.BBox[1], X1: dto.BBox[2], Y1: dto.BBox[3]}
	}
	return frag
}

func countPages(fragments []domain.TextFragment) int {
	pages := make(map[int]bool)
	for _, f := range fragments {
		pages[f.PageNumber] = true
	}
	return len(pages)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
