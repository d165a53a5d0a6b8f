package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/labelproof/artcheck/internal/domain"
)

const (
	// plainTextConfidence is used when only unpositioned text could be read.
	plainTextConfidence = 0.7
	minPlainTextLength  = 10
	defaultMaxPages     = 50
	// gapFactor splits a row into fragments when the gap between glyphs
	// exceeds this multiple of the font size.
	gapFactor = 1.5
	// spaceFactor inserts a space for gaps wider than this multiple of the font size.
	spaceFactor = 0.15
)

const (
	warnNoText       = "No text extracted - PDF may have outlined fonts"
	warnAIExtracted  = "AI file extracted via PDF compatibility"
	warnAINoCompat   = "AI file may not have PDF compatibility enabled"
	warnPlainTextFmt = "Positioned text unavailable; used plain text from %d page(s)"
)

// Extractor reads live text from PDF and PDF-compatible Illustrator files.
type Extractor struct {
	maxPages int
	logger   *zap.Logger
}

// NewExtractor creates an extractor. maxPages <= 0 uses the default limit.
func NewExtractor(maxPages int, logger *zap.Logger) *Extractor {
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{maxPages: maxPages, logger: logger.With(zap.String("component", "pdftext"))}
}

// Extract returns positioned text fragments for every page. Unreadable or
// text-free artwork yields a FAILED extraction with warnings, not an error.
func (e *Extractor) Extract(ctx context.Context, name string, content []byte) (*domain.ArtworkExtraction, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".pdf" && ext != ".ai" {
		return nil, fmt.Errorf("%w: %q is not a PDF or AI file", domain.ErrUnsupportedFormat, name)
	}
	isAI := ext == ".ai"

	result := &domain.ArtworkExtraction{
		SourceName: name,
		Summary:    domain.ExtractionSummary{Method: domain.ExtractionFailed},
		Fragments:  []domain.TextFragment{},
	}

	reader, err := openReader(content)
	if err != nil {
		e.logger.Warn("unable to open artwork", zap.String("artwork", name), zap.Error(err))
		result.Warnings = append(result.Warnings, fmt.Sprintf("Unable to read PDF structure: %v", err))
		if isAI {
			result.Warnings = append(result.Warnings, warnAINoCompat)
		}
		result.Warnings = append(result.Warnings, warnNoText)
		return result, nil
	}

	pages := reader.NumPage()
	if pages > e.maxPages {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Only the first %d of %d pages were processed", e.maxPages, pages))
		pages = e.maxPages
	}
	result.PagesProcessed = pages

	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Page %d: No extractable text found", i))
			continue
		}
		frags, err := pageFragments(page, i)
		if err != nil {
			e.logger.Debug("positioned text failed", zap.Int("page", i), zap.Error(err))
		}
		if len(frags) == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Page %d: No extractable text found", i))
			continue
		}
		result.PagesWithText++
		result.Fragments = append(result.Fragments, frags...)
	}

	confidence := 0.0
	if pages > 0 {
		confidence = float64(result.PagesWithText) / float64(pages)
	}

	if len(result.Fragments) == 0 {
		if plain := plainTextFragments(reader, pages); len(plain) > 0 {
			result.Fragments = plain
			result.PagesWithText = countPages(plain)
			result.Warnings = append(result.Warnings, fmt.Sprintf(warnPlainTextFmt, result.PagesWithText))
			confidence = plainTextConfidence
		}
	}

	if len(result.Fragments) == 0 {
		if isAI {
			result.Warnings = append(result.Warnings, warnAINoCompat)
		}
		result.Warnings = append(result.Warnings, warnNoText)
		e.logger.Warn("no text extracted", zap.String("artwork", name), zap.Int("pages", pages))
		return result, nil
	}

	method := domain.ExtractionLiveText
	if isAI {
		method = domain.ExtractionAIPDFCompatible
		result.Warnings = append([]string{warnAIExtracted}, result.Warnings...)
	}
	for i := range result.Fragments {
		result.Fragments[i].ExtractionMethod = method
	}
	result.Summary = domain.ExtractionSummary{
		Method:        method,
		Confidence:    confidence,
		FragmentCount: len(result.Fragments),
	}

	e.logger.Info("artwork text extracted",
		zap.String("artwork", name),
		zap.Int("pages", pages),
		zap.Int("pages_with_text", result.PagesWithText),
		zap.Int("fragments", len(result.Fragments)))
	return result, nil
}

func openReader(content []byte) (reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			reader = nil
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()
	return pdf.NewReader(bytes.NewReader(content), int64(len(content)))
}

// pageFragments reads rows of positioned glyphs. The PDF library panics on
// some malformed content streams, so panics become errors here.
func pageFragments(page pdf.Page, pageNumber int) (frags []domain.TextFragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			frags = nil
			err = fmt.Errorf("page %d: %v", pageNumber, r)
		}
	}()

	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		frags = append(frags, mergeRow(row.Content, pageNumber)...)
	}
	return frags, nil
}

// mergeRow joins the glyphs of one text row into fragments, starting a new
// fragment on a font change or a wide horizontal gap.
func mergeRow(glyphs []pdf.Text, pageNumber int) []domain.TextFragment {
	var (
		out     []domain.TextFragment
		text    strings.Builder
		first   pdf.Text
		last    pdf.Text
		started bool
	)

	flush := func() {
		if !started {
			return
		}
		s := strings.Join(strings.Fields(text.String()), " ")
		if s != "" {
			out = append(out, domain.TextFragment{
				Text:       s,
				PageNumber: pageNumber,
				BoundingBox: &domain.BoundingBox{
					X0: round2(first.X),
					Y0: round2(first.Y),
					X1: round2(last.X + last.W),
					Y1: round2(first.Y + first.FontSize),
				},
				FontName:   cleanFontName(first.Font),
				FontSize:   round2(first.FontSize),
				Confidence: 1.0,
			})
		}
		text.Reset()
		started = false
	}

	for _, g := range glyphs {
		if started {
			gap := g.X - (last.X + last.W)
			size := math.Max(last.FontSize, 1)
			switch {
			case g.Font != first.Font || math.Abs(g.FontSize-first.FontSize) > 0.01 || gap > size*gapFactor:
				flush()
			case gap > size*spaceFactor:
				text.WriteByte(' ')
			}
		}
		if !started {
			first = g
			started = true
		}
		text.WriteString(g.S)
		last = g
	}
	flush()
	return out
}

// plainTextFragments falls back to unpositioned text, one fragment per line.
func plainTextFragments(reader *pdf.Reader, pages int) []domain.TextFragment {
	var out []domain.TextFragment
	for i := 1; i <= pages; i++ {
		text, err := plainText(reader.Page(i))
		if err != nil || len(strings.TrimSpace(text)) < minPlainTextLength {
			continue
		}
		for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
			line = strings.Join(strings.Fields(line), " ")
			if line == "" {
				continue
			}
			out = append(out, domain.TextFragment{Text: line, PageNumber: i, Confidence: plainTextConfidence})
		}
	}
	return out
}

func plainText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plain text: %v", r)
		}
	}()
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// cleanFontName drops the six-letter subset prefix ("ABCDEF+Helvetica").
func cleanFontName(name string) string {
	if len(name) > 7 && name[6] == '+' && strings.ToUpper(name[:6]) == name[:6] {
		return name[7:]
	}
	return name
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func countPages(fragments []domain.TextFragment) int {
	pages := make(map[int]bool)
	for _, f := range fragments {
		pages[f.PageNumber] = true
	}
	return len(pages)
}
