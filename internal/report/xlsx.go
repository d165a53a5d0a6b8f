package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/labelproof/artcheck/internal/domain"
)

const (
	findingsSheet    = "Findings"
	conversionsSheet = "Conversions"
	qualitySheet     = "Copy Quality"
	claimsSheet      = "Claim Risk"
	fontsSheet       = "Fonts"
)

// WriteXLSX exports the report as a workbook with one sheet per table.
func WriteXLSX(w io.Writer, r *domain.CheckReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), findingsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, name := range []string{conversionsSheet, qualitySheet, claimsSheet, fontsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
	}

	sheets := []struct {
		name   string
		export func() error
	}{
		{findingsSheet, func() error { return exportFindings(f, r.Findings) }},
		{conversionsSheet, func() error { return exportConversions(f, r.Conversions) }},
		{qualitySheet, func() error { return exportQuality(f, r.QualityIssues) }},
		{claimsSheet, func() error { return exportClaims(f, r.ClaimRisks) }},
		{fontsSheet, func() error { return exportFonts(f, r.Fonts) }},
	}
	for _, s := range sheets {
		if err := s.export(); err != nil {
			return fmt.Errorf("failed to fill sheet %q: %w", s.name, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// sheetWriter fills one sheet row by row and keeps the first cell error.
// Later rows are dropped once a write has failed.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func newSheetWriter(f *excelize.File, sheet string, headers ...string) *sheetWriter {
	sw := &sheetWriter{f: f, sheet: sheet}
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	sw.add(values...)
	return sw
}

func (sw *sheetWriter) add(values ...any) {
	if sw.err != nil {
		return
	}
	sw.row++
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, sw.row)
		if err == nil {
			err = sw.f.SetCellValue(sw.sheet, cell, v)
		}
		if err != nil {
			sw.err = fmt.Errorf("row %d column %d: %w", sw.row, i+1, err)
			return
		}
	}
}

func exportFindings(f *excelize.File, findings []domain.MatchFinding) error {
	sw := newSheetWriter(f, findingsSheet,
		"field", "panel", "language", "copy_value", "artwork_value",
		"classification", "similarity", "status", "requires_visual_check",
		"visual_check_reasons", "pages", "notes")

	for _, finding := range findings {
		pages := make([]string, 0, len(finding.MatchedFragments))
		for _, p := range finding.Pages() {
			pages = append(pages, fmt.Sprint(p))
		}
		sw.add(
			finding.FieldName,
			finding.Panel,
			string(finding.Language),
			finding.CopyValue,
			derefString(finding.ArtworkValue),
			finding.Classification.String(),
			finding.SimilarityScore,
			finding.Status.String(),
			finding.RequiresVisualCheck,
			strings.Join(finding.VisualCheckReasons, "; "),
			strings.Join(pages, ","),
			strings.Join(finding.Notes, "; "),
		)
	}
	return sw.err
}

func exportConversions(f *excelize.File, checks []domain.ConversionCheck) error {
	sw := newSheetWriter(f, conversionsSheet,
		"field", "panel", "language", "source_text", "declared_ml",
		"calculated_floz", "declared_floz", "difference", "status", "notes")

	for _, c := range checks {
		sw.add(
			c.FieldName,
			c.Panel,
			string(c.Language),
			c.SourceText,
			derefFloat(c.DeclaredML),
			derefFloat(c.CalculatedFlOz),
			derefFloat(c.DeclaredFlOz),
			derefFloat(c.Difference),
			c.Status.String(),
			c.Notes,
		)
	}
	return sw.err
}

func exportQuality(f *excelize.File, issues []domain.CopyQualityIssue) error {
	sw := newSheetWriter(f, qualitySheet,
		"field", "panel", "language", "issue_type", "description", "text", "status")

	for _, issue := range issues {
		sw.add(
			issue.FieldName,
			issue.Panel,
			string(issue.Language),
			string(issue.IssueType),
			issue.Description,
			issue.Text,
			issue.Status.String(),
		)
	}
	return sw.err
}

func exportClaims(f *excelize.File, risks []domain.ClaimRisk) error {
	sw := newSheetWriter(f, claimsSheet,
		"field", "panel", "language", "claim", "risk_level", "matched_terms",
		"rationale", "regions", "recommended_action", "status")

	for _, risk := range risks {
		sw.add(
			risk.FieldName,
			risk.Panel,
			string(risk.Language),
			risk.ClaimText,
			risk.RiskLevel.String(),
			strings.Join(risk.MatchedTerms, ", "),
			risk.Rationale,
			strings.Join(risk.Regions, ", "),
			risk.RecommendedAction,
			risk.Status.String(),
		)
	}
	return sw.err
}

func exportFonts(f *excelize.File, fonts []domain.FontMeasurement) error {
	sw := newSheetWriter(f, fontsSheet, "page", "font", "size_pt", "sample_text")

	for _, m := range fonts {
		sw.add(m.PageNumber, m.FontName, m.FontSize, m.SampleText)
	}
	return sw.err
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
