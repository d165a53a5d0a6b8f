package report

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/labelproof/artcheck/internal/domain"
	"github.com/labelproof/artcheck/internal/usecase"
)

// Minimum legible type sizes, in points.
const (
	usaMinFontSize = 4.5
	euMinFontSize  = 6.0
)

const maxListedFixes = 5

var whitespaceRun = regexp.MustCompile(`\s+`)

// Markdown renders the report as a markdown document.
func Markdown(r *domain.CheckReport, opts Options) string {
	var b strings.Builder

	b.WriteString("# Artwork Verification Report\n\n")
	fmt.Fprintf(&b, "*Generated: %s*\n\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	if opts.Version != "" {
		fmt.Fprintf(&b, "*Checker Version: %s*\n\n", opts.Version)
	}
	if r.ID != "" {
		fmt.Fprintf(&b, "*Report ID: %s*\n\n", r.ID)
	}

	writeHeader(&b, r, opts)
	writeFiles(&b, r)

	b.WriteString("## Verification\n")
	writeQuality(&b, r.QualityIssues)
	writeClaims(&b, r.ClaimRisks)
	writeConversions(&b, r.Conversions)
	writeMatches(&b, r.Findings)
	writeFonts(&b, r.Fonts)
	writeSummary(&b, r)
	writeNotes(&b, r)

	return b.String()
}

func writeHeader(b *strings.Builder, r *domain.CheckReport, opts Options) {
	name := opts.ProjectName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(r.CopySource), filepath.Ext(r.CopySource))
	}

	b.WriteString("## Project\n\n")
	b.WriteString("| Field | Value |\n|-------|-------|\n")
	fmt.Fprintf(b, "| Project Name | %s |\n", cell(name, 0))
	fmt.Fprintf(b, "| Round / Version | %s |\n", r.CreatedAt.Format("01.02.06"))
	fmt.Fprintf(b, "| Languages | %s |\n", strings.Join(languages(r.Findings), ", "))
	b.WriteString("\n")
}

func writeFiles(b *strings.Builder, r *domain.CheckReport) {
	copyStatus := domain.StatusOK
	if len(r.Warnings) > 0 {
		copyStatus = domain.StatusAttn
	}

	artStatus := domain.StatusOK
	if r.Extraction.Confidence <= 0.5 {
		artStatus = domain.StatusAttn
	}
	var artNote string
	switch {
	case r.Extraction.Method == domain.ExtractionFailed:
		artNote = "Text extraction failed - visual verification required"
	case r.Extraction.Confidence < 1:
		artNote = fmt.Sprintf("Extraction confidence: %.0f%%", r.Extraction.Confidence*100)
	default:
		artNote = r.Extraction.Method.String()
	}

	b.WriteString("## Files\n\n")
	b.WriteString("| Type | Filename | Status | Note |\n|------|----------|--------|------|\n")
	fmt.Fprintf(b, "| Copy Document | %s | %s | %d fields checked |\n",
		cell(filepath.Base(r.CopySource), 0), copyStatus.Emoji(), len(r.Findings))
	fmt.Fprintf(b, "| Artwork | %s | %s | %s |\n",
		cell(filepath.Base(r.ArtworkSource), 0), artStatus.Emoji(), cell(artNote, 0))
	b.WriteString("\n")
}

func writeQuality(b *strings.Builder, issues []domain.CopyQualityIssue) {
	b.WriteString("\n### A. Copy Quality\n\n")
	b.WriteString("| Language | Field | Issue Type | Recommendation | Status |\n")
	b.WriteString("|----------|-------|------------|----------------|--------|\n")

	if len(issues) == 0 {
		fmt.Fprintf(b, "| — | All | — | No copy quality issues detected | %s |\n", domain.StatusOK.Emoji())
		return
	}
	for _, issue := range issues {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			issue.Language,
			cell(issue.FieldName, 30),
			issue.IssueType,
			cell(issue.Description, 50),
			issue.Status.Emoji())
	}
}

func writeClaims(b *strings.Builder, risks []domain.ClaimRisk) {
	b.WriteString("\n### B. Claim Risk\n\n")
	b.WriteString("| Language | Claim | Risk Level | Rationale | Regions | Action | Status |\n")
	b.WriteString("|----------|-------|------------|-----------|---------|--------|--------|\n")

	if len(risks) == 0 {
		fmt.Fprintf(b, "| — | No claims detected | — | — | — | — | %s |\n", domain.StatusOK.Emoji())
		return
	}
	for _, risk := range risks {
		regions := risk.Regions
		if len(regions) > 3 {
			regions = regions[:3]
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			risk.Language,
			cell(risk.ClaimText, 40),
			risk.RiskLevel,
			cell(risk.Rationale, 40),
			strings.Join(regions, ", "),
			cell(risk.RecommendedAction, 0),
			risk.Status.Emoji())
	}
}

func writeConversions(b *strings.Builder, checks []domain.ConversionCheck) {
	b.WriteString("\n### C. Label-Claim Conversion\n\n")
	b.WriteString("| Source | Declared (mL) | Calculated (fl oz) | Declared (fl oz) | Difference | Status | Notes |\n")
	b.WriteString("|--------|---------------|--------------------|------------------|------------|--------|-------|\n")

	if len(checks) == 0 {
		fmt.Fprintf(b, "| — | — | — | — | — | %s | No conversions to check |\n", domain.StatusOK.Emoji())
		return
	}
	for _, c := range checks {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			cell(c.FieldName, 30),
			number(c.DeclaredML, 1),
			number(c.CalculatedFlOz, 2),
			number(c.DeclaredFlOz, 2),
			number(c.Difference, 3),
			c.Status.Emoji(),
			cell(c.Notes, 60))
	}
}

type findingGroup struct {
	panel    string
	language domain.Language
	findings []domain.MatchFinding
}

// groupFindings groups by (panel, language) in first-seen order.
func groupFindings(findings []domain.MatchFinding) []*findingGroup {
	var groups []*findingGroup
	index := make(map[string]*findingGroup)
	for _, f := range findings {
		key := f.Panel + "\x00" + string(f.Language)
		g, ok := index[key]
		if !ok {
			g = &findingGroup{panel: f.Panel, language: f.Language}
			index[key] = g
			groups = append(groups, g)
		}
		g.findings = append(g.findings, f)
	}
	return groups
}

func writeMatches(b *strings.Builder, findings []domain.MatchFinding) {
	b.WriteString("\n### D. Artwork Match\n")

	if len(findings) == 0 {
		b.WriteString("\n*No copy fields were checked.*\n")
		return
	}

	for _, g := range groupFindings(findings) {
		panel := g.panel
		if panel == "" {
			panel = "Unassigned"
		}
		fmt.Fprintf(b, "\n**%s – %s**\n\n", cell(panel, 0), g.language)
		b.WriteString("| Field | Copy Doc Value | Artwork Value | Score | Match | Notes |\n")
		b.WriteString("|-------|----------------|---------------|-------|-------|-------|\n")

		for _, f := range g.findings {
			artwork := "NOT FOUND"
			if f.ArtworkValue != nil {
				artwork = *f.ArtworkValue
			}
			notes := f.Notes
			if f.RequiresVisualCheck {
				notes = append(append([]string(nil), notes...), "Zoom: "+strings.Join(f.VisualCheckReasons, ", "))
			}
			fmt.Fprintf(b, "| %s | %s | %s | %.1f%% | %s | %s |\n",
				cell(f.FieldName, 25),
				cell(f.CopyValue, 40),
				cell(artwork, 40),
				f.SimilarityScore,
				f.Status.Label(),
				cell(strings.Join(notes, "; "), 60))
		}
	}
}

func writeFonts(b *strings.Builder, fonts []domain.FontMeasurement) {
	b.WriteString("\n### E. Font Size\n\n")
	b.WriteString("| Element | Size (pt) | Requirement | Status |\n")
	b.WriteString("|---------|-----------|-------------|--------|\n")

	smallest := usecase.SmallestFont(fonts)
	if smallest == nil {
		fmt.Fprintf(b, "| — | — | — | %s Unable to extract font metadata |\n", domain.StatusTBD.Emoji())
		return
	}

	size := strconv.FormatFloat(smallest.FontSize, 'f', -1, 64)
	fmt.Fprintf(b, "| Smallest text: \"%s\" (page %d) | %s | USA ≥%.1fpt | %s |\n",
		cell(smallest.SampleText, 20), smallest.PageNumber, size, usaMinFontSize,
		passFail(smallest.FontSize >= usaMinFontSize).Emoji())
	fmt.Fprintf(b, "| (same) | %s | EU ≥%.1fpt | %s |\n",
		size, euMinFontSize, passFail(smallest.FontSize >= euMinFontSize).Emoji())
}

func writeSummary(b *strings.Builder, r *domain.CheckReport) {
	s := r.Summary

	var score float64
	if s.Total > 0 {
		score = float64(s.ExactMatches) / float64(s.Total) * 100
	}

	qualityFailed := 0
	for _, issue := range r.QualityIssues {
		if issue.Status == domain.StatusFail {
			qualityFailed++
		}
	}

	b.WriteString("\n### F. Score & Summary\n\n")
	b.WriteString("| Area | Checks | Matches | Score % | Notes |\n")
	b.WriteString("|------|--------|---------|---------|-------|\n")
	fmt.Fprintf(b, "| Artwork Match | %d | %d | %.1f%% | %d near, %d mismatched, %d missing, %d unverified |\n",
		s.Total, s.ExactMatches, score, s.NearMatches, s.Mismatches, s.Missing, s.RequiresVerification)
	fmt.Fprintf(b, "| Visual Confirmation | %d | — | — | %d pending |\n", s.VisualChecks, s.PendingVisual)
	fmt.Fprintf(b, "| Copy Quality | %d | — | — | %d failing |\n", len(r.QualityIssues), qualityFailed)

	b.WriteString("\n**Top Fixes (" + domain.StatusFail.Emoji() + "):**\n\n")
	writeFixList(b, r.Findings, domain.StatusFail, func(f domain.MatchFinding) string {
		return f.Classification.String()
	})

	b.WriteString("\n**Attention (" + domain.StatusAttn.Emoji() + "):**\n\n")
	writeFixList(b, r.Findings, domain.StatusAttn, func(f domain.MatchFinding) string {
		if len(f.Notes) == 0 {
			return f.Classification.String()
		}
		return f.Notes[0]
	})
}

func writeFixList(b *strings.Builder, findings []domain.MatchFinding, status domain.StatusCode, detail func(domain.MatchFinding) string) {
	listed := 0
	for _, f := range findings {
		if f.Status != status {
			continue
		}
		if listed == maxListedFixes {
			break
		}
		fmt.Fprintf(b, "- %s (%s): %s\n", cell(f.FieldName, 0), f.Language, cell(detail(f), 80))
		listed++
	}
	if listed == 0 {
		b.WriteString("- None\n")
	}
}

func writeNotes(b *strings.Builder, r *domain.CheckReport) {
	b.WriteString("\n## Special Notes\n\n")
	b.WriteString("| Constraint | Applies To | Notes |\n|------------|------------|-------|\n")
	b.WriteString("| Text must match character-for-character | All panels | Including punctuation, case, diacritics |\n")

	if r.Extraction.Method == domain.ExtractionFailed {
		b.WriteString("| Visual verification required | All fields | Text extraction failed (outlined fonts likely) |\n")
	}
	if r.Exclusion.Excluded > 0 {
		fmt.Fprintf(b, "| Production metadata ignored | Artwork | %d of %d fragments excluded before matching |\n",
			r.Exclusion.Excluded, r.Exclusion.Total)
	}
	if n := len(r.Legacy) + len(r.Strikethrough); n > 0 {
		fmt.Fprintf(b, "| Retired copy not checked | Copy document | %d legacy, %d strikethrough |\n",
			len(r.Legacy), len(r.Strikethrough))
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(b, "| Warning | — | %s |\n", cell(w, 0))
	}
}

func languages(findings []domain.MatchFinding) []string {
	var out []string
	seen := make(map[domain.Language]bool)
	for _, f := range findings {
		if f.Language != "" && !seen[f.Language] {
			seen[f.Language] = true
			out = append(out, string(f.Language))
		}
	}
	if len(out) == 0 {
		return []string{string(domain.LanguageEN)}
	}
	return out
}

func passFail(ok bool) domain.StatusCode {
	if ok {
		return domain.StatusOK
	}
	return domain.StatusFail
}

func number(v *float64, precision int) string {
	if v == nil {
		return "—"
	}
	return strconv.FormatFloat(*v, 'f', precision, 64)
}

// cell makes text safe inside a markdown table cell and truncates it to max
// runes when max > 0.
func cell(text string, max int) string {
	text = strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
	if max > 0 {
		if r := []rune(text); len(r) > max {
			text = string(r[:max-3]) + "..."
		}
	}
	return strings.ReplaceAll(text, "|", `\|`)
}
