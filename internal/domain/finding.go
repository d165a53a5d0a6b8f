package domain

import "time"

// MatchFinding is the engine's result for exactly one copy field.
// MatchedFragments point into the caller's fragment slice and must not be mutated.
type MatchFinding struct {
	FieldName           string              `json:"fieldName" yaml:"fieldName"`
	Panel               string              `json:"panel" yaml:"panel"`
	Language            Language            `json:"language" yaml:"language"`
	CopyValue           string              `json:"copyValue" yaml:"copyValue"`
	ArtworkValue        *string             `json:"artworkValue" yaml:"artworkValue"`
	Classification      MatchClassification `json:"matchClassification" yaml:"matchClassification"`
	SimilarityScore     float64             `json:"similarityScore" yaml:"similarityScore"`
	Status              StatusCode          `json:"status" yaml:"status"`
	Notes               []string            `json:"notes" yaml:"notes"`
	RequiresVisualCheck bool                `json:"requiresVisualCheck" yaml:"requiresVisualCheck"`
	VisualCheckReasons  []string            `json:"visualCheckReasons" yaml:"visualCheckReasons"`
	MatchedFragments    []*TextFragment     `json:"matchedFragments" yaml:"matchedFragments"`
}

// Pages lists the distinct pages the matched evidence sits on, in evidence order.
func (f *MatchFinding) Pages() []int {
	var pages []int
	seen := make(map[int]bool)
	for _, frag := range f.MatchedFragments {
		if !seen[frag.PageNumber] {
			seen[frag.PageNumber] = true
			pages = append(pages, frag.PageNumber)
		}
	}
	return pages
}

// ConversionCheck is the metric/imperial cross-check for one fill weight field.
type ConversionCheck struct {
	FieldName      string     `json:"fieldName" yaml:"fieldName"`
	Panel          string     `json:"panel" yaml:"panel"`
	Language       Language   `json:"language" yaml:"language"`
	SourceText     string     `json:"sourceText" yaml:"sourceText"`
	DeclaredML     *float64   `json:"declaredMl,omitempty" yaml:"declaredMl,omitempty"`
	DeclaredFlOz   *float64   `json:"declaredFlOz,omitempty" yaml:"declaredFlOz,omitempty"`
	CalculatedFlOz *float64   `json:"calculatedFlOz,omitempty" yaml:"calculatedFlOz,omitempty"`
	Difference     *float64   `json:"difference,omitempty" yaml:"difference,omitempty"`
	Skipped        bool       `json:"skipped" yaml:"skipped"`
	Status         StatusCode `json:"status" yaml:"status"`
	Notes          string     `json:"notes" yaml:"notes"`
}

// QualityIssueType names a copy quality rule.
type QualityIssueType string

const (
	IssueCapitalization     QualityIssueType = "capitalization"
	IssuePunctuation        QualityIssueType = "punctuation"
	IssueFormatting         QualityIssueType = "formatting"
	IssueLegacyArrow        QualityIssueType = "legacy_arrow"
	IssueInstructionalNote  QualityIssueType = "instructional_note"
	IssueINCICapitalization QualityIssueType = "inci_capitalization"
)

// CopyQualityIssue is one problem found in the copy text itself.
type CopyQualityIssue struct {
	FieldName   string           `json:"fieldName" yaml:"fieldName"`
	Panel       string           `json:"panel" yaml:"panel"`
	Language    Language         `json:"language" yaml:"language"`
	IssueType   QualityIssueType `json:"issueType" yaml:"issueType"`
	Description string           `json:"description" yaml:"description"`
	Text        string           `json:"text" yaml:"text"`
	Status      StatusCode       `json:"status" yaml:"status"`
}

// ClaimRisk grades one claim line.
type ClaimRisk struct {
	FieldName         string     `json:"fieldName" yaml:"fieldName"`
	Panel             string     `json:"panel" yaml:"panel"`
	Language          Language   `json:"language" yaml:"language"`
	ClaimText         string     `json:"claimText" yaml:"claimText"`
	RiskLevel         RiskLevel  `json:"riskLevel" yaml:"riskLevel"`
	MatchedTerms      []string   `json:"matchedTerms,omitempty" yaml:"matchedTerms,omitempty"`
	Rationale         string     `json:"rationale" yaml:"rationale"`
	Regions           []string   `json:"regions,omitempty" yaml:"regions,omitempty"`
	RecommendedAction string     `json:"recommendedAction" yaml:"recommendedAction"`
	Status            StatusCode `json:"status" yaml:"status"`
}

// ExclusionSummary counts artwork fragments dropped before matching.
type ExclusionSummary struct {
	Total    int            `json:"total" yaml:"total"`
	Kept     int            `json:"kept" yaml:"kept"`
	Excluded int            `json:"excluded" yaml:"excluded"`
	ByReason map[string]int `json:"byReason,omitempty" yaml:"byReason,omitempty"`
}

// MatchSummary tallies findings by classification and status.
type MatchSummary struct {
	Total                int `json:"total" yaml:"total"`
	ExactMatches         int `json:"exactMatches" yaml:"exactMatches"`
	NearMatches          int `json:"nearMatches" yaml:"nearMatches"`
	Mismatches           int `json:"mismatches" yaml:"mismatches"`
	Missing              int `json:"missing" yaml:"missing"`
	RequiresVerification int `json:"requiresVerification" yaml:"requiresVerification"`
	OK                   int `json:"ok" yaml:"ok"`
	Attention            int `json:"attention" yaml:"attention"`
	Failed               int `json:"failed" yaml:"failed"`
	PendingVisual        int `json:"pendingVisual" yaml:"pendingVisual"`
	VisualChecks         int `json:"visualChecks" yaml:"visualChecks"`
}

// Add counts one finding.
func (s *MatchSummary) Add(f *MatchFinding) {
	s.Total++
	switch f.Classification {
	case ExactMatch:
		s.ExactMatches++
	case NearMatch:
		s.NearMatches++
	case Mismatch:
		s.Mismatches++
	case MissingInArtwork:
		s.Missing++
	case RequiresVerification:
		s.RequiresVerification++
	}
	switch f.Status {
	case StatusOK:
		s.OK++
	case StatusAttn:
		s.Attention++
	case StatusFail:
		s.Failed++
	case StatusTBD:
		s.PendingVisual++
	case StatusFYI:
	}
	if f.RequiresVisualCheck {
		s.VisualChecks++
	}
}

// CheckRequest carries everything needed for one artwork check.
type CheckRequest struct {
	CopySource    string            `json:"copySource,omitempty" yaml:"copySource,omitempty"`
	ArtworkSource string            `json:"artworkSource,omitempty" yaml:"artworkSource,omitempty"`
	CopyFields    []CopyField       `json:"copyFields" yaml:"copyFields" binding:"required"`
	Fragments     []TextFragment    `json:"fragments" yaml:"fragments"`
	Extraction    ExtractionSummary `json:"extraction" yaml:"extraction"`
	Warnings      []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// CheckReport is the complete result of an artwork check.
type CheckReport struct {
	ID            string             `json:"id" yaml:"id"`
	CreatedAt     time.Time          `json:"createdAt" yaml:"createdAt"`
	Source        string             `json:"source" yaml:"source"` // "computed" or "cache"
	CopySource    string             `json:"copySource,omitempty" yaml:"copySource,omitempty"`
	ArtworkSource string             `json:"artworkSource,omitempty" yaml:"artworkSource,omitempty"`
	Extraction    ExtractionSummary  `json:"extraction" yaml:"extraction"`
	Exclusion     ExclusionSummary   `json:"exclusion" yaml:"exclusion"`
	Findings      []MatchFinding     `json:"findings" yaml:"findings"`
	Conversions   []ConversionCheck  `json:"conversions" yaml:"conversions"`
	QualityIssues []CopyQualityIssue `json:"qualityIssues" yaml:"qualityIssues"`
	ClaimRisks    []ClaimRisk        `json:"claimRisks" yaml:"claimRisks"`
	Fonts         []FontMeasurement  `json:"fonts" yaml:"fonts"`
	Legacy        []CopyField        `json:"legacy,omitempty" yaml:"legacy,omitempty"`
	Strikethrough []CopyField        `json:"strikethrough,omitempty" yaml:"strikethrough,omitempty"`
	Summary       MatchSummary       `json:"summary" yaml:"summary"`
	Warnings      []string           `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// HasFailures reports whether any finding or conversion check failed.
func (r *CheckReport) HasFailures() bool {
	if r.Summary.Failed > 0 {
		return true
	}
	for _, c := range r.Conversions {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}
