package usecase

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/labelproof/artcheck/internal/domain"
)

// Default thresholds, in percent, and sliding window bounds.
const (
	defaultExactThreshold    = 100.0
	defaultNearThreshold     = 95.0
	defaultMismatchThreshold = 95.0
	defaultMinWindow         = 2
	defaultMaxWindow         = 5
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	ExactThreshold    float64
	NearThreshold     float64
	MismatchThreshold float64
	MinWindow         int
	MaxWindow         int
}

// MatchingService classifies copy fields against artwork fragments.
// It holds no per-run state, so one instance may serve concurrent callers.
type MatchingService struct {
	exactThreshold    float64
	nearThreshold     float64
	mismatchThreshold float64
	minWindow         int
	maxWindow         int
	zoom              *ZoomDetector
	logger            *zap.Logger
}

// DefaultMatchConfig returns the 100/95/95 thresholds and 2..5 fragment windows.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		ExactThreshold:    defaultExactThreshold,
		NearThreshold:     defaultNearThreshold,
		MismatchThreshold: defaultMismatchThreshold,
		MinWindow:         defaultMinWindow,
		MaxWindow:         defaultMaxWindow,
	}
}

// NewMatchingService creates a new matching service with the given configuration.
// A zero MatchConfig means DefaultMatchConfig; otherwise thresholds are used as
// given, including 0. Window bounds below 1 fall back to 2..5.
func NewMatchingService(config MatchConfig, zoom *ZoomDetector, logger *zap.Logger) *MatchingService {
	if config == (MatchConfig{}) {
		config = DefaultMatchConfig()
	}

	minWindow := config.MinWindow
	if minWindow <= 0 {
		minWindow = defaultMinWindow
	}
	maxWindow := config.MaxWindow
	if maxWindow <= 0 {
		maxWindow = defaultMaxWindow
	}
	if maxWindow < minWindow {
		maxWindow = minWindow
	}

	if zoom == nil {
		zoom, _ = NewZoomDetector(DefaultZoomConfig())
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MatchingService{
		exactThreshold:    config.ExactThreshold,
		nearThreshold:     config.NearThreshold,
		mismatchThreshold: config.MismatchThreshold,
		minWindow:         minWindow,
		maxWindow:         maxWindow,
		zoom:              zoom,
		logger:            logger,
	}
}

// candidate is one comparable unit of artwork text: a single fragment or a
// window of consecutive fragments.
type candidate struct {
	text  string
	chars []string
	frags []*domain.TextFragment
}

// fragmentIndex is built once per run and shared read-only by every field.
type fragmentIndex struct {
	exact      map[string][]*domain.TextFragment
	candidates []candidate
}

// buildIndex normalizes every fragment once. Candidates are stored in scan
// order: single fragments first, then windows by size, then by start position.
func (s *MatchingService) buildIndex(fragments []domain.TextFragment) *fragmentIndex {
	normalized := make([]string, len(fragments))
	idx := &fragmentIndex{exact: make(map[string][]*domain.TextFragment)}

	for i := range fragments {
		norm := Normalize(fragments[i].Text)
		normalized[i] = norm
		if norm == "" {
			continue
		}
		frag := &fragments[i]
		idx.exact[norm] = append(idx.exact[norm], frag)
		idx.candidates = append(idx.candidates, candidate{
			text:  norm,
			chars: splitChars(norm),
			frags: []*domain.TextFragment{frag},
		})
	}

	for size := s.minWindow; size <= s.maxWindow && size <= len(fragments); size++ {
		if size < 2 {
			continue
		}
		for start := 0; start+size <= len(fragments); start++ {
			text := joinNonEmpty(normalized[start : start+size])
			if text == "" {
				continue
			}
			frags := make([]*domain.TextFragment, 0, size)
			for i := start; i < start+size; i++ {
				frags = append(frags, &fragments[i])
			}
			idx.candidates = append(idx.candidates, candidate{
				text:  text,
				chars: splitChars(text),
				frags: frags,
			})
		}
	}

	return idx
}

func joinNonEmpty(parts []string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}

// MatchFields produces exactly one finding per copy field, in input order.
// Fragments are borrowed: findings point into the fragments slice, which the
// caller must not modify while findings are in use.
func (s *MatchingService) MatchFields(
	fields []domain.CopyField,
	fragments []domain.TextFragment,
	extraction domain.ExtractionSummary,
) []domain.MatchFinding {
	findings := make([]domain.MatchFinding, 0, len(fields))

	if extraction.Method == domain.ExtractionFailed {
		s.logger.Warn("artwork extraction failed; all fields require verification",
			zap.Int("fields", len(fields)))
		for i := range fields {
			findings = append(findings, extractionFailedFinding(&fields[i]))
		}
		return findings
	}

	idx := s.buildIndex(fragments)
	s.logger.Debug("built artwork index",
		zap.Int("fragments", len(fragments)),
		zap.Int("distinct_texts", len(idx.exact)),
		zap.Int("candidates", len(idx.candidates)))

	var summary domain.MatchSummary
	for i := range fields {
		finding := s.safeMatchField(&fields[i], idx, extraction)
		summary.Add(&finding)
		findings = append(findings, finding)
	}

	s.logger.Info("matched copy fields",
		zap.Int("fields", summary.Total),
		zap.Int("exact", summary.ExactMatches),
		zap.Int("near", summary.NearMatches),
		zap.Int("mismatch", summary.Mismatches),
		zap.Int("missing", summary.Missing),
		zap.Int("requires_verification", summary.RequiresVerification),
		zap.Int("visual_checks", summary.VisualChecks))

	return findings
}

// safeMatchField converts a panic while matching one field into a finding so
// the rest of the batch still completes.
func (s *MatchingService) safeMatchField(
	field *domain.CopyField,
	idx *fragmentIndex,
	extraction domain.ExtractionSummary,
) (finding domain.MatchFinding) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("matching failed for field",
				zap.String("field", field.FieldName),
				zap.Any("panic", r))
			finding = newFinding(field)
			finding.Classification = domain.RequiresVerification
			finding.Status = domain.StatusTBD
			finding.Notes = append(finding.Notes, fmt.Sprintf("Matching error: %v - verify manually", r))
			finding.RequiresVisualCheck = true
			finding.VisualCheckReasons = append(finding.VisualCheckReasons, "Automatic matching failed")
		}
	}()
	return s.matchField(field, idx, extraction)
}

func (s *MatchingService) matchField(
	field *domain.CopyField,
	idx *fragmentIndex,
	extraction domain.ExtractionSummary,
) domain.MatchFinding {
	finding := newFinding(field)
	normalized := Normalize(field.Text)

	switch {
	case normalized == "":
		finding.Classification = domain.MissingInArtwork
		finding.Notes = append(finding.Notes, "Copy text is empty")

	case len(idx.exact[normalized]) > 0:
		frags := idx.exact[normalized]
		value := frags[0].Text
		finding.Classification = domain.ExactMatch
		finding.SimilarityScore = 100
		finding.ArtworkValue = &value
		finding.MatchedFragments = append(finding.MatchedFragments, frags...)

	default:
		best, score := s.bestCandidate(normalized, idx)
		finding.SimilarityScore = score
		if best == nil || score < s.mismatchThreshold {
			finding.Classification = domain.MissingInArtwork
			break
		}
		value := best.text
		finding.ArtworkValue = &value
		finding.MatchedFragments = append(finding.MatchedFragments, best.frags...)
		switch {
		case score >= s.exactThreshold:
			finding.Classification = domain.ExactMatch
		case score >= s.nearThreshold:
			finding.Classification = domain.NearMatch
		default:
			finding.Classification = domain.Mismatch
		}
	}

	zoomIn := ZoomInput{
		Text:       field.Text,
		Language:   field.Language,
		FontSize:   smallestFontSize(finding.MatchedFragments),
		Confidence: evidenceConfidence(finding.MatchedFragments, extraction),
		FuzzyScore: finding.SimilarityScore,
	}
	finding.RequiresVisualCheck, finding.VisualCheckReasons = s.zoom.CheckTriggers(zoomIn)
	if finding.VisualCheckReasons == nil {
		finding.VisualCheckReasons = []string{}
	}

	finding.Status = deriveStatus(finding.Classification, finding.RequiresVisualCheck)
	finding.Notes = append(finding.Notes, matchNote(&finding))

	s.logger.Debug("matched field",
		zap.String("field", field.FieldName),
		zap.String("panel", field.Panel),
		zap.String("language", string(field.Language)),
		zap.Stringer("classification", finding.Classification),
		zap.Float64("score", finding.SimilarityScore),
		zap.Int("evidence", len(finding.MatchedFragments)))

	return finding
}

// bestCandidate returns the highest scoring candidate. Ties keep the earliest
// candidate in scan order.
func (s *MatchingService) bestCandidate(normalized string, idx *fragmentIndex) (*candidate, float64) {
	chars := splitChars(normalized)
	var best *candidate
	bestScore := 0.0

	for i := range idx.candidates {
		c := &idx.candidates[i]
		if charRatioUpperBound(len(chars), len(c.chars)) <= bestScore {
			continue
		}
		score := charRatio(chars, c.chars)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best, bestScore
}

func newFinding(field *domain.CopyField) domain.MatchFinding {
	return domain.MatchFinding{
		FieldName:          field.FieldName,
		Panel:              field.Panel,
		Language:           field.Language,
		CopyValue:          field.Text,
		Notes:              []string{},
		VisualCheckReasons: []string{},
		MatchedFragments:   []*domain.TextFragment{},
	}
}

func extractionFailedFinding(field *domain.CopyField) domain.MatchFinding {
	finding := newFinding(field)
	finding.Classification = domain.RequiresVerification
	finding.Status = domain.StatusTBD
	finding.RequiresVisualCheck = true
	finding.VisualCheckReasons = append(finding.VisualCheckReasons, "Artwork text extraction failed")
	finding.Notes = append(finding.Notes, "Extraction failed: no reliable artwork text - verify manually")
	return finding
}

// deriveStatus maps a classification to the report status. Zoom only affects
// exact matches; near matches always need attention and misses always fail.
func deriveStatus(c domain.MatchClassification, zoom bool) domain.StatusCode {
	switch c {
	case domain.ExactMatch:
		if zoom {
			return domain.StatusTBD
		}
		return domain.StatusOK
	case domain.NearMatch:
		return domain.StatusAttn
	case domain.Mismatch, domain.MissingInArtwork:
		return domain.StatusFail
	case domain.RequiresVerification:
		return domain.StatusTBD
	}
	return domain.StatusTBD
}

func matchNote(f *domain.MatchFinding) string {
	switch f.Classification {
	case domain.ExactMatch:
		note := "Exact match"
		if len(f.MatchedFragments) > 1 {
			note += fmt.Sprintf(" across %d fragments", len(f.MatchedFragments))
		}
		if f.RequiresVisualCheck {
			note += " - verify visually"
		}
		return note
	case domain.NearMatch:
		return fmt.Sprintf("Near match (%.1f%%) - verify differences", f.SimilarityScore)
	case domain.Mismatch:
		return fmt.Sprintf("Mismatch detected (%.1f%%)", f.SimilarityScore)
	case domain.MissingInArtwork:
		if f.SimilarityScore > 0 {
			return fmt.Sprintf("Not found in artwork (best similarity %.1f%%)", f.SimilarityScore)
		}
		return "Not found in artwork"
	case domain.RequiresVerification:
		return "Requires verification"
	}
	return ""
}

// smallestFontSize is the smallest measured font among the evidence, or 0.
func smallestFontSize(frags []*domain.TextFragment) float64 {
	smallest := 0.0
	for _, f := range frags {
		if !f.HasFontSize() {
			continue
		}
		if smallest == 0 || f.FontSize < smallest {
			smallest = f.FontSize
		}
	}
	return smallest
}

// evidenceConfidence is the weakest evidence confidence as a percentage,
// falling back to the run's overall confidence when there is no evidence.
func evidenceConfidence(frags []*domain.TextFragment, extraction domain.ExtractionSummary) float64 {
	if len(frags) == 0 {
		return extraction.Confidence * 100
	}
	lowest := math.Inf(1)
	for _, f := range frags {
		lowest = math.Min(lowest, f.Confidence)
	}
	return lowest * 100
}
