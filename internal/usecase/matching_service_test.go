package usecase

import (
	"strings"
	"testing"

	"github.com/labelproof/artcheck/internal/domain"
)

func liveText() domain.ExtractionSummary {
	return domain.ExtractionSummary{Method: domain.ExtractionLiveText, Confidence: 1.0}
}

func frag(text string, page int, size float64) domain.TextFragment {
	return domain.TextFragment{
		Text:             text,
		PageNumber:       page,
		FontSize:         size,
		ExtractionMethod: domain.ExtractionLiveText,
		Confidence:       1.0,
	}
}

func field(name, text string) domain.CopyField {
	return domain.CopyField{FieldName: name, Panel: "Front Panel", Language: domain.LanguageEN, Text: text}
}

func TestNewMatchingService(t *testing.T) {
	t.Run("uses defaults when zero", func(t *testing.T) {
		svc := NewMatchingService(MatchConfig{}, nil, nil)
		if svc.exactThreshold != 100 || svc.nearThreshold != 95 || svc.mismatchThreshold != 95 {
			t.Errorf("thresholds = %v/%v/%v, want 100/95/95", svc.exactThreshold, svc.nearThreshold, svc.mismatchThreshold)
		}
		if svc.minWindow != 2 || svc.maxWindow != 5 {
			t.Errorf("window = %d..%d, want 2..5", svc.minWindow, svc.maxWindow)
		}
	})

	t.Run("keeps provided thresholds", func(t *testing.T) {
		svc := NewMatchingService(MatchConfig{ExactThreshold: 99, NearThreshold: 90, MismatchThreshold: 80, MinWindow: 2, MaxWindow: 3}, nil, nil)
		if svc.exactThreshold != 99 || svc.nearThreshold != 90 || svc.mismatchThreshold != 80 {
			t.Errorf("thresholds = %v/%v/%v, want 99/90/80", svc.exactThreshold, svc.nearThreshold, svc.mismatchThreshold)
		}
		if svc.maxWindow != 3 {
			t.Errorf("maxWindow = %d, want 3", svc.maxWindow)
		}
	})

	t.Run("keeps zero thresholds", func(t *testing.T) {
		svc := NewMatchingService(MatchConfig{ExactThreshold: 100, MinWindow: 2, MaxWindow: 5}, nil, nil)
		if svc.nearThreshold != 0 || svc.mismatchThreshold != 0 {
			t.Errorf("thresholds = %v/%v, want 0/0", svc.nearThreshold, svc.mismatchThreshold)
		}
	})

	t.Run("max window never below min window", func(t *testing.T) {
		svc := NewMatchingService(MatchConfig{MinWindow: 4, MaxWindow: 2}, nil, nil)
		if svc.maxWindow != 4 {
			t.Errorf("maxWindow = %d, want 4", svc.maxWindow)
		}
	})
}

func TestMatchFields_ExtractionFailed(t *testing.T) {
	svc := NewMatchingService(MatchConfig{}, nil, nil)
	fields := []domain.CopyField{field("Product Name", "Body Lotion"), field("Net Weight", "250 mL")}
	fragments := []domain.TextFragment{frag("Body Lotion", 1, 12)}

	findings := svc.MatchFields(fields, fragments, domain.ExtractionSummary{Method: domain.ExtractionFailed})

	if len(findings) != len(fields) {
		t.Fatalf("len(findings) = %d, want %d", len(findings), len(fields))
	}
	for i, f := range findings {
		if f.Classification != domain.RequiresVerification {
			t.Errorf("findings[%d].Classification = %v, want REQUIRES_VERIFICATION", i, f.Classification)
		}
		if len(f.MatchedFragments) != 0 {
			t.Errorf("findings[%d] has %d matched fragments, want 0", i, len(f.MatchedFragments))
		}
		if f.ArtworkValue != nil {
			t.Errorf("findings[%d].ArtworkValue = %q, want nil", i, *f.ArtworkValue)
		}
		if f.Status != domain.StatusTBD {
			t.Errorf("findings[%d].Status = %v, want TBD", i, f.Status)
		}
		if len(f.Notes) == 0 || !strings.Contains(f.Notes[0], "Extraction failed") {
			t.Errorf("findings[%d].Notes = %v, want extraction failure note", i, f.Notes)
		}
		if f.FieldName != fields[i].FieldName {
			t.Errorf("findings[%d].FieldName = %q, want %q", i, f.FieldName, fields[i].FieldName)
		}
	}
}

func TestMatchFields_Classification(t *testing.T) {
	svc := NewMatchingService(MatchConfig{}, nil, nil)

	testCases := []struct {
		name           string
		field          domain.CopyField
		fragments      []domain.TextFragment
		wantClass      domain.MatchClassification
		wantStatus     domain.StatusCode
		wantScore      float64
		wantEvidence   int
		wantArtwork    string
		wantNilArtwork bool
	}{
		{
			name:         "exact lookup after normalization",
			field:        field("Product Name", "Hydrating “Body” Lotion"),
			fragments:    []domain.TextFragment{frag("Shampoo", 1, 12), frag(`Hydrating  "Body" Lotion`, 1, 12)},
			wantClass:    domain.ExactMatch,
			wantStatus:   domain.StatusOK,
			wantScore:    100,
			wantEvidence: 1,
			wantArtwork:  `Hydrating  "Body" Lotion`,
		},
		{
			name:  "sliding window spanning four fragments",
			field: field("Net Weight", "Net Wt 250 mL"),
			fragments: []domain.TextFragment{
				frag("Net", 1, 8), frag("Wt", 1, 8), frag("250", 1, 8), frag("mL", 1, 8),
			},
			wantClass:    domain.ExactMatch,
			wantStatus:   domain.StatusTBD,
			wantScore:    100,
			wantEvidence: 4,
			wantArtwork:  "Net Wt 250 mL",
		},
		{
			name:         "score of exactly 95 is a near match",
			field:        field("Tagline", "abcdefghijklmnopqrst"),
			fragments:    []domain.TextFragment{frag("abcdefghijXlmnopqrst", 1, 10)},
			wantClass:    domain.NearMatch,
			wantStatus:   domain.StatusAttn,
			wantScore:    95,
			wantEvidence: 1,
			wantArtwork:  "abcdefghijXlmnopqrst",
		},
		{
			name:           "below mismatch threshold is missing",
			field:          field("Tagline", "Hydrating body lotion"),
			fragments:      []domain.TextFragment{frag("Shampoo & conditioner", 1, 10)},
			wantClass:      domain.MissingInArtwork,
			wantStatus:     domain.StatusFail,
			wantNilArtwork: true,
		},
		{
			name:           "empty copy text is missing",
			field:          field("Tagline", "   "),
			fragments:      []domain.TextFragment{frag("Shampoo", 1, 10)},
			wantClass:      domain.MissingInArtwork,
			wantStatus:     domain.StatusFail,
			wantScore:      0,
			wantNilArtwork: true,
		},
		{
			name:           "no fragments at all",
			field:          field("Tagline", "Hydrating body lotion"),
			fragments:      nil,
			wantClass:      domain.MissingInArtwork,
			wantStatus:     domain.StatusFail,
			wantScore:      0,
			wantNilArtwork: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			findings := svc.MatchFields([]domain.CopyField{tc.field}, tc.fragments, liveText())
			if len(findings) != 1 {
				t.Fatalf("len(findings) = %d, want 1", len(findings))
			}
			f := findings[0]

			if f.Classification != tc.wantClass {
				t.Errorf("Classification = %v, want %v", f.Classification, tc.wantClass)
			}
			if f.Status != tc.wantStatus {
				t.Errorf("Status = %v, want %v", f.Status, tc.wantStatus)
			}
			if tc.wantClass != domain.MissingInArtwork && f.SimilarityScore != tc.wantScore {
				t.Errorf("SimilarityScore = %v, want %v", f.SimilarityScore, tc.wantScore)
			}
			if tc.wantNilArtwork {
				if f.ArtworkValue != nil {
					t.Errorf("ArtworkValue = %q, want nil", *f.ArtworkValue)
				}
				if len(f.MatchedFragments) != 0 {
					t.Errorf("MatchedFragments = %d, want 0", len(f.MatchedFragments))
				}
				return
			}
			if f.ArtworkValue == nil || *f.ArtworkValue != tc.wantArtwork {
				t.Errorf("ArtworkValue = %v, want %q", f.ArtworkValue, tc.wantArtwork)
			}
			if len(f.MatchedFragments) != tc.wantEvidence {
				t.Errorf("MatchedFragments = %d, want %d", len(f.MatchedFragments), tc.wantEvidence)
			}
		})
	}
}

func TestMatchFields_MismatchBand(t *testing.T) {
	svc := NewMatchingService(MatchConfig{ExactThreshold: 100, NearThreshold: 95, MismatchThreshold: 80}, nil, nil)

	findings := svc.MatchFields(
		[]domain.CopyField{field("Tagline", "abcdefghij")},
		[]domain.TextFragment{frag("abcdefghXY", 1, 10)},
		liveText(),
	)

	f := findings[0]
	if f.Classification != domain.Mismatch {
		t.Fatalf("Classification = %v, want MISMATCH", f.Classification)
	}
	if f.SimilarityScore != 80 {
		t.Errorf("SimilarityScore = %v, want 80", f.SimilarityScore)
	}
	if f.Status != domain.StatusFail {
		t.Errorf("Status = %v, want FAIL", f.Status)
	}
	if len(f.MatchedFragments) != 1 {
		t.Errorf("MatchedFragments = %d, want 1", len(f.MatchedFragments))
	}
}

func TestMatchFields_WindowOutranksSingleFragment(t *testing.T) {
	svc := NewMatchingService(MatchConfig{}, nil, nil)
	fragments := []domain.TextFragment{frag("Net", 1, 8), frag("Wt", 1, 8), frag("250", 1, 8), frag("mL", 1, 8)}

	findings := svc.MatchFields([]domain.CopyField{field("Net Weight", "Net Wt 250 mL")}, fragments, liveText())
	f := findings[0]

	if f.SimilarityScore != 100 {
		t.Fatalf("SimilarityScore = %v, want 100", f.SimilarityScore)
	}
	for i, got := range f.MatchedFragments {
		if got != &fragments[i] {
			t.Errorf("MatchedFragments[%d] does not point at fragments[%d]", i, i)
		}
	}
}

func TestMatchFields_TieKeepsFirstInScanOrder(t *testing.T) {
	svc := NewMatchingService(MatchConfig{}, nil, nil)
	fragments := []domain.TextFragment{
		frag("abcdefghijXlmnopqrst", 1, 10),
		frag("abcdefghijYlmnopqrst", 2, 10),
	}

	findings := svc.MatchFields([]domain.CopyField{field("Tagline", "abcdefghijklmnopqrst")}, fragments, liveText())
	f := findings[0]

	if f.Classification != domain.NearMatch {
		t.Fatalf("Classification = %v, want NEAR_MATCH", f.Classification)
	}
	if len(f.MatchedFragments) != 1 || f.MatchedFragments[0].PageNumber != 1 {
		t.Errorf("evidence = %+v, want the page 1 fragment", f.MatchedFragments)
	}
}

func TestMatchFields_ExactIndexKeepsAllOccurrences(t *testing.T) {
	svc := NewMatchingService(MatchConfig{}, nil, nil)
	fragments := []domain.TextFragment{frag("Body Lotion", 1, 12), frag("Body Lotion", 2, 12)}

	findings := svc.MatchFields([]domain.CopyField{field("Product Name", "Body Lotion")}, fragments, liveText())
	f := findings[0]

	if got := f.Pages(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Pages() = %v, want [1 2]", got)
	}
}

func TestMatchFields_PreservesOrderOneToOne(t *testing.T) {
	svc := NewMatchingService(MatchConfig{}, nil, nil)
	fields := []domain.CopyField{
		field("A", "Body Lotion"),
		field("B", "Missing text entirely"),
		field("C", ""),
		field("D", "Body Lotion"),
	}

	findings := svc.MatchFields(fields, []domain.TextFragment{frag("Body Lotion", 1, 12)}, liveText())

	if len(findings) != len(fields) {
		t.Fatalf("len(findings) = %d, want %d", len(findings), len(fields))
	}
	for i := range fields {
		if findings[i].FieldName != fields[i].FieldName {
			t.Errorf("findings[%d].FieldName = %q, want %q", i, findings[i].FieldName, fields[i].FieldName)
		}
	}
}

func TestMatchFields_EndToEndSmallNetWeight(t *testing.T) {
	svc := NewMatchingService(MatchConfig{}, nil, nil)
	fragments := []domain.TextFragment{frag("250", 2, 5.0), frag("mL", 2, 5.0), frag("EST.", 2, 5.0)}

	findings := svc.MatchFields([]domain.CopyField{field("Net Weight", "250 mL")}, fragments, liveText())
	f := findings[0]

	if f.Classification != domain.ExactMatch {
		t.Fatalf("Classification = %v, want EXACT_MATCH", f.Classification)
	}
	if f.Status != domain.StatusTBD {
		t.Errorf("Status = %v, want TBD (pending visual confirmation)", f.Status)
	}
	if len(f.MatchedFragments) != 2 {
		t.Errorf("MatchedFragments = %d, want 2", len(f.MatchedFragments))
	}
	if !f.RequiresVisualCheck {
		t.Error("RequiresVisualCheck = false, want true")
	}

	var hasFont, hasNumbers bool
	for _, r := range f.VisualCheckReasons {
		if strings.HasPrefix(r, "Font size 5.0pt") {
			hasFont = true
		}
		if r == "Contains numbers" {
			hasNumbers = true
		}
	}
	if !hasFont || !hasNumbers {
		t.Errorf("VisualCheckReasons = %v, want font size and numeric reasons", f.VisualCheckReasons)
	}
}

func TestMatchFields_LowConfidenceEvidenceTriggersZoom(t *testing.T) {
	svc := NewMatchingService(MatchConfig{}, nil, nil)
	low := frag("Body Lotion", 1, 12)
	low.Confidence = 0.7

	findings := svc.MatchFields([]domain.CopyField{field("Product Name", "Body Lotion")}, []domain.TextFragment{low}, liveText())
	f := findings[0]

	if f.Classification != domain.ExactMatch || f.Status != domain.StatusTBD {
		t.Fatalf("got %v/%v, want EXACT_MATCH/TBD", f.Classification, f.Status)
	}
	if len(f.VisualCheckReasons) == 0 || f.VisualCheckReasons[0] != "Extraction confidence 70% < 100%" {
		t.Errorf("VisualCheckReasons = %v", f.VisualCheckReasons)
	}
}

func TestSafeMatchField_RecoversFromPanic(t *testing.T) {
	svc := NewMatchingService(MatchConfig{}, nil, nil)
	f := field("Product Name", "Body Lotion")

	finding := svc.safeMatchField(&f, nil, liveText())

	if finding.Classification != domain.RequiresVerification {
		t.Errorf("Classification = %v, want REQUIRES_VERIFICATION", finding.Classification)
	}
	if finding.FieldName != "Product Name" {
		t.Errorf("FieldName = %q, want Product Name", finding.FieldName)
	}
	if len(finding.Notes) == 0 || !strings.HasPrefix(finding.Notes[0], "Matching error") {
		t.Errorf("Notes = %v, want matching error note", finding.Notes)
	}
}

func TestDeriveStatus(t *testing.T) {
	testCases := []struct {
		class domain.MatchClassification
		zoom  bool
		want  domain.StatusCode
	}{
		{domain.ExactMatch, false, domain.StatusOK},
		{domain.ExactMatch, true, domain.StatusTBD},
		{domain.NearMatch, false, domain.StatusAttn},
		{domain.NearMatch, true, domain.StatusAttn},
		{domain.Mismatch, false, domain.StatusFail},
		{domain.Mismatch, true, domain.StatusFail},
		{domain.MissingInArtwork, true, domain.StatusFail},
		{domain.RequiresVerification, false, domain.StatusTBD},
	}

	for _, tc := range testCases {
		t.Run(tc.class.String(), func(t *testing.T) {
			if got := deriveStatus(tc.class, tc.zoom); got != tc.want {
				t.Errorf("deriveStatus(%v, %v) = %v, want %v", tc.class, tc.zoom, got, tc.want)
			}
		})
	}
}

func TestMatchFields_ZeroThresholdsAcceptAnyCandidate(t *testing.T) {
	svc := NewMatchingService(MatchConfig{ExactThreshold: 100, MinWindow: 2, MaxWindow: 5}, nil, nil)

	findings := svc.MatchFields(
		[]domain.CopyField{field("Tagline", "abcdefghij")},
		[]domain.TextFragment{frag("abcdefghXY", 1, 10)},
		liveText(),
	)

	if got := findings[0].Classification; got != domain.NearMatch {
		t.Errorf("Classification = %v, want NEAR_MATCH", got)
	}
	if findings[0].ArtworkValue == nil {
		t.Error("ArtworkValue = nil, want the candidate text")
	}
}
