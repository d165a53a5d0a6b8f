package domain

import "fmt"

// ExtractionMethod identifies how artwork text was obtained.
type ExtractionMethod int

const (
	ExtractionLiveText ExtractionMethod = iota
	ExtractionAIPDFCompatible
	ExtractionVisionSystem
	ExtractionFailed
)

var extractionMethodNames = []string{"LIVE_TEXT", "AI_PDF_COMPATIBLE", "VISION_SYSTEM", "FAILED"}

func (m ExtractionMethod) String() string {
	return enumName(extractionMethodNames, int(m))
}

func (m ExtractionMethod) MarshalText() ([]byte, error) {
	return marshalEnum(extractionMethodNames, int(m))
}

func (m *ExtractionMethod) UnmarshalText(b []byte) error {
	return unmarshalEnum(extractionMethodNames, "extraction method", b, (*int)(m))
}

// MatchClassification is the engine's verdict for one copy field.
// The zero value is RequiresVerification so an unset finding never reads as a match.
type MatchClassification int

const (
	RequiresVerification MatchClassification = iota
	ExactMatch
	NearMatch
	Mismatch
	MissingInArtwork
)

var classificationNames = []string{"REQUIRES_VERIFICATION", "EXACT_MATCH", "NEAR_MATCH", "MISMATCH", "MISSING_IN_ARTWORK"}

func (c MatchClassification) String() string {
	return enumName(classificationNames, int(c))
}

func (c MatchClassification) MarshalText() ([]byte, error) {
	return marshalEnum(classificationNames, int(c))
}

func (c *MatchClassification) UnmarshalText(b []byte) error {
	return unmarshalEnum(classificationNames, "match classification", b, (*int)(c))
}

// StatusCode is the externally visible status vocabulary used by reports.
type StatusCode int

const (
	StatusTBD StatusCode = iota
	StatusOK
	StatusAttn
	StatusFail
	StatusFYI
)

var statusNames = []string{"TBD", "OK", "ATTN", "FAIL", "FYI"}

var statusEmoji = []string{"🔍", "✅", "⚠️", "❌", "ℹ️"}

func (s StatusCode) String() string {
	return enumName(statusNames, int(s))
}

// Emoji returns the fixed report glyph for the status.
func (s StatusCode) Emoji() string {
	return enumName(statusEmoji, int(s))
}

// Label renders the status the way report tables show it, e.g. "✅ OK".
func (s StatusCode) Label() string {
	return s.Emoji() + " " + s.String()
}

func (s StatusCode) MarshalText() ([]byte, error) {
	return marshalEnum(statusNames, int(s))
}

func (s *StatusCode) UnmarshalText(b []byte) error {
	return unmarshalEnum(statusNames, "status", b, (*int)(s))
}

// RiskLevel grades a marketing claim.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

var riskNames = []string{"LOW", "MEDIUM", "HIGH"}

func (r RiskLevel) String() string {
	return enumName(riskNames, int(r))
}

func (r RiskLevel) MarshalText() ([]byte, error) {
	return marshalEnum(riskNames, int(r))
}

func (r *RiskLevel) UnmarshalText(b []byte) error {
	return unmarshalEnum(riskNames, "risk level", b, (*int)(r))
}

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return fmt.Sprintf("UNKNOWN(%d)", v)
	}
	return names[v]
}

func marshalEnum(names []string, v int) ([]byte, error) {
	if v < 0 || v >= len(names) {
		return nil, fmt.Errorf("enum value %d out of range", v)
	}
	return []byte(names[v]), nil
}

func unmarshalEnum(names []string, kind string, b []byte, dst *int) error {
	s := string(b)
	for i, name := range names {
		if name == s {
			*dst = i
			return nil
		}
	}
	return fmt.Errorf("%w: unknown %s %q", ErrInvalidRequest, kind, s)
}
