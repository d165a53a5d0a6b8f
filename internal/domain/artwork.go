package domain

// BoundingBox is a fragment's position on its page, in PDF points.
type BoundingBox struct {
	X0 float64 `json:"x0" yaml:"x0"`
	Y0 float64 `json:"y0" yaml:"y0"`
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
}

// TextFragment is one contiguous span of text extracted from artwork.
// Fragments are produced by an extractor and only read afterwards.
type TextFragment struct {
	Text             string           `json:"text" yaml:"text"`
	PageNumber       int              `json:"pageNumber" yaml:"pageNumber"` // 1-based
	BoundingBox      *BoundingBox     `json:"boundingBox,omitempty" yaml:"boundingBox,omitempty"`
	FontName         string           `json:"fontName,omitempty" yaml:"fontName,omitempty"`
	FontSize         float64          `json:"fontSize,omitempty" yaml:"fontSize,omitempty"` // points, 0 when unknown
	ExtractionMethod ExtractionMethod `json:"extractionMethod" yaml:"extractionMethod"`
	Confidence       float64          `json:"confidence" yaml:"confidence"` // 0.0-1.0
	RotationDegrees  float64          `json:"rotationDegrees" yaml:"rotationDegrees"`
}

// HasFontSize reports whether the extractor measured a font size.
func (f *TextFragment) HasFontSize() bool {
	return f.FontSize > 0
}

// ExtractionSummary describes an extraction run as a whole.
type ExtractionSummary struct {
	Method        ExtractionMethod `json:"method" yaml:"method"`
	Confidence    float64          `json:"confidence" yaml:"confidence"`
	FragmentCount int              `json:"fragmentCount" yaml:"fragmentCount"`
}

// ArtworkExtraction is everything an extractor returns for one artwork file.
type ArtworkExtraction struct {
	SourceName     string            `json:"sourceName" yaml:"sourceName"`
	Summary        ExtractionSummary `json:"summary" yaml:"summary"`
	Fragments      []TextFragment    `json:"fragments" yaml:"fragments"`
	PagesProcessed int               `json:"pagesProcessed" yaml:"pagesProcessed"`
	PagesWithText  int               `json:"pagesWithText" yaml:"pagesWithText"`
	Warnings       []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// FontMeasurement is one distinct font sample seen on the artwork.
type FontMeasurement struct {
	PageNumber int     `json:"pageNumber" yaml:"pageNumber"`
	FontName   string  `json:"fontName" yaml:"fontName"`
	FontSize   float64 `json:"fontSize" yaml:"fontSize"`
	SampleText string  `json:"sampleText" yaml:"sampleText"`
}
