// Package report renders a domain.CheckReport for people and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/labelproof/artcheck/internal/domain"
)

// Format is an output encoding for a check report.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatXLSX     Format = "xlsx"
)

// ParseFormat accepts a format name or a common alias such as "md" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: unknown report format %q", domain.ErrInvalidRequest, s)
}

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	case FormatXLSX:
		return ".xlsx"
	default:
		return ".md"
	}
}

// Options carries presentation details that are not part of the report itself.
type Options struct {
	Version     string
	ProjectName string
}

// Write encodes r to w in the given format.
func Write(w io.Writer, r *domain.CheckReport, format Format, opts Options) error {
	if r == nil {
		return fmt.Errorf("%w: nil report", domain.ErrInvalidRequest)
	}

	switch format {
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r, opts))
		return err
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	case FormatXLSX:
		return WriteXLSX(w, r)
	}
	return fmt.Errorf("%w: unknown report format %q", domain.ErrInvalidRequest, format)
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *domain.CheckReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report as JSON: %w", err)
	}
	return nil
}

// WriteYAML writes the report as a YAML document.
func WriteYAML(w io.Writer, r *domain.CheckReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report as YAML: %w", err)
	}
	return enc.Close()
}
