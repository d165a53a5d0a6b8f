package copydoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/labelproof/artcheck/internal/domain"
)

// yamlDocument is the YAML (and JSON) form of a copy document:
//
//	fields:
//	  - field: Net Weight
//	    panel: Front Panel
//	    language: EN
//	    text: 250 mL
type yamlDocument struct {
	Fields []domain.CopyField `yaml:"fields"`
}

// YAMLParser reads copy documents written as a flat field list.
type YAMLParser struct {
	logger *zap.Logger
}

func NewYAMLParser(logger *zap.Logger) *YAMLParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YAMLParser{logger: logger}
}

// Parse decodes the field list. Unknown keys are rejected so that a typo
// does not silently drop copy.
func (p *YAMLParser) Parse(ctx context.Context, name string, content []byte) (*domain.CopyDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw yamlDocument
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedDocument, name, err)
	}

	asm := newAssembler(name)
	for i, f := range raw.Fields {
		f.FieldName = strings.TrimSpace(f.FieldName)
		if f.FieldName == "" {
			return nil, fmt.Errorf("%w: %s: field %d has no name", domain.ErrMalformedDocument, name, i+1)
		}
		f.Language = domain.ParseLanguage(string(f.Language))
		asm.addField(f)
	}

	p.logger.Info("parsed copy document",
		zap.String("document", name),
		zap.Int("fields", len(asm.doc.Fields)),
		zap.Int("legacy", len(asm.doc.Legacy)),
		zap.Int("strikethrough", len(asm.doc.Strikethrough)))
	return asm.doc, nil
}
