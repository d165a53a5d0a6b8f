package copydoc

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/labelproof/artcheck/internal/domain"
)

// Parser picks a copy document parser from the file extension.
type Parser struct {
	byExt map[string]domain.CopyDocumentParser
}

// NewParser supports .xlsx/.xlsm workbooks, .docx Word documents and
// .yaml/.yml/.json field lists.
func NewParser(logger *zap.Logger) *Parser {
	xlsx := NewXLSXParser(logger)
	yml := NewYAMLParser(logger)
	return &Parser{byExt: map[string]domain.CopyDocumentParser{
		".xlsx": xlsx,
		".xlsm": xlsx,
		".docx": NewDOCXParser(logger),
		".yaml": yml,
		".yml":  yml,
		".json": yml,
	}}
}

func (p *Parser) Parse(ctx context.Context, name string, content []byte) (*domain.CopyDocument, error) {
	parser, ok := p.byExt[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return nil, fmt.Errorf("%w: copy document %q", domain.ErrUnsupportedFormat, name)
	}
	return parser.Parse(ctx, name, content)
}
