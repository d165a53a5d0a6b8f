package copydoc

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/labelproof/artcheck/internal/domain"
)

// XLSXParser reads copy documents laid out as panel tables: a panel header
// row, a row of language names, then one row per field.
type XLSXParser struct {
	logger *zap.Logger
}

func NewXLSXParser(logger *zap.Logger) *XLSXParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &XLSXParser{logger: logger}
}

// Parse reads every sheet of the workbook.
func (p *XLSXParser) Parse(ctx context.Context, name string, content []byte) (*domain.CopyDocument, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedDocument, name, err)
	}
	defer f.Close()

	asm := newAssembler(name)
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			p.logger.Warn("skipping unreadable sheet", zap.String("sheet", sheet), zap.Error(err))
			continue
		}
		p.parseSheet(f, sheet, rows, asm)
	}

	p.logger.Info("parsed copy document",
		zap.String("document", name),
		zap.Int("fields", len(asm.doc.Fields)),
		zap.Int("legacy", len(asm.doc.Legacy)),
		zap.Int("strikethrough", len(asm.doc.Strikethrough)))
	return asm.doc, nil
}

func (p *XLSXParser) parseSheet(f *excelize.File, sheet string, rows [][]string, asm *assembler) {
	var grid gridWalker
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.TrimSpace(c)
		}
		for _, fc := range grid.row(cells) {
			axis, err := excelize.CoordinatesToCellName(fc.col+1, r+1)
			if err != nil {
				continue
			}
			active, struck := readCell(f, sheet, axis, cells[fc.col])
			asm.add(cell{
				panel:    fc.panel,
				field:    fc.field,
				language: fc.language,
				text:     active,
				struck:   struck,
			})
		}
	}
}

// readCell separates struck-through text from live text. A cell whose style
// is struck through is entirely struck; otherwise struck rich-text runs are.
func readCell(f *excelize.File, sheet, axis, value string) (string, []string) {
	if styleStruck(f, sheet, axis) {
		return "", []string{value}
	}
	runs, err := f.GetCellRichText(sheet, axis)
	if err != nil || len(runs) == 0 {
		return value, nil
	}

	var (
		live   strings.Builder
		struck []string
	)
	for _, run := range runs {
		if run.Font != nil && run.Font.Strike {
			struck = append(struck, run.Text)
			continue
		}
		live.WriteString(run.Text)
	}
	if len(struck) == 0 {
		return value, nil
	}
	return live.String(), struck
}

func styleStruck(f *excelize.File, sheet, axis string) bool {
	id, err := f.GetCellStyle(sheet, axis)
	if err != nil || id == 0 {
		return false
	}
	style, err := f.GetStyle(id)
	if err != nil || style == nil || style.Font == nil {
		return false
	}
	return style.Font.Strike
}
