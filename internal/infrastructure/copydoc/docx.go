package copydoc

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/labelproof/artcheck/internal/domain"
)

const docxBody = "word/document.xml"

// DOCXParser reads Word copy documents. Every table in word/document.xml is
// walked with the same panel/language/field layout as workbooks, and
// struck-through runs are kept apart from live text.
type DOCXParser struct {
	logger *zap.Logger
}

func NewDOCXParser(logger *zap.Logger) *DOCXParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DOCXParser{logger: logger}
}

func (p *DOCXParser) Parse(ctx context.Context, name string, content []byte) (*domain.CopyDocument, error) {
	body, err := readDocxBody(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedDocument, name, err)
	}

	tables, err := parseDocxTables(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedDocument, name, err)
	}

	asm := newAssembler(name)
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var grid gridWalker
		for _, row := range table {
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = c.text()
			}
			for _, fc := range grid.row(cells) {
				c := row[fc.col]
				asm.add(cell{
					panel:    fc.panel,
					field:    fc.field,
					language: fc.language,
					text:     c.live.String(),
					struck:   c.struck,
				})
			}
		}
	}

	p.logger.Info("parsed copy document",
		zap.String("document", name),
		zap.Int("tables", len(tables)),
		zap.Int("fields", len(asm.doc.Fields)),
		zap.Int("legacy", len(asm.doc.Legacy)),
		zap.Int("strikethrough", len(asm.doc.Strikethrough)))
	return asm.doc, nil
}

func readDocxBody(content []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, errors.New(docxBody + " not found in the archive")
}

// docxCell is one table cell. Paragraphs are joined with newlines so that
// multi-paragraph fields split the same way workbook cells do.
type docxCell struct {
	live   strings.Builder
	struck []string
	all    strings.Builder
}

func (c *docxCell) text() string {
	return strings.TrimSpace(c.all.String())
}

func (c *docxCell) paragraphBreak() {
	if c.all.Len() > 0 {
		c.all.WriteByte('\n')
		c.live.WriteByte('\n')
	}
}

// addRun appends a run. Adjacent struck runs form one struck entry, since
// Word splits runs at arbitrary points.
func (c *docxCell) addRun(text string, struck, afterStruck bool) {
	if text == "" {
		return
	}
	c.all.WriteString(text)
	if !struck {
		c.live.WriteString(text)
		return
	}
	if afterStruck && len(c.struck) > 0 {
		c.struck[len(c.struck)-1] += text
		return
	}
	c.struck = append(c.struck, text)
}

type docxRow []*docxCell

// parseDocxTables collects the rows of every top-level table. Nested tables
// contribute their text to the enclosing cell.
func parseDocxTables(body []byte) ([][]docxRow, error) {
	var (
		tables     [][]docxRow
		depth      int
		row        docxRow
		current    *docxCell
		paragraphs int
		inRun      bool
		inRunProps bool
		runStruck  bool
		lastStruck bool
		runText    strings.Builder
	)

	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				depth++
				if depth == 1 {
					tables = append(tables, nil)
				}
			case "tr":
				if depth == 1 {
					row = nil
				}
			case "tc":
				if depth == 1 {
					current = &docxCell{}
					row = append(row, current)
					paragraphs = 0
					lastStruck = false
				}
			case "p":
				if current != nil {
					if paragraphs > 0 {
						current.paragraphBreak()
					}
					paragraphs++
					lastStruck = false
				}
			case "r":
				inRun = true
				runStruck = false
				runText.Reset()
			case "rPr":
				inRunProps = inRun
			case "strike", "dstrike":
				if inRunProps && onOff(t) {
					runStruck = true
				}
			case "t":
				if inRun {
					var text string
					if err := dec.DecodeElement(&text, &t); err != nil {
						return nil, err
					}
					runText.WriteString(text)
				}
			case "tab":
				if inRun && !inRunProps {
					runText.WriteByte('\t')
				}
			case "br", "cr":
				if inRun && !inRunProps {
					runText.WriteByte('\n')
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "rPr":
				inRunProps = false
			case "r":
				if inRun && current != nil {
					current.addRun(runText.String(), runStruck, lastStruck)
					if runText.Len() > 0 {
						lastStruck = runStruck
					}
				}
				inRun = false
			case "tc":
				if depth == 1 {
					current = nil
				}
			case "tr":
				if depth == 1 && len(tables) > 0 {
					tables[len(tables)-1] = append(tables[len(tables)-1], row)
					row = nil
				}
			case "tbl":
				depth--
			}
		}
	}
	return tables, nil
}

// onOff reads a WordprocessingML toggle property: absent or true-ish w:val
// means on.
func onOff(el xml.StartElement) bool {
	for _, a := range el.Attr {
		if a.Name.Local != "val" {
			continue
		}
		switch strings.ToLower(a.Value) {
		case "0", "false", "off", "none":
			return false
		}
	}
	return true
}
