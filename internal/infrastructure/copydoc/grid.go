package copydoc

import (
	"strings"

	"github.com/labelproof/artcheck/internal/domain"
)

var panelHeaders = []struct {
	marker string
	panel  string
}{
	{"front of artwork", "Front Panel"},
	{"back of artwork", "Back Panel"},
	{"side of artwork", "Side Panel"},
}

// gridWalker follows the copy table layout shared by workbooks and Word
// documents: a panel header row, a row of language names, then one row per
// field. Use a fresh walker per sheet or table.
type gridWalker struct {
	panel    string
	langCols map[int]domain.Language
}

// fieldCell locates one language value of a field row.
type fieldCell struct {
	col      int
	panel    string
	field    string
	language domain.Language
}

// row consumes one row of trimmed cell texts and returns its non-empty
// language values, left to right.
func (g *gridWalker) row(cells []string) []fieldCell {
	nonEmpty := false
	for _, c := range cells {
		if c != "" {
			nonEmpty = true
			break
		}
	}
	if !nonEmpty {
		return nil
	}

	if header, ok := panelHeader(cells[0]); ok {
		g.panel = header
		g.langCols = nil
		return nil
	}
	if g.panel == "" {
		return nil
	}

	if g.langCols == nil {
		if cols := languageColumns(cells); len(cols) > 0 {
			g.langCols = cols
			return nil
		}
	}
	if g.langCols == nil || cells[0] == "" {
		return nil
	}

	var out []fieldCell
	for _, lang := range orderedColumns(g.langCols) {
		if lang.index >= len(cells) || cells[lang.index] == "" {
			continue
		}
		out = append(out, fieldCell{
			col:      lang.index,
			panel:    g.panel,
			field:    cells[0],
			language: lang.language,
		})
	}
	return out
}

func panelHeader(first string) (string, bool) {
	lower := strings.ToLower(first)
	for _, h := range panelHeaders {
		if strings.Contains(lower, h.marker) {
			return h.panel, true
		}
	}
	return "", false
}

func languageColumns(cells []string) map[int]domain.Language {
	cols := make(map[int]domain.Language)
	for i, c := range cells {
		if lang, ok := domain.LanguageFromHeader(c); ok {
			cols[i] = lang
		}
	}
	return cols
}

type languageColumn struct {
	index    int
	language domain.Language
}

// orderedColumns returns language columns left to right.
func orderedColumns(cols map[int]domain.Language) []languageColumn {
	out := make([]languageColumn, 0, len(cols))
	for i := 0; len(out) < len(cols); i++ {
		if lang, ok := cols[i]; ok {
			out = append(out, languageColumn{index: i, language: lang})
		}
	}
	return out
}
