package copydoc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/labelproof/artcheck/internal/domain"
)

const legacySeparator = " -> "

// paragraphSplitFields are split into one sub-field per paragraph.
var paragraphSplitFields = []string{
	"marketing + usage copy",
	"marketing copy",
	"usage copy",
	"hero ingredient call-outs",
	"hero ingredients",
	"key ingredients",
	"pack claims",
}

type subfieldTemplate struct {
	key      string
	names    []string
	numbered string
}

// subfieldTemplates name the parts of a split field; checked in order.
var subfieldTemplates = []subfieldTemplate{
	{key: "marketing + usage copy", names: []string{"Marketing Copy", "Scent Line", "Usage Instructions"}},
	{key: "hero ingredient call-outs", numbered: "Hero Ingredient %d"},
	{key: "pack claims", numbered: "Pack Claim %d"},
}

var paragraphBreak = regexp.MustCompile(`\n+`)

// cell is one language value of a field row before post-processing.
type cell struct {
	panel    string
	field    string
	language domain.Language
	text     string   // text that is still live
	struck   []string // struck-through runs
}

// assembler accumulates fields into a copy document.
type assembler struct {
	doc *domain.CopyDocument
}

func newAssembler(source string) *assembler {
	return &assembler{doc: &domain.CopyDocument{
		SourceName:    source,
		Fields:        []domain.CopyField{},
		Legacy:        []domain.CopyField{},
		Strikethrough: []domain.CopyField{},
	}}
}

// add records struck runs, separates legacy text before " -> ", and splits
// paragraph fields.
func (a *assembler) add(c cell) {
	for _, s := range c.struck {
		if s = strings.TrimSpace(s); s != "" {
			a.doc.Strikethrough = append(a.doc.Strikethrough, domain.CopyField{
				FieldName:       c.field,
				Panel:           c.panel,
				Language:        c.language,
				Text:            s,
				IsStrikethrough: true,
			})
		}
	}

	text := strings.TrimSpace(c.text)
	if strings.Contains(text, legacySeparator) {
		parts := strings.Split(text, legacySeparator)
		if old := strings.TrimSpace(parts[0]); old != "" {
			a.doc.Legacy = append(a.doc.Legacy, domain.CopyField{
				FieldName: c.field,
				Panel:     c.panel,
				Language:  c.language,
				Text:      old,
				IsLegacy:  true,
			})
		}
		if current := strings.TrimSpace(parts[len(parts)-1]); current != "" {
			text = current
		}
	}
	if text == "" {
		return
	}

	if !shouldSplit(c.field) {
		a.doc.Fields = append(a.doc.Fields, domain.CopyField{
			FieldName: c.field,
			Panel:     c.panel,
			Language:  c.language,
			Text:      text,
		})
		return
	}
	a.doc.Fields = append(a.doc.Fields, splitField(c.field, c.panel, c.language, text)...)
}

// addField routes an already flagged field.
func (a *assembler) addField(f domain.CopyField) {
	switch {
	case f.IsStrikethrough:
		a.doc.Strikethrough = append(a.doc.Strikethrough, f)
	case f.IsLegacy:
		a.doc.Legacy = append(a.doc.Legacy, f)
	default:
		a.add(cell{panel: f.Panel, field: f.FieldName, language: f.Language, text: f.Text})
	}
}

func shouldSplit(field string) bool {
	name := strings.ToLower(field)
	for _, s := range paragraphSplitFields {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

func splitField(field, panel string, lang domain.Language, text string) []domain.CopyField {
	var paragraphs []string
	for _, p := range paragraphBreak.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var tmpl *subfieldTemplate
	name := strings.ToLower(field)
	for i := range subfieldTemplates {
		if strings.Contains(name, subfieldTemplates[i].key) {
			tmpl = &subfieldTemplates[i]
			break
		}
	}

	out := make([]domain.CopyField, 0, len(paragraphs))
	for i, p := range paragraphs {
		index := i
		out = append(out, domain.CopyField{
			FieldName:     subfieldName(field, tmpl, i),
			Panel:         panel,
			Language:      lang,
			Text:          p,
			ParentField:   field,
			SubfieldIndex: &index,
		})
	}
	return out
}

func subfieldName(field string, tmpl *subfieldTemplate, i int) string {
	switch {
	case tmpl != nil && tmpl.numbered != "":
		return fmt.Sprintf(tmpl.numbered, i+1)
	case tmpl != nil && i < len(tmpl.names):
		return tmpl.names[i]
	default:
		return fmt.Sprintf("%s - Part %d", field, i+1)
	}
}
