package copydoc

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelproof/artcheck/internal/domain"
)

// WordprocessingML builders for in-memory fixtures.
func wTable(rows ...string) string { return "<w:tbl>" + strings.Join(rows, "") + "</w:tbl>" }
func wRow(cells ...string) string { return "<w:tr>" + strings.Join(cells, "") + "</w:tr>" }
func wCell(paras ...string) string {
	if len(paras) == 0 {
		paras = []string{wPara()}
	}
	return "<w:tc>" + strings.Join(paras, "") + "</w:tc>"
}
func wPara(runs ...string) string { return "<w:p>" + strings.Join(runs, "") + "</w:p>" }
func wRun(text string) string {
	return `<w:r><w:t xml:space="preserve">` + text + "</w:t></w:r>"
}
func wStruck(text string) string {
	return `<w:r><w:rPr><w:strike/></w:rPr><w:t xml:space="preserve">` + text + "</w:t></w:r>"
}
func wText(text string) string { return wCell(wPara(wRun(text))) }

func mkDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func mkDocument(t *testing.T, body ...string) []byte {
	t.Helper()
	xml := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		strings.Join(body, "") +
		`</w:body></w:document>`
	return mkDocx(t, map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types/>`,
		"word/document.xml":   xml,
	})
}

func TestDOCXParser_Parse(t *testing.T) {
	blob := mkDocument(t,
		wPara(wRun("Copy document, round 2")),
		wTable(
			wRow(wText("FRONT OF ARTWORK")),
			wRow(wCell(), wText("ENGLISH"), wText("FRENCH")),
			wRow(wText("Product Name"),
				wCell(wPara(wRun("Hydrating "), `<w:r><w:rPr><w:strike w:val="0"/></w:rPr><w:t>Cream</w:t></w:r>`)),
				wText("Crème hydratante")),
			wRow(wText("Net Weight"), wText("200 mL -&gt; 250 mL")),
			wRow(wText("Pack Claims"), wCell(wPara(wRun("Vegan")), wPara(wRun("Clinically tested")))),
			wRow(wText("Directions"), wCell(wPara(wRun("Apply daily"), wStruck(" twice"), wStruck(" a day")))),
		),
		wTable(
			wRow(wText("Back of Artwork")),
			wRow(wText("Field"), wText("English")),
			wRow(wText("Warning"), wCell(wPara(wStruck("Old warning")))),
		),
	)

	doc, err := NewDOCXParser(nil).Parse(context.Background(), "copy.docx", blob)
	require.NoError(t, err)

	type row struct {
		Field, Panel string
		Lang         domain.Language
		Text         string
	}
	collect := func(fields []domain.CopyField) []row {
		var out []row
		for _, f := range fields {
			out = append(out, row{f.FieldName, f.Panel, f.Language, f.Text})
		}
		return out
	}

	assert.Equal(t, []row{
		{"Product Name", "Front Panel", domain.LanguageEN, "Hydrating Cream"},
		{"Product Name", "Front Panel", domain.LanguageFR, "Crème hydratante"},
		{"Net Weight", "Front Panel", domain.LanguageEN, "250 mL"},
		{"Pack Claim 1", "Front Panel", domain.LanguageEN, "Vegan"},
		{"Pack Claim 2", "Front Panel", domain.LanguageEN, "Clinically tested"},
		{"Directions", "Front Panel", domain.LanguageEN, "Apply daily"},
	}, collect(doc.Fields))

	assert.Equal(t, []row{
		{"Net Weight", "Front Panel", domain.LanguageEN, "200 mL"},
	}, collect(doc.Legacy))

	assert.Equal(t, []row{
		{"Directions", "Front Panel", domain.LanguageEN, "twice a day"},
		{"Warning", "Back Panel", domain.LanguageEN, "Old warning"},
	}, collect(doc.Strikethrough))
	for _, f := range doc.Strikethrough {
		assert.True(t, f.IsStrikethrough)
	}
}

func TestDOCXParser_NestedTableTextStaysInCell(t *testing.T) {
	blob := mkDocument(t, wTable(
		wRow(wText("Side of Artwork")),
		wRow(wCell(), wText("English")),
		wRow(wText("Ingredients"), wCell(
			wPara(wRun("Aqua")),
			wTable(wRow(wText("Glycerin"))),
		)),
	))

	doc, err := NewDOCXParser(nil).Parse(context.Background(), "copy.docx", blob)
	require.NoError(t, err)
	require.Len(t, doc.Fields, 1)
	assert.Equal(t, "Side Panel", doc.Fields[0].Panel)
	assert.Equal(t, "Aqua\nGlycerin", doc.Fields[0].Text)
}

func TestDOCXParser_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"not a zip", []byte("plain text")},
		{"missing body", mkDocx(t, map[string]string{"word/styles.xml": "<w:styles/>"})},
		{"broken xml", mkDocx(t, map[string]string{"word/document.xml": "<w:document><w:body>"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDOCXParser(nil).Parse(context.Background(), "copy.docx", tt.content)
			assert.ErrorIs(t, err, domain.ErrMalformedDocument)
		})
	}
}
