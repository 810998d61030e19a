package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pdf-chat/internal/models"
)

func TestRegistry_Supports(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Supports("a.pdf"))
	assert.True(t, r.Supports("REPORT.PDF"))
	assert.True(t, r.Supports("notes.md"))
	assert.False(t, r.Supports("image.png"))
	assert.False(t, r.Supports("noext"))
}

func TestRegistry_Extract_PDF(t *testing.T) {
	r := NewRegistry()
	doc := models.Document{Filename: "a.pdf", Data: buildPDF(t, "Hello world.", "Second page.")}

	pages, err := r.Extract(context.Background(), doc)

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, 2, pages[1].Number)
	assert.Contains(t, pages[0].Text, "Hello world.")
	assert.Contains(t, pages[1].Text, "Second page.")
}

func TestRegistry_Extract_MalformedPDF(t *testing.T) {
	r := NewRegistry()
	doc := models.Document{Filename: "broken.pdf", Data: []byte("this is not a pdf")}

	pages, err := r.Extract(context.Background(), doc)

	assert.Nil(t, pages)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrParse)

	var pe *models.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "broken.pdf", pe.Filename)
}

func TestRegistry_Extract_Unsupported(t *testing.T) {
	r := NewRegistry()

	_, err := r.Extract(context.Background(), models.Document{Filename: "photo.png"})

	assert.ErrorIs(t, err, models.ErrParse)
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

func TestRegistry_Extract_ODSUnsupported(t *testing.T) {
	r := NewRegistry()
	data := buildZip(t, map[string]string{
		"mimetype":    "application/vnd.oasis.opendocument.spreadsheet",
		"content.xml": "<office:document-content/>",
	})

	assert.False(t, r.Supports("budget.ods"))
	_, err := r.Extract(context.Background(), models.Document{Filename: "budget.ods", Data: data})

	var parseErr *models.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "budget.ods", parseErr.Filename)
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

func TestRegistry_Extract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRegistry().Extract(ctx, models.Document{Filename: "a.txt", Data: []byte("x")})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry_Extract_Text(t *testing.T) {
	pages, err := NewRegistry().Extract(context.Background(), models.Document{Filename: "a.txt", Data: []byte("plain\ntext")})

	require.NoError(t, err)
	assert.Equal(t, []models.Page{{Number: 1, Text: "plain\ntext"}}, pages)
}

func TestParseMarkdown(t *testing.T) {
	src := "# Title\n\nSome *emphasis* and `code`.\n\n- item one\n- item two\n\n```\nfenced line\n```\n"

	pages, err := parseMarkdown([]byte(src))

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0], "Title")
	assert.Contains(t, pages[0], "Some emphasis and code.")
	assert.Contains(t, pages[0], "item one")
	assert.Contains(t, pages[0], "item two")
	assert.Contains(t, pages[0], "fenced line")
	assert.NotContains(t, pages[0], "#")
	assert.NotContains(t, pages[0], "*")
}

func TestParsePPTX_SlideOrder(t *testing.T) {
	data := buildZip(t, map[string]string{
		"ppt/slides/slide2.xml":             `<p:sld><a:p><a:r><a:t>Second slide</a:t></a:r></a:p></p:sld>`,
		"ppt/slides/slide10.xml":            `<p:sld><a:p><a:r><a:t>Tenth &amp; last</a:t></a:r></a:p></p:sld>`,
		"ppt/slides/slide1.xml":             `<p:sld><a:p><a:r><a:t>First</a:t></a:r><a:r><a:t xml:space="preserve"> slide</a:t></a:r></a:p><a:p><a:r><a:t>Body</a:t></a:r></a:p></p:sld>`,
		"ppt/slides/_rels/slide1.xml.rels": `<Relationships/>`,
	})

	pages, err := parsePPTX(data)

	require.NoError(t, err)
	assert.Equal(t, []string{"First slide\n\nBody", "Second slide", "Tenth & last"}, pages)
}

func TestParsePPTX_NoSlides(t *testing.T) {
	_, err := parsePPTX(buildZip(t, map[string]string{"other.xml": "<x/>"}))
	assert.Error(t, err)
}

func TestParseDOCX(t *testing.T) {
	data := buildZip(t, map[string]string{
		"[Content_Types].xml":          `<Types/>`,
		"word/_rels/document.xml.rels": `<Relationships></Relationships>`,
		"word/document.xml": `<w:document><w:body>` +
			`<w:p><w:pPr/><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve"> docx</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>` +
			`</w:body></w:document>`,
	})

	pages, err := parseDOCX(data)

	require.NoError(t, err)
	assert.Equal(t, []string{"Hello docx\n\nSecond paragraph"}, pages)
}

func TestParseSpreadsheets(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "score"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "alice"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "high"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	t.Run("excelize", func(t *testing.T) {
		pages, err := parseWorkbook(buf.Bytes())
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, "Sheet: Sheet1\n\nname\tscore\n\nalice\thigh\n\n", pages[0])
	})

	t.Run("xlsx", func(t *testing.T) {
		pages, err := parseXLSX(buf.Bytes())
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Contains(t, pages[0], "Sheet: Sheet1")
		assert.Contains(t, pages[0], "alice")
		assert.Contains(t, pages[0], "score")
	})
}

func TestReadDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o600))

	doc, err := ReadDocument(path)

	require.NoError(t, err)
	assert.Equal(t, "notes.txt", doc.Filename)
	assert.Equal(t, []byte("content"), doc.Data)

	_, err = ReadDocument(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}
