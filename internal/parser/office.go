package parser

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

var (
	slideNameRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

	wordParagraphRe  = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	wordTextRe       = regexp.MustCompile(`(?s)<w:t(?:\s[^>]*)?>(.*?)</w:t>`)
	slideParagraphRe = regexp.MustCompile(`(?s)<a:p[ >].*?</a:p>`)
	slideTextRe      = regexp.MustCompile(`(?s)<a:t(?:\s[^>]*)?>(.*?)</a:t>`)
)

// parseDOCX returns the whole document as one page with paragraphs separated by blank lines.
func parseDOCX(data []byte) ([]string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	return []string{extractTextFromXML(content, wordParagraphRe, wordTextRe)}, nil
}

// parsePPTX returns one page per slide, in slide number order.
func parsePPTX(data []byte) ([]string, error) {
	f, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, file := range f.File {
		m := slideNameRe.FindStringSubmatch(file.Name)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		slides = append(slides, slide{num: num, file: file})
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("no slides found")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	pages := make([]string, 0, len(slides))
	for _, s := range slides {
		rc, err := s.file.Open()
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", s.num, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", s.num, err)
		}
		pages = append(pages, extractTextFromXML(string(content), slideParagraphRe, slideTextRe))
	}
	return pages, nil
}

// parseXLSX returns one page per sheet with tab separated cells.
func parseXLSX(data []byte) ([]string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, len(f.Sheets))
	for _, sheet := range f.Sheets {
		rows := make([][]string, 0, len(sheet.Rows))
		for _, row := range sheet.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				cells = append(cells, cell.String())
			}
			rows = append(rows, cells)
		}
		pages = append(pages, renderSheet(sheet.Name, rows))
	}
	return pages, nil
}

// parseWorkbook handles macro-enabled workbooks and templates through excelize.
func parseWorkbook(data []byte) ([]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	pages := make([]string, 0, len(sheets))
	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		pages = append(pages, renderSheet(name, rows))
	}
	return pages, nil
}

func renderSheet(name string, rows [][]string) string {
	var text strings.Builder
	text.WriteString(fmt.Sprintf("Sheet: %s\n\n", name))
	for _, row := range rows {
		text.WriteString(strings.Join(row, "\t"))
		text.WriteString("\n\n")
	}
	return text.String()
}

// extractTextFromXML collects the text runs of every paragraph element and
// separates paragraphs with a blank line.
func extractTextFromXML(xmlContent string, paragraphRe, textRe *regexp.Regexp) string {
	var paragraphs []string
	for _, p := range paragraphRe.FindAllString(xmlContent, -1) {
		var text strings.Builder
		for _, m := range textRe.FindAllStringSubmatch(p, -1) {
			text.WriteString(html.UnescapeString(m[1]))
		}
		if s := strings.TrimSpace(text.String()); s != "" {
			paragraphs = append(paragraphs, s)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
