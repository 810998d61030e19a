package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"pdf-chat/internal/models"
)

// Extractor turns a document into its ordered page texts.
type Extractor interface {
	Extract(ctx context.Context, doc models.Document) ([]models.Page, error)
}

// pageFunc extracts raw page texts from file contents.
type pageFunc func(data []byte) ([]string, error)

// Registry dispatches extraction by file extension.
type Registry struct {
	byExt map[string]pageFunc
}

var _ Extractor = (*Registry)(nil)

// NewRegistry returns a registry that handles PDF plus the office, markdown
// and plain text formats.
func NewRegistry() *Registry {
	return &Registry{
		byExt: map[string]pageFunc{
			".pdf":      parsePDF,
			".docx":     parseDOCX,
			".pptx":     parsePPTX,
			".xlsx":     parseXLSX,
			".xlsm":     parseWorkbook,
			".xltx":     parseWorkbook,
			".xltm":     parseWorkbook,
			".md":       parseMarkdown,
			".markdown": parseMarkdown,
			".txt":      parseText,
		},
	}
}

// Supports reports whether the filename has a registered extension.
func (r *Registry) Supports(filename string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Extract returns the pages of doc numbered from 1. Any failure is reported
// as a *models.ParseError naming the document.
func (r *Registry) Extract(ctx context.Context, doc models.Document) ([]models.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(doc.Filename))
	parse, ok := r.byExt[ext]
	if !ok {
		return nil, &models.ParseError{
			Filename: doc.Filename,
			Err:      fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, ext),
		}
	}

	texts, err := parse(doc.Data)
	if err != nil {
		return nil, &models.ParseError{Filename: doc.Filename, Err: err}
	}

	pages := make([]models.Page, len(texts))
	for i, text := range texts {
		pages[i] = models.Page{Number: i + 1, Text: text}
	}

	log.Debug().Str("filename", doc.Filename).Int("pages", len(pages)).Msg("Extracted document")
	return pages, nil
}

// ReadDocument loads a file from disk as an ingestion document named by its base name.
func ReadDocument(path string) (models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Document{}, err
	}
	return models.Document{Filename: filepath.Base(path), Data: data}, nil
}

func parsePDF(data []byte) (pages []string, err error) {
	// ledongthuc/pdf panics on some malformed objects instead of returning errors.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, pageText)
	}
	return pages, nil
}

func parseText(data []byte) ([]string, error) {
	return []string{string(data)}, nil
}
