package models

import (
	"fmt"
	"strconv"
)

// Metadata keys attached to every stored chunk.
const (
	MetaFilename = "filename"
	MetaPage     = "page"
	MetaChunk    = "chunk"
	MetaSource   = "source"
)

// Document is a named input artifact. It only lives for the duration of an ingestion call.
type Document struct {
	Filename string
	Data     []byte
}

// Page is the extracted text of one document page, numbered from 1.
type Page struct {
	Number int
	Text   string
}

// Chunk represents a parsed chunk with metadata
type Chunk struct {
	Filename string `json:"filename"`
	Page     int    `json:"page"`
	Index    int    `json:"chunk"`
	Source   string `json:"source"`
	Content  string `json:"content"`
}

// SourceID builds the composite "page-chunk" id used for citations.
func SourceID(page, index int) string {
	return fmt.Sprintf("%d-%d", page, index)
}

// Metadata returns the provenance of the chunk as stored alongside its vector.
func (c Chunk) Metadata() map[string]string {
	return map[string]string{
		MetaFilename: c.Filename,
		MetaPage:     strconv.Itoa(c.Page),
		MetaChunk:    strconv.Itoa(c.Index),
		MetaSource:   c.Source,
	}
}

// Record is one row written to a vector store.
type Record struct {
	ID        string
	Content   string
	Embedding []float32
	Metadata  map[string]string
}

// Match is a ranked result of a nearest-neighbour query.
type Match struct {
	ID       string
	Score    float32
	Content  string
	Metadata map[string]string
}

// Filename returns the source filename of the matched chunk.
func (m Match) Filename() string {
	return m.Metadata[MetaFilename]
}

// Page returns the page number of the matched chunk, or 0 if it is missing.
func (m Match) Page() int {
	p, err := strconv.Atoi(m.Metadata[MetaPage])
	if err != nil {
		return 0
	}
	return p
}
