// Package chunker splits normalized page text into bounded-size chunks that
// carry their provenance (filename, page, position).
package chunker

import (
	"slices"

	"pdf-chat/internal/models"
)

// Processor chunks pages with a fixed maximum size and separator list.
type Processor struct {
	chunkSize  int
	separators []string
}

// Option configures the chunk processor.
type Option func(*Processor)

// WithChunkSize sets the maximum chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithSeparators sets the split separators, coarsest first.
func WithSeparators(separators []string) Option {
	return func(p *Processor) {
		if len(separators) > 0 {
			p.separators = slices.Clone(separators)
		}
	}
}

// New creates a chunk processor. Without options it uses 4000 characters and
// paragraph > line > sentence > clause > word > character separators.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  models.DefaultChunkSize,
		separators: slices.Clone(models.DefaultSeparators),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ChunkSize returns the configured maximum chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Chunk splits one page and tags every piece with its provenance.
// An empty page yields no chunks.
func (p *Processor) Chunk(filename string, page models.Page) []models.Chunk {
	pieces := Split(page.Text, p.chunkSize, p.separators)
	if len(pieces) == 0 {
		return nil
	}

	chunks := make([]models.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, models.Chunk{
			Filename: filename,
			Page:     page.Number,
			Index:    i,
			Source:   models.SourceID(page.Number, i),
			Content:  piece,
		})
	}
	return chunks
}
