// Package ingest turns documents into chunks and stores their embeddings.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"pdf-chat/internal/chunker"
	"pdf-chat/internal/config"
	"pdf-chat/internal/models"
	"pdf-chat/internal/normalizer"
	"pdf-chat/internal/parser"
)

// Result holds the chunks of every document that parsed, in document, page,
// chunk order, and the documents that were skipped.
type Result struct {
	Chunks  []models.Chunk
	Skipped []*models.ParseError
}

// Pipeline extracts, normalizes and chunks documents.
type Pipeline struct {
	extractor parser.Extractor
	chunker   *chunker.Processor
	abort     bool
}

// NewPipeline builds a pipeline. policy is config.OnParseErrorSkip or
// config.OnParseErrorAbort.
func NewPipeline(extractor parser.Extractor, chunker *chunker.Processor, policy string) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		chunker:   chunker,
		abort:     policy == config.OnParseErrorAbort,
	}
}

// Run processes docs in order. A document that fails to parse is either
// skipped and reported in Result.Skipped, or aborts the whole batch,
// depending on the policy. Chunk ids derive from the filename, so a second
// document with an already ingested name is treated as a parse failure.
func (p *Pipeline) Run(ctx context.Context, docs []models.Document) (Result, error) {
	var result Result
	ingested := make(map[string]bool, len(docs))
	for _, doc := range docs {
		var (
			chunks []models.Chunk
			err    error
		)
		if ingested[doc.Filename] {
			err = &models.ParseError{Filename: doc.Filename, Err: models.ErrDuplicateDocument}
		} else {
			chunks, err = p.process(ctx, doc)
		}
		if err != nil {
			var parseErr *models.ParseError
			if !errors.As(err, &parseErr) || p.abort {
				return Result{}, err
			}
			log.Warn().Err(parseErr.Err).Str("filename", doc.Filename).Msg("Skipping document")
			result.Skipped = append(result.Skipped, parseErr)
			continue
		}
		ingested[doc.Filename] = true
		result.Chunks = append(result.Chunks, chunks...)
	}

	log.Info().
		Int("documents", len(docs)).
		Int("skipped", len(result.Skipped)).
		Int("chunks", len(result.Chunks)).
		Msg("Ingestion finished")
	return result, nil
}

func (p *Pipeline) process(ctx context.Context, doc models.Document) ([]models.Chunk, error) {
	pages, err := p.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for _, page := range pages {
		text, err := normalizer.Normalize(page.Text)
		if err != nil {
			return nil, &models.ParseError{
				Filename: doc.Filename,
				Err:      fmt.Errorf("page %d: %w", page.Number, err),
			}
		}
		page.Text = text
		chunks = append(chunks, p.chunker.Chunk(doc.Filename, page)...)
	}

	log.Debug().Str("filename", doc.Filename).Int("pages", len(pages)).Int("chunks", len(chunks)).Msg("Processed document")
	return chunks, nil
}
