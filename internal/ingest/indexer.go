package ingest

import (
	"context"

	"github.com/rs/zerolog/log"

	"pdf-chat/internal/embedding"
	"pdf-chat/internal/models"
	"pdf-chat/internal/vectorstore"
)

// Indexer embeds chunks and upserts them into a vector index.
type Indexer struct {
	embedder embedding.Embedder
	index    vectorstore.VectorIndex
}

func NewIndexer(embedder embedding.Embedder, index vectorstore.VectorIndex) *Indexer {
	return &Indexer{embedder: embedder, index: index}
}

// Index stores chunks in input order and returns how many were written.
// Re-indexing the same chunks replaces the earlier records.
func (ix *Indexer) Index(ctx context.Context, chunks []models.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	records, err := embedding.GenerateEmbedding(ctx, ix.embedder, chunks)
	if err != nil {
		return 0, err
	}
	if err := ix.index.Upsert(ctx, records); err != nil {
		return 0, err
	}
	log.Info().Int("chunks", len(records)).Msg("Indexed chunks")
	return len(records), nil
}
