package vectorstore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"pdf-chat/internal/chromemdb"
	"pdf-chat/internal/config"
	"pdf-chat/internal/db"
	"pdf-chat/internal/models"
	"pdf-chat/internal/qdrant"
)

// VectorIndex stores chunk records and answers nearest-neighbour queries.
type VectorIndex interface {
	// Upsert writes records, replacing any with the same id.
	Upsert(ctx context.Context, records []models.Record) error
	// Query returns at most topK matches ordered by descending similarity,
	// and an empty slice when nothing is stored.
	Query(ctx context.Context, vector []float32, topK int) ([]models.Match, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

var (
	_ VectorIndex = (*chromemdb.VectorDBManager)(nil)
	_ VectorIndex = (*db.Store)(nil)
	_ VectorIndex = (*qdrant.Storage)(nil)
)

// Open connects to the backend named by cfg.VectorStore.Type.
func Open(ctx context.Context, cfg *config.Config) (VectorIndex, error) {
	vs := cfg.VectorStore
	log.Debug().Str("type", vs.Type).Str("collection", vs.Collection).Msg("Opening vector store")

	switch vs.Type {
	case config.StoreChromem:
		m, err := chromemdb.NewVectorDBManager(vs.Path, vs.Collection, vs.InMemory, cfg.RAG.EncryptionKey)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.StorePgvector:
		s, err := db.NewStore(ctx, cfg.Database, cfg.EmbedLLM.Dimension)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreQdrant:
		s := qdrant.NewStorage(qdrant.Config{URL: vs.URL, APIKey: vs.APIKey, Collection: vs.Collection})
		if err := s.Init(ctx, cfg.EmbedLLM.Dimension); err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: unknown vector store %q", models.ErrConfig, vs.Type)
}
