package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"pdf-chat/internal/config"
	"pdf-chat/internal/helper"
	"pdf-chat/internal/models"
)

// Embedder turns text into fixed-dimension vectors.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// serviceEmbedder wraps a langchaingo embedder, tagging failures with
// ErrEmbeddingService and rejecting vectors of the wrong size.
type serviceEmbedder struct {
	impl      *embeddings.EmbedderImpl
	dimension int
}

var _ Embedder = (*serviceEmbedder)(nil)

// NewEmbedder creates an embedder for the configured provider.
func NewEmbedder(cfg *config.LLMConfig) (Embedder, error) {
	log.Debug().Interface("config", map[string]string{
		"provider":        cfg.Provider,
		"base_url":        cfg.BaseURL,
		"embedding_model": cfg.Model,
	}).Msg("Loaded config")

	var client embeddings.EmbedderClient
	switch cfg.Provider {
	case config.ProviderOpenAI:
		llm, err := openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
			openai.WithEmbeddingModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: init openai client: %v", models.ErrEmbeddingService, err)
		}
		client = llm
	case config.ProviderOllama:
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: init ollama client: %v", models.ErrEmbeddingService, err)
		}
		client = llm
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", models.ErrConfig, cfg.Provider)
	}

	return newServiceEmbedder(client, cfg.BatchSize, cfg.Dimension)
}

func newServiceEmbedder(client embeddings.EmbedderClient, batchSize, dimension int) (*serviceEmbedder, error) {
	opts := []embeddings.Option{embeddings.WithStripNewLines(false)}
	if batchSize > 0 {
		opts = append(opts, embeddings.WithBatchSize(batchSize))
	}
	impl, err := embeddings.NewEmbedder(client, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: create embedder: %v", models.ErrEmbeddingService, err)
	}
	return &serviceEmbedder{impl: impl, dimension: dimension}, nil
}

func (e *serviceEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingService, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", models.ErrEmbeddingService, len(vectors), len(texts))
	}
	for _, v := range vectors {
		if err := e.checkDimension(v); err != nil {
			return nil, err
		}
	}
	return vectors, nil
}

func (e *serviceEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.impl.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingService, err)
	}
	if err := e.checkDimension(vector); err != nil {
		return nil, err
	}
	return vector, nil
}

func (e *serviceEmbedder) checkDimension(v []float32) error {
	if e.dimension > 0 && len(v) != e.dimension {
		return fmt.Errorf("%w: expected %d dimensions, got %d", models.ErrEmbeddingService, e.dimension, len(v))
	}
	return nil
}

// GenerateEmbedding embeds chunks in one batch and returns the records to
// store, in chunk order.
func GenerateEmbedding(ctx context.Context, embedder Embedder, chunks []models.Chunk) ([]models.Record, error) {
	if len(chunks) == 0 {
		log.Info().Msg("No chunks generated from content")
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", models.ErrEmbeddingService, len(vectors), len(chunks))
	}

	records := make([]models.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = models.Record{
			ID:        helper.RecordID(chunk),
			Content:   chunk.Content,
			Embedding: vectors[i],
			Metadata:  chunk.Metadata(),
		}
	}
	return records, nil
}
