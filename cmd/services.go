package main

import (
	"context"
	"fmt"

	"pdf-chat/internal/chunker"
	"pdf-chat/internal/config"
	"pdf-chat/internal/embedding"
	"pdf-chat/internal/ingest"
	"pdf-chat/internal/llmservice"
	"pdf-chat/internal/models"
	"pdf-chat/internal/parser"
	"pdf-chat/internal/rag"
	"pdf-chat/internal/vectorstore"
)

// services holds the remote collaborators a command needs.
type services struct {
	embedder  embedding.Embedder
	index     vectorstore.VectorIndex
	generator llmservice.Generator
}

func newPipeline(cfg *config.Config) *ingest.Pipeline {
	processor := chunker.New(
		chunker.WithChunkSize(cfg.RAG.ChunkSize),
		chunker.WithSeparators(cfg.RAG.Separators),
	)
	return ingest.NewPipeline(parser.NewRegistry(), processor, cfg.RAG.OnParseError)
}

// openServices connects the embedder and vector store, and the generator
// when withGenerator is set.
func openServices(ctx context.Context, cfg *config.Config, withGenerator bool) (*services, error) {
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, err
	}
	index, err := vectorstore.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &services{embedder: embedder, index: index}
	if withGenerator {
		generator, err := llmservice.NewGenerator(&cfg.InferenceLLM)
		if err != nil {
			_ = index.Close()
			return nil, err
		}
		s.generator = generator
	}
	return s, nil
}

func (s *services) chat(cfg *config.Config) *rag.Chat {
	return rag.NewChat(s.embedder, s.index, s.generator, cfg.RAG.TopK)
}

func (s *services) Close() error {
	return s.index.Close()
}

// loadDocuments reads every path; a missing file fails the whole command.
func loadDocuments(paths []string) ([]models.Document, error) {
	docs := make([]models.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := parser.ReadDocument(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
