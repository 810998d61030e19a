// Package rag answers questions about ingested documents by retrieving the
// closest chunks and handing them to the language model as context.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"pdf-chat/internal/embedding"
	"pdf-chat/internal/llmservice"
	"pdf-chat/internal/models"
	"pdf-chat/internal/vectorstore"
)

// Citation points at the page an answer drew from.
type Citation struct {
	Filename string `json:"filename"`
	Page     int    `json:"page"`
}

type Answer struct {
	Text      string         `json:"text"`
	Citations []Citation     `json:"citations,omitempty"`
	Matches   []models.Match `json:"matches,omitempty"`
}

// Chat wires retrieval and generation together.
type Chat struct {
	embedder  embedding.Embedder
	index     vectorstore.VectorIndex
	generator llmservice.Generator
	topK      int
}

func NewChat(embedder embedding.Embedder, index vectorstore.VectorIndex, generator llmservice.Generator, topK int) *Chat {
	if topK <= 0 {
		topK = models.DefaultTopK
	}
	return &Chat{embedder: embedder, index: index, generator: generator, topK: topK}
}

// Ask answers question within session. When nothing relevant is stored the
// answer is models.NeedDocumentMessage, the model is not called and the
// history is left as is. The history is also untouched on error.
func (c *Chat) Ask(ctx context.Context, session *Session, question string) (Answer, error) {
	if session.Closed() {
		return Answer{}, models.ErrSessionClosed
	}

	matches, err := c.Retrieve(ctx, question)
	if errors.Is(err, models.ErrEmptyContext) {
		log.Info().Str("session", session.ID).Msg("No document context, skipping generation")
		return Answer{Text: models.NeedDocumentMessage}, nil
	}
	if err != nil {
		return Answer{}, err
	}

	messages := make([]models.Message, 0, len(session.history)+2)
	messages = append(messages, models.Message{Role: models.RoleSystem, Content: BuildSystemPrompt(matches)})
	messages = append(messages, session.history...)
	messages = append(messages, models.Message{Role: models.RoleUser, Content: question})

	reply, err := c.generator.Generate(ctx, messages)
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}
	session.record(question, reply)

	log.Debug().Str("session", session.ID).Int("matches", len(matches)).Int("turns", len(session.history)).Msg("Answered question")
	return Answer{Text: reply, Citations: Citations(matches), Matches: matches}, nil
}

// Retrieve embeds question and returns the closest chunks. It fails with
// models.ErrEmptyContext when the index has nothing to offer.
func (c *Chat) Retrieve(ctx context.Context, question string) ([]models.Match, error) {
	vector, err := c.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	matches, err := c.index.Query(ctx, vector, c.topK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	if len(matches) == 0 {
		return nil, models.ErrEmptyContext
	}
	return matches, nil
}

// BuildSystemPrompt renders the matched chunks, tagged with filename and
// page, into the system prompt.
func BuildSystemPrompt(matches []models.Match) string {
	extracts := make([]string, len(matches))
	for i, m := range matches {
		extracts[i] = fmt.Sprintf(models.ExtractTemplate, m.Filename(), m.Page(), m.Metadata[models.MetaSource], m.Content)
	}
	return fmt.Sprintf(models.SystemPromptTemplate, strings.Join(extracts, models.ContextSeparator))
}

// Citations lists the distinct pages behind matches in rank order.
func Citations(matches []models.Match) []Citation {
	seen := make(map[Citation]bool, len(matches))
	var out []Citation
	for _, m := range matches {
		c := Citation{Filename: m.Filename(), Page: m.Page()}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
