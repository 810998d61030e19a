package llmservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"pdf-chat/internal/config"
	"pdf-chat/internal/models"
)

// Generator produces a reply for an ordered list of chat messages.
type Generator interface {
	Generate(ctx context.Context, messages []models.Message) (string, error)
}

// LLMGenerator adapts a langchaingo model to Generator.
type LLMGenerator struct {
	llm         llms.Model
	temperature float64
	maxTokens   int
}

var _ Generator = (*LLMGenerator)(nil)

// NewGenerator connects to the inference model described by cfg.
func NewGenerator(cfg *config.LLMConfig) (*LLMGenerator, error) {
	log.Debug().Str("provider", cfg.Provider).Str("model", cfg.Model).Msg("Creating inference client")

	var (
		llm llms.Model
		err error
	)
	switch cfg.Provider {
	case config.ProviderOpenAI:
		llm, err = openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
		)
	case config.ProviderOllama:
		llm, err = ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
	default:
		return nil, fmt.Errorf("%w: unknown inference provider %q", models.ErrConfig, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: init %s client: %v", models.ErrGenerationService, cfg.Provider, err)
	}
	return NewLLMGenerator(llm, cfg.Temperature, cfg.MaxTokens), nil
}

// NewLLMGenerator wraps an already constructed model.
func NewLLMGenerator(llm llms.Model, temperature float64, maxTokens int) *LLMGenerator {
	return &LLMGenerator{llm: llm, temperature: temperature, maxTokens: maxTokens}
}

func (g *LLMGenerator) Generate(ctx context.Context, messages []models.Message) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		role, err := chatRole(m.Role)
		if err != nil {
			return "", err
		}
		content = append(content, llms.TextParts(role, m.Content))
	}

	opts := []llms.CallOption{llms.WithTemperature(g.temperature)}
	if g.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(g.maxTokens))
	}

	resp, err := GenerateContent(ctx, g.llm, content, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrGenerationService, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", models.ErrGenerationService)
	}
	return resp.Choices[0].Content, nil
}

// GenerateContent calls the model and logs the exchange size.
func GenerateContent(ctx context.Context, llm llms.Model, messages []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	log.Debug().Int("messages", len(messages)).Msg("Generating content")
	resp, err := llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("choices", len(resp.Choices)).Msg("Generated content")
	return resp, nil
}

func chatRole(role string) (schema.ChatMessageType, error) {
	switch role {
	case models.RoleSystem:
		return schema.ChatMessageTypeSystem, nil
	case models.RoleUser:
		return schema.ChatMessageTypeHuman, nil
	case models.RoleAssistant:
		return schema.ChatMessageTypeAI, nil
	}
	return "", fmt.Errorf("%w: unknown message role %q", models.ErrGenerationService, role)
}
