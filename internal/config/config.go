package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pdf-chat/internal/models"
)

// Providers, stores and policies accepted in the config file.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	StoreChromem  = "chromem"
	StorePgvector = "pgvector"
	StoreQdrant   = "qdrant"

	DriverPgdriver = "pgdriver"
	DriverPq       = "pq"

	OnParseErrorSkip  = "skip"
	OnParseErrorAbort = "abort"
)

type Config struct {
	Log          LogConfig         `yaml:"log"`
	EmbedLLM     LLMConfig         `yaml:"embed_llm"`
	InferenceLLM LLMConfig         `yaml:"inference_llm"`
	RAG          RAGConfig         `yaml:"rag"`
	VectorStore  VectorStoreConfig `yaml:"vector_store"`
	Database     DatabaseConfig    `yaml:"database"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// LLMConfig describes one model endpoint, used for both embeddings and inference.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	BaseURL     string  `yaml:"base_url"`
	Key         string  `yaml:"key"`
	Model       string  `yaml:"model"`
	BatchSize   int     `yaml:"batch_size"`
	Dimension   int     `yaml:"dimension"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type RAGConfig struct {
	ChunkSize     int      `yaml:"chunk_size"`
	ChunkOverlap  int      `yaml:"chunk_overlap"`
	TopK          int      `yaml:"top_k"`
	Separators    []string `yaml:"separators"`
	OnParseError  string   `yaml:"on_parse_error"`
	EncryptionKey string   `yaml:"encryption_key"`
}

type VectorStoreConfig struct {
	Type       string `yaml:"type"`
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	InMemory   bool   `yaml:"in_memory"`
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Table    string `yaml:"table"`
	Debug    bool   `yaml:"debug"`
}

// LoadConfig reads .env (if present), the YAML file at path (if present),
// applies environment overrides and defaults, and validates the result.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: load .env: %v", models.ErrConfig, err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", models.ErrConfig, path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("%w: read %s: %v", models.ErrConfig, path, err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Console: true},
		EmbedLLM: LLMConfig{
			Provider:  ProviderOllama,
			BaseURL:   "http://localhost:11434",
			Model:     "all-minilm",
			BatchSize: 32,
			Dimension: 384,
		},
		InferenceLLM: LLMConfig{
			Provider:    ProviderOllama,
			BaseURL:     "http://localhost:11434",
			Model:       "llama3.2",
			Temperature: 0.2,
			MaxTokens:   1024,
		},
		RAG: RAGConfig{
			ChunkSize:    models.DefaultChunkSize,
			TopK:         models.DefaultTopK,
			Separators:   append([]string(nil), models.DefaultSeparators...),
			OnParseError: OnParseErrorSkip,
		},
		VectorStore: VectorStoreConfig{
			Type:       StoreChromem,
			Path:       "./chromemdb",
			Collection: "pdf_embeddings",
		},
		Database: DatabaseConfig{
			Driver: DriverPgdriver,
			Table:  "documents",
		},
	}
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		env    string
		target *string
	}{
		{"EMBEDDING_PROVIDER", &cfg.EmbedLLM.Provider},
		{"EMBEDDING_BASE_URL", &cfg.EmbedLLM.BaseURL},
		{"EMBEDDING_API_KEY", &cfg.EmbedLLM.Key},
		{"EMBEDDING_MODEL", &cfg.EmbedLLM.Model},
		{"LLM_PROVIDER", &cfg.InferenceLLM.Provider},
		{"LLM_BASE_URL", &cfg.InferenceLLM.BaseURL},
		{"LLM_API_KEY", &cfg.InferenceLLM.Key},
		{"LLM_MODEL", &cfg.InferenceLLM.Model},
		{"VECTOR_STORE", &cfg.VectorStore.Type},
		{"VECTOR_STORE_URL", &cfg.VectorStore.URL},
		{"VECTOR_STORE_API_KEY", &cfg.VectorStore.APIKey},
		{"DATABASE_URL", &cfg.Database.DSN},
		{"DATABASE_PASSWORD", &cfg.Database.Password},
		{"RAG_ENCRYPTION_KEY", &cfg.RAG.EncryptionKey},
		{"LOG_LEVEL", &cfg.Log.Level},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.env); ok && v != "" {
			*o.target = v
		}
	}
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = def.RAG.ChunkSize
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = def.RAG.TopK
	}
	if cfg.RAG.OnParseError == "" {
		cfg.RAG.OnParseError = def.RAG.OnParseError
	}
	if cfg.EmbedLLM.BatchSize == 0 {
		cfg.EmbedLLM.BatchSize = def.EmbedLLM.BatchSize
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = def.VectorStore.Collection
	}
	if cfg.Database.Table == "" {
		cfg.Database.Table = def.Database.Table
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = def.Database.Driver
	}
	cfg.EmbedLLM.Provider = strings.ToLower(cfg.EmbedLLM.Provider)
	cfg.InferenceLLM.Provider = strings.ToLower(cfg.InferenceLLM.Provider)
	cfg.VectorStore.Type = strings.ToLower(cfg.VectorStore.Type)
}

// Validate reports the first missing or invalid setting as an ErrConfig.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", models.ErrConfig, fmt.Sprintf(format, args...))
	}

	llms := []struct {
		name string
		cfg  LLMConfig
	}{
		{"embed_llm", c.EmbedLLM},
		{"inference_llm", c.InferenceLLM},
	}
	for _, l := range llms {
		name, llm := l.name, l.cfg
		switch llm.Provider {
		case ProviderOpenAI:
			if llm.Key == "" {
				return invalid("%s: api key is required for provider %q", name, llm.Provider)
			}
		case ProviderOllama:
		default:
			return invalid("%s: unknown provider %q", name, llm.Provider)
		}
		if llm.Model == "" {
			return invalid("%s: model is required", name)
		}
	}
	if c.EmbedLLM.Dimension <= 0 {
		return invalid("embed_llm: dimension must be positive")
	}

	if c.RAG.ChunkSize <= 0 {
		return invalid("rag: chunk_size must be positive")
	}
	if c.RAG.ChunkOverlap != 0 {
		return invalid("rag: chunk_overlap must be 0")
	}
	if c.RAG.TopK <= 0 {
		return invalid("rag: top_k must be positive")
	}
	if len(c.RAG.Separators) == 0 {
		return invalid("rag: separators must not be empty")
	}
	if c.RAG.EncryptionKey != "" && len(c.RAG.EncryptionKey) != 32 {
		return invalid("rag: encryption_key must be 32 bytes")
	}
	switch c.RAG.OnParseError {
	case OnParseErrorSkip, OnParseErrorAbort:
	default:
		return invalid("rag: unknown on_parse_error %q", c.RAG.OnParseError)
	}

	switch c.VectorStore.Type {
	case StoreChromem:
		if !c.VectorStore.InMemory && c.VectorStore.Path == "" {
			return invalid("vector_store: path is required for a persistent chromem store")
		}
	case StorePgvector:
		if c.Database.DSN == "" {
			return invalid("database: dsn is required for the pgvector store")
		}
		switch c.Database.Driver {
		case DriverPgdriver, DriverPq:
		default:
			return invalid("database: unknown driver %q", c.Database.Driver)
		}
	case StoreQdrant:
		if c.VectorStore.URL == "" {
			return invalid("vector_store: url is required for the qdrant store")
		}
	default:
		return invalid("vector_store: unknown type %q", c.VectorStore.Type)
	}
	return nil
}
