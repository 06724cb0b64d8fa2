package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"BUDDY_LLM_BASE_URL", "OLLAMA_BASE_URL", "OPENAI_API_KEY", "DATABASE_URL", "REDIS_ADDR", "BUDDY_ENV"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
llm:
  provider: "ollama"
  base_url: "http://localhost:11434"
  model: "mistral"
  max_tokens: 1000
  temperature: 0.5

embedding:
  model: "nomic-embed-text:latest"

database:
  url: "postgres://localhost:5432/test"
  documents_table: "test_docs"
  vector_dim: 768

retrieval:
  top_k: 7
  context_tokens: 2000

ingest:
  chunk_size: 4000
  upsert_interval: 250ms

presenter:
  window_words: 3
  word_delay: 5ms
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "ollama", config.LLM.Provider)
	assert.Equal(t, "http://localhost:11434", config.LLM.BaseURL)
	assert.Equal(t, "mistral", config.LLM.Model)
	assert.Equal(t, 1000, config.LLM.MaxTokens)
	assert.Equal(t, 0.5, config.LLM.Temperature)
	assert.Equal(t, "ollama", config.Embedding.Provider)
	assert.Equal(t, "http://localhost:11434", config.Embedding.BaseURL)
	assert.Equal(t, "postgres://localhost:5432/test", config.Database.URL)
	assert.Equal(t, "test_docs", config.Database.DocumentsTable)
	assert.Equal(t, "document_chunks", config.Database.ChunksTable)
	assert.Equal(t, 768, config.Database.VectorDim)
	assert.Equal(t, 7, config.Retrieval.TopK)
	assert.Equal(t, 3, config.Retrieval.MaxMatches)
	assert.Equal(t, 2000, config.Retrieval.ContextTokens)
	assert.Equal(t, 4000, config.Ingest.ChunkSize)
	assert.Equal(t, 250*time.Millisecond, config.Ingest.UpsertInterval)
	assert.Equal(t, 3, config.Presenter.WindowWords)
	assert.Equal(t, 5*time.Millisecond, config.Presenter.WordDelay)
	assert.Empty(t, config.Validate())
}

func TestDefaultConfig(t *testing.T) {
	clearEnv(t)

	config := getDefaultConfig()

	assert.Equal(t, "openai", config.LLM.Provider)
	assert.Equal(t, "gpt-4", config.LLM.Model)
	assert.Equal(t, 0.3, config.LLM.Temperature)
	assert.Equal(t, "text-embedding-ada-002", config.Embedding.Model)
	assert.Equal(t, 1536, config.Database.VectorDim)
	assert.Equal(t, 5, config.Retrieval.TopK)
	assert.Equal(t, 3, config.Retrieval.MaxMatches)
	assert.Equal(t, 4000, config.Retrieval.ContextTokens)
	assert.Equal(t, "cl100k_base", config.Retrieval.Encoding)
	assert.Equal(t, 8000, config.Ingest.ChunkSize)
	assert.Equal(t, time.Second, config.Ingest.UpsertInterval)
	assert.Equal(t, 5, config.Presenter.WindowWords)
	assert.Equal(t, ":8080", config.Server.Addr)
	assert.Empty(t, config.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name          string
		mutate        func(c *Config)
		errorMessages []string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name: "invalid llm",
			mutate: func(c *Config) {
				c.LLM.Provider = "ollama"
				c.LLM.BaseURL = ""
				c.Embedding.Provider = "cohere"
				c.LLM.MaxTokens = 9000
				c.LLM.Temperature = 3.0
			},
			errorMessages: []string{
				"llm.base_url: Ollama base URL is required",
				"llm.max_tokens: max_tokens must be between 1 and 8192",
				"llm.temperature: temperature must be between 0 and 2",
				`embedding.provider: unsupported provider "cohere"`,
			},
		},
		{
			name: "invalid storage and retrieval",
			mutate: func(c *Config) {
				c.Database.URL = "mysql://localhost/db"
				c.Database.VectorDim = -1
				c.Retrieval.TopK = 0
				c.Retrieval.ContextTokens = 0
			},
			errorMessages: []string{
				"database.url: invalid database URL",
				"database.vector_dim: vector_dim must be positive",
				"retrieval.top_k: top_k must be positive",
				"retrieval.context_tokens: context_tokens must be positive",
			},
		},
		{
			name: "invalid ingest",
			mutate: func(c *Config) {
				c.Ingest.ChunkOverlap = c.Ingest.ChunkSize
				c.Presenter.WindowWords = 0
			},
			errorMessages: []string{
				"ingest.chunk_overlap: chunk_overlap must be non-negative and less than chunk_size",
				"presenter.window_words: window_words must be positive",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := getDefaultConfig()
			tt.mutate(config)

			errors := config.Validate()
			require.Len(t, errors, len(tt.errorMessages))
			for i, msg := range tt.errorMessages {
				assert.Contains(t, errors[i].Error(), msg)
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BUDDY_LLM_BASE_URL", "http://env-llm:11434")
	t.Setenv("DATABASE_URL", "postgres://env-db:5432/test")
	t.Setenv("REDIS_ADDR", "env-redis:6379")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	config := &Config{}
	mergeWithEnv(config)

	assert.Equal(t, "http://env-llm:11434", config.LLM.BaseURL)
	assert.Equal(t, "postgres://env-db:5432/test", config.Database.URL)
	assert.Equal(t, "env-redis:6379", config.Cache.RedisAddr)
	assert.Equal(t, "sk-test", config.LLM.APIKey)
}
