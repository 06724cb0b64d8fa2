package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var supportedProviders = map[string]bool{
	"openai": true,
	"ollama": true,
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// LLM
	if !supportedProviders[c.LLM.Provider] {
		errors = append(errors, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unsupported provider %q", c.LLM.Provider),
		})
	}

	if c.LLM.Provider == "ollama" && c.LLM.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "Ollama base URL is required",
		})
	}

	if c.LLM.BaseURL != "" && !isHTTPURL(c.LLM.BaseURL) {
		errors = append(errors, ValidationError{
			Field:   "llm.base_url",
			Message: "invalid base URL",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 8192 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 8192",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if !supportedProviders[c.Embedding.Provider] {
		errors = append(errors, ValidationError{
			Field:   "embedding.provider",
			Message: fmt.Sprintf("unsupported provider %q", c.Embedding.Provider),
		})
	}

	// Database
	if c.Database.URL != "" {
		if u, err := url.Parse(c.Database.URL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.Database.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	// Retrieval
	if c.Retrieval.TopK < 1 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.top_k",
			Message: "top_k must be positive",
		})
	}

	if c.Retrieval.MaxMatches < 1 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.max_matches",
			Message: "max_matches must be positive",
		})
	}

	if c.Retrieval.ContextTokens < 1 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.context_tokens",
			Message: "context_tokens must be positive",
		})
	}

	// Ingest
	if c.Ingest.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "ingest.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "ingest.chunk_overlap",
			Message: "chunk_overlap must be non-negative and less than chunk_size",
		})
	}

	if c.Ingest.UpsertInterval < 0 {
		errors = append(errors, ValidationError{
			Field:   "ingest.upsert_interval",
			Message: "upsert_interval must not be negative",
		})
	}

	// Presenter
	if c.Presenter.WindowWords < 1 {
		errors = append(errors, ValidationError{
			Field:   "presenter.window_words",
			Message: "window_words must be positive",
		})
	}

	return errors
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
