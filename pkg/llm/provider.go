package llm

import (
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrUnsupportedProvider is returned for providers other than openai and ollama.
var ErrUnsupportedProvider = errors.New("unsupported llm provider")

// ProviderConfig selects and configures a model backend.
type ProviderConfig struct {
	Provider string // "openai" or "ollama"
	BaseURL  string
	APIKey   string
	Model    string
}

// NewModel builds a chat model for the configured provider.
func NewModel(config ProviderConfig) (llms.Model, error) {
	switch config.Provider {
	case "openai", "":
		opts := []openai.Option{openai.WithModel(config.Model)}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		if config.APIKey != "" {
			opts = append(opts, openai.WithToken(config.APIKey))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai model: %w", err)
		}
		return llm, nil
	case "ollama":
		llm, err := ollama.New(ollama.WithModel(config.Model), ollama.WithServerURL(config.BaseURL))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ollama model: %w", err)
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, config.Provider)
	}
}
