package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/xhad/buddy/internal/types"
)

// ErrNoChoices is returned when the model answers without any choice.
var ErrNoChoices = errors.New("no response from LLM")

// ChatConfig represents the configuration for a chat engine.
type ChatConfig struct {
	ProviderConfig
	Temperature float64
	MaxTokens   int
}

// ChatEngine sends role-tagged messages to an LLM and returns the completion.
type ChatEngine struct {
	config ChatConfig
	llm    llms.Model
}

// NewWithConfig creates a new ChatEngine with the given configuration.
func NewWithConfig(config ChatConfig) (*ChatEngine, error) {
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	}

	llm, err := NewModel(config.ProviderConfig)
	if err != nil {
		return nil, err
	}
	return New(llm, config), nil
}

// New wraps an existing model.
func New(llm llms.Model, config ChatConfig) *ChatEngine {
	return &ChatEngine{config: config, llm: llm}
}

// Complete sends a system and a human message and waits for the whole
// completion.
func (ce *ChatEngine) Complete(ctx context.Context, system, human string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, human),
	}

	opts := []llms.CallOption{llms.WithTemperature(ce.config.Temperature)}
	if ce.config.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(ce.config.MaxTokens))
	}

	response, err := ce.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", types.Collaborator("chat", "complete", err)
	}
	if response == nil || len(response.Choices) == 0 || response.Choices[0] == nil {
		return "", types.Collaborator("chat", "complete", ErrNoChoices)
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}
