package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/xhad/buddy/internal/types"
)

// NewEmbedder builds an embedder for the configured provider. Failures of
// the returned embedder are collaborator errors.
func NewEmbedder(config ProviderConfig) (types.Embedder, error) {
	var client embeddings.EmbedderClient
	switch config.Provider {
	case "openai", "":
		opts := []openai.Option{openai.WithEmbeddingModel(config.Model)}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		if config.APIKey != "" {
			opts = append(opts, openai.WithToken(config.APIKey))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize openai embedder: %w", err)
		}
		client = llm
	case "ollama":
		llm, err := ollama.New(ollama.WithModel(config.Model), ollama.WithServerURL(config.BaseURL))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ollama embedder: %w", err)
		}
		client = llm
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, config.Provider)
	}

	emb, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	return &Embedder{inner: emb}, nil
}

// Embedder adapts a langchaingo embedder to the collaborator contract.
type Embedder struct {
	inner embeddings.Embedder
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, types.Collaborator("embedder", "embed query", err)
	}
	return vec, nil
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := e.inner.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, types.Collaborator("embedder", "embed documents", err)
	}
	return vecs, nil
}

// WrapEmbedder adapts an already built langchaingo embedder.
func WrapEmbedder(inner embeddings.Embedder) *Embedder {
	return &Embedder{inner: inner}
}
