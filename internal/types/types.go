package types

import (
	"context"

	"github.com/xhad/buddy/internal/models"
)

// Core collaborator interfaces. Every call blocks until the external
// service answers.

type Completer interface {
	Complete(ctx context.Context, system, human string) (string, error)
}

type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

type VectorIndex interface {
	Upsert(ctx context.Context, id string, vector []float32, metadata map[string]interface{}) error
	Query(ctx context.Context, vector []float32, topK int) ([]models.VectorMatch, error)
}

type MetadataStore interface {
	QueryByTagSubstring(ctx context.Context, pattern string) ([]models.DocumentRecord, error)
}

type Tokenizer interface {
	Count(text string) int
	Truncate(text string, maxTokens int) string
}
