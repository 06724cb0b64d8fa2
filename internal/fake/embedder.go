package fake

import (
	"context"
	"hash/fnv"
	"sync"
)

// Dim is the length of vectors produced by the default Embedder behavior.
const Dim = 8

// Embedder is a test double for types.Embedder. By default it returns a
// deterministic vector derived from the text hash.
type Embedder struct {
	EmbedQueryFunc     func(ctx context.Context, text string) ([]float32, error)
	EmbedDocumentsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	mu        sync.Mutex
	callCount int
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.count()
	if e.EmbedQueryFunc != nil {
		return e.EmbedQueryFunc(ctx, text)
	}
	return Vector(text), nil
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.count()
	if e.EmbedDocumentsFunc != nil {
		return e.EmbedDocumentsFunc(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = Vector(text)
	}
	return out, nil
}

func (e *Embedder) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callCount
}

func (e *Embedder) count() {
	e.mu.Lock()
	e.callCount++
	e.mu.Unlock()
}

// Vector returns the deterministic default embedding of text.
func Vector(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vec := make([]float32, Dim)
	for i := range vec {
		seed = seed*1103515245 + 12345
		vec[i] = float32(seed%1000) / 1000
	}
	return vec
}
