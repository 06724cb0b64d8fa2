package fake

import (
	"context"
	"strings"
	"sync"

	"github.com/xhad/buddy/internal/models"
)

// Upsert is one recorded VectorIndex.Upsert invocation.
type Upsert struct {
	ID       string
	Vector   []float32
	Metadata map[string]interface{}
}

// VectorIndex is a test double for types.VectorIndex. Without QueryFunc,
// Query returns nothing.
type VectorIndex struct {
	UpsertFunc func(ctx context.Context, id string, vector []float32, metadata map[string]interface{}) error
	QueryFunc  func(ctx context.Context, vector []float32, topK int) ([]models.VectorMatch, error)

	mu      sync.Mutex
	upserts []Upsert
	topKs   []int
}

func (v *VectorIndex) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]interface{}) error {
	v.mu.Lock()
	v.upserts = append(v.upserts, Upsert{ID: id, Vector: vector, Metadata: metadata})
	v.mu.Unlock()

	if v.UpsertFunc != nil {
		return v.UpsertFunc(ctx, id, vector, metadata)
	}
	return nil
}

func (v *VectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]models.VectorMatch, error) {
	v.mu.Lock()
	v.topKs = append(v.topKs, topK)
	v.mu.Unlock()

	if v.QueryFunc != nil {
		return v.QueryFunc(ctx, vector, topK)
	}
	return nil, nil
}

func (v *VectorIndex) Upserts() []Upsert {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Upsert(nil), v.upserts...)
}

// TopKs returns the topK argument of every Query call.
func (v *VectorIndex) TopKs() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]int(nil), v.topKs...)
}

// MetadataStore is a test double for types.MetadataStore. By default it
// matches Docs whose joined tag string contains the pattern, ignoring case.
type MetadataStore struct {
	Docs      []models.DocumentRecord
	QueryFunc func(ctx context.Context, pattern string) ([]models.DocumentRecord, error)

	mu       sync.Mutex
	patterns []string
}

func (s *MetadataStore) QueryByTagSubstring(ctx context.Context, pattern string) ([]models.DocumentRecord, error) {
	s.mu.Lock()
	s.patterns = append(s.patterns, pattern)
	s.mu.Unlock()

	if s.QueryFunc != nil {
		return s.QueryFunc(ctx, pattern)
	}

	needle := strings.ToLower(pattern)
	var out []models.DocumentRecord
	for _, doc := range s.Docs {
		if strings.Contains(strings.ToLower(models.JoinTags(doc.Tags)), needle) {
			out = append(out, doc)
		}
	}
	return out, nil
}

// Patterns returns the pattern of every query in call order.
func (s *MetadataStore) Patterns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.patterns...)
}
