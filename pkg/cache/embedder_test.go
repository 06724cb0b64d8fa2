package cache_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/buddy/internal/fake"
	"github.com/xhad/buddy/pkg/cache"
)

type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, cache.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
}

func TestCachedEmbedderQuery(t *testing.T) {
	ctx := context.Background()
	inner := &fake.Embedder{}
	counter := newCounter()
	c := cache.New(inner, newMemStore(), "ada", counter, nil)

	first, err := c.EmbedQuery(ctx, "study tips")
	require.NoError(t, err)
	second, err := c.EmbedQuery(ctx, "study tips")
	require.NoError(t, err)

	assert.Equal(t, fake.Vector("study tips"), first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.CallCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues("miss")))
}

func TestCachedEmbedderModelScope(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	inner := &fake.Embedder{}

	_, err := cache.New(inner, store, "ada", nil, nil).EmbedQuery(ctx, "x")
	require.NoError(t, err)
	_, err = cache.New(inner, store, "nomic", nil, nil).EmbedQuery(ctx, "x")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.CallCount())
	assert.Len(t, store.data, 2)
}

func TestCachedEmbedderDocuments(t *testing.T) {
	ctx := context.Background()

	var batches [][]string
	inner := &fake.Embedder{EmbedDocumentsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
		batches = append(batches, texts)
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = fake.Vector(text)
		}
		return out, nil
	}}
	c := cache.New(inner, newMemStore(), "ada", nil, nil)

	_, err := c.EmbedDocuments(ctx, []string{"a", "b"})
	require.NoError(t, err)

	vecs, err := c.EmbedDocuments(ctx, []string{"b", "c", "a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{fake.Vector("b"), fake.Vector("c"), fake.Vector("a")}, vecs)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, batches)

	_, err = c.EmbedDocuments(ctx, []string{"a", "c"})
	require.NoError(t, err)
	assert.Len(t, batches, 2)
}

func TestCachedEmbedderStoreFailures(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.getErr = errors.New("redis down")
	store.setErr = errors.New("redis down")
	inner := &fake.Embedder{}

	vec, err := cache.New(inner, store, "ada", nil, nil).EmbedQuery(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, fake.Vector("x"), vec)
}

func TestCachedEmbedderCorruptEntry(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	inner := &fake.Embedder{}
	c := cache.New(inner, store, "ada", nil, nil)

	_, err := c.EmbedQuery(ctx, "x")
	require.NoError(t, err)
	for k := range store.data {
		store.data[k] = []byte{1, 2, 3}
	}

	vec, err := c.EmbedQuery(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, fake.Vector("x"), vec)
	assert.Equal(t, 2, inner.CallCount())
}

func TestCachedEmbedderInnerError(t *testing.T) {
	boom := errors.New("quota")
	inner := &fake.Embedder{EmbedQueryFunc: func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	}}
	_, err := cache.New(inner, newMemStore(), "ada", nil, nil).EmbedQuery(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}
