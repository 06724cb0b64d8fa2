package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xhad/buddy/internal/models"
	"github.com/xhad/buddy/internal/types"
	"github.com/xhad/buddy/pkg/processor"
	"github.com/xhad/buddy/pkg/retrieval"
)

// DefaultUpsertInterval is the pause between two index writes.
const DefaultUpsertInterval = time.Second

type Config struct {
	ChunkSize    int
	ChunkOverlap int
	// UpsertInterval is the minimum gap between index writes. Zero disables
	// pacing; a negative value uses DefaultUpsertInterval.
	UpsertInterval time.Duration
}

// Progress is reported after every stored chunk.
type Progress struct {
	Source string
	Stored int
	Total  int
}

// Report summarizes one ingested source.
type Report struct {
	FileID string `json:"file_id"`
	Source string `json:"source"`
	Chunks int    `json:"chunks"`
	Tokens int    `json:"tokens"`
}

// Ingester chunks, embeds and stores documents. Index writes are paced by a
// limiter owned by the Ingester, so query traffic never waits on it.
type Ingester struct {
	embedder   types.Embedder
	index      types.VectorIndex
	tokenizer  types.Tokenizer
	processor  processor.Processor
	limiter    *rate.Limiter
	logger     *zap.Logger
	newID      func() string
	onProgress func(Progress)
}

// Option configures an Ingester.
type Option func(*Ingester)

func WithLogger(logger *zap.Logger) Option {
	return func(in *Ingester) {
		if logger != nil {
			in.logger = logger
		}
	}
}

// WithProgress registers a callback invoked after each stored chunk.
func WithProgress(fn func(Progress)) Option {
	return func(in *Ingester) {
		in.onProgress = fn
	}
}

// WithIDFunc replaces the file id generator.
func WithIDFunc(fn func() string) Option {
	return func(in *Ingester) {
		in.newID = fn
	}
}

func New(embedder types.Embedder, index types.VectorIndex, tokenizer types.Tokenizer, config Config, opts ...Option) *Ingester {
	if config.UpsertInterval < 0 {
		config.UpsertInterval = DefaultUpsertInterval
	}
	limit := rate.Inf
	if config.UpsertInterval > 0 {
		limit = rate.Every(config.UpsertInterval)
	}

	in := &Ingester{
		embedder:  embedder,
		index:     index,
		tokenizer: tokenizer,
		processor: processor.NewWithConfig(processor.ProcessorConfig{
			ChunkSize:    config.ChunkSize,
			ChunkOverlap: config.ChunkOverlap,
		}),
		limiter: rate.NewLimiter(limit, 1),
		logger:  zap.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// IngestFile extracts a local file and ingests it.
func (in *Ingester) IngestFile(ctx context.Context, path string) (*Report, error) {
	doc, err := ExtractFile(path)
	if err != nil {
		return nil, err
	}
	return in.Ingest(ctx, doc)
}

// Ingest stores every chunk of doc under "<file id>_<chunk index>".
func (in *Ingester) Ingest(ctx context.Context, doc models.Document) (*Report, error) {
	source := sourceName(doc)
	chunks := in.processor.Split(doc.Content)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("ingest %s: %w", source, ErrNoText)
	}

	report := &Report{
		FileID: in.newID(),
		Source: source,
		Tokens: in.tokenizer.Count(doc.Content),
	}
	logger := in.logger.With(zap.String("source", source), zap.String("file_id", report.FileID))
	logger.Info("Ingesting document", zap.Int("chunks", len(chunks)), zap.Int("tokens", report.Tokens))

	vectors, err := in.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", source, types.Collaborator("embedder", "embed documents", err))
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("ingest %s: got %d vectors for %d chunks", source, len(vectors), len(chunks))
	}

	for i, chunk := range chunks {
		if err := in.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		id := fmt.Sprintf("%s_%d", report.FileID, i)
		metadata := map[string]interface{}{
			retrieval.MetaFileName:  source,
			retrieval.MetaFileID:    report.FileID,
			retrieval.MetaChunkID:   i,
			retrieval.MetaChunkText: chunk,
		}
		if err := in.index.Upsert(ctx, id, vectors[i], metadata); err != nil {
			return nil, fmt.Errorf("ingest %s: %w", source, types.Collaborator("vector index", "upsert", err))
		}

		report.Chunks++
		logger.Debug("Stored chunk", zap.String("id", id))
		if in.onProgress != nil {
			in.onProgress(Progress{Source: source, Stored: report.Chunks, Total: len(chunks)})
		}
	}

	logger.Info("Ingested document", zap.Int("chunks", report.Chunks))
	return report, nil
}

func sourceName(doc models.Document) string {
	if name, ok := doc.Metadata[retrieval.MetaFileName].(string); ok && name != "" {
		return name
	}
	if doc.URL != "" {
		return doc.URL
	}
	if doc.Title != "" {
		return doc.Title
	}
	return "unknown file"
}
