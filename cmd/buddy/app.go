package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xhad/buddy/internal/logger"
	"github.com/xhad/buddy/internal/types"
	"github.com/xhad/buddy/pkg/cache"
	"github.com/xhad/buddy/pkg/config"
	"github.com/xhad/buddy/pkg/format"
	"github.com/xhad/buddy/pkg/ingest"
	"github.com/xhad/buddy/pkg/llm"
	"github.com/xhad/buddy/pkg/pipeline"
	"github.com/xhad/buddy/pkg/retrieval"
	"github.com/xhad/buddy/pkg/store"
	"github.com/xhad/buddy/pkg/tokenizer"
	"github.com/xhad/buddy/pkg/trace"
)

var errNoDatabase = errors.New("database.url is required (or set DATABASE_URL)")

// app holds the shared dependencies of every command. Model clients are
// built on demand so that commands which only touch the metadata store do
// not need an API key.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	pool    *pgxpool.Pool
	docs    *store.MetadataStore
	vectors *store.VectorStore
	redis   *cache.RedisStore
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, verr := range cfg.Validate() {
		errs = append(errs, verr)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfgPath string) (*app, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if cfg.Database.URL == "" {
		return nil, errNoDatabase
	}

	log, err := logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: log, pool: pool}
	if a.docs, err = store.NewMetadataStore(ctx, pool, cfg.Database.DocumentsTable); err != nil {
		a.Close()
		return nil, err
	}
	if a.vectors, err = store.NewVectorStore(ctx, pool, store.VectorStoreConfig{
		TableName:   cfg.Database.ChunksTable,
		VectorDim:   cfg.Database.VectorDim,
		SearchLimit: cfg.Retrieval.TopK,
	}); err != nil {
		a.Close()
		return nil, err
	}

	log.Debug("Connected to database",
		zap.String("documents_table", cfg.Database.DocumentsTable),
		zap.String("chunks_table", cfg.Database.ChunksTable))
	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
	_ = a.logger.Sync()
}

// embedder returns the configured embedder, behind the Redis cache when
// cache.redis_addr is set.
func (a *app) embedder(ctx context.Context) (types.Embedder, error) {
	emb, err := llm.NewEmbedder(llm.ProviderConfig{
		Provider: a.cfg.Embedding.Provider,
		BaseURL:  a.cfg.Embedding.BaseURL,
		APIKey:   a.cfg.LLM.APIKey,
		Model:    a.cfg.Embedding.Model,
	})
	if err != nil {
		return nil, err
	}
	if a.cfg.Cache.RedisAddr == "" {
		return emb, nil
	}

	if a.redis == nil {
		a.redis, err = cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     a.cfg.Cache.RedisAddr,
			Password: a.cfg.Cache.Password,
			DB:       a.cfg.Cache.DB,
			TTL:      a.cfg.Cache.TTL,
		})
		if err != nil {
			return nil, err
		}
	}
	return cache.New(emb, a.redis, a.cfg.Embedding.Model, trace.EmbeddingCacheTotal, a.logger), nil
}

func (a *app) tokenizer() (*tokenizer.Tiktoken, error) {
	return tokenizer.New(a.cfg.Retrieval.Encoding)
}

func (a *app) pipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	chat, err := llm.NewWithConfig(llm.ChatConfig{
		ProviderConfig: llm.ProviderConfig{
			Provider: a.cfg.LLM.Provider,
			BaseURL:  a.cfg.LLM.BaseURL,
			APIKey:   a.cfg.LLM.APIKey,
			Model:    a.cfg.LLM.Model,
		},
		Temperature: a.cfg.LLM.Temperature,
		MaxTokens:   a.cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	emb, err := a.embedder(ctx)
	if err != nil {
		return nil, err
	}
	tok, err := a.tokenizer()
	if err != nil {
		return nil, err
	}

	trace.RegisterMetrics()

	matcher := retrieval.NewMatcher(a.docs, a.cfg.Retrieval.MaxMatches)
	retriever := retrieval.NewVectorRetriever(emb, a.vectors, a.cfg.Retrieval.TopK)
	return pipeline.New(pipeline.Components{
		Intents:     llm.NewIntentExtractor(chat),
		Keywords:    llm.NewKeywordGenerator(chat),
		Retriever:   retrieval.NewAggregator(matcher, retriever, a.logger),
		Assembler:   retrieval.NewContextAssembler(tok, a.cfg.Retrieval.ContextTokens),
		Synthesizer: llm.NewAnswerSynthesizer(chat),
	},
		pipeline.WithLogger(a.logger),
		pipeline.WithTracer(trace.NewRecorder(a.logger)),
	)
}

func (a *app) ingester(ctx context.Context, opts ...ingest.Option) (*ingest.Ingester, error) {
	emb, err := a.embedder(ctx)
	if err != nil {
		return nil, err
	}
	tok, err := a.tokenizer()
	if err != nil {
		return nil, err
	}

	opts = append([]ingest.Option{ingest.WithLogger(a.logger)}, opts...)
	return ingest.New(emb, a.vectors, tok, ingest.Config{
		ChunkSize:      a.cfg.Ingest.ChunkSize,
		ChunkOverlap:   a.cfg.Ingest.ChunkOverlap,
		UpsertInterval: a.cfg.Ingest.UpsertInterval,
	}, opts...), nil
}

func (a *app) presenter() *format.Presenter {
	p := a.cfg.Presenter
	return format.NewPresenter(format.Pacing{
		WindowWords: p.WindowWords,
		ChunkDelay:  p.ChunkDelay,
		HeaderDelay: p.HeaderDelay,
		WordDelay:   p.WordDelay,
		TextDelay:   p.TextDelay,
	})
}
