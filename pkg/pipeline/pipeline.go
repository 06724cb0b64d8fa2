// Package pipeline answers one question end to end: intents, keywords,
// retrieval, a draft answer, a refined answer and its formatted chunks.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xhad/buddy/internal/models"
	"github.com/xhad/buddy/pkg/format"
	"github.com/xhad/buddy/pkg/trace"
)

type IntentExtractor interface {
	Extract(ctx context.Context, query string) ([]models.Intent, error)
}

type KeywordGenerator interface {
	Generate(ctx context.Context, intents []models.Intent) ([]models.KeywordSet, error)
	ExtractFromAnswer(ctx context.Context, text string) ([]string, error)
}

type Retriever interface {
	Aggregate(ctx context.Context, sets []models.KeywordSet) ([]models.AggregatedRetrieval, error)
}

type Assembler interface {
	Assemble(results []models.AggregatedRetrieval) string
}

type Synthesizer interface {
	Synthesize(ctx context.Context, query, contextText string) (string, error)
}

// Components are the stages a Pipeline runs.
type Components struct {
	Intents     IntentExtractor
	Keywords    KeywordGenerator
	Retriever   Retriever
	Assembler   Assembler
	Synthesizer Synthesizer
}

// Request carries one question through the pipeline. It replaces any notion
// of shared "current question" state.
type Request struct {
	ID    uuid.UUID
	Query string
}

func NewRequest(query string) Request {
	return Request{ID: uuid.New(), Query: query}
}

// Result is everything a display layer needs after a run.
type Result struct {
	RequestID uuid.UUID `json:"request_id"`
	Query     string    `json:"query"`

	Intents   []models.Intent              `json:"intents"`
	Keywords  []models.KeywordSet          `json:"keywords"`
	FirstPass []models.AggregatedRetrieval `json:"first_pass"`
	Draft     string                       `json:"draft"`

	Extracted       []string                     `json:"extracted"`
	RefinedKeywords []string                     `json:"refined_keywords"`
	Refined         []models.AggregatedRetrieval `json:"refined"`

	Answer string         `json:"answer"`
	Chunks []models.Chunk `json:"chunks"`
}

// RelatedDocuments lists the documents surfaced by both passes, each id once,
// first pass first.
func (r *Result) RelatedDocuments() []models.DocumentRecord {
	seen := make(map[int64]struct{})
	var docs []models.DocumentRecord
	for _, doc := range append(models.Documents(r.FirstPass), models.Documents(r.Refined)...) {
		if _, ok := seen[doc.ID]; ok {
			continue
		}
		seen[doc.ID] = struct{}{}
		docs = append(docs, doc)
	}
	return docs
}

// Pipeline runs the stages sequentially. It holds no per-request state and
// may be shared.
type Pipeline struct {
	components Components
	tracer     trace.Tracer
	logger     *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTracer wraps every stage in a traced run.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) {
		p.tracer = tracer
	}
}

func New(c Components, opts ...Option) (*Pipeline, error) {
	switch {
	case c.Intents == nil:
		return nil, ErrIntentsRequired
	case c.Keywords == nil:
		return nil, ErrKeywordsRequired
	case c.Retriever == nil:
		return nil, ErrRetrieverRequired
	case c.Assembler == nil:
		return nil, ErrAssemblerRequired
	case c.Synthesizer == nil:
		return nil, ErrSynthesizerRequired
	}

	p := &Pipeline{components: c, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run answers req. Collaborator failures abort the run and are returned
// wrapped with the failing stage.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}

	logger := p.logger.With(zap.String("request_id", req.ID.String()))
	logger.Info("Answering query", zap.String("query", query))

	return trace.Call(ctx, p.tracer, "answer_query", trace.RunChain, func(ctx context.Context) (*Result, error) {
		res := &Result{RequestID: req.ID, Query: query}
		if err := p.firstPass(ctx, res); err != nil {
			return nil, err
		}
		logger.Debug("Draft answer ready",
			zap.Int("intents", len(res.Intents)),
			zap.Int("documents", len(models.Documents(res.FirstPass))))

		if err := p.refine(ctx, res); err != nil {
			return nil, err
		}
		res.Chunks = format.Format(res.Answer)

		logger.Info("Answered query",
			zap.Int("refined_keywords", len(res.RefinedKeywords)),
			zap.Int("chunks", len(res.Chunks)))
		return res, nil
	})
}

func (p *Pipeline) firstPass(ctx context.Context, res *Result) error {
	c := p.components

	intents, err := trace.Call(ctx, p.tracer, "extract_intents", trace.RunLLM, func(ctx context.Context) ([]models.Intent, error) {
		return c.Intents.Extract(ctx, res.Query)
	})
	if err != nil {
		return fmt.Errorf("extract intents: %w", err)
	}
	res.Intents = intents

	sets, err := trace.Call(ctx, p.tracer, "generate_keywords", trace.RunLLM, func(ctx context.Context) ([]models.KeywordSet, error) {
		return c.Keywords.Generate(ctx, intents)
	})
	if err != nil {
		return fmt.Errorf("generate keywords: %w", err)
	}
	res.Keywords = sets

	retrieved, err := trace.Call(ctx, p.tracer, "aggregate", trace.RunRetriever, func(ctx context.Context) ([]models.AggregatedRetrieval, error) {
		return c.Retriever.Aggregate(ctx, sets)
	})
	if err != nil {
		return fmt.Errorf("aggregate retrieval: %w", err)
	}
	res.FirstPass = retrieved

	draft, err := p.synthesize(ctx, "synthesize_draft", res.Query, retrieved)
	if err != nil {
		return fmt.Errorf("synthesize draft: %w", err)
	}
	res.Draft = draft
	return nil
}

func (p *Pipeline) synthesize(ctx context.Context, stage, query string, results []models.AggregatedRetrieval) (string, error) {
	contextText := p.components.Assembler.Assemble(results)
	return trace.Call(ctx, p.tracer, stage, trace.RunLLM, func(ctx context.Context) (string, error) {
		return p.components.Synthesizer.Synthesize(ctx, query, contextText)
	})
}
