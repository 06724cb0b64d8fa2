package pipeline_test

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/buddy/internal/fake"
	"github.com/xhad/buddy/internal/models"
	"github.com/xhad/buddy/internal/types"
	"github.com/xhad/buddy/pkg/pipeline"
	"github.com/xhad/buddy/pkg/retrieval"
	"github.com/xhad/buddy/pkg/trace"
)

// scripted plays the language model stages from canned answers.
type scripted struct {
	intents    []models.Intent
	keywords   []string
	extracted  []string
	answers    []string
	keywordErr error

	synthCalls []synthCall
}

type synthCall struct {
	query   string
	context string
}

func (s *scripted) Extract(ctx context.Context, query string) ([]models.Intent, error) {
	return s.intents, nil
}

func (s *scripted) Generate(ctx context.Context, intents []models.Intent) ([]models.KeywordSet, error) {
	if s.keywordErr != nil {
		return nil, s.keywordErr
	}
	sets := make([]models.KeywordSet, 0, len(intents))
	for _, intent := range intents {
		sets = append(sets, models.KeywordSet{Intent: intent, Keywords: s.keywords})
	}
	return sets, nil
}

func (s *scripted) ExtractFromAnswer(ctx context.Context, text string) ([]string, error) {
	return s.extracted, nil
}

func (s *scripted) Synthesize(ctx context.Context, query, contextText string) (string, error) {
	s.synthCalls = append(s.synthCalls, synthCall{query: query, context: contextText})
	i := len(s.synthCalls) - 1
	if i < len(s.answers) {
		return s.answers[i], nil
	}
	return "", nil
}

var corpus = []models.DocumentRecord{
	{ID: 1, Title: "TEXAS TECH", Tags: models.ParseTags("Universities, Texas Tech University, College Life"), Link: "https://www.ttu.edu/"},
	{ID: 2, Title: "Money 101", Tags: models.ParseTags("Budget, Financial Tips for Students"), Link: "https://example.edu/money"},
	{ID: 3, Title: "Aid", Tags: models.ParseTags("Scholarships, Loans, Grants"), Link: "https://example.edu/aid"},
	{ID: 4, Title: "Wellness", Tags: models.ParseTags("Student Wellness, Sleep"), Link: "https://example.edu/wellness"},
}

type harness struct {
	llm   *scripted
	store *fake.MetadataStore
	index *fake.VectorIndex
}

func newHarness(llm *scripted) *harness {
	return &harness{
		llm:   llm,
		store: &fake.MetadataStore{Docs: corpus},
		index: &fake.VectorIndex{QueryFunc: func(ctx context.Context, vector []float32, topK int) ([]models.VectorMatch, error) {
			return []models.VectorMatch{{ID: "f_0", Metadata: map[string]interface{}{"chunk_text": "Plan ahead."}}}, nil
		}},
	}
}

func (h *harness) pipeline(t *testing.T, opts ...pipeline.Option) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(pipeline.Components{
		Intents:  h.llm,
		Keywords: h.llm,
		Retriever: retrieval.NewAggregator(
			retrieval.NewMatcher(h.store, 3),
			retrieval.NewVectorRetriever(&fake.Embedder{}, h.index, 5),
			nil,
		),
		Assembler:   retrieval.NewContextAssembler(fake.Tokenizer{}, 4000),
		Synthesizer: h.llm,
	}, opts...)
	require.NoError(t, err)
	return p
}

func ids(docs []models.DocumentRecord) []int64 {
	out := make([]int64, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("two pass refinement", func(t *testing.T) {
		h := newHarness(&scripted{
			intents:   []models.Intent{"how to budget as a student"},
			keywords:  []string{"budget", "scholarships"},
			extracted: []string{"Budget", "loans", " "},
			answers:   []string{"Make a budget.", "# Budgeting\n- track spending\nApply for aid."},
		})
		query := "How do I manage money in college?"

		res, err := h.pipeline(t).Run(ctx, pipeline.NewRequest("  "+query+" "))
		require.NoError(t, err)

		assert.Equal(t, query, res.Query)
		assert.NotEqual(t, uuid.Nil, res.RequestID)
		assert.Equal(t, "Make a budget.", res.Draft)
		assert.Equal(t, []string{"budget", "scholarships", "loans"}, res.RefinedKeywords)

		require.Len(t, res.Refined, 1)
		assert.Equal(t, models.Intent(query), res.Refined[0].Intent)
		assert.Equal(t, "Plan ahead.", res.Refined[0].SemanticContext)

		require.Len(t, h.llm.synthCalls, 2)
		assert.Equal(t, query, h.llm.synthCalls[0].query)
		assert.Contains(t, h.llm.synthCalls[0].context, "Intent: how to budget as a student")
		assert.Contains(t, h.llm.synthCalls[1].context, "Intent: "+query)

		assert.Equal(t, "# Budgeting\n- track spending\nApply for aid.", res.Answer)
		require.Len(t, res.Chunks, 3)
		assert.Equal(t, models.ChunkHeader, res.Chunks[0].Kind)
		assert.Equal(t, models.ChunkBullet, res.Chunks[1].Kind)
		assert.Equal(t, models.ChunkText, res.Chunks[2].Kind)

		assert.Equal(t, []int64{2, 3}, ids(res.RelatedDocuments()))
	})

	t.Run("empty intents still answer", func(t *testing.T) {
		h := newHarness(&scripted{
			extracted: []string{"wellness"},
			answers:   []string{"I could not find much.", "Try the wellness center."},
		})

		res, err := h.pipeline(t).Run(ctx, pipeline.NewRequest("hmm"))
		require.NoError(t, err)

		assert.Empty(t, res.Intents)
		assert.Empty(t, res.Keywords)
		assert.Empty(t, res.FirstPass)
		assert.Equal(t, []string{"wellness"}, res.RefinedKeywords)
		assert.Equal(t, []string{"wellness"}, h.store.Patterns())

		require.Len(t, h.llm.synthCalls, 2)
		assert.Empty(t, h.llm.synthCalls[0].context)
		assert.Equal(t, "Try the wellness center.", res.Answer)
	})

	t.Run("refined retrieval is a superset when extraction repeats keywords", func(t *testing.T) {
		keywords := []string{"texas tech", "college", "wellness"}
		h := newHarness(&scripted{
			intents:   []models.Intent{"campus"},
			keywords:  keywords,
			extracted: keywords,
		})

		res, err := h.pipeline(t).Run(ctx, pipeline.NewRequest("Tell me about campus life"))
		require.NoError(t, err)
		assert.Equal(t, keywords, res.RefinedKeywords)

		refined := map[int64]bool{}
		for _, doc := range models.Documents(res.Refined) {
			refined[doc.ID] = true
		}
		for _, doc := range models.Documents(res.FirstPass) {
			assert.True(t, refined[doc.ID], "document %d missing from refined pass", doc.ID)
		}
		assert.Equal(t, res.FirstPass[0].SemanticContext, res.Refined[0].SemanticContext)
	})

	t.Run("collaborator failure propagates", func(t *testing.T) {
		boom := errors.New("model overloaded")
		h := newHarness(&scripted{
			intents:    []models.Intent{"x"},
			keywordErr: types.Collaborator("chat", "complete", boom),
		})

		res, err := h.pipeline(t).Run(ctx, pipeline.NewRequest("q"))
		assert.Nil(t, res)
		assert.ErrorIs(t, err, types.ErrCollaborator)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "generate keywords")
	})

	t.Run("index failure propagates", func(t *testing.T) {
		h := newHarness(&scripted{intents: []models.Intent{"x"}, keywords: []string{"budget"}})
		h.index.QueryFunc = func(ctx context.Context, vector []float32, topK int) ([]models.VectorMatch, error) {
			return nil, errors.New("index down")
		}

		_, err := h.pipeline(t).Run(ctx, pipeline.NewRequest("q"))
		assert.ErrorIs(t, err, types.ErrCollaborator)
		assert.Empty(t, h.llm.synthCalls)
	})

	t.Run("empty query", func(t *testing.T) {
		h := newHarness(&scripted{})
		_, err := h.pipeline(t).Run(ctx, pipeline.NewRequest(" \n"))
		assert.ErrorIs(t, err, pipeline.ErrEmptyQuery)
	})

	t.Run("nil request id is filled", func(t *testing.T) {
		h := newHarness(&scripted{})
		res, err := h.pipeline(t).Run(ctx, pipeline.Request{Query: "q"})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, res.RequestID)
	})
}

type stageTracer struct {
	failStart bool
	failEnd   bool

	stages   []string
	failures []string
}

type stageRun struct{ tracer *stageTracer }

func (t *stageTracer) Start(ctx context.Context, name, runType string) (trace.Run, error) {
	t.stages = append(t.stages, name)
	if t.failStart {
		return nil, errors.New("tracing backend unavailable")
	}
	return stageRun{tracer: t}, nil
}

func (t *stageTracer) ReportFailure(name string, err error) {
	t.failures = append(t.failures, name)
}

func (r stageRun) End(output string, err error) error {
	if r.tracer.failEnd {
		return errors.New("flush failed")
	}
	return nil
}

func TestRunTracing(t *testing.T) {
	ctx := context.Background()
	script := func() *scripted {
		return &scripted{
			intents:   []models.Intent{"aid"},
			keywords:  []string{"scholarships"},
			extracted: []string{"grants"},
			answers:   []string{"draft", "final"},
		}
	}
	req := pipeline.NewRequest("How do I pay for school?")

	baseline, err := newHarness(script()).pipeline(t).Run(ctx, req)
	require.NoError(t, err)

	t.Run("stages in order", func(t *testing.T) {
		tracer := &stageTracer{}
		_, err := newHarness(script()).pipeline(t, pipeline.WithTracer(tracer)).Run(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"answer_query",
			"extract_intents",
			"generate_keywords",
			"aggregate",
			"synthesize_draft",
			"extract_answer_keywords",
			"aggregate_refined",
			"synthesize_final",
		}, tracer.stages)
		assert.Empty(t, tracer.failures)
	})

	for name, tracer := range map[string]*stageTracer{
		"failing start": {failStart: true},
		"failing end":   {failEnd: true},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := newHarness(script()).pipeline(t, pipeline.WithTracer(tracer)).Run(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, baseline, res)
			assert.Len(t, tracer.failures, 8)
		})
	}
}

func TestNew(t *testing.T) {
	s := &scripted{}
	full := pipeline.Components{
		Intents:     s,
		Keywords:    s,
		Retriever:   retrieval.NewAggregator(nil, nil, nil),
		Assembler:   retrieval.NewContextAssembler(fake.Tokenizer{}, 0),
		Synthesizer: s,
	}

	_, err := pipeline.New(full)
	assert.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *pipeline.Components)
		want   error
	}{
		{"intents", func(c *pipeline.Components) { c.Intents = nil }, pipeline.ErrIntentsRequired},
		{"keywords", func(c *pipeline.Components) { c.Keywords = nil }, pipeline.ErrKeywordsRequired},
		{"retriever", func(c *pipeline.Components) { c.Retriever = nil }, pipeline.ErrRetrieverRequired},
		{"assembler", func(c *pipeline.Components) { c.Assembler = nil }, pipeline.ErrAssemblerRequired},
		{"synthesizer", func(c *pipeline.Components) { c.Synthesizer = nil }, pipeline.ErrSynthesizerRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := full
			tt.mutate(&c)
			_, err := pipeline.New(c)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
