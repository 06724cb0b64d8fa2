package retrieval_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/buddy/internal/fake"
	"github.com/xhad/buddy/internal/models"
	"github.com/xhad/buddy/internal/types"
	"github.com/xhad/buddy/pkg/retrieval"
)

var texasTech = models.DocumentRecord{
	ID:    1,
	Title: "TEXAS TECH",
	Tags:  models.ParseTags("Universities, Texas Tech University, College Life"),
	Link:  "https://www.ttu.edu/",
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "college", "college", 1},
		{"both empty", "", "", 1},
		{"one empty", "college", "", 0},
		{"disjoint", "abc", "xyz", 0},
		{"half overlap", "ab", "ac", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, retrieval.Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestScoreDocuments(t *testing.T) {
	t.Run("texas tech tag dominates", func(t *testing.T) {
		scores := retrieval.ScoreDocuments("Texas Tech", []models.DocumentRecord{texasTech})
		require.Len(t, scores, 1)
		assert.Greater(t, scores[0].Score, 0.0)

		best := retrieval.Similarity("texas tech", "texas tech university")
		assert.InDelta(t, 20.0/31.0, best, 1e-9)
		assert.Greater(t, best, retrieval.Similarity("texas tech", "universities"))
		assert.Greater(t, best, retrieval.Similarity("texas tech", "college life"))
	})

	t.Run("score stays within tag count", func(t *testing.T) {
		docs := []models.DocumentRecord{
			texasTech,
			{ID: 2, Tags: models.ParseTags("")},
			{ID: 3, Tags: models.ParseTags(",,")},
			{ID: 4, Tags: nil},
			{ID: 5, Tags: []string{"texas tech", "TEXAS TECH"}},
		}
		for _, kw := range []string{"Texas Tech", "", "x", "study strategies for exams"} {
			for _, m := range retrieval.ScoreDocuments(kw, docs) {
				assert.GreaterOrEqual(t, m.Score, 0.0)
				assert.LessOrEqual(t, m.Score, float64(len(m.Document.Tags)))
			}
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		doc := models.DocumentRecord{ID: 9, Tags: []string{"TEXAS TECH"}}
		scores := retrieval.ScoreDocuments("texas tech", []models.DocumentRecord{doc})
		assert.InDelta(t, 1.0, scores[0].Score, 1e-9)
	})

	t.Run("keeps input order", func(t *testing.T) {
		docs := []models.DocumentRecord{{ID: 3}, {ID: 1}, {ID: 2}}
		scores := retrieval.ScoreDocuments("k", docs)
		ids := []int64{scores[0].Document.ID, scores[1].Document.ID, scores[2].Document.ID}
		assert.Equal(t, []int64{3, 1, 2}, ids)
	})
}

func TestMatcher(t *testing.T) {
	ctx := context.Background()

	t.Run("sorted descending and capped", func(t *testing.T) {
		store := &fake.MetadataStore{Docs: []models.DocumentRecord{
			{ID: 1, Title: "a", Tags: []string{"campus"}},
			{ID: 2, Title: "b", Tags: []string{"campus life"}},
			{ID: 3, Title: "c", Tags: []string{"campus", "campus"}},
			{ID: 4, Title: "d", Tags: []string{"the campus map"}},
			{ID: 5, Title: "e", Tags: []string{"campus", "campus", "campus"}},
		}}
		matches, err := retrieval.NewMatcher(store, 3).Match(ctx, []string{"campus"})
		require.NoError(t, err)
		require.Len(t, matches, 3)
		for i := 1; i < len(matches); i++ {
			assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
		}
		assert.Equal(t, int64(5), matches[0].Document.ID)
		assert.Equal(t, int64(3), matches[1].Document.ID)
		assert.Equal(t, int64(1), matches[2].Document.ID)
	})

	t.Run("sums scores across keywords", func(t *testing.T) {
		store := &fake.MetadataStore{Docs: []models.DocumentRecord{
			{ID: 1, Tags: []string{"budget"}},
			{ID: 2, Tags: []string{"budget", "loans"}},
		}}
		matches, err := retrieval.NewMatcher(store, 3).Match(ctx, []string{"budget", "loans"})
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, int64(2), matches[0].Document.ID)

		want := retrieval.Similarity("budget", "budget") + retrieval.Similarity("budget", "loans") +
			retrieval.Similarity("loans", "budget") + retrieval.Similarity("loans", "loans")
		assert.InDelta(t, want, matches[0].Score, 1e-9)
		assert.Equal(t, []string{"budget", "loans"}, store.Patterns())
	})

	t.Run("ties keep row order", func(t *testing.T) {
		store := &fake.MetadataStore{Docs: []models.DocumentRecord{
			{ID: 4, Tags: []string{"gym"}},
			{ID: 2, Tags: []string{"gym"}},
			{ID: 8, Tags: []string{"gym"}},
		}}
		matches, err := retrieval.NewMatcher(store, 2).Match(ctx, []string{"gym"})
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, int64(4), matches[0].Document.ID)
		assert.Equal(t, int64(2), matches[1].Document.ID)
	})

	t.Run("blank keywords are skipped", func(t *testing.T) {
		store := &fake.MetadataStore{Docs: []models.DocumentRecord{texasTech}}
		matches, err := retrieval.NewMatcher(store, 3).Match(ctx, []string{"", "  "})
		require.NoError(t, err)
		assert.Empty(t, matches)
		assert.Empty(t, store.Patterns())
	})

	t.Run("store failure is a collaborator error", func(t *testing.T) {
		boom := errors.New("connection refused")
		store := &fake.MetadataStore{QueryFunc: func(ctx context.Context, pattern string) ([]models.DocumentRecord, error) {
			return nil, boom
		}}
		_, err := retrieval.NewMatcher(store, 3).Match(ctx, []string{"x"})
		assert.ErrorIs(t, err, types.ErrCollaborator)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("texas tech in top three", func(t *testing.T) {
		store := &fake.MetadataStore{Docs: []models.DocumentRecord{
			texasTech,
			{ID: 2, Title: "Budgeting", Tags: []string{"Financial Tips for Students"}},
		}}
		matches, err := retrieval.NewMatcher(store, 3).Match(ctx, []string{"Texas Tech"})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, int64(1), matches[0].Document.ID)
	})
}
