// Package retrieval scores metadata matches, gathers semantic context and
// assembles the token-bounded context handed to answer synthesis.
package retrieval

import (
	"context"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/xhad/buddy/internal/models"
	"github.com/xhad/buddy/internal/types"
)

// DefaultMaxMatches is how many metadata matches an intent keeps.
const DefaultMaxMatches = 3

// Similarity is the Ratcliff/Obershelp ratio of a and b compared rune by
// rune, in [0, 1]. Two empty strings are identical.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

// ScoreDocuments scores every document against one keyword: the sum of the
// case-insensitive similarity between the keyword and each tag. The result
// keeps document order and is not sorted.
func ScoreDocuments(keyword string, docs []models.DocumentRecord) []models.ScoredMatch {
	kw := strings.ToLower(keyword)
	out := make([]models.ScoredMatch, 0, len(docs))
	for _, doc := range docs {
		var score float64
		for _, tag := range doc.Tags {
			score += Similarity(kw, strings.ToLower(tag))
		}
		out = append(out, models.ScoredMatch{Score: score, Document: doc})
	}
	return out
}

// Matcher ranks metadata store rows for the keywords of one intent.
type Matcher struct {
	store      types.MetadataStore
	maxMatches int
}

func NewMatcher(store types.MetadataStore, maxMatches int) *Matcher {
	if maxMatches <= 0 {
		maxMatches = DefaultMaxMatches
	}
	return &Matcher{store: store, maxMatches: maxMatches}
}

// Match queries the store once per keyword and scores the returned rows.
// Scores of one document are summed across keywords, then the list is
// sorted by descending score and cut to the configured size. Ties keep the
// order in which documents were first returned. Blank keywords are skipped
// since they would match every row.
func (m *Matcher) Match(ctx context.Context, keywords []string) ([]models.ScoredMatch, error) {
	var merged []models.ScoredMatch
	index := make(map[int64]int)

	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}

		docs, err := m.store.QueryByTagSubstring(ctx, keyword)
		if err != nil {
			return nil, types.Collaborator("metadata store", "query by tag", err)
		}

		for _, match := range ScoreDocuments(keyword, docs) {
			if i, ok := index[match.Document.ID]; ok {
				merged[i].Score += match.Score
				continue
			}
			index[match.Document.ID] = len(merged)
			merged = append(merged, match)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > m.maxMatches {
		merged = merged[:m.maxMatches]
	}
	return merged, nil
}
