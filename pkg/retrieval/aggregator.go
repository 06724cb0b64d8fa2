package retrieval

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xhad/buddy/internal/models"
)

// Aggregator runs metadata and semantic retrieval for each intent and keeps
// every document id at most once across intents.
type Aggregator struct {
	matcher   *Matcher
	retriever *VectorRetriever
	logger    *zap.Logger
}

func NewAggregator(matcher *Matcher, retriever *VectorRetriever, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{matcher: matcher, retriever: retriever, logger: logger}
}

// Aggregate processes keyword sets in order. A document already surfaced by
// an earlier intent is dropped from later ones whatever its score.
func (a *Aggregator) Aggregate(ctx context.Context, sets []models.KeywordSet) ([]models.AggregatedRetrieval, error) {
	seen := make(map[int64]struct{})
	results := make([]models.AggregatedRetrieval, 0, len(sets))

	for _, set := range sets {
		ranked, err := a.matcher.Match(ctx, set.Keywords)
		if err != nil {
			return nil, err
		}

		matches := make([]models.ScoredMatch, 0, len(ranked))
		for _, m := range ranked {
			if _, dup := seen[m.Document.ID]; dup {
				a.logger.Debug("Skipping document surfaced by earlier intent",
					zap.Int64("document_id", m.Document.ID),
					zap.String("intent", string(set.Intent)))
				continue
			}
			seen[m.Document.ID] = struct{}{}
			matches = append(matches, m)
		}

		semantic, err := a.retriever.Retrieve(ctx, strings.Join(set.Keywords, " "), 0)
		if err != nil {
			return nil, err
		}

		a.logger.Debug("Aggregated intent",
			zap.String("intent", string(set.Intent)),
			zap.Int("keywords", len(set.Keywords)),
			zap.Int("matches", len(matches)))

		results = append(results, models.AggregatedRetrieval{
			Intent:          set.Intent,
			Matches:         matches,
			SemanticContext: semantic,
		})
	}
	return results, nil
}
