package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/xhad/buddy/internal/models"
	"github.com/xhad/buddy/pkg/trace"
)

// refine runs the second pass: key terms of the draft are merged into the
// first intent's keywords and retrieval runs again with the whole query as
// the only intent.
func (p *Pipeline) refine(ctx context.Context, res *Result) error {
	c := p.components

	extracted, err := trace.Call(ctx, p.tracer, "extract_answer_keywords", trace.RunLLM, func(ctx context.Context) ([]string, error) {
		return c.Keywords.ExtractFromAnswer(ctx, res.Draft)
	})
	if err != nil {
		return fmt.Errorf("extract answer keywords: %w", err)
	}
	res.Extracted = extracted

	var original []string
	if len(res.Keywords) > 0 {
		original = res.Keywords[0].Keywords
	}
	res.RefinedKeywords = UnionKeywords(original, extracted)

	sets := []models.KeywordSet{{Intent: models.Intent(res.Query), Keywords: res.RefinedKeywords}}
	retrieved, err := trace.Call(ctx, p.tracer, "aggregate_refined", trace.RunRetriever, func(ctx context.Context) ([]models.AggregatedRetrieval, error) {
		return c.Retriever.Aggregate(ctx, sets)
	})
	if err != nil {
		return fmt.Errorf("aggregate refined retrieval: %w", err)
	}
	res.Refined = retrieved

	answer, err := p.synthesize(ctx, "synthesize_final", res.Query, retrieved)
	if err != nil {
		return fmt.Errorf("synthesize final: %w", err)
	}
	res.Answer = answer
	return nil
}

// UnionKeywords merges keyword lists. Keywords are trimmed, blanks dropped
// and duplicates removed ignoring case; the first spelling is kept and the
// order is the input order.
func UnionKeywords(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, k := range list {
			k = strings.TrimSpace(k)
			if k == "" {
				continue
			}
			key := strings.ToLower(k)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}
