package retrieval

import (
	"fmt"
	"strings"

	"github.com/xhad/buddy/internal/models"
	"github.com/xhad/buddy/internal/types"
)

// DefaultContextTokens is the token budget of an assembled context.
const DefaultContextTokens = 4000

// ContextAssembler renders aggregated retrieval as one labeled text block
// per intent and cuts the result to a token budget.
type ContextAssembler struct {
	tokenizer types.Tokenizer
	budget    int
}

func NewContextAssembler(tokenizer types.Tokenizer, budget int) *ContextAssembler {
	if budget <= 0 {
		budget = DefaultContextTokens
	}
	return &ContextAssembler{tokenizer: tokenizer, budget: budget}
}

// Assemble never returns more than the budget as counted by the tokenizer.
// The cut is a plain token prefix.
func (a *ContextAssembler) Assemble(results []models.AggregatedRetrieval) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("Intent: %s\nDB Results: %s\nSemantic Context: %s",
			r.Intent, formatMatches(r.Matches), r.SemanticContext))
	}
	return a.tokenizer.Truncate(strings.Join(blocks, "\n"), a.budget)
}

func formatMatches(matches []models.ScoredMatch) string {
	if len(matches) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, fmt.Sprintf("[%.2f] %s (%s) tags: %s",
			m.Score, m.Document.Title, m.Document.Link, models.JoinTags(m.Document.Tags)))
	}
	return strings.Join(parts, "; ")
}
