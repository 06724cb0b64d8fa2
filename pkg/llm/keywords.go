package llm

import (
	"context"
	"strings"

	"github.com/xhad/buddy/internal/models"
	"github.com/xhad/buddy/internal/types"
)

// KeywordGenerator turns intents, or a draft answer, into search keywords.
type KeywordGenerator struct {
	completer types.Completer
}

func NewKeywordGenerator(completer types.Completer) *KeywordGenerator {
	return &KeywordGenerator{completer: completer}
}

// Generate asks for a keyword set per intent, one call per intent, in order.
func (g *KeywordGenerator) Generate(ctx context.Context, intents []models.Intent) ([]models.KeywordSet, error) {
	sets := make([]models.KeywordSet, 0, len(intents))
	for _, intent := range intents {
		out, err := g.completer.Complete(ctx, keywordSystemPrompt, keywordPrompt(string(intent)))
		if err != nil {
			return nil, err
		}
		sets = append(sets, models.KeywordSet{Intent: intent, Keywords: SplitKeywords(out)})
	}
	return sets, nil
}

// ExtractFromAnswer pulls key terms out of a draft answer.
func (g *KeywordGenerator) ExtractFromAnswer(ctx context.Context, text string) ([]string, error) {
	out, err := g.completer.Complete(ctx, extractionSystemPrompt, extractionPrompt(text))
	if err != nil {
		return nil, err
	}
	return SplitKeywords(out), nil
}

// SplitKeywords splits a comma separated model answer into trimmed,
// non-empty keywords. Order is preserved.
func SplitKeywords(s string) []string {
	var keywords []string
	for _, part := range strings.Split(s, ",") {
		if k := strings.TrimSpace(part); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}
