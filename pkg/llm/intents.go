package llm

import (
	"context"
	"strings"

	"github.com/xhad/buddy/internal/models"
	"github.com/xhad/buddy/internal/types"
)

// IntentExtractor derives the intents of a raw query. The current prompt
// asks for the primary intent only, so at most one intent is returned.
type IntentExtractor struct {
	completer types.Completer
}

func NewIntentExtractor(completer types.Completer) *IntentExtractor {
	return &IntentExtractor{completer: completer}
}

// Extract returns an empty slice when the model answers with blank text.
func (e *IntentExtractor) Extract(ctx context.Context, query string) ([]models.Intent, error) {
	out, err := e.completer.Complete(ctx, intentSystemPrompt, intentPrompt(query))
	if err != nil {
		return nil, err
	}
	intent := strings.TrimSpace(out)
	if intent == "" {
		return []models.Intent{}, nil
	}
	return []models.Intent{models.Intent(intent)}, nil
}
