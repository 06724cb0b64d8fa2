package llm

import (
	"context"

	"github.com/xhad/buddy/internal/types"
)

// AnswerSynthesizer produces answer text from a query and assembled context.
type AnswerSynthesizer struct {
	completer types.Completer
}

func NewAnswerSynthesizer(completer types.Completer) *AnswerSynthesizer {
	return &AnswerSynthesizer{completer: completer}
}

func (s *AnswerSynthesizer) Synthesize(ctx context.Context, query, contextText string) (string, error) {
	return s.completer.Complete(ctx, answerSystemPrompt, answerPrompt(query, contextText))
}
