package fake

import "strings"

// Tokenizer counts whitespace separated words as tokens.
type Tokenizer struct{}

func (Tokenizer) Count(text string) int {
	return len(strings.Fields(text))
}

func (Tokenizer) Truncate(text string, maxTokens int) string {
	words := strings.Fields(text)
	if maxTokens <= 0 {
		return ""
	}
	if len(words) <= maxTokens {
		return text
	}
	return strings.Join(words[:maxTokens], " ")
}
