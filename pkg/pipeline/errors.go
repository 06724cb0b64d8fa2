package pipeline

import "errors"

var (
	// ErrEmptyQuery is returned when a request carries no question.
	ErrEmptyQuery = errors.New("query cannot be empty")

	ErrIntentsRequired     = errors.New("intent extractor is required")
	ErrKeywordsRequired    = errors.New("keyword generator is required")
	ErrRetrieverRequired   = errors.New("retrieval aggregator is required")
	ErrAssemblerRequired   = errors.New("context assembler is required")
	ErrSynthesizerRequired = errors.New("answer synthesizer is required")
)
