// Package processor splits extracted documents into fixed-size chunks for
// embedding.
package processor

import (
	"strings"

	"github.com/xhad/buddy/internal/models"
)

// DefaultChunkSize is the chunk length in characters.
const DefaultChunkSize = 8000

type ProcessorConfig struct {
	ChunkSize    int // characters per chunk
	ChunkOverlap int // characters repeated at the start of the next chunk
	// CollapseWhitespace folds runs of whitespace into a single space before
	// splitting.
	CollapseWhitespace bool
}

type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		config.ChunkOverlap = 0
	}
	return Processor{config: config}
}

func (p Processor) Process(docs []models.Document) []models.ProcessedDocument {
	processed := make([]models.ProcessedDocument, 0, len(docs))
	for _, doc := range docs {
		processed = append(processed, models.ProcessedDocument{
			Document: doc,
			Chunks:   p.Split(doc.Content),
		})
	}
	return processed
}

// Split cuts text into windows of ChunkSize characters (runes), each
// starting ChunkSize-ChunkOverlap after the previous one. Windows holding
// only whitespace are dropped.
func (p Processor) Split(text string) []string {
	if p.config.CollapseWhitespace {
		text = strings.Join(strings.Fields(text), " ")
	}

	runes := []rune(text)
	step := p.config.ChunkSize - p.config.ChunkOverlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + p.config.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[start:end])
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
