// Package format classifies answer lines into structural chunks and paces
// them out for progressive display.
package format

import (
	"regexp"
	"strings"

	"github.com/xhad/buddy/internal/models"
)

// lineMatcher recognises one kind of line. ok is false when the line is not
// of that kind.
type lineMatcher func(line string) (chunk models.Chunk, ok bool)

var (
	headerRe   = regexp.MustCompile(`^(#+)\s*(.*)$`)
	bulletRe   = regexp.MustCompile(`^\s*[-*]\s+(.*)$`)
	numberedRe = regexp.MustCompile(`^\s*\d+\.\s*(.*)$`)
)

// matchers are tried in order; the first hit wins.
var matchers = []lineMatcher{
	func(line string) (models.Chunk, bool) {
		m := headerRe.FindStringSubmatch(line)
		if m == nil {
			return models.Chunk{}, false
		}
		return models.Chunk{Kind: models.ChunkHeader, Level: len(m[1]), Text: strings.TrimSpace(m[2])}, true
	},
	func(line string) (models.Chunk, bool) {
		m := bulletRe.FindStringSubmatch(line)
		if m == nil {
			return models.Chunk{}, false
		}
		return models.Chunk{Kind: models.ChunkBullet, Text: strings.TrimSpace(m[1])}, true
	},
	func(line string) (models.Chunk, bool) {
		m := numberedRe.FindStringSubmatch(line)
		if m == nil {
			return models.Chunk{}, false
		}
		return models.Chunk{Kind: models.ChunkNumbered, Text: strings.TrimSpace(m[1])}, true
	},
}

// Format maps every line of text to exactly one chunk. Blank lines become
// empty text chunks, and joining the Line fields with "\n" gives text back.
func Format(text string) []models.Chunk {
	lines := strings.Split(text, "\n")
	chunks := make([]models.Chunk, 0, len(lines))
	for _, line := range lines {
		chunks = append(chunks, classify(line))
	}
	return chunks
}

func classify(line string) models.Chunk {
	for _, match := range matchers {
		if chunk, ok := match(line); ok {
			chunk.Line = line
			return chunk
		}
	}
	return models.Chunk{Kind: models.ChunkText, Text: line, Line: line}
}

// Join rebuilds the text of chunks produced by Format.
func Join(chunks []models.Chunk) string {
	lines := make([]string, len(chunks))
	for i, c := range chunks {
		lines[i] = c.Line
	}
	return strings.Join(lines, "\n")
}
