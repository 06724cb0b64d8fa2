package retrieval

import (
	"context"
	"strings"

	"github.com/xhad/buddy/internal/types"
)

// DefaultTopK is the number of nearest neighbours fetched per query.
const DefaultTopK = 5

// Metadata keys written at ingestion and read back here.
const (
	MetaChunkText = "chunk_text"
	MetaFileName  = "file_name"
	MetaFileID    = "file_id"
	MetaChunkID   = "chunk_id"
)

// VectorRetriever turns a text query into semantic context via the embedding
// service and the similarity index.
type VectorRetriever struct {
	embedder types.Embedder
	index    types.VectorIndex
	topK     int
}

func NewVectorRetriever(embedder types.Embedder, index types.VectorIndex, topK int) *VectorRetriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &VectorRetriever{embedder: embedder, index: index, topK: topK}
}

// Retrieve returns the source fragments of the nearest neighbours of text,
// space-joined. A topK of zero uses the retriever default. Blank text
// retrieves nothing.
func (r *VectorRetriever) Retrieve(ctx context.Context, text string, topK int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if topK <= 0 {
		topK = r.topK
	}

	vector, err := r.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return "", types.Collaborator("embedder", "embed query", err)
	}

	matches, err := r.index.Query(ctx, vector, topK)
	if err != nil {
		return "", types.Collaborator("vector index", "query", err)
	}

	fragments := make([]string, 0, len(matches))
	for _, m := range matches {
		fragments = append(fragments, Fragment(m.Metadata))
	}
	return strings.Join(fragments, " "), nil
}

// Fragment is the source text stored with a vector, or a placeholder naming
// its file when the text is missing.
func Fragment(metadata map[string]interface{}) string {
	if text, ok := metadata[MetaChunkText].(string); ok && text != "" {
		return text
	}
	name, ok := metadata[MetaFileName].(string)
	if !ok || name == "" {
		name = "unknown file"
	}
	return "Content from " + name
}
