package store

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/xhad/buddy/internal/models"
	"github.com/xhad/buddy/internal/types"
)

type VectorStoreConfig struct {
	TableName   string
	VectorDim   int
	SearchLimit int
}

// VectorStore is the similarity index: one row per chunk with its
// embedding and ingestion metadata.
type VectorStore struct {
	config VectorStoreConfig
	pool   *pgxpool.Pool
}

func NewVectorStore(ctx context.Context, pool *pgxpool.Pool, config VectorStoreConfig) (*VectorStore, error) {
	if config.TableName == "" {
		config.TableName = "document_chunks"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 1536 // Default for OpenAI embeddings
	}
	if config.SearchLimit == 0 {
		config.SearchLimit = 5
	}

	vs := &VectorStore{config: config, pool: pool}
	if err := vs.initialize(ctx); err != nil {
		return nil, err
	}
	return vs, nil
}

func (vs *VectorStore) initialize(ctx context.Context) error {
	if _, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			embedding vector(%d),
			metadata JSONB
		)`, vs.config.TableName, vs.config.VectorDim)
	if _, err := vs.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING hnsw (embedding vector_cosine_ops)`,
		vs.config.TableName, vs.config.TableName)
	if _, err := vs.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// Upsert stores or replaces the vector with the given id.
func (vs *VectorStore) Upsert(ctx context.Context, id string, vector []float32, metadata map[string]interface{}) error {
	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, embedding, metadata)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata`,
		vs.config.TableName)

	_, err := vs.pool.Exec(ctx, stmt, id, pgvector.NewVector(vector), sanitizeMetadata(metadata))
	if err != nil {
		return types.Collaborator("vector index", "upsert", err)
	}
	return nil
}

// Query returns the topK nearest vectors by cosine distance. Score is the
// cosine similarity.
func (vs *VectorStore) Query(ctx context.Context, vector []float32, topK int) ([]models.VectorMatch, error) {
	if topK <= 0 {
		topK = vs.config.SearchLimit
	}

	query := fmt.Sprintf(`
		SELECT id, 1 - (embedding <=> $1) AS score, metadata
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		vs.config.TableName)

	rows, err := vs.pool.Query(ctx, query, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, types.Collaborator("vector index", "query", err)
	}
	defer rows.Close()

	var matches []models.VectorMatch
	for rows.Next() {
		var m models.VectorMatch
		if err := rows.Scan(&m.ID, &m.Score, &m.Metadata); err != nil {
			return nil, types.Collaborator("vector index", "scan", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Collaborator("vector index", "query", err)
	}

	return matches, nil
}

// Postgres rejects invalid UTF-8 in JSONB, and extracted PDF text often
// carries some.
func sanitizeMetadata(metadata map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		if s, ok := v.(string); ok {
			v = sanitizeUTF8(s)
		}
		out[k] = v
	}
	return out
}

func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
