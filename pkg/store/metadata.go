package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xhad/buddy/internal/models"
	"github.com/xhad/buddy/internal/types"
)

// ErrEmptyMetadata is returned when a document has no tags or no link.
var ErrEmptyMetadata = errors.New("tags and link cannot be empty")

// SeedDocument is the record a fresh database starts with.
var SeedDocument = models.DocumentRecord{
	ID:    1,
	Title: "TEXAS TECH",
	Tags: models.ParseTags("Universities, Texas Tech University, College Life, Student Wellness, " +
		"Financial Tips for Students, Campus Activities, Study Strategies"),
	Link: "https://www.ttu.edu/",
}

// MetadataStore holds the curated document records matched by tag.
type MetadataStore struct {
	pool  *pgxpool.Pool
	table string
}

func NewMetadataStore(ctx context.Context, pool *pgxpool.Pool, table string) (*MetadataStore, error) {
	if table == "" {
		table = "documents"
	}
	s := &MetadataStore{pool: pool, table: table}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			tags TEXT NOT NULL,
			link TEXT NOT NULL
		)`, table)
	if _, err := pool.Exec(ctx, createTable); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return s, nil
}

// Insert adds a record and returns it with its assigned id.
func (s *MetadataStore) Insert(ctx context.Context, title string, tags []string, link string) (models.DocumentRecord, error) {
	joined := strings.TrimSpace(models.JoinTags(tags))
	link = strings.TrimSpace(link)
	if strings.Trim(joined, ", ") == "" || link == "" {
		return models.DocumentRecord{}, ErrEmptyMetadata
	}

	rec := models.DocumentRecord{Title: strings.TrimSpace(title), Tags: models.ParseTags(joined), Link: link}
	stmt := fmt.Sprintf(`INSERT INTO %s (title, tags, link) VALUES ($1, $2, $3) RETURNING id`, s.table)
	if err := s.pool.QueryRow(ctx, stmt, rec.Title, joined, rec.Link).Scan(&rec.ID); err != nil {
		return models.DocumentRecord{}, types.Collaborator("metadata store", "insert", err)
	}
	return rec, nil
}

// All lists records that have both tags and a link, by id.
func (s *MetadataStore) All(ctx context.Context) ([]models.DocumentRecord, error) {
	query := fmt.Sprintf(`SELECT id, title, tags, link FROM %s WHERE tags <> '' AND link <> '' ORDER BY id`, s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, types.Collaborator("metadata store", "list", err)
	}
	return collectRecords(rows, "list")
}

// QueryByTagSubstring returns rows whose tag column contains pattern,
// ignoring case, in row order. Pattern is matched literally.
func (s *MetadataStore) QueryByTagSubstring(ctx context.Context, pattern string) ([]models.DocumentRecord, error) {
	query := fmt.Sprintf(`SELECT id, title, tags, link FROM %s WHERE tags ILIKE $1 ESCAPE '\' ORDER BY id`, s.table)
	rows, err := s.pool.Query(ctx, query, "%"+escapeLike(pattern)+"%")
	if err != nil {
		return nil, types.Collaborator("metadata store", "query by tag", err)
	}
	return collectRecords(rows, "query by tag")
}

// Seed inserts SeedDocument unless a row with its id exists.
func (s *MetadataStore) Seed(ctx context.Context) error {
	stmt := fmt.Sprintf(`INSERT INTO %s (id, title, tags, link) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`, s.table)
	if _, err := s.pool.Exec(ctx, stmt, SeedDocument.ID, SeedDocument.Title, models.JoinTags(SeedDocument.Tags), SeedDocument.Link); err != nil {
		return types.Collaborator("metadata store", "seed", err)
	}

	// Explicit ids do not advance the serial sequence.
	resync := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT COALESCE(MAX(id), 1) FROM %s))`, s.table, s.table)
	if _, err := s.pool.Exec(ctx, resync); err != nil {
		return types.Collaborator("metadata store", "seed", err)
	}
	return nil
}

func collectRecords(rows pgx.Rows, op string) ([]models.DocumentRecord, error) {
	defer rows.Close()

	var records []models.DocumentRecord
	for rows.Next() {
		var (
			rec  models.DocumentRecord
			tags string
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &tags, &rec.Link); err != nil {
			return nil, types.Collaborator("metadata store", op, err)
		}
		rec.Tags = models.ParseTags(tags)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Collaborator("metadata store", op, err)
	}
	return records, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
