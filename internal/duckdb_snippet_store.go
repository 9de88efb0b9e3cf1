package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/formic-dev/formic"
)

const duckdbSnippetTable = `
CREATE TABLE IF NOT EXISTS snippets (
	id VARCHAR PRIMARY KEY,
	name VARCHAR NOT NULL,
	tags VARCHAR,
	content VARCHAR NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// duckdbSnippetStore persists snippets in an embedded DuckDB database.
// An empty Path opens an in-memory database, which is what the tests use.
type duckdbSnippetStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewDuckDBSnippetStore opens (or creates) the database and ensures the
// snippets table exists.
func NewDuckDBSnippetStore(cfg formic.DuckDBConfig) (formic.SnippetStore, error) {
	dsn := cfg.Path
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, formic.NewConnectionError("open duckdb", err)
	}
	// DuckDB typically uses a single connection
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.QueryTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, formic.NewConnectionError("ping duckdb", err)
	}
	if _, err := db.ExecContext(ctx, duckdbSnippetTable); err != nil {
		db.Close()
		return nil, formic.NewStorageError("create snippets table", err)
	}

	zap.S().Infow("duckdb snippet store ready", "path", dsn)
	return &duckdbSnippetStore{db: db, timeout: cfg.QueryTimeout}, nil
}

func (s *duckdbSnippetStore) Save(ctx context.Context, snippet *formic.Snippet) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tags, err := encodeTags(snippet.Tags)
	if err != nil {
		return formic.NewStorageError("encode snippet tags", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO snippets (id, name, tags, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snippet.ID.String(), snippet.Name, tags, snippet.Content, snippet.CreatedAt, time.Now().UTC())
	if err != nil {
		return formic.NewStorageError("save snippet", err)
	}
	return nil
}

func (s *duckdbSnippetStore) Get(ctx context.Context, id uuid.UUID) (*formic.Snippet, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, tags, content, created_at, updated_at FROM snippets WHERE id = ?`,
		id.String())
	snippet, err := scanSnippet(row.Scan)
	if err == sql.ErrNoRows {
		return nil, formic.NewSnippetNotFoundError(id.String())
	}
	if err != nil {
		return nil, formic.NewStorageError("get snippet", err)
	}
	return snippet, nil
}

func (s *duckdbSnippetStore) List(ctx context.Context) ([]*formic.Snippet, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, tags, content, created_at, updated_at FROM snippets ORDER BY created_at DESC`)
	if err != nil {
		return nil, formic.NewStorageError("list snippets", err)
	}
	defer rows.Close()
	return collectSnippets(rows)
}

// ListByTag filters in-process. Tags are stored as a JSON array and the
// expected collection size is editor-scale, so a scan is fine.
func (s *duckdbSnippetStore) ListByTag(ctx context.Context, tag string) ([]*formic.Snippet, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filterByTag(all, tag), nil
}

func (s *duckdbSnippetStore) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id.String())
	if err != nil {
		return formic.NewStorageError("delete snippet", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return formic.NewStorageError("delete snippet", err)
	}
	if affected == 0 {
		return formic.NewSnippetNotFoundError(id.String())
	}
	return nil
}

func (s *duckdbSnippetStore) Close() error {
	return s.db.Close()
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeTags(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decode snippet tags: %w", err)
	}
	return tags, nil
}

// scanSnippet reads one row regardless of whether it came from QueryRow
// or a rows cursor.
func scanSnippet(scan func(dest ...any) error) (*formic.Snippet, error) {
	var (
		rawID   string
		rawTags string
		snippet formic.Snippet
	)
	if err := scan(&rawID, &snippet.Name, &rawTags, &snippet.Content, &snippet.CreatedAt, &snippet.UpdatedAt); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse snippet id %q: %w", rawID, err)
	}
	snippet.ID = id
	if snippet.Tags, err = decodeTags(rawTags); err != nil {
		return nil, err
	}
	return &snippet, nil
}

func collectSnippets(rows *sql.Rows) ([]*formic.Snippet, error) {
	var result []*formic.Snippet
	for rows.Next() {
		snippet, err := scanSnippet(rows.Scan)
		if err != nil {
			return nil, formic.NewStorageError("scan snippet row", err)
		}
		result = append(result, snippet)
	}
	if err := rows.Err(); err != nil {
		return nil, formic.NewStorageError("iterate snippet rows", err)
	}
	return result, nil
}

func filterByTag(snippets []*formic.Snippet, tag string) []*formic.Snippet {
	result := make([]*formic.Snippet, 0, len(snippets))
	for _, snippet := range snippets {
		for _, t := range snippet.Tags {
			if t == tag {
				result = append(result, snippet)
				break
			}
		}
	}
	return result
}
