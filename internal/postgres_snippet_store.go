package internal

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	awsCreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dsql/auth"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/formic-dev/formic"
)

// pgxSnippetDB is the slice of pgxpool.Pool the store uses. pgxmock
// implements the same surface, which keeps the store testable without a
// live database.
type pgxSnippetDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// postgresSnippetStore persists snippets in a shared Postgres table so
// multiple instances can serve the same snippet collection.
type postgresSnippetStore struct {
	pool    pgxSnippetDB
	table   string
	timeout time.Duration
}

// NewPostgresSnippetStore connects to Postgres and ensures the snippet
// table exists. With UseIAM set, the password is replaced by a DSQL
// connect token generated from the ambient AWS credentials.
func NewPostgresSnippetStore(ctx context.Context, cfg formic.PostgresConfig) (formic.SnippetStore, error) {
	pool, err := createSnippetPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := newPostgresSnippetStore(pool, cfg.Table, cfg.Timeout)
	if err := store.ensureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func newPostgresSnippetStore(pool pgxSnippetDB, table string, timeout time.Duration) *postgresSnippetStore {
	return &postgresSnippetStore{
		pool:    pool,
		table:   sanitizeIdentifier(table),
		timeout: timeout,
	}
}

// createSnippetPool creates a PostgreSQL connection pool from config.
func createSnippetPool(ctx context.Context, cfg formic.PostgresConfig) (*pgxpool.Pool, error) {
	password := cfg.Password
	sslMode := cfg.SSLMode
	if cfg.UseIAM {
		token, err := generateIAMToken(ctx, cfg)
		if err != nil {
			zap.S().Warnw("failed to generate IAM auth token; falling back to configured password", "err", err)
		} else {
			password = token
			sslMode = "require"
			zap.S().Infow("generated IAM auth token for Postgres connection (dsql)")
		}
	}

	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username,
		password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		sslMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, formic.NewConnectionError("failed to parse connection string", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.ConnMaxIdleTime
	poolConfig.ConnConfig.ConnectTimeout = cfg.Timeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, formic.NewConnectionError("failed to create connection pool", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, formic.NewConnectionError("failed to ping database", err)
	}

	return pool, nil
}

// generateIAMToken builds a DSQL connect token for the configured endpoint.
func generateIAMToken(ctx context.Context, cfg formic.PostgresConfig) (string, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("load aws config: %w", err)
	}
	if envKey := os.Getenv("AWS_ACCESS_KEY_ID"); envKey != "" {
		awsCfg.Credentials = awsCreds.NewStaticCredentialsProvider(envKey, os.Getenv("AWS_SECRET_ACCESS_KEY"), "")
	}

	endpoint := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	token, err := auth.GenerateDbConnectAuthToken(ctx, endpoint, awsCfg.Region, awsCfg.Credentials)
	if err != nil {
		return "", fmt.Errorf("generate db connect token: %w", err)
	}
	if token == "" {
		return "", fmt.Errorf("empty db connect token")
	}
	return token, nil
}

func (s *postgresSnippetStore) ensureTable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			tags TEXT[] NOT NULL DEFAULT '{}',
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`, s.table))
	if err != nil {
		return formic.NewStorageError("create snippet table", err)
	}
	return nil
}

func (s *postgresSnippetStore) Save(ctx context.Context, snippet *formic.Snippet) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tags := snippet.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := s.pool.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, name, tags, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			tags = EXCLUDED.tags,
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at`, s.table),
		snippet.ID, snippet.Name, tags, snippet.Content, snippet.CreatedAt, time.Now().UTC())
	if err != nil {
		return formic.NewStorageError("save snippet", err)
	}
	return nil
}

func (s *postgresSnippetStore) Get(ctx context.Context, id uuid.UUID) (*formic.Snippet, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT id, name, tags, content, created_at, updated_at FROM %s WHERE id = $1`, s.table), id)

	var snippet formic.Snippet
	err := row.Scan(&snippet.ID, &snippet.Name, &snippet.Tags, &snippet.Content, &snippet.CreatedAt, &snippet.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, formic.NewSnippetNotFoundError(id.String())
	}
	if err != nil {
		return nil, formic.NewStorageError("get snippet", err)
	}
	return &snippet, nil
}

func (s *postgresSnippetStore) List(ctx context.Context) ([]*formic.Snippet, error) {
	return s.queryMany(ctx, fmt.Sprintf(
		`SELECT id, name, tags, content, created_at, updated_at FROM %s ORDER BY created_at DESC`, s.table))
}

func (s *postgresSnippetStore) ListByTag(ctx context.Context, tag string) ([]*formic.Snippet, error) {
	return s.queryMany(ctx, fmt.Sprintf(
		`SELECT id, name, tags, content, created_at, updated_at FROM %s WHERE $1 = ANY(tags) ORDER BY created_at DESC`, s.table), tag)
}

func (s *postgresSnippetStore) queryMany(ctx context.Context, query string, args ...any) ([]*formic.Snippet, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, formic.NewStorageError("list snippets", err)
	}
	defer rows.Close()

	var result []*formic.Snippet
	for rows.Next() {
		var snippet formic.Snippet
		if err := rows.Scan(&snippet.ID, &snippet.Name, &snippet.Tags, &snippet.Content, &snippet.CreatedAt, &snippet.UpdatedAt); err != nil {
			return nil, formic.NewStorageError("scan snippet row", err)
		}
		result = append(result, &snippet)
	}
	if err := rows.Err(); err != nil {
		return nil, formic.NewStorageError("iterate snippet rows", err)
	}
	return result, nil
}

func (s *postgresSnippetStore) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table), id)
	if err != nil {
		return formic.NewStorageError("delete snippet", err)
	}
	if tag.RowsAffected() == 0 {
		return formic.NewSnippetNotFoundError(id.String())
	}
	return nil
}

func (s *postgresSnippetStore) Close() error {
	s.pool.Close()
	return nil
}

// sanitizeIdentifier strips anything that is not a legal bare identifier
// character. Table names come from config, not user input, but they are
// interpolated into SQL so they get cleaned anyway.
func sanitizeIdentifier(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
