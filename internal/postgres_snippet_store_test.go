package internal

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formic-dev/formic"
)

func newMockedStore(t *testing.T) (*postgresSnippetStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return newPostgresSnippetStore(mock, "snippets", 5*time.Second), mock
}

func snippetColumns() []string {
	return []string{"id", "name", "tags", "content", "created_at", "updated_at"}
}

func TestPostgresSnippetStore_Save(t *testing.T) {
	store, mock := newMockedStore(t)
	snippet := formic.NewSnippet("form", "{}", "demo")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO snippets")).
		WithArgs(snippet.ID, snippet.Name, []string{"demo"}, snippet.Content, snippet.CreatedAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Save(context.Background(), snippet))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSnippetStore_Get(t *testing.T) {
	store, mock := newMockedStore(t)
	id := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, tags, content, created_at, updated_at FROM snippets WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(snippetColumns()).
			AddRow(id, "form", []string{"demo"}, "{}", now, now))

	got, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "form", got.Name)
	assert.Equal(t, []string{"demo"}, got.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSnippetStore_GetNotFound(t *testing.T) {
	store, mock := newMockedStore(t)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, tags, content, created_at, updated_at FROM snippets WHERE id = $1")).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := store.Get(context.Background(), id)
	require.Error(t, err)
	assert.True(t, formic.IsNotFoundError(err))
}

func TestPostgresSnippetStore_ListByTag(t *testing.T) {
	store, mock := newMockedStore(t)
	id := uuid.Must(uuid.NewV7())
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE $1 = ANY(tags)")).
		WithArgs("schema").
		WillReturnRows(pgxmock.NewRows(snippetColumns()).
			AddRow(id, "a", []string{"schema"}, "{}", now, now))

	result, err := store.ListByTag(context.Background(), "schema")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "a", result[0].Name)
}

func TestPostgresSnippetStore_DeleteNotFound(t *testing.T) {
	store, mock := newMockedStore(t)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM snippets WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := store.Delete(context.Background(), id)
	require.Error(t, err)
	assert.True(t, formic.IsNotFoundError(err))
}

func TestSanitizeIdentifier(t *testing.T) {
	assert.Equal(t, "snippets_v2", sanitizeIdentifier("snippets_v2"))
	assert.Equal(t, "snippetsdroptable", sanitizeIdentifier(`snippets";drop table`))
}
