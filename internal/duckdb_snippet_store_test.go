package internal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formic-dev/formic"
)

func newTestDuckDBStore(t *testing.T) formic.SnippetStore {
	t.Helper()
	store, err := NewDuckDBSnippetStore(formic.DuckDBConfig{
		QueryTimeout: 30 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDuckDBSnippetStore_RoundTrip(t *testing.T) {
	store := newTestDuckDBStore(t)
	ctx := context.Background()

	snippet := formic.NewSnippet("vehicle form", `{"type":"car"}`, "demo", "vehicle")
	require.NoError(t, store.Save(ctx, snippet))

	got, err := store.Get(ctx, snippet.ID)
	require.NoError(t, err)
	assert.Equal(t, snippet.ID, got.ID)
	assert.Equal(t, "vehicle form", got.Name)
	assert.Equal(t, `{"type":"car"}`, got.Content)
	assert.Equal(t, []string{"demo", "vehicle"}, got.Tags)
}

func TestDuckDBSnippetStore_SaveReplaces(t *testing.T) {
	store := newTestDuckDBStore(t)
	ctx := context.Background()

	snippet := formic.NewSnippet("buffer", "v1")
	require.NoError(t, store.Save(ctx, snippet))

	snippet.Content = "v2"
	require.NoError(t, store.Save(ctx, snippet))

	got, err := store.Get(ctx, snippet.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Content)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDuckDBSnippetStore_GetNotFound(t *testing.T) {
	store := newTestDuckDBStore(t)

	_, err := store.Get(context.Background(), uuid.Must(uuid.NewV7()))
	require.Error(t, err)
	assert.True(t, formic.IsNotFoundError(err))
}

func TestDuckDBSnippetStore_ListByTag(t *testing.T) {
	store := newTestDuckDBStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, formic.NewSnippet("a", "{}", "schema")))
	require.NoError(t, store.Save(ctx, formic.NewSnippet("b", "{}")))

	tagged, err := store.ListByTag(ctx, "schema")
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "a", tagged[0].Name)
}

func TestDuckDBSnippetStore_Delete(t *testing.T) {
	store := newTestDuckDBStore(t)
	ctx := context.Background()

	snippet := formic.NewSnippet("gone", "{}")
	require.NoError(t, store.Save(ctx, snippet))
	require.NoError(t, store.Delete(ctx, snippet.ID))

	err := store.Delete(ctx, snippet.ID)
	assert.True(t, formic.IsNotFoundError(err))
}

func TestDecodeTags(t *testing.T) {
	tags, err := decodeTags(`["a","b"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tags)

	tags, err = decodeTags("[]")
	require.NoError(t, err)
	assert.Nil(t, tags)

	_, err = decodeTags("{broken")
	assert.Error(t, err)
}
