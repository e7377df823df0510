package candidates

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"moviefuse/pkg/tmdb"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "search_results.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLookupMissingID(t *testing.T) {
	store := openTestStore(t)

	results, cached, err := store.Lookup(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Nil(t, results)
}

func TestPutAndLookupRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := []tmdb.Result{
		{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15"},
		{ID: 65754, Title: "Heat", ReleaseDate: "1986-12-12"},
	}
	require.NoError(t, store.Put(ctx, 42, want))

	got, cached, err := store.Lookup(ctx, 42)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, want, got)
}

func TestPutEmptyListIsCached(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, 7, nil))

	results, cached, err := store.Lookup(ctx, 7)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Empty(t, results)
}

func TestPutReplacesExisting(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, 42, []tmdb.Result{{ID: 1, Title: "Old"}}))
	require.NoError(t, store.Put(ctx, 42, []tmdb.Result{{ID: 2, Title: "New"}}))

	got, cached, err := store.Lookup(ctx, 42)
	require.NoError(t, err)
	assert.True(t, cached)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("", zap.NewNop())
	assert.Error(t, err)
}
