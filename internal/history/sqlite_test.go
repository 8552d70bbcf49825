package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "curator.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	now := time.Now()

	require.NoError(t, store.InsertIfAbsent(ctx, "abc12", "pics", now))
	require.NoError(t, store.InsertIfAbsent(ctx, "abc12", "pics", now.Add(time.Hour)))

	seen, err := store.SeenIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, seen, 1)
	assert.Contains(t, seen, "abc12")

	// The original posted-at wins; the duplicate insert was a no-op.
	last, ok, err := store.LastPostedAt(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, now.UnixMilli(), last.UnixMilli())
}

func TestRecentSubredditsMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	base := time.Now().Add(-time.Hour)

	require.NoError(t, store.InsertIfAbsent(ctx, "a1", "aww", base))
	require.NoError(t, store.InsertIfAbsent(ctx, "b1", "pics", base.Add(time.Minute)))
	require.NoError(t, store.InsertIfAbsent(ctx, "c1", "cats", base.Add(2*time.Minute)))

	recent, err := store.RecentSubreddits(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"cats", "pics", "aww"}, recent)

	bounded, err := store.RecentSubreddits(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"cats", "pics"}, bounded)
}

func TestUsageCountsSince(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	now := time.Now()

	require.NoError(t, store.InsertIfAbsent(ctx, "old1", "pics", now.Add(-30*time.Hour)))
	require.NoError(t, store.InsertIfAbsent(ctx, "new1", "pics", now.Add(-2*time.Hour)))
	require.NoError(t, store.InsertIfAbsent(ctx, "new2", "pics", now.Add(-time.Hour)))
	require.NoError(t, store.InsertIfAbsent(ctx, "new3", "aww", now.Add(-time.Hour)))

	counts, err := store.UsageCountsSince(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"pics": 2, "aww": 1}, counts)
}

func TestDeleteOlderThanBoundary(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	cutoff := time.Now().Add(-30 * 24 * time.Hour)

	require.NoError(t, store.InsertIfAbsent(ctx, "older", "pics", cutoff.Add(-time.Millisecond)))
	require.NoError(t, store.InsertIfAbsent(ctx, "atcut", "pics", cutoff))
	require.NoError(t, store.InsertIfAbsent(ctx, "newer", "pics", cutoff.Add(time.Millisecond)))

	deleted, err := store.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	seen, err := store.SeenIDs(ctx)
	require.NoError(t, err)
	assert.NotContains(t, seen, "older")
	assert.Contains(t, seen, "atcut") // exactly at the cutoff is retained
	assert.Contains(t, seen, "newer")
}

func TestLastPostedAtEmpty(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, ok, err := store.LastPostedAt(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuildSnapshot(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	now := time.Now()

	require.NoError(t, store.InsertIfAbsent(ctx, "a1", "aww", now.Add(-3*time.Hour)))
	require.NoError(t, store.InsertIfAbsent(ctx, "b1", "pics", now.Add(-2*time.Hour)))
	require.NoError(t, store.InsertIfAbsent(ctx, "old1", "cats", now.Add(-48*time.Hour)))

	snap, err := BuildSnapshot(ctx, store, 2, now)
	require.NoError(t, err)

	assert.Len(t, snap.Seen, 3)
	assert.Equal(t, []string{"pics", "aww"}, snap.RecentSubreddits)
	assert.Equal(t, map[string]int{"aww": 1, "pics": 1}, snap.UsageCounts)
}

func TestPostedCounts(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	now := time.Now()

	require.NoError(t, store.InsertIfAbsent(ctx, "a1", "aww", now))
	require.NoError(t, store.InsertIfAbsent(ctx, "a2", "aww", now))
	require.NoError(t, store.InsertIfAbsent(ctx, "b1", "pics", now))

	counts, err := store.PostedCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"aww": 2, "pics": 1}, counts)
}
