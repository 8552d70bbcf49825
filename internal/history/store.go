package history

import (
	"context"
	"fmt"
	"time"

	"github.com/qepting91/reddit-curator/internal/scoring"
)

// Store is the durable log of previously posted submissions.
type Store interface {
	// SeenIDs returns every posted submission id.
	SeenIDs(ctx context.Context) (map[string]struct{}, error)

	// RecentSubreddits returns the subreddits of the n most recent
	// posts, most recent first.
	RecentSubreddits(ctx context.Context, n int) ([]string, error)

	// UsageCountsSince counts posts per subreddit since the given time.
	UsageCountsSince(ctx context.Context, since time.Time) (map[string]int, error)

	// InsertIfAbsent records a posted submission. Inserting an id that
	// already exists is a no-op, not an error.
	InsertIfAbsent(ctx context.Context, id, subreddit string, postedAt time.Time) error

	// DeleteOlderThan removes records strictly older than cutoff and
	// returns how many were deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// LastPostedAt returns the most recent posted-at time, ok=false
	// when the log is empty.
	LastPostedAt(ctx context.Context) (time.Time, bool, error)

	// PostedCounts returns total posts per subreddit, for reporting.
	PostedCounts(ctx context.Context) (map[string]int, error)

	Ping(ctx context.Context) error
	Close() error
}

// Snapshot is the per-run view of posting history. It is rebuilt at the
// start of every run and discarded when the run ends.
type Snapshot struct {
	Seen             map[string]struct{}
	RecentSubreddits []string
	UsageCounts      map[string]int
}

// Rotation converts the snapshot into the scoring function's inputs.
func (s *Snapshot) Rotation() scoring.History {
	return scoring.History{
		RecentSubreddits: s.RecentSubreddits,
		UsageCounts:      s.UsageCounts,
	}
}

// BuildSnapshot reads the three history views a run needs. Any store
// failure aborts the build; the caller aborts the run.
func BuildSnapshot(ctx context.Context, store Store, lookback int, now time.Time) (*Snapshot, error) {
	seen, err := store.SeenIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading seen ids: %w", err)
	}
	recent, err := store.RecentSubreddits(ctx, lookback)
	if err != nil {
		return nil, fmt.Errorf("loading recent subreddits: %w", err)
	}
	usage, err := store.UsageCountsSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("loading 24h usage: %w", err)
	}
	return &Snapshot{Seen: seen, RecentSubreddits: recent, UsageCounts: usage}, nil
}
