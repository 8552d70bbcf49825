package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS posted (
	id        TEXT PRIMARY KEY,
	subreddit TEXT NOT NULL,
	posted_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS posted_at_idx ON posted (posted_at);
`

// SQLiteStore keeps the posted-history log in a local SQLite file.
// posted_at is stored as unix milliseconds.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the history database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// The bot is the only writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SeenIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM posted`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		seen[id] = struct{}{}
	}
	return seen, rows.Err()
}

func (s *SQLiteStore) RecentSubreddits(ctx context.Context, n int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT subreddit FROM posted ORDER BY posted_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []string
	for rows.Next() {
		var sub string
		if err := rows.Scan(&sub); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *SQLiteStore) UsageCountsSince(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT subreddit, COUNT(*) FROM posted WHERE posted_at >= ? GROUP BY subreddit`,
		since.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var sub string
		var c int
		if err := rows.Scan(&sub, &c); err != nil {
			return nil, err
		}
		counts[sub] = c
	}
	return counts, rows.Err()
}

func (s *SQLiteStore) InsertIfAbsent(ctx context.Context, id, subreddit string, postedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posted (id, subreddit, posted_at) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		id, subreddit, postedAt.UnixMilli())
	return err
}

func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	// Strictly older than: a record exactly at the cutoff is retained.
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM posted WHERE posted_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) LastPostedAt(ctx context.Context) (time.Time, bool, error) {
	var ms int64
	err := s.db.QueryRowContext(ctx,
		`SELECT posted_at FROM posted ORDER BY posted_at DESC LIMIT 1`).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(ms), true, nil
}

func (s *SQLiteStore) PostedCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT subreddit, COUNT(*) FROM posted GROUP BY subreddit`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var sub string
		var c int
		if err := rows.Scan(&sub, &c); err != nil {
			return nil, err
		}
		counts[sub] = c
	}
	return counts, rows.Err()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
