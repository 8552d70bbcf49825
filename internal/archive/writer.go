// Package archive keeps an append-only NDJSON audit log of everything
// that was actually delivered. Best effort: the run never fails on it.
package archive

import (
	"encoding/json"
	"os"
	"time"

	"github.com/qepting91/reddit-curator/internal/domain"
)

type Writer struct {
	FilePath string
}

type entry struct {
	PostedAt time.Time   `json:"posted_at"`
	Post     domain.Post `json:"post"`
}

// Append writes one delivered post as an NDJSON line.
func (w *Writer) Append(p domain.Post, postedAt time.Time) error {
	f, err := os.OpenFile(w.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(entry{PostedAt: postedAt, Post: p})
}
