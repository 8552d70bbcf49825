// Package health derives an observational status from the history store.
// It never alters control flow.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/qepting91/reddit-curator/internal/history"
)

type Status int

const (
	Healthy Status = iota
	Degraded
	Unhealthy
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	case Unhealthy:
		return "unhealthy"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Report is the evaluated status plus a human-readable reason.
type Report struct {
	Status Status
	Reason string
}

// Evaluate checks store reachability and the recency of the last
// successful post. An unreachable store or more than 6h of silence is
// unhealthy; 2-6h is degraded. Store errors degrade the report rather
// than fail it.
func Evaluate(ctx context.Context, store history.Store, now time.Time) Report {
	if err := store.Ping(ctx); err != nil {
		return Report{Unhealthy, fmt.Sprintf("store unreachable: %v", err)}
	}

	last, ok, err := store.LastPostedAt(ctx)
	if err != nil {
		return Report{Unhealthy, fmt.Sprintf("store read failed: %v", err)}
	}
	if !ok {
		return Report{Unhealthy, "no posts recorded"}
	}

	silence := now.Sub(last)
	switch {
	case silence > 6*time.Hour:
		return Report{Unhealthy, fmt.Sprintf("no post in %s", silence.Round(time.Minute))}
	case silence > 2*time.Hour:
		return Report{Degraded, fmt.Sprintf("no post in %s", silence.Round(time.Minute))}
	}
	return Report{Healthy, fmt.Sprintf("last post %s ago", silence.Round(time.Minute))}
}
