// Package runner sequences one selection cycle: load history, fetch,
// filter, score, select, deliver, persist, cleanup, health check.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"

	"github.com/qepting91/reddit-curator/internal/archive"
	"github.com/qepting91/reddit-curator/internal/config"
	"github.com/qepting91/reddit-curator/internal/delivery"
	"github.com/qepting91/reddit-curator/internal/domain"
	"github.com/qepting91/reddit-curator/internal/filter"
	"github.com/qepting91/reddit-curator/internal/health"
	"github.com/qepting91/reddit-curator/internal/history"
	"github.com/qepting91/reddit-curator/internal/metrics"
	"github.com/qepting91/reddit-curator/internal/scoring"
	"github.com/qepting91/reddit-curator/internal/selector"
)

type Runner struct {
	cfg       *config.Config
	log       *slog.Logger
	store     history.Store
	collector domain.Collector
	sink      delivery.Sink
	met       *metrics.Metrics
	sel       *selector.Selector
	scorer    *scoring.Scorer
	arch      *archive.Writer
	rng       *rand.Rand
	now       func() time.Time
}

// New wires one runner. Pass a seeded rng for reproducible selection
// and cleanup draws; nil gets a time-seeded one.
func New(cfg *config.Config, log *slog.Logger, store history.Store,
	col domain.Collector, sink delivery.Sink, met *metrics.Metrics, rng *rand.Rand,
) *Runner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	scorer := scoring.New(cfg, log)
	r := &Runner{
		cfg:       cfg,
		log:       log,
		store:     store,
		collector: col,
		sink:      sink,
		met:       met,
		sel:       selector.New(scorer, cfg.TopK, rng),
		scorer:    scorer,
		rng:       rng,
		now:       time.Now,
	}
	if cfg.ArchivePath != "" {
		r.arch = &archive.Writer{FilePath: cfg.ArchivePath}
	}
	return r
}

// Metrics exposes the runner's metric set for serving.
func (r *Runner) Metrics() *metrics.Metrics { return r.met }

// WithClock replaces the runner's and scorer's clock. Test hook.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	r.scorer.WithClock(now)
	return r
}

// Run executes one full cycle. A nil return covers both "posted" and
// the normal "nothing eligible" outcome.
func (r *Runner) Run(ctx context.Context) error {
	r.met.Runs.Inc()
	now := r.now()

	snapshot, err := history.BuildSnapshot(ctx, r.store, r.cfg.RotationLookback, now)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	posts := r.fetchAll(ctx)

	eligible := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if filter.Eligible(r.cfg, p, snapshot.Seen) {
			eligible = append(eligible, p)
		}
	}
	r.log.Info("candidates collected",
		"fetched", len(posts), "eligible", len(eligible))

	pick, ok := r.sel.Pick(eligible, snapshot.Rotation())
	if !ok {
		r.log.Info("no eligible candidate this run")
		r.met.EmptyRuns.Inc()
		r.healthCheck(ctx)
		return nil
	}
	r.log.Info("candidate selected",
		"id", pick.Post.ID, "subreddit", pick.Post.Subreddit,
		"score", pick.Score, "title", pick.Post.Title)

	msg := delivery.Format(pick.Post, r.cfg.MaxTitleLen)
	if err := r.sink.Deliver(ctx, msg); err != nil {
		// Nothing is persisted on a failed delivery so the next
		// scheduled run can try the post again.
		return fmt.Errorf("delivering post %s: %w", pick.Post.ID, err)
	}

	postedAt := r.now()
	if err := r.store.InsertIfAbsent(ctx, pick.Post.ID, pick.Post.Subreddit, postedAt); err != nil {
		return fmt.Errorf("recording post %s: %w", pick.Post.ID, err)
	}
	r.met.Posted.WithLabelValues(pick.Post.Subreddit).Inc()

	if r.arch != nil {
		if err := r.arch.Append(pick.Post, postedAt); err != nil {
			r.log.Warn("archive append failed", "err", err)
		}
	}

	r.maybeCleanup(ctx, now)
	r.healthCheck(ctx)
	return nil
}

// fetchAll requests every configured subreddit concurrently. Each
// goroutine writes only its own slot; per-subreddit failures are logged
// and excluded without cancelling siblings.
func (r *Runner) fetchAll(ctx context.Context) []domain.Post {
	names := r.cfg.SourceNames()
	results := make([][]domain.Post, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			posts, err := r.fetchOne(gctx, name)
			if err != nil {
				r.log.Error("fetch failed", "subreddit", name, "err", err)
				r.met.FetchErrors.WithLabelValues(name).Inc()
				return nil
			}
			results[i] = posts
			return nil
		})
	}
	g.Wait()

	var all []domain.Post
	for _, posts := range results {
		all = append(all, posts...)
	}
	return all
}

// fetchOne runs a single subreddit fetch with a per-attempt timeout and
// bounded linear backoff.
func (r *Runner) fetchOne(ctx context.Context, sub string) ([]domain.Post, error) {
	return backoff.Retry(ctx, func() ([]domain.Post, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
		defer cancel()
		return r.collector.FetchPosts(attemptCtx, sub, r.cfg.FetchLimit)
	},
		backoff.WithBackOff(&linearBackOff{step: time.Second}),
		backoff.WithMaxTries(uint(r.cfg.MaxAttempts)),
	)
}

// maybeCleanup occasionally trims records older than the retention
// window. Storage-growth control only; failures are logged and ignored.
func (r *Runner) maybeCleanup(ctx context.Context, now time.Time) {
	if r.rng.Float64() >= r.cfg.CleanupChance {
		return
	}
	cutoff := now.AddDate(0, 0, -r.cfg.RetentionDays)
	n, err := r.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		r.log.Warn("retention cleanup failed", "err", err)
		return
	}
	r.log.Info("retention cleanup", "deleted", n, "cutoff", cutoff)
}

func (r *Runner) healthCheck(ctx context.Context) {
	report := health.Evaluate(ctx, r.store, r.now())
	r.met.Health.Set(float64(report.Status))
	r.log.Info("health", "status", report.Status.String(), "reason", report.Reason)
}

// linearBackOff waits attempt × step between tries.
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.step
}

func (b *linearBackOff) Reset() { b.attempt = 0 }
