// Package scoring computes a desirability score for each candidate post.
//
// The score combines intrinsic quality signals (popularity, upvote ratio,
// comment engagement, freshness) with historical-usage penalties that push
// selection away from recently used subreddits.
package scoring

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/qepting91/reddit-curator/internal/config"
	"github.com/qepting91/reddit-curator/internal/domain"
)

// History carries the rotation inputs for one run: the most recently
// posted subreddits (most recent first) and per-subreddit post counts
// over the trailing 24 hours.
type History struct {
	RecentSubreddits []string
	UsageCounts      map[string]int
}

var baitWords = []string{"upvote", "updoot", "award"}

// Scorer evaluates posts against one immutable configuration. The clock
// is injectable so freshness terms are testable.
type Scorer struct {
	cfg *config.Config
	log *slog.Logger
	now func() time.Time
}

func New(cfg *config.Config, log *slog.Logger) *Scorer {
	return &Scorer{cfg: cfg, log: log, now: time.Now}
}

// WithClock replaces the scorer's clock. Test hook.
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// Score is deterministic given the post, history, and clock. The slog
// annotations are informational only.
func (s *Scorer) Score(p domain.Post, h History) float64 {
	score := math.Log10(float64(p.Score)+1) * 100
	score += p.UpvoteRatio * 50
	score += math.Min(float64(p.CommentCount)/float64(p.Score+1)*20, s.cfg.EngagementCap)

	ageHours := s.now().Sub(p.Created()).Hours()
	if ageHours < 2 {
		score += (2 - ageHours) * 10
	} else {
		score -= math.Min((ageHours-2)/s.cfg.AgeDivisor, s.cfg.MaxAgePenalty)
	}

	score *= s.cfg.SourceWeight(p.Subreddit)

	if p.IsCrosspost() {
		score *= 0.8
		s.log.Debug("crosspost penalty", "id", p.ID, "parent", p.CrosspostParent)
	}

	title := strings.ToLower(p.Title)
	for _, w := range baitWords {
		if strings.Contains(title, w) {
			score *= 0.9
			s.log.Debug("bait title penalty", "id", p.ID, "word", w)
			break
		}
	}
	if strings.Contains(title, "[oc]") || strings.Contains(title, "(oc)") {
		score *= 1.1
	}

	if s.cfg.RotationEnabled {
		if idx := indexOf(h.RecentSubreddits, p.Subreddit); idx >= 0 {
			m := rotationMultiplier(idx)
			score *= m
			s.log.Debug("rotation penalty", "id", p.ID, "subreddit", p.Subreddit,
				"recency_index", idx, "multiplier", m)
		}
		if c := h.UsageCounts[p.Subreddit]; c > 0 {
			score *= math.Pow(0.9, float64(c))
			s.log.Debug("24h usage penalty", "id", p.ID, "subreddit", p.Subreddit, "count", c)
		}
	}

	return score
}

// rotationMultiplier dampens subreddits seen recently: the most recent
// loses half its score, the next a third, then a quarter, and so on.
func rotationMultiplier(idx int) float64 {
	return 1 - 1/float64(idx+2)
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if strings.EqualFold(s, v) {
			return i
		}
	}
	return -1
}
