// Package selector ranks scored candidates and draws one from the top
// window at random. Randomness within the window trades strict
// optimality for variety; the pick is never outside the top K.
package selector

import (
	"math/rand"
	"sort"
	"time"

	"github.com/qepting91/reddit-curator/internal/domain"
	"github.com/qepting91/reddit-curator/internal/scoring"
)

type Selector struct {
	scorer *scoring.Scorer
	topK   int
	rng    *rand.Rand
}

// New builds a selector around a scorer. Pass a seeded rng for
// reproducible draws; nil gets a time-seeded one.
func New(scorer *scoring.Scorer, topK int, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{scorer: scorer, topK: topK, rng: rng}
}

// Rank scores every post and returns candidates sorted by descending
// score. Equal scores order by ascending post ID so ranking is
// reproducible regardless of input order.
func (s *Selector) Rank(posts []domain.Post, h scoring.History) []domain.ScoredCandidate {
	candidates := make([]domain.ScoredCandidate, 0, len(posts))
	for _, p := range posts {
		candidates = append(candidates, domain.ScoredCandidate{
			Post:  p,
			Score: s.scorer.Score(p, h),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Post.ID < candidates[j].Post.ID
	})
	return candidates
}

// Pick returns one candidate drawn uniformly from the top-K ranked
// window, or ok=false when there is nothing to pick.
func (s *Selector) Pick(posts []domain.Post, h scoring.History) (domain.ScoredCandidate, bool) {
	if len(posts) == 0 {
		return domain.ScoredCandidate{}, false
	}
	ranked := s.Rank(posts, h)
	window := s.topK
	if window > len(ranked) {
		window = len(ranked)
	}
	return ranked[s.rng.Intn(window)], true
}
