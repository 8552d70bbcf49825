package scoring

import (
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qepting91/reddit-curator/internal/config"
	"github.com/qepting91/reddit-curator/internal/domain"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testScorer(cfg *config.Config) *Scorer {
	return New(cfg, slog.Default()).WithClock(func() time.Time { return testTime })
}

func agedPost(age time.Duration) domain.Post {
	return domain.Post{
		ID:           "abc12",
		Subreddit:    "pics",
		Title:        "A nice photo",
		Score:        100,
		UpvoteRatio:  0.9,
		CommentCount: 10,
		CreatedUTC:   float64(testTime.Add(-age).Unix()),
	}
}

func TestScoreReferenceScenario(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = []config.Source{{Name: "pics", Weight: 1.5}}

	s := testScorer(cfg)
	got := s.Score(agedPost(time.Hour), History{})

	// (log10(101)*100 + 0.9*50 + min(10/101*20, 30) + (2-1)*10) * 1.5
	want := (math.Log10(101)*100 + 45 + 10.0/101.0*20 + 10) * 1.5
	assert.InDelta(t, want, got, 0.001)
	assert.InDelta(t, 386.12, got, 0.01)
}

func TestScoreReferenceScenarioWithRotation(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = []config.Source{{Name: "pics", Weight: 1.5}}

	s := testScorer(cfg)
	base := s.Score(agedPost(time.Hour), History{})
	got := s.Score(agedPost(time.Hour), History{RecentSubreddits: []string{"pics"}})

	assert.InDelta(t, base*0.5, got, 0.001)
	assert.InDelta(t, 193.06, got, 0.01)
}

func TestRotationMultipliers(t *testing.T) {
	cfg := config.Default()
	s := testScorer(cfg)
	base := s.Score(agedPost(time.Hour), History{})

	tests := []struct {
		name   string
		recent []string
		want   float64
	}{
		{"most recent", []string{"pics"}, 0.5},
		{"second most recent", []string{"aww", "pics"}, 2.0 / 3.0},
		{"third most recent", []string{"aww", "cats", "pics"}, 0.75},
		{"not in window", []string{"aww", "cats", "dogs"}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Score(agedPost(time.Hour), History{RecentSubreddits: tt.recent})
			assert.InDelta(t, base*tt.want, got, 1e-9)
		})
	}
}

func TestRotationDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.RotationEnabled = false
	s := testScorer(cfg)

	h := History{
		RecentSubreddits: []string{"pics"},
		UsageCounts:      map[string]int{"pics": 4},
	}
	assert.InDelta(t, s.Score(agedPost(time.Hour), History{}), s.Score(agedPost(time.Hour), h), 1e-9)
}

func TestUsagePenaltyCompounds(t *testing.T) {
	cfg := config.Default()
	s := testScorer(cfg)
	base := s.Score(agedPost(time.Hour), History{})

	for _, c := range []int{1, 2, 5} {
		got := s.Score(agedPost(time.Hour), History{UsageCounts: map[string]int{"pics": c}})
		assert.InDelta(t, base*math.Pow(0.9, float64(c)), got, 1e-9, "count %d", c)
	}
}

func TestScoreMonotonicInPopularity(t *testing.T) {
	cfg := config.Default()
	s := testScorer(cfg)

	prev := math.Inf(-1)
	for _, pop := range []int{0, 1, 5, 10, 100, 1000, 100000} {
		p := agedPost(time.Hour)
		p.Score = pop
		p.CommentCount = 0
		got := s.Score(p, History{})
		assert.Greater(t, got, prev, "popularity %d", pop)
		prev = got
	}
}

func TestScoreZeroPopularityAndComments(t *testing.T) {
	cfg := config.Default()
	s := testScorer(cfg)

	p := agedPost(time.Hour)
	p.Score = 0
	p.CommentCount = 0
	got := s.Score(p, History{})
	assert.False(t, math.IsNaN(got))
	assert.False(t, math.IsInf(got, 0))
}

func TestEngagementCap(t *testing.T) {
	cfg := config.Default()
	s := testScorer(cfg)

	capped := agedPost(time.Hour)
	capped.CommentCount = 100000

	uncapped := agedPost(time.Hour)
	uncapped.CommentCount = 0

	// The capped engagement term is exactly EngagementCap above zero comments.
	assert.InDelta(t, cfg.EngagementCap, s.Score(capped, History{})-s.Score(uncapped, History{}), 1e-9)
}

func TestFreshness(t *testing.T) {
	cfg := config.Default()
	s := testScorer(cfg)

	atBoundary := s.Score(agedPost(2*time.Hour), History{})

	// Brand new gets the full +20 bonus.
	assert.InDelta(t, atBoundary+20, s.Score(agedPost(0), History{}), 1e-6)

	// Ten hours old loses (10-2)/8 = 1 point.
	assert.InDelta(t, atBoundary-1, s.Score(agedPost(10*time.Hour), History{}), 1e-6)

	// The age penalty saturates at MaxAgePenalty.
	tenDays := s.Score(agedPost(10*24*time.Hour), History{})
	month := s.Score(agedPost(30*24*time.Hour), History{})
	assert.InDelta(t, atBoundary-cfg.MaxAgePenalty, tenDays, 1e-6)
	assert.InDelta(t, tenDays, month, 1e-6)
}

func TestTitleHeuristics(t *testing.T) {
	cfg := config.Default()
	s := testScorer(cfg)
	base := s.Score(agedPost(time.Hour), History{})

	tests := []struct {
		name  string
		title string
		want  float64
	}{
		{"bait word", "Please UPVOTE this", 0.9},
		{"updoot", "to the top, updoot crew", 0.9},
		{"award bait", "my first awarded post", 0.9},
		{"oc marker brackets", "[OC] my shot", 1.1},
		{"oc marker parens", "sunset (oc)", 1.1},
		{"bait and oc compound", "[OC] please upvote", 0.9 * 1.1},
		{"neutral", "A nice photo", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := agedPost(time.Hour)
			p.Title = tt.title
			assert.InDelta(t, base*tt.want, s.Score(p, History{}), 1e-9)
		})
	}
}

func TestCrosspostPenalty(t *testing.T) {
	cfg := config.Default()
	s := testScorer(cfg)
	base := s.Score(agedPost(time.Hour), History{})

	p := agedPost(time.Hour)
	p.CrosspostParent = "t3_xyz99"
	assert.InDelta(t, base*0.8, s.Score(p, History{}), 1e-9)
}

func TestUnlistedSourceWeightDefaultsToOne(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = []config.Source{{Name: "aww", Weight: 2.0}}
	s := testScorer(cfg)

	cfgNone := config.Default()
	assert.InDelta(t,
		testScorer(cfgNone).Score(agedPost(time.Hour), History{}),
		s.Score(agedPost(time.Hour), History{}), 1e-9)
}
