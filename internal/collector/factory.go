package collector

import (
	"fmt"

	"github.com/qepting91/reddit-curator/internal/config"
	"github.com/qepting91/reddit-curator/internal/domain"
)

// New selects the correct implementation based on cfg.CollectorMode.
func New(cfg *config.Config) (domain.Collector, error) {
	switch cfg.CollectorMode {
	case "api":
		return NewAPIClient(
			cfg.RedditID,
			cfg.RedditSecret,
			cfg.RedditUser,
			cfg.RedditPass,
			cfg.UserAgent,
		)
	case "public":
		if cfg.UserAgent == "" {
			return nil, fmt.Errorf("REDDIT_USER_AGENT is required for public mode")
		}
		return NewPublicClient(cfg.UserAgent)
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown COLLECTOR_MODE: %s (use 'api', 'public', or 'mock')", cfg.CollectorMode)
	}
}
