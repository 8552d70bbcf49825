package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Source is one subreddit to draw candidates from, with its scoring weight.
type Source struct {
	Name   string
	Weight float64
}

// Config is built once at startup and passed into every component that
// needs it. Nothing reads the environment after Load returns.
type Config struct {
	Sources     []Source
	SourcesFile string

	CollectorMode string
	UserAgent     string
	RedditID      string
	RedditSecret  string
	RedditUser    string
	RedditPass    string

	FetchLimit     int
	MinScore       int
	MinUpvoteRatio float64

	EngagementCap float64
	AgeDivisor    float64
	MaxAgePenalty float64

	RotationEnabled  bool
	RotationLookback int
	TopK             int

	MaxTitleLen int

	Schedule       string
	RequestTimeout time.Duration
	MaxAttempts    int

	DatabasePath  string
	RetentionDays int
	CleanupChance float64

	TelegramToken string
	TelegramChat  string

	ArchivePath   string
	MetricsPort   string
	DashboardPort string
}

// Default returns the built-in configuration before any overrides.
func Default() *Config {
	return &Config{
		SourcesFile:      "input/subreddits.csv",
		CollectorMode:    "public",
		UserAgent:        "reddit-curator/1.0",
		FetchLimit:       25,
		MinScore:         50,
		MinUpvoteRatio:   0.7,
		EngagementCap:    30,
		AgeDivisor:       8,
		MaxAgePenalty:    25,
		RotationEnabled:  true,
		RotationLookback: 5,
		TopK:             5,
		MaxTitleLen:      200,
		Schedule:         "0 * * * *",
		RequestTimeout:   10 * time.Second,
		MaxAttempts:      2,
		DatabasePath:     "data/curator.db",
		RetentionDays:    30,
		CleanupChance:    0.1,
		MetricsPort:      "9100",
		DashboardPort:    "8080",
	}
}

// Load builds the configuration from defaults, .env, and process env.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := Default()

	envStr(&cfg.SourcesFile, "SOURCES_FILE")
	envStr(&cfg.CollectorMode, "COLLECTOR_MODE")
	envStr(&cfg.UserAgent, "REDDIT_USER_AGENT")
	envStr(&cfg.RedditID, "REDDIT_CLIENT_ID")
	envStr(&cfg.RedditSecret, "REDDIT_CLIENT_SECRET")
	envStr(&cfg.RedditUser, "REDDIT_USERNAME")
	envStr(&cfg.RedditPass, "REDDIT_PASSWORD")
	envInt(&cfg.FetchLimit, "FETCH_LIMIT")
	envInt(&cfg.MinScore, "MIN_SCORE")
	envFloat(&cfg.MinUpvoteRatio, "MIN_UPVOTE_RATIO")
	envFloat(&cfg.EngagementCap, "ENGAGEMENT_CAP")
	envFloat(&cfg.AgeDivisor, "AGE_PENALTY_DIVISOR")
	envFloat(&cfg.MaxAgePenalty, "MAX_AGE_PENALTY")
	envBool(&cfg.RotationEnabled, "ROTATION_ENABLED")
	envInt(&cfg.RotationLookback, "ROTATION_LOOKBACK")
	envInt(&cfg.TopK, "TOP_K")
	envInt(&cfg.MaxTitleLen, "MAX_TITLE_LEN")
	envStr(&cfg.Schedule, "SCHEDULE")
	envDuration(&cfg.RequestTimeout, "REQUEST_TIMEOUT")
	envInt(&cfg.MaxAttempts, "MAX_ATTEMPTS")
	envStr(&cfg.DatabasePath, "DATABASE_PATH")
	envInt(&cfg.RetentionDays, "RETENTION_DAYS")
	envFloat(&cfg.CleanupChance, "CLEANUP_CHANCE")
	envStr(&cfg.TelegramToken, "TELEGRAM_BOT_TOKEN")
	envStr(&cfg.TelegramChat, "TELEGRAM_CHAT_ID")
	envStr(&cfg.ArchivePath, "ARCHIVE_PATH")
	envStr(&cfg.MetricsPort, "METRICS_PORT")
	envStr(&cfg.DashboardPort, "DASHBOARD_PORT")

	if s := os.Getenv("SOURCES"); s != "" {
		sources, err := ParseSources(s)
		if err != nil {
			return nil, fmt.Errorf("SOURCES: %w", err)
		}
		cfg.Sources = sources
	}

	return cfg, nil
}

// Validate checks everything a run needs before any run executes.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("no sources configured (set SOURCES or provide %s)", c.SourcesFile)
	}
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if c.TelegramChat == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required")
	}
	if c.TopK < 1 {
		return fmt.Errorf("TOP_K must be at least 1, got %d", c.TopK)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts)
	}
	if c.CleanupChance < 0 || c.CleanupChance > 1 {
		return fmt.Errorf("CLEANUP_CHANCE must be within [0,1], got %g", c.CleanupChance)
	}
	return nil
}

// SourceWeight returns the configured weight for a subreddit, 1.0 if unlisted.
func (c *Config) SourceWeight(name string) float64 {
	for _, s := range c.Sources {
		if strings.EqualFold(s.Name, name) {
			return s.Weight
		}
	}
	return 1.0
}

// SourceNames returns the configured subreddit names in order.
func (c *Config) SourceNames() []string {
	names := make([]string, 0, len(c.Sources))
	for _, s := range c.Sources {
		names = append(names, s.Name)
	}
	return names
}

// ParseSources parses a "name:weight,name,name:weight" list. Weight is
// optional and defaults to 1.0.
func ParseSources(s string) ([]Source, error) {
	var sources []Source
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, weightStr, hasWeight := strings.Cut(part, ":")
		src := Source{Name: strings.TrimSpace(name), Weight: 1.0}
		if hasWeight {
			w, err := strconv.ParseFloat(strings.TrimSpace(weightStr), 64)
			if err != nil {
				return nil, fmt.Errorf("bad weight for %q: %w", src.Name, err)
			}
			src.Weight = w
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func envStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
