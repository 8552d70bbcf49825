package domain

import (
	"context"
	"time"
)

// Post is the clean data structure every collector maps into.
type Post struct {
	ID              string  `json:"id"`
	Subreddit       string  `json:"subreddit"`
	Title           string  `json:"title"`
	URL             string  `json:"url"`
	Score           int     `json:"score"`
	UpvoteRatio     float64 `json:"upvote_ratio"`
	CommentCount    int     `json:"comment_count"`
	Over18          bool    `json:"over_18"`
	IsVideo         bool    `json:"is_video"`
	CreatedUTC      float64 `json:"created_utc"`
	Author          string  `json:"author"`
	Permalink       string  `json:"permalink"`
	CrosspostParent string  `json:"crosspost_parent,omitempty"`
}

// Created returns the post creation time.
func (p Post) Created() time.Time {
	return time.Unix(int64(p.CreatedUTC), 0)
}

// IsCrosspost reports whether the post re-publishes another submission.
func (p Post) IsCrosspost() bool {
	return p.CrosspostParent != ""
}

// PostedRecord is one row of the posted-history log.
type PostedRecord struct {
	ID        string    `json:"id"`
	Subreddit string    `json:"subreddit"`
	PostedAt  time.Time `json:"posted_at"`
}

// ScoredCandidate pairs a post with its computed score for one run.
type ScoredCandidate struct {
	Post  Post
	Score float64
}

// Collector defines the interface for data fetching
type Collector interface {
	FetchPosts(ctx context.Context, subreddit string, limit int) ([]Post, error)
}
