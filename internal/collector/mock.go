package collector

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/qepting91/reddit-curator/internal/domain"
)

// MockClient implements domain.Collector but returns fake data
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (mc *MockClient) FetchPosts(ctx context.Context, sub string, limit int) ([]domain.Post, error) {
	// Simulate network latency (nice for testing concurrency)
	time.Sleep(500 * time.Millisecond)

	var posts []domain.Post
	for i := 0; i < limit; i++ {
		// Generate random "fake" posts
		posts = append(posts, domain.Post{
			ID:           fmt.Sprintf("mock_%s_%d", sub, i),
			Subreddit:    sub,
			Title:        fmt.Sprintf("[OC] Simulated %s shot #%d", sub, i),
			URL:          fmt.Sprintf("http://localhost/mock/%s/%d.jpg", sub, i),
			Score:        rand.Intn(500),
			UpvoteRatio:  0.7 + rand.Float64()*0.3,
			CommentCount: rand.Intn(50),
			CreatedUTC:   float64(time.Now().Unix()),
			Author:       "simulated_user",
			Permalink:    fmt.Sprintf("/r/%s/comments/mock_%d", sub, i),
		})
	}
	return posts, nil
}
