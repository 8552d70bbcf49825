package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/qepting91/reddit-curator/internal/domain"
	"golang.org/x/time/rate"
)

// PublicClient fetches through reddit's public JSON listings. Unlike the
// authenticated API it carries the full field set the filter and scorer
// care about (over_18, is_video, crosspost parent, upvote ratio).
type PublicClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	baseURL    string
}

type redditJSONResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				ID              string  `json:"id"`
				Title           string  `json:"title"`
				Subreddit       string  `json:"subreddit"`
				Author          string  `json:"author"`
				URL             string  `json:"url"`
				Permalink       string  `json:"permalink"`
				Score           int     `json:"score"`
				UpvoteRatio     float64 `json:"upvote_ratio"`
				NumComments     int     `json:"num_comments"`
				Over18          bool    `json:"over_18"`
				IsVideo         bool    `json:"is_video"`
				CreatedUTC      float64 `json:"created_utc"`
				CrosspostParent string  `json:"crosspost_parent"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func NewPublicClient(userAgent string) (*PublicClient, error) {
	return &PublicClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		// Public JSON Limit: 1 req / 2 seconds (Stricter)
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1),
		userAgent: userAgent,
		baseURL:   "https://www.reddit.com",
	}, nil
}

func (pc *PublicClient) FetchPosts(ctx context.Context, sub string, limit int) ([]domain.Post, error) {
	if err := pc.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/r/%s/hot.json?limit=%d&raw_json=1", pc.baseURL, sub, limit)
	req, _ := http.NewRequestWithContext(ctx, "GET", url, nil)
	req.Header.Set("User-Agent", pc.userAgent)

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("reddit public access status: %d", resp.StatusCode)
	}

	var rResp redditJSONResponse
	if err := json.NewDecoder(resp.Body).Decode(&rResp); err != nil {
		return nil, err
	}

	var posts []domain.Post
	for _, child := range rResp.Data.Children {
		d := child.Data
		posts = append(posts, domain.Post{
			ID:              d.ID,
			Subreddit:       d.Subreddit,
			Title:           d.Title,
			URL:             d.URL,
			Score:           d.Score,
			UpvoteRatio:     d.UpvoteRatio,
			CommentCount:    d.NumComments,
			Over18:          d.Over18,
			IsVideo:         d.IsVideo,
			CreatedUTC:      d.CreatedUTC,
			Author:          d.Author,
			Permalink:       d.Permalink,
			CrosspostParent: d.CrosspostParent,
		})
	}
	return posts, nil
}
