package delivery

import (
	"fmt"
	"html"
	"strings"

	"github.com/qepting91/reddit-curator/internal/domain"
	"github.com/qepting91/reddit-curator/internal/filter"
)

// Format builds the outbound message for a post: HTML-escaped title
// truncated to maxTitleLen runes, with a comments link and author credit.
func Format(p domain.Post, maxTitleLen int) Message {
	title := truncate(strings.TrimSpace(p.Title), maxTitleLen)

	caption := fmt.Sprintf("%s\n\n<a href=%q>r/%s</a> · u/%s",
		html.EscapeString(title),
		"https://reddit.com"+p.Permalink,
		p.Subreddit,
		p.Author,
	)

	return Message{
		MediaURL:  p.URL,
		Caption:   caption,
		Animation: filter.IsAnimationURL(p.URL),
	}
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
