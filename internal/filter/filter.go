package filter

import (
	"net/url"
	"strings"

	"github.com/qepting91/reddit-curator/internal/config"
	"github.com/qepting91/reddit-curator/internal/domain"
)

// Extensions telegram can render inline; everything else is skipped.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".gifv"}

// Eligible reports whether a post passes every hard constraint: not NSFW,
// not a video, meets the score and upvote-ratio floors, links to an image,
// and neither it nor its crosspost parent has been posted before.
// Pure predicate, no side effects.
func Eligible(cfg *config.Config, p domain.Post, seen map[string]struct{}) bool {
	if p.Over18 || p.IsVideo {
		return false
	}
	if p.Score < cfg.MinScore {
		return false
	}
	if p.UpvoteRatio < cfg.MinUpvoteRatio {
		return false
	}
	if _, ok := seen[p.ID]; ok {
		return false
	}
	if p.IsCrosspost() {
		if _, ok := seen[ParentID(p.CrosspostParent)]; ok {
			return false
		}
	}
	return IsImageURL(p.URL)
}

// ParentID extracts the bare id from a fullname reference like "t3_abc12".
func ParentID(fullname string) string {
	if i := strings.LastIndex(fullname, "_"); i >= 0 {
		return fullname[i+1:]
	}
	return fullname
}

// IsImageURL reports whether the URL path ends in a known image extension.
func IsImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// IsAnimationURL reports whether the URL points at a gif-style target,
// which telegram wants sent as an animation rather than a photo.
func IsAnimationURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	return strings.HasSuffix(path, ".gif") || strings.HasSuffix(path, ".gifv")
}
