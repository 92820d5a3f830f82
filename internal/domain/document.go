package domain

import (
	"net/url"
	"strings"
	"time"
)

// DocType classifies a document by the shape of its origin URL.
// It is derived at read time, never stored upstream.
type DocType string

// Known document types.
const (
	TypeNote       DocType = "note"
	TypeLink       DocType = "link"
	TypeSocialPost DocType = "social-post"
	TypeVideo      DocType = "video"
)

// Document is one searchable unit owned by the external bookmark store.
// The search core treats it as read-only input and never mutates it.
type Document struct {
	ID           string
	Title        string
	Notes        string
	Description  string
	Tags         []string
	OCRText      string
	URL          string
	CreatedAt    time.Time
	CollectionID string
	Source       string
	Type         DocType
}

// videoHosts and socialHosts drive URL-shape classification.
var (
	videoHosts  = []string{"youtube.com", "youtu.be", "vimeo.com"}
	socialHosts = []string{"twitter.com", "x.com", "mastodon.social", "bsky.app"}
)

// ClassifyType derives the document type from its origin URL.
// Documents without a URL are plain notes.
func ClassifyType(rawURL string) DocType {
	if strings.TrimSpace(rawURL) == "" {
		return TypeNote
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return TypeLink
	}

	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	for _, h := range videoHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return TypeVideo
		}
	}
	for _, h := range socialHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return TypeSocialPost
		}
	}
	return TypeLink
}

// HasTag reports whether the document carries the tag, case-insensitively.
func (d Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
