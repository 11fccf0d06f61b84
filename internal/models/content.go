package models

import "time"

// ContentKind discriminates feed items.
type ContentKind string

// Feed item kinds.
const (
	KindPost ContentKind = "post"
	KindPoll ContentKind = "poll"
)

// ContentItem unifies posts and polls for feed composition. Exactly one of
// Post or Poll is set, matching Kind.
type ContentItem struct {
	Kind ContentKind `json:"kind"`
	Post *Post       `json:"post,omitempty"`
	Poll *Poll       `json:"poll,omitempty"`
}

// NewPostItem wraps a post as a feed item.
func NewPostItem(p *Post) ContentItem {
	return ContentItem{Kind: KindPost, Post: p}
}

// NewPollItem wraps a poll as a feed item.
func NewPollItem(p *Poll) ContentItem {
	return ContentItem{Kind: KindPoll, Poll: p}
}

// IsPinned returns the pin state of the wrapped content.
func (c ContentItem) IsPinned() bool {
	if c.Kind == KindPoll {
		return c.Poll.IsPinned
	}
	return c.Post.IsPinned
}

// CreatedAt returns the creation time of the wrapped content.
func (c ContentItem) CreatedAt() time.Time {
	if c.Kind == KindPoll {
		return c.Poll.CreatedAt
	}
	return c.Post.CreatedAt
}

// Category returns the category of the wrapped content.
func (c ContentItem) Category() Category {
	if c.Kind == KindPoll {
		return c.Poll.Category
	}
	return c.Post.Category
}

// AuthorID returns the author of the wrapped content.
func (c ContentItem) AuthorID() uint {
	if c.Kind == KindPoll {
		return c.Poll.UserID
	}
	return c.Post.UserID
}
