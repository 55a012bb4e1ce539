package model

import (
	"errors"
	"time"
)

// Media kinds a post attachment may carry.
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaAudio = "audio"
)

// Post represents a feed entry. Author, likes and comments are denormalized
// joined fields fetched eagerly with the post; they are not columns of the
// posts table.
type Post struct {
	ID        string    `db:"id" json:"id"`
	AuthorID  string    `db:"author_id" json:"author_id"`
	Text      *string   `db:"text" json:"text"`
	MediaURL  *string   `db:"media_url" json:"media_url"`
	MediaKind *string   `db:"media_kind" json:"media_kind"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Joined fields
	Author   *ProfileSummary `json:"author,omitempty"`
	LikerIDs []string        `json:"liker_ids,omitempty"`
	Comments []Comment       `json:"comments,omitempty"`
}

// HasMedia reports whether the post carries an attachment.
func (p *Post) HasMedia() bool {
	return p.MediaURL != nil && p.MediaKind != nil
}

// Comment is an append-only entry on a post, displayed oldest first.
type Comment struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"post_id"`
	AuthorID  string    `db:"author_id" json:"-"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Author *ProfileSummary `json:"author,omitempty"` // Joined field
}

// Feed limits
const (
	FeedLimit        = 50
	UsersGridLimit   = 6
	ProfilePostLimit = 3
)

// Post errors
var (
	ErrEmptyPost     = errors.New("a post needs text or an attachment")
	ErrPostNotFound  = errors.New("post not found")
	ErrNotPostAuthor = errors.New("not the author of this post")
	ErrAlreadyLiked  = errors.New("post already liked")
	ErrNotLiked      = errors.New("post not liked")
	ErrEmptyComment  = errors.New("comment text is required")
	ErrNotSignedIn   = errors.New("sign in first")
)
