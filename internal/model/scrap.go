package model

import "time"

// Scrap is a guestbook-style public wall entry. Scraps are broadcast, not
// directed: there is no target-user field.
type Scrap struct {
	ID        string    `db:"id" json:"id"`
	AuthorID  string    `db:"author_id" json:"author_id"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Author *ProfileSummary `json:"author,omitempty"` // Joined field
}

// ScrapWallLimit caps the time-descending scrap fetch.
const ScrapWallLimit = 20
