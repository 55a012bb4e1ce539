package model

import (
	"errors"
	"time"
)

// Message is a fire-and-forget directed message. No thread model and no
// read/delivery state is kept client-side.
type Message struct {
	ID        string    `db:"id" json:"id"`
	FromID    string    `db:"from_id" json:"from_id"`
	ToID      string    `db:"to_id" json:"to_id"`
	Subject   string    `db:"subject" json:"subject"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DefaultSubject is used when the sender leaves the subject blank.
const DefaultSubject = "(no subject)"

// Message errors
var (
	ErrRecipientNotFound = errors.New("recipient username does not exist")
	ErrEmptyMessage      = errors.New("recipient and body are required")
)
