package model

import (
	"errors"
	"time"
)

// Account is a row in the auth store. It is distinct from the Profile row:
// the profile store may lag behind account creation, which is why session
// resolution treats a missing profile as a recoverable consistency gap.
type Account struct {
	ID             string    `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password_hashed" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Session is the token-bearing credential issued by the auth collaborator.
// At most one is active per client process; the raw token lives client-side
// and only its hash is stored.
type Session struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	TokenHash string     `db:"token_hash" json:"-"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
}

// IsValid returns true if the session is not expired and not revoked.
func (s *Session) IsValid() bool {
	return s.RevokedAt == nil && time.Now().Before(s.ExpiresAt)
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// AuthEventKind enumerates the auth-state transitions pushed to subscribers.
// Only these two are emitted; token refreshes re-emit SIGNED_IN, which
// subscribers are expected to suppress while a profile is already held.
type AuthEventKind string

const (
	SignedIn  AuthEventKind = "SIGNED_IN"
	SignedOut AuthEventKind = "SIGNED_OUT"
)

// AuthEvent is delivered to auth-state subscribers.
type AuthEvent struct {
	Kind    AuthEventKind
	Session *Session // nil on SIGNED_OUT
}

// SignUpMetadata carries the profile fields attached to account creation.
// The auth collaborator materializes the profile row from these as a side
// effect of sign-up.
type SignUpMetadata struct {
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Username string `json:"username"`
	DOB      string `json:"dob"`
	Country  string `json:"country"`
	Gender   string `json:"gender,omitempty"`
	Hint     string `json:"hint,omitempty"`
}

// PasswordReset records a reset request; delivery of the email belongs to
// the collaborator, not this client.
type PasswordReset struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	TokenHash string    `db:"token_hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Auth errors
var (
	ErrNoSession          = errors.New("no active session")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already registered")
)
