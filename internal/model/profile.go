package model

import (
	"errors"
	"regexp"
	"time"
)

// Profile represents a user's persisted profile record.
// The signed-in principal's own profile is the single mutable root of UI
// state; it is owned by the session controller and handed to views by
// reference.
type Profile struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Lastname  string    `db:"lastname" json:"lastname"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	AvatarURL *string   `db:"avatar_url" json:"avatar_url"`
	Bio       *string   `db:"bio" json:"bio"`
	City      *string   `db:"city" json:"city"`
	Country   *string   `db:"country" json:"country"`
	DOB       *string   `db:"dob" json:"dob"` // textual "YYYY-MM-DD"
	Gender    *string   `db:"gender" json:"gender"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProfileSummary carries the fields joined into posts, comments and scraps
// for author display.
type ProfileSummary struct {
	ID        string  `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	Lastname  string  `db:"lastname" json:"lastname"`
	Username  string  `db:"username" json:"username"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url"`
}

// ProfileUpdate is a replace-on-write snapshot applied by Save. Empty
// identity fields fall back to the prior value at the call site; the
// presentation fields overwrite whatever was stored, NULLs included.
type ProfileUpdate struct {
	Name     string
	Lastname string
	Username string
	DOB      *string
	City     *string
	Bio      *string
	Country  *string
}

// Username rules, matching the registration form's character set.
const (
	MinUsernameLength = 3
	MinPasswordLength = 8
)

var UsernamePattern = regexp.MustCompile(`^[a-z0-9._]+$`)

// reservedUsernames can never be registered regardless of availability.
var reservedUsernames = map[string]struct{}{
	"admin":     {},
	"eggsweb":   {},
	"root":      {},
	"soporte":   {},
	"moderador": {},
}

// IsReservedUsername reports whether the username is on the reserved list.
func IsReservedUsername(username string) bool {
	_, ok := reservedUsernames[username]
	return ok
}

// Profile errors
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrUsernameTaken   = errors.New("username already taken")
)
