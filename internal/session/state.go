package session

import "github.com/andresmiguel12354-maker/EggsWeb/internal/model"

// State holds the signed-in profile. One instance is shared by reference
// with every view module; only this package writes it.
type State struct {
	me *model.Profile
}

func NewState() *State {
	return &State{}
}

// Me returns the signed-in profile, or nil when unauthenticated.
func (s *State) Me() *model.Profile {
	return s.me
}

// SignedIn reports whether a profile is held.
func (s *State) SignedIn() bool {
	return s.me != nil
}

// MeID returns the signed-in profile ID, or "" when unauthenticated.
func (s *State) MeID() string {
	if s.me == nil {
		return ""
	}
	return s.me.ID
}

func (s *State) set(p *model.Profile) {
	s.me = p
}
