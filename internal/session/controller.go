package session

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/view"
)

// Page identifies one of the two top-level pages.
type Page string

const (
	PageLogin Page = "login"
	PageApp   Page = "app"
)

// AuthAPI is the auth collaborator surface the controller drives.
type AuthAPI interface {
	CurrentSession(ctx context.Context) (*model.Session, error)
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	SignUp(ctx context.Context, email, password string, meta model.SignUpMetadata) error
	RequestPasswordReset(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, newPassword string) error
	Subscribe(fn func(model.AuthEvent))
}

// ProfileAPI resolves and mutates the signed-in profile.
type ProfileAPI interface {
	Load(ctx context.Context, userID string) (*model.Profile, error)
	UsernameCount(ctx context.Context, username string) (int, error)
	PostCount(ctx context.Context, userID string) (int, error)
	Promo(ctx context.Context) (view.PromoStats, error)
	Save(ctx context.Context, userID string, u model.ProfileUpdate) (*model.Profile, error)
	ChangeAvatar(ctx context.Context, userID string, data []byte) (string, error)
}

// Section is a view module refreshed when the authenticated page shows.
type Section interface {
	Refresh(ctx context.Context) error
}

// Controller owns the page state machine and the signed-in profile.
// All transitions between the login and app pages go through it; auth
// events and explicit sign-in/out calls converge here.
type Controller struct {
	auth     AuthAPI
	profiles ProfileAPI
	state    *State
	renderer view.PageRenderer
	notify   view.Notifier
	sections []Section

	page Page
}

func NewController(auth AuthAPI, profiles ProfileAPI, state *State, renderer view.PageRenderer, notify view.Notifier, sections ...Section) *Controller {
	return &Controller{
		auth:     auth,
		profiles: profiles,
		state:    state,
		renderer: renderer,
		notify:   notify,
		sections: sections,
		page:     PageLogin,
	}
}

// Page returns the page currently shown.
func (c *Controller) Page() Page {
	return c.page
}

// Initialize performs the single startup session query, routes to the
// right page and then subscribes to auth events. Events observed during
// startup cannot double-resolve the profile: SIGNED_IN is ignored while a
// profile is already held.
func (c *Controller) Initialize(ctx context.Context) {
	session, err := c.auth.CurrentSession(ctx)
	if err != nil {
		log.Printf("[Session] restore failed: %v", err)
	}
	if session == nil || err != nil {
		c.showLogin(ctx)
	} else if err := c.resolveProfile(ctx, session.UserID); err != nil {
		log.Printf("[Session] profile resolve failed: %v", err)
	}

	c.auth.Subscribe(func(ev model.AuthEvent) {
		c.handleAuthEvent(context.Background(), ev)
	})
}

func (c *Controller) handleAuthEvent(ctx context.Context, ev model.AuthEvent) {
	switch ev.Kind {
	case model.SignedOut:
		c.state.set(nil)
		c.showLogin(ctx)
	case model.SignedIn:
		// Token refreshes re-emit SIGNED_IN; a held profile means the
		// page is already correct.
		if c.state.SignedIn() {
			return
		}
		if ev.Session == nil {
			return
		}
		if err := c.resolveProfile(ctx, ev.Session.UserID); err != nil {
			log.Printf("[Session] profile resolve failed: %v", err)
		}
	}
}

// resolveProfile loads the profile for an authenticated user and enters
// the app page. A missing profile row is non-fatal: the user lands back
// on the login page with a notice.
func (c *Controller) resolveProfile(ctx context.Context, userID string) error {
	profile, err := c.profiles.Load(ctx, userID)
	if err != nil {
		c.state.set(nil)
		c.showLogin(ctx)
		c.notify.Notify("We could not load your profile. Please sign in again.")
		return err
	}
	c.state.set(profile)
	c.showApp(ctx)
	return nil
}

// SignIn forwards credentials. The page transition happens via the
// SIGNED_IN event, never here.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	if err := c.auth.SignIn(ctx, strings.TrimSpace(email), password); err != nil {
		c.notify.Notify("Sign in failed: " + err.Error())
		return err
	}
	return nil
}

// SignOut clears the session synchronously. The duplicate SIGNED_OUT
// event is harmless; clearing is idempotent.
func (c *Controller) SignOut(ctx context.Context) {
	if err := c.auth.SignOut(ctx); err != nil {
		log.Printf("[Session] sign out: %v", err)
	}
	c.state.set(nil)
	c.showLogin(ctx)
}

// ForgotPassword requests a reset email for the given address.
func (c *Controller) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	if err := c.auth.RequestPasswordReset(ctx, email); err != nil {
		return err
	}
	c.notify.Notify("If the address exists, a reset email is on its way.")
	return nil
}

// ChangePassword replaces the signed-in account's password after the
// same length and confirmation checks registration applies.
func (c *Controller) ChangePassword(ctx context.Context, password, confirm string) error {
	if err := ValidatePassword(password, confirm); err != nil {
		return err
	}
	return c.auth.UpdatePassword(ctx, password)
}

// ConfigForm is the settings page snapshot. Name, lastname and username
// left blank keep their prior values; the remaining fields are written
// as-is, so a blank clears the stored value.
type ConfigForm struct {
	Name     string
	Lastname string
	Username string
	DOB      string
	Bio      string
	City     string
	Country  string
}

// SaveConfig applies the settings snapshot and refreshes the held
// profile from the write's returned row.
func (c *Controller) SaveConfig(ctx context.Context, form ConfigForm) error {
	me := c.state.Me()
	if me == nil {
		return model.ErrNotSignedIn
	}

	update := model.ProfileUpdate{
		Name:     strings.TrimSpace(form.Name),
		Lastname: strings.TrimSpace(form.Lastname),
		Username: strings.ToLower(strings.TrimSpace(form.Username)),
	}
	if update.Name == "" {
		update.Name = me.Name
	}
	if update.Lastname == "" {
		update.Lastname = me.Lastname
	}
	if update.Username == "" {
		update.Username = me.Username
	} else if update.Username != me.Username {
		if err := ValidateUsername(update.Username); err != nil {
			return err
		}
	}
	if v := strings.TrimSpace(form.DOB); v != "" {
		update.DOB = &v
	}
	if v := strings.TrimSpace(form.Bio); v != "" {
		update.Bio = &v
	}
	if v := strings.TrimSpace(form.City); v != "" {
		update.City = &v
	}
	if v := strings.TrimSpace(form.Country); v != "" {
		update.Country = &v
	}

	fresh, err := c.profiles.Save(ctx, me.ID, update)
	if err != nil {
		c.notify.Notify("Saving your settings failed: " + err.Error())
		return err
	}
	c.state.set(fresh)
	c.renderHeader(ctx)
	c.notify.Notify("Settings saved.")
	return nil
}

// ChangeAvatar uploads a new picture and points the profile at it.
func (c *Controller) ChangeAvatar(ctx context.Context, data []byte) error {
	me := c.state.Me()
	if me == nil {
		return model.ErrNotSignedIn
	}
	url, err := c.profiles.ChangeAvatar(ctx, me.ID, data)
	if err != nil {
		c.notify.Notify("Avatar upload failed: " + err.Error())
		return err
	}
	me.AvatarURL = &url
	c.renderHeader(ctx)
	return nil
}

// RefreshHeader re-queries the viewer's post count and repaints the
// sidebar. Sections call this after publishing or deleting a post.
func (c *Controller) RefreshHeader(ctx context.Context) {
	c.renderHeader(ctx)
}

func (c *Controller) showLogin(ctx context.Context) {
	c.page = PageLogin
	promo, err := c.profiles.Promo(ctx)
	if err != nil {
		// Promo counters are decoration; zeros are fine.
		log.Printf("[Session] promo stats: %v", err)
		promo = view.PromoStats{}
	}
	c.renderer.ShowLogin(promo)
}

func (c *Controller) showApp(ctx context.Context) {
	c.page = PageApp
	c.renderHeader(ctx)

	var wg sync.WaitGroup
	for _, section := range c.sections {
		wg.Add(1)
		go func(s Section) {
			defer wg.Done()
			if err := s.Refresh(ctx); err != nil {
				log.Printf("[Session] section refresh: %v", err)
			}
		}(section)
	}
	wg.Wait()
}

func (c *Controller) renderHeader(ctx context.Context) {
	me := c.state.Me()
	if me == nil {
		return
	}
	count, err := c.profiles.PostCount(ctx, me.ID)
	if err != nil {
		log.Printf("[Session] post count: %v", err)
	}
	hdr := view.AppHeader{
		FullName:  view.FullName(me.Name, me.Lastname),
		Username:  me.Username,
		AvatarURL: view.AvatarURL(me.AvatarURL, me.Name, me.Lastname),
		PostCount: count,
	}
	if me.Bio != nil {
		hdr.Bio = *me.Bio
	}
	if me.City != nil {
		hdr.City = *me.City
	}
	if me.Country != nil {
		hdr.Country = *me.Country
	}
	c.renderer.ShowApp(hdr)
}
