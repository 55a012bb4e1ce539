package session

import (
	"context"
	"errors"
	"testing"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/view"
)

type mockAuth struct {
	currentSessionFn func(ctx context.Context) (*model.Session, error)
	signInFn         func(ctx context.Context, email, password string) error
	signUpFn         func(ctx context.Context, email, password string, meta model.SignUpMetadata) error

	handler     func(model.AuthEvent)
	signUpCalls []model.SignUpMetadata
}

func (m *mockAuth) CurrentSession(ctx context.Context) (*model.Session, error) {
	if m.currentSessionFn != nil {
		return m.currentSessionFn(ctx)
	}
	return nil, nil
}

func (m *mockAuth) SignIn(ctx context.Context, email, password string) error {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password)
	}
	m.emit(model.AuthEvent{Kind: model.SignedIn, Session: &model.Session{UserID: "user-1"}})
	return nil
}

func (m *mockAuth) SignOut(ctx context.Context) error {
	m.emit(model.AuthEvent{Kind: model.SignedOut})
	return nil
}

func (m *mockAuth) SignUp(ctx context.Context, email, password string, meta model.SignUpMetadata) error {
	m.signUpCalls = append(m.signUpCalls, meta)
	if m.signUpFn != nil {
		return m.signUpFn(ctx, email, password, meta)
	}
	return nil
}

func (m *mockAuth) RequestPasswordReset(ctx context.Context, email string) error { return nil }
func (m *mockAuth) UpdatePassword(ctx context.Context, newPassword string) error { return nil }

func (m *mockAuth) Subscribe(fn func(model.AuthEvent)) { m.handler = fn }

func (m *mockAuth) emit(ev model.AuthEvent) {
	if m.handler != nil {
		m.handler(ev)
	}
}

type mockProfiles struct {
	loadFn          func(ctx context.Context, userID string) (*model.Profile, error)
	usernameCountFn func(ctx context.Context, username string) (int, error)
	saveFn          func(ctx context.Context, userID string, u model.ProfileUpdate) (*model.Profile, error)

	loadCalls          int
	usernameCountCalls int
	postCountCalls     int
}

func (m *mockProfiles) Load(ctx context.Context, userID string) (*model.Profile, error) {
	m.loadCalls++
	if m.loadFn != nil {
		return m.loadFn(ctx, userID)
	}
	return &model.Profile{ID: userID, Name: "Ana", Lastname: "Rojas", Username: "ana.rojas"}, nil
}

func (m *mockProfiles) UsernameCount(ctx context.Context, username string) (int, error) {
	m.usernameCountCalls++
	if m.usernameCountFn != nil {
		return m.usernameCountFn(ctx, username)
	}
	return 0, nil
}

func (m *mockProfiles) PostCount(ctx context.Context, userID string) (int, error) {
	m.postCountCalls++
	return 4 + m.postCountCalls - 1, nil
}

func (m *mockProfiles) Promo(ctx context.Context) (view.PromoStats, error) {
	return view.PromoStats{Users: 12, Posts: 80}, nil
}

func (m *mockProfiles) Save(ctx context.Context, userID string, u model.ProfileUpdate) (*model.Profile, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, userID, u)
	}
	return &model.Profile{ID: userID, Name: u.Name, Lastname: u.Lastname, Username: u.Username}, nil
}

func (m *mockProfiles) ChangeAvatar(ctx context.Context, userID string, data []byte) (string, error) {
	return "https://cdn.example/avatars/" + userID + "/avatar.jpg", nil
}

type mockPageRenderer struct {
	pages []string
	promo view.PromoStats
	hdr   view.AppHeader
}

func (r *mockPageRenderer) ShowLogin(promo view.PromoStats) {
	r.pages = append(r.pages, "login")
	r.promo = promo
}

func (r *mockPageRenderer) ShowApp(hdr view.AppHeader) {
	r.pages = append(r.pages, "app")
	r.hdr = hdr
}

type mockNotifier struct {
	notices []string
}

func (n *mockNotifier) Notify(msg string) { n.notices = append(n.notices, msg) }

type countingSection struct {
	refreshes int
}

func (s *countingSection) Refresh(ctx context.Context) error {
	s.refreshes++
	return nil
}

func newFixture(auth *mockAuth, profiles *mockProfiles) (*Controller, *State, *mockPageRenderer, *mockNotifier, *countingSection) {
	state := NewState()
	renderer := &mockPageRenderer{}
	notify := &mockNotifier{}
	section := &countingSection{}
	c := NewController(auth, profiles, state, renderer, notify, section)
	return c, state, renderer, notify, section
}

func TestController_Initialize_NoSession(t *testing.T) {
	auth := &mockAuth{}
	profiles := &mockProfiles{}
	c, state, renderer, _, section := newFixture(auth, profiles)

	c.Initialize(context.Background())

	if c.Page() != PageLogin {
		t.Fatalf("page = %v, want login", c.Page())
	}
	if state.SignedIn() {
		t.Error("no session must leave the state empty")
	}
	if renderer.promo.Users != 12 || renderer.promo.Posts != 80 {
		t.Errorf("promo = %+v, want community counters", renderer.promo)
	}
	if profiles.loadCalls != 0 {
		t.Errorf("profile loads = %d, want 0", profiles.loadCalls)
	}
	if section.refreshes != 0 {
		t.Errorf("section refreshes = %d, want 0 on the login page", section.refreshes)
	}
}

func TestController_Initialize_RestoredSession(t *testing.T) {
	auth := &mockAuth{
		currentSessionFn: func(ctx context.Context) (*model.Session, error) {
			return &model.Session{ID: "sess-1", UserID: "user-1"}, nil
		},
	}
	profiles := &mockProfiles{}
	c, state, renderer, _, section := newFixture(auth, profiles)

	c.Initialize(context.Background())

	if c.Page() != PageApp {
		t.Fatalf("page = %v, want app", c.Page())
	}
	if state.MeID() != "user-1" {
		t.Errorf("me = %q, want user-1", state.MeID())
	}
	if profiles.loadCalls != 1 {
		t.Errorf("profile loads = %d, want exactly 1", profiles.loadCalls)
	}
	if section.refreshes != 1 {
		t.Errorf("section refreshes = %d, want 1", section.refreshes)
	}
	if renderer.hdr.PostCount != 4 {
		t.Errorf("header post count = %d, want 4", renderer.hdr.PostCount)
	}
}

func TestController_DuplicateSignedInEventIgnored(t *testing.T) {
	auth := &mockAuth{}
	profiles := &mockProfiles{}
	c, _, _, _, _ := newFixture(auth, profiles)
	c.Initialize(context.Background())

	if err := c.SignIn(context.Background(), "ana@example.com", "Passw0rd1"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	// A second SIGNED_IN while the profile is held must not re-resolve.
	auth.emit(model.AuthEvent{Kind: model.SignedIn, Session: &model.Session{UserID: "user-1"}})

	if profiles.loadCalls != 1 {
		t.Errorf("profile loads = %d, want exactly 1", profiles.loadCalls)
	}
}

func TestController_SignedOutClearsEverything(t *testing.T) {
	auth := &mockAuth{}
	profiles := &mockProfiles{}
	c, state, renderer, _, _ := newFixture(auth, profiles)
	c.Initialize(context.Background())
	if err := c.SignIn(context.Background(), "ana@example.com", "Passw0rd1"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	c.SignOut(context.Background())

	if c.Page() != PageLogin {
		t.Fatalf("page = %v, want login", c.Page())
	}
	if state.SignedIn() {
		t.Error("sign out must drop the held profile")
	}
	if renderer.pages[len(renderer.pages)-1] != "login" {
		t.Errorf("last page = %q, want login", renderer.pages[len(renderer.pages)-1])
	}
}

func TestController_MissingProfileFallsBackToLogin(t *testing.T) {
	auth := &mockAuth{
		currentSessionFn: func(ctx context.Context) (*model.Session, error) {
			return &model.Session{ID: "sess-1", UserID: "user-ghost"}, nil
		},
	}
	profiles := &mockProfiles{
		loadFn: func(ctx context.Context, userID string) (*model.Profile, error) {
			return nil, model.ErrProfileNotFound
		},
	}
	c, state, _, notify, _ := newFixture(auth, profiles)

	c.Initialize(context.Background())

	if c.Page() != PageLogin {
		t.Fatalf("page = %v, want login fallback", c.Page())
	}
	if state.SignedIn() {
		t.Error("missing profile must not leave a half-signed-in state")
	}
	if len(notify.notices) == 0 {
		t.Error("expected a notice about the missing profile")
	}
}

func TestController_Register_Validation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(f *RegistrationForm)
		wantErr error
	}{
		{"missing name", func(f *RegistrationForm) { f.Name = " " }, ErrMissingIdentity},
		{"missing dob", func(f *RegistrationForm) { f.DOB = "" }, ErrMissingDOB},
		{"missing country", func(f *RegistrationForm) { f.Country = "" }, ErrMissingCountry},
		{"bad email", func(f *RegistrationForm) { f.Email = "not-an-email" }, ErrInvalidEmail},
		{"short username", func(f *RegistrationForm) { f.Username = "ab" }, ErrUsernameTooShort},
		{"bad characters", func(f *RegistrationForm) { f.Username = "ana rojas!" }, ErrUsernameBadChars},
		{"reserved username", func(f *RegistrationForm) { f.Username = "admin" }, ErrUsernameReserved},
		{"short password", func(f *RegistrationForm) { f.Password, f.Password2 = "short", "short" }, ErrPasswordTooShort},
		{"password mismatch", func(f *RegistrationForm) { f.Password2 = "Passw0rd2" }, ErrPasswordMismatch},
		{"terms not accepted", func(f *RegistrationForm) { f.AcceptTerms = false }, ErrTermsNotAccepted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &mockAuth{}
			profiles := &mockProfiles{}
			c, _, _, _, _ := newFixture(auth, profiles)

			form := validForm()
			tc.mutate(&form)

			err := c.Register(context.Background(), form)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if len(auth.signUpCalls) != 0 {
				t.Error("invalid form must not reach the collaborator")
			}
		})
	}
}

func TestController_Register_TakenUsername(t *testing.T) {
	auth := &mockAuth{}
	profiles := &mockProfiles{
		usernameCountFn: func(ctx context.Context, username string) (int, error) {
			return 1, nil
		},
	}
	c, _, _, _, _ := newFixture(auth, profiles)

	err := c.Register(context.Background(), validForm())
	if !errors.Is(err, model.ErrUsernameTaken) {
		t.Fatalf("err = %v, want ErrUsernameTaken", err)
	}
	if len(auth.signUpCalls) != 0 {
		t.Error("taken username must not reach the collaborator")
	}
}

func TestController_Register_Success(t *testing.T) {
	auth := &mockAuth{}
	profiles := &mockProfiles{}
	c, _, _, _, _ := newFixture(auth, profiles)

	form := validForm()
	form.Username = "Valid_USER.1" // folded to lowercase before validation

	if err := c.Register(context.Background(), form); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if len(auth.signUpCalls) != 1 {
		t.Fatalf("sign up calls = %d, want 1", len(auth.signUpCalls))
	}
	meta := auth.signUpCalls[0]
	if meta.Username != "valid_user.1" {
		t.Errorf("username = %q, want valid_user.1", meta.Username)
	}
	if meta.Name != "Ana" || meta.DOB != "1999-08-15" {
		t.Errorf("metadata = %+v", meta)
	}
	if profiles.usernameCountCalls != 1 {
		t.Errorf("availability checks = %d, want 1", profiles.usernameCountCalls)
	}
}

func TestController_RefreshHeader_RequeriesPostCount(t *testing.T) {
	auth := &mockAuth{
		currentSessionFn: func(ctx context.Context) (*model.Session, error) {
			return &model.Session{ID: "sess-1", UserID: "user-1"}, nil
		},
	}
	profiles := &mockProfiles{}
	c, _, renderer, _, _ := newFixture(auth, profiles)
	c.Initialize(context.Background())

	if profiles.postCountCalls != 1 {
		t.Fatalf("post count queries = %d, want 1 after startup", profiles.postCountCalls)
	}

	c.RefreshHeader(context.Background())

	if profiles.postCountCalls != 2 {
		t.Errorf("post count queries = %d, want a fresh query per repaint", profiles.postCountCalls)
	}
	if renderer.hdr.PostCount != 5 {
		t.Errorf("header post count = %d, want the re-queried value 5", renderer.hdr.PostCount)
	}
}

func TestController_SaveConfig_KeepsIdentityWhenBlank(t *testing.T) {
	auth := &mockAuth{
		currentSessionFn: func(ctx context.Context) (*model.Session, error) {
			return &model.Session{ID: "sess-1", UserID: "user-1"}, nil
		},
	}
	dob := "1999-08-15"
	var saved model.ProfileUpdate
	profiles := &mockProfiles{
		loadFn: func(ctx context.Context, userID string) (*model.Profile, error) {
			return &model.Profile{ID: userID, Name: "Ana", Lastname: "Rojas", Username: "ana.rojas", DOB: &dob}, nil
		},
		saveFn: func(ctx context.Context, userID string, u model.ProfileUpdate) (*model.Profile, error) {
			saved = u
			return &model.Profile{ID: userID, Name: u.Name, Lastname: u.Lastname, Username: u.Username}, nil
		},
	}
	c, _, _, _, _ := newFixture(auth, profiles)
	c.Initialize(context.Background())

	err := c.SaveConfig(context.Background(), ConfigForm{Bio: "hello", City: "Valdivia"})
	if err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	if saved.Name != "Ana" || saved.Lastname != "Rojas" {
		t.Errorf("identity = %q %q, want prior values kept", saved.Name, saved.Lastname)
	}
	if saved.Username != "ana.rojas" {
		t.Errorf("username = %q, want the prior value kept on the blank field", saved.Username)
	}
	if saved.DOB != nil {
		t.Errorf("dob = %v, want cleared on the blank field", saved.DOB)
	}
	if saved.Bio == nil || *saved.Bio != "hello" {
		t.Errorf("bio = %v, want hello", saved.Bio)
	}
	if saved.Country != nil {
		t.Errorf("country = %v, want cleared on the blank field", saved.Country)
	}
}

func TestController_SaveConfig_EditsUsernameAndDOB(t *testing.T) {
	auth := &mockAuth{
		currentSessionFn: func(ctx context.Context) (*model.Session, error) {
			return &model.Session{ID: "sess-1", UserID: "user-1"}, nil
		},
	}
	var saved model.ProfileUpdate
	saveCalls := 0
	profiles := &mockProfiles{
		saveFn: func(ctx context.Context, userID string, u model.ProfileUpdate) (*model.Profile, error) {
			saveCalls++
			saved = u
			return &model.Profile{ID: userID, Name: u.Name, Lastname: u.Lastname, Username: u.Username}, nil
		},
	}
	c, _, _, _, _ := newFixture(auth, profiles)
	c.Initialize(context.Background())

	form := ConfigForm{Username: " Ana.Rojas_2 ", DOB: "2000-01-01"}
	if err := c.SaveConfig(context.Background(), form); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	if saved.Username != "ana.rojas_2" {
		t.Errorf("username = %q, want the folded new value", saved.Username)
	}
	if saved.DOB == nil || *saved.DOB != "2000-01-01" {
		t.Errorf("dob = %v, want 2000-01-01", saved.DOB)
	}

	err := c.SaveConfig(context.Background(), ConfigForm{Username: "admin"})
	if !errors.Is(err, ErrUsernameReserved) {
		t.Fatalf("err = %v, want ErrUsernameReserved", err)
	}
	if saveCalls != 1 {
		t.Errorf("save calls = %d, want the invalid username to stop before the write", saveCalls)
	}
}

func validForm() RegistrationForm {
	return RegistrationForm{
		Name:        "Ana",
		Lastname:    "Rojas",
		DOB:         "1999-08-15",
		Country:     "Chile",
		Gender:      "f",
		Email:       "ana@example.com",
		Username:    "ana.rojas",
		Password:    "Passw0rd1",
		Password2:   "Passw0rd1",
		AcceptTerms: true,
	}
}
