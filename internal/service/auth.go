package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/config"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/repository"
)

// TokenStore keeps the raw session token on the client between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// AuthService is the auth collaborator surface: sessions, credentials and
// the SIGNED_IN/SIGNED_OUT event fan-out the session controller subscribes
// to. Page transitions never happen here; subscribers own them.
type AuthService struct {
	accounts repository.AccountRepository
	sessions repository.SessionRepository
	profiles repository.ProfileRepository
	resets   repository.PasswordResetRepository
	tokens   TokenStore
	config   *config.Config

	subscribers []func(model.AuthEvent)
	current     *model.Session
}

func NewAuthService(
	accounts repository.AccountRepository,
	sessions repository.SessionRepository,
	profiles repository.ProfileRepository,
	resets repository.PasswordResetRepository,
	tokens TokenStore,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		sessions: sessions,
		profiles: profiles,
		resets:   resets,
		tokens:   tokens,
		config:   cfg,
	}
}

// Subscribe registers a handler for auth-state transitions. Events are
// delivered synchronously on the calling goroutine; there is a single
// cooperative execution context.
func (s *AuthService) Subscribe(fn func(model.AuthEvent)) {
	s.subscribers = append(s.subscribers, fn)
}

func (s *AuthService) emit(ev model.AuthEvent) {
	for _, fn := range s.subscribers {
		fn(ev)
	}
}

// CurrentSession restores an existing session, if any. Called exactly once
// at startup. A missing, expired or revoked token yields (nil, nil): the
// caller falls back to the unauthenticated page, never a hard failure.
func (s *AuthService) CurrentSession(ctx context.Context) (*model.Session, error) {
	raw, err := s.tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("load stored token: %w", err)
	}
	if raw == "" {
		return nil, nil
	}

	if _, err := s.parseAccessToken(raw); err != nil {
		// Expired or tampered token: discard and start unauthenticated.
		log.Printf("[Auth] stored token rejected: %v", err)
		_ = s.tokens.Clear()
		return nil, nil
	}

	session, err := s.sessions.FindByTokenHash(ctx, hashToken(raw))
	if err != nil {
		if errors.Is(err, model.ErrNoSession) {
			_ = s.tokens.Clear()
			return nil, nil
		}
		return nil, err
	}
	if session.IsExpired() {
		log.Printf("[Auth] stored session expired: user=%s", session.UserID)
		_ = s.tokens.Clear()
		return nil, nil
	}
	if !session.IsValid() {
		_ = s.tokens.Clear()
		return nil, nil
	}

	// The account may have been deleted since the session was issued.
	if _, err := s.accounts.GetByID(ctx, session.UserID); err != nil {
		_ = s.tokens.Clear()
		return nil, nil
	}

	s.current = session
	return session, nil
}

// SignIn checks credentials, persists a session and emits SIGNED_IN.
// The caller must not switch pages itself; the event subscription does.
func (s *AuthService) SignIn(ctx context.Context, email, password string) error {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		// Don't reveal whether the email exists.
		return model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHashed), []byte(password)); err != nil {
		return model.ErrInvalidCredentials
	}

	raw, err := s.mintAccessToken(account.ID)
	if err != nil {
		return fmt.Errorf("mint access token: %w", err)
	}

	session := &model.Session{
		UserID:    account.ID,
		TokenHash: hashToken(raw),
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAgeSec) * time.Second),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if err := s.tokens.Save(raw); err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}

	s.current = session
	log.Printf("[Auth] SignIn OK: user=%s", account.ID)
	s.emit(model.AuthEvent{Kind: model.SignedIn, Session: session})
	return nil
}

// SignOut revokes the session, clears the stored token and emits
// SIGNED_OUT. Safe to call without an active session.
func (s *AuthService) SignOut(ctx context.Context) error {
	if s.current != nil {
		if err := s.sessions.Revoke(ctx, s.current.ID); err != nil {
			log.Printf("[Auth] session revoke failed: %v", err)
		}
		s.current = nil
	}
	if err := s.tokens.Clear(); err != nil {
		log.Printf("[Auth] token clear failed: %v", err)
	}
	s.emit(model.AuthEvent{Kind: model.SignedOut})
	return nil
}

// SignUp creates the account and materializes the profile row from the
// attached metadata. The original trusted an external trigger for the
// profile row; here the insert happens in-path, followed by a reconciling
// read-after-write check with one retry.
func (s *AuthService) SignUp(ctx context.Context, email, password string, meta model.SignUpMetadata) error {
	exists, err := s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return model.ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHashed: string(hashed),
	}
	if err := s.accounts.Insert(ctx, account); err != nil {
		return err
	}

	if err := s.materializeProfile(ctx, account, meta); err != nil {
		return fmt.Errorf("account created but profile materialization failed: %w", err)
	}

	log.Printf("[Auth] SignUp OK: user=%s username=%s", account.ID, meta.Username)
	return nil
}

// materializeProfile inserts the profile row and verifies it landed.
func (s *AuthService) materializeProfile(ctx context.Context, account *model.Account, meta model.SignUpMetadata) error {
	insert := func() error {
		p := &model.Profile{
			ID:       account.ID,
			Name:     meta.Name,
			Lastname: meta.Lastname,
			Username: meta.Username,
			Email:    account.Email,
		}
		if meta.DOB != "" {
			p.DOB = &meta.DOB
		}
		if meta.Country != "" {
			p.Country = &meta.Country
		}
		if meta.Gender != "" {
			p.Gender = &meta.Gender
		}
		return s.profiles.Insert(ctx, p)
	}

	err := insert()
	if _, readErr := s.profiles.GetByID(ctx, account.ID); readErr == nil {
		return nil
	}
	// Row is missing whatever the insert reported; retry once.
	if retryErr := insert(); retryErr != nil {
		if err != nil {
			return err
		}
		return retryErr
	}
	return nil
}

// RequestPasswordReset records a reset request. Sending the email belongs
// to the collaborator; the client only composes the request.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	reset := &model.PasswordReset{
		Email:     email,
		TokenHash: hashToken(uuid.NewString()),
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return fmt.Errorf("request password reset: %w", err)
	}
	log.Printf("[Auth] password reset requested: email=%s", email)
	return nil
}

// UpdatePassword replaces the signed-in account's password. Every other
// session of the account is revoked; the current one is re-issued with
// the same token so this device stays signed in.
func (s *AuthService) UpdatePassword(ctx context.Context, newPassword string) error {
	if s.current == nil {
		return model.ErrNoSession
	}
	if s.current.IsExpired() {
		return model.ErrSessionExpired
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, s.current.UserID, string(hashed)); err != nil {
		return err
	}

	if err := s.sessions.RevokeAllForUser(ctx, s.current.UserID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	reissued := &model.Session{
		UserID:    s.current.UserID,
		TokenHash: s.current.TokenHash,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAgeSec) * time.Second),
	}
	if err := s.sessions.Create(ctx, reissued); err != nil {
		return fmt.Errorf("reissue session: %w", err)
	}
	s.current = reissued
	log.Printf("[Auth] password updated: user=%s", reissued.UserID)
	return nil
}

func (s *AuthService) mintAccessToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Duration(s.config.SessionMaxAgeSec) * time.Second).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *AuthService) parseAccessToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}
	return userID, nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
