package session

import (
	"context"
	"errors"
	"strings"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
)

// Registration validation errors. Each names the field the form should
// highlight.
var (
	ErrMissingIdentity  = errors.New("name and lastname are required")
	ErrMissingDOB       = errors.New("date of birth is required")
	ErrMissingCountry   = errors.New("country is required")
	ErrInvalidEmail     = errors.New("enter a valid email address")
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	ErrUsernameBadChars = errors.New("username may only contain lowercase letters, digits, dots and underscores")
	ErrUsernameReserved = errors.New("that username is reserved")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrTermsNotAccepted = errors.New("you must accept the terms")
)

// RegistrationForm carries the full three-step sign-up form.
type RegistrationForm struct {
	// step one: identity
	Name     string
	Lastname string
	DOB      string
	Country  string
	Gender   string
	Hint     string

	// step two: account
	Email       string
	Username    string
	Password    string
	Password2   string
	AcceptTerms bool
}

// ValidateStep1 checks the identity fields. No network.
func ValidateStep1(form RegistrationForm) error {
	if strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.Lastname) == "" {
		return ErrMissingIdentity
	}
	if strings.TrimSpace(form.DOB) == "" {
		return ErrMissingDOB
	}
	if strings.TrimSpace(form.Country) == "" {
		return ErrMissingCountry
	}
	return nil
}

// ValidateUsername applies the local username rules: length, character
// set and the reserved list. Availability is a separate query.
func ValidateUsername(username string) error {
	if len(username) < model.MinUsernameLength {
		return ErrUsernameTooShort
	}
	if !model.UsernamePattern.MatchString(username) {
		return ErrUsernameBadChars
	}
	if model.IsReservedUsername(username) {
		return ErrUsernameReserved
	}
	return nil
}

// ValidatePassword enforces the minimum length and confirmation match.
func ValidatePassword(password, confirm string) error {
	if len(password) < model.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// validateStep2 runs the account-step checks, including the availability
// query. Local rules run first so an invalid form costs no network.
func (c *Controller) validateStep2(ctx context.Context, form RegistrationForm) error {
	email := strings.TrimSpace(form.Email)
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}

	username := strings.ToLower(strings.TrimSpace(form.Username))
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidatePassword(form.Password, form.Password2); err != nil {
		return err
	}
	if !form.AcceptTerms {
		return ErrTermsNotAccepted
	}

	count, err := c.profiles.UsernameCount(ctx, username)
	if err != nil {
		return err
	}
	if count > 0 {
		return model.ErrUsernameTaken
	}
	return nil
}

// Register runs both validation steps and creates the account. Any
// validation failure returns before the collaborator is touched; the
// user then signs in from the login step.
func (c *Controller) Register(ctx context.Context, form RegistrationForm) error {
	if err := ValidateStep1(form); err != nil {
		c.notify.Notify(err.Error())
		return err
	}
	if err := c.validateStep2(ctx, form); err != nil {
		c.notify.Notify(err.Error())
		return err
	}

	meta := model.SignUpMetadata{
		Name:     strings.TrimSpace(form.Name),
		Lastname: strings.TrimSpace(form.Lastname),
		Username: strings.ToLower(strings.TrimSpace(form.Username)),
		DOB:      strings.TrimSpace(form.DOB),
		Country:  strings.TrimSpace(form.Country),
		Gender:   strings.TrimSpace(form.Gender),
		Hint:     strings.TrimSpace(form.Hint),
	}
	if err := c.auth.SignUp(ctx, strings.TrimSpace(form.Email), form.Password, meta); err != nil {
		c.notify.Notify("Registration failed: " + err.Error())
		return err
	}

	c.notify.Notify("Account created. You can sign in now.")
	return nil
}
