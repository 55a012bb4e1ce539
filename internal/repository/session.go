package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
)

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Insert(ctx context.Context, a *model.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hashed)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	row := r.db.QueryRowxContext(ctx, query, a.ID, a.Email, a.PasswordHashed)
	if err := row.Scan(&a.CreatedAt); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.ErrEmailExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	var a model.Account
	err := r.db.GetContext(ctx, &a,
		`SELECT id, email, password_hashed, created_at FROM accounts WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return &a, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var a model.Account
	err := r.db.GetContext(ctx, &a,
		`SELECT id, email, password_hashed, created_at FROM accounts WHERE email = $1`, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return &a, nil
}

func (r *accountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`, email)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id, passwordHashed string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET password_hashed = $2 WHERE id = $1`, id, passwordHashed)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrInvalidCredentials
	}
	return nil
}

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *model.Session) error {
	query := `
		INSERT INTO sessions (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	row := r.db.QueryRowxContext(ctx, query, s.UserID, s.TokenHash, s.ExpiresAt)
	if err := row.Scan(&s.ID, &s.CreatedAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *sessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	var s model.Session
	err := r.db.GetContext(ctx, &s, `
		SELECT id, user_id, token_hash, expires_at, created_at, revoked_at
		FROM sessions
		WHERE token_hash = $1
	`, tokenHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrNoSession
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &s, nil
}

func (r *sessionRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (r *sessionRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`, userID)
	if err != nil {
		return fmt.Errorf("revoke sessions for user: %w", err)
	}
	return nil
}

type passwordResetRepository struct {
	db *sqlx.DB
}

func NewPasswordResetRepository(db *sqlx.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *model.PasswordReset) error {
	query := `
		INSERT INTO password_resets (email, token_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	row := r.db.QueryRowxContext(ctx, query, reset.Email, reset.TokenHash)
	if err := row.Scan(&reset.ID, &reset.CreatedAt); err != nil {
		return fmt.Errorf("insert password reset: %w", err)
	}
	return nil
}
