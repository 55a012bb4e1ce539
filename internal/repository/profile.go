package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
)

// profileRepository implements ProfileRepository using sqlx
type profileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, name, lastname, username, email, avatar_url, bio, city, country, dob, gender, created_at, updated_at`

// GetByID retrieves a profile by its primary key.
func (r *profileRepository) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	var p model.Profile
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile by id: %w", err)
	}

	return &p, nil
}

// GetByUsername retrieves a profile by username.
func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE username = $1`

	var p model.Profile
	err := r.db.GetContext(ctx, &p, query, username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile by username: %w", err)
	}

	return &p, nil
}

// CountByUsername counts profiles holding the username (0 or 1 in practice).
func (r *profileRepository) CountByUsername(ctx context.Context, username string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(id) FROM profiles WHERE username = $1`, username)
	if err != nil {
		return 0, fmt.Errorf("failed to count username: %w", err)
	}
	return count, nil
}

// Insert materializes a profile row from sign-up metadata.
func (r *profileRepository) Insert(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (id, name, lastname, username, email, avatar_url, bio, city, country, dob, gender, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		p.ID, p.Name, p.Lastname, p.Username, p.Email,
		p.AvatarURL, p.Bio, p.City, p.Country, p.DOB, p.Gender,
	)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// Update applies a replace-on-write snapshot and returns the fresh row.
func (r *profileRepository) Update(ctx context.Context, id string, u model.ProfileUpdate) (*model.Profile, error) {
	query := `
		UPDATE profiles
		SET name = $2, lastname = $3, username = $4, dob = $5, city = $6, bio = $7, country = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	var p model.Profile
	err := r.db.GetContext(ctx, &p, query, id, u.Name, u.Lastname, u.Username, u.DOB, u.City, u.Bio, u.Country)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &p, nil
}

// UpdateAvatar stores a new avatar URL.
func (r *profileRepository) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET avatar_url = $2, updated_at = NOW() WHERE id = $1`, id, avatarURL)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrProfileNotFound
	}
	return nil
}

// List returns profiles excluding the given id, newest first.
// limit <= 0 returns all rows (the "all users" directory view).
func (r *profileRepository) List(ctx context.Context, excludeID string, limit int) ([]model.ProfileSummary, error) {
	query := `
		SELECT id, name, lastname, username, avatar_url
		FROM profiles
		WHERE id <> $1
		ORDER BY created_at DESC
	`
	args := []interface{}{excludeID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	var users []model.ProfileSummary
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return users, nil
}

// Search matches a case-insensitive substring across name, lastname and
// username.
func (r *profileRepository) Search(ctx context.Context, excludeID, query string) ([]model.ProfileSummary, error) {
	searchQuery := `
		SELECT id, name, lastname, username, avatar_url
		FROM profiles
		WHERE id <> $1
		  AND (name ILIKE $2 OR lastname ILIKE $2 OR username ILIKE $2)
		ORDER BY name, lastname
	`

	var users []model.ProfileSummary
	err := r.db.SelectContext(ctx, &users, searchQuery, excludeID, "%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	return users, nil
}

// WithBirthday matches profiles whose stored dob string ends with "-MM-DD".
// The dob column is textual; results depend on the stored format matching.
func (r *profileRepository) WithBirthday(ctx context.Context, monthDay string) ([]model.ProfileSummary, error) {
	query := `
		SELECT id, name, lastname, username, avatar_url
		FROM profiles
		WHERE dob LIKE $1
		ORDER BY name, lastname
	`

	var users []model.ProfileSummary
	err := r.db.SelectContext(ctx, &users, query, "%-"+monthDay)
	if err != nil {
		return nil, fmt.Errorf("failed to list birthdays: %w", err)
	}
	return users, nil
}

// Count returns the total number of profiles (login-page promo stat).
func (r *profileRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(id) FROM profiles`); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}
