package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
)

type scrapRepository struct {
	db *sqlx.DB
}

func NewScrapRepository(db *sqlx.DB) ScrapRepository {
	return &scrapRepository{db: db}
}

// Insert appends a scrap to the wall and fills in id and created_at.
func (r *scrapRepository) Insert(ctx context.Context, s *model.Scrap) error {
	query := `
		INSERT INTO scraps (author_id, text)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	row := r.db.QueryRowxContext(ctx, query, s.AuthorID, s.Text)
	if err := row.Scan(&s.ID, &s.CreatedAt); err != nil {
		return fmt.Errorf("insert scrap: %w", err)
	}
	return nil
}

// Recent returns the newest scraps with their authors joined.
func (r *scrapRepository) Recent(ctx context.Context, limit int) ([]model.Scrap, error) {
	query := `
		SELECT s.id, s.author_id, s.text, s.created_at,
		       p.id AS "author.id", p.name AS "author.name", p.lastname AS "author.lastname",
		       p.username AS "author.username", p.avatar_url AS "author.avatar_url"
		FROM scraps s
		JOIN profiles p ON p.id = s.author_id
		ORDER BY s.created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent scraps: %w", err)
	}
	defer rows.Close()

	var scraps []model.Scrap
	for rows.Next() {
		var s model.Scrap
		var a model.ProfileSummary
		if err := rows.Scan(&s.ID, &s.AuthorID, &s.Text, &s.CreatedAt,
			&a.ID, &a.Name, &a.Lastname, &a.Username, &a.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan scrap: %w", err)
		}
		s.Author = &a
		scraps = append(scraps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scraps: %w", err)
	}
	return scraps, nil
}
