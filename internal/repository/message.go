package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
)

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Insert stores a one-shot directed message.
func (r *messageRepository) Insert(ctx context.Context, m *model.Message) error {
	query := `
		INSERT INTO messages (from_id, to_id, subject, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	row := r.db.QueryRowxContext(ctx, query, m.FromID, m.ToID, m.Subject, m.Body)
	if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}
