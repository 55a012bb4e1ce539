package repository

import (
	"context"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/cache"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	GetByUsername(ctx context.Context, username string) (*model.Profile, error)
	// CountByUsername backs the availability check at registration time.
	CountByUsername(ctx context.Context, username string) (int, error)
	Insert(ctx context.Context, p *model.Profile) error
	// Update is replace-on-write: the whole snapshot is applied at once.
	Update(ctx context.Context, id string, u model.ProfileUpdate) (*model.Profile, error)
	UpdateAvatar(ctx context.Context, id, avatarURL string) error
	// List returns profiles excluding the given id; limit <= 0 means all.
	List(ctx context.Context, excludeID string, limit int) ([]model.ProfileSummary, error)
	// Search matches a case-insensitive substring across name, lastname
	// and username, excluding the given id.
	Search(ctx context.Context, excludeID, query string) ([]model.ProfileSummary, error)
	// WithBirthday matches profiles whose stored dob string ends with
	// "-MM-DD". Textual suffix match, not a calendar computation.
	WithBirthday(ctx context.Context, monthDay string) ([]model.ProfileSummary, error)
	Count(ctx context.Context) (int, error)
}

type PostRepository interface {
	// Recent returns up to limit posts newest first, with author, full
	// like set and full comment list eagerly attached.
	Recent(ctx context.Context, limit int) ([]model.Post, error)
	// GetByIDs hydrates posts in the given order (for cache-served feeds).
	GetByIDs(ctx context.Context, ids []string) ([]model.Post, error)
	// RecentScores returns (id, created_at) pairs for cache warming.
	RecentScores(ctx context.Context, limit int) ([]cache.PostScore, error)
	// ByAuthor returns the author's newest posts, hydrated.
	ByAuthor(ctx context.Context, authorID string, limit int) ([]model.Post, error)
	Insert(ctx context.Context, p *model.Post) error
	// Delete is scoped to (postID, authorID); the row store's access rule
	// is the actual enforcement point.
	Delete(ctx context.Context, postID, authorID string) error
	CountByAuthor(ctx context.Context, authorID string) (int, error)
	Count(ctx context.Context) (int, error)

	Like(ctx context.Context, postID, userID string) error
	Unlike(ctx context.Context, postID, userID string) error
	LikeCount(ctx context.Context, postID string) (int, error)
	LikesReceived(ctx context.Context, authorID string) (int, error)

	InsertComment(ctx context.Context, c *model.Comment) error
	CountCommentsByAuthor(ctx context.Context, authorID string) (int, error)
}

type ScrapRepository interface {
	Insert(ctx context.Context, s *model.Scrap) error
	Recent(ctx context.Context, limit int) ([]model.Scrap, error)
}

type MessageRepository interface {
	Insert(ctx context.Context, m *model.Message) error
}

type AccountRepository interface {
	Insert(ctx context.Context, a *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id, passwordHashed string) error
}

type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

type PasswordResetRepository interface {
	Create(ctx context.Context, r *model.PasswordReset) error
}
