package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/cache"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Recent returns up to limit posts newest first with author, like set and
// comment list eagerly attached, the denormalized view the feed renders.
func (r *postRepository) Recent(ctx context.Context, limit int) ([]model.Post, error) {
	query := `
		SELECT id, author_id, text, media_url, media_kind, created_at
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1
	`
	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, limit); err != nil {
		return nil, fmt.Errorf("get recent posts: %w", err)
	}

	if err := r.hydrate(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetByIDs hydrates posts preserving the input order (cache-served feed).
func (r *postRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Post, error) {
	if len(ids) == 0 {
		return []model.Post{}, nil
	}

	query := `
		SELECT id, author_id, text, media_url, media_kind, created_at
		FROM posts
		WHERE id = ANY($1)
	`
	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("get posts by ids: %w", err)
	}

	if err := r.hydrate(ctx, posts); err != nil {
		return nil, err
	}

	// Re-order to match input order (the cache owns the feed ordering).
	byID := make(map[string]model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]model.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// RecentScores returns (id, created_at) pairs for cache warming.
func (r *postRepository) RecentScores(ctx context.Context, limit int) ([]cache.PostScore, error) {
	query := `
		SELECT id, EXTRACT(EPOCH FROM created_at)::bigint AS timestamp
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1
	`
	type row struct {
		ID        string `db:"id"`
		Timestamp int64  `db:"timestamp"`
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("get recent post scores: %w", err)
	}

	scores := make([]cache.PostScore, len(rows))
	for i, rw := range rows {
		scores[i] = cache.PostScore{PostID: rw.ID, Timestamp: rw.Timestamp}
	}
	return scores, nil
}

// ByAuthor returns the author's newest posts, hydrated.
func (r *postRepository) ByAuthor(ctx context.Context, authorID string, limit int) ([]model.Post, error) {
	query := `
		SELECT id, author_id, text, media_url, media_kind, created_at
		FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, authorID, limit); err != nil {
		return nil, fmt.Errorf("get posts by author: %w", err)
	}

	if err := r.hydrate(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Insert creates the post row and fills in id and created_at.
func (r *postRepository) Insert(ctx context.Context, p *model.Post) error {
	query := `
		INSERT INTO posts (author_id, text, media_url, media_kind)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	row := r.db.QueryRowxContext(ctx, query, p.AuthorID, p.Text, p.MediaURL, p.MediaKind)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// Delete removes a post scoped to its author. Likes and comments go with it
// via ON DELETE CASCADE.
func (r *postRepository) Delete(ctx context.Context, postID, authorID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM posts WHERE id = $1 AND author_id = $2`, postID, authorID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
		if exists {
			return model.ErrNotPostAuthor
		}
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(id) FROM posts WHERE author_id = $1`, authorID)
	if err != nil {
		return 0, fmt.Errorf("count posts by author: %w", err)
	}
	return count, nil
}

func (r *postRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(id) FROM posts`); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// Like inserts a (post, user) like pair. Set semantics: the unique
// constraint turns a duplicate into ErrAlreadyLiked.
func (r *postRepository) Like(ctx context.Context, postID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO likes (post_id, user_id) VALUES ($1, $2)`, postID, userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.ErrAlreadyLiked
		}
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

// Unlike deletes the like pair. Returns ErrNotLiked if absent.
func (r *postRepository) Unlike(ctx context.Context, postID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotLiked
	}
	return nil
}

// LikeCount re-queries only the count for one post (the narrow re-render
// after a like toggle).
func (r *postRepository) LikeCount(ctx context.Context, postID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

// LikesReceived counts likes across all of the author's posts.
func (r *postRepository) LikesReceived(ctx context.Context, authorID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM likes l
		JOIN posts p ON p.id = l.post_id
		WHERE p.author_id = $1
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, authorID); err != nil {
		return 0, fmt.Errorf("count likes received: %w", err)
	}
	return count, nil
}

// InsertComment creates the comment row and fills in id and created_at.
func (r *postRepository) InsertComment(ctx context.Context, c *model.Comment) error {
	query := `
		INSERT INTO comments (post_id, author_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	row := r.db.QueryRowxContext(ctx, query, c.PostID, c.AuthorID, c.Text)
	if err := row.Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *postRepository) CountCommentsByAuthor(ctx context.Context, authorID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(id) FROM comments WHERE author_id = $1`, authorID)
	if err != nil {
		return 0, fmt.Errorf("count comments by author: %w", err)
	}
	return count, nil
}

// hydrate attaches authors, like sets and comment lists to the posts with
// one batch query per relation.
func (r *postRepository) hydrate(ctx context.Context, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]string, len(posts))
	authorIDSet := make(map[string]struct{}, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
		authorIDSet[p.AuthorID] = struct{}{}
	}
	authorIDs := make([]string, 0, len(authorIDSet))
	for id := range authorIDSet {
		authorIDs = append(authorIDs, id)
	}

	authors, err := r.getAuthors(ctx, authorIDs)
	if err != nil {
		return err
	}
	likes, err := r.getLikes(ctx, postIDs)
	if err != nil {
		return err
	}
	comments, err := r.getComments(ctx, postIDs)
	if err != nil {
		return err
	}

	for i := range posts {
		if a, ok := authors[posts[i].AuthorID]; ok {
			author := a
			posts[i].Author = &author
		}
		posts[i].LikerIDs = likes[posts[i].ID]
		posts[i].Comments = comments[posts[i].ID]
	}
	return nil
}

func (r *postRepository) getAuthors(ctx context.Context, authorIDs []string) (map[string]model.ProfileSummary, error) {
	query := `
		SELECT id, name, lastname, username, avatar_url
		FROM profiles
		WHERE id = ANY($1)
	`
	var authors []model.ProfileSummary
	if err := r.db.SelectContext(ctx, &authors, query, pq.Array(authorIDs)); err != nil {
		return nil, fmt.Errorf("get post authors: %w", err)
	}

	result := make(map[string]model.ProfileSummary, len(authors))
	for _, a := range authors {
		result[a.ID] = a
	}
	return result, nil
}

func (r *postRepository) getLikes(ctx context.Context, postIDs []string) (map[string][]string, error) {
	query := `SELECT post_id, user_id FROM likes WHERE post_id = ANY($1)`

	type row struct {
		PostID string `db:"post_id"`
		UserID string `db:"user_id"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(postIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("get post likes: %w", err)
	}

	result := make(map[string][]string)
	for _, rw := range rows {
		result[rw.PostID] = append(result[rw.PostID], rw.UserID)
	}
	return result, nil
}

func (r *postRepository) getComments(ctx context.Context, postIDs []string) (map[string][]model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.author_id, c.text, c.created_at,
		       p.id AS "author.id", p.name AS "author.name", p.lastname AS "author.lastname",
		       p.username AS "author.username", p.avatar_url AS "author.avatar_url"
		FROM comments c
		JOIN profiles p ON p.id = c.author_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.created_at ASC
	`

	rows, err := r.db.QueryxContext(ctx, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("get post comments: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]model.Comment)
	for rows.Next() {
		var c model.Comment
		var a model.ProfileSummary
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt,
			&a.ID, &a.Name, &a.Lastname, &a.Username, &a.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.Author = &a
		result[c.PostID] = append(result[c.PostID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return result, nil
}
