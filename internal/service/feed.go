package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/cache"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/repository"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/view"
)

// MediaStore is the slice of the media service the feed needs: uploads
// on publish, removal of the stored object when a media post is deleted.
type MediaStore interface {
	UploadPostMedia(ctx context.Context, authorID string, att *model.Attachment) (*model.UploadResult, error)
	DeleteByURL(ctx context.Context, url string) error
}

// HeaderRefresher repaints the sidebar identity block. The feed calls it
// after mutations that change the viewer's post count.
type HeaderRefresher interface {
	RefreshHeader(ctx context.Context)
}

// FeedService owns the rendered feed list. Every mutation keeps the
// in-memory record list and the painted output in step, patching the one
// entry that changed instead of re-fetching the whole feed.
type FeedService struct {
	state    Viewer
	posts    repository.PostRepository
	recent   cache.RecentFeed
	media    MediaStore
	renderer view.FeedRenderer
	notify   view.Notifier
	confirm  view.Confirmer
	header   HeaderRefresher

	records []view.PostRecord
}

func NewFeedService(
	state Viewer,
	posts repository.PostRepository,
	recent cache.RecentFeed,
	media MediaStore,
	renderer view.FeedRenderer,
	notify view.Notifier,
	confirm view.Confirmer,
) *FeedService {
	return &FeedService{
		state:    state,
		posts:    posts,
		recent:   recent,
		media:    media,
		renderer: renderer,
		notify:   notify,
		confirm:  confirm,
	}
}

// AttachHeader wires the sidebar repaint hook. Set after construction
// because the page controller implementing it also holds the feed as one
// of its sections.
func (s *FeedService) AttachHeader(h HeaderRefresher) {
	s.header = h
}

func (s *FeedService) refreshHeader(ctx context.Context) {
	if s.header != nil {
		s.header.RefreshHeader(ctx)
	}
}

// Records returns the current rendered list.
func (s *FeedService) Records() []view.PostRecord {
	return s.records
}

// Refresh rebuilds the whole feed: loading placeholder, cache-served id
// list (warmed from the row store on a miss), hydration, then exactly one
// of the three terminal states.
func (s *FeedService) Refresh(ctx context.Context) error {
	s.renderer.ShowLoading()

	posts, err := s.fetchRecent(ctx)
	if err != nil {
		s.records = nil
		s.renderer.ShowError(err)
		return err
	}
	if len(posts) == 0 {
		s.records = nil
		s.renderer.ShowEmpty()
		return nil
	}

	s.records = view.BuildPostRecords(posts, s.state.MeID())
	s.renderer.ShowPosts(s.records)
	return nil
}

// fetchRecent resolves the newest post ids through the cache and hydrates
// them. Any cache trouble degrades to a direct row-store query.
func (s *FeedService) fetchRecent(ctx context.Context) ([]model.Post, error) {
	exists, err := s.recent.Exists(ctx)
	if err != nil {
		log.Printf("[Feed] cache unavailable, falling back: %v", err)
		return s.posts.Recent(ctx, model.FeedLimit)
	}

	if !exists {
		scores, err := s.posts.RecentScores(ctx, cache.RecentFeedCap)
		if err != nil {
			return nil, fmt.Errorf("warm feed cache: %w", err)
		}
		if err := s.recent.Warm(ctx, scores); err != nil {
			return s.posts.Recent(ctx, model.FeedLimit)
		}
	}

	ids, err := s.recent.Recent(ctx, model.FeedLimit)
	if err != nil {
		return s.posts.Recent(ctx, model.FeedLimit)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.posts.GetByIDs(ctx, ids)
}

// CreatePost publishes a new post. An empty composer is rejected before
// any upload or insert happens. When an attachment is present it is
// uploaded first; an upload failure aborts the whole publish.
func (s *FeedService) CreatePost(ctx context.Context, text string, att *model.Attachment) error {
	text = strings.TrimSpace(text)
	if text == "" && att == nil {
		s.notify.Notify("Write something or attach a file first.")
		return model.ErrEmptyPost
	}

	me := s.state.Me()
	if me == nil {
		s.notify.Notify("Sign in to publish.")
		return model.ErrNotSignedIn
	}

	post := &model.Post{AuthorID: me.ID}
	if text != "" {
		post.Text = &text
	}

	if att != nil {
		if !model.IsAllowedMediaKind(att.Kind) {
			s.notify.Notify("That attachment type is not supported.")
			return model.ErrInvalidImageType
		}
		result, err := s.media.UploadPostMedia(ctx, me.ID, att)
		if err != nil {
			s.notify.Notify("Upload failed: " + err.Error())
			return err
		}
		post.MediaURL = &result.URL
		post.MediaKind = &att.Kind
	}

	if err := s.posts.Insert(ctx, post); err != nil {
		s.notify.Notify("Publishing failed: " + err.Error())
		return err
	}

	post.Author = &model.ProfileSummary{
		ID:        me.ID,
		Name:      me.Name,
		Lastname:  me.Lastname,
		Username:  me.Username,
		AvatarURL: me.AvatarURL,
	}

	rec := view.BuildPostRecord(*post, me.ID)
	s.records = append([]view.PostRecord{rec}, s.records...)
	s.renderer.PrependPost(rec)

	ts := post.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	if err := s.recent.Add(ctx, cache.PostScore{PostID: post.ID, Timestamp: ts.Unix()}); err != nil {
		log.Printf("[Feed] cache add failed: %v", err)
	}

	s.refreshHeader(ctx)
	return nil
}

// ToggleLike flips the like state of one rendered entry. The direction
// comes from the rendered marker; the fresh count comes from a count-only
// re-query, not a feed refresh.
func (s *FeedService) ToggleLike(ctx context.Context, postID string) error {
	me := s.state.Me()
	if me == nil {
		s.notify.Notify("Sign in to like posts.")
		return model.ErrNotSignedIn
	}

	idx := s.indexOf(postID)
	if idx < 0 {
		return model.ErrPostNotFound
	}
	liked := s.records[idx].LikedByMe

	var err error
	if liked {
		err = s.posts.Unlike(ctx, postID, me.ID)
	} else {
		err = s.posts.Like(ctx, postID, me.ID)
	}
	// A lost race against another client leaves the row already in the
	// target state; the count re-query below still reconciles.
	if err != nil && !errors.Is(err, model.ErrAlreadyLiked) && !errors.Is(err, model.ErrNotLiked) {
		s.notify.Notify("Like failed: " + err.Error())
		return err
	}

	count, err := s.posts.LikeCount(ctx, postID)
	if err != nil {
		s.notify.Notify("Like failed: " + err.Error())
		return err
	}

	s.records[idx].LikedByMe = !liked
	s.records[idx].LikeCount = count
	s.renderer.UpdateLike(s.records[idx])
	return nil
}

// AddComment appends a comment to one rendered entry and bumps its
// counter in place.
func (s *FeedService) AddComment(ctx context.Context, postID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ErrEmptyComment
	}

	me := s.state.Me()
	if me == nil {
		s.notify.Notify("Sign in to comment.")
		return model.ErrNotSignedIn
	}

	idx := s.indexOf(postID)
	if idx < 0 {
		return model.ErrPostNotFound
	}

	comment := &model.Comment{
		PostID:   postID,
		AuthorID: me.ID,
		Text:     text,
	}
	if err := s.posts.InsertComment(ctx, comment); err != nil {
		s.notify.Notify("Comment failed: " + err.Error())
		return err
	}

	comment.Author = &model.ProfileSummary{
		ID:       me.ID,
		Name:     me.Name,
		Lastname: me.Lastname,
		Username: me.Username,
	}
	rec := view.BuildCommentRecord(*comment)
	s.records[idx].Comments = append(s.records[idx].Comments, rec)
	s.records[idx].CommentCount++
	s.renderer.AppendComment(postID, rec, s.records[idx].CommentCount)
	return nil
}

// DeletePost removes one of the viewer's own posts after confirmation.
// The ownership check here is advisory; the scoped delete is what
// actually enforces it. Removing the last entry falls back to a full
// refresh so the empty state paints.
func (s *FeedService) DeletePost(ctx context.Context, postID string) error {
	me := s.state.Me()
	if me == nil {
		return model.ErrNotSignedIn
	}

	idx := s.indexOf(postID)
	if idx < 0 {
		return model.ErrPostNotFound
	}
	if !s.records[idx].IsMine {
		s.notify.Notify("You can only delete your own posts.")
		return model.ErrNotPostAuthor
	}

	if !s.confirm.Confirm("Delete this post?") {
		return nil
	}

	if err := s.posts.Delete(ctx, postID, me.ID); err != nil {
		s.notify.Notify("Delete failed: " + err.Error())
		return err
	}

	// The row is gone; the stored object would otherwise leak.
	if url := s.records[idx].MediaURL; url != "" {
		if err := s.media.DeleteByURL(ctx, url); err != nil {
			log.Printf("[Feed] media delete failed: %v", err)
		}
	}

	s.records = append(s.records[:idx], s.records[idx+1:]...)
	s.renderer.RemovePost(postID)

	if err := s.recent.Remove(ctx, postID); err != nil {
		log.Printf("[Feed] cache remove failed: %v", err)
	}

	s.refreshHeader(ctx)

	if len(s.records) == 0 {
		return s.Refresh(ctx)
	}
	return nil
}

func (s *FeedService) indexOf(postID string) int {
	for i, rec := range s.records {
		if rec.ID == postID {
			return i
		}
	}
	return -1
}
