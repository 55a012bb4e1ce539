package service

import (
	"context"
	"fmt"
	"log"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/repository"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/view"
)

// AvatarUploader is the slice of the media service the profile needs.
type AvatarUploader interface {
	UploadAvatar(ctx context.Context, userID string, data []byte) (*model.UploadResult, error)
}

// ProfileStats aggregates the counters shown on the profile panel.
type ProfileStats struct {
	Posts         int
	LikesReceived int
	Comments      int
}

// ProfileService resolves profiles and applies profile writes.
type ProfileService struct {
	profiles repository.ProfileRepository
	posts    repository.PostRepository
	media    AvatarUploader
	renderer view.ProfileRenderer
}

func NewProfileService(profiles repository.ProfileRepository, posts repository.PostRepository, media AvatarUploader, renderer view.ProfileRenderer) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		posts:    posts,
		media:    media,
		renderer: renderer,
	}
}

// Load fetches a profile by id.
func (s *ProfileService) Load(ctx context.Context, userID string) (*model.Profile, error) {
	return s.profiles.GetByID(ctx, userID)
}

// UsernameCount backs the registration availability check.
func (s *ProfileService) UsernameCount(ctx context.Context, username string) (int, error) {
	return s.profiles.CountByUsername(ctx, username)
}

// PostCount returns the number of posts the user has published.
func (s *ProfileService) PostCount(ctx context.Context, userID string) (int, error) {
	return s.posts.CountByAuthor(ctx, userID)
}

// Promo returns the community counters on the unauthenticated page.
func (s *ProfileService) Promo(ctx context.Context) (view.PromoStats, error) {
	users, err := s.profiles.Count(ctx)
	if err != nil {
		return view.PromoStats{}, fmt.Errorf("count profiles: %w", err)
	}
	posts, err := s.posts.Count(ctx)
	if err != nil {
		return view.PromoStats{}, fmt.Errorf("count posts: %w", err)
	}
	return view.PromoStats{Users: users, Posts: posts}, nil
}

// Stats computes the profile panel counters.
func (s *ProfileService) Stats(ctx context.Context, userID string) (ProfileStats, error) {
	posts, err := s.posts.CountByAuthor(ctx, userID)
	if err != nil {
		return ProfileStats{}, err
	}
	likes, err := s.posts.LikesReceived(ctx, userID)
	if err != nil {
		return ProfileStats{}, err
	}
	comments, err := s.posts.CountCommentsByAuthor(ctx, userID)
	if err != nil {
		return ProfileStats{}, err
	}
	return ProfileStats{Posts: posts, LikesReceived: likes, Comments: comments}, nil
}

// Overview returns the user's newest posts for the profile panel.
func (s *ProfileService) Overview(ctx context.Context, userID string) ([]model.Post, error) {
	return s.posts.ByAuthor(ctx, userID, model.ProfilePostLimit)
}

// Save applies a replace-on-write settings snapshot and returns the
// fresh row.
func (s *ProfileService) Save(ctx context.Context, userID string, u model.ProfileUpdate) (*model.Profile, error) {
	fresh, err := s.profiles.Update(ctx, userID, u)
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	log.Printf("[Profile] Save OK: user=%s", userID)
	return fresh, nil
}

// ChangeAvatar uploads a normalized picture and points the profile row at
// the new URL.
func (s *ProfileService) ChangeAvatar(ctx context.Context, userID string, data []byte) (string, error) {
	result, err := s.media.UploadAvatar(ctx, userID, data)
	if err != nil {
		return "", err
	}
	if err := s.profiles.UpdateAvatar(ctx, userID, result.URL); err != nil {
		return "", fmt.Errorf("update avatar url: %w", err)
	}
	log.Printf("[Profile] ChangeAvatar OK: user=%s", userID)
	return result.URL, nil
}

// ShowPanel paints the profile panel: identity header, counters and a
// short overview of the newest posts.
func (s *ProfileService) ShowPanel(ctx context.Context, me *model.Profile) error {
	if me == nil {
		return model.ErrNotSignedIn
	}

	stats, err := s.Stats(ctx, me.ID)
	if err != nil {
		return err
	}
	overview, err := s.Overview(ctx, me.ID)
	if err != nil {
		return err
	}

	hdr := view.AppHeader{
		FullName:  view.FullName(me.Name, me.Lastname),
		Username:  me.Username,
		AvatarURL: view.AvatarURL(me.AvatarURL, me.Name, me.Lastname),
		PostCount: stats.Posts,
	}
	if me.Bio != nil {
		hdr.Bio = *me.Bio
	}
	if me.City != nil {
		hdr.City = *me.City
	}
	if me.Country != nil {
		hdr.Country = *me.Country
	}

	s.renderer.ShowProfile(hdr, view.BuildPostRecords(overview, me.ID))
	return nil
}
