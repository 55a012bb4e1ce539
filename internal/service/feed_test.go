package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/cache"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/view"
)

// fakeViewer stands in for the session state.
type fakeViewer struct {
	me *model.Profile
}

func (v *fakeViewer) Me() *model.Profile { return v.me }
func (v *fakeViewer) MeID() string {
	if v.me == nil {
		return ""
	}
	return v.me.ID
}

func signedIn() *fakeViewer {
	return &fakeViewer{me: &model.Profile{
		ID:       "user-1",
		Name:     "Ana",
		Lastname: "Rojas",
		Username: "ana.rojas",
	}}
}

// mockPostRepository lets each test define custom behavior per method and
// tracks calls for assertions.
type mockPostRepository struct {
	recentFn        func(ctx context.Context, limit int) ([]model.Post, error)
	getByIDsFn      func(ctx context.Context, ids []string) ([]model.Post, error)
	recentScoresFn  func(ctx context.Context, limit int) ([]cache.PostScore, error)
	insertFn        func(ctx context.Context, p *model.Post) error
	deleteFn        func(ctx context.Context, postID, authorID string) error
	likeFn          func(ctx context.Context, postID, userID string) error
	unlikeFn        func(ctx context.Context, postID, userID string) error
	likeCountFn     func(ctx context.Context, postID string) (int, error)
	insertCommentFn func(ctx context.Context, c *model.Comment) error

	insertCalls  int
	deleteCalls  int
	likeCalls    int
	unlikeCalls  int
	commentCalls int
}

func (m *mockPostRepository) Recent(ctx context.Context, limit int) ([]model.Post, error) {
	if m.recentFn != nil {
		return m.recentFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Post, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockPostRepository) RecentScores(ctx context.Context, limit int) ([]cache.PostScore, error) {
	if m.recentScoresFn != nil {
		return m.recentScoresFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) ByAuthor(ctx context.Context, authorID string, limit int) ([]model.Post, error) {
	return nil, nil
}

func (m *mockPostRepository) Insert(ctx context.Context, p *model.Post) error {
	m.insertCalls++
	if m.insertFn != nil {
		return m.insertFn(ctx, p)
	}
	p.ID = "post-new"
	p.CreatedAt = time.Now()
	return nil
}

func (m *mockPostRepository) Delete(ctx context.Context, postID, authorID string) error {
	m.deleteCalls++
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID, authorID)
	}
	return nil
}

func (m *mockPostRepository) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	return 0, nil
}

func (m *mockPostRepository) Count(ctx context.Context) (int, error) { return 0, nil }

func (m *mockPostRepository) Like(ctx context.Context, postID, userID string) error {
	m.likeCalls++
	if m.likeFn != nil {
		return m.likeFn(ctx, postID, userID)
	}
	return nil
}

func (m *mockPostRepository) Unlike(ctx context.Context, postID, userID string) error {
	m.unlikeCalls++
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, postID, userID)
	}
	return nil
}

func (m *mockPostRepository) LikeCount(ctx context.Context, postID string) (int, error) {
	if m.likeCountFn != nil {
		return m.likeCountFn(ctx, postID)
	}
	return 0, nil
}

func (m *mockPostRepository) LikesReceived(ctx context.Context, authorID string) (int, error) {
	return 0, nil
}

func (m *mockPostRepository) InsertComment(ctx context.Context, c *model.Comment) error {
	m.commentCalls++
	if m.insertCommentFn != nil {
		return m.insertCommentFn(ctx, c)
	}
	c.ID = "comment-new"
	c.CreatedAt = time.Now()
	return nil
}

func (m *mockPostRepository) CountCommentsByAuthor(ctx context.Context, authorID string) (int, error) {
	return 0, nil
}

// fakeRecentFeed is an in-memory cache.RecentFeed.
type fakeRecentFeed struct {
	ids       []string
	warmed    bool
	addCalls  []cache.PostScore
	removed   []string
	existsErr error
}

func (f *fakeRecentFeed) Add(ctx context.Context, post cache.PostScore) error {
	f.addCalls = append(f.addCalls, post)
	f.ids = append([]string{post.PostID}, f.ids...)
	return nil
}

func (f *fakeRecentFeed) Remove(ctx context.Context, postID string) error {
	f.removed = append(f.removed, postID)
	return nil
}

func (f *fakeRecentFeed) Recent(ctx context.Context, limit int) ([]string, error) {
	if limit > len(f.ids) {
		limit = len(f.ids)
	}
	return f.ids[:limit], nil
}

func (f *fakeRecentFeed) Warm(ctx context.Context, posts []cache.PostScore) error {
	f.warmed = true
	for _, p := range posts {
		f.ids = append(f.ids, p.PostID)
	}
	return nil
}

func (f *fakeRecentFeed) Exists(ctx context.Context) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return len(f.ids) > 0, nil
}

// fakeMediaStore records uploads and deletions.
type fakeMediaStore struct {
	uploadFn func(ctx context.Context, authorID string, att *model.Attachment) (*model.UploadResult, error)
	calls    int
	deleted  []string
}

func (u *fakeMediaStore) UploadPostMedia(ctx context.Context, authorID string, att *model.Attachment) (*model.UploadResult, error) {
	u.calls++
	if u.uploadFn != nil {
		return u.uploadFn(ctx, authorID, att)
	}
	return &model.UploadResult{URL: "https://cdn.example/posts/x", Key: "posts/x"}, nil
}

func (u *fakeMediaStore) DeleteByURL(ctx context.Context, url string) error {
	u.deleted = append(u.deleted, url)
	return nil
}

// fakeHeader counts sidebar repaint requests.
type fakeHeader struct {
	refreshes int
}

func (h *fakeHeader) RefreshHeader(ctx context.Context) { h.refreshes++ }

// recordingRenderer captures feed renderer calls in order.
type recordingRenderer struct {
	events []string
	posts  []view.PostRecord
}

func (r *recordingRenderer) ShowLoading()    { r.events = append(r.events, "loading") }
func (r *recordingRenderer) ShowError(error) { r.events = append(r.events, "error") }
func (r *recordingRenderer) ShowEmpty()      { r.events = append(r.events, "empty") }
func (r *recordingRenderer) ShowPosts(recs []view.PostRecord) {
	r.events = append(r.events, "posts")
	r.posts = recs
}
func (r *recordingRenderer) PrependPost(rec view.PostRecord) {
	r.events = append(r.events, "prepend:"+rec.ID)
}
func (r *recordingRenderer) UpdateLike(rec view.PostRecord) {
	r.events = append(r.events, "like:"+rec.ID)
}
func (r *recordingRenderer) AppendComment(postID string, c view.CommentRecord, total int) {
	r.events = append(r.events, "comment:"+postID)
}
func (r *recordingRenderer) RemovePost(postID string) {
	r.events = append(r.events, "remove:"+postID)
}

func (r *recordingRenderer) last() string {
	if len(r.events) == 0 {
		return ""
	}
	return r.events[len(r.events)-1]
}

type recordingNotifier struct {
	notices []string
}

func (n *recordingNotifier) Notify(msg string) { n.notices = append(n.notices, msg) }

type stubConfirmer struct {
	answer bool
	asked  int
}

func (c *stubConfirmer) Confirm(string) bool {
	c.asked++
	return c.answer
}

func newFeedFixture(viewer Viewer, repo *mockPostRepository) (*FeedService, *fakeRecentFeed, *fakeMediaStore, *recordingRenderer, *recordingNotifier, *stubConfirmer) {
	recent := &fakeRecentFeed{}
	media := &fakeMediaStore{}
	renderer := &recordingRenderer{}
	notify := &recordingNotifier{}
	confirm := &stubConfirmer{answer: true}
	svc := NewFeedService(viewer, repo, recent, media, renderer, notify, confirm)
	return svc, recent, media, renderer, notify, confirm
}

func textPost(id, authorID, text string, created time.Time) model.Post {
	return model.Post{
		ID:        id,
		AuthorID:  authorID,
		Text:      &text,
		CreatedAt: created,
		Author: &model.ProfileSummary{
			ID:       authorID,
			Name:     "Ana",
			Lastname: "Rojas",
			Username: "ana.rojas",
		},
	}
}

func TestFeedService_CreatePost_EmptyComposer(t *testing.T) {
	repo := &mockPostRepository{}
	svc, _, uploads, _, _, _ := newFeedFixture(signedIn(), repo)

	err := svc.CreatePost(context.Background(), "   ", nil)

	if !errors.Is(err, model.ErrEmptyPost) {
		t.Fatalf("expected ErrEmptyPost, got %v", err)
	}
	if repo.insertCalls != 0 || uploads.calls != 0 {
		t.Errorf("empty composer must not reach the collaborator: inserts=%d uploads=%d", repo.insertCalls, uploads.calls)
	}
}

func TestFeedService_CreatePost_TextRoundTrip(t *testing.T) {
	repo := &mockPostRepository{}
	svc, recent, _, renderer, _, _ := newFeedFixture(signedIn(), repo)

	if err := svc.CreatePost(context.Background(), "Hello", nil); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	records := svc.Records()
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].Text != "Hello" {
		t.Errorf("text = %q, want %q", records[0].Text, "Hello")
	}
	if !records[0].IsMine {
		t.Error("own post should be marked mine")
	}
	if renderer.last() != "prepend:post-new" {
		t.Errorf("renderer event = %q, want prepend", renderer.last())
	}
	if len(recent.addCalls) != 1 || recent.addCalls[0].PostID != "post-new" {
		t.Errorf("cache add calls = %+v, want one for post-new", recent.addCalls)
	}
}

func TestFeedService_CreatePost_UploadFailureAborts(t *testing.T) {
	repo := &mockPostRepository{}
	svc, _, uploads, _, notify, _ := newFeedFixture(signedIn(), repo)
	uploads.uploadFn = func(ctx context.Context, authorID string, att *model.Attachment) (*model.UploadResult, error) {
		return nil, errors.New("bucket unavailable")
	}

	att := &model.Attachment{Filename: "pic.png", Kind: model.MediaImage, Data: []byte{1}}
	err := svc.CreatePost(context.Background(), "with media", att)

	if err == nil {
		t.Fatal("expected upload error")
	}
	if repo.insertCalls != 0 {
		t.Errorf("insert must not run after a failed upload, got %d calls", repo.insertCalls)
	}
	if len(notify.notices) == 0 {
		t.Error("expected an upload failure notice")
	}
}

func TestFeedService_ToggleLike_DoubleToggle(t *testing.T) {
	repo := &mockPostRepository{}
	counts := []int{1, 0}
	repo.likeCountFn = func(ctx context.Context, postID string) (int, error) {
		n := counts[0]
		if len(counts) > 1 {
			counts = counts[1:]
		}
		return n, nil
	}
	svc, recent, _, renderer, _, _ := newFeedFixture(signedIn(), repo)
	recent.existsErr = errors.New("cache down")

	repo.recentFn = func(ctx context.Context, limit int) ([]model.Post, error) {
		return []model.Post{textPost("post-1", "user-2", "hi", time.Now())}, nil
	}
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if err := svc.ToggleLike(context.Background(), "post-1"); err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !svc.Records()[0].LikedByMe || svc.Records()[0].LikeCount != 1 {
		t.Errorf("after like: likedByMe=%v count=%d", svc.Records()[0].LikedByMe, svc.Records()[0].LikeCount)
	}

	if err := svc.ToggleLike(context.Background(), "post-1"); err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if svc.Records()[0].LikedByMe || svc.Records()[0].LikeCount != 0 {
		t.Errorf("after unlike: likedByMe=%v count=%d", svc.Records()[0].LikedByMe, svc.Records()[0].LikeCount)
	}

	if repo.likeCalls != 1 || repo.unlikeCalls != 1 {
		t.Errorf("like=%d unlike=%d, want 1 and 1", repo.likeCalls, repo.unlikeCalls)
	}
	if renderer.last() != "like:post-1" {
		t.Errorf("renderer event = %q, want like patch", renderer.last())
	}
}

func TestFeedService_ToggleLike_NotSignedIn(t *testing.T) {
	repo := &mockPostRepository{}
	svc, _, _, _, _, _ := newFeedFixture(&fakeViewer{}, repo)

	err := svc.ToggleLike(context.Background(), "post-1")

	if !errors.Is(err, model.ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}
	if repo.likeCalls != 0 && repo.unlikeCalls != 0 {
		t.Error("unauthenticated toggle must not reach the collaborator")
	}
}

func TestFeedService_AddComment(t *testing.T) {
	repo := &mockPostRepository{}
	svc, recent, _, renderer, _, _ := newFeedFixture(signedIn(), repo)
	recent.existsErr = errors.New("cache down")
	repo.recentFn = func(ctx context.Context, limit int) ([]model.Post, error) {
		return []model.Post{textPost("post-1", "user-2", "hi", time.Now())}, nil
	}
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if err := svc.AddComment(context.Background(), "post-1", "  "); !errors.Is(err, model.ErrEmptyComment) {
		t.Fatalf("expected ErrEmptyComment, got %v", err)
	}
	if repo.commentCalls != 0 {
		t.Error("empty comment must not reach the collaborator")
	}

	if err := svc.AddComment(context.Background(), "post-1", "nice one"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	rec := svc.Records()[0]
	if rec.CommentCount != 1 || len(rec.Comments) != 1 {
		t.Errorf("comment count = %d, comments = %d, want 1 and 1", rec.CommentCount, len(rec.Comments))
	}
	if rec.Comments[0].Text != "nice one" {
		t.Errorf("comment text = %q", rec.Comments[0].Text)
	}
	if renderer.last() != "comment:post-1" {
		t.Errorf("renderer event = %q, want comment patch", renderer.last())
	}
}

func TestFeedService_DeletePost_LastPostRefreshesToEmpty(t *testing.T) {
	repo := &mockPostRepository{}
	svc, recent, _, renderer, _, _ := newFeedFixture(signedIn(), repo)
	recent.existsErr = errors.New("cache down")

	first := true
	repo.recentFn = func(ctx context.Context, limit int) ([]model.Post, error) {
		if first {
			first = false
			return []model.Post{textPost("post-1", "user-1", "mine", time.Now())}, nil
		}
		return nil, nil
	}
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if err := svc.DeletePost(context.Background(), "post-1"); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}

	if repo.deleteCalls != 1 {
		t.Errorf("delete calls = %d, want 1", repo.deleteCalls)
	}
	if len(recent.removed) != 1 || recent.removed[0] != "post-1" {
		t.Errorf("cache removals = %v", recent.removed)
	}
	if renderer.last() != "empty" {
		t.Errorf("renderer end state = %q, want empty after refresh", renderer.last())
	}
	if len(svc.Records()) != 0 {
		t.Errorf("records = %d, want 0", len(svc.Records()))
	}
}

func TestFeedService_DeletePost_Declined(t *testing.T) {
	repo := &mockPostRepository{}
	svc, recent, _, _, _, confirm := newFeedFixture(signedIn(), repo)
	recent.existsErr = errors.New("cache down")
	confirm.answer = false
	repo.recentFn = func(ctx context.Context, limit int) ([]model.Post, error) {
		return []model.Post{textPost("post-1", "user-1", "mine", time.Now())}, nil
	}
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if err := svc.DeletePost(context.Background(), "post-1"); err != nil {
		t.Fatalf("declined delete should be a no-op, got %v", err)
	}
	if confirm.asked != 1 {
		t.Errorf("confirm asked = %d, want 1", confirm.asked)
	}
	if repo.deleteCalls != 0 {
		t.Error("declined delete must not reach the collaborator")
	}
	if len(svc.Records()) != 1 {
		t.Error("declined delete must keep the rendered entry")
	}
}

func TestFeedService_DeletePost_NotMine(t *testing.T) {
	repo := &mockPostRepository{}
	svc, recent, _, _, _, confirm := newFeedFixture(signedIn(), repo)
	recent.existsErr = errors.New("cache down")
	repo.recentFn = func(ctx context.Context, limit int) ([]model.Post, error) {
		return []model.Post{textPost("post-1", "user-2", "theirs", time.Now())}, nil
	}
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	err := svc.DeletePost(context.Background(), "post-1")

	if !errors.Is(err, model.ErrNotPostAuthor) {
		t.Fatalf("expected ErrNotPostAuthor, got %v", err)
	}
	if confirm.asked != 0 || repo.deleteCalls != 0 {
		t.Error("foreign post delete must stop before confirmation")
	}
}

func TestFeedService_CreatePost_RepaintsSidebar(t *testing.T) {
	repo := &mockPostRepository{}
	svc, _, _, _, _, _ := newFeedFixture(signedIn(), repo)
	header := &fakeHeader{}
	svc.AttachHeader(header)

	if err := svc.CreatePost(context.Background(), "Hello", nil); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if header.refreshes != 1 {
		t.Errorf("sidebar repaints = %d, want 1 after publish", header.refreshes)
	}

	// A rejected composer must not touch the sidebar.
	_ = svc.CreatePost(context.Background(), "  ", nil)
	if header.refreshes != 1 {
		t.Errorf("sidebar repaints = %d, want still 1 after a rejected publish", header.refreshes)
	}
}

func TestFeedService_DeletePost_RemovesStoredMedia(t *testing.T) {
	repo := &mockPostRepository{}
	svc, recent, media, _, _, _ := newFeedFixture(signedIn(), repo)
	header := &fakeHeader{}
	svc.AttachHeader(header)
	recent.existsErr = errors.New("cache down")

	mediaURL := "https://cdn.example/posts/user-1/1.png"
	mediaKind := model.MediaImage
	repo.recentFn = func(ctx context.Context, limit int) ([]model.Post, error) {
		p := textPost("post-1", "user-1", "mine", time.Now())
		p.MediaURL = &mediaURL
		p.MediaKind = &mediaKind
		return []model.Post{p}, nil
	}
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if err := svc.DeletePost(context.Background(), "post-1"); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}

	if len(media.deleted) != 1 || media.deleted[0] != mediaURL {
		t.Errorf("object deletions = %v, want the post's media URL", media.deleted)
	}
	if header.refreshes != 1 {
		t.Errorf("sidebar repaints = %d, want 1 after delete", header.refreshes)
	}
}

func TestFeedService_Refresh_WarmsCacheOnMiss(t *testing.T) {
	repo := &mockPostRepository{}
	now := time.Now()
	repo.recentScoresFn = func(ctx context.Context, limit int) ([]cache.PostScore, error) {
		return []cache.PostScore{
			{PostID: "post-2", Timestamp: now.Unix()},
			{PostID: "post-1", Timestamp: now.Add(-time.Hour).Unix()},
		}, nil
	}
	var requested []string
	repo.getByIDsFn = func(ctx context.Context, ids []string) ([]model.Post, error) {
		requested = ids
		posts := make([]model.Post, 0, len(ids))
		for _, id := range ids {
			posts = append(posts, textPost(id, "user-2", "p", now))
		}
		return posts, nil
	}
	svc, recent, _, renderer, _, _ := newFeedFixture(signedIn(), repo)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if !recent.warmed {
		t.Error("cache miss should warm from the row store")
	}
	if len(requested) != 2 {
		t.Fatalf("hydration ids = %v, want 2", requested)
	}
	if renderer.last() != "posts" {
		t.Errorf("renderer end state = %q, want posts", renderer.last())
	}
	if len(svc.Records()) != 2 {
		t.Errorf("records = %d, want 2", len(svc.Records()))
	}
}

func TestFeedService_Refresh_CacheDownFallsBack(t *testing.T) {
	repo := &mockPostRepository{}
	repo.recentFn = func(ctx context.Context, limit int) ([]model.Post, error) {
		if limit != model.FeedLimit {
			t.Errorf("fallback limit = %d, want %d", limit, model.FeedLimit)
		}
		return []model.Post{textPost("post-1", "user-2", "p", time.Now())}, nil
	}
	svc, recent, _, renderer, _, _ := newFeedFixture(signedIn(), repo)
	recent.existsErr = errors.New("connection refused")

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if renderer.last() != "posts" {
		t.Errorf("renderer end state = %q, want posts despite cache outage", renderer.last())
	}
}
