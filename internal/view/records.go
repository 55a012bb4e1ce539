package view

import (
	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
)

// PostRecord is the display record the feed renderer consumes. It is
// produced from denormalized rows plus the viewer's identity and carries
// everything a renderer needs; renderers never touch model types.
type PostRecord struct {
	ID           string
	AuthorName   string
	AuthorAvatar string
	When         string
	Text         string
	MediaURL     string
	MediaKind    string
	LikeCount    int
	LikedByMe    bool
	IsMine       bool
	CommentCount int
	Comments     []CommentRecord
	Share        ShareLinks
}

// CommentRecord is a rendered comment line.
type CommentRecord struct {
	Who  string
	Text string
	When string
}

// LikeLabel is the action label for the like control, derived from the
// rendered state.
func (r PostRecord) LikeLabel() string {
	if r.LikedByMe {
		return "Unlike"
	}
	return "Like"
}

// UserCard is a directory entry.
type UserCard struct {
	ID       string
	FullName string
	Username string
	Avatar   string
}

// ScrapRecord is a rendered scrap-wall entry.
type ScrapRecord struct {
	Who  string
	Text string
	When string
}

// BirthdayRecord names someone whose birthday falls today.
type BirthdayRecord struct {
	FullName string
	Username string
}

// PromoStats feeds the counters shown on the unauthenticated page.
type PromoStats struct {
	Users int
	Posts int
}

// AppHeader is the sidebar identity block on the authenticated page.
type AppHeader struct {
	FullName  string
	Username  string
	AvatarURL string
	Bio       string
	City      string
	Country   string
	PostCount int
}

// BuildPostRecord turns a hydrated post row into a display record.
// viewerID may be empty for an unauthenticated viewer.
func BuildPostRecord(p model.Post, viewerID string) PostRecord {
	rec := PostRecord{
		ID:        p.ID,
		When:      FormatTime(p.CreatedAt),
		LikeCount: len(p.LikerIDs),
		IsMine:    viewerID != "" && p.AuthorID == viewerID,
	}
	if p.Text != nil {
		rec.Text = *p.Text
	}
	if p.HasMedia() {
		rec.MediaURL = *p.MediaURL
		rec.MediaKind = *p.MediaKind
	}
	if p.Author != nil {
		rec.AuthorName = FullName(p.Author.Name, p.Author.Lastname)
		rec.AuthorAvatar = AvatarURL(p.Author.AvatarURL, p.Author.Name, p.Author.Lastname)
	}
	for _, id := range p.LikerIDs {
		if viewerID != "" && id == viewerID {
			rec.LikedByMe = true
			break
		}
	}
	rec.CommentCount = len(p.Comments)
	for _, c := range p.Comments {
		rec.Comments = append(rec.Comments, BuildCommentRecord(c))
	}
	rec.Share = BuildShareLinks(p.ID, rec.Text)
	return rec
}

// BuildPostRecords maps rows preserving order.
func BuildPostRecords(posts []model.Post, viewerID string) []PostRecord {
	records := make([]PostRecord, 0, len(posts))
	for _, p := range posts {
		records = append(records, BuildPostRecord(p, viewerID))
	}
	return records
}

func BuildCommentRecord(c model.Comment) CommentRecord {
	rec := CommentRecord{
		Text: c.Text,
		When: FormatTime(c.CreatedAt),
	}
	if c.Author != nil {
		rec.Who = FullName(c.Author.Name, c.Author.Lastname)
	}
	return rec
}

// BuildUserCard maps a profile summary to a directory entry.
func BuildUserCard(p model.ProfileSummary) UserCard {
	return UserCard{
		ID:       p.ID,
		FullName: FullName(p.Name, p.Lastname),
		Username: p.Username,
		Avatar:   AvatarURL(p.AvatarURL, p.Name, p.Lastname),
	}
}

func BuildScrapRecord(s model.Scrap) ScrapRecord {
	rec := ScrapRecord{
		Text: s.Text,
		When: FormatTime(s.CreatedAt),
	}
	if s.Author != nil {
		rec.Who = FullName(s.Author.Name, s.Author.Lastname)
	}
	return rec
}
