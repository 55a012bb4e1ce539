package view

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"
)

// PlaceholderAvatarBase is the generated-avatar service used when a
// profile has no uploaded picture.
const PlaceholderAvatarBase = "https://placehold.co/100x100/003399/ffffff"

// FullName joins name and lastname, tolerating either being empty.
func FullName(name, lastname string) string {
	full := strings.TrimSpace(name + " " + lastname)
	if full == "" {
		return "Someone"
	}
	return full
}

// Initials derives up to two uppercase initials for placeholder avatars.
func Initials(name, lastname string) string {
	var b strings.Builder
	for _, part := range []string{name, lastname} {
		for _, r := range part {
			if unicode.IsLetter(r) {
				b.WriteRune(unicode.ToUpper(r))
				break
			}
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}

// AvatarURL returns the stored avatar or a generated placeholder carrying
// the user's initials.
func AvatarURL(avatar *string, name, lastname string) string {
	if avatar != nil && *avatar != "" {
		return *avatar
	}
	return fmt.Sprintf("%s?text=%s", PlaceholderAvatarBase, url.QueryEscape(Initials(name, lastname)))
}

// FormatTime renders timestamps the way the feed shows them.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2 Jan 2006 15:04")
}

// ShareLinks are prebuilt share URLs for a post. Building them is pure
// string work; no network happens until the user follows one.
type ShareLinks struct {
	WhatsApp string
	Twitter  string
	Facebook string
	Telegram string
}

// shareBase is the canonical public URL for a post.
const shareBase = "https://eggsweb.app/post/"

// BuildShareLinks composes share URLs for the given post.
func BuildShareLinks(postID, text string) ShareLinks {
	postURL := shareBase + postID
	caption := text
	if caption == "" {
		caption = "Check out this post on EggsWeb"
	}
	encodedURL := url.QueryEscape(postURL)
	encodedText := url.QueryEscape(caption)
	return ShareLinks{
		WhatsApp: fmt.Sprintf("https://wa.me/?text=%s%%20%s", encodedText, encodedURL),
		Twitter:  fmt.Sprintf("https://twitter.com/intent/tweet?text=%s&url=%s", encodedText, encodedURL),
		Facebook: fmt.Sprintf("https://www.facebook.com/sharer/sharer.php?u=%s", encodedURL),
		Telegram: fmt.Sprintf("https://t.me/share/url?url=%s&text=%s", encodedURL, encodedText),
	}
}
