// Package ui renders the view records on a terminal. Every renderer here
// writes plain text to an io.Writer; the view layer never depends on it.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/view"
)

// Terminal implements all renderer interfaces against one writer.
type Terminal struct {
	out io.Writer
	in  *bufio.Reader
}

func NewTerminal(out io.Writer, in io.Reader) *Terminal {
	return &Terminal{out: out, in: bufio.NewReader(in)}
}

func (t *Terminal) Notify(msg string) {
	fmt.Fprintf(t.out, "\n! %s\n", msg)
}

// Confirm asks a yes/no question. Anything but "y"/"yes" declines.
func (t *Terminal) Confirm(prompt string) bool {
	fmt.Fprintf(t.out, "%s [y/N] ", prompt)
	line, err := t.in.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (t *Terminal) ShowLogin(promo view.PromoStats) {
	fmt.Fprintln(t.out, "\n=== EggsWeb ===")
	fmt.Fprintf(t.out, "%d people sharing %d posts. Sign in or register.\n", promo.Users, promo.Posts)
}

func (t *Terminal) ShowApp(hdr view.AppHeader) {
	fmt.Fprintf(t.out, "\n=== EggsWeb: %s (@%s) ===\n", hdr.FullName, hdr.Username)
	if hdr.Bio != "" {
		fmt.Fprintf(t.out, "%s\n", hdr.Bio)
	}
	location := strings.TrimSpace(strings.Trim(hdr.City+", "+hdr.Country, ", "))
	if location != "" {
		fmt.Fprintf(t.out, "%s\n", location)
	}
	fmt.Fprintf(t.out, "posts: %d\n", hdr.PostCount)
}

func (t *Terminal) ShowLoading() {
	fmt.Fprintln(t.out, "\nLoading feed...")
}

func (t *Terminal) ShowError(err error) {
	fmt.Fprintf(t.out, "\nThe feed could not be loaded: %v\n", err)
}

func (t *Terminal) ShowEmpty() {
	fmt.Fprintln(t.out, "\nNo posts yet. Be the first to share something.")
}

func (t *Terminal) ShowPosts(records []view.PostRecord) {
	fmt.Fprintf(t.out, "\n--- Feed (%d) ---\n", len(records))
	for _, rec := range records {
		t.printPost(rec)
	}
}

func (t *Terminal) PrependPost(rec view.PostRecord) {
	fmt.Fprintln(t.out, "\nPublished:")
	t.printPost(rec)
}

func (t *Terminal) UpdateLike(rec view.PostRecord) {
	fmt.Fprintf(t.out, "[%s] likes: %d (%s)\n", rec.ID, rec.LikeCount, rec.LikeLabel())
}

func (t *Terminal) AppendComment(postID string, c view.CommentRecord, total int) {
	fmt.Fprintf(t.out, "[%s] %s: %s (comments: %d)\n", postID, c.Who, c.Text, total)
}

func (t *Terminal) RemovePost(postID string) {
	fmt.Fprintf(t.out, "[%s] deleted\n", postID)
}

func (t *Terminal) printPost(rec view.PostRecord) {
	fmt.Fprintf(t.out, "\n[%s] %s | %s\n", rec.ID, rec.AuthorName, rec.When)
	if rec.Text != "" {
		fmt.Fprintf(t.out, "  %s\n", rec.Text)
	}
	if rec.MediaURL != "" {
		fmt.Fprintf(t.out, "  (%s) %s\n", rec.MediaKind, rec.MediaURL)
	}
	fmt.Fprintf(t.out, "  likes: %d  comments: %d", rec.LikeCount, rec.CommentCount)
	if rec.IsMine {
		fmt.Fprint(t.out, "  [mine]")
	}
	fmt.Fprintln(t.out)
	for _, c := range rec.Comments {
		fmt.Fprintf(t.out, "    %s: %s\n", c.Who, c.Text)
	}
}

func (t *Terminal) ShowGrid(cards []view.UserCard) {
	fmt.Fprintf(t.out, "\n--- People (%d) ---\n", len(cards))
	t.printCards(cards)
}

func (t *Terminal) ShowAll(cards []view.UserCard) {
	fmt.Fprintf(t.out, "\n--- Everyone (%d) ---\n", len(cards))
	t.printCards(cards)
}

func (t *Terminal) ShowSearch(cards []view.UserCard) {
	fmt.Fprintf(t.out, "\n--- Search results (%d) ---\n", len(cards))
	t.printCards(cards)
}

func (t *Terminal) printCards(cards []view.UserCard) {
	for _, card := range cards {
		fmt.Fprintf(t.out, "  %s (@%s)\n", card.FullName, card.Username)
	}
}

func (t *Terminal) ShowScraps(records []view.ScrapRecord) {
	fmt.Fprintf(t.out, "\n--- Scrap wall (%d) ---\n", len(records))
	for _, rec := range records {
		fmt.Fprintf(t.out, "  %s | %s: %s\n", rec.When, rec.Who, rec.Text)
	}
}

func (t *Terminal) ShowBirthdays(records []view.BirthdayRecord) {
	if len(records) == 0 {
		fmt.Fprintln(t.out, "\nNo birthdays today.")
		return
	}
	fmt.Fprintln(t.out, "\n--- Birthdays today ---")
	for _, rec := range records {
		fmt.Fprintf(t.out, "  %s (@%s)\n", rec.FullName, rec.Username)
	}
}

func (t *Terminal) ShowProfile(hdr view.AppHeader, overview []view.PostRecord) {
	fmt.Fprintf(t.out, "\n--- Profile: %s (@%s) ---\n", hdr.FullName, hdr.Username)
	if hdr.Bio != "" {
		fmt.Fprintf(t.out, "%s\n", hdr.Bio)
	}
	fmt.Fprintf(t.out, "posts: %d\n", hdr.PostCount)
	for _, rec := range overview {
		t.printPost(rec)
	}
}
