package view

// FeedRenderer is the presentation side of the feed. The feed service
// computes records and list mutations; a renderer only paints them.
// Mutating calls are localized: they touch the named entry, never the
// whole list.
type FeedRenderer interface {
	ShowLoading()
	ShowError(err error)
	ShowEmpty()
	ShowPosts(records []PostRecord)
	PrependPost(rec PostRecord)
	UpdateLike(rec PostRecord)
	AppendComment(postID string, c CommentRecord, total int)
	RemovePost(postID string)
}

// PageRenderer paints the two top-level pages.
type PageRenderer interface {
	ShowLogin(promo PromoStats)
	ShowApp(hdr AppHeader)
}

// DirectoryRenderer paints the people surfaces.
type DirectoryRenderer interface {
	ShowGrid(cards []UserCard)
	ShowAll(cards []UserCard)
	ShowSearch(cards []UserCard)
}

// ScrapRenderer paints the scrap wall.
type ScrapRenderer interface {
	ShowScraps(records []ScrapRecord)
}

// BirthdayRenderer paints today's birthdays.
type BirthdayRenderer interface {
	ShowBirthdays(records []BirthdayRecord)
}

// ProfileRenderer paints the profile panel.
type ProfileRenderer interface {
	ShowProfile(hdr AppHeader, overview []PostRecord)
}

// Notifier surfaces one-line notices to the user.
type Notifier interface {
	Notify(msg string)
}

// Confirmer asks a yes/no question before a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}
