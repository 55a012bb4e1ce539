package service

import (
	"context"
	"strings"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/repository"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/view"
)

// ScrapService backs the public scrap wall. Unlike the feed, every write
// is followed by a full re-render of the wall.
type ScrapService struct {
	state    Viewer
	scraps   repository.ScrapRepository
	renderer view.ScrapRenderer
	notify   view.Notifier
}

func NewScrapService(state Viewer, scraps repository.ScrapRepository, renderer view.ScrapRenderer, notify view.Notifier) *ScrapService {
	return &ScrapService{
		state:    state,
		scraps:   scraps,
		renderer: renderer,
		notify:   notify,
	}
}

// Refresh repaints the newest scraps.
func (s *ScrapService) Refresh(ctx context.Context) error {
	scraps, err := s.scraps.Recent(ctx, model.ScrapWallLimit)
	if err != nil {
		return err
	}
	records := make([]view.ScrapRecord, 0, len(scraps))
	for _, sc := range scraps {
		records = append(records, view.BuildScrapRecord(sc))
	}
	s.renderer.ShowScraps(records)
	return nil
}

// Add posts a scrap and re-renders the wall.
func (s *ScrapService) Add(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ErrEmptyPost
	}

	me := s.state.Me()
	if me == nil {
		s.notify.Notify("Sign in to leave a scrap.")
		return model.ErrNotSignedIn
	}

	scrap := &model.Scrap{
		AuthorID: me.ID,
		Text:     text,
	}
	if err := s.scraps.Insert(ctx, scrap); err != nil {
		s.notify.Notify("Posting your scrap failed: " + err.Error())
		return err
	}
	return s.Refresh(ctx)
}
