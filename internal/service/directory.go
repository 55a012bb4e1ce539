package service

import (
	"context"
	"strings"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/repository"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/view"
)

// DirectoryService backs the people surfaces: the sidebar grid, the full
// list and search. The viewer is always excluded from results.
type DirectoryService struct {
	state    Viewer
	profiles repository.ProfileRepository
	renderer view.DirectoryRenderer
}

func NewDirectoryService(state Viewer, profiles repository.ProfileRepository, renderer view.DirectoryRenderer) *DirectoryService {
	return &DirectoryService{
		state:    state,
		profiles: profiles,
		renderer: renderer,
	}
}

// Refresh repaints the sidebar grid of up to six people.
func (s *DirectoryService) Refresh(ctx context.Context) error {
	summaries, err := s.profiles.List(ctx, s.state.MeID(), model.UsersGridLimit)
	if err != nil {
		return err
	}
	s.renderer.ShowGrid(s.cards(summaries))
	return nil
}

// ShowAll lists every profile except the viewer.
func (s *DirectoryService) ShowAll(ctx context.Context) error {
	summaries, err := s.profiles.List(ctx, s.state.MeID(), 0)
	if err != nil {
		return err
	}
	s.renderer.ShowAll(s.cards(summaries))
	return nil
}

// Search matches a substring across name, lastname and username. A blank
// query falls back to the full list.
func (s *DirectoryService) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ShowAll(ctx)
	}
	summaries, err := s.profiles.Search(ctx, s.state.MeID(), query)
	if err != nil {
		return err
	}
	s.renderer.ShowSearch(s.cards(summaries))
	return nil
}

func (s *DirectoryService) cards(summaries []model.ProfileSummary) []view.UserCard {
	cards := make([]view.UserCard, 0, len(summaries))
	for _, p := range summaries {
		cards = append(cards, view.BuildUserCard(p))
	}
	return cards
}
