package service

import (
	"context"
	"time"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/repository"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/view"
)

// BirthdayService lists the people whose stored date of birth ends with
// today's "-MM-DD" suffix. The match is textual on the stored string, so
// the year part never participates.
type BirthdayService struct {
	profiles repository.ProfileRepository
	renderer view.BirthdayRenderer
	now      func() time.Time
}

func NewBirthdayService(profiles repository.ProfileRepository, renderer view.BirthdayRenderer) *BirthdayService {
	return &BirthdayService{
		profiles: profiles,
		renderer: renderer,
		now:      time.Now,
	}
}

// MonthDay formats a time as the "MM-DD" suffix used for matching.
func MonthDay(t time.Time) string {
	return t.Format("01-02")
}

// Refresh repaints today's birthdays.
func (s *BirthdayService) Refresh(ctx context.Context) error {
	summaries, err := s.profiles.WithBirthday(ctx, MonthDay(s.now()))
	if err != nil {
		return err
	}
	records := make([]view.BirthdayRecord, 0, len(summaries))
	for _, p := range summaries {
		records = append(records, view.BirthdayRecord{
			FullName: view.FullName(p.Name, p.Lastname),
			Username: p.Username,
		})
	}
	s.renderer.ShowBirthdays(records)
	return nil
}
