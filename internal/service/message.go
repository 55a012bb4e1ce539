package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/andresmiguel12354-maker/EggsWeb/internal/model"
	"github.com/andresmiguel12354-maker/EggsWeb/internal/repository"
)

// MessageService sends private messages addressed by username.
type MessageService struct {
	state    Viewer
	messages repository.MessageRepository
	profiles repository.ProfileRepository
}

func NewMessageService(state Viewer, messages repository.MessageRepository, profiles repository.ProfileRepository) *MessageService {
	return &MessageService{
		state:    state,
		messages: messages,
		profiles: profiles,
	}
}

// Send resolves the recipient by username and stores the message. An
// empty subject falls back to the default; an empty body is rejected
// before the recipient lookup.
func (s *MessageService) Send(ctx context.Context, toUsername, subject, body string) (*model.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, model.ErrEmptyMessage
	}

	me := s.state.Me()
	if me == nil {
		return nil, model.ErrNotSignedIn
	}

	recipient, err := s.profiles.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(toUsername)))
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			return nil, model.ErrRecipientNotFound
		}
		return nil, err
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = model.DefaultSubject
	}

	msg := &model.Message{
		FromID:  me.ID,
		ToID:    recipient.ID,
		Subject: subject,
		Body:    body,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}
	log.Printf("[Message] Send OK: from=%s to=%s", me.ID, recipient.ID)
	return msg, nil
}
