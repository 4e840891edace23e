package lifecycle

import (
	"context"
	"time"

	"github.com/baechuer/eventboard/internal/domain"
	"github.com/google/uuid"
)

type CreateCmd struct {
	InitiatorID uuid.UUID
	CategoryID  uuid.UUID

	Title             string
	Description       string
	EventDate         time.Time
	ParticipantLimit  int
	RequestModeration bool
}

func (s *Service) Create(ctx context.Context, cmd CreateCmd) (*domain.Event, error) {
	ok, err := s.users.Exists(ctx, cmd.InitiatorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound("user not found")
	}

	ok, err = s.categories.Exists(ctx, cmd.CategoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound("category not found")
	}

	e, err := domain.NewEvent(
		cmd.InitiatorID, cmd.CategoryID,
		cmd.Title, cmd.Description, cmd.EventDate,
		cmd.ParticipantLimit, cmd.RequestModeration,
		s.clock.Now(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateEvent(ctx, e); err != nil {
		return nil, err
	}

	if s.aud != nil {
		s.aud.EventCreated(ctx, e.ID, e.InitiatorID)
	}
	return e, nil
}
