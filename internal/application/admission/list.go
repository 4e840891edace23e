package admission

import (
	"context"

	"github.com/baechuer/eventboard/internal/domain"
	"github.com/google/uuid"
)

func (s *Service) ListForRequester(ctx context.Context, requesterID uuid.UUID) ([]domain.ParticipationRequest, error) {
	ok, err := s.users.Exists(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound("user not found")
	}
	return s.store.RequestsByRequester(ctx, requesterID)
}

// ListForEvent is organizer-only. A caller who is not the initiator gets
// NotFound rather than a forbidden error so they cannot probe for the
// event's existence.
func (s *Service) ListForEvent(ctx context.Context, organizerID, eventID uuid.UUID) ([]domain.ParticipationRequest, error) {
	e, err := s.store.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.InitiatorID != organizerID {
		return nil, domain.ErrNotFound("event not found")
	}
	return s.store.RequestsByEvent(ctx, eventID)
}
