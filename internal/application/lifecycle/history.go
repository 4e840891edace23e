package lifecycle

import (
	"context"

	"github.com/baechuer/eventboard/internal/domain"
	"github.com/google/uuid"
)

// History returns the event's moderation log, newest first. Pagination is
// validated before any read; an absent event is NotFound.
func (s *Service) History(ctx context.Context, eventID uuid.UUID, from, size int) ([]domain.ModerationLogEntry, error) {
	page, err := domain.NewPage(from, size)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.EventByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.ModerationHistory(ctx, eventID, page)
}
