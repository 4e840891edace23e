package admission

import (
	"context"

	"github.com/baechuer/eventboard/internal/domain"
	"github.com/google/uuid"
)

// Cancel is requester-only and idempotent. A confirmed request frees its
// slot: the counter decrement and the status change commit together.
func (s *Service) Cancel(ctx context.Context, requestID, requesterID uuid.UUID) (*domain.ParticipationRequest, error) {
	ref, err := s.store.RequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if ref.RequesterID != requesterID {
		// Hide existence from non-owners.
		return nil, domain.ErrNotFound("request not found")
	}

	var out *domain.ParticipationRequest
	err = s.store.InEventTx(ctx, ref.EventID, func(tx domain.EventTx) error {
		r, err := tx.RequestByID(requestID)
		if err != nil {
			return err
		}
		if r.Status == domain.RequestCanceled {
			out = r
			return nil
		}

		now := s.clock.Now()
		if r.Status == domain.RequestConfirmed {
			e := tx.Event()
			if e.ConfirmedRequests > 0 {
				e.ConfirmedRequests--
			}
			if err := tx.UpdateEvent(e); err != nil {
				return err
			}
		}

		r.Cancel(now)
		if err := tx.UpdateRequest(r); err != nil {
			return err
		}
		tx.Emit(RKRequestCanceled, statusPayload(r, now))
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.aud != nil {
		s.aud.RequestCanceled(ctx, out.ID, out.EventID, out.RequesterID)
	}
	return out, nil
}
