package admission

import (
	"context"
	"errors"

	"github.com/baechuer/eventboard/internal/domain"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// Create admits a new participation request. Order of checks follows the
// admission protocol: existence, self-participation, published state,
// duplicate, capacity. When moderation is off or the event is unlimited the
// request auto-confirms and the counter moves in the same transaction.
func (s *Service) Create(ctx context.Context, eventID, requesterID uuid.UUID) (*domain.ParticipationRequest, error) {
	ok, err := s.users.Exists(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound("user not found")
	}

	// Cache fast-fail: a rejected event can never take requests again, so a
	// cached CANCELED answer saves the lock round-trip. Anything else falls
	// through to the authoritative check under the event lock.
	if s.cache != nil {
		state, err := s.cache.GetEventState(ctx, eventID)
		switch {
		case err == nil && state == domain.StateCanceled:
			return nil, domain.ErrConflict("event is not published")
		case err != nil && !errors.Is(err, domain.ErrCacheMiss):
			zlog.Debug().Err(err).Msg("state cache read failed")
		}
	}

	var out *domain.ParticipationRequest
	err = s.store.InEventTx(ctx, eventID, func(tx domain.EventTx) error {
		e := tx.Event()
		now := s.clock.Now()

		if e.InitiatorID == requesterID {
			return domain.ErrConflict("initiator cannot request own event")
		}
		if e.State != domain.StatePublished {
			return domain.ErrConflict("event is not published")
		}
		dup, err := tx.HasActiveRequest(requesterID)
		if err != nil {
			return err
		}
		if dup {
			return domain.ErrConflict("request already exists")
		}
		if e.Full() {
			return domain.ErrConflict("participant limit reached")
		}

		r := domain.NewRequest(eventID, requesterID, now)
		if e.AdmitsUnmoderated() {
			r.Confirm(now)
			e.ConfirmedRequests++
			if err := tx.UpdateEvent(e); err != nil {
				return err
			}
			tx.Emit(RKRequestConfirmed, statusPayload(r, now))
		} else {
			tx.Emit(RKRequestCreated, statusPayload(r, now))
		}
		if err := tx.InsertRequest(r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.aud != nil {
		s.aud.RequestCreated(ctx, out.ID, out.EventID, out.RequesterID, string(out.Status))
	}
	return out, nil
}
