package admission

import (
	"context"

	"github.com/baechuer/eventboard/internal/domain"
	"github.com/google/uuid"
)

type BulkCmd struct {
	OrganizerID uuid.UUID
	EventID     uuid.UUID

	// RequestIDs order is authoritative: when capacity runs out mid-batch,
	// earlier-listed requests win the remaining slots.
	RequestIDs []uuid.UUID
	Target     domain.RequestStatus
}

type BulkResult struct {
	Confirmed []domain.ParticipationRequest
	Rejected  []domain.ParticipationRequest
}

// BulkUpdate moves a batch of pending requests to CONFIRMED or REJECTED on
// behalf of the organizer. Preconditions are validated against the whole
// batch before anything mutates; the only partial outcome is the documented
// capacity overflow, where requests past the last free slot are forced to
// REJECTED in listed order.
func (s *Service) BulkUpdate(ctx context.Context, cmd BulkCmd) (*BulkResult, error) {
	if len(cmd.RequestIDs) == 0 {
		return nil, domain.ErrValidation("request_ids must not be empty")
	}
	seen := make(map[uuid.UUID]struct{}, len(cmd.RequestIDs))
	for _, id := range cmd.RequestIDs {
		if id == uuid.Nil {
			return nil, domain.ErrValidation("request_ids must not contain null ids")
		}
		// A repeated id would resolve to independent copies of one row and
		// let a single requester consume several slots.
		if _, dup := seen[id]; dup {
			return nil, domain.ErrValidation("request_ids must not contain duplicates")
		}
		seen[id] = struct{}{}
	}
	if cmd.Target != domain.RequestConfirmed && cmd.Target != domain.RequestRejected {
		return nil, domain.ErrValidation("status must be CONFIRMED or REJECTED")
	}

	res := &BulkResult{}
	err := s.store.InEventTx(ctx, cmd.EventID, func(tx domain.EventTx) error {
		e := tx.Event()
		if e.InitiatorID != cmd.OrganizerID {
			return domain.ErrConflict("caller is not the event initiator")
		}

		batch := make([]*domain.ParticipationRequest, 0, len(cmd.RequestIDs))
		for _, id := range cmd.RequestIDs {
			r, err := tx.RequestByID(id)
			if err != nil {
				return err
			}
			if r.EventID != e.ID {
				return domain.ErrNotFound("request not found")
			}
			batch = append(batch, r)
		}
		for _, r := range batch {
			if r.Status != domain.RequestPending {
				return domain.ErrConflict("only pending requests can be updated")
			}
		}

		now := s.clock.Now()

		switch {
		case e.AdmitsUnmoderated():
			// Unlimited or unmoderated events take the whole batch; no
			// capacity gate applies.
			for _, r := range batch {
				r.Confirm(now)
				res.Confirmed = append(res.Confirmed, *r)
			}
			e.ConfirmedRequests += len(batch)

		case cmd.Target == domain.RequestRejected:
			for _, r := range batch {
				r.Reject(now)
				res.Rejected = append(res.Rejected, *r)
			}

		default:
			if e.Full() {
				return domain.ErrConflict("participant limit reached")
			}
			for _, r := range batch {
				if !e.Full() {
					r.Confirm(now)
					e.ConfirmedRequests++
					res.Confirmed = append(res.Confirmed, *r)
				} else {
					r.Reject(now)
					res.Rejected = append(res.Rejected, *r)
				}
			}
		}

		if err := tx.UpdateEvent(e); err != nil {
			return err
		}
		for _, r := range batch {
			if err := tx.UpdateRequest(r); err != nil {
				return err
			}
			switch r.Status {
			case domain.RequestConfirmed:
				tx.Emit(RKRequestConfirmed, statusPayload(r, now))
			case domain.RequestRejected:
				tx.Emit(RKRequestRejected, statusPayload(r, now))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.aud != nil {
		s.aud.BulkDecided(ctx, cmd.EventID, cmd.OrganizerID, len(res.Confirmed), len(res.Rejected))
	}
	return res, nil
}
