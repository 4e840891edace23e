package lifecycle

import (
	"context"

	"github.com/baechuer/eventboard/internal/domain"
	"github.com/google/uuid"
)

type OwnerUpdateCmd struct {
	EventID     uuid.UUID
	RequesterID uuid.UUID

	Patch       domain.EventPatch
	StateAction *domain.StateAction
}

// UpdateByOwner lets the initiator edit a not-yet-published event and move it
// between review states. A requester who does not own the event gets NotFound,
// never a distinct "forbidden", so ownership cannot be probed.
func (s *Service) UpdateByOwner(ctx context.Context, cmd OwnerUpdateCmd) (*domain.Event, error) {
	if cmd.StateAction != nil && !cmd.StateAction.ValidForOwner() {
		return nil, domain.ErrValidation("state_action must be SEND_TO_REVIEW or CANCEL_REVIEW")
	}

	var out *domain.Event
	err := s.store.InEventTx(ctx, cmd.EventID, func(tx domain.EventTx) error {
		e := tx.Event()
		if e.InitiatorID != cmd.RequesterID {
			return domain.ErrNotFound("event not found")
		}
		if err := e.UpdateByOwner(cmd.Patch, cmd.StateAction, s.clock.Now()); err != nil {
			return err
		}
		if err := tx.UpdateEvent(e); err != nil {
			return err
		}
		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
