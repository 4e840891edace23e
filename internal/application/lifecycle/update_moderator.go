package lifecycle

import (
	"context"

	"github.com/baechuer/eventboard/internal/domain"
	"github.com/google/uuid"
)

type ModeratorUpdateCmd struct {
	EventID uuid.UUID

	Patch       domain.EventPatch
	StateAction *domain.StateAction
	// Note is recorded in the moderation log; on reject a blank note falls
	// back to the default reason.
	Note string
}

func (s *Service) UpdateByModerator(ctx context.Context, cmd ModeratorUpdateCmd) (*domain.Event, error) {
	if cmd.StateAction != nil && !cmd.StateAction.ValidForModerator() {
		return nil, domain.ErrValidation("state_action must be PUBLISH_EVENT or REJECT_EVENT")
	}

	var out *domain.Event
	err := s.store.InEventTx(ctx, cmd.EventID, func(tx domain.EventTx) error {
		e := tx.Event()
		now := s.clock.Now()

		if err := e.UpdateByModerator(cmd.Patch, cmd.StateAction, cmd.Note, now); err != nil {
			return err
		}
		if err := tx.UpdateEvent(e); err != nil {
			return err
		}

		if cmd.StateAction != nil {
			switch *cmd.StateAction {
			case domain.ActionPublishEvent:
				if err := tx.AppendModeration(domain.NewModerationLogEntry(e.ID, domain.ModerationPublish, cmd.Note, now)); err != nil {
					return err
				}
				tx.Emit(RKEventPublished, statePayload(e, ""))
			case domain.ActionRejectEvent:
				if err := tx.AppendModeration(domain.NewModerationLogEntry(e.ID, domain.ModerationReject, e.ModerationNote, now)); err != nil {
					return err
				}
				tx.Emit(RKEventRejected, statePayload(e, e.ModerationNote))
			}
		}

		out = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cmd.StateAction != nil {
		s.seedStateCache(ctx, out)
		if s.aud != nil {
			s.aud.EventModerated(ctx, out.ID, string(out.State), out.ModerationNote)
		}
	}
	return out, nil
}
