package lifecycle

import (
	"time"

	"github.com/baechuer/eventboard/internal/domain"
)

// Routing keys for domain events staged through the store's outbox.
const (
	RKEventPublished = "event.published"
	RKEventRejected  = "event.rejected"
)

// EventStatePayload is the stable contract for event.* routing keys.
type EventStatePayload struct {
	EventID          string    `json:"event_id"`
	InitiatorID      string    `json:"initiator_id"`
	State            string    `json:"state"`
	EventDate        time.Time `json:"event_date"`
	ParticipantLimit int       `json:"participant_limit"`
	Note             string    `json:"note,omitempty"`
}

func statePayload(e *domain.Event, note string) EventStatePayload {
	return EventStatePayload{
		EventID:          e.ID.String(),
		InitiatorID:      e.InitiatorID.String(),
		State:            string(e.State),
		EventDate:        e.EventDate,
		ParticipantLimit: e.ParticipantLimit,
		Note:             note,
	}
}
