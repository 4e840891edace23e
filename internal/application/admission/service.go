// Package admission decides whether participation requests become confirmed,
// pending, or rejected, and owns every mutation of the shared confirmed
// counter. All capacity-affecting paths run inside the store's per-event
// transaction so concurrent requests near the limit cannot overbook.
package admission

import (
	"time"

	"github.com/baechuer/eventboard/internal/audit"
	"github.com/baechuer/eventboard/internal/domain"
)

type Service struct {
	store domain.Store
	users domain.UserDirectory
	cache domain.StateCache
	clock domain.Clock
	aud   *audit.Logger
}

func New(store domain.Store, users domain.UserDirectory, cache domain.StateCache, clock domain.Clock, aud *audit.Logger) *Service {
	return &Service{
		store: store,
		users: users,
		cache: cache,
		clock: clock,
		aud:   aud,
	}
}

// Routing keys for request lifecycle events.
const (
	RKRequestCreated   = "request.created"
	RKRequestConfirmed = "request.confirmed"
	RKRequestRejected  = "request.rejected"
	RKRequestCanceled  = "request.canceled"
)

// RequestStatusPayload is the contract for request.* routing keys.
type RequestStatusPayload struct {
	RequestID   string    `json:"request_id"`
	EventID     string    `json:"event_id"`
	RequesterID string    `json:"requester_id"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func statusPayload(r *domain.ParticipationRequest, at time.Time) RequestStatusPayload {
	return RequestStatusPayload{
		RequestID:   r.ID.String(),
		EventID:     r.EventID.String(),
		RequesterID: r.RequesterID.String(),
		Status:      string(r.Status),
		OccurredAt:  at.UTC(),
	}
}
