package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used outside tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UserDirectory and CategoryDirectory are existence checks against external
// collaborators; the core never reads anything else from them.
type UserDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type CategoryDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// EventTx is a unit of work holding the event's serialization point.
// Everything that touches ConfirmedRequests goes through one of these, so
// concurrent admissions for the same event cannot interleave.
type EventTx interface {
	// Event returns the locked event. Mutations become visible to other
	// transactions only after UpdateEvent + commit.
	Event() *Event

	UpdateEvent(e *Event) error

	RequestByID(id uuid.UUID) (*ParticipationRequest, error)
	// HasActiveRequest reports whether a non-canceled request by requesterID
	// exists for the locked event.
	HasActiveRequest(requesterID uuid.UUID) (bool, error)
	InsertRequest(r *ParticipationRequest) error
	UpdateRequest(r *ParticipationRequest) error

	AppendModeration(entry *ModerationLogEntry) error

	// Emit stages a domain event for delivery after commit (outbox row in
	// postgres). Staged events are dropped if the transaction rolls back.
	Emit(routingKey string, payload any)
}

// Store is the durable collaborator for events, requests and the moderation
// log. InEventTx returns ErrNotFound when the event is absent; the callback's
// error aborts the transaction with no side effects.
type Store interface {
	CreateEvent(ctx context.Context, e *Event) error
	EventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	InEventTx(ctx context.Context, eventID uuid.UUID, fn func(tx EventTx) error) error

	RequestByID(ctx context.Context, id uuid.UUID) (*ParticipationRequest, error)
	RequestsByRequester(ctx context.Context, requesterID uuid.UUID) ([]ParticipationRequest, error)
	RequestsByEvent(ctx context.Context, eventID uuid.UUID) ([]ParticipationRequest, error)

	ModerationHistory(ctx context.Context, eventID uuid.UUID, page Page) ([]ModerationLogEntry, error)
}

// StateCache is a best-effort hint used to fast-fail admissions against
// events known to be closed. It is never authoritative: the final decision
// always happens under the event lock.
type StateCache interface {
	GetEventState(ctx context.Context, eventID uuid.UUID) (EventState, error)
	SetEventState(ctx context.Context, eventID uuid.UUID, state EventState) error
}

var ErrCacheMiss = errors.New("cache miss")
