package domain

import (
	"time"

	"github.com/google/uuid"
)

type ModerationAction string

const (
	ModerationPublish ModerationAction = "PUBLISH"
	ModerationReject  ModerationAction = "REJECT"
)

func (a ModerationAction) Valid() bool {
	return a == ModerationPublish || a == ModerationReject
}

// ModerationLogEntry is append-only. Seq is assigned by the store and is
// strictly increasing per event, so (ActedOn desc, Seq desc) gives a stable
// newest-first ordering even when two actions share a timestamp.
type ModerationLogEntry struct {
	ID      uuid.UUID
	EventID uuid.UUID
	Action  ModerationAction
	Note    string
	ActedOn time.Time
	Seq     int64
}

func NewModerationLogEntry(eventID uuid.UUID, action ModerationAction, note string, now time.Time) *ModerationLogEntry {
	return &ModerationLogEntry{
		ID:      uuid.New(),
		EventID: eventID,
		Action:  action,
		Note:    note,
		ActedOn: now.UTC(),
	}
}
