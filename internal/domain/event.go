package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventState string

const (
	StatePending   EventState = "PENDING"
	StatePublished EventState = "PUBLISHED"
	StateCanceled  EventState = "CANCELED"
)

func (s EventState) Valid() bool {
	return s == StatePending || s == StatePublished || s == StateCanceled
}

// StateAction is the requested transition attached to an update call.
// Owner actions and moderator actions are separate closed sets so a handler
// cannot smuggle a moderator transition through the owner endpoint.
type StateAction string

const (
	ActionSendToReview StateAction = "SEND_TO_REVIEW"
	ActionCancelReview StateAction = "CANCEL_REVIEW"
	ActionPublishEvent StateAction = "PUBLISH_EVENT"
	ActionRejectEvent  StateAction = "REJECT_EVENT"
)

func (a StateAction) ValidForOwner() bool {
	return a == ActionSendToReview || a == ActionCancelReview
}

func (a StateAction) ValidForModerator() bool {
	return a == ActionPublishEvent || a == ActionRejectEvent
}

const (
	// Minimum gap between "now" and the event date at creation or when an
	// owner moves the date.
	CreateLeadTime = 2 * time.Hour
	// Minimum gap between publication and the event date.
	PublishLeadTime = 1 * time.Hour

	DefaultRejectReason = "rejected by moderator"

	maxTitleLen       = 120
	maxDescriptionLen = 7000
)

type Event struct {
	ID          uuid.UUID
	InitiatorID uuid.UUID
	CategoryID  uuid.UUID

	Title       string
	Description string
	EventDate   time.Time

	// ParticipantLimit == 0 means unlimited.
	ParticipantLimit int
	// ConfirmedRequests is shared mutable state: admission and cancellation
	// both touch it, always under the event's serialization point.
	ConfirmedRequests int
	RequestModeration bool

	State          EventState
	PublishedOn    *time.Time
	ModerationNote string

	CreatedOn time.Time
	UpdatedOn time.Time
}

func NewEvent(initiatorID, categoryID uuid.UUID, title, description string, eventDate time.Time, participantLimit int, requestModeration bool, now time.Time) (*Event, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if title == "" || len(title) > maxTitleLen {
		return nil, ErrValidation("title is required and must be <= 120 chars")
	}
	if description == "" || len(description) > maxDescriptionLen {
		return nil, ErrValidation("description is required and must be <= 7000 chars")
	}
	if participantLimit < 0 {
		return nil, ErrValidation("participant_limit must be >= 0 (0 means unlimited)")
	}
	if err := checkEventDate(eventDate, now); err != nil {
		return nil, err
	}

	return &Event{
		ID:                uuid.New(),
		InitiatorID:       initiatorID,
		CategoryID:        categoryID,
		Title:             title,
		Description:       description,
		EventDate:         eventDate.UTC(),
		ParticipantLimit:  participantLimit,
		RequestModeration: requestModeration,
		State:             StatePending,
		CreatedOn:         now.UTC(),
		UpdatedOn:         now.UTC(),
	}, nil
}

func checkEventDate(eventDate, now time.Time) error {
	if eventDate.IsZero() {
		return ErrValidation("event_date is required")
	}
	if eventDate.Before(now.Add(CreateLeadTime)) {
		return ErrValidationMeta("invalid event_date", map[string]string{
			"event_date": "must be at least 2 hours in the future",
		})
	}
	return nil
}

// EventPatch carries optional field changes; nil means "leave as is".
type EventPatch struct {
	Title             *string
	Description       *string
	CategoryID        *uuid.UUID
	EventDate         *time.Time
	ParticipantLimit  *int
	RequestModeration *bool
}

func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.CategoryID == nil &&
		p.EventDate == nil && p.ParticipantLimit == nil && p.RequestModeration == nil
}

// applyPatch mutates fields shared by owner and moderator updates.
// Date changes re-run the creation lead-time rule.
func (e *Event) applyPatch(p EventPatch, now time.Time) error {
	if p.Title != nil {
		v := strings.TrimSpace(*p.Title)
		if v == "" || len(v) > maxTitleLen {
			return ErrValidation("title must be non-empty and <= 120 chars")
		}
		e.Title = v
	}
	if p.Description != nil {
		v := strings.TrimSpace(*p.Description)
		if v == "" || len(v) > maxDescriptionLen {
			return ErrValidation("description must be non-empty and <= 7000 chars")
		}
		e.Description = v
	}
	if p.CategoryID != nil {
		e.CategoryID = *p.CategoryID
	}
	if p.EventDate != nil {
		if err := checkEventDate(*p.EventDate, now); err != nil {
			return err
		}
		e.EventDate = p.EventDate.UTC()
	}
	if p.ParticipantLimit != nil {
		if *p.ParticipantLimit < 0 {
			return ErrValidation("participant_limit must be >= 0 (0 means unlimited)")
		}
		e.ParticipantLimit = *p.ParticipantLimit
	}
	if p.RequestModeration != nil {
		e.RequestModeration = *p.RequestModeration
	}
	e.UpdatedOn = now.UTC()
	return nil
}

// UpdateByOwner applies a patch and an optional review action.
// Published events are immutable to their owner.
func (e *Event) UpdateByOwner(p EventPatch, action *StateAction, now time.Time) error {
	if e.State == StatePublished {
		return ErrConflict("published event cannot be changed")
	}
	if err := e.applyPatch(p, now); err != nil {
		return err
	}
	if action == nil {
		return nil
	}
	switch *action {
	case ActionSendToReview:
		e.State = StatePending
	case ActionCancelReview:
		e.State = StateCanceled
	default:
		return ErrValidation("state_action must be SEND_TO_REVIEW or CANCEL_REVIEW")
	}
	return nil
}

// UpdateByModerator applies a patch (pre-publish only) and an optional
// publish/reject action.
func (e *Event) UpdateByModerator(p EventPatch, action *StateAction, note string, now time.Time) error {
	if !p.Empty() {
		if e.State == StatePublished {
			return ErrConflict("published event cannot be changed")
		}
		if err := e.applyPatch(p, now); err != nil {
			return err
		}
	}
	if action == nil {
		return nil
	}
	switch *action {
	case ActionPublishEvent:
		return e.publish(now)
	case ActionRejectEvent:
		return e.reject(note, now)
	default:
		return ErrValidation("state_action must be PUBLISH_EVENT or REJECT_EVENT")
	}
}

func (e *Event) publish(now time.Time) error {
	if e.State != StatePending {
		return ErrConflict("only pending events can be published")
	}
	if e.EventDate.Before(now.Add(PublishLeadTime)) {
		return ErrConflict("event_date must be at least 1 hour after publication")
	}
	t := now.UTC()
	e.State = StatePublished
	e.PublishedOn = &t
	e.UpdatedOn = t
	return nil
}

func (e *Event) reject(note string, now time.Time) error {
	if e.State == StatePublished {
		return ErrConflict("published event cannot be rejected")
	}
	note = strings.TrimSpace(note)
	if note == "" {
		note = DefaultRejectReason
	}
	e.State = StateCanceled
	e.ModerationNote = note
	e.UpdatedOn = now.UTC()
	return nil
}

// AdmitsUnmoderated reports whether new requests bypass organizer moderation.
func (e *Event) AdmitsUnmoderated() bool {
	return !e.RequestModeration || e.ParticipantLimit == 0
}

// Full reports whether the confirmed counter has reached the limit.
// Unlimited events are never full.
func (e *Event) Full() bool {
	return e.ParticipantLimit > 0 && e.ConfirmedRequests >= e.ParticipantLimit
}
