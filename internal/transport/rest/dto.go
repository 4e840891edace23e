package rest

import (
	"time"

	"github.com/baechuer/eventboard/internal/domain"
	"github.com/google/uuid"
)

type eventResponse struct {
	ID                uuid.UUID  `json:"id"`
	InitiatorID       uuid.UUID  `json:"initiator_id"`
	CategoryID        uuid.UUID  `json:"category_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	EventDate         time.Time  `json:"event_date"`
	ParticipantLimit  int        `json:"participant_limit"`
	ConfirmedRequests int        `json:"confirmed_requests"`
	RequestModeration bool       `json:"request_moderation"`
	State             string     `json:"state"`
	PublishedOn       *time.Time `json:"published_on,omitempty"`
	ModerationNote    string     `json:"moderation_note,omitempty"`
	CreatedOn         time.Time  `json:"created_on"`
	UpdatedOn         time.Time  `json:"updated_on"`
}

func toEventResponse(e *domain.Event) eventResponse {
	return eventResponse{
		ID:                e.ID,
		InitiatorID:       e.InitiatorID,
		CategoryID:        e.CategoryID,
		Title:             e.Title,
		Description:       e.Description,
		EventDate:         e.EventDate,
		ParticipantLimit:  e.ParticipantLimit,
		ConfirmedRequests: e.ConfirmedRequests,
		RequestModeration: e.RequestModeration,
		State:             string(e.State),
		PublishedOn:       e.PublishedOn,
		ModerationNote:    e.ModerationNote,
		CreatedOn:         e.CreatedOn,
		UpdatedOn:         e.UpdatedOn,
	}
}

type requestResponse struct {
	ID          uuid.UUID `json:"id"`
	EventID     uuid.UUID `json:"event_id"`
	RequesterID uuid.UUID `json:"requester_id"`
	Status      string    `json:"status"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

func toRequestResponse(r domain.ParticipationRequest) requestResponse {
	return requestResponse{
		ID:          r.ID,
		EventID:     r.EventID,
		RequesterID: r.RequesterID,
		Status:      string(r.Status),
		Created:     r.Created,
		Updated:     r.Updated,
	}
}

func toRequestResponses(rs []domain.ParticipationRequest) []requestResponse {
	out := make([]requestResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRequestResponse(r))
	}
	return out
}

type moderationEntryResponse struct {
	ID      uuid.UUID `json:"id"`
	EventID uuid.UUID `json:"event_id"`
	Action  string    `json:"action"`
	Note    string    `json:"note,omitempty"`
	ActedOn time.Time `json:"acted_on"`
}

func toModerationResponses(entries []domain.ModerationLogEntry) []moderationEntryResponse {
	out := make([]moderationEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, moderationEntryResponse{
			ID:      e.ID,
			EventID: e.EventID,
			Action:  string(e.Action),
			Note:    e.Note,
			ActedOn: e.ActedOn,
		})
	}
	return out
}

type bulkDecisionResponse struct {
	ConfirmedRequests []requestResponse `json:"confirmed_requests"`
	RejectedRequests  []requestResponse `json:"rejected_requests"`
}
