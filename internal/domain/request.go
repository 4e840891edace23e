package domain

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

func (s RequestStatus) Valid() bool {
	return s == RequestPending || s == RequestConfirmed || s == RequestRejected || s == RequestCanceled
}

// Active means the request still counts against the one-per-(event,requester)
// rule. Only CANCELED frees the slot for a new request.
func (s RequestStatus) Active() bool {
	return s != RequestCanceled
}

type ParticipationRequest struct {
	ID          uuid.UUID
	EventID     uuid.UUID
	RequesterID uuid.UUID
	Status      RequestStatus
	Created     time.Time
	Updated     time.Time
}

func NewRequest(eventID, requesterID uuid.UUID, now time.Time) *ParticipationRequest {
	return &ParticipationRequest{
		ID:          uuid.New(),
		EventID:     eventID,
		RequesterID: requesterID,
		Status:      RequestPending,
		Created:     now.UTC(),
		Updated:     now.UTC(),
	}
}

func (r *ParticipationRequest) setStatus(s RequestStatus, now time.Time) {
	r.Status = s
	r.Updated = now.UTC()
}

func (r *ParticipationRequest) Confirm(now time.Time) { r.setStatus(RequestConfirmed, now) }
func (r *ParticipationRequest) Reject(now time.Time)  { r.setStatus(RequestRejected, now) }
func (r *ParticipationRequest) Cancel(now time.Time)  { r.setStatus(RequestCanceled, now) }
