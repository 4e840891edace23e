package audit

import (
	"context"

	appCtx "github.com/baechuer/eventboard/internal/pkg/context"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Logger provides structured audit logging for business decisions.
type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

func (l *Logger) EventCreated(ctx context.Context, eventID, initiatorID uuid.UUID) {
	l.log.Info().
		Str("action", "event_created").
		Str("event_id", eventID.String()).
		Str("initiator_id", initiatorID.String()).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Event created")
}

// EventModerated logs a publish or reject decision.
func (l *Logger) EventModerated(ctx context.Context, eventID uuid.UUID, state, note string) {
	l.log.Info().
		Str("action", "event_moderated").
		Str("event_id", eventID.String()).
		Str("state", state).
		Str("note", note).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Event moderated")
}

func (l *Logger) RequestCreated(ctx context.Context, requestID, eventID, requesterID uuid.UUID, status string) {
	l.log.Info().
		Str("action", "request_created").
		Str("request_id", requestID.String()).
		Str("event_id", eventID.String()).
		Str("requester_id", requesterID.String()).
		Str("status", status).
		Msg("Participation request created")
}

func (l *Logger) RequestCanceled(ctx context.Context, requestID, eventID, requesterID uuid.UUID) {
	l.log.Info().
		Str("action", "request_canceled").
		Str("request_id", requestID.String()).
		Str("event_id", eventID.String()).
		Str("requester_id", requesterID.String()).
		Msg("Participation request canceled")
}

// BulkDecided logs the outcome of an organizer batch decision.
func (l *Logger) BulkDecided(ctx context.Context, eventID, organizerID uuid.UUID, confirmed, rejected int) {
	l.log.Info().
		Str("action", "bulk_decided").
		Str("event_id", eventID.String()).
		Str("organizer_id", organizerID.String()).
		Int("confirmed", confirmed).
		Int("rejected", rejected).
		Str("request_id", appCtx.GetRequestID(ctx)).
		Msg("Batch admission decided")
}
