package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/baechuer/eventboard/internal/domain"
	appCtx "github.com/baechuer/eventboard/internal/pkg/context"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// -------------------------
// Locking policy:
// Every mutation of an event or its requests starts by locking the events
// row (FOR UPDATE). That row is the serialization point for the shared
// confirmed_requests counter; request rows are only touched while it is
// held, so admissions, cancellations and batch decisions for one event
// cannot interleave.
// -------------------------

const eventColumns = `
	id, initiator_id, category_id, title, description, event_date,
	participant_limit, confirmed_requests, request_moderation,
	state, published_on, moderation_note, created_on, updated_on`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var e domain.Event
	var state string
	err := row.Scan(
		&e.ID, &e.InitiatorID, &e.CategoryID, &e.Title, &e.Description, &e.EventDate,
		&e.ParticipantLimit, &e.ConfirmedRequests, &e.RequestModeration,
		&state, &e.PublishedOn, &e.ModerationNote, &e.CreatedOn, &e.UpdatedOn,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound("event not found")
	}
	if err != nil {
		return nil, err
	}
	e.State = domain.EventState(state)
	if !e.State.Valid() {
		return nil, fmt.Errorf("invalid event state %q", state)
	}
	return &e, nil
}

func (s *Store) CreateEvent(ctx context.Context, e *domain.Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO events (
			id, initiator_id, category_id, title, description, event_date,
			participant_limit, confirmed_requests, request_moderation,
			state, published_on, moderation_note, created_on, updated_on
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		e.ID, e.InitiatorID, e.CategoryID, e.Title, e.Description, e.EventDate,
		e.ParticipantLimit, e.ConfirmedRequests, e.RequestModeration,
		string(e.State), e.PublishedOn, e.ModerationNote, e.CreatedOn, e.UpdatedOn,
	)
	return err
}

func (s *Store) EventByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

func (s *Store) InEventTx(ctx context.Context, eventID uuid.UUID, fn func(tx domain.EventTx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT`+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, eventID)
	e, err := scanEvent(row)
	if err != nil {
		return err
	}

	view := &eventTx{ctx: ctx, tx: tx, event: e}
	if err := fn(view); err != nil {
		return err
	}
	if err := view.flushOutbox(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type stagedMsg struct {
	routingKey string
	payload    any
}

type eventTx struct {
	ctx    context.Context
	tx     pgx.Tx
	event  *domain.Event
	staged []stagedMsg
}

func (t *eventTx) Event() *domain.Event { return t.event }

func (t *eventTx) UpdateEvent(e *domain.Event) error {
	_, err := t.tx.Exec(t.ctx, `
		UPDATE events
		SET category_id = $2,
		    title = $3,
		    description = $4,
		    event_date = $5,
		    participant_limit = $6,
		    confirmed_requests = $7,
		    request_moderation = $8,
		    state = $9,
		    published_on = $10,
		    moderation_note = $11,
		    updated_on = $12
		WHERE id = $1
	`,
		e.ID, e.CategoryID, e.Title, e.Description, e.EventDate,
		e.ParticipantLimit, e.ConfirmedRequests, e.RequestModeration,
		string(e.State), e.PublishedOn, e.ModerationNote, e.UpdatedOn,
	)
	if err == nil {
		t.event = e
	}
	return err
}

func (t *eventTx) RequestByID(id uuid.UUID) (*domain.ParticipationRequest, error) {
	row := t.tx.QueryRow(t.ctx, `
		SELECT id, event_id, requester_id, status, created, updated
		FROM requests
		WHERE id = $1
		FOR UPDATE
	`, id)
	return scanRequest(row)
}

func (t *eventTx) HasActiveRequest(requesterID uuid.UUID) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(t.ctx, `
		SELECT EXISTS(
			SELECT 1 FROM requests
			WHERE event_id = $1 AND requester_id = $2 AND status <> 'CANCELED'
		)
	`, t.event.ID, requesterID).Scan(&exists)
	return exists, err
}

func (t *eventTx) InsertRequest(r *domain.ParticipationRequest) error {
	_, err := t.tx.Exec(t.ctx, `
		INSERT INTO requests (id, event_id, requester_id, status, created, updated)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, r.ID, r.EventID, r.RequesterID, string(r.Status), r.Created, r.Updated)
	return err
}

func (t *eventTx) UpdateRequest(r *domain.ParticipationRequest) error {
	_, err := t.tx.Exec(t.ctx, `
		UPDATE requests
		SET status = $2, updated = $3
		WHERE id = $1
	`, r.ID, string(r.Status), r.Updated)
	return err
}

func (t *eventTx) AppendModeration(entry *domain.ModerationLogEntry) error {
	// seq is a BIGSERIAL: insertion order is the timestamp tie-breaker.
	return t.tx.QueryRow(t.ctx, `
		INSERT INTO moderation_log (id, event_id, action, note, acted_on)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING seq
	`, entry.ID, entry.EventID, string(entry.Action), entry.Note, entry.ActedOn).Scan(&entry.Seq)
}

func (t *eventTx) Emit(routingKey string, payload any) {
	t.staged = append(t.staged, stagedMsg{routingKey: routingKey, payload: payload})
}

func (t *eventTx) flushOutbox() error {
	if len(t.staged) == 0 {
		return nil
	}
	traceID := appCtx.GetRequestID(t.ctx)
	for _, m := range t.staged {
		body, err := json.Marshal(m.payload)
		if err != nil {
			return err
		}
		_, err = t.tx.Exec(t.ctx, `
			INSERT INTO outbox (message_id, trace_id, routing_key, payload, occurred_at, status, attempt, next_retry_at)
			VALUES ($1,$2,$3,$4,NOW(),'pending',0,NOW())
		`, uuid.New(), traceID, m.routingKey, body)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanRequest(row pgx.Row) (*domain.ParticipationRequest, error) {
	var r domain.ParticipationRequest
	var status string
	err := row.Scan(&r.ID, &r.EventID, &r.RequesterID, &status, &r.Created, &r.Updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound("request not found")
	}
	if err != nil {
		return nil, err
	}
	r.Status = domain.RequestStatus(status)
	return &r, nil
}

func (s *Store) RequestByID(ctx context.Context, id uuid.UUID) (*domain.ParticipationRequest, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, event_id, requester_id, status, created, updated
		FROM requests
		WHERE id = $1
	`, id)
	return scanRequest(row)
}

func (s *Store) RequestsByRequester(ctx context.Context, requesterID uuid.UUID) ([]domain.ParticipationRequest, error) {
	return s.listRequests(ctx, `WHERE requester_id = $1`, requesterID)
}

func (s *Store) RequestsByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.ParticipationRequest, error) {
	return s.listRequests(ctx, `WHERE event_id = $1`, eventID)
}

func (s *Store) listRequests(ctx context.Context, where string, arg any) ([]domain.ParticipationRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_id, requester_id, status, created, updated
		FROM requests
		`+where+`
		ORDER BY created ASC, id ASC
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ParticipationRequest
	for rows.Next() {
		var r domain.ParticipationRequest
		var status string
		if err := rows.Scan(&r.ID, &r.EventID, &r.RequesterID, &status, &r.Created, &r.Updated); err != nil {
			return nil, err
		}
		r.Status = domain.RequestStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ModerationHistory(ctx context.Context, eventID uuid.UUID, page domain.Page) ([]domain.ModerationLogEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, event_id, action, note, acted_on, seq
		FROM moderation_log
		WHERE event_id = $1
		ORDER BY acted_on DESC, seq DESC
		LIMIT $2 OFFSET $3
	`, eventID, page.Size, page.From)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ModerationLogEntry
	for rows.Next() {
		var entry domain.ModerationLogEntry
		var action string
		if err := rows.Scan(&entry.ID, &entry.EventID, &action, &entry.Note, &entry.ActedOn, &entry.Seq); err != nil {
			return nil, err
		}
		entry.Action = domain.ModerationAction(action)
		out = append(out, entry)
	}
	return out, rows.Err()
}
