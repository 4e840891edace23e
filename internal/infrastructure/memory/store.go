// Package memory is an in-process Store used by tests and by dev setups
// without postgres. Per-event mutexes are the serialization point: every
// mutation of an event and its requests runs while holding the event's lock,
// mirroring the row lock the postgres store takes.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/baechuer/eventboard/internal/domain"
	"github.com/google/uuid"
)

type EmittedEvent struct {
	RoutingKey string
	Payload    any
}

type Store struct {
	mu       sync.RWMutex
	events   map[uuid.UUID]*domain.Event
	requests map[uuid.UUID]*domain.ParticipationRequest
	log      map[uuid.UUID][]domain.ModerationLogEntry
	logSeq   map[uuid.UUID]int64
	locks    map[uuid.UUID]*sync.Mutex

	emitMu  sync.Mutex
	emitted []EmittedEvent
}

func New() *Store {
	return &Store{
		events:   make(map[uuid.UUID]*domain.Event),
		requests: make(map[uuid.UUID]*domain.ParticipationRequest),
		log:      make(map[uuid.UUID][]domain.ModerationLogEntry),
		logSeq:   make(map[uuid.UUID]int64),
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// Emitted returns a snapshot of domain events staged by committed transactions.
func (s *Store) Emitted() []EmittedEvent {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	out := make([]EmittedEvent, len(s.emitted))
	copy(out, s.emitted)
	return out
}

func (s *Store) CreateEvent(_ context.Context, e *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *Store) EventByID(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return nil, domain.ErrNotFound("event not found")
	}
	cp := *e
	return &cp, nil
}

func (s *Store) eventLock(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *Store) InEventTx(ctx context.Context, eventID uuid.UUID, fn func(tx domain.EventTx) error) error {
	lock := s.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	stored, ok := s.events[eventID]
	s.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound("event not found")
	}

	cp := *stored
	tx := &eventTx{store: s, event: &cp}
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// eventTx stages all writes and applies them only when the callback succeeds,
// so a failed operation leaves no partial state behind.
type eventTx struct {
	store *Store
	event *domain.Event

	eventDirty bool
	inserted   []domain.ParticipationRequest
	updated    []domain.ParticipationRequest
	logEntries []domain.ModerationLogEntry
	emitStaged []EmittedEvent
}

func (t *eventTx) Event() *domain.Event { return t.event }

func (t *eventTx) UpdateEvent(e *domain.Event) error {
	t.event = e
	t.eventDirty = true
	return nil
}

func (t *eventTx) RequestByID(id uuid.UUID) (*domain.ParticipationRequest, error) {
	for i := range t.updated {
		if t.updated[i].ID == id {
			cp := t.updated[i]
			return &cp, nil
		}
	}
	for i := range t.inserted {
		if t.inserted[i].ID == id {
			cp := t.inserted[i]
			return &cp, nil
		}
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	r, ok := t.store.requests[id]
	if !ok {
		return nil, domain.ErrNotFound("request not found")
	}
	cp := *r
	return &cp, nil
}

func (t *eventTx) HasActiveRequest(requesterID uuid.UUID) (bool, error) {
	for i := range t.inserted {
		if t.inserted[i].RequesterID == requesterID && t.inserted[i].Status.Active() {
			return true, nil
		}
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	for _, r := range t.store.requests {
		if r.EventID == t.event.ID && r.RequesterID == requesterID && r.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (t *eventTx) InsertRequest(r *domain.ParticipationRequest) error {
	t.inserted = append(t.inserted, *r)
	return nil
}

func (t *eventTx) UpdateRequest(r *domain.ParticipationRequest) error {
	t.updated = append(t.updated, *r)
	return nil
}

func (t *eventTx) AppendModeration(entry *domain.ModerationLogEntry) error {
	t.logEntries = append(t.logEntries, *entry)
	return nil
}

func (t *eventTx) Emit(routingKey string, payload any) {
	t.emitStaged = append(t.emitStaged, EmittedEvent{RoutingKey: routingKey, Payload: payload})
}

func (t *eventTx) commit() {
	s := t.store
	s.mu.Lock()
	if t.eventDirty {
		cp := *t.event
		s.events[cp.ID] = &cp
	}
	for i := range t.inserted {
		cp := t.inserted[i]
		s.requests[cp.ID] = &cp
	}
	for i := range t.updated {
		cp := t.updated[i]
		s.requests[cp.ID] = &cp
	}
	for i := range t.logEntries {
		entry := t.logEntries[i]
		s.logSeq[entry.EventID]++
		entry.Seq = s.logSeq[entry.EventID]
		s.log[entry.EventID] = append(s.log[entry.EventID], entry)
	}
	s.mu.Unlock()

	if len(t.emitStaged) > 0 {
		s.emitMu.Lock()
		s.emitted = append(s.emitted, t.emitStaged...)
		s.emitMu.Unlock()
	}
}

func (s *Store) RequestByID(_ context.Context, id uuid.UUID) (*domain.ParticipationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, domain.ErrNotFound("request not found")
	}
	cp := *r
	return &cp, nil
}

func (s *Store) RequestsByRequester(_ context.Context, requesterID uuid.UUID) ([]domain.ParticipationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ParticipationRequest
	for _, r := range s.requests {
		if r.RequesterID == requesterID {
			out = append(out, *r)
		}
	}
	sortRequests(out)
	return out, nil
}

func (s *Store) RequestsByEvent(_ context.Context, eventID uuid.UUID) ([]domain.ParticipationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ParticipationRequest
	for _, r := range s.requests {
		if r.EventID == eventID {
			out = append(out, *r)
		}
	}
	sortRequests(out)
	return out, nil
}

func sortRequests(rs []domain.ParticipationRequest) {
	sort.Slice(rs, func(i, j int) bool {
		if !rs[i].Created.Equal(rs[j].Created) {
			return rs[i].Created.Before(rs[j].Created)
		}
		return rs[i].ID.String() < rs[j].ID.String()
	})
}

func (s *Store) ModerationHistory(_ context.Context, eventID uuid.UUID, page domain.Page) ([]domain.ModerationLogEntry, error) {
	s.mu.RLock()
	entries := make([]domain.ModerationLogEntry, len(s.log[eventID]))
	copy(entries, s.log[eventID])
	s.mu.RUnlock()

	// Newest first, insertion order breaking timestamp ties.
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].ActedOn.Equal(entries[j].ActedOn) {
			return entries[i].ActedOn.After(entries[j].ActedOn)
		}
		return entries[i].Seq > entries[j].Seq
	})

	if page.From >= len(entries) {
		return nil, nil
	}
	end := page.From + page.Size
	if end > len(entries) {
		end = len(entries)
	}
	return entries[page.From:end], nil
}
