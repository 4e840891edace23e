package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/eventboard/internal/domain"
	"github.com/baechuer/eventboard/internal/infrastructure/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type stubDirectory struct {
	exists bool
}

func (d stubDirectory) Exists(context.Context, uuid.UUID) (bool, error) {
	return d.exists, nil
}

type stubCache struct {
	mu     sync.Mutex
	states map[uuid.UUID]domain.EventState
}

func newStubCache() *stubCache {
	return &stubCache{states: make(map[uuid.UUID]domain.EventState)}
}

func (c *stubCache) GetEventState(_ context.Context, id uuid.UUID) (domain.EventState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.states[id]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return s, nil
}

func (c *stubCache) SetEventState(_ context.Context, id uuid.UUID, s domain.EventState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[id] = s
	return nil
}

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestService(store *memory.Store, clock *fakeClock, cache domain.StateCache) *Service {
	return New(store, stubDirectory{exists: true}, stubDirectory{exists: true}, cache, clock, nil)
}

func validCreate() CreateCmd {
	return CreateCmd{
		InitiatorID:       uuid.New(),
		CategoryID:        uuid.New(),
		Title:             "Go meetup",
		Description:       "Talks and pizza",
		EventDate:         testNow.Add(3 * time.Hour),
		ParticipantLimit:  10,
		RequestModeration: true,
	}
}

func action(a domain.StateAction) *domain.StateAction { return &a }

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("should_create_pending_event", func(t *testing.T) {
		store := memory.New()
		svc := newTestService(store, &fakeClock{now: testNow}, nil)

		e, err := svc.Create(ctx, validCreate())
		require.NoError(t, err)
		assert.Equal(t, domain.StatePending, e.State)
		assert.Equal(t, 0, e.ConfirmedRequests)
		assert.Nil(t, e.PublishedOn)

		got, err := store.EventByID(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, e.ID, got.ID)
	})

	t.Run("should_reject_event_date_too_soon", func(t *testing.T) {
		store := memory.New()
		svc := newTestService(store, &fakeClock{now: testNow}, nil)

		cmd := validCreate()
		cmd.EventDate = testNow.Add(time.Hour)
		_, err := svc.Create(ctx, cmd)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("should_not_found_for_unknown_user", func(t *testing.T) {
		store := memory.New()
		svc := New(store, stubDirectory{exists: false}, stubDirectory{exists: true}, nil, &fakeClock{now: testNow}, nil)

		_, err := svc.Create(ctx, validCreate())
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("should_not_found_for_unknown_category", func(t *testing.T) {
		store := memory.New()
		svc := New(store, stubDirectory{exists: true}, stubDirectory{exists: false}, nil, &fakeClock{now: testNow}, nil)

		_, err := svc.Create(ctx, validCreate())
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestUpdateByOwner(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, store *memory.Store, svc *Service) *domain.Event {
		t.Helper()
		e, err := svc.Create(ctx, validCreate())
		require.NoError(t, err)
		return e
	}

	t.Run("should_patch_fields", func(t *testing.T) {
		store := memory.New()
		svc := newTestService(store, &fakeClock{now: testNow}, nil)
		e := seed(t, store, svc)

		title := "Go conference"
		out, err := svc.UpdateByOwner(ctx, OwnerUpdateCmd{
			EventID:     e.ID,
			RequesterID: e.InitiatorID,
			Patch:       domain.EventPatch{Title: &title},
		})
		require.NoError(t, err)
		assert.Equal(t, "Go conference", out.Title)
	})

	t.Run("should_cancel_review", func(t *testing.T) {
		store := memory.New()
		svc := newTestService(store, &fakeClock{now: testNow}, nil)
		e := seed(t, store, svc)

		out, err := svc.UpdateByOwner(ctx, OwnerUpdateCmd{
			EventID:     e.ID,
			RequesterID: e.InitiatorID,
			StateAction: action(domain.ActionCancelReview),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StateCanceled, out.State)

		// And resubmit.
		out, err = svc.UpdateByOwner(ctx, OwnerUpdateCmd{
			EventID:     e.ID,
			RequesterID: e.InitiatorID,
			StateAction: action(domain.ActionSendToReview),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatePending, out.State)
	})

	t.Run("should_reject_moderator_action", func(t *testing.T) {
		store := memory.New()
		svc := newTestService(store, &fakeClock{now: testNow}, nil)
		e := seed(t, store, svc)

		_, err := svc.UpdateByOwner(ctx, OwnerUpdateCmd{
			EventID:     e.ID,
			RequesterID: e.InitiatorID,
			StateAction: action(domain.ActionPublishEvent),
		})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("should_hide_event_from_non_owner", func(t *testing.T) {
		store := memory.New()
		svc := newTestService(store, &fakeClock{now: testNow}, nil)
		e := seed(t, store, svc)

		title := "hijacked"
		_, err := svc.UpdateByOwner(ctx, OwnerUpdateCmd{
			EventID:     e.ID,
			RequesterID: uuid.New(),
			Patch:       domain.EventPatch{Title: &title},
		})
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("should_conflict_on_published_event", func(t *testing.T) {
		store := memory.New()
		svc := newTestService(store, &fakeClock{now: testNow}, nil)
		e := seed(t, store, svc)

		_, err := svc.UpdateByModerator(ctx, ModeratorUpdateCmd{
			EventID:     e.ID,
			StateAction: action(domain.ActionPublishEvent),
		})
		require.NoError(t, err)

		title := "too late"
		_, err = svc.UpdateByOwner(ctx, OwnerUpdateCmd{
			EventID:     e.ID,
			RequesterID: e.InitiatorID,
			Patch:       domain.EventPatch{Title: &title},
		})
		assert.True(t, domain.IsConflict(err))
	})
}

func TestUpdateByModerator(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, svc *Service) *domain.Event {
		t.Helper()
		e, err := svc.Create(ctx, validCreate())
		require.NoError(t, err)
		return e
	}

	t.Run("should_publish_pending_event", func(t *testing.T) {
		store := memory.New()
		cache := newStubCache()
		svc := newTestService(store, &fakeClock{now: testNow}, cache)
		e := seed(t, svc)

		out, err := svc.UpdateByModerator(ctx, ModeratorUpdateCmd{
			EventID:     e.ID,
			StateAction: action(domain.ActionPublishEvent),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatePublished, out.State)
		require.NotNil(t, out.PublishedOn)
		assert.Equal(t, testNow, *out.PublishedOn)

		// Cache seeded and domain event staged.
		state, err := cache.GetEventState(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatePublished, state)

		emitted := store.Emitted()
		require.Len(t, emitted, 1)
		assert.Equal(t, RKEventPublished, emitted[0].RoutingKey)
	})

	t.Run("should_conflict_when_event_date_too_close", func(t *testing.T) {
		store := memory.New()
		clock := &fakeClock{now: testNow}
		svc := newTestService(store, clock, nil)
		e := seed(t, svc)

		// Move the clock to within an hour of the event date.
		clock.now = e.EventDate.Add(-30 * time.Minute)

		_, err := svc.UpdateByModerator(ctx, ModeratorUpdateCmd{
			EventID:     e.ID,
			StateAction: action(domain.ActionPublishEvent),
		})
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("should_reject_with_default_note", func(t *testing.T) {
		store := memory.New()
		svc := newTestService(store, &fakeClock{now: testNow}, nil)
		e := seed(t, svc)

		out, err := svc.UpdateByModerator(ctx, ModeratorUpdateCmd{
			EventID:     e.ID,
			StateAction: action(domain.ActionRejectEvent),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StateCanceled, out.State)
		assert.Equal(t, domain.DefaultRejectReason, out.ModerationNote)
	})

	t.Run("should_conflict_rejecting_published_event", func(t *testing.T) {
		store := memory.New()
		svc := newTestService(store, &fakeClock{now: testNow}, nil)
		e := seed(t, svc)

		_, err := svc.UpdateByModerator(ctx, ModeratorUpdateCmd{
			EventID:     e.ID,
			StateAction: action(domain.ActionPublishEvent),
		})
		require.NoError(t, err)

		_, err = svc.UpdateByModerator(ctx, ModeratorUpdateCmd{
			EventID:     e.ID,
			StateAction: action(domain.ActionRejectEvent),
			Note:        "spam",
		})
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("should_validate_state_action", func(t *testing.T) {
		store := memory.New()
		svc := newTestService(store, &fakeClock{now: testNow}, nil)
		e := seed(t, svc)

		_, err := svc.UpdateByModerator(ctx, ModeratorUpdateCmd{
			EventID:     e.ID,
			StateAction: action(domain.ActionSendToReview),
		})
		assert.True(t, domain.IsValidation(err))
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("should_order_newest_first_with_seq_tiebreak", func(t *testing.T) {
		store := memory.New()
		clock := &fakeClock{now: testNow}
		svc := newTestService(store, clock, nil)

		e, err := svc.Create(ctx, validCreate())
		require.NoError(t, err)

		// reject, resubmit, publish; reject and publish share a timestamp.
		_, err = svc.UpdateByModerator(ctx, ModeratorUpdateCmd{
			EventID: e.ID, StateAction: action(domain.ActionRejectEvent), Note: "needs work",
		})
		require.NoError(t, err)
		_, err = svc.UpdateByOwner(ctx, OwnerUpdateCmd{
			EventID: e.ID, RequesterID: e.InitiatorID,
			StateAction: action(domain.ActionSendToReview),
		})
		require.NoError(t, err)
		_, err = svc.UpdateByModerator(ctx, ModeratorUpdateCmd{
			EventID: e.ID, StateAction: action(domain.ActionPublishEvent),
		})
		require.NoError(t, err)

		entries, err := svc.History(ctx, e.ID, 0, 10)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, domain.ModerationPublish, entries[0].Action)
		assert.Equal(t, domain.ModerationReject, entries[1].Action)
		assert.Equal(t, "needs work", entries[1].Note)
		assert.Greater(t, entries[0].Seq, entries[1].Seq)
	})

	t.Run("should_paginate", func(t *testing.T) {
		store := memory.New()
		svc := newTestService(store, &fakeClock{now: testNow}, nil)

		e, err := svc.Create(ctx, validCreate())
		require.NoError(t, err)
		_, err = svc.UpdateByModerator(ctx, ModeratorUpdateCmd{
			EventID: e.ID, StateAction: action(domain.ActionRejectEvent),
		})
		require.NoError(t, err)

		entries, err := svc.History(ctx, e.ID, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("should_validate_page_before_reads", func(t *testing.T) {
		store := memory.New()
		svc := newTestService(store, &fakeClock{now: testNow}, nil)

		_, err := svc.History(ctx, uuid.New(), -1, 10)
		assert.True(t, domain.IsValidation(err))

		_, err = svc.History(ctx, uuid.New(), 0, 0)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("should_not_found_for_unknown_event", func(t *testing.T) {
		store := memory.New()
		svc := newTestService(store, &fakeClock{now: testNow}, nil)

		_, err := svc.History(ctx, uuid.New(), 0, 10)
		assert.True(t, domain.IsNotFound(err))
	})
}
