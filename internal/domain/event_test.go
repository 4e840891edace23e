package domain_test

import (
	"testing"
	"time"

	"github.com/baechuer/eventboard/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tt, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return tt.UTC()
}

func newPendingEvent(t *testing.T, now time.Time) *domain.Event {
	t.Helper()
	e, err := domain.NewEvent(uuid.New(), uuid.New(), "Go meetup", "Talks and pizza", now.Add(3*time.Hour), 10, true, now)
	require.NoError(t, err)
	return e
}

func TestNewEvent_Validation(t *testing.T) {
	now := mustTime(t, "2025-06-01T12:00:00Z")

	tests := []struct {
		name     string
		title    string
		desc     string
		date     time.Time
		limit    int
		wantCode domain.ErrCode
	}{
		{"empty title", "", "desc", now.Add(3 * time.Hour), 0, domain.CodeValidation},
		{"empty description", "title", "", now.Add(3 * time.Hour), 0, domain.CodeValidation},
		{"negative limit", "title", "desc", now.Add(3 * time.Hour), -1, domain.CodeValidation},
		{"date too soon", "title", "desc", now.Add(119 * time.Minute), 0, domain.CodeValidation},
		{"zero date", "title", "desc", time.Time{}, 0, domain.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewEvent(uuid.New(), uuid.New(), tt.title, tt.desc, tt.date, tt.limit, true, now)
			assert.Equal(t, tt.wantCode, domain.CodeOf(err))
		})
	}

	t.Run("exactly at lead time boundary is allowed", func(t *testing.T) {
		e, err := domain.NewEvent(uuid.New(), uuid.New(), "title", "desc", now.Add(2*time.Hour), 0, false, now)
		assert.NoError(t, err)
		assert.Equal(t, domain.StatePending, e.State)
		assert.Nil(t, e.PublishedOn)
	})
}

func TestEvent_PublishTransitions(t *testing.T) {
	now := mustTime(t, "2025-06-01T12:00:00Z")
	publish := domain.ActionPublishEvent

	t.Run("publish pending succeeds", func(t *testing.T) {
		e := newPendingEvent(t, now)
		err := e.UpdateByModerator(domain.EventPatch{}, &publish, "", now)
		require.NoError(t, err)
		assert.Equal(t, domain.StatePublished, e.State)
		require.NotNil(t, e.PublishedOn)
		assert.Equal(t, now, *e.PublishedOn)
	})

	t.Run("publish twice conflicts", func(t *testing.T) {
		e := newPendingEvent(t, now)
		require.NoError(t, e.UpdateByModerator(domain.EventPatch{}, &publish, "", now))
		err := e.UpdateByModerator(domain.EventPatch{}, &publish, "", now)
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("publish canceled conflicts", func(t *testing.T) {
		e := newPendingEvent(t, now)
		reject := domain.ActionRejectEvent
		require.NoError(t, e.UpdateByModerator(domain.EventPatch{}, &reject, "spam", now))
		err := e.UpdateByModerator(domain.EventPatch{}, &publish, "", now)
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("publish within one hour of event date conflicts", func(t *testing.T) {
		e := newPendingEvent(t, now)
		late := e.EventDate.Add(-30 * time.Minute)
		err := e.UpdateByModerator(domain.EventPatch{}, &publish, "", late)
		assert.True(t, domain.IsConflict(err))
	})
}

func TestEvent_RejectTransitions(t *testing.T) {
	now := mustTime(t, "2025-06-01T12:00:00Z")
	publish := domain.ActionPublishEvent
	reject := domain.ActionRejectEvent

	t.Run("reject pending succeeds with note", func(t *testing.T) {
		e := newPendingEvent(t, now)
		err := e.UpdateByModerator(domain.EventPatch{}, &reject, "duplicate listing", now)
		require.NoError(t, err)
		assert.Equal(t, domain.StateCanceled, e.State)
		assert.Equal(t, "duplicate listing", e.ModerationNote)
	})

	t.Run("blank note falls back to default reason", func(t *testing.T) {
		e := newPendingEvent(t, now)
		require.NoError(t, e.UpdateByModerator(domain.EventPatch{}, &reject, "   ", now))
		assert.Equal(t, domain.DefaultRejectReason, e.ModerationNote)
	})

	t.Run("reject published always conflicts", func(t *testing.T) {
		e := newPendingEvent(t, now)
		require.NoError(t, e.UpdateByModerator(domain.EventPatch{}, &publish, "", now))
		err := e.UpdateByModerator(domain.EventPatch{}, &reject, "late", now)
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("reject canceled is allowed", func(t *testing.T) {
		e := newPendingEvent(t, now)
		require.NoError(t, e.UpdateByModerator(domain.EventPatch{}, &reject, "first", now))
		err := e.UpdateByModerator(domain.EventPatch{}, &reject, "second", now)
		assert.NoError(t, err)
		assert.Equal(t, "second", e.ModerationNote)
	})
}

func TestEvent_UpdateByOwner(t *testing.T) {
	now := mustTime(t, "2025-06-01T12:00:00Z")

	t.Run("published event cannot be changed", func(t *testing.T) {
		e := newPendingEvent(t, now)
		publish := domain.ActionPublishEvent
		require.NoError(t, e.UpdateByModerator(domain.EventPatch{}, &publish, "", now))

		title := "new title"
		err := e.UpdateByOwner(domain.EventPatch{Title: &title}, nil, now)
		assert.True(t, domain.IsConflict(err))
		assert.Equal(t, "Go meetup", e.Title)
	})

	t.Run("cancel review moves to canceled", func(t *testing.T) {
		e := newPendingEvent(t, now)
		cancel := domain.ActionCancelReview
		require.NoError(t, e.UpdateByOwner(domain.EventPatch{}, &cancel, now))
		assert.Equal(t, domain.StateCanceled, e.State)
	})

	t.Run("send to review returns canceled draft to pending", func(t *testing.T) {
		e := newPendingEvent(t, now)
		cancel := domain.ActionCancelReview
		require.NoError(t, e.UpdateByOwner(domain.EventPatch{}, &cancel, now))

		send := domain.ActionSendToReview
		require.NoError(t, e.UpdateByOwner(domain.EventPatch{}, &send, now))
		assert.Equal(t, domain.StatePending, e.State)
	})

	t.Run("date change re-validates lead time", func(t *testing.T) {
		e := newPendingEvent(t, now)
		soon := now.Add(time.Hour)
		err := e.UpdateByOwner(domain.EventPatch{EventDate: &soon}, nil, now)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("moderator action on owner path is rejected", func(t *testing.T) {
		e := newPendingEvent(t, now)
		publish := domain.ActionPublishEvent
		err := e.UpdateByOwner(domain.EventPatch{}, &publish, now)
		assert.True(t, domain.IsValidation(err))
	})
}

func TestEvent_CapacityHelpers(t *testing.T) {
	e := &domain.Event{ParticipantLimit: 2, ConfirmedRequests: 2, RequestModeration: true}
	assert.True(t, e.Full())
	assert.False(t, e.AdmitsUnmoderated())

	e.ParticipantLimit = 0
	assert.False(t, e.Full())
	assert.True(t, e.AdmitsUnmoderated())

	e.ParticipantLimit = 5
	e.RequestModeration = false
	assert.True(t, e.AdmitsUnmoderated())
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name    string
		from    int
		size    int
		wantErr bool
	}{
		{"ok", 0, 10, false},
		{"negative from", -1, 10, true},
		{"zero size", 0, 0, true},
		{"negative size", 0, -5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := domain.NewPage(tt.from, tt.size)
			if tt.wantErr {
				assert.True(t, domain.IsValidation(err))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.from, p.From)
		})
	}

	t.Run("size is capped", func(t *testing.T) {
		p, err := domain.NewPage(0, 1000)
		assert.NoError(t, err)
		assert.Equal(t, 100, p.Size)
	})
}
