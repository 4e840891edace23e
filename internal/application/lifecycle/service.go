// Package lifecycle owns an event's moderation state: creation, owner edits,
// moderator publish/reject, and the append-only moderation history.
package lifecycle

import (
	"context"

	"github.com/baechuer/eventboard/internal/audit"
	"github.com/baechuer/eventboard/internal/domain"
	zlog "github.com/rs/zerolog/log"
)

type Service struct {
	store      domain.Store
	users      domain.UserDirectory
	categories domain.CategoryDirectory
	cache      domain.StateCache
	clock      domain.Clock
	aud        *audit.Logger
}

func New(store domain.Store, users domain.UserDirectory, categories domain.CategoryDirectory, cache domain.StateCache, clock domain.Clock, aud *audit.Logger) *Service {
	return &Service{
		store:      store,
		users:      users,
		categories: categories,
		cache:      cache,
		clock:      clock,
		aud:        aud,
	}
}

// seedStateCache pushes the new state as an admission fast-fail hint.
// Best-effort: a cache failure never fails the transition.
func (s *Service) seedStateCache(ctx context.Context, e *domain.Event) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetEventState(ctx, e.ID, e.State); err != nil {
		zlog.Warn().Err(err).Str("event_id", e.ID.String()).Msg("state cache seed failed")
	}
}
