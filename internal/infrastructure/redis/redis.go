package redis

import (
	"context"
	"errors"
	"time"

	"github.com/baechuer/eventboard/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const stateTTL = 24 * time.Hour

type Cache struct {
	Client *redis.Client
}

func New(addr, pass string, db int) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr, Password: pass, DB: db,
	})
	return &Cache{Client: rdb}
}

// GetEventState is a best-effort read used to fail fast on events that are
// known to be out of play. Postgres stays authoritative.
func (c *Cache) GetEventState(ctx context.Context, eventID uuid.UUID) (domain.EventState, error) {
	val, err := c.Client.Get(ctx, "eventstate:"+eventID.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrCacheMiss
		}
		return "", err
	}
	state := domain.EventState(val)
	if !state.Valid() {
		return "", domain.ErrCacheMiss
	}
	return state, nil
}

func (c *Cache) SetEventState(ctx context.Context, eventID uuid.UUID, state domain.EventState) error {
	return c.Client.Set(ctx, "eventstate:"+eventID.String(), string(state), stateTTL).Err()
}

// AllowRequest: Simple Fixed Window Rate Limit
func (c *Cache) AllowRequest(ctx context.Context, ip string, limit int, window time.Duration) (bool, error) {
	key := "ratelimit:" + ip
	count, err := c.Client.Incr(ctx, key).Result()
	if err != nil {
		return true, nil // fail open
	}
	if count == 1 {
		_ = c.Client.Expire(ctx, key, window).Err()
	}
	return count <= int64(limit), nil
}
