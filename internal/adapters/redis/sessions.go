package redisad

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"event_hotels/internal/adapters/observability"
)

const sessionPrefix = "session:"

// SessionStore keeps bearer token -> user id mappings in Redis.
type SessionStore struct{ c *redis.Client }

func New(addr, pass string, db int) *SessionStore {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

func NewWithClient(c *redis.Client) *SessionStore { return &SessionStore{c: c} }

// Ping checks connectivity at startup.
func (s *SessionStore) Ping(ctx context.Context) error { return s.c.Ping(ctx).Err() }

// Create stores the session. ttlSec <= 0 keeps it until deleted.
func (s *SessionStore) Create(ctx context.Context, token string, userID int64, ttlSec int) error {
	observability.ObserveSession("redis", "create")
	return s.c.Set(ctx, sessionPrefix+token, strconv.FormatInt(userID, 10), time.Duration(ttlSec)*time.Second).Err()
}

func (s *SessionStore) UserID(ctx context.Context, token string) (int64, bool, error) {
	v, err := s.c.Get(ctx, sessionPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		observability.ObserveSession("redis", "miss")
		return 0, false, nil
	}
	if err != nil {
		observability.ObserveSession("redis", "error")
		return 0, false, err
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		observability.ObserveSession("redis", "error")
		return 0, false, err
	}
	observability.ObserveSession("redis", "hit")
	return id, true, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	observability.ObserveSession("redis", "delete")
	return s.c.Del(ctx, sessionPrefix+token).Err()
}
