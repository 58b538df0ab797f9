package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace     = "wcrm:lock:"
	minRetryInterval = 25 * time.Millisecond
	maxRetryInterval = 400 * time.Millisecond
)

// ErrNotAcquired is returned when the lock could not be taken before ctx ended.
var ErrNotAcquired = errors.New("lock not acquired")

// releaseScript deletes the key only when it still holds our token so an
// expired holder cannot release a lock someone else now owns.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type cmdable interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	redis.Scripter
}

// RedisLocker is a Locker backed by SET NX PX with token-checked release.
type RedisLocker struct {
	client cmdable
	ttl    time.Duration
}

// NewRedisLocker creates a locker whose holds expire after ttl if never released.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// Acquire polls with backoff until the key is free or ctx is done.
func (r *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	fullKey := keyNamespace + key
	token := uuid.NewString()
	wait := minRetryInterval

	for {
		ok, err := r.client.SetNX(ctx, fullKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
		case <-timer.C:
		}
		wait *= 2
		if wait > maxRetryInterval {
			wait = maxRetryInterval
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(releaseCtx, r.client, []string{fullKey}, token).Err()
		})
	}, nil
}

// ParseRedisURL builds a go-redis client from a redis:// or rediss:// URL.
func ParseRedisURL(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

var _ Locker = (*RedisLocker)(nil)
