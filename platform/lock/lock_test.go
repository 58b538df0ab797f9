package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	k := NewKeyedMutex()
	var active, maxActive atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := k.Acquire(context.Background(), "lead-1")
			if !assert.NoError(t, err) {
				return
			}
			n := active.Add(1)
			for {
				cur := maxActive.Load()
				if n <= cur || maxActive.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive.Load())
	assert.Equal(t, 0, k.size(), "entries should be cleaned up")
}

func TestKeyedMutexDifferentKeysDoNotBlock(t *testing.T) {
	k := NewKeyedMutex()
	releaseA, err := k.Acquire(context.Background(), "lead-a")
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	releaseB, err := k.Acquire(ctx, "lead-b")
	require.NoError(t, err)
	releaseB()
}

func TestKeyedMutexHonoursContext(t *testing.T) {
	k := NewKeyedMutex()
	release, err := k.Acquire(context.Background(), "lead-1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = k.Acquire(ctx, "lead-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func newRedisLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, time.Minute), mr
}

func TestRedisLockerExcludesSecondHolder(t *testing.T) {
	locker, mr := newRedisLocker(t)

	release, err := locker.Acquire(context.Background(), "lead-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(keyNamespace+"lead-1"))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "lead-1")
	assert.True(t, errors.Is(err, ErrNotAcquired))

	release()
	assert.False(t, mr.Exists(keyNamespace+"lead-1"))

	release2, err := locker.Acquire(context.Background(), "lead-1")
	require.NoError(t, err)
	release2()
}

func TestRedisLockerReleaseKeepsForeignToken(t *testing.T) {
	locker, mr := newRedisLocker(t)

	release, err := locker.Acquire(context.Background(), "lead-2")
	require.NoError(t, err)

	// Simulate expiry followed by another holder taking the key.
	require.NoError(t, mr.Set(keyNamespace+"lead-2", "someone-else"))
	release()

	got, err := mr.Get(keyNamespace + "lead-2")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
