// Package lock serializes work per key (one lead at a time) either inside a
// single process or across replicas through Redis.
package lock

import (
	"context"
	"sync"
)

// Locker acquires an exclusive hold on key until release is called.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// KeyedMutex is an in-process Locker. Entries are reference counted and
// removed once no goroutine holds or waits on them.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedEntry)}
}

// Acquire blocks until key is free or ctx is done.
func (k *KeyedMutex) Acquire(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyedEntry{ch: make(chan struct{}, 1)}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		k.unref(key, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.ch
			k.unref(key, entry)
		})
	}, nil
}

func (k *KeyedMutex) unref(key string, entry *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, key)
	}
}

func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

var _ Locker = (*KeyedMutex)(nil)
