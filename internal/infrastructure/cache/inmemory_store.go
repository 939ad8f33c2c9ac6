package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const defaultCleanupInterval = 30 * time.Second

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemoryStore implements Store in process memory. Entries are not shared
// across instances.
type InMemoryStore struct {
	entries sync.Map // map[string]*entry
	now     func() time.Time
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

// NewInMemoryStore creates a store and starts its expiry sweeper
func NewInMemoryStore() *InMemoryStore {
	s := &InMemoryStore{
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	go s.cleanupExpired(defaultCleanupInterval)
	return s
}

// Get implements Store
func (s *InMemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.entries.Load(key)
	if !ok {
		atomic.AddInt64(&s.misses, 1)
		return nil, false, nil
	}
	e := v.(*entry)
	if e.expired(s.now()) {
		s.entries.Delete(key)
		atomic.AddInt64(&s.misses, 1)
		return nil, false, nil
	}
	atomic.AddInt64(&s.hits, 1)
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Set implements Store
func (s *InMemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := &entry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries.Store(key, e)
	return nil
}

// Delete implements Store
func (s *InMemoryStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		s.entries.Delete(k)
	}
	return nil
}

// Close stops the expiry sweeper; safe to call more than once
func (s *InMemoryStore) Close() error {
	if atomic.CompareAndSwapInt32(&s.stopped, 0, 1) {
		close(s.stopCh)
	}
	return nil
}

// Stats returns the hit and miss counts
func (s *InMemoryStore) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&s.hits), atomic.LoadInt64(&s.misses)
}

func (s *InMemoryStore) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryStore) removeExpired() {
	now := s.now()
	s.entries.Range(func(key, value any) bool {
		if value.(*entry).expired(now) {
			s.entries.Delete(key)
		}
		return true
	})
}
