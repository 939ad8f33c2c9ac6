package contract

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSession(t *testing.T) *Session {
	t.Helper()
	svc, _ := newService(newFixture(), new(MockContractReader), new(MockContractWriter))
	sess, err := svc.Start(context.Background(), nil)
	require.NoError(t, err)
	return sess
}

func TestSessionStore_With(t *testing.T) {
	store := NewSessionStore(time.Hour, nil)
	sess := startSession(t)
	store.Put(sess)

	var seen *Session
	err := store.With(sess.ID(), func(s *Session) error {
		seen = s
		return nil
	})
	require.NoError(t, err)
	assert.Same(t, sess, seen)

	boom := errors.New("boom")
	assert.Equal(t, boom, store.With(sess.ID(), func(*Session) error { return boom }))

	err = store.With(uuid.New(), func(*Session) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_Expiry(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	store := NewSessionStore(30*time.Minute, nil)
	store.now = func() time.Time { return now }
	active, idle := startSession(t), startSession(t)
	store.Put(active)
	store.Put(idle)

	now = now.Add(20 * time.Minute)
	require.NoError(t, store.With(active.ID(), func(*Session) error { return nil }))

	now = now.Add(20 * time.Minute)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())
	assert.ErrorIs(t, store.With(idle.ID(), func(*Session) error { return nil }), ErrSessionNotFound)

	now = now.Add(31 * time.Minute)
	assert.ErrorIs(t, store.With(active.ID(), func(*Session) error { return nil }), ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestSessionStore_Delete(t *testing.T) {
	store := NewSessionStore(0, nil)
	sess := startSession(t)
	store.Put(sess)

	assert.True(t, store.Delete(sess.ID()))
	assert.False(t, store.Delete(sess.ID()))
}

func TestSessionStore_SerializesAccess(t *testing.T) {
	store := NewSessionStore(time.Hour, nil)
	sess := startSession(t)
	store.Put(sess)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.With(sess.ID(), func(s *Session) error {
				s.Draft().AddItem()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, sess.Draft().Items().Len())
}
