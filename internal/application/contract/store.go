package contract

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rental/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned for unknown or expired sessions
var ErrSessionNotFound = shared.NewDomainError("NOT_FOUND", "Contract draft session not found")

// SessionStore keeps open sessions in memory. Each session is guarded by
// its own lock so one draft is mutated by one request at a time, and
// sessions idle for longer than the TTL are discarded.
type SessionStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*sessionEntry
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

type sessionEntry struct {
	mu       sync.Mutex
	session  *Session
	lastSeen time.Time
}

// NewSessionStore creates a store that expires sessions idle for ttl
func NewSessionStore(ttl time.Duration, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		entries: make(map[uuid.UUID]*sessionEntry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
	}
}

// Put registers a session
func (s *SessionStore) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sess.ID()] = &sessionEntry{session: sess, lastSeen: s.now()}
}

// With runs fn with exclusive access to the session
func (s *SessionStore) With(id uuid.UUID, fn func(*Session) error) error {
	entry, ok := s.acquire(id)
	if !ok {
		return ErrSessionNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

// Delete discards a session, reporting whether it existed
func (s *SessionStore) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	return ok
}

// Len returns the number of open sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep discards expired sessions and returns how many were removed
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, entry := range s.entries {
		if s.expired(entry, now) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("Expired contract draft sessions discarded", zap.Int("count", n))
			}
		}
	}
}

func (s *SessionStore) acquire(id uuid.UUID) (*sessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(entry, now) {
		delete(s.entries, id)
		return nil, false
	}
	entry.lastSeen = now
	return entry, true
}

func (s *SessionStore) expired(entry *sessionEntry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(entry.lastSeen) > s.ttl
}
