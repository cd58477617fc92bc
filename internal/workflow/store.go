package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/google/uuid"
)

// Store keeps the guided sessions of the HTTP API in memory. Sessions idle for
// longer than the TTL are evicted, and at most max sessions are open at once
// (zero means unbounded).
type Store struct {
	deps Deps
	ttl  time.Duration
	max  int
	now  func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*storeEntry
}

type storeEntry struct {
	controller *Controller
	lastUsed   time.Time
}

func NewStore(deps Deps, ttl time.Duration, maxSessions int) *Store {
	return &Store{
		deps:     deps,
		ttl:      ttl,
		max:      maxSessions,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*storeEntry),
	}
}

// Create opens a new session. When the store is full, idle sessions are
// evicted first and common.ErrCapacity is returned if none could be dropped.
func (s *Store) Create() (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.max > 0 && len(s.sessions) >= s.max {
		s.evictLocked()
		if len(s.sessions) >= s.max {
			return nil, common.ErrCapacity
		}
	}

	c := NewController(uuid.New(), s.deps, nil)
	s.sessions[c.ID()] = &storeEntry{controller: c, lastUsed: s.now()}
	return c, nil
}

// Get returns the session and marks it as used.
func (s *Store) Get(id uuid.UUID) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok || s.expired(e) {
		delete(s.sessions, id)
		return nil, common.ErrNotFound
	}
	e.lastUsed = s.now()
	return e.controller, nil
}

func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict drops idle sessions and returns how many were removed. Sessions with an
// action in flight are kept.
func (s *Store) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked()
}

func (s *Store) evictLocked() int {
	n := 0
	for id, e := range s.sessions {
		if s.expired(e) && !e.controller.Busy() {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Store) expired(e *storeEntry) bool {
	return s.ttl > 0 && s.now().Sub(e.lastUsed) > s.ttl
}

// Run evicts idle sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(); n > 0 && s.deps.Log != nil {
				s.deps.Log.Debug(ctx, "idle workflow sessions evicted", "count", n)
			}
		}
	}
}
