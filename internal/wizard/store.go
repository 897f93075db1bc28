package wizard

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quotewise/intake-api/internal/domain"
)

// Store keeps live wizard sessions in memory. Sessions are short-lived; the
// durable artifact of a completed wizard run is the lead row, not the session.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
}

// NewStore creates a session store with the given idle TTL
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
	}
}

// Put registers a session
func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
}

// Get returns a session by id
func (st *Store) Get(id uuid.UUID) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Delete removes a session and cancels its poll loop if one is running
func (st *Store) Delete(id uuid.UUID) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	st.mu.Unlock()

	if ok {
		s.mu.Lock()
		poller := s.poller
		s.mu.Unlock()
		if poller != nil {
			poller.Cancel()
		}
	}
}

// Len returns the number of live sessions
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// SweepExpired evicts sessions idle longer than the TTL, canceling any poll
// loops they still own. Returns the number of evicted sessions.
func (st *Store) SweepExpired() int {
	cutoff := time.Now().UTC().Add(-st.ttl)

	st.mu.Lock()
	var expired []*Session
	for id, s := range st.sessions {
		s.mu.Lock()
		idle := s.UpdatedAt.Before(cutoff)
		s.mu.Unlock()
		if idle {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.mu.Lock()
		poller := s.poller
		s.mu.Unlock()
		if poller != nil {
			poller.Cancel()
		}
	}
	return len(expired)
}
