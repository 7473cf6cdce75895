package conversation

import (
	"sync"
	"time"

	"github.com/ziadkadry99/apptagent/internal/business"
)

// Store maps session ids to contexts. Contexts live until Reset or process
// exit; nothing expires them.
type Store struct {
	mu       sync.RWMutex
	contexts map[string]*Context
	locks    map[string]*sync.Mutex
	now      func() time.Time
}

// NewStore creates an empty store. A nil now means time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		contexts: make(map[string]*Context),
		locks:    make(map[string]*sync.Mutex),
		now:      now,
	}
}

// Lock serializes work on one session. Every read or write of a Context
// happens between Lock and the returned unlock; sessions do not block each
// other.
func (s *Store) Lock(sessionID string) (unlock func()) {
	s.mu.Lock()
	m, ok := s.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[sessionID] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// GetOrCreate returns the context for sessionID, creating it on first use.
// On later calls businessType and required are ignored.
func (s *Store) GetOrCreate(sessionID string, businessType business.Type, required []string) *Context {
	s.mu.RLock()
	c, ok := s.contexts[sessionID]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.contexts[sessionID]; ok {
		return c
	}
	c = newContext(sessionID, businessType, required, s.now)
	s.contexts[sessionID] = c
	return c
}

// Get returns the context for sessionID, if any.
func (s *Store) Get(sessionID string) (*Context, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contexts[sessionID]
	return c, ok
}

// Reset deletes the context for sessionID once any turn in flight on it is
// done. It reports whether one existed. The session lock itself is kept.
func (s *Store) Reset(sessionID string) bool {
	unlock := s.Lock(sessionID)
	defer unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.contexts[sessionID]
	delete(s.contexts, sessionID)
	return ok
}

// UpdateStage sets the stage of an existing session; unknown sessions are
// ignored.
func (s *Store) UpdateStage(sessionID string, stage Stage) {
	s.mu.RLock()
	c, ok := s.contexts[sessionID]
	s.mu.RUnlock()
	if !ok {
		return
	}
	unlock := s.Lock(sessionID)
	defer unlock()
	c.Stage = stage
	c.touch()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contexts)
}

// IDs returns the live session ids in no particular order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.contexts))
	for id := range s.contexts {
		ids = append(ids, id)
	}
	return ids
}
