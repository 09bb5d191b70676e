package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store loads and saves conversation state.  Implementations must return a
// copy from GetOrCreate; changes become visible only after Save.  This lets
// a failed turn leave the stored state exactly as it was.
type Store interface {
	GetOrCreate(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, st *State) error
}

// MemoryStore keeps sessions in process memory.  Sessions idle for longer
// than the TTL are removed by Sweep; a zero TTL keeps them forever.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*State
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore(ttl time.Duration, logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		sessions: map[string]*State{},
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// GetOrCreate returns a copy of the state for id, inserting a fresh one if
// the id has not been seen.
func (s *MemoryStore) GetOrCreate(_ context.Context, id string) (*State, error) {
	s.mu.RLock()
	st, ok := s.sessions[id]
	if ok {
		c := st.Clone()
		s.mu.RUnlock()
		return c, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.sessions[id]; ok {
		return st.Clone(), nil
	}
	st = New(id, s.now())
	s.sessions[id] = st
	return st.Clone(), nil
}

// Save replaces the stored state with a copy of st.
func (s *MemoryStore) Save(_ context.Context, st *State) error {
	c := st.Clone()
	c.UpdatedAt = s.now()
	s.mu.Lock()
	s.sessions[st.ID] = c
	s.mu.Unlock()
	return nil
}

// Len reports how many sessions are held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts sessions whose last update is older than the TTL and returns
// how many were removed.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, st := range s.sessions {
		if st.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) error {
	if s.ttl <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("evicted idle sessions", zap.Int("count", n), zap.Duration("ttl", s.ttl))
			}
		}
	}
}
