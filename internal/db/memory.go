package db

import (
	"context"
	"sort"
	"sync"

	"github.com/Krrish0621/Mind-Care-sub000/pkg"
)

// MemoryStore keeps screening results in process memory.  Results are lost
// on restart; it backs the default "memory" driver and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	results []pkg.ScreeningResult
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func copyResult(res pkg.ScreeningResult) pkg.ScreeningResult {
	res.Answers = append([]int(nil), res.Answers...)
	return res
}

// SaveResult appends a copy of res.
func (s *MemoryStore) SaveResult(_ context.Context, res *pkg.ScreeningResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, copyResult(*res))
	return nil
}

// ListResults returns up to limit results for userToken, newest first.
func (s *MemoryStore) ListResults(_ context.Context, userToken string, limit int) ([]pkg.ScreeningResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []pkg.ScreeningResult{}
	// walk backwards so equal timestamps keep insertion order reversed
	for i := len(s.results) - 1; i >= 0; i-- {
		if s.results[i].UserToken == userToken {
			out = append(out, copyResult(s.results[i]))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len reports how many results are held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}
