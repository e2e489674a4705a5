package overlay

import (
	"context"
	"maps"
	"sync"

	"github.com/mj1618/composebox/internal/model"
)

// MemoryStore keeps placements for the life of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	points map[string]model.Point
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{points: make(map[string]model.Point)}
}

func (s *MemoryStore) Save(_ context.Context, key string, pt model.Point) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points[key] = pt
	return nil
}

func (s *MemoryStore) Load(_ context.Context, key string) (model.Point, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pt, ok := s.points[key]
	return pt, ok, nil
}

func (s *MemoryStore) List(_ context.Context) (map[string]model.Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.points), nil
}

func (s *MemoryStore) Close() error { return nil }
