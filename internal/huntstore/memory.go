package huntstore

import (
	"context"
	"sort"
	"sync"

	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

// MemoryStore keeps hunts in process memory. Nothing survives a restart.
type MemoryStore struct {
	opts  Options
	mu    sync.RWMutex
	hunts map[string]Hunt
}

func NewMemoryStore(opts Options) *MemoryStore {
	return &MemoryStore{opts: opts, hunts: make(map[string]Hunt)}
}

func (s *MemoryStore) CreateHunt(_ context.Context, id string, state treasurehunt.State) (Hunt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hunts[id]; ok {
		return Hunt{}, ErrExists
	}
	t := now()
	h := Hunt{ID: id, Version: 1, State: state.Clone(), CreatedAt: t, UpdatedAt: t}
	s.hunts[id] = h
	return withClone(h), nil
}

func (s *MemoryStore) ListHunts(_ context.Context) ([]Hunt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hunts := make([]Hunt, 0, len(s.hunts))
	for _, h := range s.hunts {
		hunts = append(hunts, withClone(h))
	}
	sort.Slice(hunts, func(i, j int) bool { return hunts[i].ID < hunts[j].ID })
	return hunts, nil
}

func (s *MemoryStore) Hunt(ctx context.Context, id string) (Hunt, error) {
	return s.load(ctx, id)
}

func (s *MemoryStore) Apply(ctx context.Context, id string, action treasurehunt.Action) (Result, error) {
	return apply(ctx, s, s.opts, id, action)
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) load(_ context.Context, id string) (Hunt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.hunts[id]
	if !ok {
		return Hunt{}, ErrNotFound
	}
	return withClone(h), nil
}

func (s *MemoryStore) commit(_ context.Context, prev Hunt, next treasurehunt.State) (Hunt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.hunts[prev.ID]
	if !ok {
		return Hunt{}, ErrNotFound
	}
	if cur.Version != prev.Version {
		return Hunt{}, ErrConflict
	}
	cur.Version++
	cur.State = next.Clone()
	cur.UpdatedAt = now()
	s.hunts[cur.ID] = cur
	return withClone(cur), nil
}

func withClone(h Hunt) Hunt {
	h.State = h.State.Clone()
	return h
}
