package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps snapshots in process memory
type MemoryStore struct {
	snapshots map[string]Snapshot
	mutex     sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string]Snapshot),
	}
}

func (s *MemoryStore) Persist(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.TableID == "" {
		return ErrInvalidTableID
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	snap.Version = s.snapshots[snap.TableID].Version + 1
	snap.Table = slices.Clone(snap.Table)
	s.snapshots[snap.TableID] = snap
	return nil
}

func (s *MemoryStore) Restore(ctx context.Context, tableID string) (Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, false, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	snap, ok := s.snapshots[tableID]
	if !ok {
		return Snapshot{}, false, nil
	}
	snap.Table = slices.Clone(snap.Table)
	return snap, true, nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	clear(s.snapshots)
	return nil
}
