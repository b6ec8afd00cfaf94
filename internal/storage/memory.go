package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/rybla/sva-engine/pkg/sva"
)

// MemoryStore implements sva.Store in memory. Records are held as JSON so
// it round-trips exactly like the persistent backends; used for tests and
// for running without external services.
type MemoryStore[S, A any] struct {
	mu        sync.RWMutex
	instances map[uuid.UUID][]byte

	// Optional failure injection for tests.
	SaveErr error
	LoadErr error
}

func NewMemoryStore[S, A any]() *MemoryStore[S, A] {
	return &MemoryStore[S, A]{
		instances: make(map[uuid.UUID][]byte),
	}
}

func (m *MemoryStore[S, A]) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore[S, A]) Close() error { return nil }

func (m *MemoryStore[S, A]) Save(ctx context.Context, inst *sva.Instance[S, A]) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	data, err := json.Marshal(inst)
	if err != nil {
		return fmt.Errorf("failed to marshal instance: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.instances[inst.ID] = data
	return nil
}

func (m *MemoryStore[S, A]) Load(ctx context.Context, id uuid.UUID) (*sva.Instance[S, A], error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}

	m.mu.RLock()
	data, ok := m.instances[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil // Not found
	}

	var inst sva.Instance[S, A]
	if err := json.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instance: %w", err)
	}
	return &inst, nil
}

func (m *MemoryStore[S, A]) List(ctx context.Context) ([]sva.Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metas := make([]sva.Metadata, 0, len(m.instances))
	for id, data := range m.instances {
		var inst sva.Instance[S, A]
		if err := json.Unmarshal(data, &inst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal instance %s: %w", id, err)
		}
		metas = append(metas, inst.Meta())
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})
	return metas, nil
}

func (m *MemoryStore[S, A]) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.instances, id)
	return nil
}
