// Package memory provides an in-process implementation of the store
// interfaces, used when no database is configured and as a test double.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anodelabs/anode-agent/internal/store"
)

// MemoryStore implements store.Store with an in-process slice.
type MemoryStore struct {
	runs *RunStore
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: &RunStore{}}
}

// Runs returns the RunStore.
func (s *MemoryStore) Runs() store.RunStore {
	return s.runs
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// RunStore implements store.RunStore in memory. Runs are kept newest first.
type RunStore struct {
	mu   sync.RWMutex
	runs []*store.Run
}

// Record persists a completed run.
func (s *RunStore) Record(ctx context.Context, run *store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *run
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.runs = append([]*store.Run{&stored}, s.runs...)
	return nil
}

// Latest returns the most recent run for a workload, or nil if none.
func (s *RunStore) Latest(ctx context.Context, workload string) (*store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.runs {
		if r.Workload == workload {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

// List returns up to limit runs for a workload, newest first.
func (s *RunStore) List(ctx context.Context, workload string, limit int) ([]*store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*store.Run
	for _, r := range s.runs {
		if r.Workload != workload {
			continue
		}
		copied := *r
		out = append(out, &copied)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
