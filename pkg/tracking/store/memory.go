package store

import (
	"context"
	"sort"
	"sync"

	"github.com/mlfoundry/modeltrack/pkg/errors"
)

// MemoryStore is an in-memory run store for development and testing.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Run)}
}

// CreateRun persists a new run record.
func (s *MemoryStore) CreateRun(ctx context.Context, run *Run) error {
	if err := errors.ValidateRunID(run.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

// GetRun retrieves a run by ID.
func (s *MemoryStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeRunNotFound, "run %s not found", id)
	}
	cp := *run
	return &cp, nil
}

// UpdateRun replaces an existing run record.
func (s *MemoryStore) UpdateRun(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; !ok {
		return errors.New(errors.ErrCodeRunNotFound, "run %s not found", run.ID)
	}
	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

// ListRuns returns all runs, most recently started first.
func (s *MemoryStore) ListRuns(ctx context.Context) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]*Run, 0, len(s.runs))
	for _, run := range s.runs {
		cp := *run
		runs = append(runs, &cp)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.After(runs[j].StartTime)
	})
	return runs, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
