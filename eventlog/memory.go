package eventlog

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests and short-lived sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	runs  map[string][]*Event
	order []*Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string][]*Event)}
}

func (s *MemoryStore) Append(ctx context.Context, runID string, expectedSeq int64, events []*Event) (int64, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.runs[runID]
	tail := int64(len(run)) - 1
	if tail != expectedSeq {
		return tail, ErrConcurrencyConflict
	}
	for _, e := range events {
		tail++
		e.RunID = runID
		e.Seq = tail
		stored := *e
		s.runs[runID] = append(s.runs[runID], &stored)
		s.order = append(s.order, &stored)
	}
	return tail, nil
}

func (s *MemoryStore) Read(ctx context.Context, runID string, fromSeq int64) ([]*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, e := range s.runs[runID] {
		if e.Seq >= fromSeq {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *MemoryStore) LastSeq(ctx context.Context, runID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.runs[runID])) - 1, nil
}

func (s *MemoryStore) ReadAll(ctx context.Context, filter Filter) ([]*Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, e := range s.order {
		if filter.match(e) {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *MemoryStore) DeleteRun(ctx context.Context, runID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.runs, runID)
	kept := s.order[:0]
	for _, e := range s.order {
		if e.RunID != runID {
			kept = append(kept, e)
		}
	}
	s.order = kept
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
