package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/nvandessel/sweep/internal/experiment"
)

// InMemoryStore implements ResultStore for testing and for sessions that run
// without a data directory.
type InMemoryStore struct {
	mu      sync.RWMutex
	reports map[string][]byte // JSON snapshots, so callers can't alias stored state
}

var _ ResultStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{reports: make(map[string][]byte)}
}

// SaveReport stores a copy of the report.
func (s *InMemoryStore) SaveReport(ctx context.Context, r *experiment.Report) error {
	if r == nil || r.ID == "" {
		return fmt.Errorf("report ID is required")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to snapshot report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = data
	return nil
}

// GetReport returns a copy of the stored report.
func (s *InMemoryStore) GetReport(ctx context.Context, id string) (*experiment.Report, error) {
	s.mu.RLock()
	data, ok := s.reports[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return decodeReport(data)
}

// ListRuns returns summaries, newest first.
func (s *InMemoryStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]RunSummary, 0, len(s.reports))
	for _, data := range s.reports {
		r, err := decodeReport(data)
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(r))
	}
	slices.SortFunc(out, func(a, b RunSummary) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteRun removes a report.
func (s *InMemoryStore) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[id]; !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	delete(s.reports, id)
	return nil
}

// Close is a no-op.
func (s *InMemoryStore) Close() error { return nil }

func decodeReport(data []byte) (*experiment.Report, error) {
	var r experiment.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}
