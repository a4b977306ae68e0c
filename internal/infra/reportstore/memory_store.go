package reportstore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/swing-coach/internal/domain/report"
)

type storedReport struct {
	payload   report.ReportRecord
	expiresAt time.Time
}

// MemoryStore is an in-memory report store for tests/dev.
type MemoryStore struct {
	mu       sync.RWMutex
	reports  map[string]storedReport
	latestID string
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]storedReport)}
}

// SaveReport implements report.Store.
func (s *MemoryStore) SaveReport(_ context.Context, record report.ReportRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.reports[record.ID] = storedReport{payload: record, expiresAt: exp}
	s.latestID = record.ID
	return nil
}

// GetReport implements report.Store.
func (s *MemoryStore) GetReport(_ context.Context, id string) (report.ReportRecord, bool, error) {
	if id == "" {
		return report.ReportRecord{}, false, nil
	}
	s.mu.RLock()
	record, ok := s.reports[id]
	s.mu.RUnlock()
	if !ok {
		return report.ReportRecord{}, false, nil
	}
	if hasExpired(record.expiresAt) {
		s.mu.Lock()
		delete(s.reports, id)
		s.mu.Unlock()
		return report.ReportRecord{}, false, nil
	}
	return record.payload, true, nil
}

// Latest implements report.Store.
func (s *MemoryStore) Latest(ctx context.Context) (report.ReportRecord, bool, error) {
	s.mu.RLock()
	id := s.latestID
	s.mu.RUnlock()
	return s.GetReport(ctx, id)
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ report.Store = (*MemoryStore)(nil)
