package qastore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yanqian/swing-coach/internal/domain/reportqa"
)

type cachedAnswer struct {
	payload   reportqa.AnswerRecord
	expiresAt time.Time
}

// MemoryStore is an in-memory answer cache for tests/dev.
type MemoryStore struct {
	mu       sync.RWMutex
	answers  map[int64]cachedAnswer
	trending map[string]int64
	displays map[string]string
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		answers:  make(map[int64]cachedAnswer),
		trending: make(map[string]int64),
		displays: make(map[string]string),
	}
}

// GetAnswer implements reportqa.Store.
func (s *MemoryStore) GetAnswer(_ context.Context, questionID int64) (reportqa.AnswerRecord, bool, error) {
	if questionID <= 0 {
		return reportqa.AnswerRecord{}, false, nil
	}
	s.mu.RLock()
	record, ok := s.answers[questionID]
	s.mu.RUnlock()
	if !ok {
		return reportqa.AnswerRecord{}, false, nil
	}
	if hasExpired(record.expiresAt) {
		s.mu.Lock()
		delete(s.answers, questionID)
		s.mu.Unlock()
		return reportqa.AnswerRecord{}, false, nil
	}
	return record.payload, true, nil
}

// SaveAnswer caches the answer with optional TTL.
func (s *MemoryStore) SaveAnswer(_ context.Context, record reportqa.AnswerRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.answers[record.QuestionID] = cachedAnswer{payload: record, expiresAt: exp}
	return nil
}

// IncrementQuestion bumps the counter for a canonical question and records a
// display string.
func (s *MemoryStore) IncrementQuestion(_ context.Context, canonical, display string) error {
	if canonical == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trending[canonical]++
	if _, exists := s.displays[canonical]; !exists {
		s.displays[canonical] = display
	}
	return nil
}

// TopQuestions returns the most frequently asked questions.
func (s *MemoryStore) TopQuestions(_ context.Context, limit int) ([]reportqa.TrendingQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = len(s.trending)
	}
	items := make([]reportqa.TrendingQuestion, 0, len(s.trending))
	for canonical, count := range s.trending {
		display := s.displays[canonical]
		if display == "" {
			display = canonical
		}
		items = append(items, reportqa.TrendingQuestion{Question: display, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Question < items[j].Question
		}
		return items[i].Count > items[j].Count
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ reportqa.Store = (*MemoryStore)(nil)
