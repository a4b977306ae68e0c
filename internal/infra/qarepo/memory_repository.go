package qarepo

import (
	"context"
	"math"
	"sync"

	"github.com/yanqian/swing-coach/internal/domain/reportqa"
)

type memoryQuestion struct {
	record    reportqa.QuestionRecord
	embedding []float32
}

type textKey struct {
	reportID string
	question string
}

type hashKey struct {
	reportID string
	hash     uint64
}

// MemoryRepository is an in-memory QuestionRepository used for tests/dev.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64

	records map[int64]memoryQuestion
	byText  map[textKey]int64
	byHash  map[hashKey]int64
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:  1,
		records: make(map[int64]memoryQuestion),
		byText:  make(map[textKey]int64),
		byHash:  make(map[hashKey]int64),
	}
}

// FindExact implements reportqa.QuestionRepository.
func (r *MemoryRepository) FindExact(_ context.Context, reportID, question string) (reportqa.QuestionRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byText[textKey{reportID: reportID, question: question}]
	if !ok {
		return reportqa.QuestionRecord{}, false, nil
	}
	rec := r.records[id]
	return rec.record, true, nil
}

// FindBySemanticHash implements reportqa.QuestionRepository.
func (r *MemoryRepository) FindBySemanticHash(_ context.Context, reportID string, hash uint64) (reportqa.QuestionRecord, bool, error) {
	if hash == 0 {
		return reportqa.QuestionRecord{}, false, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byHash[hashKey{reportID: reportID, hash: hash}]
	if !ok {
		return reportqa.QuestionRecord{}, false, nil
	}
	rec := r.records[id]
	return rec.record, true, nil
}

// FindNearest implements reportqa.QuestionRepository.
func (r *MemoryRepository) FindNearest(_ context.Context, reportID string, embedding []float32) (reportqa.SimilarityMatch, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		best   reportqa.SimilarityMatch
		hasAny bool
	)
	for _, candidate := range r.records {
		if candidate.record.ReportID != reportID {
			continue
		}
		dist := euclideanDistance(embedding, candidate.embedding)
		if !hasAny || dist < best.Distance {
			hasAny = true
			best = reportqa.SimilarityMatch{
				Question: candidate.record,
				Distance: dist,
			}
		}
	}
	if !hasAny {
		return reportqa.SimilarityMatch{}, false, nil
	}
	return best, true, nil
}

// InsertQuestion implements reportqa.QuestionRepository.
func (r *MemoryRepository) InsertQuestion(_ context.Context, reportID, question string, embedding []float32, hash *uint64) (reportqa.QuestionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++

	record := reportqa.QuestionRecord{
		ID:           id,
		ReportID:     reportID,
		QuestionText: question,
	}
	if hash != nil {
		clone := *hash
		record.SemanticHash = &clone
		r.byHash[hashKey{reportID: reportID, hash: clone}] = id
	}

	r.records[id] = memoryQuestion{
		record:    record,
		embedding: append([]float32(nil), embedding...),
	}
	r.byText[textKey{reportID: reportID, question: question}] = id

	return record, nil
}

func euclideanDistance(a, b []float32) float64 {
	length := len(a)
	if len(b) < length {
		length = len(b)
	}
	var sum float64
	for i := 0; i < length; i++ {
		diff := float64(a[i] - b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

var _ reportqa.QuestionRepository = (*MemoryRepository)(nil)
