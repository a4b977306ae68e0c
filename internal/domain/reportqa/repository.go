package reportqa

import "context"

// SimilarityMatch contains the best embedding match and its distance.
type SimilarityMatch struct {
	Question QuestionRecord
	Distance float64
}

// QuestionRepository persists asked questions per report so repeat questions
// can reuse cached grounded answers.
type QuestionRepository interface {
	FindExact(ctx context.Context, reportID, question string) (QuestionRecord, bool, error)
	FindBySemanticHash(ctx context.Context, reportID string, hash uint64) (QuestionRecord, bool, error)
	FindNearest(ctx context.Context, reportID string, embedding []float32) (SimilarityMatch, bool, error)
	InsertQuestion(ctx context.Context, reportID, question string, embedding []float32, hash *uint64) (QuestionRecord, error)
}
