package reportqa

import (
	"context"
	"time"
)

// Store caches grounded answers and tracks question frequency.
type Store interface {
	GetAnswer(ctx context.Context, questionID int64) (AnswerRecord, bool, error)
	SaveAnswer(ctx context.Context, record AnswerRecord, ttl time.Duration) error
	IncrementQuestion(ctx context.Context, canonical, display string) error
	TopQuestions(ctx context.Context, limit int) ([]TrendingQuestion, error)
}
