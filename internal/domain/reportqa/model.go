package reportqa

import (
	"time"

	"github.com/yanqian/swing-coach/internal/domain/report"
	"github.com/yanqian/swing-coach/pkg/metrics"
)

// Config holds runtime knobs for the grounded answerer.
type Config struct {
	Model               string
	EmbeddingModel      string
	Temperature         float32
	MaxAnswerTokens     int
	CacheTTL            time.Duration
	SimilarityThreshold float64
	TopQuestions        int
}

// Request is one grounded question. The report may be supplied inline
// (unmodified, as synthesized) or referenced by the id of a handed-off
// report; one of the two is required.
type Request struct {
	Report   *report.SwingReport `json:"report"`
	ReportID string              `json:"reportId"`
	Question string              `json:"question"`
}

// Response carries the bounded answer.
type Response struct {
	Answer          string              `json:"answer"`
	ReportID        string              `json:"reportId,omitempty"`
	Source          string              `json:"source,omitempty"`
	MatchedQuestion string              `json:"matchedQuestion,omitempty"`
	Recommendations []TrendingQuestion  `json:"recommendations,omitempty"`
	DurationMs      int64               `json:"durationMs,omitempty"`
	TokenUsage      *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// TrendingQuestion is a frequently asked report question.
type TrendingQuestion struct {
	Question string `json:"question"`
	Count    int64  `json:"count"`
}

// QuestionRecord is a persisted question row, scoped to one report.
type QuestionRecord struct {
	ID           int64
	ReportID     string
	QuestionText string
	SemanticHash *uint64
}

// AnswerRecord is the payload cached per answered question.
type AnswerRecord struct {
	QuestionID int64     `json:"questionId"`
	ReportID   string    `json:"reportId"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	CreatedAt  time.Time `json:"createdAt"`
}
