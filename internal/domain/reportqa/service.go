package reportqa

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/swing-coach/internal/domain/prompt"
	"github.com/yanqian/swing-coach/internal/domain/report"
	"github.com/yanqian/swing-coach/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/swing-coach/pkg/errors"
	"github.com/yanqian/swing-coach/pkg/metrics"
	"github.com/yanqian/swing-coach/pkg/tokens"
)

// Service answers questions bounded to one previously synthesized report.
type Service interface {
	Answer(ctx context.Context, req Request) (Response, error)
	Trending(ctx context.Context) ([]TrendingQuestion, error)
}

type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
	CreateEmbedding(ctx context.Context, req chatgpt.EmbeddingRequest) (chatgpt.EmbeddingResponse, error)
}

type service struct {
	cfg     Config
	client  ChatClient
	repo    QuestionRepository
	store   Store
	reports report.Store
	logger  *slog.Logger
	hasher  *semanticHasher
	now     func() time.Time
}

// NewService wires up the grounded Q&A domain.
func NewService(cfg Config, client ChatClient, repo QuestionRepository, store Store, reports report.Store, logger *slog.Logger) Service {
	return &service{
		cfg:     cfg,
		client:  client,
		repo:    repo,
		store:   store,
		reports: reports,
		logger:  logger.With("component", "reportqa.service"),
		hasher:  newSemanticHasher(defaultSemanticHashPlanes, defaultSemanticHashSeed),
		now:     time.Now,
	}
}

// Answer validates preconditions, resolves the grounding report, and either
// serves a cached answer for a previously seen question or makes exactly one
// generation call. Missing question or report is rejected before anything
// leaves the process.
func (s *service) Answer(ctx context.Context, req Request) (Response, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return Response{}, apperrors.Wrap("invalid_input", "question cannot be empty", nil)
	}

	rep, reportID, err := s.resolveReport(ctx, req)
	if err != nil {
		return Response{}, err
	}

	started := s.now()
	record, found := s.lookupQuestion(ctx, reportID, question)

	var (
		answer          string
		source          = "llm"
		matchedQuestion = question
		usage           *metrics.TokenUsage
	)

	if found {
		matchedQuestion = record.QuestionText
		if cached, ok, cacheErr := s.store.GetAnswer(ctx, record.ID); cacheErr == nil && ok {
			answer = cached.Answer
			source = "cache"
		} else if cacheErr != nil {
			s.logger.Warn("answer cache lookup failed", "error", cacheErr)
		}
	}

	if answer == "" {
		answer, usage, err = s.generate(ctx, rep, question)
		if err != nil {
			return Response{}, err
		}
		s.cacheAnswer(ctx, reportID, record, found, question, answer)
	}

	if trendErr := s.store.IncrementQuestion(ctx, normalizeQuestion(question), question); trendErr != nil {
		s.logger.Warn("trending increment failed", "error", trendErr)
	}
	recs, trendErr := s.store.TopQuestions(ctx, s.cfg.TopQuestions)
	if trendErr != nil {
		s.logger.Warn("trending fetch failed", "error", trendErr)
		recs = nil
	}

	return Response{
		Answer:          answer,
		ReportID:        reportID,
		Source:          source,
		MatchedQuestion: matchedQuestion,
		Recommendations: recs,
		DurationMs:      s.now().Sub(started).Milliseconds(),
		TokenUsage:      usage,
	}, nil
}

// Trending returns the most frequently asked report questions.
func (s *service) Trending(ctx context.Context) ([]TrendingQuestion, error) {
	recs, err := s.store.TopQuestions(ctx, s.cfg.TopQuestions)
	if err != nil {
		return nil, apperrors.Wrap("qa_error", "failed to load trending questions", err)
	}
	return recs, nil
}

// resolveReport enforces the precondition: an inline report wins, a reportId
// resolves against the handoff store, and having neither is a client error.
func (s *service) resolveReport(ctx context.Context, req Request) (*report.SwingReport, string, error) {
	if req.Report != nil {
		return req.Report, strings.TrimSpace(req.ReportID), nil
	}
	id := strings.TrimSpace(req.ReportID)
	if id == "" {
		return nil, "", apperrors.Wrap("invalid_input", "report or reportId is required", nil)
	}
	record, found, err := s.reports.GetReport(ctx, id)
	if err != nil {
		return nil, "", apperrors.Wrap("qa_error", "report lookup failed", err)
	}
	if !found {
		return nil, "", apperrors.Wrap("invalid_input", "no report found for reportId", nil)
	}
	return &record.Report, id, nil
}

// lookupQuestion tries exact, then semantic-hash, then nearest-neighbour
// lookup. Cache infrastructure failures never fail the answer; the report is
// the source of truth and the LLM path remains available.
func (s *service) lookupQuestion(ctx context.Context, reportID, question string) (QuestionRecord, bool) {
	if reportID == "" {
		return QuestionRecord{}, false
	}

	if rec, found, err := s.repo.FindExact(ctx, reportID, question); err != nil {
		s.logger.Warn("exact question lookup failed", "error", err)
	} else if found {
		return rec, true
	}

	embedding, err := s.embedQuestion(ctx, question)
	if err != nil || len(embedding) == 0 {
		if err != nil {
			s.logger.Warn("question embedding failed", "error", err)
		}
		return QuestionRecord{}, false
	}

	if hash, ok, hashErr := s.hasher.Hash(embedding); hashErr == nil && ok {
		if rec, found, lookupErr := s.repo.FindBySemanticHash(ctx, reportID, hash); lookupErr != nil {
			s.logger.Warn("semantic hash lookup failed", "error", lookupErr)
		} else if found {
			return rec, true
		}
	}

	match, found, err := s.repo.FindNearest(ctx, reportID, embedding)
	if err != nil {
		s.logger.Warn("similarity lookup failed", "error", err)
		return QuestionRecord{}, false
	}
	if found && match.Distance <= s.cfg.SimilarityThreshold {
		return match.Question, true
	}
	return QuestionRecord{}, false
}

func (s *service) generate(ctx context.Context, rep *report.SwingReport, question string) (string, *metrics.TokenUsage, error) {
	system := prompt.Compose(prompt.OperationGroundedQA)
	user := buildQuestionPrompt(BuildGroundingContext(rep), question)

	resp, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxAnswerTokens,
		Messages: []chatgpt.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", nil, apperrors.Wrap("llm_error", "answer generation failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil, apperrors.Wrap("llm_error", "answer generation returned no choices", errors.New("empty choices"))
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", nil, apperrors.Wrap("llm_error", "answer generation returned empty content", nil)
	}

	usage := metrics.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if usage.IsZero() {
		// Provider gave no accounting; estimate the prompt side locally.
		usage.PromptTokens = tokens.EstimateAll(s.cfg.Model, system, user)
		usage.TotalTokens = usage.PromptTokens
	}
	return answer, &usage, nil
}

// cacheAnswer persists the question row (when new) and the answer. Failures
// are logged only: caching is an optimization, not part of the contract.
func (s *service) cacheAnswer(ctx context.Context, reportID string, record QuestionRecord, found bool, question, answer string) {
	if reportID == "" {
		return
	}
	if !found {
		embedding, err := s.embedQuestion(ctx, question)
		if err != nil {
			s.logger.Warn("question embedding failed", "error", err)
			return
		}
		var hashPtr *uint64
		if hash, ok, hashErr := s.hasher.Hash(embedding); hashErr == nil && ok {
			hashCopy := hash
			hashPtr = &hashCopy
		}
		record, err = s.repo.InsertQuestion(ctx, reportID, question, embedding, hashPtr)
		if err != nil {
			s.logger.Warn("question insert failed", "error", err)
			return
		}
	}
	if err := s.store.SaveAnswer(ctx, AnswerRecord{
		QuestionID: record.ID,
		ReportID:   reportID,
		Question:   question,
		Answer:     answer,
		CreatedAt:  s.now().UTC(),
	}, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("answer cache save failed", "error", err)
	}
}

func (s *service) embedQuestion(ctx context.Context, text string) ([]float32, error) {
	input := strings.TrimSpace(text)
	if input == "" {
		return nil, nil
	}
	resp, err := s.client.CreateEmbedding(ctx, chatgpt.EmbeddingRequest{
		Model: s.cfg.EmbeddingModel,
		Input: input,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("embedding response empty")
	}
	vector := make([]float32, len(resp.Data[0].Embedding))
	copy(vector, resp.Data[0].Embedding)
	return vector, nil
}
