package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/swing-coach/internal/domain/prompt"
	"github.com/yanqian/swing-coach/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/swing-coach/pkg/errors"
)

// Service synthesizes structured swing reports and exposes the handoff.
type Service interface {
	Synthesize(ctx context.Context, input SynthesisInput) (Result, error)
	Get(ctx context.Context, id string) (ReportRecord, bool, error)
	Latest(ctx context.Context) (ReportRecord, bool, error)
}

type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

type service struct {
	cfg    Config
	client ChatClient
	store  Store
	clips  ClipStorage
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewService wires up the report domain. clips may be nil when clip storage
// is disabled; synthesis then runs on metadata alone.
func NewService(cfg Config, client ChatClient, store Store, clips ClipStorage, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		client: client,
		store:  store,
		clips:  clips,
		logger: logger.With("component", "report.service"),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// Synthesize runs the full contract: normalize the profile, compose the
// strict-shape instruction and deterministic context, make exactly one
// generation call, and parse the result. A result that does not parse as the
// declared shape is a null report, never an error; only transport failures
// surface as errors.
func (s *service) Synthesize(ctx context.Context, input SynthesisInput) (Result, error) {
	profile := input.Profile.ApplyDefaults()

	clipKey := s.storeClip(ctx, input.Clip)
	evidence := clipEvidence(input.Clip)

	resp, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:          s.cfg.Model,
		Temperature:    s.cfg.Temperature,
		ResponseFormat: chatgpt.JSONObjectFormat(),
		Messages: []chatgpt.Message{
			{Role: "system", Content: prompt.Compose(prompt.OperationReportSynthesis)},
			{Role: "user", Content: BuildPlayerContext(profile, evidence)},
		},
	})
	if err != nil {
		return Result{}, apperrors.Wrap("llm_error", "report generation failed", err)
	}

	raw := ""
	if len(resp.Choices) > 0 {
		raw = resp.Choices[0].Message.Content
	}
	parsed, parseErr := parseSwingReport(raw)
	if parseErr != nil {
		s.logger.Warn("generated report did not match the declared shape", "error", parseErr)
		return Result{
			Report:  nil,
			ClipKey: clipKey,
			Message: "the generated report did not match the expected shape; try again with a fuller description",
		}, nil
	}

	record := ReportRecord{
		ID:        s.newID(),
		Report:    *parsed,
		ClipKey:   clipKey,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.SaveReport(ctx, record, s.cfg.ReportTTL); err != nil {
		// The report is still returned; only the handoff copy is lost.
		s.logger.Warn("report handoff save failed", "reportId", record.ID, "error", err)
	}

	s.logger.Info("swing report synthesized",
		"reportId", record.ID,
		"checkpoints", len(parsed.Checkpoints),
		"priorityFixes", len(parsed.PriorityFixes))

	return Result{
		ReportID: record.ID,
		Report:   parsed,
		ClipKey:  clipKey,
	}, nil
}

// Get resolves a previously synthesized report by id.
func (s *service) Get(ctx context.Context, id string) (ReportRecord, bool, error) {
	return s.store.GetReport(ctx, id)
}

// Latest resolves the most recently synthesized report.
func (s *service) Latest(ctx context.Context) (ReportRecord, bool, error) {
	return s.store.Latest(ctx)
}

// storeClip archives the uploaded clip when storage is configured. Failures
// are logged and swallowed: the evidence line needs only name and size.
func (s *service) storeClip(ctx context.Context, clip *ClipUpload) string {
	if s.clips == nil || clip == nil || len(clip.Content) == 0 {
		return ""
	}
	if s.cfg.MaxClipBytes > 0 && int64(len(clip.Content)) > s.cfg.MaxClipBytes {
		s.logger.Warn("clip exceeds archive limit, skipping storage", "size", len(clip.Content))
		return ""
	}
	key := fmt.Sprintf("clips/%s-%s", s.newID(), sanitizeFilename(clip.Filename))
	stored, err := s.clips.Put(ctx, key, clip.Content, clip.MimeType)
	if err != nil {
		s.logger.Warn("clip storage failed", "key", key, "error", err)
		return ""
	}
	return stored.Key
}

func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "clip"
	}
	return string(out)
}
