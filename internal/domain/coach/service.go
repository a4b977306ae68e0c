package coach

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/swing-coach/internal/domain/prompt"
	"github.com/yanqian/swing-coach/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/swing-coach/pkg/errors"
	"github.com/yanqian/swing-coach/pkg/metrics"
)

// Service exposes the free-form coaching conversation.
type Service interface {
	Chat(ctx context.Context, req Request) (Response, error)
	ChatStream(ctx context.Context, req Request) (<-chan StreamChunk, error)
}

type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
	CreateChatCompletionStream(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.Stream, error)
}

type service struct {
	cfg    Config
	client ChatClient
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires up the coaching chat domain.
func NewService(cfg Config, client ChatClient, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		client: client,
		logger: logger.With("component", "coach.service"),
		now:    time.Now,
	}
}

// Chat produces the next assistant turn. Generation failures degrade to a
// normal response carrying an apology string so callers never need to render
// a failure state for this operation.
func (s *service) Chat(ctx context.Context, req Request) (Response, error) {
	history, err := sanitizeHistory(req.Messages, s.cfg.MaxHistory)
	if err != nil {
		return Response{}, err
	}

	started := s.now()
	resp, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    s.buildMessages(history),
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.logger.Error("coach chat generation failed", "error", err)
		return Response{Content: degradeMessage(err)}, nil
	}
	if len(resp.Choices) == 0 {
		s.logger.Error("coach chat generation returned no choices")
		return Response{Content: degradeMessage(errors.New("no response generated"))}, nil
	}

	out := Response{
		Content:    resp.Choices[0].Message.Content,
		DurationMs: s.now().Sub(started).Milliseconds(),
	}
	if !usageOf(resp.Usage).IsZero() {
		usage := usageOf(resp.Usage)
		out.TokenUsage = &usage
	}
	return out, nil
}

// ChatStream streams the assistant turn as it is generated.
func (s *service) ChatStream(ctx context.Context, req Request) (<-chan StreamChunk, error) {
	history, err := sanitizeHistory(req.Messages, s.cfg.MaxHistory)
	if err != nil {
		return nil, err
	}

	stream, err := s.client.CreateChatCompletionStream(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    s.buildMessages(history),
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, apperrors.Wrap("llm_error", "coach stream request failed", err)
	}

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		defer stream.Close()

		var builder strings.Builder
		for {
			chunk, recvErr := stream.Recv()
			if recvErr != nil {
				if !errors.Is(recvErr, io.EOF) {
					s.logger.Error("coach stream recv failed", "error", recvErr)
				}
				break
			}
			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				builder.WriteString(choice.Delta.Content)
				out <- StreamChunk{PartialContent: builder.String()}
			}
		}
		if builder.Len() > 0 {
			out <- StreamChunk{PartialContent: builder.String(), Completed: true}
		}
	}()

	return out, nil
}

func (s *service) buildMessages(history []Message) []chatgpt.Message {
	messages := make([]chatgpt.Message, 0, len(history)+1)
	messages = append(messages, chatgpt.Message{
		Role:    "system",
		Content: prompt.Compose(prompt.OperationCoachChat),
	})
	for _, msg := range history {
		messages = append(messages, chatgpt.Message{Role: msg.Role, Content: msg.Content})
	}
	return messages
}

// sanitizeHistory validates roles and trims the visible window to the newest
// maxHistory turns.
func sanitizeHistory(messages []Message, maxHistory int) ([]Message, error) {
	history := make([]Message, 0, len(messages))
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		role := strings.ToLower(strings.TrimSpace(msg.Role))
		if role != RoleUser && role != RoleAssistant {
			return nil, apperrors.Wrap("invalid_input", "message role must be user or assistant", nil)
		}
		history = append(history, Message{Role: role, Content: content})
	}
	if len(history) == 0 {
		return nil, apperrors.Wrap("invalid_input", "message history cannot be empty", nil)
	}
	if maxHistory > 0 && len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	return history, nil
}

func degradeMessage(err error) string {
	message := "Unknown error."
	if err != nil {
		message = err.Error()
	}
	return "Server error while generating your coaching response: " + message
}

func usageOf(u chatgpt.Usage) metrics.TokenUsage {
	return metrics.TokenUsage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}
