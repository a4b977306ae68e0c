package coach

import "github.com/yanqian/swing-coach/pkg/metrics"

// Config configures the coaching chat.
type Config struct {
	Model       string
	Temperature float32
	MaxHistory  int
}

// Message is one turn of the caller-owned conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries the full history including the newest user turn. The
// history is caller-owned; the service never stores it.
type Request struct {
	Messages []Message `json:"messages"`
}

// Response is the next assistant turn.
type Response struct {
	Content    string              `json:"content"`
	DurationMs int64               `json:"durationMs,omitempty"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// StreamChunk represents a streaming update of the assistant turn.
type StreamChunk struct {
	PartialContent string `json:"partial_content"`
	Completed      bool   `json:"completed"`
}

// Roles accepted in the incoming history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
