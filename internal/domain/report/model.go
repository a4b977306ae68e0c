package report

import (
	"strings"
	"time"
)

// Config configures report synthesis.
type Config struct {
	Model        string
	Temperature  float32
	ReportTTL    time.Duration
	MaxClipBytes int64
}

// PlayerProfile is the per-request player context. It is created once per
// synthesis request and immutable afterwards.
type PlayerProfile struct {
	Name       string `json:"name"`
	Handicap   string `json:"handicap"`
	Hand       string `json:"hand"`
	Eye        string `json:"eye"`
	Club       string `json:"club"`
	Notes      string `json:"notes"`
	BallFlight string `json:"ballFlight"`
}

// ApplyDefaults fills every blank field with its documented fallback so no
// downstream consumer ever re-checks for empty values.
func (p PlayerProfile) ApplyDefaults() PlayerProfile {
	return PlayerProfile{
		Name:       fallback(p.Name, "Player"),
		Handicap:   fallback(p.Handicap, "N/A"),
		Hand:       fallback(p.Hand, "Right"),
		Eye:        fallback(p.Eye, "Unknown"),
		Club:       fallback(p.Club, "N/A"),
		Notes:      fallback(p.Notes, "N/A"),
		BallFlight: fallback(p.BallFlight, "N/A"),
	}
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

// CheckpointStatus is the tri-state severity of one swing checkpoint.
type CheckpointStatus string

const (
	StatusGreen  CheckpointStatus = "GREEN"
	StatusYellow CheckpointStatus = "YELLOW"
	StatusRed    CheckpointStatus = "RED"
)

// Known reports whether the status is one of the three contract values.
// Unknown statuses are passed through for renderers to treat as a fourth
// visual state, never rejected.
func (s CheckpointStatus) Known() bool {
	switch s {
	case StatusGreen, StatusYellow, StatusRed:
		return true
	}
	return false
}

// Checkpoint is one labeled stage (P1-P9) of the swing model.
type Checkpoint struct {
	Label       string           `json:"label"`
	Phase       string           `json:"phase"`
	Status      CheckpointStatus `json:"status"`
	Note        string           `json:"note"`
	Short       string           `json:"short,omitempty"`
	Long        string           `json:"long,omitempty"`
	SearchQuery string           `json:"youtubeQuery,omitempty"`
}

// PlanBlock is one multi-day chunk of the practice plan.
type PlanBlock struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// SwingReport is the synthesized artifact. It is read-only once created;
// the grounded answerer never mutates it.
type SwingReport struct {
	PlayerName    string       `json:"playerName"`
	Hand          string       `json:"hand"`
	Eye           string       `json:"eye"`
	Handicap      string       `json:"handicap"`
	Summary       []string     `json:"summary"`
	Strengths     []string     `json:"strengths"`
	PriorityFixes []string     `json:"priorityFixes"`
	PowerLeaks    []string     `json:"powerLeaks"`
	Checkpoints   []Checkpoint `json:"checkpoints"`
	PlanBlocks    []PlanBlock  `json:"planBlocks"`
}

// TopPriority resolves the ONE priority of the coaching contract: the first
// priority fix, when present.
func (r *SwingReport) TopPriority() (string, bool) {
	if r == nil || len(r.PriorityFixes) == 0 {
		return "", false
	}
	return r.PriorityFixes[0], true
}

// ClipUpload is an uploaded swing clip. Its bytes are opaque: the system
// never decodes frames, only its name and size feed the evidence line.
type ClipUpload struct {
	Filename string
	MimeType string
	Content  []byte
}

// SynthesisInput is the normalized input of one synthesis request.
type SynthesisInput struct {
	Profile PlayerProfile
	Clip    *ClipUpload
}

// Result is the synthesis outcome. Report is nil on a soft failure, in which
// case Message describes why; a nil report is never an error.
type Result struct {
	ReportID string       `json:"reportId,omitempty"`
	Report   *SwingReport `json:"report"`
	ClipKey  string       `json:"clipKey,omitempty"`
	Message  string       `json:"error,omitempty"`
}

// ReportRecord wraps a stored report for the session handoff.
type ReportRecord struct {
	ID        string      `json:"id"`
	Report    SwingReport `json:"report"`
	ClipKey   string      `json:"clipKey,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
