package report

import (
	"context"
	"time"
)

// Store is the session handoff: a synthesized report stays retrievable, by
// id and as the most recent report, for later grounding.
type Store interface {
	SaveReport(ctx context.Context, record ReportRecord, ttl time.Duration) error
	GetReport(ctx context.Context, id string) (ReportRecord, bool, error)
	Latest(ctx context.Context) (ReportRecord, bool, error)
}

// ClipStorage persists uploaded swing clip bytes.
type ClipStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) (StoredClip, error)
}

// StoredClip describes a persisted clip object.
type StoredClip struct {
	Key      string
	Size     int64
	MimeType string
	ETag     string
}
