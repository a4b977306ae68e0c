package reportstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/swing-coach/internal/domain/report"
)

// ValkeyStore keeps synthesized reports retrievable across requests using a
// Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a report store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "report"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) SaveReport(ctx context.Context, record report.ReportRecord, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := s.setString(ctx, s.reportKey(record.ID), string(payload), ttl); err != nil {
		return err
	}
	// The latest pointer shares the report TTL so a stale id never outlives
	// the report it points at.
	return s.setString(ctx, s.latestKey(), record.ID, ttl)
}

func (s *ValkeyStore) GetReport(ctx context.Context, id string) (report.ReportRecord, bool, error) {
	if id == "" {
		return report.ReportRecord{}, false, nil
	}
	result := s.client.Do(ctx, s.client.B().Get().Key(s.reportKey(id)).Build())
	payload, err := result.ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return report.ReportRecord{}, false, nil
		}
		return report.ReportRecord{}, false, err
	}
	var record report.ReportRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return report.ReportRecord{}, false, err
	}
	return record, true, nil
}

func (s *ValkeyStore) Latest(ctx context.Context) (report.ReportRecord, bool, error) {
	result := s.client.Do(ctx, s.client.B().Get().Key(s.latestKey()).Build())
	id, err := result.ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return report.ReportRecord{}, false, nil
		}
		return report.ReportRecord{}, false, err
	}
	return s.GetReport(ctx, id)
}

func (s *ValkeyStore) setString(ctx context.Context, key, value string, ttl time.Duration) error {
	builder := s.client.B().Set().Key(key).Value(value)
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) reportKey(id string) string {
	return fmt.Sprintf("%s:id:%s", s.prefix, id)
}

func (s *ValkeyStore) latestKey() string {
	return fmt.Sprintf("%s:latest", s.prefix)
}

var _ report.Store = (*ValkeyStore)(nil)
