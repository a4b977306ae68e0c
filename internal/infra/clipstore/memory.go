package clipstore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sync"

	"github.com/yanqian/swing-coach/internal/domain/report"
)

type storedObject struct {
	data     []byte
	mimeType string
}

// MemoryStorage is an in-memory clip store for tests/dev.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]storedObject
}

// NewMemoryStorage constructs a storage backed by process memory.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]storedObject)}
}

// Put implements report.ClipStorage.
func (s *MemoryStorage) Put(_ context.Context, key string, data []byte, mimeType string) (report.StoredClip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = storedObject{
		data:     append([]byte(nil), data...),
		mimeType: mimeType,
	}
	sum := md5.Sum(data)
	return report.StoredClip{
		Key:      key,
		Size:     int64(len(data)),
		MimeType: mimeType,
		ETag:     hex.EncodeToString(sum[:]),
	}, nil
}

// Get returns stored clip bytes; used by tests.
func (s *MemoryStorage) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), obj.data...), true
}

var _ report.ClipStorage = (*MemoryStorage)(nil)
