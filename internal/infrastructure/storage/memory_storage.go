package storage

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"
)

// ObjectStorage is the archive backend used by the import services
type ObjectStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

var errStorageKeyRequired = errors.New("storage key is required")

// MemoryObject is one object held by MemoryObjectStorage
type MemoryObject struct {
	Data        []byte
	ContentType string
	UploadedAt  time.Time
}

// MemoryObjectStorage keeps archived uploads in process memory.
// Use it in development and tests when no S3 endpoint is available.
type MemoryObjectStorage struct {
	// BaseURL prefixes generated download URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string]MemoryObject
}

// Ensure MemoryObjectStorage implements ObjectStorage
var _ ObjectStorage = (*MemoryObjectStorage)(nil)

// NewMemoryObjectStorage creates an empty MemoryObjectStorage
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{
		BaseURL: "memory://archive",
		objects: make(map[string]MemoryObject),
	}
}

// Upload stores a copy of data
func (s *MemoryObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errStorageKeyRequired
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[storageKey] = MemoryObject{
		Data:        append([]byte(nil), data...),
		ContentType: contentType,
		UploadedAt:  time.Now(),
	}
	return nil
}

// Get returns the stored object
func (s *MemoryObjectStorage) Get(storageKey string) (MemoryObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[storageKey]
	return obj, ok
}

// GenerateDownloadURL builds a pseudo URL for a stored object
func (s *MemoryObjectStorage) GenerateDownloadURL(
	ctx context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errStorageKeyRequired
	}
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}

	expiresAt := time.Now().Add(expiresIn)
	q := url.Values{"expires": {expiresAt.UTC().Format(time.RFC3339)}}
	return s.BaseURL + "/" + storageKey + "?" + q.Encode(), expiresAt, nil
}

// DeleteObject removes the object; deleting a missing key succeeds
func (s *MemoryObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errStorageKeyRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, storageKey)
	return nil
}

// ObjectExists reports whether the key is stored
func (s *MemoryObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errStorageKeyRequired
	}
	_, ok := s.Get(storageKey)
	return ok, nil
}
