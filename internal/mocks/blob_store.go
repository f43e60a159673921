package mocks

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"sync"

	"github.com/phrazzld/taktplan/internal/store"
	"github.com/zeebo/blake3"
)

// MockBlobStore is an in-memory store.BlobStore. PutErr and DeleteErr
// inject failures.
type MockBlobStore struct {
	PutErr    error
	DeleteErr error

	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ store.BlobStore = (*MockBlobStore)(nil)

// NewMockBlobStore creates an empty blob store.
func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{blobs: make(map[string][]byte)}
}

// Put implements the BlobStore interface
func (m *MockBlobStore) Put(_ context.Context, key string, r io.Reader) (store.BlobInfo, error) {
	if m.PutErr != nil {
		return store.BlobInfo{}, m.PutErr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return store.BlobInfo{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.blobs[key]; exists {
		return store.BlobInfo{}, store.ErrDuplicate
	}
	m.blobs[key] = data

	sum := blake3.Sum256(data)
	return store.BlobInfo{Size: int64(len(data)), Checksum: hex.EncodeToString(sum[:])}, nil
}

// Open implements the BlobStore interface
func (m *MockBlobStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, store.ErrBlobNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete implements the BlobStore interface
func (m *MockBlobStore) Delete(_ context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[key]; !ok {
		return store.ErrBlobNotFound
	}
	delete(m.blobs, key)
	return nil
}

// Has reports whether a blob is stored under key.
func (m *MockBlobStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[key]
	return ok
}

// Len returns the number of stored blobs.
func (m *MockBlobStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
