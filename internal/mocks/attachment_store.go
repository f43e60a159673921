package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/phrazzld/taktplan/internal/store"
)

// MockAttachmentStore implements store.AttachmentStore for testing.
type MockAttachmentStore struct {
	CreateFn         func(ctx context.Context, attachment *domain.Attachment) error
	DeleteByTaskIDFn func(ctx context.Context, taskID uuid.UUID) ([]*domain.Attachment, error)

	// Tasks, when set, is consulted to emulate the task_id foreign key.
	Tasks *MockTaskStore

	mu          sync.RWMutex
	attachments []*domain.Attachment
}

var _ store.AttachmentStore = (*MockAttachmentStore)(nil)

// NewMockAttachmentStore creates an empty attachment store whose task
// foreign key is checked against tasks when it is non-nil.
func NewMockAttachmentStore(tasks *MockTaskStore) *MockAttachmentStore {
	return &MockAttachmentStore{Tasks: tasks}
}

// Create implements the AttachmentStore interface
func (m *MockAttachmentStore) Create(ctx context.Context, attachment *domain.Attachment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, attachment)
	}
	if m.Tasks != nil {
		if _, err := m.Tasks.GetByID(ctx, attachment.TaskID); err != nil {
			return store.ErrInvalidEntity
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.attachments {
		if a.ID == attachment.ID || a.StorageKey == attachment.StorageKey {
			return store.ErrDuplicate
		}
	}
	stored := *attachment
	m.attachments = append(m.attachments, &stored)
	return nil
}

// GetByID implements the AttachmentStore interface
func (m *MockAttachmentStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Attachment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.attachments {
		if a.ID == id {
			found := *a
			return &found, nil
		}
	}
	return nil, store.ErrAttachmentNotFound
}

// ListByTaskIDs implements the AttachmentStore interface
func (m *MockAttachmentStore) ListByTaskIDs(
	_ context.Context,
	taskIDs []uuid.UUID,
) (map[uuid.UUID][]*domain.Attachment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[uuid.UUID]struct{}, len(taskIDs))
	for _, id := range taskIDs {
		wanted[id] = struct{}{}
	}

	result := make(map[uuid.UUID][]*domain.Attachment)
	for _, a := range m.attachments {
		if _, ok := wanted[a.TaskID]; ok {
			found := *a
			result[a.TaskID] = append(result[a.TaskID], &found)
		}
	}
	return result, nil
}

// DeleteByTaskID implements the AttachmentStore interface
func (m *MockAttachmentStore) DeleteByTaskID(ctx context.Context, taskID uuid.UUID) ([]*domain.Attachment, error) {
	if m.DeleteByTaskIDFn != nil {
		return m.DeleteByTaskIDFn(ctx, taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := []*domain.Attachment{}
	kept := m.attachments[:0]
	for _, a := range m.attachments {
		if a.TaskID == taskID {
			removed = append(removed, a)
			continue
		}
		kept = append(kept, a)
	}
	m.attachments = kept
	return removed, nil
}

// WithTx implements the AttachmentStore interface and returns the mock itself.
func (m *MockAttachmentStore) WithTx(_ *sql.Tx) store.AttachmentStore {
	return m
}

// Len returns the number of stored attachments.
func (m *MockAttachmentStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.attachments)
}
