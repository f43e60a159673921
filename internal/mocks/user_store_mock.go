package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/phrazzld/taktplan/internal/store"
	"github.com/stretchr/testify/mock"
)

// TestifyMockUserStore is a mock of store.UserStore interface for use with testify/mock
type TestifyMockUserStore struct {
	mock.Mock
}

var _ store.UserStore = (*TestifyMockUserStore)(nil)

// Create is a mock implementation of store.UserStore.Create
func (m *TestifyMockUserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// GetByID is a mock implementation of store.UserStore.GetByID
func (m *TestifyMockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetByEmail is a mock implementation of store.UserStore.GetByEmail
func (m *TestifyMockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*domain.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

// WithTx returns the mock itself so expectations set on it keep applying
// inside transactions.
func (m *TestifyMockUserStore) WithTx(_ *sql.Tx) store.UserStore {
	return m
}

// TestifyMockAttachmentStore is a testify mock of store.AttachmentStore.
type TestifyMockAttachmentStore struct {
	mock.Mock
}

var _ store.AttachmentStore = (*TestifyMockAttachmentStore)(nil)

// Create is a mock implementation of store.AttachmentStore.Create
func (m *TestifyMockAttachmentStore) Create(ctx context.Context, attachment *domain.Attachment) error {
	return m.Called(ctx, attachment).Error(0)
}

// GetByID is a mock implementation of store.AttachmentStore.GetByID
func (m *TestifyMockAttachmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*domain.Attachment); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

// ListByTaskIDs is a mock implementation of store.AttachmentStore.ListByTaskIDs
func (m *TestifyMockAttachmentStore) ListByTaskIDs(
	ctx context.Context,
	taskIDs []uuid.UUID,
) (map[uuid.UUID][]*domain.Attachment, error) {
	args := m.Called(ctx, taskIDs)
	if byTask, ok := args.Get(0).(map[uuid.UUID][]*domain.Attachment); ok {
		return byTask, args.Error(1)
	}
	return nil, args.Error(1)
}

// DeleteByTaskID is a mock implementation of store.AttachmentStore.DeleteByTaskID
func (m *TestifyMockAttachmentStore) DeleteByTaskID(ctx context.Context, taskID uuid.UUID) ([]*domain.Attachment, error) {
	args := m.Called(ctx, taskID)
	if removed, ok := args.Get(0).([]*domain.Attachment); ok {
		return removed, args.Error(1)
	}
	return nil, args.Error(1)
}

// WithTx returns the mock itself.
func (m *TestifyMockAttachmentStore) WithTx(_ *sql.Tx) store.AttachmentStore {
	return m
}
