package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/phrazzld/taktplan/internal/store"
)

// MockTaskStore implements store.TaskStore for testing. Tasks are kept in
// insertion order, which stands in for ordering by the seq column.
type MockTaskStore struct {
	CreateFn func(ctx context.Context, task *domain.Task) error
	UpdateFn func(ctx context.Context, task *domain.Task) error
	DeleteFn func(ctx context.Context, id uuid.UUID) error

	// Users, when set, is consulted to emulate the creator and assignee
	// foreign keys.
	Users *MockUserStore

	mu    sync.RWMutex
	tasks []*domain.Task
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty task store whose foreign keys are
// checked against users when it is non-nil.
func NewMockTaskStore(users *MockUserStore) *MockTaskStore {
	return &MockTaskStore{Users: users}
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := m.checkRefs(ctx, task); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tasks {
		if t.ID == task.ID {
			return store.ErrDuplicate
		}
	}
	m.tasks = append(m.tasks, copyTask(task))
	return nil
}

// GetByID implements the TaskStore interface
func (m *MockTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.index(id); i >= 0 {
		return copyTask(m.tasks[i]), nil
	}
	return nil, store.ErrTaskNotFound
}

// List implements the TaskStore interface
func (m *MockTaskStore) List(_ context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*domain.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if filter.AssigneeID != nil && t.AssigneeID != *filter.AssigneeID {
			continue
		}
		matched = append(matched, t)
	}

	if filter.Offset >= len(matched) {
		return []*domain.Task{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	result := make([]*domain.Task, len(matched))
	for i, t := range matched {
		result[i] = copyTask(t)
	}
	return result, nil
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	if err := m.checkRefs(ctx, task); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(task.ID)
	if i < 0 {
		return store.ErrTaskNotFound
	}
	m.tasks[i] = copyTask(task)
	return nil
}

// Delete implements the TaskStore interface
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return store.ErrTaskNotFound
	}
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	return nil
}

// WithTx implements the TaskStore interface and returns the mock itself.
func (m *MockTaskStore) WithTx(_ *sql.Tx) store.TaskStore {
	return m
}

// Len returns the number of stored tasks.
func (m *MockTaskStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tasks)
}

func (m *MockTaskStore) index(id uuid.UUID) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (m *MockTaskStore) checkRefs(ctx context.Context, task *domain.Task) error {
	if m.Users == nil {
		return nil
	}
	for _, id := range []uuid.UUID{task.CreatorID, task.AssigneeID} {
		if _, err := m.Users.GetByID(ctx, id); err != nil {
			return store.ErrInvalidEntity
		}
	}
	return nil
}

// copyTask returns a copy of t without attachments, matching what a real
// store returns.
func copyTask(t *domain.Task) *domain.Task {
	c := *t
	c.Attachments = []*domain.Attachment{}
	return &c
}
