package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taktplan/internal/domain"
)

// Paging defaults and bounds for task listings.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// TaskFilter narrows a task listing.
type TaskFilter struct {
	// AssigneeID restricts results to tasks assigned to this user when set.
	AssigneeID *uuid.UUID
	Offset     int
	Limit      int
}

// TaskStore defines the interface for task data persistence.
// Tasks returned by the store do not carry attachments; callers load those
// from the AttachmentStore.
type TaskStore interface {
	// Create saves a new task.
	// Returns store.ErrInvalidEntity if the creator or assignee does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns tasks ordered by creation time, then ID.
	// Returns an empty slice if nothing matches.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Update overwrites the mutable fields of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
