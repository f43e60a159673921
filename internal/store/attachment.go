package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taktplan/internal/domain"
)

// AttachmentStore defines the interface for attachment metadata persistence.
// The bytes themselves live in a BlobStore under Attachment.StorageKey.
type AttachmentStore interface {
	// Create saves attachment metadata.
	// Returns ErrInvalidEntity if the task does not exist.
	Create(ctx context.Context, attachment *domain.Attachment) error

	// GetByID retrieves a single attachment.
	// Returns ErrAttachmentNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)

	// ListByTaskIDs returns the attachments of each given task, keyed by task
	// ID and ordered by creation time. Tasks without attachments are absent
	// from the map.
	ListByTaskIDs(ctx context.Context, taskIDs []uuid.UUID) (map[uuid.UUID][]*domain.Attachment, error)

	// DeleteByTaskID removes every attachment row of a task and returns the
	// removed rows so their blobs can be purged.
	DeleteByTaskID(ctx context.Context, taskID uuid.UUID) ([]*domain.Attachment, error)

	// WithTx returns a new AttachmentStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AttachmentStore
}
