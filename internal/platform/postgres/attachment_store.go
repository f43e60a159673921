package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/phrazzld/taktplan/internal/platform/logger"
	"github.com/phrazzld/taktplan/internal/store"
)

const attachmentColumns = `id, task_id, file_name, storage_key, content_type, size_bytes, checksum, created_at`

// PostgresAttachmentStore implements the store.AttachmentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAttachmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAttachmentStore creates a new PostgreSQL implementation of the AttachmentStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresAttachmentStore(db store.DBTX, logger *slog.Logger) *PostgresAttachmentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAttachmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "attachment_store")),
	}
}

// Ensure PostgresAttachmentStore implements store.AttachmentStore interface
var _ store.AttachmentStore = (*PostgresAttachmentStore)(nil)

// Create implements store.AttachmentStore.Create
func (s *PostgresAttachmentStore) Create(ctx context.Context, a *domain.Attachment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := a.Validate(); err != nil {
		log.Warn("attachment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("attachment_id", a.ID.String()))
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attachments (`+attachmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		a.ID,
		a.TaskID,
		a.FileName,
		a.StorageKey,
		a.ContentType,
		a.SizeBytes,
		a.Checksum,
		a.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create attachment",
			slog.String("error", err.Error()),
			slog.String("attachment_id", a.ID.String()),
			slog.String("task_id", a.TaskID.String()))
		return store.NewStoreError("attachment", "create", "failed to insert attachment", MapError(err))
	}

	log.Info("attachment created successfully",
		slog.String("attachment_id", a.ID.String()),
		slog.String("task_id", a.TaskID.String()),
		slog.Int64("size_bytes", a.SizeBytes))
	return nil
}

// GetByID implements store.AttachmentStore.GetByID
func (s *PostgresAttachmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, `SELECT `+attachmentColumns+` FROM attachments WHERE id = $1`, id)
	a, err := scanAttachment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAttachmentNotFound
		}
		log.Error("failed to get attachment",
			slog.String("error", err.Error()),
			slog.String("attachment_id", id.String()))
		return nil, store.NewStoreError("attachment", "get", "failed to query attachment", MapError(err))
	}

	return a, nil
}

// ListByTaskIDs implements store.AttachmentStore.ListByTaskIDs
func (s *PostgresAttachmentStore) ListByTaskIDs(
	ctx context.Context,
	taskIDs []uuid.UUID,
) (map[uuid.UUID][]*domain.Attachment, error) {
	byTask := make(map[uuid.UUID][]*domain.Attachment, len(taskIDs))
	if len(taskIDs) == 0 {
		return byTask, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+attachmentColumns+`
		FROM attachments
		WHERE task_id = ANY($1::uuid[])
		ORDER BY seq
	`, uuidArray(taskIDs))
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list attachments",
			slog.String("error", err.Error()),
			slog.Int("task_count", len(taskIDs)))
		return nil, store.NewStoreError("attachment", "list", "failed to query attachments", MapError(err))
	}

	attachments, err := s.collect(ctx, rows, "list")
	if err != nil {
		return nil, err
	}
	for _, a := range attachments {
		byTask[a.TaskID] = append(byTask[a.TaskID], a)
	}
	return byTask, nil
}

// DeleteByTaskID implements store.AttachmentStore.DeleteByTaskID
func (s *PostgresAttachmentStore) DeleteByTaskID(ctx context.Context, taskID uuid.UUID) ([]*domain.Attachment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		DELETE FROM attachments
		WHERE task_id = $1
		RETURNING `+attachmentColumns, taskID)
	if err != nil {
		log.Error("failed to delete attachments",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, store.NewStoreError("attachment", "delete", "failed to delete attachments", MapError(err))
	}

	deleted, err := s.collect(ctx, rows, "delete")
	if err != nil {
		return nil, err
	}

	log.Info("attachments deleted",
		slog.String("task_id", taskID.String()),
		slog.Int("count", len(deleted)))
	return deleted, nil
}

// WithTx implements store.AttachmentStore.WithTx
func (s *PostgresAttachmentStore) WithTx(tx *sql.Tx) store.AttachmentStore {
	return &PostgresAttachmentStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresAttachmentStore) collect(ctx context.Context, rows *sql.Rows, op string) ([]*domain.Attachment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	attachments := []*domain.Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			log.Error("failed to scan attachment row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("attachment", op, "failed to scan attachment", err)
		}
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("attachment", op, "failed to iterate attachments", err)
	}
	return attachments, nil
}

func scanAttachment(row rowScanner) (*domain.Attachment, error) {
	var a domain.Attachment
	if err := row.Scan(
		&a.ID,
		&a.TaskID,
		&a.FileName,
		&a.StorageKey,
		&a.ContentType,
		&a.SizeBytes,
		&a.Checksum,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// uuidArray renders ids as a PostgreSQL array literal for a uuid[] parameter.
func uuidArray(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}
