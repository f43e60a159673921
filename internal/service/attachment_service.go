package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/phrazzld/taktplan/internal/platform/logger"
	"github.com/phrazzld/taktplan/internal/service/authz"
	"github.com/phrazzld/taktplan/internal/store"
)

// sniffLen is how much of an upload is inspected to detect its real type.
const sniffLen = 3072

// Upload is a file received from a client.
type Upload struct {
	// FileName is the client-supplied name. It is only used for display
	// and to pick the storage key extension.
	FileName    string
	ContentType string
	// Size is the size the client declared, zero when unknown. The stored
	// size is measured while copying.
	Size int64
	Body io.Reader
}

// AttachmentService stores and serves the files attached to tasks.
type AttachmentService interface {
	// CreateAttachment stores upload for the task. The task must exist and
	// the actor must be allowed to attach files to it.
	CreateAttachment(ctx context.Context, actor *domain.User, taskID uuid.UUID, upload Upload) (*domain.Attachment, error)

	// GetAttachment returns the metadata of an attachment of the task.
	GetAttachment(ctx context.Context, actor *domain.User, taskID, attachmentID uuid.UUID) (*domain.Attachment, error)

	// OpenAttachment returns the metadata and the bytes of an attachment.
	// The caller must close the reader.
	OpenAttachment(
		ctx context.Context,
		actor *domain.User,
		taskID, attachmentID uuid.UUID,
	) (*domain.Attachment, io.ReadCloser, error)

	// AttachTo loads the attachments of every task in tasks into
	// Task.Attachments. No authorization is performed.
	AttachTo(ctx context.Context, tasks ...*domain.Task) error

	// DeleteByTaskID deletes the attachment rows of a task inside tx and
	// returns them. Their bytes stay until PurgeBlobs runs.
	DeleteByTaskID(ctx context.Context, tx *sql.Tx, taskID uuid.UUID) ([]*domain.Attachment, error)

	// PurgeBlobs removes the stored bytes of deleted attachments. Failures
	// are logged and otherwise ignored.
	PurgeBlobs(ctx context.Context, attachments []*domain.Attachment)
}

type attachmentServiceImpl struct {
	tasks       store.TaskStore
	attachments store.AttachmentStore
	blobs       store.BlobStore
	transactor  store.Transactor
	logger      *slog.Logger
}

// NewAttachmentService creates a new AttachmentService.
// It returns an error if any of the required dependencies are nil.
func NewAttachmentService(
	tasks store.TaskStore,
	attachments store.AttachmentStore,
	blobs store.BlobStore,
	transactor store.Transactor,
	logger *slog.Logger,
) (AttachmentService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if attachments == nil {
		return nil, domain.NewValidationError("attachments", "cannot be nil", domain.ErrValidation)
	}
	if blobs == nil {
		return nil, domain.NewValidationError("blobs", "cannot be nil", domain.ErrValidation)
	}
	if transactor == nil {
		return nil, domain.NewValidationError("transactor", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &attachmentServiceImpl{
		tasks:       tasks,
		attachments: attachments,
		blobs:       blobs,
		transactor:  transactor,
		logger:      logger.With(slog.String("component", "attachment_service")),
	}, nil
}

// CreateAttachment implements AttachmentService.CreateAttachment
func (s *attachmentServiceImpl) CreateAttachment(
	ctx context.Context,
	actor *domain.User,
	taskID uuid.UUID,
	upload Upload,
) (*domain.Attachment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("task_id", taskID.String()))

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("attachment", "create", err)
	}
	if err := authz.Authorize(actor, authz.OpAddAttachment, task); err != nil {
		return nil, NewServiceError("attachment", "create", err)
	}

	if err := domain.ValidateUpload(upload.ContentType, upload.Size); err != nil {
		return nil, NewServiceError("attachment", "create", err)
	}
	fileName := domain.DisplayFileName(upload.FileName)
	if fileName == "" {
		return nil, NewServiceError("attachment", "create",
			domain.NewValidationError("file", "must have a file name", domain.ErrEmptyFileName))
	}
	if upload.Body == nil {
		return nil, NewServiceError("attachment", "create",
			domain.NewValidationError("file", "must not be empty", domain.ErrValidation))
	}

	body, err := s.sniff(log, upload)
	if err != nil {
		return nil, NewServiceError("attachment", "create", err)
	}

	key := domain.NewStorageKey(fileName)
	info, err := s.blobs.Put(ctx, key, io.LimitReader(body, domain.MaxAttachmentSize+1))
	if err != nil {
		log.Error("failed to store attachment bytes", slog.String("error", err.Error()))
		return nil, NewServiceError("attachment", "create", err)
	}

	if info.Size > domain.MaxAttachmentSize {
		s.removeBlob(ctx, log, key)
		return nil, NewServiceError("attachment", "create",
			fmt.Errorf("%w: upload exceeds the %d byte limit", domain.ErrFileTooLarge, domain.MaxAttachmentSize))
	}

	attachment, err := domain.NewAttachment(task.ID, fileName, key, upload.ContentType, info.Size, info.Checksum)
	if err != nil {
		s.removeBlob(ctx, log, key)
		return nil, NewServiceError("attachment", "create", err)
	}

	err = s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.attachments.WithTx(tx).Create(ctx, attachment)
	})
	if err != nil {
		log.Error("failed to save attachment metadata", slog.String("error", err.Error()))
		s.removeBlob(ctx, log, key)
		return nil, NewServiceError("attachment", "create", err)
	}

	log.Info("attachment stored",
		slog.String("attachment_id", attachment.ID.String()),
		slog.String("content_type", attachment.ContentType),
		slog.Int64("size_bytes", attachment.SizeBytes))

	return attachment, nil
}

// sniff reads the head of the upload to compare the detected media type
// with the declared one, and returns a reader over the complete body.
// A mismatch is only logged.
func (s *attachmentServiceImpl) sniff(log *slog.Logger, upload Upload) (io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(upload.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	head = head[:n]

	declared := domain.NormalizeContentType(upload.ContentType)
	if detected := mimetype.Detect(head); !detected.Is(declared) {
		log.Warn("declared content type does not match file contents",
			slog.String("declared", declared),
			slog.String("detected", detected.String()))
	}

	return io.MultiReader(bytes.NewReader(head), upload.Body), nil
}

func (s *attachmentServiceImpl) removeBlob(ctx context.Context, log *slog.Logger, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, store.ErrBlobNotFound) {
		log.Warn("failed to remove orphaned attachment bytes",
			slog.String("storage_key", key),
			slog.String("error", err.Error()))
	}
}

// GetAttachment implements AttachmentService.GetAttachment
func (s *attachmentServiceImpl) GetAttachment(
	ctx context.Context,
	actor *domain.User,
	taskID, attachmentID uuid.UUID,
) (*domain.Attachment, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("attachment", "get", err)
	}
	if err := authz.Authorize(actor, authz.OpReadAttachment, task); err != nil {
		return nil, NewServiceError("attachment", "get", err)
	}

	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		return nil, NewServiceError("attachment", "get", err)
	}
	if attachment.TaskID != task.ID {
		return nil, NewServiceError("attachment", "get", store.ErrAttachmentNotFound)
	}

	return attachment, nil
}

// OpenAttachment implements AttachmentService.OpenAttachment
func (s *attachmentServiceImpl) OpenAttachment(
	ctx context.Context,
	actor *domain.User,
	taskID, attachmentID uuid.UUID,
) (*domain.Attachment, io.ReadCloser, error) {
	attachment, err := s.GetAttachment(ctx, actor, taskID, attachmentID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Open(ctx, attachment.StorageKey)
	if err != nil {
		log := logger.FromContextOrDefault(ctx, s.logger)
		if errors.Is(err, store.ErrBlobNotFound) {
			log.Error("attachment bytes are missing",
				slog.String("attachment_id", attachment.ID.String()),
				slog.String("storage_key", attachment.StorageKey))
			return nil, nil, NewServiceError("attachment", "open", store.ErrAttachmentNotFound)
		}
		log.Error("failed to open attachment bytes", slog.String("error", err.Error()))
		return nil, nil, NewServiceError("attachment", "open", err)
	}

	return attachment, rc, nil
}

// AttachTo implements AttachmentService.AttachTo
func (s *attachmentServiceImpl) AttachTo(ctx context.Context, tasks ...*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}

	byTask, err := s.attachments.ListByTaskIDs(ctx, ids)
	if err != nil {
		return NewServiceError("attachment", "list", err)
	}

	for _, t := range tasks {
		t.Attachments = byTask[t.ID]
		if t.Attachments == nil {
			t.Attachments = []*domain.Attachment{}
		}
	}
	return nil
}

// DeleteByTaskID implements AttachmentService.DeleteByTaskID
func (s *attachmentServiceImpl) DeleteByTaskID(
	ctx context.Context,
	tx *sql.Tx,
	taskID uuid.UUID,
) ([]*domain.Attachment, error) {
	removed, err := s.attachments.WithTx(tx).DeleteByTaskID(ctx, taskID)
	if err != nil {
		return nil, NewServiceError("attachment", "delete", err)
	}
	return removed, nil
}

// PurgeBlobs implements AttachmentService.PurgeBlobs
func (s *attachmentServiceImpl) PurgeBlobs(ctx context.Context, attachments []*domain.Attachment) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, a := range attachments {
		err := s.blobs.Delete(ctx, a.StorageKey)
		switch {
		case err == nil:
		case errors.Is(err, store.ErrBlobNotFound):
			log.Warn("attachment bytes already missing",
				slog.String("attachment_id", a.ID.String()),
				slog.String("storage_key", a.StorageKey))
		default:
			log.Warn("failed to remove attachment bytes",
				slog.String("attachment_id", a.ID.String()),
				slog.String("storage_key", a.StorageKey),
				slog.String("error", err.Error()))
		}
	}
}
