package postgres_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func testUser(role domain.Role) *domain.User {
	return &domain.User{
		ID:             uuid.New(),
		Email:          string(role) + "@example.com",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
		Role:           role,
		CreatedAt:      fixedTime,
		UpdatedAt:      fixedTime,
	}
}

func testTask(creator, assignee uuid.UUID) *domain.Task {
	return &domain.Task{
		ID:          uuid.New(),
		Title:       "Ship release",
		Description: "cut the tag",
		Priority:    1,
		Status:      domain.TaskStatusInProgress,
		CreatorID:   creator,
		AssigneeID:  assignee,
		Attachments: []*domain.Attachment{},
		CreatedAt:   fixedTime,
		UpdatedAt:   fixedTime,
	}
}

func testAttachment(taskID uuid.UUID) *domain.Attachment {
	return &domain.Attachment{
		ID:          uuid.New(),
		TaskID:      taskID,
		FileName:    "scan.pdf",
		StorageKey:  domain.NewStorageKey("scan.pdf"),
		ContentType: "application/pdf",
		SizeBytes:   1024,
		Checksum:    "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262",
		CreatedAt:   fixedTime,
	}
}

var taskColumnNames = []string{
	"id", "title", "description", "priority", "status",
	"creator_id", "assignee_id", "created_at", "updated_at",
}

func taskRow(rows *sqlmock.Rows, task *domain.Task) *sqlmock.Rows {
	return rows.AddRow(
		task.ID.String(), task.Title, task.Description, task.Priority, string(task.Status),
		task.CreatorID.String(), task.AssigneeID.String(), task.CreatedAt, task.UpdatedAt,
	)
}

var attachmentColumnNames = []string{
	"id", "task_id", "file_name", "storage_key", "content_type", "size_bytes", "checksum", "created_at",
}

func attachmentRow(rows *sqlmock.Rows, a *domain.Attachment) *sqlmock.Rows {
	return rows.AddRow(
		a.ID.String(), a.TaskID.String(), a.FileName, a.StorageKey, a.ContentType,
		a.SizeBytes, a.Checksum, a.CreatedAt,
	)
}
