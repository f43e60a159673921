package service_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/phrazzld/taktplan/internal/mocks"
	"github.com/phrazzld/taktplan/internal/platform/logger"
	"github.com/phrazzld/taktplan/internal/service"
	"github.com/stretchr/testify/require"
)

// Minimal file headers that mimetype recognizes.
var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	pdfHeader = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
)

// fixture wires the task and attachment services to in-memory stores with
// one manager and two employees.
type fixture struct {
	manager  *domain.User
	assignee *domain.User
	other    *domain.User

	users       *mocks.MockUserStore
	tasks       *mocks.MockTaskStore
	attachments *mocks.MockAttachmentStore
	blobs       *mocks.MockBlobStore
	transactor  *mocks.NoopTransactor
	logs        *logger.TestLogBuffer

	taskService       service.TaskService
	attachmentService service.AttachmentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		manager:  testUser("manager@example.com", domain.RoleManager),
		assignee: testUser("employee@example.com", domain.RoleEmployee),
		other:    testUser("other@example.com", domain.RoleEmployee),
	}

	var log *slog.Logger
	log, f.logs = logger.NewTestLogger()

	f.users = mocks.NewMockUserStore(f.manager, f.assignee, f.other)
	f.tasks = mocks.NewMockTaskStore(f.users)
	f.attachments = mocks.NewMockAttachmentStore(f.tasks)
	f.blobs = mocks.NewMockBlobStore()
	f.transactor = &mocks.NoopTransactor{}

	var err error
	f.attachmentService, err = service.NewAttachmentService(f.tasks, f.attachments, f.blobs, f.transactor, log)
	require.NoError(t, err)
	f.taskService, err = service.NewTaskService(f.tasks, f.users, f.attachmentService, f.transactor, log)
	require.NoError(t, err)

	return f
}

func testUser(email string, role domain.Role) *domain.User {
	user, err := domain.NewUser(email, "hashed:password123", role)
	if err != nil {
		panic(err)
	}
	return user
}

// createTask stores a task created by the manager for the assignee.
func (f *fixture) createTask(t *testing.T, title string) *domain.Task {
	t.Helper()
	task, err := f.taskService.CreateTask(context.Background(), f.manager, domain.TaskCreate{
		Title:      title,
		Priority:   2,
		Status:     domain.TaskStatusInProgress,
		AssigneeID: f.assignee.ID,
	})
	require.NoError(t, err)
	return task
}

// attach stores a small PNG on task as actor.
func (f *fixture) attach(t *testing.T, actor *domain.User, task *domain.Task, name string) *domain.Attachment {
	t.Helper()
	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 64)...)
	a, err := f.attachmentService.CreateAttachment(context.Background(), actor, task.ID, service.Upload{
		FileName:    name,
		ContentType: "image/png",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	})
	require.NoError(t, err)
	return a
}

func ptr[T any](v T) *T {
	return &v
}

func missingID() uuid.UUID {
	return uuid.New()
}
