package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taktplan/internal/api/middleware"
	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/phrazzld/taktplan/internal/mocks"
	"github.com/phrazzld/taktplan/internal/platform/logger"
	"github.com/phrazzld/taktplan/internal/service"
	"github.com/phrazzld/taktplan/internal/service/auth"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	pdfHeader = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
)

const testPassword = "password123"

// testAPI serves the handlers of this package over in-memory stores. The
// bearer token of a request is the email of the user it authenticates.
type testAPI struct {
	manager  *domain.User
	employee *domain.User
	other    *domain.User

	users       *mocks.MockUserStore
	tasks       *mocks.MockTaskStore
	attachments *mocks.MockAttachmentStore
	blobs       *mocks.MockBlobStore
	jwt         *mocks.MockJWTService
	logs        *logger.TestLogBuffer

	taskService service.TaskService
	router      http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	a := &testAPI{
		manager:  testUser(t, "manager@example.com", domain.RoleManager),
		employee: testUser(t, "employee@example.com", domain.RoleEmployee),
		other:    testUser(t, "other@example.com", domain.RoleEmployee),
	}

	log, logs := logger.NewTestLogger()
	a.logs = logs

	a.users = mocks.NewMockUserStore(a.manager, a.employee, a.other)
	a.tasks = mocks.NewMockTaskStore(a.users)
	a.attachments = mocks.NewMockAttachmentStore(a.tasks)
	a.blobs = mocks.NewMockBlobStore()
	transactor := &mocks.NoopTransactor{}
	hasher := &mocks.MockPasswordHasher{}

	userService, err := service.NewUserService(a.users, transactor, hasher, hasher, log)
	require.NoError(t, err)
	attachmentService, err := service.NewAttachmentService(a.tasks, a.attachments, a.blobs, transactor, log)
	require.NoError(t, err)
	a.taskService, err = service.NewTaskService(a.tasks, a.users, attachmentService, transactor, log)
	require.NoError(t, err)

	a.jwt = &mocks.MockJWTService{
		Token: "issued-token",
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			now := time.Now()
			return &auth.Claims{Subject: token, IssuedAt: now, ExpiresAt: now.Add(time.Hour)}, nil
		},
	}

	authHandler := NewAuthHandler(userService, a.jwt)
	taskHandler := NewTaskHandler(a.taskService)
	attachmentHandler := NewAttachmentHandler(attachmentService)
	authMiddleware := middleware.NewAuthMiddleware(a.jwt, userService)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	r.Post("/api/auth/login", authHandler.Login)
	r.Post("/api/auth/register", authHandler.Register)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/api/users/me", authHandler.Me)
		r.Post("/api/tasks", taskHandler.CreateTask)
		r.Get("/api/tasks", taskHandler.ListTasks)
		r.Get("/api/tasks/{id}", taskHandler.GetTask)
		r.Put("/api/tasks/{id}", taskHandler.UpdateTask)
		r.Delete("/api/tasks/{id}", taskHandler.DeleteTask)
		r.Post("/api/tasks/{id}/attachments", attachmentHandler.UploadAttachment)
		r.Get("/api/tasks/{id}/attachments/{attachmentID}", attachmentHandler.DownloadAttachment)
	})
	a.router = r

	return a
}

func testUser(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	user, err := domain.NewUser(email, "hashed:"+testPassword, role)
	require.NoError(t, err)
	return user
}

// do sends a request as user; a nil user sends no Authorization header.
func (a *testAPI) do(user *domain.User, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+user.Email)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) doJSON(t *testing.T, user *domain.User, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return a.do(user, method, target, body, "application/json")
}

// createTask stores a task created by the manager for the employee.
func (a *testAPI) createTask(t *testing.T, title string) *domain.Task {
	t.Helper()
	task, err := a.taskService.CreateTask(context.Background(), a.manager, domain.TaskCreate{
		Title:      title,
		Priority:   2,
		Status:     domain.TaskStatusInProgress,
		AssigneeID: a.employee.ID,
	})
	require.NoError(t, err)
	return task
}

// multipartBody builds a body with one file part named field.
func multipartBody(t *testing.T, field, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		`form-data; name="`+field+`"; filename="`+strings.ReplaceAll(fileName, `"`, `\"`)+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, rr)["error"]
}

func decodeInto(rr *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(rr.Body.Bytes(), v)
}
