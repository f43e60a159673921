package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taktplan/internal/api/shared"
	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/phrazzld/taktplan/internal/service"
	"github.com/phrazzld/taktplan/internal/service/auth"
	"github.com/phrazzld/taktplan/internal/service/authz"
	"github.com/phrazzld/taktplan/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"nil error", nil, http.StatusInternalServerError},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"missing token", auth.ErrMissingToken, http.StatusUnauthorized},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", service.NewServiceError("task", "get", authz.ErrForbidden), http.StatusForbidden},
		{"task not found", service.NewServiceError("task", "get", store.ErrTaskNotFound), http.StatusNotFound},
		{"attachment not found", store.ErrAttachmentNotFound, http.StatusNotFound},
		{"user not found", fmt.Errorf("lookup: %w", store.ErrUserNotFound), http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"invalid file type", domain.ErrInvalidFileType, http.StatusBadRequest},
		{"file too large", fmt.Errorf("%w: 3 MiB", domain.ErrFileTooLarge), http.StatusBadRequest},
		{"validation", domain.NewValidationError("title", "must not be empty", domain.ErrEmptyTaskTitle), http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"malformed body", fmt.Errorf("%w: EOF", shared.ErrMalformedRequest), http.StatusBadRequest},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusBadRequest},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"expired before invalid", auth.ErrExpiredToken, "Token expired"},
		{"invalid token", auth.ErrInvalidToken, "Could not validate credentials"},
		{"credentials", service.ErrInvalidCredentials, "Incorrect email or password"},
		{"task", store.ErrTaskNotFound, "Task not found"},
		{"blob", store.ErrBlobNotFound, "Attachment not found"},
		{"validation field", domain.NewValidationError("priority", "must be between 1 and 5", nil),
			"Invalid priority: must be between 1 and 5"},
		{"validation without field", domain.NewValidationError("", "bad input", nil), "Invalid request: bad input"},
		{"internal", errors.New(`pq: relation "tasks" does not exist`), "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	t.Run("internal errors are not leaked", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req = req.WithContext(shared.SetTraceID(req.Context()))

		HandleAPIError(rr, req, errors.New("dial tcp 10.0.0.5:5432: refused"), "Failed to list tasks")

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "10.0.0.5")
		var body shared.ErrorResponse
		require.NoError(t, decodeInto(rr, &body))
		assert.Equal(t, "Failed to list tasks", body.Error)
		assert.Equal(t, shared.GetTraceID(req.Context()), body.TraceID)
	})

	t.Run("fallback does not replace specific messages", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleAPIError(rr, httptest.NewRequest(http.MethodGet, "/", nil), store.ErrTaskNotFound, "Failed")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "Task not found")
	})

	t.Run("unauthorized carries challenge", func(t *testing.T) {
		rr := httptest.NewRecorder()
		HandleAPIError(rr, httptest.NewRequest(http.MethodPost, "/", nil), service.ErrInvalidCredentials, "")

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	})
}

func TestSanitizeValidationError(t *testing.T) {
	err := shared.ValidateRequest(&TaskCreateRequest{Title: "t", Priority: 2, Status: "done", AssigneeID: "nope"})
	require.Error(t, err)
	assert.Equal(t, "Invalid assignee_id: must be a UUID", SanitizeValidationError(err))

	err = shared.ValidateRequest(&RegisterRequest{Email: "a@b.io", Password: "longenough", Role: "manager"})
	require.Error(t, err)
	assert.Equal(t, "Invalid role: invalid value", SanitizeValidationError(err))

	assert.Equal(t, "Invalid title: must not be empty",
		SanitizeValidationError(domain.NewValidationError("title", "must not be empty", nil)))
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("secret detail")))
}
