package service

import (
	"errors"
	"testing"

	"github.com/phrazzld/taktplan/internal/service/authz"
	"github.com/phrazzld/taktplan/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestServiceError_Error(t *testing.T) {
	tests := []struct {
		name     string
		service  string
		op       string
		err      error
		expected string
	}{
		{
			name:     "with underlying error",
			service:  "user",
			op:       "create",
			err:      errors.New("database connection failed"),
			expected: "user service create operation failed: database connection failed",
		},
		{
			name:     "without underlying error",
			service:  "task",
			op:       "delete",
			err:      nil,
			expected: "task service delete operation failed",
		},
		{
			name:     "with sentinel error",
			service:  "task",
			op:       "get",
			err:      authz.ErrForbidden,
			expected: "task service get operation failed: operation not permitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewServiceError(tt.service, tt.op, tt.err).Error())
		})
	}
}

func TestServiceError_ErrorsIs(t *testing.T) {
	err := NewServiceError("task", "get", store.ErrTaskNotFound)

	assert.True(t, errors.Is(err, store.ErrTaskNotFound))
	assert.True(t, errors.Is(err, store.ErrNotFound), "task not found is a not-found error")
	assert.False(t, errors.Is(err, authz.ErrForbidden))
	assert.Nil(t, NewServiceError("user", "get", nil).Unwrap())
}

func TestServiceError_ErrorsAs(t *testing.T) {
	inner := NewServiceError("attachment", "purge", errors.New("disk failure"))
	outer := NewServiceError("task", "delete", inner)

	var serviceErr *ServiceError
	assert.True(t, errors.As(outer, &serviceErr))
	assert.Equal(t, "task", serviceErr.Service)

	assert.True(t, errors.As(outer.Err, &serviceErr))
	assert.Equal(t, "attachment", serviceErr.Service)
	assert.Equal(t, "purge", serviceErr.Op)
}
