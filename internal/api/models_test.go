package api

import (
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskUpdateRequest_ToUpdate(t *testing.T) {
	status := "later"
	assignee := uuid.NewString()

	update, err := TaskUpdateRequest{Status: &status, AssigneeID: &assignee}.toUpdate()

	require.NoError(t, err)
	assert.Nil(t, update.Title)
	assert.Nil(t, update.Priority)
	require.NotNil(t, update.Status)
	assert.Equal(t, domain.TaskStatusLater, *update.Status)
	require.NotNil(t, update.AssigneeID)
	assert.Equal(t, assignee, update.AssigneeID.String())

	empty, err := TaskUpdateRequest{}.toUpdate()
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	bad := "x"
	_, err = TaskUpdateRequest{AssigneeID: &bad}.toUpdate()
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestTaskToResponse_AttachmentsNeverNull(t *testing.T) {
	resp := taskToResponse(&domain.Task{ID: uuid.New()})
	assert.NotNil(t, resp.Attachments)
	assert.Empty(t, resp.Attachments)
}
