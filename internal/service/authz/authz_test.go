package authz_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/phrazzld/taktplan/internal/service/authz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func user(role domain.Role) *domain.User {
	return &domain.User{ID: uuid.New(), Email: string(role) + "@example.com", Role: role}
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	manager := user(domain.RoleManager)
	assignee := user(domain.RoleEmployee)
	other := user(domain.RoleEmployee)
	task := &domain.Task{ID: uuid.New(), CreatorID: manager.ID, AssigneeID: assignee.ID}

	type expectations map[*domain.User]bool

	tests := []struct {
		op      authz.Operation
		allowed expectations
	}{
		{authz.OpCreateTask, expectations{manager: true, assignee: true, other: true}},
		{authz.OpListTasks, expectations{manager: true, assignee: true, other: true}},
		{authz.OpReadTask, expectations{manager: true, assignee: true, other: false}},
		{authz.OpUpdateTask, expectations{manager: true, assignee: true, other: false}},
		{authz.OpDeleteTask, expectations{manager: true, assignee: false, other: false}},
		{authz.OpAddAttachment, expectations{manager: true, assignee: true, other: false}},
		{authz.OpReadAttachment, expectations{manager: true, assignee: true, other: false}},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			for actor, want := range tt.allowed {
				err := authz.Authorize(actor, tt.op, task)
				if want {
					assert.NoError(t, err, "%s should be allowed to %s", actor.Email, tt.op)
				} else {
					assert.ErrorIs(t, err, authz.ErrForbidden, "%s should be denied %s", actor.Email, tt.op)
				}
			}
		})
	}
}

func TestAuthorizeCreatorIsNotAssignee(t *testing.T) {
	t.Parallel()

	creator := user(domain.RoleEmployee)
	task := &domain.Task{ID: uuid.New(), CreatorID: creator.ID, AssigneeID: uuid.New()}

	// Creating a task for someone else does not grant access to it afterwards.
	assert.ErrorIs(t, authz.Authorize(creator, authz.OpReadTask, task), authz.ErrForbidden)
	assert.ErrorIs(t, authz.Authorize(creator, authz.OpUpdateTask, task), authz.ErrForbidden)
}

func TestAuthorizeEdgeCases(t *testing.T) {
	t.Parallel()

	manager := user(domain.RoleManager)

	assert.ErrorIs(t, authz.Authorize(nil, authz.OpCreateTask, nil), authz.ErrForbidden)
	assert.ErrorIs(t, authz.Authorize(manager, authz.OpReadTask, nil), authz.ErrForbidden)
	assert.ErrorIs(t, authz.Authorize(manager, authz.Operation("archive_task"), &domain.Task{}), authz.ErrForbidden)
	assert.NoError(t, authz.Authorize(manager, authz.OpDeleteTask, nil))
}

func TestListScope(t *testing.T) {
	t.Parallel()

	assert.Nil(t, authz.ListScope(user(domain.RoleManager)))

	employee := user(domain.RoleEmployee)
	scope := authz.ListScope(employee)
	require.NotNil(t, scope)
	assert.Equal(t, employee.ID, *scope)

	scope = authz.ListScope(nil)
	require.NotNil(t, scope)
	assert.Equal(t, uuid.Nil, *scope)
}
