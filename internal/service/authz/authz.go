// Package authz decides whether an authenticated user may perform an
// operation on a task. It holds no state and performs no I/O; callers load
// the task first so that a missing task is reported as not found before any
// permission check runs.
package authz

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/taktplan/internal/domain"
)

// ErrForbidden is returned when the actor may not perform the operation.
var ErrForbidden = errors.New("operation not permitted")

// Operation identifies an action subject to authorization.
type Operation string

// Operations checked by Authorize.
const (
	OpCreateTask     Operation = "create_task"
	OpListTasks      Operation = "list_tasks"
	OpReadTask       Operation = "read_task"
	OpUpdateTask     Operation = "update_task"
	OpDeleteTask     Operation = "delete_task"
	OpAddAttachment  Operation = "add_attachment"
	OpReadAttachment Operation = "read_attachment"
)

// Authorize returns nil when actor may perform op on task, and an error
// wrapping ErrForbidden otherwise. task is ignored for OpCreateTask and
// OpListTasks and required for every other operation.
func Authorize(actor *domain.User, op Operation, task *domain.Task) error {
	if actor == nil {
		return fmt.Errorf("%w: no authenticated user", ErrForbidden)
	}

	switch op {
	case OpCreateTask, OpListTasks:
		return nil
	case OpDeleteTask:
		if actor.IsManager() {
			return nil
		}
		return deny(op)
	case OpReadTask, OpUpdateTask, OpAddAttachment, OpReadAttachment:
		if task == nil {
			return fmt.Errorf("%w: %s requires a task", ErrForbidden, op)
		}
		if actor.IsManager() || actor.ID == task.AssigneeID {
			return nil
		}
		return deny(op)
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrForbidden, op)
	}
}

// ListScope returns the assignee a task listing must be restricted to, or
// nil when actor may see every task. A nil actor is scoped to uuid.Nil,
// which matches no task.
func ListScope(actor *domain.User) *uuid.UUID {
	if actor.IsManager() {
		return nil
	}
	id := uuid.Nil
	if actor != nil {
		id = actor.ID
	}
	return &id
}

func deny(op Operation) error {
	return fmt.Errorf("%w: %s", ErrForbidden, op)
}
