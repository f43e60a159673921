package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/phrazzld/taktplan/internal/platform/logger"
	"github.com/phrazzld/taktplan/internal/service/authz"
	"github.com/phrazzld/taktplan/internal/store"
)

// TaskService provides the task registry. Every operation takes the
// authenticated actor and applies the authorization rules of package authz
// after the task has been found.
type TaskService interface {
	// CreateTask stores a new task created by actor. The assignee must exist.
	CreateTask(ctx context.Context, actor *domain.User, fields domain.TaskCreate) (*domain.Task, error)

	// GetTask retrieves a task with its attachments.
	GetTask(ctx context.Context, actor *domain.User, taskID uuid.UUID) (*domain.Task, error)

	// ListTasks returns the tasks visible to actor in creation order.
	// skip must be >= 0 and limit within 1..store.MaxListLimit.
	ListTasks(ctx context.Context, actor *domain.User, skip, limit int) ([]*domain.Task, error)

	// UpdateTask applies the non-nil fields of update.
	UpdateTask(ctx context.Context, actor *domain.User, taskID uuid.UUID, update domain.TaskUpdate) (*domain.Task, error)

	// DeleteTask removes a task and its attachments and returns the task as
	// it was before deletion.
	DeleteTask(ctx context.Context, actor *domain.User, taskID uuid.UUID) (*domain.Task, error)
}

type taskServiceImpl struct {
	tasks       store.TaskStore
	users       store.UserStore
	attachments AttachmentService
	transactor  store.Transactor
	logger      *slog.Logger
	now         func() time.Time
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks store.TaskStore,
	users store.UserStore,
	attachments AttachmentService,
	transactor store.Transactor,
	logger *slog.Logger,
) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if attachments == nil {
		return nil, domain.NewValidationError("attachments", "cannot be nil", domain.ErrValidation)
	}
	if transactor == nil {
		return nil, domain.NewValidationError("transactor", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:       tasks,
		users:       users,
		attachments: attachments,
		transactor:  transactor,
		logger:      logger.With(slog.String("component", "task_service")),
		now:         time.Now,
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	actor *domain.User,
	fields domain.TaskCreate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := authz.Authorize(actor, authz.OpCreateTask, nil); err != nil {
		return nil, NewServiceError("task", "create", err)
	}

	task, err := domain.NewTask(fields, actor.ID)
	if err != nil {
		return nil, NewServiceError("task", "create", err)
	}

	err = s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.requireAssignee(ctx, tx, task.AssigneeID); err != nil {
			return err
		}
		return s.tasks.WithTx(tx).Create(ctx, task)
	})
	if err != nil {
		s.logFailure(log, "failed to create task", err)
		return nil, NewServiceError("task", "create", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("creator_id", task.CreatorID.String()),
		slog.String("assignee_id", task.AssigneeID.String()))

	return task, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, actor *domain.User, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		s.logFailure(logger.FromContextOrDefault(ctx, s.logger), "failed to retrieve task", err)
		return nil, NewServiceError("task", "get", err)
	}
	if err := authz.Authorize(actor, authz.OpReadTask, task); err != nil {
		return nil, NewServiceError("task", "get", err)
	}

	if err := s.attachments.AttachTo(ctx, task); err != nil {
		return nil, NewServiceError("task", "get", err)
	}
	return task, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	actor *domain.User,
	skip, limit int,
) ([]*domain.Task, error) {
	if err := authz.Authorize(actor, authz.OpListTasks, nil); err != nil {
		return nil, NewServiceError("task", "list", err)
	}
	if skip < 0 {
		return nil, NewServiceError("task", "list",
			domain.NewValidationError("skip", "must not be negative", domain.ErrValidation))
	}
	if limit < 1 || limit > store.MaxListLimit {
		return nil, NewServiceError("task", "list",
			domain.NewValidationError("limit", "must be between 1 and 1000", domain.ErrValidation))
	}

	tasks, err := s.tasks.List(ctx, store.TaskFilter{
		AssigneeID: authz.ListScope(actor),
		Offset:     skip,
		Limit:      limit,
	})
	if err != nil {
		s.logFailure(logger.FromContextOrDefault(ctx, s.logger), "failed to list tasks", err)
		return nil, NewServiceError("task", "list", err)
	}

	if err := s.attachments.AttachTo(ctx, tasks...); err != nil {
		return nil, NewServiceError("task", "list", err)
	}
	return tasks, nil
}

// UpdateTask implements TaskService.UpdateTask
// An empty update returns the current task without writing.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	actor *domain.User,
	taskID uuid.UUID,
	update domain.TaskUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Task
	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		current, err := txTasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(actor, authz.OpUpdateTask, current); err != nil {
			return err
		}
		if update.IsEmpty() {
			updated = current
			return nil
		}

		next, err := current.Apply(update, s.now())
		if err != nil {
			return err
		}
		if next.AssigneeID != current.AssigneeID {
			if err := s.requireAssignee(ctx, tx, next.AssigneeID); err != nil {
				return err
			}
		}

		if err := txTasks.Update(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		s.logFailure(log, "failed to update task", err)
		return nil, NewServiceError("task", "update", err)
	}

	if err := s.attachments.AttachTo(ctx, updated); err != nil {
		return nil, NewServiceError("task", "update", err)
	}

	log.Debug("task updated", slog.String("task_id", updated.ID.String()))
	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask
// Attachment rows and the task row are deleted in one transaction. The
// stored bytes are removed after commit.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, actor *domain.User, taskID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var snapshot *domain.Task
	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		task, err := txTasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(actor, authz.OpDeleteTask, task); err != nil {
			return err
		}

		removed, err := s.attachments.DeleteByTaskID(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		if err := txTasks.Delete(ctx, task.ID); err != nil {
			return err
		}

		task.Attachments = removed
		snapshot = task
		return nil
	})
	if err != nil {
		s.logFailure(log, "failed to delete task", err)
		return nil, NewServiceError("task", "delete", err)
	}

	s.attachments.PurgeBlobs(ctx, snapshot.Attachments)

	log.Info("task deleted",
		slog.String("task_id", snapshot.ID.String()),
		slog.Int("attachment_count", len(snapshot.Attachments)))

	return snapshot, nil
}

// requireAssignee returns a validation error on assignee_id unless the user
// exists.
func (s *taskServiceImpl) requireAssignee(ctx context.Context, tx *sql.Tx, assigneeID uuid.UUID) error {
	_, err := s.users.WithTx(tx).GetByID(ctx, assigneeID)
	if errors.Is(err, store.ErrUserNotFound) {
		return domain.NewValidationError("assignee_id", "does not refer to an existing user", domain.ErrAssigneeNotFound)
	}
	return err
}

// logFailure logs unexpected errors. Expected outcomes such as not found,
// forbidden and validation failures are left to the caller.
func (s *taskServiceImpl) logFailure(log *slog.Logger, msg string, err error) {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, authz.ErrForbidden) || errors.Is(err, domain.ErrValidation) {
		return
	}
	log.Error(msg, slog.String("error", err.Error()))
}
