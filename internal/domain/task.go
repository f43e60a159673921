package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the progress state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusLater      TaskStatus = "later"
)

// Priority bounds. 1 is the most urgent.
const (
	MinPriority = 1
	MaxPriority = 5
)

// MaxTitleLength bounds the task title in characters.
const MaxTitleLength = 200

// Common validation errors for Task
var (
	ErrEmptyTaskID       = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle    = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong  = errors.New("task title is too long")
	ErrInvalidPriority   = errors.New("invalid task priority")
	ErrInvalidTaskStatus = errors.New("invalid task status")
	ErrEmptyCreatorID    = errors.New("task creator ID cannot be empty")
	ErrEmptyAssigneeID   = errors.New("task assignee ID cannot be empty")
	ErrAssigneeNotFound  = errors.New("assignee does not exist")
)

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusInProgress, TaskStatusDone, TaskStatusLater:
		return true
	default:
		return false
	}
}

// Task is a unit of work created by one user and assigned to another
// (possibly the same) user. CreatorID never changes after creation.
type Task struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Priority    int           `json:"priority"`
	Status      TaskStatus    `json:"status"`
	CreatorID   uuid.UUID     `json:"creator_id"`
	AssigneeID  uuid.UUID     `json:"assignee_id"`
	Attachments []*Attachment `json:"attachments"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TaskCreate holds the caller-supplied fields of a new task.
type TaskCreate struct {
	Title       string
	Description string
	Priority    int
	Status      TaskStatus
	AssigneeID  uuid.UUID
}

// TaskUpdate is a partial update. Nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *int
	Status      *TaskStatus
	AssigneeID  *uuid.UUID
}

// NewTask creates a Task from the given fields with creatorID as its creator.
// It generates a new UUID and sets the creation/update timestamps.
func NewTask(fields TaskCreate, creatorID uuid.UUID) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(fields.Title),
		Description: fields.Description,
		Priority:    fields.Priority,
		Status:      fields.Status,
		CreatorID:   creatorID,
		AssigneeID:  fields.AssigneeID,
		Attachments: []*Attachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "must not be empty", ErrEmptyTaskID)
	}
	if err := validateTitle(t.Title); err != nil {
		return err
	}
	if err := validatePriority(t.Priority); err != nil {
		return err
	}
	if !t.Status.IsValid() {
		return NewValidationError("status", "must be one of in_progress, done, later", ErrInvalidTaskStatus)
	}
	if t.CreatorID == uuid.Nil {
		return NewValidationError("creator_id", "must not be empty", ErrEmptyCreatorID)
	}
	if t.AssigneeID == uuid.Nil {
		return NewValidationError("assignee_id", "must not be empty", ErrEmptyAssigneeID)
	}
	return nil
}

// IsEmpty reports whether the update changes nothing.
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil &&
		u.Status == nil && u.AssigneeID == nil
}

// Apply copies the supplied fields of u onto a copy of t and validates the
// result. t itself is not modified. UpdatedAt is set to now.
func (t *Task) Apply(u TaskUpdate, now time.Time) (*Task, error) {
	updated := *t

	if u.Title != nil {
		updated.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		updated.Description = *u.Description
	}
	if u.Priority != nil {
		updated.Priority = *u.Priority
	}
	if u.Status != nil {
		updated.Status = *u.Status
	}
	if u.AssigneeID != nil {
		updated.AssigneeID = *u.AssigneeID
	}
	updated.UpdatedAt = now.UTC()

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	return &updated, nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return NewValidationError("title", "must not be empty", ErrEmptyTaskTitle)
	}
	if len([]rune(title)) > MaxTitleLength {
		return NewValidationError("title", "must be at most 200 characters", ErrTaskTitleTooLong)
	}
	return nil
}

func validatePriority(p int) error {
	if p < MinPriority || p > MaxPriority {
		return NewValidationError("priority", "must be between 1 and 5", ErrInvalidPriority)
	}
	return nil
}
