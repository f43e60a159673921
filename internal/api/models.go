package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taktplan/internal/domain"
)

// LoginResponse is the OAuth2-style token returned by the login endpoint.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`

	// ExpiresAt is the RFC 3339 time after which the token is rejected.
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RegisterRequest defines the payload for the registration endpoint.
// Only employee accounts can register themselves.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=employee"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// TaskCreateRequest defines the payload for creating a task.
type TaskCreateRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description"`
	Priority    int    `json:"priority"    validate:"required,min=1,max=5"`
	Status      string `json:"status"      validate:"required,oneof=in_progress done later"`
	AssigneeID  string `json:"assignee_id" validate:"required,uuid"`
}

// TaskUpdateRequest defines the payload for a partial task update.
// Absent fields are left unchanged.
type TaskUpdateRequest struct {
	Title       *string `json:"title"       validate:"omitempty,max=200"`
	Description *string `json:"description"`
	Priority    *int    `json:"priority"    validate:"omitempty,min=1,max=5"`
	Status      *string `json:"status"      validate:"omitempty,oneof=in_progress done later"`
	AssigneeID  *string `json:"assignee_id" validate:"omitempty,uuid"`
}

// TaskResponse is a task together with its attachments.
type TaskResponse struct {
	ID          uuid.UUID            `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Priority    int                  `json:"priority"`
	Status      domain.TaskStatus    `json:"status"`
	CreatorID   uuid.UUID            `json:"creator_id"`
	AssigneeID  uuid.UUID            `json:"assignee_id"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// AttachmentResponse is the metadata of an uploaded file. FilePath is the
// generated storage key, never the uploaded name.
type AttachmentResponse struct {
	ID          uuid.UUID `json:"id"`
	TaskID      uuid.UUID `json:"task_id"`
	FileName    string    `json:"file_name"`
	FilePath    string    `json:"file_path"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Checksum    string    `json:"checksum"`
	CreatedAt   time.Time `json:"created_at"`
}

// toCreate converts the request after validation, so the UUID parses.
func (r TaskCreateRequest) toCreate() (domain.TaskCreate, error) {
	assignee, err := uuid.Parse(r.AssigneeID)
	if err != nil {
		return domain.TaskCreate{}, domain.NewValidationError("assignee_id", "must be a UUID", domain.ErrInvalidID)
	}
	return domain.TaskCreate{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      domain.TaskStatus(r.Status),
		AssigneeID:  assignee,
	}, nil
}

func (r TaskUpdateRequest) toUpdate() (domain.TaskUpdate, error) {
	update := domain.TaskUpdate{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
	}
	if r.Status != nil {
		status := domain.TaskStatus(*r.Status)
		update.Status = &status
	}
	if r.AssigneeID != nil {
		assignee, err := uuid.Parse(*r.AssigneeID)
		if err != nil {
			return domain.TaskUpdate{}, domain.NewValidationError("assignee_id", "must be a UUID", domain.ErrInvalidID)
		}
		update.AssigneeID = &assignee
	}
	return update, nil
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func taskToResponse(t *domain.Task) TaskResponse {
	attachments := make([]AttachmentResponse, 0, len(t.Attachments))
	for _, a := range t.Attachments {
		attachments = append(attachments, attachmentToResponse(a))
	}
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Status:      t.Status,
		CreatorID:   t.CreatorID,
		AssigneeID:  t.AssigneeID,
		Attachments: attachments,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return out
}

func attachmentToResponse(a *domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          a.ID,
		TaskID:      a.TaskID,
		FileName:    a.FileName,
		FilePath:    a.StorageKey,
		ContentType: a.ContentType,
		SizeBytes:   a.SizeBytes,
		Checksum:    a.Checksum,
		CreatedAt:   a.CreatedAt,
	}
}
