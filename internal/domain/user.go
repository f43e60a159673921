package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// Role is the closed set of user roles.
type Role string

// Possible role values
const (
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Password length bounds. bcrypt ignores anything beyond 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// Common validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
	ErrInvalidRole         = errors.New("invalid role")
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleManager || r == RoleEmployee
}

// User represents a registered user.
// Role is fixed at creation and users are never deleted.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email, password hash and role.
// Plaintext passwords never reach this type; see ValidatePassword.
func NewUser(email, hashedPassword string, role Role) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Email:          strings.TrimSpace(email),
		HashedPassword: hashedPassword,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "must not be empty", ErrEmptyUserID)
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if u.HashedPassword == "" {
		return NewValidationError("password", "must not be empty", ErrEmptyHashedPassword)
	}
	if !u.Role.IsValid() {
		return NewValidationError("role", "must be manager or employee", ErrInvalidRole)
	}
	return nil
}

// IsManager reports whether the user holds the manager role.
func (u *User) IsManager() bool {
	return u != nil && u.Role == RoleManager
}

// ValidateEmail checks that email is a bare address such as "a@b.io".
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return NewValidationError("email", "must not be empty", ErrEmptyEmail)
	}
	if err := validate.Var(email, "email"); err != nil {
		return NewValidationError("email", "must be a valid email address", ErrInvalidEmail)
	}
	return nil
}

// ValidatePassword checks the plaintext password length in bytes.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return NewValidationError("password", "must not be empty", ErrEmptyPassword)
	case len(password) < MinPasswordLength:
		return NewValidationError("password", "must be at least 8 characters long", ErrPasswordTooShort)
	case len(password) > MaxPasswordLength:
		return NewValidationError("password", "must be at most 72 characters long", ErrPasswordTooLong)
	}
	return nil
}
