package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/phrazzld/taktplan/internal/platform/logger"
	"github.com/phrazzld/taktplan/internal/service/auth"
	"github.com/phrazzld/taktplan/internal/store"
)

// dummyPassword is hashed once so Authenticate spends the same bcrypt work
// on unknown emails as on known ones.
const dummyPassword = "taktplan-timing-equalizer"

// UserService provides the user directory: account creation, lookup and
// credential checks.
type UserService interface {
	// CreateUser validates and stores a new account with a hashed password.
	// Returns store.ErrEmailExists if the email is taken.
	CreateUser(ctx context.Context, email, password string, role domain.Role) (*domain.User, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// GetUserByEmail retrieves a user by their email address
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// Authenticate returns the user owning email if password matches.
	// Unknown emails and wrong passwords both return ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// EnsureUser returns the existing account for email, or creates it.
	// created reports whether a new account was stored.
	EnsureUser(ctx context.Context, email, password string, role domain.Role) (user *domain.User, created bool, err error)
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	userStore  store.UserStore
	transactor store.Transactor
	hasher     auth.PasswordHasher
	verifier   auth.PasswordVerifier
	dummyHash  string
	logger     *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	userStore store.UserStore,
	transactor store.Transactor,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) (UserService, error) {
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if transactor == nil {
		return nil, domain.NewValidationError("transactor", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if verifier == nil {
		return nil, domain.NewValidationError("verifier", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, NewServiceError("user", "init", err)
	}

	return &userServiceImpl{
		userStore:  userStore,
		transactor: transactor,
		hasher:     hasher,
		verifier:   verifier,
		dummyHash:  dummyHash,
		logger:     logger.With(slog.String("component", "user_service")),
	}, nil
}

// GetUser implements UserService.GetUser
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to retrieve user",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
		}
		return nil, NewServiceError("user", "get", err)
	}

	return user, nil
}

// GetUserByEmail implements UserService.GetUserByEmail
func (s *userServiceImpl) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("user not found by email", slog.String("email", email))
		} else {
			log.Error("failed to retrieve user by email",
				slog.String("error", err.Error()),
				slog.String("email", email))
		}
		return nil, NewServiceError("user", "get_by_email", err)
	}

	return user, nil
}

// CreateUser implements UserService.CreateUser
// The insert runs in its own transaction.
func (s *userServiceImpl) CreateUser(
	ctx context.Context,
	email, password string,
	role domain.Role,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateEmail(email); err != nil {
		return nil, NewServiceError("user", "create", err)
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, NewServiceError("user", "create", err)
	}
	if !role.IsValid() {
		return nil, NewServiceError("user", "create",
			domain.NewValidationError("role", "must be manager or employee", domain.ErrInvalidRole))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "create", err)
	}

	user, err := domain.NewUser(email, hash, role)
	if err != nil {
		return nil, NewServiceError("user", "create", err)
	}

	err = s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to create user with existing email", slog.String("email", email))
		} else {
			log.Error("failed to save user",
				slog.String("error", err.Error()),
				slog.String("email", email))
		}
		return nil, NewServiceError("user", "create", err)
	}

	log.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)))

	return user, nil
}

// Authenticate implements UserService.Authenticate
func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("failed to look up user for authentication", slog.String("error", err.Error()))
			return nil, NewServiceError("user", "authenticate", err)
		}
		// Keep the response time of unknown emails close to that of known ones.
		_ = s.verifier.Compare(s.dummyHash, password)
		log.Debug("authentication failed: unknown email")
		return nil, ErrInvalidCredentials
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("authentication failed: password mismatch", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// EnsureUser implements UserService.EnsureUser
func (s *userServiceImpl) EnsureUser(
	ctx context.Context,
	email, password string,
	role domain.Role,
) (*domain.User, bool, error) {
	existing, err := s.userStore.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, false, NewServiceError("user", "ensure", err)
	}

	user, err := s.CreateUser(ctx, email, password, role)
	if errors.Is(err, store.ErrEmailExists) {
		// Created concurrently since the lookup above.
		existing, err = s.userStore.GetByEmail(ctx, email)
		if err != nil {
			return nil, false, NewServiceError("user", "ensure", err)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}
