package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/phrazzld/taktplan/internal/mocks"
	"github.com/phrazzld/taktplan/internal/platform/logger"
	"github.com/phrazzld/taktplan/internal/service"
	"github.com/phrazzld/taktplan/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T, users *mocks.MockUserStore) (service.UserService, *mocks.MockPasswordHasher) {
	t.Helper()
	log, _ := logger.NewTestLogger()
	hasher := &mocks.MockPasswordHasher{}
	svc, err := service.NewUserService(users, &mocks.NoopTransactor{}, hasher, hasher, log)
	require.NoError(t, err)
	return svc, hasher
}

func TestNewUserService_NilDependencies(t *testing.T) {
	hasher := &mocks.MockPasswordHasher{}
	users := mocks.NewMockUserStore()

	_, err := service.NewUserService(nil, &mocks.NoopTransactor{}, hasher, hasher, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.NewUserService(users, nil, hasher, hasher, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.NewUserService(users, &mocks.NoopTransactor{}, nil, hasher, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.NewUserService(users, &mocks.NoopTransactor{}, hasher, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	failing := &mocks.MockPasswordHasher{HashErr: errors.New("entropy exhausted")}
	_, err = service.NewUserService(users, &mocks.NoopTransactor{}, failing, failing, nil)
	assert.Error(t, err)
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("stores hashed password", func(t *testing.T) {
		users := mocks.NewMockUserStore()
		svc, _ := newUserService(t, users)

		user, err := svc.CreateUser(ctx, "new@example.com", "password123", domain.RoleEmployee)

		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, domain.RoleEmployee, user.Role)
		assert.Equal(t, "hashed:password123", user.HashedPassword)
		assert.Equal(t, user.ID, users.LastUserID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		existing := testUser("taken@example.com", domain.RoleEmployee)
		svc, _ := newUserService(t, mocks.NewMockUserStore(existing))

		_, err := svc.CreateUser(ctx, "taken@example.com", "password123", domain.RoleManager)

		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	validation := []struct {
		name     string
		email    string
		password string
		role     domain.Role
		wantErr  error
	}{
		{"invalid email", "not-an-email", "password123", domain.RoleEmployee, domain.ErrInvalidEmail},
		{"short password", "a@example.com", "short", domain.RoleEmployee, domain.ErrPasswordTooShort},
		{"long password", "a@example.com", string(make([]byte, 73)), domain.RoleEmployee, domain.ErrPasswordTooLong},
		{"unknown role", "a@example.com", "password123", domain.Role("admin"), domain.ErrInvalidRole},
	}
	for _, tc := range validation {
		t.Run(tc.name, func(t *testing.T) {
			users := mocks.NewMockUserStore()
			svc, _ := newUserService(t, users)

			_, err := svc.CreateUser(ctx, tc.email, tc.password, tc.role)

			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, users.Users)
		})
	}
}

func TestUserService_Lookup(t *testing.T) {
	ctx := context.Background()
	existing := testUser("known@example.com", domain.RoleManager)
	svc, _ := newUserService(t, mocks.NewMockUserStore(existing))

	byEmail, err := svc.GetUserByEmail(ctx, "known@example.com")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, byEmail.ID)

	byID, err := svc.GetUser(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.Email, byID.Email)

	_, err = svc.GetUserByEmail(ctx, "unknown@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = svc.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	existing := testUser("known@example.com", domain.RoleEmployee)

	t.Run("correct password", func(t *testing.T) {
		svc, _ := newUserService(t, mocks.NewMockUserStore(existing))

		user, err := svc.Authenticate(ctx, "known@example.com", "password123")

		require.NoError(t, err)
		assert.Equal(t, existing.ID, user.ID)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		svc, hasher := newUserService(t, mocks.NewMockUserStore(existing))

		_, wrongPassword := svc.Authenticate(ctx, "known@example.com", "wrong-password")
		_, unknownEmail := svc.Authenticate(ctx, "unknown@example.com", "password123")

		assert.ErrorIs(t, wrongPassword, service.ErrInvalidCredentials)
		assert.ErrorIs(t, unknownEmail, service.ErrInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
		assert.Equal(t, 2, hasher.Calls(), "both paths verify a hash")
	})

	t.Run("store failure is not reported as bad credentials", func(t *testing.T) {
		users := mocks.NewMockUserStore()
		users.GetByEmailError = errors.New("connection reset")
		svc, _ := newUserService(t, users)

		_, err := svc.Authenticate(ctx, "known@example.com", "password123")

		require.Error(t, err)
		assert.NotErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestUserService_EnsureUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing user", func(t *testing.T) {
		users := mocks.NewMockUserStore()
		svc, _ := newUserService(t, users)

		user, created, err := svc.EnsureUser(ctx, "seed@example.com", "password123", domain.RoleManager)

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, domain.RoleManager, user.Role)
		assert.Len(t, users.Users, 1)
	})

	t.Run("keeps existing user", func(t *testing.T) {
		existing := testUser("seed@example.com", domain.RoleEmployee)
		users := mocks.NewMockUserStore(existing)
		svc, _ := newUserService(t, users)

		user, created, err := svc.EnsureUser(ctx, "seed@example.com", "different-password", domain.RoleManager)

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existing.ID, user.ID)
		assert.Equal(t, domain.RoleEmployee, user.Role, "existing accounts are not modified")
	})

	t.Run("lost creation race", func(t *testing.T) {
		winner := testUser("seed@example.com", domain.RoleManager)
		userStore := new(mocks.TestifyMockUserStore)
		userStore.On("GetByEmail", mock.Anything, "seed@example.com").Return(nil, store.ErrUserNotFound).Once()
		userStore.On("Create", mock.Anything, mock.Anything).Return(store.ErrEmailExists).Once()
		userStore.On("GetByEmail", mock.Anything, "seed@example.com").Return(winner, nil).Once()

		hasher := &mocks.MockPasswordHasher{}
		svc, err := service.NewUserService(userStore, &mocks.NoopTransactor{}, hasher, hasher, nil)
		require.NoError(t, err)

		user, created, err := svc.EnsureUser(ctx, "seed@example.com", "password123", domain.RoleManager)

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, winner.ID, user.ID)
		userStore.AssertExpectations(t)
	})
}
