package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chris743/db-api/internal/auth/domain"
	"github.com/chris743/db-api/internal/auth/dto"
	"github.com/chris743/db-api/internal/auth/service"
	autherror "github.com/chris743/db-api/internal/errors"
	"github.com/chris743/db-api/internal/mocks"
)

type userServiceFixture struct {
	users    *mocks.MockUserRepository
	sessions *mocks.MockSessionRepository
	hasher   *mocks.MockPasswordHasher
	svc      *service.UserService
}

func newUserServiceFixture(ctrl *gomock.Controller) *userServiceFixture {
	users := mocks.NewMockUserRepository(ctrl)
	sessions := mocks.NewMockSessionRepository(ctrl)
	hasher := mocks.NewMockPasswordHasher(ctrl)

	auditRepo := mocks.NewMockAuditLogRepository(ctrl)
	auditRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	audit := service.NewAuditRecorder(auditRepo, zap.NewNop())

	return &userServiceFixture{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		svc:      service.NewUserService(users, sessions, hasher, audit, zap.NewNop()),
	}
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestUserService_List_ClampsLimit(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		offset    int
		wantLimit int
		wantSkip  int
	}{
		{"defaults applied", 0, -5, 100, 0},
		{"oversized limit clamped", 10000, 20, 100, 20},
		{"sane values pass through", 25, 50, 25, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			f := newUserServiceFixture(ctrl)
			f.users.EXPECT().List(gomock.Any(), tt.wantLimit, tt.wantSkip).Return([]domain.User{}, nil)

			_, err := f.svc.List(context.Background(), tt.limit, tt.offset)
			assert.NoError(t, err)
		})
	}
}

func TestUserService_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newUserServiceFixture(ctrl)
	f.users.EXPECT().GetByID(gomock.Any(), 99).Return(nil, nil)

	user, err := f.svc.Get(context.Background(), 99)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, autherror.ErrUserNotFound)
}

func TestUserService_Create_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newUserServiceFixture(ctrl)
	input := dto.CreateUserInput{
		Username: "newhire",
		Email:    strPtr("newhire@example.com"),
		Password: "plaintext",
		FullName: strPtr("New Hire"),
		Role:     "user",
		IsActive: true,
	}

	f.users.EXPECT().UsernameExists(gomock.Any(), "newhire").Return(false, nil)
	f.users.EXPECT().EmailExists(gomock.Any(), "newhire@example.com", 0).Return(false, nil)
	f.hasher.EXPECT().Hash("plaintext").Return("hashed-pw", nil)

	f.users.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *domain.User) error {
			assert.Equal(t, "newhire", u.Username)
			assert.Equal(t, "hashed-pw", u.PasswordHash)
			require.NotNil(t, u.CreatedByUserID)
			assert.Equal(t, 1, *u.CreatedByUserID)
			u.ID = 8
			return nil
		})

	user, err := f.svc.Create(context.Background(), input, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, user.ID)
}

func TestUserService_Create_Conflicts(t *testing.T) {
	t.Run("invalid role", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newUserServiceFixture(ctrl)

		_, err := f.svc.Create(context.Background(), dto.CreateUserInput{Username: "x", Password: "p", Role: "superuser"}, 1)
		assert.ErrorIs(t, err, autherror.ErrInvalidRole)
	})

	t.Run("username taken", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newUserServiceFixture(ctrl)
		f.users.EXPECT().UsernameExists(gomock.Any(), "alice").Return(true, nil)

		_, err := f.svc.Create(context.Background(), dto.CreateUserInput{Username: "alice", Password: "p", Role: "user"}, 1)
		assert.ErrorIs(t, err, autherror.ErrUsernameTaken)
	})

	t.Run("email taken", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newUserServiceFixture(ctrl)
		f.users.EXPECT().UsernameExists(gomock.Any(), "bob").Return(false, nil)
		f.users.EXPECT().EmailExists(gomock.Any(), "bob@example.com", 0).Return(true, nil)

		input := dto.CreateUserInput{Username: "bob", Email: strPtr("bob@example.com"), Password: "p", Role: "user"}
		_, err := f.svc.Create(context.Background(), input, 1)
		assert.ErrorIs(t, err, autherror.ErrEmailTaken)
	})
}

func TestUserService_Update_DeactivationCascadesSessions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newUserServiceFixture(ctrl)
	existing := &domain.User{ID: 7, Username: "alice", Role: "user", IsActive: true}

	f.users.EXPECT().GetByID(gomock.Any(), 7).Return(existing, nil)
	f.users.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
	f.sessions.EXPECT().DeactivateAllForUser(gomock.Any(), 7).Return(nil)

	user, err := f.svc.Update(context.Background(), 7, dto.UpdateUserInput{IsActive: boolPtr(false)}, 1)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
}

func TestUserService_Update_RoleChangeWithoutDeactivation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newUserServiceFixture(ctrl)
	existing := &domain.User{ID: 7, Username: "alice", Role: "user", IsActive: true}

	f.users.EXPECT().GetByID(gomock.Any(), 7).Return(existing, nil)
	f.users.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
	// No session cascade when the user stays active.

	user, err := f.svc.Update(context.Background(), 7, dto.UpdateUserInput{Role: strPtr("manager")}, 1)
	require.NoError(t, err)
	assert.Equal(t, "manager", user.Role)
	assert.True(t, user.IsActive)
}

func TestUserService_Update_InvalidRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newUserServiceFixture(ctrl)
	existing := &domain.User{ID: 7, Username: "alice", Role: "user", IsActive: true}

	f.users.EXPECT().GetByID(gomock.Any(), 7).Return(existing, nil)

	_, err := f.svc.Update(context.Background(), 7, dto.UpdateUserInput{Role: strPtr("root")}, 1)
	assert.ErrorIs(t, err, autherror.ErrInvalidRole)
}

func TestUserService_Deactivate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newUserServiceFixture(ctrl)
	existing := &domain.User{ID: 7, Username: "alice", Role: "user", IsActive: true}

	f.users.EXPECT().GetByID(gomock.Any(), 7).Return(existing, nil)
	f.users.EXPECT().Deactivate(gomock.Any(), 7).Return(nil)
	f.sessions.EXPECT().DeactivateAllForUser(gomock.Any(), 7).Return(nil)

	assert.NoError(t, f.svc.Deactivate(context.Background(), 7, 1))
}

func TestUserService_ChangePassword_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newUserServiceFixture(ctrl)
	existing := &domain.User{ID: 7, Username: "alice", PasswordHash: "old-hash", Role: "user", IsActive: true}

	f.users.EXPECT().GetByID(gomock.Any(), 7).Return(existing, nil)
	f.hasher.EXPECT().Verify("old-pw", "old-hash").Return(true)
	f.hasher.EXPECT().Hash("new-pw").Return("new-hash", nil)
	f.users.EXPECT().UpdatePassword(gomock.Any(), 7, "new-hash", gomock.AssignableToTypeOf(time.Time{})).Return(nil)
	// Every session dies with the old password.
	f.sessions.EXPECT().DeactivateAllForUser(gomock.Any(), 7).Return(nil)

	input := dto.ChangePasswordInput{CurrentPassword: "old-pw", NewPassword: "new-pw"}
	assert.NoError(t, f.svc.ChangePassword(context.Background(), 7, input))
}

func TestUserService_ChangePassword_WrongCurrentPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newUserServiceFixture(ctrl)
	existing := &domain.User{ID: 7, Username: "alice", PasswordHash: "old-hash", Role: "user", IsActive: true}

	f.users.EXPECT().GetByID(gomock.Any(), 7).Return(existing, nil)
	f.hasher.EXPECT().Verify("guess", "old-hash").Return(false)

	input := dto.ChangePasswordInput{CurrentPassword: "guess", NewPassword: "new-pw"}
	err := f.svc.ChangePassword(context.Background(), 7, input)
	assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
}

func TestUserService_ResetPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newUserServiceFixture(ctrl)
	existing := &domain.User{ID: 7, Username: "alice", PasswordHash: "old-hash", Role: "user", IsActive: true}

	// Administrative reset: no current-password check.
	f.users.EXPECT().GetByID(gomock.Any(), 7).Return(existing, nil)
	f.hasher.EXPECT().Hash("issued-pw").Return("issued-hash", nil)
	f.users.EXPECT().UpdatePassword(gomock.Any(), 7, "issued-hash", gomock.AssignableToTypeOf(time.Time{})).Return(nil)
	f.sessions.EXPECT().DeactivateAllForUser(gomock.Any(), 7).Return(nil)

	assert.NoError(t, f.svc.ResetPassword(context.Background(), 7, "issued-pw", 1))
}

func TestUserService_ForceLogout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newUserServiceFixture(ctrl)
	existing := &domain.User{ID: 7, Username: "alice", Role: "user", IsActive: true}

	f.users.EXPECT().GetByID(gomock.Any(), 7).Return(existing, nil)
	f.sessions.EXPECT().DeactivateAllForUser(gomock.Any(), 7).Return(nil)

	assert.NoError(t, f.svc.ForceLogout(context.Background(), 7, 1))
}

func TestUserService_ListSessions_UnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newUserServiceFixture(ctrl)
	f.users.EXPECT().GetByID(gomock.Any(), 99).Return(nil, nil)

	sessions, err := f.svc.ListSessions(context.Background(), 99)
	assert.Nil(t, sessions)
	assert.ErrorIs(t, err, autherror.ErrUserNotFound)
}
