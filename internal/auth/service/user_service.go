package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chris743/db-api/internal/auth/domain"
	"github.com/chris743/db-api/internal/auth/dto"
	autherror "github.com/chris743/db-api/internal/errors"
	"github.com/chris743/db-api/pkg/constant"
)

// UserService covers administrative user management over the credential
// store. Users are never physically removed: Deactivate flips is_active and
// invalidates the user's sessions.
type UserService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	hasher   PasswordHasher
	audit    *AuditRecorder
	log      *zap.Logger
}

func NewUserService(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	hasher PasswordHasher,
	audit *AuditRecorder,
	log *zap.Logger,
) *UserService {
	return &UserService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		audit:    audit,
		log:      log,
	}
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return s.users.List(ctx, limit, offset)
}

func (s *UserService) Get(ctx context.Context, id int) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherror.ErrUserNotFound
	}

	return user, nil
}

func (s *UserService) Create(ctx context.Context, input dto.CreateUserInput, createdByUserID int) (*domain.User, error) {
	if !constant.ValidRole(input.Role) {
		return nil, autherror.ErrInvalidRole
	}

	taken, err := s.users.UsernameExists(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, autherror.ErrUsernameTaken
	}

	if input.Email != nil && *input.Email != "" {
		taken, err := s.users.EmailExists(ctx, *input.Email, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, autherror.ErrEmailTaken
		}
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		Username:        input.Username,
		Email:           input.Email,
		PasswordHash:    passwordHash,
		FullName:        input.FullName,
		Role:            input.Role,
		IsActive:        input.IsActive,
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedByUserID: &createdByUserID,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user created",
		zap.String("username", user.Username),
		zap.Int("created_by", createdByUserID))
	s.recordAudit(ctx, constant.ActionUserCreated, &createdByUserID, user.ID)

	return user, nil
}

func (s *UserService) Update(ctx context.Context, id int, input dto.UpdateUserInput, updatedByUserID int) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != "" {
		taken, err := s.users.EmailExists(ctx, *input.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, autherror.ErrEmailTaken
		}
		user.Email = input.Email
	}

	if input.FullName != nil {
		user.FullName = input.FullName
	}

	if input.Role != nil {
		if !constant.ValidRole(*input.Role) {
			return nil, autherror.ErrInvalidRole
		}
		user.Role = *input.Role
	}

	deactivated := false
	if input.IsActive != nil {
		deactivated = user.IsActive && !*input.IsActive
		user.IsActive = *input.IsActive
	}

	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	// Deactivating a user cascades into its sessions.
	if deactivated {
		if err := s.sessions.DeactivateAllForUser(ctx, id); err != nil {
			return nil, err
		}
	}

	s.recordAudit(ctx, constant.ActionUserUpdated, &updatedByUserID, id)

	return user, nil
}

func (s *UserService) Deactivate(ctx context.Context, id int, deactivatedByUserID int) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.users.Deactivate(ctx, id); err != nil {
		return err
	}

	if err := s.sessions.DeactivateAllForUser(ctx, id); err != nil {
		return err
	}

	s.log.Info("user deactivated",
		zap.Int("user_id", id),
		zap.Int("deactivated_by", deactivatedByUserID))
	s.recordAudit(ctx, constant.ActionUserDeactivated, &deactivatedByUserID, id)

	return nil
}

// ChangePassword lets an authenticated user rotate their own password. The
// current password must verify first; all existing sessions are invalidated
// so a stolen refresh token dies with the old password.
func (s *UserService) ChangePassword(ctx context.Context, userID int, input dto.ChangePasswordInput) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(input.CurrentPassword, user.PasswordHash) {
		return autherror.ErrInvalidCredentials
	}

	passwordHash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, passwordHash, time.Now()); err != nil {
		return err
	}

	if err := s.sessions.DeactivateAllForUser(ctx, userID); err != nil {
		return err
	}

	s.recordAudit(ctx, constant.ActionPasswordChanged, &userID, userID)

	return nil
}

// ResetPassword is the administrative password override. No current-password
// check; sessions are invalidated the same way.
func (s *UserService) ResetPassword(ctx context.Context, userID int, newPassword string, resetByUserID int) error {
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, passwordHash, time.Now()); err != nil {
		return err
	}

	if err := s.sessions.DeactivateAllForUser(ctx, userID); err != nil {
		return err
	}

	s.recordAudit(ctx, constant.ActionPasswordReset, &resetByUserID, userID)

	return nil
}

func (s *UserService) ListSessions(ctx context.Context, userID int) ([]domain.Session, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	return s.sessions.ListByUser(ctx, userID)
}

func (s *UserService) ForceLogout(ctx context.Context, userID int, requestedByUserID int) error {
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}

	if err := s.sessions.DeactivateAllForUser(ctx, userID); err != nil {
		return err
	}

	s.recordAudit(ctx, constant.ActionLogout, &requestedByUserID, userID)

	return nil
}

func (s *UserService) recordAudit(ctx context.Context, action string, actorID *int, resourceID int) {
	resourceType := "user"
	s.audit.Record(ctx, &domain.AuditEntry{
		UserID:       actorID,
		Action:       action,
		ResourceType: &resourceType,
		ResourceID:   &resourceID,
		CreatedAt:    time.Now(),
	})
}
