package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chris743/db-api/config"
	"github.com/chris743/db-api/internal/auth/domain"
	"github.com/chris743/db-api/internal/auth/dto"
	autherror "github.com/chris743/db-api/internal/errors"
	"github.com/chris743/db-api/pkg/constant"
)

// AuthService implements the login/refresh/logout state machine. Lockout
// expiry is evaluated lazily against the wall clock on each attempt; there is
// no background sweep.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	tokens   TokenGenerator
	hasher   PasswordHasher
	audit    *AuditRecorder
	cfg      *config.Config
	log      *zap.Logger
}

func NewAuthService(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	tokens TokenGenerator,
	hasher PasswordHasher,
	audit *AuditRecorder,
	cfg *config.Config,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hasher:   hasher,
		audit:    audit,
		cfg:      cfg,
		log:      log,
	}
}

// Login verifies the credentials, maintains the failed-attempt counter and,
// on success, issues an access token plus a refresh token whose SHA-256 hash
// is persisted as a session. Unknown usernames and wrong passwords fail with
// the same error so the caller cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, input dto.LoginInput) (*dto.LoginResponse, error) {
	user, err := s.users.GetActiveByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	if user == nil {
		s.log.Warn("login attempt with invalid username", zap.String("username", input.Username))
		return nil, autherror.ErrInvalidCredentials
	}

	now := time.Now()

	if user.Locked(now) {
		s.log.Warn("login attempt on locked account", zap.String("username", user.Username))
		return nil, autherror.ErrAccountLocked
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		attempts := user.FailedLoginAttempts + 1

		var lockedUntil *time.Time
		if attempts >= s.cfg.Login.MaxAttempts {
			t := now.Add(time.Duration(s.cfg.Login.LockoutMinutes) * time.Minute)
			lockedUntil = &t
		}

		if err := s.users.RecordLoginFailure(ctx, user.ID, attempts, lockedUntil); err != nil {
			return nil, err
		}

		s.log.Warn("login attempt with invalid password", zap.String("username", user.Username))
		s.recordAudit(ctx, constant.ActionLoginFailed, &user.ID, input.IPAddress, input.UserAgent)
		if lockedUntil != nil {
			s.recordAudit(ctx, constant.ActionAccountLocked, &user.ID, input.IPAddress, input.UserAgent)
		}

		return nil, autherror.ErrInvalidCredentials
	}

	// Successful login resets the counter and clears any expired lock.
	if err := s.users.RecordLoginSuccess(ctx, user.ID, now); err != nil {
		return nil, err
	}

	accessToken, accessExpiresAt, err := s.tokens.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	refreshExpiresAt := now.Add(s.tokens.RefreshTokenTTL())

	session := &domain.Session{
		UserID:    user.ID,
		TokenHash: s.tokens.HashRefreshToken(refreshToken),
		ExpiresAt: refreshExpiresAt,
		CreatedAt: now,
		IPAddress: optional(input.IPAddress),
		UserAgent: optional(input.UserAgent),
		IsActive:  true,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.String("username", user.Username))
	s.recordAudit(ctx, constant.ActionLogin, &user.ID, input.IPAddress, input.UserAgent)

	return &dto.LoginResponse{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshExpiresAt,
	}, nil
}

// Refresh mints a new access token for a valid refresh token. The refresh
// token itself is not rotated: the same value and its original expiry are
// echoed back.
func (s *AuthService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.LoginResponse, error) {
	tokenHash := s.tokens.HashRefreshToken(input.RefreshToken)

	session, user, err := s.sessions.FindActiveWithUser(ctx, tokenHash)
	if err != nil {
		return nil, err
	}

	if session == nil || user == nil || !session.Usable(time.Now()) {
		return nil, autherror.ErrRefreshTokenNotFound
	}

	accessToken, accessExpiresAt, err := s.tokens.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, constant.ActionTokenRefresh, &user.ID, "", "")

	return &dto.LoginResponse{
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          input.RefreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout deactivates the session matching the refresh token. Unknown or
// already-inactive tokens succeed as well: the caller learns nothing either
// way, and a repeated logout is harmless.
func (s *AuthService) Logout(ctx context.Context, input dto.LogoutInput) error {
	tokenHash := s.tokens.HashRefreshToken(input.RefreshToken)

	session, err := s.sessions.FindActive(ctx, tokenHash)
	if err != nil {
		return err
	}

	if session == nil {
		return nil
	}

	if err := s.sessions.Deactivate(ctx, session.ID); err != nil {
		return err
	}

	s.recordAudit(ctx, constant.ActionLogout, &session.UserID, "", "")

	return nil
}

func (s *AuthService) recordAudit(ctx context.Context, action string, userID *int, ip, userAgent string) {
	s.audit.Record(ctx, &domain.AuditEntry{
		UserID:    userID,
		Action:    action,
		IPAddress: optional(ip),
		UserAgent: optional(userAgent),
		CreatedAt: time.Now(),
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
