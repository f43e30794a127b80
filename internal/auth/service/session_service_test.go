package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chris743/db-api/internal/auth/domain"
	"github.com/chris743/db-api/internal/auth/service"
	"github.com/chris743/db-api/internal/mocks"
)

func newSessionServiceFixture(ctrl *gomock.Controller) (*mocks.MockSessionRepository, *service.SessionService) {
	sessions := mocks.NewMockSessionRepository(ctrl)

	auditRepo := mocks.NewMockAuditLogRepository(ctrl)
	auditRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	audit := service.NewAuditRecorder(auditRepo, zap.NewNop())

	return sessions, service.NewSessionService(sessions, audit, zap.NewNop())
}

func TestSessionService_ResolveSessionKey(t *testing.T) {
	user := &domain.User{ID: 42, Username: "packhouse", Role: "readonly", IsActive: true}
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name     string
		key      string
		session  *domain.Session
		user     *domain.User
		expectID bool
	}{
		{
			name:     "valid session",
			key:      "zoho-key-1",
			session:  &domain.Session{ID: 1, UserID: 42, TokenHash: "zoho-key-1", ExpiresAt: future, IsActive: true},
			user:     user,
			expectID: true,
		},
		{
			name:     "never-expiring session",
			key:      "zoho-key-2",
			session:  &domain.Session{ID: 2, UserID: 42, TokenHash: "zoho-key-2", ExpiresAt: time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC), IsActive: true},
			user:     user,
			expectID: true,
		},
		{
			name:    "unknown key",
			key:     "missing",
			session: nil,
			user:    nil,
		},
		{
			name:    "expired session",
			key:     "stale",
			session: &domain.Session{ID: 3, UserID: 42, TokenHash: "stale", ExpiresAt: past, IsActive: true},
			user:    user,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			sessions, svc := newSessionServiceFixture(ctrl)
			// The key is looked up as-is, without hashing.
			sessions.EXPECT().FindActiveWithUser(gomock.Any(), tt.key).Return(tt.session, tt.user, nil)

			identity, err := svc.ResolveSessionKey(context.Background(), tt.key)
			require.NoError(t, err)

			if tt.expectID {
				require.NotNil(t, identity)
				assert.Equal(t, 42, identity.UserID)
				assert.Equal(t, "packhouse", identity.Username)
				assert.Equal(t, "readonly", identity.Role)
			} else {
				assert.Nil(t, identity)
			}
		})
	}
}

func TestSessionService_ResolveSessionKey_EmptyKeySkipsLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, svc := newSessionServiceFixture(ctrl)

	identity, err := svc.ResolveSessionKey(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, identity)
}

func TestSessionService_ResolveSessionKey_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessions, svc := newSessionServiceFixture(ctrl)
	dbErr := errors.New("connection refused")
	sessions.EXPECT().FindActiveWithUser(gomock.Any(), "key").Return(nil, nil, dbErr)

	identity, err := svc.ResolveSessionKey(context.Background(), "key")
	assert.Nil(t, identity)
	assert.ErrorIs(t, err, dbErr)
}

func TestSessionService_BindSessionKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessions, svc := newSessionServiceFixture(ctrl)

	var upserted *domain.Session
	sessions.EXPECT().Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s *domain.Session) error {
			upserted = s
			return nil
		})

	session, err := svc.BindSessionKey(context.Background(), "external-key", 42)
	require.NoError(t, err)
	require.NotNil(t, session)

	require.NotNil(t, upserted)
	assert.Equal(t, "external-key", upserted.TokenHash)
	assert.Equal(t, 42, upserted.UserID)
	assert.True(t, upserted.IsActive)
	assert.Equal(t, 9999, upserted.ExpiresAt.Year())
	require.NotNil(t, upserted.IPAddress)
	assert.Equal(t, "Zoho-Embedded", *upserted.IPAddress)
	require.NotNil(t, upserted.UserAgent)
	assert.Equal(t, "Zoho-Embedded-App", *upserted.UserAgent)
}

func TestSessionService_BindSessionKey_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sessions, svc := newSessionServiceFixture(ctrl)
	dbErr := errors.New("connection refused")
	sessions.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(dbErr)

	session, err := svc.BindSessionKey(context.Background(), "external-key", 42)
	assert.Nil(t, session)
	assert.ErrorIs(t, err, dbErr)
}
