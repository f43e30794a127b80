package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chris743/db-api/internal/auth/domain"
	"github.com/chris743/db-api/pkg/constant"
)

// Sessions bound to an external key never expire; the sentinel stands in for
// "no expiry" so the usual expiry comparison still applies.
var neverExpires = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

const (
	zohoIPAddress = "Zoho-Embedded"
	zohoUserAgent = "Zoho-Embedded-App"
)

// SessionService authenticates requests carrying an externally minted session
// key instead of a signed token. The key is matched verbatim against the
// token_hash column; unlike refresh tokens it is not hashed before lookup.
type SessionService struct {
	sessions domain.SessionRepository
	audit    *AuditRecorder
	log      *zap.Logger
}

func NewSessionService(sessions domain.SessionRepository, audit *AuditRecorder, log *zap.Logger) *SessionService {
	return &SessionService{sessions: sessions, audit: audit, log: log}
}

// ResolveSessionKey maps a session key to the identity of its linked user.
// A miss or expired session yields (nil, nil): the request simply stays
// unauthenticated and downstream authorization decides.
func (s *SessionService) ResolveSessionKey(ctx context.Context, sessionKey string) (*domain.Identity, error) {
	if sessionKey == "" {
		return nil, nil
	}

	session, user, err := s.sessions.FindActiveWithUser(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	if session == nil || user == nil || !session.Usable(time.Now()) {
		s.log.Warn("invalid or expired session key presented")
		return nil, nil
	}

	return &domain.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// BindSessionKey attaches an external session key to a local user, creating
// or reactivating the session row for that key with no expiry.
func (s *SessionService) BindSessionKey(ctx context.Context, sessionKey string, userID int) (*domain.Session, error) {
	session := &domain.Session{
		UserID:    userID,
		TokenHash: sessionKey,
		ExpiresAt: neverExpires,
		CreatedAt: time.Now(),
		IPAddress: optional(zohoIPAddress),
		UserAgent: optional(zohoUserAgent),
		IsActive:  true,
	}

	if err := s.sessions.Upsert(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info("session key bound to user", zap.Int("user_id", userID))
	s.audit.Record(ctx, &domain.AuditEntry{
		UserID:    &userID,
		Action:    constant.ActionSessionKeyBound,
		CreatedAt: time.Now(),
	})

	return session, nil
}
