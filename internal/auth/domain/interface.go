package domain

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/chris743/db-api/internal/auth/domain UserRepository
//go:generate mockgen -destination=../../mocks/mock_session_repository.go -package=mocks github.com/chris743/db-api/internal/auth/domain SessionRepository
//go:generate mockgen -destination=../../mocks/mock_audit_repository.go -package=mocks github.com/chris743/db-api/internal/auth/domain AuditLogRepository

import (
	"context"
	"time"
)

// UserRepository persists credential-store records. Lookup methods return
// (nil, nil) when no row matches.
type UserRepository interface {
	GetActiveByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	List(ctx context.Context, limit, offset int) ([]User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string, excludeUserID int) (bool, error)
	RecordLoginFailure(ctx context.Context, id, failedAttempts int, lockedUntil *time.Time) error
	RecordLoginSuccess(ctx context.Context, id int, at time.Time) error
	UpdatePassword(ctx context.Context, id int, passwordHash string, changedAt time.Time) error
	Deactivate(ctx context.Context, id int) error
}

// SessionRepository persists refresh-token sessions and Zoho session keys.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	// FindActiveWithUser returns the active session matching tokenHash joined
	// to its user, or (nil, nil, nil) when none matches. Expiry is evaluated
	// by the caller.
	FindActiveWithUser(ctx context.Context, tokenHash string) (*Session, *User, error)
	FindActive(ctx context.Context, tokenHash string) (*Session, error)
	Deactivate(ctx context.Context, id int) error
	DeactivateAllForUser(ctx context.Context, userID int) error
	// Upsert inserts a session keyed by TokenHash, or rebinds and reactivates
	// the existing row for that hash.
	Upsert(ctx context.Context, session *Session) error
	ListByUser(ctx context.Context, userID int) ([]Session, error)
}

// AuditLogRepository appends security audit entries. Write-only.
type AuditLogRepository interface {
	Insert(ctx context.Context, entry *AuditEntry) error
}
