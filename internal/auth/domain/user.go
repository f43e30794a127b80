package domain

import "time"

// User is a credential-store record. Users are soft deleted: IsActive is
// flipped to false and the row is never removed.
type User struct {
	ID                  int
	Username            string
	Email               *string
	PasswordHash        string
	FullName            *string
	Role                string
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
	CreatedByUserID     *int
	LastLogin           *time.Time
	PasswordChangedAt   *time.Time
	FailedLoginAttempts int
	LockedUntil         *time.Time
}

// Locked reports whether the account is inside its lockout window at now.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// Session is one issued refresh token or one externally bound session key.
// TokenHash holds the SHA-256 of a refresh token, or the verbatim key for
// Zoho-embedded sessions. Rows are deactivated on logout, never deleted.
type Session struct {
	ID        int
	UserID    int
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	IPAddress *string
	UserAgent *string
	IsActive  bool
}

// Usable reports whether the session may still authenticate at now.
func (s *Session) Usable(now time.Time) bool {
	return s.IsActive && s.ExpiresAt.After(now)
}

// PasswordResetToken is a single-use, expiring, hashed token bound to a user.
type PasswordResetToken struct {
	ID        int
	UserID    int
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	UsedAt    *time.Time
	IsUsed    bool
}

// AuditEntry is an append-only record of a security-relevant action.
type AuditEntry struct {
	ID           int
	UserID       *int
	Action       string
	ResourceType *string
	ResourceID   *int
	IPAddress    *string
	UserAgent    *string
	Details      *string
	CreatedAt    time.Time
}

// Identity is the authenticated principal attached to a request after a
// bearer token or session key has been validated.
type Identity struct {
	UserID   int
	Username string
	Role     string
}
