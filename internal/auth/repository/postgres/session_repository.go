package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/chris743/db-api/internal/auth/domain"
)

type SessionRepository struct {
	db Querier
}

func NewSessionRepository(db Querier) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO user_sessions (user_id, token_hash, expires_at, created_at,
			ip_address, user_agent, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		session.UserID, session.TokenHash, session.ExpiresAt, session.CreatedAt,
		session.IPAddress, session.UserAgent, session.IsActive,
	).Scan(&session.ID)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *SessionRepository) FindActiveWithUser(ctx context.Context, tokenHash string) (*domain.Session, *domain.User, error) {
	query := `
		SELECT s.id, s.user_id, s.token_hash, s.expires_at, s.created_at,
			s.ip_address, s.user_agent, s.is_active,
			u.id, u.username, u.email, u.password_hash, u.full_name, u.role,
			u.is_active, u.created_at, u.updated_at, u.created_by_user_id,
			u.last_login, u.password_changed_at, u.failed_login_attempts, u.locked_until
		FROM user_sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = $1 AND s.is_active = TRUE
		LIMIT 1`

	var session domain.Session
	var user domain.User

	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&session.ID, &session.UserID, &session.TokenHash, &session.ExpiresAt,
		&session.CreatedAt, &session.IPAddress, &session.UserAgent, &session.IsActive,
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FullName,
		&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
		&user.CreatedByUserID, &user.LastLogin, &user.PasswordChangedAt,
		&user.FailedLoginAttempts, &user.LockedUntil,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to find session: %w", err)
	}

	return &session, &user, nil
}

func (r *SessionRepository) FindActive(ctx context.Context, tokenHash string) (*domain.Session, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at, ip_address, user_agent, is_active
		FROM user_sessions
		WHERE token_hash = $1 AND is_active = TRUE
		LIMIT 1`

	var session domain.Session
	err := r.db.QueryRow(ctx, query, tokenHash).Scan(
		&session.ID, &session.UserID, &session.TokenHash, &session.ExpiresAt,
		&session.CreatedAt, &session.IPAddress, &session.UserAgent, &session.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return &session, nil
}

func (r *SessionRepository) Deactivate(ctx context.Context, id int) error {
	query := `
		UPDATE user_sessions
		SET is_active = FALSE
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate session: %w", err)
	}

	return nil
}

func (r *SessionRepository) DeactivateAllForUser(ctx context.Context, userID int) error {
	query := `
		UPDATE user_sessions
		SET is_active = FALSE
		WHERE user_id = $1 AND is_active = TRUE`

	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate sessions for user: %w", err)
	}

	return nil
}

func (r *SessionRepository) Upsert(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO user_sessions (user_id, token_hash, expires_at, created_at,
			ip_address, user_agent, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (token_hash)
		DO UPDATE SET
			user_id = EXCLUDED.user_id,
			expires_at = EXCLUDED.expires_at,
			is_active = TRUE
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		session.UserID, session.TokenHash, session.ExpiresAt, session.CreatedAt,
		session.IPAddress, session.UserAgent, session.IsActive,
	).Scan(&session.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	return nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID int) ([]domain.Session, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at, ip_address, user_agent, is_active
		FROM user_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var session domain.Session
		err := rows.Scan(
			&session.ID, &session.UserID, &session.TokenHash, &session.ExpiresAt,
			&session.CreatedAt, &session.IPAddress, &session.UserAgent, &session.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}
