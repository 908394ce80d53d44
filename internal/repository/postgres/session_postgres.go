package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andressep95/auth-portal/internal/domain"
	"github.com/andressep95/auth-portal/internal/repository"
)

type sessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Upsert inserts a session or refreshes an existing one in a single statement.
// user_id is left untouched on conflict.
func (r *sessionRepository) Upsert(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	query := `
		INSERT INTO sessions (session_token, user_id, access_token, expires)
		VALUES (:session_token, :user_id, :access_token, :expires)
		ON CONFLICT (session_token) DO UPDATE
		SET access_token = EXCLUDED.access_token,
			expires = EXCLUDED.expires
		RETURNING session_token, user_id, access_token, expires`

	rows, err := r.db.NamedQueryContext(ctx, query, session)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert session: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to upsert session: %w", err)
		}
		return nil, fmt.Errorf("failed to upsert session: no row returned")
	}

	var stored domain.Session
	if err := rows.StructScan(&stored); err != nil {
		return nil, fmt.Errorf("failed to scan upserted session: %w", err)
	}

	return &stored, nil
}

// GetByToken retrieves a session by its session token
func (r *sessionRepository) GetByToken(ctx context.Context, sessionToken string) (*domain.Session, error) {
	query := `
		SELECT session_token, user_id, access_token, expires
		FROM sessions
		WHERE session_token = $1`

	var session domain.Session
	if err := r.db.GetContext(ctx, &session, query, sessionToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session by token: %w", err)
	}

	return &session, nil
}

// DeleteByToken removes a session from the database by session token
func (r *sessionRepository) DeleteByToken(ctx context.Context, sessionToken string) (bool, error) {
	query := `DELETE FROM sessions WHERE session_token = $1`

	result, err := r.db.ExecContext(ctx, query, sessionToken)
	if err != nil {
		return false, fmt.Errorf("failed to delete session by token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// DeleteExpired removes all expired sessions from the database
func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE expires <= $1`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}
