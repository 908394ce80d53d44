package repository

import (
	"context"
	"time"

	"github.com/andressep95/auth-portal/internal/domain"
)

type SessionRepository interface {
	// Upsert inserts the session or, when SessionToken exists, refreshes its
	// AccessToken and Expires. It returns the stored row.
	Upsert(ctx context.Context, session *domain.Session) (*domain.Session, error)
	GetByToken(ctx context.Context, sessionToken string) (*domain.Session, error)
	// DeleteByToken reports whether a row was removed.
	DeleteByToken(ctx context.Context, sessionToken string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
