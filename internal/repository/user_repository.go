package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/andressep95/auth-portal/internal/domain"
)

type UserRepository interface {
	// Create fails with ErrDuplicateEmail or ErrDuplicateUsername on a unique key collision.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByEmailOrUsername returns a user matching either key, preferring the
	// email match when both exist for different users.
	FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error)
}
