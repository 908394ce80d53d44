package service

import (
	"context"
	"time"

	"github.com/andressep95/auth-portal/internal/domain"
)

// PasswordHasher hashes and compares secrets.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(encodedHash, password string) (bool, error)
}

// StructValidator checks a request struct against its validation tags.
type StructValidator interface {
	Validate(i interface{}) error
}

// TokenIssuer mints a signed bearer token for a user.
type TokenIssuer interface {
	Issue(user *domain.User) (*domain.TokenPair, *domain.Claims, error)
}

// TokenRevoker marks a token subject as no longer valid until it expires.
type TokenRevoker interface {
	Revoke(ctx context.Context, subject string, expiresAt time.Time) error
}
