package blacklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andressep95/auth-portal/internal/domain"
)

// ErrRevoked is returned by CheckedVerifier for tokens whose subject was revoked.
var ErrRevoked = errors.New("token has been revoked")

const keyPrefix = "blacklist:sub:"

// commander is the subset of *redis.Client the blacklist needs.
type commander interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// TokenBlacklist manages revoked token subjects in Redis
type TokenBlacklist struct {
	redis commander
}

// NewTokenBlacklist creates a new token blacklist service
func NewTokenBlacklist(redisClient *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{
		redis: redisClient,
	}
}

func newTokenBlacklist(c commander) *TokenBlacklist {
	return &TokenBlacklist{redis: c}
}

// Revoke blacklists subject until expiresAt, after which the token it belongs
// to is rejected on signature expiry anyway.
func (b *TokenBlacklist) Revoke(ctx context.Context, subject string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := b.redis.Set(ctx, keyPrefix+subject, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}

	return nil
}

// IsRevoked checks if a subject is in the blacklist
func (b *TokenBlacklist) IsRevoked(ctx context.Context, subject string) (bool, error) {
	exists, err := b.redis.Exists(ctx, keyPrefix+subject).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}

	return exists > 0, nil
}

// Verifier validates a raw bearer token.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*domain.Claims, error)
}

// RevocationChecker reports whether a token subject was revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, subject string) (bool, error)
}

// CheckedVerifier rejects otherwise valid tokens whose subject was revoked.
type CheckedVerifier struct {
	next    Verifier
	revoked RevocationChecker
}

func NewCheckedVerifier(next Verifier, revoked RevocationChecker) *CheckedVerifier {
	return &CheckedVerifier{next: next, revoked: revoked}
}

func (v *CheckedVerifier) Verify(ctx context.Context, raw string) (*domain.Claims, error) {
	claims, err := v.next.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}

	revoked, err := v.revoked.IsRevoked(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevoked
	}

	return claims, nil
}
