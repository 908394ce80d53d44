package jwt

import (
	"context"
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/andressep95/auth-portal/internal/domain"
)

var (
	ErrInvalidSigningMethod = errors.New("unexpected signing method")
	ErrInvalidToken         = errors.New("invalid token")
)

type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiry     time.Duration
	issuer     string
	now        func() time.Time
}

func NewTokenService(privateKeyPEM, publicKeyPEM []byte, expiry time.Duration, issuer string) (*TokenService, error) {
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, err
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, err
	}

	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		expiry:     expiry,
		issuer:     issuer,
		now:        time.Now,
	}, nil
}

// Issue signs a token for user. Every call opens a new session subject.
func (s *TokenService) Issue(user *domain.User) (*domain.TokenPair, *domain.Claims, error) {
	now := s.now()
	exp := now.Add(s.expiry)

	claims := &domain.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		UserID:   user.ID.String(),
		Email:    user.Email,
		Username: user.Username,
		Name:     user.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return nil, nil, err
	}

	return &domain.TokenPair{
		AccessToken: signed,
		ExpiresAt:   exp,
		TokenType:   "Bearer",
	}, claims, nil
}

// ValidateToken checks signature, issuer and expiry and returns the claims.
func (s *TokenService) ValidateToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return s.publicKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Verify satisfies the token verifier port used by the HTTP layer.
func (s *TokenService) Verify(_ context.Context, raw string) (*domain.Claims, error) {
	return s.ValidateToken(raw)
}

// GetPublicKey returns the RSA public key for the JWKS endpoint
func (s *TokenService) GetPublicKey() *rsa.PublicKey {
	return s.publicKey
}
