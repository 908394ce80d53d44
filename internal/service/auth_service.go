package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/andressep95/auth-portal/internal/domain"
	"github.com/andressep95/auth-portal/internal/repository"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgLoginFailed        = "An error occurred during login"
	msgLogoutFailed       = "An error occurred during logout"
)

type AuthService struct {
	userRepo  repository.UserRepository
	hasher    PasswordHasher
	validator StructValidator
	issuer    TokenIssuer
	revoker   TokenRevoker
	logger    *zap.Logger
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User   domain.PublicUser `json:"user"`
	Token  *domain.TokenPair `json:"token"`
	Claims *domain.Claims    `json:"-"`
}

// NewAuthService wires the sign-in flow. revoker may be nil, in which case
// logout only clears the client cookie.
func NewAuthService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	validator StructValidator,
	issuer TokenIssuer,
	revoker TokenRevoker,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		hasher:    hasher,
		validator: validator,
		issuer:    issuer,
		revoker:   revoker,
		logger:    logger.Named("auth_service"),
	}
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := s.validator.Validate(req); err != nil {
		if domain.KindOf(err) == domain.KindValidation {
			return nil, err
		}
		return nil, domain.NewUnexpectedError(msgLoginFailed, err)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewUnauthorizedError(msgInvalidCredentials)
		}
		return nil, domain.NewUnexpectedError(msgLoginFailed, err)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, req.Password)
	if err != nil {
		// Unparseable stored hashes are reported as a mismatch to the client.
		s.logger.Warn("password comparison failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, domain.NewUnauthorizedError(msgInvalidCredentials)
	}
	if !ok {
		return nil, domain.NewUnauthorizedError(msgInvalidCredentials)
	}

	pair, claims, err := s.issuer.Issue(user)
	if err != nil {
		return nil, domain.NewUnexpectedError(msgLoginFailed, err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("session", claims.Subject),
	)

	return &LoginResponse{
		User:   user.Public(),
		Token:  pair,
		Claims: claims,
	}, nil
}

// Logout revokes the token subject for the rest of its lifetime. A nil claims
// value means no valid token was attached and nothing is revoked.
func (s *AuthService) Logout(ctx context.Context, claims *domain.Claims) error {
	if claims == nil || claims.Subject == "" || s.revoker == nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}

	if err := s.revoker.Revoke(ctx, claims.Subject, claims.ExpiresAt.Time); err != nil {
		return domain.NewUnexpectedError(msgLogoutFailed, err)
	}

	s.logger.Info("token revoked", zap.String("session", claims.Subject))
	return nil
}
