package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andressep95/auth-portal/internal/domain"
	"github.com/andressep95/auth-portal/internal/repository"
	"github.com/andressep95/auth-portal/pkg/hash"
)

const (
	msgEmailTaken    = "Email already registered"
	msgUsernameTaken = "Username already taken"
	msgSignupFailed  = "An error occurred during registration"
	msgUserNotFound  = "User not found"
	msgFetchFailed   = "Internal Server Error"
)

type UserService struct {
	userRepo  repository.UserRepository
	hasher    PasswordHasher
	validator StructValidator
	logger    *zap.Logger
	now       func() time.Time
}

type SignupRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"min=3,max=20,username"`
	Name            string `json:"name" validate:"min=2,max=50"`
	Password        string `json:"password" validate:"min=6,max=72,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

// Normalize trims the identity fields and lowercases the email. Passwords are
// taken as given.
func (r SignupRequest) Normalize() SignupRequest {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Username = strings.TrimSpace(r.Username)
	r.Name = strings.TrimSpace(r.Name)
	return r
}

func NewUserService(userRepo repository.UserRepository, hasher PasswordHasher, validator StructValidator, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo:  userRepo,
		hasher:    hasher,
		validator: validator,
		logger:    logger.Named("user_service"),
		now:       time.Now,
	}
}

// Signup registers a new account and returns its public projection.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (*domain.PublicUser, error) {
	req = req.Normalize()

	if err := s.validator.Validate(req); err != nil {
		if domain.KindOf(err) == domain.KindValidation {
			return nil, err
		}
		return nil, domain.NewUnexpectedError(msgSignupFailed, err)
	}

	existing, err := s.userRepo.FindByEmailOrUsername(ctx, req.Email, req.Username)
	switch {
	case err == nil:
		if existing.Email == req.Email {
			return nil, domain.NewConflictError(msgEmailTaken)
		}
		return nil, domain.NewConflictError(msgUsernameTaken)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, domain.NewUnexpectedError(msgSignupFailed, err)
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, hash.ErrPasswordTooLong) {
			return nil, domain.NewValidationError([]domain.FieldError{
				{Field: "password", Message: "Password must be at most 72 bytes"},
			})
		}
		return nil, domain.NewUnexpectedError(msgSignupFailed, err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// A concurrent signup may win the race after the lookup above; the
	// store's unique constraints decide.
	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, domain.NewConflictError(msgEmailTaken)
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, domain.NewConflictError(msgUsernameTaken)
		default:
			return nil, domain.NewUnexpectedError(msgSignupFailed, err)
		}
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))

	public := user.Public()
	return &public, nil
}

// GetForRequester returns the user identified by rawID when it is the
// requester's own account.
func (s *UserService) GetForRequester(ctx context.Context, claims *domain.Claims, rawID string) (*domain.PublicUser, error) {
	if claims == nil {
		return nil, domain.NewUnauthorizedError("Authentication required")
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, domain.NewValidationError([]domain.FieldError{
			{Field: "id", Message: "id must be a valid UUID"},
		})
	}

	if claims.UserID != id.String() {
		return nil, domain.NewForbiddenError("Forbidden")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError(msgUserNotFound)
		}
		return nil, domain.NewUnexpectedError(msgFetchFailed, err)
	}

	public := user.Public()
	return &public, nil
}
