package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andressep95/auth-portal/internal/domain"
	"github.com/andressep95/auth-portal/internal/repository"
)

const msgSessionFailed = "Internal Server Error"

// SessionService records which issued tokens are in use. Rows are keyed by
// the token subject; a repeated start for the same subject refreshes the
// expiry instead of adding a row.
type SessionService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	ttl         time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewSessionService falls back to domain.SessionTTL when ttl is not positive.
func NewSessionService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, ttl time.Duration, logger *zap.Logger) *SessionService {
	if ttl <= 0 {
		ttl = domain.SessionTTL
	}
	return &SessionService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		ttl:         ttl,
		logger:      logger.Named("session_service"),
		now:         time.Now,
	}
}

// Start creates or refreshes the session row for the token subject.
func (s *SessionService) Start(ctx context.Context, claims *domain.Claims) (*domain.Session, error) {
	subject, userID, err := sessionClaims(claims)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewNotFoundError(msgUserNotFound)
		}
		return nil, domain.NewUnexpectedError(msgSessionFailed, err)
	}

	session, err := s.sessionRepo.Upsert(ctx, &domain.Session{
		SessionToken: subject,
		UserID:       userID,
		AccessToken:  subject,
		Expires:      s.now().UTC().Add(s.ttl),
	})
	if err != nil {
		return nil, domain.NewUnexpectedError(msgSessionFailed, err)
	}

	return session, nil
}

// End deletes the session row for the token subject. Ending a session that
// does not exist succeeds.
func (s *SessionService) End(ctx context.Context, claims *domain.Claims) error {
	subject, _, err := sessionClaims(claims)
	if err != nil {
		return err
	}

	deleted, err := s.sessionRepo.DeleteByToken(ctx, subject)
	if err != nil {
		return domain.NewUnexpectedError(msgSessionFailed, err)
	}
	if !deleted {
		s.logger.Debug("no session to end", zap.String("session", subject))
	}

	return nil
}

// PurgeExpired removes every session whose expiry has passed.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessionRepo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	s.logger.Info("expired sessions purged", zap.Int64("count", n))
	return n, nil
}

// sessionClaims extracts the subject and user id a session is keyed on.
func sessionClaims(claims *domain.Claims) (string, uuid.UUID, error) {
	if claims == nil {
		return "", uuid.Nil, domain.NewAuthTokenError(errors.New("no token attached"))
	}
	if claims.Subject == "" {
		return "", uuid.Nil, domain.NewAuthTokenError(errors.New("missing sub claim"))
	}
	if claims.UserID == "" {
		return "", uuid.Nil, domain.NewAuthTokenError(errors.New("missing id claim"))
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", uuid.Nil, domain.NewAuthTokenError(err)
	}
	return claims.Subject, userID, nil
}
