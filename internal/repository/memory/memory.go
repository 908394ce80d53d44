// Package memory provides mutex-guarded in-process repositories with the same
// key semantics as the PostgreSQL adapters.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/andressep95/auth-portal/internal/domain"
	"github.com/andressep95/auth-portal/internal/repository"
)

// Store holds users and sessions. Sessions of a user are not cascaded when
// users disappear because users are never deleted here.
type Store struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]domain.User
	sessions map[string]domain.Session
}

func NewStore() *Store {
	return &Store{
		users:    make(map[uuid.UUID]domain.User),
		sessions: make(map[string]domain.Session),
	}
}

// Users returns the store as a repository.UserRepository.
func (s *Store) Users() repository.UserRepository {
	return userRepository{s}
}

// Sessions returns the store as a repository.SessionRepository.
func (s *Store) Sessions() repository.SessionRepository {
	return sessionRepository{s}
}

// SessionCount returns the number of stored session rows.
func (s *Store) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

type userRepository struct{ s *Store }

func (r userRepository) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	usernameTaken := false
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
		if u.Username == user.Username {
			usernameTaken = true
		}
	}
	if usernameTaken {
		return repository.ErrDuplicateUsername
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepository) FindByEmailOrUsername(_ context.Context, email, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var byUsername *domain.User
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
		if u.Username == username && byUsername == nil {
			found := u
			byUsername = &found
		}
	}
	if byUsername != nil {
		return byUsername, nil
	}
	return nil, repository.ErrNotFound
}

type sessionRepository struct{ s *Store }

func (r sessionRepository) Upsert(_ context.Context, session *domain.Session) (*domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.sessions[session.SessionToken]
	if ok {
		stored.AccessToken = session.AccessToken
		stored.Expires = session.Expires
	} else {
		stored = *session
	}
	r.s.sessions[session.SessionToken] = stored
	return &stored, nil
}

func (r sessionRepository) GetByToken(_ context.Context, sessionToken string) (*domain.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sess, ok := r.s.sessions[sessionToken]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sess, nil
}

func (r sessionRepository) DeleteByToken(_ context.Context, sessionToken string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, ok := r.s.sessions[sessionToken]
	delete(r.s.sessions, sessionToken)
	return ok, nil
}

func (r sessionRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for token, sess := range r.s.sessions {
		if sess.IsExpired(now) {
			delete(r.s.sessions, token)
			n++
		}
	}
	return n, nil
}
