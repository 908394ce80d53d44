package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"

	"github.com/andressep95/auth-portal/internal/repository"
)

func TestNewRepositories_ImplementInterfaces(t *testing.T) {
	var _ repository.UserRepository = NewUserRepository(nil)
	var _ repository.SessionRepository = NewSessionRepository(nil)
}

func TestDuplicateKeyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"email constraint", &pq.Error{Code: uniqueViolation, Constraint: usersEmailKey}, repository.ErrDuplicateEmail},
		{"username constraint", &pq.Error{Code: uniqueViolation, Constraint: usersUsernameKey}, repository.ErrDuplicateUsername},
		{"wrapped", fmt.Errorf("exec: %w", &pq.Error{Code: uniqueViolation, Constraint: usersEmailKey}), repository.ErrDuplicateEmail},
		{"other constraint", &pq.Error{Code: uniqueViolation, Constraint: "sessions_pkey"}, nil},
		{"other code", &pq.Error{Code: "23503", Constraint: usersEmailKey}, nil},
		{"not a pq error", errors.New("boom"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := duplicateKeyError(tt.err)
			if !errors.Is(got, tt.want) && !(got == nil && tt.want == nil) {
				t.Errorf("duplicateKeyError() = %v, want %v", got, tt.want)
			}
		})
	}
}
