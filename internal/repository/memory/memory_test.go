package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/andressep95/auth-portal/internal/domain"
	"github.com/andressep95/auth-portal/internal/repository"
)

func TestUsers_CreateRejectsDuplicates(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	users := s.Users()

	if err := users.Create(ctx, &domain.User{ID: uuid.New(), Email: "a@b.com", Username: "abc"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err := users.Create(ctx, &domain.User{ID: uuid.New(), Email: "a@b.com", Username: "other"})
	if !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Errorf("err = %v, want ErrDuplicateEmail", err)
	}
	err = users.Create(ctx, &domain.User{ID: uuid.New(), Email: "c@d.com", Username: "abc"})
	if !errors.Is(err, repository.ErrDuplicateUsername) {
		t.Errorf("err = %v, want ErrDuplicateUsername", err)
	}
}

func TestUsers_FindByEmailOrUsernamePrefersEmail(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	users := s.Users()

	byName := &domain.User{ID: uuid.New(), Email: "x@y.com", Username: "abc"}
	byEmail := &domain.User{ID: uuid.New(), Email: "a@b.com", Username: "zzz"}
	_ = users.Create(ctx, byName)
	_ = users.Create(ctx, byEmail)

	got, err := users.FindByEmailOrUsername(ctx, "a@b.com", "abc")
	if err != nil {
		t.Fatalf("FindByEmailOrUsername() error = %v", err)
	}
	if got.ID != byEmail.ID {
		t.Errorf("got user %s, want the email match %s", got.ID, byEmail.ID)
	}

	got, err = users.FindByEmailOrUsername(ctx, "new@b.com", "abc")
	if err != nil || got.ID != byName.ID {
		t.Errorf("got %v, %v; want the username match", got, err)
	}

	if _, err := users.FindByEmailOrUsername(ctx, "new@b.com", "new"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSessions_UpsertKeepsOneRowPerToken(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	sessions := s.Sessions()
	userID := uuid.New()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := sessions.Upsert(ctx, &domain.Session{
			SessionToken: "sub-1",
			UserID:       userID,
			AccessToken:  "sub-1",
			Expires:      t0.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
	}

	if n := s.SessionCount(); n != 1 {
		t.Fatalf("SessionCount() = %d, want 1", n)
	}
	got, _ := sessions.GetByToken(ctx, "sub-1")
	if !got.Expires.Equal(t0.Add(2 * time.Hour)) {
		t.Errorf("Expires = %v, want the latest value", got.Expires)
	}
}

func TestSessions_UpsertDoesNotReassignUser(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	first := uuid.New()

	_, _ = s.Sessions().Upsert(ctx, &domain.Session{SessionToken: "t", UserID: first})
	got, _ := s.Sessions().Upsert(ctx, &domain.Session{SessionToken: "t", UserID: uuid.New()})

	if got.UserID != first {
		t.Errorf("UserID = %s, want %s", got.UserID, first)
	}
}

func TestSessions_DeleteByToken(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, _ = s.Sessions().Upsert(ctx, &domain.Session{SessionToken: "t"})

	deleted, err := s.Sessions().DeleteByToken(ctx, "t")
	if err != nil || !deleted {
		t.Errorf("DeleteByToken(existing) = %v, %v; want true, nil", deleted, err)
	}
	deleted, err = s.Sessions().DeleteByToken(ctx, "t")
	if err != nil || deleted {
		t.Errorf("DeleteByToken(missing) = %v, %v; want false, nil", deleted, err)
	}
}

func TestSessions_DeleteExpired(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Now()
	_, _ = s.Sessions().Upsert(ctx, &domain.Session{SessionToken: "old", Expires: now.Add(-time.Minute)})
	_, _ = s.Sessions().Upsert(ctx, &domain.Session{SessionToken: "live", Expires: now.Add(time.Hour)})

	n, err := s.Sessions().DeleteExpired(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("DeleteExpired() = %d, %v; want 1, nil", n, err)
	}
	if _, err := s.Sessions().GetByToken(ctx, "live"); err != nil {
		t.Errorf("live session removed: %v", err)
	}
}

func TestSessions_ConcurrentUpserts(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Sessions().Upsert(ctx, &domain.Session{SessionToken: "same", Expires: time.Now()})
		}()
	}
	wg.Wait()

	if n := s.SessionCount(); n != 1 {
		t.Errorf("SessionCount() = %d, want 1", n)
	}
}
