package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
)

func newTestAuthService(t *testing.T) (*AuthServiceImpl, *mockCollectionStore) {
	t.Helper()
	store := newMockCollectionStore()
	repo, _ := newTestRepository(t, store)
	svc := NewAuthService(repo, nil, AuthOptions{DefaultUser: "admin", DefaultPassword: "s3cret", Iterations: 1000})
	if err := svc.EnsureDefaultUser(context.Background()); err != nil {
		t.Fatalf("EnsureDefaultUser failed: %v", err)
	}
	return svc, store
}

func TestAuthService_EnsureDefaultUser(t *testing.T) {
	svc, store := newTestAuthService(t)

	if len(store.col.Users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(store.col.Users))
	}
	u := store.col.Users[0]
	if u.Name != "admin" || u.Role != "admin" {
		t.Errorf("unexpected user %+v", u)
	}
	if u.PasswordHash == "" || u.PasswordHash == "s3cret" || len(u.PasswordSalt) != 32 {
		t.Errorf("expected hashed password with a 16-byte hex salt, got %+v", u)
	}

	if err := svc.EnsureDefaultUser(context.Background()); err != nil {
		t.Fatalf("second EnsureDefaultUser failed: %v", err)
	}
	if len(store.col.Users) != 1 {
		t.Errorf("expected no second user, got %d", len(store.col.Users))
	}
}

func TestAuthService_LoginLogout(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "correct password", password: "s3cret"},
		{name: "wrong password", password: "guess", wantErr: primary.ErrInvalidCredentials},
		{name: "empty password", password: "", wantErr: primary.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := svc.Login(ctx, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login failed: %v", err)
			}
			if session.User.Name != "admin" || session.User.PasswordHash != "" {
				t.Errorf("unexpected session user %+v", session.User)
			}

			resolved, err := svc.Resolve(ctx, session.Token)
			if err != nil || resolved.Token != session.Token {
				t.Fatalf("Resolve failed: %v", err)
			}
			if err := svc.Logout(ctx, session.Token); err != nil {
				t.Fatalf("Logout failed: %v", err)
			}
			if _, err := svc.Resolve(ctx, session.Token); !errors.Is(err, primary.ErrSessionNotFound) {
				t.Errorf("expected ErrSessionNotFound after logout, got %v", err)
			}
		})
	}
}

func TestAuthService_RequiresDefaultPassword(t *testing.T) {
	store := newMockCollectionStore()
	repo, _ := newTestRepository(t, store)
	svc := NewAuthService(repo, nil, AuthOptions{})

	if err := svc.EnsureDefaultUser(context.Background()); !errors.Is(err, primary.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	err := repo.View(func(col *models.Collection) error {
		if len(col.Users) != 0 {
			t.Error("expected no user")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
