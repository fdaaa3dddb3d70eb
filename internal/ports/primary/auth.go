package primary

import (
	"context"
	"time"

	"github.com/example/routecard/internal/models"
)

// AuthService defines the primary port for authentication and sessions.
type AuthService interface {
	// EnsureDefaultUser creates the default account when no user exists.
	EnsureDefaultUser(ctx context.Context) error

	// Login checks a password and opens a session.
	Login(ctx context.Context, password string) (*Session, error)

	// Logout closes a session.
	Logout(ctx context.Context, token string) error

	// Resolve returns the session for a token.
	Resolve(ctx context.Context, token string) (*Session, error)
}

// Session is an authenticated login.
type Session struct {
	Token     string
	User      *models.User
	CreatedAt time.Time
}
