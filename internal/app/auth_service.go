package app

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/pbkdf2"

	"github.com/example/routecard/internal/core/collection"
	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/primary"
)

// Password hashing parameters.
const (
	DefaultHashIterations = 310000
	hashKeyLen            = 32
	saltLen               = 16
)

// AuthOptions configures the default account and hashing cost.
type AuthOptions struct {
	DefaultUser     string
	DefaultPassword string
	Iterations      int
}

// AuthServiceImpl implements the AuthService interface.
// Users live in the collection; sessions live in memory only.
type AuthServiceImpl struct {
	repo   *CardRepository
	logger *zap.Logger
	opts   AuthOptions
	clock  func() time.Time

	mu       sync.Mutex
	sessions map[string]*primary.Session
}

// NewAuthService creates a new AuthService with injected dependencies.
func NewAuthService(repo *CardRepository, logger *zap.Logger, opts AuthOptions) *AuthServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Iterations <= 0 {
		opts.Iterations = DefaultHashIterations
	}
	if opts.DefaultUser == "" {
		opts.DefaultUser = "admin"
	}
	return &AuthServiceImpl{
		repo:     repo,
		logger:   logger,
		opts:     opts,
		clock:    time.Now,
		sessions: make(map[string]*primary.Session),
	}
}

// EnsureDefaultUser creates the default account when no user exists.
func (s *AuthServiceImpl) EnsureDefaultUser(ctx context.Context) error {
	if s.opts.DefaultPassword == "" {
		return fmt.Errorf("%w: default password is not configured", primary.ErrInvalidArgument)
	}
	created := false
	_, err := s.repo.Update(ctx, func(col *models.Collection, env collection.Env) (bool, error) {
		if len(col.Users) > 0 {
			return false, nil
		}
		hash, salt, err := hashPassword(s.opts.DefaultPassword, s.opts.Iterations)
		if err != nil {
			return false, err
		}
		col.Users = append(col.Users, &models.User{
			ID:           env.NewID("user"),
			Name:         s.opts.DefaultUser,
			Role:         "admin",
			PasswordHash: hash,
			PasswordSalt: salt,
		})
		created = true
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("failed to create default user: %w", err)
	}
	if created {
		s.logger.Info("default user created", zap.String("user", s.opts.DefaultUser))
	}
	return nil
}

// Login checks a password against every account and opens a session for
// the first match.
func (s *AuthServiceImpl) Login(ctx context.Context, password string) (*primary.Session, error) {
	if password == "" {
		return nil, primary.ErrInvalidCredentials
	}
	var user *models.User
	err := s.repo.View(func(col *models.Collection) error {
		for _, u := range col.Users {
			if verifyPassword(password, u.PasswordHash, u.PasswordSalt, s.opts.Iterations) {
				cp := *u
				cp.PasswordHash, cp.PasswordSalt = "", ""
				user = &cp
				return nil
			}
		}
		return primary.ErrInvalidCredentials
	})
	if err != nil {
		s.logger.Info("login rejected")
		return nil, err
	}

	session := &primary.Session{Token: uuid.NewString(), User: user, CreatedAt: s.clock()}
	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()
	s.logger.Info("login", zap.String("user", user.Name))
	return session, nil
}

// Logout closes a session.
func (s *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return primary.ErrSessionNotFound
	}
	delete(s.sessions, token)
	return nil
}

// Resolve returns the session for a token.
func (s *AuthServiceImpl) Resolve(ctx context.Context, token string) (*primary.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok || token == "" {
		return nil, primary.ErrSessionNotFound
	}
	return session, nil
}

func hashPassword(password string, iterations int) (hash, salt string, err error) {
	raw := make([]byte, saltLen)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), raw, iterations, hashKeyLen, sha256.New)
	return hex.EncodeToString(key), hex.EncodeToString(raw), nil
}

func verifyPassword(password, hash, salt string, iterations int) bool {
	want, err := hex.DecodeString(hash)
	if err != nil || len(want) == 0 {
		return false
	}
	rawSalt, err := hex.DecodeString(salt)
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), rawSalt, iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// Ensure AuthServiceImpl implements the interface
var _ primary.AuthService = (*AuthServiceImpl)(nil)
