// Package remote contains a collection store backed by another routecard
// server's HTTP API. The server merges every save into its own collection,
// so history fields written elsewhere survive.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/example/routecard/internal/models"
	"github.com/example/routecard/internal/ports/secondary"
)

// CollectionStore implements secondary.CollectionStore over HTTP.
type CollectionStore struct {
	client   *resty.Client
	password string
	logger   *zap.Logger

	mu       sync.Mutex
	loggedIn bool
}

type errorBody struct {
	Error string `json:"error"`
}

// NewCollectionStore creates a store talking to the server at baseURL.
// The session cookie is kept in the client's cookie jar.
func NewCollectionStore(baseURL, password string, logger *zap.Logger) *CollectionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json").
		SetError(&errorBody{})
	return &CollectionStore{client: client, password: password, logger: logger}
}

// Load fetches the server's collection.
func (s *CollectionStore) Load(ctx context.Context) (*models.Collection, error) {
	col := &models.Collection{}
	err := s.do(ctx, func() (*resty.Response, error) {
		return s.client.R().SetContext(ctx).SetResult(col).Get("/api/data")
	})
	if err != nil {
		return nil, err
	}
	return col, nil
}

// Save posts the collection to the server.
func (s *CollectionStore) Save(ctx context.Context, col *models.Collection) error {
	return s.do(ctx, func() (*resty.Response, error) {
		return s.client.R().SetContext(ctx).SetBody(col).Post("/api/data")
	})
}

// do runs call, logging in first when needed and once more after a 401.
func (s *CollectionStore) do(ctx context.Context, call func() (*resty.Response, error)) error {
	if err := s.ensureLogin(ctx, false); err != nil {
		return err
	}
	resp, err := call()
	if err != nil {
		return fmt.Errorf("%w: %v", secondary.ErrStoreUnavailable, err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		s.logger.Info("remote session expired; logging in again")
		if err := s.ensureLogin(ctx, true); err != nil {
			return err
		}
		if resp, err = call(); err != nil {
			return fmt.Errorf("%w: %v", secondary.ErrStoreUnavailable, err)
		}
	}
	return checkResponse(resp)
}

func (s *CollectionStore) ensureLogin(ctx context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loggedIn && !force {
		return nil
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"password": s.password}).
		Post("/api/login")
	if err != nil {
		return fmt.Errorf("%w: login: %v", secondary.ErrStoreUnavailable, err)
	}
	if err := checkResponse(resp); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	s.loggedIn = true
	return nil
}

func checkResponse(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	msg := resp.Status()
	if body, ok := resp.Error().(*errorBody); ok && body.Error != "" {
		msg = body.Error
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return fmt.Errorf("%w: server returned %d: %s", secondary.ErrStoreUnavailable, resp.StatusCode(), msg)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode(), msg)
}

// Ensure CollectionStore implements the interface
var _ secondary.CollectionStore = (*CollectionStore)(nil)
