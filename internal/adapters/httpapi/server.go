// Package httpapi exposes the card services over HTTP.
//
// Routes:
//
//	POST /api/login
//	POST /api/logout
//	GET  /api/session
//	GET  /api/data
//	POST /api/data
//	GET  /api/cards
//	GET  /api/cards/{id}
//	POST /api/cards/{id}/operations/{opId}/counts
//	POST /api/cards/{id}/operations/{opId}/{action}
//	GET  /api/cards/{id}/log
//	GET  /api/cards/{id}/files
//	POST /api/cards/{id}/files
//	GET  /files/{id}
//	GET  /healthz
//	GET  /metrics
package httpapi

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/example/routecard/internal/ports/primary"
)

// DefaultMaxBodyBytes limits request bodies.
const DefaultMaxBodyBytes = 20 << 20

// SessionCookie is the name of the session cookie.
const SessionCookie = "session"

// Config holds the server's collaborators and limits.
type Config struct {
	Cards  primary.CardService
	Data   primary.DataService
	Auth   primary.AuthService
	Logger *zap.Logger
	// Gatherer serves /metrics; nil disables the endpoint.
	Gatherer     prometheus.Gatherer
	MaxBodyBytes int64
}

// Server routes HTTP requests to the services.
type Server struct {
	cards        primary.CardService
	data         primary.DataService
	auth         primary.AuthService
	logger       *zap.Logger
	gatherer     prometheus.Gatherer
	maxBodyBytes int64
}

// NewServer creates a Server.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{
		cards:        cfg.Cards,
		data:         cfg.Data,
		auth:         cfg.Auth,
		logger:       cfg.Logger,
		gatherer:     cfg.Gatherer,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

// Handler returns the routed handler with request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/session", s.requireSession(s.handleSession))

	mux.HandleFunc("GET /api/data", s.requireSession(s.handleGetData))
	mux.HandleFunc("POST /api/data", s.requireSession(s.handlePostData))

	mux.HandleFunc("GET /api/cards", s.requireSession(s.handleListCards))
	mux.HandleFunc("GET /api/cards/{id}", s.requireSession(s.handleGetCard))
	mux.HandleFunc("POST /api/cards/{id}/operations/{opId}/counts", s.requireSession(s.handleCounts))
	mux.HandleFunc("POST /api/cards/{id}/operations/{opId}/{action}", s.requireSession(s.handleAction))
	mux.HandleFunc("GET /api/cards/{id}/log", s.requireSession(s.handleLog))
	mux.HandleFunc("GET /api/cards/{id}/files", s.requireSession(s.handleListFiles))
	mux.HandleFunc("POST /api/cards/{id}/files", s.requireSession(s.handleUpload))
	mux.HandleFunc("GET /files/{id}", s.requireSession(s.handleDownload))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return s.logRequests(mux)
}

// NewHTTPServer wraps the handler in an http.Server with timeouts.
func (s *Server) NewHTTPServer(addr string, readTimeout, writeTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
	}
}
