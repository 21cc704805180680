package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/ccsd/internal/daemon"
	"github.com/nerrad567/ccsd/internal/history"
	"github.com/nerrad567/ccsd/internal/infrastructure/config"
	"github.com/nerrad567/ccsd/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Reloader reloads cluster.conf from its configured path.
type Reloader interface {
	Reload(ctx context.Context) (*daemon.LoadResult, error)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Metrics  config.MetricsConfig
	Logger   *logging.Logger
	NodeName string
	State    *daemon.State

	// History is optional; the history endpoints return 503 without it.
	History history.Repository

	// Reloader is optional; POST /reload returns 503 without it.
	Reloader Reloader

	// LogSystem, when set, adds the active facility and priority to /status.
	LogSystem *logging.System

	// MetricsHandler is mounted at Metrics.Path when Metrics.Enabled is set.
	MetricsHandler http.Handler

	Version string
}

// Server is the HTTP status API server.
//
// It is created with New, started with Start and stopped with Close.
type Server struct {
	cfg            config.APIConfig
	metricsCfg     config.MetricsConfig
	logger         *logging.Logger
	nodeName       string
	state          *daemon.State
	history        history.Repository
	reloader       Reloader
	logSystem      *logging.System
	metricsHandler http.Handler
	version        string

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a Server. Logger and State are required.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.State == nil {
		return nil, fmt.Errorf("daemon state is required")
	}

	s := &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		nodeName:  deps.NodeName,
		state:     deps.State,
		history:   deps.History,
		reloader:  deps.Reloader,
		logSystem: deps.LogSystem,
		version:   deps.Version,
	}
	if deps.Metrics.Enabled && deps.MetricsHandler != nil {
		s.metricsCfg = deps.Metrics
		s.metricsHandler = deps.MetricsHandler
	}
	return s, nil
}

// Start binds the listen address and serves in a background goroutine.
// A bind failure (port in use, etc.) is returned immediately.
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return fmt.Errorf("api server already started")
	}

	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Address(), err)
	}

	srv := &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}
	s.server = srv
	s.listener = ln

	go func() {
		if serveErr := srv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", serveErr)
		}
	}()

	s.logger.Info("API server listening", "address", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close gracefully shuts down the API server, waiting up to 10 seconds for
// in-flight requests.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.Addr() == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
