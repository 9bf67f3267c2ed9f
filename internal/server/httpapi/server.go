// Package httpapi exposes the task keeper services over a JSON REST surface.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

// Users is the authentication surface used by the handlers.
type Users interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, in services.LoginInput) (*services.AuthResult, error)
	Authorize(ctx context.Context, token string) (*models.User, *auth.Claims, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

// Tasks is the task surface used by the handlers.
type Tasks interface {
	Create(ctx context.Context, userID string, in services.TaskInput) (*models.Task, error)
	List(ctx context.Context, userID string) ([]*models.Task, error)
	Get(ctx context.Context, userID, taskID string) (*models.Task, error)
	Update(ctx context.Context, userID, taskID string, in services.TaskInput) (*models.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
	CompletedCount(ctx context.Context) ([]*models.CompletedCount, error)
}

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	address   string
	logger    logging.Logger
	users     Users
	tasks     Tasks
	health    Pinger
	report    services.ReportPolicy
	maxUpload int64
	metrics   *metrics
	handler   http.Handler
}

func NewServer(cfg *config.Config, l logging.Logger, us Users, ts Tasks, health Pinger) (*Server, error) {
	if us == nil || ts == nil {
		return nil, errors.New("httpapi: user and task services are required")
	}
	s := &Server{
		address:   cfg.EndpointAddrHTTP,
		logger:    l.With("module", "http_server"),
		users:     us,
		tasks:     ts,
		health:    health,
		report:    services.NewReportPolicy(cfg.ReportRoles),
		maxUpload: cfg.MaxUploadBytes,
		metrics:   newMetrics(),
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
