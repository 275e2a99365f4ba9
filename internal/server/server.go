// Package server exposes the merge engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/devco/docmerge"
)

// Service is the subset of *docmerge.Merger the handlers need.
type Service interface {
	Merge(ctx context.Context, templateID string, vars docmerge.Variables) ([]byte, error)
	ListTemplates(ctx context.Context) ([]docmerge.Template, error)
	SweepOrphans(ctx context.Context) (int, error)
	Stats() docmerge.Stats
}

// Compile-time interface implementation check.
var _ Service = (*docmerge.Merger)(nil)

// Defaults.
const (
	DefaultTimeout         = 2 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxBodyBytes    = 10 << 20
)

// Server is the HTTP API.
type Server struct {
	echo            *echo.Echo
	svc             Service
	log             zerolog.Logger
	timeout         time.Duration
	shutdownTimeout time.Duration
	maxBodyBytes    int64
	version         string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithTimeout bounds each store operation started by a request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithShutdownTimeout bounds the graceful drain in Run.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithMaxBodyBytes limits request bodies; signatures arrive inline.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// New builds the API around svc.
func New(svc Service, opts ...Option) *Server {
	s := &Server{
		svc:             svc,
		log:             zerolog.Nop(),
		timeout:         DefaultTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
		maxBodyBytes:    DefaultMaxBodyBytes,
		version:         "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleHTTPError

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := s.log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = s.log.Error().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			s.log.Error().Err(err).Str("request_id", requestID(c)).Bytes("stack", stack).Msg("panic recovered")
			return err
		},
	}))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dB", s.maxBodyBytes)))

	api := e.Group("/api")
	api.POST("/generate-pdf", s.generatePDF)
	api.GET("/templates", s.listTemplates)
	api.POST("/maintenance/sweep", s.sweep)
	api.GET("/health", s.health)
	api.GET("/stats", s.stats)

	s.echo = e
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Serve accepts connections on l until ctx is canceled, then drains
// in-flight requests for up to the shutdown timeout.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.echo.Listener = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.echo.Start("") }()
	s.log.Info().Str("addr", l.Addr().String()).Msg("listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info().Msg("server stopped")
	return nil
}

// Run listens on addr and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, l)
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
