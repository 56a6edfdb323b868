// Package web exposes the file service over HTTP using echo.
//
// Routes:
//
//	POST /upload        multipart upload, field "file"
//	GET  /file/:key     stored bytes with reconstructed headers (HEAD too)
//	GET  /info/:key     metadata record as JSON
//	GET  /health        liveness probe
//	GET  /metrics       Prometheus metrics (optional)
//	GET  /*             static UI (optional)
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/filedrop/internal/logging"
	"github.com/dmitrijs2005/filedrop/internal/server/config"
	"github.com/dmitrijs2005/filedrop/internal/server/files"
	"github.com/dmitrijs2005/filedrop/internal/server/metadata"
)

// FileService is what the handlers need from the files package.
type FileService interface {
	Ingest(ctx context.Context, up files.Upload) (metadata.Record, error)
	Open(ctx context.Context, key string) (*files.Download, error)
	Info(ctx context.Context, key string) (metadata.Record, error)
	MaxUploadSize() int64
}

type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  logging.Logger
	metrics *Metrics

	listening chan struct{}
	boundAddr net.Addr
}

type Option func(*Server)

// WithMetrics replaces the metrics set built by NewServer.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

func NewServer(cfg *config.Config, svc FileService, l logging.Logger, opts ...Option) (*Server, error) {
	s := &Server{
		config:    cfg,
		logger:    l.With("module", "http_server"),
		listening: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(s.logger))
	if cfg.MetricsEnabled {
		e.Use(s.metrics.Middleware)
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.CORSAllowOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
		ExposeHeaders: []string{echo.HeaderContentDisposition, echo.HeaderXRequestID},
	}))
	if cfg.Compress {
		mw, err := compress(isBlobRoute)
		if err != nil {
			return nil, err
		}
		e.Use(mw)
	}

	h := &handler{svc: svc, logger: s.logger, metrics: s.metrics, now: time.Now}

	var uploadMW []echo.MiddlewareFunc
	if cfg.UploadRateLimit > 0 {
		uploadMW = append(uploadMW, uploadRateLimiter(cfg.UploadRateLimit, cfg.UploadRateBurst))
	}

	e.POST("/upload", h.upload, uploadMW...)
	e.GET("/file/:key", h.file)
	e.HEAD("/file/:key", h.file)
	e.GET("/info/:key", h.info)
	e.GET("/health", h.health)
	if cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}
	if cfg.StaticDir != "" {
		e.Static("/", cfg.StaticDir)
	}

	s.echo = e
	return s, nil
}

// Handler returns the HTTP handler, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.listening
}

// Addr returns the bound listener address after Ready is closed.
func (s *Server) Addr() string {
	if s.boundAddr == nil {
		return ""
	}
	return s.boundAddr.String()
}

// Run serves until ctx is done, then shuts down gracefully within
// config.ShutdownTimeout, letting in-flight transfers finish.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.boundAddr = ln.Addr()
	close(s.listening)

	srv := &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.Addr())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func uploadRateLimiter(perSecond float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many uploads")
		},
	})
}
