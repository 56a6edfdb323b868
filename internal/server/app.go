// Package server assembles and runs the filedrop server: it picks the blob
// backend, builds the file service and serves it over HTTP until a signal
// or context cancellation asks for a graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/filedrop/internal/logging"
	"github.com/dmitrijs2005/filedrop/internal/server/blobstore"
	"github.com/dmitrijs2005/filedrop/internal/server/config"
	"github.com/dmitrijs2005/filedrop/internal/server/files"
	"github.com/dmitrijs2005/filedrop/internal/server/keys"
	"github.com/dmitrijs2005/filedrop/internal/server/metadata"
	"github.com/dmitrijs2005/filedrop/internal/server/web"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *web.Server
}

func NewApp(c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	blobs, err := newBlobStore(context.Background(), c)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	meta := metadata.NewMemoryStore()
	svc := files.NewService(keys.NewGenerator(), blobs, meta, logger, files.WithMaxUploadSize(c.MaxUploadSize))

	s, err := web.NewServer(c, svc, logger, web.WithMetrics(web.NewMetrics(meta.Len)))
	if err != nil {
		return nil, fmt.Errorf("http server init error: %w", err)
	}

	return &App{config: c, logger: logger, server: s}, nil
}

func newBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	switch c.StorageBackend {
	case config.BackendS3:
		return blobstore.NewS3Store(ctx, blobstore.S3Config{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			UsePathStyle: c.S3UsePathStyle,
			Prefix:       c.S3Prefix,
		})
	default:
		return blobstore.NewFSStore(c.StorageDir)
	}
}

// Server exposes the HTTP server, e.g. to wait for readiness.
func (app *App) Server() *web.Server {
	return app.server
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or the process receives SIGINT, SIGTERM
// or SIGQUIT.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return runErr
}
