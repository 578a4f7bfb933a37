package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/faqbot/internal/infra/config"
	"github.com/yanqian/faqbot/internal/infra/schedule"
)

// Closer releases a resource on shutdown.
type Closer func() error

// Resources collects the handles the app must release, in release order.
type Resources struct {
	closers []namedCloser
}

type namedCloser struct {
	name string
	fn   Closer
}

// Add registers a closer. Closers run in reverse registration order.
func (r *Resources) Add(name string, fn Closer) {
	if r == nil || fn == nil {
		return
	}
	r.closers = append(r.closers, namedCloser{name: name, fn: fn})
}

// App encapsulates the HTTP server lifecycle.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	reloader  *schedule.CatalogReloader
	resources *Resources
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, reloader *schedule.CatalogReloader, resources *Resources) *App {
	return &App{
		cfg:       cfg,
		logger:    logger.With("component", "bootstrap"),
		server:    server,
		reloader:  reloader,
		resources: resources,
	}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	if a.reloader != nil {
		a.reloader.Start()
	}

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		runErr = a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	}

	if a.reloader != nil {
		a.reloader.Stop()
	}
	a.release()
	return runErr
}

func (a *App) release() {
	if a.resources == nil {
		return
	}
	for i := len(a.resources.closers) - 1; i >= 0; i-- {
		c := a.resources.closers[i]
		if err := c.fn(); err != nil {
			a.logger.Warn("resource close failed", "resource", c.name, "error", err)
			continue
		}
		a.logger.Debug("resource closed", "resource", c.name)
	}
}
