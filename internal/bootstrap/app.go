package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/usergate/internal/domain/user"
	"github.com/yanqian/usergate/internal/infra/config"
)

const shutdownTimeout = 10 * time.Second

// App owns the HTTP server and the user store for the lifetime of the process.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	repo   user.Repository
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, repo user.Repository) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, repo: repo}
}

// Run serves HTTP until ctx is cancelled or the listener fails, then drains
// in-flight requests and releases the store.
func (a *App) Run(ctx context.Context) error {
	defer a.closeRepository()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting",
			"address", a.cfg.HTTP.Address,
			"environment", a.cfg.App.Environment,
			"users_backend", a.cfg.Users.Backend,
			"users_public", a.cfg.Users.Public,
		)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) closeRepository() {
	closer, ok := a.repo.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		a.logger.Error("failed to close user repository", "error", err)
	}
}
