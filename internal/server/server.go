// Package server wires storage, token service and HTTP handlers together
// and runs the gophtodo HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/iudanet/gophtodo/internal/crypto"
	"github.com/iudanet/gophtodo/internal/server/config"
	"github.com/iudanet/gophtodo/internal/server/storage"
	"github.com/iudanet/gophtodo/internal/server/storage/boltdb"
	"github.com/iudanet/gophtodo/internal/server/storage/postgres"
	"github.com/iudanet/gophtodo/internal/server/storage/sqlite"
	"github.com/iudanet/gophtodo/internal/server/token"
)

// App собранный сервер: хранилище + HTTP
type App struct {
	logger     *slog.Logger
	store      storage.Storage
	httpServer *http.Server
	cfg        *config.Config
}

// OpenStorage открывает хранилище выбранного драйвера
func OpenStorage(ctx context.Context, cfg config.Storage) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.New(ctx, cfg.DSN)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DSN)
	case config.DriverBolt:
		return boltdb.New(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
}

// NewApp открывает хранилище и собирает HTTP сервер по конфигурации
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (*App, error) {
	store, err := OpenStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	app, err := newApp(cfg, logger, store, version)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return app, nil
}

func newApp(cfg *config.Config, logger *slog.Logger, store storage.Storage, version string) (*App, error) {
	hasher, err := crypto.NewPasswordHasher(cfg.Auth.PasswordHasher, crypto.WithBcryptCost(cfg.Auth.BcryptCost))
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}

	tokens := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if tokens.UsesDevSecret() {
		logger.Warn("jwt secret is not set, using development secret",
			slog.String("environment", cfg.Environment))
	}

	router := NewRouter(RouterOptions{
		Logger:               logger,
		Store:                store,
		Hasher:               hasher,
		Tokens:               tokens,
		Version:              version,
		AllowedOrigins:       cfg.CORS.AllowedOrigins,
		ExposeInternalErrors: cfg.ExposeInternal(),
	})

	return &App{
		logger: logger,
		store:  store,
		cfg:    cfg,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
	}, nil
}

// Handler возвращает HTTP обработчик приложения
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run слушает адрес из конфигурации до отмены ctx
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr)
	if err != nil {
		_ = a.store.Close()
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve обслуживает соединения ln до отмены ctx, затем останавливает
// сервер с таймаутом и закрывает хранилище
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("server started",
			slog.String("addr", ln.Addr().String()),
			slog.String("storage", a.cfg.Storage.Driver),
			slog.String("environment", a.cfg.Environment),
		)
		serveErr <- a.httpServer.Serve(ln)
	}()

	var runErr error
	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		a.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			runErr = fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	if err := a.store.Close(); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to close storage: %w", err))
	}

	a.logger.Info("server stopped")
	return runErr
}
