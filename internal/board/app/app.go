package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/uplist/uplist/internal/board/http"
	"github.com/uplist/uplist/internal/board/service"
	"github.com/uplist/uplist/internal/board/store"
	"github.com/uplist/uplist/internal/board/store/drivers/sqlite"
	"github.com/uplist/uplist/pkg/csrfx"
	"github.com/uplist/uplist/pkg/httpx"
	"github.com/uplist/uplist/pkg/slogx"
	"github.com/uplist/uplist/pkg/tokenx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the board service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db          store.Store
	tokens      *tokenx.Service
	csrf        *csrfx.Guard
	lockout     *httpx.LockoutLimiter
	revocations *tokenx.RevocationList

	// Services
	authService         *service.AuthService
	featureService      *service.FeatureService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if cfg.TokenSecret == "" {
		return nil, errors.New("app: UPLIST_TOKEN_SECRET is required")
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "uplist",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initSecurity()
	app.initServices()

	if err := app.bootstrap(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("uplist starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down uplist...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("uplist stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initSecurity builds the shared security state: token signer, revocation
// list, CSRF guard, and the login lockout limiter for this environment.
func (app *Application) initSecurity() {
	app.revocations = tokenx.NewRevocationList()
	app.tokens = &tokenx.Service{
		Secret:      []byte(app.cfg.TokenSecret),
		Issuer:      app.cfg.Issuer,
		Audience:    app.cfg.Audience,
		Revocations: app.revocations,
	}
	app.csrf = csrfx.NewGuard([]byte(app.cfg.TokenSecret))
	app.lockout = httpx.NewLockoutLimiter(httpx.LockoutProfile(app.cfg.Env))
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:  app.db,
		Tokens: app.tokens,
	}
	app.featureService = &service.FeatureService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.revocations,
		app.lockout,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// bootstrap creates the first admin account when configured and the store is
// empty.
func (app *Application) bootstrap() error {
	if app.cfg.BootstrapEmail == "" || app.cfg.BootstrapPassword == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.authService.Bootstrap(ctx, app.cfg.BootstrapEmail, app.cfg.BootstrapName, app.cfg.BootstrapPassword); err != nil {
		return fmt.Errorf("bootstrap admin failed: %w", err)
	}
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	cookies := httpapi.CookieConfig{
		Secure: app.cfg.Env != "dev",
	}
	if app.cfg.Env == "prod" {
		cookies.Domain = app.cfg.CookieDomain
	}

	router := httpapi.NewRouter(
		app.tokens,
		app.csrf,
		app.lockout,
		cookies,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.FeatureService = app.featureService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
