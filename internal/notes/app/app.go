package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/tabnotes/internal/notes/http"
	"github.com/aussiebroadwan/tabnotes/internal/notes/service"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store"
	"github.com/aussiebroadwan/tabnotes/internal/notes/store/drivers/sqlite"
	"github.com/aussiebroadwan/tabnotes/pkg/jwtx"
	"github.com/aussiebroadwan/tabnotes/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the notes service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db   store.Store
	keys *jwtx.Keypair

	signupService       *service.SignupService
	sessionService      *service.SessionService
	noteService         *service.NoteService
	tenantService       *service.TenantService
	inviteService       *service.InviteService
	adminService        *service.AdminService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "notes-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keys, err := jwtx.NewEphemeralKeypair(cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.keys = keys

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("notes service starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully stops the HTTP server, background workers and the
// database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down notes service...")

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

	app.logger.Info("notes service stopped")
	return nil
}

// initDatabase opens the SQLite database and applies migrations.
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

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store:  app.db,
		Signer: app.keys,
		Issuer: app.cfg.Issuer,
		TTL:    app.cfg.SessionTTL,
	}

	plans := service.NewPlanGate(app.cfg.FreeNoteLimit)

	app.signupService = &service.SignupService{Store: app.db}
	app.noteService = &service.NoteService{Store: app.db, Plans: plans}
	app.tenantService = &service.TenantService{Store: app.db, Plans: plans}
	app.inviteService = &service.InviteService{
		Store:    app.db,
		Sessions: app.sessionService,
		TTL:      app.cfg.InviteTTL,
	}
	app.adminService = &service.AdminService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.keys, app.db, app.logger)

	router.FrontendURL = app.cfg.FrontendURL
	router.AdminKey = app.cfg.AdminKey
	router.SignupService = app.signupService
	router.SessionService = app.sessionService
	router.NoteService = app.noteService
	router.TenantService = app.tenantService
	router.InviteService = app.inviteService
	router.AdminService = app.adminService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
