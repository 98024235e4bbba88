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

	"github.com/aussiebroadwan/tenancy/internal/orgs/authz"
	httpapi "github.com/aussiebroadwan/tenancy/internal/orgs/http"
	"github.com/aussiebroadwan/tenancy/internal/orgs/metrics"
	"github.com/aussiebroadwan/tenancy/internal/orgs/service"
	"github.com/aussiebroadwan/tenancy/internal/orgs/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the organization service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger
	clock  clockwork.Clock

	// Core dependencies
	db      *sqlite.Store
	keys    *jwtx.KeySet
	sealer  *cryptox.Sealer
	metrics *metrics.Metrics

	// Services
	organizationService *service.OrganizationService
	invitationService   *service.InvitationService
	membershipService   *service.MembershipService
	jwksFetcher         *jwtx.JWKSFetcher
	eventDispatcher     *service.EventDispatcher

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg:    cfg,
		logger: newLogger(cfg),
		clock:  clockwork.NewRealClock(),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSealer(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initMetrics()
	app.initIdentity()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Migrate applies the database migrations and returns.
func Migrate(cfg Config) error {
	app := &Application{cfg: cfg, logger: newLogger(cfg)}
	if err := app.initDatabase(); err != nil {
		return err
	}
	return app.db.Close()
}

func newLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "orgs-service",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Load the identity provider keys before taking traffic. A failure is not
	// fatal; readyz reports it until the background refresh succeeds.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := app.jwksFetcher.Refresh(ctx); err != nil {
		app.logger.Warn("initial JWKS fetch failed", "url", app.cfg.JWKSURL, "error", err)
	}
	cancel()

	app.jwksFetcher.Start()
	app.eventDispatcher.Start()

	app.logger.Info("orgs service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.stopWorkers()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down orgs service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.stopWorkers()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("orgs service stopped")
	return nil
}

func (app *Application) stopWorkers() {
	app.eventDispatcher.Stop()
	app.jwksFetcher.Stop()
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		app.cfg.DatabaseFile,
	)
	db, err := sqlite.NewStore(dsn)
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

// initSealer loads the key that seals invitation tokens at rest.
func (app *Application) initSealer() error {
	sealer, ephemeral, err := cryptox.LoadSealer(app.cfg.TokenKeyPath)
	if err != nil {
		return fmt.Errorf("failed to load invitation token key: %w", err)
	}
	if ephemeral {
		app.logger.Warn("ORGS_TOKEN_KEY_PATH not set, using an ephemeral key; resent and delivered invitation links will not survive a restart")
	}
	app.sealer = sealer
	return nil
}

func (app *Application) initMetrics() {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(reg, app.cfg.MetricsPrefix)
}

// initIdentity wires bearer token verification against the identity
// provider's published keys.
func (app *Application) initIdentity() {
	app.keys = jwtx.NewKeySet()
	app.jwksFetcher = jwtx.NewJWKSFetcher(
		app.cfg.JWKSURL,
		app.keys,
		app.cfg.JWKSRefreshInterval,
		app.logger,
	)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.organizationService = &service.OrganizationService{
		Store:   app.db,
		Clock:   app.clock,
		Metrics: app.metrics,
	}
	app.invitationService = &service.InvitationService{
		Store:    app.db,
		Clock:    app.clock,
		Sealer:   app.sealer,
		Metrics:  app.metrics,
		LinkBase: app.cfg.InviteBaseURL,
	}
	app.membershipService = &service.MembershipService{
		Store:   app.db,
		Clock:   app.clock,
		Metrics: app.metrics,
	}

	app.eventDispatcher = service.NewEventDispatcher(
		app.db,
		app.logger,
		app.cfg.EventWebhookURL,
		app.cfg.DispatchInterval,
	)
	app.eventDispatcher.Metrics = app.metrics
	app.eventDispatcher.Sealer = app.sealer
	app.eventDispatcher.LinkBase = app.cfg.InviteBaseURL
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	gates := &authz.Gates{
		Verifier: authz.JWTVerifier{
			Tokens: jwtx.NewKeySetVerifier(app.keys, jwtx.VerifyOptions{
				Issuer:   app.cfg.Issuer,
				Audience: app.cfg.Audience,
				Leeway:   30 * time.Second,
			}),
		},
		Store:   app.db,
		Clock:   app.clock,
		Metrics: app.metrics,
	}

	router := httpapi.NewRouter(
		gates,
		app.keys,
		BuildVersion,
		app.db,
		app.metrics,
		app.logger,
	)

	// Wire services to router
	router.OrganizationService = app.organizationService
	router.InvitationService = app.invitationService
	router.MembershipService = app.membershipService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
