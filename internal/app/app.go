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

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/casedesk/internal/catalog"
	"github.com/simp-lee/casedesk/internal/config"
	"github.com/simp-lee/casedesk/internal/middleware"
	"github.com/simp-lee/casedesk/internal/module/auth"
	"github.com/simp-lee/casedesk/internal/pkg"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine *Engine
	db     *gorm.DB
	logger *logger.Logger
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging and the database, migrates the record tables in debug
// mode, and builds the HTTP engine with NewEngine.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	// 1. Setup logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	if !cfg.Auth.Enabled {
		log.Warn("auth is disabled: record routes accept unauthenticated requests")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	// 2. Setup database.
	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", slog.Any("error", err))
		}
	}()

	// 3. AutoMigrate in debug mode only.
	if cfg.Server.Mode == gin.DebugMode {
		if err := config.Migrate(db, catalog.Models()...); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed", slog.Int("tables", len(catalog.Models())))
	}

	// 4. Engine, middleware and routes.
	engine, err := NewEngine(cfg, db, log.Logger)
	if err != nil {
		return nil, err
	}

	success = true
	return &App{
		engine: engine,
		db:     db,
		logger: log,
		cfg:    cfg,
	}, nil
}

// Engine is the HTTP handler built by NewEngine.
type Engine struct {
	*gin.Engine
	issuer *auth.Issuer
}

// Close releases the token issuer, if any. The engine stops accepting tokens.
func (e *Engine) Close() {
	if e != nil && e.issuer != nil {
		e.issuer.Close()
	}
}

// NewEngine builds the gin engine serving every catalog record type over db.
// When cfg.Auth is enabled the record routes require a bearer token issued by
// POST /api/v1/auth/token. Call Close on the returned Engine when done.
func NewEngine(cfg *config.Config, db *gorm.DB, log *slog.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if log == nil {
		log = slog.Default()
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	timeout, err := optionalDuration(cfg.Server.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid server.timeout: %w", err)
	}

	pkg.RegisterValidators()

	gin.SetMode(cfg.Server.Mode)
	engine := &Engine{Engine: gin.New()}
	engine.Use(
		middleware.Recovery(log),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: cfg.Server.RequestID.TrustUpstream,
		}),
		middleware.Logger(log),
		middleware.CORSWithConfig(resolveCORSConfig(cfg.Server.Mode, &cfg.Server.CORS)),
	)
	if timeout > 0 {
		engine.Use(middleware.Timeout(timeout))
	}

	deps := &RouteDeps{DB: db}
	for _, m := range catalog.Modules(db) {
		deps.Records = append(deps.Records, m)
	}

	if cfg.Auth.Enabled {
		issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiryDuration())
		if err != nil {
			return nil, fmt.Errorf("setup auth: %w", err)
		}
		clients := make([]auth.Client, 0, len(cfg.Auth.Clients))
		for _, c := range cfg.Auth.Clients {
			clients = append(clients, auth.Client{ID: c.ID, SecretHash: c.SecretHash})
		}
		engine.issuer = issuer
		svc := auth.NewService(issuer, clients)
		deps.Public = append(deps.Public, auth.NewModule(auth.NewHandler(svc)))
		deps.Auth = middleware.Auth(issuer)
		log.Info("auth enabled", slog.Int("clients", len(clients)))
	}

	if err := RegisterRoutes(engine.Engine, deps); err != nil {
		engine.Close()
		return nil, fmt.Errorf("register routes: %w", err)
	}
	return engine, nil
}

// Handler returns the HTTP handler of the app.
func (a *App) Handler() http.Handler {
	return a.engine
}

// resolveCORSConfig merges the configured CORS settings over the defaults.
// In release mode, when no allowlist is configured, cross-origin requests are
// denied.
func resolveCORSConfig(mode string, cfg *config.CORSConfig) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()
	if cfg == nil {
		cfg = &config.CORSConfig{}
	}

	switch {
	case len(cfg.AllowOrigins) > 0:
		corsConfig.AllowOrigins = cfg.AllowOrigins
	case mode == gin.ReleaseMode:
		corsConfig.AllowOrigins = []string{}
	}
	if len(cfg.AllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowHeaders
	}
	corsConfig.AllowCredentials = cfg.AllowCredentials
	if d, err := optionalDuration(cfg.MaxAge); err == nil && d > 0 {
		corsConfig.MaxAge = d
	}

	return corsConfig
}

func optionalDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout and closes the database
// connection.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	addr := a.cfg.Server.Addr()
	srv := newHTTPServer(addr, a.engine)

	// Listen for SIGINT / SIGTERM.
	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}
	a.engine.Close()

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error("database close error", slog.Any("error", err))
			} else {
				log.Info("database connection closed")
			}
		}
	}

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}
