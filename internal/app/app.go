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

	"github.com/simp-lee/blogapi/internal/config"
	"github.com/simp-lee/blogapi/internal/domain"
	"github.com/simp-lee/blogapi/internal/middleware"
	"github.com/simp-lee/blogapi/internal/module/auth"
	"github.com/simp-lee/blogapi/internal/module/post"
	"github.com/simp-lee/blogapi/internal/module/user"
	"github.com/simp-lee/blogapi/internal/pkg"
)

const (
	defaultRequestTimeout = 30 * time.Second
	shutdownTimeout       = 5 * time.Second
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine    *gin.Engine
	db        *gorm.DB
	logger    *logger.Logger
	scheduler *Scheduler
	cfg       *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, timeout time.Duration) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      2 * timeout,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the database, token issuing, the auth, user and post
// modules, middleware, routes and, when enabled, the publishing scheduler.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}

	success := false

	// 1. Logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	// 2. Database.
	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		closeDB(db, log.Logger)
	}()

	if cfg.Server.Mode == gin.DebugMode {
		if err := db.AutoMigrate(&domain.User{}, &domain.Post{}); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}

	// 3. Repository -> service -> handler.
	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		Issuer: cfg.Auth.Issuer,
		TTL:    cfg.Auth.TokenTTL(),
	})
	if err != nil {
		return nil, fmt.Errorf("setup tokens: %w", err)
	}

	page := pkg.PageOptions{
		DefaultPageSize: cfg.Pagination.DefaultPageSize,
		MaxPageSize:     cfg.Pagination.MaxPageSize,
	}

	userRepo := user.NewUserRepository(db)
	authSvc := auth.NewService(tokens, userRepo)
	userSvc := user.NewUserService(userRepo)
	postSvc := post.NewPostService(post.NewPostRepository(db))

	modules := []Module{
		auth.NewModule(auth.NewHandler(authSvc)),
		user.NewModule(user.NewUserHandler(userSvc, page)),
		post.NewModule(post.NewPostHandler(postSvc, page)),
	}

	// 4. Engine and middleware (not gin.Default()).
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	corsConfig, err := resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS)
	if err != nil {
		return nil, err
	}

	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: false,
		}),
		middleware.Logger(log.Logger, healthPath),
		middleware.CORSWithConfig(corsConfig),
	)
	if rl := cfg.Server.RateLimit; rl.Enabled {
		engine.Use(middleware.RateLimit(middleware.RateLimitConfig{RPS: rl.RPS, Burst: rl.Burst}))
	}

	// 5. Routes.
	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:  modules,
		DB:       db,
		Verifier: authSvc,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	// 6. Background jobs.
	var scheduler *Scheduler
	if cfg.Scheduler.Enabled {
		scheduler = NewScheduler(log.Logger)
		job := post.NewPublishScheduledJob(postSvc, config.ComponentLogger(log.Logger, "cron"))
		if err := scheduler.AddJob(cfg.Scheduler.PublishSpec, job); err != nil {
			return nil, fmt.Errorf("setup scheduler: %w", err)
		}
	}

	success = true
	return &App{
		engine:    engine,
		db:        db,
		logger:    log,
		scheduler: scheduler,
		cfg:       cfg,
	}, nil
}

// resolveCORSConfig builds the CORS middleware settings. Unset lists keep the
// defaults, except that release mode denies cross-origin requests unless an
// allowlist is configured.
func resolveCORSConfig(mode string, cfg config.CORSConfig) (middleware.CORSConfig, error) {
	corsConfig := middleware.DefaultCORSConfig()

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

	if cfg.MaxAge != "" {
		d, err := time.ParseDuration(cfg.MaxAge)
		if err != nil {
			return middleware.CORSConfig{}, fmt.Errorf("invalid server.cors.max_age %q: %w", cfg.MaxAge, err)
		}
		corsConfig.MaxAge = d
	}

	return corsConfig, nil
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

func requestTimeout(raw string) time.Duration {
	if raw == "" {
		return defaultRequestTimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultRequestTimeout
	}
	return d
}

func closeDB(db *gorm.DB, log *slog.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error("database close error", slog.Any("error", err))
		return
	}
	log.Info("database connection closed")
}

// Run starts the HTTP server and the scheduler, then blocks until a shutdown
// signal is received or the server fails. Shutdown drains HTTP requests with
// a 5-second deadline, waits for running jobs and closes the database.
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

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine, requestTimeout(a.cfg.Server.Timeout))

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if a.scheduler != nil {
		a.scheduler.Start()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	middleware.StopRateLimiters()

	closeDB(a.db, log)

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}
