// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shyam-international/exportsite/internal/admin"
	"github.com/shyam-international/exportsite/internal/auth"
	"github.com/shyam-international/exportsite/internal/banner"
	"github.com/shyam-international/exportsite/internal/config"
	"github.com/shyam-international/exportsite/internal/contact"
	"github.com/shyam-international/exportsite/internal/core"
	"github.com/shyam-international/exportsite/internal/feedback"
	"github.com/shyam-international/exportsite/internal/health"
	"github.com/shyam-international/exportsite/internal/imagehost"
	"github.com/shyam-international/exportsite/internal/mail"
	"github.com/shyam-international/exportsite/internal/metrics"
	"github.com/shyam-international/exportsite/internal/middleware"
	"github.com/shyam-international/exportsite/internal/outbox"
	"github.com/shyam-international/exportsite/internal/product"
	"github.com/shyam-international/exportsite/internal/server"
	"github.com/shyam-international/exportsite/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	started := time.Now()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	isProduction := cfg.IsProduction()
	core.SetErrorDetail(!isProduction)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"auth_mode", cfg.Auth.Mode,
	)

	telemetry, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if telErr != nil {
		logger.Warn("failed to initialize telemetry", "error", telErr)
	} else if telemetry.Exporting {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		applied, migErr := core.Migrate(ctx, db.DB)
		if migErr != nil {
			return migErr
		}
		logger.Info("migrations applied", "count", len(applied), "files", applied)
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager := auth.NewJWTManager(cfg.JWT)

	identityCache := auth.NewLRUIdentityCache(cfg.Auth.CacheSize, cfg.Auth.CacheTTL)
	userSvc := user.NewService(user.NewRepository(db.DB), identityCache)

	var provider auth.Provider
	switch cfg.Auth.Mode {
	case config.AuthModeStored:
		provider = auth.NewStoredUserAuth(userSvc, identityCache, auth.LockoutPolicy{
			MaxAttempts:  cfg.Auth.MaxLoginAttempts,
			LockDuration: cfg.Auth.LockDuration,
		}, logger)
	default:
		provider = auth.NewStaticCredentialAuth(cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
	}

	authSvc := auth.NewService(
		jwtManager,
		provider,
		auth.NewRedisBlacklist(redis.Client),
		logger,
	)

	rawStore, err := imagehost.New(ctx, cfg.Images)
	if err != nil {
		return err
	}
	images := imagehost.NewInstrumented(rawStore, cfg.Images, logger)
	logger.Info("image store ready", "driver", cfg.Images.Driver)

	sender, err := mail.NewSender(cfg.Mail, logger)
	if err != nil {
		return err
	}
	recipients := cfg.Mail.Recipients()
	if len(recipients) == 0 {
		logger.Warn("no admin email recipients configured")
	}
	runner := outbox.NewRunner(cfg.Mail.AsyncNotify, cfg.Mail.Timeout, logger)

	contactSvc := contact.NewService(contact.ServiceConfig{
		Repo: contact.NewRepository(db.DB),
		Notifier: contact.NewNotifier(
			sender,
			mail.NewComposer(cfg.App.Company),
			recipients,
			logger,
		),
		Runner:          runner,
		DuplicateWindow: cfg.Contact.DuplicateWindow,
		SenderAddress:   cfg.Mail.Sender(),
		Logger:          logger,
	})
	productSvc := product.NewService(product.NewRepository(db.DB), images, logger)
	bannerSvc := banner.NewService(banner.NewRepository(db.DB), images, logger)
	feedbackSvc := feedback.NewService(feedback.NewRepository(db.DB))

	healthHandler := health.NewHandler(health.HandlerConfig{
		DB:      db,
		Redis:   redis,
		Name:    cfg.App.Name,
		Version: cfg.App.Version,
		Started: started,
	})

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		RedisInfo:  redis.ServerInfo,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Users:      userSvc,
		Contacts:   contactSvc,
		Products:   productSvc,
		Feedback:   feedbackSvc,
		Started:    started,
		Logger:     logger,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(metrics.Middleware)
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindowBurst(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			Scope:    "global",
			Message:  "Too many requests from this IP, please try again later.",
			FailOpen: true,
			Logger:   logger,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(isProduction))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(middleware.MaxBodySize(cfg.Server.MaxBodyBytes))

	healthHandler.RegisterRoutes(router)
	router.Handle("/metrics", metrics.Handler())

	if local, ok := rawStore.(*imagehost.LocalStore); ok {
		router.Handle(local.PublicPath()+"/*", local.FileServer())
	}

	limiter := func(scope, message string, wl config.WindowLimit) func(http.Handler) http.Handler {
		return middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit:    middleware.PerWindow(wl.Requests, wl.Window),
			Scope:    scope,
			Message:  message,
			FailOpen: true,
			Logger:   logger,
		}).Handler
	}

	contactLimit := limiter("contact",
		"Too many contact form submissions from this IP. Please try again later.",
		cfg.RateLimit.Contact)
	loginLimit := limiter("login",
		"Too many login attempts. Please try again later.",
		cfg.RateLimit.Login)
	verifyLimit := limiter("verify",
		"Too many verification requests. Please try again later.",
		cfg.RateLimit.Verify)
	feedbackLimit := limiter("feedback",
		"Too many feedback submissions. Please try again later.",
		cfg.RateLimit.Feedback)
	emailTestLimit := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit:    middleware.PerWindow(cfg.RateLimit.EmailTest.Requests, cfg.RateLimit.EmailTest.Window),
		Scope:    "email_test",
		Message:  "Too many email test requests. Please try again later.",
		FailOpen: true,
		Skip:     func(*http.Request) bool { return cfg.IsDevelopment() },
		Logger:   logger,
	}).Handler
	adminLimit := limiter("admin",
		"Too many admin requests from this IP.",
		cfg.RateLimit.Admin)

	authenticator := middleware.Authenticator(authSvc)
	adminOnly := middleware.RequireAdmin
	maxUpload := cfg.Images.MaxUploadBytes

	router.Route("/api", func(r chi.Router) {
		healthHandler.RegisterAPIRoutes(r)

		auth.NewHandler(authSvc).RegisterRoutes(r, authenticator, loginLimit, verifyLimit)
		contact.NewHandler(contactSvc).
			RegisterRoutes(r, authenticator, adminOnly, contactLimit, emailTestLimit, adminLimit)
		product.NewHandler(productSvc, maxUpload).
			RegisterRoutes(r, authenticator, adminOnly, adminLimit)
		banner.NewHandler(bannerSvc, maxUpload).
			RegisterRoutes(r, authenticator, adminOnly, adminLimit)
		feedback.NewHandler(feedbackSvc).
			RegisterRoutes(r, authenticator, adminOnly, feedbackLimit, adminLimit)

		if cfg.Auth.Mode == config.AuthModeStored {
			user.NewHandler(userSvc).RegisterAdminRoutes(r, authenticator, adminOnly, adminLimit)
		}
		adminHandler.RegisterRoutes(r, authenticator, adminOnly, adminLimit)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := runner.Wait(shutdownCtx); err != nil {
		logger.Error("pending notifications abandoned", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped", "uptime", time.Since(started).Round(time.Second))
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
