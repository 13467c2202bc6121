package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gysagsohn/game-tracker-server/internal/api"
	"github.com/gysagsohn/game-tracker-server/internal/api/handler"
	"github.com/gysagsohn/game-tracker-server/internal/api/middleware"
	"github.com/gysagsohn/game-tracker-server/internal/config"
	"github.com/gysagsohn/game-tracker-server/internal/factory"
	"github.com/gysagsohn/game-tracker-server/internal/jobs"
	"github.com/gysagsohn/game-tracker-server/internal/services/auth"
	"github.com/gysagsohn/game-tracker-server/internal/services/email"
	"github.com/gysagsohn/game-tracker-server/internal/services/session"
	redisstorage "github.com/gysagsohn/game-tracker-server/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	authCfg := auth.DefaultConfig()
	authCfg.Secret = cfg.JWTSecret
	authCfg.AccessTTL = cfg.AccessTokenTTL
	authCfg.FrontendURL = cfg.FrontendURL
	authCfg.AllowedRedirects = append(authCfg.AllowedRedirects, cfg.Redirects()...)
	if cfg.IsProduction() {
		authCfg.AllowedRedirects = cfg.Redirects()
	}

	factoryCfg := factory.Config{
		AuthConfig: authCfg,
		SessionConfig: session.Config{
			GuestInvitesPerDay: cfg.GuestInvitesPerDay,
			ReminderCooldown:   cfg.MatchReminderCooldown,
		},
		Logger:      logger,
		StorageType: cfg.StorageType,
		BurstRPS:    cfg.BurstRPS,
		BurstSize:   cfg.BurstSize,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	if cfg.SMTPEnabled() {
		sender, err := email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.EmailFrom,
			Password: cfg.EmailAppPassword,
			From:     cfg.EmailFrom,
		})
		if err != nil {
			logger.Error("failed to configure email", slog.String("error", err.Error()))
			os.Exit(1)
		}
		factoryCfg.Sender = sender
	} else {
		logger.Warn("SMTP_HOST not set, emails will only be logged")
	}

	if cfg.GoogleEnabled() {
		factoryCfg.Google = auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL())
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close application", slog.String("error", err.Error()))
		}
	}()

	// Background housekeeping
	var limiter jobs.Pruner
	if app.BurstLimiter != nil {
		limiter = app.BurstLimiter
	}
	counters, _ := app.Storage.(jobs.CounterPruner)
	scheduler, err := jobs.NewScheduler(jobs.Housekeeping(jobs.DefaultConfig(), app.HubManager, limiter, counters), logger)
	if err != nil {
		logger.Error("failed to create scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	scheduler.Start()

	// Create API router
	pinger, _ := app.Storage.(handler.Pinger)
	router := api.NewRouter(api.RouterConfig{
		Logger:              logger,
		Clock:               app.Clock,
		AuthService:         app.AuthService,
		UserService:         app.UserService,
		CatalogService:      app.CatalogService,
		SessionController:   app.SessionController,
		FriendService:       app.FriendService,
		NotificationService: app.NotificationService,
		AdminService:        app.AdminService,
		HubManager:          app.HubManager,
		Counter:             app.Storage,
		AuthLimit: middleware.WindowLimit{
			Name:    "auth",
			Max:     cfg.AuthRateMax,
			Window:  cfg.AuthRateWindow,
			Message: "Too many attempts. Please try again later.",
		},
		FriendLimit: middleware.WindowLimit{
			Name:    "friend_request",
			Max:     cfg.FriendRequestRateMax,
			Window:  cfg.FriendRequestRateWindow,
			Message: "Too many friend requests. Please try again later.",
		},
		BurstLimiter: app.BurstLimiter,
		Pinger:       pinger,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)
	server.RegisterOnShutdown(app.HubManager.Close)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
		slog.String("env", cfg.AppEnv),
	)

	// Wait for shutdown or error
	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	if err := scheduler.Shutdown(); err != nil {
		logger.Warn("scheduler shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
	if exitCode != 0 {
		// os.Exit skips deferred calls
		_ = app.Close()
		os.Exit(exitCode)
	}
}
