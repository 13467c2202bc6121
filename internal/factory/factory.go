package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/gysagsohn/game-tracker-server/internal/api/middleware"
	"github.com/gysagsohn/game-tracker-server/internal/api/sse"
	"github.com/gysagsohn/game-tracker-server/internal/dependencies/clock"
	"github.com/gysagsohn/game-tracker-server/internal/dependencies/ids"
	"github.com/gysagsohn/game-tracker-server/internal/services/admin"
	"github.com/gysagsohn/game-tracker-server/internal/services/aftercommit"
	"github.com/gysagsohn/game-tracker-server/internal/services/auth"
	"github.com/gysagsohn/game-tracker-server/internal/services/catalog"
	"github.com/gysagsohn/game-tracker-server/internal/services/email"
	"github.com/gysagsohn/game-tracker-server/internal/services/friend"
	"github.com/gysagsohn/game-tracker-server/internal/services/notification"
	"github.com/gysagsohn/game-tracker-server/internal/services/session"
	"github.com/gysagsohn/game-tracker-server/internal/services/user"
	"github.com/gysagsohn/game-tracker-server/internal/storage"
	"github.com/gysagsohn/game-tracker-server/internal/storage/memory"
	redisstorage "github.com/gysagsohn/game-tracker-server/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	IDs    ids.Generator
	Sender email.Sender

	// Services
	Afterwards          *aftercommit.Runner
	Mailer              *email.Mailer
	HubManager          *sse.HubManager
	NotificationService *notification.Service
	UserService         *user.Service
	FriendService       *friend.Service
	CatalogService      *catalog.Service
	SessionController   *session.Controller
	AuthService         *auth.Service
	AdminService        *admin.Service
	BurstLimiter        *middleware.BurstLimiter
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service.
	// Secret is required; zero durations fall back to auth.DefaultConfig().
	AuthConfig auth.Config
	// SessionConfig tunes guest invites and reminders (optional)
	SessionConfig session.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Sender delivers email (optional). If nil, emails are only logged.
	Sender email.Sender
	// Google enables Google sign-in (optional)
	Google auth.GoogleProvider
	// BurstRPS and BurstSize configure the per-client request guard.
	// Zero disables it.
	BurstRPS  float64
	BurstSize int
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.AuthConfig.Secret == "" {
		return nil, errors.New("AuthConfig.Secret is required")
	}

	clk := clock.New()

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New(clk)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	sender := cfg.Sender
	if sender == nil {
		sender = email.NewLogSender(logger)
	}

	return newWithDependencies(store, clk, ids.New(), sender, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	idGen ids.Generator,
	sender email.Sender,
	cfg Config,
	logger *slog.Logger,
) *App {
	afterwards := aftercommit.New(logger)
	mailer := email.NewMailer(sender, frontendURL(cfg.AuthConfig), logger)
	hubManager := sse.NewHubManager(logger)

	notificationService := notification.New(store, clk, idGen, sse.NewPublisher(hubManager, logger), logger)
	userService := user.New(store, clk, logger)
	friendService := friend.New(store, clk, notificationService, mailer, userService, afterwards, logger)
	catalogService := catalog.New(store, clk, idGen, logger)
	sessionController := session.NewController(
		store, clk, idGen,
		notificationService, mailer, friendService, userService,
		afterwards, cfg.SessionConfig, logger,
	)
	authService := auth.New(
		store, clk, idGen,
		mailer, sessionController, userService, cfg.Google,
		afterwards, cfg.AuthConfig, logger,
	)
	adminService := admin.New(store, clk, logger)

	var burst *middleware.BurstLimiter
	if cfg.BurstRPS > 0 && cfg.BurstSize > 0 {
		burst = middleware.NewBurstLimiter(cfg.BurstRPS, cfg.BurstSize, clk)
	}

	return &App{
		Storage:             store,
		Clock:               clk,
		IDs:                 idGen,
		Sender:              sender,
		Afterwards:          afterwards,
		Mailer:              mailer,
		HubManager:          hubManager,
		NotificationService: notificationService,
		UserService:         userService,
		FriendService:       friendService,
		CatalogService:      catalogService,
		SessionController:   sessionController,
		AuthService:         authService,
		AdminService:        adminService,
		BurstLimiter:        burst,
	}
}

// Close releases storage connections and open streams
func (a *App) Close() error {
	a.HubManager.Close()
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func frontendURL(cfg auth.Config) string {
	if cfg.FrontendURL != "" {
		return cfg.FrontendURL
	}
	return auth.DefaultConfig().FrontendURL
}
