package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gysagsohn/game-tracker-server/internal/api/apierr"
	"github.com/gysagsohn/game-tracker-server/internal/api/handler"
	"github.com/gysagsohn/game-tracker-server/internal/api/middleware"
	"github.com/gysagsohn/game-tracker-server/internal/api/sse"
	"github.com/gysagsohn/game-tracker-server/internal/dependencies/clock"
	"github.com/gysagsohn/game-tracker-server/internal/metrics"
	"github.com/gysagsohn/game-tracker-server/internal/services/admin"
	"github.com/gysagsohn/game-tracker-server/internal/services/auth"
	"github.com/gysagsohn/game-tracker-server/internal/services/catalog"
	"github.com/gysagsohn/game-tracker-server/internal/services/friend"
	"github.com/gysagsohn/game-tracker-server/internal/services/notification"
	"github.com/gysagsohn/game-tracker-server/internal/services/session"
	"github.com/gysagsohn/game-tracker-server/internal/services/user"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger              *slog.Logger
	Clock               clock.Clock
	AuthService         *auth.Service
	UserService         *user.Service
	CatalogService      *catalog.Service
	SessionController   *session.Controller
	FriendService       *friend.Service
	NotificationService *notification.Service
	AdminService        *admin.Service
	HubManager          *sse.HubManager

	// Counter backs the fixed-window limits; nil disables them
	Counter     middleware.Counter
	AuthLimit   middleware.WindowLimit
	FriendLimit middleware.WindowLimit

	// BurstLimiter guards every API route; nil disables it
	BurstLimiter *middleware.BurstLimiter

	// Pinger is checked by the health endpoint; nil reports storage as ok
	Pinger handler.Pinger
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError())
	})

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	userHandler := handler.NewUserHandler(cfg.UserService, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.CatalogService, cfg.Logger)
	sessionHandler := handler.NewSessionHandler(cfg.SessionController, cfg.Logger)
	friendHandler := handler.NewFriendHandler(cfg.FriendService, cfg.Logger)
	notificationHandler := handler.NewNotificationHandler(cfg.NotificationService, cfg.HubManager, cfg.Logger)
	adminHandler := handler.NewAdminHandler(cfg.AdminService, cfg.UserService, cfg.SessionController, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.Pinger, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	authLimit := windowLimit(cfg, cfg.AuthLimit, middleware.ByIP)
	friendLimit := windowLimit(cfg, cfg.FriendLimit, middleware.ByUser)

	// Prometheus scrape endpoint sits outside the API middleware
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(metrics.InstrumentHandler)
	if cfg.BurstLimiter != nil {
		api.Use(cfg.BurstLimiter.Handler)
	}

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)

	// Auth routes (no auth required to sign in)
	api.Handle("/auth/signup", authLimit(http.HandlerFunc(authHandler.Signup))).Methods(http.MethodPost)
	api.Handle("/auth/login", authLimit(http.HandlerFunc(authHandler.Login))).Methods(http.MethodPost)
	api.Handle("/auth/forgot-password", authLimit(http.HandlerFunc(authHandler.ForgotPassword))).Methods(http.MethodPost)
	api.Handle("/auth/resend-verification-email", authLimit(http.HandlerFunc(authHandler.ResendVerification))).Methods(http.MethodPost)
	api.HandleFunc("/auth/reset-password", authHandler.ResetPassword).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify-email", authHandler.VerifyEmail).Methods(http.MethodGet)
	api.HandleFunc("/auth/google", authHandler.Google).Methods(http.MethodGet)
	api.HandleFunc("/auth/google/callback", authHandler.GoogleCallback).Methods(http.MethodGet)
	api.Handle("/auth/me", authMiddleware(http.HandlerFunc(authHandler.Me))).Methods(http.MethodGet)

	// Game catalog: reads are public, writes require auth
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	api.Handle("/games", authMiddleware(http.HandlerFunc(gameHandler.Create))).Methods(http.MethodPost)
	api.Handle("/games/{id}", authMiddleware(http.HandlerFunc(gameHandler.Update))).Methods(http.MethodPut)
	api.Handle("/games/{id}", authMiddleware(http.HandlerFunc(gameHandler.Delete))).Methods(http.MethodDelete)

	// User routes (all require auth); fixed paths before {id}
	users := api.PathPrefix("/users").Subrouter()
	users.Use(authMiddleware)
	users.HandleFunc("/me", userHandler.GetMe).Methods(http.MethodGet)
	users.HandleFunc("/me", userHandler.UpdateMe).Methods(http.MethodPatch, http.MethodPut)
	users.HandleFunc("/me/activity", userHandler.Activity).Methods(http.MethodGet)
	users.HandleFunc("/me/stats", userHandler.Stats).Methods(http.MethodGet)
	users.HandleFunc("/search", userHandler.Search).Methods(http.MethodGet)
	users.HandleFunc("/{id}", userHandler.Get).Methods(http.MethodGet)

	// Session routes (all require auth); my-pending before {id}
	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.Use(authMiddleware)
	sessions.HandleFunc("", sessionHandler.List).Methods(http.MethodGet)
	sessions.HandleFunc("", sessionHandler.Create).Methods(http.MethodPost)
	sessions.HandleFunc("/my-pending", sessionHandler.MyPending).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}", sessionHandler.Get).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}", sessionHandler.Update).Methods(http.MethodPut)
	sessions.HandleFunc("/{id}", sessionHandler.Delete).Methods(http.MethodDelete)
	sessions.HandleFunc("/{id}/confirm", sessionHandler.Confirm).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/decline", sessionHandler.Decline).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/remind", sessionHandler.Remind).Methods(http.MethodPost)

	// Friend routes (all require auth)
	friends := api.PathPrefix("/friends").Subrouter()
	friends.Use(authMiddleware)
	friends.HandleFunc("", friendHandler.List).Methods(http.MethodGet)
	friends.HandleFunc("/list/{id}", friendHandler.ListFor).Methods(http.MethodGet)
	friends.HandleFunc("/suggested", friendHandler.Suggested).Methods(http.MethodGet)
	friends.HandleFunc("/mutual/{id}", friendHandler.Mutual).Methods(http.MethodGet)
	friends.Handle("/send", friendLimit(http.HandlerFunc(friendHandler.Send))).Methods(http.MethodPost)
	friends.HandleFunc("/respond", friendHandler.Respond).Methods(http.MethodPost)
	friends.HandleFunc("/requests", friendHandler.Requests).Methods(http.MethodGet)
	friends.HandleFunc("/sent", friendHandler.Sent).Methods(http.MethodGet)
	friends.HandleFunc("/unfriend", friendHandler.Unfriend).Methods(http.MethodPost)
	// Older clients read notifications under /friends
	friends.HandleFunc("/notifications", notificationHandler.List).Methods(http.MethodGet)
	friends.HandleFunc("/notifications/read-all", notificationHandler.ReadAll).Methods(http.MethodPost)
	friends.HandleFunc("/notifications/{id}/read", notificationHandler.MarkRead).Methods(http.MethodPut, http.MethodPost)

	// Notification routes (all require auth)
	notifications := api.PathPrefix("/notifications").Subrouter()
	notifications.Use(authMiddleware)
	notifications.HandleFunc("", notificationHandler.List).Methods(http.MethodGet)
	notifications.HandleFunc("/stream", notificationHandler.Stream).Methods(http.MethodGet)
	notifications.HandleFunc("/read-all", notificationHandler.ReadAll).Methods(http.MethodPost)
	notifications.HandleFunc("/{id}/read", notificationHandler.MarkRead).Methods(http.MethodPut, http.MethodPost)

	// Admin routes (auth + admin role)
	adminRoutes := api.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(authMiddleware)
	adminRoutes.Use(middleware.RequireAdmin)
	adminRoutes.HandleFunc("/users", adminHandler.Overview).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/users/search", adminHandler.SearchUsers).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/users/{id}", adminHandler.GetUser).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/users/{id}", adminHandler.UpdateUser).Methods(http.MethodPut)
	adminRoutes.HandleFunc("/users/{id}", adminHandler.DeleteUser).Methods(http.MethodDelete)
	adminRoutes.HandleFunc("/stats/users", adminHandler.UserStats).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/stats/games", adminHandler.GameStats).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/sessions/date-range", adminHandler.SessionsByDate).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/sessions/{id}", sessionHandler.Update).Methods(http.MethodPut)
	adminRoutes.HandleFunc("/sessions/{id}", sessionHandler.Delete).Methods(http.MethodDelete)
	adminRoutes.HandleFunc("/games", gameHandler.Create).Methods(http.MethodPost)
	adminRoutes.HandleFunc("/games/{id}", gameHandler.Update).Methods(http.MethodPut)
	adminRoutes.HandleFunc("/games/{id}", gameHandler.Delete).Methods(http.MethodDelete)

	return r
}

// windowLimit returns the limiter middleware, or a passthrough when limiting is off
func windowLimit(cfg RouterConfig, limit middleware.WindowLimit, key middleware.KeyFunc) func(http.Handler) http.Handler {
	if cfg.Counter == nil || limit.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RateLimit(cfg.Counter, cfg.Clock, limit, key, cfg.Logger)
}
