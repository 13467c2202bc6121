package handler

import (
	"log/slog"
	"net/http"

	"github.com/gysagsohn/game-tracker-server/internal/api/apierr"
	"github.com/gysagsohn/game-tracker-server/internal/api/middleware"
	"github.com/gysagsohn/game-tracker-server/internal/api/response"
	"github.com/gysagsohn/game-tracker-server/internal/api/sse"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/services/notification"
)

// NotificationHandler handles in-app notification endpoints
type NotificationHandler struct {
	notificationService *notification.Service
	hubManager          *sse.HubManager
	logger              *slog.Logger
}

// NewNotificationHandler creates a new notification handler. hubManager may be nil
// when live streams are disabled.
func NewNotificationHandler(notificationService *notification.Service, hubManager *sse.HubManager, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		hubManager:          hubManager,
		logger:              logger,
	}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	ns, err := h.notificationService.List(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	unread, err := h.notificationService.UnreadCount(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.NotificationsFromModel(ns, unread))
}

// MarkRead handles PUT and POST /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	n, err := h.notificationService.MarkRead(r.Context(), u.ID, model.NotificationID(pathVar(r, "id")))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.NotificationFromModel(n))
}

// ReadAll handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) ReadAll(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	updated, err := h.notificationService.MarkAllRead(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.ReadAll{Updated: updated})
}

// Stream handles GET /api/v1/notifications/stream
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h.hubManager == nil {
		WriteError(w, apierr.NewNotFoundError())
		return
	}
	u := middleware.MustGetUser(r.Context())
	sse.ServeSSE(w, r, h.hubManager, u.ID)
}
