package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gysagsohn/game-tracker-server/internal/api/apierr"
	"github.com/gysagsohn/game-tracker-server/internal/api/middleware"
	"github.com/gysagsohn/game-tracker-server/internal/api/request"
	"github.com/gysagsohn/game-tracker-server/internal/api/response"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/services/admin"
	"github.com/gysagsohn/game-tracker-server/internal/services/session"
	"github.com/gysagsohn/game-tracker-server/internal/services/user"
)

const dateLayout = "2006-01-02"

// AdminHandler handles admin-only endpoints. Game and session edits reuse
// GameHandler and SessionHandler, whose services already allow admins.
type AdminHandler struct {
	adminService      *admin.Service
	userService       *user.Service
	sessionController *session.Controller
	logger            *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	adminService *admin.Service,
	userService *user.Service,
	sessionController *session.Controller,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		adminService:      adminService,
		userService:       userService,
		sessionController: sessionController,
		logger:            logger,
	}
}

// Overview handles GET /api/v1/admin/users
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	o, err := h.adminService.Overview(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.AdminOverview{
		Users:    response.UsersFromModel(o.Users),
		Sessions: response.SessionsFromModel(o.Sessions),
	})
}

// SearchUsers handles GET /api/v1/admin/users/search?q=
func (h *AdminHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.SearchUsers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.UsersFromModel(users))
}

// GetUser handles GET /api/v1/admin/users/{id}
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := model.UserID(pathVar(r, "id"))

	u, err := h.userService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	sessions, err := h.sessionController.ListMine(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.AdminUserSessions{
		User:     response.UserFromModel(u),
		Sessions: response.SessionsFromModel(sessions),
	})
}

// UpdateUser handles PUT /api/v1/admin/users/{id}
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor := middleware.MustGetUser(r.Context())

	var req request.AdminUpdateUserRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	u, err := h.adminService.UpdateUser(r.Context(), actor, model.UserID(pathVar(r, "id")), admin.UserUpdate{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Role:            (*model.Role)(req.Role),
		IsSuspended:     req.IsSuspended,
		IsEmailVerified: req.IsEmailVerified,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.UserFromModel(u))
}

// DeleteUser handles DELETE /api/v1/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := middleware.MustGetUser(r.Context())

	if err := h.adminService.DeleteUser(r.Context(), actor, model.UserID(pathVar(r, "id"))); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.NoContent(w)
}

// UserStats handles GET /api/v1/admin/stats/users
func (h *AdminHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.adminService.UserCounts(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.UserCountsFromModel(counts))
}

// GameStats handles GET /api/v1/admin/stats/games
func (h *AdminHandler) GameStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.MostPlayed(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.GamePlaysFromModel(stats))
}

// SessionsByDate handles GET /api/v1/admin/sessions/date-range?start=&end=
// Dates are YYYY-MM-DD or RFC 3339; a date-only end covers the whole day.
func (h *AdminHandler) SessionsByDate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, _, err := parseDate(query.Get("start"))
	if err != nil {
		WriteError(w, apierr.NewInvalidRequestError("start must be a date (YYYY-MM-DD) or RFC 3339 timestamp"))
		return
	}
	end, dateOnly, err := parseDate(query.Get("end"))
	if err != nil {
		WriteError(w, apierr.NewInvalidRequestError("end must be a date (YYYY-MM-DD) or RFC 3339 timestamp"))
		return
	}
	if dateOnly {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}

	sessions, err := h.adminService.SessionsBetween(r.Context(), start, end)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.SessionsFromModel(sessions))
}

// parseDate parses s and reports whether it was a bare date
func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, false, err
}
