package handler

import (
	"log/slog"
	"net/http"

	"github.com/gysagsohn/game-tracker-server/internal/api/middleware"
	"github.com/gysagsohn/game-tracker-server/internal/api/request"
	"github.com/gysagsohn/game-tracker-server/internal/api/response"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/services/user"
)

// UserHandler handles profile endpoints
type UserHandler struct {
	userService *user.Service
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *user.Service, logger *slog.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	response.OK(w, response.UserFromModel(middleware.MustGetUser(r.Context())))
}

// UpdateMe handles PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	var req request.UpdateProfileRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	upd := user.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		ProfileIcon: req.ProfileIcon,
	}
	if req.FavoriteGames != nil {
		upd.FavoriteGames = make([]model.GameID, len(req.FavoriteGames))
		for i, g := range req.FavoriteGames {
			upd.FavoriteGames[i] = model.GameID(g)
		}
	}

	updated, err := h.userService.UpdateProfile(r.Context(), u.ID, upd)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.UserFromModel(updated))
}

// Activity handles GET /api/v1/users/me/activity
func (h *UserHandler) Activity(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	entries, err := h.userService.Activity(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.ActivitiesFromModel(entries))
}

// Stats handles GET /api/v1/users/me/stats, recomputing from confirmed sessions
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	stats, err := h.userService.RefreshStats(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.StatsFromModel(*stats))
}

// Search handles GET /api/v1/users/search?q=
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	results, err := h.userService.Search(r.Context(), u.ID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	out := make([]response.PublicUser, len(results))
	for i, other := range results {
		out[i] = response.PublicUserFromModel(other, u.HasFriend(other.ID))
	}
	response.OK(w, out)
}

// Get handles GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())
	id := model.UserID(pathVar(r, "id"))

	other, err := h.userService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if other.ID == u.ID || u.IsAdmin() {
		response.OK(w, response.UserFromModel(other))
		return
	}
	response.OK(w, response.PublicUserFromModel(other, u.HasFriend(other.ID)))
}
