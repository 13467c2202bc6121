package handler

import (
	"log/slog"
	"net/http"

	"github.com/gysagsohn/game-tracker-server/internal/api/middleware"
	"github.com/gysagsohn/game-tracker-server/internal/api/request"
	"github.com/gysagsohn/game-tracker-server/internal/api/response"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/services/catalog"
)

// GameHandler handles catalog endpoints
type GameHandler struct {
	catalogService *catalog.Service
	logger         *slog.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(catalogService *catalog.Service, logger *slog.Logger) *GameHandler {
	return &GameHandler{catalogService: catalogService, logger: logger}
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.catalogService.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.GamesFromModel(games))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.catalogService.Get(r.Context(), model.GameID(pathVar(r, "id")))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.GameFromModel(g))
}

// Create handles POST /api/v1/games and POST /api/v1/admin/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	var req request.CreateGameRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.catalogService.Create(r.Context(), u, catalog.GameInput{
		Name:           req.Name,
		Description:    req.Description,
		Category:       model.GameCategory(req.Category),
		CustomCategory: req.CustomCategory,
		MinPlayers:     req.MinPlayers,
		MaxPlayers:     req.MaxPlayers,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.GameFromModel(g))
}

// Update handles PUT /api/v1/games/{id} and PUT /api/v1/admin/games/{id}
func (h *GameHandler) Update(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	var req request.UpdateGameRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.catalogService.Update(r.Context(), u, model.GameID(pathVar(r, "id")), catalog.GameUpdate{
		Name:           req.Name,
		Description:    req.Description,
		Category:       (*model.GameCategory)(req.Category),
		CustomCategory: req.CustomCategory,
		MinPlayers:     req.MinPlayers,
		MaxPlayers:     req.MaxPlayers,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.GameFromModel(g))
}

// Delete handles DELETE /api/v1/games/{id} and DELETE /api/v1/admin/games/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	if err := h.catalogService.Delete(r.Context(), u, model.GameID(pathVar(r, "id"))); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.NoContent(w)
}
