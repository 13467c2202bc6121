package handler

import (
	"log/slog"
	"net/http"

	"github.com/gysagsohn/game-tracker-server/internal/api/middleware"
	"github.com/gysagsohn/game-tracker-server/internal/api/request"
	"github.com/gysagsohn/game-tracker-server/internal/api/response"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/services/session"
)

// SessionHandler handles recorded match endpoints
type SessionHandler struct {
	sessionController *session.Controller
	logger            *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionController *session.Controller, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessionController: sessionController, logger: logger}
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	sessions, err := h.sessionController.ListMine(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.SessionsFromModel(sessions))
}

// MyPending handles GET /api/v1/sessions/my-pending
func (h *SessionHandler) MyPending(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	sessions, err := h.sessionController.MyPending(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.SessionsFromModel(sessions))
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	var req request.CreateSessionRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	sess, err := h.sessionController.Create(r.Context(), u, session.CreateInput{
		Game:    model.GameID(req.Game),
		Players: playerInputs(req.Players),
		Notes:   req.Notes,
		Date:    req.Date,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.SessionFromModel(sess))
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	sess, err := h.sessionController.Get(r.Context(), u, model.SessionID(pathVar(r, "id")))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.SessionFromModel(sess))
}

// Update handles PUT /api/v1/sessions/{id} and PUT /api/v1/admin/sessions/{id}
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	var req request.UpdateSessionRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	sess, err := h.sessionController.Update(r.Context(), u, model.SessionID(pathVar(r, "id")), session.UpdateInput{
		Game:    (*model.GameID)(req.Game),
		Players: playerInputs(req.Players),
		Notes:   req.Notes,
		Date:    req.Date,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.SessionFromModel(sess))
}

// Delete handles DELETE /api/v1/sessions/{id} and DELETE /api/v1/admin/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	if err := h.sessionController.Delete(r.Context(), u, model.SessionID(pathVar(r, "id"))); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.NoContent(w)
}

// Confirm handles POST /api/v1/sessions/{id}/confirm
func (h *SessionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	sess, err := h.sessionController.Confirm(r.Context(), u, model.SessionID(pathVar(r, "id")))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.SessionFromModel(sess))
}

// Decline handles POST /api/v1/sessions/{id}/decline
func (h *SessionHandler) Decline(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	result, err := h.sessionController.Decline(r.Context(), u, model.SessionID(pathVar(r, "id")))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resp := response.Decline{Message: "You have declined this match", Deleted: result.Deleted}
	if result.Deleted {
		resp.Message = "You have declined this match. It had no remaining players and was removed"
	} else {
		s := response.SessionFromModel(result.Session)
		resp.Session = &s
	}
	response.OK(w, resp)
}

// Remind handles POST /api/v1/sessions/{id}/remind
func (h *SessionHandler) Remind(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	n, err := h.sessionController.Remind(r.Context(), u, model.SessionID(pathVar(r, "id")))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.Remind{Message: "Reminders sent", Reminded: n})
}

// playerInputs converts player entries; nil stays nil so updates can leave players unchanged
func playerInputs(players []request.PlayerRequest) []session.PlayerInput {
	if players == nil {
		return nil
	}
	out := make([]session.PlayerInput, len(players))
	for i, p := range players {
		out[i] = session.PlayerInput{
			User:    (*model.UserID)(p.User),
			Name:    p.Name,
			Email:   p.Email,
			Score:   p.Score,
			Result:  model.Result(p.Result),
			Invited: p.Invited,
		}
	}
	return out
}
