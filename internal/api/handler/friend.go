package handler

import (
	"log/slog"
	"net/http"

	"github.com/gysagsohn/game-tracker-server/internal/api/middleware"
	"github.com/gysagsohn/game-tracker-server/internal/api/request"
	"github.com/gysagsohn/game-tracker-server/internal/api/response"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/services/friend"
)

// FriendHandler handles friendship endpoints
type FriendHandler struct {
	friendService *friend.Service
	logger        *slog.Logger
}

// NewFriendHandler creates a new friend handler
func NewFriendHandler(friendService *friend.Service, logger *slog.Logger) *FriendHandler {
	return &FriendHandler{friendService: friendService, logger: logger}
}

// List handles GET /api/v1/friends
func (h *FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, middleware.MustGetUser(r.Context()).ID)
}

// ListFor handles GET /api/v1/friends/list/{id}
func (h *FriendHandler) ListFor(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, model.UserID(pathVar(r, "id")))
}

func (h *FriendHandler) list(w http.ResponseWriter, r *http.Request, id model.UserID) {
	u := middleware.MustGetUser(r.Context())

	friends, err := h.friendService.Friends(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	out := make([]response.PublicUser, len(friends))
	for i, f := range friends {
		out[i] = response.PublicUserFromModel(f, f.ID == u.ID || u.HasFriend(f.ID))
	}
	response.OK(w, out)
}

// Suggested handles GET /api/v1/friends/suggested
func (h *FriendHandler) Suggested(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	users, err := h.friendService.Suggested(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.PublicUsersFromModel(users, false))
}

// Mutual handles GET /api/v1/friends/mutual/{id}
func (h *FriendHandler) Mutual(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	users, err := h.friendService.Mutual(r.Context(), u.ID, model.UserID(pathVar(r, "id")))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.PublicUsersFromModel(users, true))
}

// Send handles POST /api/v1/friends/send
func (h *FriendHandler) Send(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	var req request.SendFriendRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	target, err := h.friendService.SendRequestByEmail(r.Context(), u.ID, req.Email)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.FriendRequest{
		User:   response.PublicUserFromModel(target, false),
		Status: string(model.FriendRequestPending),
	})
}

// Respond handles POST /api/v1/friends/respond
func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	var req request.RespondFriendRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	action := model.FriendRequestStatus(req.Action)
	if err := h.friendService.Respond(r.Context(), u.ID, model.UserID(req.SenderID), action); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if action == model.FriendRequestAccepted {
		response.Text(w, "Friend request accepted")
		return
	}
	response.Text(w, "Friend request rejected")
}

// Requests handles GET /api/v1/friends/requests
func (h *FriendHandler) Requests(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	reqs, err := h.friendService.PendingRequests(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, friendRequests(reqs))
}

// Sent handles GET /api/v1/friends/sent
func (h *FriendHandler) Sent(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	reqs, err := h.friendService.SentRequests(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, friendRequests(reqs))
}

// Unfriend handles POST /api/v1/friends/unfriend
func (h *FriendHandler) Unfriend(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())

	var req request.UnfriendRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.friendService.Unfriend(r.Context(), u.ID, model.UserID(req.FriendID)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Text(w, "Friend removed")
}

func friendRequests(reqs []friend.Request) []response.FriendRequest {
	out := make([]response.FriendRequest, len(reqs))
	for i, req := range reqs {
		out[i] = response.FriendRequest{
			User:      response.PublicUserFromModel(req.User, false),
			Status:    string(req.Request.Status),
			CreatedAt: req.Request.CreatedAt,
		}
	}
	return out
}
