package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gysagsohn/game-tracker-server/internal/api/apierr"
	"github.com/gysagsohn/game-tracker-server/internal/api/middleware"
	"github.com/gysagsohn/game-tracker-server/internal/api/request"
	"github.com/gysagsohn/game-tracker-server/internal/api/response"
	"github.com/gysagsohn/game-tracker-server/internal/services/auth"
)

// AuthHandler handles account and sign-in endpoints
type AuthHandler struct {
	authService *auth.Service
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.SignupRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	u, err := h.authService.Signup(r.Context(), auth.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.Signup{
		Message: "Account created. Please check your email to verify your account.",
		User:    response.UserFromModel(u),
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.OK(w, response.AuthFromResult(result))
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u := middleware.MustGetUser(r.Context())
	response.OK(w, response.UserFromModel(u))
}

// VerifyEmail handles GET /api/v1/auth/verify-email?token=
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		WriteError(w, apierr.NewInvalidRequestError("token is required"))
		return
	}

	already, err := h.authService.VerifyEmail(r.Context(), token)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if already {
		response.Text(w, "Email already verified")
		return
	}
	response.Text(w, "Email verified successfully")
}

// ResendVerification handles POST /api/v1/auth/resend-verification-email
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req request.EmailRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.authService.ResendVerification(r.Context(), req.Email); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Text(w, "Verification email sent")
}

// ForgotPassword handles POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req request.EmailRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Text(w, "Password reset email sent")
}

// ResetPassword handles POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.authService.ResetPassword(r.Context(), req.Token, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.OK(w, response.AuthFromResult(result))
}

// Google handles GET /api/v1/auth/google?redirect=
// The redirect target travels through the OAuth state parameter.
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("redirect")
	if _, ok := h.authService.ResolveRedirect(state); !ok {
		h.redirectWithError(w, r, h.authService.FrontendURL(), "invalid_redirect")
		return
	}

	target, err := h.authService.GoogleAuthURL(state)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// GoogleCallback handles GET /api/v1/auth/google/callback
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	redirect, ok := h.authService.ResolveRedirect(query.Get("state"))
	if !ok {
		h.logger.Warn("google callback with disallowed redirect", slog.String("state", query.Get("state")))
		h.redirectWithError(w, r, h.authService.FrontendURL(), "invalid_redirect")
		return
	}

	code := query.Get("code")
	if code == "" {
		h.redirectWithError(w, r, redirect, "no_code")
		return
	}

	result, err := h.authService.GoogleSignIn(r.Context(), code)
	switch {
	case errors.Is(err, auth.ErrGoogleEmailNotVerified):
		h.redirectWithError(w, r, redirect, "email_not_verified")
		return
	case err != nil:
		h.logger.Warn("google sign-in failed", slog.String("error", err.Error()))
		h.redirectWithError(w, r, h.authService.FrontendURL(), "oauth_failed")
		return
	}

	http.Redirect(w, r, redirect+"/oauth/success#token="+url.QueryEscape(result.Token), http.StatusFound)
}

func (h *AuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, base, code string) {
	http.Redirect(w, r, base+"/login?error="+code, http.StatusFound)
}
