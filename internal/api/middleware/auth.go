package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gysagsohn/game-tracker-server/internal/api/apierr"
	"github.com/gysagsohn/game-tracker-server/internal/middleware"
	"github.com/gysagsohn/game-tracker-server/internal/model"
)

type contextKey string

const userContextKey contextKey = "user"

// TokenCookie is the cookie checked when no Authorization header is sent
const TokenCookie = "token"

// TokenValidator resolves an access token to its user
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.User, error)
}

// Auth creates authentication middleware
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			u, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// OptionalAuth attaches the user if a valid token is present but doesn't require it
func OptionalAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractToken(r); token != "" {
				if u, err := validator.ValidateToken(r.Context(), token); err == nil {
					r = r.WithContext(WithUser(r.Context(), u))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects users without the admin role. Must run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := GetUser(r.Context())
		if u == nil {
			apierr.WriteError(w, apierr.NewUnauthorizedError())
			return
		}
		if !u.IsAdmin() {
			apierr.WriteError(w, model.ErrNotAdmin)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractToken reads a bearer token, falling back to the token cookie
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	cookie, err := r.Cookie(TokenCookie)
	if err == nil {
		return cookie.Value
	}

	return ""
}

// WithUser returns a context carrying u and tags the request log line with its id
func WithUser(ctx context.Context, u *model.User) context.Context {
	middleware.AddLogAttrs(ctx, slog.String("user_id", string(u.ID)))
	return context.WithValue(ctx, userContextKey, u)
}

// GetUser returns the authenticated user from the request context
func GetUser(ctx context.Context) *model.User {
	u, _ := ctx.Value(userContextKey).(*model.User)
	return u
}

// MustGetUser returns the authenticated user or panics
func MustGetUser(ctx context.Context) *model.User {
	u := GetUser(ctx)
	if u == nil {
		panic("no user in context - auth middleware not applied?")
	}
	return u
}
