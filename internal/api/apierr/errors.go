package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/services/admin"
	"github.com/gysagsohn/game-tracker-server/internal/services/auth"
	"github.com/gysagsohn/game-tracker-server/internal/services/friend"
	"github.com/gysagsohn/game-tracker-server/internal/services/user"
)

// FieldError describes one invalid request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError represents an API error response
type APIError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeInvalidToken          = "INVALID_TOKEN"
	CodeTokenExpired          = "TOKEN_EXPIRED"
	CodeEmailNotVerified      = "EMAIL_NOT_VERIFIED"
	CodeEmailAlreadyVerified  = "EMAIL_ALREADY_VERIFIED"
	CodeGoogleAccount         = "GOOGLE_ACCOUNT"
	CodeGoogleNotConfigured   = "GOOGLE_NOT_CONFIGURED"
	CodeAccountSuspended      = "ACCOUNT_SUSPENDED"
	CodeForbidden             = "FORBIDDEN"
	CodeAdminRequired         = "ADMIN_REQUIRED"
	CodeUserNotFound          = "USER_NOT_FOUND"
	CodeEmailTaken            = "EMAIL_TAKEN"
	CodeQueryTooShort         = "QUERY_TOO_SHORT"
	CodeCannotFriendSelf      = "CANNOT_FRIEND_SELF"
	CodeAlreadyFriends        = "ALREADY_FRIENDS"
	CodeFriendRequestExists   = "FRIEND_REQUEST_EXISTS"
	CodeFriendRequestNotFound = "FRIEND_REQUEST_NOT_FOUND"
	CodeGameNotFound          = "GAME_NOT_FOUND"
	CodeGameNameTaken         = "GAME_NAME_TAKEN"
	CodeInvalidPlayerRange    = "INVALID_PLAYER_RANGE"
	CodeSessionNotFound       = "SESSION_NOT_FOUND"
	CodeNotParticipant        = "NOT_PARTICIPANT"
	CodePlayerEntryNotFound   = "PLAYER_ENTRY_NOT_FOUND"
	CodeDuplicatePlayer       = "DUPLICATE_PLAYER"
	CodeNoPlayers             = "NO_PLAYERS"
	CodeSessionConfirmed      = "SESSION_ALREADY_CONFIRMED"
	CodeNoPendingPlayers      = "NO_PENDING_PLAYERS"
	CodeReminderCooldown      = "REMINDER_COOLDOWN"
	CodeConcurrentUpdate      = "CONCURRENT_UPDATE"
	CodeNotificationNotFound  = "NOTIFICATION_NOT_FOUND"
	CodeRateLimited           = "RATE_LIMITED"
	CodeNotFound              = "NOT_FOUND"
	CodeInternalError         = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

type mapping struct {
	target  error
	status  int
	code    string
	message string
}

var mappings = []mapping{
	// Auth errors
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid credentials"},
	{auth.ErrTokenExpired, http.StatusUnauthorized, CodeTokenExpired, "Token has expired"},
	{auth.ErrInvalidToken, http.StatusUnauthorized, CodeInvalidToken, "Invalid or expired token"},
	{auth.ErrEmailNotVerified, http.StatusForbidden, CodeEmailNotVerified, "Please verify your email before logging in"},
	{auth.ErrEmailAlreadyVerified, http.StatusBadRequest, CodeEmailAlreadyVerified, "Email already verified"},
	{auth.ErrGoogleAccount, http.StatusBadRequest, CodeGoogleAccount, "This account uses Google sign-in. Please continue with Google"},
	{auth.ErrGoogleNotConfigured, http.StatusServiceUnavailable, CodeGoogleNotConfigured, "Google sign-in is not available"},
	{auth.ErrGoogleEmailNotVerified, http.StatusForbidden, CodeEmailNotVerified, "Google account email is not verified"},

	// User errors
	{model.ErrUserSuspended, http.StatusForbidden, CodeAccountSuspended, "Account is suspended"},
	{model.ErrNotAdmin, http.StatusForbidden, CodeAdminRequired, "Admin access required"},
	{model.ErrForbidden, http.StatusForbidden, CodeForbidden, "You are not allowed to modify this resource"},
	{model.ErrUserNotFound, http.StatusNotFound, CodeUserNotFound, "User not found"},
	{model.ErrEmailTaken, http.StatusConflict, CodeEmailTaken, "Email already in use"},
	{user.ErrQueryTooShort, http.StatusBadRequest, CodeQueryTooShort, "Search query must be at least 2 characters"},

	// Friend errors
	{model.ErrCannotFriendSelf, http.StatusBadRequest, CodeCannotFriendSelf, "You cannot send a friend request to yourself"},
	{model.ErrAlreadyFriends, http.StatusConflict, CodeAlreadyFriends, "You are already friends"},
	{model.ErrFriendRequestExists, http.StatusConflict, CodeFriendRequestExists, "Friend request already sent"},
	{model.ErrFriendRequestNotFound, http.StatusNotFound, CodeFriendRequestNotFound, "Friend request not found"},
	{friend.ErrInvalidResponse, http.StatusBadRequest, CodeInvalidRequest, "Action must be Accepted or Rejected"},

	// Game errors
	{model.ErrGameNotFound, http.StatusNotFound, CodeGameNotFound, "Game not found"},
	{model.ErrGameNameTaken, http.StatusConflict, CodeGameNameTaken, "A game with this name already exists"},
	{model.ErrInvalidPlayerRange, http.StatusBadRequest, CodeInvalidPlayerRange, "Min players cannot exceed max players"},

	// Session errors
	{model.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound, "Session not found"},
	{model.ErrNotParticipant, http.StatusForbidden, CodeNotParticipant, "You are not a participant in this session"},
	{model.ErrPlayerEntryNotFound, http.StatusNotFound, CodePlayerEntryNotFound, "You are not a player in this session"},
	{model.ErrDuplicatePlayer, http.StatusBadRequest, CodeDuplicatePlayer, "A user appears more than once in this session"},
	{model.ErrNoPlayers, http.StatusBadRequest, CodeNoPlayers, "At least one player is required"},
	{model.ErrSessionAlreadyConfirmed, http.StatusConflict, CodeSessionConfirmed, "Session is already confirmed"},
	{model.ErrNoPendingPlayers, http.StatusBadRequest, CodeNoPendingPlayers, "No unconfirmed players to remind"},
	{model.ErrReminderCooldown, http.StatusTooManyRequests, CodeReminderCooldown, "A reminder was sent recently. Please try again later"},
	{model.ErrConcurrentUpdate, http.StatusConflict, CodeConcurrentUpdate, "Session was changed by someone else. Please reload and try again"},

	// Notification errors
	{model.ErrNotificationNotFound, http.StatusNotFound, CodeNotificationNotFound, "Notification not found"},

	// Admin errors
	{admin.ErrInvalidRange, http.StatusBadRequest, CodeInvalidRequest, "End date must not be before start date"},
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return &httpError{m.status, APIError{Code: m.code, Message: m.message}}
		}
	}
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewValidationError creates a validation error listing each invalid field
func NewValidationError(details []FieldError) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeValidationFailed, Message: "Validation failed", Details: details}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Authentication required"}}
}

// NewRateLimitedError creates a too-many-requests error
func NewRateLimitedError(message string) error {
	return &httpError{http.StatusTooManyRequests, APIError{Code: CodeRateLimited, Message: message}}
}

// NewNotFoundError creates a generic not found error
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{Code: CodeNotFound, Message: "Resource not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
