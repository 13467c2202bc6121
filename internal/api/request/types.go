package request

import "time"

// SignupRequest is the request body for creating a local account
type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required,trimmed_min=1,max=50"`
	LastName  string `json:"lastName" validate:"required,trimmed_min=1,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// EmailRequest carries a single email address (forgot password, resend verification)
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the request body for completing a password reset
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateProfileRequest lists the profile fields a user may change
type UpdateProfileRequest struct {
	FirstName     *string  `json:"firstName" validate:"omitempty,trimmed_min=1,max=50"`
	LastName      *string  `json:"lastName" validate:"omitempty,trimmed_min=1,max=50"`
	ProfileIcon   *string  `json:"profileIcon" validate:"omitempty,max=500"`
	FavoriteGames []string `json:"favoriteGames" validate:"omitempty,max=50,dive,required"`
}

// CreateGameRequest is the request body for adding a catalog game
type CreateGameRequest struct {
	Name           string `json:"name" validate:"required,trimmed_min=1,max=100"`
	Description    string `json:"description" validate:"max=500"`
	Category       string `json:"category" validate:"required,oneof=Card Board Dice Word Strategy Trivia Party Other"`
	CustomCategory string `json:"customCategory" validate:"max=50"`
	MinPlayers     int    `json:"minPlayers" validate:"omitempty,min=1,max=100"`
	MaxPlayers     int    `json:"maxPlayers" validate:"omitempty,min=1,max=100"`
}

// UpdateGameRequest is the request body for editing a catalog game
type UpdateGameRequest struct {
	Name           *string `json:"name" validate:"omitempty,trimmed_min=1,max=100"`
	Description    *string `json:"description" validate:"omitempty,max=500"`
	Category       *string `json:"category" validate:"omitempty,oneof=Card Board Dice Word Strategy Trivia Party Other"`
	CustomCategory *string `json:"customCategory" validate:"omitempty,max=50"`
	MinPlayers     *int    `json:"minPlayers" validate:"omitempty,min=1,max=100"`
	MaxPlayers     *int    `json:"maxPlayers" validate:"omitempty,min=1,max=100"`
}

// PlayerRequest is one player entry in a session request.
// A missing user marks a guest.
type PlayerRequest struct {
	User    *string `json:"user"`
	Name    string  `json:"name" validate:"required,trimmed_min=1,max=100"`
	Email   string  `json:"email" validate:"omitempty,email"`
	Score   *int    `json:"score"`
	Result  string  `json:"result" validate:"omitempty,oneof=Win Loss Draw"`
	Invited bool    `json:"invited"`
}

// CreateSessionRequest is the request body for recording a session
type CreateSessionRequest struct {
	Game    string          `json:"game" validate:"required"`
	Players []PlayerRequest `json:"players" validate:"required,min=1,dive"`
	Notes   string          `json:"notes" validate:"max=2000"`
	Date    *time.Time      `json:"date"`
}

// UpdateSessionRequest is the request body for editing a session
type UpdateSessionRequest struct {
	Game    *string         `json:"game" validate:"omitempty,min=1"`
	Players []PlayerRequest `json:"players" validate:"omitempty,min=1,dive"`
	Notes   *string         `json:"notes" validate:"omitempty,max=2000"`
	Date    *time.Time      `json:"date"`
}

// SendFriendRequest is the request body for sending a friend request by email
type SendFriendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RespondFriendRequest is the request body for answering a friend request
type RespondFriendRequest struct {
	SenderID string `json:"senderId" validate:"required"`
	Action   string `json:"action" validate:"required,oneof=Accepted Rejected"`
}

// UnfriendRequest is the request body for removing a friend
type UnfriendRequest struct {
	FriendID string `json:"friendId" validate:"required"`
}

// AdminUpdateUserRequest lists the account fields an admin may change
type AdminUpdateUserRequest struct {
	FirstName       *string `json:"firstName" validate:"omitempty,trimmed_min=1,max=50"`
	LastName        *string `json:"lastName" validate:"omitempty,trimmed_min=1,max=50"`
	Role            *string `json:"role" validate:"omitempty,oneof=user admin"`
	IsSuspended     *bool   `json:"isSuspended"`
	IsEmailVerified *bool   `json:"isEmailVerified"`
}
