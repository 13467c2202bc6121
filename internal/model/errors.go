package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already in use")
	ErrUserSuspended    = errors.New("account is suspended")
	ErrNotAdmin         = errors.New("admin access required")
	ErrForbidden        = errors.New("not allowed to modify this resource")
	ErrCannotFriendSelf = errors.New("cannot send a friend request to yourself")

	// Friend errors
	ErrAlreadyFriends        = errors.New("users are already friends")
	ErrFriendRequestExists   = errors.New("friend request already sent")
	ErrFriendRequestNotFound = errors.New("friend request not found")

	// Game errors
	ErrGameNotFound       = errors.New("game not found")
	ErrGameNameTaken      = errors.New("game name already exists")
	ErrInvalidPlayerRange = errors.New("min players cannot exceed max players")

	// Session errors
	ErrSessionNotFound         = errors.New("session not found")
	ErrNotParticipant          = errors.New("not a participant in this session")
	ErrPlayerEntryNotFound     = errors.New("no player entry for this user in session")
	ErrDuplicatePlayer         = errors.New("user appears more than once in session")
	ErrNoPlayers               = errors.New("session requires at least one player")
	ErrSessionAlreadyConfirmed = errors.New("session is already confirmed")
	ErrNoPendingPlayers        = errors.New("no unconfirmed players to remind")
	ErrReminderCooldown        = errors.New("reminder sent too recently")
	ErrConcurrentUpdate        = errors.New("session was modified concurrently")

	// Notification errors
	ErrNotificationNotFound = errors.New("notification not found")
)
