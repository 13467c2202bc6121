package redis

import (
	"fmt"
	"strings"

	"github.com/gysagsohn/game-tracker-server/internal/model"
)

// Key prefix for all tracker data
const keyPrefix = "gtrack"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// emailIndexKey returns the Redis key for the email -> user_id index
func emailIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", keyPrefix, strings.ToLower(email))
}

// usersIndexKey returns the Redis key for the SET of all user ids
func usersIndexKey() string {
	return fmt.Sprintf("%s:idx:users", keyPrefix)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// slugIndexKey returns the Redis key for the slug -> game_id index
func slugIndexKey(slug string) string {
	return fmt.Sprintf("%s:idx:game_slug:%s", keyPrefix, slug)
}

// gamesIndexKey returns the Redis key for the SET of all game ids
func gamesIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionsIndexKey returns the Redis key for the SET of all session ids
func sessionsIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}

// userSessionsIndexKey returns the Redis key for the SET of sessions a user takes part in
func userSessionsIndexKey(id model.UserID) string {
	return fmt.Sprintf("%s:idx:user_sessions:%s", keyPrefix, id)
}

// guestSessionsIndexKey returns the Redis key for the SET of sessions with a guest using email
func guestSessionsIndexKey(email string) string {
	return fmt.Sprintf("%s:idx:guest_sessions:%s", keyPrefix, strings.ToLower(email))
}

// notificationKey returns the Redis key for a Notification
func notificationKey(id model.NotificationID) string {
	return fmt.Sprintf("%s:notification:%s", keyPrefix, id)
}

// userNotificationsIndexKey returns the Redis key for the SET of a user's notifications
func userNotificationsIndexKey(id model.UserID) string {
	return fmt.Sprintf("%s:idx:user_notifications:%s", keyPrefix, id)
}

// counterKey returns the Redis key for a named counter
func counterKey(name string) string {
	return fmt.Sprintf("%s:counter:%s", keyPrefix, name)
}
