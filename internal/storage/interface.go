package storage

import (
	"context"
	"time"

	"github.com/gysagsohn/game-tracker-server/internal/model"
)

// Storage defines the interface for data persistence.
// Every write is atomic for a single document only.
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	DeleteUser(ctx context.Context, id model.UserID) error

	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	GetGameBySlug(ctx context.Context, slug string) (*model.Game, error)
	ListGames(ctx context.Context) ([]*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error

	// Session operations
	CreateSession(ctx context.Context, session *model.Session) error
	// UpdateSession saves session only if the stored Version matches,
	// returning model.ErrConcurrentUpdate otherwise. On success Version is incremented.
	UpdateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	DeleteSession(ctx context.Context, id model.SessionID) error
	ListSessions(ctx context.Context) ([]*model.Session, error)
	ListSessionsForUser(ctx context.Context, userID model.UserID) ([]*model.Session, error)
	ListSessionsWithGuestEmail(ctx context.Context, email string) ([]*model.Session, error)

	// Notification operations
	SaveNotification(ctx context.Context, n *model.Notification) error
	GetNotification(ctx context.Context, id model.NotificationID) (*model.Notification, error)
	ListNotificationsForUser(ctx context.Context, userID model.UserID) ([]*model.Notification, error)
	DeleteNotificationsForUser(ctx context.Context, userID model.UserID) error

	// IncrementCounter adds one to the counter at key and returns the new value.
	// The counter expires ttl after its first increment.
	IncrementCounter(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
