package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gysagsohn/game-tracker-server/internal/dependencies/clock"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Documents are copied on every read and write so callers never share state.
type Storage struct {
	mu    sync.RWMutex
	clock clock.Clock

	users         map[model.UserID]*model.User
	emailIndex    map[string]model.UserID
	games         map[model.GameID]*model.Game
	slugIndex     map[string]model.GameID
	sessions      map[model.SessionID]*model.Session
	notifications map[model.NotificationID]*model.Notification
	counters      map[string]counter
}

type counter struct {
	value     int64
	expiresAt time.Time
}

// New creates a new in-memory storage instance
func New(clk clock.Clock) *Storage {
	if clk == nil {
		clk = clock.New()
	}
	return &Storage{
		clock:         clk,
		users:         make(map[model.UserID]*model.User),
		emailIndex:    make(map[string]model.UserID),
		games:         make(map[model.GameID]*model.Game),
		slugIndex:     make(map[string]model.GameID),
		sessions:      make(map[model.SessionID]*model.Session),
		notifications: make(map[model.NotificationID]*model.Notification),
		counters:      make(map[string]counter),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, ok := s.emailIndex[email]; ok {
		return model.ErrEmailTaken
	}
	s.users[user.ID] = user.Clone()
	s.emailIndex[email] = user.ID
	return nil
}

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return model.ErrUserNotFound
	}
	email := strings.ToLower(user.Email)
	if owner, taken := s.emailIndex[email]; taken && owner != user.ID {
		return model.ErrEmailTaken
	}
	delete(s.emailIndex, strings.ToLower(existing.Email))
	s.emailIndex[email] = user.ID
	s.users[user.ID] = user.Clone()
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user.Clone(), nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[strings.ToLower(email)]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user.Clone(), nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.Clone())
	}
	storage.SortUsers(users)
	return users, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		delete(s.emailIndex, strings.ToLower(user.Email))
		delete(s.users, id)
	}
	return nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, taken := s.slugIndex[game.Slug]; taken && owner != game.ID {
		return model.ErrGameNameTaken
	}
	if existing, ok := s.games[game.ID]; ok {
		delete(s.slugIndex, existing.Slug)
	}
	s.slugIndex[game.Slug] = game.ID
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) GetGameBySlug(ctx context.Context, slug string) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.slugIndex[slug]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return s.games[id].Clone(), nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]*model.Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, g.Clone())
	}
	storage.SortGames(games)
	return games, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game, ok := s.games[id]; ok {
		delete(s.slugIndex, game.Slug)
		delete(s.games, id)
	}
	return nil
}

// Session operations

func (s *Storage) CreateSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.Version = 1
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *Storage) UpdateSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[session.ID]
	if !ok {
		return model.ErrSessionNotFound
	}
	if current.Version != session.Version {
		return model.ErrConcurrentUpdate
	}
	session.Version++
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	return s.filterSessions(func(*model.Session) bool { return true }), nil
}

func (s *Storage) ListSessionsForUser(ctx context.Context, userID model.UserID) ([]*model.Session, error) {
	return s.filterSessions(func(sess *model.Session) bool {
		return sess.HasParticipant(userID)
	}), nil
}

func (s *Storage) ListSessionsWithGuestEmail(ctx context.Context, email string) ([]*model.Session, error) {
	return s.filterSessions(func(sess *model.Session) bool {
		return len(sess.GuestIndexesByEmail(email)) > 0
	}), nil
}

func (s *Storage) filterSessions(keep func(*model.Session) bool) []*model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []*model.Session{}
	for _, sess := range s.sessions {
		if keep(sess) {
			result = append(result, sess.Clone())
		}
	}
	storage.SortSessions(result)
	return result
}

// Notification operations

func (s *Storage) SaveNotification(ctx context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = n.Clone()
	return nil
}

func (s *Storage) GetNotification(ctx context.Context, id model.NotificationID) (*model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, model.ErrNotificationNotFound
	}
	return n.Clone(), nil
}

func (s *Storage) ListNotificationsForUser(ctx context.Context, userID model.UserID) ([]*model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []*model.Notification{}
	for _, n := range s.notifications {
		if n.Recipient == userID {
			result = append(result, n.Clone())
		}
	}
	storage.SortNotifications(result)
	return result, nil
}

func (s *Storage) DeleteNotificationsForUser(ctx context.Context, userID model.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.notifications {
		if n.Recipient == userID {
			delete(s.notifications, id)
		}
	}
	return nil
}

// Counter operations

func (s *Storage) IncrementCounter(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	c, ok := s.counters[key]
	if !ok || !now.Before(c.expiresAt) {
		c = counter{expiresAt: now.Add(ttl)}
	}
	c.value++
	s.counters[key] = c
	return c.value, nil
}

// PruneCounters drops expired counters and returns how many were removed
func (s *Storage) PruneCounters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	removed := 0
	for key, c := range s.counters {
		if !now.Before(c.expiresAt) {
			delete(s.counters, key)
			removed++
		}
	}
	return removed
}
