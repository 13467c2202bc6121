package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Documents are stored as JSON strings with SET-based secondary indexes.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getDoc[T any](ctx context.Context, c getter, key string, notFound error) (*T, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}
	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// listFromIndex loads every document whose id is a member of indexKey
func listFromIndex[T any](ctx context.Context, c *redis.Client, indexKey string, docKey func(string) string) ([]*T, error) {
	ids, err := c.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*T{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(id)
	}
	values, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	docs := make([]*T, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Document may have expired
		}
		var doc T
		if err := json.Unmarshal([]byte(str), &doc); err != nil {
			continue // Skip invalid data
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	claimed, err := s.client.SetNX(ctx, emailIndexKey(user.Email), string(user.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrEmailTaken
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, userKey(user.ID), data, 0)
	pipe.SAdd(ctx, usersIndexKey(), string(user.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	existing, err := s.GetUser(ctx, user.ID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	emailChanged := emailIndexKey(existing.Email) != emailIndexKey(user.Email)
	if emailChanged {
		claimed, err := s.client.SetNX(ctx, emailIndexKey(user.Email), string(user.ID), 0).Result()
		if err != nil {
			return err
		}
		if !claimed {
			return model.ErrEmailTaken
		}
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, userKey(user.ID), data, 0)
	if emailChanged {
		pipe.Del(ctx, emailIndexKey(existing.Email))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return getDoc[model.User](ctx, s.client, userKey(id), model.ErrUserNotFound)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	id, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUser(ctx, model.UserID(id))
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := listFromIndex[model.User](ctx, s.client, usersIndexKey(), func(id string) string {
		return userKey(model.UserID(id))
	})
	if err != nil {
		return nil, err
	}
	storage.SortUsers(users)
	return users, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id model.UserID) error {
	user, err := s.GetUser(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, userKey(id), emailIndexKey(user.Email))
	pipe.SRem(ctx, usersIndexKey(), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	existing, err := s.GetGame(ctx, game.ID)
	if err != nil && !errors.Is(err, model.ErrGameNotFound) {
		return err
	}

	if existing == nil || existing.Slug != game.Slug {
		claimed, err := s.client.SetNX(ctx, slugIndexKey(game.Slug), string(game.ID), 0).Result()
		if err != nil {
			return err
		}
		if !claimed {
			return model.ErrGameNameTaken
		}
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, gameKey(game.ID), data, 0)
	pipe.SAdd(ctx, gamesIndexKey(), string(game.ID))
	if existing != nil && existing.Slug != game.Slug {
		pipe.Del(ctx, slugIndexKey(existing.Slug))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return getDoc[model.Game](ctx, s.client, gameKey(id), model.ErrGameNotFound)
}

func (s *Storage) GetGameBySlug(ctx context.Context, slug string) (*model.Game, error) {
	id, err := s.client.Get(ctx, slugIndexKey(slug)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}
	return s.GetGame(ctx, model.GameID(id))
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	games, err := listFromIndex[model.Game](ctx, s.client, gamesIndexKey(), func(id string) string {
		return gameKey(model.GameID(id))
	})
	if err != nil {
		return nil, err
	}
	storage.SortGames(games)
	return games, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	game, err := s.GetGame(ctx, id)
	if errors.Is(err, model.ErrGameNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, gameKey(id), slugIndexKey(game.Slug))
	pipe.SRem(ctx, gamesIndexKey(), string(id))
	_, err = pipe.Exec(ctx)
	return err
}

// Session operations

func (s *Storage) CreateSession(ctx context.Context, session *model.Session) error {
	next := session.Clone()
	next.Version = 1
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), data, 0)
	pipe.SAdd(ctx, sessionsIndexKey(), string(session.ID))
	reindexSession(ctx, pipe, nil, next)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	session.Version = 1
	return nil
}

func (s *Storage) UpdateSession(ctx context.Context, session *model.Session) error {
	key := sessionKey(session.ID)

	// WATCH aborts the transaction if another writer touches the key first
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := getDoc[model.Session](ctx, tx, key, model.ErrSessionNotFound)
		if err != nil {
			return err
		}
		if current.Version != session.Version {
			return model.ErrConcurrentUpdate
		}

		next := session.Clone()
		next.Version++
		data, err := json.Marshal(next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			reindexSession(ctx, pipe, current, next)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrConcurrentUpdate
	}
	if err != nil {
		return err
	}
	session.Version++
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return getDoc[model.Session](ctx, s.client, sessionKey(id), model.ErrSessionNotFound)
}

func (s *Storage) DeleteSession(ctx context.Context, id model.SessionID) error {
	current, err := s.GetSession(ctx, id)
	if errors.Is(err, model.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	pipe.SRem(ctx, sessionsIndexKey(), string(id))
	reindexSession(ctx, pipe, current, nil)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListSessions(ctx context.Context) ([]*model.Session, error) {
	return s.listSessions(ctx, sessionsIndexKey())
}

func (s *Storage) ListSessionsForUser(ctx context.Context, userID model.UserID) ([]*model.Session, error) {
	return s.listSessions(ctx, userSessionsIndexKey(userID))
}

func (s *Storage) ListSessionsWithGuestEmail(ctx context.Context, email string) ([]*model.Session, error) {
	sessions, err := s.listSessions(ctx, guestSessionsIndexKey(email))
	if err != nil {
		return nil, err
	}
	// The index is keyed by lowercase email; recheck against the documents
	result := sessions[:0]
	for _, sess := range sessions {
		if len(sess.GuestIndexesByEmail(email)) > 0 {
			result = append(result, sess)
		}
	}
	return result, nil
}

func (s *Storage) listSessions(ctx context.Context, indexKey string) ([]*model.Session, error) {
	sessions, err := listFromIndex[model.Session](ctx, s.client, indexKey, func(id string) string {
		return sessionKey(model.SessionID(id))
	})
	if err != nil {
		return nil, err
	}
	storage.SortSessions(sessions)
	return sessions, nil
}

// reindexSession moves index memberships from old to next; either may be nil
func reindexSession(ctx context.Context, pipe redis.Pipeliner, old, next *model.Session) {
	var id model.SessionID
	oldUsers, nextUsers := map[model.UserID]bool{}, map[model.UserID]bool{}
	oldEmails, nextEmails := map[string]bool{}, map[string]bool{}
	if old != nil {
		id = old.ID
		collectSessionIndexes(old, oldUsers, oldEmails)
	}
	if next != nil {
		id = next.ID
		collectSessionIndexes(next, nextUsers, nextEmails)
	}

	for u := range oldUsers {
		if !nextUsers[u] {
			pipe.SRem(ctx, userSessionsIndexKey(u), string(id))
		}
	}
	for u := range nextUsers {
		pipe.SAdd(ctx, userSessionsIndexKey(u), string(id))
	}
	for e := range oldEmails {
		if !nextEmails[e] {
			pipe.SRem(ctx, guestSessionsIndexKey(e), string(id))
		}
	}
	for e := range nextEmails {
		pipe.SAdd(ctx, guestSessionsIndexKey(e), string(id))
	}
}

func collectSessionIndexes(sess *model.Session, users map[model.UserID]bool, emails map[string]bool) {
	users[sess.CreatedBy] = true
	for _, p := range sess.Players {
		if p.User != nil {
			users[*p.User] = true
		} else if p.Email != "" {
			emails[strings.ToLower(p.Email)] = true
		}
	}
}

// Notification operations

func (s *Storage) SaveNotification(ctx context.Context, n *model.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}

	// Updates (mark read) keep the expiry set when the notification was created
	err = s.client.SetArgs(ctx, notificationKey(n.ID), data, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}

	indexKey := userNotificationsIndexKey(n.Recipient)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, notificationKey(n.ID), data, s.cfg.NotificationTTL)
	pipe.SAdd(ctx, indexKey, string(n.ID))
	if s.cfg.NotificationTTL > 0 {
		pipe.Expire(ctx, indexKey, s.cfg.NotificationTTL) // Keep index TTL in sync
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetNotification(ctx context.Context, id model.NotificationID) (*model.Notification, error) {
	return getDoc[model.Notification](ctx, s.client, notificationKey(id), model.ErrNotificationNotFound)
}

func (s *Storage) ListNotificationsForUser(ctx context.Context, userID model.UserID) ([]*model.Notification, error) {
	ns, err := listFromIndex[model.Notification](ctx, s.client, userNotificationsIndexKey(userID), func(id string) string {
		return notificationKey(model.NotificationID(id))
	})
	if err != nil {
		return nil, err
	}
	storage.SortNotifications(ns)
	return ns, nil
}

func (s *Storage) DeleteNotificationsForUser(ctx context.Context, userID model.UserID) error {
	indexKey := userNotificationsIndexKey(userID)
	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, notificationKey(model.NotificationID(id)))
	}
	pipe.Del(ctx, indexKey)
	_, err = pipe.Exec(ctx)
	return err
}

// Counter operations

func (s *Storage) IncrementCounter(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	k := counterKey(key)

	// Create with its TTL and increment in one transaction so a counter never outlives its window
	pipe := s.client.TxPipeline()
	pipe.SetNX(ctx, k, 0, ttl)
	incr := pipe.Incr(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
