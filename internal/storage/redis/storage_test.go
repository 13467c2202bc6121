package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/gysagsohn/game-tracker-server/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.NotificationTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func uid(id string) *model.UserID {
	u := model.UserID(id)
	return &u
}

// User tests

func (s *StorageSuite) TestCreateAndGetUser() {
	user := &model.User{
		ID:        "user-1",
		FirstName: "Alice",
		Email:     "alice@example.com",
		Friends:   []model.UserID{"user-2"},
		CreatedAt: s.now,
	}
	s.Require().NoError(s.storage.CreateUser(s.ctx, user))

	retrieved, err := s.storage.GetUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("Alice", retrieved.FirstName)
	s.Equal([]model.UserID{"user-2"}, retrieved.Friends)
	s.True(s.now.Equal(retrieved.CreatedAt))

	byEmail, err := s.storage.GetUserByEmail(s.ctx, "Alice@Example.com")
	s.Require().NoError(err)
	s.Equal(model.UserID("user-1"), byEmail.ID)
}

func (s *StorageSuite) TestCreateUserDuplicateEmail() {
	s.Require().NoError(s.storage.CreateUser(s.ctx, &model.User{ID: "user-1", Email: "a@example.com"}))
	err := s.storage.CreateUser(s.ctx, &model.User{ID: "user-2", Email: "a@example.com"})
	s.ErrorIs(err, model.ErrEmailTaken)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.storage.GetUserByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestSaveUserChangesEmail() {
	user := &model.User{ID: "user-1", Email: "old@example.com"}
	s.Require().NoError(s.storage.CreateUser(s.ctx, user))
	s.Require().NoError(s.storage.CreateUser(s.ctx, &model.User{ID: "user-2", Email: "taken@example.com"}))

	user.Email = "taken@example.com"
	s.ErrorIs(s.storage.SaveUser(s.ctx, user), model.ErrEmailTaken)

	user.Email = "new@example.com"
	s.Require().NoError(s.storage.SaveUser(s.ctx, user))
	s.False(s.mini.Exists(emailIndexKey("old@example.com")))

	retrieved, err := s.storage.GetUserByEmail(s.ctx, "new@example.com")
	s.Require().NoError(err)
	s.Equal(model.UserID("user-1"), retrieved.ID)
}

func (s *StorageSuite) TestListAndDeleteUsers() {
	_ = s.storage.CreateUser(s.ctx, &model.User{ID: "user-1", Email: "a@example.com", CreatedAt: s.now})
	_ = s.storage.CreateUser(s.ctx, &model.User{ID: "user-2", Email: "b@example.com", CreatedAt: s.now.Add(time.Minute)})

	users, err := s.storage.ListUsers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal(model.UserID("user-1"), users[0].ID)

	s.Require().NoError(s.storage.DeleteUser(s.ctx, "user-1"))
	users, _ = s.storage.ListUsers(s.ctx)
	s.Len(users, 1)
	s.False(s.mini.Exists(emailIndexKey("a@example.com")))
}

// Game tests

func (s *StorageSuite) TestSaveAndGetGame() {
	game := &model.Game{ID: "game-1", Name: "Catan", Slug: "catan", Category: model.CategoryBoard}
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))

	retrieved, err := s.storage.GetGameBySlug(s.ctx, "catan")
	s.Require().NoError(err)
	s.Equal(model.CategoryBoard, retrieved.Category)

	err = s.storage.SaveGame(s.ctx, &model.Game{ID: "game-2", Name: "catan", Slug: "catan"})
	s.ErrorIs(err, model.ErrGameNameTaken)

	// Saving the same game again keeps its own slug
	s.NoError(s.storage.SaveGame(s.ctx, game))
}

func (s *StorageSuite) TestDeleteGame() {
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "game-1", Name: "Catan", Slug: "catan"})
	s.Require().NoError(s.storage.DeleteGame(s.ctx, "game-1"))

	_, err := s.storage.GetGame(s.ctx, "game-1")
	s.ErrorIs(err, model.ErrGameNotFound)
	games, _ := s.storage.ListGames(s.ctx)
	s.Empty(games)
}

// Session tests

func (s *StorageSuite) TestCreateSessionIndexesParticipants() {
	score := 10
	sess := &model.Session{
		ID:        "s-1",
		CreatedBy: "user-1",
		Date:      s.now,
		Players: []model.Player{
			{User: uid("user-1"), Score: &score, Result: model.ResultWin},
			{User: uid("user-2")},
			{Name: "Guest", Email: "Guest@Example.com"},
		},
	}
	s.Require().NoError(s.storage.CreateSession(s.ctx, sess))
	s.Equal(int64(1), sess.Version)

	for _, u := range []model.UserID{"user-1", "user-2"} {
		list, err := s.storage.ListSessionsForUser(s.ctx, u)
		s.Require().NoError(err)
		s.Len(list, 1)
	}

	guests, err := s.storage.ListSessionsWithGuestEmail(s.ctx, "guest@example.com")
	s.Require().NoError(err)
	s.Require().Len(guests, 1)
	s.Equal(10, *guests[0].Players[0].Score)
}

func (s *StorageSuite) TestUpdateSessionReindexes() {
	sess := &model.Session{
		ID:        "s-1",
		CreatedBy: "user-1",
		Players: []model.Player{
			{User: uid("user-1")},
			{User: uid("user-2")},
			{Name: "Guest", Email: "guest@example.com"},
		},
	}
	s.Require().NoError(s.storage.CreateSession(s.ctx, sess))

	sess.RemovePlayer("user-2")
	sess.Players[1].User = uid("user-3")
	s.Require().NoError(s.storage.UpdateSession(s.ctx, sess))
	s.Equal(int64(2), sess.Version)

	list, _ := s.storage.ListSessionsForUser(s.ctx, "user-2")
	s.Empty(list)
	list, _ = s.storage.ListSessionsForUser(s.ctx, "user-3")
	s.Len(list, 1)
	list, _ = s.storage.ListSessionsWithGuestEmail(s.ctx, "guest@example.com")
	s.Empty(list)
}

func (s *StorageSuite) TestUpdateSessionRejectsStaleVersion() {
	sess := &model.Session{ID: "s-1", CreatedBy: "user-1"}
	s.Require().NoError(s.storage.CreateSession(s.ctx, sess))

	first, _ := s.storage.GetSession(s.ctx, "s-1")
	second, _ := s.storage.GetSession(s.ctx, "s-1")

	first.Notes = "first"
	s.Require().NoError(s.storage.UpdateSession(s.ctx, first))

	second.Notes = "second"
	s.ErrorIs(s.storage.UpdateSession(s.ctx, second), model.ErrConcurrentUpdate)
	s.Equal(int64(1), second.Version)

	stored, _ := s.storage.GetSession(s.ctx, "s-1")
	s.Equal("first", stored.Notes)
	s.Equal(int64(2), stored.Version)
}

func (s *StorageSuite) TestUpdateSessionNotFound() {
	err := s.storage.UpdateSession(s.ctx, &model.Session{ID: "missing"})
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteSessionClearsIndexes() {
	sess := &model.Session{
		ID:        "s-1",
		CreatedBy: "user-1",
		Players:   []model.Player{{User: uid("user-1")}, {Name: "G", Email: "g@example.com"}},
	}
	s.Require().NoError(s.storage.CreateSession(s.ctx, sess))
	s.Require().NoError(s.storage.DeleteSession(s.ctx, "s-1"))

	_, err := s.storage.GetSession(s.ctx, "s-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
	all, _ := s.storage.ListSessions(s.ctx)
	s.Empty(all)
	s.False(s.mini.Exists(userSessionsIndexKey("user-1")))
	s.False(s.mini.Exists(guestSessionsIndexKey("g@example.com")))
}

func (s *StorageSuite) TestListSessionsOrdering() {
	_ = s.storage.CreateSession(s.ctx, &model.Session{ID: "s-old", CreatedBy: "user-1", Date: s.now})
	_ = s.storage.CreateSession(s.ctx, &model.Session{ID: "s-new", CreatedBy: "user-1", Date: s.now.Add(24 * time.Hour)})

	list, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(model.SessionID("s-new"), list[0].ID)
}

// Notification tests

func (s *StorageSuite) TestNotifications() {
	sid := model.SessionID("s-1")
	_ = s.storage.SaveNotification(s.ctx, &model.Notification{ID: "n-1", Recipient: "user-1", Session: &sid, CreatedAt: s.now})
	_ = s.storage.SaveNotification(s.ctx, &model.Notification{ID: "n-2", Recipient: "user-1", CreatedAt: s.now.Add(time.Second)})

	list, err := s.storage.ListNotificationsForUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(model.NotificationID("n-2"), list[0].ID)
	s.Equal(sid, *list[1].Session)

	s.True(s.mini.TTL(notificationKey("n-1")) > 0, "Notification should have TTL")

	// Marking read keeps the original expiry
	s.mini.FastForward(30 * time.Minute)
	n1, err := s.storage.GetNotification(s.ctx, "n-1")
	s.Require().NoError(err)
	n1.Read = true
	s.Require().NoError(s.storage.SaveNotification(s.ctx, n1))
	s.True(s.mini.TTL(notificationKey("n-1")) <= 30*time.Minute)
	got, err := s.storage.GetNotification(s.ctx, "n-1")
	s.Require().NoError(err)
	s.True(got.Read)

	s.Require().NoError(s.storage.DeleteNotificationsForUser(s.ctx, "user-1"))
	_, err = s.storage.GetNotification(s.ctx, "n-1")
	s.ErrorIs(err, model.ErrNotificationNotFound)
}

func (s *StorageSuite) TestExpiredNotificationsSkipped() {
	_ = s.storage.SaveNotification(s.ctx, &model.Notification{ID: "n-1", Recipient: "user-1"})
	s.mini.Del(notificationKey("n-1"))

	list, err := s.storage.ListNotificationsForUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Empty(list)
}

// Counter tests

func (s *StorageSuite) TestIncrementCounter() {
	n, err := s.storage.IncrementCounter(s.ctx, "invite:a@example.com:2025-03-01", time.Hour)
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	n, _ = s.storage.IncrementCounter(s.ctx, "invite:a@example.com:2025-03-01", time.Hour)
	s.Equal(int64(2), n)

	s.mini.FastForward(time.Hour + time.Second)
	n, _ = s.storage.IncrementCounter(s.ctx, "invite:a@example.com:2025-03-01", time.Hour)
	s.Equal(int64(1), n)
}

func (s *StorageSuite) TestIncrementCounterAlwaysExpires() {
	key := "ratelimit:auth:10.0.0.1:1740852000"
	for range 3 {
		_, err := s.storage.IncrementCounter(s.ctx, key, time.Minute)
		s.Require().NoError(err)
	}
	ttl := s.mini.TTL(counterKey(key))
	s.True(ttl > 0 && ttl <= time.Minute, "counter ttl %s", ttl)

	// Later increments do not extend the window
	s.mini.FastForward(40 * time.Second)
	n, err := s.storage.IncrementCounter(s.ctx, key, time.Minute)
	s.Require().NoError(err)
	s.Equal(int64(4), n)
	s.True(s.mini.TTL(counterKey(key)) <= 20*time.Second)
}
