package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/gysagsohn/game-tracker-server/internal/dependencies/mocks"
	"github.com/gysagsohn/game-tracker-server/internal/model"
)

type StorageSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	s.storage = New(s.clock)
	s.ctx = context.Background()
}

func uid(id string) *model.UserID {
	u := model.UserID(id)
	return &u
}

// User tests

func (s *StorageSuite) TestCreateAndGetUser() {
	user := &model.User{ID: "user-1", FirstName: "Alice", Email: "alice@example.com"}
	s.Require().NoError(s.storage.CreateUser(s.ctx, user))

	retrieved, err := s.storage.GetUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal("Alice", retrieved.FirstName)

	byEmail, err := s.storage.GetUserByEmail(s.ctx, "ALICE@example.com")
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
}

func (s *StorageSuite) TestSaveUserUpdatesEmailIndex() {
	user := &model.User{ID: "user-1", Email: "old@example.com"}
	s.Require().NoError(s.storage.CreateUser(s.ctx, user))

	user.Email = "new@example.com"
	s.Require().NoError(s.storage.SaveUser(s.ctx, user))

	_, err := s.storage.GetUserByEmail(s.ctx, "old@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.storage.GetUserByEmail(s.ctx, "new@example.com")
	s.NoError(err)
}

func (s *StorageSuite) TestReturnedUserIsACopy() {
	s.Require().NoError(s.storage.CreateUser(s.ctx, &model.User{ID: "user-1", Email: "a@example.com"}))

	u, _ := s.storage.GetUser(s.ctx, "user-1")
	u.Friends = append(u.Friends, "user-2")

	again, _ := s.storage.GetUser(s.ctx, "user-1")
	s.Empty(again.Friends)
}

func (s *StorageSuite) TestDeleteUser() {
	s.Require().NoError(s.storage.CreateUser(s.ctx, &model.User{ID: "user-1", Email: "a@example.com"}))
	s.Require().NoError(s.storage.DeleteUser(s.ctx, "user-1"))

	_, err := s.storage.GetUserByEmail(s.ctx, "a@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Game tests

func (s *StorageSuite) TestSaveGameSlugUnique() {
	s.Require().NoError(s.storage.SaveGame(s.ctx, &model.Game{ID: "game-1", Name: "Catan", Slug: "catan"}))
	err := s.storage.SaveGame(s.ctx, &model.Game{ID: "game-2", Name: "CATAN", Slug: "catan"})
	s.ErrorIs(err, model.ErrGameNameTaken)

	g, err := s.storage.GetGameBySlug(s.ctx, "catan")
	s.Require().NoError(err)
	s.Equal(model.GameID("game-1"), g.ID)
}

func (s *StorageSuite) TestRenameGameFreesOldSlug() {
	game := &model.Game{ID: "game-1", Name: "Catan", Slug: "catan"}
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))
	game.Name, game.Slug = "Settlers", "settlers"
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))

	_, err := s.storage.GetGameBySlug(s.ctx, "catan")
	s.ErrorIs(err, model.ErrGameNotFound)
}

// Session tests

func (s *StorageSuite) TestCreateSessionSetsVersion() {
	sess := &model.Session{ID: "s-1", CreatedBy: "user-1"}
	s.Require().NoError(s.storage.CreateSession(s.ctx, sess))
	s.Equal(int64(1), sess.Version)
}

func (s *StorageSuite) TestUpdateSessionRejectsStaleVersion() {
	sess := &model.Session{ID: "s-1", CreatedBy: "user-1"}
	s.Require().NoError(s.storage.CreateSession(s.ctx, sess))

	first, _ := s.storage.GetSession(s.ctx, "s-1")
	second, _ := s.storage.GetSession(s.ctx, "s-1")

	first.Notes = "first"
	s.Require().NoError(s.storage.UpdateSession(s.ctx, first))
	s.Equal(int64(2), first.Version)

	second.Notes = "second"
	err := s.storage.UpdateSession(s.ctx, second)
	s.ErrorIs(err, model.ErrConcurrentUpdate)

	stored, _ := s.storage.GetSession(s.ctx, "s-1")
	s.Equal("first", stored.Notes)
}

func (s *StorageSuite) TestUpdateSessionNotFound() {
	err := s.storage.UpdateSession(s.ctx, &model.Session{ID: "missing"})
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestListSessionsForUser() {
	now := s.clock.Now()
	_ = s.storage.CreateSession(s.ctx, &model.Session{ID: "s-1", CreatedBy: "user-1", Date: now})
	_ = s.storage.CreateSession(s.ctx, &model.Session{
		ID: "s-2", CreatedBy: "user-3", Date: now.Add(time.Hour),
		Players: []model.Player{{User: uid("user-1")}},
	})
	_ = s.storage.CreateSession(s.ctx, &model.Session{ID: "s-3", CreatedBy: "user-3", Date: now})

	sessions, err := s.storage.ListSessionsForUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(sessions, 2)
	s.Equal(model.SessionID("s-2"), sessions[0].ID)
	s.Equal(model.SessionID("s-1"), sessions[1].ID)
}

func (s *StorageSuite) TestListSessionsWithGuestEmail() {
	_ = s.storage.CreateSession(s.ctx, &model.Session{
		ID: "s-1", CreatedBy: "user-1",
		Players: []model.Player{{Name: "Guest", Email: "Guest@Example.com"}},
	})
	_ = s.storage.CreateSession(s.ctx, &model.Session{
		ID: "s-2", CreatedBy: "user-1",
		Players: []model.Player{{User: uid("user-2"), Email: "guest@example.com"}},
	})

	sessions, err := s.storage.ListSessionsWithGuestEmail(s.ctx, "guest@example.com")
	s.Require().NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal(model.SessionID("s-1"), sessions[0].ID)
}

// Notification tests

func (s *StorageSuite) TestListNotificationsNewestFirst() {
	now := s.clock.Now()
	_ = s.storage.SaveNotification(s.ctx, &model.Notification{ID: "n-1", Recipient: "user-1", CreatedAt: now})
	_ = s.storage.SaveNotification(s.ctx, &model.Notification{ID: "n-2", Recipient: "user-1", CreatedAt: now.Add(time.Minute)})
	_ = s.storage.SaveNotification(s.ctx, &model.Notification{ID: "n-3", Recipient: "user-2", CreatedAt: now})

	ns, err := s.storage.ListNotificationsForUser(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(ns, 2)
	s.Equal(model.NotificationID("n-2"), ns[0].ID)

	s.Require().NoError(s.storage.DeleteNotificationsForUser(s.ctx, "user-1"))
	ns, _ = s.storage.ListNotificationsForUser(s.ctx, "user-1")
	s.Empty(ns)
}

// Counter tests

func (s *StorageSuite) TestIncrementCounterExpires() {
	n, err := s.storage.IncrementCounter(s.ctx, "k", time.Hour)
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	n, _ = s.storage.IncrementCounter(s.ctx, "k", time.Hour)
	s.Equal(int64(2), n)

	s.clock.Advance(time.Hour)
	n, _ = s.storage.IncrementCounter(s.ctx, "k", time.Hour)
	s.Equal(int64(1), n)
}

func (s *StorageSuite) TestPruneCounters() {
	_, _ = s.storage.IncrementCounter(s.ctx, "short", time.Minute)
	_, _ = s.storage.IncrementCounter(s.ctx, "long", time.Hour)

	s.clock.Advance(2 * time.Minute)
	s.Equal(1, s.storage.PruneCounters())
	s.Equal(0, s.storage.PruneCounters())
}
