package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/gysagsohn/game-tracker-server/internal/dependencies/mocks"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/storage/memory"
	"github.com/gysagsohn/game-tracker-server/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	s.storage = memory.New(s.clock)
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) createUser(id, first, last, email string) *model.User {
	u := &model.User{ID: model.UserID(id), FirstName: first, LastName: last, Email: email, CreatedAt: s.clock.Now()}
	s.Require().NoError(s.storage.CreateUser(s.ctx, u))
	s.clock.Advance(time.Second)
	return u
}

func ptr[T any](v T) *T { return &v }

func (s *ServiceSuite) TestUpdateProfileSanitises() {
	s.createUser("user-1", "Alice", "Smith", "alice@example.com")

	u, err := s.service.UpdateProfile(s.ctx, "user-1", ProfileUpdate{
		FirstName:     ptr("  <b>Ally</b> "),
		FavoriteGames: []model.GameID{"g1", "g1", "g2"},
	})
	s.Require().NoError(err)
	s.Equal("Ally", u.FirstName)
	s.Equal("Smith", u.LastName)
	s.Equal([]model.GameID{"g1", "g2"}, u.FavoriteGames)

	stored, _ := s.storage.GetUser(s.ctx, "user-1")
	s.Equal("Ally", stored.FirstName)
	s.Equal(ActivityUpdatedProfile, stored.ActivityLog[0].Action)
}

func (s *ServiceSuite) TestSearch() {
	s.createUser("me", "Sam", "Searcher", "sam@example.com")
	s.createUser("user-1", "Alice", "Smith", "alice@example.com")
	s.createUser("user-2", "Bob", "Samson", "bob@example.com")
	suspended := s.createUser("user-3", "Samantha", "X", "samx@example.com")
	suspended.IsSuspended = true
	_ = s.storage.SaveUser(s.ctx, suspended)

	results, err := s.service.Search(s.ctx, "me", "SAM")
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(model.UserID("user-2"), results[0].ID)
}

func (s *ServiceSuite) TestSearchTooShort() {
	_, err := s.service.Search(s.ctx, "me", " a ")
	s.ErrorIs(err, ErrQueryTooShort)
}

func (s *ServiceSuite) TestSearchCapsResults() {
	for i := 0; i < 15; i++ {
		s.createUser(fmt.Sprintf("user-%d", i), "Player", fmt.Sprint(i), fmt.Sprintf("p%d@example.com", i))
	}
	results, err := s.service.Search(s.ctx, "me", "player")
	s.Require().NoError(err)
	s.Len(results, SearchMaxResults)
}

func (s *ServiceSuite) TestActivityCappedNewestFirst() {
	s.createUser("user-1", "Alice", "Smith", "alice@example.com")
	for i := 0; i < model.MaxActivityEntries+5; i++ {
		s.Require().NoError(s.service.LogActivity(s.ctx, "user-1", fmt.Sprintf("a%d", i), nil))
	}

	entries, err := s.service.Activity(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Len(entries, model.MaxActivityEntries)
	s.Equal(fmt.Sprintf("a%d", model.MaxActivityEntries+4), entries[0].Action)
	s.Equal("a5", entries[len(entries)-1].Action)
}

func (s *ServiceSuite) TestRefreshStatsCountsConfirmedOnly() {
	s.createUser("user-1", "Alice", "Smith", "alice@example.com")
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "g-catan", Name: "Catan", Slug: "catan"})
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "g-uno", Name: "Uno", Slug: "uno"})

	me := model.UserID("user-1")
	mk := func(id string, game model.GameID, status model.SessionStatus, result model.Result) {
		_ = s.storage.CreateSession(s.ctx, &model.Session{
			ID: model.SessionID(id), Game: game, Status: status, CreatedBy: "other",
			Players: []model.Player{{User: &me, Result: result, Confirmed: true}},
		})
	}
	mk("s1", "g-catan", model.SessionConfirmed, model.ResultWin)
	mk("s2", "g-catan", model.SessionConfirmed, model.ResultLoss)
	mk("s3", "g-uno", model.SessionConfirmed, model.ResultDraw)
	mk("s4", "g-uno", model.SessionPending, model.ResultWin)

	stats, err := s.service.RefreshStats(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(model.UserStats{Wins: 1, Losses: 1, Draws: 1, MostPlayed: "Catan"}, *stats)

	stored, _ := s.storage.GetUser(s.ctx, "user-1")
	s.Equal(1, stored.Stats.Wins)
}
