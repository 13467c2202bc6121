package catalog

import (
	"context"
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
	service *Service
	ctx     context.Context
	admin   *model.User
	alice   *model.User
	bob     *model.User
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	clk := mocks.NewMockClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	s.storage = memory.New(clk)
	s.service = New(s.storage, clk, mocks.NewMockIDs(), testutil.NopLogger())
	s.ctx = context.Background()
	s.admin = &model.User{ID: "admin", Role: model.RoleAdmin}
	s.alice = &model.User{ID: "alice", Role: model.RoleUser}
	s.bob = &model.User{ID: "bob", Role: model.RoleUser}
}

func ptr[T any](v T) *T { return &v }

func (s *ServiceSuite) TestSlug() {
	s.Equal("ticket-to-ride", Slug("Ticket to Ride"))
	s.Equal(Slug("CATAN"), Slug("catan "))
}

func (s *ServiceSuite) TestAdminCreatesCatalogGame() {
	g, err := s.service.Create(s.ctx, s.admin, GameInput{Name: "Catan", Category: model.CategoryBoard, MinPlayers: 3, MaxPlayers: 4})
	s.Require().NoError(err)
	s.False(g.IsCustom)
	s.Nil(g.CreatedBy)
	s.Equal("catan", g.Slug)
}

func (s *ServiceSuite) TestUserCreatesCustomGame() {
	g, err := s.service.Create(s.ctx, s.alice, GameInput{Name: "House Rules", Category: model.CategoryOther, CustomCategory: "Homebrew"})
	s.Require().NoError(err)
	s.True(g.IsCustom)
	s.Equal(model.UserID("alice"), *g.CreatedBy)
	s.Equal("Homebrew", g.CustomCategory)
}

func (s *ServiceSuite) TestCreateDefaultsAndValidation() {
	g, err := s.service.Create(s.ctx, s.admin, GameInput{Name: "Uno", CustomCategory: "ignored"})
	s.Require().NoError(err)
	s.Equal(model.CategoryOther, g.Category)

	g, err = s.service.Create(s.ctx, s.admin, GameInput{Name: "Chess", Category: model.CategoryStrategy, CustomCategory: "x"})
	s.Require().NoError(err)
	s.Empty(g.CustomCategory)

	_, err = s.service.Create(s.ctx, s.admin, GameInput{Name: "Bad", MinPlayers: 5, MaxPlayers: 2})
	s.ErrorIs(err, model.ErrInvalidPlayerRange)
}

func (s *ServiceSuite) TestDuplicateNameRejected() {
	_, err := s.service.Create(s.ctx, s.admin, GameInput{Name: "Catan"})
	s.Require().NoError(err)
	_, err = s.service.Create(s.ctx, s.alice, GameInput{Name: "  catan"})
	s.ErrorIs(err, model.ErrGameNameTaken)
}

func (s *ServiceSuite) TestUpdatePermissions() {
	catalogGame, _ := s.service.Create(s.ctx, s.admin, GameInput{Name: "Catan"})
	custom, _ := s.service.Create(s.ctx, s.alice, GameInput{Name: "Alice Game"})

	_, err := s.service.Update(s.ctx, s.alice, catalogGame.ID, GameUpdate{Name: ptr("Mine")})
	s.ErrorIs(err, model.ErrForbidden)
	_, err = s.service.Update(s.ctx, s.bob, custom.ID, GameUpdate{Name: ptr("Bob's")})
	s.ErrorIs(err, model.ErrForbidden)

	updated, err := s.service.Update(s.ctx, s.alice, custom.ID, GameUpdate{Name: ptr("Alice Game 2"), MaxPlayers: ptr(6)})
	s.Require().NoError(err)
	s.Equal("alice-game-2", updated.Slug)
	s.Equal(6, updated.MaxPlayers)

	_, err = s.service.Update(s.ctx, s.admin, custom.ID, GameUpdate{Description: ptr("ok")})
	s.NoError(err)
}

func (s *ServiceSuite) TestDelete() {
	custom, _ := s.service.Create(s.ctx, s.alice, GameInput{Name: "Alice Game"})

	s.ErrorIs(s.service.Delete(s.ctx, s.bob, custom.ID), model.ErrForbidden)
	s.Require().NoError(s.service.Delete(s.ctx, s.alice, custom.ID))

	_, err := s.service.Get(s.ctx, custom.ID)
	s.ErrorIs(err, model.ErrGameNotFound)
}
