package friend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/gysagsohn/game-tracker-server/internal/dependencies/mocks"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/services/aftercommit"
	"github.com/gysagsohn/game-tracker-server/internal/services/email"
	"github.com/gysagsohn/game-tracker-server/internal/services/notification"
	"github.com/gysagsohn/game-tracker-server/internal/services/user"
	"github.com/gysagsohn/game-tracker-server/internal/storage/memory"
	"github.com/gysagsohn/game-tracker-server/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage       *memory.Storage
	clock         *mocks.MockClock
	mailer        *mocks.MockMailer
	notifications *notification.Service
	service       *Service
	ctx           context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.clock = mocks.NewMockClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	s.storage = memory.New(s.clock)
	s.mailer = mocks.NewMockMailer()
	s.notifications = notification.New(s.storage, s.clock, mocks.NewMockIDs(), nil, logger)
	s.service = New(
		s.storage,
		s.clock,
		s.notifications,
		email.NewMailer(s.mailer, "https://app.example.com", logger),
		user.New(s.storage, s.clock, logger),
		aftercommit.New(logger),
		logger,
	)
	s.ctx = context.Background()

	for _, u := range []struct{ id, first, email string }{
		{"alice", "Alice", "alice@example.com"},
		{"bob", "Bob", "bob@example.com"},
		{"carol", "Carol", "carol@example.com"},
		{"dave", "Dave", "dave@example.com"},
	} {
		s.Require().NoError(s.storage.CreateUser(s.ctx, &model.User{
			ID: model.UserID(u.id), FirstName: u.first, LastName: "Test", Email: u.email,
		}))
	}
}

func (s *ServiceSuite) user(id model.UserID) *model.User {
	u, err := s.storage.GetUser(s.ctx, id)
	s.Require().NoError(err)
	return u
}

func (s *ServiceSuite) makeFriends(a, b model.UserID) {
	_, err := s.service.EnsureFriendship(s.ctx, a, b)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestSendRequestByEmail() {
	target, err := s.service.SendRequestByEmail(s.ctx, "alice", "bob@example.com")
	s.Require().NoError(err)
	s.Equal(model.UserID("bob"), target.ID)

	bob := s.user("bob")
	s.Require().NotNil(bob.PendingRequestFrom("alice"))

	ns, _ := s.notifications.List(s.ctx, "bob")
	s.Require().Len(ns, 1)
	s.Equal(model.NotificationFriendRequest, ns[0].Type)
	s.Len(s.mailer.SentTo("bob@example.com"), 1)
	s.Equal(user.ActivitySentFriend, s.user("alice").ActivityLog[0].Action)
}

func (s *ServiceSuite) TestSendRequestErrors() {
	s.ErrorIs(s.service.SendRequest(s.ctx, "alice", "alice"), model.ErrCannotFriendSelf)
	s.ErrorIs(s.service.SendRequest(s.ctx, "alice", "nobody"), model.ErrUserNotFound)

	s.Require().NoError(s.service.SendRequest(s.ctx, "alice", "bob"))
	s.ErrorIs(s.service.SendRequest(s.ctx, "alice", "bob"), model.ErrFriendRequestExists)

	s.makeFriends("alice", "carol")
	s.ErrorIs(s.service.SendRequest(s.ctx, "alice", "carol"), model.ErrAlreadyFriends)
}

func (s *ServiceSuite) TestSendRequestSucceedsWhenEmailFails() {
	s.mailer.Fail = true
	s.NoError(s.service.SendRequest(s.ctx, "alice", "bob"))
	s.NotNil(s.user("bob").PendingRequestFrom("alice"))
}

func (s *ServiceSuite) TestAcceptRequest() {
	s.Require().NoError(s.service.SendRequest(s.ctx, "alice", "bob"))
	s.Require().NoError(s.service.Respond(s.ctx, "bob", "alice", model.FriendRequestAccepted))

	s.True(s.user("alice").HasFriend("bob"))
	s.True(s.user("bob").HasFriend("alice"))
	s.Nil(s.user("bob").PendingRequestFrom("alice"))

	ns, _ := s.notifications.List(s.ctx, "alice")
	s.Require().Len(ns, 1)
	s.Equal(model.NotificationFriendAccept, ns[0].Type)
	s.Len(s.mailer.SentTo("alice@example.com"), 1)
}

func (s *ServiceSuite) TestRejectRequest() {
	s.Require().NoError(s.service.SendRequest(s.ctx, "alice", "bob"))
	s.Require().NoError(s.service.Respond(s.ctx, "bob", "alice", model.FriendRequestRejected))

	s.False(s.user("bob").HasFriend("alice"))
	s.Equal(model.FriendRequestRejected, s.user("bob").FriendRequests[0].Status)

	// A new request is allowed after rejection
	s.NoError(s.service.SendRequest(s.ctx, "alice", "bob"))
}

func (s *ServiceSuite) TestRespondErrors() {
	s.ErrorIs(s.service.Respond(s.ctx, "bob", "alice", model.FriendRequestAccepted), model.ErrFriendRequestNotFound)
	s.ErrorIs(s.service.Respond(s.ctx, "bob", "alice", "Maybe"), ErrInvalidResponse)
}

func (s *ServiceSuite) TestPendingAndSentRequests() {
	s.Require().NoError(s.service.SendRequest(s.ctx, "alice", "bob"))
	s.Require().NoError(s.service.SendRequest(s.ctx, "alice", "carol"))

	pending, err := s.service.PendingRequests(s.ctx, "bob")
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(model.UserID("alice"), pending[0].User.ID)

	sent, err := s.service.SentRequests(s.ctx, "alice")
	s.Require().NoError(err)
	s.Len(sent, 2)
}

func (s *ServiceSuite) TestSuggestedAndMutual() {
	s.makeFriends("alice", "bob")
	s.makeFriends("alice", "carol")
	s.makeFriends("bob", "dave")
	s.makeFriends("carol", "dave")

	suggested, err := s.service.Suggested(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(suggested, 1)
	s.Equal(model.UserID("dave"), suggested[0].ID)

	mutual, err := s.service.Mutual(s.ctx, "alice", "dave")
	s.Require().NoError(err)
	s.Len(mutual, 2)
}

func (s *ServiceSuite) TestUnfriend() {
	s.makeFriends("alice", "bob")
	s.Require().NoError(s.service.Unfriend(s.ctx, "alice", "bob"))

	s.False(s.user("alice").HasFriend("bob"))
	s.False(s.user("bob").HasFriend("alice"))
	s.ErrorIs(s.service.Unfriend(s.ctx, "alice", "nobody"), model.ErrUserNotFound)
}

func (s *ServiceSuite) TestEnsureFriendshipIsIdempotent() {
	s.Require().NoError(s.service.SendRequest(s.ctx, "bob", "alice"))

	changed, err := s.service.EnsureFriendship(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	s.True(changed)
	s.Nil(s.user("alice").PendingRequestFrom("bob"))

	changed, err = s.service.EnsureFriendship(s.ctx, "alice", "bob")
	s.Require().NoError(err)
	s.False(changed)
	s.Len(s.user("alice").Friends, 1)
}
