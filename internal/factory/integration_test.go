package factory

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/suite"

	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/services/auth"
	"github.com/gysagsohn/game-tracker-server/internal/services/catalog"
	"github.com/gysagsohn/game-tracker-server/internal/services/session"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// signupVerified registers an account and follows the emailed verification link
func (s *IntegrationSuite) signupVerified(first, email string) *model.User {
	_, err := s.app.AuthService.Signup(s.ctx, auth.SignupInput{
		FirstName: first, LastName: "Tester", Email: email, Password: "password123",
	})
	s.Require().NoError(err)

	sent := s.app.MockMailer.SentTo(email)
	s.Require().NotEmpty(sent)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sent[len(sent)-1].HTML))
	s.Require().NoError(err)
	href, ok := doc.Find("a.button").Attr("href")
	s.Require().True(ok)
	link, err := url.Parse(href)
	s.Require().NoError(err)

	_, err = s.app.AuthService.VerifyEmail(s.ctx, link.Query().Get("token"))
	s.Require().NoError(err)

	res, err := s.app.AuthService.Login(s.ctx, email, "password123")
	s.Require().NoError(err)
	return res.User
}

// Test: record a match with a guest, confirm it, then the guest signs up and claims it
func (s *IntegrationSuite) TestMatchLifecycleWithGuestClaim() {
	alice := s.signupVerified("Alice", "alice@example.com")
	bob := s.signupVerified("Bob", "bob@example.com")

	game, err := s.app.CatalogService.Create(s.ctx, alice, catalog.GameInput{Name: "Catan", Category: model.CategoryBoard})
	s.Require().NoError(err)
	s.True(game.IsCustom)

	win, loss := 10, 7
	sess, err := s.app.SessionController.Create(s.ctx, alice, session.CreateInput{
		Game: game.ID,
		Players: []session.PlayerInput{
			{User: &alice.ID, Name: "Alice", Score: &win, Result: model.ResultWin},
			{User: &bob.ID, Name: "Bob", Score: &loss, Result: model.ResultLoss},
			{Name: "Carol", Email: "carol@example.com", Result: model.ResultLoss, Invited: true},
		},
	})
	s.Require().NoError(err)
	s.Equal(model.SessionPending, sess.Status)
	s.Len(s.app.MockMailer.SentTo("carol@example.com"), 1, "guest should be invited by email")

	// Bob sees the match waiting for him and gets an in-app invite
	pending, err := s.app.SessionController.MyPending(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(sess.ID, pending[0].ID)

	bobNotes, err := s.app.NotificationService.List(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Require().Len(bobNotes, 1)
	s.Equal(model.NotificationMatchInvite, bobNotes[0].Type)

	// Bob confirms, completing the session
	s.app.MockClock.Advance(time.Hour)
	confirmed, err := s.app.SessionController.Confirm(s.ctx, bob, sess.ID)
	s.Require().NoError(err)
	s.Equal(model.SessionConfirmed, confirmed.Status)

	aliceNotes, err := s.app.NotificationService.List(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().NotEmpty(aliceNotes)
	s.Equal(model.NotificationMatchConfirmed, aliceNotes[0].Type)

	aliceAfter, err := s.app.UserService.Get(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal(1, aliceAfter.Stats.Wins)
	s.Equal("Catan", aliceAfter.Stats.MostPlayed)

	// Carol signs up with the invited email and inherits the match
	carol := s.signupVerified("Carol", "carol@example.com")

	mine, err := s.app.SessionController.ListMine(s.ctx, carol.ID)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(model.SessionConfirmed, mine[0].Status)

	s.Equal(1, carol.Stats.Losses)
	s.True(carol.HasFriend(alice.ID), "guest should be befriended with the match creator")

	aliceFinal, err := s.app.UserService.Get(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.True(aliceFinal.HasFriend(carol.ID))
}

// Test: decline by the only other registered player keeps the creator's session
func (s *IntegrationSuite) TestDeclineKeepsSessionWithCreator() {
	alice := s.signupVerified("Alice", "alice@example.com")
	bob := s.signupVerified("Bob", "bob@example.com")
	game, err := s.app.CatalogService.Create(s.ctx, alice, catalog.GameInput{Name: "Uno", Category: model.CategoryCard})
	s.Require().NoError(err)

	sess, err := s.app.SessionController.Create(s.ctx, alice, session.CreateInput{
		Game: game.ID,
		Players: []session.PlayerInput{
			{User: &alice.ID, Name: "Alice", Result: model.ResultWin},
			{User: &bob.ID, Name: "Bob", Result: model.ResultLoss},
		},
	})
	s.Require().NoError(err)

	res, err := s.app.SessionController.Decline(s.ctx, bob, sess.ID)
	s.Require().NoError(err)
	s.False(res.Deleted)
	s.Require().NotNil(res.Session)
	s.Len(res.Session.Players, 1)
	s.Equal(model.SessionConfirmed, res.Session.Status)

	notes, err := s.app.NotificationService.List(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().NotEmpty(notes)
	s.Equal(model.NotificationMatchDeclined, notes[0].Type)
}

// Test: friend request round trip with notifications and emails
func (s *IntegrationSuite) TestFriendRequestFlow() {
	alice := s.signupVerified("Alice", "alice@example.com")
	bob := s.signupVerified("Bob", "bob@example.com")

	_, err := s.app.FriendService.SendRequestByEmail(s.ctx, alice.ID, "bob@example.com")
	s.Require().NoError(err)

	reqs, err := s.app.FriendService.PendingRequests(s.ctx, bob.ID)
	s.Require().NoError(err)
	s.Require().Len(reqs, 1)
	s.Equal(alice.ID, reqs[0].User.ID)

	s.Require().NoError(s.app.FriendService.Respond(s.ctx, bob.ID, alice.ID, model.FriendRequestAccepted))

	friends, err := s.app.FriendService.Friends(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(friends, 1)
	s.Equal(bob.ID, friends[0].ID)

	unread, err := s.app.NotificationService.UnreadCount(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal(1, unread)
}
