package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/gysagsohn/game-tracker-server/internal/dependencies/mocks"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/services/aftercommit"
	"github.com/gysagsohn/game-tracker-server/internal/services/email"
	"github.com/gysagsohn/game-tracker-server/internal/services/friend"
	"github.com/gysagsohn/game-tracker-server/internal/services/notification"
	"github.com/gysagsohn/game-tracker-server/internal/services/session"
	"github.com/gysagsohn/game-tracker-server/internal/services/user"
	"github.com/gysagsohn/game-tracker-server/internal/storage/memory"
	"github.com/gysagsohn/game-tracker-server/internal/testutil"
)

type fakeGoogle struct {
	identity *GoogleIdentity
	err      error
	codes    []string
}

func (f *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (f *fakeGoogle) Exchange(_ context.Context, code string) (*GoogleIdentity, error) {
	f.codes = append(f.codes, code)
	return f.identity, f.err
}

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	mailer  *mocks.MockMailer
	google  *fakeGoogle
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.clock = mocks.NewMockClock(time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC))
	s.storage = memory.New(s.clock)
	s.mailer = mocks.NewMockMailer()
	s.google = &fakeGoogle{}
	s.ctx = context.Background()

	idGen := mocks.NewMockIDs()
	mailer := email.NewMailer(s.mailer, "https://app.example.com", logger)
	afterwards := aftercommit.New(logger)
	users := user.New(s.storage, s.clock, logger)
	notifications := notification.New(s.storage, s.clock, idGen, nil, logger)
	friends := friend.New(s.storage, s.clock, notifications, mailer, users, afterwards, logger)
	sessions := session.NewController(s.storage, s.clock, idGen, notifications, mailer, friends, users,
		afterwards, session.DefaultConfig(), logger)

	cfg := DefaultConfig()
	cfg.Secret = "test-secret"
	cfg.BcryptCost = bcrypt.MinCost
	cfg.FrontendURL = "https://app.example.com"
	s.service = New(s.storage, s.clock, idGen, mailer, sessions, users, s.google, afterwards, cfg, logger)
}

// tokenFrom extracts the token query parameter from the last email sent to addr
func (s *ServiceSuite) tokenFrom(addr string) string {
	sent := s.mailer.SentTo(addr)
	s.Require().NotEmpty(sent)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sent[len(sent)-1].HTML))
	s.Require().NoError(err)
	href, ok := doc.Find("a.button").Attr("href")
	s.Require().True(ok)
	u, err := url.Parse(href)
	s.Require().NoError(err)
	return u.Query().Get("token")
}

func (s *ServiceSuite) signup(email string) *model.User {
	u, err := s.service.Signup(s.ctx, SignupInput{
		FirstName: "Alice", LastName: "Smith", Email: email, Password: "correct horse",
	})
	s.Require().NoError(err)
	return u
}

func (s *ServiceSuite) signupVerified(email string) *model.User {
	u := s.signup(email)
	_, err := s.service.VerifyEmail(s.ctx, s.tokenFrom(u.Email))
	s.Require().NoError(err)
	return u
}

func (s *ServiceSuite) TestSignup() {
	u := s.signup("  Alice@Example.com ")

	s.Equal("alice@example.com", u.Email)
	s.False(u.IsEmailVerified)
	s.Equal(model.AuthProviderLocal, u.AuthProvider)
	s.Equal(model.RoleUser, u.Role)
	s.NotEqual("correct horse", u.PasswordHash)
	s.Equal(user.ActivitySignedUp, u.ActivityLog[0].Action)
	s.NotEmpty(s.tokenFrom("alice@example.com"))
}

func (s *ServiceSuite) TestSignupDuplicateEmail() {
	s.signup("alice@example.com")
	_, err := s.service.Signup(s.ctx, SignupInput{FirstName: "A", LastName: "B", Email: "ALICE@example.com", Password: "password1"})
	s.ErrorIs(err, model.ErrEmailTaken)
}

func (s *ServiceSuite) TestSignupSucceedsWhenEmailFails() {
	s.mailer.Fail = true
	u := s.signup("alice@example.com")
	s.NotEmpty(u.ID)
}

func (s *ServiceSuite) TestSignupClaimsGuestEntries() {
	host := &model.User{ID: "host", FirstName: "Host", Email: "host@example.com"}
	s.Require().NoError(s.storage.CreateUser(s.ctx, host))
	s.Require().NoError(s.storage.SaveGame(s.ctx, &model.Game{ID: "catan", Name: "Catan", Slug: "catan"}))
	hostID := host.ID
	s.Require().NoError(s.storage.CreateSession(s.ctx, &model.Session{
		ID: "s1", Game: "catan", CreatedBy: "host", Status: model.SessionConfirmed,
		Players: []model.Player{
			{User: &hostID, Name: "Host", Result: model.ResultLoss, Confirmed: true},
			{Name: "Alice", Email: "alice@example.com", Result: model.ResultWin, Confirmed: true},
		},
	}))

	u := s.signup("alice@example.com")

	sess, err := s.storage.GetSession(s.ctx, "s1")
	s.Require().NoError(err)
	s.True(sess.Players[1].Is(u.ID))
	s.True(u.HasFriend("host"))
	s.Equal(1, u.Stats.Wins)
}

func (s *ServiceSuite) TestLogin() {
	s.signupVerified("alice@example.com")

	res, err := s.service.Login(s.ctx, "Alice@example.com", "correct horse")
	s.Require().NoError(err)
	s.NotEmpty(res.Token)
	s.WithinDuration(s.clock.Now().Add(7*24*time.Hour), res.ExpiresAt, 0)

	u, err := s.service.ValidateToken(s.ctx, res.Token)
	s.Require().NoError(err)
	s.Equal(res.User.ID, u.ID)
}

func (s *ServiceSuite) TestLoginFailures() {
	s.signup("unverified@example.com")
	_, err := s.service.Login(s.ctx, "unverified@example.com", "correct horse")
	s.ErrorIs(err, ErrEmailNotVerified)

	_, err = s.service.Login(s.ctx, "unverified@example.com", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.service.Login(s.ctx, "nobody@example.com", "correct horse")
	s.ErrorIs(err, ErrInvalidCredentials)

	u := s.signupVerified("suspended@example.com")
	u, _ = s.storage.GetUser(s.ctx, u.ID)
	u.IsSuspended = true
	s.Require().NoError(s.storage.SaveUser(s.ctx, u))
	_, err = s.service.Login(s.ctx, "suspended@example.com", "correct horse")
	s.ErrorIs(err, model.ErrUserSuspended)

	s.Require().NoError(s.storage.CreateUser(s.ctx, &model.User{
		ID: "g", Email: "google@example.com", AuthProvider: model.AuthProviderGoogle, IsEmailVerified: true,
	}))
	_, err = s.service.Login(s.ctx, "google@example.com", "anything")
	s.ErrorIs(err, ErrGoogleAccount)
}

func (s *ServiceSuite) TestValidateTokenRejectsOtherPurposes() {
	u := s.signup("alice@example.com")
	verifyToken := s.tokenFrom(u.Email)

	_, err := s.service.ValidateToken(s.ctx, verifyToken)
	s.ErrorIs(err, ErrInvalidToken)

	_, err = s.service.ValidateToken(s.ctx, "not-a-jwt")
	s.ErrorIs(err, ErrInvalidToken)

	_, err = s.service.ValidateToken(s.ctx, "")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestAccessTokenExpires() {
	s.signupVerified("alice@example.com")
	res, err := s.service.Login(s.ctx, "alice@example.com", "correct horse")
	s.Require().NoError(err)

	s.clock.Advance(7*24*time.Hour + time.Second)
	_, err = s.service.ValidateToken(s.ctx, res.Token)
	s.ErrorIs(err, ErrTokenExpired)
}

func (s *ServiceSuite) TestVerifyEmail() {
	u := s.signup("alice@example.com")
	token := s.tokenFrom(u.Email)

	already, err := s.service.VerifyEmail(s.ctx, token)
	s.Require().NoError(err)
	s.False(already)

	stored, _ := s.storage.GetUser(s.ctx, u.ID)
	s.True(stored.IsEmailVerified)

	already, err = s.service.VerifyEmail(s.ctx, token)
	s.Require().NoError(err)
	s.True(already)
}

func (s *ServiceSuite) TestVerifyEmailTokenExpires() {
	u := s.signup("alice@example.com")
	token := s.tokenFrom(u.Email)

	s.clock.Advance(time.Hour + time.Second)
	_, err := s.service.VerifyEmail(s.ctx, token)
	s.ErrorIs(err, ErrTokenExpired)
}

func (s *ServiceSuite) TestResendVerification() {
	s.signup("alice@example.com")
	s.Require().NoError(s.service.ResendVerification(s.ctx, "alice@example.com"))
	s.Len(s.mailer.SentTo("alice@example.com"), 2)

	_, err := s.service.VerifyEmail(s.ctx, s.tokenFrom("alice@example.com"))
	s.Require().NoError(err)
	s.ErrorIs(s.service.ResendVerification(s.ctx, "alice@example.com"), ErrEmailAlreadyVerified)
	s.ErrorIs(s.service.ResendVerification(s.ctx, "nobody@example.com"), model.ErrUserNotFound)
}

func (s *ServiceSuite) TestPasswordResetIsSingleUse() {
	s.signupVerified("alice@example.com")
	s.Require().NoError(s.service.ForgotPassword(s.ctx, "alice@example.com"))
	token := s.tokenFrom("alice@example.com")

	res, err := s.service.ResetPassword(s.ctx, token, "new password")
	s.Require().NoError(err)
	s.NotEmpty(res.Token)

	_, err = s.service.ResetPassword(s.ctx, token, "another password")
	s.ErrorIs(err, ErrInvalidToken)

	_, err = s.service.Login(s.ctx, "alice@example.com", "new password")
	s.NoError(err)
	_, err = s.service.Login(s.ctx, "alice@example.com", "correct horse")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestOnlyLatestResetTokenIsValid() {
	s.signupVerified("alice@example.com")
	s.Require().NoError(s.service.ForgotPassword(s.ctx, "alice@example.com"))
	first := s.tokenFrom("alice@example.com")
	s.Require().NoError(s.service.ForgotPassword(s.ctx, "alice@example.com"))
	second := s.tokenFrom("alice@example.com")

	_, err := s.service.ResetPassword(s.ctx, first, "new password")
	s.ErrorIs(err, ErrInvalidToken)
	_, err = s.service.ResetPassword(s.ctx, second, "new password")
	s.NoError(err)
}

func (s *ServiceSuite) TestResetTokenExpires() {
	s.signupVerified("alice@example.com")
	s.Require().NoError(s.service.ForgotPassword(s.ctx, "alice@example.com"))
	token := s.tokenFrom("alice@example.com")

	s.clock.Advance(16 * time.Minute)
	_, err := s.service.ResetPassword(s.ctx, token, "new password")
	s.ErrorIs(err, ErrTokenExpired)
}

func (s *ServiceSuite) TestForgotPasswordGoogleAccount() {
	s.Require().NoError(s.storage.CreateUser(s.ctx, &model.User{
		ID: "g", Email: "google@example.com", AuthProvider: model.AuthProviderGoogle,
	}))
	s.ErrorIs(s.service.ForgotPassword(s.ctx, "google@example.com"), ErrGoogleAccount)
	s.ErrorIs(s.service.ForgotPassword(s.ctx, "nobody@example.com"), model.ErrUserNotFound)
}

func (s *ServiceSuite) TestGoogleSignInCreatesAccount() {
	s.google.identity = &GoogleIdentity{
		Subject: "g-123", Email: "Gina@Example.com", EmailVerified: true, GivenName: "Gina", FamilyName: "G",
	}

	res, err := s.service.GoogleSignIn(s.ctx, "code-1")
	s.Require().NoError(err)
	s.Equal([]string{"code-1"}, s.google.codes)
	s.Equal("gina@example.com", res.User.Email)
	s.Equal(model.AuthProviderGoogle, res.User.AuthProvider)
	s.True(res.User.IsEmailVerified)
	s.Empty(res.User.PasswordHash)
	s.Empty(s.mailer.SentTo("gina@example.com"))

	again, err := s.service.GoogleSignIn(s.ctx, "code-2")
	s.Require().NoError(err)
	s.Equal(res.User.ID, again.User.ID)
}

func (s *ServiceSuite) TestGoogleSignInLinksLocalAccount() {
	u := s.signup("alice@example.com")
	s.google.identity = &GoogleIdentity{Subject: "g-1", Email: "alice@example.com", EmailVerified: true}

	res, err := s.service.GoogleSignIn(s.ctx, "code")
	s.Require().NoError(err)
	s.Equal(u.ID, res.User.ID)
	s.Equal("g-1", res.User.GoogleID)
	s.True(res.User.IsEmailVerified)

	// the local password still works after linking
	_, err = s.service.Login(s.ctx, "alice@example.com", "correct horse")
	s.NoError(err)
}

func (s *ServiceSuite) TestGoogleSignInFailures() {
	s.google.identity = &GoogleIdentity{Subject: "g", Email: "x@example.com", EmailVerified: false}
	_, err := s.service.GoogleSignIn(s.ctx, "code")
	s.ErrorIs(err, ErrGoogleEmailNotVerified)

	s.google.err = errors.New("exchange failed")
	_, err = s.service.GoogleSignIn(s.ctx, "code")
	s.Error(err)

	s.service.google = nil
	_, err = s.service.GoogleSignIn(s.ctx, "code")
	s.ErrorIs(err, ErrGoogleNotConfigured)
	_, err = s.service.GoogleAuthURL("")
	s.ErrorIs(err, ErrGoogleNotConfigured)
}

func (s *ServiceSuite) TestResolveRedirect() {
	target, ok := s.service.ResolveRedirect("")
	s.True(ok)
	s.Equal("https://app.example.com", target)

	target, ok = s.service.ResolveRedirect("http://localhost:5173/")
	s.True(ok)
	s.Equal("http://localhost:5173", target)

	_, ok = s.service.ResolveRedirect("https://evil.example.net")
	s.False(ok)
	_, ok = s.service.ResolveRedirect("https://app.example.com.evil.net")
	s.False(ok)
	_, ok = s.service.ResolveRedirect("javascript:alert(1)")
	s.False(ok)
}
