package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gysagsohn/game-tracker-server/internal/dependencies/clock"
	"github.com/gysagsohn/game-tracker-server/internal/dependencies/ids"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/sanitize"
	"github.com/gysagsohn/game-tracker-server/internal/services/aftercommit"
	"github.com/gysagsohn/game-tracker-server/internal/services/session"
	"github.com/gysagsohn/game-tracker-server/internal/services/user"
	"github.com/gysagsohn/game-tracker-server/internal/storage"
)

const tokenIssuer = "game-tracker"

// Errors
var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrTokenExpired           = errors.New("token has expired")
	ErrEmailNotVerified       = errors.New("please verify your email before logging in")
	ErrEmailAlreadyVerified   = errors.New("email already verified")
	ErrGoogleAccount          = errors.New("this account uses Google sign-in")
	ErrGoogleNotConfigured    = errors.New("google sign-in is not configured")
	ErrGoogleEmailNotVerified = errors.New("google account email is not verified")
)

// Mailer sends account emails
type Mailer interface {
	SendVerification(ctx context.Context, to, firstName, token string) error
	SendPasswordReset(ctx context.Context, to, firstName, token string) error
}

// GuestClaimer links guest session entries to a new account
type GuestClaimer interface {
	ClaimGuestPlayers(ctx context.Context, newUser *model.User) (*session.ClaimResult, error)
}

// ActivityLogger records account activity
type ActivityLogger interface {
	LogActivity(ctx context.Context, id model.UserID, action string, metadata map[string]string) error
}

// Config holds configuration for the auth service
type Config struct {
	Secret      string
	AccessTTL   time.Duration
	VerifyTTL   time.Duration
	ResetTTL    time.Duration
	BcryptCost  int
	FrontendURL string

	// AllowedRedirects are origins the Google callback may send users back to
	AllowedRedirects []string
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		AccessTTL:        7 * 24 * time.Hour,
		VerifyTTL:        time.Hour,
		ResetTTL:         15 * time.Minute,
		BcryptCost:       bcrypt.DefaultCost,
		FrontendURL:      "http://localhost:5173",
		AllowedRedirects: []string{"http://localhost:5173", "http://localhost:3000"},
	}
}

// SignupInput is a local account registration
type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Result is an issued access token
type Result struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// Service handles authentication and account tokens
type Service struct {
	storage    storage.Storage
	clock      clock.Clock
	ids        ids.Generator
	mailer     Mailer
	claimer    GuestClaimer
	activity   ActivityLogger
	google     GoogleProvider
	afterwards *aftercommit.Runner
	cfg        Config
	secret     []byte
	logger     *slog.Logger
}

// New creates a new auth Service. google may be nil when Google sign-in is disabled.
func New(
	storage storage.Storage,
	clock clock.Clock,
	ids ids.Generator,
	mailer Mailer,
	claimer GuestClaimer,
	activity ActivityLogger,
	google GoogleProvider,
	afterwards *aftercommit.Runner,
	cfg Config,
	logger *slog.Logger,
) *Service {
	defaults := DefaultConfig()
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = defaults.AccessTTL
	}
	if cfg.VerifyTTL == 0 {
		cfg.VerifyTTL = defaults.VerifyTTL
	}
	if cfg.ResetTTL == 0 {
		cfg.ResetTTL = defaults.ResetTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = defaults.BcryptCost
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = defaults.FrontendURL
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	cfg.AllowedRedirects = append([]string{cfg.FrontendURL}, cfg.AllowedRedirects...)

	return &Service{
		storage:    storage,
		clock:      clock,
		ids:        ids,
		mailer:     mailer,
		claimer:    claimer,
		activity:   activity,
		google:     google,
		afterwards: afterwards,
		cfg:        cfg,
		secret:     []byte(cfg.Secret),
		logger:     logger,
	}
}

// FrontendURL returns the base URL of the web client
func (s *Service) FrontendURL() string {
	return s.cfg.FrontendURL
}

// Signup registers a local account, links guest matches played under the
// same email and sends a verification email
func (s *Service) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	email := sanitize.Email(in.Email)
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	u := &model.User{
		ID:           model.UserID(s.ids.NewID()),
		FirstName:    sanitize.Text(in.FirstName),
		LastName:     sanitize.Text(in.LastName),
		Email:        email,
		PasswordHash: string(hash),
		AuthProvider: model.AuthProviderLocal,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.storage.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up",
		slog.String("user_id", string(u.ID)),
		slog.String("provider", string(u.AuthProvider)),
	)

	s.afterwards.Run(ctx, s.newAccountActions(u, true)...)
	return s.reload(ctx, u)
}

// Login checks a password and issues an access token
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	u, err := s.storage.GetUserByEmail(ctx, sanitize.Email(email))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrGoogleAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}
	if u.IsSuspended {
		return nil, model.ErrUserSuspended
	}
	return s.accessToken(u)
}

// ValidateToken resolves an access token to its user
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.parseToken(token, PurposeAccess)
	if err != nil {
		return nil, err
	}
	u, err := s.storage.GetUser(ctx, model.UserID(claims.Subject))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if u.IsSuspended {
		return nil, model.ErrUserSuspended
	}
	return u, nil
}

// VerifyEmail marks the token's account verified.
// Reports true when the account was already verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) (bool, error) {
	claims, err := s.parseToken(token, PurposeVerify)
	if err != nil {
		return false, err
	}
	u, err := s.storage.GetUser(ctx, model.UserID(claims.Subject))
	if err != nil {
		return false, err
	}
	if u.IsEmailVerified {
		return true, nil
	}
	u.IsEmailVerified = true
	u.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveUser(ctx, u); err != nil {
		return false, err
	}
	s.logger.Info("email verified", slog.String("user_id", string(u.ID)))
	return false, nil
}

// ResendVerification sends a fresh verification email
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	u, err := s.storage.GetUserByEmail(ctx, sanitize.Email(email))
	if err != nil {
		return err
	}
	if u.IsEmailVerified {
		return ErrEmailAlreadyVerified
	}
	token, _, _, err := s.issueToken(u.ID, PurposeVerify, s.cfg.VerifyTTL)
	if err != nil {
		return err
	}
	return s.mailer.SendVerification(ctx, u.Email, u.FirstName, token)
}

// ForgotPassword emails a single-use password reset link
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.storage.GetUserByEmail(ctx, sanitize.Email(email))
	if err != nil {
		return err
	}
	if u.PasswordHash == "" {
		return ErrGoogleAccount
	}
	token, jti, _, err := s.issueToken(u.ID, PurposeReset, s.cfg.ResetTTL)
	if err != nil {
		return err
	}
	u.ResetTokenID = jti
	u.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveUser(ctx, u); err != nil {
		return err
	}

	s.logger.Info("password reset requested", slog.String("user_id", string(u.ID)))
	return s.mailer.SendPasswordReset(ctx, u.Email, u.FirstName, token)
}

// ResetPassword sets a new password using a reset token and signs the user in.
// Only the most recently issued reset token is accepted, and only once.
func (s *Service) ResetPassword(ctx context.Context, token, password string) (*Result, error) {
	claims, err := s.parseToken(token, PurposeReset)
	if err != nil {
		return nil, err
	}
	u, err := s.storage.GetUser(ctx, model.UserID(claims.Subject))
	if err != nil {
		return nil, err
	}
	if u.ResetTokenID == "" || u.ResetTokenID != claims.ID {
		return nil, ErrInvalidToken
	}
	if u.PasswordHash == "" {
		return nil, ErrGoogleAccount
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = string(hash)
	u.ResetTokenID = ""
	u.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveUser(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("password reset", slog.String("user_id", string(u.ID)))
	return s.accessToken(u)
}

// GoogleAuthURL returns the Google consent URL; state carries the redirect target
func (s *Service) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", ErrGoogleNotConfigured
	}
	return s.google.AuthCodeURL(state), nil
}

// ResolveRedirect returns the frontend origin a Google callback may send the
// user back to. An empty state means the configured frontend.
func (s *Service) ResolveRedirect(state string) (string, bool) {
	if state == "" {
		return s.cfg.FrontendURL, true
	}
	if !ValidRedirect(state, s.cfg.AllowedRedirects) {
		return "", false
	}
	return strings.TrimRight(state, "/"), true
}

// GoogleSignIn exchanges an authorization code, finding or creating the
// account for the verified Google email
func (s *Service) GoogleSignIn(ctx context.Context, code string) (*Result, error) {
	if s.google == nil {
		return nil, ErrGoogleNotConfigured
	}
	identity, err := s.google.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("google code exchange failed", slog.String("error", err.Error()))
		return nil, err
	}
	if !identity.EmailVerified || identity.Email == "" {
		return nil, ErrGoogleEmailNotVerified
	}

	email := sanitize.Email(identity.Email)
	now := s.clock.Now()
	u, err := s.storage.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		u = &model.User{
			ID:              model.UserID(s.ids.NewID()),
			FirstName:       sanitize.Text(identity.GivenName),
			LastName:        sanitize.Text(identity.FamilyName),
			Email:           email,
			AuthProvider:    model.AuthProviderGoogle,
			GoogleID:        identity.Subject,
			IsEmailVerified: true,
			Role:            model.RoleUser,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.storage.CreateUser(ctx, u); err != nil {
			return nil, err
		}
		s.logger.Info("user signed up",
			slog.String("user_id", string(u.ID)),
			slog.String("provider", string(u.AuthProvider)),
		)
		s.afterwards.Run(ctx, s.newAccountActions(u, false)...)
		if u, err = s.reload(ctx, u); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if u.GoogleID != identity.Subject || u.AuthProvider != model.AuthProviderGoogle || !u.IsEmailVerified {
			u.GoogleID = identity.Subject
			u.AuthProvider = model.AuthProviderGoogle
			u.IsEmailVerified = true
			u.UpdatedAt = now
			if err := s.storage.SaveUser(ctx, u); err != nil {
				return nil, err
			}
			s.logger.Info("google account linked", slog.String("user_id", string(u.ID)))
		}
	}

	if u.IsSuspended {
		return nil, model.ErrUserSuspended
	}
	return s.accessToken(u)
}

func (s *Service) accessToken(u *model.User) (*Result, error) {
	token, _, claims, err := s.issueToken(u.ID, PurposeAccess, s.cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	return &Result{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: u}, nil
}

// newAccountActions claims guest entries, logs the signup and optionally
// sends the verification email
func (s *Service) newAccountActions(u *model.User, verify bool) []aftercommit.Action {
	actions := []aftercommit.Action{
		{Name: "claim_guest_players", Run: func(ctx context.Context) error {
			_, err := s.claimer.ClaimGuestPlayers(ctx, u)
			return err
		}},
		{Name: "signup_activity", Run: func(ctx context.Context) error {
			return s.activity.LogActivity(ctx, u.ID, user.ActivitySignedUp, map[string]string{"provider": string(u.AuthProvider)})
		}},
	}
	if verify {
		actions = append(actions, aftercommit.Action{Name: "verification_email", Run: func(ctx context.Context) error {
			token, _, _, err := s.issueToken(u.ID, PurposeVerify, s.cfg.VerifyTTL)
			if err != nil {
				return err
			}
			return s.mailer.SendVerification(ctx, u.Email, u.FirstName, token)
		}})
	}
	return actions
}

// reload returns the stored user after post-commit actions changed it
func (s *Service) reload(ctx context.Context, u *model.User) (*model.User, error) {
	return s.storage.GetUser(ctx, u.ID)
}
