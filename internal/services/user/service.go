package user

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/gysagsohn/game-tracker-server/internal/dependencies/clock"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/sanitize"
	"github.com/gysagsohn/game-tracker-server/internal/storage"
)

const (
	// SearchMinLength is the shortest accepted search query
	SearchMinLength = 2
	// SearchMaxResults caps the number of search results
	SearchMaxResults = 10
)

// ErrQueryTooShort is returned for search queries below SearchMinLength
var ErrQueryTooShort = errors.New("search query must be at least 2 characters")

// Activity actions
const (
	ActivitySignedUp         = "Signed Up"
	ActivityCreatedMatch     = "Created Match"
	ActivityConfirmedMatch   = "Confirmed Match"
	ActivityDeclinedMatch    = "Declined Match"
	ActivitySentFriend       = "Sent Friend Request"
	ActivityAcceptedFriend   = "Accepted Friend Request"
	ActivityUpdatedProfile   = "Updated Profile"
	ActivityLinkedGuestMatch = "Linked Guest Matches"
)

// ProfileUpdate lists the fields a user may change on their own profile.
// Nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName     *string
	LastName      *string
	ProfileIcon   *string
	FavoriteGames []model.GameID
}

// Service manages user profiles, activity and stats
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a user Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// Get returns a user by ID
func (s *Service) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, id)
}

// UpdateProfile applies whitelisted, sanitised changes to the user's own profile
func (s *Service) UpdateProfile(ctx context.Context, id model.UserID, upd ProfileUpdate) (*model.User, error) {
	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.FirstName != nil {
		u.FirstName = sanitize.Text(*upd.FirstName)
	}
	if upd.LastName != nil {
		u.LastName = sanitize.Text(*upd.LastName)
	}
	if upd.ProfileIcon != nil {
		u.ProfileIcon = sanitize.Text(*upd.ProfileIcon)
	}
	if upd.FavoriteGames != nil {
		favs := make([]model.GameID, 0, len(upd.FavoriteGames))
		for _, g := range upd.FavoriteGames {
			if !slices.Contains(favs, g) {
				favs = append(favs, g)
			}
		}
		u.FavoriteGames = favs
	}

	now := s.clock.Now()
	u.UpdatedAt = now
	u.AppendActivity(model.ActivityEntry{Action: ActivityUpdatedProfile, CreatedAt: now})
	if err := s.storage.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Search finds active users by name or email, excluding the requester
func (s *Service) Search(ctx context.Context, requester model.UserID, query string) ([]*model.User, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < SearchMinLength {
		return nil, ErrQueryTooShort
	}

	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	results := []*model.User{}
	for _, u := range users {
		if u.ID == requester || u.IsSuspended {
			continue
		}
		if strings.Contains(strings.ToLower(u.FirstName), q) ||
			strings.Contains(strings.ToLower(u.LastName), q) ||
			strings.Contains(strings.ToLower(u.FullName()), q) ||
			strings.Contains(strings.ToLower(u.Email), q) {
			results = append(results, u)
			if len(results) == SearchMaxResults {
				break
			}
		}
	}
	return results, nil
}

// LogActivity appends an entry to the user's capped activity log
func (s *Service) LogActivity(ctx context.Context, id model.UserID, action string, metadata map[string]string) error {
	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return err
	}
	u.AppendActivity(model.ActivityEntry{
		Action:    action,
		Metadata:  metadata,
		CreatedAt: s.clock.Now(),
	})
	return s.storage.SaveUser(ctx, u)
}

// Activity returns the user's activity log, newest first
func (s *Service) Activity(ctx context.Context, id model.UserID) ([]model.ActivityEntry, error) {
	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	entries := slices.Clone(u.ActivityLog)
	slices.Reverse(entries)
	return entries, nil
}

// RefreshStats recomputes win/loss/draw counts and the most played game
// from the user's confirmed sessions
func (s *Service) RefreshStats(ctx context.Context, id model.UserID) (*model.UserStats, error) {
	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	sessions, err := s.storage.ListSessionsForUser(ctx, id)
	if err != nil {
		return nil, err
	}

	var stats model.UserStats
	plays := map[model.GameID]int{}
	for _, sess := range sessions {
		if sess.Status != model.SessionConfirmed {
			continue
		}
		idx := sess.FindPlayer(id)
		if idx < 0 {
			continue
		}
		plays[sess.Game]++
		switch sess.Players[idx].Result {
		case model.ResultWin:
			stats.Wins++
		case model.ResultLoss:
			stats.Losses++
		case model.ResultDraw:
			stats.Draws++
		}
	}

	stats.MostPlayed = s.mostPlayedName(ctx, plays)
	u.Stats = stats
	u.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Service) mostPlayedName(ctx context.Context, plays map[model.GameID]int) string {
	best, bestName := 0, ""
	for gameID, n := range plays {
		g, err := s.storage.GetGame(ctx, gameID)
		if err != nil {
			continue
		}
		if n > best || (n == best && g.Name < bestName) {
			best, bestName = n, g.Name
		}
	}
	return bestName
}
