package admin

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/gysagsohn/game-tracker-server/internal/dependencies/clock"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/sanitize"
	"github.com/gysagsohn/game-tracker-server/internal/storage"
)

// ErrInvalidRange is returned when a date range ends before it starts
var ErrInvalidRange = errors.New("end must not be before start")

// Overview is every user together with every session
type Overview struct {
	Users    []*model.User
	Sessions []*model.Session
}

// UserCounts summarises the user base
type UserCounts struct {
	Total    int
	Verified int
	Admins   int
}

// GamePlays is the number of sessions recorded for a game
type GamePlays struct {
	GameID model.GameID
	Title  string
	Plays  int
}

// UserUpdate lists the account fields an admin may change
type UserUpdate struct {
	FirstName       *string
	LastName        *string
	Role            *model.Role
	IsSuspended     *bool
	IsEmailVerified *bool
}

// Service provides admin-only account management and analytics
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new admin Service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{storage: storage, clock: clock, logger: logger}
}

// Overview returns all users and all sessions
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := s.storage.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	return &Overview{Users: users, Sessions: sessions}, nil
}

// SearchUsers matches q case-insensitively against names and email.
// An empty query returns every user.
func (s *Service) SearchUsers(ctx context.Context, q string) ([]*model.User, error) {
	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return users, nil
	}
	matches := []*model.User{}
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.FirstName), q) ||
			strings.Contains(strings.ToLower(u.LastName), q) ||
			strings.Contains(u.Email, q) {
			matches = append(matches, u)
		}
	}
	return matches, nil
}

// UpdateUser applies an admin edit. Admins cannot suspend or demote themselves.
func (s *Service) UpdateUser(ctx context.Context, actor *model.User, id model.UserID, upd UserUpdate) (*model.User, error) {
	u, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID == id {
		if upd.IsSuspended != nil && *upd.IsSuspended {
			return nil, model.ErrForbidden
		}
		if upd.Role != nil && *upd.Role != model.RoleAdmin {
			return nil, model.ErrForbidden
		}
	}

	if upd.FirstName != nil {
		u.FirstName = sanitize.Text(*upd.FirstName)
	}
	if upd.LastName != nil {
		u.LastName = sanitize.Text(*upd.LastName)
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.IsSuspended != nil {
		u.IsSuspended = *upd.IsSuspended
	}
	if upd.IsEmailVerified != nil {
		u.IsEmailVerified = *upd.IsEmailVerified
	}
	u.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveUser(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user updated by admin",
		slog.String("user_id", string(u.ID)),
		slog.String("admin_id", string(actor.ID)),
		slog.Bool("suspended", u.IsSuspended),
		slog.String("role", string(u.Role)),
	)
	return u, nil
}

// DeleteUser removes an account, its notifications and every friend link to it
func (s *Service) DeleteUser(ctx context.Context, actor *model.User, id model.UserID) error {
	if actor.ID == id {
		return model.ErrForbidden
	}
	if _, err := s.storage.GetUser(ctx, id); err != nil {
		return err
	}
	if err := s.storage.DeleteUser(ctx, id); err != nil {
		return err
	}
	if err := s.storage.DeleteNotificationsForUser(ctx, id); err != nil {
		s.logger.Warn("failed to delete notifications for user",
			slog.String("user_id", string(id)),
			slog.String("error", err.Error()),
		)
	}

	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	for _, u := range users {
		before := len(u.Friends) + len(u.FriendRequests)
		u.RemoveFriend(id)
		u.FriendRequests = slices.DeleteFunc(u.FriendRequests, func(r model.FriendRequest) bool { return r.From == id })
		if len(u.Friends)+len(u.FriendRequests) == before {
			continue
		}
		u.UpdatedAt = now
		if err := s.storage.SaveUser(ctx, u); err != nil {
			s.logger.Warn("failed to unlink deleted user",
				slog.String("user_id", string(u.ID)),
				slog.String("deleted_id", string(id)),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("user deleted by admin",
		slog.String("user_id", string(id)),
		slog.String("admin_id", string(actor.ID)),
	)
	return nil
}

// UserCounts returns total, verified and admin user counts
func (s *Service) UserCounts(ctx context.Context) (*UserCounts, error) {
	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	counts := &UserCounts{Total: len(users)}
	for _, u := range users {
		if u.IsEmailVerified {
			counts.Verified++
		}
		if u.IsAdmin() {
			counts.Admins++
		}
	}
	return counts, nil
}

// MostPlayed counts sessions per game, most played first.
// Sessions whose game no longer exists are skipped.
func (s *Service) MostPlayed(ctx context.Context) ([]GamePlays, error) {
	sessions, err := s.storage.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	plays := map[model.GameID]int{}
	for _, sess := range sessions {
		plays[sess.Game]++
	}

	out := make([]GamePlays, 0, len(plays))
	for id, n := range plays {
		g, err := s.storage.GetGame(ctx, id)
		if err != nil {
			if errors.Is(err, model.ErrGameNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, GamePlays{GameID: id, Title: g.Name, Plays: n})
	}
	slices.SortFunc(out, func(a, b GamePlays) int {
		if c := cmp.Compare(b.Plays, a.Plays); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
	return out, nil
}

// SessionsBetween returns sessions dated within [start, end], newest first
func (s *Service) SessionsBetween(ctx context.Context, start, end time.Time) ([]*model.Session, error) {
	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	sessions, err := s.storage.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	out := []*model.Session{}
	for _, sess := range sessions {
		if !sess.Date.Before(start) && !sess.Date.After(end) {
			out = append(out, sess)
		}
	}
	return out, nil
}
