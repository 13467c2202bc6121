package friend

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/gysagsohn/game-tracker-server/internal/dependencies/clock"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/services/aftercommit"
	"github.com/gysagsohn/game-tracker-server/internal/services/notification"
	"github.com/gysagsohn/game-tracker-server/internal/services/user"
	"github.com/gysagsohn/game-tracker-server/internal/storage"
)

// SuggestionLimit caps the number of suggested friends
const SuggestionLimit = 10

// ErrInvalidResponse is returned when a response is neither Accepted nor Rejected
var ErrInvalidResponse = errors.New("friend response must be Accepted or Rejected")

// Notifier creates in-app notifications
type Notifier interface {
	Notify(ctx context.Context, in notification.Input) (*model.Notification, error)
}

// Mailer sends friend-related emails
type Mailer interface {
	SendFriendRequest(ctx context.Context, to, firstName, fromName string) error
	SendFriendAccepted(ctx context.Context, to, firstName, byName string) error
}

// ActivityLogger records user activity
type ActivityLogger interface {
	LogActivity(ctx context.Context, id model.UserID, action string, metadata map[string]string) error
}

// Request pairs a friend request with the other user involved
type Request struct {
	User    *model.User
	Request model.FriendRequest
}

// Service manages friendships and friend requests
type Service struct {
	storage    storage.Storage
	clock      clock.Clock
	notifier   Notifier
	mailer     Mailer
	activity   ActivityLogger
	afterwards *aftercommit.Runner
	logger     *slog.Logger
}

// New creates a friend Service
func New(
	storage storage.Storage,
	clock clock.Clock,
	notifier Notifier,
	mailer Mailer,
	activity ActivityLogger,
	afterwards *aftercommit.Runner,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:    storage,
		clock:      clock,
		notifier:   notifier,
		mailer:     mailer,
		activity:   activity,
		afterwards: afterwards,
		logger:     logger,
	}
}

// SendRequestByEmail sends a friend request to the user with the given email
func (s *Service) SendRequestByEmail(ctx context.Context, from model.UserID, email string) (*model.User, error) {
	target, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.SendRequest(ctx, from, target.ID); err != nil {
		return nil, err
	}
	return target, nil
}

// SendRequest records a pending request on the recipient and notifies them
func (s *Service) SendRequest(ctx context.Context, from, to model.UserID) error {
	if from == to {
		return model.ErrCannotFriendSelf
	}
	sender, err := s.storage.GetUser(ctx, from)
	if err != nil {
		return err
	}
	recipient, err := s.storage.GetUser(ctx, to)
	if err != nil {
		return err
	}
	if recipient.HasFriend(from) {
		return model.ErrAlreadyFriends
	}
	if recipient.PendingRequestFrom(from) != nil {
		return model.ErrFriendRequestExists
	}

	now := s.clock.Now()
	recipient.FriendRequests = append(recipient.FriendRequests, model.FriendRequest{
		From:      from,
		Status:    model.FriendRequestPending,
		CreatedAt: now,
	})
	recipient.UpdatedAt = now
	if err := s.storage.SaveUser(ctx, recipient); err != nil {
		return err
	}

	s.logger.Info("friend request sent",
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)

	s.afterwards.Run(ctx,
		aftercommit.Action{Name: "friend_request_notification", Run: func(ctx context.Context) error {
			_, err := s.notifier.Notify(ctx, notification.Input{
				Recipient: to,
				Sender:    &from,
				Type:      model.NotificationFriendRequest,
				Message:   sender.FirstName + " sent you a friend request.",
			})
			return err
		}},
		aftercommit.Action{Name: "friend_request_activity", Run: func(ctx context.Context) error {
			return s.activity.LogActivity(ctx, from, user.ActivitySentFriend, map[string]string{"to": string(to)})
		}},
		aftercommit.Action{Name: "friend_request_email", Run: func(ctx context.Context) error {
			return s.mailer.SendFriendRequest(ctx, recipient.Email, recipient.FirstName, sender.FullName())
		}},
	)
	return nil
}

// Respond accepts or rejects the pending request from senderID
func (s *Service) Respond(ctx context.Context, userID, senderID model.UserID, action model.FriendRequestStatus) error {
	if action != model.FriendRequestAccepted && action != model.FriendRequestRejected {
		return ErrInvalidResponse
	}
	u, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	req := u.PendingRequestFrom(senderID)
	if req == nil {
		return model.ErrFriendRequestNotFound
	}
	req.Status = action
	now := s.clock.Now()
	u.UpdatedAt = now

	if action == model.FriendRequestRejected {
		return s.storage.SaveUser(ctx, u)
	}

	sender, err := s.storage.GetUser(ctx, senderID)
	if err != nil {
		return err
	}
	u.AddFriend(senderID)
	sender.AddFriend(userID)
	sender.UpdatedAt = now
	if err := s.storage.SaveUser(ctx, u); err != nil {
		return err
	}
	if err := s.storage.SaveUser(ctx, sender); err != nil {
		return err
	}

	s.afterwards.Run(ctx,
		aftercommit.Action{Name: "friend_accept_notification", Run: func(ctx context.Context) error {
			_, err := s.notifier.Notify(ctx, notification.Input{
				Recipient: senderID,
				Sender:    &userID,
				Type:      model.NotificationFriendAccept,
				Message:   u.FullName() + " accepted your friend request.",
			})
			return err
		}},
		aftercommit.Action{Name: "friend_accept_activity", Run: func(ctx context.Context) error {
			return s.activity.LogActivity(ctx, userID, user.ActivityAcceptedFriend, map[string]string{"from": string(senderID)})
		}},
		aftercommit.Action{Name: "friend_accept_email", Run: func(ctx context.Context) error {
			return s.mailer.SendFriendAccepted(ctx, sender.Email, sender.FirstName, u.FullName())
		}},
	)
	return nil
}

// Friends returns the resolved friend list of userID
func (s *Service) Friends(ctx context.Context, userID model.UserID) ([]*model.User, error) {
	u, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, u.Friends), nil
}

// PendingRequests returns incoming pending requests with their senders
func (s *Service) PendingRequests(ctx context.Context, userID model.UserID) ([]Request, error) {
	u, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []Request{}
	for _, r := range u.FriendRequests {
		if r.Status != model.FriendRequestPending {
			continue
		}
		from, err := s.storage.GetUser(ctx, r.From)
		if err != nil {
			continue // sender deleted
		}
		out = append(out, Request{User: from, Request: r})
	}
	return out, nil
}

// SentRequests returns pending requests userID has sent to others
func (s *Service) SentRequests(ctx context.Context, userID model.UserID) ([]Request, error) {
	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := []Request{}
	for _, u := range users {
		if r := u.PendingRequestFrom(userID); r != nil {
			out = append(out, Request{User: u, Request: *r})
		}
	}
	return out, nil
}

// Suggested returns friends of friends, most mutual friends first
func (s *Service) Suggested(ctx context.Context, userID model.UserID) ([]*model.User, error) {
	u, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	mutualCounts := map[model.UserID]int{}
	for _, friend := range s.resolve(ctx, u.Friends) {
		for _, candidate := range friend.Friends {
			if candidate == userID || u.HasFriend(candidate) {
				continue
			}
			mutualCounts[candidate]++
		}
	}

	candidates := make([]model.UserID, 0, len(mutualCounts))
	for id := range mutualCounts {
		candidates = append(candidates, id)
	}
	suggestions := s.resolve(ctx, candidates)
	suggestions = slices.DeleteFunc(suggestions, func(c *model.User) bool { return c.IsSuspended })
	slices.SortFunc(suggestions, func(a, b *model.User) int {
		if c := cmp.Compare(mutualCounts[b.ID], mutualCounts[a.ID]); c != 0 {
			return c
		}
		return cmp.Compare(a.FullName(), b.FullName())
	})
	if len(suggestions) > SuggestionLimit {
		suggestions = suggestions[:SuggestionLimit]
	}
	return suggestions, nil
}

// Mutual returns the friends userID and otherID have in common
func (s *Service) Mutual(ctx context.Context, userID, otherID model.UserID) ([]*model.User, error) {
	u, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	other, err := s.storage.GetUser(ctx, otherID)
	if err != nil {
		return nil, err
	}
	var common []model.UserID
	for _, f := range u.Friends {
		if other.HasFriend(f) {
			common = append(common, f)
		}
	}
	return s.resolve(ctx, common), nil
}

// Unfriend removes the friendship in both directions
func (s *Service) Unfriend(ctx context.Context, userID, friendID model.UserID) error {
	u, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	friend, err := s.storage.GetUser(ctx, friendID)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	u.RemoveFriend(friendID)
	u.UpdatedAt = now
	friend.RemoveFriend(userID)
	friend.UpdatedAt = now
	if err := s.storage.SaveUser(ctx, u); err != nil {
		return err
	}
	return s.storage.SaveUser(ctx, friend)
}

// EnsureFriendship makes a and b friends if they are not already and
// resolves any pending requests between them. It reports whether anything changed.
func (s *Service) EnsureFriendship(ctx context.Context, a, b model.UserID) (bool, error) {
	if a == b {
		return false, nil
	}
	ua, err := s.storage.GetUser(ctx, a)
	if err != nil {
		return false, err
	}
	ub, err := s.storage.GetUser(ctx, b)
	if err != nil {
		return false, err
	}

	changedA := ua.AddFriend(b)
	changedB := ub.AddFriend(a)
	if r := ua.PendingRequestFrom(b); r != nil {
		r.Status = model.FriendRequestAccepted
		changedA = true
	}
	if r := ub.PendingRequestFrom(a); r != nil {
		r.Status = model.FriendRequestAccepted
		changedB = true
	}

	now := s.clock.Now()
	if changedA {
		ua.UpdatedAt = now
		if err := s.storage.SaveUser(ctx, ua); err != nil {
			return false, err
		}
	}
	if changedB {
		ub.UpdatedAt = now
		if err := s.storage.SaveUser(ctx, ub); err != nil {
			return changedA, err
		}
	}
	return changedA || changedB, nil
}

// resolve loads users by id, skipping any that no longer exist
func (s *Service) resolve(ctx context.Context, ids []model.UserID) []*model.User {
	users := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		u, err := s.storage.GetUser(ctx, id)
		if err != nil {
			if !errors.Is(err, model.ErrUserNotFound) {
				s.logger.Warn("failed to load user", slog.String("user_id", string(id)), slog.String("error", err.Error()))
			}
			continue
		}
		users = append(users, u)
	}
	return users
}
