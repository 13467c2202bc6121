package notification

import (
	"context"
	"log/slog"

	"github.com/gysagsohn/game-tracker-server/internal/dependencies/clock"
	"github.com/gysagsohn/game-tracker-server/internal/dependencies/ids"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/storage"
)

// ListLimit is the number of notifications returned by List
const ListLimit = 20

// Publisher pushes a stored notification to live listeners
type Publisher interface {
	PublishNotification(n *model.Notification)
}

// Input describes a notification to create
type Input struct {
	Recipient model.UserID
	Sender    *model.UserID
	Type      model.NotificationType
	Message   string
	Session   *model.SessionID
}

// Service stores notifications and fans them out to live streams
type Service struct {
	storage   storage.Storage
	clock     clock.Clock
	ids       ids.Generator
	publisher Publisher
	logger    *slog.Logger
}

// New creates a notification Service. publisher may be nil.
func New(storage storage.Storage, clock clock.Clock, ids ids.Generator, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		storage:   storage,
		clock:     clock,
		ids:       ids,
		publisher: publisher,
		logger:    logger,
	}
}

// Notify persists a notification and publishes it
func (s *Service) Notify(ctx context.Context, in Input) (*model.Notification, error) {
	now := s.clock.Now()
	n := &model.Notification{
		ID:        model.NotificationID(s.ids.NewID()),
		Recipient: in.Recipient,
		Sender:    in.Sender,
		Type:      in.Type,
		Message:   in.Message,
		Session:   in.Session,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.storage.SaveNotification(ctx, n); err != nil {
		return nil, err
	}
	if s.publisher != nil {
		s.publisher.PublishNotification(n)
	}
	return n, nil
}

// NotifyEach sends the same notification to each recipient.
// Every recipient is attempted; the first error is returned.
func (s *Service) NotifyEach(ctx context.Context, recipients []model.UserID, in Input) error {
	var firstErr error
	for _, r := range recipients {
		in.Recipient = r
		if _, err := s.Notify(ctx, in); err != nil {
			s.logger.Warn("notification failed",
				slog.String("recipient", string(r)),
				slog.String("type", string(in.Type)),
				slog.String("error", err.Error()),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// List returns the user's latest notifications, newest first
func (s *Service) List(ctx context.Context, userID model.UserID) ([]*model.Notification, error) {
	ns, err := s.storage.ListNotificationsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ns) > ListLimit {
		ns = ns[:ListLimit]
	}
	return ns, nil
}

// UnreadCount returns the number of unread notifications for the user
func (s *Service) UnreadCount(ctx context.Context, userID model.UserID) (int, error) {
	ns, err := s.storage.ListNotificationsForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range ns {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read
func (s *Service) MarkRead(ctx context.Context, userID model.UserID, id model.NotificationID) (*model.Notification, error) {
	n, err := s.storage.GetNotification(ctx, id)
	if err != nil {
		return nil, err
	}
	// Other users' notifications are reported as missing
	if n.Recipient != userID {
		return nil, model.ErrNotificationNotFound
	}
	if n.Read {
		return n, nil
	}
	n.Read = true
	n.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// MarkAllRead marks every unread notification as read and returns how many changed
func (s *Service) MarkAllRead(ctx context.Context, userID model.UserID) (int, error) {
	ns, err := s.storage.ListNotificationsForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	now := s.clock.Now()
	updated := 0
	for _, n := range ns {
		if n.Read {
			continue
		}
		n.Read = true
		n.UpdatedAt = now
		if err := s.storage.SaveNotification(ctx, n); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}
