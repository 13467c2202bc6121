package model

import "time"

// NotificationID uniquely identifies a notification
type NotificationID string

// NotificationType is the kind of in-app notification
type NotificationType string

const (
	NotificationFriendRequest  NotificationType = "friend_request"
	NotificationFriendAccept   NotificationType = "friend_accept"
	NotificationMatchInvite    NotificationType = "match_invite"
	NotificationMatchUpdated   NotificationType = "match_updated"
	NotificationMatchConfirmed NotificationType = "match_confirmed"
	NotificationMatchDeclined  NotificationType = "match_declined"
	NotificationMatchReminder  NotificationType = "match_reminder"
	NotificationSystemAlert    NotificationType = "system_alert"
)

// Notification is an in-app message for one recipient
type Notification struct {
	ID        NotificationID
	Recipient UserID
	Sender    *UserID
	Type      NotificationType
	Message   string
	Session   *SessionID
	Read      bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy of the notification
func (n *Notification) Clone() *Notification {
	c := *n
	if n.Sender != nil {
		s := *n.Sender
		c.Sender = &s
	}
	if n.Session != nil {
		s := *n.Session
		c.Session = &s
	}
	return &c
}
