package model

import (
	"slices"
	"time"
)

// UserID uniquely identifies a registered account
type UserID string

// AuthProvider records how an account signs in
type AuthProvider string

const (
	AuthProviderLocal    AuthProvider = "local"
	AuthProviderGoogle   AuthProvider = "google"
	AuthProviderFacebook AuthProvider = "facebook"
)

// Role controls access to admin endpoints
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// FriendRequestStatus is the state of an incoming friend request
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "Pending"
	FriendRequestAccepted FriendRequestStatus = "Accepted"
	FriendRequestRejected FriendRequestStatus = "Rejected"
)

// MaxActivityEntries bounds the activity log; oldest entries are evicted first
const MaxActivityEntries = 100

// FriendRequest is an incoming request stored on the recipient
type FriendRequest struct {
	From      UserID
	Status    FriendRequestStatus
	CreatedAt time.Time
}

// UserStats summarises confirmed match results
type UserStats struct {
	Wins       int
	Losses     int
	Draws      int
	MostPlayed string
}

// ActivityEntry is one line of a user's activity log
type ActivityEntry struct {
	Action    string
	Metadata  map[string]string
	CreatedAt time.Time
}

// User is a registered account
type User struct {
	ID              UserID
	FirstName       string
	LastName        string
	Email           string // unique, lowercase
	PasswordHash    string // empty for Google-only accounts
	AuthProvider    AuthProvider
	GoogleID        string
	ProfileIcon     string
	IsEmailVerified bool
	IsSuspended     bool
	Role            Role

	Friends        []UserID
	FriendRequests []FriendRequest
	FavoriteGames  []GameID
	Stats          UserStats
	ActivityLog    []ActivityEntry

	// ResetTokenID is the id of the only password reset token that may still be used
	ResetTokenID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns first and last name joined
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasFriend reports whether id is in the friends list
func (u *User) HasFriend(id UserID) bool {
	return slices.Contains(u.Friends, id)
}

// AddFriend adds id to the friends list if absent and reports whether it was added
func (u *User) AddFriend(id UserID) bool {
	if u.HasFriend(id) {
		return false
	}
	u.Friends = append(u.Friends, id)
	return true
}

// RemoveFriend removes id from the friends list
func (u *User) RemoveFriend(id UserID) {
	u.Friends = slices.DeleteFunc(u.Friends, func(f UserID) bool { return f == id })
}

// PendingRequestFrom returns the pending incoming request from id, or nil
func (u *User) PendingRequestFrom(id UserID) *FriendRequest {
	for i := range u.FriendRequests {
		if u.FriendRequests[i].From == id && u.FriendRequests[i].Status == FriendRequestPending {
			return &u.FriendRequests[i]
		}
	}
	return nil
}

// AppendActivity adds an entry, keeping only the newest MaxActivityEntries
func (u *User) AppendActivity(entry ActivityEntry) {
	u.ActivityLog = append(u.ActivityLog, entry)
	if over := len(u.ActivityLog) - MaxActivityEntries; over > 0 {
		u.ActivityLog = slices.Clone(u.ActivityLog[over:])
	}
}

// Clone returns a deep copy of the user
func (u *User) Clone() *User {
	c := *u
	c.Friends = slices.Clone(u.Friends)
	c.FriendRequests = slices.Clone(u.FriendRequests)
	c.FavoriteGames = slices.Clone(u.FavoriteGames)
	if u.ActivityLog != nil {
		c.ActivityLog = make([]ActivityEntry, len(u.ActivityLog))
		for i, e := range u.ActivityLog {
			c.ActivityLog[i] = e
			if e.Metadata != nil {
				meta := make(map[string]string, len(e.Metadata))
				for k, v := range e.Metadata {
					meta[k] = v
				}
				c.ActivityLog[i].Metadata = meta
			}
		}
	}
	return &c
}
