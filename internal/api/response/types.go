package response

import (
	"time"

	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/services/admin"
	"github.com/gysagsohn/game-tracker-server/internal/services/auth"
)

// Message is a plain confirmation response
type Message struct {
	Message string `json:"message"`
}

// Stats represents a user's confirmed results
type Stats struct {
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Draws      int    `json:"draws"`
	MostPlayed string `json:"mostPlayed,omitempty"`
}

// StatsFromModel converts model.UserStats
func StatsFromModel(s model.UserStats) Stats {
	return Stats(s)
}

// User is the account view returned to its owner and to admins
type User struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	AuthProvider    string    `json:"authProvider"`
	ProfileIcon     string    `json:"profileIcon,omitempty"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	IsSuspended     bool      `json:"isSuspended"`
	Role            string    `json:"role"`
	Friends         []string  `json:"friends"`
	FavoriteGames   []string  `json:"favoriteGames"`
	Stats           Stats     `json:"stats"`
	CreatedAt       time.Time `json:"createdAt"`
}

// UserFromModel converts model.User, omitting credentials
func UserFromModel(u *model.User) User {
	friends := make([]string, len(u.Friends))
	for i, f := range u.Friends {
		friends[i] = string(f)
	}
	favorites := make([]string, len(u.FavoriteGames))
	for i, g := range u.FavoriteGames {
		favorites[i] = string(g)
	}
	return User{
		ID:              string(u.ID),
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		AuthProvider:    string(u.AuthProvider),
		ProfileIcon:     u.ProfileIcon,
		IsEmailVerified: u.IsEmailVerified,
		IsSuspended:     u.IsSuspended,
		Role:            string(u.Role),
		Friends:         friends,
		FavoriteGames:   favorites,
		Stats:           StatsFromModel(u.Stats),
		CreatedAt:       u.CreatedAt,
	}
}

// UsersFromModel converts a slice of users
func UsersFromModel(users []*model.User) []User {
	out := make([]User, len(users))
	for i, u := range users {
		out[i] = UserFromModel(u)
	}
	return out
}

// PublicUser is the view of an account shown to other users
type PublicUser struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email,omitempty"`
	ProfileIcon string `json:"profileIcon,omitempty"`
	Stats       *Stats `json:"stats,omitempty"`
}

// PublicUserFromModel converts model.User. Email and stats are only shown to friends.
func PublicUserFromModel(u *model.User, isFriend bool) PublicUser {
	p := PublicUser{
		ID:          string(u.ID),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		ProfileIcon: u.ProfileIcon,
	}
	if isFriend {
		stats := StatsFromModel(u.Stats)
		p.Email = u.Email
		p.Stats = &stats
	}
	return p
}

// PublicUsersFromModel converts users visible to one another as friends
func PublicUsersFromModel(users []*model.User, isFriend bool) []PublicUser {
	out := make([]PublicUser, len(users))
	for i, u := range users {
		out[i] = PublicUserFromModel(u, isFriend)
	}
	return out
}

// Auth is the response for endpoints that sign a user in
type Auth struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// AuthFromResult converts an auth.Result
func AuthFromResult(r *auth.Result) Auth {
	return Auth{Token: r.Token, ExpiresAt: r.ExpiresAt, User: UserFromModel(r.User)}
}

// Signup is the response for a new local account
type Signup struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// Activity is one activity log entry
type Activity struct {
	Action    string            `json:"action"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// ActivitiesFromModel converts activity entries
func ActivitiesFromModel(entries []model.ActivityEntry) []Activity {
	out := make([]Activity, len(entries))
	for i, e := range entries {
		out[i] = Activity{Action: e.Action, Metadata: e.Metadata, CreatedAt: e.CreatedAt}
	}
	return out
}

// FriendRequest is a pending incoming or outgoing request
type FriendRequest struct {
	User      PublicUser `json:"user"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Game represents a catalog game
type Game struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Category       string    `json:"category"`
	CustomCategory string    `json:"customCategory,omitempty"`
	MinPlayers     int       `json:"minPlayers,omitempty"`
	MaxPlayers     int       `json:"maxPlayers,omitempty"`
	IsCustom       bool      `json:"isCustom"`
	CreatedBy      *string   `json:"createdBy,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// GameFromModel converts model.Game
func GameFromModel(g *model.Game) Game {
	return Game{
		ID:             string(g.ID),
		Name:           g.Name,
		Description:    g.Description,
		Category:       string(g.Category),
		CustomCategory: g.CustomCategory,
		MinPlayers:     g.MinPlayers,
		MaxPlayers:     g.MaxPlayers,
		IsCustom:       g.IsCustom,
		CreatedBy:      (*string)(g.CreatedBy),
		CreatedAt:      g.CreatedAt,
	}
}

// GamesFromModel converts a slice of games
func GamesFromModel(games []*model.Game) []Game {
	out := make([]Game, len(games))
	for i, g := range games {
		out[i] = GameFromModel(g)
	}
	return out
}

// Player represents a player entry in a session
type Player struct {
	User        *string    `json:"user"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	Score       *int       `json:"score,omitempty"`
	Result      string     `json:"result,omitempty"`
	Confirmed   bool       `json:"confirmed"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	Invited     bool       `json:"invited"`
}

// Session represents a recorded match
type Session struct {
	ID               string     `json:"id"`
	Game             string     `json:"game"`
	Players          []Player   `json:"players"`
	Status           string     `json:"status"`
	Notes            string     `json:"notes,omitempty"`
	Date             time.Time  `json:"date"`
	CreatedBy        string     `json:"createdBy"`
	LastEditedBy     string     `json:"lastEditedBy,omitempty"`
	LastReminderSent *time.Time `json:"lastReminderSent,omitempty"`
	Version          int64      `json:"version"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// SessionFromModel converts model.Session
func SessionFromModel(s *model.Session) Session {
	players := make([]Player, len(s.Players))
	for i, p := range s.Players {
		players[i] = Player{
			User:        (*string)(p.User),
			Name:        p.Name,
			Email:       p.Email,
			Score:       p.Score,
			Result:      string(p.Result),
			Confirmed:   p.Confirmed,
			ConfirmedAt: p.ConfirmedAt,
			Invited:     p.Invited,
		}
	}
	return Session{
		ID:               string(s.ID),
		Game:             string(s.Game),
		Players:          players,
		Status:           string(s.Status),
		Notes:            s.Notes,
		Date:             s.Date,
		CreatedBy:        string(s.CreatedBy),
		LastEditedBy:     string(s.LastEditedBy),
		LastReminderSent: s.LastReminderSent,
		Version:          s.Version,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// SessionsFromModel converts a slice of sessions
func SessionsFromModel(sessions []*model.Session) []Session {
	out := make([]Session, len(sessions))
	for i, s := range sessions {
		out[i] = SessionFromModel(s)
	}
	return out
}

// Decline is the response after declining a session
type Decline struct {
	Message string   `json:"message"`
	Deleted bool     `json:"deleted"`
	Session *Session `json:"session,omitempty"`
}

// Remind is the response after sending reminders
type Remind struct {
	Message  string `json:"message"`
	Reminded int    `json:"reminded"`
}

// Notification represents an in-app notification
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Sender    *string   `json:"sender,omitempty"`
	Session   *string   `json:"session,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationFromModel converts model.Notification
func NotificationFromModel(n *model.Notification) Notification {
	return Notification{
		ID:        string(n.ID),
		Type:      string(n.Type),
		Message:   n.Message,
		Sender:    (*string)(n.Sender),
		Session:   (*string)(n.Session),
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// Notifications is the notification list with its unread count
type Notifications struct {
	Notifications []Notification `json:"notifications"`
	Unread        int            `json:"unread"`
}

// NotificationsFromModel converts a slice of notifications
func NotificationsFromModel(ns []*model.Notification, unread int) Notifications {
	out := make([]Notification, len(ns))
	for i, n := range ns {
		out[i] = NotificationFromModel(n)
	}
	return Notifications{Notifications: out, Unread: unread}
}

// ReadAll is the response after marking all notifications read
type ReadAll struct {
	Updated int `json:"updated"`
}

// AdminOverview is every user with every session
type AdminOverview struct {
	Users    []User    `json:"users"`
	Sessions []Session `json:"sessions"`
}

// AdminUserSessions is one user with their sessions
type AdminUserSessions struct {
	User     User      `json:"user"`
	Sessions []Session `json:"sessions"`
}

// UserCounts summarises the user base
type UserCounts struct {
	TotalUsers    int `json:"totalUsers"`
	VerifiedUsers int `json:"verifiedUsers"`
	Admins        int `json:"admins"`
}

// UserCountsFromModel converts admin.UserCounts
func UserCountsFromModel(c *admin.UserCounts) UserCounts {
	return UserCounts{TotalUsers: c.Total, VerifiedUsers: c.Verified, Admins: c.Admins}
}

// GamePlays is a most-played games entry
type GamePlays struct {
	GameID string `json:"gameId"`
	Title  string `json:"title"`
	Plays  int    `json:"plays"`
}

// GamePlaysFromModel converts admin.GamePlays entries
func GamePlaysFromModel(stats []admin.GamePlays) []GamePlays {
	out := make([]GamePlays, len(stats))
	for i, s := range stats {
		out[i] = GamePlays{GameID: string(s.GameID), Title: s.Title, Plays: s.Plays}
	}
	return out
}

// Health is the health check response
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
