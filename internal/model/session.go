package model

import (
	"slices"
	"strings"
	"time"
)

// SessionID uniquely identifies a recorded match
type SessionID string

// SessionStatus is the aggregate confirmation state of a session
type SessionStatus string

const (
	SessionPending   SessionStatus = "Pending"
	SessionConfirmed SessionStatus = "Confirmed"
)

// Result is a player's outcome in a session
type Result string

const (
	ResultWin  Result = "Win"
	ResultLoss Result = "Loss"
	ResultDraw Result = "Draw"
)

// Valid reports whether r is one of the known results
func (r Result) Valid() bool {
	switch r {
	case ResultWin, ResultLoss, ResultDraw:
		return true
	}
	return false
}

// Player is a participant entry embedded in a session.
// A nil User marks a guest identified only by name and email.
type Player struct {
	User        *UserID
	Name        string
	Email       string
	Score       *int
	Result      Result
	Confirmed   bool
	ConfirmedAt *time.Time
	Invited     bool
}

// IsGuest reports whether the player has no account reference
func (p *Player) IsGuest() bool {
	return p.User == nil
}

// Is reports whether the player is the registered user id
func (p *Player) Is(id UserID) bool {
	return p.User != nil && *p.User == id
}

// Confirm marks the player confirmed at t
func (p *Player) Confirm(t time.Time) {
	p.Confirmed = true
	p.ConfirmedAt = &t
}

// Session is one recorded play of a game
type Session struct {
	ID               SessionID
	Game             GameID
	Players          []Player
	Status           SessionStatus
	Notes            string
	Date             time.Time
	CreatedBy        UserID
	LastEditedBy     UserID
	CreatedAt        time.Time
	UpdatedAt        time.Time
	LastReminderSent *time.Time

	// Version is incremented on every save; a save with a stale version is rejected
	Version int64
}

// ComputeStatus derives the session status from its players.
// Confirmed iff every registered player is confirmed; guests never block.
func ComputeStatus(players []Player) SessionStatus {
	for i := range players {
		if players[i].User != nil && !players[i].Confirmed {
			return SessionPending
		}
	}
	return SessionConfirmed
}

// RecomputeStatus refreshes Status from Players
func (s *Session) RecomputeStatus() {
	s.Status = ComputeStatus(s.Players)
}

// FindPlayer returns the index of the registered player id, or -1
func (s *Session) FindPlayer(id UserID) int {
	return slices.IndexFunc(s.Players, func(p Player) bool { return p.Is(id) })
}

// HasParticipant reports whether id created the session or plays in it
func (s *Session) HasParticipant(id UserID) bool {
	return s.CreatedBy == id || s.FindPlayer(id) >= 0
}

// RegisteredPlayers returns the ids of all registered players in order
func (s *Session) RegisteredPlayers() []UserID {
	var ids []UserID
	for _, p := range s.Players {
		if p.User != nil {
			ids = append(ids, *p.User)
		}
	}
	return ids
}

// HasRegisteredPlayers reports whether any player references an account
func (s *Session) HasRegisteredPlayers() bool {
	return slices.ContainsFunc(s.Players, func(p Player) bool { return p.User != nil })
}

// RemovePlayer drops the registered player id and reports whether an entry was removed
func (s *Session) RemovePlayer(id UserID) bool {
	n := len(s.Players)
	s.Players = slices.DeleteFunc(s.Players, func(p Player) bool { return p.Is(id) })
	return len(s.Players) != n
}

// GuestIndexesByEmail returns indexes of guest players whose email matches
func (s *Session) GuestIndexesByEmail(email string) []int {
	var idx []int
	for i, p := range s.Players {
		if p.User == nil && p.Email != "" && strings.EqualFold(p.Email, email) {
			idx = append(idx, i)
		}
	}
	return idx
}

// ClaimGuest links the first guest entry matching email to id and confirms
// it. Further guest entries with that email keep their name and result but
// lose the email, so a user never appears twice in one session and no
// unclaimable entry is left behind. Reports whether an entry was claimed.
func (s *Session) ClaimGuest(email string, id UserID, at time.Time) bool {
	idx := s.GuestIndexesByEmail(email)
	if len(idx) == 0 {
		return false
	}
	uid := id
	s.Players[idx[0]].User = &uid
	s.Players[idx[0]].Confirm(at)
	for _, i := range idx[1:] {
		s.Players[i].Email = ""
		s.Players[i].Invited = false
	}
	s.RecomputeStatus()
	return true
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	c := *s
	if s.Players != nil {
		c.Players = make([]Player, len(s.Players))
		for i, p := range s.Players {
			c.Players[i] = p
			if p.User != nil {
				id := *p.User
				c.Players[i].User = &id
			}
			if p.Score != nil {
				score := *p.Score
				c.Players[i].Score = &score
			}
			if p.ConfirmedAt != nil {
				t := *p.ConfirmedAt
				c.Players[i].ConfirmedAt = &t
			}
		}
	}
	if s.LastReminderSent != nil {
		t := *s.LastReminderSent
		c.LastReminderSent = &t
	}
	return &c
}
