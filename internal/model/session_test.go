package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registeredPlayer(id UserID, confirmed bool) Player {
	return Player{User: &id, Name: string(id), Confirmed: confirmed}
}

func guestPlayer(name, email string) Player {
	return Player{Name: name, Email: email, Confirmed: true}
}

func TestComputeStatus(t *testing.T) {
	tests := []struct {
		name    string
		players []Player
		want    SessionStatus
	}{
		{"no players", nil, SessionConfirmed},
		{"guests only", []Player{guestPlayer("Gary", ""), {Name: "Unconfirmed guest"}}, SessionConfirmed},
		{"all registered confirmed", []Player{registeredPlayer("a", true), registeredPlayer("b", true)}, SessionConfirmed},
		{"one registered pending", []Player{registeredPlayer("a", true), registeredPlayer("b", false)}, SessionPending},
		{"pending with guests", []Player{guestPlayer("Gary", ""), registeredPlayer("b", false)}, SessionPending},
		{"confirmed with guests", []Player{guestPlayer("Gary", ""), registeredPlayer("a", true)}, SessionConfirmed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStatus(tt.players))
		})
	}
}

func TestClaimGuest(t *testing.T) {
	at := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	sess := &Session{Players: []Player{
		registeredPlayer("alice", true),
		{Name: "Dan", Email: "Dan@Example.com", Invited: true},
		guestPlayer("Dan again", "dan@example.com"),
		guestPlayer("Erin", "erin@example.com"),
	}}

	require.True(t, sess.ClaimGuest("dan@example.com", "dan", at))

	assert.True(t, sess.Players[1].Is("dan"))
	assert.True(t, sess.Players[1].Confirmed)
	assert.Equal(t, at, *sess.Players[1].ConfirmedAt)
	assert.True(t, sess.Players[2].IsGuest())
	assert.Empty(t, sess.Players[2].Email)
	assert.Equal(t, "erin@example.com", sess.Players[3].Email)
	assert.Empty(t, sess.GuestIndexesByEmail("dan@example.com"))
	assert.Equal(t, SessionConfirmed, sess.Status)

	assert.False(t, sess.ClaimGuest("dan@example.com", "dan", at))
}
