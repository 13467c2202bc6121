package storage

import (
	"cmp"
	"slices"

	"github.com/gysagsohn/game-tracker-server/internal/model"
)

// SortSessions orders sessions newest first by Date, then CreatedAt
func SortSessions(sessions []*model.Session) {
	slices.SortStableFunc(sessions, func(a, b *model.Session) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// SortNotifications orders notifications newest first
func SortNotifications(ns []*model.Notification) {
	slices.SortStableFunc(ns, func(a, b *model.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

// SortUsers orders users by creation time, oldest first
func SortUsers(users []*model.User) {
	slices.SortStableFunc(users, func(a, b *model.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// SortGames orders games by name
func SortGames(games []*model.Game) {
	slices.SortStableFunc(games, func(a, b *model.Game) int {
		return cmp.Compare(a.Name, b.Name)
	})
}
