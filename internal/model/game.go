package model

import "time"

// GameID uniquely identifies a catalog game
type GameID string

// GameCategory groups games in the catalog
type GameCategory string

const (
	CategoryCard     GameCategory = "Card"
	CategoryBoard    GameCategory = "Board"
	CategoryDice     GameCategory = "Dice"
	CategoryWord     GameCategory = "Word"
	CategoryStrategy GameCategory = "Strategy"
	CategoryTrivia   GameCategory = "Trivia"
	CategoryParty    GameCategory = "Party"
	CategoryOther    GameCategory = "Other"
)

// Game is a catalog entry that sessions are recorded against
type Game struct {
	ID             GameID
	Name           string
	Slug           string // unique key derived from Name
	Description    string
	Category       GameCategory
	CustomCategory string // only meaningful when Category is Other
	MinPlayers     int
	MaxPlayers     int
	CreatedBy      *UserID // nil for admin-seeded games
	IsCustom       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Clone returns a copy of the game
func (g *Game) Clone() *Game {
	c := *g
	if g.CreatedBy != nil {
		id := *g.CreatedBy
		c.CreatedBy = &id
	}
	return &c
}
