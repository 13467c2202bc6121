package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gosimple/slug"

	"github.com/gysagsohn/game-tracker-server/internal/dependencies/clock"
	"github.com/gysagsohn/game-tracker-server/internal/dependencies/ids"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/sanitize"
	"github.com/gysagsohn/game-tracker-server/internal/storage"
)

// GameInput describes a new catalog entry
type GameInput struct {
	Name           string
	Description    string
	Category       model.GameCategory
	CustomCategory string
	MinPlayers     int
	MaxPlayers     int
}

// GameUpdate lists changeable fields; nil fields are left unchanged
type GameUpdate struct {
	Name           *string
	Description    *string
	Category       *model.GameCategory
	CustomCategory *string
	MinPlayers     *int
	MaxPlayers     *int
}

// Service manages the game catalog
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	logger  *slog.Logger
}

// New creates a catalog Service
func New(storage storage.Storage, clock clock.Clock, ids ids.Generator, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		logger:  logger,
	}
}

// Slug returns the uniqueness key for a game name
func Slug(name string) string {
	if s := slug.Make(name); s != "" {
		return s
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// List returns all games ordered by name
func (s *Service) List(ctx context.Context) ([]*model.Game, error) {
	return s.storage.ListGames(ctx)
}

// Get returns a game by ID
func (s *Service) Get(ctx context.Context, id model.GameID) (*model.Game, error) {
	return s.storage.GetGame(ctx, id)
}

// Create adds a game. Games created by non-admins are marked custom
// and owned by their creator.
func (s *Service) Create(ctx context.Context, actor *model.User, in GameInput) (*model.Game, error) {
	now := s.clock.Now()
	g := &model.Game{
		ID:             model.GameID(s.ids.NewID()),
		Name:           sanitize.Text(in.Name),
		Description:    sanitize.Text(in.Description),
		Category:       in.Category,
		CustomCategory: sanitize.Text(in.CustomCategory),
		MinPlayers:     in.MinPlayers,
		MaxPlayers:     in.MaxPlayers,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if actor != nil && !actor.IsAdmin() {
		creator := actor.ID
		g.CreatedBy = &creator
		g.IsCustom = true
	}
	if err := normalise(g); err != nil {
		return nil, err
	}
	if err := s.storage.SaveGame(ctx, g); err != nil {
		return nil, err
	}

	s.logger.Info("game created",
		slog.String("game_id", string(g.ID)),
		slog.String("name", g.Name),
		slog.Bool("custom", g.IsCustom),
	)
	return g, nil
}

// Update changes a game. Only admins or the creator of a custom game may edit it.
func (s *Service) Update(ctx context.Context, actor *model.User, id model.GameID, upd GameUpdate) (*model.Game, error) {
	g, err := s.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, g) {
		return nil, model.ErrForbidden
	}

	if upd.Name != nil {
		g.Name = sanitize.Text(*upd.Name)
	}
	if upd.Description != nil {
		g.Description = sanitize.Text(*upd.Description)
	}
	if upd.Category != nil {
		g.Category = *upd.Category
	}
	if upd.CustomCategory != nil {
		g.CustomCategory = sanitize.Text(*upd.CustomCategory)
	}
	if upd.MinPlayers != nil {
		g.MinPlayers = *upd.MinPlayers
	}
	if upd.MaxPlayers != nil {
		g.MaxPlayers = *upd.MaxPlayers
	}
	if err := normalise(g); err != nil {
		return nil, err
	}
	g.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveGame(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Delete removes a game. Only admins or the creator of a custom game may delete it.
func (s *Service) Delete(ctx context.Context, actor *model.User, id model.GameID) error {
	g, err := s.storage.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(actor, g) {
		return model.ErrForbidden
	}
	return s.storage.DeleteGame(ctx, id)
}

func canModify(actor *model.User, g *model.Game) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return g.IsCustom && g.CreatedBy != nil && *g.CreatedBy == actor.ID
}

func normalise(g *model.Game) error {
	if g.Category == "" {
		g.Category = model.CategoryOther
	}
	if g.Category != model.CategoryOther {
		g.CustomCategory = ""
	}
	if g.MinPlayers > 0 && g.MaxPlayers > 0 && g.MinPlayers > g.MaxPlayers {
		return model.ErrInvalidPlayerRange
	}
	g.Slug = Slug(g.Name)
	return nil
}
