package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gysagsohn/game-tracker-server/internal/dependencies/clock"
	"github.com/gysagsohn/game-tracker-server/internal/dependencies/ids"
	"github.com/gysagsohn/game-tracker-server/internal/metrics"
	"github.com/gysagsohn/game-tracker-server/internal/model"
	"github.com/gysagsohn/game-tracker-server/internal/sanitize"
	"github.com/gysagsohn/game-tracker-server/internal/services/aftercommit"
	"github.com/gysagsohn/game-tracker-server/internal/services/notification"
	"github.com/gysagsohn/game-tracker-server/internal/services/user"
	"github.com/gysagsohn/game-tracker-server/internal/storage"
)

// inviteCounterTTL outlives the calendar day the counter key is scoped to
const inviteCounterTTL = 48 * time.Hour

// Config holds limits for the session workflow
type Config struct {
	GuestInvitesPerDay int
	ReminderCooldown   time.Duration
}

// DefaultConfig returns default session limits
func DefaultConfig() Config {
	return Config{
		GuestInvitesPerDay: 3,
		ReminderCooldown:   6 * time.Hour,
	}
}

// Notifier creates in-app notifications
type Notifier interface {
	Notify(ctx context.Context, in notification.Input) (*model.Notification, error)
	NotifyEach(ctx context.Context, recipients []model.UserID, in notification.Input) error
}

// Mailer sends session-related emails
type Mailer interface {
	SendMatchInvite(ctx context.Context, to, guestName, inviterName, gameName string) error
	SendMatchReminder(ctx context.Context, to, firstName, senderName, gameName, sessionID string) error
	SendGuestMatchesLinked(ctx context.Context, to, firstName string, count int) error
}

// Friends establishes friendships between players
type Friends interface {
	EnsureFriendship(ctx context.Context, a, b model.UserID) (bool, error)
}

// Users records activity and derived stats
type Users interface {
	LogActivity(ctx context.Context, id model.UserID, action string, metadata map[string]string) error
	RefreshStats(ctx context.Context, id model.UserID) (*model.UserStats, error)
}

// PlayerInput describes one player in a create or update request.
// A nil User describes a guest.
type PlayerInput struct {
	User    *model.UserID
	Name    string
	Email   string
	Score   *int
	Result  model.Result
	Invited bool
}

// CreateInput describes a new session
type CreateInput struct {
	Game    model.GameID
	Players []PlayerInput
	Notes   string
	Date    *time.Time
}

// UpdateInput lists changeable fields; nil fields are left unchanged
type UpdateInput struct {
	Game    *model.GameID
	Players []PlayerInput
	Notes   *string
	Date    *time.Time
}

// DeclineResult reports the outcome of a decline
type DeclineResult struct {
	Session *model.Session // nil when the session was deleted
	Deleted bool
}

// ClaimResult reports what guest claiming linked
type ClaimResult struct {
	Sessions   []model.SessionID
	NewFriends int
}

// Controller runs the session lifecycle: creation, confirmation,
// reminders and guest claiming
type Controller struct {
	storage    storage.Storage
	clock      clock.Clock
	ids        ids.Generator
	notifier   Notifier
	mailer     Mailer
	friends    Friends
	users      Users
	afterwards *aftercommit.Runner
	cfg        Config
	logger     *slog.Logger
}

// NewController creates a session Controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	ids ids.Generator,
	notifier Notifier,
	mailer Mailer,
	friends Friends,
	users Users,
	afterwards *aftercommit.Runner,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	defaults := DefaultConfig()
	if cfg.GuestInvitesPerDay <= 0 {
		cfg.GuestInvitesPerDay = defaults.GuestInvitesPerDay
	}
	if cfg.ReminderCooldown <= 0 {
		cfg.ReminderCooldown = defaults.ReminderCooldown
	}
	return &Controller{
		storage:    storage,
		clock:      clock,
		ids:        ids,
		notifier:   notifier,
		mailer:     mailer,
		friends:    friends,
		users:      users,
		afterwards: afterwards,
		cfg:        cfg,
		logger:     logger,
	}
}

// Create records a new session. Guests and the creator are confirmed
// immediately; other registered players start unconfirmed.
func (c *Controller) Create(ctx context.Context, actor *model.User, in CreateInput) (*model.Session, error) {
	game, err := c.storage.GetGame(ctx, in.Game)
	if err != nil {
		return nil, err
	}
	now := c.clock.Now()
	players, err := c.buildPlayers(ctx, actor.ID, in.Players, now)
	if err != nil {
		return nil, err
	}

	date := now
	if in.Date != nil {
		date = in.Date.UTC()
	}
	sess := &model.Session{
		ID:           model.SessionID(c.ids.NewID()),
		Game:         game.ID,
		Players:      players,
		Notes:        sanitize.Text(in.Notes),
		Date:         date,
		CreatedBy:    actor.ID,
		LastEditedBy: actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	sess.RecomputeStatus()

	if err := c.storage.CreateSession(ctx, sess); err != nil {
		c.logger.Error("failed to save session",
			slog.String("session_id", string(sess.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	metrics.RecordSessionEvent(metrics.SessionCreated)

	c.logger.Info("session created",
		slog.String("session_id", string(sess.ID)),
		slog.String("game_id", string(game.ID)),
		slog.Int("player_count", len(players)),
		slog.String("status", string(sess.Status)),
	)

	sid := sess.ID
	actions := []aftercommit.Action{
		{Name: "match_invite_notifications", Run: func(ctx context.Context) error {
			return c.notifier.NotifyEach(ctx, otherRegistered(sess, actor.ID), notification.Input{
				Sender:  &actor.ID,
				Type:    model.NotificationMatchInvite,
				Message: fmt.Sprintf("%s added you to a game of %s. Please confirm your result.", actor.FullName(), game.Name),
				Session: &sid,
			})
		}},
		{Name: "match_created_activity", Run: func(ctx context.Context) error {
			return c.users.LogActivity(ctx, actor.ID, user.ActivityCreatedMatch, map[string]string{"session": string(sid)})
		}},
	}
	actions = append(actions, c.inviteActions(sess.Players, actor, game.Name)...)
	if sess.Status == model.SessionConfirmed {
		actions = append(actions, c.statsActions(sess)...)
	}
	c.afterwards.Run(ctx, actions...)

	return sess, nil
}

// Get returns a session visible to actor
func (c *Controller) Get(ctx context.Context, actor *model.User, id model.SessionID) (*model.Session, error) {
	sess, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !sess.HasParticipant(actor.ID) {
		return nil, model.ErrNotParticipant
	}
	return sess, nil
}

// ListMine returns every session the user created or plays in, newest first
func (c *Controller) ListMine(ctx context.Context, userID model.UserID) ([]*model.Session, error) {
	return c.storage.ListSessionsForUser(ctx, userID)
}

// MyPending returns sessions awaiting the user's confirmation
func (c *Controller) MyPending(ctx context.Context, userID model.UserID) ([]*model.Session, error) {
	sessions, err := c.storage.ListSessionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	pending := []*model.Session{}
	for _, sess := range sessions {
		if idx := sess.FindPlayer(userID); idx >= 0 && !sess.Players[idx].Confirmed {
			pending = append(pending, sess)
		}
	}
	return pending, nil
}

// Update edits a session. Changing the game or players resets confirmations:
// the editor and guests are confirmed, everyone else must confirm again.
func (c *Controller) Update(ctx context.Context, actor *model.User, id model.SessionID, in UpdateInput) (*model.Session, error) {
	sess, err := c.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	before := sess.Clone()
	now := c.clock.Now()

	gameID := sess.Game
	if in.Game != nil {
		gameID = *in.Game
	}
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	resetConfirmations := in.Game != nil && *in.Game != sess.Game
	sess.Game = game.ID

	if in.Players != nil {
		players, err := c.buildPlayers(ctx, actor.ID, in.Players, now)
		if err != nil {
			return nil, err
		}
		sess.Players = players
		resetConfirmations = true
	} else if resetConfirmations {
		for i := range sess.Players {
			p := &sess.Players[i]
			if p.IsGuest() || p.Is(actor.ID) {
				if !p.Confirmed {
					p.Confirm(now)
				}
				continue
			}
			p.Confirmed = false
			p.ConfirmedAt = nil
		}
	}
	if in.Notes != nil {
		sess.Notes = sanitize.Text(*in.Notes)
	}
	if in.Date != nil {
		sess.Date = in.Date.UTC()
	}
	sess.LastEditedBy = actor.ID
	sess.UpdatedAt = now
	sess.RecomputeStatus()

	if err := c.save(ctx, sess); err != nil {
		return nil, err
	}

	c.logger.Info("session updated",
		slog.String("session_id", string(sess.ID)),
		slog.String("editor", string(actor.ID)),
		slog.Bool("confirmations_reset", resetConfirmations),
	)

	sid := sess.ID
	actions := []aftercommit.Action{
		{Name: "match_updated_notifications", Run: func(ctx context.Context) error {
			return c.notifier.NotifyEach(ctx, otherRegistered(sess, actor.ID), notification.Input{
				Sender:  &actor.ID,
				Type:    model.NotificationMatchUpdated,
				Message: fmt.Sprintf("%s updated your game of %s.", actor.FullName(), game.Name),
				Session: &sid,
			})
		}},
	}
	if in.Players != nil {
		actions = append(actions, c.inviteActions(newlyInvitedGuests(before, sess), actor, game.Name)...)
	}
	if before.Status == model.SessionConfirmed || sess.Status == model.SessionConfirmed {
		actions = append(actions, c.statsActions(before, sess)...)
	}
	c.afterwards.Run(ctx, actions...)

	return sess, nil
}

// Delete removes a session. Only its creator or an admin may delete it.
func (c *Controller) Delete(ctx context.Context, actor *model.User, id model.SessionID) error {
	sess, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && sess.CreatedBy != actor.ID {
		return model.ErrForbidden
	}
	if err := c.storage.DeleteSession(ctx, id); err != nil {
		return err
	}
	metrics.RecordSessionEvent(metrics.SessionDeleted)

	c.logger.Info("session deleted",
		slog.String("session_id", string(id)),
		slog.String("by", string(actor.ID)),
	)

	if sess.Status == model.SessionConfirmed {
		c.afterwards.Run(ctx, c.statsActions(sess)...)
	}
	return nil
}

// Confirm marks the actor's player entry confirmed. Confirming twice is a no-op.
func (c *Controller) Confirm(ctx context.Context, actor *model.User, id model.SessionID) (*model.Session, error) {
	sess, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	idx := sess.FindPlayer(actor.ID)
	if idx < 0 {
		return nil, model.ErrPlayerEntryNotFound
	}
	if sess.Players[idx].Confirmed {
		return sess, nil
	}

	prevStatus := sess.Status
	now := c.clock.Now()
	sess.Players[idx].Confirm(now)
	sess.UpdatedAt = now
	sess.RecomputeStatus()

	if err := c.save(ctx, sess); err != nil {
		return nil, err
	}
	transitioned := prevStatus != model.SessionConfirmed && sess.Status == model.SessionConfirmed
	if transitioned {
		metrics.RecordSessionEvent(metrics.SessionConfirmed)
	}

	c.logger.Info("session player confirmed",
		slog.String("session_id", string(sess.ID)),
		slog.String("user_id", string(actor.ID)),
		slog.String("status", string(sess.Status)),
	)

	sid := sess.ID
	actions := []aftercommit.Action{
		{Name: "match_confirmed_activity", Run: func(ctx context.Context) error {
			return c.users.LogActivity(ctx, actor.ID, user.ActivityConfirmedMatch, map[string]string{"session": string(sid)})
		}},
	}
	if sess.CreatedBy != actor.ID {
		actions = append(actions, aftercommit.Action{Name: "match_confirmed_notification", Run: func(ctx context.Context) error {
			_, err := c.notifier.Notify(ctx, notification.Input{
				Recipient: sess.CreatedBy,
				Sender:    &actor.ID,
				Type:      model.NotificationMatchConfirmed,
				Message:   actor.FullName() + " confirmed your match.",
				Session:   &sid,
			})
			return err
		}})
	}
	if transitioned {
		actions = append(actions, c.statsActions(sess)...)
	}
	c.afterwards.Run(ctx, actions...)

	return sess, nil
}

// Decline removes the actor's player entry. A session left without
// registered players is deleted.
func (c *Controller) Decline(ctx context.Context, actor *model.User, id model.SessionID) (*DeclineResult, error) {
	sess, err := c.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.RemovePlayer(actor.ID) {
		return nil, model.ErrPlayerEntryNotFound
	}
	metrics.RecordSessionEvent(metrics.SessionDeclined)

	result := &DeclineResult{}
	var statsFor []*model.Session
	if !sess.HasRegisteredPlayers() {
		if err := c.storage.DeleteSession(ctx, id); err != nil {
			return nil, err
		}
		result.Deleted = true
		metrics.RecordSessionEvent(metrics.SessionDeleted)
	} else {
		prevStatus := sess.Status
		sess.UpdatedAt = c.clock.Now()
		sess.RecomputeStatus()
		if err := c.save(ctx, sess); err != nil {
			return nil, err
		}
		result.Session = sess
		if prevStatus != sess.Status {
			statsFor = append(statsFor, sess)
		}
	}

	c.logger.Info("session player declined",
		slog.String("session_id", string(id)),
		slog.String("user_id", string(actor.ID)),
		slog.Bool("deleted", result.Deleted),
	)

	actions := []aftercommit.Action{
		{Name: "match_declined_activity", Run: func(ctx context.Context) error {
			return c.users.LogActivity(ctx, actor.ID, user.ActivityDeclinedMatch, map[string]string{"session": string(id)})
		}},
	}
	if sess.CreatedBy != actor.ID {
		actions = append(actions, aftercommit.Action{Name: "match_declined_notification", Run: func(ctx context.Context) error {
			in := notification.Input{
				Recipient: sess.CreatedBy,
				Sender:    &actor.ID,
				Type:      model.NotificationMatchDeclined,
				Message:   actor.FullName() + " declined your match.",
			}
			if !result.Deleted {
				in.Session = &id
			}
			_, err := c.notifier.Notify(ctx, in)
			return err
		}})
	}
	if len(statsFor) > 0 {
		actions = append(actions, c.statsActions(statsFor...)...)
	}
	c.afterwards.Run(ctx, actions...)

	return result, nil
}

// Remind emails and notifies every registered, unconfirmed player other than
// the actor. Returns the number of players reminded.
func (c *Controller) Remind(ctx context.Context, actor *model.User, id model.SessionID) (int, error) {
	sess, err := c.Get(ctx, actor, id)
	if err != nil {
		return 0, err
	}
	now := c.clock.Now()
	if sess.LastReminderSent != nil && now.Sub(*sess.LastReminderSent) < c.cfg.ReminderCooldown {
		return 0, model.ErrReminderCooldown
	}
	if sess.Status == model.SessionConfirmed {
		return 0, model.ErrSessionAlreadyConfirmed
	}

	type recipient struct {
		user  *model.User
		email string
	}
	var recipients []recipient
	for _, p := range sess.Players {
		if p.User == nil || p.Confirmed || *p.User == actor.ID {
			continue
		}
		u, err := c.storage.GetUser(ctx, *p.User)
		if err != nil {
			if errors.Is(err, model.ErrUserNotFound) {
				continue
			}
			return 0, err
		}
		addr := p.Email
		if addr == "" {
			addr = u.Email
		}
		if addr == "" {
			continue
		}
		recipients = append(recipients, recipient{user: u, email: addr})
	}
	if len(recipients) == 0 {
		return 0, model.ErrNoPendingPlayers
	}

	// The cooldown is stamped before sending so a failing mail provider cannot bypass it
	sess.LastReminderSent = &now
	sess.UpdatedAt = now
	if err := c.save(ctx, sess); err != nil {
		return 0, err
	}
	metrics.RecordSessionEvent(metrics.SessionReminded)

	gameName := c.gameName(ctx, sess.Game)
	sid := sess.ID
	userIDs := make([]model.UserID, 0, len(recipients))
	actions := make([]aftercommit.Action, 0, len(recipients)+1)
	for _, r := range recipients {
		userIDs = append(userIDs, r.user.ID)
		actions = append(actions, aftercommit.Action{Name: "match_reminder_email", Run: func(ctx context.Context) error {
			return c.mailer.SendMatchReminder(ctx, r.email, r.user.FirstName, actor.FullName(), gameName, string(sid))
		}})
	}
	actions = append(actions, aftercommit.Action{Name: "match_reminder_notifications", Run: func(ctx context.Context) error {
		return c.notifier.NotifyEach(ctx, userIDs, notification.Input{
			Sender:  &actor.ID,
			Type:    model.NotificationMatchReminder,
			Message: fmt.Sprintf("%s is waiting for you to confirm a game of %s.", actor.FullName(), gameName),
			Session: &sid,
		})
	}})
	c.afterwards.Run(ctx, actions...)

	c.logger.Info("session reminders sent",
		slog.String("session_id", string(sid)),
		slog.Int("recipients", len(recipients)),
	)
	return len(recipients), nil
}

// ClaimGuestPlayers links guest entries whose email matches a new account,
// befriends the creators of those sessions and emails the user once.
// Individual failures are logged and skipped.
func (c *Controller) ClaimGuestPlayers(ctx context.Context, newUser *model.User) (*ClaimResult, error) {
	sessions, err := c.storage.ListSessionsWithGuestEmail(ctx, newUser.Email)
	if err != nil {
		return nil, err
	}

	result := &ClaimResult{}
	now := c.clock.Now()
	var creators []model.UserID
	var statsFor []*model.Session
	for _, sess := range sessions {
		prevStatus := sess.Status
		if !sess.ClaimGuest(newUser.Email, newUser.ID, now) {
			continue
		}
		sess.UpdatedAt = now

		if err := c.save(ctx, sess); err != nil {
			c.logger.Warn("failed to claim guest player",
				slog.String("session_id", string(sess.ID)),
				slog.String("user_id", string(newUser.ID)),
				slog.String("error", err.Error()),
			)
			continue
		}
		metrics.RecordSessionEvent(metrics.SessionClaimed)
		result.Sessions = append(result.Sessions, sess.ID)
		if sess.CreatedBy != newUser.ID && !containsID(creators, sess.CreatedBy) {
			creators = append(creators, sess.CreatedBy)
		}
		if sess.Status == model.SessionConfirmed || prevStatus != sess.Status {
			statsFor = append(statsFor, sess)
		}
	}
	if len(result.Sessions) == 0 {
		return result, nil
	}

	c.logger.Info("guest players claimed",
		slog.String("user_id", string(newUser.ID)),
		slog.Int("sessions", len(result.Sessions)),
	)

	actions := make([]aftercommit.Action, 0, len(creators)+3)
	for _, creator := range creators {
		actions = append(actions, aftercommit.Action{Name: "guest_claim_friendship", Run: func(ctx context.Context) error {
			added, err := c.friends.EnsureFriendship(ctx, newUser.ID, creator)
			if added {
				result.NewFriends++
			}
			return err
		}})
	}
	count := len(result.Sessions)
	actions = append(actions,
		aftercommit.Action{Name: "guest_claim_email", Run: func(ctx context.Context) error {
			return c.mailer.SendGuestMatchesLinked(ctx, newUser.Email, newUser.FirstName, count)
		}},
		aftercommit.Action{Name: "guest_claim_activity", Run: func(ctx context.Context) error {
			return c.users.LogActivity(ctx, newUser.ID, user.ActivityLinkedGuestMatch, map[string]string{"count": fmt.Sprint(count)})
		}},
	)
	actions = append(actions, c.statsActions(statsFor...)...)
	c.afterwards.Run(ctx, actions...)

	return result, nil
}

// buildPlayers validates player inputs and applies initial confirmation state
func (c *Controller) buildPlayers(ctx context.Context, actorID model.UserID, inputs []PlayerInput, now time.Time) ([]model.Player, error) {
	if len(inputs) == 0 {
		return nil, model.ErrNoPlayers
	}
	players := make([]model.Player, 0, len(inputs))
	seen := map[model.UserID]bool{}
	for _, in := range inputs {
		p := model.Player{
			Name:    sanitize.Text(in.Name),
			Email:   sanitize.Email(in.Email),
			Score:   in.Score,
			Result:  in.Result,
			Invited: in.Invited,
		}
		if in.User != nil {
			if seen[*in.User] {
				return nil, model.ErrDuplicatePlayer
			}
			seen[*in.User] = true
			u, err := c.storage.GetUser(ctx, *in.User)
			if err != nil {
				return nil, err
			}
			id := u.ID
			p.User = &id
			if p.Name == "" {
				p.Name = u.FullName()
			}
			p.Invited = false
		}
		if p.IsGuest() || p.Is(actorID) {
			p.Confirm(now)
		}
		players = append(players, p)
	}
	return players, nil
}

// inviteActions emails invited guests, subject to the per-address daily cap
func (c *Controller) inviteActions(players []model.Player, actor *model.User, gameName string) []aftercommit.Action {
	var actions []aftercommit.Action
	for _, p := range players {
		if !p.IsGuest() || !p.Invited || p.Email == "" {
			continue
		}
		actions = append(actions, aftercommit.Action{Name: "guest_invite_email", Run: func(ctx context.Context) error {
			allowed, err := c.allowInvite(ctx, p.Email)
			if err != nil {
				return err
			}
			if !allowed {
				metrics.RecordInviteSuppressed()
				c.logger.Info("guest invite suppressed by daily cap", slog.String("email", p.Email))
				return nil
			}
			return c.mailer.SendMatchInvite(ctx, p.Email, p.Name, actor.FullName(), gameName)
		}})
	}
	return actions
}

// allowInvite counts an invite to email for today and reports whether it is within the cap
func (c *Controller) allowInvite(ctx context.Context, email string) (bool, error) {
	key := "invite:" + email + ":" + clock.Day(c.clock.Now())
	n, err := c.storage.IncrementCounter(ctx, key, inviteCounterTTL)
	if err != nil {
		return false, err
	}
	return n <= int64(c.cfg.GuestInvitesPerDay), nil
}

// statsActions refreshes stats for every registered player in the given sessions
func (c *Controller) statsActions(sessions ...*model.Session) []aftercommit.Action {
	var userIDs []model.UserID
	for _, sess := range sessions {
		for _, id := range sess.RegisteredPlayers() {
			if !containsID(userIDs, id) {
				userIDs = append(userIDs, id)
			}
		}
	}
	actions := make([]aftercommit.Action, 0, len(userIDs))
	for _, id := range userIDs {
		actions = append(actions, aftercommit.Action{Name: "refresh_stats", Run: func(ctx context.Context) error {
			_, err := c.users.RefreshStats(ctx, id)
			return err
		}})
	}
	return actions
}

func (c *Controller) save(ctx context.Context, sess *model.Session) error {
	err := c.storage.UpdateSession(ctx, sess)
	if errors.Is(err, model.ErrConcurrentUpdate) {
		metrics.RecordSessionEvent(metrics.SessionConflict)
		c.logger.Warn("session update conflict", slog.String("session_id", string(sess.ID)))
	}
	return err
}

func (c *Controller) gameName(ctx context.Context, id model.GameID) string {
	g, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return "a game"
	}
	return g.Name
}

// otherRegistered returns registered players except exclude
func otherRegistered(sess *model.Session, exclude model.UserID) []model.UserID {
	var out []model.UserID
	for _, id := range sess.RegisteredPlayers() {
		if id != exclude {
			out = append(out, id)
		}
	}
	return out
}

// newlyInvitedGuests returns invited guests in next whose email was not invited in prev
func newlyInvitedGuests(prev, next *model.Session) []model.Player {
	already := map[string]bool{}
	for _, p := range prev.Players {
		if p.IsGuest() && p.Invited && p.Email != "" {
			already[p.Email] = true
		}
	}
	var out []model.Player
	for _, p := range next.Players {
		if p.IsGuest() && p.Invited && p.Email != "" && !already[p.Email] {
			out = append(out, p)
		}
	}
	return out
}

func containsID(list []model.UserID, id model.UserID) bool {
	for _, x := range list {
		if x == id {
			return true
		}
	}
	return false
}
