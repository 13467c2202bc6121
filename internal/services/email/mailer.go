package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/gysagsohn/game-tracker-server/internal/metrics"
)

// Template names, used as metric labels
const (
	TemplateVerify        = "verify_email"
	TemplateReset         = "password_reset"
	TemplateMatchInvite   = "match_invite"
	TemplateMatchReminder = "match_reminder"
	TemplateFriendRequest = "friend_request"
	TemplateFriendAccept  = "friend_accept"
	TemplateGuestLinked   = "guest_matches_linked"
)

// Mailer renders and sends the application's transactional emails
type Mailer struct {
	sender      Sender
	frontendURL string
	logger      *slog.Logger
}

// NewMailer creates a Mailer. Links in emails point at frontendURL.
func NewMailer(sender Sender, frontendURL string, logger *slog.Logger) *Mailer {
	return &Mailer{
		sender:      sender,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

func (m *Mailer) link(path string, query url.Values) string {
	u := m.frontendURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (m *Mailer) send(ctx context.Context, template, to, subject, title, preheader string, body templ.Component) error {
	html, err := render(ctx, layout(title, preheader, m.link("/", nil), body))
	if err != nil {
		return fmt.Errorf("render %s: %w", template, err)
	}

	err = m.sender.Send(ctx, to, subject, html)
	metrics.RecordEmail(template, err == nil)
	if err != nil {
		m.logger.Warn("email send failed",
			slog.String("template", template),
			slog.String("to", to),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// SendVerification sends the email verification link
func (m *Mailer) SendVerification(ctx context.Context, to, firstName, token string) error {
	link := m.link("/verify-email", url.Values{"token": {token}})
	return m.send(ctx, TemplateVerify, to, "Verify your email - Game Tracker", "Verify your email",
		"Confirm your email address to finish signing up.",
		join(
			greeting(firstName),
			paragraph("Click below to verify your email. The link expires in one hour."),
			button(link, "Verify email"),
		))
}

// SendPasswordReset sends the single-use password reset link
func (m *Mailer) SendPasswordReset(ctx context.Context, to, firstName, token string) error {
	link := m.link("/reset-password", url.Values{"token": {token}})
	return m.send(ctx, TemplateReset, to, "Reset your Game Tracker password", "Reset your password",
		"Use this link within 15 minutes to choose a new password.",
		join(
			greeting(firstName),
			paragraph("We received a request to reset your password. The link expires in 15 minutes and can only be used once."),
			button(link, "Reset password"),
		))
}

// SendMatchInvite invites a guest player to create an account
func (m *Mailer) SendMatchInvite(ctx context.Context, to, guestName, inviterName, gameName string) error {
	link := m.link("/signup", url.Values{"email": {to}})
	return m.send(ctx, TemplateMatchInvite, to, "You've been added to a match - Game Tracker", "You played a match",
		inviterName+" recorded a game of "+gameName+" with you.",
		join(
			greeting(guestName),
			paragraph(inviterName+" recorded a game of "+gameName+" with you on Game Tracker."),
			paragraph("Create an account with this email address and the match will be linked to you automatically."),
			button(link, "Join Game Tracker"),
		))
}

// SendMatchReminder asks a registered player to confirm a match
func (m *Mailer) SendMatchReminder(ctx context.Context, to, firstName, senderName, gameName, sessionID string) error {
	link := m.link("/matches/"+url.PathEscape(sessionID), nil)
	return m.send(ctx, TemplateMatchReminder, to, "Please confirm your match - Game Tracker", "Match waiting for you",
		senderName+" is waiting for you to confirm a game of "+gameName+".",
		join(
			greeting(firstName),
			paragraph(senderName+" is waiting for you to confirm your result in "+gameName+"."),
			button(link, "Review match"),
		))
}

// SendFriendRequest notifies a user of an incoming friend request
func (m *Mailer) SendFriendRequest(ctx context.Context, to, firstName, fromName string) error {
	return m.send(ctx, TemplateFriendRequest, to, "New Friend Request - Game Tracker", "New friend request",
		fromName+" sent you a friend request.",
		join(
			greeting(firstName),
			paragraph(fromName+" sent you a friend request on Game Tracker."),
			button(m.link("/friends/requests", nil), "View request"),
		))
}

// SendFriendAccepted tells the requester their friend request was accepted
func (m *Mailer) SendFriendAccepted(ctx context.Context, to, firstName, byName string) error {
	return m.send(ctx, TemplateFriendAccept, to, "Friend Request Accepted - Game Tracker", "Friend request accepted",
		byName+" accepted your friend request.",
		join(
			greeting(firstName),
			paragraph(byName+" accepted your friend request."),
			button(m.link("/friends", nil), "See your friends"),
		))
}

// SendGuestMatchesLinked tells a new user that earlier guest matches were linked
func (m *Mailer) SendGuestMatchesLinked(ctx context.Context, to, firstName string, count int) error {
	noun := "matches"
	if count == 1 {
		noun = "match"
	}
	return m.send(ctx, TemplateGuestLinked, to, "Your matches were linked - Game Tracker", "Welcome to Game Tracker",
		fmt.Sprintf("%d earlier %s now appear in your history.", count, noun),
		join(
			greeting(firstName),
			paragraph(fmt.Sprintf("We found %d %s you played as a guest and linked them to your new account.", count, noun)),
			button(m.link("/matches", nil), "View your matches"),
		))
}
