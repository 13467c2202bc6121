package email

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gysagsohn/game-tracker-server/internal/dependencies/mocks"
	"github.com/gysagsohn/game-tracker-server/internal/testutil"
)

func newTestMailer() (*Mailer, *mocks.MockMailer) {
	sender := mocks.NewMockMailer()
	return NewMailer(sender, "https://app.example.com/", testutil.NopLogger()), sender
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestSendVerificationLink(t *testing.T) {
	m, sender := newTestMailer()

	require.NoError(t, m.SendVerification(context.Background(), "a@example.com", "Alice", "tok en"))

	sent := sender.SentTo("a@example.com")
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Subject, "Verify your email")

	doc := parse(t, sent[0].HTML)
	href, ok := doc.Find("a.button").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "https://app.example.com/verify-email?token=tok+en", href)
	assert.Equal(t, "Hi Alice,", doc.Find(".body p").First().Text())
	assert.Equal(t, "Verify your email", doc.Find(".header").Text())
}

func TestUserTextIsEscaped(t *testing.T) {
	m, sender := newTestMailer()

	err := m.SendMatchInvite(context.Background(), "g@example.com", "<b>Guest</b>", "Bob<script>", "Catan")
	require.NoError(t, err)

	html := sender.Sent()[0].HTML
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "<b>Guest</b>")

	doc := parse(t, html)
	assert.Equal(t, 0, doc.Find(".body b").Length())
	assert.Contains(t, doc.Find(".body").Text(), "Bob<script> recorded a game of Catan")
}

func TestMatchInviteLinksToSignup(t *testing.T) {
	m, sender := newTestMailer()

	require.NoError(t, m.SendMatchInvite(context.Background(), "g@example.com", "Guest", "Bob", "Catan"))

	doc := parse(t, sender.Sent()[0].HTML)
	href, _ := doc.Find("a.button").Attr("href")
	assert.Equal(t, "https://app.example.com/signup?email=g%40example.com", href)
}

func TestSendFailureIsReturned(t *testing.T) {
	m, sender := newTestMailer()
	sender.Fail = true

	err := m.SendFriendRequest(context.Background(), "a@example.com", "Alice", "Bob")
	assert.ErrorIs(t, err, mocks.ErrMailerFailure)
}

func TestGuestMatchesLinkedPluralisation(t *testing.T) {
	m, sender := newTestMailer()

	require.NoError(t, m.SendGuestMatchesLinked(context.Background(), "a@example.com", "Alice", 1))
	require.NoError(t, m.SendGuestMatchesLinked(context.Background(), "a@example.com", "Alice", 3))

	sent := sender.Sent()
	assert.Contains(t, parse(t, sent[0].HTML).Find(".body").Text(), "1 match you played")
	assert.Contains(t, parse(t, sent[1].HTML).Find(".body").Text(), "3 matches you played")
}

func TestButtonRejectsUnsafeURL(t *testing.T) {
	html, err := render(context.Background(), button("javascript:alert(1)", "x"))
	require.NoError(t, err)
	assert.NotContains(t, html, "javascript:")
}
