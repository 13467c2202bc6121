package mocks

import (
	"context"
	"errors"
	"sync"
)

// ErrMailerFailure is returned by MockMailer when Fail is set
var ErrMailerFailure = errors.New("mock mailer failure")

// SentMail is one message captured by MockMailer
type SentMail struct {
	To      string
	Subject string
	HTML    string
}

// MockMailer records outgoing mail instead of delivering it
type MockMailer struct {
	mu   sync.Mutex
	sent []SentMail

	// Fail makes every Send return ErrMailerFailure
	Fail bool
}

// NewMockMailer creates an empty MockMailer
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Send records the message
func (m *MockMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return ErrMailerFailure
	}
	m.sent = append(m.sent, SentMail{To: to, Subject: subject, HTML: html})
	return nil
}

// Sent returns a copy of all recorded messages
func (m *MockMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}

// SentTo returns recorded messages addressed to the given recipient
func (m *MockMailer) SentTo(to string) []SentMail {
	var out []SentMail
	for _, s := range m.Sent() {
		if s.To == to {
			out = append(out, s)
		}
	}
	return out
}

// Reset clears recorded messages
func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}
