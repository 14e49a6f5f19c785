// Package mailbox reads recent email from a mail source and scores the URLs
// found in each message.
package mailbox

import (
	"context"
	"errors"
)

var (
	// ErrNotAuthenticated is returned when a source has no usable credentials.
	ErrNotAuthenticated = errors.New("mail source is not authenticated")
	// ErrMessageNotFound is returned for an unknown message id.
	ErrMessageNotFound = errors.New("message not found")
)

// Message is the part of an email that URLs are extracted from.
type Message struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Text returns the subject and body joined for URL extraction.
func (m *Message) Text() string {
	return m.Subject + " " + m.Body
}

// Source supplies recent messages. Implementations must honour ctx and
// return errors rather than panic.
type Source interface {
	// Name identifies the source in reports and logs.
	Name() string
	// RecentMessageIDs lists at most max message ids received in the last
	// days days, newest first.
	RecentMessageIDs(ctx context.Context, days, max int) ([]string, error)
	// Message fetches one message by id.
	Message(ctx context.Context, id string) (*Message, error)
}
