package mailbox

import (
	"context"
	"fmt"
	"strings"
)

type demoEmail struct {
	id      string
	subject string
	urls    []string
}

var demoEmails = []demoEmail{
	{
		id:      "demo_001",
		subject: "Urgent: Verify Your Account",
		urls:    []string{"https://bit.ly/verify-account", "https://secure-bank@phishing.com"},
	},
	{
		id:      "demo_002",
		subject: "Meeting Invitation",
		urls:    []string{"https://zoom.us/meeting/123", "https://calendar.google.com"},
	},
	{
		id:      "demo_003",
		subject: "Special Offer - Click Now!",
		urls:    []string{"https://tinyurl.com/special-offer", "https://suspicious-site.com/offer.exe"},
	},
	{
		id:      "demo_004",
		subject: "GitHub Notification",
		urls:    []string{"https://github.com/notifications", "https://docs.github.com"},
	},
}

// DemoSource serves a fixed set of sample emails. It needs no credentials
// and ignores the day window.
type DemoSource struct{}

// NewDemoSource creates a DemoSource.
func NewDemoSource() *DemoSource {
	return &DemoSource{}
}

// Name implements Source.
func (s *DemoSource) Name() string {
	return "demo"
}

// RecentMessageIDs implements Source.
func (s *DemoSource) RecentMessageIDs(ctx context.Context, _, max int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(demoEmails))

	for _, email := range demoEmails {
		if max > 0 && len(ids) >= max {
			break
		}

		ids = append(ids, email.id)
	}

	return ids, nil
}

// Message implements Source.
func (s *DemoSource) Message(ctx context.Context, id string) (*Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, email := range demoEmails {
		if email.id == id {
			return &Message{
				ID:      email.id,
				Subject: email.subject,
				Body:    "Please review the following links:\n" + strings.Join(email.urls, "\n"),
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrMessageNotFound, id)
}
