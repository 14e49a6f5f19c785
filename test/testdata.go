package test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"
)

// TestData contains example URLs, texts and messages for integration tests.
type TestData struct {
	URLs     []URLTestCase
	Texts    []TextTestCase
	Messages []MockMessage
}

// URLTestCase is a URL with the score range it is expected to land in.
type URLTestCase struct {
	URL         string
	Description string
	Level       string
	MinScore    int
	MaxScore    int
}

// TextTestCase is a piece of text with the URLs expected to be extracted.
type TextTestCase struct {
	Text        string
	Description string
	Expected    []string
	HTML        bool
}

// MockMessage is a message served by the mock Gmail server.
type MockMessage struct {
	ID         string
	Subject    string
	PlainBody  string
	HTMLBody   string
	Suspicious bool
}

// GetTestData returns the shared corpus for phishq integration tests.
func GetTestData() *TestData {
	return &TestData{
		URLs: []URLTestCase{
			{
				URL:         "https://www.google.com",
				Description: "well-known legitimate domain",
				MinScore:    0,
				MaxScore:    10,
			},
			{
				URL:         "https://github.com/notifications",
				Description: "legitimate domain with a short path",
				Level:       "MINIMAL",
				MinScore:    0,
				MaxScore:    0,
			},
			{
				URL:         "https://bit.ly/verify-account",
				Description: "URL shortener",
				Level:       "LOW",
				MinScore:    20,
				MaxScore:    20,
			},
			{
				URL:         "http://192.168.1.1/malicious",
				Description: "raw IPv4 host over plain http",
				Level:       "MEDIUM",
				MinScore:    40,
				MaxScore:    40,
			},
			{
				URL:         "https://gooogle.com",
				Description: "typosquat of google.com",
				MinScore:    15,
				MaxScore:    29,
			},
			{
				URL:         "https://secure-login.paypal.com.verify-account.tk/login",
				Description: "brand in subdomain on a suspicious TLD",
				MinScore:    35,
				MaxScore:    100,
			},
			{
				URL:         "http://[::1",
				Description: "malformed URL scored by fallback points",
				Level:       "MEDIUM",
				MinScore:    30,
				MaxScore:    30,
			},
			{
				URL:         "http://1.2.3.4-x.tk/a/b/c/d/e/f?redirect=url&goto=next&return=1%00@==0x.exe",
				Description: "everything at once, capped",
				Level:       "CRITICAL",
				MinScore:    100,
				MaxScore:    100,
			},
		},
		Texts: []TextTestCase{
			{
				Description: "plain text with a full URL and a bare domain",
				Text:        "Your parcel is waiting: https://bit.ly/parcel. Questions? Visit www.example.com today!",
				Expected:    []string{"https://bit.ly/parcel", "https://www.example.com"},
			},
			{
				Description: "duplicates collapse",
				Text:        "http://192.168.1.1/x and again http://192.168.1.1/x",
				Expected:    []string{"http://192.168.1.1/x"},
			},
			{
				Description: "anchor target behind harmless text",
				Text:        `<p>Log in to <a href="http://paypa1-secure.tk/login">PayPal</a></p><style>a{color:red}</style>`,
				Expected:    []string{"http://paypa1-secure.tk/login"},
				HTML:        true,
			},
			{
				Description: "no URLs",
				Text:        "nothing to see here",
				Expected:    []string{},
			},
		},
		Messages: []MockMessage{
			{
				ID:         "msg-1",
				Subject:    "Action required: verify your account",
				PlainBody:  "Verify now at http://192.168.1.1/login or your account will be suspended.",
				Suspicious: true,
			},
			{
				ID:        "msg-2",
				Subject:   "Team lunch",
				PlainBody: "Menu is on https://github.com/notifications",
			},
			{
				ID:         "msg-3",
				Subject:    "Invoice",
				HTMLBody:   `<html><body><a href="https://secure-login.paypal.com.verify-account.tk/login">Pay invoice</a></body></html>`,
				Suspicious: true,
			},
		},
	}
}

// CreateMockGmailServer serves the list and get endpoints of the Gmail API
// for the given messages. Unknown message ids return 404.
func CreateMockGmailServer(messages []MockMessage) *httptest.Server {
	byID := make(map[string]MockMessage, len(messages))
	for _, m := range messages {
		byID[m.ID] = m
	}

	encode := func(s string) string {
		return base64.URLEncoding.EncodeToString([]byte(s))
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		const prefix = "/gmail/v1/users/me/messages"

		path := r.URL.Path
		if !strings.HasPrefix(path, prefix) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":404,"message":"Not Found"}}`))

			return
		}

		id := strings.TrimPrefix(strings.TrimPrefix(path, prefix), "/")

		if id == "" {
			type ref struct {
				ID string `json:"id"`
			}

			list := struct {
				Messages []ref `json:"messages"`
			}{}

			for _, m := range messages {
				list.Messages = append(list.Messages, ref{ID: m.ID})
			}

			json.NewEncoder(w).Encode(list)

			return
		}

		m, ok := byID[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":404,"message":"Requested entity was not found."}}`))

			return
		}

		type body struct {
			Data string `json:"data,omitempty"`
		}

		type part struct {
			MimeType string `json:"mimeType"`
			Body     body   `json:"body"`
		}

		var parts []part
		if m.PlainBody != "" {
			parts = append(parts, part{MimeType: "text/plain", Body: body{Data: encode(m.PlainBody)}})
		}

		if m.HTMLBody != "" {
			parts = append(parts, part{MimeType: "text/html", Body: body{Data: encode(m.HTMLBody)}})
		}

		json.NewEncoder(w).Encode(map[string]any{
			"id": m.ID,
			"payload": map[string]any{
				"mimeType": "multipart/alternative",
				"headers":  []map[string]string{{"name": "Subject", "value": m.Subject}},
				"parts":    parts,
			},
		})
	})

	return httptest.NewServer(handler)
}

// TimingConstraints defines expected time bounds for local, network-free work.
var TimingConstraints = struct {
	MaxAnalysisTime time.Duration
	MaxBatchTime    time.Duration
}{
	MaxAnalysisTime: 50 * time.Millisecond,
	MaxBatchTime:    2 * time.Second,
}
