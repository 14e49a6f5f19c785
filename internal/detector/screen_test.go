package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreen(t *testing.T) {
	d := New(DefaultConfig())

	tests := []struct {
		name       string
		url        string
		suspicious bool
	}{
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"google", "https://www.google.com", false},
		{"github", "https://github.com", false},
		{"plain http", "http://example.com", false},
		{"missing scheme", "stackoverflow.com", false},
		{"shortener", "https://bit.ly/suspicious", true},
		{"shortener subdomain", "https://www.tinyurl.com/malicious", true},
		{"at sign", "https://example@malicious.com", true},
		{"executable", "http://site.com/file.exe", true},
		{"too many dots", "https://a.b.c.d.example.com", true},
		{"ip host", "http://192.168.1.1/login", true},
		{"hyphenated host", "https://secure-login-page.com", true},
		{"mixed digits", "https://abc123def.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			screening := d.Screen(tt.url)

			assert.Equal(t, tt.suspicious, screening.Suspicious, "reasons: %v", screening.Reasons)
			assert.Equal(t, tt.suspicious, len(screening.Reasons) > 0)
		})
	}
}

func TestScreen_Reasons(t *testing.T) {
	d := New(DefaultConfig())

	screening := d.Screen("https://bit.ly/x")

	assert.Contains(t, screening.Reasons, "Uses URL shortener: bit.ly")
}
