package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractURLs(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name: "email body",
			text: "Click https://bit.ly/verify-account. Meeting at https://zoom.us/meeting/123 (details) or visit www.example.com, thanks!",
			expected: []string{
				"https://bit.ly/verify-account",
				"https://www.example.com",
				"https://zoom.us/meeting/123",
			},
		},
		{
			name:     "duplicates collapse after normalization",
			text:     "https://a.com and again https://a.com, or just a.com",
			expected: []string{"https://a.com"},
		},
		{
			name:     "plain http is kept",
			text:     "legacy link: http://192.168.1.1/malicious",
			expected: []string{"http://192.168.1.1/malicious"},
		},
		{
			name:     "query strings survive",
			text:     "go to https://login.example.com/auth?next=%2Fhome&redirect=1 now",
			expected: []string{"https://login.example.com/auth?next=%2Fhome&redirect=1"},
		},
		{
			name:     "no urls",
			text:     "Nothing to see here, e.g. a sentence.",
			expected: []string{},
		},
		{
			name:     "empty",
			text:     "",
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExtractURLs(tc.text))
		})
	}
}

func TestExtractURLs_Idempotent(t *testing.T) {
	text := `Urgent: Verify Your Account
Dear user, go to https://secure-bank@phishing.com/login?url=http://evil.tk or
visit www.paypa1.com (our partner site). Docs: https://en.wikipedia.org/wiki/Foo_(bar).
Legacy HTTP://UPPER.EXAMPLE.COM/Path and http://192.168.1.1/malicious!`

	first := ExtractURLs(text)
	require.NotEmpty(t, first)

	second := ExtractURLs(strings.Join(first, " "))

	assert.Equal(t, first, second)
}

func TestCleanupCandidate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trailing period", "https://example.com/path.", "https://example.com/path"},
		{"multiple trailing punctuation", "https://example.com/a...", "https://example.com/a"},
		{"trailing single parenthesis", "https://github.com/comprna/METEORE)", "https://github.com/comprna/METEORE"},
		{"balanced parentheses kept", "https://en.wikipedia.org/wiki/Foo_(bar)", "https://en.wikipedia.org/wiki/Foo_(bar)"},
		{"trailing single bracket", "https://example.com/dataset]", "https://example.com/dataset"},
		{"trailing quote", "https://example.com/x'", "https://example.com/x"},
		{"bare domain", "www.example.com", "www.example.com"},
		{"scheme only", "http://", ""},
		{"scheme and punctuation", "https://.", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanupCandidate(tt.input))
		})
	}
}

func TestLinks_Context(t *testing.T) {
	e := New(ExtractionOptions{IncludeContext: true, ContextLength: 20})

	links := e.Links("please see https://a.com now\nand later")

	require.Len(t, links, 1)
	assert.Equal(t, "https://a.com", links[0].URL)
	assert.Equal(t, 11, links[0].Position)
	assert.Contains(t, links[0].Context, "https://a.com")
	assert.NotContains(t, links[0].Context, "\n")
}

func TestExtract_Summary(t *testing.T) {
	result := New(DefaultExtractionOptions()).Extract("stdin", "a.com b.com a.com")

	assert.Equal(t, "stdin", result.Source)
	assert.Equal(t, 3, result.Summary.TotalLinks)
	assert.Equal(t, 2, result.Summary.UniqueLinks)
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, result.URLs)
}

func TestTextFromHTML(t *testing.T) {
	document := `<html><head><style>.x{color:red}</style><script>var u = "http://evil.tk";</script></head>
<body><p>Hello <a href="http://phish.example.tk/login">click here</a></p><img src="https://cdn.example.com/logo.png"></body></html>`

	text := TextFromHTML(document)

	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "click here")
	assert.Contains(t, text, "http://phish.example.tk/login")
	assert.Contains(t, text, "https://cdn.example.com/logo.png")
	assert.NotContains(t, text, "evil.tk")
	assert.NotContains(t, text, "color")

	assert.Contains(t, ExtractURLs(text), "http://phish.example.tk/login")
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML("<HTML><body>hi</body></HTML>"))
	assert.True(t, LooksLikeHTML(`text <a href="x">y</a>`))
	assert.False(t, LooksLikeHTML("plain text with a < b comparison"))
}
