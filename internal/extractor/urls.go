package extractor

import (
	"regexp"
	"sort"
	"strings"

	"github.com/btraven00/phishq/internal/detector"
)

// urlPattern matches either a full http(s) URL or a bare domain-like token
// (optional www., dot separated labels, alphabetic final label of at least
// two characters). Both live in one expression so a bare domain is never
// matched again inside a full URL.
var urlPattern = regexp.MustCompile(
	`(?i:https?)://[a-zA-Z0-9$\-_@.&+!*(),/:;=?#~%'\[\]]+` +
		`|(?:www\.)?[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*\.[a-zA-Z]{2,}`,
)

const trailingPunctuation = ".,;:!?'\"*"

// Extractor finds candidate URLs in free text.
type Extractor struct {
	options ExtractionOptions
}

// New creates an Extractor.
func New(options ExtractionOptions) *Extractor {
	if options.ContextLength < 0 {
		options.ContextLength = 0
	}

	return &Extractor{options: options}
}

// ExtractURLs returns the deduplicated, normalized URL candidates found in
// text, sorted for deterministic output.
func ExtractURLs(text string) []string {
	return New(DefaultExtractionOptions()).ExtractURLs(text)
}

// ExtractURLs returns the deduplicated, normalized URL candidates found in text.
func (e *Extractor) ExtractURLs(text string) []string {
	seen := make(map[string]bool)
	urls := make([]string, 0)

	for _, link := range e.Links(text) {
		if !seen[link.URL] {
			seen[link.URL] = true
			urls = append(urls, link.URL)
		}
	}

	sort.Strings(urls)

	return urls
}

// Links returns every match in order of appearance, including duplicates.
func (e *Extractor) Links(text string) []ExtractedLink {
	links := make([]ExtractedLink, 0)

	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]

		cleaned := cleanupCandidate(raw)
		if cleaned == "" {
			continue
		}

		link := ExtractedLink{
			URL:      detector.Normalize(cleaned),
			Raw:      cleaned,
			Position: loc[0],
		}

		if e.options.IncludeContext {
			link.Context = extractContext(text, loc[0], loc[0]+len(cleaned), e.options.ContextLength)
		}

		links = append(links, link)
	}

	return links
}

// cleanupCandidate strips trailing punctuation and unbalanced closing
// brackets. It returns "" when nothing but a scheme is left.
func cleanupCandidate(candidate string) string {
	candidate = strings.TrimSpace(candidate)

	for candidate != "" {
		last := candidate[len(candidate)-1]

		switch {
		case strings.IndexByte(trailingPunctuation, last) >= 0:
			candidate = candidate[:len(candidate)-1]
		case last == ')' && strings.Count(candidate, "(") < strings.Count(candidate, ")"):
			candidate = candidate[:len(candidate)-1]
		case last == ']' && strings.Count(candidate, "[") < strings.Count(candidate, "]"):
			candidate = candidate[:len(candidate)-1]
		default:
			return withHost(candidate)
		}
	}

	return ""
}

func withHost(candidate string) string {
	if i := strings.Index(candidate, "://"); i >= 0 {
		rest := strings.TrimLeft(candidate[i+3:], "/")
		if rest == "" {
			return ""
		}
	}

	return candidate
}

// extractContext returns the text surrounding a match on a single line.
func extractContext(text string, start, end, length int) string {
	if length == 0 {
		return ""
	}

	from := start - length/2
	if from < 0 {
		from = 0
	}

	to := end + length/2
	if to > len(text) {
		to = len(text)
	}

	snippet := strings.Join(strings.Fields(text[from:to]), " ")

	return strings.ToValidUTF8(snippet, "")
}
