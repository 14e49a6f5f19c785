package detector

import (
	"net/url"
	"strings"
)

// Normalize makes sure the URL carries a scheme before it is analyzed.
// Inputs without an explicit http:// or https:// prefix get https://.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)

	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return trimmed
	}

	return "https://" + trimmed
}

// target is a normalized URL together with its parsed form.
type target struct {
	parsed *url.URL
	err    error
	raw    string
	lower  string
	host   string
}

func newTarget(normalized string) *target {
	t := &target{
		raw:   normalized,
		lower: strings.ToLower(normalized),
	}

	u, err := url.Parse(normalized)
	if err != nil {
		t.err = err
		return t
	}

	t.parsed = u
	t.host = strings.ToLower(u.Hostname())

	return t
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))

	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}

	return out
}
