package detector

import (
	"fmt"
	"regexp"
	"strings"
)

// Screening is the verdict of the quick rule-based screen.
type Screening struct {
	URL        string   `json:"url"`
	Reasons    []string `json:"risk_factors"`
	Suspicious bool     `json:"is_suspicious"`
}

var screenHostPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[0-9]+[a-z]+[0-9]+`),
	regexp.MustCompile(`[a-z]+-[a-z]+-[a-z]+`),
	regexp.MustCompile(`[a-z]+\d+[a-z]+`),
}

// Screen runs the quick yes/no rules without scoring. Empty input is
// suspicious. Any single rule firing makes the URL suspicious; all firing
// rules are reported.
func (d *Detector) Screen(rawURL string) Screening {
	screening := Screening{
		URL:     rawURL,
		Reasons: []string{},
	}

	if strings.TrimSpace(rawURL) == "" {
		screening.Suspicious = true
		screening.Reasons = append(screening.Reasons, "Empty URL")

		return screening
	}

	t := newTarget(Normalize(rawURL))

	if dots := strings.Count(t.raw, "."); dots > maxSubdomainDots {
		screening.Reasons = append(screening.Reasons, fmt.Sprintf("Excessive subdomains (%d periods)", dots))
	} else if t.err == nil {
		// catches look-alikes such as example.com.abc.def
		labels := strings.Split(strings.TrimPrefix(t.host, "www."), ".")
		if len(labels) >= 4 {
			screening.Reasons = append(screening.Reasons, fmt.Sprintf("Suspicious domain structure (%d segments)", len(labels)))
		}
	}

	if shortener := d.matchShortener(t); shortener != "" {
		screening.Reasons = append(screening.Reasons, "Uses URL shortener: "+shortener)
	}

	for _, pattern := range d.config.SuspiciousSubstrings {
		if strings.Contains(t.lower, pattern) {
			screening.Reasons = append(screening.Reasons, "Contains suspicious character/pattern: "+pattern)
		}
	}

	if t.err != nil {
		screening.Reasons = append(screening.Reasons, "URL parsing error: "+t.err.Error())
	} else {
		if ipv4PrefixRegex.MatchString(t.host) {
			screening.Reasons = append(screening.Reasons, "Uses IP address instead of domain name")
		} else {
			for _, pattern := range screenHostPatterns {
				if pattern.MatchString(t.host) {
					screening.Reasons = append(screening.Reasons, "Suspicious host pattern: "+pattern.FindString(t.host))
					break
				}
			}
		}

		if len(t.host) > maxHostLength {
			screening.Reasons = append(screening.Reasons, "Unusually long domain name")
		}
	}

	screening.Suspicious = len(screening.Reasons) > 0

	return screening
}
