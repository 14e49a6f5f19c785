package detector

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/net/idna"
)

var (
	hostPrefixRegex = regexp.MustCompile(`^(www\.|m\.)`)
	commonTLDRegex  = regexp.MustCompile(`\.(com|org|net|edu|gov)$`)
)

// similarity returns an edit-distance ratio in [0,1]: 1 for identical
// strings, symmetric in its arguments.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}

	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}

	if longest == 0 {
		return 1
	}

	distance := fuzzy.LevenshteinDistance(a, b)

	return 1 - float64(distance)/float64(longest)
}

// cleanHost maps an IDN host to its ASCII form and strips the www./m. prefix
// and a common TLD so only the distinguishing label remains.
func cleanHost(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")

	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}

	host = hostPrefixRegex.ReplaceAllString(host, "")

	return stripCommonTLD(host)
}

func stripCommonTLD(domain string) string {
	return commonTLDRegex.ReplaceAllString(domain, "")
}

// DomainSimilarity is how close a host is to one legitimate domain.
type DomainSimilarity struct {
	Domain string  `json:"domain"`
	Score  float64 `json:"score"`
}

// Similarities compares the host of rawURL with every legitimate domain,
// most similar first. It returns the cleaned host label that was compared,
// or "" when the URL has no parsable host.
func (d *Detector) Similarities(rawURL string) (string, []DomainSimilarity) {
	t := newTarget(Normalize(rawURL))
	if t.err != nil || t.host == "" {
		return "", nil
	}

	candidate := cleanHost(t.host)
	scores := make([]DomainSimilarity, 0, len(d.config.LegitimateDomains))

	for _, legit := range d.config.LegitimateDomains {
		scores = append(scores, DomainSimilarity{
			Domain: legit,
			Score:  similarity(candidate, stripCommonTLD(legit)),
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	return candidate, scores
}
