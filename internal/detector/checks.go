package detector

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Point contributions of the individual heuristics.
const (
	pointsSuspiciousChar     = 10
	pointsShortener          = 20
	pointsSuspiciousTLD      = 15
	pointsExcessiveSubdomain = 15

	pointsIPHost        = 25
	pointsHostDigits    = 5
	pointsHostHyphen    = 5
	pointsHostTooLong   = 10
	pointsHostTooShort  = 15
	pointsHostParseFail = 20

	pointsNoHTTPS        = 10
	pointsTransportError = 5

	pointsDeepPath        = 5
	pointsRedirectParam   = 10
	pointsEncodedChars    = 5
	pointsStructureFailed = 5

	maxSubdomainDots = 3
	maxPathDepth     = 5
	maxHostLength    = 50
	minHostLength    = 4
)

var ipv4PrefixRegex = regexp.MustCompile(`^\d{1,3}(?:\.\d{1,3}){3}`)

// checkBasicPatterns inspects the raw URL string for lexical red flags.
func (d *Detector) checkBasicPatterns(t *target) PatternFinding {
	finding := PatternFinding{
		SuspiciousChars: []string{},
		DotCount:        strings.Count(t.raw, "."),
	}

	for _, pattern := range d.config.SuspiciousSubstrings {
		if strings.Contains(t.lower, pattern) {
			finding.SuspiciousChars = append(finding.SuspiciousChars, pattern)
			finding.RiskPoints += pointsSuspiciousChar
		}
	}

	if shortener := d.matchShortener(t); shortener != "" {
		finding.URLShortener = true
		finding.Shortener = shortener
		finding.RiskPoints += pointsShortener
	}

	// a suffix match is also a substring match
	for _, tld := range d.config.SuspiciousTLDs {
		if strings.Contains(t.lower, tld) {
			finding.SuspiciousTLD = true
			finding.SuspiciousTLDMatch = tld
			finding.RiskPoints += pointsSuspiciousTLD

			break
		}
	}

	if finding.DotCount > maxSubdomainDots {
		finding.ExcessiveSubdomains = true
		finding.RiskPoints += pointsExcessiveSubdomain
	}

	return finding
}

// matchShortener returns the first shortener whose host matches the URL host.
// Unparseable URLs fall back to a substring search of the whole URL.
func (d *Detector) matchShortener(t *target) string {
	if t.err != nil {
		for _, shortener := range d.config.Shorteners {
			if strings.Contains(t.lower, shortener) {
				return shortener
			}
		}

		return ""
	}

	host := strings.TrimPrefix(t.host, "www.")

	for _, shortener := range d.config.Shorteners {
		if host == shortener || strings.HasSuffix(host, "."+shortener) {
			return shortener
		}
	}

	return ""
}

// checkDomain analyzes the host component.
func (d *Detector) checkDomain(t *target) DomainFinding {
	var finding DomainFinding

	if t.err != nil {
		finding.Error = t.err.Error()
		finding.RiskPoints = pointsHostParseFail

		return finding
	}

	host := t.host
	finding.Host = host
	finding.DomainLength = len(host)

	if ipv4PrefixRegex.MatchString(host) {
		finding.IsIP = true
		finding.RiskPoints += pointsIPHost
	}

	if strings.ContainsAny(host, "0123456789") {
		finding.HasNumbers = true
		finding.RiskPoints += pointsHostDigits
	}

	if strings.Contains(host, "-") {
		finding.HasHyphens = true
		finding.RiskPoints += pointsHostHyphen
	}

	switch {
	case len(host) > maxHostLength:
		finding.TooLong = true
		finding.RiskPoints += pointsHostTooLong
	case len(host) < minHostLength:
		finding.TooShort = true
		finding.RiskPoints += pointsHostTooShort
	}

	if host != "" && !finding.IsIP {
		if suffix, _ := publicsuffix.PublicSuffix(host); suffix != host {
			finding.PublicSuffix = suffix
		}

		if registrable, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
			finding.RegistrableDomain = registrable
		}
	}

	return finding
}

// checkTyposquatting compares the host against the legitimate domain list.
// Parse failures are treated as "not typosquatting".
func (d *Detector) checkTyposquatting(t *target) TyposquatFinding {
	var finding TyposquatFinding

	if t.err != nil || t.host == "" {
		return finding
	}

	candidate := cleanHost(t.host)
	threshold := d.config.SimilarityThreshold

	var (
		bestDomain string
		bestLabel  string
		bestRatio  float64
	)

	// strict comparison keeps the earliest list entry on ties
	for _, legit := range d.config.LegitimateDomains {
		label := stripCommonTLD(legit)

		ratio := similarity(candidate, label)
		if ratio > bestRatio && ratio > threshold {
			bestRatio = ratio
			bestDomain = legit
			bestLabel = label
		}
	}

	if bestDomain == "" || bestLabel == candidate {
		return finding
	}

	finding.PotentialTarget = bestDomain
	finding.SimilarityScore = bestRatio
	finding.IsTyposquatting = true
	finding.RiskPoints = int(math.Floor((bestRatio-threshold)*100 + 1e-9))

	return finding
}

// checkTransport records whether the https scheme is used. Certificates are
// not validated.
func (d *Detector) checkTransport(t *target) TransportFinding {
	var finding TransportFinding

	if t.err != nil {
		finding.Error = t.err.Error()
		finding.RiskPoints = pointsTransportError

		return finding
	}

	finding.Scheme = t.parsed.Scheme

	if t.parsed.Scheme == "https" {
		finding.HasSSL = true
	} else {
		finding.RiskPoints = pointsNoHTTPS
	}

	return finding
}

// checkStructure looks at path depth, query parameters and percent-encoding.
func (d *Detector) checkStructure(t *target) StructureFinding {
	finding := StructureFinding{
		SuspiciousParams: []string{},
	}

	if t.err != nil {
		finding.Error = t.err.Error()
		finding.RiskPoints = pointsStructureFailed

		return finding
	}

	for _, segment := range strings.Split(t.parsed.Path, "/") {
		if segment != "" {
			finding.PathDepth++
		}
	}

	if finding.PathDepth > maxPathDepth {
		finding.RiskPoints += pointsDeepPath
	}

	if t.parsed.RawQuery != "" {
		finding.HasQueryParams = true
		query := strings.ToLower(t.parsed.RawQuery)

		for _, param := range d.config.RedirectParams {
			if strings.Contains(query, param) {
				finding.SuspiciousParams = append(finding.SuspiciousParams, param)
				finding.RiskPoints += pointsRedirectParam
			}
		}
	}

	if strings.Contains(t.raw, "%") {
		finding.EncodedChars = true
		finding.RiskPoints += pointsEncodedChars
	}

	return finding
}
