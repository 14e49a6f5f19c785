package detector

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Detector scores URLs with a fixed set of heuristic checks.
// It holds no mutable state and is safe for concurrent use.
type Detector struct {
	logger *logrus.Logger
	now    func() time.Time
	config Config
}

// Option customizes a Detector.
type Option func(*Detector)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *logrus.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithClock overrides the timestamp source, mostly useful in tests.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

// New creates a Detector. Empty lists in config fall back to the defaults.
func New(config Config, opts ...Option) *Detector {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	d := &Detector{
		config: config.withDefaults(),
		logger: discard,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Config returns a copy of the active configuration.
func (d *Detector) Config() Config {
	return d.config.clone()
}

// Analyze normalizes and scores a single URL. Malformed input never fails;
// each check contributes its fallback points instead.
func (d *Detector) Analyze(rawURL string) *AnalysisResult {
	normalized := Normalize(rawURL)
	t := newTarget(normalized)

	checks := Checks{
		BasicPatterns:  d.checkBasicPatterns(t),
		DomainAnalysis: d.checkDomain(t),
		Typosquatting:  d.checkTyposquatting(t),
		SSLCheck:       d.checkTransport(t),
		URLStructure:   d.checkStructure(t),
	}

	score := capScore(checks.Total())

	result := &AnalysisResult{
		Timestamp:       d.now(),
		Input:           rawURL,
		URL:             normalized,
		RiskScore:       score,
		RiskLevel:       LevelFor(score),
		Suspicious:      score >= d.config.SuspiciousThreshold,
		Checks:          checks,
		Recommendations: Recommendations(score),
	}

	d.logger.WithFields(logrus.Fields{
		"url":        normalized,
		"risk_score": score,
		"risk_level": result.RiskLevel,
		"suspicious": result.Suspicious,
	}).Debug("analyzed url")

	if t.err != nil {
		d.logger.WithError(t.err).WithField("url", normalized).Debug("url did not parse, fallback points applied")
	}

	return result
}

// CheckInfo describes one heuristic check.
type CheckInfo struct {
	Name        CheckName `json:"name"`
	Description string    `json:"description"`
	MaxPoints   int       `json:"max_points"`
}

// Catalog lists the checks in the order they are reported.
func (d *Detector) Catalog() []CheckInfo {
	return []CheckInfo{
		{
			Name:        CheckBasicPatterns,
			Description: "Suspicious substrings, URL shorteners, suspicious TLDs and excessive dots",
			MaxPoints:   pointsSuspiciousChar*len(d.config.SuspiciousSubstrings) + pointsShortener + pointsSuspiciousTLD + pointsExcessiveSubdomain,
		},
		{
			Name:        CheckDomainAnalysis,
			Description: "IPv4 hosts, digits, hyphens and unusual host length",
			MaxPoints:   pointsIPHost + pointsHostDigits + pointsHostHyphen + pointsHostTooShort,
		},
		{
			Name:        CheckTyposquatting,
			Description: "Look-alike hosts of well-known legitimate domains",
			MaxPoints:   int((1 - d.config.SimilarityThreshold) * 100),
		},
		{
			Name:        CheckSSL,
			Description: "Presence of the https scheme (certificates are not validated)",
			MaxPoints:   pointsNoHTTPS,
		},
		{
			Name:        CheckURLStructure,
			Description: "Deep paths, redirect-style query parameters and percent-encoding",
			MaxPoints:   pointsDeepPath + pointsRedirectParam*len(d.config.RedirectParams) + pointsEncodedChars,
		},
	}
}
