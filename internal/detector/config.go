package detector

// Config holds the reference lists and thresholds used by the checks.
// A Detector copies its Config at construction and never mutates it.
type Config struct {
	Shorteners           []string `mapstructure:"shorteners" json:"shorteners"`
	SuspiciousTLDs       []string `mapstructure:"suspicious_tlds" json:"suspicious_tlds"`
	LegitimateDomains    []string `mapstructure:"legitimate_domains" json:"legitimate_domains"`
	SuspiciousSubstrings []string `mapstructure:"suspicious_substrings" json:"suspicious_substrings"`
	RedirectParams       []string `mapstructure:"redirect_params" json:"redirect_params"`
	SimilarityThreshold  float64  `mapstructure:"similarity_threshold" json:"similarity_threshold"`
	SuspiciousThreshold  int      `mapstructure:"suspicious_threshold" json:"suspicious_threshold"`
}

// DefaultConfig returns the built-in reference lists.
func DefaultConfig() Config {
	return Config{
		Shorteners: []string{
			"tinyurl.com", "bit.ly", "goo.gl", "t.co", "ow.ly",
			"tiny.cc", "is.gd", "buff.ly", "short.link", "rebrand.ly",
		},
		SuspiciousTLDs: []string{".tk", ".ml", ".ga", ".cf", ".pw", ".cc"},
		LegitimateDomains: []string{
			"google.com", "facebook.com", "amazon.com", "microsoft.com",
			"apple.com", "twitter.com", "linkedin.com", "github.com",
			"stackoverflow.com", "wikipedia.org",
		},
		SuspiciousSubstrings: []string{"@", "%00", ".exe", "==", "0x"},
		RedirectParams:       []string{"redirect", "url", "goto", "next", "return"},
		SimilarityThreshold:  0.70,
		SuspiciousThreshold:  30,
	}
}

// withDefaults fills empty fields from DefaultConfig so a partial override
// (for example from a config file that only lists shorteners) stays usable.
func (c Config) withDefaults() Config {
	def := DefaultConfig()

	if len(c.Shorteners) == 0 {
		c.Shorteners = def.Shorteners
	}

	if len(c.SuspiciousTLDs) == 0 {
		c.SuspiciousTLDs = def.SuspiciousTLDs
	}

	if len(c.LegitimateDomains) == 0 {
		c.LegitimateDomains = def.LegitimateDomains
	}

	if len(c.SuspiciousSubstrings) == 0 {
		c.SuspiciousSubstrings = def.SuspiciousSubstrings
	}

	if len(c.RedirectParams) == 0 {
		c.RedirectParams = def.RedirectParams
	}

	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold >= 1 {
		c.SimilarityThreshold = def.SimilarityThreshold
	}

	if c.SuspiciousThreshold <= 0 {
		c.SuspiciousThreshold = def.SuspiciousThreshold
	}

	return c.clone()
}

func (c Config) clone() Config {
	c.Shorteners = lowerAll(c.Shorteners)
	c.SuspiciousTLDs = lowerAll(c.SuspiciousTLDs)
	c.LegitimateDomains = lowerAll(c.LegitimateDomains)
	c.SuspiciousSubstrings = lowerAll(c.SuspiciousSubstrings)
	c.RedirectParams = lowerAll(c.RedirectParams)

	return c
}
