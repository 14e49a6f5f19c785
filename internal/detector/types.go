package detector

import (
	"time"
)

// RiskLevel is the discrete bucket a risk score falls into.
type RiskLevel string

const (
	RiskMinimal  RiskLevel = "MINIMAL"
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// CheckName identifies one of the heuristic checks.
type CheckName string

const (
	CheckBasicPatterns  CheckName = "basic_patterns"
	CheckDomainAnalysis CheckName = "domain_analysis"
	CheckTyposquatting  CheckName = "typosquatting"
	CheckSSL            CheckName = "ssl_check"
	CheckURLStructure   CheckName = "url_structure"
)

// CheckNames lists the checks in reporting order.
var CheckNames = []CheckName{
	CheckBasicPatterns,
	CheckDomainAnalysis,
	CheckTyposquatting,
	CheckSSL,
	CheckURLStructure,
}

// AnalysisResult is the outcome of scoring a single URL.
type AnalysisResult struct {
	Timestamp       time.Time `json:"timestamp"`
	Input           string    `json:"input"`
	URL             string    `json:"url"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Recommendations []string  `json:"recommendations"`
	Checks          Checks    `json:"checks"`
	RiskScore       int       `json:"risk_score"`
	Suspicious      bool      `json:"is_suspicious"`
}

// Checks holds one finding per heuristic check.
type Checks struct {
	BasicPatterns  PatternFinding   `json:"basic_patterns"`
	DomainAnalysis DomainFinding    `json:"domain_analysis"`
	Typosquatting  TyposquatFinding `json:"typosquatting"`
	SSLCheck       TransportFinding `json:"ssl_check"`
	URLStructure   StructureFinding `json:"url_structure"`
}

// Points returns the contribution of every check keyed by check name.
func (c Checks) Points() map[CheckName]int {
	return map[CheckName]int{
		CheckBasicPatterns:  c.BasicPatterns.RiskPoints,
		CheckDomainAnalysis: c.DomainAnalysis.RiskPoints,
		CheckTyposquatting:  c.Typosquatting.RiskPoints,
		CheckSSL:            c.SSLCheck.RiskPoints,
		CheckURLStructure:   c.URLStructure.RiskPoints,
	}
}

// Total returns the uncapped sum of all check contributions.
func (c Checks) Total() int {
	return c.BasicPatterns.RiskPoints +
		c.DomainAnalysis.RiskPoints +
		c.Typosquatting.RiskPoints +
		c.SSLCheck.RiskPoints +
		c.URLStructure.RiskPoints
}

// PatternFinding is the evidence of the lexical pattern check.
type PatternFinding struct {
	SuspiciousChars     []string `json:"suspicious_chars"`
	Shortener           string   `json:"shortener,omitempty"`
	SuspiciousTLDMatch  string   `json:"suspicious_tld_match,omitempty"`
	DotCount            int      `json:"dot_count"`
	RiskPoints          int      `json:"risk_points"`
	URLShortener        bool     `json:"url_shortener"`
	SuspiciousTLD       bool     `json:"suspicious_tld"`
	ExcessiveSubdomains bool     `json:"excessive_subdomains"`
}

// DomainFinding is the evidence of the host analysis check.
type DomainFinding struct {
	Host              string `json:"host"`
	RegistrableDomain string `json:"registrable_domain,omitempty"`
	PublicSuffix      string `json:"public_suffix,omitempty"`
	Error             string `json:"error,omitempty"`
	DomainLength      int    `json:"domain_length"`
	RiskPoints        int    `json:"risk_points"`
	IsIP              bool   `json:"is_ip"`
	HasNumbers        bool   `json:"has_numbers"`
	HasHyphens        bool   `json:"has_hyphens"`
	TooLong           bool   `json:"too_long"`
	TooShort          bool   `json:"too_short"`
}

// TyposquatFinding is the evidence of the typosquatting check.
type TyposquatFinding struct {
	PotentialTarget string  `json:"potential_target,omitempty"`
	SimilarityScore float64 `json:"similarity_score"`
	RiskPoints      int     `json:"risk_points"`
	IsTyposquatting bool    `json:"is_typosquatting"`
}

// TransportFinding is the evidence of the transport security check. Only the
// presence of the https scheme is inspected; no connection is made.
type TransportFinding struct {
	Scheme     string `json:"scheme,omitempty"`
	Error      string `json:"ssl_error,omitempty"`
	RiskPoints int    `json:"risk_points"`
	HasSSL     bool   `json:"has_ssl"`
}

// StructureFinding is the evidence of the URL structure check.
type StructureFinding struct {
	SuspiciousParams []string `json:"suspicious_params"`
	Error            string   `json:"error,omitempty"`
	PathDepth        int      `json:"path_depth"`
	RiskPoints       int      `json:"risk_points"`
	HasQueryParams   bool     `json:"has_query_params"`
	EncodedChars     bool     `json:"encoded_chars"`
}
