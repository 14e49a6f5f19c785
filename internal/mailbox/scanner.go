package mailbox

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/btraven00/phishq/internal/detector"
	"github.com/btraven00/phishq/internal/extractor"
)

// maxRiskFactors bounds the quick-screen reasons kept per flagged URL.
const maxRiskFactors = 2

// ScannerConfig bounds how hard a Scanner drives its source.
type ScannerConfig struct {
	// Timeout applies to each source call separately.
	Timeout time.Duration
	// RateLimit is the number of message fetches per second; zero or less
	// disables limiting.
	RateLimit float64
	Burst     int
}

// Scanner pulls recent messages from a Source and scores their URLs.
type Scanner struct {
	detector *detector.Detector
	limiter  *rate.Limiter
	logger   *logrus.Logger
	now      func() time.Time
	timeout  time.Duration
}

// NewScanner creates a Scanner. A nil logger discards output.
func NewScanner(d *detector.Detector, cfg ScannerConfig, logger *logrus.Logger) *Scanner {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Scanner{
		detector: d,
		limiter:  rate.NewLimiter(limit, burst),
		logger:   logger,
		now:      time.Now,
		timeout:  cfg.Timeout,
	}
}

// URLFinding is a flagged URL and the evidence behind it.
type URLFinding struct {
	URL         string             `json:"url"`
	RiskLevel   detector.RiskLevel `json:"risk_level"`
	RiskFactors []string           `json:"risk_factors,omitempty"`
	RiskScore   int                `json:"risk_score"`
}

// EmailFinding lists the flagged URLs of one message.
type EmailFinding struct {
	MessageID      string       `json:"message_id"`
	Subject        string       `json:"subject"`
	SuspiciousURLs []URLFinding `json:"suspicious_urls"`
	URLCount       int          `json:"url_count"`
}

// MessageError records a message that could not be fetched.
type MessageError struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error"`
}

// Report is the outcome of one Scan.
type Report struct {
	StartedAt        time.Time      `json:"started_at"`
	ID               string         `json:"id"`
	Source           string         `json:"source"`
	SuspiciousEmails []EmailFinding `json:"suspicious_emails"`
	SafeURLs         []string       `json:"safe_urls"`
	Errors           []MessageError `json:"errors,omitempty"`
	Duration         time.Duration  `json:"duration"`
	Days             int            `json:"days"`
	MessagesListed   int            `json:"messages_listed"`
	MessagesScanned  int            `json:"messages_scanned"`
	TotalURLs        int            `json:"total_urls"`
}

// Clean reports whether no message carried a suspicious URL.
func (r *Report) Clean() bool {
	return len(r.SuspiciousEmails) == 0
}

// Scan lists up to max messages from the last days days and scores every URL
// they contain. A listing failure is returned as an error; a failure to fetch
// one message is recorded in the report and the scan continues. Nothing is
// retried.
func (s *Scanner) Scan(ctx context.Context, src Source, days, max int) (*Report, error) {
	if days <= 0 || max <= 0 {
		return nil, fmt.Errorf("days and max must be positive, got %d and %d", days, max)
	}

	start := s.now()

	report := &Report{
		ID:               uuid.NewString(),
		Source:           src.Name(),
		Days:             days,
		StartedAt:        start,
		SuspiciousEmails: make([]EmailFinding, 0),
		SafeURLs:         make([]string, 0),
	}

	log := s.logger.WithFields(logrus.Fields{"scan": report.ID, "source": report.Source})

	listCtx, cancel := s.callContext(ctx)
	ids, err := src.RecentMessageIDs(listCtx, days, max)
	cancel()

	if err != nil {
		return nil, fmt.Errorf("failed to list messages from %s: %w", src.Name(), err)
	}

	report.MessagesListed = len(ids)
	log.WithField("messages", len(ids)).Info("listed recent messages")

	seen := make(map[string]bool)
	flagged := make(map[string]bool)

	for _, id := range ids {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("scan interrupted: %w", err)
		}

		msgCtx, cancel := s.callContext(ctx)
		msg, err := src.Message(msgCtx, id)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("scan interrupted: %w", ctx.Err())
			}

			log.WithField("message", id).WithError(err).Warn("failed to fetch message")
			report.Errors = append(report.Errors, MessageError{MessageID: id, Error: err.Error()})

			continue
		}

		report.MessagesScanned++

		urls := extractor.ExtractURLs(msg.Text())
		finding := EmailFinding{MessageID: id, Subject: msg.Subject, URLCount: len(urls)}

		for _, u := range urls {
			seen[u] = true

			if f, ok := s.assess(u); ok {
				flagged[u] = true
				finding.SuspiciousURLs = append(finding.SuspiciousURLs, f)
			}
		}

		log.WithFields(logrus.Fields{
			"message":    id,
			"urls":       len(urls),
			"suspicious": len(finding.SuspiciousURLs),
		}).Debug("scanned message")

		if len(finding.SuspiciousURLs) > 0 {
			report.SuspiciousEmails = append(report.SuspiciousEmails, finding)
		}
	}

	for u := range seen {
		if !flagged[u] {
			report.SafeURLs = append(report.SafeURLs, u)
		}
	}

	sort.Strings(report.SafeURLs)

	report.TotalURLs = len(seen)
	report.Duration = s.now().Sub(start)

	return report, nil
}

// assess flags a URL when either its risk score reaches the suspicious
// threshold or the quick screen rejects it.
func (s *Scanner) assess(u string) (URLFinding, bool) {
	result := s.detector.Analyze(u)
	screening := s.detector.Screen(u)

	if !result.Suspicious && !screening.Suspicious {
		return URLFinding{}, false
	}

	factors := screening.Reasons
	if len(factors) > maxRiskFactors {
		factors = factors[:maxRiskFactors]
	}

	return URLFinding{
		URL:         u,
		RiskScore:   result.RiskScore,
		RiskLevel:   result.RiskLevel,
		RiskFactors: factors,
	}, true
}

func (s *Scanner) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, s.timeout)
}
