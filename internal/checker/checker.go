// Package checker runs single-URL and batch checks for the command line and
// renders their results.
package checker

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/btraven00/phishq/internal/batch"
	"github.com/btraven00/phishq/internal/detector"
)

// Config holds configuration for the checker.
type Config struct {
	Out          io.Writer
	OutputFormat string
	Workers      int
	Verbose      bool
	Screen       bool
}

// Result is the outcome of checking one URL.
type Result struct {
	Analysis  *detector.AnalysisResult `json:"analysis"`
	Screening *detector.Screening      `json:"screening,omitempty"`
}

// Checker performs URL checks.
type Checker struct {
	detector *detector.Detector
	logger   *logrus.Logger
	config   Config
}

// New creates a new checker. A nil logger discards output.
func New(config Config, d *detector.Detector, logger *logrus.Logger) *Checker {
	if config.Out == nil {
		config.Out = os.Stdout
	}

	config.OutputFormat = strings.ToLower(config.OutputFormat)

	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &Checker{
		config:   config,
		detector: d,
		logger:   logger,
	}
}

// Check scores target and, when configured, runs the quick screen as well.
func (c *Checker) Check(target string) *Result {
	result := &Result{Analysis: c.detector.Analyze(target)}

	if c.config.Screen {
		screening := c.detector.Screen(target)
		result.Screening = &screening
	}

	c.logger.WithFields(logrus.Fields{
		"url":        result.Analysis.URL,
		"risk_score": result.Analysis.RiskScore,
		"risk_level": result.Analysis.RiskLevel,
	}).Debug("url checked")

	return result
}

// CheckBatch scores urls concurrently. The items keep input order.
func (c *Checker) CheckBatch(ctx context.Context, urls []string, opts ...batch.Option) []batch.Item {
	options := append([]batch.Option{
		batch.WithWorkers(c.config.Workers),
		batch.WithLogger(c.logger),
	}, opts...)

	return batch.NewRunner(c.detector, options...).ScoreBatch(ctx, urls)
}
