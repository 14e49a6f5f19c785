// Package config maps viper settings onto the typed configuration used by
// the commands, and builds the process logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/btraven00/phishq/internal/detector"
)

// EnvPrefix is the prefix of environment variables read by viper.
const EnvPrefix = "PHISHQ"

// Bounds for mail scans.
const (
	MinDays    = 1
	MaxDays    = 30
	MinResults = 10
	MaxResults = 100
)

// ErrInvalid is wrapped by every validation error returned from Load.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete application configuration.
type Config struct {
	Log      LogConfig       `mapstructure:"log"`
	Mail     MailConfig      `mapstructure:"mail"`
	Server   ServerConfig    `mapstructure:"server"`
	Detector detector.Config `mapstructure:"detector"`
	Workers  int             `mapstructure:"workers"`
}

// LogConfig selects the log level and format (text or json).
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MailConfig configures the email sources and the scanner.
type MailConfig struct {
	Source          string        `mapstructure:"source"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	TokenFile       string        `mapstructure:"token_file"`
	EMLDir          string        `mapstructure:"eml_dir"`
	Days            int           `mapstructure:"days"`
	MaxResults      int           `mapstructure:"max_results"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	Burst           int           `mapstructure:"burst"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBatch        int           `mapstructure:"max_batch"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// SetDefaults registers every key with its default so that environment
// variables are picked up by Unmarshal even without a config file.
func SetDefaults(v *viper.Viper) {
	def := detector.DefaultConfig()

	v.SetDefault("detector.shorteners", def.Shorteners)
	v.SetDefault("detector.suspicious_tlds", def.SuspiciousTLDs)
	v.SetDefault("detector.legitimate_domains", def.LegitimateDomains)
	v.SetDefault("detector.suspicious_substrings", def.SuspiciousSubstrings)
	v.SetDefault("detector.redirect_params", def.RedirectParams)
	v.SetDefault("detector.similarity_threshold", def.SimilarityThreshold)
	v.SetDefault("detector.suspicious_threshold", def.SuspiciousThreshold)

	v.SetDefault("workers", runtime.NumCPU())

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("mail.source", "gmail")
	v.SetDefault("mail.credentials_file", "credentials.json")
	v.SetDefault("mail.token_file", "token.json")
	v.SetDefault("mail.eml_dir", "")
	v.SetDefault("mail.days", 7)
	v.SetDefault("mail.max_results", 50)
	v.SetDefault("mail.timeout", 15*time.Second)
	v.SetDefault("mail.rate_limit", 5.0)
	v.SetDefault("mail.burst", 5)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_batch", 500)
	v.SetDefault("server.max_body_bytes", int64(1<<20))
}

// BindEnv makes viper read PHISHQ_* variables, with dots in keys mapped to
// underscores (PHISHQ_MAIL_DAYS for mail.days).
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks ranges that the commands rely on.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, c.Workers)
	}

	if err := ValidateScanWindow(c.Mail.Days, c.Mail.MaxResults); err != nil {
		return err
	}

	if t := c.Detector.SimilarityThreshold; t < 0 || t >= 1 {
		return fmt.Errorf("%w: detector.similarity_threshold must be in [0, 1), got %v", ErrInvalid, t)
	}

	if c.Detector.SuspiciousThreshold < 0 || c.Detector.SuspiciousThreshold > detector.MaxRiskScore {
		return fmt.Errorf("%w: detector.suspicious_threshold must be in [0, %d], got %d",
			ErrInvalid, detector.MaxRiskScore, c.Detector.SuspiciousThreshold)
	}

	if c.Mail.RateLimit <= 0 {
		return fmt.Errorf("%w: mail.rate_limit must be positive, got %v", ErrInvalid, c.Mail.RateLimit)
	}

	if c.Server.MaxBatch <= 0 {
		return fmt.Errorf("%w: server.max_batch must be positive, got %d", ErrInvalid, c.Server.MaxBatch)
	}

	return nil
}

// ValidateScanWindow checks the day and message bounds of a mail scan.
func ValidateScanWindow(days, maxResults int) error {
	if days < MinDays || days > MaxDays {
		return fmt.Errorf("%w: days must be between %d and %d, got %d", ErrInvalid, MinDays, MaxDays, days)
	}

	if maxResults < MinResults || maxResults > MaxResults {
		return fmt.Errorf("%w: max results must be between %d and %d, got %d",
			ErrInvalid, MinResults, MaxResults, maxResults)
	}

	return nil
}

// NewLogger builds a logrus logger writing to stderr.
func NewLogger(cfg LogConfig) (*logrus.Logger, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg LogConfig, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	level := cfg.Level
	if level == "" {
		level = "info"
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	logger.SetLevel(parsed)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("%w: unknown log format %q (use text or json)", ErrInvalid, cfg.Format)
	}

	return logger, nil
}
