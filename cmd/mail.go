package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/btraven00/phishq/internal/mailbox"
)

var fallbackDemo bool

// mailCmd represents the mail command
var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Scan recent email for suspicious links",
	Long: `Mail pulls recent messages from a mailbox, extracts every URL from their
subject and body and flags messages that carry suspicious links.

Sources:
  gmail   the Gmail API with read-only scope (run 'phishq mail login' first)
  eml     a directory of .eml files, filtered by modification time
  demo    four built-in sample messages, no credentials needed`,
}

var mailScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan recent messages and report suspicious URLs",
	Long: `Scan lists up to --max messages from the last --days days, scores their
URLs and prints which emails look like phishing.

Examples:
  phishq mail scan --source demo
  phishq mail scan --days 3 --max 20
  phishq mail scan --source eml --dir ./inbox --output json`,
	Args: cobra.NoArgs,
	RunE: runMailScan,
}

var mailLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorize read-only Gmail access",
	Long: `Login runs the OAuth2 authorization code flow with the client credentials
file downloaded from the Google Cloud console. Open the printed URL, grant
access and paste the code back; the token is stored for later scans.`,
	Args: cobra.NoArgs,
	RunE: runMailLogin,
}

func runMailScan(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Mail

	src, err := openSource(cmd, cfg.Source)
	if err != nil {
		return err
	}

	scanner := mailbox.NewScanner(newDetector(), mailbox.ScannerConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
	}, logger)

	if !quiet && output == "human" {
		fmt.Fprintf(cmd.ErrOrStderr(), "🔍 Scanning %s messages from the last %d days (max %d)...\n",
			src.Name(), cfg.Days, cfg.MaxResults)
	}

	report, err := scanner.Scan(cmd.Context(), src, cfg.Days, cfg.MaxResults)
	if err != nil {
		return fmt.Errorf("mail scan failed: %w", err)
	}

	c := newChecker(cmd, false)

	if err := c.OutputReport(report); err != nil {
		return fmt.Errorf("failed to output report: %w", err)
	}

	return nil
}

// openSource builds the configured mail source. A Gmail source that cannot
// authenticate is replaced by the demo source when --fallback-demo is set.
func openSource(cmd *cobra.Command, name string) (mailbox.Source, error) {
	cfg := appConfig.Mail

	switch strings.ToLower(name) {
	case "demo":
		return mailbox.NewDemoSource(), nil
	case "eml":
		if cfg.EMLDir == "" {
			return nil, errors.New("eml source requires --dir or mail.eml_dir")
		}

		return mailbox.NewEMLSource(cfg.EMLDir), nil
	case "gmail", "":
		src, err := mailbox.NewGmailSource(cmd.Context(), mailbox.GmailConfig{
			CredentialsFile: cfg.CredentialsFile,
			TokenFile:       cfg.TokenFile,
		})
		if err == nil {
			return src, nil
		}

		if !fallbackDemo {
			return nil, err
		}

		logger.WithError(err).Warn("gmail unavailable, using demo messages")

		return mailbox.NewDemoSource(), nil
	default:
		return nil, fmt.Errorf("unknown mail source %q (use gmail, eml or demo)", name)
	}
}

func runMailLogin(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Mail

	oauthConfig, err := mailbox.LoadOAuthConfig(cfg.CredentialsFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "🔐 Open the following URL in your browser and authorize access:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, mailbox.LoginURL(oauthConfig, uuid.NewString()))
	fmt.Fprintln(out)
	fmt.Fprint(out, "Paste the authorization code: ")

	reader := bufio.NewReader(cmd.InOrStdin())

	code, err := reader.ReadString('\n')
	if err != nil && strings.TrimSpace(code) == "" {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}

	if _, err := mailbox.Exchange(cmd.Context(), oauthConfig, code, cfg.TokenFile); err != nil {
		return err
	}

	fmt.Fprintf(out, "✅ Token saved to %s\n", cfg.TokenFile)

	return nil
}

func init() {
	rootCmd.AddCommand(mailCmd)
	mailCmd.AddCommand(mailScanCmd)
	mailCmd.AddCommand(mailLoginCmd)

	mailCmd.PersistentFlags().String("credentials", "credentials.json", "OAuth2 client credentials file")
	mailCmd.PersistentFlags().String("token", "token.json", "stored OAuth2 token file")

	mailScanCmd.Flags().String("source", "gmail", "message source (gmail, eml, demo)")
	mailScanCmd.Flags().Int("days", 7, "look back this many days (1-30)")
	mailScanCmd.Flags().Int("max", 50, "maximum number of messages (10-100)")
	mailScanCmd.Flags().String("dir", "", "directory of .eml files for the eml source")
	mailScanCmd.Flags().BoolVar(&fallbackDemo, "fallback-demo", false, "use demo messages when gmail is not authorized")

	cobra.CheckErr(viper.BindPFlag("mail.credentials_file", mailCmd.PersistentFlags().Lookup("credentials")))
	cobra.CheckErr(viper.BindPFlag("mail.token_file", mailCmd.PersistentFlags().Lookup("token")))
	cobra.CheckErr(viper.BindPFlag("mail.source", mailScanCmd.Flags().Lookup("source")))
	cobra.CheckErr(viper.BindPFlag("mail.days", mailScanCmd.Flags().Lookup("days")))
	cobra.CheckErr(viper.BindPFlag("mail.max_results", mailScanCmd.Flags().Lookup("max")))
	cobra.CheckErr(viper.BindPFlag("mail.eml_dir", mailScanCmd.Flags().Lookup("dir")))
}
