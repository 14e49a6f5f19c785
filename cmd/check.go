package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// errSuspicious is returned by --fail-on-suspicious so scripts get a
// non-zero exit status.
var errSuspicious = errors.New("suspicious url detected")

var (
	screenFlag           bool
	failOnSuspiciousFlag bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <url>",
	Short: "Score a single URL for phishing risk",
	Long: `Check normalizes a URL (adding https:// when no scheme is given), runs
every heuristic check on it and reports the risk score, risk level, the
checks that contributed points and three recommendations.

Examples:
  phishq check https://www.google.com
  phishq check bit.ly/verify-account
  phishq check --screen http://192.168.1.1/login
  phishq check --output json https://gooogle.com`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	target := args[0]

	logger.WithField("url", target).Debug("checking url")

	c := newChecker(cmd, screenFlag)
	result := c.Check(target)

	if err := c.OutputResult(result); err != nil {
		return fmt.Errorf("failed to output result: %w", err)
	}

	if failOnSuspiciousFlag && result.Analysis.Suspicious {
		return fmt.Errorf("%w: %s", errSuspicious, result.Analysis.URL)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&screenFlag, "screen", false, "also run the quick rule-based screen")
	checkCmd.Flags().BoolVar(&failOnSuspiciousFlag, "fail-on-suspicious", false, "exit with an error when the URL is suspicious")
}
