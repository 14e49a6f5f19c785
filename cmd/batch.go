package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/btraven00/phishq/internal/batch"
	"github.com/btraven00/phishq/internal/checker"
)

var (
	batchFile     string
	batchProgress bool
	batchFailFlag bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [url...]",
	Short: "Score many URLs in parallel",
	Long: `Batch scores every URL given as an argument, read from --file, or read
from standard input when neither is given (one URL per line; blank lines and
lines starting with # are ignored).

Results are printed in input order. A URL whose analysis fails is reported
as an error entry and never aborts the rest of the batch.

Examples:
  phishq batch https://bit.ly/x http://192.168.1.1 gooogle.com
  phishq batch --file urls.txt --output csv
  cat urls.txt | phishq batch --workers 8 --output json`,
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	urls, err := collectURLs(cmd, args)
	if err != nil {
		return err
	}

	c := newChecker(cmd, false)

	var opts []batch.Option

	if batchProgress && !quiet {
		tracker := batch.NewProgressTracker(cmd.ErrOrStderr())
		opts = append(opts, batch.WithProgress(func(update batch.ProgressUpdate) {
			tracker.Update(update)

			if update.Status == batch.TaskStatusCompleted || update.Status == batch.TaskStatusFailed {
				tracker.PrintProgress()
			}
		}))

		defer tracker.Finish()
	}

	items := c.CheckBatch(cmd.Context(), urls, opts...)

	if err := c.OutputBatch(items); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}

	if batchFailFlag {
		if summary := checker.Summarize(items); summary.Suspicious > 0 {
			return fmt.Errorf("%w: %d of %d urls", errSuspicious, summary.Suspicious, summary.Total)
		}
	}

	return nil
}

// collectURLs gathers URLs from args, --file, or stdin, in that order of
// preference.
func collectURLs(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	if batchFile != "" && batchFile != "-" {
		f, err := os.Open(batchFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open url file: %w", err)
		}
		defer f.Close()

		return readURLs(f)
	}

	return readURLs(cmd.InOrStdin())
}

// readURLs reads one URL per line, skipping blank lines and # comments.
func readURLs(r io.Reader) ([]string, error) {
	var urls []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		urls = append(urls, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read urls: %w", err)
	}

	return urls, nil
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "file with one URL per line (- for stdin)")
	batchCmd.Flags().BoolVar(&batchProgress, "progress", false, "show progress on stderr")
	batchCmd.Flags().BoolVar(&batchFailFlag, "fail-on-suspicious", false, "exit with an error when any URL is suspicious")
}
