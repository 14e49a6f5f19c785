package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/btraven00/phishq/internal/checker"
	"github.com/btraven00/phishq/internal/detector"
	"github.com/btraven00/phishq/internal/extractor"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Debug information about checks and URL matching",
	Long:  `Display debug information about the scoring checks, typosquatting similarity and URL extraction.`,
	Args:  cobra.NoArgs,
	RunE:  runDebug,
}

var (
	debugSimilarity  string
	debugTestPattern string
	debugTop         int
)

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.Flags().StringVar(&debugSimilarity, "similarity", "", "show similarity of a URL's host to every legitimate domain")
	debugCmd.Flags().StringVarP(&debugTestPattern, "test-pattern", "t", "", "test URL extraction and scoring for a piece of text")
	debugCmd.Flags().IntVar(&debugTop, "top", 5, "number of similarity scores to show (0 for all)")
}

func runDebug(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	d := newDetector()

	if debugSimilarity != "" {
		showSimilarity(out, d, debugSimilarity)
		return nil
	}

	if debugTestPattern != "" {
		testPattern(out, d, debugTestPattern)
		return nil
	}

	// Default: show general debug info
	showGeneralDebug(out, d)

	return nil
}

func showSimilarity(out io.Writer, d *detector.Detector, rawURL string) {
	fmt.Fprintf(out, "=== Typosquatting Similarity for: %q ===\n\n", rawURL)

	label, scores := d.Similarities(rawURL)
	if scores == nil {
		fmt.Fprintln(out, "❌ URL could not be parsed")
		return
	}

	threshold := d.Config().SimilarityThreshold

	fmt.Fprintf(out, "Compared label: %q (threshold %.2f)\n\n", label, threshold)

	for i, s := range scores {
		if debugTop > 0 && i >= debugTop {
			fmt.Fprintf(out, "  ... and %d more\n", len(scores)-debugTop)
			break
		}

		marker := "  "
		if s.Score > threshold && s.Score < 1 {
			marker = "⚠️"
		}

		fmt.Fprintf(out, "%s %-20s %.3f\n", marker, s.Domain, s.Score)
	}

	finding := d.Analyze(rawURL).Checks.Typosquatting
	fmt.Fprintln(out)

	if finding.IsTyposquatting {
		fmt.Fprintf(out, "🎯 Flagged as look-alike of %s (+%d points)\n", finding.PotentialTarget, finding.RiskPoints)
	} else {
		fmt.Fprintln(out, "✅ Not flagged as typosquatting")
	}
}

func testPattern(out io.Writer, d *detector.Detector, input string) {
	fmt.Fprintf(out, "=== Testing URL Extraction for: %q ===\n\n", input)

	links := extractor.New(extractor.ExtractionOptions{IncludeContext: true, ContextLength: 30}).Links(input)

	fmt.Fprintf(out, "Found %d match(es):\n", len(links))

	if len(links) == 0 {
		fmt.Fprintln(out, "❌ No URL candidates in this input")
		return
	}

	for i, link := range links {
		fmt.Fprintf(out, "\n%d. %s\n", i+1, link.URL)
		fmt.Fprintf(out, "   Raw: %q at position %d\n", link.Raw, link.Position)
		fmt.Fprintf(out, "   Context: %q\n", link.Context)

		result := d.Analyze(link.URL)
		fmt.Fprintf(out, "   Score: %d (%s)\n", result.RiskScore, result.RiskLevel)

		totals := result.Checks.Points()

		for _, name := range detector.CheckNames {
			points := totals[name]
			if points == 0 {
				continue
			}

			fmt.Fprintf(out, "     +%d %s: %s\n", points, name, checker.Evidence(result.Checks, name))
		}

		screening := d.Screen(link.URL)
		for _, reason := range screening.Reasons {
			fmt.Fprintf(out, "     • %s\n", reason)
		}
	}
}

func showGeneralDebug(out io.Writer, d *detector.Detector) {
	fmt.Fprintln(out, "=== Phishq Debug Information ===")
	fmt.Fprintln(out)

	cfg := d.Config()

	fmt.Fprintf(out, "Checks: %d\n", len(d.Catalog()))
	fmt.Fprintf(out, "Shorteners: %d | Suspicious TLDs: %d | Legitimate domains: %d\n",
		len(cfg.Shorteners), len(cfg.SuspiciousTLDs), len(cfg.LegitimateDomains))
	fmt.Fprintf(out, "Workers: %d\n", appConfig.Workers)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Use --similarity <url> to see typosquatting similarity scores")
	fmt.Fprintln(out, "Use --test-pattern <text> to test URL extraction")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Example commands:")
	fmt.Fprintln(out, "  phishq debug --similarity gooogle.com")
	fmt.Fprintln(out, "  phishq debug --test-pattern 'visit www.paypa1.com now'")
}
