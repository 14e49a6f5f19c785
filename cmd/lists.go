package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/btraven00/phishq/internal/detector"
)

var (
	listName string
	listJSON bool
)

// listsCmd represents the lists command
var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Show the checks and reference lists used for scoring",
	Long: `Lists prints the scoring checks with their maximum points and the active
reference lists (URL shorteners, suspicious TLDs, legitimate domains,
suspicious substrings and redirect parameters), after config overrides.

Examples:
  phishq lists                     # checks and all lists
  phishq lists --list shorteners   # a single list
  phishq lists --json              # machine-readable`,
	Args: cobra.NoArgs,
	RunE: runLists,
}

type namedList struct {
	name        string
	description string
	entries     []string
}

func referenceLists(cfg detector.Config) []namedList {
	return []namedList{
		{"shorteners", "URL shortening services", cfg.Shorteners},
		{"suspicious_tlds", "TLDs frequently abused for phishing", cfg.SuspiciousTLDs},
		{"legitimate_domains", "Typosquatting targets", cfg.LegitimateDomains},
		{"suspicious_substrings", "Substrings flagged anywhere in the URL", cfg.SuspiciousSubstrings},
		{"redirect_params", "Query parameters that suggest a redirect", cfg.RedirectParams},
	}
}

func runLists(cmd *cobra.Command, args []string) error {
	d := newDetector()
	out := cmd.OutOrStdout()

	if listJSON || output == "json" {
		return outputListsJSON(out, d)
	}

	lists := referenceLists(d.Config())

	if listName != "" {
		for _, l := range lists {
			if l.name == listName {
				return printList(out, l)
			}
		}

		return fmt.Errorf("unknown list: %s", listName)
	}

	if err := printCatalog(out, d); err != nil {
		return err
	}

	for _, l := range lists {
		if err := printList(out, l); err != nil {
			return err
		}
	}

	cfg := d.Config()
	fmt.Fprintf(out, "💡 Similarity threshold: %.2f | Suspicious at score >= %d\n",
		cfg.SimilarityThreshold, cfg.SuspiciousThreshold)

	return nil
}

func outputListsJSON(out io.Writer, d *detector.Detector) error {
	result := struct {
		Checks []detector.CheckInfo `json:"checks"`
		Config detector.Config      `json:"config"`
	}{
		Checks: d.Catalog(),
		Config: d.Config(),
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	return encoder.Encode(result)
}

func printCatalog(out io.Writer, d *detector.Detector) error {
	catalog := d.Catalog()

	fmt.Fprintf(out, "Scoring Checks (%d):\n\n", len(catalog))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "   CHECK\tMAX POINTS\tDESCRIPTION")
	fmt.Fprintln(w, "   -----\t----------\t-----------")

	for _, info := range catalog {
		desc := info.Description
		if len(desc) > 60 {
			desc = desc[:57] + "..."
		}

		fmt.Fprintf(w, "   %s\t%d\t%s\n", info.Name, info.MaxPoints, desc)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)

	return nil
}

func printList(out io.Writer, l namedList) error {
	fmt.Fprintf(out, "📋 %s (%d)\n", strings.ToUpper(l.name), len(l.entries))
	fmt.Fprintf(out, "   %s\n", l.description)
	fmt.Fprintf(out, "   %s\n\n", strings.Join(l.entries, ", "))

	return nil
}

func init() {
	rootCmd.AddCommand(listsCmd)

	listsCmd.Flags().StringVarP(&listName, "list", "l", "", "show a single list by name")
	listsCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}
