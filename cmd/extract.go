package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/btraven00/phishq/internal/batch"
	"github.com/btraven00/phishq/internal/extractor"
)

var (
	extractHTML    bool
	extractScore   bool
	extractContext bool
	contextLength  int
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [file...]",
	Short: "Extract URLs from text, HTML or document files",
	Long: `Extract finds full http(s) URLs and bare domain names in text files (or
standard input when no file is given), normalizes them and prints the unique
set. HTML input is reduced to its visible text first; it is detected from
the .html/.htm extension or the content itself, or forced with --html.
PDF, DOC, DOCX, ODT, RTF and Pages files are converted to text first (PDF
needs the poppler tools installed).

With --score every extracted URL is scored in parallel as in 'phishq batch'.

Examples:
  phishq extract message.txt
  phishq extract --html --score newsletter.html
  phishq extract --score invoice.pdf
  cat body.txt | phishq extract --context --verbose`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	ex := extractor.New(extractor.ExtractionOptions{
		IncludeContext: extractContext,
		ContextLength:  contextLength,
	})

	c := newChecker(cmd, false)

	sources := args
	if len(sources) == 0 {
		sources = []string{"-"}
	}

	for _, source := range sources {
		name, text, err := readSource(cmd, source)
		if err != nil {
			return err
		}

		if extractHTML || isHTMLFile(name) || extractor.LooksLikeHTML(text) {
			text = extractor.TextFromHTML(text)
		}

		result := ex.Extract(name, text)

		logger.WithField("source", name).WithField("urls", len(result.URLs)).Debug("extracted urls")

		var scores []batch.Item
		if extractScore {
			scores = c.CheckBatch(cmd.Context(), result.URLs)
		}

		if err := c.OutputExtraction(result, scores); err != nil {
			return fmt.Errorf("failed to output extraction results: %w", err)
		}
	}

	return nil
}

func readSource(cmd *cobra.Command, source string) (string, string, error) {
	if source == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}

		return "stdin", string(b), nil
	}

	if extractor.IsDocument(source) {
		text, err := extractor.TextFromDocumentFile(source)
		if err != nil {
			return "", "", err
		}

		return source, text, nil
	}

	b, err := os.ReadFile(source)
	if err != nil {
		return "", "", fmt.Errorf("failed to read file %s: %w", source, err)
	}

	return source, string(b), nil
}

func isHTMLFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	default:
		return false
	}
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVar(&extractHTML, "html", false, "treat input as HTML")
	extractCmd.Flags().BoolVarP(&extractScore, "score", "s", false, "score every extracted URL")
	extractCmd.Flags().BoolVar(&extractContext, "context", false, "include surrounding text for each match")
	extractCmd.Flags().IntVar(&contextLength, "context-length", extractor.DefaultExtractionOptions().ContextLength, "characters of context around each match")
}
