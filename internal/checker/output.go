package checker

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/btraven00/phishq/internal/batch"
	"github.com/btraven00/phishq/internal/detector"
	"github.com/btraven00/phishq/internal/extractor"
	"github.com/btraven00/phishq/internal/mailbox"
)

const separator = "=================================================="

// OutputResult writes a single check result in the configured format.
func (c *Checker) OutputResult(result *Result) error {
	switch c.config.OutputFormat {
	case "json":
		return c.outputJSON(result)
	case "human", "":
		return c.outputHuman(result)
	default:
		return fmt.Errorf("unsupported output format: %s", c.config.OutputFormat)
	}
}

func (c *Checker) outputJSON(v any) error {
	encoder := json.NewEncoder(c.config.Out)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

func (c *Checker) printf(format string, args ...any) {
	fmt.Fprintf(c.config.Out, format, args...)
}

func (c *Checker) outputHuman(result *Result) error {
	a := result.Analysis

	c.printf("🔍 URL: %s\n", a.URL)

	if a.Input != a.URL {
		c.printf("ℹ️  Input: %q\n", a.Input)
	}

	c.printf("%s\n", separator)
	c.printf("Risk Level: %s\n", a.RiskLevel)
	c.printf("Risk Score: %d/%d\n", a.RiskScore, detector.MaxRiskScore)

	if a.Suspicious {
		c.printf("Suspicious: Yes ⚠️\n")
	} else {
		c.printf("Suspicious: No ✅\n")
	}

	c.printCheckDetails(a)

	c.printf("\n💡 Recommendations:\n")

	for _, rec := range a.Recommendations {
		c.printf("  • %s\n", rec)
	}

	if result.Screening != nil {
		if result.Screening.Suspicious {
			c.printf("\n🧪 Quick screen: SUSPICIOUS\n")

			for _, reason := range result.Screening.Reasons {
				c.printf("  • %s\n", reason)
			}
		} else {
			c.printf("\n🧪 Quick screen: no risk factors\n")
		}
	}

	return nil
}

func (c *Checker) printCheckDetails(a *detector.AnalysisResult) {
	points := a.Checks.Points()

	var flagged []detector.CheckName

	for _, name := range detector.CheckNames {
		if points[name] > 0 {
			flagged = append(flagged, name)
		}
	}

	if len(flagged) == 0 {
		c.printf("\n✅ No significant risk factors detected\n")
	} else {
		c.printf("\n🚨 Risk Factors:\n")

		for _, name := range flagged {
			evidence := Evidence(a.Checks, name)
			if evidence != "" {
				c.printf("  • %s: %d points (%s)\n", name, points[name], evidence)
			} else {
				c.printf("  • %s: %d points\n", name, points[name])
			}
		}
	}

	if !c.config.Verbose {
		return
	}

	d := a.Checks.DomainAnalysis
	c.printf("\n📋 Details:\n")
	c.printf("   Host: %s (%d chars)\n", d.Host, d.DomainLength)

	if d.RegistrableDomain != "" {
		c.printf("   Registrable domain: %s\n", d.RegistrableDomain)
	}

	if d.PublicSuffix != "" {
		c.printf("   Public suffix: %s\n", d.PublicSuffix)
	}

	c.printf("   Dots: %d | Path depth: %d | HTTPS: %t\n",
		a.Checks.BasicPatterns.DotCount, a.Checks.URLStructure.PathDepth, a.Checks.SSLCheck.HasSSL)

	if ts := a.Checks.Typosquatting; ts.PotentialTarget != "" {
		c.printf("   Closest known domain: %s (similarity %.2f)\n", ts.PotentialTarget, ts.SimilarityScore)
	}

	c.printf("   Analyzed at: %s\n", a.Timestamp.Format("2006-01-02 15:04:05"))
}

// Evidence summarizes why a check contributed points.
func Evidence(checks detector.Checks, name detector.CheckName) string {
	var parts []string

	switch name {
	case detector.CheckBasicPatterns:
		p := checks.BasicPatterns
		if len(p.SuspiciousChars) > 0 {
			parts = append(parts, "contains "+strings.Join(p.SuspiciousChars, " "))
		}

		if p.URLShortener {
			parts = append(parts, "shortener "+p.Shortener)
		}

		if p.SuspiciousTLD {
			parts = append(parts, "suspicious TLD "+p.SuspiciousTLDMatch)
		}

		if p.ExcessiveSubdomains {
			parts = append(parts, fmt.Sprintf("%d dots", p.DotCount))
		}
	case detector.CheckDomainAnalysis:
		d := checks.DomainAnalysis
		if d.Error != "" {
			parts = append(parts, "parse error: "+d.Error)
		}

		if d.IsIP {
			parts = append(parts, "IP address host")
		}

		if d.HasNumbers {
			parts = append(parts, "digits in host")
		}

		if d.HasHyphens {
			parts = append(parts, "hyphens in host")
		}

		if d.TooLong {
			parts = append(parts, "host too long")
		}

		if d.TooShort {
			parts = append(parts, "host too short")
		}
	case detector.CheckTyposquatting:
		ts := checks.Typosquatting
		if ts.IsTyposquatting {
			parts = append(parts, fmt.Sprintf("resembles %s (%.2f)", ts.PotentialTarget, ts.SimilarityScore))
		}
	case detector.CheckSSL:
		s := checks.SSLCheck
		if s.Error != "" {
			parts = append(parts, "parse error: "+s.Error)
		} else if !s.HasSSL {
			parts = append(parts, "no HTTPS")
		}
	case detector.CheckURLStructure:
		s := checks.URLStructure
		if s.Error != "" {
			parts = append(parts, "parse error: "+s.Error)
		}

		if s.PathDepth > 0 {
			parts = append(parts, fmt.Sprintf("path depth %d", s.PathDepth))
		}

		if len(s.SuspiciousParams) > 0 {
			parts = append(parts, "redirect params "+strings.Join(s.SuspiciousParams, ","))
		}

		if s.EncodedChars {
			parts = append(parts, "encoded characters")
		}
	}

	return strings.Join(parts, "; ")
}

// OutputBatch writes batch items in the configured format.
func (c *Checker) OutputBatch(items []batch.Item) error {
	switch c.config.OutputFormat {
	case "json":
		return c.outputJSON(struct {
			Items   []batch.Item `json:"items"`
			Summary BatchSummary `json:"summary"`
		}{Items: items, Summary: Summarize(items)})
	case "csv":
		return c.outputBatchCSV(items)
	case "human", "":
		return c.outputBatchHuman(items)
	default:
		return fmt.Errorf("unsupported output format: %s", c.config.OutputFormat)
	}
}

// BatchSummary counts the outcomes of a batch.
type BatchSummary struct {
	Total      int `json:"total"`
	Suspicious int `json:"suspicious"`
	Failed     int `json:"failed"`
}

// Summarize counts suspicious and failed items.
func Summarize(items []batch.Item) BatchSummary {
	summary := BatchSummary{Total: len(items)}

	for _, item := range items {
		switch {
		case item.Failed():
			summary.Failed++
		case item.Result.Suspicious:
			summary.Suspicious++
		}
	}

	return summary
}

func (c *Checker) outputBatchHuman(items []batch.Item) error {
	c.printf("📊 Batch Analysis Results:\n")
	c.printf("%s\n", separator)

	for _, item := range items {
		c.printf("\n%d. URL: %s\n", item.Index+1, item.URL)

		if item.Failed() {
			c.printf("   ❌ Error: %s\n", item.Error.Error)
			c.printf("------------------------------\n")

			continue
		}

		c.printf("   Risk Level: %s (Score: %d/%d)\n",
			item.Result.RiskLevel, item.Result.RiskScore, detector.MaxRiskScore)

		if item.Result.Suspicious {
			c.printf("   ⚠️ SUSPICIOUS URL DETECTED\n")
		} else {
			c.printf("   ✅ Appears safe\n")
		}

		c.printf("------------------------------\n")
	}

	summary := Summarize(items)
	c.printf("\n📈 %d URLs | %d suspicious | %d failed\n", summary.Total, summary.Suspicious, summary.Failed)

	return nil
}

func (c *Checker) outputBatchCSV(items []batch.Item) error {
	writer := csv.NewWriter(c.config.Out)

	header := []string{"index", "input", "url", "risk_score", "risk_level", "suspicious", "error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, item := range items {
		row := []string{strconv.Itoa(item.Index), item.URL}

		if item.Failed() {
			row = append(row, "", "", "", "", item.Error.Error)
		} else {
			row = append(row,
				item.Result.URL,
				strconv.Itoa(item.Result.RiskScore),
				string(item.Result.RiskLevel),
				strconv.FormatBool(item.Result.Suspicious),
				"",
			)
		}

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}

// OutputExtraction writes the URLs extracted from one source. scores may be
// nil; otherwise it holds one item per URL in result.URLs.
func (c *Checker) OutputExtraction(result *extractor.ExtractionResult, scores []batch.Item) error {
	switch c.config.OutputFormat {
	case "json":
		return c.outputJSON(struct {
			*extractor.ExtractionResult
			Scores []batch.Item `json:"scores,omitempty"`
		}{ExtractionResult: result, Scores: scores})
	case "csv":
		return c.outputExtractionCSV(result, scores)
	case "human", "":
		return c.outputExtractionHuman(result, scores)
	default:
		return fmt.Errorf("unsupported output format: %s", c.config.OutputFormat)
	}
}

func (c *Checker) outputExtractionHuman(result *extractor.ExtractionResult, scores []batch.Item) error {
	c.printf("📄 Source: %s\n", result.Source)
	c.printf("📊 Text: %d chars | Processing time: %v\n", result.TotalText, result.ProcessTime)
	c.printf("🔗 Found %d URLs (%d unique)\n", result.Summary.TotalLinks, result.Summary.UniqueLinks)

	for i, u := range result.URLs {
		if scores == nil {
			c.printf("   🌐 %s\n", u)
			continue
		}

		item := scores[i]

		switch {
		case item.Failed():
			c.printf("   ❌ %s (%s)\n", u, item.Error.Error)
		case item.Result.Suspicious:
			c.printf("   ⚠️  %s [%s %d]\n", u, item.Result.RiskLevel, item.Result.RiskScore)
		default:
			c.printf("   ✅ %s [%s %d]\n", u, item.Result.RiskLevel, item.Result.RiskScore)
		}
	}

	if c.config.Verbose {
		for _, link := range result.Links {
			if link.Context != "" {
				c.printf("   📝 %s: %s\n", link.URL, link.Context)
			}
		}
	}

	return nil
}

func (c *Checker) outputExtractionCSV(result *extractor.ExtractionResult, scores []batch.Item) error {
	writer := csv.NewWriter(c.config.Out)

	if err := writer.Write([]string{"source", "url", "risk_score", "risk_level", "suspicious"}); err != nil {
		return err
	}

	for i, u := range result.URLs {
		row := []string{result.Source, u, "", "", ""}

		if scores != nil && !scores[i].Failed() {
			r := scores[i].Result
			row[2] = strconv.Itoa(r.RiskScore)
			row[3] = string(r.RiskLevel)
			row[4] = strconv.FormatBool(r.Suspicious)
		}

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()

	return writer.Error()
}

// OutputReport writes a mail scan report in the configured format.
func (c *Checker) OutputReport(report *mailbox.Report) error {
	switch c.config.OutputFormat {
	case "json":
		return c.outputJSON(report)
	case "human", "":
		return c.outputReportHuman(report)
	default:
		return fmt.Errorf("unsupported output format: %s", c.config.OutputFormat)
	}
}

func (c *Checker) outputReportHuman(report *mailbox.Report) error {
	c.printf("📊 Email URL Analysis Results (%s)\n", report.Source)
	c.printf("%s\n", separator)
	c.printf("📧 Messages scanned: %d/%d (last %d days)\n", report.MessagesScanned, report.MessagesListed, report.Days)
	c.printf("📧 Total URLs found: %d\n", report.TotalURLs)
	c.printf("⚠️ Suspicious emails: %d\n", len(report.SuspiciousEmails))

	if len(report.Errors) > 0 {
		c.printf("\n❌ Errors:\n")

		for _, e := range report.Errors {
			c.printf("   • %s: %s\n", e.MessageID, e.Error)
		}
	}

	if report.Clean() {
		c.printf("\n✅ No suspicious URLs found in recent emails!\n")
	} else {
		c.printf("\n🚨 SUSPICIOUS EMAILS DETECTED:\n")
		c.printf("%s\n", separator)

		for i, email := range report.SuspiciousEmails {
			c.printf("\n%d. 📧 Subject: %s\n", i+1, email.Subject)
			c.printf("   📧 Message ID: %s\n", email.MessageID)
			c.printf("   🚨 Suspicious URLs:\n")

			for _, f := range email.SuspiciousURLs {
				c.printf("      ⚠️ %s [%s %d]\n", f.URL, f.RiskLevel, f.RiskScore)

				if len(f.RiskFactors) > 0 {
					c.printf("         Risk factors:\n")

					for _, factor := range f.RiskFactors {
						c.printf("           • %s\n", factor)
					}
				}
			}

			c.printf("------------------------------\n")
		}
	}

	if len(report.SafeURLs) > 0 {
		c.printf("\n✅ Safe URLs found: %d\n", len(report.SafeURLs))

		shown := report.SafeURLs
		if len(shown) > 5 && !c.config.Verbose {
			shown = shown[:5]
		}

		for _, u := range shown {
			c.printf("   ✅ %s\n", u)
		}
	}

	c.printf("\n💡 Recommendations:\n")

	if report.Clean() {
		c.printf("   ✅ Your recent emails appear safe\n")
		c.printf("   🛡️ Continue monitoring for suspicious content\n")
		c.printf("   📧 Be cautious with unexpected emails\n")
	} else {
		c.printf("   🚨 Review suspicious emails carefully\n")
		c.printf("   🚫 Do not click on flagged URLs\n")
		c.printf("   📞 Report suspicious emails to IT security\n")
		c.printf("   🔒 Verify URLs through official channels\n")
	}

	return nil
}
