package test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"google.golang.org/api/option"

	"github.com/btraven00/phishq/internal/checker"
	"github.com/btraven00/phishq/internal/detector"
	"github.com/btraven00/phishq/internal/extractor"
	"github.com/btraven00/phishq/internal/mailbox"
)

// TestIntegration_DetectorCorpus scores the shared corpus end to end.
func TestIntegration_DetectorCorpus(t *testing.T) {
	d := detector.New(detector.DefaultConfig())

	for _, tc := range GetTestData().URLs {
		t.Run(tc.Description, func(t *testing.T) {
			result := d.Analyze(tc.URL)

			if result.RiskScore < tc.MinScore || result.RiskScore > tc.MaxScore {
				t.Errorf("%s: expected score in [%d, %d], got %d", tc.URL, tc.MinScore, tc.MaxScore, result.RiskScore)
			}

			if tc.Level != "" && string(result.RiskLevel) != tc.Level {
				t.Errorf("%s: expected level %s, got %s", tc.URL, tc.Level, result.RiskLevel)
			}

			if result.Suspicious != (result.RiskScore >= 30) {
				t.Errorf("%s: suspicious=%v does not match score %d", tc.URL, result.Suspicious, result.RiskScore)
			}

			if len(result.Recommendations) != 3 {
				t.Errorf("%s: expected 3 recommendations, got %d", tc.URL, len(result.Recommendations))
			}
		})
	}
}

// TestIntegration_ExtractAndScore runs extraction followed by batch scoring.
func TestIntegration_ExtractAndScore(t *testing.T) {
	var out bytes.Buffer

	c := checker.New(checker.Config{Out: &out, OutputFormat: "json", Workers: 2}, detector.New(detector.DefaultConfig()), nil)
	ex := extractor.New(extractor.DefaultExtractionOptions())

	for _, tc := range GetTestData().Texts {
		t.Run(tc.Description, func(t *testing.T) {
			text := tc.Text
			if tc.HTML {
				text = extractor.TextFromHTML(text)
			}

			result := ex.Extract("corpus", text)

			if strings.Join(result.URLs, " ") != strings.Join(tc.Expected, " ") {
				t.Fatalf("expected urls %v, got %v", tc.Expected, result.URLs)
			}

			items := c.CheckBatch(context.Background(), result.URLs)
			if len(items) != len(result.URLs) {
				t.Fatalf("expected %d scored items, got %d", len(result.URLs), len(items))
			}

			for i, item := range items {
				if item.Failed() {
					t.Errorf("item %d failed: %s", i, item.Error.Error)
				}

				if item.URL != result.URLs[i] {
					t.Errorf("item %d out of order: %s != %s", i, item.URL, result.URLs[i])
				}
			}

			out.Reset()

			if err := c.OutputExtraction(result, items); err != nil {
				t.Errorf("OutputExtraction failed: %v", err)
			}
		})
	}
}

// TestIntegration_GmailScan drives a full scan against a mock Gmail API.
func TestIntegration_GmailScan(t *testing.T) {
	data := GetTestData()

	server := CreateMockGmailServer(data.Messages)
	defer server.Close()

	src, err := mailbox.NewGmailSourceWithOptions(context.Background(),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("failed to create gmail source: %v", err)
	}

	scanner := mailbox.NewScanner(detector.New(detector.DefaultConfig()), mailbox.ScannerConfig{Timeout: 5 * time.Second}, nil)

	report, err := scanner.Scan(context.Background(), src, 7, 50)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if report.MessagesScanned != len(data.Messages) {
		t.Errorf("expected %d messages scanned, got %d", len(data.Messages), report.MessagesScanned)
	}

	var expected []string
	for _, m := range data.Messages {
		if m.Suspicious {
			expected = append(expected, m.ID)
		}
	}

	var got []string
	for _, e := range report.SuspiciousEmails {
		got = append(got, e.MessageID)
	}

	if strings.Join(got, ",") != strings.Join(expected, ",") {
		t.Errorf("expected suspicious emails %v, got %v", expected, got)
	}

	if len(report.SafeURLs) != 1 || report.SafeURLs[0] != "https://github.com/notifications" {
		t.Errorf("unexpected safe urls: %v", report.SafeURLs)
	}

	var out bytes.Buffer

	c := checker.New(checker.Config{Out: &out, OutputFormat: "human"}, detector.New(detector.DefaultConfig()), nil)
	if err := c.OutputReport(report); err != nil {
		t.Fatalf("OutputReport failed: %v", err)
	}

	if !strings.Contains(out.String(), "Action required: verify your account") {
		t.Errorf("report does not list the flagged subject:\n%s", out.String())
	}
}

// TestIntegration_PerformanceConstraints checks that scoring stays local and fast.
func TestIntegration_PerformanceConstraints(t *testing.T) {
	d := detector.New(detector.DefaultConfig())

	start := time.Now()
	d.Analyze("https://secure-login.paypal.com.verify-account.tk/login")

	if elapsed := time.Since(start); elapsed > TimingConstraints.MaxAnalysisTime {
		t.Errorf("analysis too slow: %v > %v", elapsed, TimingConstraints.MaxAnalysisTime)
	}

	urls := make([]string, 0, 500)
	for i := 0; i < 100; i++ {
		for _, tc := range GetTestData().URLs[:5] {
			urls = append(urls, tc.URL)
		}
	}

	c := checker.New(checker.Config{Workers: 4}, d, nil)

	start = time.Now()
	items := c.CheckBatch(context.Background(), urls)

	if elapsed := time.Since(start); elapsed > TimingConstraints.MaxBatchTime {
		t.Errorf("batch too slow: %v > %v", elapsed, TimingConstraints.MaxBatchTime)
	}

	if len(items) != len(urls) {
		t.Errorf("expected %d items, got %d", len(urls), len(items))
	}
}

// TestIntegration_CLIBasicFunctionality tests basic CLI functionality.
func TestIntegration_CLIBasicFunctionality(t *testing.T) {
	// Skip if no binary is available
	binaryPath := findBinary(t)
	if binaryPath == "" {
		t.Skip("Binary not found, build ./bin/phishq first")
	}

	tests := []struct {
		name       string
		expectOut  string
		args       []string
		expectCode int
	}{
		{
			name:       "Help command",
			args:       []string{"--help"},
			expectCode: 0,
			expectOut:  "phishq",
		},
		{
			name:       "Check help",
			args:       []string{"check", "--help"},
			expectCode: 0,
			expectOut:  "Check normalizes",
		},
		{
			name:       "Suspicious URL fails on request",
			args:       []string{"check", "--fail-on-suspicious", "http://192.168.1.1/login"},
			expectCode: 1,
			expectOut:  "suspicious url detected",
		},
		{
			name:       "Demo mail scan",
			args:       []string{"mail", "scan", "--source", "demo"},
			expectCode: 0,
			expectOut:  "SUSPICIOUS EMAILS DETECTED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binaryPath, tt.args...)
			cmd.Env = append(os.Environ(), "HOME="+t.TempDir())

			var stdout, stderr bytes.Buffer
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr

			_ = cmd.Run()

			// Check exit code
			if exitCode := cmd.ProcessState.ExitCode(); exitCode != tt.expectCode {
				t.Errorf("Expected exit code %d, got %d", tt.expectCode, exitCode)
				t.Logf("Stdout: %s", stdout.String())
				t.Logf("Stderr: %s", stderr.String())
			}

			// Check output contains expected string
			if tt.expectOut != "" {
				output := stdout.String() + stderr.String()
				if !strings.Contains(output, tt.expectOut) {
					t.Errorf("Expected output to contain '%s', got: %s", tt.expectOut, output)
				}
			}
		})
	}
}

// TestIntegration_CLIJSONOutput tests JSON output format.
func TestIntegration_CLIJSONOutput(t *testing.T) {
	binaryPath := findBinary(t)
	if binaryPath == "" {
		t.Skip("Binary not found, build ./bin/phishq first")
	}

	cmd := exec.Command(binaryPath, "check", "https://gooogle.com", "--output", "json")
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir())

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		t.Fatalf("check failed: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nOutput: %s", err, stdout.String())
	}

	analysis, ok := result["analysis"].(map[string]interface{})
	if !ok {
		t.Fatalf("analysis missing from output: %s", stdout.String())
	}

	expectedFields := []string{"url", "risk_score", "risk_level", "is_suspicious", "checks", "recommendations"}
	for _, field := range expectedFields {
		if _, exists := analysis[field]; !exists {
			t.Errorf("Expected field '%s' not found in JSON output", field)
		}
	}
}

// Helper function to find the binary for testing.
func findBinary(t *testing.T) string {
	t.Helper()

	possiblePaths := []string{
		"../bin/phishq",
		"./bin/phishq",
	}

	if runtime.GOOS == "windows" {
		for i, path := range possiblePaths {
			possiblePaths[i] = path + ".exe"
		}
	}

	for _, path := range possiblePaths {
		if absPath, err := filepath.Abs(path); err == nil {
			if _, err := os.Stat(absPath); err == nil {
				return absPath
			}
		}
	}

	return ""
}

// BenchmarkIntegration_Analyze benchmarks scoring of the corpus.
func BenchmarkIntegration_Analyze(b *testing.B) {
	d := detector.New(detector.DefaultConfig())
	cases := GetTestData().URLs

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range cases {
			d.Analyze(tc.URL)
		}
	}
}

// BenchmarkIntegration_Extract benchmarks URL extraction from a short email.
func BenchmarkIntegration_Extract(b *testing.B) {
	text := strings.Repeat(GetTestData().Texts[0].Text+" ", 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		extractor.ExtractURLs(text)
	}
}
