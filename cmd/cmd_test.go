package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns what it wrote to
// stdout. HOME points at an empty directory so no user config is read.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	t.Cleanup(func() {
		screenFlag = false
		failOnSuspiciousFlag = false
		batchFile = ""
		batchFailFlag = false
		extractScore = false
		extractHTML = false
		fallbackDemo = false
		listName = ""
		listJSON = false
		debugSimilarity = ""
		debugTestPattern = ""

		for name, value := range map[string]string{"source": "gmail", "days": "7", "max": "50", "dir": ""} {
			require.NoError(t, mailScanCmd.Flags().Set(name, value))
		}
	})

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"-q"}, args...))

	err := rootCmd.Execute()

	return out.String(), err
}

func TestReadURLs(t *testing.T) {
	input := `
# phishing samples
https://bit.ly/verify

  gooogle.com  
#https://ignored.example
http://192.168.1.1/login
`

	urls, err := readURLs(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://bit.ly/verify", "gooogle.com", "http://192.168.1.1/login"}, urls)

	urls, err = readURLs(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestIsHTMLFile(t *testing.T) {
	assert.True(t, isHTMLFile("mail.html"))
	assert.True(t, isHTMLFile("MAIL.HTM"))
	assert.False(t, isHTMLFile("mail.txt"))
	assert.False(t, isHTMLFile("stdin"))
}

func TestCheckCommand_JSON(t *testing.T) {
	out, err := execute(t, "", "-o", "json", "check", "--screen", "http://192.168.1.1/malicious")
	require.NoError(t, err)

	var decoded struct {
		Analysis struct {
			RiskScore  int    `json:"risk_score"`
			RiskLevel  string `json:"risk_level"`
			Suspicious bool   `json:"is_suspicious"`
		} `json:"analysis"`
		Screening *struct {
			Suspicious bool `json:"is_suspicious"`
		} `json:"screening"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 40, decoded.Analysis.RiskScore)
	assert.Equal(t, "MEDIUM", decoded.Analysis.RiskLevel)
	assert.True(t, decoded.Analysis.Suspicious)
	require.NotNil(t, decoded.Screening)
	assert.True(t, decoded.Screening.Suspicious)
}

func TestCheckCommand_FailOnSuspicious(t *testing.T) {
	_, err := execute(t, "", "-o", "human", "check", "--fail-on-suspicious", "http://192.168.1.1/malicious")
	require.ErrorIs(t, err, errSuspicious)

	_, err = execute(t, "", "-o", "human", "check", "--fail-on-suspicious", "https://github.com")
	assert.NoError(t, err)
}

func TestCheckCommand_RequiresURL(t *testing.T) {
	_, err := execute(t, "", "check")
	assert.Error(t, err)
}

func TestBatchCommand_Stdin(t *testing.T) {
	out, err := execute(t, "https://www.google.com\n# comment\nhttp://[::1\nbit.ly/x\n", "-o", "json", "batch")
	require.NoError(t, err)

	var decoded struct {
		Items []struct {
			URL   string `json:"url"`
			Index int    `json:"index"`
		} `json:"items"`
		Summary struct {
			Total      int `json:"total"`
			Suspicious int `json:"suspicious"`
		} `json:"summary"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Items, 3)
	assert.Equal(t, "http://[::1", decoded.Items[1].URL)
	assert.Equal(t, 3, decoded.Summary.Total)
	assert.Equal(t, 1, decoded.Summary.Suspicious)
}

func TestBatchCommand_FileAndCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("github.com\nhttp://192.168.1.1\n"), 0o600))

	out, err := execute(t, "", "-o", "csv", "batch", "--file", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[2], "http://192.168.1.1")
}

func TestExtractCommand_HTMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mail.html")
	html := `<html><body><p>Reset <a href="https://bit.ly/reset">here</a> or visit www.github.com</p>` +
		`<script>var x = "http://hidden.example.tk";</script></body></html>`
	require.NoError(t, os.WriteFile(path, []byte(html), 0o600))

	out, err := execute(t, "", "-o", "json", "extract", "--score", path)
	require.NoError(t, err)

	var decoded struct {
		URLs   []string          `json:"urls"`
		Scores []json.RawMessage `json:"scores"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, []string{"https://bit.ly/reset", "https://www.github.com"}, decoded.URLs)
	assert.Len(t, decoded.Scores, 2)
}

func TestExtractCommand_Stdin(t *testing.T) {
	out, err := execute(t, "contact us at example.org or http://192.168.0.1/x.", "-o", "human", "extract")
	require.NoError(t, err)

	assert.Contains(t, out, "Source: stdin")
	assert.Contains(t, out, "https://example.org")
	assert.Contains(t, out, "http://192.168.0.1/x")
}

func TestMailScanCommand_Demo(t *testing.T) {
	out, err := execute(t, "", "-o", "json", "mail", "scan", "--source", "demo")
	require.NoError(t, err)

	var decoded struct {
		Source           string `json:"source"`
		SuspiciousEmails []struct {
			MessageID string `json:"message_id"`
		} `json:"suspicious_emails"`
		TotalURLs int `json:"total_urls"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "demo", decoded.Source)
	assert.Equal(t, 8, decoded.TotalURLs)
	require.Len(t, decoded.SuspiciousEmails, 2)
	assert.Equal(t, "demo_001", decoded.SuspiciousEmails[0].MessageID)
	assert.Equal(t, "demo_003", decoded.SuspiciousEmails[1].MessageID)
}

func TestMailScanCommand_GmailFallsBackToDemo(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "", "-o", "human", "mail", "scan", "--source", "gmail",
		"--credentials", filepath.Join(dir, "missing.json"), "--fallback-demo")
	require.NoError(t, err)
	assert.Contains(t, out, "SUSPICIOUS EMAILS DETECTED")
}

func TestMailScanCommand_Validation(t *testing.T) {
	_, err := execute(t, "", "mail", "scan", "--source", "demo", "--days", "31")
	assert.Error(t, err)

	_, err = execute(t, "", "mail", "scan", "--source", "demo", "--days", "7", "--max", "5")
	assert.Error(t, err)

	_, err = execute(t, "", "mail", "scan", "--source", "pigeon", "--max", "50")
	assert.Error(t, err)
}

func TestListsCommand(t *testing.T) {
	out, err := execute(t, "", "-o", "human", "lists")
	require.NoError(t, err)

	assert.Contains(t, out, "SHORTENERS")
	assert.Contains(t, out, "bit.ly")
	assert.Contains(t, out, "typosquatting")

	out, err = execute(t, "", "-o", "human", "lists", "--list", "suspicious_tlds")
	require.NoError(t, err)
	assert.Contains(t, out, ".tk")
	assert.NotContains(t, out, "bit.ly")

	_, err = execute(t, "", "-o", "human", "lists", "--list", "nope")
	assert.Error(t, err)
}

func TestDebugCommand_Similarity(t *testing.T) {
	out, err := execute(t, "", "-o", "human", "debug", "--similarity", "gooogle.com")
	require.NoError(t, err)

	assert.Contains(t, out, `Compared label: "gooogle"`)
	assert.Contains(t, out, "Flagged as look-alike of google.com")
}

func TestDebugCommand_TestPattern(t *testing.T) {
	out, err := execute(t, "", "-o", "human", "debug", "--test-pattern", "go to bit.ly/abc now")
	require.NoError(t, err)

	assert.Contains(t, out, "Found 1 match(es)")
	// a bare domain match stops at the host
	assert.Contains(t, out, "https://bit.ly\n")
}
