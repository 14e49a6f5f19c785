package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btraven00/phishq/internal/detector"
)

func newTestServer(t *testing.T, config Config) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(New(detector.New(detector.DefaultConfig()), config, nil).Routes())
	t.Cleanup(srv.Close)

	return srv
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)

	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))

	return resp, decoded
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestScore(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, body := post(t, srv.URL+"/v1/score", `{"url": "http://192.168.1.1/login", "screen": true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	analysis := body["analysis"].(map[string]any)
	assert.Equal(t, float64(40), analysis["risk_score"])
	assert.Equal(t, "MEDIUM", analysis["risk_level"])
	assert.Equal(t, true, analysis["is_suspicious"])
	assert.Len(t, analysis["recommendations"], 3)

	screening := body["screening"].(map[string]any)
	assert.Equal(t, true, screening["is_suspicious"])
}

func TestScore_EmptyURLIsScored(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, body := post(t, srv.URL+"/v1/score", `{"url": ""}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "analysis")
	assert.NotContains(t, body, "screening")
}

func TestScore_BadRequests(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, body := post(t, srv.URL+"/v1/score", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "url is required", body["error"])

	resp, _ = post(t, srv.URL+"/v1/score", `{"url": `)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBatch(t *testing.T) {
	srv := newTestServer(t, Config{Workers: 2})

	resp, body := post(t, srv.URL+"/v1/batch", `{"urls": ["https://www.google.com", "http://[::1", "bit.ly/x"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	items := body["items"].([]any)
	require.Len(t, items, 3)

	for i, raw := range items {
		item := raw.(map[string]any)
		assert.Equal(t, float64(i), item["index"])
		assert.Contains(t, item, "result")
	}

	assert.Equal(t, "http://[::1", items[1].(map[string]any)["url"])

	summary := body["summary"].(map[string]any)
	assert.Equal(t, float64(3), summary["total"])
	assert.Equal(t, float64(1), summary["suspicious"])
}

func TestBatch_Empty(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, body := post(t, srv.URL+"/v1/batch", `{"urls": []}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["items"])
}

func TestBatch_Limits(t *testing.T) {
	srv := newTestServer(t, Config{MaxBatch: 2, MaxBodyBytes: 64})

	resp, _ := post(t, srv.URL+"/v1/batch", `{"urls": ["a.com", "b.com", "c.com"]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	resp, body := post(t, srv.URL+"/v1/batch", `{"urls": ["`+strings.Repeat("a", 100)+`.com"]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "request body too large", body["error"])
}

func TestExtract(t *testing.T) {
	srv := newTestServer(t, Config{})

	payload, err := json.Marshal(map[string]any{
		"text":  `<p>Hello <a href="http://login.example.tk/verify">click</a> or visit www.github.com</p>`,
		"html":  true,
		"score": true,
	})
	require.NoError(t, err)

	resp, body := post(t, srv.URL+"/v1/extract", string(payload))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, []any{"http://login.example.tk/verify", "https://www.github.com"}, body["urls"])
	assert.Len(t, body["scores"], 2)
}

func TestChecks(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := http.Get(srv.URL + "/v1/checks")
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded struct {
		Checks []detector.CheckInfo `json:"checks"`
		Config detector.Config      `json:"config"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Len(t, decoded.Checks, 5)
	assert.Contains(t, decoded.Config.Shorteners, "bit.ly")
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := http.Post(srv.URL+"/v1/nothing", "application/json", bytes.NewReader(nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListenAndServe_Shutdown(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	s := New(detector.New(detector.DefaultConfig()), Config{Addr: addr, ShutdownTimeout: time.Second}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- s.ListenAndServe(ctx)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}

		resp.Body.Close()

		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
