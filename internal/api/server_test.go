package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/bookc/internal/config"
	"github.com/dgallion1/bookc/internal/metrics"
	"github.com/dgallion1/bookc/internal/pipeline"
)

const testKey = "test-key"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		APIKey:             testKey,
		WorkerCount:        1,
		MaxQueueSize:       4,
		MaxUploadBytes:     1 << 20,
		DefaultBuilders:    []string{"text"},
		ReferenceSeparator: "|",
		JobTTL:             time.Hour,
		StatsWindow:        time.Hour,
	}
	reg := prometheus.NewRegistry()
	log := slog.New(slog.DiscardHandler)
	orch := pipeline.NewOrchestrator(cfg, metrics.New(reg), log)
	orch.Start(context.Background())
	srv := httptest.NewServer(NewServer(orch, reg, log, cfg))
	t.Cleanup(func() {
		srv.Close()
		orch.Stop()
	})
	return srv
}

type upload struct {
	field, name, body string
}

func compileRequest(t *testing.T, url string, builders string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, f.body)
		require.NoError(t, err)
	}
	if builders != "" {
		require.NoError(t, mw.WriteField("builders", builders))
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, url+"/api/compile", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testKey)
	return req
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+testKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func sampleBook() []upload {
	return []upload{
		{"catalog", "catalog.yml", "CHAPS:\n  - intro.md\n  - usage.re\n"},
		{"files", "intro.md", "# Intro {#intro}\n\n```list:hello:Hello\nprint('hi')\n```\n"},
		{"files", "usage.re", "= Usage\n\nRun @<list>{intro|hello} from @<chap>{intro}.\n"},
	}
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode(t, resp)["status"])

	resp2, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/stats/compile")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/stats/compile", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
	assert.Equal(t, "invalid api key", decode(t, resp2)["error"])
}

func TestCompile_RoundTrip(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.DefaultClient.Do(compileRequest(t, srv.URL, "text,html", sampleBook()...))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	accepted := decode(t, resp)
	jobID, _ := accepted["job_id"].(string)
	require.NotEmpty(t, jobID)
	assert.Equal(t, string(pipeline.StatusQueued), accepted["status"])
	assert.Equal(t, "/api/compile/"+jobID+"/status", accepted["poll_url"])

	var status map[string]any
	require.Eventually(t, func() bool {
		status = decode(t, get(t, srv.URL+"/api/compile/"+jobID+"/status"))
		return status["status"] == string(pipeline.StatusCompleted) ||
			status["status"] == string(pipeline.StatusFailed) ||
			status["status"] == string(pipeline.StatusError)
	}, 5*time.Second, 10*time.Millisecond)
	require.Equal(t, string(pipeline.StatusCompleted), status["status"], "status: %v", status)
	assert.Empty(t, status["reports"])
	outputs, _ := status["outputs"].(map[string]any)
	assert.ElementsMatch(t, []any{"intro", "usage"}, outputs["text"])

	out := get(t, srv.URL+"/api/compile/"+jobID+"/output/text/usage")
	require.Equal(t, http.StatusOK, out.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", out.Header.Get("Content-Type"))
	body, err := io.ReadAll(out.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Run List 1.1 from Chapter 1.")

	html := get(t, srv.URL+"/api/compile/"+jobID+"/output/html/usage")
	require.Equal(t, http.StatusOK, html.StatusCode)
	body, err = io.ReadAll(html.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `href="intro.html#list-hello"`)

	missing := get(t, srv.URL+"/api/compile/"+jobID+"/output/docx/usage")
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	stats := decode(t, get(t, srv.URL+"/api/stats/compile"))
	snap, _ := stats["stats"].(map[string]any)
	assert.EqualValues(t, 1, snap["count"])
}

func TestCompile_BadRequests(t *testing.T) {
	srv := newTestServer(t)
	book := sampleBook()

	tests := []struct {
		name     string
		builders string
		files    []upload
		want     int
	}{
		{"no catalog", "", book[1:], http.StatusBadRequest},
		{"no chapters", "", book[:1], http.StatusBadRequest},
		{"unknown builder", "epub", book, http.StatusBadRequest},
		{"unsupported extension", "", append(book[:1:1], upload{"files", "x.exe", "MZ"}), http.StatusBadRequest},
		{"duplicate name", "", append(book, upload{"files", "intro.md", "# Again"}), http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.DefaultClient.Do(compileRequest(t, srv.URL, tc.builders, tc.files...))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
			assert.NotEmpty(t, decode(t, resp)["error"])
		})
	}
}

func TestCompileStatus_UnknownJob(t *testing.T) {
	srv := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/api/compile/nope/status").StatusCode)
	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/api/compile/nope/output/text/intro").StatusCode)
}

func TestAcceptables(t *testing.T) {
	srv := newTestServer(t)
	body := decode(t, get(t, srv.URL+"/api/acceptables"))
	assert.Equal(t, "|", body["separator"])
	assert.ElementsMatch(t, []any{"text", "html", "docx"}, body["builders"])
	acceptables, _ := body["acceptables"].([]any)
	assert.NotEmpty(t, acceptables)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"ch01.re":          "ch01.re",
		"../../etc/passwd": "passwd",
		"a..b.md":          "a_b.md",
		"":                 "unnamed",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}
