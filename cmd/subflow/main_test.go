package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSRT = `1
00:00:01,000 --> 00:00:04,000
Welcome to the talk.

2
00:04:00,000 --> 00:04:03,000
Let us begin.
`

// sseHandler answers every chat completion request with a short stream.
func sseHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			fmt.Fprint(w, `{"data":[{"id":"model-a"},{"id":"model-b"}]}`)
			return
		}
		if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"a summary\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}
}

func writeTestConfig(t *testing.T, dir, baseURL string) string {
	t.Helper()
	cfg := fmt.Sprintf(`providers:
  - name: local
    base_url: %s
    api_key: sk-test
    model: test-model
pipeline:
  window_minutes: 3
  overlap_minutes: 0.5
  summary:
    provider: local
    prompt: Summarize this transcript segment.
paths:
  output: %s
`, baseURL, filepath.Join(dir, "output"))

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommandEndToEnd(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t))
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, srv.URL)

	srtPath := filepath.Join(dir, "talk.srt")
	if err := os.WriteFile(srtPath, []byte(testSRT), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", cfgPath, "run", "--quiet", srtPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	summaryPath := filepath.Join(dir, "output", "talk", "talk-summary.md")
	data, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatalf("read aggregate: %v", err)
	}
	if !strings.Contains(string(data), "a summary") {
		t.Errorf("aggregate = %q, want streamed summary text", data)
	}

	// Two windows: the second cue falls into the second 3-minute window.
	segs, err := os.ReadDir(filepath.Join(dir, "output", "talk", "segments"))
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 2 {
		t.Errorf("segment files = %d, want 2", len(segs))
	}
}

func TestRunCommandFailsOnMalformedSRT(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t))
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, srv.URL)

	srtPath := filepath.Join(dir, "broken.srt")
	if err := os.WriteFile(srtPath, []byte("not a subtitle file"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", cfgPath, "run", "--quiet", srtPath})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for malformed transcript")
	}
}

func TestModelsCommand(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t))
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, srv.URL)

	var out strings.Builder
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "models", "local"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(out.String(), "model-a") || !strings.Contains(out.String(), "model-b") {
		t.Errorf("output = %q, want model ids", out.String())
	}
}

func TestCheckCommandReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, srv.URL)

	var out strings.Builder
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "check"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error when a provider probe fails")
	}
	if !strings.Contains(out.String(), "failed") {
		t.Errorf("output = %q, want failed status row", out.String())
	}
}

func TestRootCommandMissingConfig(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", "/nonexistent/config.yaml", "check"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
