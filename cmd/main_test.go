package main

import (
	"context"
	"flag"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MODEL_ENV", "openai")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("AGENT_LOGS_DIR", t.TempDir())
	t.Setenv("WORKSPACES_ROOT", t.TempDir())
	t.Setenv("DISPATCHER_WORKERS", "1")
	t.Setenv("DISPATCHER_QUEUE_SIZE", "1")
	t.Setenv("GITHUB_APP_ID", "")
	t.Setenv("GITHUB_PRIVATE_KEY", "")
}

func TestRunStartsServerWithValidConfig(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "4321")

	var servedAddr string
	var servedHandler http.Handler
	serve := func(addr string, handler http.Handler) error {
		servedAddr = addr
		servedHandler = handler
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, cliOptions{}, serve); err != nil {
		t.Fatalf("run() returned error: %v", err)
	}

	if servedAddr != ":4321" {
		t.Fatalf("serve addr = %q, want :4321", servedAddr)
	}
	if servedHandler == nil {
		t.Fatal("serve handler is nil")
	}

	rec := httptest.NewRecorder()
	servedHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/health status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	servedHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/ status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"backend":"openai"`) {
		t.Errorf("root body = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	servedHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/runs status = %d, want 200", rec.Code)
	}
}

func TestRunFailsWithInvalidModelEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MODEL_ENV", "anthropic")

	err := run(context.Background(), cliOptions{}, func(string, http.Handler) error { return nil })
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !strings.Contains(err.Error(), "invalid model environment") {
		t.Errorf("err = %v", err)
	}
}

func TestRunOnceRequiresIssue(t *testing.T) {
	setRequiredEnv(t)

	err := run(context.Background(), cliOptions{repo: "org/repo"}, func(string, http.Handler) error {
		t.Fatal("server should not start in one-shot mode")
		return nil
	})
	if err == nil {
		t.Fatal("expected error for missing issue id")
	}
}

func TestParseFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	opts := parseFlags(fs)
	if err := fs.Parse([]string{"-repo", "org/repo", "-issue", "42", "-desc", "fix crash"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if opts.repo != "org/repo" || opts.issueID != "42" || opts.issueDesc != "fix crash" {
		t.Errorf("opts = %+v", opts)
	}
	if opts.baseCommit != "main" {
		t.Errorf("base commit default = %q, want main", opts.baseCommit)
	}
}
