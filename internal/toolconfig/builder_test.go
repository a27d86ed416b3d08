package toolconfig

import (
	"errors"
	"strings"
	"testing"
)

func stubLookPath(t *testing.T, err error) {
	t.Helper()
	orig := lookPath
	lookPath = func(file string) (string, error) {
		if err != nil {
			return "", err
		}
		return "/usr/local/bin/" + file, nil
	}
	t.Cleanup(func() { lookPath = orig })
}

func TestBuildRegistersWorkspaceServer(t *testing.T) {
	stubLookPath(t, nil)

	cfg, err := Build(Options{
		WorkspaceDir:   "/tmp/ws/repo",
		SessionID:      "sess-1",
		SessionLogPath: "/tmp/ws/session.jsonl",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(cfg.ConfigOverrides) != 2 {
		t.Fatalf("overrides = %v", cfg.ConfigOverrides)
	}
	if cfg.ConfigOverrides[0] != `mcp_servers.workspace.command="mcp-workspace-server"` {
		t.Errorf("command override = %q", cfg.ConfigOverrides[0])
	}
	envOverride := cfg.ConfigOverrides[1]
	for _, want := range []string{`WORKSPACE_DIR = "/tmp/ws/repo"`, `SESSION_ID = "sess-1"`, `SESSION_LOG = "/tmp/ws/session.jsonl"`} {
		if !strings.Contains(envOverride, want) {
			t.Errorf("env override missing %q: %s", want, envOverride)
		}
	}

	wantEnv := []string{
		"WORKSPACE_DIR=/tmp/ws/repo",
		"SESSION_ID=sess-1",
		"SESSION_LOG=/tmp/ws/session.jsonl",
	}
	if len(cfg.Env) != len(wantEnv) {
		t.Fatalf("env = %v", cfg.Env)
	}
	for i := range wantEnv {
		if cfg.Env[i] != wantEnv[i] {
			t.Errorf("env[%d] = %q, want %q", i, cfg.Env[i], wantEnv[i])
		}
	}
}

func TestBuildOmitsSessionLogWhenUnset(t *testing.T) {
	stubLookPath(t, nil)

	cfg, err := Build(Options{WorkspaceDir: "/ws", SessionID: "s"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if strings.Contains(cfg.ConfigOverrides[1], "SESSION_LOG") {
		t.Errorf("env override should omit SESSION_LOG: %s", cfg.ConfigOverrides[1])
	}
	if len(cfg.Env) != 2 {
		t.Errorf("env = %v", cfg.Env)
	}
}

func TestBuildCustomServerCommand(t *testing.T) {
	stubLookPath(t, nil)

	cfg, err := Build(Options{ServerCommand: "my-tools", WorkspaceDir: "/ws", SessionID: "s"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if cfg.ConfigOverrides[0] != `mcp_servers.workspace.command="my-tools"` {
		t.Errorf("command override = %q", cfg.ConfigOverrides[0])
	}
}

func TestBuildValidation(t *testing.T) {
	stubLookPath(t, nil)

	if _, err := Build(Options{SessionID: "s"}); err == nil {
		t.Error("expected error for missing workspace dir")
	}
	if _, err := Build(Options{WorkspaceDir: "/ws"}); err == nil {
		t.Error("expected error for missing session id")
	}
}

func TestBuildServerNotOnPath(t *testing.T) {
	stubLookPath(t, errors.New("executable file not found"))

	_, err := Build(Options{WorkspaceDir: "/ws", SessionID: "s"})
	if err == nil {
		t.Fatal("expected error when server binary is missing")
	}
	if !strings.Contains(err.Error(), "mcp-workspace-server") {
		t.Errorf("error = %v", err)
	}
}
