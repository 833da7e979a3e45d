// ABOUTME: Tests for settings loading and global/workspace merge
// ABOUTME: Uses t.TempDir fixtures standing in for workspace roots

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMerge_WorkspaceOverridesGlobal(t *testing.T) {
	t.Parallel()

	global := &Settings{DebounceMs: 1000, MaxChainDepth: 3}
	workspace := &Settings{DebounceMs: 500, Debug: true}

	got := merge(global, workspace)

	if got.DebounceMs != 500 {
		t.Errorf("DebounceMs = %d, want 500", got.DebounceMs)
	}
	if got.MaxChainDepth != 3 {
		t.Errorf("MaxChainDepth = %d, want 3 (global preserved)", got.MaxChainDepth)
	}
	if !got.Debug {
		t.Error("Debug should be true from workspace")
	}
}

func TestMerge_MCPServers(t *testing.T) {
	t.Parallel()

	global := &Settings{MCPServers: map[string]string{
		"filesystem": "npx @modelcontextprotocol/server-filesystem /tmp",
		"github":     "global-github-server",
	}}
	workspace := &Settings{MCPServers: map[string]string{
		"github": "workspace-github-server",
	}}

	got := merge(global, workspace)

	if got.MCPServers["filesystem"] == "" {
		t.Error("global-only server should survive the merge")
	}
	if got.MCPServers["github"] != "workspace-github-server" {
		t.Errorf("github = %q, want workspace value", got.MCPServers["github"])
	}
	if len(global.MCPServers) != 2 {
		t.Error("merge must not mutate the global map")
	}
}

func TestMerge_NilInputs(t *testing.T) {
	t.Parallel()

	got := merge(nil, nil)
	if got == nil {
		t.Fatal("merge(nil, nil) returned nil")
	}

	got = merge(&Settings{Debug: true}, nil)
	if !got.Debug {
		t.Error("nil workspace should preserve global")
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	s := &Settings{}
	s.applyDefaults()

	if s.DebounceMs != DefaultDebounceMs {
		t.Errorf("DebounceMs = %d, want %d", s.DebounceMs, DefaultDebounceMs)
	}
	if s.MaxChainDepth != DefaultMaxChainDepth {
		t.Errorf("MaxChainDepth = %d, want %d", s.MaxChainDepth, DefaultMaxChainDepth)
	}
	if s.ExecLogLimit != DefaultExecLogLimit {
		t.Errorf("ExecLogLimit = %d, want %d", s.ExecLogLimit, DefaultExecLogLimit)
	}
	if s.ACPSessionTimeout != DefaultACPSessionTimeout {
		t.Errorf("ACPSessionTimeout = %d, want %d", s.ACPSessionTimeout, DefaultACPSessionTimeout)
	}
}

func TestLoad_WorkspaceFile(t *testing.T) {
	t.Parallel()

	ws := t.TempDir()
	dir := filepath.Join(ws, ".gatomia")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `{"debounce_ms": 750, "debug": true}`
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(ws)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.DebounceMs != 750 {
		t.Errorf("DebounceMs = %d, want 750", s.DebounceMs)
	}
	if !s.Debug {
		t.Error("Debug should be true")
	}
	// Unset values fall back to defaults.
	if s.MaxChainDepth != DefaultMaxChainDepth {
		t.Errorf("MaxChainDepth = %d, want default %d", s.MaxChainDepth, DefaultMaxChainDepth)
	}
}

func TestLoad_MissingFilesIsNotError(t *testing.T) {
	t.Parallel()

	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load with no settings files: %v", err)
	}
	if s.DebounceMs != DefaultDebounceMs {
		t.Errorf("DebounceMs = %d, want default", s.DebounceMs)
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	t.Parallel()

	ws := t.TempDir()
	dir := filepath.Join(ws, ".gatomia")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(ws); err == nil {
		t.Error("expected error for malformed settings file")
	}
}
