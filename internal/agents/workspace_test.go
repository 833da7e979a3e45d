// ABOUTME: Tests for workspace agent manifest discovery
// ABOUTME: Covers eligibility filtering, per-file isolation, and display-name fallback

package agents

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverWorkspace_FiltersEligibility(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, "a.agent.md", "---\nacp: true\nagentCommand: x\n---\nbody\n")
	writeManifest(t, dir, "b.agent.md", "---\nacp: false\nagentCommand: y\n---\nbody\n")
	writeManifest(t, dir, "c.md", "---\nacp: true\nagentCommand: z\n---\nbody\n")

	got, err := DiscoverWorkspace(context.Background(), dir)
	if err != nil {
		t.Fatalf("DiscoverWorkspace: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d descriptors, want 1: %+v", len(got), got)
	}
	if got[0].AgentCommand != "x" {
		t.Errorf("AgentCommand = %q, want %q", got[0].AgentCommand, "x")
	}
	if got[0].Source != SourceWorkspace {
		t.Errorf("Source = %q, want %q", got[0].Source, SourceWorkspace)
	}
}

func TestDiscoverWorkspace_BadFileDoesNotAbortSiblings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, "bad.agent.md", "---\nacp: [unterminated\n")
	writeManifest(t, dir, "good.agent.md", "---\nacp: true\nagentCommand: run-good\n---\n")

	got, err := DiscoverWorkspace(context.Background(), dir)
	if err != nil {
		t.Fatalf("DiscoverWorkspace: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d descriptors, want 1", len(got))
	}
	if got[0].AgentCommand != "run-good" {
		t.Errorf("AgentCommand = %q, want %q", got[0].AgentCommand, "run-good")
	}
}

func TestDiscoverWorkspace_DisplayNameFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, "my-agent.agent.md", "---\nacp: true\nagentCommand: cmd\n---\n")

	got, err := DiscoverWorkspace(context.Background(), dir)
	if err != nil {
		t.Fatalf("DiscoverWorkspace: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d descriptors, want 1", len(got))
	}
	if got[0].DisplayName != "my-agent" {
		t.Errorf("DisplayName = %q, want filename with suffix stripped", got[0].DisplayName)
	}
}

func TestDiscoverWorkspace_ExplicitDisplayName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, "x.agent.md", "---\nacp: true\nagentCommand: cmd\nagentDisplayName: Fancy Name\n---\n")

	got, err := DiscoverWorkspace(context.Background(), dir)
	if err != nil {
		t.Fatalf("DiscoverWorkspace: %v", err)
	}
	if len(got) != 1 || got[0].DisplayName != "Fancy Name" {
		t.Errorf("got %+v, want one descriptor named Fancy Name", got)
	}
}

func TestDiscoverWorkspace_EmptyCommandIneligible(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, "x.agent.md", "---\nacp: true\nagentCommand: \"  \"\n---\n")

	got, err := DiscoverWorkspace(context.Background(), dir)
	if err != nil {
		t.Fatalf("DiscoverWorkspace: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d descriptors, want 0 for blank command", len(got))
	}
}

func TestDiscoverWorkspace_MissingDir(t *testing.T) {
	t.Parallel()

	got, err := DiscoverWorkspace(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("DiscoverWorkspace on missing dir: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d descriptors, want 0", len(got))
	}
}
