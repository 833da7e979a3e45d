// ABOUTME: Standard filesystem paths for gatomia configuration and data
// ABOUTME: Resolves ~/.gatomia/ for global and .gatomia/ for workspace-local paths

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName    = ".gatomia"
	workspaceDirName = ".gatomia"
)

// GlobalDir returns the user-global config directory (~/.gatomia/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// WorkspaceDir returns the workspace-local config directory (.gatomia/ under the workspace root).
func WorkspaceDir(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, workspaceDirName)
}

// GlobalSettingsFile returns the path to the global settings file.
func GlobalSettingsFile() string {
	return filepath.Join(GlobalDir(), "settings.json")
}

// WorkspaceSettingsFile returns the path to the workspace-local settings file.
func WorkspaceSettingsFile(workspaceRoot string) string {
	return filepath.Join(WorkspaceDir(workspaceRoot), "settings.json")
}

// AgentsDir returns the directory scanned for workspace agent manifests.
func AgentsDir(workspaceRoot string) string {
	return filepath.Join(WorkspaceDir(workspaceRoot), "agents")
}

// StateFile returns the path backing the given durable state namespace.
// The global namespace lives under ~/.gatomia/, the workspace namespace
// under <workspace>/.gatomia/.
func StateFile(namespace, workspaceRoot string) string {
	if namespace == "workspace" && workspaceRoot != "" {
		return filepath.Join(WorkspaceDir(workspaceRoot), "state.json")
	}
	return filepath.Join(GlobalDir(), "state.json")
}

// ExecLogFile returns the path to the hook execution log database.
func ExecLogFile() string {
	return filepath.Join(GlobalDir(), "execlog.db")
}
