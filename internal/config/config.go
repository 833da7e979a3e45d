// ABOUTME: Settings loading with global + workspace config deep merge
// ABOUTME: JSON-based configuration using encoding/json; workspace values win

package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Defaults applied when neither settings file sets a value.
const (
	DefaultDebounceMs        = 2000
	DefaultMaxChainDepth     = 5
	DefaultExecLogLimit      = 200
	DefaultACPSessionTimeout = 120 // seconds
)

// Settings holds the merged configuration.
type Settings struct {
	AgentsDir         string `json:"agents_dir,omitempty"`
	DebounceMs        int    `json:"debounce_ms,omitempty"`
	MaxChainDepth     int    `json:"max_chain_depth,omitempty"`
	ExecLogLimit      int    `json:"exec_log_limit,omitempty"`
	ACPSessionTimeout int    `json:"acp_session_timeout_secs,omitempty"`
	Debug             bool   `json:"debug,omitempty"`

	// MCPServers maps server ids to spawn command lines for mcp hook
	// actions. Workspace entries override same-id global entries.
	MCPServers map[string]string `json:"mcp_servers,omitempty"`
}

// Load reads and merges global and workspace-local settings.
// Workspace settings override global settings; unset values fall back
// to the package defaults.
func Load(workspaceRoot string) (*Settings, error) {
	global, err := loadFile(GlobalSettingsFile())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global settings: %w", err)
	}

	workspace, err := loadFile(WorkspaceSettingsFile(workspaceRoot))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading workspace settings: %w", err)
	}

	merged := merge(global, workspace)
	merged.applyDefaults()
	return merged, nil
}

// loadFile reads a Settings from a JSON file. Returns zero Settings if the
// file does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge deep-merges workspace settings onto global settings.
// Non-zero workspace values override global values.
func merge(global, workspace *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if workspace == nil {
		return global
	}

	result := *global

	if workspace.AgentsDir != "" {
		result.AgentsDir = workspace.AgentsDir
	}
	if workspace.DebounceMs != 0 {
		result.DebounceMs = workspace.DebounceMs
	}
	if workspace.MaxChainDepth != 0 {
		result.MaxChainDepth = workspace.MaxChainDepth
	}
	if workspace.ExecLogLimit != 0 {
		result.ExecLogLimit = workspace.ExecLogLimit
	}
	if workspace.ACPSessionTimeout != 0 {
		result.ACPSessionTimeout = workspace.ACPSessionTimeout
	}
	if workspace.Debug {
		result.Debug = true
	}
	if len(workspace.MCPServers) > 0 {
		merged := make(map[string]string, len(global.MCPServers)+len(workspace.MCPServers))
		for id, cmd := range global.MCPServers {
			merged[id] = cmd
		}
		for id, cmd := range workspace.MCPServers {
			merged[id] = cmd
		}
		result.MCPServers = merged
	}

	return &result
}

func (s *Settings) applyDefaults() {
	if s.DebounceMs == 0 {
		s.DebounceMs = DefaultDebounceMs
	}
	if s.MaxChainDepth == 0 {
		s.MaxChainDepth = DefaultMaxChainDepth
	}
	if s.ExecLogLimit == 0 {
		s.ExecLogLimit = DefaultExecLogLimit
	}
	if s.ACPSessionTimeout == 0 {
		s.ACPSessionTimeout = DefaultACPSessionTimeout
	}
}
