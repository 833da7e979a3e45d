// ABOUTME: Agent descriptor types shared by discovery sources
// ABOUTME: Descriptors are derived values, recomputed on every discovery call

package agents

// Source identifies where a descriptor came from.
type Source string

const (
	// SourceWorkspace marks agents found via manifest files in the workspace.
	SourceWorkspace Source = "workspace"
	// SourceKnown marks catalog agents the user enabled and that were detected installed.
	SourceKnown Source = "known"
	// SourceCustom marks agents the user configured by hand.
	SourceCustom Source = "custom"
)

// Descriptor describes a spawnable ACP agent. Descriptors are never
// persisted; both discovery sources recompute them from scratch.
type Descriptor struct {
	AgentCommand string `json:"agentCommand"`
	DisplayName  string `json:"agentDisplayName"`
	Source       Source `json:"source"`
	KnownAgentID string `json:"knownAgentId,omitempty"`
}
