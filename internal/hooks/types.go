// ABOUTME: Hook data model: triggers, tagged actions, and persisted rule definitions
// ABOUTME: Defines the contract between the trigger registry and the executor

package hooks

import "time"

// Timing says whether a hook runs before or after the triggering operation.
type Timing string

const (
	Before Timing = "before"
	After  Timing = "after"
)

// Trigger is the (agent, operation, timing) key a hook listens for.
// Matching is exact string equality on all three fields.
type Trigger struct {
	Agent     string `json:"agent"`
	Operation string `json:"operation"`
	Timing    Timing `json:"timing"`
}

// ActionType tags the variant of a hook's action.
type ActionType string

const (
	ActionAgent  ActionType = "agent"
	ActionGit    ActionType = "git"
	ActionGitHub ActionType = "github"
	ActionMCP    ActionType = "mcp"
	ActionCustom ActionType = "custom"
	ActionACP    ActionType = "acp"
)

// Action binds a type tag to its type-specific string parameters. String
// parameters may contain {variable} template references resolved against
// the trigger's template context at execution time.
type Action struct {
	Type   ActionType        `json:"type"`
	Params map[string]string `json:"params,omitempty"`
}

// Hook is a persisted automation rule binding a trigger to an action.
type Hook struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Enabled        bool       `json:"enabled"`
	Trigger        Trigger    `json:"trigger"`
	Action         Action     `json:"action"`
	ExecutionCount int        `json:"executionCount"`
	LastExecutedAt *time.Time `json:"lastExecutedAt,omitempty"`
}

// Matches reports whether the hook should fire for the given trigger.
// Disabled hooks never match.
func (h Hook) Matches(t Trigger) bool {
	return h.Enabled && h.Trigger == t
}
