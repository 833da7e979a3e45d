// ABOUTME: Static catalog of known ACP-compatible agents
// ABOUTME: Each entry carries ordered install-check strategies, cheapest first

package agents

// StrategyKind selects how an install check probes the system.
type StrategyKind string

const (
	// StrategyNPMGlobal queries the npm global package list for the target package.
	StrategyNPMGlobal StrategyKind = "npm-global"
	// StrategyPath resolves the target binary through the user's login shell PATH.
	StrategyPath StrategyKind = "path"
)

// InstallCheck is one method of determining whether an agent is installed.
type InstallCheck struct {
	Strategy StrategyKind
	Target   string
}

// CatalogEntry describes one known agent. Entries are immutable at runtime;
// callers must not mutate the returned slices.
type CatalogEntry struct {
	ID            string
	DisplayName   string
	Command       string
	InstallChecks []InstallCheck
}

// catalog ids are globally unique and every entry has at least one
// install check. PATH checks are listed before package-manager checks
// because IsInstalledAny short-circuits in order and the shell probe
// is cheaper than an npm query.
var catalog = []CatalogEntry{
	{
		ID:          "gemini",
		DisplayName: "Gemini CLI",
		Command:     "gemini --experimental-acp",
		InstallChecks: []InstallCheck{
			{Strategy: StrategyPath, Target: "gemini"},
			{Strategy: StrategyNPMGlobal, Target: "@google/gemini-cli"},
		},
	},
	{
		ID:          "claude-code",
		DisplayName: "Claude Code",
		Command:     "claude-code-acp",
		InstallChecks: []InstallCheck{
			{Strategy: StrategyPath, Target: "claude-code-acp"},
			{Strategy: StrategyNPMGlobal, Target: "@zed-industries/claude-code-acp"},
		},
	},
	{
		ID:          "opencode",
		DisplayName: "OpenCode",
		Command:     "opencode acp",
		InstallChecks: []InstallCheck{
			{Strategy: StrategyPath, Target: "opencode"},
			{Strategy: StrategyNPMGlobal, Target: "opencode-ai"},
		},
	},
	{
		ID:          "qwen",
		DisplayName: "Qwen Code",
		Command:     "qwen --experimental-acp",
		InstallChecks: []InstallCheck{
			{Strategy: StrategyPath, Target: "qwen"},
			{Strategy: StrategyNPMGlobal, Target: "@qwen-code/qwen-code"},
		},
	},
	{
		ID:          "goose",
		DisplayName: "Goose",
		Command:     "goose acp",
		InstallChecks: []InstallCheck{
			{Strategy: StrategyPath, Target: "goose"},
		},
	},
}

// Catalog returns the compiled-in known agent table.
func Catalog() []CatalogEntry {
	return catalog
}

// LookupCatalog finds a catalog entry by id. Ids arrive as externally-sourced
// strings (persisted preferences), so a miss is possible and not an error.
func LookupCatalog(id string) (CatalogEntry, bool) {
	for _, e := range catalog {
		if e.ID == id {
			return e, true
		}
	}
	return CatalogEntry{}, false
}
