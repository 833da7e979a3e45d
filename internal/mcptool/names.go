// ABOUTME: Pure helpers over the mcp__<server>__<tool> display-name convention
// ABOUTME: Formatting and extraction are stable under repeated application

package mcptool

import "strings"

const displayPrefix = "mcp__"

// FormatToolDisplayName renders the canonical display name for a tool on a
// server. Applying it to an already-formatted name returns the name
// unchanged, so reformatting is idempotent.
func FormatToolDisplayName(serverID, toolName string) string {
	if serverID == "" {
		return toolName
	}
	if strings.HasPrefix(toolName, displayPrefix) {
		return toolName
	}
	return displayPrefix + serverID + "__" + toolName
}

// ExtractServerID returns the server component of a display name, or ""
// when the name does not follow the convention.
func ExtractServerID(displayName string) string {
	rest, ok := strings.CutPrefix(displayName, displayPrefix)
	if !ok {
		return ""
	}
	server, _, ok := strings.Cut(rest, "__")
	if !ok {
		return ""
	}
	return server
}

// ExtractToolName returns the tool component of a display name. Names that
// do not follow the convention are returned unchanged.
func ExtractToolName(displayName string) string {
	rest, ok := strings.CutPrefix(displayName, displayPrefix)
	if !ok {
		return displayName
	}
	_, tool, ok := strings.Cut(rest, "__")
	if !ok {
		return displayName
	}
	return tool
}
