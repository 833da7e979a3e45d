// ABOUTME: MCP tool invoker for mcp hook actions over stdio servers
// ABOUTME: Spawns the configured server, initializes, calls one tool, collects text

package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/eitatech/gatomia/internal/log"
)

const initializeTimeout = 10 * time.Second

// Invoker calls tools on configured MCP servers. Servers are keyed by id;
// each value is the shell-style command line that spawns the server.
type Invoker struct {
	servers map[string]string
}

// NewInvoker creates an invoker over the given server command table.
func NewInvoker(servers map[string]string) *Invoker {
	return &Invoker{servers: servers}
}

// CallTool resolves toolName (mcp__<server>__<tool> form) to its server,
// spawns the server, and calls the tool once. Input that parses as a JSON
// object becomes the tool arguments; anything else is passed under an
// "input" key. Returns the concatenated text content of the result.
func (inv *Invoker) CallTool(ctx context.Context, toolName, input string) (string, error) {
	serverID := ExtractServerID(toolName)
	if serverID == "" {
		return "", fmt.Errorf("mcp action: tool name %q does not follow mcp__<server>__<tool>. Fix the hook's tool parameter", toolName)
	}

	command, ok := inv.servers[serverID]
	if !ok {
		return "", fmt.Errorf("mcp action: server %q is not configured. Add it to the mcp server settings", serverID)
	}

	argv := strings.Fields(command)
	if len(argv) == 0 {
		return "", fmt.Errorf("mcp action: server %q has an empty command", serverID)
	}

	c, err := client.NewStdioMCPClient(argv[0], nil, argv[1:]...)
	if err != nil {
		return "", fmt.Errorf("mcp action: spawn server %q: %w. Check the server command", serverID, err)
	}
	defer c.Close()

	initCtx, cancel := context.WithTimeout(ctx, initializeTimeout)
	defer cancel()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "gatomia", Version: "1.0.0"}
	if _, err := c.Initialize(initCtx, initReq); err != nil {
		return "", fmt.Errorf("mcp action: initialize server %q: %w. The server may not speak MCP", serverID, err)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = ExtractToolName(toolName)
	req.Params.Arguments = toolArguments(input)

	log.Debug("mcptool: calling %s on %s", req.Params.Name, serverID)

	result, err := c.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("mcp action: call %s: %w", toolName, err)
	}

	text := collectText(result)
	if result.IsError {
		return text, fmt.Errorf("mcp action: tool %s reported an error: %s", toolName, text)
	}
	return text, nil
}

// toolArguments interprets the hook's input parameter. A JSON object is
// passed through as the argument map; free text goes under "input".
func toolArguments(input string) map[string]any {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "{") {
		var args map[string]any
		if err := json.Unmarshal([]byte(trimmed), &args); err == nil {
			return args
		}
	}
	if trimmed == "" {
		return map[string]any{}
	}
	return map[string]any{"input": input}
}

func collectText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if tc, ok := mcp.AsTextContent(content); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
