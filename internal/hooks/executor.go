// ABOUTME: Hook executor resolving tagged actions to their collaborators
// ABOUTME: Expands templates, records one execution-log entry per attempt

package hooks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eitatech/gatomia/internal/execlog"
	"github.com/eitatech/gatomia/internal/log"
)

// GitRunner executes whitelisted git operations.
type GitRunner interface {
	Run(ctx context.Context, operation string, args []string) (string, error)
}

// GitHubRunner executes GitHub operations through the gh CLI.
type GitHubRunner interface {
	Run(ctx context.Context, operation string, args []string) (string, error)
}

// MCPInvoker calls a tool on an MCP server identified by the
// mcp__<server>__<tool> display-name convention.
type MCPInvoker interface {
	CallTool(ctx context.Context, toolName string, input string) (string, error)
}

// ACPRunner drives an external ACP agent subprocess through one prompt.
type ACPRunner interface {
	Prompt(ctx context.Context, agentCommand, prompt string) (string, error)
}

// AgentDispatcher hands a command to an in-editor agent.
type AgentDispatcher interface {
	SendCommand(ctx context.Context, agent, command string) (string, error)
}

// ShellRunner executes a custom shell command.
type ShellRunner interface {
	Run(ctx context.Context, command string) (string, error)
}

// ExecutionLogger receives one entry per execution attempt.
type ExecutionLogger interface {
	Append(entry execlog.Entry) error
}

// Result reports one hook execution attempt to the caller.
type Result struct {
	HookID      string
	ExecutionID string
	Status      execlog.Status
	Output      string
	Err         error
}

// Executor resolves a fired hook's action to the right collaborator and
// performs the side effect. Discovery layers upstream are fail-silent; this
// boundary is fail-loud: every failure surfaces as a structured result.
type Executor struct {
	Agents AgentDispatcher
	Git    GitRunner
	GitHub GitHubRunner
	MCP    MCPInvoker
	ACP    ACPRunner
	Shell  ShellRunner

	Store  *Store
	Logger ExecutionLogger
}

// Execute runs a single hook at the given chain depth. It expands template
// references in the action's string parameters, dispatches the side effect,
// appends an execution-log entry, and bumps the hook's run counters.
func (e *Executor) Execute(ctx context.Context, hook Hook, vars map[string]string, depth int) Result {
	executionID := uuid.NewString()
	started := time.Now()

	params, unknown := ExpandParams(hook.Action.Params, vars)
	if len(unknown) > 0 {
		log.Warn("executor: hook %q references unknown variables %v", hook.Name, unknown)
	}

	output, err := e.dispatch(ctx, hook.Action.Type, params)
	completed := time.Now()

	status := execlog.StatusSuccess
	if err != nil {
		status = execlog.StatusFailure
		if errors.Is(err, context.DeadlineExceeded) {
			status = execlog.StatusTimeout
		}
		log.Error("executor: hook %q (%s): %v", hook.Name, hook.Action.Type, err)
	}

	e.appendLog(execlog.Entry{
		ID:          uuid.NewString(),
		HookID:      hook.ID,
		ExecutionID: executionID,
		ChainDepth:  depth,
		TriggeredAt: started,
		CompletedAt: &completed,
		DurationMs:  completed.Sub(started).Milliseconds(),
		Status:      status,
		Error:       errString(err),
	})

	if e.Store != nil {
		if recErr := e.Store.RecordExecution(hook.ID, completed); recErr != nil {
			log.Warn("executor: record execution for %q: %v", hook.Name, recErr)
		}
	}

	return Result{
		HookID:      hook.ID,
		ExecutionID: executionID,
		Status:      status,
		Output:      output,
		Err:         err,
	}
}

// LogSkipped records a skipped-status entry without executing anything.
// Used when the chain-depth guard refuses to recurse.
func (e *Executor) LogSkipped(hook Hook, depth int, reason string) Result {
	now := time.Now()
	executionID := uuid.NewString()

	e.appendLog(execlog.Entry{
		ID:          uuid.NewString(),
		HookID:      hook.ID,
		ExecutionID: executionID,
		ChainDepth:  depth,
		TriggeredAt: now,
		CompletedAt: &now,
		Status:      execlog.StatusSkipped,
		Error:       reason,
	})

	return Result{HookID: hook.ID, ExecutionID: executionID, Status: execlog.StatusSkipped}
}

func (e *Executor) dispatch(ctx context.Context, typ ActionType, params map[string]string) (string, error) {
	switch typ {
	case ActionAgent:
		if e.Agents == nil {
			return "", fmt.Errorf("agent action: no agent dispatcher configured. Configure one or change the hook's action type")
		}
		return e.Agents.SendCommand(ctx, params["agent"], params["command"])

	case ActionGit:
		if e.Git == nil {
			return "", fmt.Errorf("git action: no git runner configured. Configure one or change the hook's action type")
		}
		return e.Git.Run(ctx, params["operation"], splitArgs(params["args"]))

	case ActionGitHub:
		if e.GitHub == nil {
			return "", fmt.Errorf("github action: no github runner configured. Configure one or change the hook's action type")
		}
		return e.GitHub.Run(ctx, params["operation"], splitArgs(params["args"]))

	case ActionMCP:
		if e.MCP == nil {
			return "", fmt.Errorf("mcp action: no MCP invoker configured. Configure one or change the hook's action type")
		}
		return e.MCP.CallTool(ctx, params["tool"], params["input"])

	case ActionCustom:
		if e.Shell == nil {
			return "", fmt.Errorf("custom action: no shell runner configured. Configure one or change the hook's action type")
		}
		return e.Shell.Run(ctx, params["command"])

	case ActionACP:
		if e.ACP == nil {
			return "", fmt.Errorf("acp action: no ACP runner configured. Configure one or change the hook's action type")
		}
		return e.ACP.Prompt(ctx, params["agentCommand"], params["prompt"])

	default:
		return "", fmt.Errorf("unknown action type %q. Delete and recreate this hook", typ)
	}
}

func (e *Executor) appendLog(entry execlog.Entry) {
	if e.Logger == nil {
		return
	}
	if err := e.Logger.Append(entry); err != nil {
		log.Warn("executor: append log entry: %v", err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// splitArgs splits a whitespace-separated argument string. Empty input
// yields no arguments.
func splitArgs(s string) []string {
	return strings.Fields(s)
}
