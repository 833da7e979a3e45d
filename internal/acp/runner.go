// ABOUTME: ACP agent runner: spawn subprocess, handshake, one prompt exchange
// ABOUTME: initialize / session/new / session/prompt with agent_message_chunk collection

package acp

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/eitatech/gatomia/internal/log"
)

const (
	protocolVersion         = 1
	defaultHandshakeTimeout = 10 * time.Second
)

// Runner executes one prompt against an external ACP agent subprocess.
type Runner struct {
	// SessionTimeout bounds the session/prompt exchange. Zero means 120s.
	SessionTimeout time.Duration
	// HandshakeTimeout bounds initialize and session/new. Zero means 10s.
	HandshakeTimeout time.Duration
	// Dir is the working directory passed to session/new and used to spawn
	// the agent process.
	Dir string
}

// NewRunner creates a runner with the given session timeout.
func NewRunner(dir string, sessionTimeout time.Duration) *Runner {
	if sessionTimeout <= 0 {
		sessionTimeout = 120 * time.Second
	}
	return &Runner{
		SessionTimeout:   sessionTimeout,
		HandshakeTimeout: defaultHandshakeTimeout,
		Dir:              dir,
	}
}

func (r *Runner) handshakeBudget() time.Duration {
	if r.HandshakeTimeout <= 0 {
		return defaultHandshakeTimeout
	}
	return r.HandshakeTimeout
}

// Prompt spawns the agent, runs the handshake and a single prompt, and
// returns the agent's collected text response. Every failure is a
// *ClassifiedError; there is no unclassified path out of here.
func (r *Runner) Prompt(ctx context.Context, agentCommand, prompt string) (string, error) {
	argv := strings.Fields(agentCommand)
	if len(argv) == 0 {
		return "", newError(SpawnFailed, "ACP agent", "the agent command is empty",
			"Set the agent command on the hook or agent manifest", nil)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", newError(SpawnFailed, "ACP agent "+argv[0], "could not create the stdin pipe",
			"Retry; if it persists, restart the host process", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", newError(SpawnFailed, "ACP agent "+argv[0], "could not create the stdout pipe",
			"Retry; if it persists, restart the host process", err)
	}

	if err := cmd.Start(); err != nil {
		return "", newError(SpawnFailed, "ACP agent "+argv[0], "the process failed to start",
			"Check that the agent is installed and the command is spelled correctly", err)
	}

	t := newTransport(stdin, stdout)
	defer func() {
		t.close()
		stdin.Close()
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		_ = cmd.Wait()
	}()

	return r.runSession(ctx, t, argv[0], prompt)
}

// sessionUpdate is the payload of a session/update notification.
type sessionUpdate struct {
	SessionID string `json:"sessionId"`
	Update    struct {
		SessionUpdate string `json:"sessionUpdate"`
		Content       struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"update"`
}

// runSession performs the JSON-RPC exchange over an established transport.
// Split from Prompt so tests can drive it with in-memory pipes.
func (r *Runner) runSession(ctx context.Context, t *transport, agentName, prompt string) (string, error) {
	agentCtx := "ACP agent " + agentName

	// Collect agent message chunks for the whole session lifetime.
	var (
		textMu sync.Mutex
		text   strings.Builder
		wg     sync.WaitGroup
	)
	collect := func(notif notification) {
		if notif.Method != "session/update" {
			return
		}
		var upd sessionUpdate
		if err := json.Unmarshal(notif.Params, &upd); err != nil {
			log.Debug("acp: bad session/update payload: %v", err)
			return
		}
		if upd.Update.SessionUpdate == "agent_message_chunk" && upd.Update.Content.Type == "text" {
			textMu.Lock()
			text.WriteString(upd.Update.Content.Text)
			textMu.Unlock()
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-t.done:
				// Drain anything already buffered before exiting so late
				// chunks are not lost.
				for {
					select {
					case notif, ok := <-t.notifications():
						if !ok {
							return
						}
						collect(notif)
					default:
						return
					}
				}
			case notif, ok := <-t.notifications():
				if !ok {
					return
				}
				collect(notif)
			}
		}
	}()

	// Handshake.
	hsCtx, cancel := context.WithTimeout(ctx, r.handshakeBudget())
	_, err := t.call(hsCtx, "initialize", map[string]any{
		"protocolVersion":    protocolVersion,
		"clientCapabilities": map[string]any{},
	})
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", newError(HandshakeTimeout, agentCtx,
				"did not answer the initialize request within "+r.handshakeBudget().String(),
				"Check that the command actually speaks ACP over stdio", err)
		}
		if errors.Is(err, context.Canceled) {
			return "", newError(Cancelled, agentCtx, "the handshake was cancelled",
				"Re-run the hook when ready", err)
		}
		return "", newError(ProtocolError, agentCtx, "the initialize exchange failed",
			"Check the agent's ACP support and version", err)
	}

	// Session creation shares the handshake budget.
	newCtx, cancel := context.WithTimeout(ctx, r.handshakeBudget())
	rawSession, err := t.call(newCtx, "session/new", map[string]any{
		"cwd":        r.Dir,
		"mcpServers": []any{},
	})
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", newError(HandshakeTimeout, agentCtx,
				"did not create a session within "+r.handshakeBudget().String(),
				"Check that the command actually speaks ACP over stdio", err)
		}
		if errors.Is(err, context.Canceled) {
			return "", newError(Cancelled, agentCtx, "session creation was cancelled",
				"Re-run the hook when ready", err)
		}
		return "", newError(ProtocolError, agentCtx, "session/new failed",
			"Check the agent's ACP support and version", err)
	}

	var session struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(rawSession, &session); err != nil || session.SessionID == "" {
		return "", newError(ProtocolError, agentCtx, "session/new returned no session id",
			"Update the agent; its ACP implementation is incomplete", err)
	}

	// The prompt itself gets the long budget.
	promptCtx, cancel := context.WithTimeout(ctx, r.SessionTimeout)
	defer cancel()
	_, err = t.call(promptCtx, "session/prompt", map[string]any{
		"sessionId": session.SessionID,
		"prompt": []map[string]any{
			{"type": "text", "text": prompt},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", newError(SessionTimeout, agentCtx,
				"did not finish the prompt within "+r.SessionTimeout.String(),
				"Increase the session timeout or simplify the prompt", err)
		}
		if errors.Is(err, context.Canceled) {
			return "", newError(Cancelled, agentCtx, "the prompt was cancelled",
				"Re-run the hook when ready", err)
		}
		return "", newError(ProtocolError, agentCtx, "session/prompt failed",
			"Check the agent logs for details", err)
	}

	// Stop the collector before reading the accumulated text.
	t.close()
	wg.Wait()

	textMu.Lock()
	result := text.String()
	textMu.Unlock()

	if strings.TrimSpace(result) == "" {
		return "", newError(EmptyResponse, agentCtx, "the session completed but produced no text",
			"Re-run the hook; if it persists, test the agent manually", nil)
	}
	return result, nil
}
