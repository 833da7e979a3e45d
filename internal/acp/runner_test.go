// ABOUTME: Tests for the ACP session flow against a scripted in-memory agent
// ABOUTME: Drives runSession over io.Pipe pairs; no subprocess is spawned

package acp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"
)

// agentHandler decides what the scripted agent sends back for one request.
// It returns a list of messages written as JSON lines, in order, so a
// handler can emit notifications before the response.
type agentHandler func(req request) []any

// runFakeAgent services requests read from in by writing handler output to
// out, one JSON line per message, until in closes.
func runFakeAgent(t *testing.T, in io.Reader, out io.Writer, handle agentHandler) {
	t.Helper()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		var req request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			t.Errorf("fake agent: unparseable request: %v", err)
			return
		}
		for _, msg := range handle(req) {
			data, err := json.Marshal(msg)
			if err != nil {
				t.Errorf("fake agent: marshal reply: %v", err)
				return
			}
			if _, err := out.Write(append(data, '\n')); err != nil {
				return
			}
		}
	}
}

func respond(id int64, result any) any {
	return map[string]any{"jsonrpc": jsonRPCVersion, "id": id, "result": result}
}

func respondError(id int64, code int, message string) any {
	return map[string]any{
		"jsonrpc": jsonRPCVersion,
		"id":      id,
		"error":   map[string]any{"code": code, "message": message},
	}
}

func chunk(sessionID, text string) any {
	return map[string]any{
		"jsonrpc": jsonRPCVersion,
		"method":  "session/update",
		"params": map[string]any{
			"sessionId": sessionID,
			"update": map[string]any{
				"sessionUpdate": "agent_message_chunk",
				"content":       map[string]any{"type": "text", "text": text},
			},
		},
	}
}

// startSession wires a transport to a fake agent and returns both ends.
// The returned cleanup closes the pipes, which ends the agent goroutine.
func startSession(t *testing.T, handle agentHandler) *transport {
	t.Helper()

	clientRead, agentWrite := io.Pipe()
	agentRead, clientWrite := io.Pipe()

	go runFakeAgent(t, agentRead, agentWrite, handle)

	tr := newTransport(clientWrite, clientRead)
	t.Cleanup(func() {
		tr.close()
		clientWrite.Close()
		agentWrite.Close()
	})
	return tr
}

// standardHandler answers the full happy-path flow, streaming the given
// chunks during session/prompt.
func standardHandler(chunks ...string) agentHandler {
	return func(req request) []any {
		switch req.Method {
		case "initialize":
			return []any{respond(req.ID, map[string]any{"protocolVersion": protocolVersion})}
		case "session/new":
			return []any{respond(req.ID, map[string]any{"sessionId": "sess-1"})}
		case "session/prompt":
			var msgs []any
			for _, c := range chunks {
				msgs = append(msgs, chunk("sess-1", c))
			}
			return append(msgs, respond(req.ID, map[string]any{"stopReason": "end_turn"}))
		default:
			return []any{respondError(req.ID, -32601, "method not found")}
		}
	}
}

func TestRunSessionCollectsChunks(t *testing.T) {
	t.Parallel()

	tr := startSession(t, standardHandler("hello ", "world"))
	r := NewRunner(t.TempDir(), time.Second)

	got, err := r.runSession(context.Background(), tr, "fake", "say hi")
	if err != nil {
		t.Fatalf("runSession: %v", err)
	}
	if got != "hello world" {
		t.Errorf("collected text = %q, want %q", got, "hello world")
	}
}

func TestRunSessionEmptyResponse(t *testing.T) {
	t.Parallel()

	tr := startSession(t, standardHandler())
	r := NewRunner(t.TempDir(), time.Second)

	_, err := r.runSession(context.Background(), tr, "fake", "say hi")
	if CodeOf(err) != EmptyResponse {
		t.Errorf("CodeOf = %q, want %q (err: %v)", CodeOf(err), EmptyResponse, err)
	}
}

func TestRunSessionInitializeError(t *testing.T) {
	t.Parallel()

	tr := startSession(t, func(req request) []any {
		return []any{respondError(req.ID, -32600, "unsupported protocol")}
	})
	r := NewRunner(t.TempDir(), time.Second)

	_, err := r.runSession(context.Background(), tr, "fake", "say hi")
	if CodeOf(err) != ProtocolError {
		t.Errorf("CodeOf = %q, want %q (err: %v)", CodeOf(err), ProtocolError, err)
	}
}

func TestRunSessionHandshakeTimeout(t *testing.T) {
	t.Parallel()

	// Agent that never answers anything.
	tr := startSession(t, func(req request) []any { return nil })
	r := NewRunner(t.TempDir(), time.Second)
	r.HandshakeTimeout = 50 * time.Millisecond

	_, err := r.runSession(context.Background(), tr, "fake", "say hi")
	if CodeOf(err) != HandshakeTimeout {
		t.Errorf("CodeOf = %q, want %q (err: %v)", CodeOf(err), HandshakeTimeout, err)
	}
}

func TestRunSessionPromptTimeout(t *testing.T) {
	t.Parallel()

	tr := startSession(t, func(req request) []any {
		switch req.Method {
		case "initialize":
			return []any{respond(req.ID, map[string]any{"protocolVersion": protocolVersion})}
		case "session/new":
			return []any{respond(req.ID, map[string]any{"sessionId": "sess-1"})}
		default:
			// Never answer the prompt.
			return nil
		}
	})
	r := NewRunner(t.TempDir(), 50*time.Millisecond)

	_, err := r.runSession(context.Background(), tr, "fake", "say hi")
	if CodeOf(err) != SessionTimeout {
		t.Errorf("CodeOf = %q, want %q (err: %v)", CodeOf(err), SessionTimeout, err)
	}
}

func TestRunSessionMissingSessionID(t *testing.T) {
	t.Parallel()

	tr := startSession(t, func(req request) []any {
		switch req.Method {
		case "initialize":
			return []any{respond(req.ID, map[string]any{"protocolVersion": protocolVersion})}
		case "session/new":
			return []any{respond(req.ID, map[string]any{})}
		default:
			return []any{respondError(req.ID, -32601, "method not found")}
		}
	})
	r := NewRunner(t.TempDir(), time.Second)

	_, err := r.runSession(context.Background(), tr, "fake", "say hi")
	if CodeOf(err) != ProtocolError {
		t.Errorf("CodeOf = %q, want %q (err: %v)", CodeOf(err), ProtocolError, err)
	}
}

func TestRunSessionCancelled(t *testing.T) {
	t.Parallel()

	tr := startSession(t, func(req request) []any { return nil })
	r := NewRunner(t.TempDir(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.runSession(ctx, tr, "fake", "say hi")
	if CodeOf(err) != Cancelled {
		t.Errorf("CodeOf = %q, want %q (err: %v)", CodeOf(err), Cancelled, err)
	}
}

func TestPromptSpawnFailures(t *testing.T) {
	t.Parallel()

	r := NewRunner(t.TempDir(), time.Second)

	tests := []struct {
		name    string
		command string
	}{
		{name: "empty command", command: "   "},
		{name: "nonexistent binary", command: "definitely-not-a-real-agent-binary-xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := r.Prompt(context.Background(), tt.command, "hi")
			if CodeOf(err) != SpawnFailed {
				t.Errorf("CodeOf = %q, want %q (err: %v)", CodeOf(err), SpawnFailed, err)
			}
		})
	}
}

func TestRunSessionCollectsLargeChunkBurst(t *testing.T) {
	t.Parallel()

	// More chunks than the transport's notification buffer holds; every
	// one must survive into the collected text.
	const n = 200
	chunks := make([]string, n)
	for i := range chunks {
		chunks[i] = "x"
	}

	tr := startSession(t, standardHandler(chunks...))
	r := NewRunner(t.TempDir(), 5*time.Second)

	got, err := r.runSession(context.Background(), tr, "fake", "go")
	if err != nil {
		t.Fatalf("runSession: %v", err)
	}
	if len(got) != n {
		t.Errorf("collected %d bytes, want %d", len(got), n)
	}
}

// Multi-line responses split across writes should still parse; strings with
// embedded newlines stay inside JSON escapes, so one line is one message.
func TestTransportHandlesMultilineText(t *testing.T) {
	t.Parallel()

	tr := startSession(t, standardHandler("line one\nline two"))
	r := NewRunner(t.TempDir(), time.Second)

	got, err := r.runSession(context.Background(), tr, "fake", "say hi")
	if err != nil {
		t.Fatalf("runSession: %v", err)
	}
	if !strings.Contains(got, "\n") {
		t.Errorf("expected embedded newline preserved, got %q", got)
	}
}
