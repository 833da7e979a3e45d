// ABOUTME: JSON-RPC 2.0 transport over newline-delimited JSON streams
// ABOUTME: Pending-call map with a receive loop; notifications flow on a channel

package acp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/eitatech/gatomia/internal/log"
)

const (
	jsonRPCVersion   = "2.0"
	maxScannerBuffer = 10 * 1024 * 1024 // 10MB
)

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *rpcError) Error() string {
	return e.Message
}

// notification is an incoming JSON-RPC message without an id.
type notification struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// transport drives JSON-RPC over a writer/reader pair, typically the stdin
// and stdout pipes of an agent subprocess. An io pair rather than a command
// keeps the session flow testable without spawning anything.
type transport struct {
	w io.Writer

	incoming  chan notification
	pending   map[int64]chan *response
	mu        sync.Mutex
	wmu       sync.Mutex
	nextID    atomic.Int64
	done      chan struct{}
	closeOnce sync.Once
}

func newTransport(w io.Writer, r io.Reader) *transport {
	t := &transport{
		w:        w,
		incoming: make(chan notification, 64),
		pending:  make(map[int64]chan *response),
		done:     make(chan struct{}),
	}
	go t.recvLoop(r)
	return t
}

// call sends a request and waits for its response, the context ending, or
// the transport closing.
func (t *transport) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := t.nextID.Add(1)
	req := request{JSONRPC: jsonRPCVersion, ID: id, Method: method, Params: params}

	ch := make(chan *response, 1)
	t.mu.Lock()
	t.pending[id] = ch
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
	}()

	if err := t.write(req); err != nil {
		return nil, fmt.Errorf("write %s request: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return nil, fmt.Errorf("transport closed during %s", method)
	case resp := <-ch:
		if resp.Error != nil {
			return nil, fmt.Errorf("%s: %w", method, resp.Error)
		}
		return resp.Result, nil
	}
}

// notifications returns the channel of incoming server-initiated messages.
func (t *transport) notifications() <-chan notification {
	return t.incoming
}

func (t *transport) close() {
	t.closeOnce.Do(func() {
		close(t.done)
	})
}

func (t *transport) write(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	data = append(data, '\n')

	t.wmu.Lock()
	defer t.wmu.Unlock()
	_, err = t.w.Write(data)
	return err
}

// recvLoop reads newline-delimited JSON-RPC messages and dispatches them to
// pending calls or the notification channel.
func (t *transport) recvLoop(r io.Reader) {
	defer close(t.incoming)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, maxScannerBuffer), maxScannerBuffer)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		// Responses carry an id; everything else is a notification.
		var resp response
		if err := json.Unmarshal(line, &resp); err == nil && resp.ID != 0 {
			t.mu.Lock()
			ch, ok := t.pending[resp.ID]
			t.mu.Unlock()
			if ok {
				ch <- &resp
			}
			continue
		}

		var notif notification
		if err := json.Unmarshal(line, &notif); err != nil {
			log.Debug("acp: dropping unparseable line: %v", err)
			continue
		}

		// Block until the collector drains; dropping here would lose
		// message chunks. The done arm still unblocks shutdown.
		select {
		case t.incoming <- notif:
		case <-t.done:
			return
		}
	}
}
