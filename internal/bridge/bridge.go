// ABOUTME: Bridge server: JSONL request/response protocol over an io pair
// ABOUTME: One JSON object per line in, one per line out; notifications interleave

package bridge

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/eitatech/gatomia/internal/log"
)

// Server handles bridge requests from a host client, typically over
// stdin/stdout. Responses and streamed notifications share the writer,
// so all writes go through a mutex.
type Server struct {
	reader *bufio.Scanner
	writer io.Writer
	router *Router
	wmu    sync.Mutex
}

// NewServer creates a bridge server reading JSONL requests from r and
// writing responses to w.
func NewServer(r io.Reader, w io.Writer, router *Router) *Server {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)
	return &Server{
		reader: scanner,
		writer: w,
		router: router,
	}
}

// Run starts the bridge loop. It returns when the reader is exhausted or
// a response cannot be written.
func (s *Server) Run() error {
	for s.reader.Scan() {
		line := s.reader.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.sendError("", NewParseError(fmt.Sprintf("parse error: %v", err)))
			continue
		}

		resp := s.router.Handle(req)
		resp.ID = req.ID

		if err := s.writeLine(resp); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}

	return s.reader.Err()
}

// Notify streams a server-initiated message to the client. Write failures
// are logged, not returned: a broken subscriber must not take down the
// request loop.
func (s *Server) Notify(method string, params any) {
	if err := s.writeLine(Notification{Method: method, Params: params}); err != nil {
		log.Debug("bridge: dropping notification %s: %v", method, err)
	}
}

func (s *Server) sendError(id string, e *Error) {
	if err := s.writeLine(Response{ID: id, Error: e}); err != nil {
		log.Debug("bridge: dropping error response: %v", err)
	}
}

func (s *Server) writeLine(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	data = append(data, '\n')

	s.wmu.Lock()
	defer s.wmu.Unlock()
	_, err = s.writer.Write(data)
	return err
}
