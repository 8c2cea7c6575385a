package websocket

import (
	"errors"
	"sync"
	"time"
)

// stubConn is a scripted Conn for pump tests. Reads are served from a
// queue and writes are recorded; once the queue is exhausted ReadMessage
// fails, which is how tests drive the read pump to exit.
type stubConn struct {
	mu            sync.Mutex
	reads         []stubFrame
	written       []stubFrame
	closed        bool
	readLimit     int64
	readDeadline  time.Time
	writeDeadline time.Time
	pongHandler   func(string) error
}

type stubFrame struct {
	kind int
	data []byte
}

var errReadsExhausted = errors.New("stub connection: read queue exhausted")

func newStubConn() *stubConn {
	return &stubConn{}
}

// queueRead appends a frame for ReadMessage to return.
func (s *stubConn) queueRead(kind int, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads = append(s.reads, stubFrame{kind: kind, data: data})
}

func (s *stubConn) ReadMessage() (int, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, nil, errors.New("stub connection: closed")
	}
	if len(s.reads) == 0 {
		return 0, nil, errReadsExhausted
	}
	frame := s.reads[0]
	s.reads = s.reads[1:]
	return frame.kind, frame.data, nil
}

func (s *stubConn) WriteMessage(kind int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("stub connection: closed")
	}
	s.written = append(s.written, stubFrame{kind: kind, data: data})
	return nil
}

func (s *stubConn) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubConn) SetReadDeadline(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readDeadline = t
	return nil
}

func (s *stubConn) SetWriteDeadline(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeDeadline = t
	return nil
}

func (s *stubConn) SetReadLimit(limit int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readLimit = limit
}

func (s *stubConn) SetPongHandler(h func(string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pongHandler = h
}

func (s *stubConn) RemoteAddr() string {
	return "127.0.0.1:8080"
}

// frames returns a copy of everything written so far.
func (s *stubConn) frames() []stubFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]stubFrame, len(s.written))
	copy(out, s.written)
	return out
}

func (s *stubConn) wasClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *stubConn) limit() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLimit
}
