package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the subset of a websocket connection the client pumps use.
// Tests substitute a scripted implementation.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// gorillaConn adapts *websocket.Conn to Conn. Everything is promoted from
// the embedded connection except RemoteAddr, which flattens the net.Addr
// to a string for logging.
type gorillaConn struct {
	*websocket.Conn
}

func wrapConn(c *websocket.Conn) Conn {
	return gorillaConn{c}
}

func (g gorillaConn) RemoteAddr() string {
	if addr := g.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
