// Package transport implements the byte-stream transport primitives:
// connect/read/write/close over TCP, with dual-stack address
// resolution via net.ResolveTCPAddr.
package transport

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// ReadTimeout is the per-read-attempt blocking timeout.
const ReadTimeout = 5 * time.Second

// ErrClosed names the closed-connection failure. TCPConn's Read and
// Write do not return it: after Close they return the underlying net
// error (which wraps net.ErrClosed) unchanged.
var ErrClosed = errors.New("transport: connection closed")

// Conn is the byte-stream contract the core consumes. A net.TCPConn
// satisfies this structurally; FakeConn (transporttest) does too, so
// tests never need a real socket.
type Conn interface {
	Read(buf []byte) (n int, err error)
	Write(buf []byte) (n int, err error)
	Close() error
	SetReadDeadline(t time.Time) error
}

// TCPConn wraps a *net.TCPConn, resuming reads/writes on EINTR (Go's
// net package already retries EINTR-class transient errors internally
// via the runtime poller, so this wrapper's job is only to apply the
// fixed per-read timeout; errors are passed through unchanged).
type TCPConn struct {
	conn *net.TCPConn
}

// Dial resolves host:port (accepting both IPv4 and IPv6 numeric or
// named hosts) and connects over TCP. blocking is accepted for API
// parity but has no effect: Go's net package always
// performs non-blocking I/O internally regardless of caller intent.
func Dial(host string, port int, blocking bool) (*TCPConn, error) {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	raddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve %s: %w", addr, err)
	}
	conn, err := net.DialTCP("tcp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	return &TCPConn{conn: conn}, nil
}

// Read blocks up to ReadTimeout per attempt.
func (c *TCPConn) Read(buf []byte) (int, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(ReadTimeout)); err != nil {
		return 0, err
	}
	n, err := c.conn.Read(buf)
	if err != nil {
		return n, err
	}
	return n, nil
}

// Write blocks until the full buffer is written or an error occurs.
// Go's net.Conn.Write already loops internally to deliver the whole
// buffer or fail: it returns a non-nil error on any short write, so
// this wrapper treats any error as the single failure case.
func (c *TCPConn) Write(buf []byte) (int, error) {
	return c.conn.Write(buf)
}

// Close closes the underlying socket.
func (c *TCPConn) Close() error {
	return c.conn.Close()
}

// SetReadDeadline exposes the deadline knob for callers that want to
// race a read against a broader timeout (the bus's receive loop does).
func (c *TCPConn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}
