// Package lineconn is a net/textproto backed transport.Transport, the
// same wire-framing primitives the teacher's ClientConnection uses
// (textproto.Conn.ReadLine/PrintfLine/DotWriter over a bufio.Writer).
//
// Grounded on internal/nntp/nntp-server-cliconns.go: sendResponse
// (PrintfLine), sendMultilineResponse (DotWriter wrapped in a
// bufio.Writer), UpdateDeadlines (SetReadDeadline/SetWriteDeadline).
package lineconn

import (
	"bufio"
	"net"
	"net/textproto"
	"time"

	"github.com/go-while/postus/internal/wire"
)

// DefaultTimeout mirrors the teacher's DefaultNNTPcliconnTimeout.
var DefaultTimeout = 60 * time.Second

// Conn is a net/textproto backed transport.Transport.
type Conn struct {
	conn     net.Conn
	text     *textproto.Conn
	writer   *bufio.Writer
	timeout  time.Duration
}

// New wraps conn in a line-oriented transport.
func New(conn net.Conn) *Conn {
	return &Conn{
		conn:    conn,
		text:    textproto.NewConn(conn),
		writer:  bufio.NewWriter(conn),
		timeout: DefaultTimeout,
	}
}

func (c *Conn) ReadLine() (string, error) {
	return c.text.ReadLine()
}

// ReadDotTerminated reads lines until a lone "." line, un-stuffing any
// leading ".." to "." per spec.md §6.1.
func (c *Conn) ReadDotTerminated() ([]string, error) {
	var out []string
	for {
		line, err := c.text.ReadLine()
		if err != nil {
			return nil, err
		}
		if line == wire.DOT {
			return out, nil
		}
		out = append(out, wire.DotUnstuff(line))
	}
}

func (c *Conn) Printf(format string, args ...any) error {
	return c.text.PrintfLine(format, args...)
}

func (c *Conn) Status(code int, message string) error {
	return c.text.PrintfLine("%d %s", code, message)
}

// MultilineStatus writes a status line followed by a dot-terminated data
// block. textproto's DotWriter already escapes any line starting with "."
// and normalizes line endings to CRLF, so lines are written raw here —
// stuffing them first would double-escape a leading dot.
func (c *Conn) MultilineStatus(code int, message string, lines []string) error {
	if err := c.Status(code, message); err != nil {
		return err
	}
	dw := c.text.DotWriter()
	w := bufio.NewWriter(dw)
	for _, line := range lines {
		if _, err := w.WriteString(line + wire.LF); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return dw.Close()
}

func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *Conn) SetDeadlines() {
	deadline := time.Now().Add(c.timeout)
	c.conn.SetReadDeadline(deadline)
	c.conn.SetWriteDeadline(deadline)
}

func (c *Conn) Close() error { return c.text.Close() }
