// Package remote implements the developer console transport: a line-based
// TCP endpoint the fixed-step loop polls once per frame. The loop never
// blocks on the network; lines queue up between polls.
package remote

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultPort is the developer console's TCP port when the environment
// does not override it.
const DefaultPort = 46001

// PortEnvVar overrides the console port.
const PortEnvVar = "PROTOGE_REMOTE_CONSOLE_PORT"

var remoteLog = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "remote",
})

// ResolvePort returns the configured console port. Malformed or
// out-of-range values fall back to the default with a warning.
func ResolvePort() int {
	raw := strings.TrimSpace(os.Getenv(PortEnvVar))
	if raw == "" {
		return DefaultPort
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		remoteLog.Warn("ignoring invalid console port override", "env", PortEnvVar, "value", raw)
		return DefaultPort
	}
	return port
}

// LinePump is the loop-facing console transport. All methods are
// non-blocking and safe from the loop goroutine.
type LinePump interface {
	// PollLines returns the input lines received since the last poll, in
	// arrival order.
	PollLines() []string
	// SendOutputLines queues reply lines to the connected client. Lines
	// are dropped silently when no client is connected.
	SendOutputLines(lines []string)
	// TakeDisconnectResetRequested reports, once per disconnect, that the
	// client dropped and the scene should hard-reset.
	TakeDisconnectResetRequested() bool
	Close() error
}

// TCPLinePump serves a single console client at a time. A second
// connection attempt is refused while one client is active; a disconnect
// arms the reset edge and frees the slot.
type TCPLinePump struct {
	listener net.Listener

	mu             sync.Mutex
	conn           net.Conn
	pending        []string
	resetRequested bool
	closed         bool
}

// ListenTCP starts a pump on the given port, bound to localhost.
func ListenTCP(port int) (*TCPLinePump, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("console listen: %w", err)
	}
	p := &TCPLinePump{listener: listener}
	go p.acceptLoop()
	remoteLog.Info("console listening", "addr", listener.Addr().String())
	return p, nil
}

// Addr returns the bound listener address.
func (p *TCPLinePump) Addr() net.Addr { return p.listener.Addr() }

func (p *TCPLinePump) acceptLoop() {
	for {
		conn, err := p.listener.Accept()
		if err != nil {
			return
		}
		p.mu.Lock()
		if p.closed || p.conn != nil {
			p.mu.Unlock()
			conn.Close()
			continue
		}
		p.conn = conn
		p.mu.Unlock()
		remoteLog.Info("console client connected", "peer", conn.RemoteAddr().String())
		go p.readLoop(conn)
	}
}

func (p *TCPLinePump) readLoop(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), 1<<16)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		p.mu.Lock()
		p.pending = append(p.pending, line)
		p.mu.Unlock()
	}
	conn.Close()

	p.mu.Lock()
	wasActive := p.conn == conn
	if wasActive {
		p.conn = nil
		if !p.closed {
			p.resetRequested = true
		}
	}
	p.mu.Unlock()
	if wasActive {
		remoteLog.Info("console client disconnected")
	}
}

// PollLines returns and clears the buffered input lines.
func (p *TCPLinePump) PollLines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) == 0 {
		return nil
	}
	lines := p.pending
	p.pending = nil
	return lines
}

// writeTimeout bounds one reply write. A client that stops reading loses
// the connection instead of stalling the loop.
const writeTimeout = 50 * time.Millisecond

// SendOutputLines writes reply lines to the client under a short deadline.
// A stalled or failed write drops the connection; the read loop then arms
// the reset edge.
func (p *TCPLinePump) SendOutputLines(lines []string) {
	if len(lines) == 0 {
		return
	}
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn == nil {
		return
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := conn.Write([]byte(b.String())); err != nil {
		conn.Close()
	}
}

// TakeDisconnectResetRequested consumes the disconnect edge.
func (p *TCPLinePump) TakeDisconnectResetRequested() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	requested := p.resetRequested
	p.resetRequested = false
	return requested
}

// Close stops the listener and drops any connected client without arming
// the reset edge.
func (p *TCPLinePump) Close() error {
	p.mu.Lock()
	p.closed = true
	conn := p.conn
	p.conn = nil
	p.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
	return p.listener.Close()
}

// NullLinePump is the transport used when the console is disabled.
type NullLinePump struct{}

func (NullLinePump) PollLines() []string                { return nil }
func (NullLinePump) SendOutputLines(lines []string)     {}
func (NullLinePump) TakeDisconnectResetRequested() bool { return false }
func (NullLinePump) Close() error                       { return nil }
