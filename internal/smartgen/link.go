// Package smartgen maintains the persistent TCP link to the SmartGen
// Mini RDS encoder. The encoder speaks a line-oriented ASCII protocol
// ("TEXT=...\r\n" answered by "OK" or "NO"); after any failed exchange
// the line state is indeterminate, so the link is torn down and rebuilt
// rather than trusted.
package smartgen

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/genricoloni/rdsrelay/internal/domain"
	"go.uber.org/zap"
)

const responseBufSize = 1024

// Options configures the encoder link
type Options struct {
	// Addr is the encoder's host:port
	Addr string
	// DialTimeout bounds a single connect attempt
	DialTimeout time.Duration
	// ResponseTimeout bounds each write and response read
	ResponseTimeout time.Duration
	// InitialBackoff is the delay after the first failed connect
	InitialBackoff time.Duration
	// MaxBackoff caps the doubling backoff between connect attempts
	MaxBackoff time.Duration
	// IdleInterval is the poll interval while the link is healthy
	IdleInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.DialTimeout == 0 {
		o.DialTimeout = 5 * time.Second
	}
	if o.ResponseTimeout == 0 {
		o.ResponseTimeout = 5 * time.Second
	}
	if o.InitialBackoff == 0 {
		o.InitialBackoff = time.Second
	}
	if o.MaxBackoff == 0 {
		o.MaxBackoff = 60 * time.Second
	}
	if o.IdleInterval == 0 {
		o.IdleInterval = time.Second
	}
	return o
}

// dialFunc abstracts the TCP dial for testability
type dialFunc func(addr string, timeout time.Duration) (net.Conn, error)

// Manager owns the single socket to the encoder and keeps it alive with
// exponential backoff. Command exchanges are serialized so no two ever
// interleave on the wire.
type Manager struct {
	logger *zap.Logger
	opts   Options
	clock  Clock
	dial   dialFunc

	// sendMu serializes command/response exchanges; callers queue FIFO
	sendMu sync.Mutex

	mu      sync.Mutex
	running bool
	state   domain.ConnectionState
	conn    net.Conn
	ready   chan struct{} // closed while Connected, re-armed on teardown
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewManager creates an encoder link manager. Start must be called
// before the link will connect.
func NewManager(logger *zap.Logger, opts Options) *Manager {
	return &Manager{
		logger: logger,
		opts:   opts.withDefaults(),
		clock:  systemClock{},
		dial: func(addr string, timeout time.Duration) (net.Conn, error) {
			return net.DialTimeout("tcp", addr, timeout)
		},
		state:  domain.StateDisconnected,
		ready:  make(chan struct{}),
		stopCh: make(chan struct{}),
	}
}

// Start launches the background reconnect loop. Calling Start again
// while the loop is running is a no-op.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.mu.Unlock()

	m.wg.Add(1)
	go m.manageConnection()

	m.logger.Info("Encoder link started", zap.String("addr", m.opts.Addr))
}

// Stop signals the reconnect loop to exit, closes the socket and waits
// for the loop to terminate. Errors while closing are logged, never
// escalated.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.teardownLocked()
	m.mu.Unlock()

	m.wg.Wait()
	m.logger.Info("Encoder link stopped")
}

// IsConnected reports whether the link is currently up
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == domain.StateConnected
}

// State returns a snapshot of the link state
func (m *Manager) State() domain.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// WaitForConnection blocks until the link is Connected, the manager is
// stopped, or the timeout elapses. It returns false on timeout without
// side effects.
func (m *Manager) WaitForConnection(timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		m.mu.Lock()
		if m.state == domain.StateConnected {
			m.mu.Unlock()
			return true
		}
		ready := m.ready
		stop := m.stopCh
		m.mu.Unlock()

		select {
		case <-ready:
			// Re-check the state: the link may already be down again
		case <-stop:
			return false
		case <-deadline.C:
			return false
		}
	}
}

// SendCommand performs one command/response exchange with the encoder.
// The line is written as ASCII with non-ASCII bytes dropped. A "NO"
// first response line or a last non-empty line other than "OK" is a
// protocol rejection; any I/O failure is a transport error. Both tear
// the connection down before returning.
func (m *Manager) SendCommand(name, value string) error {
	m.sendMu.Lock()
	defer m.sendMu.Unlock()

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return domain.NewCommandError(name, domain.ErrTransport,
			errors.New("encoder link is not connected"))
	}

	cmd := domain.Command{Name: name, Value: value}
	m.logger.Info("Sending to encoder",
		zap.String("command", cmd.Name),
		zap.String("value", cmd.Value))

	if err := conn.SetDeadline(time.Now().Add(m.opts.ResponseTimeout)); err != nil {
		m.disconnect("deadline error", err)
		return domain.NewCommandError(name, domain.ErrTransport, err)
	}
	if _, err := conn.Write([]byte(stripNonASCII(cmd.Line()))); err != nil {
		m.disconnect("write failed", err)
		return domain.NewCommandError(name, domain.ErrTransport, err)
	}

	buf := make([]byte, responseBufSize)
	n, err := conn.Read(buf)
	if err != nil {
		m.disconnect("read failed", err)
		return domain.NewCommandError(name, domain.ErrTransport, err)
	}

	response := strings.TrimSpace(stripNonASCII(string(buf[:n])))
	m.logger.Debug("Encoder response", zap.String("response", response))

	lines := splitLines(response)
	if len(lines) == 0 {
		m.disconnect("empty response", nil)
		return domain.NewCommandError(name, domain.ErrRejected,
			errors.New("empty response from encoder"))
	}
	if lines[0] == "NO" {
		m.disconnect("command rejected", nil)
		return domain.NewCommandError(name, domain.ErrRejected,
			fmt.Errorf("encoder rejected %s=%s", name, value))
	}
	if lines[len(lines)-1] != "OK" {
		m.disconnect("unexpected response", nil)
		return domain.NewCommandError(name, domain.ErrRejected,
			fmt.Errorf("unexpected response %q", response))
	}
	return nil
}

// manageConnection keeps the socket alive until Stop. Dial failures back
// off exponentially up to the configured cap; a successful connect
// resets the backoff and wakes any WaitForConnection callers.
func (m *Manager) manageConnection() {
	defer m.wg.Done()

	backoff := m.opts.InitialBackoff
	for {
		select {
		case <-m.stopCh:
			return
		default:
		}

		if m.IsConnected() {
			select {
			case <-m.stopCh:
				return
			case <-m.clock.After(m.opts.IdleInterval):
			}
			continue
		}

		m.setState(domain.StateConnecting)
		conn, err := m.dial(m.opts.Addr, m.opts.DialTimeout)
		if err != nil {
			m.setState(domain.StateDisconnected)
			m.logger.Error("Failed to connect to encoder",
				zap.String("addr", m.opts.Addr),
				zap.Duration("retry_in", backoff),
				zap.Error(err))
			select {
			case <-m.stopCh:
				return
			case <-m.clock.After(backoff):
			}
			backoff = minDuration(backoff*2, m.opts.MaxBackoff)
			continue
		}

		m.mu.Lock()
		select {
		case <-m.stopCh:
			// Stopped while dialing; do not resurrect the link
			m.mu.Unlock()
			if closeErr := conn.Close(); closeErr != nil {
				m.logger.Warn("Failed to close encoder connection", zap.Error(closeErr))
			}
			return
		default:
		}
		m.conn = conn
		m.state = domain.StateConnected
		close(m.ready) // wake WaitForConnection callers
		m.mu.Unlock()

		backoff = m.opts.InitialBackoff
		m.logger.Info("Connected to encoder", zap.String("addr", m.opts.Addr))
	}
}

// disconnect tears the connection down after a failed exchange so the
// reconnect loop rebuilds it from scratch.
func (m *Manager) disconnect(reason string, err error) {
	m.logger.Warn("Closing encoder connection",
		zap.String("reason", reason),
		zap.Error(err))

	m.mu.Lock()
	m.teardownLocked()
	m.mu.Unlock()
}

// teardownLocked closes the socket and reverts to Disconnected. The
// caller must hold mu. Close errors are logged and nothing more.
func (m *Manager) teardownLocked() {
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			m.logger.Warn("Failed to close encoder connection", zap.Error(err))
		}
		m.conn = nil
	}
	if m.state == domain.StateConnected {
		// Re-arm the readiness signal for the next connect
		m.ready = make(chan struct{})
	}
	m.state = domain.StateDisconnected
}

func (m *Manager) setState(state domain.ConnectionState) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

// stripNonASCII drops bytes outside the ASCII range instead of failing
// on them, matching the encoder's charset expectations.
func stripNonASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
}

// splitLines returns the non-empty trimmed lines of a response chunk
func splitLines(response string) []string {
	var lines []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
