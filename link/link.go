// Package link keeps a single outbound text channel to the remote controller
// alive.
//
// A Manager cycles Connecting -> Open -> Closed -> Connecting forever. Every
// close schedules exactly one reconnect after a fixed delay; transport errors
// are only logged, the close that follows them drives recovery. The greeting
// token is sent each time a connection opens so the remote side can detect a
// fresh session.
//
// Only one transport is referenced at a time. Calling Connect again replaces
// it (last connect wins) and reactions from replaced transports are ignored.
package link

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Alia5/rcpad/token"
)

var (
	// ErrNotOpen is returned by Send while the link is not open.
	ErrNotOpen = errors.New("link not open")
	// ErrClosed is returned after the manager has been shut down.
	ErrClosed = errors.New("link manager closed")
)

// Status is the link lifecycle state.
type Status int32

const (
	// StatusIdle is the state before the first Connect.
	StatusIdle Status = iota
	StatusConnecting
	StatusOpen
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// Config controls reconnect timing and the greeting.
type Config struct {
	ReconnectDelay time.Duration
	Greeting       string
	// Clock defaults to the wall clock.
	Clock Clock
	// Traffic, if set, sees every sent and received token.
	Traffic TrafficLogger
}

func defaultConfig() Config {
	return Config{
		ReconnectDelay: 2 * time.Second,
		Greeting:       token.Hello,
		Clock:          realClock{},
	}
}

// Manager owns the link lifecycle. It is safe for concurrent use: the UI
// goroutine, the transport's reader and the reconnect timer all go through
// the same mutex, so each reaction runs to completion before the next.
type Manager struct {
	dialer Dialer
	cfg    Config
	logger *slog.Logger

	// OnMessage receives inbound text. Nil means ignore.
	OnMessage func(text string)
	// OnStatus observes status transitions. It is called with the manager
	// lock held and must not call back into the Manager.
	OnStatus func(Status)

	mu       sync.Mutex
	status   Status
	address  string
	current  Transport
	gen      uint64
	retry    Timer
	shutdown bool
}

// New creates a manager. A nil cfg uses a 2s reconnect delay and the "hello"
// greeting; zero fields of a non-nil cfg fall back to the same defaults.
func New(dialer Dialer, cfg *Config, logger *slog.Logger) *Manager {
	c := defaultConfig()
	if cfg != nil {
		if cfg.ReconnectDelay > 0 {
			c.ReconnectDelay = cfg.ReconnectDelay
		}
		if cfg.Greeting != "" {
			c.Greeting = cfg.Greeting
		}
		if cfg.Clock != nil {
			c.Clock = cfg.Clock
		}
		c.Traffic = cfg.Traffic
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{dialer: dialer, cfg: c, logger: logger}
}

// Status returns the current link state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Address returns the address of the last Connect call.
func (m *Manager) Address() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.address
}

// Connect opens a new transport to address and returns without waiting for it.
// Any previously referenced transport is closed and forgotten.
func (m *Manager) Connect(address string) error {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return ErrClosed
	}

	m.gen++
	gen := m.gen
	prev := m.current
	m.current = nil
	m.address = address
	m.setStatus(StatusConnecting)
	m.logger.Debug("link connecting", "address", address)

	t, err := m.dialer.Dial(address, m.reactions(gen))
	if err != nil {
		m.logger.Error("link dial failed", "address", address, "error", err)
		m.setStatus(StatusClosed)
		m.scheduleLocked()
	} else {
		m.current = t
	}
	m.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", address, err)
	}
	return nil
}

// Send forwards text verbatim to the current transport.
func (m *Manager) Send(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shutdown {
		return ErrClosed
	}
	if m.status != StatusOpen || m.current == nil {
		return ErrNotOpen
	}
	return m.sendLocked(text)
}

// Close stops reconnecting and closes the current transport.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return nil
	}
	m.shutdown = true
	m.gen++
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
	t := m.current
	m.current = nil
	m.setStatus(StatusClosed)
	m.mu.Unlock()

	if t != nil {
		return t.Close()
	}
	return nil
}

func (m *Manager) reactions(gen uint64) Reactions {
	return Reactions{
		OnOpen:    func() { m.handleOpen(gen) },
		OnMessage: func(text string) { m.handleMessage(gen, text) },
		OnError:   func(err error) { m.handleError(gen, err) },
		OnClose:   func(err error) { m.handleClose(gen, err) },
	}
}

func (m *Manager) handleOpen(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen || m.current == nil {
		return
	}
	m.setStatus(StatusOpen)
	m.logger.Info("link open", "address", m.address)
	if err := m.sendLocked(m.cfg.Greeting); err != nil {
		m.logger.Warn("link greeting failed", "error", err)
	}
}

func (m *Manager) handleMessage(gen uint64, text string) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	if m.cfg.Traffic != nil {
		m.cfg.Traffic.Log(true, text)
	}
	hook := m.OnMessage
	m.mu.Unlock()

	if hook != nil {
		hook(text)
	}
}

func (m *Manager) handleError(gen uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	m.logger.Debug("link transport error", "address", m.address, "error", err)
}

func (m *Manager) handleClose(gen uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	m.current = nil
	m.setStatus(StatusClosed)
	m.logger.Info("link closed, reconnecting", "address", m.address, "delay", m.cfg.ReconnectDelay, "reason", err)
	m.scheduleLocked()
}

// scheduleLocked arms the single reconnect for the current address.
// The timer is not cancelled by a later successful connect.
func (m *Manager) scheduleLocked() {
	address := m.address
	m.retry = m.cfg.Clock.AfterFunc(m.cfg.ReconnectDelay, func() {
		if err := m.Connect(address); err != nil && !errors.Is(err, ErrClosed) {
			m.logger.Debug("link reconnect failed", "address", address, "error", err)
		}
	})
}

func (m *Manager) sendLocked(text string) error {
	if err := m.current.Send(text); err != nil {
		return err
	}
	if m.cfg.Traffic != nil {
		m.cfg.Traffic.Log(false, text)
	}
	return nil
}

func (m *Manager) setStatus(s Status) {
	if m.status == s {
		return
	}
	m.status = s
	if m.OnStatus != nil {
		m.OnStatus(s)
	}
}
