package link

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketDialer opens WebSocket transports with gorilla/websocket.
type WebSocketDialer struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

// NewWebSocketDialer returns a dialer with 5s handshake and write timeouts.
func NewWebSocketDialer() *WebSocketDialer {
	return &WebSocketDialer{
		HandshakeTimeout: 5 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}

// ValidateAddress checks that address is an absolute ws:// or wss:// URL.
func ValidateAddress(address string) error {
	u, err := url.Parse(address)
	if err != nil {
		return fmt.Errorf("invalid link address %q: %w", address, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("invalid link address %q: scheme must be ws or wss", address)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid link address %q: missing host", address)
	}
	return nil
}

// Dial starts the handshake in the background and returns immediately.
func (d *WebSocketDialer) Dial(address string, r Reactions) (Transport, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &wsTransport{
		address:      address,
		writeTimeout: d.WriteTimeout,
		cancel:       cancel,
	}
	go t.run(ctx, d.HandshakeTimeout, r)
	return t, nil
}

type wsTransport struct {
	address      string
	writeTimeout time.Duration
	cancel       context.CancelFunc

	mu     sync.Mutex // guards conn and closed
	conn   *websocket.Conn
	closed bool

	wmu sync.Mutex // serializes writes
}

func (t *wsTransport) run(ctx context.Context, handshakeTimeout time.Duration, r Reactions) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, t.address, nil)
	if err != nil {
		fire(r.OnError, err)
		fire(r.OnClose, err)
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		_ = conn.Close()
		fire(r.OnClose, net.ErrClosed)
		return
	}
	t.conn = conn
	t.mu.Unlock()

	if r.OnOpen != nil {
		r.OnOpen()
	}

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !t.isClosed() {
				fire(r.OnError, err)
			}
			fire(r.OnClose, err)
			return
		}
		if kind == websocket.TextMessage && r.OnMessage != nil {
			r.OnMessage(string(data))
		}
	}
}

func (t *wsTransport) Send(text string) error {
	t.mu.Lock()
	conn := t.conn
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return net.ErrClosed
	}
	if conn == nil {
		return errors.New("websocket not connected")
	}

	t.wmu.Lock()
	defer t.wmu.Unlock()
	if t.writeTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	}
	return conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (t *wsTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn := t.conn
	t.mu.Unlock()

	t.cancel()
	if conn == nil {
		return nil
	}
	t.wmu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "closing"),
		time.Now().Add(500*time.Millisecond))
	t.wmu.Unlock()
	return conn.Close()
}

func (t *wsTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func fire(f func(error), err error) {
	if f != nil {
		f(err)
	}
}
