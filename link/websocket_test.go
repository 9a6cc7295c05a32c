package link_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Alia5/rcpad/link"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoServer struct {
	*httptest.Server
	mu       sync.Mutex
	received []string
	conns    chan *websocket.Conn
}

func newEchoServer(t *testing.T) *echoServer {
	t.Helper()
	s := &echoServer{conns: make(chan *websocket.Conn, 4)}
	upgrader := websocket.Upgrader{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.conns <- conn
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			s.mu.Lock()
			s.received = append(s.received, string(data))
			s.mu.Unlock()
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *echoServer) url() string {
	return "ws" + strings.TrimPrefix(s.URL, "http") + "/"
}

func (s *echoServer) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.received...)
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{name: "default", address: "ws://192.168.4.1:1024/"},
		{name: "secure", address: "wss://car.local/ws"},
		{name: "http scheme", address: "http://192.168.4.1:1024/", wantErr: true},
		{name: "no host", address: "ws:///path", wantErr: true},
		{name: "garbage", address: "::not a url", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := link.ValidateAddress(tt.address)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWebSocketDialRejectsBadAddress(t *testing.T) {
	d := link.NewWebSocketDialer()
	_, err := d.Dial("http://example.com/", link.Reactions{})
	assert.Error(t, err)
}

func TestWebSocketRoundTrip(t *testing.T) {
	srv := newEchoServer(t)

	opened := make(chan struct{}, 1)
	closed := make(chan error, 1)
	inbound := make(chan string, 1)
	r := link.Reactions{
		OnOpen:    func() { opened <- struct{}{} },
		OnMessage: func(text string) { inbound <- text },
		OnClose:   func(err error) { closed <- err },
	}

	tr, err := link.NewWebSocketDialer().Dial(srv.url(), r)
	require.NoError(t, err)

	select {
	case <-opened:
	case <-time.After(5 * time.Second):
		t.Fatal("transport never opened")
	}

	require.NoError(t, tr.Send("M0.5,0"))
	require.Eventually(t, func() bool {
		return len(srv.messages()) == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"M0.5,0"}, srv.messages())

	server := <-srv.conns
	require.NoError(t, server.WriteMessage(websocket.TextMessage, []byte("pong")))
	select {
	case got := <-inbound:
		assert.Equal(t, "pong", got)
	case <-time.After(5 * time.Second):
		t.Fatal("no inbound message")
	}

	require.NoError(t, tr.Close())
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("close reaction never fired")
	}
	assert.Error(t, tr.Send("STOP_M"))
}

func TestWebSocketDialFailureCloses(t *testing.T) {
	srv := newEchoServer(t)
	address := srv.url()
	srv.Close()

	var mu sync.Mutex
	var errs, closes int
	r := link.Reactions{
		OnError: func(error) { mu.Lock(); errs++; mu.Unlock() },
		OnClose: func(error) { mu.Lock(); closes++; mu.Unlock() },
	}
	_, err := link.NewWebSocketDialer().Dial(address, r)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return closes == 1
	}, 5*time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, errs)
	mu.Unlock()
}

func TestManagerOverWebSocket(t *testing.T) {
	srv := newEchoServer(t)
	m := link.New(link.NewWebSocketDialer(), nil, quietLogger())
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, m.Connect(srv.url()))
	require.Eventually(t, func() bool {
		return m.Status() == link.StatusOpen
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Send("hl1"))
	require.Eventually(t, func() bool {
		return len(srv.messages()) == 2
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"hello", "hl1"}, srv.messages())
}
