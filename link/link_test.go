package link_test

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Alia5/rcpad/link"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	r      link.Reactions
	sent   []string
	closed bool
	err    error
}

func (t *fakeTransport) Send(text string) error {
	if t.err != nil {
		return t.err
	}
	t.sent = append(t.sent, text)
	return nil
}

func (t *fakeTransport) Close() error {
	t.closed = true
	return nil
}

type fakeDialer struct {
	mu        sync.Mutex
	dials     []*fakeTransport
	addresses []string
	err       error
}

func (d *fakeDialer) Dial(address string, r link.Reactions) (link.Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addresses = append(d.addresses, address)
	if d.err != nil {
		return nil, d.err
	}
	t := &fakeTransport{r: r}
	d.dials = append(d.dials, t)
	return t, nil
}

func (d *fakeDialer) last() *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials[len(d.dials)-1]
}

type fakeTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) link.Timer {
	t := &fakeTimer{delay: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// fire runs every pending timer once.
func (c *fakeClock) fire() {
	pending := c.timers
	c.timers = nil
	for _, t := range pending {
		if !t.stopped {
			t.f()
		}
	}
}

type trafficLog struct {
	in, out []string
}

func (l *trafficLog) Log(in bool, text string) {
	if in {
		l.in = append(l.in, text)
	} else {
		l.out = append(l.out, text)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newManager() (*link.Manager, *fakeDialer, *fakeClock) {
	d := &fakeDialer{}
	c := &fakeClock{}
	m := link.New(d, &link.Config{Clock: c}, quietLogger())
	return m, d, c
}

func TestConnectOpenSendsHello(t *testing.T) {
	m, d, _ := newManager()
	var seen []link.Status
	m.OnStatus = func(s link.Status) { seen = append(seen, s) }

	assert.Equal(t, link.StatusIdle, m.Status())
	require.NoError(t, m.Connect("ws://car/"))
	assert.Equal(t, link.StatusConnecting, m.Status())
	assert.Equal(t, "ws://car/", m.Address())

	tr := d.last()
	tr.r.OnOpen()
	assert.Equal(t, link.StatusOpen, m.Status())
	assert.Equal(t, []string{"hello"}, tr.sent)
	assert.Equal(t, []link.Status{link.StatusConnecting, link.StatusOpen}, seen)
}

func TestSendRequiresOpen(t *testing.T) {
	m, d, _ := newManager()
	assert.ErrorIs(t, m.Send("M0,0"), link.ErrNotOpen)

	require.NoError(t, m.Connect("ws://car/"))
	assert.ErrorIs(t, m.Send("M0,0"), link.ErrNotOpen)

	tr := d.last()
	tr.r.OnOpen()
	require.NoError(t, m.Send("M0.5,0"))
	require.NoError(t, m.Send("STOP_M"))
	assert.Equal(t, []string{"hello", "M0.5,0", "STOP_M"}, tr.sent)
}

func TestSendPassesTransportError(t *testing.T) {
	m, d, _ := newManager()
	require.NoError(t, m.Connect("ws://car/"))
	tr := d.last()
	tr.r.OnOpen()
	tr.err = errors.New("broken pipe")
	assert.EqualError(t, m.Send("hl1"), "broken pipe")
}

func TestCloseSchedulesOneReconnect(t *testing.T) {
	m, d, c := newManager()
	require.NoError(t, m.Connect("ws://car/"))
	first := d.last()
	first.r.OnOpen()

	first.r.OnClose(errors.New("network lost"))
	assert.Equal(t, link.StatusClosed, m.Status())
	require.Len(t, c.timers, 1)
	assert.Equal(t, 2000*time.Millisecond, c.timers[0].delay)
	assert.ErrorIs(t, m.Send("M0,0"), link.ErrNotOpen)
	assert.Len(t, d.dials, 1, "no reconnect before the delay")

	c.fire()
	require.Len(t, d.dials, 2)
	assert.Equal(t, link.StatusConnecting, m.Status())
	assert.Equal(t, []string{"ws://car/", "ws://car/"}, d.addresses)

	second := d.last()
	second.r.OnOpen()
	assert.Equal(t, link.StatusOpen, m.Status())
	assert.Equal(t, []string{"hello"}, second.sent)
}

func TestFailedConnectKeepsRetrying(t *testing.T) {
	m, d, c := newManager()
	require.NoError(t, m.Connect("ws://car/"))

	for i := 0; i < 5; i++ {
		tr := d.last()
		tr.r.OnError(errors.New("connection refused"))
		assert.Empty(t, c.timers, "errors alone do not schedule a retry")
		tr.r.OnClose(errors.New("connection refused"))
		require.Len(t, c.timers, 1)
		c.fire()
	}
	assert.Len(t, d.dials, 6)
}

func TestErrorDoesNotChangeState(t *testing.T) {
	m, d, c := newManager()
	require.NoError(t, m.Connect("ws://car/"))
	tr := d.last()
	tr.r.OnOpen()

	tr.r.OnError(errors.New("transient"))
	assert.Equal(t, link.StatusOpen, m.Status())
	assert.Empty(t, c.timers)
	require.NoError(t, m.Send("up1"))
}

func TestMessageHook(t *testing.T) {
	m, d, _ := newManager()
	var got []string
	m.OnMessage = func(text string) { got = append(got, text) }

	require.NoError(t, m.Connect("ws://car/"))
	tr := d.last()
	tr.r.OnOpen()
	tr.r.OnMessage("battery 11.9")
	assert.Equal(t, []string{"battery 11.9"}, got)
}

func TestMessageWithoutHookIsIgnored(t *testing.T) {
	m, d, _ := newManager()
	require.NoError(t, m.Connect("ws://car/"))
	tr := d.last()
	tr.r.OnOpen()
	assert.NotPanics(t, func() { tr.r.OnMessage("anything") })
}

func TestRedundantConnectLastWins(t *testing.T) {
	m, d, c := newManager()
	require.NoError(t, m.Connect("ws://car/"))
	first := d.last()
	first.r.OnClose(errors.New("refused"))
	require.Len(t, c.timers, 1)

	// a manual connect succeeds before the timer fires
	require.NoError(t, m.Connect("ws://car/"))
	manual := d.last()
	manual.r.OnOpen()
	assert.Equal(t, link.StatusOpen, m.Status())

	// the timer still fires and replaces the transport
	c.fire()
	require.Len(t, d.dials, 3)
	assert.True(t, manual.closed, "replaced transport is closed")
	assert.Equal(t, link.StatusConnecting, m.Status())

	// late reactions from the replaced transport are ignored
	manual.r.OnClose(errors.New("closed by replacement"))
	assert.Empty(t, c.timers)
	assert.Equal(t, link.StatusConnecting, m.Status())
	manual.r.OnOpen()
	assert.Equal(t, link.StatusConnecting, m.Status())

	latest := d.last()
	latest.r.OnOpen()
	assert.Equal(t, link.StatusOpen, m.Status())
	require.NoError(t, m.Send("ls1"))
	assert.Equal(t, []string{"hello", "ls1"}, latest.sent)
	assert.Equal(t, []string{"hello"}, manual.sent)
}

func TestDialErrorSchedulesRetry(t *testing.T) {
	m, d, c := newManager()
	d.err = errors.New("bad address")
	assert.Error(t, m.Connect("ws://car/"))
	assert.Equal(t, link.StatusClosed, m.Status())
	require.Len(t, c.timers, 1)

	d.err = nil
	c.fire()
	assert.Equal(t, link.StatusConnecting, m.Status())
	assert.Len(t, d.dials, 1)
}

func TestManagerClose(t *testing.T) {
	m, d, c := newManager()
	require.NoError(t, m.Connect("ws://car/"))
	tr := d.last()
	tr.r.OnClose(errors.New("refused"))
	require.Len(t, c.timers, 1)
	pending := c.timers[0]

	require.NoError(t, m.Close())
	assert.True(t, pending.stopped)
	assert.ErrorIs(t, m.Connect("ws://car/"), link.ErrClosed)
	assert.ErrorIs(t, m.Send("hl1"), link.ErrClosed)

	tr.r.OnOpen()
	assert.Equal(t, link.StatusClosed, m.Status())
	require.NoError(t, m.Close())
}

func TestTrafficLogging(t *testing.T) {
	d := &fakeDialer{}
	traffic := &trafficLog{}
	m := link.New(d, &link.Config{Clock: &fakeClock{}, Traffic: traffic}, quietLogger())

	require.NoError(t, m.Connect("ws://car/"))
	tr := d.last()
	tr.r.OnOpen()
	require.NoError(t, m.Send("horn1"))
	tr.r.OnMessage("ack")

	assert.Equal(t, []string{"hello", "horn1"}, traffic.out)
	assert.Equal(t, []string{"ack"}, traffic.in)
}

func TestCustomGreetingAndDelay(t *testing.T) {
	d := &fakeDialer{}
	c := &fakeClock{}
	m := link.New(d, &link.Config{Clock: c, Greeting: "hi", ReconnectDelay: 250 * time.Millisecond}, quietLogger())

	require.NoError(t, m.Connect("ws://car/"))
	tr := d.last()
	tr.r.OnOpen()
	assert.Equal(t, []string{"hi"}, tr.sent)

	tr.r.OnClose(nil)
	require.Len(t, c.timers, 1)
	assert.Equal(t, 250*time.Millisecond, c.timers[0].delay)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", link.StatusIdle.String())
	assert.Equal(t, "connecting", link.StatusConnecting.String())
	assert.Equal(t, "open", link.StatusOpen.String())
	assert.Equal(t, "closed", link.StatusClosed.String())
}
