package link

import "time"

// Transport is one physical connection to the remote controller.
type Transport interface {
	// Send writes one text message.
	Send(text string) error
	// Close tears the connection down. Reactions may still fire afterwards.
	Close() error
}

// Reactions are the lifecycle callbacks a Transport reports to.
// A Transport must invoke them asynchronously, never from inside Dial.
type Reactions struct {
	OnOpen    func()
	OnMessage func(text string)
	OnError   func(err error)
	OnClose   func(err error)
}

// Dialer opens transports. Dial must return without waiting for the
// connection to be established.
type Dialer interface {
	Dial(address string, r Reactions) (Transport, error)
}

// Timer is a scheduled callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// TrafficLogger records every token crossing the link.
// in is true for messages received from the remote side.
type TrafficLogger interface {
	Log(in bool, text string)
}
