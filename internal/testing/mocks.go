// Package testing holds test doubles shared across packages.
package testing

import (
	"io"
	"log/slog"
	"sync"

	"github.com/Alia5/rcpad/link"
)

// Recorder is a token sink that remembers everything sent to it. Setting Err
// makes Send fail without recording.
type Recorder struct {
	mu   sync.Mutex
	sent []string
	Err  error
}

func (r *Recorder) Send(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, text)
	return nil
}

// Tokens returns a copy of the tokens sent so far.
func (r *Recorder) Tokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

// Link is a Recorder that also reports a link status and a fixed address.
// State may be changed later with SetStatus.
type Link struct {
	Recorder
	State link.Status
	Addr  string

	statusMu sync.Mutex
}

func (l *Link) Status() link.Status {
	l.statusMu.Lock()
	defer l.statusMu.Unlock()
	return l.State
}

func (l *Link) SetStatus(s link.Status) {
	l.statusMu.Lock()
	l.State = s
	l.statusMu.Unlock()
}

func (l *Link) Address() string { return l.Addr }

// Quiet returns a logger that discards everything.
func Quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
