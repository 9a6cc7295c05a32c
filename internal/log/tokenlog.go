package log

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// TokenLogger writes one timestamped line per token crossing the link.
// It satisfies link.TrafficLogger.
type TokenLogger struct {
	w   io.Writer
	now func() time.Time

	mu sync.Mutex
}

// NewTokenLogger returns a logger writing to w. A nil w discards everything.
func NewTokenLogger(w io.Writer) *TokenLogger {
	return &TokenLogger{w: w, now: time.Now}
}

// Enabled reports whether lines are written anywhere.
func (l *TokenLogger) Enabled() bool { return l != nil && l.w != nil }

// Log writes "<time> RX <text>" for inbound and "<time> TX <text>" for
// outbound tokens.
func (l *TokenLogger) Log(in bool, text string) {
	if !l.Enabled() {
		return
	}
	dir := "TX"
	if in {
		dir = "RX"
	}
	line := fmt.Sprintf("%s %s %q\n", l.now().Format("2006/01/02 15:04:05.000"), dir, text)

	l.mu.Lock()
	_, _ = io.WriteString(l.w, line)
	l.mu.Unlock()
}
