// Package log builds the process-wide slog.Logger and the optional token log.
//
// Without a log file, records below error go to stdout and errors go to
// stderr. With a log file, everything is written to the file and mirrored to
// stderr. Front-ends that own the terminal ask for no console output at all.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace sits below Debug and also enables the token log on stdout.
const LevelTrace slog.Level = -8

// ParseLevel maps a level name to a slog.Level. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MultiHandler fans out records to multiple handlers.
type MultiHandler struct{ hs []slog.Handler }

func (m MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.hs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		_ = h.Handle(ctx, r.Clone())
	}
	return nil
}

func (m MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithAttrs(attrs)
	}
	return MultiHandler{hs: out}
}

func (m MultiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithGroup(name)
	}
	return MultiHandler{hs: out}
}

// LevelFilter passes only the levels accepted by pass to h.
type LevelFilter struct {
	pass func(slog.Level) bool
	h    slog.Handler
}

func (f LevelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	return f.pass(level) && f.h.Enabled(ctx, level)
}

func (f LevelFilter) Handle(ctx context.Context, r slog.Record) error {
	if !f.pass(r.Level) {
		return nil
	}
	return f.h.Handle(ctx, r)
}

func (f LevelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithAttrs(attrs)}
}

func (f LevelFilter) WithGroup(name string) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithGroup(name)}
}

// Output selects where SetupLogger writes. Zero fields mean the process
// streams.
type Output struct {
	Stdout io.Writer
	Stderr io.Writer
	// NoConsole keeps records off both streams. Only the log file, if any,
	// receives them.
	NoConsole bool
}

// SetupLoggerTo builds a logger for the given level name and optional log
// file, writing console output as out says. The returned closers must be
// closed on exit.
func SetupLoggerTo(out Output, logLevel, logFile string) (*slog.Logger, []io.Closer, error) {
	stdout, stderr := out.Stdout, out.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	level := ParseLevel(logLevel)

	var handlers []slog.Handler
	var closers []io.Closer
	switch {
	case logFile == "" && out.NoConsole:
		return slog.New(slog.DiscardHandler), nil, nil
	case logFile == "":
		handlers = append(handlers,
			LevelFilter{
				pass: func(l slog.Level) bool { return l < slog.LevelError },
				h:    slog.NewTextHandler(stdout, &slog.HandlerOptions{Level: level}),
			},
			LevelFilter{
				pass: func(l slog.Level) bool { return l >= slog.LevelError },
				h:    slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelError}),
			},
		)
	default:
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, f)
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
		if !out.NoConsole {
			handlers = append(handlers, slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
		}
	}
	return slog.New(MultiHandler{hs: handlers}), closers, nil
}

// Options are the logging flags shared by every command.
type Options struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"RCPAD_LOG_LEVEL"`
	File    string `help:"Write logs to this file (and stderr, except for term) instead of stdout" env:"RCPAD_LOG_FILE"`
	RawFile string `help:"Write every token sent or received to this file" env:"RCPAD_LOG_RAW_FILE"`
}
