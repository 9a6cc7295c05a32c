package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alia5/rcpad/internal/log"
	"github.com/Alia5/rcpad/internal/term"
)

// Term runs the control panel inside the terminal.
type Term struct {
	Link        LinkOptions   `embed:"" prefix:"link."`
	MaxDistance float64       `help:"Joystick reach in columns; 0 picks 15% of the terminal width" default:"0" env:"RCPAD_TERM_MAX_DISTANCE"`
	Deadzone    float64       `help:"Joystick deadzone in columns" default:"0" env:"RCPAD_TERM_DEADZONE"`
	Refresh     time.Duration `help:"Redraw interval" default:"16ms" env:"RCPAD_TERM_REFRESH"`
}

// Validate is called by Kong after parsing.
func (t *Term) Validate() error {
	// the auto reach depends on the terminal size and is checked at startup
	if err := validateStick(t.MaxDistance, t.Deadzone, 0); err != nil {
		return err
	}
	return t.Link.validate()
}

// Run is called by Kong when the term command is executed. The logger it gets
// writes to the log file only; the token log is kept only with a raw file.
func (t *Term) Run(opts log.Options, logger *slog.Logger, traffic *log.TokenLogger) error {
	if opts.RawFile == "" {
		traffic = log.NewTokenLogger(nil)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := t.Link.open(logger, traffic)
	defer m.Close()

	return term.Run(ctx, term.Config{
		MaxDistance: t.MaxDistance,
		Deadzone:    t.Deadzone,
		Refresh:     t.Refresh,
	}, m, logger.With("component", "term"))
}
