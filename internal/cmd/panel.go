package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alia5/rcpad/internal/log"
	"github.com/Alia5/rcpad/internal/panel"
	"github.com/Alia5/rcpad/internal/util"
)

// Panel opens the graphical control panel.
type Panel struct {
	Link        LinkOptions `embed:"" prefix:"link."`
	Width       int         `help:"Window width in pixels" default:"960" env:"RCPAD_PANEL_WIDTH"`
	Height      int         `help:"Window height in pixels" default:"540" env:"RCPAD_PANEL_HEIGHT"`
	Fullscreen  bool        `help:"Start in fullscreen" env:"RCPAD_PANEL_FULLSCREEN"`
	MaxDistance float64     `help:"Joystick reach in pixels; 0 means 15% of the window width" default:"0" env:"RCPAD_PANEL_MAX_DISTANCE"`
	Deadzone    float64     `help:"Joystick deadzone in pixels" default:"0" env:"RCPAD_PANEL_DEADZONE"`
}

// Validate is called by Kong after parsing.
func (p *Panel) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", p.Width, p.Height)
	}
	if err := validateStick(p.MaxDistance, p.Deadzone, float64(p.Width)*0.15); err != nil {
		return err
	}
	return p.Link.validate()
}

// Run is called by Kong when the panel command is executed.
func (p *Panel) Run(logger *slog.Logger, traffic *log.TokenLogger) error {
	if util.LaunchedFromDesktop(logger) {
		util.HideConsole(logger)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := p.Link.open(logger, traffic)
	defer m.Close()

	logger.Info("panel starting", "address", p.Link.Address)
	return panel.Run(ctx, panel.Config{
		Title:       "rcpad - " + p.Link.Address,
		Width:       p.Width,
		Height:      p.Height,
		Fullscreen:  p.Fullscreen,
		MaxDistance: p.MaxDistance,
		Deadzone:    p.Deadzone,
	}, m, logger.With("component", "panel"))
}

// validateStick checks the joystick settings. A zero maxDistance stands for
// auto, the reach the layout will pick; pass auto as 0 when it is not known yet.
func validateStick(maxDistance, deadzone, auto float64) error {
	if maxDistance < 0 {
		return fmt.Errorf("max-distance must not be negative, got %v", maxDistance)
	}
	if deadzone < 0 {
		return fmt.Errorf("deadzone must not be negative, got %v", deadzone)
	}
	reach := maxDistance
	if reach == 0 {
		reach = auto
	}
	if reach > 0 && deadzone >= reach {
		return fmt.Errorf("deadzone %v must be smaller than the joystick reach %v", deadzone, reach)
	}
	return nil
}
