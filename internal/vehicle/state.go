// Package vehicle simulates the onboard controller that receives panel tokens,
// so the panel can be driven without hardware.
package vehicle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Alia5/rcpad/internal/log"
	"github.com/Alia5/rcpad/link"
	"github.com/Alia5/rcpad/token"
)

// State is what the simulated vehicle currently does.
type State struct {
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Headlights bool      `json:"headlights"`
	LEDStrip   bool      `json:"ledStrip"`
	Armed      bool      `json:"armed"`
	Horn       bool      `json:"horn"`
	Up         bool      `json:"up"`
	Down       bool      `json:"down"`
	Left       bool      `json:"left"`
	Right      bool      `json:"right"`
	Sessions   int       `json:"sessions"`
	Clients    int       `json:"clients"`
	Tokens     uint64    `json:"tokens"`
	LastToken  time.Time `json:"lastToken,omitzero"`
}

// Vehicle applies tokens to a State. It is safe for concurrent use.
type Vehicle struct {
	logger  *slog.Logger
	traffic link.TrafficLogger
	now     func() time.Time

	mu    sync.Mutex
	state State
}

// New returns an idle vehicle. traffic may be nil.
func New(logger *slog.Logger, traffic link.TrafficLogger) *Vehicle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Vehicle{logger: logger, traffic: traffic, now: time.Now}
}

// Snapshot returns a copy of the current state.
func (v *Vehicle) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Apply parses one token and updates the state. Unknown or malformed tokens
// leave the state untouched and are returned as errors.
func (v *Vehicle) Apply(text string) error {
	if v.traffic != nil {
		v.traffic.Log(true, text)
	}
	cmd, err := token.Parse(text)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	s := &v.state
	s.Tokens++
	s.LastToken = v.now()

	switch cmd.Kind {
	case token.KindHello:
		s.Sessions++
		v.logger.Info("panel session started", "session", s.Sessions)
	case token.KindMove:
		s.X, s.Y = cmd.X, cmd.Y
		v.logger.Log(context.Background(), log.LevelTrace, "drive", "x", cmd.X, "y", cmd.Y)
	case token.KindStop:
		s.X, s.Y = 0, 0
		v.logger.Debug("drive stopped")
	case token.KindControl:
		flag := v.control(cmd.Control)
		if flag == nil {
			return fmt.Errorf("%w: %q", token.ErrUnknownToken, text)
		}
		*flag = cmd.On
		v.logger.Info("control", "name", cmd.Control, "on", cmd.On)
	}
	return nil
}

// Connected records a new client connection.
func (v *Vehicle) Connected() {
	v.mu.Lock()
	v.state.Clients++
	v.mu.Unlock()
}

// Disconnected records a lost client. When the last client is gone the
// vehicle is brought to a safe state: the drive vector is zeroed and momentary
// controls are released. Toggles such as headlights keep their state.
func (v *Vehicle) Disconnected() {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := &v.state
	if s.Clients > 0 {
		s.Clients--
	}
	if s.Clients > 0 {
		v.logger.Info("panel disconnected", "clients", s.Clients)
		return
	}
	s.X, s.Y = 0, 0
	s.Horn, s.Up, s.Down, s.Left, s.Right = false, false, false, false, false
	v.logger.Info("panel disconnected, vehicle stopped", "clients", s.Clients)
}

func (v *Vehicle) control(name string) *bool {
	s := &v.state
	switch name {
	case token.Headlights:
		return &s.Headlights
	case token.LEDStrip:
		return &s.LEDStrip
	case token.Arm:
		return &s.Armed
	case token.Horn:
		return &s.Horn
	case token.Up:
		return &s.Up
	case token.Down:
		return &s.Down
	case token.Left:
		return &s.Left
	case token.Right:
		return &s.Right
	}
	return nil
}
