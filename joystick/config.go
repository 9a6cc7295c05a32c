package joystick

import (
	"errors"
	"fmt"
	"math"

	"github.com/Alia5/rcpad/token"
)

// ErrInvalidConfig wraps every Config.Validate failure.
var ErrInvalidConfig = errors.New("invalid joystick config")

// Config describes the geometry of one virtual joystick, in pixels.
type Config struct {
	// MaxDistance is the drag distance that produces full deflection.
	MaxDistance float64
	// Deadzone is the radius around the origin in which movement is ignored.
	// Must satisfy 0 <= Deadzone < MaxDistance.
	Deadzone float64
	// Format renders a vector as a move token. Defaults to token.Move.
	Format func(Vector) string
}

// Validate reports whether the geometry can produce finite vectors.
func (c Config) Validate() error {
	switch {
	case math.IsNaN(c.MaxDistance) || math.IsInf(c.MaxDistance, 0) || c.MaxDistance <= 0:
		return fmt.Errorf("%w: max distance must be a positive number, got %v", ErrInvalidConfig, c.MaxDistance)
	case math.IsNaN(c.Deadzone) || c.Deadzone < 0:
		return fmt.Errorf("%w: deadzone must not be negative, got %v", ErrInvalidConfig, c.Deadzone)
	case c.Deadzone >= c.MaxDistance:
		return fmt.Errorf("%w: deadzone (%v) must be smaller than max distance (%v)", ErrInvalidConfig, c.Deadzone, c.MaxDistance)
	}
	return nil
}

func defaultFormat(v Vector) string {
	return token.Move(v.X, v.Y)
}
