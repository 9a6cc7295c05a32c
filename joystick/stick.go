// Package joystick maps pointer drags on a virtual joystick to a normalized
// control vector and emits it as move tokens.
//
// A Stick tracks one drag session at a time. The drag offset is clamped to
// MaxDistance, a deadzone around the origin is cut out and the remaining range
// is stretched back to full scale, so the vector reaches magnitude 1 exactly at
// the physical edge of the joystick.
//
// A Stick is not safe for concurrent use. Front-ends drive it from their single
// input goroutine.
package joystick

import (
	"math"
	"strconv"

	"github.com/Alia5/rcpad/token"
)

// Sender is the outbound capability the joystick writes tokens to.
type Sender interface {
	Send(text string) error
}

// Follow selects how the visual handle tracks offset changes.
type Follow uint8

const (
	// FollowInstant moves the handle without easing (while dragging).
	FollowInstant Follow = iota
	// FollowEased animates the handle to its new offset (return to centre).
	FollowEased
)

// Handle is the draggable visual part of the joystick.
type Handle interface {
	SetFollow(f Follow)
	// SetOffset positions the handle relative to its rest position, in pixels.
	SetOffset(x, y float64)
}

// Vector is the control output. Both axes are in [-1, 1]; Y is positive up.
type Vector struct {
	X, Y float64
}

// session is the drag state. When active is false, origin and tracked are nil.
type session struct {
	active  bool
	origin  *Point
	tracked *TouchID
}

// Stick is one virtual joystick.
type Stick struct {
	handle Handle
	cfg    Config
	out    Sender

	s     session
	value Vector
}

// New creates a joystick. It returns ErrInvalidConfig when cfg fails Validate.
// handle and out may be nil.
func New(handle Handle, cfg Config, out Sender) (*Stick, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Format == nil {
		cfg.Format = defaultFormat
	}
	return &Stick{handle: handle, cfg: cfg, out: out}, nil
}

// Config returns the joystick geometry.
func (s *Stick) Config() Config { return s.cfg }

// Vector returns the last computed control vector.
func (s *Stick) Vector() Vector { return s.value }

// Active reports whether a drag session is in progress.
func (s *Stick) Active() bool { return s.s.active }

// Origin returns the press position of the current session.
func (s *Stick) Origin() (Point, bool) {
	if s.s.origin == nil {
		return Point{}, false
	}
	return *s.s.origin, true
}

// TrackedID returns the touch contact the current session is bound to.
func (s *Stick) TrackedID() (TouchID, bool) {
	if s.s.tracked == nil {
		return 0, false
	}
	return *s.s.tracked, true
}

// Press starts a drag session. It returns false and changes nothing when a
// session is already active or the event carries no position. A true result
// means the event belongs to the joystick and must not be handled elsewhere.
func (s *Stick) Press(ev Event) bool {
	if s.s.active {
		return false
	}

	var origin Point
	switch ev.Kind {
	case Mouse:
		origin = Point{X: ev.X, Y: ev.Y}
	case Touch:
		if len(ev.Contacts) == 0 {
			return false
		}
		first := ev.Contacts[0]
		origin = Point{X: first.X, Y: first.Y}
		id := first.ID
		s.s.tracked = &id
	default:
		return false
	}

	s.s.origin = &origin
	s.s.active = true
	if s.handle != nil {
		s.handle.SetFollow(FollowInstant)
	}
	return true
}

// Move recomputes the vector from the current pointer position and sends it.
// Events from other pointers than the one that started the session are ignored.
func (s *Stick) Move(ev Event) error {
	p, ok := s.position(ev)
	if !ok {
		return nil
	}

	dx := p.X - s.s.origin.X
	dy := p.Y - s.s.origin.Y
	angle := math.Atan2(dy, dx)
	distance := math.Min(s.cfg.MaxDistance, math.Hypot(dx, dy))
	cos, sin := math.Cos(angle), math.Sin(angle)

	if s.handle != nil {
		s.handle.SetOffset(distance*cos, distance*sin)
	}

	effective := remap(distance, s.cfg.MaxDistance, s.cfg.Deadzone)
	s.value = Vector{
		X: round4(effective * cos / s.cfg.MaxDistance),
		Y: round4(-effective * sin / s.cfg.MaxDistance),
	}
	return s.send(s.cfg.Format(s.value))
}

// Release ends the session, recentres the handle and sends the stop token.
func (s *Stick) Release(ev Event) error {
	if !s.s.active || !s.owns(ev) {
		return nil
	}

	if s.handle != nil {
		s.handle.SetFollow(FollowEased)
		s.handle.SetOffset(0, 0)
	}
	s.value = Vector{}
	s.s = session{}
	return s.send(token.StopMove)
}

// owns reports whether ev comes from the pointer that started the session.
func (s *Stick) owns(ev Event) bool {
	if s.s.tracked == nil {
		return ev.Kind == Mouse
	}
	if ev.Kind != Touch {
		return false
	}
	_, ok := ev.contact(*s.s.tracked)
	return ok
}

// position returns the tracked pointer position carried by ev.
func (s *Stick) position(ev Event) (Point, bool) {
	if !s.s.active || !s.owns(ev) {
		return Point{}, false
	}
	if s.s.tracked == nil {
		return Point{X: ev.X, Y: ev.Y}, true
	}
	c, _ := ev.contact(*s.s.tracked)
	return Point{X: c.X, Y: c.Y}, true
}

func (s *Stick) send(text string) error {
	if s.out == nil {
		return nil
	}
	return s.out.Send(text)
}

// remap cuts the deadzone out of [0, limit] and stretches [deadzone, limit]
// back onto [0, limit].
func remap(distance, limit, deadzone float64) float64 {
	if distance < deadzone {
		return 0
	}
	return limit / (limit - deadzone) * (distance - deadzone)
}

// round4 rounds the exact binary value to 4 decimal places, so near-ties such
// as 0.56785 (stored just below) round down. It never returns negative zero.
func round4(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 4, 64), 64)
	if err != nil || r == 0 {
		return 0
	}
	return r
}
