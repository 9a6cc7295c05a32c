// Package pad routes raw pointer contacts from a front-end to the joystick
// and the discrete buttons.
//
// Every pointer (the mouse or one touch contact) that goes down on a button
// stays bound to that button until it is lifted, so the joystick never sees
// it. Pointers that go down on the joystick handle start a drag session;
// everything else is ignored.
package pad

import (
	"log/slog"

	"github.com/Alia5/rcpad/controls"
	"github.com/Alia5/rcpad/internal/layout"
	"github.com/Alia5/rcpad/joystick"
)

// Pointer identifies a contact. Touch contacts use their platform ID, which
// is never negative; the mouse is Mouse.
type Pointer int64

// Mouse is the pointer ID of the mouse cursor.
const Mouse Pointer = -1

// Sender is the outbound link capability.
type Sender interface {
	Send(text string) error
}

// Config tunes the joystick of a Pad.
type Config struct {
	// MaxDistance is the joystick reach. Zero uses the layout reach.
	MaxDistance float64
	Deadzone    float64
}

// Pad is the input model behind a front-end. It is not safe for concurrent
// use; front-ends call it from their input loop.
type Pad struct {
	Layout  layout.Layout
	Stick   *joystick.Stick
	Handle  *layout.Handle
	Buttons controls.Set

	logger *slog.Logger
	bound  map[Pointer]int
}

// New builds a pad over l with the standard button set sending to out.
func New(l layout.Layout, cfg Config, out Sender, logger *slog.Logger) (*Pad, error) {
	if logger == nil {
		logger = slog.Default()
	}
	reach := cfg.MaxDistance
	if reach <= 0 {
		reach = l.Reach
	} else {
		l.Reach = reach
		l.Knob = reach / 2
	}

	h := &layout.Handle{}
	stick, err := joystick.New(h, joystick.Config{MaxDistance: reach, Deadzone: cfg.Deadzone}, out)
	if err != nil {
		return nil, err
	}
	buttons := controls.Standard(out)
	if len(l.Buttons) < len(buttons) {
		l.Buttons = layout.Compute(l.Width, l.Height, len(buttons), layout.Options{}).Buttons
	}
	return &Pad{
		Layout:  l,
		Stick:   stick,
		Handle:  h,
		Buttons: buttons,
		logger:  logger,
		bound:   map[Pointer]int{},
	}, nil
}

// Knob returns the absolute position of the joystick handle.
func (p *Pad) Knob() layout.Point {
	off := p.Handle.Offset()
	return layout.Point{X: p.Layout.Base.X + off.X, Y: p.Layout.Base.Y + off.Y}
}

// Down handles a pointer press at (x, y).
func (p *Pad) Down(id Pointer, x, y float64) {
	if _, busy := p.bound[id]; busy {
		return
	}
	if i := p.Layout.ButtonAt(x, y); i >= 0 && i < len(p.Buttons) {
		p.bound[id] = i
		p.report(p.Buttons[i].Press())
		return
	}
	if p.Layout.OnStick(x, y) {
		p.Stick.Press(event(id, x, y))
	}
}

// Move handles pointer motion to (x, y).
func (p *Pad) Move(id Pointer, x, y float64) {
	if _, ok := p.bound[id]; ok {
		return
	}
	p.report(p.Stick.Move(event(id, x, y)))
}

// Up handles a pointer release at (x, y). A toggle flips only when the
// pointer is lifted over the button it went down on.
func (p *Pad) Up(id Pointer, x, y float64) {
	if i, ok := p.bound[id]; ok {
		delete(p.bound, id)
		b := p.Buttons[i]
		switch b.Kind {
		case controls.Momentary:
			p.report(b.Release())
		case controls.Toggle:
			if p.Layout.ButtonAt(x, y) == i {
				p.report(b.Click())
			}
		}
		return
	}
	p.report(p.Stick.Release(event(id, x, y)))
}

// Press toggles or taps the named control from a keyboard shortcut.
func (p *Pad) Press(name string) {
	b := p.Buttons.Lookup(name)
	if b == nil {
		return
	}
	if b.Kind == controls.Toggle {
		p.report(b.Click())
		return
	}
	p.report(b.Press())
	p.report(b.Release())
}

// Reset ends the drag and releases every held button, e.g. when the window
// loses focus or the front-end exits.
func (p *Pad) Reset() {
	if p.Stick.Active() {
		ev := joystick.MouseAt(0, 0)
		if id, ok := p.Stick.TrackedID(); ok {
			ev = joystick.Touches(joystick.Contact{ID: id})
		}
		p.report(p.Stick.Release(ev))
	}
	clear(p.bound)
	p.report(p.Buttons.ReleaseAll())
}

func (p *Pad) report(err error) {
	if err != nil {
		p.logger.Debug("token not sent", "error", err)
	}
}

func event(id Pointer, x, y float64) joystick.Event {
	if id == Mouse {
		return joystick.MouseAt(x, y)
	}
	return joystick.Touches(joystick.Contact{ID: joystick.TouchID(id), X: x, Y: y})
}

// Relayout moves the pad onto a new layout, e.g. after a terminal resize.
// Any drag in progress ends; the joystick reach is kept.
func (p *Pad) Relayout(l layout.Layout) {
	p.Reset()
	reach := p.Stick.Config().MaxDistance
	l.Reach = reach
	l.Knob = reach / 2
	if len(l.Buttons) < len(p.Buttons) {
		l.Buttons = layout.Compute(l.Width, l.Height, len(p.Buttons), layout.Options{}).Buttons
	}
	p.Layout = l
}
