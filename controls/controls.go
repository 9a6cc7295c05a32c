// Package controls implements the discrete buttons of the control panel.
//
// A Toggle flips on every click and sends the matching on/off token. A
// Momentary sends its on token when pressed and its off token when released.
// The button state always follows user input; a failed send is returned to
// the caller but does not roll the state back, so the label keeps showing
// what the user asked for.
package controls

import (
	"fmt"

	"github.com/Alia5/rcpad/token"
)

// Sender is the outbound capability buttons write tokens to.
type Sender interface {
	Send(text string) error
}

// Kind selects how a button reacts to input.
type Kind uint8

const (
	Toggle Kind = iota
	Momentary
)

func (k Kind) String() string {
	switch k {
	case Toggle:
		return "toggle"
	case Momentary:
		return "momentary"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Button is one discrete control bound to a protocol control name.
type Button struct {
	Name     string
	Kind     Kind
	LabelOff string
	LabelOn  string

	out    Sender
	active bool
}

// NewButton creates a button for the control name. Empty labels default to
// the control name.
func NewButton(name string, kind Kind, labelOff, labelOn string, out Sender) *Button {
	if labelOff == "" {
		labelOff = name
	}
	if labelOn == "" {
		labelOn = labelOff
	}
	return &Button{Name: name, Kind: kind, LabelOff: labelOff, LabelOn: labelOn, out: out}
}

// Active reports whether a toggle is on or a momentary is held.
func (b *Button) Active() bool { return b.active }

// Label returns the text to display for the current state.
func (b *Button) Label() string {
	if b.active {
		return b.LabelOn
	}
	return b.LabelOff
}

// Click flips a toggle. It is a no-op for momentary buttons.
func (b *Button) Click() error {
	if b.Kind != Toggle {
		return nil
	}
	b.active = !b.active
	return b.emit()
}

// Press starts a momentary press. Pressing a held button, or any toggle, is
// a no-op.
func (b *Button) Press() error {
	if b.Kind != Momentary || b.active {
		return nil
	}
	b.active = true
	return b.emit()
}

// Release ends a momentary press. A release without a matching press is
// ignored.
func (b *Button) Release() error {
	if b.Kind != Momentary || !b.active {
		return nil
	}
	b.active = false
	return b.emit()
}

func (b *Button) emit() error {
	if b.out == nil {
		return nil
	}
	text := token.Off(b.Name)
	if b.active {
		text = token.On(b.Name)
	}
	if err := b.out.Send(text); err != nil {
		return fmt.Errorf("%s: %w", b.Name, err)
	}
	return nil
}
