package controls

import (
	"errors"

	"github.com/Alia5/rcpad/token"
)

// Set is an ordered group of buttons.
type Set []*Button

// Standard returns the panel's buttons in display order.
func Standard(out Sender) Set {
	return Set{
		NewButton(token.Headlights, Toggle, "Headlights", "", out),
		NewButton(token.LEDStrip, Toggle, "LED strip", "", out),
		NewButton(token.Arm, Toggle, "Disarmed", "Armed", out),
		NewButton(token.Horn, Momentary, "Horn", "HONK!", out),
		NewButton(token.Up, Momentary, "Up", "", out),
		NewButton(token.Down, Momentary, "Down", "", out),
		NewButton(token.Left, Momentary, "Left", "", out),
		NewButton(token.Right, Momentary, "Right", "", out),
	}
}

// Lookup returns the button with the given control name, or nil.
func (s Set) Lookup(name string) *Button {
	for _, b := range s {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// ReleaseAll releases every held momentary button. Toggles keep their state.
func (s Set) ReleaseAll() error {
	var errs []error
	for _, b := range s {
		if b.Kind == Momentary {
			if err := b.Release(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
