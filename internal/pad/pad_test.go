package pad_test

import (
	"testing"

	"github.com/Alia5/rcpad/internal/layout"
	"github.com/Alia5/rcpad/internal/pad"
	th "github.com/Alia5/rcpad/internal/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPad(t *testing.T, cfg pad.Config) (*pad.Pad, *th.Recorder) {
	t.Helper()
	rec := &th.Recorder{}
	l := layout.Compute(1000, 600, 8, layout.Options{})
	p, err := pad.New(l, cfg, rec, th.Quiet())
	require.NoError(t, err)
	return p, rec
}

func buttonCentre(p *pad.Pad, name string) layout.Point {
	for i, b := range p.Buttons {
		if b.Name == name {
			return p.Layout.Buttons[i].Center()
		}
	}
	panic("no button " + name)
}

func TestMouseDrag(t *testing.T) {
	p, rec := newPad(t, pad.Config{})
	base := p.Layout.Base
	assert.InDelta(t, 150, p.Stick.Config().MaxDistance, 1e-9)

	p.Down(pad.Mouse, base.X, base.Y)
	require.True(t, p.Stick.Active())
	p.Move(pad.Mouse, base.X+75, base.Y)
	p.Move(pad.Mouse, base.X, base.Y-300)
	assert.Equal(t, layout.Point{X: base.X, Y: base.Y - 150}, p.Knob())
	p.Up(pad.Mouse, base.X, base.Y-300)

	assert.Equal(t, []string{"M0.5,0", "M0,1", "STOP_M"}, rec.Tokens())
	assert.False(t, p.Stick.Active())
}

func TestPressOutsideStickIsIgnored(t *testing.T) {
	p, rec := newPad(t, pad.Config{})
	p.Down(pad.Mouse, 1, 1)
	p.Move(pad.Mouse, 50, 50)
	p.Up(pad.Mouse, 50, 50)
	assert.Empty(t, rec.Tokens())
}

func TestExplicitMaxDistanceAndDeadzone(t *testing.T) {
	p, rec := newPad(t, pad.Config{MaxDistance: 50, Deadzone: 10})
	base := p.Layout.Base
	assert.InDelta(t, 25, p.Layout.Knob, 1e-9)

	p.Down(pad.Mouse, base.X, base.Y)
	p.Move(pad.Mouse, base.X+30, base.Y)
	p.Move(pad.Mouse, base.X+5, base.Y)
	assert.Equal(t, []string{"M0.5,0", "M0,0"}, rec.Tokens())
}

func TestInvalidConfig(t *testing.T) {
	l := layout.Compute(1000, 600, 8, layout.Options{})
	_, err := pad.New(l, pad.Config{MaxDistance: 10, Deadzone: 10}, nil, nil)
	assert.Error(t, err)
}

func TestMomentaryButton(t *testing.T) {
	p, rec := newPad(t, pad.Config{})
	horn := buttonCentre(p, "horn")

	p.Down(pad.Mouse, horn.X, horn.Y)
	assert.Equal(t, "HONK!", p.Buttons.Lookup("horn").Label())
	p.Move(pad.Mouse, 0, 0)
	p.Up(pad.Mouse, 0, 0)

	assert.Equal(t, []string{"horn1", "horn0"}, rec.Tokens())
	assert.False(t, p.Stick.Active())
}

func TestToggleClick(t *testing.T) {
	p, rec := newPad(t, pad.Config{})
	arm := buttonCentre(p, "arm")

	p.Down(pad.Mouse, arm.X, arm.Y)
	p.Up(pad.Mouse, arm.X, arm.Y)
	assert.Equal(t, "Armed", p.Buttons.Lookup("arm").Label())

	// dragging off the button cancels the click
	p.Down(pad.Mouse, arm.X, arm.Y)
	p.Up(pad.Mouse, 0, 0)
	assert.Equal(t, []string{"arm1"}, rec.Tokens())
}

func TestTouchStickAndButtonsTogether(t *testing.T) {
	p, rec := newPad(t, pad.Config{})
	base := p.Layout.Base
	up := buttonCentre(p, "up")

	p.Down(7, base.X, base.Y)
	p.Down(9, up.X, up.Y)
	p.Move(9, up.X+1, up.Y+1)
	p.Move(7, base.X+150, base.Y)
	p.Up(9, up.X, up.Y)
	p.Up(7, base.X+150, base.Y)

	assert.Equal(t, []string{"up1", "M1,0", "up0", "STOP_M"}, rec.Tokens())
}

func TestForeignTouchDoesNotMoveStick(t *testing.T) {
	p, rec := newPad(t, pad.Config{})
	base := p.Layout.Base

	p.Down(1, base.X, base.Y)
	p.Move(2, base.X+150, base.Y)
	p.Up(2, base.X+150, base.Y)
	p.Move(pad.Mouse, base.X+150, base.Y)
	assert.Empty(t, rec.Tokens())
	assert.True(t, p.Stick.Active())
}

func TestKeyboardPress(t *testing.T) {
	p, rec := newPad(t, pad.Config{})
	p.Press("hl")
	p.Press("horn")
	p.Press("nope")
	assert.Equal(t, []string{"hl1", "horn1", "horn0"}, rec.Tokens())
}

func TestReset(t *testing.T) {
	p, rec := newPad(t, pad.Config{})
	base := p.Layout.Base
	left := buttonCentre(p, "left")

	p.Down(3, base.X, base.Y)
	p.Down(4, left.X, left.Y)
	p.Reset()

	assert.False(t, p.Stick.Active())
	assert.Equal(t, []string{"left1", "STOP_M", "left0"}, rec.Tokens())

	// the button binding is gone, so the late release goes nowhere
	p.Up(4, left.X, left.Y)
	assert.Len(t, rec.Tokens(), 3)
}

func TestRelayoutKeepsReach(t *testing.T) {
	p, rec := newPad(t, pad.Config{})
	base := p.Layout.Base
	p.Down(pad.Mouse, base.X, base.Y)
	p.Move(pad.Mouse, base.X+150, base.Y)

	p.Relayout(layout.Compute(500, 300, 8, layout.Options{}))
	assert.False(t, p.Stick.Active())
	assert.InDelta(t, 150, p.Layout.Reach, 1e-9)
	assert.InDelta(t, 75, p.Layout.Knob, 1e-9)
	assert.Equal(t, 125.0, p.Layout.Base.X)
	assert.Equal(t, []string{"M1,0", "STOP_M"}, rec.Tokens())
}
