// Package term is a terminal rendition of the control panel built on tcell.
//
// Layout units are half cells vertically: a terminal cell is roughly twice as
// tall as it is wide, so every row counts as two units and the joystick reach
// comes out round.
package term

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/Alia5/rcpad/internal/layout"
	"github.com/Alia5/rcpad/internal/pad"
	"github.com/Alia5/rcpad/link"
	"github.com/Alia5/rcpad/token"

	"github.com/gdamore/tcell/v2"
	xterm "golang.org/x/term"
)

// ErrNotTerminal is returned when stdout is not a terminal.
var ErrNotTerminal = errors.New("stdout is not a terminal")

// Link is what the terminal panel needs from the link manager.
type Link interface {
	pad.Sender
	Status() link.Status
	Address() string
}

// Config tunes the joystick. Distances are in layout units.
type Config struct {
	MaxDistance float64
	Deadzone    float64
	// Refresh is the redraw interval, default 16ms.
	Refresh time.Duration
}

var keys = map[rune]string{
	'h': token.Headlights,
	'l': token.LEDStrip,
	'a': token.Arm,
}

var (
	styleBase   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleKnob   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleButton = tcell.StyleDefault.Reverse(true)
	styleActive = tcell.StyleDefault.Background(tcell.ColorOrangeRed).Foreground(tcell.ColorBlack)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// Run opens the terminal and blocks until the user quits or ctx is done.
func Run(ctx context.Context, cfg Config, l Link, logger *slog.Logger) error {
	if !xterm.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNotTerminal
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	return RunScreen(ctx, screen, cfg, l, logger)
}

// RunScreen drives an uninitialised screen. The screen is finalised on return.
func RunScreen(ctx context.Context, screen tcell.Screen, cfg Config, l Link, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Refresh <= 0 {
		cfg.Refresh = 16 * time.Millisecond
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	w, h := screen.Size()
	p, err := pad.New(computeLayout(w, h), pad.Config{MaxDistance: cfg.MaxDistance, Deadzone: cfg.Deadzone}, l, logger)
	if err != nil {
		return err
	}
	defer p.Reset()

	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)
	go pump(screen, events, done)

	ui := &panel{screen: screen, pad: p, link: l}
	ticker := time.NewTicker(cfg.Refresh)
	defer ticker.Stop()
	ui.draw()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !ui.handle(ev) {
				return nil
			}
		case <-ticker.C:
			ui.tick()
		}
	}
}

// pump forwards screen events until the screen is finalised or done closes.
func pump(screen tcell.Screen, events chan<- tcell.Event, done <-chan struct{}) {
	defer close(events)
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

func computeLayout(cols, rows int) layout.Layout {
	return layout.Compute(float64(cols), float64(rows*2), 8, layout.Options{
		Gap:          1,
		StatusHeight: 2,
	})
}

// centre maps a cell to the layout coordinates of its centre.
func centre(col, row int) (float64, float64) {
	return float64(col) + 0.5, (float64(row) + 0.5) * 2
}

type panel struct {
	screen tcell.Screen
	pad    *pad.Pad
	link   Link

	down     bool
	col, row int

	shown    link.Status
	animated bool
}

// tick redraws while the knob glides back and when the link status changes.
// The frame after an animation ends is drawn too, so the knob lands on centre.
func (u *panel) tick() {
	animating := u.pad.Handle.Animating()
	if animating || u.animated || u.link.Status() != u.shown {
		u.draw()
	}
	u.animated = animating
}

// handle processes one event and reports whether to keep running.
func (u *panel) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyRune:
			if name, ok := keys[ev.Rune()]; ok {
				u.pad.Press(name)
			}
		}
	case *tcell.EventMouse:
		u.mouse(ev)
	case *tcell.EventResize:
		u.screen.Sync()
		w, h := u.screen.Size()
		u.down = false
		u.pad.Relayout(computeLayout(w, h))
	case *tcell.EventFocus:
		if !ev.Focused {
			u.down = false
			u.pad.Reset()
		}
	}
	u.draw()
	return true
}

func (u *panel) mouse(ev *tcell.EventMouse) {
	col, row := ev.Position()
	x, y := centre(col, row)
	pressed := ev.Buttons()&tcell.Button1 != 0
	switch {
	case pressed && !u.down:
		u.down = true
		u.pad.Down(pad.Mouse, x, y)
	case pressed && (col != u.col || row != u.row):
		u.pad.Move(pad.Mouse, x, y)
	case !pressed && u.down:
		u.down = false
		u.pad.Up(pad.Mouse, x, y)
	}
	u.col, u.row = col, row
}

func (u *panel) draw() {
	s := u.screen
	s.Clear()
	l := u.pad.Layout
	w, h := s.Size()
	knob := u.pad.Knob()

	for row := 0; row < h; row++ {
		for col := 0; col < w/2; col++ {
			x, y := centre(col, row)
			switch {
			case dist(x, y, knob) <= l.Knob:
				s.SetContent(col, row, '█', nil, styleKnob)
			case dist(x, y, l.Base) <= l.Reach+l.Knob:
				s.SetContent(col, row, '·', nil, styleBase)
			}
		}
	}

	for i, b := range u.pad.Buttons {
		r := l.Buttons[i]
		style := styleButton
		if b.Active() {
			style = styleActive
		}
		top, bottom := int(r.Y/2), int((r.Y+r.H)/2)
		left, right := int(r.X), int(r.X+r.W)
		for row := top; row < bottom; row++ {
			for col := left; col < right; col++ {
				s.SetContent(col, row, ' ', nil, style)
			}
		}
		label := []rune(b.Label())
		mid := (top + bottom) / 2
		start := left + (right-left-len(label))/2
		drawText(s, start, mid, style, string(label))
	}

	v := u.pad.Stick.Vector()
	u.shown = u.link.Status()
	status := fmt.Sprintf(" link %s  %s  x=%.4f y=%.4f  [h]eadlights [l]ed [a]rm [q]uit",
		u.shown, u.link.Address(), v.X, v.Y)
	drawText(s, 0, h-1, styleStatus, status)
	s.Show()
}

func dist(x, y float64, p layout.Point) float64 {
	return math.Hypot(x-p.X, y-p.Y)
}

func drawText(s tcell.Screen, col, row int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(col, row, r, nil, style)
		col++
	}
}
