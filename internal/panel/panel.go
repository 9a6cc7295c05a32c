// Package panel is the graphical control panel: an ebiten window with the
// joystick on the left, the buttons on the right and a status line.
package panel

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/Alia5/rcpad/internal/layout"
	"github.com/Alia5/rcpad/internal/pad"
	"github.com/Alia5/rcpad/link"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Link is what the panel needs from the link manager.
type Link interface {
	pad.Sender
	Status() link.Status
	Address() string
}

// Config is the window setup.
type Config struct {
	Title       string
	Width       int
	Height      int
	Fullscreen  bool
	MaxDistance float64
	Deadzone    float64
}

var (
	colBackground = color.RGBA{0x1b, 0x1b, 0x1f, 0xff}
	colBase       = color.RGBA{0x3a, 0x3a, 0x44, 0xff}
	colKnob       = color.RGBA{0xee, 0xee, 0xee, 0xff}
	colButton     = color.RGBA{0x2c, 0x2c, 0x34, 0xff}
	colActive     = color.RGBA{0xff, 0x66, 0x00, 0xff}
)

type game struct {
	ctx    context.Context
	cfg    Config
	pad    *pad.Pad
	link   Link
	logger *slog.Logger

	mouseDown  bool
	mx, my     int
	touches    pad.Touches
	touchIDs   []ebiten.TouchID
	contacts   []pad.Contact
	wasFocused bool
}

// Run opens the window and blocks until it is closed or ctx is done.
func Run(ctx context.Context, cfg Config, l Link, logger *slog.Logger) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", cfg.Width, cfg.Height)
	}
	lay := layout.Compute(float64(cfg.Width), float64(cfg.Height), 8, layout.Options{})
	p, err := pad.New(lay, pad.Config{MaxDistance: cfg.MaxDistance, Deadzone: cfg.Deadzone}, l, logger)
	if err != nil {
		return err
	}
	g := &game{
		ctx:        ctx,
		cfg:        cfg,
		pad:        p,
		link:       l,
		logger:     logger,
		wasFocused: true,
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(cfg.Fullscreen)
	ebiten.SetTPS(60)

	err = ebiten.RunGame(g)
	p.Reset()
	if err == ebiten.Termination {
		return nil
	}
	return err
}

func (g *game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	focused := ebiten.IsFocused()
	if !focused && g.wasFocused {
		g.logger.Debug("window lost focus, releasing controls")
		g.releaseAll()
	}
	g.wasFocused = focused
	if !focused {
		return nil
	}

	g.updateMouse()
	g.updateTouches()
	return nil
}

func (g *game) updateMouse() {
	x, y := ebiten.CursorPosition()
	fx, fy := float64(x), float64(y)
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.mouseDown = true
		g.pad.Down(pad.Mouse, fx, fy)
	case g.mouseDown && !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		g.mouseDown = false
		g.pad.Up(pad.Mouse, fx, fy)
	case g.mouseDown && (x != g.mx || y != g.my):
		g.pad.Move(pad.Mouse, fx, fy)
	}
	g.mx, g.my = x, y
}

// updateTouches polls the active touches; pad.Touches works out what changed
// since the previous tick.
func (g *game) updateTouches() {
	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])
	g.contacts = g.contacts[:0]
	for _, id := range g.touchIDs {
		x, y := ebiten.TouchPosition(id)
		g.contacts = append(g.contacts, pad.Contact{ID: pad.Pointer(id), X: float64(x), Y: float64(y)})
	}
	g.touches.Sync(g.contacts, g.pad)
}

func (g *game) releaseAll() {
	g.mouseDown = false
	g.pad.Reset()
	g.touches.Forget()
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)
	l := g.pad.Layout

	vector.DrawFilledCircle(screen, float32(l.Base.X), float32(l.Base.Y), float32(l.Reach+l.Knob), colBase, true)
	knob := g.pad.Knob()
	vector.DrawFilledCircle(screen, float32(knob.X), float32(knob.Y), float32(l.Knob), colKnob, true)

	for i, b := range g.pad.Buttons {
		r := l.Buttons[i]
		fill := colButton
		if b.Active() {
			fill = colActive
		}
		vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), fill, false)
		vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), 1, colKnob, false)
		c := r.Center()
		label := b.Label()
		// debug font glyphs are 6x16
		ebitenutil.DebugPrintAt(screen, label, int(c.X)-len(label)*3, int(c.Y)-8)
	}

	v := g.pad.Stick.Vector()
	status := fmt.Sprintf("link %s  %s  x=%.4f y=%.4f", g.link.Status(), g.link.Address(), v.X, v.Y)
	ebitenutil.DebugPrintAt(screen, status, 8, int(l.Status.Y))
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}
