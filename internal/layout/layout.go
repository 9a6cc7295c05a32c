// Package layout computes panel geometry shared by the graphical and
// terminal front-ends. Everything here is pure and works in abstract units
// (pixels for the window, half-cells for the terminal).
package layout

import "math"

// DefaultStickFraction is the joystick reach as a fraction of panel width.
const DefaultStickFraction = 0.15

// Point is a position in panel units.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside r. The right and bottom edges
// are exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Center returns the centre of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Layout is the placement of the joystick and buttons on a panel.
type Layout struct {
	Width, Height float64

	// Base is the joystick rest position and Reach its maximum drag distance.
	Base  Point
	Reach float64
	// Knob is the radius of the draggable handle.
	Knob float64

	Buttons []Rect
	Status  Rect
}

// Options tune Compute.
type Options struct {
	// StickFraction overrides DefaultStickFraction when positive.
	StickFraction float64
	// Columns of the button grid, default 2.
	Columns int
	// Gap between buttons and around the grid, default 2% of the width.
	Gap float64
	// StatusHeight reserves a line at the bottom, default 5% of the height.
	StatusHeight float64
}

// Compute places the joystick in the left half of a width x height panel and
// a grid of n buttons in the right half.
func Compute(width, height float64, n int, opts Options) Layout {
	frac := opts.StickFraction
	if frac <= 0 {
		frac = DefaultStickFraction
	}
	cols := opts.Columns
	if cols <= 0 {
		cols = 2
	}
	gap := opts.Gap
	if gap <= 0 {
		gap = width * 0.02
	}
	status := opts.StatusHeight
	if status <= 0 {
		status = height * 0.05
	}

	body := math.Max(height-status, 0)
	l := Layout{
		Width:  width,
		Height: height,
		Base:   Point{X: width / 4, Y: body / 2},
		Reach:  width * frac,
		Status: Rect{X: 0, Y: body, W: width, H: status},
	}
	l.Knob = l.Reach / 2

	if n <= 0 {
		return l
	}
	rows := (n + cols - 1) / cols
	gridX := width/2 + gap
	gridW := width/2 - 2*gap
	gridH := body - 2*gap
	cellW := (gridW - float64(cols-1)*gap) / float64(cols)
	cellH := (gridH - float64(rows-1)*gap) / float64(rows)
	cellW = math.Max(cellW, 0)
	cellH = math.Max(cellH, 0)

	l.Buttons = make([]Rect, n)
	for i := range l.Buttons {
		row, col := i/cols, i%cols
		l.Buttons[i] = Rect{
			X: gridX + float64(col)*(cellW+gap),
			Y: gap + float64(row)*(cellH+gap),
			W: cellW,
			H: cellH,
		}
	}
	return l
}

// ButtonAt returns the index of the button under (x, y), or -1.
func (l Layout) ButtonAt(x, y float64) int {
	for i, r := range l.Buttons {
		if r.Contains(x, y) {
			return i
		}
	}
	return -1
}

// OnStick reports whether (x, y) lies on the joystick handle at rest.
func (l Layout) OnStick(x, y float64) bool {
	return math.Hypot(x-l.Base.X, y-l.Base.Y) <= l.Knob
}
