package layout

import (
	"time"

	"github.com/Alia5/rcpad/joystick"
)

// ReturnDuration is how long the handle takes to glide back to centre.
const ReturnDuration = 500 * time.Millisecond

// Handle is a joystick.Handle that remembers where the knob should be drawn.
// With FollowEased, offset changes are animated over ReturnDuration using the
// CSS "ease" curve; with FollowInstant they apply immediately.
type Handle struct {
	// Now defaults to time.Now.
	Now func() time.Time

	follow   joystick.Follow
	from, to Point
	start    time.Time
	duration time.Duration
}

var _ joystick.Handle = (*Handle)(nil)

func (h *Handle) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// SetFollow switches between instant and eased tracking.
func (h *Handle) SetFollow(f joystick.Follow) { h.follow = f }

// SetOffset moves the knob relative to its rest position.
func (h *Handle) SetOffset(x, y float64) {
	now := h.now()
	target := Point{X: x, Y: y}
	if h.follow == joystick.FollowEased {
		h.from = h.offsetAt(now)
		h.start = now
		h.duration = ReturnDuration
	} else {
		h.from = target
		h.duration = 0
	}
	h.to = target
}

// Offset returns the knob offset to draw right now.
func (h *Handle) Offset() Point {
	return h.offsetAt(h.now())
}

// Animating reports whether an eased move is still in progress.
func (h *Handle) Animating() bool {
	return h.duration > 0 && h.now().Sub(h.start) < h.duration
}

func (h *Handle) offsetAt(now time.Time) Point {
	if h.duration <= 0 {
		return h.to
	}
	t := float64(now.Sub(h.start)) / float64(h.duration)
	if t >= 1 {
		return h.to
	}
	if t < 0 {
		t = 0
	}
	p := Ease(t)
	return Point{
		X: h.from.X + (h.to.X-h.from.X)*p,
		Y: h.from.Y + (h.to.Y-h.from.Y)*p,
	}
}

// Ease evaluates the CSS "ease" timing function, cubic-bezier(.25,.1,.25,1),
// for progress t in [0,1].
func Ease(t float64) float64 {
	const x1, y1, x2, y2 = 0.25, 0.1, 0.25, 1.0
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	// bezier x(s) is monotonic on [0,1]; bisect for the s with x(s) = t
	lo, hi := 0.0, 1.0
	s := t
	for range 32 {
		x := bezier(s, x1, x2)
		if x < t {
			lo = s
		} else {
			hi = s
		}
		s = (lo + hi) / 2
	}
	return bezier(s, y1, y2)
}

func bezier(s, p1, p2 float64) float64 {
	u := 1 - s
	return 3*u*u*s*p1 + 3*u*s*s*p2 + s*s*s
}
