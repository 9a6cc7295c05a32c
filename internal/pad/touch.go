package pad

import (
	"maps"
	"slices"
)

// Contact is one touch point in a polled snapshot.
type Contact struct {
	ID   Pointer
	X, Y float64
}

// PointerInput receives pointer transitions. Pad implements it.
type PointerInput interface {
	Down(id Pointer, x, y float64)
	Move(id Pointer, x, y float64)
	Up(id Pointer, x, y float64)
}

var _ PointerInput = (*Pad)(nil)

// Touches turns per-tick snapshots of the active contacts into Down, Move and
// Up calls, for front-ends that poll touches instead of receiving events.
// The zero value is ready to use.
type Touches struct {
	last map[Pointer]Contact
}

// Sync reports new contacts as Down and moved ones as Move, in snapshot
// order, then contacts missing from the snapshot as Up at their last known
// position, in ID order.
func (t *Touches) Sync(current []Contact, in PointerInput) {
	if t.last == nil {
		t.last = make(map[Pointer]Contact, len(current))
	}
	seen := make(map[Pointer]bool, len(current))
	for _, c := range current {
		seen[c.ID] = true
		prev, known := t.last[c.ID]
		t.last[c.ID] = c
		switch {
		case !known:
			in.Down(c.ID, c.X, c.Y)
		case prev.X != c.X || prev.Y != c.Y:
			in.Move(c.ID, c.X, c.Y)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(t.last)) {
		if seen[id] {
			continue
		}
		c := t.last[id]
		delete(t.last, id)
		in.Up(id, c.X, c.Y)
	}
}

// Forget drops every tracked contact without reporting it. Used after Reset,
// which already released whatever the contacts held.
func (t *Touches) Forget() {
	clear(t.last)
}
