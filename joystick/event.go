package joystick

// Kind tells which pointer family produced an Event.
type Kind uint8

const (
	// Mouse events carry a single pointer position.
	Mouse Kind = iota + 1
	// Touch events carry every active contact.
	Touch
)

func (k Kind) String() string {
	switch k {
	case Mouse:
		return "mouse"
	case Touch:
		return "touch"
	default:
		return "none"
	}
}

// TouchID identifies one contact among several simultaneous touches.
type TouchID int64

// Point is a screen position in pixels.
type Point struct {
	X, Y float64
}

// Contact is one touch point carried by a touch Event.
type Contact struct {
	ID   TouchID
	X, Y float64
}

// Event is the normalized pointer event consumed by Stick.
// Mouse events use X and Y; touch events use Contacts and ignore X and Y.
// Front-ends build events with MouseAt and Touches at a single adaptation
// boundary instead of passing platform events around.
type Event struct {
	Kind     Kind
	X, Y     float64
	Contacts []Contact
}

// MouseAt returns a mouse event at (x, y).
func MouseAt(x, y float64) Event {
	return Event{Kind: Mouse, X: x, Y: y}
}

// Touches returns a touch event carrying the given contacts, in order.
func Touches(contacts ...Contact) Event {
	return Event{Kind: Touch, Contacts: contacts}
}

// contact returns the contact with the given ID.
func (e Event) contact(id TouchID) (Contact, bool) {
	for _, c := range e.Contacts {
		if c.ID == id {
			return c, true
		}
	}
	return Contact{}, false
}
