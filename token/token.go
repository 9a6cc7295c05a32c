// Package token defines the plain-text command tokens exchanged between the
// control panel and the remote controller.
//
// Every token is a single WebSocket text message with no framing or length
// prefix. The panel produces them; the vehicle simulator parses them.
package token

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// Hello is sent once per successful connection, immediately on open.
	Hello = "hello"
	// StopMove is sent when the joystick is released.
	StopMove = "STOP_M"

	movePrefix = "M"
)

// Discrete control names. The on/off tokens are the name followed by "1" or "0".
const (
	Headlights = "hl"
	LEDStrip   = "ls"
	Arm        = "arm"
	Horn       = "horn"
	Up         = "up"
	Down       = "down"
	Left       = "left"
	Right      = "right"
)

// Controls lists every discrete control name known to the protocol.
var Controls = []string{Headlights, LEDStrip, Arm, Horn, Up, Down, Left, Right}

var (
	// ErrUnknownToken is returned by Parse for text outside the vocabulary.
	ErrUnknownToken = errors.New("unknown token")
	// ErrMalformedMove is returned by Parse for an M token whose axes are not
	// two numbers in [-1, 1].
	ErrMalformedMove = errors.New("malformed move token")
)

// Move formats a move token, e.g. "M0.4123,-0.8801".
// Axis values are written as JSON numbers; negative zero is written as "0".
func Move(x, y float64) string {
	return movePrefix + formatAxis(x) + "," + formatAxis(y)
}

// On returns the press/enable token for a control, e.g. "hl1".
func On(control string) string { return control + "1" }

// Off returns the release/disable token for a control, e.g. "hl0".
func Off(control string) string { return control + "0" }

func formatAxis(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Kind identifies what a parsed token asks the remote controller to do.
type Kind uint8

const (
	KindHello Kind = iota + 1
	KindMove
	KindStop
	KindControl
)

func (k Kind) String() string {
	switch k {
	case KindHello:
		return "hello"
	case KindMove:
		return "move"
	case KindStop:
		return "stop"
	case KindControl:
		return "control"
	default:
		return "unknown"
	}
}

// Command is the decoded form of a token.
type Command struct {
	Kind Kind
	// X and Y are set for KindMove.
	X, Y float64
	// Control and On are set for KindControl.
	Control string
	On      bool
}

// Parse decodes a single token.
func Parse(text string) (Command, error) {
	switch text {
	case Hello:
		return Command{Kind: KindHello}, nil
	case StopMove:
		return Command{Kind: KindStop}, nil
	}

	if strings.HasPrefix(text, movePrefix) {
		return parseMove(text)
	}

	if n := len(text); n > 1 {
		name, state := text[:n-1], text[n-1]
		if isControl(name) && (state == '0' || state == '1') {
			return Command{Kind: KindControl, Control: name, On: state == '1'}, nil
		}
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownToken, text)
}

func parseMove(text string) (Command, error) {
	xs, ys, ok := strings.Cut(strings.TrimPrefix(text, movePrefix), ",")
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrMalformedMove, text)
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %q", ErrMalformedMove, text)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %q", ErrMalformedMove, text)
	}
	if !inRange(x) || !inRange(y) {
		return Command{}, fmt.Errorf("%w: axis out of range in %q", ErrMalformedMove, text)
	}
	return Command{Kind: KindMove, X: x, Y: y}, nil
}

func inRange(v float64) bool {
	return !math.IsNaN(v) && v >= -1 && v <= 1
}

func isControl(name string) bool {
	for _, c := range Controls {
		if c == name {
			return true
		}
	}
	return false
}
