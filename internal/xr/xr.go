// Package xr holds the small set of types shared by every layer of the pawn:
// hand roles, handedness tags reported by the runtime, input source events and
// the raw gamepad layout.
package xr

import "fmt"

// Role is the logical, game-facing identity of a controller.
type Role int

const (
	Right Role = iota
	Left
)

// Roles lists every role in a stable order.
var Roles = [...]Role{Right, Left}

func (r Role) String() string {
	switch r {
	case Right:
		return "right"
	case Left:
		return "left"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Other returns the opposite role.
func (r Role) Other() Role {
	if r == Right {
		return Left
	}
	return Right
}

// Handedness is the tag the runtime attaches to an input source.
type Handedness string

const (
	HandednessLeft    Handedness = "left"
	HandednessRight   Handedness = "right"
	HandednessUnknown Handedness = "unknown"
)

// ParseHandedness maps anything that is not "left" or "right" to unknown.
func ParseHandedness(s string) Handedness {
	switch Handedness(s) {
	case HandednessLeft:
		return HandednessLeft
	case HandednessRight:
		return HandednessRight
	}
	return HandednessUnknown
}

// SourceEvent reports an input source appearing (or disappearing) at a
// physical index.
type SourceEvent struct {
	Index      int
	Handedness Handedness
	// Profiles is the runtime's ordered profile id list, most specific first.
	Profiles []string
	Removed  bool
}

// Button is one raw gamepad button as the runtime reports it.
type Button struct {
	Pressed bool    `json:"pressed"`
	Touched bool    `json:"touched"`
	Value   float64 `json:"value"`
}

// Gamepad is the raw per-frame state of one physical controller.
type Gamepad struct {
	Buttons []Button  `json:"buttons"`
	Axes    []float64 `json:"axes"`
}

// Button returns the button at i, or the zero button when i is out of range.
func (g *Gamepad) Button(i int) (Button, bool) {
	if g == nil || i < 0 || i >= len(g.Buttons) {
		return Button{}, false
	}
	return g.Buttons[i], true
}

// Axis returns the axis at i, or 0 when i is out of range.
func (g *Gamepad) Axis(i int) (float64, bool) {
	if g == nil || i < 0 || i >= len(g.Axes) {
		return 0, false
	}
	return g.Axes[i], true
}
