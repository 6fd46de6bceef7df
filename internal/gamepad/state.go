package gamepad

import (
	"encoding/json"
	"fmt"

	"github.com/soar/VRPawn/internal/xr"
)

// Key enumerates the logical inputs of both hands.
type Key uint8

const (
	A Key = iota
	ATouch
	B
	BTouch
	X
	XTouch
	Y
	YTouch
	RTrigger
	RTriggerAxis
	RGrip
	RGripAxis
	RStick
	RStickTouch
	RStickXAxis
	RStickYAxis
	LTrigger
	LTriggerAxis
	LGrip
	LGripAxis
	LStick
	LStickTouch
	LStickXAxis
	LStickYAxis

	// KeyCount is the number of logical inputs in every State.
	KeyCount
)

var keyNames = [KeyCount]string{
	"A", "ATouch", "B", "BTouch", "X", "XTouch", "Y", "YTouch",
	"RTrigger", "RTriggerAxis", "RGrip", "RGripAxis", "RStick", "RStickTouch", "RStickXAxis", "RStickYAxis",
	"LTrigger", "LTriggerAxis", "LGrip", "LGripAxis", "LStick", "LStickTouch", "LStickXAxis", "LStickYAxis",
}

var axisKeys = map[Key]bool{
	RTriggerAxis: true, RGripAxis: true, RStickXAxis: true, RStickYAxis: true,
	LTriggerAxis: true, LGripAxis: true, LStickXAxis: true, LStickYAxis: true,
}

func (k Key) String() string {
	if k < KeyCount {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", uint8(k))
}

// Role returns the hand that writes k. A, B and the R* keys belong to the
// right hand; X, Y and the L* keys to the left.
func (k Key) Role() xr.Role {
	switch {
	case k == X || k == XTouch || k == Y || k == YTouch:
		return xr.Left
	case k >= LTrigger:
		return xr.Left
	}
	return xr.Right
}

// IsAxis reports whether the key carries a float rather than a boolean.
func (k Key) IsAxis() bool {
	return axisKeys[k]
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, bool) {
	for k := Key(0); k < KeyCount; k++ {
		if keyNames[k] == s {
			return k, true
		}
	}
	return 0, false
}

// State is one immutable snapshot of every logical input. Booleans are stored
// as 0 or 1. The zero value is the default (rest) state.
type State struct {
	values [KeyCount]float64
}

// Default is the rest state: every button false, every axis 0.
var Default State

// Bool returns a button value.
func (s State) Bool(k Key) bool {
	return s.values[k] != 0
}

// Axis returns an axis value.
func (s State) Axis(k Key) float64 {
	return s.values[k]
}

// Value returns the raw stored value of any key.
func (s State) Value(k Key) float64 {
	return s.values[k]
}

// WithButton returns a copy of s with a button set.
func (s State) WithButton(k Key, pressed bool) State {
	if pressed {
		s.values[k] = 1
	} else {
		s.values[k] = 0
	}
	return s
}

// WithAxis returns a copy of s with an axis set.
func (s State) WithAxis(k Key, v float64) State {
	s.values[k] = v
	return s
}

// IsDefault reports whether every input is at rest.
func (s State) IsDefault() bool {
	return s == Default
}

// MarshalJSON renders the state as {"A": false, "RGripAxis": 0.4, ...}.
func (s State) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, KeyCount)
	for k := Key(0); k < KeyCount; k++ {
		if k.IsAxis() {
			m[k.String()] = s.values[k]
		} else {
			m[k.String()] = s.values[k] != 0
		}
	}
	return json.Marshal(m)
}

// handKeys names the keys one hand writes to.
type handKeys struct {
	trigger, triggerAxis Key
	grip, gripAxis       Key
	stick, stickTouch    Key
	stickX, stickY       Key
	face1, face1Touch    Key
	face2, face2Touch    Key
}

var (
	rightKeys = handKeys{
		trigger: RTrigger, triggerAxis: RTriggerAxis,
		grip: RGrip, gripAxis: RGripAxis,
		stick: RStick, stickTouch: RStickTouch,
		stickX: RStickXAxis, stickY: RStickYAxis,
		face1: A, face1Touch: ATouch,
		face2: B, face2Touch: BTouch,
	}
	leftKeys = handKeys{
		trigger: LTrigger, triggerAxis: LTriggerAxis,
		grip: LGrip, gripAxis: LGripAxis,
		stick: LStick, stickTouch: LStickTouch,
		stickX: LStickXAxis, stickY: LStickYAxis,
		face1: X, face1Touch: XTouch,
		face2: Y, face2Touch: YTouch,
	}
)
