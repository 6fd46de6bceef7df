package controllermap

import (
	"fmt"
	"strings"
)

// Category is the logical input class a map entry feeds. It is resolved once,
// when the entry is loaded, and never re-derived from the entry name.
type Category int

const (
	Unknown Category = iota
	Trigger
	Squeeze
	AButton
	BButton
	XButton
	YButton
	ThumbstickPress
	ThumbstickX
	ThumbstickY
)

var categoryNames = map[Category]string{
	Unknown:         "unknown",
	Trigger:         "trigger",
	Squeeze:         "squeeze",
	AButton:         "a_button",
	BButton:         "b_button",
	XButton:         "x_button",
	YButton:         "y_button",
	ThumbstickPress: "thumbstick",
	ThumbstickX:     "thumbstick.xAxis",
	ThumbstickY:     "thumbstick.yAxis",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// IsAxis reports whether the category reads from the gamepad's axes array
// rather than its buttons array.
func (c Category) IsAxis() bool {
	return c == ThumbstickX || c == ThumbstickY
}

// Categorize resolves an entry name such as "xr-standard-thumbstick.xAxis" or
// "a_button". Axis suffixes win over the thumbstick press so that
// "thumbstick.xAxis" never doubles as the stick button.
func Categorize(name string) Category {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "xaxis"):
		return ThumbstickX
	case strings.Contains(n, "yaxis"):
		return ThumbstickY
	case strings.Contains(n, "trigger"):
		return Trigger
	case strings.Contains(n, "squeeze"):
		return Squeeze
	case faceButton(n, 'a'):
		return AButton
	case faceButton(n, 'b'):
		return BButton
	case faceButton(n, 'x'):
		return XButton
	case faceButton(n, 'y'):
		return YButton
	case strings.Contains(n, "thumbstick"):
		return ThumbstickPress
	}
	return Unknown
}

// faceButton matches "a_button" and "a-button" style names, optionally
// prefixed ("xr-standard-a-button").
func faceButton(n string, letter byte) bool {
	for _, sep := range []string{"_button", "-button"} {
		name := string(letter) + sep
		if n == name || strings.HasSuffix(n, "-"+name) || strings.HasSuffix(n, "_"+name) {
			return true
		}
	}
	return false
}
