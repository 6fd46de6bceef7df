// Package desktop maps a desktop gamepad onto a pair of xr-standard
// controllers. It holds no SDL bindings, so the core can use it on any host.
package desktop

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/soar/VRPawn/internal/xr"
)

// PadTarget is a control on a desktop gamepad.
type PadTarget int

const (
	PadLeftX PadTarget = iota
	PadLeftY
	PadRightX
	PadRightY
	PadLT
	PadRT
	PadA
	PadB
	PadX
	PadY
	PadLB
	PadRB
	PadL3
	PadR3
	padTargetCount
)

// AxisMapping defines how a raw SDL axis index maps to a pad control.
type AxisMapping struct {
	Index     int32
	Target    PadTarget
	IsTrigger bool
	// For triggers: raw range. Some devices use -32768..32767, others 0..32767.
	RawMin int16
	RawMax int16
}

// ButtonMapping defines how a raw SDL button index maps to a pad control.
type ButtonMapping struct {
	Index  int32
	Target PadTarget
}

// DeviceMapping holds the complete mapping for a specific desktop pad.
type DeviceMapping struct {
	Name    string
	Axes    []AxisMapping
	Buttons []ButtonMapping
}

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float64 {
	v := float64(raw) / math.MaxInt16
	if v < -1.0 {
		v = -1.0
	}
	return v
}

// NormalizeTrigger converts a raw trigger value to 0.0..1.0.
func NormalizeTrigger(raw int16, rawMin, rawMax int16) float64 {
	if rawMax == rawMin {
		return 0
	}
	v := (float64(raw) - float64(rawMin)) / (float64(rawMax) - float64(rawMin))
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

// ApplyDeadzone returns 0 if the value is within the deadzone threshold.
func ApplyDeadzone(v float64, threshold float64) float64 {
	if math.Abs(v) < threshold {
		return 0
	}
	return v
}

// Stick axes are kept in SDL's convention (up is negative), which is also the
// WebXR convention the sampler expects.
var standardAxes = []AxisMapping{
	{Index: 0, Target: PadLeftX},
	{Index: 1, Target: PadLeftY},
	{Index: 2, Target: PadRightX},
	{Index: 3, Target: PadRightY},
	{Index: 4, Target: PadLT, IsTrigger: true, RawMin: -32768, RawMax: 32767},
	{Index: 5, Target: PadRT, IsTrigger: true, RawMin: -32768, RawMax: 32767},
}

var xboxMapping = &DeviceMapping{
	Name: "xbox",
	Axes: standardAxes,
	Buttons: []ButtonMapping{
		{Index: 0, Target: PadA},
		{Index: 1, Target: PadB},
		{Index: 2, Target: PadX},
		{Index: 3, Target: PadY},
		{Index: 4, Target: PadLB},
		{Index: 5, Target: PadRB},
		{Index: 8, Target: PadL3},
		{Index: 9, Target: PadR3},
	},
}

var playstationMapping = &DeviceMapping{
	Name: "playstation",
	Axes: standardAxes,
	Buttons: []ButtonMapping{
		{Index: 0, Target: PadA}, // Cross
		{Index: 1, Target: PadB}, // Circle
		{Index: 2, Target: PadX}, // Square
		{Index: 3, Target: PadY}, // Triangle
		{Index: 7, Target: PadL3},
		{Index: 8, Target: PadR3},
		{Index: 9, Target: PadLB},  // L1
		{Index: 10, Target: PadRB}, // R1
	},
}

// The Pro Controller has digital ZL/ZR only; they are reported as buttons.
var switchProMapping = &DeviceMapping{
	Name: "switch_pro",
	Axes: standardAxes[:4],
	Buttons: []ButtonMapping{
		{Index: 0, Target: PadA},
		{Index: 1, Target: PadB},
		{Index: 2, Target: PadX},
		{Index: 3, Target: PadY},
		{Index: 4, Target: PadLB},
		{Index: 5, Target: PadRB},
		{Index: 8, Target: PadL3},
		{Index: 9, Target: PadR3},
	},
}

var genericMapping = &DeviceMapping{
	Name:    "generic",
	Axes:    standardAxes,
	Buttons: xboxMapping.Buttons,
}

// Known vendor/product IDs.
type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: xboxMapping, // Xbox 360
	{0x045E, 0x02FF}: xboxMapping, // Xbox One
	{0x045E, 0x0B12}: xboxMapping, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxMapping, // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: playstationMapping, // DualSense
	{0x054C, 0x09CC}: playstationMapping, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationMapping, // DualShock 4 v1
	// Nintendo Switch Pro Controller
	{0x057E, 0x2009}: switchProMapping,
}

// GetMapping returns the appropriate mapping for a device identified by vendor/product ID.
// Falls back to generic mapping if no specific mapping is found.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	key := deviceKey{VendorID: vendorID, ProductID: productID}
	if m, ok := knownDevices[key]; ok {
		return m
	}
	return genericMapping
}

// PadState is one poll of a desktop pad, indexed by PadTarget.
type PadState [padTargetCount]float64

// Desktop emulation splits one pad into two xr-standard controllers.
const (
	// EmulatedLeftIndex is reported first, as "left", so the handedness
	// resolver swaps roles exactly like a runtime that enumerates left first.
	EmulatedLeftIndex  = 0
	EmulatedRightIndex = 1

	triggerPressThreshold = 0.5
)

// EmulatedProfiles is the profile list reported for both emulated hands. The
// first id is not registered, so lookup falls through to the touch layout.
var EmulatedProfiles = []string{"sdl-gamepad", "oculus-touch"}

// EmulatedSources returns the source events announcing both emulated hands.
func EmulatedSources() []xr.SourceEvent {
	return []xr.SourceEvent{
		{Index: EmulatedLeftIndex, Handedness: xr.HandednessLeft, Profiles: EmulatedProfiles},
		{Index: EmulatedRightIndex, Handedness: xr.HandednessRight, Profiles: EmulatedProfiles},
	}
}

// Split builds the two xr-standard gamepads: buttons 0 trigger, 1 squeeze,
// 3 stick, 4/5 face; axes 2/3 stick.
func (p PadState) Split() (left, right xr.Gamepad) {
	left = xrPad(p[PadLT], p[PadLB], p[PadL3], p[PadX], p[PadY], p[PadLeftX], p[PadLeftY])
	right = xrPad(p[PadRT], p[PadRB], p[PadR3], p[PadA], p[PadB], p[PadRightX], p[PadRightY])
	return left, right
}

func xrPad(trigger, bumper, stick, face1, face2, x, y float64) xr.Gamepad {
	deflected := x != 0 || y != 0
	return xr.Gamepad{
		Buttons: []xr.Button{
			{Pressed: trigger >= triggerPressThreshold, Touched: trigger > 0, Value: trigger},
			{Pressed: bumper != 0, Touched: bumper != 0, Value: bumper},
			{},
			{Pressed: stick != 0, Touched: stick != 0 || deflected, Value: stick},
			{Pressed: face1 != 0, Touched: face1 != 0, Value: face1},
			{Pressed: face2 != 0, Touched: face2 != 0, Value: face2},
		},
		Axes: []float64{0, 0, x, y},
	}
}

// EmulatedTransforms places the emulated hands in front of the rig at chest
// height, pointing forward and tilted down so the aim ray meets the floor.
func EmulatedTransforms() map[int]mgl64.Mat4 {
	tilt := mgl64.HomogRotate3DX(mgl64.DegToRad(-35))
	return map[int]mgl64.Mat4{
		EmulatedLeftIndex:  mgl64.Translate3D(-0.2, 1.2, -0.3).Mul4(tilt),
		EmulatedRightIndex: mgl64.Translate3D(0.2, 1.2, -0.3).Mul4(tilt),
	}
}
