package gamepad

import (
	"math"

	"github.com/soar/VRPawn/internal/controllermap"
	"github.com/soar/VRPawn/internal/xr"
)

// SamplerConfig holds the tunables that differed between controller
// revisions.
type SamplerConfig struct {
	// InvertY flips thumbstick Y so that pushing forward reads positive.
	InvertY bool
	// Precision is the number of decimals trigger and grip values are rounded
	// to. Negative disables rounding.
	Precision int
}

// DefaultSamplerConfig returns the converged settings.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{InvertY: true, Precision: 2}
}

// Hand is what the sampler reads for one role. A nil Map or Pad means the
// role is absent this frame and samples as default.
type Hand struct {
	Map *controllermap.HandMap
	Pad *xr.Gamepad
}

// Sampler reads raw gamepads through controller maps into State snapshots.
type Sampler struct {
	cfg SamplerConfig
}

// NewSampler returns a sampler using cfg.
func NewSampler(cfg SamplerConfig) *Sampler {
	return &Sampler{cfg: cfg}
}

// Config returns the sampler's settings.
func (s *Sampler) Config() SamplerConfig {
	return s.cfg
}

// Sample builds one snapshot from both hands.
func (s *Sampler) Sample(right, left Hand) State {
	var st State
	s.sampleHand(&st, rightKeys, right, true)
	s.sampleHand(&st, leftKeys, left, false)
	return st
}

func (s *Sampler) sampleHand(st *State, keys handKeys, h Hand, isRight bool) {
	if h.Map == nil || h.Pad == nil {
		return
	}
	for _, e := range h.Map.Entries() {
		if e.Category.IsAxis() {
			v, ok := h.Pad.Axis(e.Index)
			if !ok {
				continue
			}
			switch e.Category {
			case controllermap.ThumbstickX:
				st.values[keys.stickX] = v
			case controllermap.ThumbstickY:
				if s.cfg.InvertY {
					v = -v
				}
				st.values[keys.stickY] = v + 0 // normalise -0
			}
			continue
		}

		b, ok := h.Pad.Button(e.Index)
		if !ok {
			continue
		}
		switch e.Category {
		case controllermap.Trigger:
			st.values[keys.trigger] = boolValue(b.Pressed)
			st.values[keys.triggerAxis] = s.round(b.Value)
		case controllermap.Squeeze:
			st.values[keys.grip] = boolValue(b.Pressed)
			st.values[keys.gripAxis] = s.round(b.Value)
		case controllermap.ThumbstickPress:
			st.values[keys.stick] = boolValue(b.Pressed)
			st.values[keys.stickTouch] = boolValue(b.Touched)
		case controllermap.AButton:
			if isRight {
				st.values[keys.face1] = boolValue(b.Pressed)
				st.values[keys.face1Touch] = boolValue(b.Touched)
			}
		case controllermap.BButton:
			if isRight {
				st.values[keys.face2] = boolValue(b.Pressed)
				st.values[keys.face2Touch] = boolValue(b.Touched)
			}
		case controllermap.XButton:
			if !isRight {
				st.values[keys.face1] = boolValue(b.Pressed)
				st.values[keys.face1Touch] = boolValue(b.Touched)
			}
		case controllermap.YButton:
			if !isRight {
				st.values[keys.face2] = boolValue(b.Pressed)
				st.values[keys.face2Touch] = boolValue(b.Touched)
			}
		}
	}
}

func (s *Sampler) round(v float64) float64 {
	return RoundTo(v, s.cfg.Precision)
}

// RoundTo rounds v to the given number of decimals. Negative precision
// returns v unchanged.
func RoundTo(v float64, precision int) float64 {
	if precision < 0 {
		return v
	}
	p := math.Pow(10, float64(precision))
	return math.Round(v*p)/p + 0
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
