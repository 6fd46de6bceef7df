package gamepad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/VRPawn/internal/controllermap"
	"github.com/soar/VRPawn/internal/xr"
)

func touchProfile(t *testing.T) *controllermap.Profile {
	t.Helper()
	p, err := controllermap.NewRegistry().Lookup([]string{"oculus-touch"})
	require.NoError(t, err)
	return p
}

func pad() *xr.Gamepad {
	return &xr.Gamepad{
		Buttons: make([]xr.Button, 7),
		Axes:    make([]float64, 4),
	}
}

func TestSamplerReadsRightHand(t *testing.T) {
	p := touchProfile(t)
	right := pad()
	right.Buttons[0] = xr.Button{Pressed: true, Touched: true, Value: 0.876}
	right.Buttons[1] = xr.Button{Value: 0.404}
	right.Buttons[3] = xr.Button{Touched: true}
	right.Buttons[4] = xr.Button{Pressed: true, Touched: true}
	right.Buttons[5] = xr.Button{Touched: true}
	right.Axes[2] = 0.3
	right.Axes[3] = -0.7

	st := NewSampler(DefaultSamplerConfig()).Sample(Hand{Map: p.Right, Pad: right}, Hand{})

	assert.True(t, st.Bool(RTrigger))
	assert.Equal(t, 0.88, st.Axis(RTriggerAxis))
	assert.False(t, st.Bool(RGrip))
	assert.Equal(t, 0.4, st.Axis(RGripAxis))
	assert.False(t, st.Bool(RStick))
	assert.True(t, st.Bool(RStickTouch))
	assert.True(t, st.Bool(A))
	assert.True(t, st.Bool(ATouch))
	assert.False(t, st.Bool(B))
	assert.True(t, st.Bool(BTouch))
	assert.Equal(t, 0.3, st.Axis(RStickXAxis))
	assert.Equal(t, 0.7, st.Axis(RStickYAxis), "forward reads positive")

	for _, k := range []Key{LTrigger, LGripAxis, LStickYAxis, X, Y} {
		assert.Zero(t, st.Value(k), k.String())
	}
}

func TestSamplerReadsLeftHand(t *testing.T) {
	p := touchProfile(t)
	left := pad()
	left.Buttons[1] = xr.Button{Pressed: true, Value: 1}
	left.Buttons[4] = xr.Button{Pressed: true, Touched: true}
	left.Axes[3] = -1

	st := NewSampler(DefaultSamplerConfig()).Sample(Hand{}, Hand{Map: p.Left, Pad: left})

	assert.True(t, st.Bool(LGrip))
	assert.Equal(t, 1.0, st.Axis(LGripAxis))
	assert.True(t, st.Bool(X))
	assert.False(t, st.Bool(A), "left face buttons never surface as A")
	assert.Equal(t, 1.0, st.Axis(LStickYAxis))
}

func TestSamplerFaceButtonsStayOnTheirHand(t *testing.T) {
	// a profile that names a_button on the left hand
	m, err := controllermap.NewHandMap(map[string]int{"a_button": 0, "x_button": 1})
	require.NoError(t, err)
	g := pad()
	g.Buttons[0] = xr.Button{Pressed: true}
	g.Buttons[1] = xr.Button{Pressed: true}

	s := NewSampler(DefaultSamplerConfig())
	st := s.Sample(Hand{}, Hand{Map: m, Pad: g})
	assert.False(t, st.Bool(A))
	assert.True(t, st.Bool(X))

	st = s.Sample(Hand{Map: m, Pad: g}, Hand{})
	assert.True(t, st.Bool(A))
	assert.False(t, st.Bool(X))
}

func TestSamplerTunables(t *testing.T) {
	p := touchProfile(t)
	g := pad()
	g.Buttons[0] = xr.Button{Value: 0.123456}
	g.Axes[3] = -0.5

	st := NewSampler(SamplerConfig{InvertY: false, Precision: -1}).Sample(Hand{Map: p.Right, Pad: g}, Hand{})
	assert.Equal(t, 0.123456, st.Axis(RTriggerAxis))
	assert.Equal(t, -0.5, st.Axis(RStickYAxis))
}

func TestSamplerAbsentHandIsDefault(t *testing.T) {
	p := touchProfile(t)
	s := NewSampler(DefaultSamplerConfig())

	assert.True(t, s.Sample(Hand{}, Hand{}).IsDefault())
	assert.True(t, s.Sample(Hand{Map: p.Right}, Hand{Pad: pad()}).IsDefault())
}

func TestSamplerShortGamepad(t *testing.T) {
	p := touchProfile(t)
	short := &xr.Gamepad{Buttons: []xr.Button{{Pressed: true, Value: 1}}}

	st := NewSampler(DefaultSamplerConfig()).Sample(Hand{Map: p.Right, Pad: short}, Hand{})
	assert.True(t, st.Bool(RTrigger))
	assert.Zero(t, st.Axis(RStickXAxis))
	assert.False(t, st.Bool(A))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 0.15, RoundTo(0.149, 2))
	assert.Equal(t, 0.1, RoundTo(0.14, 1))
	assert.Equal(t, 1.0, RoundTo(0.999, 2))
	assert.Equal(t, 0.333, RoundTo(0.333, -1))
}
