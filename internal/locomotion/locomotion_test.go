package locomotion

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/soar/VRPawn/internal/gamepad"
	"github.com/soar/VRPawn/internal/xr"
)

// driver pushes snapshots through a real edge detector into a controller.
type driver struct {
	det *gamepad.Detector
	loc *Controller
}

func newDriver(t *testing.T) *driver {
	t.Helper()
	return &driver{det: gamepad.NewDetector(), loc: New(DefaultConfig(), zap.NewNop())}
}

func (d *driver) push(s gamepad.State) Step {
	return d.loc.Handle(d.det.Push(s), s)
}

func stickY(v float64, touched bool) gamepad.State {
	return gamepad.Default.WithAxis(gamepad.LStickYAxis, v).WithButton(gamepad.LStickTouch, touched)
}

func TestSnapTurnFiresOncePerCrossing(t *testing.T) {
	d := newDriver(t)
	var turns []float64
	for _, v := range []float64{0.5, 0.95, 0.95, 0.95, 0.2} {
		if step := d.push(gamepad.Default.WithAxis(gamepad.RStickXAxis, v)); step.Turn != 0 {
			turns = append(turns, step.Turn)
		}
	}
	require.Len(t, turns, 1)
	assert.InDelta(t, -math.Pi/4, turns[0], 1e-12)
	assert.InDelta(t, -math.Pi/4, d.loc.Rig().Yaw, 1e-12)
	assert.Equal(t, 1, d.loc.Snaps())
}

func TestSnapTurnBothDirections(t *testing.T) {
	d := newDriver(t)
	for _, v := range []float64{0, -0.95, -0.5, -0.95, 0, 0.91} {
		d.push(gamepad.Default.WithAxis(gamepad.RStickXAxis, v))
	}
	// two counter clockwise snaps, one clockwise
	assert.Equal(t, 3, d.loc.Snaps())
	assert.InDelta(t, math.Pi/4, d.loc.Rig().Yaw, 1e-12)
}

func TestSnapTurnFromExactThreshold(t *testing.T) {
	d := newDriver(t)
	d.push(gamepad.Default.WithAxis(gamepad.RStickXAxis, 0.9))
	step := d.push(gamepad.Default.WithAxis(gamepad.RStickXAxis, 0.92))
	assert.NotZero(t, step.Turn, "a previous value of exactly the threshold re-arms")
}

func TestSnapTurnWrapsYaw(t *testing.T) {
	d := newDriver(t)
	for i := 0; i < 9; i++ {
		d.push(gamepad.Default)
		d.push(gamepad.Default.WithAxis(gamepad.RStickXAxis, 1))
	}
	assert.Equal(t, 9, d.loc.Snaps())
	assert.InDelta(t, -math.Pi/4, d.loc.Rig().Yaw, 1e-9)
}

func TestGripOpacity(t *testing.T) {
	d := newDriver(t)
	var got []float64
	for _, v := range []float64{0.0, 0.4, 0.8} {
		d.push(gamepad.Default.WithAxis(gamepad.RGripAxis, v).WithButton(gamepad.RGrip, v > 0))
		got = append(got, d.loc.Indicator(xr.Right).Opacity)
	}
	require.Len(t, got, 3)
	assert.InDelta(t, 0.25, got[0], 1e-12)
	assert.InDelta(t, 0.15, got[1], 1e-12)
	assert.InDelta(t, 0.05, got[2], 1e-12)

	// the release forces 0 whatever the axis still reads
	d.push(gamepad.Default.WithAxis(gamepad.RGripAxis, 0.8))
	assert.Zero(t, d.loc.Indicator(xr.Right).Opacity)
	assert.InDelta(t, 0.25, d.loc.Indicator(xr.Left).Opacity, 1e-12, "other hand untouched")
}

func TestGripReleaseWinsOverAxisDrop(t *testing.T) {
	d := newDriver(t)
	d.push(gamepad.Default)
	d.push(gamepad.Default.WithAxis(gamepad.LGripAxis, 1).WithButton(gamepad.LGrip, true))
	assert.Zero(t, d.loc.Indicator(xr.Left).Opacity)
	d.push(gamepad.Default.WithAxis(gamepad.LGripAxis, 0.6).WithButton(gamepad.LGrip, true))
	assert.InDelta(t, 0.1, d.loc.Indicator(xr.Left).Opacity, 1e-12)

	d.push(gamepad.Default)
	assert.Zero(t, d.loc.Indicator(xr.Left).Opacity)
}

func TestGripOpacityClamped(t *testing.T) {
	c := New(DefaultConfig(), nil)
	c.Handle([]gamepad.Event{{Kind: gamepad.AxisChanged, Key: gamepad.LGripAxis, Value: 1.5}}, gamepad.Default)
	assert.Zero(t, c.Indicator(xr.Left).Opacity)
	c.Handle([]gamepad.Event{{Kind: gamepad.AxisChanged, Key: gamepad.LGripAxis, Value: -1}}, gamepad.Default)
	assert.Equal(t, 0.25, c.Indicator(xr.Left).Opacity)
}

func TestTeleportCommitsOnce(t *testing.T) {
	d := newDriver(t)
	target := mgl64.Vec3{1, 0, -3}
	commits := 0
	for _, v := range []float64{0, 0.2, 0.7, 1, 0.6, 0.3, 0} {
		step := d.push(stickY(v, false))
		if step.Committed {
			commits++
		}
		d.loc.UpdateAim(target, true)
	}
	assert.Equal(t, 1, commits)
	assert.Equal(t, 1, d.loc.Commits())
	assert.Equal(t, Idle, d.loc.State())
	assert.Equal(t, target, d.loc.Rig().Position)
	assert.False(t, d.loc.Target().Visible)
}

func TestTeleportWaitsForThumbToLift(t *testing.T) {
	d := newDriver(t)
	d.push(stickY(0, true))
	d.push(stickY(0.8, true))
	d.loc.UpdateAim(mgl64.Vec3{0, 0, -2}, true)

	step := d.push(stickY(0, true))
	assert.False(t, step.Committed)
	assert.Equal(t, Aiming, d.loc.State())
	assert.Zero(t, d.loc.Indicator(xr.Left).Scale)

	step = d.push(stickY(0, false))
	assert.True(t, step.Committed)
	assert.True(t, step.Moved)
	assert.Equal(t, mgl64.Vec3{0, 0, -2}, d.loc.Rig().Position)
}

func TestTeleportWithoutTarget(t *testing.T) {
	d := newDriver(t)
	d.push(stickY(0, false))
	d.push(stickY(0.8, false))
	d.loc.UpdateAim(mgl64.Vec3{}, false)
	step := d.push(stickY(0, false))
	assert.True(t, step.Committed)
	assert.False(t, step.Moved)
	assert.Equal(t, mgl64.Vec3{}, d.loc.Rig().Position)
}

func TestAimMissCommitsLastHit(t *testing.T) {
	d := newDriver(t)
	d.push(stickY(0, false))
	d.push(stickY(0.5, false))
	d.loc.UpdateAim(mgl64.Vec3{3, 0, -3}, true)
	d.loc.UpdateAim(mgl64.Vec3{}, false)

	tgt := d.loc.Target()
	assert.False(t, tgt.Visible)
	assert.Equal(t, mgl64.Vec3{3, 0, -3}, tgt.Position)

	step := d.push(stickY(0, false))
	assert.True(t, step.Moved)
	assert.Equal(t, mgl64.Vec3{3, 0, -3}, d.loc.Rig().Position)
}

func TestHitFromEarlierAimIsNotReused(t *testing.T) {
	d := newDriver(t)
	d.push(stickY(0, false))
	d.push(stickY(0.5, false))
	d.loc.UpdateAim(mgl64.Vec3{3, 0, -3}, true)
	d.push(stickY(0, false))
	require.Equal(t, mgl64.Vec3{3, 0, -3}, d.loc.Rig().Position)

	d.push(stickY(0.5, false))
	d.loc.UpdateAim(mgl64.Vec3{}, false)
	step := d.push(stickY(0, false))
	assert.True(t, step.Committed)
	assert.False(t, step.Moved)
	assert.Equal(t, mgl64.Vec3{3, 0, -3}, d.loc.Rig().Position)
}

func TestAimScalesIndicator(t *testing.T) {
	d := newDriver(t)
	d.push(stickY(0, true))
	d.push(stickY(0.4, true))
	assert.Equal(t, Aiming, d.loc.State())
	assert.Equal(t, 0.4, d.loc.Indicator(xr.Left).Scale)
	assert.Zero(t, d.loc.Indicator(xr.Right).Scale)
}

func TestNegativeExcursionCommits(t *testing.T) {
	tests := []struct {
		name string
		axis []float64
	}{
		{"forward then back", []float64{0, 0.5, -0.3, 0}},
		{"back only", []float64{0, -0.5, 0}},
		{"jitter", []float64{0, 0.1, -0.1, 0.2, -0.4, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDriver(t)
			for _, v := range tt.axis {
				d.push(stickY(v, false))
				if v < 0 {
					assert.Zero(t, d.loc.Indicator(xr.Left).Scale)
				}
			}
			assert.Equal(t, 1, d.loc.Commits())
			assert.Equal(t, Idle, d.loc.State())
		})
	}
}

func TestNegativeStickKeepsTarget(t *testing.T) {
	d := newDriver(t)
	d.push(stickY(0, true))
	d.push(stickY(0.9, true))
	d.loc.UpdateAim(mgl64.Vec3{0, 0, -4}, true)
	d.push(stickY(-0.5, true))
	assert.Equal(t, Aiming, d.loc.State())
	assert.Zero(t, d.loc.Indicator(xr.Left).Scale)

	step := d.push(stickY(0, false))
	assert.True(t, step.Committed)
	assert.Equal(t, mgl64.Vec3{0, 0, -4}, d.loc.Rig().Position)
}

func TestCancel(t *testing.T) {
	d := newDriver(t)
	d.push(stickY(0, false))
	d.push(stickY(0.7, false))
	d.loc.UpdateAim(mgl64.Vec3{0, 0, -2}, true)

	d.loc.Cancel()
	assert.Equal(t, Idle, d.loc.State())
	assert.False(t, d.loc.Target().Visible)
	assert.Zero(t, d.loc.Indicator(xr.Left).Scale)

	step := d.push(stickY(0, false))
	assert.False(t, step.Committed)
	assert.Zero(t, d.loc.Commits())
	assert.Equal(t, mgl64.Vec3{}, d.loc.Rig().Position)
}

func TestUpdateAimIgnoredWhenIdle(t *testing.T) {
	c := New(DefaultConfig(), nil)
	c.UpdateAim(mgl64.Vec3{1, 1, 1}, true)
	assert.False(t, c.Target().Visible)
	assert.Equal(t, mgl64.Vec3{}, c.Target().Position)
}

func TestTargetOpacityFollowsLeftIndicator(t *testing.T) {
	c := New(DefaultConfig(), nil)
	assert.Equal(t, 0.25, c.Target().Opacity)
	c.Handle([]gamepad.Event{{Kind: gamepad.Released, Key: gamepad.LGrip}}, gamepad.Default)
	assert.Zero(t, c.Target().Opacity)
}

func TestReset(t *testing.T) {
	d := newDriver(t)
	d.push(stickY(0, false))
	d.push(stickY(1, false))
	d.loc.Reset(Rig{Position: mgl64.Vec3{0, 0, 1}})
	assert.Equal(t, Idle, d.loc.State())
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, d.loc.Rig().Position)
	assert.Equal(t, 0.25, d.loc.Indicator(xr.Left).Opacity)
	assert.Zero(t, d.loc.Indicator(xr.Left).Scale)
}

func TestRigToWorld(t *testing.T) {
	r := Rig{Position: mgl64.Vec3{1, 0, 0}, Yaw: math.Pi / 2}
	w := r.ToWorld(mgl64.Translate3D(0, 1, -1))
	got := w.Col(3).Vec3()
	// local -Z turns into world -X after a +90° yaw
	for i, want := range []float64{0, 1, 0} {
		assert.InDelta(t, want, got[i], 1e-12, "component %d of %v", i, got)
	}
}

func TestCommitLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := New(DefaultConfig(), zap.New(core))
	c.Handle([]gamepad.Event{{Kind: gamepad.AxisChanged, Key: gamepad.LStickYAxis, Value: 1}}, gamepad.Default)
	c.Handle([]gamepad.Event{{Kind: gamepad.AxisChanged, Key: gamepad.LStickYAxis, Value: 0, Previous: 1}}, gamepad.Default)
	assert.Equal(t, 1, logs.FilterMessage("teleport committed without a target").Len())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "aiming", Aiming.String())
	text, err := Committed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "committed", string(text))
}
