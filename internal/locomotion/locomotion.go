// Package locomotion implements teleport locomotion: aiming with the left
// stick, committing on release, snap turning with the right stick and grip
// driven selection indicators.
package locomotion

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/soar/VRPawn/internal/gamepad"
	"github.com/soar/VRPawn/internal/xr"
)

// State of the teleport state machine.
type State uint8

const (
	Idle State = iota
	Aiming
	// Committed is transient: a commit moves the rig and falls back to Idle
	// within the same Handle call.
	Committed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Aiming:
		return "aiming"
	case Committed:
		return "committed"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// MarshalText renders the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Config holds the locomotion tunables.
type Config struct {
	// SnapThreshold is the stick deflection a snap turn has to cross.
	SnapThreshold float64 `mapstructure:"snap_threshold"`
	// SnapAngle is the yaw of one snap turn, in degrees.
	SnapAngle float64 `mapstructure:"snap_angle"`
	// MaxOpacity is the selection indicator opacity with the grip open.
	MaxOpacity float64 `mapstructure:"max_opacity"`
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{SnapThreshold: 0.9, SnapAngle: 45, MaxOpacity: 0.25}
}

// Rig is the pawn root every controller hangs from.
type Rig struct {
	Position mgl64.Vec3 `json:"position"`
	// Yaw is the rotation about +Y in radians.
	Yaw float64 `json:"yaw"`
}

// Matrix returns the rig's world matrix.
func (r Rig) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(r.Position.X(), r.Position.Y(), r.Position.Z()).
		Mul4(mgl64.HomogRotate3DY(r.Yaw))
}

// ToWorld maps a rig-local transform into world space.
func (r Rig) ToWorld(local mgl64.Mat4) mgl64.Mat4 {
	return r.Matrix().Mul4(local)
}

// Target is the teleport destination marker.
type Target struct {
	Position mgl64.Vec3 `json:"position"`
	Visible  bool       `json:"visible"`
	Opacity  float64    `json:"opacity"`
}

// Indicator is the per controller feedback: the selection sphere opacity and
// the aim line scale.
type Indicator struct {
	Opacity float64 `json:"opacity"`
	Scale   float64 `json:"scale"`
}

// Step summarises what one Handle call did.
type Step struct {
	// Turn is the yaw applied this call, in radians.
	Turn      float64
	Committed bool
	// Moved is set when a commit had a target to move to.
	Moved bool
}

// Controller is the locomotion state machine. It is not safe for concurrent
// use; the frame loop owns it.
type Controller struct {
	cfg    Config
	logger *zap.Logger
	state  State
	rig    Rig
	target Target
	// hasTarget is set once the raycast hit during the current aim.
	hasTarget  bool
	indicators [len(xr.Roles)]Indicator
	commits    int
	snaps      int
}

// New returns a controller at rest with the rig at the origin.
func New(cfg Config, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{cfg: cfg, logger: logger}
	c.Reset(Rig{})
	return c
}

// Reset returns to Idle with the rig at rig and both indicators at rest.
func (c *Controller) Reset(rig Rig) {
	c.state = Idle
	c.rig = rig
	c.target = Target{}
	c.hasTarget = false
	for i := range c.indicators {
		c.indicators[i] = Indicator{Opacity: c.cfg.MaxOpacity}
	}
	c.commits = 0
	c.snaps = 0
}

// Handle applies the events of one frame. cur is the snapshot the events
// lead to. Releases are applied after axis changes so that a grip released
// in the same frame its axis drops still ends at opacity 0.
func (c *Controller) Handle(events []gamepad.Event, cur gamepad.State) Step {
	var step Step
	for _, e := range events {
		if e.Kind == gamepad.AxisChanged {
			c.axisChanged(e, cur, &step)
		}
	}
	for _, e := range events {
		if e.Kind == gamepad.Released {
			c.released(e, cur, &step)
		}
	}
	return step
}

func (c *Controller) axisChanged(e gamepad.Event, cur gamepad.State, step *Step) {
	switch e.Key {
	case gamepad.LStickYAxis:
		c.aim(e.Value, cur, step)
	case gamepad.RStickXAxis:
		c.snapTurn(e.Value, e.Previous, step)
	case gamepad.RGripAxis:
		c.indicators[xr.Right].Opacity = c.gripOpacity(e.Value)
	case gamepad.LGripAxis:
		c.indicators[xr.Left].Opacity = c.gripOpacity(e.Value)
	}
}

func (c *Controller) released(e gamepad.Event, cur gamepad.State, step *Step) {
	switch e.Key {
	case gamepad.RGrip:
		c.indicators[xr.Right].Opacity = 0
	case gamepad.LGrip:
		c.indicators[xr.Left].Opacity = 0
	case gamepad.LStickTouch:
		// thumb lifted off a stick that already sits at rest
		if c.state == Aiming && cur.Axis(gamepad.LStickYAxis) == 0 {
			c.commit(step)
		}
	}
}

// aim tracks the left stick. Any deflection arms a teleport; only a forward
// push scales the aim line. Returning to exactly 0 with the thumb off the
// stick commits, whatever the deflections in between.
func (c *Controller) aim(v float64, cur gamepad.State, step *Step) {
	if v > 0 {
		c.indicators[xr.Left].Scale = v
	} else {
		c.indicators[xr.Left].Scale = 0
	}
	if v != 0 {
		if c.state != Aiming {
			c.logger.Debug("teleport aiming")
			c.hasTarget = false
		}
		c.state = Aiming
		return
	}
	if c.state == Aiming && !cur.Bool(gamepad.LStickTouch) {
		c.commit(step)
	}
}

// commit moves the rig to the last position the raycast reported during
// this aim, even if the latest frame missed.
func (c *Controller) commit(step *Step) {
	c.state = Committed
	c.commits++
	step.Committed = true
	if c.hasTarget {
		c.rig.Position = c.target.Position
		step.Moved = true
		c.logger.Debug("teleport committed", zap.Float64s("position", c.rig.Position[:]))
	} else {
		c.logger.Debug("teleport committed without a target")
	}
	c.target.Visible = false
	c.hasTarget = false
	c.state = Idle
}

// Cancel abandons an aim without moving the rig. The frame loop calls it
// when the aiming hand drops out.
func (c *Controller) Cancel() {
	if c.state == Aiming {
		c.logger.Debug("teleport cancelled")
	}
	c.state = Idle
	c.target.Visible = false
	c.hasTarget = false
	c.indicators[xr.Left].Scale = 0
}

func (c *Controller) snapTurn(v, prev float64, step *Step) {
	th := c.cfg.SnapThreshold
	var turn float64
	switch {
	case v > th && prev <= th:
		turn = -mgl64.DegToRad(c.cfg.SnapAngle)
	case v < -th && prev >= -th:
		turn = mgl64.DegToRad(c.cfg.SnapAngle)
	default:
		return
	}
	c.rig.Yaw = normalizeAngle(c.rig.Yaw + turn)
	c.snaps++
	step.Turn += turn
}

func (c *Controller) gripOpacity(axis float64) float64 {
	return mgl64.Clamp(c.cfg.MaxOpacity-axis*c.cfg.MaxOpacity, 0, c.cfg.MaxOpacity)
}

// UpdateAim feeds the latest raycast result. It is ignored unless aiming; a
// miss hides the target but keeps its last position for the commit.
func (c *Controller) UpdateAim(hit mgl64.Vec3, ok bool) {
	if c.state != Aiming {
		return
	}
	c.target.Visible = ok
	if ok {
		c.target.Position = hit
		c.hasTarget = true
	}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Rig returns the root pose.
func (c *Controller) Rig() Rig {
	return c.rig
}

// Target returns the teleport target. Its opacity follows the aiming hand's
// selection indicator.
func (c *Controller) Target() Target {
	t := c.target
	t.Opacity = c.indicators[xr.Left].Opacity
	return t
}

// Indicator returns the feedback state of one controller.
func (c *Controller) Indicator(role xr.Role) Indicator {
	if role != xr.Left && role != xr.Right {
		return Indicator{}
	}
	return c.indicators[role]
}

// Commits returns how many teleport commits happened since Reset.
func (c *Controller) Commits() int {
	return c.commits
}

// Snaps returns how many snap turns happened since Reset.
func (c *Controller) Snaps() int {
	return c.snaps
}

// normalizeAngle wraps a into (-pi, pi].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
