// Package pawn ties the input pipeline to locomotion. A Pawn is driven by one
// goroutine: sessions start and end, input sources connect, and OnFrame
// advances sampler, edge detector and locomotion once per rendered frame.
// Controller setup runs asynchronously and is applied by OnFrame.
package pawn

import (
	"context"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/soar/VRPawn/internal/controllermap"
	"github.com/soar/VRPawn/internal/gamepad"
	"github.com/soar/VRPawn/internal/handedness"
	"github.com/soar/VRPawn/internal/locomotion"
	"github.com/soar/VRPawn/internal/raytrace"
	"github.com/soar/VRPawn/internal/xr"
)

// TransformSource returns the current world matrix of the controller at a
// physical index.
type TransformSource interface {
	WorldTransform(index int) (mgl64.Mat4, bool)
}

// GamepadSource returns the live gamepad of the controller at a physical
// index.
type GamepadSource interface {
	Gamepad(index int) (*xr.Gamepad, bool)
}

// Raycaster tests a ray against the navigable scene.
type Raycaster interface {
	Raycast(ray raytrace.Ray) (mgl64.Vec3, bool)
}

// Visual is the renderer's handle on a loaded controller model.
type Visual interface {
	AssetPath() string
}

// VisualLoader loads the model of a controller. It is called from a setup
// goroutine and must honour ctx.
type VisualLoader interface {
	LoadVisual(ctx context.Context, assetPath string) (Visual, error)
}

// ErrNoSession is returned by operations that need an active session.
var ErrNoSession = errors.New("no active session")

const resultBuffer = 8

// Config holds the tunables of the pipeline.
type Config struct {
	Sampler    gamepad.SamplerConfig
	Forward    mgl64.Vec3
	Locomotion locomotion.Config
}

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	return Config{
		Sampler:    gamepad.DefaultSamplerConfig(),
		Forward:    raytrace.DefaultForward,
		Locomotion: locomotion.DefaultConfig(),
	}
}

// Options are the collaborators of a Pawn. Registry, Transforms and Gamepads
// are required; a nil Raycaster never hits and a nil Visuals skips model
// loading.
type Options struct {
	Config     Config
	Registry   *controllermap.Registry
	Transforms TransformSource
	Gamepads   GamepadSource
	Raycaster  Raycaster
	Visuals    VisualLoader
	Logger     *zap.Logger
}

// ControllerHandle is a controller that finished setup in the current
// session.
type ControllerHandle struct {
	Role  xr.Role
	Index int
	// Profile is nil when the device reported no known profile; the hand then
	// samples as default.
	Profile *controllermap.Profile
	Visual  Visual

	ray   raytrace.Ray
	rayOK bool
}

// Ray returns the ray computed this frame.
func (h *ControllerHandle) Ray() (raytrace.Ray, bool) {
	return h.ray, h.rayOK
}

type session struct {
	id     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
	start  time.Time
}

// Pawn is not safe for concurrent use.
type Pawn struct {
	cfg        Config
	logger     *zap.Logger
	registry   *controllermap.Registry
	transforms TransformSource
	gamepads   GamepadSource
	raycaster  Raycaster
	visuals    VisualLoader

	resolver *handedness.Resolver
	sampler  *gamepad.Sampler
	detector *gamepad.Detector
	loco     *locomotion.Controller
	tracer   *raytrace.Tracer

	session *session
	handles [len(xr.Roles)]*ControllerHandle
	// pending holds the setup generation each role waits for; 0 means none.
	pending [len(xr.Roles)]uint64
	gen     uint64
	results chan setupResult

	frame   uint64
	elapsed time.Duration
	input   gamepad.State
	events  []gamepad.Event
	step    locomotion.Step
	// present records which hands were sampled from a live gamepad last
	// frame.
	present [len(xr.Roles)]bool
}

// New returns a pawn with no session.
func New(opts Options) (*Pawn, error) {
	if opts.Registry == nil {
		return nil, errors.New("pawn: registry is required")
	}
	if opts.Transforms == nil || opts.Gamepads == nil {
		return nil, errors.New("pawn: transform and gamepad sources are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pawn{
		cfg:        opts.Config,
		logger:     logger,
		registry:   opts.Registry,
		transforms: opts.Transforms,
		gamepads:   opts.Gamepads,
		raycaster:  opts.Raycaster,
		visuals:    opts.Visuals,
		resolver:   handedness.NewResolver(logger),
		sampler:    gamepad.NewSampler(opts.Config.Sampler),
		detector:   gamepad.NewDetector(),
		loco:       locomotion.New(opts.Config.Locomotion, logger.Named("locomotion")),
		tracer:     raytrace.NewTracer(opts.Config.Forward),
		results:    make(chan setupResult, resultBuffer),
	}, nil
}

// StartSession begins a new XR session, ending the current one first. Role
// resolution is re-armed and every per-session state is reset.
func (p *Pawn) StartSession() uuid.UUID {
	if p.session != nil {
		p.EndSession()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.session = &session{id: uuid.New(), ctx: ctx, cancel: cancel, start: time.Now()}

	p.resolver.Reset()
	p.detector.Reset()
	p.loco.Reset(locomotion.Rig{})
	p.frame = 0
	p.elapsed = 0
	p.input = gamepad.Default
	p.events = p.events[:0]
	p.step = locomotion.Step{}
	p.present = [len(xr.Roles)]bool{}

	p.logger.Info("session started", zap.Stringer("session", p.session.id))
	return p.session.id
}

// EndSession ends the active session. In-flight controller setup is cancelled
// and its results are discarded.
func (p *Pawn) EndSession() {
	if p.session == nil {
		return
	}
	s := p.session
	s.cancel()
	p.session = nil
	p.handles = [len(xr.Roles)]*ControllerHandle{}
	p.pending = [len(xr.Roles)]uint64{}
	p.logger.Info("session ended",
		zap.Stringer("session", s.id),
		zap.Duration("duration", time.Since(s.start)),
		zap.Uint64("frames", p.frame),
		zap.Int("commits", p.loco.Commits()))
}

// Active reports whether a session is running.
func (p *Pawn) Active() bool {
	return p.session != nil
}

// SessionID returns the id of the active session.
func (p *Pawn) SessionID() (uuid.UUID, bool) {
	if p.session == nil {
		return uuid.Nil, false
	}
	return p.session.id, true
}

// Connect reports input sources appearing or disappearing. The first call of
// a session resolves the hand roles. Added sources start an asynchronous
// setup; their handle becomes available in a later OnFrame.
func (p *Pawn) Connect(events []xr.SourceEvent) error {
	if p.session == nil {
		return ErrNoSession
	}
	assignment := p.resolver.Observe(events)
	for _, ev := range events {
		role, ok := assignment.RoleOf(ev.Index)
		if !ok {
			p.logger.Debug("ignoring input source outside the role assignment",
				zap.Int("index", ev.Index), zap.String("handedness", string(ev.Handedness)))
			continue
		}
		if ev.Removed {
			p.handles[role] = nil
			p.pending[role] = 0
			p.logger.Info("controller disconnected", zap.Stringer("role", role), zap.Int("index", ev.Index))
			continue
		}
		p.gen++
		p.pending[role] = p.gen
		p.handles[role] = nil
		go p.setup(p.session, p.gen, role, ev)
	}
	return nil
}

// Handle returns the handle of a role, or nil while it is unresolved.
func (p *Pawn) Handle(role xr.Role) *ControllerHandle {
	if role != xr.Left && role != xr.Right {
		return nil
	}
	return p.handles[role]
}

// Assignment returns the current role assignment.
func (p *Pawn) Assignment() handedness.Assignment {
	return p.resolver.Assignment()
}

// TeleportTargetPose returns the teleport target.
func (p *Pawn) TeleportTargetPose() locomotion.Target {
	return p.loco.Target()
}

// SelectionIndicatorOpacity returns the selection sphere opacity of a role.
func (p *Pawn) SelectionIndicatorOpacity(role xr.Role) float64 {
	return p.loco.Indicator(role).Opacity
}

// IndicatorScale returns the aim line scale of a role.
func (p *Pawn) IndicatorScale(role xr.Role) float64 {
	return p.loco.Indicator(role).Scale
}

// RootPose returns the rig pose.
func (p *Pawn) RootPose() locomotion.Rig {
	return p.loco.Rig()
}

// Ray returns this frame's ray of a role. ok is false while the role is
// unresolved or its transform is unavailable.
func (p *Pawn) Ray(role xr.Role) (raytrace.Ray, bool) {
	h := p.Handle(role)
	if h == nil {
		return raytrace.Ray{}, false
	}
	return h.Ray()
}

// LocomotionState returns the teleport state.
func (p *Pawn) LocomotionState() locomotion.State {
	return p.loco.State()
}

// Input returns the snapshot sampled by the last frame.
func (p *Pawn) Input() gamepad.State {
	return p.input
}

// Events returns the edge events of the last frame, without those of a hand
// that dropped out. The slice may be reused by the next frame.
func (p *Pawn) Events() []gamepad.Event {
	return p.events
}
