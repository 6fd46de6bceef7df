// Package runner owns the pawn on a single goroutine. Input arrives from the
// WebSocket clients and the SDL reader as commands; every applied frame is
// published as a snapshot.
package runner

import (
	"context"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/soar/VRPawn/internal/controllermap"
	"github.com/soar/VRPawn/internal/pawn"
	"github.com/soar/VRPawn/internal/xr"
)

const (
	commandBuffer  = 256
	snapshotBuffer = 64
)

// Frame is one frame of input. Transforms are relative to the rig root; a
// nil map keeps the previous (or fallback) placement.
type Frame struct {
	DT         time.Duration
	Pads       map[int]xr.Gamepad
	Transforms map[int]mgl64.Mat4
}

type commandKind int

const (
	cmdStart commandKind = iota
	cmdEnd
	cmdSources
	cmdFrame
)

type command struct {
	kind    commandKind
	sources []xr.SourceEvent
	frame   Frame
}

// Options configure a Runner.
type Options struct {
	Config    pawn.Config
	Registry  *controllermap.Registry
	Raycaster pawn.Raycaster
	Visuals   pawn.VisualLoader
	// Fallback places controllers for which no transform was ever reported.
	Fallback map[int]mgl64.Mat4
	Logger   *zap.Logger
}

// Runner serialises every pawn operation onto the goroutine calling Run.
type Runner struct {
	logger    *zap.Logger
	pawn      *pawn.Pawn
	cmds      chan command
	snapshots chan pawn.Snapshot
	done      chan struct{}

	pads     map[int]*xr.Gamepad
	local    map[int]mgl64.Mat4
	fallback map[int]mgl64.Mat4
	dropped  uint64
}

// New builds the runner and its pawn.
func New(opts Options) (*Runner, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		logger:    logger,
		cmds:      make(chan command, commandBuffer),
		snapshots: make(chan pawn.Snapshot, snapshotBuffer),
		done:      make(chan struct{}),
		pads:      map[int]*xr.Gamepad{},
		local:     map[int]mgl64.Mat4{},
		fallback:  opts.Fallback,
	}
	p, err := pawn.New(pawn.Options{
		Config:     opts.Config,
		Registry:   opts.Registry,
		Transforms: r,
		Gamepads:   r,
		Raycaster:  opts.Raycaster,
		Visuals:    opts.Visuals,
		Logger:     logger.Named("pawn"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create pawn")
	}
	r.pawn = p
	return r, nil
}

// Snapshots returns the channel every applied frame is published on. It is
// closed when Run returns.
func (r *Runner) Snapshots() <-chan pawn.Snapshot {
	return r.snapshots
}

// Run applies commands until ctx is done. The active session is ended on
// the way out.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.snapshots)
	defer close(r.done)

	for {
		select {
		case <-ctx.Done():
			r.pawn.EndSession()
			if r.dropped > 0 {
				r.logger.Info("runner stopped", zap.Uint64("dropped_snapshots", r.dropped))
			}
			return nil
		case cmd := <-r.cmds:
			r.apply(cmd)
		}
	}
}

func (r *Runner) apply(cmd command) {
	switch cmd.kind {
	case cmdStart:
		r.pads = map[int]*xr.Gamepad{}
		r.local = map[int]mgl64.Mat4{}
		r.pawn.StartSession()
		r.publish()
	case cmdEnd:
		r.pawn.EndSession()
		r.publish()
	case cmdSources:
		if err := r.pawn.Connect(cmd.sources); err != nil {
			r.logger.Warn("input sources ignored", zap.Error(err), zap.Int("count", len(cmd.sources)))
		}
	case cmdFrame:
		if !r.pawn.Active() {
			return
		}
		r.setFrame(cmd.frame)
		r.pawn.OnFrame(cmd.frame.DT)
		r.publish()
	}
}

func (r *Runner) setFrame(f Frame) {
	pads := make(map[int]*xr.Gamepad, len(f.Pads))
	for i, g := range f.Pads {
		pads[i] = &g
	}
	r.pads = pads
	for i, m := range f.Transforms {
		r.local[i] = m
	}
}

// publish never blocks the frame loop; a slow broadcaster loses snapshots.
func (r *Runner) publish() {
	select {
	case r.snapshots <- r.pawn.Snapshot():
	default:
		r.dropped++
	}
}

func (r *Runner) send(cmd command) {
	select {
	case r.cmds <- cmd:
	case <-r.done:
	}
}

// StartSession starts a new XR session.
func (r *Runner) StartSession() {
	r.send(command{kind: cmdStart})
}

// EndSession ends the active session.
func (r *Runner) EndSession() {
	r.send(command{kind: cmdEnd})
}

// SourcesChanged reports input sources appearing or disappearing.
func (r *Runner) SourcesChanged(events []xr.SourceEvent) {
	r.send(command{kind: cmdSources, sources: append([]xr.SourceEvent(nil), events...)})
}

// Submit queues a frame. Frames are dropped rather than blocking the caller
// when the runner falls behind.
func (r *Runner) Submit(f Frame) {
	select {
	case r.cmds <- command{kind: cmdFrame, frame: f}:
	default:
		r.logger.Debug("frame dropped, runner busy")
	}
}

// Frame implements sdlinput.Sink.
func (r *Runner) Frame(dt time.Duration, pads map[int]xr.Gamepad) {
	r.Submit(Frame{DT: dt, Pads: pads})
}

// WorldTransform implements pawn.TransformSource by placing the reported
// rig relative transform under the current rig pose.
func (r *Runner) WorldTransform(index int) (mgl64.Mat4, bool) {
	local, ok := r.local[index]
	if !ok {
		local, ok = r.fallback[index]
	}
	if !ok {
		return mgl64.Mat4{}, false
	}
	return r.pawn.RootPose().ToWorld(local), true
}

// Gamepad implements pawn.GamepadSource.
func (r *Runner) Gamepad(index int) (*xr.Gamepad, bool) {
	g, ok := r.pads[index]
	return g, ok
}
