package pawn

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/soar/VRPawn/internal/gamepad"
	"github.com/soar/VRPawn/internal/locomotion"
	"github.com/soar/VRPawn/internal/xr"
)

// OnFrame advances the pipeline by one rendered frame: finished setups are
// applied, rays rebuilt, inputs sampled and diffed, and the events handed to
// locomotion. While aiming, the left ray is cast into the scene.
func (p *Pawn) OnFrame(dt time.Duration) {
	p.applyResults()
	if p.session == nil {
		return
	}
	p.frame++
	p.elapsed += dt

	p.traceRays()

	right, left := p.hand(xr.Right), p.hand(xr.Left)
	p.input = p.sampler.Sample(right, left)
	p.events = p.dropAbsent(p.detector.Push(p.input), [len(xr.Roles)]bool{
		xr.Right: right.Pad != nil,
		xr.Left:  left.Pad != nil,
	})
	p.step = p.loco.Handle(p.events, p.input)

	if p.loco.State() == locomotion.Aiming {
		p.loco.UpdateAim(p.castAim())
	}
}

// dropAbsent filters out the events of a hand that dropped out this frame.
// Its inputs fall to rest, which must not read as a release: an aim in
// progress on the left hand is cancelled instead of committed.
func (p *Pawn) dropAbsent(events []gamepad.Event, present [len(xr.Roles)]bool) []gamepad.Event {
	var lost [len(xr.Roles)]bool
	anyLost := false
	for _, role := range xr.Roles {
		lost[role] = p.present[role] && !present[role]
		anyLost = anyLost || lost[role]
	}
	p.present = present
	if !anyLost {
		return events
	}

	kept := make([]gamepad.Event, 0, len(events))
	for _, e := range events {
		if !lost[e.Key.Role()] {
			kept = append(kept, e)
		}
	}
	for _, role := range xr.Roles {
		if lost[role] {
			p.logger.Info("controller input lost, ignoring its return to rest", zap.Stringer("role", role))
		}
	}
	if lost[xr.Left] {
		p.loco.Cancel()
	}
	return kept
}

func (p *Pawn) traceRays() {
	for _, h := range p.handles {
		if h == nil {
			continue
		}
		h.rayOK = false
		world, ok := p.transforms.WorldTransform(h.Index)
		if !ok {
			continue
		}
		h.ray, h.rayOK = p.tracer.Trace(world)
	}
}

// hand returns what the sampler reads for a role. An unresolved role or a
// missing gamepad reads as absent.
func (p *Pawn) hand(role xr.Role) gamepad.Hand {
	h := p.handles[role]
	if h == nil || h.Profile == nil {
		return gamepad.Hand{}
	}
	pad, ok := p.gamepads.Gamepad(h.Index)
	if !ok {
		return gamepad.Hand{}
	}
	return gamepad.Hand{Map: h.Profile.Map(role), Pad: pad}
}

func (p *Pawn) castAim() (mgl64.Vec3, bool) {
	h := p.handles[xr.Left]
	if h == nil || !h.rayOK || p.raycaster == nil {
		return mgl64.Vec3{}, false
	}
	return p.raycaster.Raycast(h.ray)
}
