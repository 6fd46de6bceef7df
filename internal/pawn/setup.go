package pawn

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soar/VRPawn/internal/controllermap"
	"github.com/soar/VRPawn/internal/xr"
)

type setupResult struct {
	session   uuid.UUID
	gen       uint64
	role      xr.Role
	index     int
	profile   *controllermap.Profile
	visual    Visual
	err       error
	visualErr error
}

// setup runs on its own goroutine. It only computes; the result is applied
// by the frame goroutine in applyResults.
func (p *Pawn) setup(s *session, gen uint64, role xr.Role, ev xr.SourceEvent) {
	res := setupResult{session: s.id, gen: gen, role: role, index: ev.Index}
	res.profile, res.err = p.registry.Lookup(ev.Profiles)

	if res.profile != nil && p.visuals != nil {
		if asset := res.profile.AssetPath(role); asset != "" {
			res.visual, res.visualErr = p.visuals.LoadVisual(s.ctx, asset)
		}
	}

	select {
	case p.results <- res:
	case <-s.ctx.Done():
	}
}

// applyResults drains finished setups. Results of an ended session, or of a
// source superseded by a later connect, are dropped without touching state.
func (p *Pawn) applyResults() {
	for {
		select {
		case res := <-p.results:
			p.apply(res)
		default:
			return
		}
	}
}

func (p *Pawn) apply(res setupResult) {
	if p.session == nil || p.session.id != res.session || p.pending[res.role] != res.gen {
		p.logger.Debug("dropping stale controller setup",
			zap.Stringer("session", res.session), zap.Stringer("role", res.role))
		return
	}
	p.pending[res.role] = 0

	h := &ControllerHandle{Role: res.role, Index: res.index, Profile: res.profile, Visual: res.visual}
	p.handles[res.role] = h

	fields := []zap.Field{zap.Stringer("role", res.role), zap.Int("index", res.index)}
	switch {
	case controllermap.IsProfileMissing(res.err):
		p.logger.Warn("controller has no input mapping, hand reports rest state", append(fields, zap.Error(res.err))...)
	case res.err != nil:
		p.logger.Warn("controller setup failed", append(fields, zap.Error(res.err))...)
	default:
		p.logger.Info("controller ready", append(fields, zap.String("profile", res.profile.ID))...)
	}
	if res.visualErr != nil {
		p.logger.Warn("controller model unavailable", append(fields, zap.Error(res.visualErr))...)
	}
}
