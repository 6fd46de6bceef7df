package pawn

import (
	"time"

	"github.com/soar/VRPawn/internal/gamepad"
	"github.com/soar/VRPawn/internal/locomotion"
	"github.com/soar/VRPawn/internal/raytrace"
	"github.com/soar/VRPawn/internal/xr"
)

// HandSnapshot describes one role.
type HandSnapshot struct {
	Role      string               `json:"role"`
	Resolved  bool                 `json:"resolved"`
	Index     int                  `json:"index"`
	Profile   string               `json:"profile,omitempty"`
	Asset     string               `json:"asset,omitempty"`
	Model     string               `json:"model,omitempty"`
	Indicator locomotion.Indicator `json:"indicator"`
	Ray       *raytrace.Ray        `json:"ray,omitempty"`
}

// Snapshot is everything a renderer needs to draw the pawn after a frame.
type Snapshot struct {
	Session   string            `json:"session,omitempty"`
	Active    bool              `json:"active"`
	Frame     uint64            `json:"frame"`
	Elapsed   float64           `json:"elapsed"`
	State     locomotion.State  `json:"state"`
	Rig       locomotion.Rig    `json:"rig"`
	Target    locomotion.Target `json:"target"`
	Hands     []HandSnapshot    `json:"hands"`
	Input     gamepad.State     `json:"input"`
	Events    []gamepad.Event   `json:"events,omitempty"`
	Turn      float64           `json:"turn,omitempty"`
	Committed bool              `json:"committed,omitempty"`
	Commits   int               `json:"commits"`
	Snaps     int               `json:"snaps"`
}

// Changed reports whether the frame produced anything worth a delta.
func (s Snapshot) Changed() bool {
	return len(s.Events) > 0 || s.Turn != 0 || s.Committed
}

// Snapshot copies the state left by the last frame. The result shares
// nothing with the pawn.
func (p *Pawn) Snapshot() Snapshot {
	s := Snapshot{
		Active:    p.session != nil,
		Frame:     p.frame,
		Elapsed:   p.elapsed.Round(time.Millisecond).Seconds(),
		State:     p.loco.State(),
		Rig:       p.loco.Rig(),
		Target:    p.loco.Target(),
		Hands:     make([]HandSnapshot, 0, len(xr.Roles)),
		Input:     p.input,
		Turn:      p.step.Turn,
		Committed: p.step.Committed,
		Commits:   p.loco.Commits(),
		Snaps:     p.loco.Snaps(),
	}
	if p.session != nil {
		s.Session = p.session.id.String()
	}
	if len(p.events) > 0 {
		s.Events = append([]gamepad.Event(nil), p.events...)
	}

	assignment := p.resolver.Assignment()
	for _, role := range xr.Roles {
		hs := HandSnapshot{
			Role:      role.String(),
			Index:     assignment.IndexOf(role),
			Indicator: p.loco.Indicator(role),
		}
		if h := p.handles[role]; h != nil {
			hs.Resolved = true
			hs.Index = h.Index
			if h.Profile != nil {
				hs.Profile = h.Profile.ID
			}
			if h.Visual != nil {
				hs.Asset = h.Visual.AssetPath()
				if av, ok := h.Visual.(AssetVisual); ok {
					hs.Model = av.URL
				}
			}
			if ray, ok := h.Ray(); ok {
				hs.Ray = &ray
			}
		}
		s.Hands = append(s.Hands, hs)
	}
	return s
}
