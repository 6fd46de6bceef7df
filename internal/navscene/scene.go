// Package navscene is a minimal navigable scene that answers teleport
// raycasts: bounded horizontal floor planes and axis-aligned boxes.
package navscene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/soar/VRPawn/internal/raytrace"
)

const epsilon = 1e-9

// Plane is a horizontal rectangle at height Y, spanning [MinX,MaxX]x[MinZ,MaxZ].
type Plane struct {
	Y    float64 `mapstructure:"y" json:"y"`
	MinX float64 `mapstructure:"min_x" json:"min_x"`
	MaxX float64 `mapstructure:"max_x" json:"max_x"`
	MinZ float64 `mapstructure:"min_z" json:"min_z"`
	MaxZ float64 `mapstructure:"max_z" json:"max_z"`
}

// Box is an axis-aligned box.
type Box struct {
	Min mgl64.Vec3 `mapstructure:"min" json:"min"`
	Max mgl64.Vec3 `mapstructure:"max" json:"max"`
}

// Scene is immutable after construction and safe for concurrent raycasts.
type Scene struct {
	planes []Plane
	boxes  []Box
}

// New validates the geometry and returns a scene.
func New(planes []Plane, boxes []Box) (*Scene, error) {
	for i, p := range planes {
		if p.MinX > p.MaxX || p.MinZ > p.MaxZ {
			return nil, errors.Errorf("plane %d: min exceeds max", i)
		}
	}
	for i, b := range boxes {
		for a := 0; a < 3; a++ {
			if b.Min[a] > b.Max[a] {
				return nil, errors.Errorf("box %d: min exceeds max on axis %d", i, a)
			}
		}
	}
	return &Scene{
		planes: append([]Plane(nil), planes...),
		boxes:  append([]Box(nil), boxes...),
	}, nil
}

// Default is a 10x10 m floor at y=0 with a 1 m cube standing 2 m in front of
// the origin.
func Default() *Scene {
	s, _ := New(
		[]Plane{{Y: 0, MinX: -5, MaxX: 5, MinZ: -5, MaxZ: 5}},
		[]Box{{Min: mgl64.Vec3{-0.5, 0, -2.5}, Max: mgl64.Vec3{0.5, 1, -1.5}}},
	)
	return s
}

// Planes returns the floor planes.
func (s *Scene) Planes() []Plane { return s.planes }

// Boxes returns the obstacles.
func (s *Scene) Boxes() []Box { return s.boxes }

// Raycast returns the nearest hit in front of the ray origin.
func (s *Scene) Raycast(r raytrace.Ray) (mgl64.Vec3, bool) {
	best := math.Inf(1)
	for _, p := range s.planes {
		if t, ok := hitPlane(r, p); ok && t < best {
			best = t
		}
	}
	for _, b := range s.boxes {
		if t, ok := hitBox(r, b); ok && t < best {
			best = t
		}
	}
	if math.IsInf(best, 1) {
		return mgl64.Vec3{}, false
	}
	return r.At(best), true
}

func hitPlane(r raytrace.Ray, p Plane) (float64, bool) {
	if math.Abs(r.Direction.Y()) < epsilon {
		return 0, false
	}
	t := (p.Y - r.Origin.Y()) / r.Direction.Y()
	if t < 0 {
		return 0, false
	}
	hit := r.At(t)
	if hit.X() < p.MinX || hit.X() > p.MaxX || hit.Z() < p.MinZ || hit.Z() > p.MaxZ {
		return 0, false
	}
	return t, true
}

// hitBox is the slab test. A ray starting inside the box hits its exit face.
func hitBox(r raytrace.Ray, b Box) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for a := 0; a < 3; a++ {
		o, d := r.Origin[a], r.Direction[a]
		if math.Abs(d) < epsilon {
			if o < b.Min[a] || o > b.Max[a] {
				return 0, false
			}
			continue
		}
		t1 := (b.Min[a] - o) / d
		t2 := (b.Max[a] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin >= 0 {
		return tmin, true
	}
	return tmax, true
}
