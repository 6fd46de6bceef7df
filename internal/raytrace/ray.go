// Package raytrace derives pointer rays from controller transforms.
package raytrace

import (
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultForward is the local pointing direction of a controller.
var DefaultForward = mgl64.Vec3{0, 0, -1}

const epsilon = 1e-9

// Ray is a half line in world space. Direction is unit length when the ray
// was built from a valid transform.
type Ray struct {
	Origin    mgl64.Vec3 `json:"origin"`
	Direction mgl64.Vec3 `json:"direction"`
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// FromTransform builds the ray of a controller whose world matrix is m. The
// origin is the translation, the direction is forward rotated by the rotation
// part of m only. Scale is removed from the basis before rotating. ok is
// false when m has no usable rotation.
func FromTransform(m mgl64.Mat4, forward mgl64.Vec3) (Ray, bool) {
	origin := m.Col(3).Vec3()

	var basis [3]mgl64.Vec3
	for i := range basis {
		c := m.Col(i).Vec3()
		l := c.Len()
		if l < epsilon {
			return Ray{Origin: origin}, false
		}
		basis[i] = c.Mul(1 / l)
	}
	rot := mgl64.Mat3FromCols(basis[0], basis[1], basis[2])

	dir := rot.Mul3x1(forward)
	l := dir.Len()
	if l < epsilon {
		return Ray{Origin: origin}, false
	}
	return Ray{Origin: origin, Direction: dir.Mul(1 / l)}, true
}

// Tracer rebuilds rays from transforms with a configured forward vector.
type Tracer struct {
	forward mgl64.Vec3
}

// NewTracer returns a tracer using forward as the local pointing direction.
// A zero vector falls back to DefaultForward.
func NewTracer(forward mgl64.Vec3) *Tracer {
	if forward.Len() < epsilon {
		forward = DefaultForward
	}
	return &Tracer{forward: forward}
}

// Forward returns the configured local forward vector.
func (t *Tracer) Forward() mgl64.Vec3 {
	return t.forward
}

// Trace builds the ray for the world transform m.
func (t *Tracer) Trace(m mgl64.Mat4) (Ray, bool) {
	return FromTransform(m, t.forward)
}
