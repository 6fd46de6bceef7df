package raytrace

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func assertVec(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "component %d: want %v, got %v", i, want, got)
	}
}

func TestFromTransformIdentity(t *testing.T) {
	r, ok := FromTransform(mgl64.Ident4(), DefaultForward)
	assert.True(t, ok)
	assertVec(t, mgl64.Vec3{}, r.Origin)
	assertVec(t, mgl64.Vec3{0, 0, -1}, r.Direction)
}

func TestFromTransformIgnoresTranslationForDirection(t *testing.T) {
	m := mgl64.Translate3D(1, 2, 3).Mul4(mgl64.HomogRotate3DY(math.Pi / 2))
	r, ok := FromTransform(m, DefaultForward)
	assert.True(t, ok)
	assertVec(t, mgl64.Vec3{1, 2, 3}, r.Origin)
	// yaw +90° turns -Z into -X
	assertVec(t, mgl64.Vec3{-1, 0, 0}, r.Direction)
}

func TestFromTransformStripsScale(t *testing.T) {
	m := mgl64.Scale3D(3, 3, 3)
	r, ok := FromTransform(m, DefaultForward)
	assert.True(t, ok)
	assert.InDelta(t, 1, r.Direction.Len(), 1e-9)
	assertVec(t, mgl64.Vec3{0, 0, -1}, r.Direction)
}

func TestFromTransformOffsetForward(t *testing.T) {
	r, ok := FromTransform(mgl64.Ident4(), mgl64.Vec3{0, -0.5, -1})
	assert.True(t, ok)
	assertVec(t, mgl64.Vec3{0, -0.5, -1}.Normalize(), r.Direction)
}

func TestFromTransformDegenerate(t *testing.T) {
	m := mgl64.Translate3D(1, 1, 1).Mul4(mgl64.Scale3D(0, 1, 1))
	r, ok := FromTransform(m, DefaultForward)
	assert.False(t, ok)
	assertVec(t, mgl64.Vec3{1, 1, 1}, r.Origin)
	assert.Zero(t, r.Direction.Len())
}

func TestRayAt(t *testing.T) {
	r := Ray{Origin: mgl64.Vec3{0, 1, 0}, Direction: mgl64.Vec3{0, 0, -1}}
	assertVec(t, mgl64.Vec3{0, 1, -2.5}, r.At(2.5))
}

func TestTracer(t *testing.T) {
	assert.Equal(t, DefaultForward, NewTracer(mgl64.Vec3{}).Forward())

	tr := NewTracer(mgl64.Vec3{0, -1, 0})
	r, ok := tr.Trace(mgl64.Translate3D(0, 1.5, 0))
	assert.True(t, ok)
	assertVec(t, mgl64.Vec3{0, -1, 0}, r.Direction)
}
