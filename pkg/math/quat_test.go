package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertVec3Near(t *testing.T, want, got Vec3, tol float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol)
	assert.InDelta(t, want.Y, got.Y, tol)
	assert.InDelta(t, want.Z, got.Z, tol)
}

func TestQuatMulInverse(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0.267, 0.535, 0.802}, 1.3)
	r := q.Mul(q.Inverse())
	id := QuatIdentity()
	assert.InDelta(t, id.W, r.W, 1e-5)
	assert.InDelta(t, id.X, r.X, 1e-5)
	assert.InDelta(t, id.Y, r.Y, 1e-5)
	assert.InDelta(t, id.Z, r.Z, 1e-5)
}

func TestQuatRotateAxisAngle(t *testing.T) {
	// Rotating +X around +Y by 90° lands on -Z.
	q := QuatFromAxisAngle(Vec3{Y: 1}, math32Pi/2)
	got := q.Rotate(Vec3{X: 1})
	assertVec3Near(t, Vec3{0, 0, -1}, got, 1e-6)
}

const math32Pi = 3.14159265358979323846

func TestQuatSlerpEndpoints(t *testing.T) {
	q1 := QuatFromAxisAngle(Vec3{Y: 1}, 0.3)
	q2 := QuatFromAxisAngle(Vec3{Y: 1}, 2.1)

	s0 := q1.Slerp(q2, 0)
	assert.InDelta(t, 1.0, absf(s0.Dot(q1)), 1e-5, "slerp(q1,q2,0) should equal q1")

	s1 := q1.Slerp(q2, 1)
	assert.InDelta(t, 1.0, absf(s1.Dot(q2)), 1e-5, "slerp(q1,q2,1) should equal ±q2")
}

func TestQuatSlerpShortestPath(t *testing.T) {
	q1 := QuatFromAxisAngle(Vec3{Y: 1}, 0.2)
	q2n := QuatFromAxisAngle(Vec3{Y: 1}, 1.0)
	// Negating a quaternion represents the same rotation; slerp must still
	// take the short arc.
	q2 := Quat{-q2n.X, -q2n.Y, -q2n.Z, -q2n.W}

	mid := q1.Slerp(q2, 0.5)
	want := QuatFromAxisAngle(Vec3{Y: 1}, 0.6)
	assert.InDelta(t, 1.0, absf(mid.Dot(want)), 1e-5)
}

func TestQuatSlerpSmallAngleFallback(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{Y: 1}, 0.5)
	almost := QuatFromAxisAngle(Vec3{Y: 1}, 0.5000001)
	got := q.Slerp(almost, 0.5)
	assert.Equal(t, q, got)
}

func TestQuatEulerZYXRoundTrip(t *testing.T) {
	in := Vec3{20, 45, -30}
	q := QuatFromEulerZYX(in)
	out := q.ToEulerZYX()
	assertVec3Near(t, in, out, 1e-3)
}

func TestQuatToMat3MatchesRotate(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0.577, 0.577, 0.577}, 0.9)
	m := q.ToMat3()
	v := Vec3{1, -2, 0.5}
	assertVec3Near(t, q.Rotate(v), m.MulVec3(v), 1e-5)
}

func TestQuatNormalizeDegenerate(t *testing.T) {
	assert.Equal(t, QuatIdentity(), Quat{}.Normalize())
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
