package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransformMatrixOrder(t *testing.T) {
	// World matrix must be T·R·S: a point at +X with 90° yaw and scale 2
	// rotates to -Z (scaled), then translates.
	tr := NewTransform()
	tr.Position = Vec3{10, 0, 0}
	tr.Rotation = QuatFromAxisAngle(Vec3{Y: 1}, math32Pi/2)
	tr.Scale = Vec3{2, 2, 2}

	got := tr.Matrix().MulPoint(Vec3{X: 1})
	assertVec3Near(t, Vec3{10, 0, -2}, got, 1e-5)
}

func TestTransformNormalMatrixUniformScale(t *testing.T) {
	tr := NewTransform()
	tr.Rotation = QuatFromAxisAngle(Vec3{Y: 1}, 0.8)
	tr.Scale = Vec3{3, 3, 3}

	// Under uniform scale the normal matrix is the rotation scaled by 1/s;
	// direction must match the rotated normal.
	n := tr.NormalMatrix().MulVec3(Vec3{Z: 1}).Normalize()
	want := tr.Rotation.Rotate(Vec3{Z: 1})
	assertVec3Near(t, want, n, 1e-5)
}

func TestTransformNormalMatrixNonUniformScale(t *testing.T) {
	tr := NewTransform()
	tr.Scale = Vec3{1, 4, 1}

	// A plane tilted by non-uniform scale: the normal of a surface along Y
	// must shrink, not grow, under the inverse-transpose.
	n := tr.NormalMatrix().MulVec3(Vec3{Y: 1})
	assert.InDelta(t, 0.25, n.Y, 1e-6)
}

func TestTransformTranslateLocal(t *testing.T) {
	tr := NewTransform()
	tr.Rotation = QuatFromAxisAngle(Vec3{Y: 1}, math32Pi/2)
	tr.TranslateLocal(Vec3{X: 1})
	assertVec3Near(t, Vec3{0, 0, -1}, tr.Position, 1e-6)
}

func TestTransformEulerAnimationStep(t *testing.T) {
	tr := NewTransform()
	tr.SetRotationEulerZYX(Vec3{0, 30, 0})
	e := tr.RotationEulerZYX()
	assert.InDelta(t, 30.0, e.Y, 1e-3)

	tr.SetRotationEulerZYX(Vec3{0, e.Y + 15, 0})
	assert.InDelta(t, 45.0, tr.RotationEulerZYX().Y, 1e-3)
}
