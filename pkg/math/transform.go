package math

// Transform holds a position, rotation, and scale, composing to a world
// matrix as T·R·S.
type Transform struct {
	Position Vec3
	Rotation Quat
	Scale    Vec3
}

// NewTransform returns an identity transform (unit scale, no rotation).
func NewTransform() Transform {
	return Transform{
		Rotation: QuatIdentity(),
		Scale:    Vec3{1, 1, 1},
	}
}

// SetRotationEulerZYX sets the rotation from ZYX Euler angles in degrees.
func (t *Transform) SetRotationEulerZYX(e Vec3) {
	t.Rotation = QuatFromEulerZYX(e)
}

// RotationEulerZYX returns the rotation as ZYX Euler angles in degrees.
func (t *Transform) RotationEulerZYX() Vec3 {
	return t.Rotation.ToEulerZYX()
}

// Translate moves the position by a world-space delta.
func (t *Transform) Translate(delta Vec3) {
	t.Position = t.Position.Add(delta)
}

// TranslateLocal moves the position by a delta expressed in the transform's
// own rotated frame.
func (t *Transform) TranslateLocal(delta Vec3) {
	t.Position = t.Position.Add(t.Rotation.Rotate(delta))
}

// Rotate composes a delta rotation after the current rotation.
func (t *Transform) Rotate(delta Quat) {
	t.Rotation = delta.Normalize().Mul(t.Rotation).Normalize()
}

// RotateEulerZYX composes a delta rotation given as ZYX Euler degrees.
func (t *Transform) RotateEulerZYX(delta Vec3) {
	t.Rotate(QuatFromEulerZYX(delta))
}

// Matrix returns the world matrix T·R·S.
func (t Transform) Matrix() Mat4 {
	trans := Translation(t.Position.X, t.Position.Y, t.Position.Z)
	rot := t.Rotation.ToMat4()
	scale := Scaling(t.Scale.X, t.Scale.Y, t.Scale.Z)
	return trans.Mul(rot).Mul(scale)
}

// NormalMatrix returns the inverse-transpose of the rotation·scale block,
// used to transform normals under non-uniform scale.
func (t Transform) NormalMatrix() Mat3 {
	rs := t.Rotation.ToMat3().Mul(Mat3Scaling(t.Scale.X, t.Scale.Y, t.Scale.Z))
	inv, _ := rs.Inverse()
	return inv.Transpose()
}
