package math

import "github.com/chewxy/math32"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{X: 0, Y: 0, Z: 0, W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	half := angle / 2
	s := math32.Sin(half)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: math32.Cos(half),
	}
}

// QuatFromEulerZYX creates a quaternion from ZYX Euler angles in degrees:
// rotation around Z (roll) applied first in matrix form R = Rz*Ry*Rx is
// equivalent to composing q = qz * qy * qx.
func QuatFromEulerZYX(e Vec3) Quat {
	qx := QuatFromAxisAngle(Vec3{X: 1}, Radians(e.X))
	qy := QuatFromAxisAngle(Vec3{Y: 1}, Radians(e.Y))
	qz := QuatFromAxisAngle(Vec3{Z: 1}, Radians(e.Z))
	return qz.Mul(qy).Mul(qx).Normalize()
}

// ToEulerZYX extracts ZYX Euler angles in degrees (x=pitch around X,
// y=yaw around Y, z=roll around Z). The conversion is ambiguous near
// gimbal lock; the Y angle is clamped to ±90°.
func (q Quat) ToEulerZYX() Vec3 {
	q = q.Normalize()

	sinp := 2 * (q.W*q.Y - q.Z*q.X)
	var y float32
	if math32.Abs(sinp) >= 1 {
		y = math32.Copysign(math32.Pi/2, sinp)
	} else {
		y = math32.Asin(sinp)
	}

	x := math32.Atan2(2*(q.W*q.X+q.Y*q.Z), 1-2*(q.X*q.X+q.Y*q.Y))
	z := math32.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.Y*q.Y+q.Z*q.Z))

	return Vec3{Degrees(x), Degrees(y), Degrees(z)}
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := math32.Sqrt(q.Dot(q))
	if length < 1e-4 {
		return QuatIdentity()
	}
	inv := 1 / length
	return Quat{q.X * inv, q.Y * inv, q.Z * inv, q.W * inv}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// Mul multiplies two quaternions (combines rotations; q applied after other).
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Conjugate returns the conjugate quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{-q.X, -q.Y, -q.Z, q.W}
}

// Inverse returns the inverse quaternion (conjugate / |q|²).
func (q Quat) Inverse() Quat {
	lenSq := q.Dot(q)
	if lenSq < 1e-12 {
		return QuatIdentity()
	}
	c := q.Conjugate()
	inv := 1 / lenSq
	return Quat{c.X * inv, c.Y * inv, c.Z * inv, c.W * inv}
}

// Rotate rotates a vector by the quaternion (q·v·q⁻¹).
func (q Quat) Rotate(v Vec3) Vec3 {
	p := Quat{v.X, v.Y, v.Z, 0}
	r := q.Mul(p).Mul(q.Inverse())
	return Vec3{r.X, r.Y, r.Z}
}

// Slerp performs spherical linear interpolation between two quaternions.
// t should be in range [0, 1]. The shorter arc is always taken.
func (q Quat) Slerp(other Quat, t float32) Quat {
	dot := q.Dot(other)

	// Negate one side so interpolation takes the shorter path.
	if dot < 0 {
		other = Quat{-other.X, -other.Y, -other.Z, -other.W}
		dot = -dot
	}

	// Nearly parallel: the angle is too small to divide by its sine.
	if dot > 0.9995 {
		return q
	}

	theta0 := math32.Acos(dot)
	theta := theta0 * t
	sinTheta := math32.Sin(theta)
	sinTheta0 := math32.Sin(theta0)

	s0 := math32.Cos(theta) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return Quat{
		X: q.X*s0 + other.X*s1,
		Y: q.Y*s0 + other.Y*s1,
		Z: q.Z*s0 + other.Z*s1,
		W: q.W*s0 + other.W*s1,
	}
}

// ToMat3 converts the quaternion to a 3x3 rotation matrix.
func (q Quat) ToMat3() Mat3 {
	q = q.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat3{
		{1 - 2*(yy+zz), 2 * (xy - zw), 2 * (xz + yw)},
		{2 * (xy + zw), 1 - 2*(xx+zz), 2 * (yz - xw)},
		{2 * (xz - yw), 2 * (yz + xw), 1 - 2*(xx+yy)},
	}
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
func (q Quat) ToMat4() Mat4 {
	return q.ToMat3().ToMat4()
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * math32.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float32) float32 {
	return rad * 180 / math32.Pi
}
