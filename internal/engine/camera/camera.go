// Package camera provides the FPS-style camera that drives the view and
// projection matrices of the rasterizer.
package camera

import (
	"github.com/Faultbox/softrender/pkg/math"
)

// maxPitch keeps the camera from flipping over the poles.
const maxPitch = 89

var worldUp = math.Vec3{Y: 1}

// Camera is a first-person camera: a world position plus yaw and pitch in
// degrees. Yaw rotates around world up and is kept modulo 360; pitch
// rotates around the camera's X axis and is clamped to ±89°. The rotation
// quaternion is rebuilt from both whenever either changes.
type Camera struct {
	Position math.Vec3

	yaw      float32
	pitch    float32
	rotation math.Quat

	fov    float32 // vertical, degrees
	aspect float32
	near   float32
	far    float32
	proj   math.Mat4
}

// New creates a camera at pos with the given yaw and pitch in degrees.
// The projection matrix is identity until SetPerspective is called.
func New(pos math.Vec3, yaw, pitch float32) *Camera {
	c := &Camera{
		Position: pos,
		proj:     math.Identity(),
	}
	c.SetYawPitch(yaw, pitch)
	return c
}

// SetPerspective configures the projection from a vertical field of view
// in degrees.
func (c *Camera) SetPerspective(fovDegrees, aspect, near, far float32) {
	c.fov = fovDegrees
	c.aspect = aspect
	c.near = near
	c.far = far
	c.proj = math.Perspective(math.Radians(fovDegrees), aspect, near, far)
}

// SetYawPitch sets both angles in degrees and rebuilds the rotation.
func (c *Camera) SetYawPitch(yaw, pitch float32) {
	for yaw >= 360 {
		yaw -= 360
	}
	for yaw < 0 {
		yaw += 360
	}
	if pitch > maxPitch {
		pitch = maxPitch
	} else if pitch < -maxPitch {
		pitch = -maxPitch
	}
	c.yaw = yaw
	c.pitch = pitch

	yawQ := math.QuatFromAxisAngle(worldUp, math.Radians(yaw))
	pitchQ := math.QuatFromAxisAngle(math.Vec3{X: 1}, math.Radians(pitch))
	c.rotation = yawQ.Mul(pitchQ).Normalize()
}

// Rotate adds deltas to yaw and pitch in degrees.
func (c *Camera) Rotate(deltaYaw, deltaPitch float32) {
	c.SetYawPitch(c.yaw+deltaYaw, c.pitch+deltaPitch)
}

// Yaw returns the yaw in degrees, in [0, 360).
func (c *Camera) Yaw() float32 { return c.yaw }

// Pitch returns the pitch in degrees, in [-89, 89].
func (c *Camera) Pitch() float32 { return c.pitch }

// Forward returns the world-space view direction.
func (c *Camera) Forward() math.Vec3 {
	return c.rotation.Rotate(math.Vec3{Z: -1})
}

// Right returns the world-space right axis.
func (c *Camera) Right() math.Vec3 {
	return c.rotation.Rotate(math.Vec3{X: 1})
}

// Move translates the camera along its own basis: forward, right, and
// world up, each scaled by the given amounts.
func (c *Camera) Move(forward, right, up float32) {
	c.Position = c.Position.
		Add(c.Forward().Scale(forward)).
		Add(c.Right().Scale(right)).
		Add(worldUp.Scale(up))
}

// ViewMatrix returns the world-to-view matrix. When the view direction is
// parallel to world up the right axis falls back to +X (handled by
// math.LookDir).
func (c *Camera) ViewMatrix() math.Mat4 {
	return math.LookDir(c.Position, c.Forward(), worldUp)
}

// ProjectionMatrix returns the perspective matrix set by SetPerspective.
func (c *Camera) ProjectionMatrix() math.Mat4 {
	return c.proj
}
