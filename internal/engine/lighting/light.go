// Package lighting defines the light sources the fragment stage shades
// with.
package lighting

import "github.com/Faultbox/softrender/pkg/math"

// Type discriminates the light variants.
type Type int

// Light variants.
const (
	Directional Type = iota
	Point
)

// Light is a directional or point light. Direction is the direction the
// light shines toward (the shader negates it to get the to-light vector);
// Position is world space and only meaningful for point lights, which
// attenuate by inverse-square distance clamped to [0,1].
type Light struct {
	Type      Type
	Color     math.Vec3
	Intensity float32
	Direction math.Vec3
	Position  math.Vec3
}

// NewDirectional builds a directional light shining along dir.
func NewDirectional(dir, color math.Vec3, intensity float32) Light {
	return Light{
		Type:      Directional,
		Direction: dir.Normalize(),
		Color:     color,
		Intensity: intensity,
	}
}

// NewPoint builds a point light at pos.
func NewPoint(pos, color math.Vec3, intensity float32) Light {
	return Light{
		Type:      Point,
		Position:  pos,
		Color:     color,
		Intensity: intensity,
	}
}
