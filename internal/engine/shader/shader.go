// Package shader defines the programmable vertex/fragment stages of the
// pipeline and the Blinn-Phong shader the renderer ships with.
package shader

import (
	"github.com/Faultbox/softrender/internal/engine/lighting"
	"github.com/Faultbox/softrender/internal/engine/texture"
	"github.com/Faultbox/softrender/pkg/math"
)

// VertexInput is the per-vertex data handed to the vertex stage, assembled
// from the mesh arrays.
type VertexInput struct {
	Position  math.Vec3
	Normal    math.Vec3
	Tangent   math.Vec3
	Bitangent math.Vec3
	UV        math.Vec2
}

// Varyings is the vertex-stage output interpolated perspective-correctly
// across the triangle for the fragment stage. ClipPosition is consumed by
// the rasterizer and not re-interpolated for fragments.
type Varyings struct {
	ClipPosition  math.Vec4
	WorldPosition math.Vec3
	Normal        math.Vec3
	Tangent       math.Vec3
	Bitangent     math.Vec3
	UV            math.Vec2
}

// Uniforms is the read-only per-draw state of a shader. The renderer fills
// it before dispatching a draw command and leaves it untouched while
// workers run.
type Uniforms struct {
	Model      math.Mat4
	View       math.Mat4
	Projection math.Mat4
	MVP        math.Mat4
	Normal     math.Mat3

	CameraPosition math.Vec3
	Lights         []lighting.Light
	AmbientLight   math.Vec3

	AmbientColor  math.Vec3
	DiffuseColor  math.Vec3
	SpecularColor math.Vec3
	Shininess     int

	DiffuseTexture  *texture.Texture
	NormalTexture   *texture.Texture
	AoTexture       *texture.Texture
	SpecularTexture *texture.Texture
	GlossTexture    *texture.Texture

	UseDiffuseMap  bool
	UseNormalMap   bool
	UseAoMap       bool
	UseSpecularMap bool
	UseGlossMap    bool
}

// Shader is a pair of pure stages plus the uniform block the renderer
// configures between draw commands.
type Shader interface {
	// Uniforms exposes the uniform block for the renderer to fill.
	Uniforms() *Uniforms

	// Vertex transforms one vertex into clip space and world-space varyings.
	Vertex(in VertexInput) Varyings

	// Fragment shades one sample. ddx and ddy are the screen-space UV
	// derivatives for mip selection. The boolean reports whether the
	// fragment should be written.
	Fragment(in Varyings, ddx, ddy math.Vec2) (math.Vec3, bool)
}
