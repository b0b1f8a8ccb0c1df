package shader

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/softrender/internal/engine/lighting"
	"github.com/Faultbox/softrender/pkg/math"
)

// glossMaxShininess bounds the gloss-map remap: a gloss sample of 1 maps
// to shininess 256, a sample of 0 to 2.
const glossMaxShininess = 256

// BlinnPhong implements Blinn-Phong lighting with optional diffuse,
// normal, ambient-occlusion, specular, and gloss maps.
type BlinnPhong struct {
	U Uniforms
}

// NewBlinnPhong returns a shader with white material colors and a modest
// default shininess.
func NewBlinnPhong() *BlinnPhong {
	return &BlinnPhong{U: Uniforms{
		Model:         math.Identity(),
		View:          math.Identity(),
		Projection:    math.Identity(),
		MVP:           math.Identity(),
		Normal:        math.Mat3Identity(),
		AmbientColor:  math.Vec3{X: 1, Y: 1, Z: 1},
		DiffuseColor:  math.Vec3{X: 1, Y: 1, Z: 1},
		SpecularColor: math.Vec3{X: 1, Y: 1, Z: 1},
		Shininess:     32,
	}}
}

// Uniforms exposes the uniform block.
func (s *BlinnPhong) Uniforms() *Uniforms {
	return &s.U
}

// Vertex transforms position into world and clip space and rotates the
// TBN frame by the normal matrix.
func (s *BlinnPhong) Vertex(in VertexInput) Varyings {
	pos4 := math.NewVec4(in.Position, 1)
	return Varyings{
		ClipPosition:  s.U.MVP.MulVec4(pos4),
		WorldPosition: s.U.Model.MulVec4(pos4).XYZ(),
		Normal:        s.U.Normal.MulVec3(in.Normal).Normalize(),
		Tangent:       s.U.Normal.MulVec3(in.Tangent).Normalize(),
		Bitangent:     s.U.Normal.MulVec3(in.Bitangent).Normalize(),
		UV:            in.UV,
	}
}

// Fragment shades one sample with the Blinn-Phong model.
func (s *BlinnPhong) Fragment(in Varyings, ddx, ddy math.Vec2) (math.Vec3, bool) {
	u := &s.U

	n := s.shadingNormal(in, ddx, ddy)
	view := u.CameraPosition.Sub(in.WorldPosition).Normalize()

	baseDiffuse := u.DiffuseColor
	if u.UseDiffuseMap {
		baseDiffuse = baseDiffuse.Mul(u.DiffuseTexture.Sample(in.UV.X, in.UV.Y, ddx, ddy))
	}

	baseSpecular := u.SpecularColor
	if u.UseSpecularMap {
		baseSpecular = u.SpecularTexture.Sample(in.UV.X, in.UV.Y, ddx, ddy)
	}

	shininess := u.Shininess
	if u.UseGlossMap {
		gloss := math.Clamp01(u.GlossTexture.Sample(in.UV.X, in.UV.Y, ddx, ddy).X)
		shininess = 2 + int(math32.Round((glossMaxShininess-2)*gloss))
	}

	ao := float32(1)
	if u.UseAoMap {
		ao = math.Clamp01(u.AoTexture.Sample(in.UV.X, in.UV.Y, ddx, ddy).X)
	}

	color := u.AmbientLight.Mul(u.AmbientColor).Scale(ao)

	for i := range u.Lights {
		light := &u.Lights[i]
		var toLight math.Vec3
		attenuation := float32(1)

		switch light.Type {
		case lighting.Directional:
			toLight = light.Direction.Negate().Normalize()
		case lighting.Point:
			lvec := light.Position.Sub(in.WorldPosition)
			distSq := lvec.LengthSq()
			if distSq < 1e-12 {
				continue
			}
			toLight = lvec.Scale(1 / math32.Sqrt(distSq))
			attenuation = math.Clamp01(1 / distSq)
		default:
			continue
		}

		lightColor := light.Color.Scale(light.Intensity)

		diffFactor := math32.Max(0, n.Dot(toLight)) * attenuation
		color = color.Add(baseDiffuse.Mul(lightColor).Scale(diffFactor))

		half := toLight.Add(view).Normalize()
		specFactor := fastPow(math32.Max(0, n.Dot(half)), shininess) * attenuation
		color = color.Add(baseSpecular.Mul(lightColor).Scale(specFactor))
	}

	return color.Clamp01(), true
}

// shadingNormal returns the world-space normal, applying the tangent-space
// normal map through the interpolated TBN frame when present.
func (s *BlinnPhong) shadingNormal(in Varyings, ddx, ddy math.Vec2) math.Vec3 {
	if !s.U.UseNormalMap {
		return in.Normal.Normalize()
	}

	sample := s.U.NormalTexture.Sample(in.UV.X, in.UV.Y, ddx, ddy)
	tn := math.Vec3{
		X: sample.X*2 - 1,
		Y: sample.Y*2 - 1,
		Z: sample.Z*2 - 1,
	}.Normalize()

	t := in.Tangent
	b := in.Bitangent
	n := in.Normal
	world := t.Scale(tn.X).Add(b.Scale(tn.Y)).Add(n.Scale(tn.Z))
	return world.Normalize()
}

// fastPow raises base to an integer power by repeated squaring.
func fastPow(base float32, n int) float32 {
	if n < 0 {
		return 1 / fastPow(base, -n)
	}
	result := float32(1)
	for n > 0 {
		if n&1 == 1 {
			result *= base
		}
		base *= base
		n >>= 1
	}
	return result
}
