package shader

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/softrender/internal/engine/lighting"
	"github.com/Faultbox/softrender/internal/engine/texture"
	"github.com/Faultbox/softrender/pkg/math"
)

// solidTexture builds a single-level texture of one color.
func solidTexture(c math.Vec3) *texture.Texture {
	return &texture.Texture{Levels: []texture.MipLevel{
		{Width: 1, Height: 1, Pixels: []math.Vec3{c}},
	}}
}

// whiteDiffuse returns a shader with a white diffuse material, no ambient,
// no specular, lit by a single directional light along -Z.
func whiteDiffuse() *BlinnPhong {
	s := NewBlinnPhong()
	s.U.SpecularColor = math.Vec3{}
	s.U.AmbientLight = math.Vec3{}
	s.U.Lights = []lighting.Light{
		// Shining toward -Z: the to-light vector is +Z.
		lighting.NewDirectional(math.Vec3{Z: -1}, math.Vec3{1, 1, 1}, 1),
	}
	return s
}

func TestFragmentDirectionalDiffuse(t *testing.T) {
	s := whiteDiffuse()

	cases := []struct {
		name   string
		normal math.Vec3
		want   float64
	}{
		{"facing the light", math.Vec3{Z: 1}, 1.0},
		{"orthogonal", math.Vec3{X: 1}, 0.0},
		{"at 60 degrees", math.Vec3{X: float32(gomath.Sin(gomath.Pi / 3)), Z: 0.5}, 0.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := Varyings{Normal: tc.normal, WorldPosition: math.Vec3{Z: -1}}
			// Camera straight down +Z so the half vector cannot sneak in
			// specular (specular color is zero anyway).
			s.U.CameraPosition = math.Vec3{Z: 5}

			color, write := s.Fragment(in, math.Vec2{}, math.Vec2{})
			if !write {
				t.Fatal("fragment discarded")
			}
			assert.InDelta(t, tc.want, color.X, 1e-4)
			assert.InDelta(t, tc.want, color.Y, 1e-4)
			assert.InDelta(t, tc.want, color.Z, 1e-4)
		})
	}
}

func TestFragmentAmbientTimesAO(t *testing.T) {
	s := NewBlinnPhong()
	s.U.AmbientLight = math.Vec3{1, 1, 1}
	s.U.AmbientColor = math.Vec3{0.8, 0.8, 0.8}
	s.U.Lights = nil
	s.U.AoTexture = solidTexture(math.Vec3{X: 0.5})
	s.U.UseAoMap = true

	color, _ := s.Fragment(Varyings{Normal: math.Vec3{Z: 1}}, math.Vec2{}, math.Vec2{})
	assert.InDelta(t, 0.4, color.X, 1e-5)
}

func TestFragmentDiffuseMapModulates(t *testing.T) {
	s := whiteDiffuse()
	s.U.DiffuseColor = math.Vec3{1, 1, 1}
	s.U.DiffuseTexture = solidTexture(math.Vec3{X: 1}) // pure red texture
	s.U.UseDiffuseMap = true
	s.U.CameraPosition = math.Vec3{Z: 5}

	color, _ := s.Fragment(Varyings{Normal: math.Vec3{Z: 1}}, math.Vec2{}, math.Vec2{})
	assert.InDelta(t, 1.0, color.X, 1e-4)
	assert.InDelta(t, 0.0, color.Y, 1e-4)
	assert.InDelta(t, 0.0, color.Z, 1e-4)
}

func TestFragmentNormalMapTBN(t *testing.T) {
	s := whiteDiffuse()
	s.U.CameraPosition = math.Vec3{Z: 5}
	// Tangent-space normal (0,0,1) encoded as RGB (0.5, 0.5, 1): the
	// shading normal must equal the geometric normal.
	s.U.NormalTexture = solidTexture(math.Vec3{0.5, 0.5, 1})
	s.U.UseNormalMap = true

	in := Varyings{
		Normal:    math.Vec3{Z: 1},
		Tangent:   math.Vec3{X: 1},
		Bitangent: math.Vec3{Y: 1},
	}
	color, _ := s.Fragment(in, math.Vec2{}, math.Vec2{})
	assert.InDelta(t, 1.0, color.X, 1e-3)

	// Tangent-space normal (1,0,0) rotates to the tangent direction: the
	// light along +Z no longer hits it.
	s.U.NormalTexture = solidTexture(math.Vec3{1, 0.5, 0.5})
	color, _ = s.Fragment(in, math.Vec2{}, math.Vec2{})
	assert.InDelta(t, 0.0, color.X, 1e-3)
}

func TestFragmentPointLightAttenuation(t *testing.T) {
	s := NewBlinnPhong()
	s.U.AmbientLight = math.Vec3{}
	s.U.SpecularColor = math.Vec3{}
	s.U.CameraPosition = math.Vec3{Z: 5}

	// Light 2 units above the surface point: attenuation 1/4.
	s.U.Lights = []lighting.Light{
		lighting.NewPoint(math.Vec3{Z: 2}, math.Vec3{1, 1, 1}, 1),
	}
	color, _ := s.Fragment(Varyings{Normal: math.Vec3{Z: 1}}, math.Vec2{}, math.Vec2{})
	assert.InDelta(t, 0.25, color.X, 1e-4)

	// Closer than 1 unit the inverse square exceeds 1 and must clamp.
	s.U.Lights[0].Position = math.Vec3{Z: 0.5}
	color, _ = s.Fragment(Varyings{Normal: math.Vec3{Z: 1}}, math.Vec2{}, math.Vec2{})
	assert.InDelta(t, 1.0, color.X, 1e-4)
}

func TestFragmentGlossRemap(t *testing.T) {
	s := NewBlinnPhong()
	s.U.GlossTexture = solidTexture(math.Vec3{X: 1})
	s.U.UseGlossMap = true
	s.U.AmbientLight = math.Vec3{}
	s.U.DiffuseColor = math.Vec3{}
	s.U.SpecularColor = math.Vec3{1, 1, 1}
	s.U.CameraPosition = math.Vec3{Z: 5}
	s.U.Lights = []lighting.Light{
		lighting.NewDirectional(math.Vec3{Z: -1}, math.Vec3{1, 1, 1}, 1),
	}

	// Head-on view and light: N·H = 1, so any shininess gives 1.
	headOn, _ := s.Fragment(Varyings{Normal: math.Vec3{Z: 1}}, math.Vec2{}, math.Vec2{})
	assert.InDelta(t, 1.0, headOn.X, 1e-4)

	// Off-axis: gloss 1 (shininess 256) must be far tighter than gloss 0
	// (shininess 2).
	tilted := Varyings{Normal: math.Vec3{X: 0.3, Z: 1}.Normalize()}
	sharp, _ := s.Fragment(tilted, math.Vec2{}, math.Vec2{})

	s.U.GlossTexture = solidTexture(math.Vec3{})
	broad, _ := s.Fragment(tilted, math.Vec2{}, math.Vec2{})

	if sharp.X >= broad.X {
		t.Errorf("high gloss %v should give tighter highlight than low gloss %v", sharp.X, broad.X)
	}
}

func TestFragmentClampsOutput(t *testing.T) {
	s := whiteDiffuse()
	s.U.CameraPosition = math.Vec3{Z: 5}
	s.U.Lights[0].Intensity = 50

	color, _ := s.Fragment(Varyings{Normal: math.Vec3{Z: 1}}, math.Vec2{}, math.Vec2{})
	assert.LessOrEqual(t, color.X, float32(1))
}

func TestVertexStage(t *testing.T) {
	s := NewBlinnPhong()
	s.U.Model = math.Translation(1, 2, 3)
	s.U.MVP = math.Translation(1, 2, 3) // no view/projection for the test
	s.U.Normal = math.Mat3Identity()

	out := s.Vertex(VertexInput{
		Position: math.Vec3{1, 0, 0},
		Normal:   math.Vec3{Z: 1},
		Tangent:  math.Vec3{X: 1},
		UV:       math.Vec2{X: 0.5, Y: 0.25},
	})

	assert.Equal(t, math.Vec4{2, 2, 3, 1}, out.ClipPosition)
	assert.Equal(t, math.Vec3{2, 2, 3}, out.WorldPosition)
	assert.Equal(t, math.Vec3{Z: 1}, out.Normal)
	assert.Equal(t, math.Vec2{X: 0.5, Y: 0.25}, out.UV)
}

func TestFastPow(t *testing.T) {
	cases := []struct {
		base float32
		n    int
	}{
		{2, 0}, {2, 1}, {2, 10}, {0.5, 3}, {0.9, 256}, {1.1, -2},
	}
	for _, tc := range cases {
		want := gomath.Pow(float64(tc.base), float64(tc.n))
		got := fastPow(tc.base, tc.n)
		assert.InEpsilon(t, want, float64(got), 1e-4, "fastPow(%v, %d)", tc.base, tc.n)
	}
}
