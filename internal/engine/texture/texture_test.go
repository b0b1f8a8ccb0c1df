package texture

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/softrender/pkg/formats"
	"github.com/Faultbox/softrender/pkg/math"
)

// solidLevel builds a mip level filled with one color.
func solidLevel(w, h int, c math.Vec3) MipLevel {
	lv := MipLevel{Width: w, Height: h, Pixels: make([]math.Vec3, w*h)}
	for i := range lv.Pixels {
		lv.Pixels[i] = c
	}
	return lv
}

// checkerImage builds a 2x2 black/white RGB image.
func checkerImage() *formats.Image {
	return &formats.Image{
		Width:  2,
		Height: 2,
		Pix: []byte{
			255, 255, 255, 0, 0, 0,
			0, 0, 0, 255, 255, 255,
		},
	}
}

func TestFromImageMipChainDims(t *testing.T) {
	img := &formats.Image{Width: 8, Height: 4, Pix: make([]byte, 8*4*3)}
	tex := FromImage(img, "test")

	wantDims := [][2]int{{8, 4}, {4, 2}, {2, 1}, {1, 1}}
	if len(tex.Levels) != len(wantDims) {
		t.Fatalf("level count = %d, want %d", len(tex.Levels), len(wantDims))
	}
	for k, want := range wantDims {
		lv := tex.Levels[k]
		if lv.Width != want[0] || lv.Height != want[1] {
			t.Errorf("level %d is %dx%d, want %dx%d", k, lv.Width, lv.Height, want[0], want[1])
		}
	}
}

func TestMipGenerationBoxFilter(t *testing.T) {
	tex := FromImage(checkerImage(), "checker")

	// The 1x1 level must be the average of the four base texels: 50% gray.
	last := tex.Levels[len(tex.Levels)-1]
	if last.Width != 1 || last.Height != 1 {
		t.Fatalf("last level %dx%d, want 1x1", last.Width, last.Height)
	}
	assert.InDelta(t, 0.5, last.Pixels[0].X, 1e-6)
	assert.InDelta(t, 0.5, last.Pixels[0].Y, 1e-6)
	assert.InDelta(t, 0.5, last.Pixels[0].Z, 1e-6)
}

func TestSampleZeroDerivativesUsesBaseLevel(t *testing.T) {
	tex := FromImage(checkerImage(), "checker")

	// Mip LOD law: ddx=ddy=0 selects level 0 and equals the bilinear
	// sample of the base level.
	got := tex.Sample(0.25, 0.25, math.Vec2{}, math.Vec2{})
	want := tex.Levels[0].sampleBilinear(0.25, 0.25)
	if got != want {
		t.Errorf("Sample = %v, want bilinear of level 0 %v", got, want)
	}

	// Texel center of the white texel must be exactly white.
	center := tex.Sample(0.25, 0.25, math.Vec2{}, math.Vec2{})
	assert.InDelta(t, 1.0, center.X, 1e-6)
}

func TestSampleUVWrap(t *testing.T) {
	tex := FromImage(checkerImage(), "checker")

	// Dyadic coordinates keep every uv+shift sum exact in float32.
	for _, uv := range [][2]float32{{0.125, 0.6875}, {0.3125, 0.875}} {
		base := tex.Sample(uv[0], uv[1], math.Vec2{}, math.Vec2{})
		for _, shift := range [][2]float32{{1, 0}, {0, 2}, {3, 5}, {-1, -2}} {
			got := tex.Sample(uv[0]+shift[0], uv[1]+shift[1], math.Vec2{}, math.Vec2{})
			if got != base {
				t.Errorf("Sample(%v+%v) = %v, want bit-equal %v", uv, shift, got, base)
			}
		}
	}
}

func TestSampleTrilinearBlend(t *testing.T) {
	red := math.Vec3{X: 1}
	blue := math.Vec3{Z: 1}
	tex := &Texture{Levels: []MipLevel{
		solidLevel(4, 4, red),
		solidLevel(2, 2, blue),
		solidLevel(1, 1, blue),
	}}

	// One texel per pixel footprint: |ddx| = 1/W, so rho = 1, LOD = 0.
	exact := tex.Sample(0.5, 0.5, math.Vec2{X: 0.25}, math.Vec2{})
	assert.InDelta(t, 1.0, exact.X, 1e-5)
	assert.InDelta(t, 0.0, exact.Z, 1e-5)

	// Two texels per pixel: LOD = 1, fully the second level.
	minified := tex.Sample(0.5, 0.5, math.Vec2{X: 0.5}, math.Vec2{})
	assert.InDelta(t, 0.0, minified.X, 1e-5)
	assert.InDelta(t, 1.0, minified.Z, 1e-5)

	// In between: a genuine blend of both levels.
	mid := tex.Sample(0.5, 0.5, math.Vec2{X: 0.35}, math.Vec2{})
	if !(mid.X > 0.05 && mid.X < 0.95 && mid.Z > 0.05 && mid.Z < 0.95) {
		t.Errorf("expected trilinear blend, got %v", mid)
	}
}

func TestSampleClampsToLastLevel(t *testing.T) {
	tex := &Texture{Levels: []MipLevel{
		solidLevel(4, 4, math.Vec3{X: 1}),
		solidLevel(2, 2, math.Vec3{Y: 1}),
		solidLevel(1, 1, math.Vec3{Z: 1}),
	}}

	// A huge footprint must clamp to the 1x1 level, not index past it.
	got := tex.Sample(0.5, 0.5, math.Vec2{X: 100}, math.Vec2{Y: 100})
	if got != (math.Vec3{Z: 1}) {
		t.Errorf("Sample = %v, want last level color", got)
	}
}

func TestSampleEmptyTexture(t *testing.T) {
	var tex *Texture
	if !tex.Empty() {
		t.Error("nil texture should be empty")
	}
	got := tex.Sample(0.5, 0.5, math.Vec2{}, math.Vec2{})
	if got != (math.Vec3{X: 1, Z: 1}) {
		t.Errorf("empty sample = %v, want magenta", got)
	}
}

func TestBilinearInterpolatesBetweenTexels(t *testing.T) {
	lv := MipLevel{Width: 2, Height: 1, Pixels: []math.Vec3{{X: 1}, {Z: 1}}}

	// Halfway between the two texel centers.
	got := lv.sampleBilinear(0.5, 0.5)
	assert.InDelta(t, 0.5, got.X, 1e-6)
	assert.InDelta(t, 0.5, got.Z, 1e-6)

	// At a texel center the sample is exact.
	left := lv.sampleBilinear(0.25, 0.5)
	assert.InDelta(t, 1.0, left.X, 1e-6)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load("image.png")
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
