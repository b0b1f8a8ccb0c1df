package texture

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/softrender/pkg/math"
)

// minFootprint is the squared screen-space footprint below which the
// sampler pins LOD to the base level.
const minFootprint = 1e-9

// Sample returns the trilinearly filtered color at (u, v). Coordinates
// wrap modulo 1. ddx and ddy are the screen-space derivatives of uv and
// drive mip selection: the level pair straddling the computed LOD is
// bilinearly sampled and blended by the LOD fraction.
func (t *Texture) Sample(u, v float32, ddx, ddy math.Vec2) math.Vec3 {
	if t.Empty() {
		return math.Vec3{X: 1, Z: 1} // magenta marks a missing texture
	}

	base := &t.Levels[0]
	rho2 := math32.Max(
		ddx.LengthSq()*float32(base.Width)*float32(base.Width),
		ddy.LengthSq()*float32(base.Height)*float32(base.Height),
	)

	var lod float32
	if rho2 >= minFootprint {
		lod = math32.Max(0, 0.5*math32.Log2(rho2))
	}

	level := int(lod)
	last := len(t.Levels) - 1
	if level >= last {
		return t.Levels[last].sampleBilinear(u, v)
	}

	c0 := t.Levels[level].sampleBilinear(u, v)
	c1 := t.Levels[level+1].sampleBilinear(u, v)
	return c0.Lerp(c1, lod-float32(level))
}

// sampleBilinear filters the level at (u, v). The coordinates wrap modulo
// 1; the four integer neighbors are clamped, not wrapped, because wrapping
// already happened on (u, v).
func (lv *MipLevel) sampleBilinear(u, v float32) math.Vec3 {
	if len(lv.Pixels) == 0 || lv.Width <= 0 || lv.Height <= 0 {
		return math.Vec3{X: 1, Z: 1}
	}

	u -= math32.Floor(u)
	v -= math32.Floor(v)

	// Texel centers sit at half-integer coordinates.
	tx := u*float32(lv.Width) - 0.5
	ty := v*float32(lv.Height) - 0.5

	x0 := int(math32.Floor(tx))
	y0 := int(math32.Floor(ty))
	fx := tx - float32(x0)
	fy := ty - float32(y0)

	c00 := lv.atClamped(x0, y0)
	c10 := lv.atClamped(x0+1, y0)
	c01 := lv.atClamped(x0, y0+1)
	c11 := lv.atClamped(x0+1, y0+1)

	top := c00.Lerp(c10, fx)
	bottom := c01.Lerp(c11, fx)
	return top.Lerp(bottom, fy)
}

func (lv *MipLevel) atClamped(x, y int) math.Vec3 {
	if x < 0 {
		x = 0
	} else if x >= lv.Width {
		x = lv.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= lv.Height {
		y = lv.Height - 1
	}
	return lv.Pixels[y*lv.Width+x]
}
