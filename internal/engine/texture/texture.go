// Package texture provides mipmapped 2D textures with trilinear sampling
// for the software rasterizer.
package texture

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/softrender/pkg/formats"
	"github.com/Faultbox/softrender/pkg/math"
)

// ErrUnsupportedFormat is returned for texture files with an unknown
// extension.
var ErrUnsupportedFormat = errors.New("unsupported texture format")

// MipLevel is one level of the mip pyramid with linear float RGB pixels.
type MipLevel struct {
	Width  int
	Height int
	Pixels []math.Vec3
}

// Texture is an ordered mip pyramid. Level 0 is the base; level k has
// dimensions (max(1, W0>>k), max(1, H0>>k)).
type Texture struct {
	Path   string
	Levels []MipLevel
}

// Load reads a texture from disk, dispatching on the file extension.
// TGA files get a generated mip chain; DDS files carry their own.
func Load(path string) (*Texture, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tga":
		return LoadTGA(path)
	case ".dds":
		return LoadDDS(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadTGA decodes a TGA file as level 0 and generates the remaining mips
// with a 2x2 box filter down to 1x1.
func LoadTGA(path string) (*Texture, error) {
	img, err := formats.ParseTGAFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading texture %s: %w", path, err)
	}
	return FromImage(img, path), nil
}

// FromImage builds a mipmapped texture from a decoded 8-bit RGB image.
func FromImage(img *formats.Image, path string) *Texture {
	base := MipLevel{
		Width:  img.Width,
		Height: img.Height,
		Pixels: make([]math.Vec3, img.Width*img.Height),
	}
	for i := range base.Pixels {
		base.Pixels[i] = math.Vec3{
			X: float32(img.Pix[i*3]) / 255,
			Y: float32(img.Pix[i*3+1]) / 255,
			Z: float32(img.Pix[i*3+2]) / 255,
		}
	}

	t := &Texture{Path: path, Levels: []MipLevel{base}}
	t.generateMips()
	return t
}

// LoadDDS decodes a DDS file; every mip level in the file becomes a level
// of the pyramid.
func LoadDDS(path string) (*Texture, error) {
	dds, err := formats.ParseDDSFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading texture %s: %w", path, err)
	}

	t := &Texture{Path: path}
	for _, lv := range dds.Levels {
		level := MipLevel{
			Width:  lv.Width,
			Height: lv.Height,
			Pixels: make([]math.Vec3, lv.Width*lv.Height),
		}
		for i := range level.Pixels {
			level.Pixels[i] = math.Vec3{X: lv.Pix[i*3], Y: lv.Pix[i*3+1], Z: lv.Pix[i*3+2]}
		}
		t.Levels = append(t.Levels, level)
	}
	return t, nil
}

// Empty reports whether the texture has no usable pixels.
func (t *Texture) Empty() bool {
	return t == nil || len(t.Levels) == 0 || len(t.Levels[0].Pixels) == 0
}

// generateMips appends box-filtered levels until the last level is 1x1.
func (t *Texture) generateMips() {
	for {
		prev := &t.Levels[len(t.Levels)-1]
		if prev.Width <= 1 && prev.Height <= 1 {
			return
		}
		w := max(1, prev.Width/2)
		h := max(1, prev.Height/2)
		next := MipLevel{Width: w, Height: h, Pixels: make([]math.Vec3, w*h)}

		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				// 2x2 box, clamped on odd source dimensions.
				x0, y0 := 2*x, 2*y
				x1 := min(x0+1, prev.Width-1)
				y1 := min(y0+1, prev.Height-1)

				sum := prev.at(x0, y0).
					Add(prev.at(x1, y0)).
					Add(prev.at(x0, y1)).
					Add(prev.at(x1, y1))
				next.Pixels[y*w+x] = sum.Scale(0.25)
			}
		}
		t.Levels = append(t.Levels, next)
	}
}

func (lv *MipLevel) at(x, y int) math.Vec3 {
	return lv.Pixels[y*lv.Width+x]
}
