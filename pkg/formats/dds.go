package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/chewxy/math32"
)

// DDS format errors.
var (
	ErrInvalidDDSMagic      = errors.New("invalid DDS magic: expected 'DDS '")
	ErrInvalidDDSHeader     = errors.New("invalid DDS header")
	ErrTruncatedDDSData     = errors.New("truncated DDS data")
	ErrUnsupportedDDSFormat = errors.New("unsupported DDS format")
)

const (
	ddsMagic      = 0x20534444 // "DDS " little-endian
	ddsHeaderSize = 124

	// Header flags.
	ddsdCaps        = 0x1
	ddsdHeight      = 0x2
	ddsdWidth       = 0x4
	ddsdPixelFormat = 0x1000
	ddsdMipMapCount = 0x20000

	// Pixel-format flags.
	ddpfFourCC = 0x4

	// Caps.
	ddsCapsTexture = 0x1000
	ddsCapsMipMap  = 0x400000
)

// DDSLevel is one decoded mip level with float RGB pixels in linear space.
type DDSLevel struct {
	Width  int
	Height int
	Pix    []float32 // 3 floats per pixel, RGB order
}

// DDS is a decoded DDS texture: base dimensions plus every mip level the
// file carried (level 0 first).
type DDS struct {
	Width  int
	Height int
	FourCC string
	Levels []DDSLevel
}

// ParseDDS decodes a DDS file. Supported FourCC codecs are DXT1 (8-byte
// blocks), DXT5, and ATI2/BC5U (16-byte blocks). Every mip level declared
// in the header is decoded; if the data runs out the valid prefix of
// levels is kept.
func ParseDDS(data []byte) (*DDS, error) {
	if len(data) < 4+ddsHeaderSize {
		return nil, ErrTruncatedDDSData
	}
	if binary.LittleEndian.Uint32(data[0:4]) != ddsMagic {
		return nil, ErrInvalidDDSMagic
	}

	h := data[4 : 4+ddsHeaderSize]
	if binary.LittleEndian.Uint32(h[0:4]) != ddsHeaderSize {
		return nil, fmt.Errorf("%w: header size field != 124", ErrInvalidDDSHeader)
	}

	flags := binary.LittleEndian.Uint32(h[4:8])
	height := int(binary.LittleEndian.Uint32(h[8:12]))
	width := int(binary.LittleEndian.Uint32(h[12:16]))
	mipCount := int(binary.LittleEndian.Uint32(h[24:28]))
	pfFlags := binary.LittleEndian.Uint32(h[76:80])
	fourCC := string(h[80:84])
	caps1 := binary.LittleEndian.Uint32(h[104:108])

	const required = ddsdCaps | ddsdHeight | ddsdWidth | ddsdPixelFormat
	if flags&required != required {
		return nil, fmt.Errorf("%w: missing required flags %#x", ErrInvalidDDSHeader, required&^flags)
	}
	if caps1&ddsCapsTexture == 0 {
		return nil, fmt.Errorf("%w: TEXTURE cap not set", ErrInvalidDDSHeader)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d image", ErrInvalidDDSHeader, width, height)
	}
	if pfFlags&ddpfFourCC == 0 {
		return nil, fmt.Errorf("%w: uncompressed DDS not supported", ErrUnsupportedDDSFormat)
	}

	var blockSize int
	switch fourCC {
	case "DXT1":
		blockSize = 8
	case "DXT5", "ATI2", "BC5U":
		blockSize = 16
	case "DX10":
		return nil, fmt.Errorf("%w: DX10 extended header", ErrUnsupportedDDSFormat)
	default:
		return nil, fmt.Errorf("%w: FourCC %q", ErrUnsupportedDDSFormat, fourCC)
	}

	// Mip count is honored only when both the header flag and the cap agree.
	if flags&ddsdMipMapCount == 0 || caps1&ddsCapsMipMap == 0 || mipCount < 1 {
		mipCount = 1
	}

	dds := &DDS{Width: width, Height: height, FourCC: fourCC}
	body := data[4+ddsHeaderSize:]
	offset := 0

	for level := 0; level < mipCount; level++ {
		w := max(1, width>>level)
		h := max(1, height>>level)
		size := ((w + 3) / 4) * ((h + 3) / 4) * blockSize
		if offset+size > len(body) {
			break // keep the valid prefix of levels
		}

		var pix []float32
		switch fourCC {
		case "DXT1":
			pix = decompressDXT1(body[offset:offset+size], w, h)
		case "DXT5":
			pix = decompressDXT5(body[offset:offset+size], w, h)
		default: // ATI2 / BC5U
			pix = decompressBC5(body[offset:offset+size], w, h)
		}

		dds.Levels = append(dds.Levels, DDSLevel{Width: w, Height: h, Pix: pix})
		offset += size
	}

	if len(dds.Levels) == 0 {
		return nil, ErrTruncatedDDSData
	}
	return dds, nil
}

// ParseDDSFile decodes a DDS file from disk.
func ParseDDSFile(path string) (*DDS, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading DDS file: %w", err)
	}
	return ParseDDS(data)
}

// decode565 expands a 5:6:5 packed color into float RGB.
func decode565(c uint16) [3]float32 {
	return [3]float32{
		float32((c>>11)&31) / 31,
		float32((c>>5)&63) / 63,
		float32(c&31) / 31,
	}
}

// dxt1Palette builds the 4-entry color palette for a DXT1 block. When
// c0 <= c1 the block uses the 3-color mode with a transparent fourth entry
// (decoded as black since the pipeline carries RGB only).
func dxt1Palette(c0, c1 uint16) [4][3]float32 {
	col0 := decode565(c0)
	col1 := decode565(c1)
	var p [4][3]float32
	p[0] = col0
	p[1] = col1
	if c0 > c1 {
		for i := 0; i < 3; i++ {
			p[2][i] = (2*col0[i] + col1[i]) / 3
			p[3][i] = (col0[i] + 2*col1[i]) / 3
		}
	} else {
		for i := 0; i < 3; i++ {
			p[2][i] = (col0[i] + col1[i]) / 2
			p[3][i] = 0
		}
	}
	return p
}

func decompressDXT1(data []byte, width, height int) []float32 {
	pix := make([]float32, width*height*3)
	blocksPerRow := (width + 3) / 4

	for y := 0; y < height; y += 4 {
		for x := 0; x < width; x += 4 {
			offset := ((y/4)*blocksPerRow + x/4) * 8
			c0 := binary.LittleEndian.Uint16(data[offset:])
			c1 := binary.LittleEndian.Uint16(data[offset+2:])
			lookup := binary.LittleEndian.Uint32(data[offset+4:])
			palette := dxt1Palette(c0, c1)

			writeColorBlock(pix, width, height, x, y, lookup, palette)
		}
	}
	return pix
}

func decompressDXT5(data []byte, width, height int) []float32 {
	pix := make([]float32, width*height*3)
	blocksPerRow := (width + 3) / 4

	for y := 0; y < height; y += 4 {
		for x := 0; x < width; x += 4 {
			offset := ((y/4)*blocksPerRow + x/4) * 16
			// The 8-byte alpha block is skipped: the pipeline drops alpha.
			c0 := binary.LittleEndian.Uint16(data[offset+8:])
			c1 := binary.LittleEndian.Uint16(data[offset+10:])
			lookup := binary.LittleEndian.Uint32(data[offset+12:])

			// DXT5 color blocks always interpolate 4 colors.
			col0 := decode565(c0)
			col1 := decode565(c1)
			var palette [4][3]float32
			palette[0] = col0
			palette[1] = col1
			for i := 0; i < 3; i++ {
				palette[2][i] = (2*col0[i] + col1[i]) / 3
				palette[3][i] = (col0[i] + 2*col1[i]) / 3
			}

			writeColorBlock(pix, width, height, x, y, lookup, palette)
		}
	}
	return pix
}

func writeColorBlock(pix []float32, width, height, x, y int, lookup uint32, palette [4][3]float32) {
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			px, py := x+i, y+j
			if px >= width || py >= height {
				continue
			}
			idx := (lookup >> (2 * uint(j*4+i))) & 0x3
			dst := (py*width + px) * 3
			pix[dst] = palette[idx][0]
			pix[dst+1] = palette[idx][1]
			pix[dst+2] = palette[idx][2]
		}
	}
}

// decodeAlphaRamp builds the 8-point value ramp of a DXT5-style alpha block.
func decodeAlphaRamp(a0, a1 byte) [8]float32 {
	var ramp [8]float32
	ramp[0] = float32(a0) / 255
	ramp[1] = float32(a1) / 255
	if a0 > a1 {
		for i := 0; i < 6; i++ {
			ramp[i+2] = (float32(6-i)*float32(a0) + float32(i+1)*float32(a1)) / 7 / 255
		}
	} else {
		for i := 0; i < 4; i++ {
			ramp[i+2] = (float32(4-i)*float32(a0) + float32(i+1)*float32(a1)) / 5 / 255
		}
		ramp[6] = 0
		ramp[7] = 1
	}
	return ramp
}

// alphaIndexBits packs the 6 index bytes of an alpha block into one uint64.
func alphaIndexBits(data []byte) uint64 {
	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(data[i]) << (8 * uint(i))
	}
	return bits
}

// decompressBC5 decodes ATI2/BC5U blocks: two DXT5-style alpha blocks carry
// the R and G channels; B is reconstructed as sqrt(max(0, 1 - r² - g²)),
// treating the texel as a unit normal.
func decompressBC5(data []byte, width, height int) []float32 {
	pix := make([]float32, width*height*3)
	blocksPerRow := (width + 3) / 4

	for y := 0; y < height; y += 4 {
		for x := 0; x < width; x += 4 {
			offset := ((y/4)*blocksPerRow + x/4) * 16

			reds := decodeAlphaRamp(data[offset], data[offset+1])
			rBits := alphaIndexBits(data[offset+2:])
			greens := decodeAlphaRamp(data[offset+8], data[offset+9])
			gBits := alphaIndexBits(data[offset+10:])

			for j := 0; j < 4; j++ {
				for i := 0; i < 4; i++ {
					px, py := x+i, y+j
					if px >= width || py >= height {
						continue
					}
					texel := uint(j*4 + i)
					r := reds[(rBits>>(3*texel))&0x7]
					g := greens[(gBits>>(3*texel))&0x7]
					b := math32.Sqrt(math32.Max(0, 1-r*r-g*g))
					dst := (py*width + px) * 3
					pix[dst] = r
					pix[dst+1] = g
					pix[dst+2] = b
				}
			}
		}
	}
	return pix
}
