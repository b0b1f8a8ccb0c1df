// Package formats provides decoders for the image file formats the renderer
// consumes (TGA, DDS) and a TGA encoder for framebuffer output.
package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// TGA format errors.
var (
	ErrTruncatedTGAData    = errors.New("truncated TGA data")
	ErrUnsupportedTGAType  = errors.New("unsupported TGA datatype")
	ErrUnsupportedTGADepth = errors.New("unsupported TGA bit depth")
)

// TGA datatype codes.
const (
	TGATypeUncompressed = 2  // uncompressed true-color
	TGATypeRLE          = 10 // RLE true-color (24 or 32-bit, alpha dropped)
	TGATypeRLEGrayscale = 11 // RLE 8-bit grayscale, expanded to RGB
	tgaHeaderSize       = 18
	tgaTopToBottomFlag  = 0x20
)

// Image is a decoded image with tightly packed RGB bytes, top-left origin.
type Image struct {
	Width  int
	Height int
	Pix    []byte // 3 bytes per pixel, RGB order
}

// ParseTGA decodes a TGA file from raw bytes. Supported datatypes are 2
// (uncompressed 24-bit), 10 (RLE 24/32-bit, alpha dropped), and 11 (RLE
// 8-bit grayscale expanded to RGB). BGR byte order on disk is swapped to
// RGB in memory.
func ParseTGA(data []byte) (*Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, ErrTruncatedTGAData
	}

	idLength := int(data[0])
	colorMapType := data[1]
	dataType := data[2]
	colorMapLength := int(binary.LittleEndian.Uint16(data[5:7]))
	colorMapDepth := int(data[7])
	width := int(binary.LittleEndian.Uint16(data[12:14]))
	height := int(binary.LittleEndian.Uint16(data[14:16]))
	bpp := int(data[16])
	descriptor := data[17]

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d image", ErrTruncatedTGAData, width, height)
	}

	// Skip the image-ID and color-map regions.
	offset := tgaHeaderSize + idLength
	if colorMapType != 0 {
		offset += colorMapLength * (colorMapDepth / 8)
	}
	if offset > len(data) {
		return nil, ErrTruncatedTGAData
	}
	pixelData := data[offset:]

	img := &Image{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*3),
	}

	var err error
	switch dataType {
	case TGATypeUncompressed:
		if bpp != 24 {
			return nil, fmt.Errorf("%w: %d bpp for datatype 2", ErrUnsupportedTGADepth, bpp)
		}
		err = decodeTGARaw(img, pixelData)
	case TGATypeRLE:
		if bpp != 24 && bpp != 32 {
			return nil, fmt.Errorf("%w: %d bpp for datatype 10", ErrUnsupportedTGADepth, bpp)
		}
		err = decodeTGARLE(img, pixelData, bpp/8)
	case TGATypeRLEGrayscale:
		if bpp != 8 {
			return nil, fmt.Errorf("%w: %d bpp for datatype 11", ErrUnsupportedTGADepth, bpp)
		}
		err = decodeTGARLE(img, pixelData, 1)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedTGAType, dataType)
	}
	if err != nil {
		return nil, err
	}

	// Rows are stored bottom-up unless bit 5 of the descriptor is set.
	if descriptor&tgaTopToBottomFlag == 0 {
		flipRows(img)
	}

	return img, nil
}

// ParseTGAFile decodes a TGA file from disk.
func ParseTGAFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading TGA file: %w", err)
	}
	return ParseTGA(data)
}

func decodeTGARaw(img *Image, pixelData []byte) error {
	count := img.Width * img.Height
	if len(pixelData) < count*3 {
		return ErrTruncatedTGAData
	}
	for i := 0; i < count; i++ {
		img.Pix[i*3] = pixelData[i*3+2]   // R
		img.Pix[i*3+1] = pixelData[i*3+1] // G
		img.Pix[i*3+2] = pixelData[i*3]   // B
	}
	return nil
}

// decodeTGARLE decodes run-length packets. bytesPerPixel is 1 (grayscale),
// 3 (BGR) or 4 (BGRA, alpha dropped).
func decodeTGARLE(img *Image, pixelData []byte, bytesPerPixel int) error {
	count := img.Width * img.Height
	pixel := 0
	pos := 0

	writePixel := func(src []byte) {
		dst := pixel * 3
		if bytesPerPixel == 1 {
			img.Pix[dst] = src[0]
			img.Pix[dst+1] = src[0]
			img.Pix[dst+2] = src[0]
		} else {
			img.Pix[dst] = src[2]
			img.Pix[dst+1] = src[1]
			img.Pix[dst+2] = src[0]
		}
		pixel++
	}

	for pixel < count {
		if pos >= len(pixelData) {
			return ErrTruncatedTGAData
		}
		packet := pixelData[pos]
		pos++
		runLength := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// RLE packet: one pixel value repeated.
			if pos+bytesPerPixel > len(pixelData) {
				return ErrTruncatedTGAData
			}
			src := pixelData[pos : pos+bytesPerPixel]
			pos += bytesPerPixel
			for i := 0; i < runLength && pixel < count; i++ {
				writePixel(src)
			}
		} else {
			// Raw packet: runLength literal pixels.
			for i := 0; i < runLength && pixel < count; i++ {
				if pos+bytesPerPixel > len(pixelData) {
					return ErrTruncatedTGAData
				}
				writePixel(pixelData[pos : pos+bytesPerPixel])
				pos += bytesPerPixel
			}
		}
	}
	return nil
}

func flipRows(img *Image) {
	rowLen := img.Width * 3
	tmp := make([]byte, rowLen)
	for y := 0; y < img.Height/2; y++ {
		top := img.Pix[y*rowLen : (y+1)*rowLen]
		bot := img.Pix[(img.Height-1-y)*rowLen : (img.Height-y)*rowLen]
		copy(tmp, top)
		copy(top, bot)
		copy(bot, tmp)
	}
}

// EncodeTGA encodes an RGB image as an uncompressed 24-bit TGA with
// top-left origin (datatype 2, descriptor 0x20), BGR byte order on disk.
func EncodeTGA(img *Image) []byte {
	out := make([]byte, tgaHeaderSize+len(img.Pix))
	out[2] = TGATypeUncompressed
	binary.LittleEndian.PutUint16(out[12:14], uint16(img.Width))
	binary.LittleEndian.PutUint16(out[14:16], uint16(img.Height))
	out[16] = 24
	out[17] = tgaTopToBottomFlag

	dst := out[tgaHeaderSize:]
	for i := 0; i < img.Width*img.Height; i++ {
		dst[i*3] = img.Pix[i*3+2]   // B
		dst[i*3+1] = img.Pix[i*3+1] // G
		dst[i*3+2] = img.Pix[i*3]   // R
	}
	return out
}

// WriteTGAFile encodes an image and writes it to disk.
func WriteTGAFile(path string, img *Image) error {
	if err := os.WriteFile(path, EncodeTGA(img), 0o644); err != nil {
		return fmt.Errorf("writing TGA file: %w", err)
	}
	return nil
}
