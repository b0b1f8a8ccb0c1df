package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// buildTGAHeader creates an 18-byte TGA header.
func buildTGAHeader(dataType byte, width, height int, bpp, descriptor byte) []byte {
	h := make([]byte, 18)
	h[2] = dataType
	binary.LittleEndian.PutUint16(h[12:14], uint16(width))
	binary.LittleEndian.PutUint16(h[14:16], uint16(height))
	h[16] = bpp
	h[17] = descriptor
	return h
}

func TestParseTGA_Uncompressed24(t *testing.T) {
	// 2x2, top-left origin. Pixels on disk are BGR.
	buf := new(bytes.Buffer)
	buf.Write(buildTGAHeader(TGATypeUncompressed, 2, 2, 24, 0x20))
	buf.Write([]byte{
		255, 0, 0, // blue
		0, 255, 0, // green
		0, 0, 255, // red
		255, 255, 255, // white
	})

	img, err := ParseTGA(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseTGA failed: %v", err)
	}
	if img.Width != 2 || img.Height != 2 {
		t.Fatalf("expected 2x2, got %dx%d", img.Width, img.Height)
	}

	want := []byte{
		0, 0, 255,
		0, 255, 0,
		255, 0, 0,
		255, 255, 255,
	}
	if !bytes.Equal(img.Pix, want) {
		t.Errorf("pixels = %v, want %v", img.Pix, want)
	}
}

func TestParseTGA_BottomUpFlipsRows(t *testing.T) {
	// Same image, bottom-left origin (descriptor 0): first stored row is
	// the bottom of the image.
	buf := new(bytes.Buffer)
	buf.Write(buildTGAHeader(TGATypeUncompressed, 1, 2, 24, 0))
	buf.Write([]byte{
		0, 0, 255, // red pixel, bottom row
		255, 0, 0, // blue pixel, top row
	})

	img, err := ParseTGA(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseTGA failed: %v", err)
	}
	want := []byte{
		0, 0, 255, // top row: blue
		255, 0, 0, // bottom row: red
	}
	if !bytes.Equal(img.Pix, want) {
		t.Errorf("pixels = %v, want %v", img.Pix, want)
	}
}

func TestParseTGA_RLE24(t *testing.T) {
	buf := new(bytes.Buffer)
	buf.Write(buildTGAHeader(TGATypeRLE, 4, 1, 24, 0x20))
	// RLE packet: 3 repeats of blue-on-disk, then raw packet of 1 red.
	buf.Write([]byte{0x82, 255, 0, 0})
	buf.Write([]byte{0x00, 0, 0, 255})

	img, err := ParseTGA(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseTGA failed: %v", err)
	}
	want := []byte{
		0, 0, 255,
		0, 0, 255,
		0, 0, 255,
		255, 0, 0,
	}
	if !bytes.Equal(img.Pix, want) {
		t.Errorf("pixels = %v, want %v", img.Pix, want)
	}
}

func TestParseTGA_RLE32DropsAlpha(t *testing.T) {
	buf := new(bytes.Buffer)
	buf.Write(buildTGAHeader(TGATypeRLE, 2, 1, 32, 0x20))
	buf.Write([]byte{0x81, 10, 20, 30, 99}) // BGRA run of 2, alpha 99 dropped

	img, err := ParseTGA(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseTGA failed: %v", err)
	}
	want := []byte{30, 20, 10, 30, 20, 10}
	if !bytes.Equal(img.Pix, want) {
		t.Errorf("pixels = %v, want %v", img.Pix, want)
	}
}

func TestParseTGA_RLEGrayscale(t *testing.T) {
	buf := new(bytes.Buffer)
	buf.Write(buildTGAHeader(TGATypeRLEGrayscale, 3, 1, 8, 0x20))
	buf.Write([]byte{0x81, 128}) // run of 2
	buf.Write([]byte{0x00, 255}) // raw 1

	img, err := ParseTGA(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseTGA failed: %v", err)
	}
	want := []byte{128, 128, 128, 128, 128, 128, 255, 255, 255}
	if !bytes.Equal(img.Pix, want) {
		t.Errorf("pixels = %v, want %v", img.Pix, want)
	}
}

func TestParseTGA_SkipsImageID(t *testing.T) {
	h := buildTGAHeader(TGATypeUncompressed, 1, 1, 24, 0x20)
	h[0] = 4 // 4-byte image ID
	buf := new(bytes.Buffer)
	buf.Write(h)
	buf.Write([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	buf.Write([]byte{1, 2, 3})

	img, err := ParseTGA(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseTGA failed: %v", err)
	}
	if !bytes.Equal(img.Pix, []byte{3, 2, 1}) {
		t.Errorf("pixels = %v, want [3 2 1]", img.Pix)
	}
}

func TestParseTGA_UnsupportedType(t *testing.T) {
	data := buildTGAHeader(3, 1, 1, 24, 0x20) // uncompressed grayscale
	_, err := ParseTGA(append(data, 0))
	if !errors.Is(err, ErrUnsupportedTGAType) {
		t.Errorf("expected ErrUnsupportedTGAType, got %v", err)
	}
}

func TestParseTGA_Truncated(t *testing.T) {
	_, err := ParseTGA([]byte{0, 0, 2})
	if !errors.Is(err, ErrTruncatedTGAData) {
		t.Errorf("expected ErrTruncatedTGAData, got %v", err)
	}

	data := buildTGAHeader(TGATypeUncompressed, 4, 4, 24, 0x20)
	_, err = ParseTGA(append(data, 1, 2, 3)) // 1 of 16 pixels
	if !errors.Is(err, ErrTruncatedTGAData) {
		t.Errorf("expected ErrTruncatedTGAData, got %v", err)
	}
}

func TestTGA_EncodeDecodeRoundTrip(t *testing.T) {
	src := &Image{
		Width:  3,
		Height: 2,
		Pix: []byte{
			1, 2, 3, 4, 5, 6, 7, 8, 9,
			10, 20, 30, 40, 50, 60, 70, 80, 90,
		},
	}

	decoded, err := ParseTGA(EncodeTGA(src))
	if err != nil {
		t.Fatalf("ParseTGA(EncodeTGA) failed: %v", err)
	}
	if decoded.Width != src.Width || decoded.Height != src.Height {
		t.Fatalf("round-trip dims %dx%d, want %dx%d", decoded.Width, decoded.Height, src.Width, src.Height)
	}
	if !bytes.Equal(decoded.Pix, src.Pix) {
		t.Errorf("round-trip pixels differ:\n got %v\nwant %v", decoded.Pix, src.Pix)
	}
}
