// Package framebuffer provides the CPU color and depth targets the
// rasterizer writes into.
package framebuffer

import (
	"fmt"
	"sync"

	"github.com/Faultbox/softrender/internal/engine/worker"
	"github.com/Faultbox/softrender/pkg/formats"
	"github.com/Faultbox/softrender/pkg/math"
)

// lockPoolSize is the number of mutexes pixel writes hash onto. Concurrent
// triangles may target the same pixel; the hashed pool keeps the depth test
// and color write of one pixel inside a single critical section without a
// mutex per pixel.
const lockPoolSize = 2047

// Framebuffer holds a color buffer and a depth buffer of fixed size.
// Depth is normalized to [0,1] with 0 nearest; smaller depth wins under a
// strict < test.
type Framebuffer struct {
	width  int
	height int
	color  []math.Vec3
	depth  []float32
	locks  [lockPoolSize]sync.Mutex
}

// New creates a framebuffer with depth cleared to 1.
func New(width, height int) *Framebuffer {
	fb := &Framebuffer{
		width:  width,
		height: height,
		color:  make([]math.Vec3, width*height),
		depth:  make([]float32, width*height),
	}
	fb.ClearDepth()
	return fb
}

// Width returns the buffer width in pixels.
func (fb *Framebuffer) Width() int { return fb.width }

// Height returns the buffer height in pixels.
func (fb *Framebuffer) Height() int { return fb.height }

// Clear fills the color buffer with a background color.
func (fb *Framebuffer) Clear(bg math.Vec3) {
	for i := range fb.color {
		fb.color[i] = bg
	}
}

// ClearDepth resets every depth value to the far plane (1).
func (fb *Framebuffer) ClearDepth() {
	for i := range fb.depth {
		fb.depth[i] = 1
	}
}

func (fb *Framebuffer) lockFor(x, y int) *sync.Mutex {
	return &fb.locks[(x*13331+y)%lockPoolSize]
}

// SetPixel writes color and depth at (x, y) if depth passes a strict <
// test against the stored value. Test and write happen under the pixel's
// hashed lock, so among concurrent writers exactly the smallest depth wins.
// Out-of-bounds coordinates are ignored.
func (fb *Framebuffer) SetPixel(x, y int, color math.Vec3, depth float32) {
	if x < 0 || x >= fb.width || y < 0 || y >= fb.height {
		return
	}
	idx := y*fb.width + x

	mu := fb.lockFor(x, y)
	mu.Lock()
	if depth < fb.depth[idx] {
		fb.depth[idx] = depth
		fb.color[idx] = color.Clamp01()
	}
	mu.Unlock()
}

// DepthAt returns the stored depth at (x, y), or 1 out of bounds. The read
// is unlocked: the rasterizer uses it only for early rejection, and the
// authoritative test re-runs under the lock in SetPixel.
func (fb *Framebuffer) DepthAt(x, y int) float32 {
	if x < 0 || x >= fb.width || y < 0 || y >= fb.height {
		return 1
	}
	return fb.depth[y*fb.width+x]
}

// ColorAt returns the stored color at (x, y), or zero out of bounds.
func (fb *Framebuffer) ColorAt(x, y int) math.Vec3 {
	if x < 0 || x >= fb.width || y < 0 || y >= fb.height {
		return math.Vec3{}
	}
	return fb.color[y*fb.width+x]
}

// FlipVertical mirrors the color and depth buffers top-to-bottom. Rows are
// swapped in stripes fanned out over the pool; pass nil to flip on the
// calling goroutine.
func (fb *Framebuffer) FlipVertical(pool *worker.Pool) {
	half := fb.height / 2
	if pool == nil {
		fb.flipRows(0, half)
		return
	}

	stripes := pool.Workers()
	if stripes > half {
		stripes = half
	}
	if stripes < 1 {
		return
	}
	per := (half + stripes - 1) / stripes
	for s := 0; s < stripes; s++ {
		start := s * per
		end := start + per
		if end > half {
			end = half
		}
		if start >= end {
			break
		}
		pool.Enqueue(func() { fb.flipRows(start, end) })
	}
	if err := pool.Wait(); err != nil {
		// A flip stripe cannot panic in practice; surface it anyway.
		panic(err)
	}
}

func (fb *Framebuffer) flipRows(start, end int) {
	w := fb.width
	for y := start; y < end; y++ {
		opp := fb.height - 1 - y
		rowA := fb.color[y*w : (y+1)*w]
		rowB := fb.color[opp*w : (opp+1)*w]
		for x := 0; x < w; x++ {
			rowA[x], rowB[x] = rowB[x], rowA[x]
		}
		depthA := fb.depth[y*w : (y+1)*w]
		depthB := fb.depth[opp*w : (opp+1)*w]
		for x := 0; x < w; x++ {
			depthA[x], depthB[x] = depthB[x], depthA[x]
		}
	}
}

// ToImage converts the color buffer to an 8-bit RGB image.
func (fb *Framebuffer) ToImage() *formats.Image {
	img := &formats.Image{
		Width:  fb.width,
		Height: fb.height,
		Pix:    make([]byte, fb.width*fb.height*3),
	}
	for i, c := range fb.color {
		c = c.Clamp01()
		img.Pix[i*3] = uint8(c.X * 255)
		img.Pix[i*3+1] = uint8(c.Y * 255)
		img.Pix[i*3+2] = uint8(c.Z * 255)
	}
	return img
}

// SaveTGA writes the color buffer as a 24-bit uncompressed TGA.
func (fb *Framebuffer) SaveTGA(path string) error {
	if err := formats.WriteTGAFile(path, fb.ToImage()); err != nil {
		return fmt.Errorf("saving framebuffer: %w", err)
	}
	return nil
}
