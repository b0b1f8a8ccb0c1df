// Package window handles SDL2 window creation and presentation of the
// CPU framebuffer through a streaming texture.
package window

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/softrender/internal/engine/framebuffer"
)

func init() {
	// SDL calls must be made from the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
}

// Input is the per-frame input state polled from SDL events.
type Input struct {
	Quit       bool
	Screenshot bool // F12 pressed this frame

	// Held movement keys.
	Forward, Backward bool
	Left, Right       bool
	Up, Down          bool

	// Relative mouse motion since last poll.
	MouseDX, MouseDY float32
}

// Window wraps an SDL2 window plus the streaming texture the software
// framebuffer is presented through.
type Window struct {
	config      Config
	sdlWindow   *sdl.Window
	sdlRenderer *sdl.Renderer
	texture     *sdl.Texture

	held Input
}

// New creates a window with a streaming RGB24 texture matching the
// framebuffer resolution. Relative mouse mode is enabled for mouse-look.
func New(cfg Config) (*Window, error) {
	w := &Window{
		config: cfg,
	}

	slog.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	flags := uint32(sdl.WINDOW_SHOWN)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN
	}

	var err error
	w.sdlWindow, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	w.sdlRenderer, err = sdl.CreateRenderer(w.sdlWindow, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateRenderer failed: %w", err)
	}

	w.texture, err = w.sdlRenderer.CreateTexture(
		sdl.PIXELFORMAT_RGB24,
		sdl.TEXTUREACCESS_STREAMING,
		int32(cfg.Width),
		int32(cfg.Height),
	)
	if err != nil {
		w.sdlRenderer.Destroy()
		w.sdlWindow.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateTexture failed: %w", err)
	}

	sdl.SetRelativeMouseMode(true)

	slog.Info("window created",
		"title", cfg.Title,
		"width", cfg.Width,
		"height", cfg.Height,
		"fullscreen", cfg.Fullscreen,
	)

	return w, nil
}

// Close destroys the window and cleans up SDL2.
func (w *Window) Close() {
	slog.Info("closing window")

	sdl.SetRelativeMouseMode(false)
	if w.texture != nil {
		w.texture.Destroy()
	}
	if w.sdlRenderer != nil {
		w.sdlRenderer.Destroy()
	}
	if w.sdlWindow != nil {
		w.sdlWindow.Destroy()
	}

	sdl.Quit()
}

// PollInput drains pending SDL events and returns the merged input state.
// Key state persists between polls; mouse motion and one-shot keys reset.
func (w *Window) PollInput() Input {
	w.held.Screenshot = false
	w.held.MouseDX = 0
	w.held.MouseDY = 0

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			w.held.Quit = true

		case *sdl.KeyboardEvent:
			down := e.Type == sdl.KEYDOWN
			switch e.Keysym.Sym {
			case sdl.K_ESCAPE:
				if down {
					w.held.Quit = true
				}
			case sdl.K_F12:
				if down && e.Repeat == 0 {
					w.held.Screenshot = true
				}
			case sdl.K_w:
				w.held.Forward = down
			case sdl.K_s:
				w.held.Backward = down
			case sdl.K_a:
				w.held.Left = down
			case sdl.K_d:
				w.held.Right = down
			case sdl.K_SPACE:
				w.held.Up = down
			case sdl.K_LSHIFT:
				w.held.Down = down
			}

		case *sdl.MouseMotionEvent:
			w.held.MouseDX += float32(e.XRel)
			w.held.MouseDY += float32(e.YRel)
		}
	}

	return w.held
}

// Present uploads the framebuffer to the streaming texture and displays
// it.
func (w *Window) Present(fb *framebuffer.Framebuffer) error {
	img := fb.ToImage()

	if err := w.texture.Update(nil, img.Pix, img.Width*3); err != nil {
		return fmt.Errorf("updating framebuffer texture: %w", err)
	}
	if err := w.sdlRenderer.Copy(w.texture, nil, nil); err != nil {
		return fmt.Errorf("copying framebuffer texture: %w", err)
	}
	w.sdlRenderer.Present()
	return nil
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.sdlWindow.SetTitle(title)
}
