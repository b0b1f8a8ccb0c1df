// Package app wires the frame loop together: config, worker pool,
// framebuffer, renderer, scene, and (unless headless) the SDL window.
package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Faultbox/softrender/internal/assets"
	"github.com/Faultbox/softrender/internal/config"
	"github.com/Faultbox/softrender/internal/engine/framebuffer"
	"github.com/Faultbox/softrender/internal/engine/renderer"
	"github.com/Faultbox/softrender/internal/engine/scene"
	"github.com/Faultbox/softrender/internal/engine/window"
	"github.com/Faultbox/softrender/internal/engine/worker"
)

// Camera feel tuned by hand against the default scene.
const (
	moveSpeed        = 3.0  // units per second
	mouseSensitivity = 0.15 // degrees per mouse count
)

// App owns the engine components and runs the frame loop.
type App struct {
	cfg   *config.Config
	pool  *worker.Pool
	fb    *framebuffer.Framebuffer
	rnd   *renderer.Renderer
	cache *assets.Cache
	scene *scene.Scene
	win   *window.Window // nil when headless
}

// New builds the engine from configuration and loads the scene. A scene
// file that fails to load degrades to the built-in default scene.
func New(cfg *config.Config) (*App, error) {
	workers := cfg.Renderer.Workers
	if workers <= 0 {
		workers = worker.DefaultWorkers()
	}

	a := &App{
		cfg:   cfg,
		pool:  worker.New(workers),
		fb:    framebuffer.New(cfg.Graphics.Width, cfg.Graphics.Height),
		cache: assets.NewCache(),
	}
	a.rnd = renderer.New(a.fb, a.pool)

	aspect := float32(cfg.Graphics.Width) / float32(cfg.Graphics.Height)
	s, err := scene.LoadFile(cfg.Scene.Path, a.cache, aspect)
	if err != nil {
		slog.Warn("scene load failed, using default scene", "path", cfg.Scene.Path, "error", err)
		s = scene.Default(aspect)
	}
	a.scene = s

	if !cfg.Graphics.Headless {
		a.win, err = window.New(window.Config{
			Title:      "softrender",
			Width:      cfg.Graphics.Width,
			Height:     cfg.Graphics.Height,
			Fullscreen: cfg.Graphics.Fullscreen,
		})
		if err != nil {
			a.pool.Stop()
			return nil, fmt.Errorf("creating window: %w", err)
		}
	}

	slog.Info("app initialized",
		"workers", workers,
		"width", cfg.Graphics.Width,
		"height", cfg.Graphics.Height,
		"headless", cfg.Graphics.Headless,
	)
	return a, nil
}

// Run executes the frame loop until quit (windowed) or for the configured
// frame count (headless).
func (a *App) Run() error {
	if a.win == nil {
		return a.runHeadless()
	}
	return a.runWindowed()
}

// Close releases the window and stops the worker pool.
func (a *App) Close() {
	if a.win != nil {
		a.win.Close()
	}
	a.pool.Stop()
}

// renderFrame advances animations and rasterizes the scene. The finished
// image is flipped so row 0 is the top, matching the presentation and
// TGA output orientation.
func (a *App) renderFrame(dt float32) {
	a.scene.Update(dt)
	a.scene.Render(a.rnd)
	a.fb.FlipVertical(a.pool)
}

func (a *App) runHeadless() error {
	frames := a.cfg.Renderer.FrameCount
	if frames < 1 {
		frames = 1
	}

	slog.Info("headless render", "frames", frames, "output", a.cfg.Renderer.Output)

	const dt = float32(1.0 / 60.0)
	start := time.Now()
	for i := 0; i < frames; i++ {
		a.renderFrame(dt)
	}
	elapsed := time.Since(start)

	if err := a.fb.SaveTGA(a.cfg.Renderer.Output); err != nil {
		return err
	}

	slog.Info("headless render complete",
		"frames", frames,
		"elapsed", elapsed,
		"per_frame", elapsed/time.Duration(frames),
	)
	return nil
}

func (a *App) runWindowed() error {
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := lastTime

	for {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		in := a.win.PollInput()
		if in.Quit {
			return nil
		}
		a.applyInput(in, dt)

		a.renderFrame(dt)

		if in.Screenshot {
			path := fmt.Sprintf("screenshot_%d.tga", now.Unix())
			if err := a.fb.SaveTGA(path); err != nil {
				slog.Error("screenshot failed", "error", err)
			} else {
				slog.Info("screenshot saved", "path", path)
			}
		}

		if err := a.win.Present(a.fb); err != nil {
			return err
		}

		frameCount++
		if since := now.Sub(fpsTimer); since >= time.Second {
			fps := float64(frameCount) / since.Seconds()
			a.win.SetTitle(fmt.Sprintf("softrender - %.1f fps", fps))
			frameCount = 0
			fpsTimer = now
		}
	}
}

// applyInput moves the camera along its basis from held keys and turns it
// from relative mouse motion.
func (a *App) applyInput(in window.Input, dt float32) {
	cam := a.scene.Camera

	var forward, right, up float32
	if in.Forward {
		forward += moveSpeed * dt
	}
	if in.Backward {
		forward -= moveSpeed * dt
	}
	if in.Right {
		right += moveSpeed * dt
	}
	if in.Left {
		right -= moveSpeed * dt
	}
	if in.Up {
		up += moveSpeed * dt
	}
	if in.Down {
		up -= moveSpeed * dt
	}
	if forward != 0 || right != 0 || up != 0 {
		cam.Move(forward, right, up)
	}

	if in.MouseDX != 0 || in.MouseDY != 0 {
		cam.Rotate(-in.MouseDX*mouseSensitivity, -in.MouseDY*mouseSensitivity)
	}
}
