package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagScene    = flag.String("scene", "", "Path to scene file")
	flagHeadless = flag.Bool("headless", false, "Render without a window and save TGA output")
	flagFrames   = flag.Int("frames", 0, "Headless: number of frames to render")
	flagOutput   = flag.String("output", "", "Headless: TGA output path")
	flagWorkers  = flag.Int("workers", 0, "Number of rasterizer worker threads (0 = auto)")
	flagWidth    = flag.Int("width", 0, "Framebuffer width")
	flagHeight   = flag.Int("height", 0, "Framebuffer height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagScene != "" {
		cfg.Scene.Path = *flagScene
	}
	if *flagHeadless {
		cfg.Graphics.Headless = true
	}
	if *flagFrames > 0 {
		cfg.Renderer.FrameCount = *flagFrames
	}
	if *flagOutput != "" {
		cfg.Renderer.Output = *flagOutput
	}
	if *flagWorkers > 0 {
		cfg.Renderer.Workers = *flagWorkers
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}
