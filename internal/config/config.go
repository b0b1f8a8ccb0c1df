// Package config handles renderer configuration loading and management.
package config

// Config holds all renderer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Renderer RendererConfig `yaml:"renderer"`
	Scene    SceneConfig    `yaml:"scene"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	Headless   bool `yaml:"headless"` // render without a window
}

// RendererConfig holds rasterizer settings.
type RendererConfig struct {
	Workers    int    `yaml:"workers"`     // 0 = hardware parallelism - 1
	FrameCount int    `yaml:"frame_count"` // headless: frames to render before exit
	Output     string `yaml:"output"`      // headless: TGA output path
}

// SceneConfig holds scene file settings.
type SceneConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      800,
			Height:     600,
			Fullscreen: false,
			Headless:   false,
		},
		Renderer: RendererConfig{
			Workers:    0,
			FrameCount: 1,
			Output:     "frame.tga",
		},
		Scene: SceneConfig{
			Path: "scene.yaml",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
