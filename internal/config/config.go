// Package config provides YAML-based engine configuration loading with
// embedded defaults.
package config

// EngineConfig contains all tunable engine settings.
type EngineConfig struct {
	Loop    LoopConfig    `yaml:"loop"`
	Window  WindowConfig  `yaml:"window"`
	Console ConsoleConfig `yaml:"console"`
	Content ContentConfig `yaml:"content"`
	Stats   StatsConfig   `yaml:"stats"`
}

// LoopConfig defines the fixed-step simulation parameters.
type LoopConfig struct {
	TicksPerSecond   int `yaml:"ticks_per_second"`
	MaxFrameDeltaMs  int `yaml:"max_frame_delta_ms"`
	MaxTicksPerFrame int `yaml:"max_ticks_per_frame"`
}

// WindowConfig defines the logical window size fed to picking math.
type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ConsoleConfig defines the developer console endpoint.
type ConsoleConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// ContentConfig locates the content root (the directory holding assets/
// and cache/).
type ContentConfig struct {
	Root string `yaml:"root"`
}

// StatsConfig controls run statistics persistence.
type StatsConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// Normalize clamps out-of-range values back to their defaults so a partial
// or sloppy config file still yields a runnable engine.
func (c *EngineConfig) Normalize() {
	def := DefaultEngineConfig()
	if c.Loop.TicksPerSecond < 1 || c.Loop.TicksPerSecond > 240 {
		c.Loop.TicksPerSecond = def.Loop.TicksPerSecond
	}
	if c.Loop.MaxFrameDeltaMs < 1 {
		c.Loop.MaxFrameDeltaMs = def.Loop.MaxFrameDeltaMs
	}
	if c.Loop.MaxTicksPerFrame < 1 {
		c.Loop.MaxTicksPerFrame = def.Loop.MaxTicksPerFrame
	}
	if c.Window.Width < 1 {
		c.Window.Width = def.Window.Width
	}
	if c.Window.Height < 1 {
		c.Window.Height = def.Window.Height
	}
	if c.Console.Port < 1 || c.Console.Port > 65535 {
		c.Console.Port = def.Console.Port
	}
	if c.Content.Root == "" {
		c.Content.Root = def.Content.Root
	}
}
