package config

import (
	_ "embed"
)

//go:embed defaults/engine.yaml
var defaultEngineYAML []byte

// DefaultEngineConfig returns the hardcoded engine defaults: 60 ticks per
// second, a 250 ms frame clamp, at most 5 catch-up ticks per frame.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Loop: LoopConfig{
			TicksPerSecond:   60,
			MaxFrameDeltaMs:  250,
			MaxTicksPerFrame: 5,
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
		},
		Console: ConsoleConfig{
			Enabled: true,
			Port:    46001,
		},
		Content: ContentConfig{
			Root: ".",
		},
		Stats: StatsConfig{
			Enabled: true,
		},
	}
}
