package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/config"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/content"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/gameplay"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/remote"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/scene"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/storage"
)

// Version strings feed the content cache identity: bumping either
// invalidates every cached pack.
const (
	CompilerVersion = "0.3.0"
	GameVersion     = "0.1.0"
)

var appLog = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "app",
})

// BootstrapOptions tunes startup.
type BootstrapOptions struct {
	// ConfigPath is an explicit engine.yaml; empty uses the search order.
	ConfigPath string
	// ContentRoot overrides the configured app root when non-empty.
	ContentRoot string
	// TicksPerSecond overrides the configured tick rate when positive.
	TicksPerSecond int
	// DisableConsole skips the TCP console even when the config enables it.
	DisableConsole bool
	// DisableStats skips the run statistics store.
	DisableStats bool
}

// Runtime is the assembled engine: content, scenes, loop, console
// transport and stats store.
type Runtime struct {
	Config  config.EngineConfig
	Paths   content.AppPaths
	Defs    *content.DefDatabase
	Machine *scene.Machine
	Console *Console
	Pump    remote.LinePump
	Loop    *Loop
	Store   *storage.Store

	// ContentStatus is "cached", "compiled" or "mixed" for this start.
	ContentStatus string

	scenes    map[scene.Key]*gameplay.SceneState
	startedAt time.Time
}

// Bootstrap loads configuration, compiles or loads content, builds both
// scenes and wires the loop. The returned runtime is ready to Advance.
func Bootstrap(opts BootstrapOptions) (*Runtime, error) {
	cfg, err := config.LoadEngine(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.TicksPerSecond > 0 {
		cfg.Loop.TicksPerSecond = opts.TicksPerSecond
		cfg.Normalize()
	}

	root := cfg.Content.Root
	if opts.ContentRoot != "" {
		root = opts.ContentRoot
	}
	paths, err := content.ResolveAppPaths(root)
	if err != nil {
		return nil, err
	}
	request := content.PlanRequest{
		EnabledMods:     content.ParseEnabledModsEnv(),
		CompilerVersion: CompilerVersion,
		GameVersion:     GameVersion,
	}
	plan, err := content.BuildPlan(paths, request)
	if err != nil {
		return nil, err
	}
	defs, err := content.BuildOrLoadDefDatabase(paths, request)
	if err != nil {
		return nil, err
	}

	sceneA := gameplay.NewSceneState(gameplay.SceneConfig{
		Key:          scene.KeyA,
		SwitchTarget: scene.KeyB,
		Paths:        paths,
	})
	sceneB := gameplay.NewSceneState(gameplay.SceneConfig{
		Key:          scene.KeyB,
		SwitchTarget: scene.KeyA,
		SpawnOffset:  core.Vec2{X: 2, Y: 2},
		Paths:        paths,
	})
	machine := scene.NewMachine(scene.KeyA, sceneA, sceneB)
	machine.SetDefDatabaseForAll(defs)
	machine.LoadActive()

	console := NewConsole(machine)

	var pump remote.LinePump = remote.NullLinePump{}
	if cfg.Console.Enabled && !opts.DisableConsole {
		port := cfg.Console.Port
		if os.Getenv(remote.PortEnvVar) != "" {
			port = remote.ResolvePort()
		}
		tcpPump, err := remote.ListenTCP(port)
		if err != nil {
			appLog.Warn("console disabled", "err", err)
		} else {
			pump = tcpPump
		}
	}

	var store *storage.Store
	if cfg.Stats.Enabled && !opts.DisableStats {
		dbPath := cfg.Stats.DBPath
		if dbPath == "" {
			dbPath = filepath.Join(paths.CacheDir, "run_stats.db")
		}
		store, err = storage.Open(dbPath)
		if err != nil {
			appLog.Warn("run stats disabled", "err", err)
			store = nil
		}
	}

	loop := NewLoop(machine, console, pump, LoopOptions{
		TicksPerSecond:   cfg.Loop.TicksPerSecond,
		MaxFrameDelta:    time.Duration(cfg.Loop.MaxFrameDeltaMs) * time.Millisecond,
		MaxTicksPerFrame: cfg.Loop.MaxTicksPerFrame,
	})

	return &Runtime{
		Config:        cfg,
		Paths:         paths,
		Defs:          defs,
		Machine:       machine,
		Console:       console,
		Pump:          pump,
		Loop:          loop,
		Store:         store,
		ContentStatus: plan.Summary.StatusLabel(),
		scenes:        map[scene.Key]*gameplay.SceneState{scene.KeyA: sceneA, scene.KeyB: sceneB},
		startedAt:     time.Now(),
	}, nil
}

// ActiveSceneState returns the gameplay state behind the active scene.
func (r *Runtime) ActiveSceneState() *gameplay.SceneState {
	return r.scenes[r.Machine.ActiveKey()]
}

// RecordRun persists a summary row for this session, if stats are enabled.
func (r *Runtime) RecordRun(endReason string) {
	if r.Store == nil {
		return
	}
	state := r.ActiveSceneState()
	record := storage.RunRecord{
		SceneKey:       string(r.Machine.ActiveKey()),
		Ticks:          int64(r.Loop.TotalTicks()),
		DurationSecs:   time.Since(r.startedAt).Seconds(),
		ResourceCount:  int(state.ResourceCount()),
		FinalDigestHex: fmt.Sprintf("%016x", state.WorldDigest(r.Machine.ActiveWorld())),
		ContentStatus:  r.ContentStatus,
		EndReason:      endReason,
	}
	if _, err := r.Store.SaveRun(record); err != nil {
		appLog.Error("failed to record run", "err", err)
	}
}

// Close releases the console listener and the stats store.
func (r *Runtime) Close() {
	r.Machine.ShutdownAll()
	if err := r.Pump.Close(); err != nil {
		appLog.Warn("console close", "err", err)
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			appLog.Warn("stats close", "err", err)
		}
	}
}
