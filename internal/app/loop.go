package app

import (
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/remote"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/scene"
)

var loopLog = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "loop",
})

// metricsInterval paces the periodic loop health log line.
const metricsInterval = 10 * time.Second

// FrameResult reports what one frame did.
type FrameResult struct {
	TicksRun       int
	Quit           bool
	ConsoleReplies []string
	ConsoleCleared bool
}

// Loop owns the fixed-step accumulator. The host (TUI or headless driver)
// calls Advance once per rendered frame with the elapsed wall time; the
// loop converts that into zero or more fixed ticks and handles console
// traffic between frames.
type Loop struct {
	machine *scene.Machine
	console *Console
	pump    remote.LinePump

	fixedDtSeconds   float32
	tickDuration     time.Duration
	maxFrameDelta    time.Duration
	maxTicksPerFrame int

	accumulator time.Duration
	totalTicks  uint64

	lastMetrics      time.Time
	ticksAtMetrics   uint64
	framesAtMetrics  uint64
	totalFrames      uint64
	slowFrameDropped bool
}

// LoopOptions fixes the loop timing.
type LoopOptions struct {
	TicksPerSecond   int
	MaxFrameDelta    time.Duration
	MaxTicksPerFrame int
}

// NewLoop builds a loop over a machine, console and console transport.
// Pass a remote.NullLinePump when the console endpoint is disabled.
func NewLoop(machine *scene.Machine, console *Console, pump remote.LinePump, opts LoopOptions) *Loop {
	if opts.TicksPerSecond <= 0 {
		opts.TicksPerSecond = 60
	}
	if opts.MaxFrameDelta <= 0 {
		opts.MaxFrameDelta = 250 * time.Millisecond
	}
	if opts.MaxTicksPerFrame <= 0 {
		opts.MaxTicksPerFrame = 5
	}
	return &Loop{
		machine:          machine,
		console:          console,
		pump:             pump,
		fixedDtSeconds:   1.0 / float32(opts.TicksPerSecond),
		tickDuration:     time.Second / time.Duration(opts.TicksPerSecond),
		maxFrameDelta:    opts.MaxFrameDelta,
		maxTicksPerFrame: opts.MaxTicksPerFrame,
	}
}

// FixedDtSeconds returns the fixed tick length.
func (l *Loop) FixedDtSeconds() float32 { return l.fixedDtSeconds }

// TotalTicks returns the number of ticks run since construction.
func (l *Loop) TotalTicks() uint64 { return l.totalTicks }

// Advance processes one frame: console lines first, then as many fixed
// ticks as the accumulated time allows, capped per frame. Edge-triggered
// input (clicks, save/load, zoom steps) feeds only the first tick of the
// frame; held actions repeat.
func (l *Loop) Advance(frameDelta time.Duration, input core.InputSnapshot) FrameResult {
	var result FrameResult

	if l.pump.TakeDisconnectResetRequested() {
		l.machine.HardResetTo(l.machine.ActiveKey())
	}
	for _, line := range l.pump.PollLines() {
		replies, action := l.console.Execute(line)
		result.ConsoleReplies = append(result.ConsoleReplies, replies...)
		switch action {
		case ConsoleActionQuit:
			result.Quit = true
		case ConsoleActionClear:
			result.ConsoleCleared = true
		}
	}
	if len(result.ConsoleReplies) > 0 {
		l.pump.SendOutputLines(result.ConsoleReplies)
	}

	if frameDelta < 0 {
		frameDelta = 0
	}
	if frameDelta > l.maxFrameDelta {
		frameDelta = l.maxFrameDelta
	}
	l.accumulator += frameDelta

	tickInput := input
	for l.accumulator >= l.tickDuration && result.TicksRun < l.maxTicksPerFrame {
		l.accumulator -= l.tickDuration
		update := l.machine.UpdateActive(l.fixedDtSeconds, tickInput)
		l.totalTicks++
		result.TicksRun++
		tickInput = clearInputEdges(tickInput)
		if update.Command == scene.CommandSwitchTo {
			l.machine.SwitchTo(update.Target)
		}
	}
	// A stall longer than the per-frame tick budget drops the remainder
	// instead of spiraling into catch-up.
	if result.TicksRun == l.maxTicksPerFrame && l.accumulator >= l.tickDuration {
		l.accumulator = 0
		l.slowFrameDropped = true
	}

	l.totalFrames++
	l.logMetrics()

	if input.QuitRequested {
		result.Quit = true
	}
	return result
}

// logMetrics emits one loop health line per interval.
func (l *Loop) logMetrics() {
	now := time.Now()
	if l.lastMetrics.IsZero() {
		l.lastMetrics = now
		return
	}
	elapsed := now.Sub(l.lastMetrics)
	if elapsed < metricsInterval {
		return
	}
	secs := elapsed.Seconds()
	loopLog.Info("loop health",
		"tps", float64(l.totalTicks-l.ticksAtMetrics)/secs,
		"fps", float64(l.totalFrames-l.framesAtMetrics)/secs,
		"entities", l.machine.ActiveWorld().EntityCount(),
		"backlog_dropped", l.slowFrameDropped,
	)
	l.lastMetrics = now
	l.ticksAtMetrics = l.totalTicks
	l.framesAtMetrics = l.totalFrames
	l.slowFrameDropped = false
}

// clearInputEdges strips the single-shot parts of a snapshot so a frame
// that runs several catch-up ticks does not replay a click per tick.
func clearInputEdges(input core.InputSnapshot) core.InputSnapshot {
	input.LeftClickPressed = false
	input.RightClickPressed = false
	input.SavePressed = false
	input.LoadPressed = false
	input.SwitchScenePressed = false
	input.ZoomSteps = 0
	return input
}
