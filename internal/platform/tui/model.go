package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/app"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
)

// Layout: one status row on top, one console row at the bottom, the world
// viewport in between.
const chromeRows = 2

// consoleLogLimit caps the retained console replies.
const consoleLogLimit = 200

var (
	styleStatusBar = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("245"))
	styleConsole   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)

// pendingInput accumulates key and mouse state between frames. Edges fire
// on the next frame only; held actions are re-armed by key repeat.
type pendingInput struct {
	actions     core.ActionStates
	cursorPx    *core.Vec2
	leftClick   bool
	rightClick  bool
	save        bool
	load        bool
	switchScene bool
	zoomSteps   int
}

// Model is the Bubble Tea model driving one engine runtime.
type Model struct {
	runtime *app.Runtime
	mapper  *KeyMapper

	framesPerSecond int
	lastFrame       time.Time

	width   int
	height  int
	pending pendingInput

	consoleOpen  bool
	consoleInput textinput.Model
	consoleLog   []string

	quitting bool
}

// NewModel creates a model over an already bootstrapped runtime.
func NewModel(runtime *app.Runtime, framesPerSecond int) Model {
	if framesPerSecond <= 0 {
		framesPerSecond = 30
	}
	input := textinput.New()
	input.Placeholder = "console (try: help)"
	input.Prompt = "> "
	input.CharLimit = 256
	return Model{
		runtime:         runtime,
		mapper:          NewKeyMapper(),
		framesPerSecond: framesPerSecond,
		consoleInput:    input,
	}
}

// Init starts the frame ticker.
func (m Model) Init() tea.Cmd {
	m.lastFrame = time.Now()
	return frameCmd(m.framesPerSecond)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case FrameMsg:
		return m.handleFrame(time.Time(msg))
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.consoleOpen {
		return m.handleConsoleKey(msg)
	}

	switch m.mapper.MapKeyToEdge(msg) {
	case EdgeQuit:
		m.quitting = true
		return m, tea.Quit
	case EdgeConsoleToggle:
		m.consoleOpen = true
		m.consoleInput.Focus()
		return m, textinput.Blink
	case EdgeSave:
		m.pending.save = true
		return m, nil
	case EdgeLoad:
		m.pending.load = true
		return m, nil
	case EdgeSwitchScene:
		m.pending.switchScene = true
		return m, nil
	case EdgeZoomIn:
		m.pending.zoomSteps++
		return m, nil
	case EdgeZoomOut:
		m.pending.zoomSteps--
		return m, nil
	}

	if action := m.mapper.MapKeyToAction(msg); action != core.ActionNone {
		m.pending.actions.Set(action, true)
	}
	return m, nil
}

func (m Model) handleConsoleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "tab":
		m.consoleOpen = false
		m.consoleInput.Blur()
		return m, nil
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "enter":
		line := m.consoleInput.Value()
		m.consoleInput.SetValue("")
		return m.executeConsoleLine(line)
	}
	var cmd tea.Cmd
	m.consoleInput, cmd = m.consoleInput.Update(msg)
	return m, cmd
}

func (m Model) executeConsoleLine(line string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(line) != "" {
		m.appendConsoleLog("> " + line)
	}
	replies, action := m.runtime.Console.Execute(line)
	m.appendConsoleLog(replies...)
	switch action {
	case app.ConsoleActionQuit:
		m.quitting = true
		return m, tea.Quit
	case app.ConsoleActionClear:
		m.consoleLog = nil
	}
	return m, nil
}

func (m *Model) appendConsoleLog(lines ...string) {
	m.consoleLog = append(m.consoleLog, lines...)
	if len(m.consoleLog) > consoleLogLimit {
		m.consoleLog = m.consoleLog[len(m.consoleLog)-consoleLogLimit:]
	}
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	px := m.cellToPixel(msg.X, msg.Y)
	if px == nil {
		return m, nil
	}
	m.pending.cursorPx = px
	if msg.Action == tea.MouseActionPress {
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.pending.leftClick = true
		case tea.MouseButtonRight:
			m.pending.rightClick = true
		case tea.MouseButtonWheelUp:
			m.pending.zoomSteps++
		case tea.MouseButtonWheelDown:
			m.pending.zoomSteps--
		}
	}
	return m, nil
}

// cellToPixel maps a terminal cell inside the viewport to the camera pixel
// space the simulation picks in. Returns nil outside the viewport.
func (m Model) cellToPixel(cellX, cellY int) *core.Vec2 {
	cols, rows := m.viewportSize()
	vy := cellY - 1 // status row sits above the viewport
	if cellX < 0 || cellX >= cols || vy < 0 || vy >= rows {
		return nil
	}
	return &core.Vec2{
		X: (float32(cellX) + 0.5) * cellPxX,
		Y: (float32(vy) + 0.5) * cellPxY,
	}
}

func (m Model) viewportSize() (cols, rows int) {
	cols = m.width
	rows = m.height - chromeRows
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

func (m Model) handleFrame(now time.Time) (tea.Model, tea.Cmd) {
	if m.lastFrame.IsZero() {
		m.lastFrame = now
	}
	delta := now.Sub(m.lastFrame)
	m.lastFrame = now

	cols, rows := m.viewportSize()
	snapshot := core.InputSnapshot{
		Actions:            m.pending.actions,
		CursorPx:           m.pending.cursorPx,
		LeftClickPressed:   m.pending.leftClick,
		RightClickPressed:  m.pending.rightClick,
		SavePressed:        m.pending.save,
		LoadPressed:        m.pending.load,
		SwitchScenePressed: m.pending.switchScene,
		ZoomSteps:          m.pending.zoomSteps,
		WindowWidth:        uint32(float32(cols) * cellPxX),
		WindowHeight:       uint32(float32(rows) * cellPxY),
	}

	result := m.runtime.Loop.Advance(delta, snapshot)
	if result.ConsoleCleared {
		m.consoleLog = nil
	}
	m.appendConsoleLog(result.ConsoleReplies...)

	// Keys have no release events; holds last exactly one frame.
	m.pending = pendingInput{cursorPx: m.pending.cursorPx}

	if result.Quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, frameCmd(m.framesPerSecond)
}

// View renders the status bar, world viewport and console row.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}
	cols, rows := m.viewportSize()

	var sb strings.Builder
	sb.WriteString(styleStatusBar.Width(cols).Render(m.statusLine()))
	sb.WriteByte('\n')
	sb.WriteString(RenderWorld(m.runtime.Machine.ActiveWorld(), cols, rows))
	sb.WriteByte('\n')
	if m.consoleOpen {
		sb.WriteString(m.consoleInput.View())
	} else {
		sb.WriteString(styleConsole.Render(m.lastConsoleLine()))
	}
	return sb.String()
}

func (m Model) statusLine() string {
	state := m.runtime.ActiveSceneState()
	return fmt.Sprintf(" scene %s | tick %d | resources %d | wasd move, arrows pan, tab console, q quit",
		m.runtime.Machine.ActiveKey(), state.TickIndex(), state.ResourceCount())
}

func (m Model) lastConsoleLine() string {
	if len(m.consoleLog) == 0 {
		return "tab opens the console"
	}
	return m.consoleLog[len(m.consoleLog)-1]
}

// Run starts the Bubble Tea program over the given runtime and blocks
// until the session ends.
func Run(runtime *app.Runtime, framesPerSecond int) error {
	p := tea.NewProgram(
		NewModel(runtime, framesPerSecond),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
