package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
)

// KeyMapper translates Bubble Tea key messages to engine input.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKeyToAction translates a key to a held movement or camera action.
// Terminals deliver presses without releases, so the model holds each
// mapped action down until the next simulated frame.
func (km *KeyMapper) MapKeyToAction(msg tea.KeyMsg) core.Action {
	switch msg.String() {
	case "w":
		return core.ActionMoveUp
	case "s":
		return core.ActionMoveDown
	case "a":
		return core.ActionMoveLeft
	case "d":
		return core.ActionMoveRight
	case "up":
		return core.ActionCameraUp
	case "down":
		return core.ActionCameraDown
	case "left":
		return core.ActionCameraLeft
	case "right":
		return core.ActionCameraRight
	}
	return core.ActionNone
}

// EdgeKey is a single-shot key binding.
type EdgeKey int

const (
	EdgeNone EdgeKey = iota
	EdgeQuit
	EdgeConsoleToggle
	EdgeSave
	EdgeLoad
	EdgeSwitchScene
	EdgeZoomIn
	EdgeZoomOut
)

// MapKeyToEdge translates a key to a single-shot action.
func (km *KeyMapper) MapKeyToEdge(msg tea.KeyMsg) EdgeKey {
	switch msg.String() {
	case "ctrl+c", "q":
		return EdgeQuit
	case "`", "tab":
		return EdgeConsoleToggle
	case "f5":
		return EdgeSave
	case "f9":
		return EdgeLoad
	case "f2":
		return EdgeSwitchScene
	case "+", "=":
		return EdgeZoomIn
	case "-", "_":
		return EdgeZoomOut
	}
	return EdgeNone
}
