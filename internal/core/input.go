package core

import "math"

// Action represents a semantic input action, abstracted from physical key
// presses. Movement actions steer the player pawn, camera actions pan the
// view independently of the pawn.
type Action int

const (
	ActionNone Action = iota
	ActionMoveUp
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionCameraUp
	ActionCameraDown
	ActionCameraLeft
	ActionCameraRight
)

// actionCount is the number of mergeable down-state actions.
const actionCount = 9

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionMoveUp:
		return "MoveUp"
	case ActionMoveDown:
		return "MoveDown"
	case ActionMoveLeft:
		return "MoveLeft"
	case ActionMoveRight:
		return "MoveRight"
	case ActionCameraUp:
		return "CameraUp"
	case ActionCameraDown:
		return "CameraDown"
	case ActionCameraLeft:
		return "CameraLeft"
	case ActionCameraRight:
		return "CameraRight"
	default:
		return "Unknown"
	}
}

// ActionStates tracks which actions are currently held down. The fixed array
// keeps snapshots cheap to copy and iteration order deterministic.
type ActionStates struct {
	down [actionCount]bool
}

// Set marks an action as held or released.
func (s *ActionStates) Set(a Action, isDown bool) {
	if a <= ActionNone || int(a) >= actionCount {
		return
	}
	s.down[a] = isDown
}

// IsDown returns true if the given action is currently held.
func (s ActionStates) IsDown(a Action) bool {
	if a <= ActionNone || int(a) >= actionCount {
		return false
	}
	return s.down[a]
}

// Merge returns the union of two action states.
func (s ActionStates) Merge(o ActionStates) ActionStates {
	merged := s
	for i := range merged.down {
		if o.down[i] {
			merged.down[i] = true
		}
	}
	return merged
}

// InputSnapshot is the complete input state handed to the simulation for one
// fixed-dt tick. Click, save, load and switch fields are single-tick edges;
// the collector clears them once a snapshot is taken.
type InputSnapshot struct {
	QuitRequested      bool
	SwitchScenePressed bool
	Actions            ActionStates
	CursorPx           *Vec2
	LeftClickPressed   bool
	RightClickPressed  bool
	SavePressed        bool
	LoadPressed        bool
	ZoomSteps          int
	WindowWidth        uint32
	WindowHeight       uint32
}

// IsDown reports whether the given action is held in this snapshot.
func (s InputSnapshot) IsDown(a Action) bool {
	return s.Actions.IsDown(a)
}

// MovementDelta converts held movement actions into a world-space
// displacement for one tick, normalizing diagonals.
func MovementDelta(input InputSnapshot, fixedDtSeconds, speed float32) Vec2 {
	return axisDelta(input,
		ActionMoveRight, ActionMoveLeft, ActionMoveUp, ActionMoveDown,
		fixedDtSeconds, speed)
}

// CameraDelta converts held camera actions into a camera pan for one tick.
func CameraDelta(input InputSnapshot, fixedDtSeconds, speed float32) Vec2 {
	return axisDelta(input,
		ActionCameraRight, ActionCameraLeft, ActionCameraUp, ActionCameraDown,
		fixedDtSeconds, speed)
}

func axisDelta(input InputSnapshot, right, left, up, down Action, fixedDtSeconds, speed float32) Vec2 {
	var x, y float32
	if input.IsDown(right) {
		x += 1.0
	}
	if input.IsDown(left) {
		x -= 1.0
	}
	if input.IsDown(up) {
		y += 1.0
	}
	if input.IsDown(down) {
		y -= 1.0
	}

	dir := Vec2{X: x, Y: y}
	if lenSq := dir.LengthSq(); lenSq > 0 {
		inv := float32(1.0 / math.Sqrt(float64(lenSq)))
		dir = dir.Scale(inv)
	}
	return dir.Scale(speed * fixedDtSeconds)
}
