package scene

import (
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/content"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
)

// Key identifies one of the two gameplay scenes.
type Key string

const (
	KeyA Key = "a"
	KeyB Key = "b"
)

// Command is a scene's request to the loop after an update.
type Command int

const (
	CommandNone Command = iota
	CommandSwitchTo
	CommandHardResetTo
)

// UpdateResult couples a command with its target scene.
type UpdateResult struct {
	Command Command
	Target  Key
}

// None is the common no-op result.
func None() UpdateResult { return UpdateResult{Command: CommandNone} }

// SwitchTo asks the loop to unload this scene and load another.
func SwitchTo(target Key) UpdateResult {
	return UpdateResult{Command: CommandSwitchTo, Target: target}
}

// DebugCommandKind tags the debug commands a scene can execute.
type DebugCommandKind int

const (
	DebugSpawn DebugCommandKind = iota
	DebugDespawn
	DebugSelect
	DebugOrderMove
	DebugOrderInteract
	DebugDumpState
	DebugDumpAI
	DebugDigest
	DebugScenarioSetup
)

// DebugCommand is a parsed console command routed to the active scene.
// Only the fields relevant to the kind are set.
type DebugCommand struct {
	Kind       DebugCommandKind
	DefName    string
	Position   *core.Vec2
	EntityID   EntityID
	Point      core.Vec2
	ScenarioID string
}

// DebugContext carries loop-side state a debug command may need.
type DebugContext struct {
	CursorWorld *core.Vec2
}

// DebugResult is the console reply for one debug command.
type DebugResult struct {
	Ok      bool
	Message string
}

// DebugOK builds a success reply.
func DebugOK(message string) DebugResult { return DebugResult{Ok: true, Message: message} }

// DebugErr builds a failure reply.
func DebugErr(message string) DebugResult { return DebugResult{Ok: false, Message: message} }

// Scene is the narrow capability the loop drives. A scene owns its gameplay
// state; the world is borrowed mutably for the duration of each call.
type Scene interface {
	Key() Key
	Load(world *World)
	Update(fixedDtSeconds float32, input core.InputSnapshot, world *World) UpdateResult
	Unload(world *World)
	ExecuteDebugCommand(cmd DebugCommand, ctx DebugContext, world *World) DebugResult
	DebugTitle(world *World) string
}

// Machine tracks the two scenes, their worlds, and which one is active.
type Machine struct {
	scenes map[Key]Scene
	worlds map[Key]*World
	active Key
}

// NewMachine builds a machine over the given scenes, starting on initial.
// Each scene owns a separate world.
func NewMachine(initial Key, scenes ...Scene) *Machine {
	m := &Machine{
		scenes: make(map[Key]Scene, len(scenes)),
		worlds: make(map[Key]*World, len(scenes)),
		active: initial,
	}
	for _, s := range scenes {
		m.scenes[s.Key()] = s
		m.worlds[s.Key()] = NewWorld()
	}
	return m
}

// SetDefDatabaseForAll attaches the shared def database to every world.
func (m *Machine) SetDefDatabaseForAll(db *content.DefDatabase) {
	for _, w := range m.worlds {
		w.SetDefDatabase(db)
	}
}

// ActiveKey returns the active scene key.
func (m *Machine) ActiveKey() Key { return m.active }

// ActiveScene returns the active scene.
func (m *Machine) ActiveScene() Scene { return m.scenes[m.active] }

// ActiveWorld returns the active scene's world.
func (m *Machine) ActiveWorld() *World { return m.worlds[m.active] }

// LoadActive loads the active scene into its world.
func (m *Machine) LoadActive() {
	m.scenes[m.active].Load(m.worlds[m.active])
	m.worlds[m.active].ApplyPending()
}

// UpdateActive runs one tick of the active scene.
func (m *Machine) UpdateActive(fixedDtSeconds float32, input core.InputSnapshot) UpdateResult {
	result := m.scenes[m.active].Update(fixedDtSeconds, input, m.worlds[m.active])
	m.worlds[m.active].ApplyPending()
	return result
}

// SwitchTo unloads the active scene and loads the target. Returns false when
// the target is unknown or already active.
func (m *Machine) SwitchTo(target Key) bool {
	if target == m.active {
		return false
	}
	next, ok := m.scenes[target]
	if !ok {
		return false
	}
	m.scenes[m.active].Unload(m.worlds[m.active])
	m.worlds[m.active].Clear()
	m.active = target
	next.Load(m.worlds[target])
	m.worlds[target].ApplyPending()
	return true
}

// HardResetTo unloads and reloads the target scene even when it is already
// active, dropping all of its state.
func (m *Machine) HardResetTo(target Key) bool {
	next, ok := m.scenes[target]
	if !ok {
		return false
	}
	m.scenes[m.active].Unload(m.worlds[m.active])
	m.worlds[m.active].Clear()
	m.active = target
	next.Load(m.worlds[target])
	m.worlds[target].ApplyPending()
	return true
}

// ExecuteDebugCommand routes a debug command to the active scene.
func (m *Machine) ExecuteDebugCommand(cmd DebugCommand, ctx DebugContext) DebugResult {
	result := m.scenes[m.active].ExecuteDebugCommand(cmd, ctx, m.worlds[m.active])
	m.worlds[m.active].ApplyPending()
	return result
}

// ShutdownAll unloads every scene.
func (m *Machine) ShutdownAll() {
	for key, s := range m.scenes {
		s.Unload(m.worlds[key])
		m.worlds[key].Clear()
	}
}
