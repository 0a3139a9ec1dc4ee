// Package app wires the engine together: the fixed-step loop, the console
// command processor and the startup bootstrap.
package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/scene"
)

// ConsoleAction is a side effect a command requests from its host (the
// loop or the TUI front end).
type ConsoleAction int

const (
	ConsoleActionNone ConsoleAction = iota
	// ConsoleActionQuit asks the host to shut down.
	ConsoleActionQuit
	// ConsoleActionClear asks the host to clear its console display.
	ConsoleActionClear
)

type consoleCommand struct {
	name    string
	usage   string
	summary string
	run     func(c *Console, args []string) ([]string, ConsoleAction)
}

// Console parses and executes developer console lines against the scene
// machine. Replies are plain lines; errors follow the fixed
// "error: <reason>. usage: <usage>" shape so client tooling can parse
// them.
type Console struct {
	machine  *scene.Machine
	commands []consoleCommand
	byName   map[string]*consoleCommand
}

// NewConsole builds the command table over a machine.
func NewConsole(machine *scene.Machine) *Console {
	c := &Console{machine: machine}
	c.commands = []consoleCommand{
		{"help", "help", "list commands", (*Console).cmdHelp},
		{"clear", "clear", "clear the console display", (*Console).cmdClear},
		{"echo", "echo <text>", "echo text back", (*Console).cmdEcho},
		{"quit", "quit", "shut the engine down", (*Console).cmdQuit},
		{"reset_scene", "reset_scene", "hard-reset the active scene", (*Console).cmdResetScene},
		{"switch_scene", "switch_scene <a|b>", "switch to the given scene", (*Console).cmdSwitchScene},
		{"spawn", "spawn <def_name> [x y]", "spawn an archetype", (*Console).cmdSpawn},
		{"despawn", "despawn <entity_id>", "despawn an entity", (*Console).cmdDespawn},
		{"select", "select <entity_id>", "select an actor", (*Console).cmdSelect},
		{"order.move", "order.move <x> <y>", "order the selected actor to move", (*Console).cmdOrderMove},
		{"order.interact", "order.interact <entity_id>", "order the selected actor to use a target", (*Console).cmdOrderInteract},
		{"dump.state", "dump.state", "dump the world snapshot", (*Console).cmdDumpState},
		{"dump.ai", "dump.ai", "dump the AI agents", (*Console).cmdDumpAI},
		{"digest", "digest", "print the world digest", (*Console).cmdDigest},
		{"scenario.setup", "scenario.setup <scenario_id>", "load a reproducible scenario", (*Console).cmdScenarioSetup},
	}
	c.byName = make(map[string]*consoleCommand, len(c.commands))
	for i := range c.commands {
		c.byName[c.commands[i].name] = &c.commands[i]
	}
	return c
}

// Execute runs one console line. Blank lines reply with nothing.
func (c *Console) Execute(line string) ([]string, ConsoleAction) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, ConsoleActionNone
	}
	cmd, ok := c.byName[fields[0]]
	if !ok {
		return []string{fmt.Sprintf("error: unknown command %q. usage: help", fields[0])}, ConsoleActionNone
	}
	return cmd.run(c, fields[1:])
}

func commandError(reason, usage string) []string {
	return []string{fmt.Sprintf("error: %s. usage: %s", reason, usage)}
}

func (c *Console) cmdHelp(args []string) ([]string, ConsoleAction) {
	lines := make([]string, 0, len(c.commands))
	for _, cmd := range c.commands {
		lines = append(lines, fmt.Sprintf("%-30s %s", cmd.usage, cmd.summary))
	}
	return lines, ConsoleActionNone
}

func (c *Console) cmdClear(args []string) ([]string, ConsoleAction) {
	return nil, ConsoleActionClear
}

func (c *Console) cmdEcho(args []string) ([]string, ConsoleAction) {
	return []string{strings.Join(args, " ")}, ConsoleActionNone
}

func (c *Console) cmdQuit(args []string) ([]string, ConsoleAction) {
	return []string{"bye"}, ConsoleActionQuit
}

func (c *Console) cmdResetScene(args []string) ([]string, ConsoleAction) {
	key := c.machine.ActiveKey()
	c.machine.HardResetTo(key)
	return []string{fmt.Sprintf("scene %s reset", key)}, ConsoleActionNone
}

func (c *Console) cmdSwitchScene(args []string) ([]string, ConsoleAction) {
	usage := c.byName["switch_scene"].usage
	if len(args) != 1 {
		return commandError("expected one scene key", usage), ConsoleActionNone
	}
	target := scene.Key(args[0])
	if target != scene.KeyA && target != scene.KeyB {
		return commandError(fmt.Sprintf("unknown scene %q", args[0]), usage), ConsoleActionNone
	}
	if target == c.machine.ActiveKey() {
		return []string{fmt.Sprintf("already on scene %s", target)}, ConsoleActionNone
	}
	c.machine.SwitchTo(target)
	return []string{fmt.Sprintf("switched to scene %s", target)}, ConsoleActionNone
}

func (c *Console) cmdSpawn(args []string) ([]string, ConsoleAction) {
	usage := c.byName["spawn"].usage
	if len(args) != 1 && len(args) != 3 {
		return commandError("expected a def name and optional coordinates", usage), ConsoleActionNone
	}
	cmd := scene.DebugCommand{Kind: scene.DebugSpawn, DefName: args[0]}
	if len(args) == 3 {
		point, err := parsePoint(args[1], args[2])
		if err != nil {
			return commandError(err.Error(), usage), ConsoleActionNone
		}
		cmd.Position = &point
	}
	return c.runDebugCommand(cmd, usage)
}

func (c *Console) cmdDespawn(args []string) ([]string, ConsoleAction) {
	usage := c.byName["despawn"].usage
	id, err := parseEntityID(args)
	if err != nil {
		return commandError(err.Error(), usage), ConsoleActionNone
	}
	return c.runDebugCommand(scene.DebugCommand{Kind: scene.DebugDespawn, EntityID: id}, usage)
}

func (c *Console) cmdSelect(args []string) ([]string, ConsoleAction) {
	usage := c.byName["select"].usage
	id, err := parseEntityID(args)
	if err != nil {
		return commandError(err.Error(), usage), ConsoleActionNone
	}
	return c.runDebugCommand(scene.DebugCommand{Kind: scene.DebugSelect, EntityID: id}, usage)
}

func (c *Console) cmdOrderMove(args []string) ([]string, ConsoleAction) {
	usage := c.byName["order.move"].usage
	if len(args) != 2 {
		return commandError("expected two coordinates", usage), ConsoleActionNone
	}
	point, err := parsePoint(args[0], args[1])
	if err != nil {
		return commandError(err.Error(), usage), ConsoleActionNone
	}
	return c.runDebugCommand(scene.DebugCommand{Kind: scene.DebugOrderMove, Point: point}, usage)
}

func (c *Console) cmdOrderInteract(args []string) ([]string, ConsoleAction) {
	usage := c.byName["order.interact"].usage
	id, err := parseEntityID(args)
	if err != nil {
		return commandError(err.Error(), usage), ConsoleActionNone
	}
	return c.runDebugCommand(scene.DebugCommand{Kind: scene.DebugOrderInteract, EntityID: id}, usage)
}

func (c *Console) cmdDumpState(args []string) ([]string, ConsoleAction) {
	return c.runDebugCommand(scene.DebugCommand{Kind: scene.DebugDumpState}, "dump.state")
}

func (c *Console) cmdDumpAI(args []string) ([]string, ConsoleAction) {
	return c.runDebugCommand(scene.DebugCommand{Kind: scene.DebugDumpAI}, "dump.ai")
}

func (c *Console) cmdDigest(args []string) ([]string, ConsoleAction) {
	return c.runDebugCommand(scene.DebugCommand{Kind: scene.DebugDigest}, "digest")
}

func (c *Console) cmdScenarioSetup(args []string) ([]string, ConsoleAction) {
	usage := c.byName["scenario.setup"].usage
	if len(args) != 1 {
		return commandError("expected a scenario id", usage), ConsoleActionNone
	}
	return c.runDebugCommand(scene.DebugCommand{Kind: scene.DebugScenarioSetup, ScenarioID: args[0]}, usage)
}

func (c *Console) runDebugCommand(cmd scene.DebugCommand, usage string) ([]string, ConsoleAction) {
	result := c.machine.ExecuteDebugCommand(cmd, scene.DebugContext{})
	if !result.Ok {
		return commandError(result.Message, usage), ConsoleActionNone
	}
	return strings.Split(result.Message, "\n"), ConsoleActionNone
}

func parseEntityID(args []string) (scene.EntityID, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one entity id")
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid entity id %q", args[0])
	}
	return scene.EntityID(id), nil
}

func parsePoint(xRaw, yRaw string) (core.Vec2, error) {
	x, errX := strconv.ParseFloat(xRaw, 32)
	y, errY := strconv.ParseFloat(yRaw, 32)
	if errX != nil || errY != nil {
		return core.Vec2{}, fmt.Errorf("invalid coordinates %q %q", xRaw, yRaw)
	}
	point := core.Vec2{X: float32(x), Y: float32(y)}
	if !point.IsFinite() {
		return core.Vec2{}, fmt.Errorf("coordinates must be finite")
	}
	return point, nil
}
