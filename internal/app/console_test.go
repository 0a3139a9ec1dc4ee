package app

import (
	"strconv"
	"strings"
	"testing"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/content"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/gameplay"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/scene"
)

func testDefs() *content.DefDatabase {
	return content.NewDefDatabase([]content.EntityDef{
		{
			DefName:    gameplay.PlayerDefName,
			Label:      "Player",
			Renderable: core.RenderableDesc{Kind: core.RenderablePlaceholder, DebugName: "player"},
			MoveSpeed:  5.0,
			Tags:       []string{"actor"},
		},
		{
			DefName:    gameplay.ResourcePileDefName,
			Label:      "Resource Pile",
			Renderable: core.RenderableDesc{Kind: core.RenderablePlaceholder, DebugName: "pile"},
			MoveSpeed:  content.DefaultMoveSpeed,
			Tags:       []string{"interactable", "resource_pile"},
		},
	})
}

func newTestMachine(t *testing.T) *scene.Machine {
	t.Helper()
	sceneA := gameplay.NewSceneState(gameplay.SceneConfig{Key: scene.KeyA, SwitchTarget: scene.KeyB})
	sceneB := gameplay.NewSceneState(gameplay.SceneConfig{
		Key:          scene.KeyB,
		SwitchTarget: scene.KeyA,
		SpawnOffset:  core.Vec2{X: 2, Y: 2},
	})
	machine := scene.NewMachine(scene.KeyA, sceneA, sceneB)
	machine.SetDefDatabaseForAll(testDefs())
	machine.LoadActive()
	return machine
}

func TestConsoleUnknownCommand(t *testing.T) {
	console := NewConsole(newTestMachine(t))

	replies, action := console.Execute("bogus")
	if action != ConsoleActionNone {
		t.Fatalf("action = %v, want none", action)
	}
	want := `error: unknown command "bogus". usage: help`
	if len(replies) != 1 || replies[0] != want {
		t.Fatalf("replies = %v, want [%s]", replies, want)
	}
}

func TestConsoleUsageErrors(t *testing.T) {
	console := NewConsole(newTestMachine(t))

	cases := []struct {
		line      string
		wantUsage string
	}{
		{"switch_scene", "switch_scene <a|b>"},
		{"switch_scene c", "switch_scene <a|b>"},
		{"spawn", "spawn <def_name> [x y]"},
		{"spawn proto.player one two", "spawn <def_name> [x y]"},
		{"spawn proto.unknown 0 0", "spawn <def_name> [x y]"},
		{"despawn", "despawn <entity_id>"},
		{"despawn abc", "despawn <entity_id>"},
		{"select 999", "select <entity_id>"},
		{"order.move 1", "order.move <x> <y>"},
		{"order.move nan nan", "order.move <x> <y>"},
		{"order.interact", "order.interact <entity_id>"},
		{"scenario.setup", "scenario.setup <scenario_id>"},
		{"scenario.setup unknown_scenario", "scenario.setup <scenario_id>"},
	}
	for _, tc := range cases {
		replies, action := console.Execute(tc.line)
		if action != ConsoleActionNone {
			t.Errorf("%q: action = %v, want none", tc.line, action)
		}
		if len(replies) != 1 {
			t.Errorf("%q: replies = %v, want a single error line", tc.line, replies)
			continue
		}
		if !strings.HasPrefix(replies[0], "error: ") {
			t.Errorf("%q: reply = %q, want error prefix", tc.line, replies[0])
		}
		if !strings.HasSuffix(replies[0], ". usage: "+tc.wantUsage) {
			t.Errorf("%q: reply = %q, want usage suffix %q", tc.line, replies[0], tc.wantUsage)
		}
	}
}

func TestConsoleEchoQuitClear(t *testing.T) {
	console := NewConsole(newTestMachine(t))

	replies, action := console.Execute("echo hello world")
	if action != ConsoleActionNone || len(replies) != 1 || replies[0] != "hello world" {
		t.Fatalf("echo: replies = %v action = %v", replies, action)
	}

	replies, action = console.Execute("quit")
	if action != ConsoleActionQuit {
		t.Fatalf("quit: action = %v, want quit", action)
	}
	if len(replies) != 1 || replies[0] != "bye" {
		t.Fatalf("quit: replies = %v", replies)
	}

	replies, action = console.Execute("clear")
	if action != ConsoleActionClear || len(replies) != 0 {
		t.Fatalf("clear: replies = %v action = %v", replies, action)
	}

	replies, action = console.Execute("   ")
	if action != ConsoleActionNone || replies != nil {
		t.Fatalf("blank: replies = %v action = %v", replies, action)
	}
}

func TestConsoleSpawnSelectOrderFlow(t *testing.T) {
	machine := newTestMachine(t)
	console := NewConsole(machine)

	replies, _ := console.Execute("spawn proto.resource_pile 3 0.5")
	if len(replies) != 1 || !strings.HasPrefix(replies[0], "spawned proto.resource_pile id:") {
		t.Fatalf("spawn replies = %v", replies)
	}

	// The loaded scene spawned the player first; it always has the
	// lowest live id.
	playerID := lowestEntityID(t, machine)
	replies, _ = console.Execute("select " + playerID)
	if len(replies) != 1 || replies[0] != "selected "+playerID {
		t.Fatalf("select replies = %v", replies)
	}

	replies, _ = console.Execute("order.move 2.5 0.5")
	if len(replies) != 1 || !strings.HasPrefix(replies[0], "ordered "+playerID+" to (2.50,0.50)") {
		t.Fatalf("order.move replies = %v", replies)
	}
}

func TestConsoleDumpAndDigestShapes(t *testing.T) {
	console := NewConsole(newTestMachine(t))

	replies, _ := console.Execute("dump.state")
	if len(replies) == 0 || !strings.HasPrefix(replies[0], "dump.state v1 | ") {
		t.Fatalf("dump.state replies = %v", replies)
	}

	replies, _ = console.Execute("dump.ai")
	if len(replies) == 0 || !strings.HasPrefix(replies[0], "dump.ai v1 | ") {
		t.Fatalf("dump.ai replies = %v", replies)
	}

	replies, _ = console.Execute("digest")
	if len(replies) != 1 || !strings.HasPrefix(replies[0], "digest v1 | tick:0 | xxh64:") {
		t.Fatalf("digest replies = %v", replies)
	}
	hexPart := strings.TrimPrefix(replies[0], "digest v1 | tick:0 | xxh64:")
	if len(hexPart) != 16 {
		t.Fatalf("digest hex = %q, want 16 characters", hexPart)
	}
}

func TestConsoleSwitchScene(t *testing.T) {
	machine := newTestMachine(t)
	console := NewConsole(machine)

	replies, _ := console.Execute("switch_scene a")
	if len(replies) != 1 || replies[0] != "already on scene a" {
		t.Fatalf("replies = %v", replies)
	}

	replies, _ = console.Execute("switch_scene b")
	if len(replies) != 1 || replies[0] != "switched to scene b" {
		t.Fatalf("replies = %v", replies)
	}
	if machine.ActiveKey() != scene.KeyB {
		t.Fatalf("active = %s, want b", machine.ActiveKey())
	}
}

func lowestEntityID(t *testing.T, machine *scene.Machine) string {
	t.Helper()
	entities := machine.ActiveWorld().Entities()
	if len(entities) == 0 {
		t.Fatal("world has no entities")
	}
	return strconv.FormatUint(uint64(entities[0].ID), 10)
}
