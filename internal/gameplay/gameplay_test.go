package gameplay

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/content"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/scene"
)

const tickDt = float32(1.0 / 60.0)

const (
	testWindowWidth  = uint32(1280)
	testWindowHeight = uint32(720)
)

func u32ptr(v uint32) *uint32        { return &v }
func f32ptr(v float32) *float32      { return &v }
func vec2ptr(v core.Vec2) *core.Vec2 { return &v }

func testDefDatabase() *content.DefDatabase {
	return content.NewDefDatabase([]content.EntityDef{
		{
			DefName:    PlayerDefName,
			Label:      "Player",
			Renderable: core.RenderableDesc{Kind: core.RenderablePlaceholder, DebugName: "player"},
			MoveSpeed:  5.0,
			Tags:       []string{"actor"},
		},
		{
			DefName:    ResourcePileDefName,
			Label:      "Resource Pile",
			Renderable: core.RenderableDesc{Kind: core.RenderablePlaceholder, DebugName: "pile"},
			MoveSpeed:  content.DefaultMoveSpeed,
			Tags:       []string{"interactable", "resource_pile"},
		},
		{
			DefName:               MobDefName,
			Label:                 "Mob",
			Renderable:            core.RenderableDesc{Kind: core.RenderablePlaceholder, DebugName: "mob"},
			MoveSpeed:             3.0,
			HealthMax:             u32ptr(50),
			BaseDamage:            u32ptr(25),
			AggroRadius:           f32ptr(6.0),
			AttackRange:           f32ptr(0.9),
			AttackCooldownSeconds: f32ptr(1.0),
			Tags:                  []string{"actor", "hostile"},
		},
		{
			DefName:    TrainingDummyName,
			Label:      "Training Dummy",
			Renderable: core.RenderableDesc{Kind: core.RenderablePlaceholder, DebugName: "dummy"},
			MoveSpeed:  content.DefaultMoveSpeed,
			HealthMax:  u32ptr(100),
			Tags:       []string{"actor"},
		},
	})
}

func newTestScene(t *testing.T, key scene.Key) (*SceneState, *scene.World) {
	t.Helper()
	world := scene.NewWorld()
	world.SetDefDatabase(testDefDatabase())
	target := scene.KeyB
	if key == scene.KeyB {
		target = scene.KeyA
	}
	state := NewSceneState(SceneConfig{Key: key, SwitchTarget: target})
	state.Load(world)
	world.ApplyPending()
	return state, world
}

func tick(state *SceneState, world *scene.World, input core.InputSnapshot) scene.UpdateResult {
	input.WindowWidth = testWindowWidth
	input.WindowHeight = testWindowHeight
	result := state.Update(tickDt, input, world)
	world.ApplyPending()
	return result
}

func runIdleTicks(state *SceneState, world *scene.World, count int) {
	for i := 0; i < count; i++ {
		tick(state, world, core.InputSnapshot{})
	}
}

// cursorOver maps a world point to window pixels under the current camera.
func cursorOver(world *scene.World, point core.Vec2) *core.Vec2 {
	camera := world.Camera()
	scale := scene.PixelsPerUnit * camera.Zoom
	return vec2ptr(core.Vec2{
		X: (point.X-camera.Position.X)*scale + float32(testWindowWidth)/2,
		Y: float32(testWindowHeight)/2 - (point.Y-camera.Position.Y)*scale,
	})
}

func selectPlayer(t *testing.T, state *SceneState, world *scene.World) scene.EntityID {
	t.Helper()
	if state.playerID == nil {
		t.Fatal("no player spawned")
	}
	playerID := *state.playerID
	player := world.FindEntity(playerID)
	tick(state, world, core.InputSnapshot{
		LeftClickPressed: true,
		CursorPx:         cursorOver(world, player.Transform.Position),
	})
	if state.selected == nil || *state.selected != playerID {
		t.Fatalf("selected = %v, want player %d", state.selected, playerID)
	}
	return playerID
}

func TestLoadSpawnsStartingLayout(t *testing.T) {
	state, world := newTestScene(t, scene.KeyA)
	if world.EntityCount() != 2 {
		t.Fatalf("EntityCount = %d, want 2", world.EntityCount())
	}
	if state.playerID == nil {
		t.Fatal("player not registered")
	}
	player := world.FindEntity(*state.playerID)
	if !player.Actor || !player.Selectable {
		t.Errorf("player flags = actor:%v selectable:%v", player.Actor, player.Selectable)
	}
	if health, ok := state.healthByEntity[player.ID]; !ok || health.Current != DefaultMaxHealth {
		t.Errorf("player health = %+v, want full %d", health, DefaultMaxHealth)
	}
}

func TestRightClickMoveOrderArrivesExactly(t *testing.T) {
	state, world := newTestScene(t, scene.KeyA)
	playerID := selectPlayer(t, state, world)

	goal := core.Vec2{X: 1.5, Y: 0}
	tick(state, world, core.InputSnapshot{
		RightClickPressed: true,
		CursorPx:          cursorOver(world, goal),
	})
	player := world.FindEntity(playerID)
	if player.OrderState.Kind != scene.OrderMoveTo {
		t.Fatalf("order = %v, want move", player.OrderState.Kind)
	}
	if len(world.DebugMarkers()) == 0 {
		t.Error("expected an order marker")
	}

	runIdleTicks(state, world, 120)
	player = world.FindEntity(playerID)
	if player.OrderState.Kind != scene.OrderIdle {
		t.Fatalf("order = %v, want idle after arrival", player.OrderState.Kind)
	}
	if core.DistanceSq(player.Transform.Position, goal) > 1e-8 {
		t.Errorf("player at (%v,%v), want exactly %v",
			player.Transform.Position.X, player.Transform.Position.Y, goal)
	}
}

func TestScriptedSessionReplaysIdentically(t *testing.T) {
	script := func(state *SceneState, world *scene.World) []uint64 {
		digests := make([]uint64, 0, 64)
		record := func() { digests = append(digests, state.WorldDigest(world)) }

		player := world.FindEntity(*state.playerID)
		tick(state, world, core.InputSnapshot{
			LeftClickPressed: true,
			CursorPx:         cursorOver(world, player.Transform.Position),
		})
		record()
		tick(state, world, core.InputSnapshot{
			RightClickPressed: true,
			CursorPx:          cursorOver(world, core.Vec2{X: 1.5, Y: 0}),
		})
		record()
		for i := 0; i < 60; i++ {
			tick(state, world, core.InputSnapshot{})
			record()
		}
		return digests
	}

	stateA, worldA := newTestScene(t, scene.KeyA)
	stateB, worldB := newTestScene(t, scene.KeyA)
	first := script(stateA, worldA)
	second := script(stateB, worldB)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical scripted sessions produced different digest streams")
	}
}

func TestResourceGatheringGrantsAndExhaustsPile(t *testing.T) {
	state, world := newTestScene(t, scene.KeyA)
	playerID := selectPlayer(t, state, world)

	var pileID scene.EntityID
	for _, entity := range world.Entities() {
		if entity.Interactable != nil {
			pileID = entity.ID
		}
	}
	if pileID == 0 {
		t.Fatal("no pile spawned")
	}

	gather := func() {
		t.Helper()
		result := state.ExecuteDebugCommand(scene.DebugCommand{
			Kind:     scene.DebugOrderInteract,
			EntityID: pileID,
		}, scene.DebugContext{}, world)
		if !result.Ok {
			t.Fatalf("order.interact failed: %s", result.Message)
		}
		before := state.ResourceCount()
		for i := 0; i < 400 && state.ResourceCount() == before; i++ {
			tick(state, world, core.InputSnapshot{})
		}
		if state.ResourceCount() != before+1 {
			t.Fatalf("resource count = %d after gathering, want %d", state.ResourceCount(), before+1)
		}
	}

	gather()
	pile := world.FindEntity(pileID)
	if pile == nil || pile.Interactable.RemainingUses != ResourcePileStartingUses-1 {
		t.Fatalf("pile uses not decremented: %+v", pile)
	}
	player := world.FindEntity(playerID)
	if player.OrderState.Kind != scene.OrderIdle {
		t.Errorf("player order = %v after job, want idle", player.OrderState.Kind)
	}

	gather()
	gather()
	if state.ResourceCount() != 3 {
		t.Errorf("resource count = %d, want 3", state.ResourceCount())
	}
	if world.FindEntity(pileID) != nil {
		t.Error("exhausted pile should despawn")
	}
}

func TestCombatChaserScenario(t *testing.T) {
	state, world := newTestScene(t, scene.KeyA)
	result := state.ExecuteDebugCommand(scene.DebugCommand{
		Kind:       scene.DebugScenarioSetup,
		ScenarioID: ScenarioCombatChaser,
	}, scene.DebugContext{}, world)
	if !result.Ok {
		t.Fatalf("scenario setup failed: %s", result.Message)
	}
	if world.EntityCount() != 3 {
		t.Fatalf("EntityCount = %d, want 3", world.EntityCount())
	}
	if len(state.agents) != 1 {
		t.Fatalf("agents = %d, want 1 (chaser only)", len(state.agents))
	}

	damageEvents := 0
	healCount := 0
	for i := 0; i < 700; i++ {
		tick(state, world, core.InputSnapshot{})
		for _, event := range state.bus.CurrentTickEvents() {
			if event.Kind == EventEntityDamaged {
				damageEvents++
			}
		}
		if health := state.healthByEntity[*state.playerID]; health.Current == health.Max && damageEvents >= 4 {
			healCount++
		}
	}

	if damageEvents < 4 {
		t.Errorf("damage events = %d, want at least 4 over ~11s", damageEvents)
	}
	if state.playerID == nil || world.FindEntity(*state.playerID) == nil {
		t.Fatal("player must survive; lethal damage heals the player in place")
	}
	if healCount == 0 {
		t.Error("expected the player to be healed back to full at least once")
	}
}

func TestSlowStatusHalvesKeyboardMovement(t *testing.T) {
	measure := func(slowed bool) float32 {
		state, world := newTestScene(t, scene.KeyA)
		playerID := *state.playerID
		if slowed {
			state.addStatus(world, playerID, StatusSlow, 600)
		}
		var input core.InputSnapshot
		input.Actions.Set(core.ActionMoveRight, true)
		for i := 0; i < 30; i++ {
			tick(state, world, input)
		}
		return world.FindEntity(playerID).Transform.Position.X
	}

	full := measure(false)
	slowed := measure(true)
	if math.Abs(float64(full-2.5)) > 1e-3 {
		t.Errorf("full-speed travel = %v, want 2.5", full)
	}
	if math.Abs(float64(slowed-1.25)) > 1e-3 {
		t.Errorf("slowed travel = %v, want 1.25", slowed)
	}
}

func TestStatusExpiresAfterDuration(t *testing.T) {
	state, world := newTestScene(t, scene.KeyA)
	playerID := *state.playerID
	state.addStatus(world, playerID, StatusSlow, 0.1)

	runIdleTicks(state, world, 10)
	if statuses := state.statusesByEntity[playerID]; len(statuses) != 0 {
		t.Errorf("statuses = %v, want expired and removed", statuses)
	}
}

func TestSceneSwitchRequested(t *testing.T) {
	state, world := newTestScene(t, scene.KeyA)
	result := tick(state, world, core.InputSnapshot{SwitchScenePressed: true})
	if result.Command != scene.CommandSwitchTo || result.Target != scene.KeyB {
		t.Fatalf("result = %+v, want switch to b", result)
	}
}

func TestDumpStateFormat(t *testing.T) {
	state, world := newTestScene(t, scene.KeyA)
	runIdleTicks(state, world, 3)

	result := state.ExecuteDebugCommand(scene.DebugCommand{Kind: scene.DebugDumpState}, scene.DebugContext{}, world)
	if !result.Ok {
		t.Fatalf("dump.state failed: %s", result.Message)
	}
	lines := strings.Split(result.Message, "\n")
	if !strings.HasPrefix(lines[0], "dump.state v1 | scene:a tick:3") {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 1+world.EntityCount() {
		t.Errorf("dump has %d lines, want %d", len(lines), 1+world.EntityCount())
	}
	if !strings.Contains(result.Message, "name:player") {
		t.Errorf("dump missing player line: %q", result.Message)
	}
}

func TestDigestCommandIsStableAcrossCalls(t *testing.T) {
	state, world := newTestScene(t, scene.KeyA)
	runIdleTicks(state, world, 5)

	first := state.ExecuteDebugCommand(scene.DebugCommand{Kind: scene.DebugDigest}, scene.DebugContext{}, world)
	second := state.ExecuteDebugCommand(scene.DebugCommand{Kind: scene.DebugDigest}, scene.DebugContext{}, world)
	if first.Message != second.Message {
		t.Errorf("digest changed without a tick: %q vs %q", first.Message, second.Message)
	}
	if !strings.HasPrefix(first.Message, "digest v1 | tick:5 | xxh64:") {
		t.Errorf("digest format = %q", first.Message)
	}
}

func TestDespawnUnknownEntityFails(t *testing.T) {
	state, world := newTestScene(t, scene.KeyA)
	result := state.ExecuteDebugCommand(scene.DebugCommand{
		Kind:     scene.DebugDespawn,
		EntityID: 999,
	}, scene.DebugContext{}, world)
	if result.Ok {
		t.Fatal("despawning a missing entity must fail")
	}
}

func TestCameraPanAndZoom(t *testing.T) {
	state, world := newTestScene(t, scene.KeyA)
	var input core.InputSnapshot
	input.Actions.Set(core.ActionCameraRight, true)
	input.ZoomSteps = 1
	tick(state, world, input)

	camera := world.Camera()
	wantX := CameraSpeedUnitsPerSecond * tickDt
	if math.Abs(float64(camera.Position.X-wantX)) > 1e-5 {
		t.Errorf("camera x = %v, want %v", camera.Position.X, wantX)
	}
	if math.Abs(float64(camera.Zoom-scene.ZoomStepFactor)) > 1e-5 {
		t.Errorf("camera zoom = %v, want %v", camera.Zoom, scene.ZoomStepFactor)
	}
}

func spawnMob(t *testing.T, state *SceneState, world *scene.World, position core.Vec2) scene.EntityID {
	t.Helper()
	defID, ok := world.DefDatabase().DefIDByName(MobDefName)
	if !ok {
		t.Fatal("mob archetype missing from test defs")
	}
	id, ok := state.spawnFromArchetype(world, defID, position)
	if !ok {
		t.Fatalf("spawn of %s failed", MobDefName)
	}
	world.ApplyPending()
	return id
}

func TestAgentHoldsAttackWhileMoveOrderActive(t *testing.T) {
	state, world := newTestScene(t, scene.KeyA)
	mobID := spawnMob(t, state, world, core.Vec2{X: 0.5})

	world.FindEntity(mobID).OrderState = scene.MoveTo(core.Vec2{X: 0.5, Y: 3})
	tick(state, world, core.InputSnapshot{})

	if _, busy := state.interactions[mobID]; busy {
		t.Fatal("agent with an in-flight move order must not start an attack")
	}
	for _, event := range state.bus.CurrentTickEvents() {
		if event.Kind == EventInteractionStarted && event.Actor == mobID {
			t.Fatal("interaction started despite the pending move order")
		}
	}
	if agent := state.agents[mobID]; agent.State != AIUseInteraction {
		t.Errorf("agent state = %v, want use-interaction while in range", agent.State)
	}

	world.FindEntity(mobID).OrderState = scene.Idle()
	tick(state, world, core.InputSnapshot{})
	if _, busy := state.interactions[mobID]; !busy {
		t.Fatal("idle agent in attack range should start the attack")
	}
}

func TestChaserKeepsCourseWhilePlayerMoves(t *testing.T) {
	state, world := newTestScene(t, scene.KeyA)
	mobID := spawnMob(t, state, world, core.Vec2{X: 4})

	tick(state, world, core.InputSnapshot{})
	mob := world.FindEntity(mobID)
	if mob.OrderState.Kind != scene.OrderMoveTo {
		t.Fatalf("mob order = %v, want chase move order", mob.OrderState.Kind)
	}
	firstGoal := mob.OrderState.Point

	world.FindEntity(*state.playerID).Transform.Position = core.Vec2{Y: 2}
	tick(state, world, core.InputSnapshot{})

	mob = world.FindEntity(mobID)
	if mob.OrderState.Kind != scene.OrderMoveTo {
		t.Fatalf("mob order = %v, want move order still in flight", mob.OrderState.Kind)
	}
	if mob.OrderState.Point != firstGoal {
		t.Errorf("chase goal changed mid-move: %v -> %v", firstGoal, mob.OrderState.Point)
	}
	if agent := state.agents[mobID]; agent.State != AIChase {
		t.Errorf("agent state = %v, want chase", agent.State)
	}
}

func TestReplacingInteractionQueuesCancelFirst(t *testing.T) {
	state, world := newTestScene(t, scene.KeyA)
	playerID := *state.playerID
	var pileID scene.EntityID
	for _, entity := range world.Entities() {
		if entity.Interactable != nil {
			pileID = entity.ID
		}
	}
	if pileID == 0 {
		t.Fatal("no pile spawned")
	}

	state.beginInteraction(playerID, pileID, InteractionUse,
		ResourcePileInteractionRadius, JobDurationSeconds)
	firstID := state.interactions[playerID].ID

	state.beginInteraction(playerID, pileID, InteractionUse,
		ResourcePileInteractionRadius, JobDurationSeconds)
	if state.interactions[playerID].ID == firstID {
		t.Fatal("re-ordering must allocate a fresh interaction")
	}

	stats := state.intents.Drain(func(intent Intent) bool {
		return state.applyIntent(world, intent)
	})
	if stats.CancelInteraction != 1 {
		t.Errorf("cancel intents applied = %d, want 1", stats.CancelInteraction)
	}
	if stats.StartInteraction != 2 {
		t.Errorf("start intents applied = %d, want 2", stats.StartInteraction)
	}
	if _, busy := state.interactions[playerID]; !busy {
		t.Error("replacement interaction must survive the drain")
	}
	if got := world.FindEntity(playerID).OrderState.Kind; got != scene.OrderInteract {
		t.Errorf("player order = %v, want interact", got)
	}
}

func TestWanderRestsAtEachWaypoint(t *testing.T) {
	state, world := newTestScene(t, scene.KeyA)
	mobID := spawnMob(t, state, world, core.Vec2{X: -6, Y: -4.5})
	agent := state.agents[mobID]

	tick(state, world, core.InputSnapshot{})
	if agent.State != AIWander {
		t.Fatalf("agent state = %v, want wander", agent.State)
	}

	rested := false
	for i := 0; i < 300; i++ {
		tick(state, world, core.InputSnapshot{})
		if agent.State == AIIdle {
			rested = true
			break
		}
	}
	if !rested {
		t.Fatal("agent never rested on reaching a waypoint")
	}
	if agent.WanderOnPrimaryOffset {
		t.Error("arrival should flip the wander leg")
	}

	for i := 0; i < 60 && agent.State != AIWander; i++ {
		tick(state, world, core.InputSnapshot{})
	}
	if agent.State != AIWander {
		t.Error("agent should resume wandering toward the far waypoint")
	}
}
