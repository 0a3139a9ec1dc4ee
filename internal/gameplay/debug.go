package gameplay

import (
	"fmt"
	"strings"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/scene"
)

// ScenarioCombatChaser is the reproducible combat layout: the player at
// the origin, a hostile already in attack range, and a distant dummy.
const ScenarioCombatChaser = "combat_chaser"

// ExecuteDebugCommand runs one parsed console command against the scene.
// Commands mutate through the same helpers as gameplay so console-driven
// sessions replay like played ones.
func (s *SceneState) ExecuteDebugCommand(cmd scene.DebugCommand, ctx scene.DebugContext, world *scene.World) scene.DebugResult {
	switch cmd.Kind {
	case scene.DebugSpawn:
		return s.debugSpawn(cmd, ctx, world)
	case scene.DebugDespawn:
		if !s.despawnEntity(world, cmd.EntityID) {
			return scene.DebugErr(fmt.Sprintf("no entity %d", cmd.EntityID))
		}
		return scene.DebugOK(fmt.Sprintf("despawned %d", cmd.EntityID))
	case scene.DebugSelect:
		entity := world.FindEntity(cmd.EntityID)
		if entity == nil || !entity.Selectable {
			return scene.DebugErr(fmt.Sprintf("no selectable entity %d", cmd.EntityID))
		}
		picked := cmd.EntityID
		s.selected = &picked
		world.SetSelectedActorVisual(s.selected)
		return scene.DebugOK(fmt.Sprintf("selected %d", cmd.EntityID))
	case scene.DebugOrderMove:
		return s.debugOrderMove(cmd, world)
	case scene.DebugOrderInteract:
		return s.debugOrderInteract(cmd, world)
	case scene.DebugDumpState:
		return scene.DebugOK(s.dumpState(world))
	case scene.DebugDumpAI:
		return scene.DebugOK(s.dumpAI(world))
	case scene.DebugDigest:
		return scene.DebugOK(fmt.Sprintf("digest v1 | tick:%d | xxh64:%016x", s.tickIndex, s.WorldDigest(world)))
	case scene.DebugScenarioSetup:
		return s.debugScenarioSetup(cmd, world)
	default:
		return scene.DebugErr("unsupported debug command")
	}
}

func (s *SceneState) debugSpawn(cmd scene.DebugCommand, ctx scene.DebugContext, world *scene.World) scene.DebugResult {
	db := world.DefDatabase()
	if db == nil {
		return scene.DebugErr("no def database loaded")
	}
	defID, ok := db.DefIDByName(cmd.DefName)
	if !ok {
		return scene.DebugErr(fmt.Sprintf("unknown def %q", cmd.DefName))
	}
	position := core.Vec2{}
	switch {
	case cmd.Position != nil:
		position = *cmd.Position
	case ctx.CursorWorld != nil:
		position = *ctx.CursorWorld
	}
	id, ok := s.spawnFromArchetype(world, defID, position)
	if !ok {
		return scene.DebugErr(fmt.Sprintf("unknown def %q", cmd.DefName))
	}
	return scene.DebugOK(fmt.Sprintf("spawned %s id:%d save:%d at (%.2f,%.2f)",
		cmd.DefName, id, s.saveIDByEntity[id], position.X, position.Y))
}

func (s *SceneState) debugOrderMove(cmd scene.DebugCommand, world *scene.World) scene.DebugResult {
	if s.selected == nil {
		return scene.DebugErr("nothing selected")
	}
	actorID := *s.selected
	if _, busy := s.interactions[actorID]; busy {
		delete(s.interactions, actorID)
		s.applyIntent(world, Intent{Kind: IntentCancelInteraction, Actor: actorID})
	}
	if !s.applyIntent(world, Intent{Kind: IntentSetMoveTarget, Actor: actorID, Point: cmd.Point}) {
		return scene.DebugErr(fmt.Sprintf("entity %d cannot take orders", actorID))
	}
	world.PushDebugMarker(scene.DebugMarker{
		Kind:          scene.MarkerOrder,
		PositionWorld: cmd.Point,
		TTLSeconds:    OrderMarkerTTLSeconds,
	})
	return scene.DebugOK(fmt.Sprintf("ordered %d to (%.2f,%.2f)", actorID, cmd.Point.X, cmd.Point.Y))
}

func (s *SceneState) debugOrderInteract(cmd scene.DebugCommand, world *scene.World) scene.DebugResult {
	if s.selected == nil {
		return scene.DebugErr("nothing selected")
	}
	actorID := *s.selected
	target := world.FindEntity(cmd.EntityID)
	if target == nil || target.Interactable == nil {
		return scene.DebugErr(fmt.Sprintf("no interactable entity %d", cmd.EntityID))
	}
	s.beginInteraction(actorID, cmd.EntityID, InteractionUse,
		target.Interactable.InteractionRadius, JobDurationSeconds)
	s.intents.Drain(func(intent Intent) bool {
		return s.applyIntent(world, intent)
	})
	return scene.DebugOK(fmt.Sprintf("ordered %d to use %d", actorID, cmd.EntityID))
}

func (s *SceneState) debugScenarioSetup(cmd scene.DebugCommand, world *scene.World) scene.DebugResult {
	if cmd.ScenarioID != ScenarioCombatChaser {
		return scene.DebugErr(fmt.Sprintf("unknown scenario %q", cmd.ScenarioID))
	}
	db := world.DefDatabase()
	if db == nil {
		return scene.DebugErr("no def database loaded")
	}
	playerDef, okPlayer := db.DefIDByName(PlayerDefName)
	mobDef, okMob := db.DefIDByName(MobDefName)
	dummyDef, okDummy := db.DefIDByName(TrainingDummyName)
	if !okPlayer || !okMob || !okDummy {
		return scene.DebugErr("scenario defs missing from content")
	}

	for _, entity := range world.Entities() {
		s.despawnEntity(world, entity.ID)
	}
	world.ApplyPending()
	s.resetTables()
	s.navCache.RefreshFromTilemap(world.Tilemap())

	s.spawnFromArchetype(world, playerDef, core.Vec2{})
	s.spawnFromArchetype(world, mobDef, core.Vec2{X: 0.75})
	s.spawnFromArchetype(world, dummyDef, core.Vec2{X: 7})
	world.ApplyPending()
	return scene.DebugOK(fmt.Sprintf("scenario %s ready", ScenarioCombatChaser))
}

// DebugTitle is the one-line overlay header.
func (s *SceneState) DebugTitle(world *scene.World) string {
	events := s.bus.LastTickCounts()
	intents := s.intents.LastApplyStats()
	return fmt.Sprintf("scene %s | tick %d | entities %d | res %d | ev %d | intents %d (stale %d) | %s",
		s.cfg.Key, s.tickIndex, world.EntityCount(), s.resourceCount,
		events.Total, intents.Total, intents.InvalidTargetCount, systemOrderText)
}

// dumpState renders the full world snapshot, one entity per line in
// ascending id order.
func (s *SceneState) dumpState(world *scene.World) string {
	camera := world.Camera()
	var b strings.Builder
	fmt.Fprintf(&b, "dump.state v1 | scene:%s tick:%d cam:(%.2f,%.2f) zoom:%.3f sel:%s player:%s res:%d entities:%d",
		s.cfg.Key, s.tickIndex, camera.Position.X, camera.Position.Y, camera.Zoom,
		s.formatEntityRef(s.selected), s.formatEntityRef(s.playerID),
		s.resourceCount, world.EntityCount())
	for _, entity := range world.Entities() {
		fmt.Fprintf(&b, "\nentity id:%d save:%d name:%s pos:(%.2f,%.2f) order:%s",
			entity.ID, s.saveIDByEntity[entity.ID], entity.Renderable.DebugName,
			entity.Transform.Position.X, entity.Transform.Position.Y,
			formatOrder(entity.OrderState))
		if health, ok := s.healthByEntity[entity.ID]; ok {
			fmt.Fprintf(&b, " hp:%d/%d", health.Current, health.Max)
		}
		if entity.Interactable != nil {
			fmt.Fprintf(&b, " uses:%d", entity.Interactable.RemainingUses)
		}
		if statuses := s.statusesByEntity[entity.ID]; len(statuses) > 0 {
			tokens := make([]string, 0, len(statuses))
			for _, status := range statuses {
				tokens = append(tokens, fmt.Sprintf("%s:%.2f", status.ID, status.RemainingSeconds))
			}
			fmt.Fprintf(&b, " status:[%s]", strings.Join(tokens, ","))
		}
	}
	return b.String()
}

// dumpAI renders every agent in ascending id order.
func (s *SceneState) dumpAI(world *scene.World) string {
	ids := sortedEntityIDs(s.agents)
	var b strings.Builder
	fmt.Fprintf(&b, "dump.ai v1 | scene:%s tick:%d agents:%d", s.cfg.Key, s.tickIndex, len(ids))
	for _, id := range ids {
		agent := s.agents[id]
		wander := "none"
		if agent.WanderTarget != nil {
			wander = fmt.Sprintf("(%.2f,%.2f)", agent.WanderTarget.X, agent.WanderTarget.Y)
		}
		fmt.Fprintf(&b, "\nagent id:%d state:%s home:(%.2f,%.2f) cooldown:%.2f wander:%s",
			id, agent.State, agent.HomePosition.X, agent.HomePosition.Y,
			agent.CooldownRemaining, wander)
	}
	return b.String()
}

func (s *SceneState) formatEntityRef(id *scene.EntityID) string {
	if id == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *id)
}

func formatOrder(order scene.OrderState) string {
	switch order.Kind {
	case scene.OrderMoveTo:
		return fmt.Sprintf("move(%.2f,%.2f)", order.Point.X, order.Point.Y)
	case scene.OrderInteract:
		return fmt.Sprintf("interact(save:%d)", order.TargetSaveID)
	case scene.OrderWorking:
		return fmt.Sprintf("working(save:%d,%.2fs)", order.TargetSaveID, order.RemainingTime)
	default:
		return "idle"
	}
}
