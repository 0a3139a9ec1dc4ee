package gameplay

import (
	"os"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/content"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/nav"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/scene"
)

var gameplayLog = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "gameplay",
})

// Archetype names the scenes rely on. They must exist in the base mod's
// compiled defs.
const (
	PlayerDefName       = "proto.player"
	ResourcePileDefName = "proto.resource_pile"
	MobDefName          = "proto.mob"
	TrainingDummyName   = "proto.dummy"
)

// SceneConfig fixes a scene's identity and starting layout.
type SceneConfig struct {
	Key          scene.Key
	SwitchTarget scene.Key
	SpawnOffset  core.Vec2
	// Paths locates save files. A zero value disables save and load.
	Paths content.AppPaths
}

type attackPair struct {
	actor  scene.EntityID
	target scene.EntityID
}

// SceneState is one scene's gameplay state: the runtime component tables,
// the event bus and intent queue, and the navigation cache. The entity
// store itself lives in the scene world; everything here is keyed by
// entity id and iterated in ascending id order so ticks replay
// byte-identically.
type SceneState struct {
	cfg SceneConfig

	tickIndex uint64

	playerID        *scene.EntityID
	playerMoveSpeed float32
	selected        *scene.EntityID

	saveIDByEntity map[scene.EntityID]scene.SaveID
	entityBySaveID map[scene.SaveID]scene.EntityID
	nextSaveID     scene.SaveID

	resourceCount uint32

	healthByEntity   map[scene.EntityID]*Health
	agents           map[scene.EntityID]*AIAgent
	statusesByEntity map[scene.EntityID][]ActiveStatus
	defByEntity      map[scene.EntityID]content.EntityDefID

	interactions      map[scene.EntityID]*ActiveInteraction
	nextInteractionID InteractionID
	completedAttacks  map[attackPair]struct{}

	bus     EventBus
	intents IntentQueue

	navCache nav.Cache
	navPaths map[scene.EntityID]*nav.PathState
}

// NewSceneState builds an unloaded scene.
func NewSceneState(cfg SceneConfig) *SceneState {
	s := &SceneState{cfg: cfg}
	s.resetTables()
	return s
}

func (s *SceneState) resetTables() {
	s.tickIndex = 0
	s.playerID = nil
	s.playerMoveSpeed = content.DefaultMoveSpeed
	s.selected = nil
	s.saveIDByEntity = make(map[scene.EntityID]scene.SaveID)
	s.entityBySaveID = make(map[scene.SaveID]scene.EntityID)
	s.nextSaveID = 0
	s.resourceCount = 0
	s.healthByEntity = make(map[scene.EntityID]*Health)
	s.agents = make(map[scene.EntityID]*AIAgent)
	s.statusesByEntity = make(map[scene.EntityID][]ActiveStatus)
	s.defByEntity = make(map[scene.EntityID]content.EntityDefID)
	s.interactions = make(map[scene.EntityID]*ActiveInteraction)
	s.completedAttacks = make(map[attackPair]struct{})
	s.bus = EventBus{}
	s.intents = IntentQueue{}
	s.navCache.Clear()
	s.navPaths = make(map[scene.EntityID]*nav.PathState)
}

// Key returns the scene key.
func (s *SceneState) Key() scene.Key { return s.cfg.Key }

// TickIndex returns the number of completed ticks since load.
func (s *SceneState) TickIndex() uint64 { return s.tickIndex }

// ResourceCount returns the resources gathered so far.
func (s *SceneState) ResourceCount() uint32 { return s.resourceCount }

// Events exposes the event bus for overlays.
func (s *SceneState) Events() *EventBus { return &s.bus }

// Intents exposes the intent queue for overlays.
func (s *SceneState) Intents() *IntentQueue { return &s.intents }

// Load resets the scene and spawns its starting layout: the tilemap, a
// player actor at the spawn offset, and one resource pile nearby.
func (s *SceneState) Load(world *scene.World) {
	s.resetTables()
	world.SetTilemap(s.buildTilemap())
	s.navCache.RefreshFromTilemap(world.Tilemap())

	db := world.DefDatabase()
	if db == nil {
		gameplayLog.Warn("scene loaded without def database; starting empty", "scene", s.cfg.Key)
		return
	}
	if id, ok := db.DefIDByName(PlayerDefName); ok {
		s.spawnFromArchetype(world, id, s.cfg.SpawnOffset)
	} else {
		gameplayLog.Warn("player archetype missing", "def", PlayerDefName)
	}
	if id, ok := db.DefIDByName(ResourcePileDefName); ok {
		s.spawnFromArchetype(world, id, s.cfg.SpawnOffset.Add(core.Vec2{X: 3.5, Y: 0.5}))
	}
}

// buildTilemap returns the scene's fixed 16x10 map centered on the origin.
// Scene B carves a short blocked wall so pathfinding differs between the
// two scenes.
func (s *SceneState) buildTilemap() *scene.Tilemap {
	const width, height = uint32(16), uint32(10)
	tiles := make([]uint16, width*height)
	if s.cfg.Key == scene.KeyB {
		for y := uint32(2); y < 7; y++ {
			tiles[y*width+9] = nav.BlockedTileID
		}
	}
	tilemap, err := scene.NewTilemap(width, height, core.Vec2{X: -8, Y: -5}, tiles)
	if err != nil {
		// Dimensions are compile-time constants; this cannot fail.
		panic(err)
	}
	return tilemap
}

// Unload drops all gameplay state for the scene.
func (s *SceneState) Unload(world *scene.World) {
	s.resetTables()
}

// Update advances the scene by one fixed tick: the six systems in order,
// then the intent drain, then kinematic stepping and camera control.
func (s *SceneState) Update(fixedDtSeconds float32, input core.InputSnapshot, world *scene.World) scene.UpdateResult {
	s.bus.BeginTick()
	for pair := range s.completedAttacks {
		delete(s.completedAttacks, pair)
	}
	world.TickDebugMarkers(fixedDtSeconds)
	s.navCache.RefreshFromTilemap(world.Tilemap())

	if input.SavePressed {
		if err := s.SaveToFile(world); err != nil {
			gameplayLog.Error("save failed", "scene", s.cfg.Key, "err", err)
		}
	}
	if input.LoadPressed {
		if err := s.LoadFromFile(world); err != nil {
			gameplayLog.Error("load failed", "scene", s.cfg.Key, "err", err)
		}
	}

	s.systemInputIntent(fixedDtSeconds, input, world)
	s.systemInteraction(fixedDtSeconds, world)
	s.systemAI(fixedDtSeconds, world)
	s.systemCombatResolution(world)
	s.systemStatusEffects(fixedDtSeconds, world)
	s.systemCleanup(world)

	s.intents.Drain(func(intent Intent) bool {
		return s.applyIntent(world, intent)
	})

	s.applyKinematics(fixedDtSeconds, input, world)

	camera := world.CameraMut()
	camera.Position = camera.Position.Add(core.CameraDelta(input, fixedDtSeconds, CameraSpeedUnitsPerSecond))
	camera.ApplyZoomSteps(input.ZoomSteps)

	s.updateHoverVisual(input, world)
	world.SetSelectedActorVisual(s.selected)

	s.tickIndex++
	if input.SwitchScenePressed {
		return scene.SwitchTo(s.cfg.SwitchTarget)
	}
	return scene.None()
}

func (s *SceneState) updateHoverVisual(input core.InputSnapshot, world *scene.World) {
	if input.CursorPx == nil {
		world.SetHoveredInteractableVisual(nil)
		return
	}
	if id, ok := world.PickTopmostInteractableAt(*input.CursorPx, input.WindowWidth, input.WindowHeight); ok {
		world.SetHoveredInteractableVisual(&id)
	} else {
		world.SetHoveredInteractableVisual(nil)
	}
}

// spawnFromArchetype instantiates a def: the actor flags, renderable,
// health and AI agent all derive from the def's fields and tags. Returns
// false when the def id is unknown.
func (s *SceneState) spawnFromArchetype(world *scene.World, defID content.EntityDefID, position core.Vec2) (scene.EntityID, bool) {
	db := world.DefDatabase()
	if db == nil {
		return 0, false
	}
	def := db.Def(defID)
	if def == nil {
		return 0, false
	}

	opts := scene.SpawnOptions{}
	if def.HasTag("actor") {
		opts.Actor = true
		opts.Selectable = true
	}
	if def.HasTag("resource_pile") {
		opts.Interactable = &scene.Interactable{
			Kind:              scene.InteractableResourcePile,
			InteractionRadius: ResourcePileInteractionRadius,
			RemainingUses:     ResourcePileStartingUses,
		}
	}

	id := world.Spawn(core.Transform{Position: position}, def.Renderable, opts)
	saveID := s.nextSaveID
	s.nextSaveID++
	s.saveIDByEntity[id] = saveID
	s.entityBySaveID[saveID] = id
	s.defByEntity[id] = defID

	if opts.Actor {
		maxHealth := DefaultMaxHealth
		if def.HealthMax != nil {
			maxHealth = *def.HealthMax
		}
		s.healthByEntity[id] = &Health{Current: maxHealth, Max: maxHealth}
	}
	if def.AggroRadius != nil || def.HasTag("hostile") {
		s.agents[id] = newAgentFromDef(def, position)
	}
	if def.DefName == PlayerDefName && s.playerID == nil {
		playerID := id
		s.playerID = &playerID
		s.playerMoveSpeed = def.MoveSpeed
	}
	return id, true
}

func newAgentFromDef(def *content.EntityDef, home core.Vec2) *AIAgent {
	agent := &AIAgent{
		State:           AIIdle,
		HomePosition:    home,
		AggroRadius:     AIAggroRadiusUnits,
		AttackRange:     AIAttackRangeUnits,
		AttackDamage:    AttackDamagePerHit,
		CooldownSeconds: AIAttackCooldownSeconds,
	}
	if def.AggroRadius != nil {
		agent.AggroRadius = *def.AggroRadius
	}
	if def.AttackRange != nil {
		agent.AttackRange = *def.AttackRange
	}
	if def.BaseDamage != nil {
		agent.AttackDamage = *def.BaseDamage
	}
	if def.AttackCooldownSeconds != nil {
		agent.CooldownSeconds = *def.AttackCooldownSeconds
	}
	return agent
}

// despawnEntity removes an entity and every gameplay record keyed to it.
func (s *SceneState) despawnEntity(world *scene.World, id scene.EntityID) bool {
	if !world.Despawn(id) {
		return false
	}
	if saveID, ok := s.saveIDByEntity[id]; ok {
		delete(s.entityBySaveID, saveID)
	}
	delete(s.saveIDByEntity, id)
	delete(s.healthByEntity, id)
	delete(s.agents, id)
	delete(s.statusesByEntity, id)
	delete(s.defByEntity, id)
	delete(s.interactions, id)
	delete(s.navPaths, id)
	if s.selected != nil && *s.selected == id {
		s.selected = nil
	}
	if s.playerID != nil && *s.playerID == id {
		s.playerID = nil
	}
	return true
}

func (s *SceneState) resolveSaveID(world *scene.World, saveID scene.SaveID) *scene.Entity {
	id, ok := s.entityBySaveID[saveID]
	if !ok {
		return nil
	}
	return world.FindEntity(id)
}

func (s *SceneState) moveSpeedFor(world *scene.World, id scene.EntityID) float32 {
	if db := world.DefDatabase(); db != nil {
		if defID, ok := s.defByEntity[id]; ok {
			if def := db.Def(defID); def != nil {
				return def.MoveSpeed
			}
		}
	}
	return content.DefaultMoveSpeed
}

func (s *SceneState) statusMoveMultiplier(id scene.EntityID) float32 {
	multiplier := float32(1.0)
	for _, status := range s.statusesByEntity[id] {
		if status.ID == StatusSlow {
			multiplier *= StatusSlowMoveMultiplier
		}
	}
	return multiplier
}

// sortedEntityIDs returns map keys in ascending order. Every per-table
// iteration goes through this so tick order never depends on map layout.
func sortedEntityIDs[V any](table map[scene.EntityID]V) []scene.EntityID {
	ids := make([]scene.EntityID, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
