package gameplay

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/content"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/scene"
)

// SaveVersion is the only accepted save_version; older saves are rejected
// rather than migrated.
const SaveVersion uint32 = 3

// Vec2JSON is the persisted form of a world-space vector.
type Vec2JSON struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

func vec2ToJSON(v core.Vec2) Vec2JSON { return Vec2JSON{X: v.X, Y: v.Y} }
func (v Vec2JSON) toVec2() core.Vec2  { return core.Vec2{X: v.X, Y: v.Y} }
func (v Vec2JSON) isFinite() bool     { return v.toVec2().IsFinite() }

// SavedJob persists the working portion of an order.
type SavedJob struct {
	Kind          string   `json:"kind"`
	TargetSaveID  *uint64  `json:"target_save_id,omitempty"`
	RemainingTime *float32 `json:"remaining_time,omitempty"`
}

// SavedInteractable persists interactable state.
type SavedInteractable struct {
	Kind              string  `json:"kind"`
	InteractionRadius float32 `json:"interaction_radius"`
	RemainingUses     uint32  `json:"remaining_uses"`
}

// SavedEntity is one persisted entity. Cross-entity references use save
// ids; runtime entity ids are never written.
type SavedEntity struct {
	SaveID                  uint64             `json:"save_id"`
	Position                Vec2JSON           `json:"position"`
	Rotation                *float32           `json:"rotation,omitempty"`
	Selectable              bool               `json:"selectable"`
	Actor                   bool               `json:"actor"`
	MoveTargetWorld         *Vec2JSON          `json:"move_target_world,omitempty"`
	InteractionTargetSaveID *uint64            `json:"interaction_target_save_id,omitempty"`
	JobState                SavedJob           `json:"job_state"`
	Interactable            *SavedInteractable `json:"interactable,omitempty"`
}

// SaveGame is the full persisted scene snapshot.
type SaveGame struct {
	SaveVersion          uint32        `json:"save_version"`
	SceneKey             string        `json:"scene_key"`
	CameraPosition       Vec2JSON      `json:"camera_position"`
	CameraZoom           float32       `json:"camera_zoom"`
	SelectedEntitySaveID *uint64       `json:"selected_entity_save_id,omitempty"`
	PlayerEntitySaveID   *uint64       `json:"player_entity_save_id,omitempty"`
	NextSaveID           uint64        `json:"next_save_id"`
	ResourceCount        uint32        `json:"resource_count"`
	Entities             []SavedEntity `json:"entities"`
}

// BuildSaveGame snapshots the world into its persisted form. Orders are
// decomposed: MoveTo becomes move_target_world, Interact becomes
// interaction_target_save_id, Working becomes the job_state.
func (s *SceneState) BuildSaveGame(world *scene.World) *SaveGame {
	camera := world.Camera()
	save := &SaveGame{
		SaveVersion:    SaveVersion,
		SceneKey:       string(s.cfg.Key),
		CameraPosition: vec2ToJSON(camera.Position),
		CameraZoom:     camera.Zoom,
		NextSaveID:     uint64(s.nextSaveID),
		ResourceCount:  s.resourceCount,
	}
	if s.selected != nil {
		if saveID, ok := s.saveIDByEntity[*s.selected]; ok {
			id := uint64(saveID)
			save.SelectedEntitySaveID = &id
		}
	}
	if s.playerID != nil {
		if saveID, ok := s.saveIDByEntity[*s.playerID]; ok {
			id := uint64(saveID)
			save.PlayerEntitySaveID = &id
		}
	}

	for _, entity := range world.Entities() {
		saved := SavedEntity{
			SaveID:     uint64(s.saveIDByEntity[entity.ID]),
			Position:   vec2ToJSON(entity.Transform.Position),
			Selectable: entity.Selectable,
			Actor:      entity.Actor,
			JobState:   SavedJob{Kind: "idle"},
		}
		if entity.Transform.HasRotation {
			rotation := entity.Transform.Rotation
			saved.Rotation = &rotation
		}
		switch entity.OrderState.Kind {
		case scene.OrderMoveTo:
			point := vec2ToJSON(entity.OrderState.Point)
			saved.MoveTargetWorld = &point
		case scene.OrderInteract:
			target := uint64(entity.OrderState.TargetSaveID)
			saved.InteractionTargetSaveID = &target
		case scene.OrderWorking:
			target := uint64(entity.OrderState.TargetSaveID)
			remaining := entity.OrderState.RemainingTime
			saved.JobState = SavedJob{Kind: "working", TargetSaveID: &target, RemainingTime: &remaining}
		}
		if entity.Interactable != nil {
			saved.Interactable = &SavedInteractable{
				Kind:              entity.Interactable.Kind.String(),
				InteractionRadius: entity.Interactable.InteractionRadius,
				RemainingUses:     entity.Interactable.RemainingUses,
			}
		}
		save.Entities = append(save.Entities, saved)
	}
	return save
}

func validationFailed(path string, expected, got any) error {
	return fmt.Errorf("validation failed at %s: expected %v, got %v", path, expected, got)
}

// ValidateSaveGame checks structural integrity before anything touches the
// world: version, finite numbers, unique save ids, and resolvable
// cross-references.
func ValidateSaveGame(save *SaveGame) error {
	if save.SaveVersion != SaveVersion {
		return validationFailed("save_version", SaveVersion, save.SaveVersion)
	}
	if save.SceneKey != string(scene.KeyA) && save.SceneKey != string(scene.KeyB) {
		return validationFailed("scene_key", `"a" or "b"`, fmt.Sprintf("%q", save.SceneKey))
	}
	if !save.CameraPosition.isFinite() {
		return validationFailed("camera_position", "finite coordinates", save.CameraPosition)
	}
	if !core.IsFinite(save.CameraZoom) || save.CameraZoom < scene.MinZoom {
		return validationFailed("camera_zoom", fmt.Sprintf("finite value >= %v", scene.MinZoom), save.CameraZoom)
	}
	if len(save.Entities) == 0 && save.NextSaveID != 0 {
		return validationFailed("next_save_id", "0 for an empty save", save.NextSaveID)
	}

	seen := make(map[uint64]struct{}, len(save.Entities))
	for i, entity := range save.Entities {
		prefix := fmt.Sprintf("entities[%d]", i)
		if entity.SaveID >= save.NextSaveID {
			return validationFailed(prefix+".save_id", fmt.Sprintf("id < next_save_id (%d)", save.NextSaveID), entity.SaveID)
		}
		if _, dup := seen[entity.SaveID]; dup {
			return validationFailed(prefix+".save_id", "unique id", entity.SaveID)
		}
		seen[entity.SaveID] = struct{}{}
		if !entity.Position.isFinite() {
			return validationFailed(prefix+".position", "finite coordinates", entity.Position)
		}
		if entity.Rotation != nil && !core.IsFinite(*entity.Rotation) {
			return validationFailed(prefix+".rotation", "finite value", *entity.Rotation)
		}
		if entity.MoveTargetWorld != nil && !entity.MoveTargetWorld.isFinite() {
			return validationFailed(prefix+".move_target_world", "finite coordinates", *entity.MoveTargetWorld)
		}
		if entity.Interactable != nil {
			if entity.Interactable.Kind != scene.InteractableResourcePile.String() {
				return validationFailed(prefix+".interactable.kind", scene.InteractableResourcePile.String(), entity.Interactable.Kind)
			}
			if entity.Interactable.RemainingUses == 0 {
				return validationFailed(prefix+".interactable.remaining_uses", "value >= 1", 0)
			}
		}
		switch entity.JobState.Kind {
		case "idle":
		case "working":
			if entity.JobState.TargetSaveID == nil {
				return validationFailed(prefix+".job_state.target_save_id", "target for working job", "nothing")
			}
			if entity.JobState.RemainingTime == nil || !core.IsFinite(*entity.JobState.RemainingTime) || *entity.JobState.RemainingTime <= 0 {
				return validationFailed(prefix+".job_state.remaining_time", "finite value > 0", entity.JobState.RemainingTime)
			}
		default:
			return validationFailed(prefix+".job_state.kind", `"idle" or "working"`, fmt.Sprintf("%q", entity.JobState.Kind))
		}
	}

	requireRef := func(path string, ref *uint64) error {
		if ref == nil {
			return nil
		}
		if _, ok := seen[*ref]; !ok {
			return validationFailed(path, "reference to a saved entity", *ref)
		}
		return nil
	}
	if err := requireRef("selected_entity_save_id", save.SelectedEntitySaveID); err != nil {
		return err
	}
	if err := requireRef("player_entity_save_id", save.PlayerEntitySaveID); err != nil {
		return err
	}
	for i, entity := range save.Entities {
		prefix := fmt.Sprintf("entities[%d]", i)
		if err := requireRef(prefix+".interaction_target_save_id", entity.InteractionTargetSaveID); err != nil {
			return err
		}
		if err := requireRef(prefix+".job_state.target_save_id", entity.JobState.TargetSaveID); err != nil {
			return err
		}
	}
	return nil
}

// ApplySaveGame replaces the scene's state with the snapshot. Archetypes
// are resolved before the world is touched, so a save that cannot be
// applied leaves the running scene intact.
func (s *SceneState) ApplySaveGame(world *scene.World, save *SaveGame) error {
	db := world.DefDatabase()
	if db == nil {
		return errors.New("no def database loaded")
	}
	playerDefID, ok := db.DefIDByName(PlayerDefName)
	if !ok {
		return fmt.Errorf("archetype %q missing from content", PlayerDefName)
	}
	pileDefID, ok := db.DefIDByName(ResourcePileDefName)
	if !ok {
		return fmt.Errorf("archetype %q missing from content", ResourcePileDefName)
	}

	tickIndex := s.tickIndex
	s.resetTables()
	s.tickIndex = tickIndex
	world.Clear()
	world.SetTilemap(s.buildTilemap())
	s.navCache.RefreshFromTilemap(world.Tilemap())

	camera := world.CameraMut()
	camera.Position = save.CameraPosition.toVec2()
	camera.Zoom = save.CameraZoom
	s.resourceCount = save.ResourceCount

	// First pass: spawn everything so save id references resolve.
	for _, saved := range save.Entities {
		defID := pileDefID
		if saved.Actor {
			defID = playerDefID
		}
		def := db.Def(defID)
		opts := scene.SpawnOptions{Selectable: saved.Selectable, Actor: saved.Actor}
		if saved.Interactable != nil {
			opts.Interactable = &scene.Interactable{
				Kind:              scene.InteractableResourcePile,
				InteractionRadius: saved.Interactable.InteractionRadius,
				RemainingUses:     saved.Interactable.RemainingUses,
			}
		}
		transform := core.Transform{Position: saved.Position.toVec2()}
		if saved.Rotation != nil {
			transform.Rotation = *saved.Rotation
			transform.HasRotation = true
		}
		id := world.Spawn(transform, def.Renderable, opts)
		saveID := scene.SaveID(saved.SaveID)
		s.saveIDByEntity[id] = saveID
		s.entityBySaveID[saveID] = id
		s.defByEntity[id] = defID
		if saved.Actor {
			maxHealth := DefaultMaxHealth
			if def.HealthMax != nil {
				maxHealth = *def.HealthMax
			}
			s.healthByEntity[id] = &Health{Current: maxHealth, Max: maxHealth}
		}
	}
	world.ApplyPending()
	s.nextSaveID = scene.SaveID(save.NextSaveID)

	// Second pass: restore orders now that every entity exists. Working
	// wins over interact, interact over move.
	for _, saved := range save.Entities {
		entity := s.resolveSaveID(world, scene.SaveID(saved.SaveID))
		if entity == nil {
			continue
		}
		switch {
		case saved.JobState.Kind == "working":
			entity.OrderState = scene.WorkingOn(scene.SaveID(*saved.JobState.TargetSaveID), *saved.JobState.RemainingTime)
		case saved.InteractionTargetSaveID != nil:
			entity.OrderState = scene.InteractWith(scene.SaveID(*saved.InteractionTargetSaveID))
		case saved.MoveTargetWorld != nil:
			point := saved.MoveTargetWorld.toVec2()
			entity.OrderState = scene.MoveTo(point)
			if path := s.navCache.BuildPathFromWorld(entity.Transform.Position, point); path != nil {
				s.navPaths[entity.ID] = path
			}
		}
	}

	if save.PlayerEntitySaveID != nil {
		if id, ok := s.entityBySaveID[scene.SaveID(*save.PlayerEntitySaveID)]; ok {
			playerID := id
			s.playerID = &playerID
			if def := db.Def(playerDefID); def != nil {
				s.playerMoveSpeed = def.MoveSpeed
			}
		}
	}
	if save.SelectedEntitySaveID != nil {
		if id, ok := s.entityBySaveID[scene.SaveID(*save.SelectedEntitySaveID)]; ok {
			selected := id
			s.selected = &selected
		}
	}
	world.SetSelectedActorVisual(s.selected)
	return nil
}

// SaveToFile writes the scene snapshot atomically to the scene's save
// path.
func (s *SceneState) SaveToFile(world *scene.World) error {
	if s.cfg.Paths.Root == "" {
		return errors.New("save path not configured")
	}
	data, err := json.MarshalIndent(s.BuildSaveGame(world), "", "  ")
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}
	data = append(data, '\n')
	path := s.cfg.Paths.SavePath(string(s.cfg.Key))
	if err := content.WriteFileAtomic(path, data); err != nil {
		return err
	}
	gameplayLog.Info("scene saved", "scene", s.cfg.Key, "path", path)
	return nil
}

// LoadFromFile reads, validates and applies the scene's save file. The
// world is only mutated after the snapshot passes validation.
func (s *SceneState) LoadFromFile(world *scene.World) error {
	if s.cfg.Paths.Root == "" {
		return errors.New("save path not configured")
	}
	path := s.cfg.Paths.SavePath(string(s.cfg.Key))
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read save: %w", err)
	}
	var save SaveGame
	if err := json.Unmarshal(data, &save); err != nil {
		return fmt.Errorf("decode save: %w", err)
	}
	if err := ValidateSaveGame(&save); err != nil {
		return err
	}
	if save.SceneKey != string(s.cfg.Key) {
		return validationFailed("scene_key", fmt.Sprintf("%q", s.cfg.Key), fmt.Sprintf("%q", save.SceneKey))
	}
	if err := s.ApplySaveGame(world, &save); err != nil {
		return err
	}
	gameplayLog.Info("scene loaded", "scene", s.cfg.Key, "path", path)
	return nil
}
