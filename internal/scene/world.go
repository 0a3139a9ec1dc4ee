package scene

import (
	"sort"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/content"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
)

// pickHalfExtent is the world-space half size of an entity's pick box.
const pickHalfExtent float32 = 0.5

// World is the entity store plus camera, tilemap and debug state for one
// scene. Spawns and despawns are buffered until ApplyPending so entity
// iteration never changes mid-system.
type World struct {
	entities     []Entity
	nextEntityID EntityID

	pendingSpawns   []Entity
	pendingDespawns []EntityID

	camera  Camera
	tilemap *Tilemap
	defDB   *content.DefDatabase

	selectedActorVisual       *EntityID
	hoveredInteractableVisual *EntityID

	debugMarkers []DebugMarker
}

// NewWorld returns an empty world with a default camera.
func NewWorld() *World {
	return &World{camera: NewCamera(), nextEntityID: 1}
}

// SpawnOptions configures a queued spawn beyond transform and renderable.
type SpawnOptions struct {
	Selectable   bool
	Actor        bool
	Interactable *Interactable
}

// Spawn queues a new entity and returns its id immediately. The entity
// becomes visible to iteration after the next ApplyPending.
func (w *World) Spawn(transform core.Transform, renderable core.RenderableDesc, opts SpawnOptions) EntityID {
	id := w.nextEntityID
	w.nextEntityID++
	var interactable *Interactable
	if opts.Interactable != nil {
		copied := *opts.Interactable
		interactable = &copied
	}
	w.pendingSpawns = append(w.pendingSpawns, Entity{
		ID:           id,
		Transform:    transform,
		Renderable:   renderable,
		Selectable:   opts.Selectable,
		Actor:        opts.Actor,
		OrderState:   Idle(),
		Interactable: interactable,
	})
	return id
}

// SpawnActor queues a selectable actor.
func (w *World) SpawnActor(transform core.Transform, renderable core.RenderableDesc) EntityID {
	return w.Spawn(transform, renderable, SpawnOptions{Selectable: true, Actor: true})
}

// Despawn queues removal of an entity. Idempotent; returns whether a live or
// pending entity was actually marked.
func (w *World) Despawn(id EntityID) bool {
	if w.findIndex(id) < 0 && !w.pendingSpawnExists(id) {
		return false
	}
	for _, queued := range w.pendingDespawns {
		if queued == id {
			return true
		}
	}
	w.pendingDespawns = append(w.pendingDespawns, id)
	return true
}

// ApplyPending materializes buffered entity operations: despawns first, then
// spawns in registration order. Monotonic id allocation keeps the entity
// slice sorted ascending without re-sorting.
func (w *World) ApplyPending() {
	for _, id := range w.pendingDespawns {
		if idx := w.findIndex(id); idx >= 0 {
			w.entities = append(w.entities[:idx], w.entities[idx+1:]...)
		}
		w.removePendingSpawn(id)
		w.clearVisualRefsTo(id)
	}
	w.pendingDespawns = w.pendingDespawns[:0]

	w.entities = append(w.entities, w.pendingSpawns...)
	w.pendingSpawns = w.pendingSpawns[:0]
}

// FindEntity returns the live entity with the given id, or nil.
func (w *World) FindEntity(id EntityID) *Entity {
	if idx := w.findIndex(id); idx >= 0 {
		return &w.entities[idx]
	}
	return nil
}

// Entities returns live entities in ascending id order. Callers may mutate
// entries in place but must not insert or remove.
func (w *World) Entities() []Entity {
	return w.entities
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return len(w.entities)
}

// Clear removes all entities and buffered operations. Camera, tilemap and
// def database survive; save-apply resets the camera itself.
func (w *World) Clear() {
	w.entities = w.entities[:0]
	w.pendingSpawns = w.pendingSpawns[:0]
	w.pendingDespawns = w.pendingDespawns[:0]
	w.selectedActorVisual = nil
	w.hoveredInteractableVisual = nil
	w.ClearDebugMarkers()
}

// Camera returns the current camera value.
func (w *World) Camera() Camera { return w.camera }

// CameraMut returns the camera for mutation.
func (w *World) CameraMut() *Camera { return &w.camera }

// SetTilemap installs the scene's tilemap.
func (w *World) SetTilemap(t *Tilemap) { w.tilemap = t }

// Tilemap returns the installed tilemap, or nil.
func (w *World) Tilemap() *Tilemap { return w.tilemap }

// SetDefDatabase attaches the shared def database.
func (w *World) SetDefDatabase(db *content.DefDatabase) { w.defDB = db }

// DefDatabase returns the attached def database, or nil before startup
// wiring completes.
func (w *World) DefDatabase() *content.DefDatabase { return w.defDB }

// SetSelectedActorVisual records which entity renders the selection ring.
func (w *World) SetSelectedActorVisual(id *EntityID) { w.selectedActorVisual = copyIDPtr(id) }

// SelectedActorVisual returns the selection-ring entity, or nil.
func (w *World) SelectedActorVisual() *EntityID { return w.selectedActorVisual }

// SetHoveredInteractableVisual records the hover-highlighted interactable.
func (w *World) SetHoveredInteractableVisual(id *EntityID) {
	w.hoveredInteractableVisual = copyIDPtr(id)
}

// HoveredInteractableVisual returns the hover-highlighted entity, or nil.
func (w *World) HoveredInteractableVisual() *EntityID { return w.hoveredInteractableVisual }

// PickTopmostSelectableAt returns the topmost selectable entity under the
// cursor. Draw order follows entity order, so among overlapping candidates
// the higher id wins.
func (w *World) PickTopmostSelectableAt(cursorPx core.Vec2, windowWidth, windowHeight uint32) (EntityID, bool) {
	return w.pickTopmost(cursorPx, windowWidth, windowHeight, func(e *Entity) bool {
		return e.Selectable
	})
}

// PickTopmostInteractableAt returns the topmost interactable entity under
// the cursor, using the same tie-break as selectable picking.
func (w *World) PickTopmostInteractableAt(cursorPx core.Vec2, windowWidth, windowHeight uint32) (EntityID, bool) {
	return w.pickTopmost(cursorPx, windowWidth, windowHeight, func(e *Entity) bool {
		return e.Interactable != nil
	})
}

func (w *World) pickTopmost(cursorPx core.Vec2, windowWidth, windowHeight uint32, accept func(*Entity) bool) (EntityID, bool) {
	cursorWorld := w.camera.ScreenToWorld(cursorPx, windowWidth, windowHeight)
	var best EntityID
	found := false
	for i := range w.entities {
		e := &w.entities[i]
		if !accept(e) {
			continue
		}
		pos := e.Transform.Position
		if cursorWorld.X < pos.X-pickHalfExtent || cursorWorld.X > pos.X+pickHalfExtent ||
			cursorWorld.Y < pos.Y-pickHalfExtent || cursorWorld.Y > pos.Y+pickHalfExtent {
			continue
		}
		if !found || e.ID > best {
			best = e.ID
			found = true
		}
	}
	return best, found
}

func (w *World) findIndex(id EntityID) int {
	idx := sort.Search(len(w.entities), func(i int) bool {
		return w.entities[i].ID >= id
	})
	if idx < len(w.entities) && w.entities[idx].ID == id {
		return idx
	}
	return -1
}

func (w *World) pendingSpawnExists(id EntityID) bool {
	for i := range w.pendingSpawns {
		if w.pendingSpawns[i].ID == id {
			return true
		}
	}
	return false
}

func (w *World) removePendingSpawn(id EntityID) {
	for i := range w.pendingSpawns {
		if w.pendingSpawns[i].ID == id {
			w.pendingSpawns = append(w.pendingSpawns[:i], w.pendingSpawns[i+1:]...)
			return
		}
	}
}

func (w *World) clearVisualRefsTo(id EntityID) {
	if w.selectedActorVisual != nil && *w.selectedActorVisual == id {
		w.selectedActorVisual = nil
	}
	if w.hoveredInteractableVisual != nil && *w.hoveredInteractableVisual == id {
		w.hoveredInteractableVisual = nil
	}
}

func copyIDPtr(id *EntityID) *EntityID {
	if id == nil {
		return nil
	}
	copied := *id
	return &copied
}
