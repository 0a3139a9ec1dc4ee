package scene

import (
	"testing"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
)

func placeholder(name string) core.RenderableDesc {
	return core.RenderableDesc{Kind: core.RenderablePlaceholder, DebugName: name}
}

func at(x, y float32) core.Transform {
	return core.Transform{Position: core.Vec2{X: x, Y: y}}
}

func TestSpawnIsInvisibleUntilApplyPending(t *testing.T) {
	w := NewWorld()
	id := w.SpawnActor(at(0, 0), placeholder("a"))

	if w.FindEntity(id) != nil {
		t.Error("entity visible before ApplyPending")
	}
	w.ApplyPending()
	if w.FindEntity(id) == nil {
		t.Error("entity missing after ApplyPending")
	}
}

func TestApplyPendingRunsDespawnsBeforeSpawns(t *testing.T) {
	w := NewWorld()
	old := w.SpawnActor(at(0, 0), placeholder("old"))
	w.ApplyPending()

	fresh := w.SpawnActor(at(1, 0), placeholder("fresh"))
	if !w.Despawn(old) {
		t.Fatal("despawn of live entity returned false")
	}
	w.ApplyPending()

	if w.FindEntity(old) != nil {
		t.Error("despawned entity still live")
	}
	if w.FindEntity(fresh) == nil {
		t.Error("spawned entity missing")
	}
	if w.EntityCount() != 1 {
		t.Errorf("entity count = %d, want 1", w.EntityCount())
	}
}

func TestDespawnIsIdempotentAndReportsLiveness(t *testing.T) {
	w := NewWorld()
	id := w.SpawnActor(at(0, 0), placeholder("a"))
	w.ApplyPending()

	if !w.Despawn(id) {
		t.Error("first despawn returned false")
	}
	if !w.Despawn(id) {
		t.Error("queued despawn should still report true")
	}
	w.ApplyPending()
	if w.Despawn(id) {
		t.Error("despawn of dead entity returned true")
	}
	if w.Despawn(EntityID(9999)) {
		t.Error("despawn of unknown entity returned true")
	}
}

func TestEntitiesIterateInAscendingIDOrder(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 5; i++ {
		w.SpawnActor(at(float32(i), 0), placeholder("e"))
	}
	w.ApplyPending()

	prev := EntityID(0)
	for _, e := range w.Entities() {
		if e.ID <= prev {
			t.Fatalf("entity order violated: %d after %d", e.ID, prev)
		}
		prev = e.ID
	}
}

func TestPickTopmostSelectableTieBreaksOnHigherID(t *testing.T) {
	w := NewWorld()
	low := w.SpawnActor(at(0, 0), placeholder("low"))
	high := w.SpawnActor(at(0, 0), placeholder("high"))
	w.ApplyPending()
	_ = low

	// Cursor at the window center maps to the camera position (0,0) where
	// both entities overlap.
	cursor := core.Vec2{X: 640, Y: 360}
	picked, ok := w.PickTopmostSelectableAt(cursor, 1280, 720)
	if !ok {
		t.Fatal("nothing picked at overlapping entities")
	}
	if picked != high {
		t.Errorf("picked %d, want higher id %d", picked, high)
	}
}

func TestPickMissesOutsideHalfExtent(t *testing.T) {
	w := NewWorld()
	w.SpawnActor(at(10, 10), placeholder("far"))
	w.ApplyPending()

	if _, ok := w.PickTopmostSelectableAt(core.Vec2{X: 640, Y: 360}, 1280, 720); ok {
		t.Error("picked an entity far from the cursor")
	}
}

func TestPickInteractableIgnoresPlainActors(t *testing.T) {
	w := NewWorld()
	w.SpawnActor(at(0, 0), placeholder("actor"))
	pile := w.Spawn(at(0, 0), placeholder("pile"), SpawnOptions{
		Interactable: &Interactable{Kind: InteractableResourcePile, InteractionRadius: 0.75, RemainingUses: 3},
	})
	w.ApplyPending()

	picked, ok := w.PickTopmostInteractableAt(core.Vec2{X: 640, Y: 360}, 1280, 720)
	if !ok || picked != pile {
		t.Errorf("picked %v ok=%v, want pile %v", picked, ok, pile)
	}
}

func TestDebugMarkersExpireAndPreserveFIFO(t *testing.T) {
	w := NewWorld()
	w.PushDebugMarker(DebugMarker{Kind: MarkerOrder, TTLSeconds: 0.05})
	w.PushDebugMarker(DebugMarker{Kind: MarkerOrder, TTLSeconds: 0.75})

	w.TickDebugMarkers(0.1)
	markers := w.DebugMarkers()
	if len(markers) != 1 {
		t.Fatalf("got %d markers, want 1", len(markers))
	}
	if markers[0].TTLSeconds <= 0.6 {
		t.Errorf("wrong marker survived: ttl=%v", markers[0].TTLSeconds)
	}
}

func TestDebugMarkerBufferDropsOldestOnOverflow(t *testing.T) {
	w := NewWorld()
	for i := 0; i < maxDebugMarkers+3; i++ {
		w.PushDebugMarker(DebugMarker{
			Kind:          MarkerOrder,
			PositionWorld: core.Vec2{X: float32(i)},
			TTLSeconds:    1,
		})
	}
	markers := w.DebugMarkers()
	if len(markers) != maxDebugMarkers {
		t.Fatalf("got %d markers, want cap %d", len(markers), maxDebugMarkers)
	}
	if markers[0].PositionWorld.X != 3 {
		t.Errorf("oldest surviving marker x = %v, want 3", markers[0].PositionWorld.X)
	}
	if markers[len(markers)-1].PositionWorld.X != float32(maxDebugMarkers+2) {
		t.Errorf("newest marker x = %v", markers[len(markers)-1].PositionWorld.X)
	}
}

func TestCameraZoomStepsRoundTripUpToClamp(t *testing.T) {
	cam := NewCamera()
	start := cam.Zoom
	cam.ApplyZoomSteps(5)
	cam.ApplyZoomSteps(-5)
	diff := cam.Zoom - start
	if diff < -1e-4 || diff > 1e-4 {
		t.Errorf("zoom after +5/-5 steps = %v, want %v", cam.Zoom, start)
	}

	cam.ApplyZoomSteps(-1000)
	if cam.Zoom != MinZoom {
		t.Errorf("zoom = %v, want clamp at %v", cam.Zoom, MinZoom)
	}
}

func TestNewTilemapValidatesShape(t *testing.T) {
	if _, err := NewTilemap(4, 3, core.Vec2{}, make([]uint16, 11)); err == nil {
		t.Error("short tile slice accepted")
	}
	tm, err := NewTilemap(4, 3, core.Vec2{}, make([]uint16, 12))
	if err != nil {
		t.Fatalf("valid tilemap rejected: %v", err)
	}
	if _, ok := tm.TileAt(4, 0); ok {
		t.Error("out-of-bounds TileAt returned ok")
	}
}
