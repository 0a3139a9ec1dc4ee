package gameplay

import (
	"encoding/json"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/content"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/scene"
)

func newTestSceneWithPaths(t *testing.T, key scene.Key) (*SceneState, *scene.World, content.AppPaths) {
	t.Helper()
	paths, err := content.ResolveAppPaths(t.TempDir())
	if err != nil {
		t.Fatalf("ResolveAppPaths: %v", err)
	}
	world := scene.NewWorld()
	world.SetDefDatabase(testDefDatabase())
	state := NewSceneState(SceneConfig{
		Key:          key,
		SwitchTarget: scene.KeyB,
		Paths:        paths,
	})
	state.Load(world)
	world.ApplyPending()
	return state, world, paths
}

func validSaveGame() *SaveGame {
	target := uint64(2)
	remaining := float32(1.25)
	player := uint64(1)
	return &SaveGame{
		SaveVersion:        SaveVersion,
		SceneKey:           "a",
		CameraPosition:     Vec2JSON{X: 1, Y: -2},
		CameraZoom:         1.0,
		PlayerEntitySaveID: &player,
		NextSaveID:         3,
		ResourceCount:      1,
		Entities: []SavedEntity{
			{
				SaveID:     1,
				Position:   Vec2JSON{X: 0.5, Y: 0.5},
				Selectable: true,
				Actor:      true,
				JobState:   SavedJob{Kind: "working", TargetSaveID: &target, RemainingTime: &remaining},
			},
			{
				SaveID:   2,
				Position: Vec2JSON{X: 3.5, Y: 0.5},
				JobState: SavedJob{Kind: "idle"},
				Interactable: &SavedInteractable{
					Kind:              "ResourcePile",
					InteractionRadius: ResourcePileInteractionRadius,
					RemainingUses:     2,
				},
			},
		},
	}
}

func TestValidateSaveGameAcceptsValid(t *testing.T) {
	if err := ValidateSaveGame(validSaveGame()); err != nil {
		t.Fatalf("ValidateSaveGame: %v", err)
	}
}

func TestValidateSaveGameRejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*SaveGame)
		wantPath string
	}{
		{
			name:     "wrong version",
			mutate:   func(s *SaveGame) { s.SaveVersion = 2 },
			wantPath: "save_version",
		},
		{
			name:     "unknown scene key",
			mutate:   func(s *SaveGame) { s.SceneKey = "c" },
			wantPath: "scene_key",
		},
		{
			name:     "zoom below minimum",
			mutate:   func(s *SaveGame) { s.CameraZoom = 0.1 },
			wantPath: "camera_zoom",
		},
		{
			name: "nonzero next save id with no entities",
			mutate: func(s *SaveGame) {
				s.Entities = nil
				s.PlayerEntitySaveID = nil
			},
			wantPath: "next_save_id",
		},
		{
			name:     "next save id behind used ids",
			mutate:   func(s *SaveGame) { s.NextSaveID = 2 },
			wantPath: "entities[1].save_id",
		},
		{
			name:     "duplicate save id",
			mutate:   func(s *SaveGame) { s.Entities[1].SaveID = 1 },
			wantPath: "entities[1].save_id",
		},
		{
			name:     "save id beyond allocator",
			mutate:   func(s *SaveGame) { s.Entities[1].SaveID = 7 },
			wantPath: "entities[1].save_id",
		},
		{
			name:     "non-finite position",
			mutate:   func(s *SaveGame) { s.Entities[0].Position.X = float32(math.NaN()) },
			wantPath: "entities[0].position",
		},
		{
			name:     "interactable with zero uses",
			mutate:   func(s *SaveGame) { s.Entities[1].Interactable.RemainingUses = 0 },
			wantPath: "entities[1].interactable.remaining_uses",
		},
		{
			name:     "working job without target",
			mutate:   func(s *SaveGame) { s.Entities[0].JobState.TargetSaveID = nil },
			wantPath: "entities[0].job_state.target_save_id",
		},
		{
			name:     "unknown job kind",
			mutate:   func(s *SaveGame) { s.Entities[0].JobState.Kind = "sleeping" },
			wantPath: "entities[0].job_state.kind",
		},
		{
			name: "dangling job target",
			mutate: func(s *SaveGame) {
				dangling := uint64(9)
				s.NextSaveID = 10
				s.Entities[0].JobState.TargetSaveID = &dangling
			},
			wantPath: "entities[0].job_state.target_save_id",
		},
		{
			name: "dangling player reference",
			mutate: func(s *SaveGame) {
				dangling := uint64(2)
				s.Entities = s.Entities[:1]
				s.PlayerEntitySaveID = &dangling
				s.Entities[0].JobState = SavedJob{Kind: "idle"}
			},
			wantPath: "player_entity_save_id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			save := validSaveGame()
			tt.mutate(save)
			err := ValidateSaveGame(save)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			want := "validation failed at " + tt.wantPath
			if !strings.HasPrefix(err.Error(), want) {
				t.Errorf("error = %q, want prefix %q", err, want)
			}
		})
	}
}

func TestEmptySaveGameIsValidAndLoads(t *testing.T) {
	state, world, paths := newTestSceneWithPaths(t, scene.KeyA)

	empty := &SaveGame{
		SaveVersion: SaveVersion,
		SceneKey:    "a",
		CameraZoom:  1.0,
	}
	if err := ValidateSaveGame(empty); err != nil {
		t.Fatalf("ValidateSaveGame: %v", err)
	}

	data, err := json.Marshal(empty)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(paths.SavePath("a"), data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := state.LoadFromFile(world); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if got := len(world.Entities()); got != 0 {
		t.Fatalf("entity count = %d, want 0", got)
	}
	rebuilt := state.BuildSaveGame(world)
	if rebuilt.NextSaveID != 0 {
		t.Errorf("next_save_id = %d, want 0 after loading an empty save", rebuilt.NextSaveID)
	}
}

func TestFreshSceneAllocatesSaveIDsFromZero(t *testing.T) {
	state, world, _ := newTestSceneWithPaths(t, scene.KeyA)
	save := state.BuildSaveGame(world)
	if len(save.Entities) == 0 {
		t.Fatal("fresh scene saved no entities")
	}
	lowest := save.Entities[0].SaveID
	for _, entity := range save.Entities[1:] {
		if entity.SaveID < lowest {
			lowest = entity.SaveID
		}
	}
	if lowest != 0 {
		t.Errorf("lowest save id = %d, want allocation to start at 0", lowest)
	}
	if want := uint64(len(save.Entities)); save.NextSaveID != want {
		t.Errorf("next_save_id = %d, want %d", save.NextSaveID, want)
	}
}

func TestSaveRoundTripPreservesState(t *testing.T) {
	state, world, _ := newTestSceneWithPaths(t, scene.KeyA)
	playerID := selectPlayer(t, state, world)

	goal := core.Vec2{X: 2.5, Y: 0.35}
	tick(state, world, core.InputSnapshot{
		RightClickPressed: true,
		CursorPx:          cursorOver(world, goal),
	})
	runIdleTicks(state, world, 10)
	if err := state.SaveToFile(world); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}
	savedPos := world.FindEntity(playerID).Transform.Position

	// Branch one: keep simulating in place.
	runIdleTicks(state, world, 30)
	livePos := world.FindEntity(playerID).Transform.Position

	// Branch two: a fresh scene restored from the file, then the same ticks.
	restored := NewSceneState(state.cfg)
	restoredWorld := scene.NewWorld()
	restoredWorld.SetDefDatabase(testDefDatabase())
	restored.Load(restoredWorld)
	restoredWorld.ApplyPending()
	if err := restored.LoadFromFile(restoredWorld); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if restored.playerID == nil {
		t.Fatal("restored scene lost the player")
	}
	restoredPlayer := restoredWorld.FindEntity(*restored.playerID)
	if core.DistanceSq(restoredPlayer.Transform.Position, savedPos) > 1e-8 {
		t.Fatalf("restored position %v, want %v", restoredPlayer.Transform.Position, savedPos)
	}
	if restoredPlayer.OrderState.Kind != scene.OrderMoveTo {
		t.Fatalf("restored order = %v, want move", restoredPlayer.OrderState.Kind)
	}
	if restored.selected == nil || *restored.selected != *restored.playerID {
		t.Error("selection did not survive the round trip")
	}

	runIdleTicks(restored, restoredWorld, 30)
	restoredPos := restoredWorld.FindEntity(*restored.playerID).Transform.Position
	if math.Abs(float64(restoredPos.X-livePos.X)) > 1e-4 || math.Abs(float64(restoredPos.Y-livePos.Y)) > 1e-4 {
		t.Errorf("restored branch at %v, live branch at %v", restoredPos, livePos)
	}
}

func TestLoadRejectsSceneKeyMismatch(t *testing.T) {
	state, world, paths := newTestSceneWithPaths(t, scene.KeyA)
	save := state.BuildSaveGame(world)
	save.SceneKey = "b"
	data, err := json.Marshal(save)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(paths.SavePath("a"), data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	err = state.LoadFromFile(world)
	if err == nil || !strings.Contains(err.Error(), "scene_key") {
		t.Fatalf("err = %v, want scene_key mismatch", err)
	}
}

func TestLoadLeavesWorldIntactOnInvalidSave(t *testing.T) {
	state, world, paths := newTestSceneWithPaths(t, scene.KeyA)
	runIdleTicks(state, world, 3)
	before := state.WorldDigest(world)

	if err := os.WriteFile(paths.SavePath("a"), []byte(`{"save_version": 1}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := state.LoadFromFile(world); err == nil {
		t.Fatal("expected load to fail")
	}
	if got := state.WorldDigest(world); got != before {
		t.Error("failed load must not mutate the world")
	}
}

func TestSaveLoadViaInputEdges(t *testing.T) {
	state, world, paths := newTestSceneWithPaths(t, scene.KeyA)
	tick(state, world, core.InputSnapshot{SavePressed: true})
	if _, err := os.Stat(paths.SavePath("a")); err != nil {
		t.Fatalf("save file missing: %v", err)
	}

	resourceBefore := state.ResourceCount()
	state.resourceCount = 99
	tick(state, world, core.InputSnapshot{LoadPressed: true})
	if state.ResourceCount() != resourceBefore {
		t.Errorf("resource count = %d, want restored %d", state.ResourceCount(), resourceBefore)
	}
}
