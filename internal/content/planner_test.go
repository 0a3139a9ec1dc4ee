package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupAppRoot(t *testing.T) AppPaths {
	t.Helper()
	paths, err := ResolveAppPaths(t.TempDir())
	if err != nil {
		t.Fatalf("resolve paths: %v", err)
	}
	if err := os.MkdirAll(paths.BaseContentDir, 0o755); err != nil {
		t.Fatalf("mkdir base: %v", err)
	}
	return paths
}

func seedBaseDefs(t *testing.T, paths AppPaths) {
	t.Helper()
	writeDefFile(t, paths.BaseContentDir, "defs.yaml", `
defs:
  - name: proto.player
    label: Player
    tags: [actor]
`)
}

func seedMod(t *testing.T, paths AppPaths, modID, label string) {
	t.Helper()
	writeDefFile(t, filepath.Join(paths.ModsDir, modID), "defs.yaml",
		"defs:\n  - name: proto.player\n    label: "+label+"\n")
}

func testRequest(mods ...string) PlanRequest {
	return PlanRequest{
		EnabledMods:     mods,
		CompilerVersion: "test-compiler",
		GameVersion:     "test-game",
	}
}

func TestBuildPlanFirstRunCompilesEverything(t *testing.T) {
	paths := setupAppRoot(t)
	seedBaseDefs(t, paths)
	seedMod(t, paths, "moda", "Moda")

	plan, err := BuildPlan(paths, testRequest("moda"))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(plan.Decisions) != 2 {
		t.Fatalf("got %d decisions, want 2 (base + moda)", len(plan.Decisions))
	}
	if plan.Decisions[0].ModID != BaseModID || plan.Decisions[0].ModLoadIndex != 0 {
		t.Errorf("base must come first at index 0, got %+v", plan.Decisions[0])
	}
	for _, d := range plan.Decisions {
		if d.Action != ActionCompile || d.Reason != ReasonManifestMissing {
			t.Errorf("mod %s: action=%s reason=%s, want Compile/ManifestMissing", d.ModID, d.Action, d.Reason)
		}
	}
	if plan.Summary.StatusLabel() != "compiled" {
		t.Errorf("status = %s", plan.Summary.StatusLabel())
	}
}

func TestBuildPlanCacheHitAfterPipelineRun(t *testing.T) {
	paths := setupAppRoot(t)
	seedBaseDefs(t, paths)
	req := testRequest()

	if _, err := BuildOrLoadDefDatabase(paths, req); err != nil {
		t.Fatalf("first build: %v", err)
	}

	plan, err := BuildPlan(paths, req)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	d := plan.Decisions[0]
	if d.Action != ActionUseCache || d.Reason != ReasonCacheValid {
		t.Errorf("action=%s reason=%s, want UseCache/CacheValid", d.Action, d.Reason)
	}
	if plan.Summary.StatusLabel() != "cached" {
		t.Errorf("status = %s", plan.Summary.StatusLabel())
	}
}

func TestBuildPlanReasons(t *testing.T) {
	type mutate func(t *testing.T, paths AppPaths, req *PlanRequest)
	tests := []struct {
		name       string
		mutation   mutate
		wantReason CompileReason
	}{
		{
			name: "manifest missing",
			mutation: func(t *testing.T, paths AppPaths, req *PlanRequest) {
				if err := os.Remove(paths.ManifestPath(BaseModID)); err != nil {
					t.Fatalf("remove manifest: %v", err)
				}
			},
			wantReason: ReasonManifestMissing,
		},
		{
			name: "manifest unreadable",
			mutation: func(t *testing.T, paths AppPaths, req *PlanRequest) {
				if err := os.WriteFile(paths.ManifestPath(BaseModID), []byte("{not json"), 0o644); err != nil {
					t.Fatalf("corrupt manifest: %v", err)
				}
			},
			wantReason: ReasonManifestUnreadable,
		},
		{
			name: "pack missing",
			mutation: func(t *testing.T, paths AppPaths, req *PlanRequest) {
				if err := os.Remove(paths.PackPath(BaseModID)); err != nil {
					t.Fatalf("remove pack: %v", err)
				}
			},
			wantReason: ReasonPackMissing,
		},
		{
			name: "compiler version changed",
			mutation: func(t *testing.T, paths AppPaths, req *PlanRequest) {
				req.CompilerVersion = "newer-compiler"
			},
			wantReason: ReasonVersionMismatch,
		},
		{
			name: "game version changed",
			mutation: func(t *testing.T, paths AppPaths, req *PlanRequest) {
				req.GameVersion = "newer-game"
			},
			wantReason: ReasonVersionMismatch,
		},
		{
			name: "def source edited",
			mutation: func(t *testing.T, paths AppPaths, req *PlanRequest) {
				writeDefFile(t, paths.BaseContentDir, "defs.yaml",
					"defs:\n  - name: proto.player\n    label: Edited\n")
			},
			wantReason: ReasonInputHashMismatch,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			paths := setupAppRoot(t)
			seedBaseDefs(t, paths)
			req := testRequest()
			if _, err := BuildOrLoadDefDatabase(paths, req); err != nil {
				t.Fatalf("seed pipeline run: %v", err)
			}

			tc.mutation(t, paths, &req)

			plan, err := BuildPlan(paths, req)
			if err != nil {
				t.Fatalf("plan: %v", err)
			}
			d := plan.Decisions[0]
			if d.Action != ActionCompile {
				t.Fatalf("action = %s, want Compile", d.Action)
			}
			if d.Reason != tc.wantReason {
				t.Errorf("reason = %s, want %s", d.Reason, tc.wantReason)
			}
		})
	}
}

func TestBuildPlanEnabledModsHashChangesWithList(t *testing.T) {
	paths := setupAppRoot(t)
	seedBaseDefs(t, paths)
	seedMod(t, paths, "moda", "Moda")
	req := testRequest()
	if _, err := BuildOrLoadDefDatabase(paths, req); err != nil {
		t.Fatalf("seed pipeline run: %v", err)
	}

	plan, err := BuildPlan(paths, testRequest("moda"))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if plan.Decisions[0].Reason != ReasonEnabledModsHashMismatch {
		t.Errorf("base reason = %s, want EnabledModsHashMismatch", plan.Decisions[0].Reason)
	}
}

func TestBuildPlanRejectsBadEnabledModLists(t *testing.T) {
	paths := setupAppRoot(t)
	seedBaseDefs(t, paths)
	seedMod(t, paths, "moda", "Moda")

	tests := []struct {
		name     string
		mods     []string
		wantCode PlanErrorCode
	}{
		{"empty id", []string{" "}, PlanCodeEmptyEnabledMod},
		{"duplicate id", []string{"moda", "moda"}, PlanCodeDuplicateEnabledMod},
		{"missing mod dir", []string{"ghost"}, PlanCodeEnabledModMissing},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildPlan(paths, testRequest(tc.mods...))
			var planErr *PlanError
			if !errors.As(err, &planErr) {
				t.Fatalf("expected PlanError, got %v", err)
			}
			if planErr.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", planErr.Code, tc.wantCode)
			}
		})
	}
}

func TestEnabledModsHashIsOrderSensitive(t *testing.T) {
	ab := EnabledModsHash([]string{"base", "moda", "modb"})
	ba := EnabledModsHash([]string{"base", "modb", "moda"})
	if ab == ba {
		t.Error("hash should depend on mod order")
	}
	// Separator must prevent boundary ambiguity.
	joined := EnabledModsHash([]string{"ab"})
	split := EnabledModsHash([]string{"a", "b"})
	if joined == split {
		t.Error("hash should separate mod ids")
	}
}
