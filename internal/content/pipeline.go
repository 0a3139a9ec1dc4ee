package content

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
)

var pipelineLog = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "content",
})

// BuildOrLoadDefDatabase runs the compile plan and produces the merged def
// database. Compile failures are fatal; cache failures only downgrade the
// affected mod to a recompile.
func BuildOrLoadDefDatabase(paths AppPaths, request PlanRequest) (*DefDatabase, error) {
	plan, err := BuildPlan(paths, request)
	if err != nil {
		return nil, err
	}
	for _, d := range plan.Decisions {
		pipelineLog.Info("compile_plan_decision",
			"mod", d.ModID,
			"load_index", d.ModLoadIndex,
			"action", d.Action.String(),
			"reason", d.Reason.String(),
			"def_files", d.DefFileCount,
			"input_hash", shortHash(d.InputHashHex))
	}

	perMod := make([][]EntityDef, 0, len(plan.Decisions))
	for _, decision := range plan.Decisions {
		var defs []EntityDef
		switch decision.Action {
		case ActionCompile:
			defs, err = compileAndWriteMod(decision, request, plan.EnabledModsHashHex)
			if err != nil {
				return nil, err
			}
		case ActionUseCache:
			defs, err = loadCachedMod(decision, request, plan.EnabledModsHashHex)
			if err != nil {
				pipelineLog.Warn("cache_invalid_rebuilding_mod",
					"mod", decision.ModID, "reason", err.Error())
				defs, err = compileAndWriteMod(decision, request, plan.EnabledModsHashHex)
				if err != nil {
					return nil, err
				}
			}
		}
		perMod = append(perMod, defs)
	}

	merged := MergeDefs(perMod)
	pipelineLog.Info("pipeline_summary",
		"total_mods", plan.Summary.TotalMods,
		"compiled", plan.Summary.CompileCount,
		"cache_hits", plan.Summary.CacheHitCount,
		"status", plan.Summary.StatusLabel(),
		"defs", len(merged))
	return NewDefDatabase(merged), nil
}

func compileAndWriteMod(decision ModDecision, request PlanRequest, enabledHashHex string) ([]EntityDef, error) {
	defs, err := CompileModDefs(decision.SourceDir, decision.ModID)
	if err != nil {
		return nil, err
	}
	manifest := expectedManifest(decision, request, enabledHashHex)
	if err := WritePack(decision.PackPath, manifest, defs); err != nil {
		return nil, err
	}
	if err := WriteManifestAtomic(decision.ManifestPath, manifest); err != nil {
		return nil, err
	}
	return defs, nil
}

// loadCachedMod re-validates the cached manifest and pack before trusting
// the cache. The planner already checked the manifest, but the pack header
// can still disagree (truncated write, external tampering), so both layers
// are compared field for field.
func loadCachedMod(decision ModDecision, request PlanRequest, enabledHashHex string) ([]EntityDef, error) {
	expected := expectedManifest(decision, request, enabledHashHex)

	manifest, state := ReadManifest(decision.ManifestPath)
	switch state {
	case ManifestMissing:
		return nil, fmt.Errorf("manifest missing")
	case ManifestUnreadable:
		return nil, fmt.Errorf("manifest unreadable")
	}
	if !manifest.Equal(expected) {
		return nil, fmt.Errorf("manifest does not match expected identity")
	}

	pack, err := ReadPack(decision.PackPath)
	if err != nil {
		return nil, fmt.Errorf("read pack: %w", err)
	}
	if !pack.Meta.Equal(manifest) {
		return nil, fmt.Errorf("pack header does not match manifest")
	}
	return pack.Defs, nil
}

func expectedManifest(decision ModDecision, request PlanRequest, enabledHashHex string) Manifest {
	return Manifest{
		PackFormatVersion:  PackFormatVersion,
		CompilerVersion:    request.CompilerVersion,
		GameVersion:        request.GameVersion,
		ModID:              decision.ModID,
		ModLoadIndex:       decision.ModLoadIndex,
		EnabledModsHashHex: enabledHashHex,
		InputHashHex:       decision.InputHashHex,
	}
}
