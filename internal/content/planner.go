package content

import (
	"fmt"
	"os"
	"strings"
)

// CompileAction is what the pipeline does for one mod.
type CompileAction int

const (
	ActionCompile CompileAction = iota
	ActionUseCache
)

// String returns the action name.
func (a CompileAction) String() string {
	if a == ActionUseCache {
		return "UseCache"
	}
	return "Compile"
}

// CompileReason explains a plan decision. Reasons are checked in a fixed
// order; the first failed check wins.
type CompileReason int

const (
	ReasonCacheValid CompileReason = iota
	ReasonManifestMissing
	ReasonManifestUnreadable
	ReasonPackMissing
	ReasonVersionMismatch
	ReasonEnabledModsHashMismatch
	ReasonInputHashMismatch
	ReasonModLoadIndexMismatch
	ReasonModIDMismatch
)

// String returns the reason name.
func (r CompileReason) String() string {
	switch r {
	case ReasonCacheValid:
		return "CacheValid"
	case ReasonManifestMissing:
		return "ManifestMissing"
	case ReasonManifestUnreadable:
		return "ManifestUnreadable"
	case ReasonPackMissing:
		return "PackMissing"
	case ReasonVersionMismatch:
		return "VersionMismatch"
	case ReasonEnabledModsHashMismatch:
		return "EnabledModsHashMismatch"
	case ReasonInputHashMismatch:
		return "InputHashMismatch"
	case ReasonModLoadIndexMismatch:
		return "ModLoadIndexMismatch"
	case ReasonModIDMismatch:
		return "ModIDMismatch"
	default:
		return "Unknown"
	}
}

// PlanRequest names the inputs that feed cache identity.
type PlanRequest struct {
	EnabledMods     []string
	CompilerVersion string
	GameVersion     string
}

// ModDecision is the planner's verdict for one mod.
type ModDecision struct {
	ModID        string
	ModLoadIndex uint32
	Action       CompileAction
	Reason       CompileReason
	SourceDir    string
	PackPath     string
	ManifestPath string
	InputHashHex string
	DefFileCount int
}

// PlanSummary aggregates decisions for logging and the plan subcommand.
type PlanSummary struct {
	TotalMods     int
	CompileCount  int
	CacheHitCount int
}

// StatusLabel is the one-word pipeline status shown in overlays and logs.
func (s PlanSummary) StatusLabel() string {
	switch {
	case s.CompileCount == 0:
		return "cached"
	case s.CacheHitCount == 0:
		return "compiled"
	default:
		return "mixed"
	}
}

// Plan is the full compile plan: one decision per mod in load order.
type Plan struct {
	Decisions          []ModDecision
	EnabledModsHashHex string
	Summary            PlanSummary
}

// BuildPlan computes a decision for the implicit base mod and every enabled
// mod, in load order. Load order: base at index 0, then user mods in the
// order supplied.
func BuildPlan(paths AppPaths, request PlanRequest) (Plan, error) {
	if err := validateEnabledMods(paths, request.EnabledMods); err != nil {
		return Plan{}, err
	}

	orderedMods := append([]string{BaseModID}, request.EnabledMods...)
	enabledHashHex := HashHex(EnabledModsHash(orderedMods))

	plan := Plan{EnabledModsHashHex: enabledHashHex}
	for index, modID := range orderedMods {
		decision, err := planMod(paths, request, modID, uint32(index), enabledHashHex)
		if err != nil {
			return Plan{}, err
		}
		plan.Decisions = append(plan.Decisions, decision)
		if decision.Action == ActionCompile {
			plan.Summary.CompileCount++
		} else {
			plan.Summary.CacheHitCount++
		}
	}
	plan.Summary.TotalMods = len(plan.Decisions)
	return plan, nil
}

func planMod(paths AppPaths, request PlanRequest, modID string, loadIndex uint32, enabledHashHex string) (ModDecision, error) {
	sourceDir := paths.SourceDir(modID)
	inputHash, err := ModInputHash(sourceDir)
	if err != nil {
		return ModDecision{}, err
	}
	files, err := collectDefFiles(sourceDir, modID)
	if err != nil {
		return ModDecision{}, err
	}

	decision := ModDecision{
		ModID:        modID,
		ModLoadIndex: loadIndex,
		SourceDir:    sourceDir,
		PackPath:     paths.PackPath(modID),
		ManifestPath: paths.ManifestPath(modID),
		InputHashHex: HashHex(inputHash),
		DefFileCount: len(files),
	}

	expected := Manifest{
		PackFormatVersion:  PackFormatVersion,
		CompilerVersion:    request.CompilerVersion,
		GameVersion:        request.GameVersion,
		ModID:              modID,
		ModLoadIndex:       loadIndex,
		EnabledModsHashHex: enabledHashHex,
		InputHashHex:       decision.InputHashHex,
	}
	decision.Action, decision.Reason = evaluateCache(decision, expected)
	return decision, nil
}

// evaluateCache runs the cache-validity checks in their fixed order.
func evaluateCache(decision ModDecision, expected Manifest) (CompileAction, CompileReason) {
	manifest, state := ReadManifest(decision.ManifestPath)
	switch state {
	case ManifestMissing:
		return ActionCompile, ReasonManifestMissing
	case ManifestUnreadable:
		return ActionCompile, ReasonManifestUnreadable
	}

	if _, err := os.Stat(decision.PackPath); err != nil {
		return ActionCompile, ReasonPackMissing
	}

	if manifest.PackFormatVersion != expected.PackFormatVersion ||
		manifest.CompilerVersion != expected.CompilerVersion ||
		manifest.GameVersion != expected.GameVersion {
		return ActionCompile, ReasonVersionMismatch
	}
	if manifest.EnabledModsHashHex != expected.EnabledModsHashHex {
		return ActionCompile, ReasonEnabledModsHashMismatch
	}
	if manifest.InputHashHex != expected.InputHashHex {
		return ActionCompile, ReasonInputHashMismatch
	}
	if manifest.ModLoadIndex != expected.ModLoadIndex {
		return ActionCompile, ReasonModLoadIndexMismatch
	}
	if manifest.ModID != expected.ModID {
		return ActionCompile, ReasonModIDMismatch
	}
	return ActionUseCache, ReasonCacheValid
}

// RenderHumanReadable formats the plan for terminal output.
func (p Plan) RenderHumanReadable() string {
	var b strings.Builder
	fmt.Fprintf(&b, "compile plan: %d mod(s), %d to compile, %d cache hit(s), status %s\n",
		p.Summary.TotalMods, p.Summary.CompileCount, p.Summary.CacheHitCount, p.Summary.StatusLabel())
	fmt.Fprintf(&b, "enabled_mods_hash: %s\n", p.EnabledModsHashHex)
	for _, d := range p.Decisions {
		fmt.Fprintf(&b, "  [%d] %-16s %-8s %-24s files=%d input=%s\n",
			d.ModLoadIndex, d.ModID, d.Action, d.Reason, d.DefFileCount, shortHash(d.InputHashHex))
	}
	return b.String()
}

func shortHash(hexDigest string) string {
	if len(hexDigest) > 12 {
		return hexDigest[:12]
	}
	return hexDigest
}
