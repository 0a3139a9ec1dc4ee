package content

import (
	"os"
	"path/filepath"
	"strings"
)

// BaseModID is the implicit mod compiled from assets/base at load index 0.
const BaseModID = "base"

// EnabledModsEnvVar is the comma-separated ordered mod list override.
const EnabledModsEnvVar = "ENABLED_MODS"

// AppPaths are the resolved content locations under the app root.
type AppPaths struct {
	Root           string
	BaseContentDir string
	ModsDir        string
	CacheDir       string
}

// ResolveAppPaths derives the standard layout under root and creates the
// cache directory so pack writes never race directory creation.
func ResolveAppPaths(root string) (AppPaths, error) {
	paths := AppPaths{
		Root:           root,
		BaseContentDir: filepath.Join(root, "assets", "base"),
		ModsDir:        filepath.Join(root, "mods"),
		CacheDir:       filepath.Join(root, "cache"),
	}
	if err := os.MkdirAll(filepath.Join(paths.CacheDir, "content_packs"), 0o755); err != nil {
		return AppPaths{}, &PlanError{Code: PlanCodeCreateCacheLayout, Path: paths.CacheDir, Err: err}
	}
	if err := os.MkdirAll(filepath.Join(paths.CacheDir, "saves"), 0o755); err != nil {
		return AppPaths{}, &PlanError{Code: PlanCodeCreateCacheLayout, Path: paths.CacheDir, Err: err}
	}
	return paths, nil
}

// PackPath returns the cache location of a mod's compiled pack.
func (p AppPaths) PackPath(modID string) string {
	return filepath.Join(p.CacheDir, "content_packs", modID+".pack")
}

// ManifestPath returns the cache location of a mod's manifest sidecar.
func (p AppPaths) ManifestPath(modID string) string {
	return filepath.Join(p.CacheDir, modID+".manifest.json")
}

// SavePath returns the save-file location for a scene key.
func (p AppPaths) SavePath(sceneKey string) string {
	return filepath.Join(p.CacheDir, "saves", "scene_"+sceneKey+".save.json")
}

// SourceDir returns the def source directory for a mod. The base mod lives
// under assets, user mods under mods/<id>.
func (p AppPaths) SourceDir(modID string) string {
	if modID == BaseModID {
		return p.BaseContentDir
	}
	return filepath.Join(p.ModsDir, modID)
}

// ParseEnabledModsEnv reads the enabled-mod list from the environment.
// Entries are comma separated and trimmed; empty entries are dropped.
// Duplicate and blank survivors are rejected later by the planner so that a
// config-file list goes through the same validation.
func ParseEnabledModsEnv() []string {
	raw, ok := os.LookupEnv(EnabledModsEnvVar)
	if !ok {
		return nil
	}
	var mods []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			mods = append(mods, entry)
		}
	}
	return mods
}

// validateEnabledMods rejects blank and duplicate mod ids and mods whose
// source directory does not exist.
func validateEnabledMods(paths AppPaths, enabled []string) error {
	seen := make(map[string]struct{}, len(enabled))
	for _, id := range enabled {
		if strings.TrimSpace(id) == "" {
			return &PlanError{Code: PlanCodeEmptyEnabledMod, Message: "enabled mod id is empty"}
		}
		if _, dup := seen[id]; dup {
			return &PlanError{Code: PlanCodeDuplicateEnabledMod, ModID: id, Message: "mod enabled twice"}
		}
		seen[id] = struct{}{}

		sourceDir := paths.SourceDir(id)
		info, err := os.Stat(sourceDir)
		if err != nil || !info.IsDir() {
			return &PlanError{Code: PlanCodeEnabledModMissing, ModID: id, Path: sourceDir,
				Message: "mod source directory not found"}
		}
	}
	return nil
}
