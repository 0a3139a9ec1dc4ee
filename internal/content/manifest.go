package content

import (
	"encoding/json"
	"fmt"
	"os"
)

// PackFormatVersion is bumped whenever the pack byte layout changes.
// Cached packs written by other versions are recompiled.
const PackFormatVersion uint16 = 3

// Manifest is the JSON sidecar carrying a pack's seven identity fields.
// A cached pack is only reused when the manifest matches the recomputed
// expectation field for field and the pack header matches the manifest.
type Manifest struct {
	PackFormatVersion  uint16 `json:"pack_format_version"`
	CompilerVersion    string `json:"compiler_version"`
	GameVersion        string `json:"game_version"`
	ModID              string `json:"mod_id"`
	ModLoadIndex       uint32 `json:"mod_load_index"`
	EnabledModsHashHex string `json:"enabled_mods_hash_sha256_hex"`
	InputHashHex       string `json:"input_hash_sha256_hex"`
}

// ManifestReadState distinguishes a missing sidecar from a corrupt one so
// plan decisions can report the right reason.
type ManifestReadState int

const (
	ManifestPresent ManifestReadState = iota
	ManifestMissing
	ManifestUnreadable
)

// ReadManifest loads a manifest sidecar. I/O and decode failures map to the
// Missing and Unreadable states; both downgrade the plan decision to Compile
// and are never fatal.
func ReadManifest(path string) (Manifest, ManifestReadState) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, ManifestMissing
		}
		return Manifest{}, ManifestUnreadable
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, ManifestUnreadable
	}
	return m, ManifestPresent
}

// WriteManifestAtomic serializes the manifest and writes it through the
// atomic writer so readers never observe a truncated sidecar.
func WriteManifestAtomic(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest %s: marshal: %w", path, err)
	}
	data = append(data, '\n')
	return WriteFileAtomic(path, data)
}

// Equal compares all seven identity fields.
func (m Manifest) Equal(o Manifest) bool {
	return m == o
}
