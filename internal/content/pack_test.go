package content

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
)

func testManifest() Manifest {
	return Manifest{
		PackFormatVersion:  PackFormatVersion,
		CompilerVersion:    "test-compiler",
		GameVersion:        "test-game",
		ModID:              "base",
		ModLoadIndex:       0,
		EnabledModsHashHex: HashHex(EnabledModsHash([]string{"base"})),
		InputHashHex:       HashHex(PayloadHash([]byte("input"))),
	}
}

func testDefs() []EntityDef {
	health := uint32(100)
	damage := uint32(25)
	aggro := float32(6.0)
	return []EntityDef{
		{
			DefName:    "proto.player",
			Label:      "Player",
			Renderable: core.RenderableDesc{Kind: core.RenderablePlaceholder, DebugName: "proto.player"},
			MoveSpeed:  5.0,
			HealthMax:  &health,
			Tags:       []string{"actor"},
		},
		{
			DefName:     "proto.mob",
			Label:       "Mob",
			Renderable:  core.RenderableDesc{Kind: core.RenderableSprite, SpriteKey: "mob_south", DebugName: "proto.mob"},
			MoveSpeed:   3.5,
			BaseDamage:  &damage,
			AggroRadius: &aggro,
		},
	}
}

func TestPackRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base.pack")
	meta := testManifest()
	defs := testDefs()

	if err := WritePack(path, meta, defs); err != nil {
		t.Fatalf("write: %v", err)
	}
	pack, err := ReadPack(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if !pack.Meta.Equal(meta) {
		t.Errorf("meta mismatch:\n got %+v\nwant %+v", pack.Meta, meta)
	}
	if !reflect.DeepEqual(pack.Defs, defs) {
		t.Errorf("defs mismatch:\n got %+v\nwant %+v", pack.Defs, defs)
	}
}

func TestReadPackRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base.pack")
	if err := os.WriteFile(path, []byte("XXXXjunk"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := ReadPack(path); err == nil || !strings.Contains(err.Error(), "bad magic") {
		t.Errorf("expected bad magic error, got %v", err)
	}
}

func TestReadPackDetectsPayloadCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base.pack")
	if err := WritePack(path, testManifest(), testDefs()); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	// Flip a byte in the payload, past the fixed header region.
	data[len(data)-1] ^= 0xFF
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	if _, err := ReadPack(path); err == nil {
		t.Error("corrupted payload accepted")
	}
}

func TestReadPackDetectsHeaderCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base.pack")
	meta := testManifest()
	if err := WritePack(path, meta, testDefs()); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	// mod_load_index sits after magic(4) + version(2) + three length-prefixed
	// strings. Corrupting it must break the header/manifest comparison.
	offset := 4 + 2
	for i := 0; i < 3; i++ {
		n := int(uint16(data[offset]) | uint16(data[offset+1])<<8)
		offset += 2 + n
	}
	data[offset] = 1
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	pack, err := ReadPack(path)
	if err != nil {
		t.Fatalf("read after header edit: %v", err)
	}
	if pack.Meta.Equal(meta) {
		t.Error("header corruption not reflected in decoded meta")
	}
}

func TestReadPackRejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base.pack")
	if err := WritePack(path, testManifest(), testDefs()); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, _ := os.ReadFile(path)
	if err := os.WriteFile(path, data[:len(data)/2], 0o644); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if _, err := ReadPack(path); err == nil {
		t.Error("truncated pack accepted")
	}
}
