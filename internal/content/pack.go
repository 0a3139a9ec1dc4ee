package content

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"os"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
)

// packMagic opens every content pack file.
var packMagic = [4]byte{'P', 'G', 'C', 'P'}

// Record flag bits gating optional def fields.
const (
	packFlagHealthMax      = 1 << 0
	packFlagBaseDamage     = 1 << 1
	packFlagAggroRadius    = 1 << 2
	packFlagAttackRange    = 1 << 3
	packFlagAttackCooldown = 1 << 4
)

// Pack is a decoded content pack: identity header plus def records.
type Pack struct {
	Meta Manifest
	Defs []EntityDef
}

// WritePack encodes defs with the given identity header and writes the file
// atomically. The header must be bit-for-bit reproducible: cache validation
// compares it field for field against the manifest sidecar.
func WritePack(path string, meta Manifest, defs []EntityDef) error {
	payload := &bytes.Buffer{}
	for i := range defs {
		if err := writePackRecord(payload, &defs[i]); err != nil {
			return &PackError{Path: path, Message: "encode record", Err: err}
		}
	}
	payloadBytes := payload.Bytes()
	payloadHash := PayloadHash(payloadBytes)

	enabledHash, err := hexTo32(meta.EnabledModsHashHex)
	if err != nil {
		return &PackError{Path: path, Message: "encode enabled_mods_hash", Err: err}
	}
	inputHash, err := hexTo32(meta.InputHashHex)
	if err != nil {
		return &PackError{Path: path, Message: "encode input_hash", Err: err}
	}

	buf := &bytes.Buffer{}
	buf.Write(packMagic[:])
	writeU16(buf, meta.PackFormatVersion)
	writeString(buf, meta.CompilerVersion)
	writeString(buf, meta.GameVersion)
	writeString(buf, meta.ModID)
	writeU32(buf, meta.ModLoadIndex)
	buf.Write(enabledHash[:])
	buf.Write(inputHash[:])
	writeU32(buf, uint32(len(defs)))
	writeU32(buf, uint32(len(payloadBytes)))
	buf.Write(payloadHash[:])
	buf.Write(payloadBytes)

	return WriteFileAtomic(path, buf.Bytes())
}

// ReadPack decodes a content pack, verifying magic, lengths and the payload
// digest. Any deviation invalidates the pack.
func ReadPack(path string) (Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pack{}, &PackError{Path: path, Message: "read file", Err: err}
	}
	r := &packReader{data: data}

	var magic [4]byte
	if err := r.bytes(magic[:]); err != nil {
		return Pack{}, &PackError{Path: path, Message: "read magic", Err: err}
	}
	if magic != packMagic {
		return Pack{}, &PackError{Path: path, Message: fmt.Sprintf("bad magic %q", magic[:])}
	}

	var meta Manifest
	if meta.PackFormatVersion, err = r.u16(); err != nil {
		return Pack{}, &PackError{Path: path, Message: "read pack_format_version", Err: err}
	}
	if meta.CompilerVersion, err = r.str(); err != nil {
		return Pack{}, &PackError{Path: path, Message: "read compiler_version", Err: err}
	}
	if meta.GameVersion, err = r.str(); err != nil {
		return Pack{}, &PackError{Path: path, Message: "read game_version", Err: err}
	}
	if meta.ModID, err = r.str(); err != nil {
		return Pack{}, &PackError{Path: path, Message: "read mod_id", Err: err}
	}
	if meta.ModLoadIndex, err = r.u32(); err != nil {
		return Pack{}, &PackError{Path: path, Message: "read mod_load_index", Err: err}
	}
	var enabledHash, inputHash [32]byte
	if err := r.bytes(enabledHash[:]); err != nil {
		return Pack{}, &PackError{Path: path, Message: "read enabled_mods_hash", Err: err}
	}
	if err := r.bytes(inputHash[:]); err != nil {
		return Pack{}, &PackError{Path: path, Message: "read input_hash", Err: err}
	}
	meta.EnabledModsHashHex = hex.EncodeToString(enabledHash[:])
	meta.InputHashHex = hex.EncodeToString(inputHash[:])

	defCount, err := r.u32()
	if err != nil {
		return Pack{}, &PackError{Path: path, Message: "read def_count", Err: err}
	}
	payloadLen, err := r.u32()
	if err != nil {
		return Pack{}, &PackError{Path: path, Message: "read payload_len", Err: err}
	}
	var wantPayloadHash [32]byte
	if err := r.bytes(wantPayloadHash[:]); err != nil {
		return Pack{}, &PackError{Path: path, Message: "read payload_hash", Err: err}
	}
	if uint32(r.remaining()) != payloadLen {
		return Pack{}, &PackError{Path: path,
			Message: fmt.Sprintf("payload length mismatch: header says %d, file has %d", payloadLen, r.remaining())}
	}
	payload := r.rest()
	if PayloadHash(payload) != wantPayloadHash {
		return Pack{}, &PackError{Path: path, Message: "payload hash mismatch"}
	}

	pr := &packReader{data: payload}
	defs := make([]EntityDef, 0, defCount)
	for i := uint32(0); i < defCount; i++ {
		def, err := readPackRecord(pr)
		if err != nil {
			return Pack{}, &PackError{Path: path, Message: fmt.Sprintf("decode record %d", i), Err: err}
		}
		defs = append(defs, def)
	}
	if pr.remaining() != 0 {
		return Pack{}, &PackError{Path: path,
			Message: fmt.Sprintf("%d trailing payload bytes", pr.remaining())}
	}
	return Pack{Meta: meta, Defs: defs}, nil
}

func writePackRecord(buf *bytes.Buffer, def *EntityDef) error {
	writeString(buf, def.DefName)
	writeString(buf, def.Label)

	var flags byte
	if def.HealthMax != nil {
		flags |= packFlagHealthMax
	}
	if def.BaseDamage != nil {
		flags |= packFlagBaseDamage
	}
	if def.AggroRadius != nil {
		flags |= packFlagAggroRadius
	}
	if def.AttackRange != nil {
		flags |= packFlagAttackRange
	}
	if def.AttackCooldownSeconds != nil {
		flags |= packFlagAttackCooldown
	}
	buf.WriteByte(flags)

	switch def.Renderable.Kind {
	case core.RenderablePlaceholder:
		buf.WriteByte(0)
	case core.RenderableSprite:
		buf.WriteByte(1)
		writeString(buf, def.Renderable.SpriteKey)
	default:
		return fmt.Errorf("unsupported renderable kind %d", def.Renderable.Kind)
	}

	writeU32(buf, math.Float32bits(def.MoveSpeed))
	if def.HealthMax != nil {
		writeU32(buf, *def.HealthMax)
	}
	if def.BaseDamage != nil {
		writeU32(buf, *def.BaseDamage)
	}
	if def.AggroRadius != nil {
		writeU32(buf, math.Float32bits(*def.AggroRadius))
	}
	if def.AttackRange != nil {
		writeU32(buf, math.Float32bits(*def.AttackRange))
	}
	if def.AttackCooldownSeconds != nil {
		writeU32(buf, math.Float32bits(*def.AttackCooldownSeconds))
	}

	writeU16(buf, uint16(len(def.Tags)))
	for _, tag := range def.Tags {
		writeString(buf, tag)
	}
	return nil
}

func readPackRecord(r *packReader) (EntityDef, error) {
	var def EntityDef
	var err error
	if def.DefName, err = r.str(); err != nil {
		return def, fmt.Errorf("def name: %w", err)
	}
	if def.Label, err = r.str(); err != nil {
		return def, fmt.Errorf("label: %w", err)
	}
	flags, err := r.u8()
	if err != nil {
		return def, fmt.Errorf("flags: %w", err)
	}

	kind, err := r.u8()
	if err != nil {
		return def, fmt.Errorf("renderable kind: %w", err)
	}
	switch kind {
	case 0:
		def.Renderable = core.RenderableDesc{Kind: core.RenderablePlaceholder, DebugName: def.DefName}
	case 1:
		key, err := r.str()
		if err != nil {
			return def, fmt.Errorf("sprite key: %w", err)
		}
		def.Renderable = core.RenderableDesc{Kind: core.RenderableSprite, SpriteKey: key, DebugName: def.DefName}
	default:
		return def, fmt.Errorf("unknown renderable kind %d", kind)
	}

	speedBits, err := r.u32()
	if err != nil {
		return def, fmt.Errorf("move speed: %w", err)
	}
	def.MoveSpeed = math.Float32frombits(speedBits)

	if def.HealthMax, err = readOptionalU32(r, flags, packFlagHealthMax, "healthMax"); err != nil {
		return def, err
	}
	if def.BaseDamage, err = readOptionalU32(r, flags, packFlagBaseDamage, "baseDamage"); err != nil {
		return def, err
	}
	if def.AggroRadius, err = readOptionalF32(r, flags, packFlagAggroRadius, "aggroRadius"); err != nil {
		return def, err
	}
	if def.AttackRange, err = readOptionalF32(r, flags, packFlagAttackRange, "attackRange"); err != nil {
		return def, err
	}
	if def.AttackCooldownSeconds, err = readOptionalF32(r, flags, packFlagAttackCooldown, "attackCooldownSeconds"); err != nil {
		return def, err
	}

	tagCount, err := r.u16()
	if err != nil {
		return def, fmt.Errorf("tag count: %w", err)
	}
	for i := uint16(0); i < tagCount; i++ {
		tag, err := r.str()
		if err != nil {
			return def, fmt.Errorf("tag %d: %w", i, err)
		}
		def.Tags = append(def.Tags, tag)
	}
	return def, nil
}

func readOptionalU32(r *packReader, flags, bit byte, field string) (*uint32, error) {
	if flags&bit == 0 {
		return nil, nil
	}
	v, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return &v, nil
}

func readOptionalF32(r *packReader, flags, bit byte, field string) (*float32, error) {
	if flags&bit == 0 {
		return nil, nil
	}
	bits, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	f := math.Float32frombits(bits)
	return &f, nil
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeU16(buf, uint16(len(s)))
	buf.WriteString(s)
}

func hexTo32(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("expected 32 hash bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// packReader is a bounds-checked little-endian cursor over pack bytes.
type packReader struct {
	data []byte
	off  int
}

func (r *packReader) remaining() int { return len(r.data) - r.off }

func (r *packReader) rest() []byte {
	out := r.data[r.off:]
	r.off = len(r.data)
	return out
}

func (r *packReader) bytes(dst []byte) error {
	if r.remaining() < len(dst) {
		return fmt.Errorf("unexpected end of pack (want %d bytes, have %d)", len(dst), r.remaining())
	}
	copy(dst, r.data[r.off:])
	r.off += len(dst)
	return nil
}

func (r *packReader) u8() (byte, error) {
	var b [1]byte
	if err := r.bytes(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *packReader) u16() (uint16, error) {
	var b [2]byte
	if err := r.bytes(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (r *packReader) u32() (uint32, error) {
	var b [4]byte
	if err := r.bytes(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (r *packReader) str() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	if r.remaining() < int(n) {
		return "", fmt.Errorf("string length %d exceeds remaining %d", n, r.remaining())
	}
	s := string(r.data[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}
