package gameplay

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/scene"
)

// WorldDigest hashes the simulation-relevant scene state into a single
// xxhash64 value. Two runs that fed identical input snapshots through
// identical ticks produce identical digests; any divergence in entity
// state, orders, health, statuses or the camera shows up here.
func (s *SceneState) WorldDigest(world *scene.World) uint64 {
	d := digestWriter{h: xxhash.New()}
	d.u64(s.tickIndex)
	d.u32(s.resourceCount)
	d.u64(uint64(s.nextSaveID))

	camera := world.Camera()
	d.vec2(camera.Position)
	d.f32(camera.Zoom)
	if s.selected != nil {
		d.u64(uint64(s.saveIDByEntity[*s.selected]))
	} else {
		d.u64(0)
	}

	entities := world.Entities()
	d.u32(uint32(len(entities)))
	for i := range entities {
		entity := &entities[i]
		d.u64(uint64(entity.ID))
		d.u64(uint64(s.saveIDByEntity[entity.ID]))
		d.vec2(entity.Transform.Position)
		d.bool(entity.Selectable)
		d.bool(entity.Actor)

		d.u32(uint32(entity.OrderState.Kind))
		d.vec2(entity.OrderState.Point)
		d.u64(uint64(entity.OrderState.TargetSaveID))
		d.f32(entity.OrderState.RemainingTime)

		if entity.Interactable != nil {
			d.u32(uint32(entity.Interactable.Kind))
			d.f32(entity.Interactable.InteractionRadius)
			d.u32(entity.Interactable.RemainingUses)
		} else {
			d.u32(math.MaxUint32)
		}

		if health, ok := s.healthByEntity[entity.ID]; ok {
			d.u32(health.Current)
			d.u32(health.Max)
		} else {
			d.u32(math.MaxUint32)
		}

		statuses := s.statusesByEntity[entity.ID]
		d.u32(uint32(len(statuses)))
		for _, status := range statuses {
			d.bytes([]byte(status.ID))
			d.f32(status.RemainingSeconds)
		}
	}
	return d.h.Sum64()
}

type digestWriter struct {
	h   *xxhash.Digest
	buf [8]byte
}

func (d *digestWriter) u32(v uint32) {
	binary.LittleEndian.PutUint32(d.buf[:4], v)
	d.h.Write(d.buf[:4])
}

func (d *digestWriter) u64(v uint64) {
	binary.LittleEndian.PutUint64(d.buf[:8], v)
	d.h.Write(d.buf[:8])
}

func (d *digestWriter) f32(v float32) {
	d.u32(math.Float32bits(v))
}

func (d *digestWriter) vec2(v core.Vec2) {
	d.f32(v.X)
	d.f32(v.Y)
}

func (d *digestWriter) bool(v bool) {
	if v {
		d.h.Write([]byte{1})
	} else {
		d.h.Write([]byte{0})
	}
}

func (d *digestWriter) bytes(b []byte) {
	d.u32(uint32(len(b)))
	d.h.Write(b)
}
