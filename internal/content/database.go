package content

import (
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
)

// EntityDefID indexes into a DefDatabase. It is valid only for the lifetime
// of the database that produced it.
type EntityDefID uint32

// EntityDef is a compiled entity archetype: the spawn-time template for an
// entity. Optional combat fields are nil when the def does not carry them.
type EntityDef struct {
	ID                    EntityDefID
	DefName               string
	Label                 string
	Renderable            core.RenderableDesc
	MoveSpeed             float32
	HealthMax             *uint32
	BaseDamage            *uint32
	AggroRadius           *float32
	AttackRange           *float32
	AttackCooldownSeconds *float32
	Tags                  []string
}

// HasTag reports whether the def carries the given tag.
func (d *EntityDef) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DefDatabase is the merged, frozen view of all compiled entity defs.
// Built once at startup and shared by reference; never mutated afterwards.
type DefDatabase struct {
	defs      []EntityDef
	idsByName map[string]EntityDefID
}

// NewDefDatabase assigns sequential ids to the given defs (already merged
// and ordered) and builds the name index.
func NewDefDatabase(defs []EntityDef) *DefDatabase {
	idsByName := make(map[string]EntityDefID, len(defs))
	for i := range defs {
		id := EntityDefID(i)
		defs[i].ID = id
		idsByName[defs[i].DefName] = id
	}
	return &DefDatabase{defs: defs, idsByName: idsByName}
}

// DefIDByName looks up a def id by name. The second result is false when the
// name is unknown.
func (db *DefDatabase) DefIDByName(name string) (EntityDefID, bool) {
	id, ok := db.idsByName[name]
	return id, ok
}

// Def returns the def for an id, or nil if the id is out of range.
func (db *DefDatabase) Def(id EntityDefID) *EntityDef {
	if int(id) >= len(db.defs) {
		return nil
	}
	return &db.defs[id]
}

// Defs returns all defs in id order.
func (db *DefDatabase) Defs() []EntityDef {
	return db.defs
}
