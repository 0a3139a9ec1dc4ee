// Package scene owns the simulated world: the entity store with its pending
// spawn/despawn buffers, the camera, the tilemap, debug markers and picking.
// Gameplay logic lives above it and mutates the world through intents.
package scene

import (
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
)

// EntityID is a runtime handle, stable only within one process lifetime.
// Ids are allocated monotonically and never reused.
type EntityID uint64

// SaveID is the persistent identity of an entity, stable across save/load.
// Cross-entity references in persisted state always use SaveIDs.
type SaveID uint64

// InteractableKind classifies what an interactable does when used.
type InteractableKind int

const (
	// InteractableResourcePile grants a resource per completed job and
	// despawns once its uses run out.
	InteractableResourcePile InteractableKind = iota
)

// String returns the kind name used in saves and dumps.
func (k InteractableKind) String() string {
	switch k {
	case InteractableResourcePile:
		return "ResourcePile"
	default:
		return "Unknown"
	}
}

// Interactable marks an entity as a target for Use interactions.
type Interactable struct {
	Kind              InteractableKind
	InteractionRadius float32
	RemainingUses     uint32
}

// OrderKind tags the variants of OrderState.
type OrderKind int

const (
	OrderIdle OrderKind = iota
	OrderMoveTo
	OrderInteract
	OrderWorking
)

// String returns a short token for dumps.
func (k OrderKind) String() string {
	switch k {
	case OrderIdle:
		return "idle"
	case OrderMoveTo:
		return "move"
	case OrderInteract:
		return "interact"
	case OrderWorking:
		return "working"
	default:
		return "unknown"
	}
}

// OrderState is an actor's current order. Only the fields of the active
// variant are meaningful: Point for MoveTo, TargetSaveID for Interact and
// Working, RemainingTime for Working.
type OrderState struct {
	Kind          OrderKind
	Point         core.Vec2
	TargetSaveID  SaveID
	RemainingTime float32
}

// Idle is the zero order.
func Idle() OrderState { return OrderState{Kind: OrderIdle} }

// MoveTo orders movement to a world point.
func MoveTo(point core.Vec2) OrderState {
	return OrderState{Kind: OrderMoveTo, Point: point}
}

// InteractWith orders approaching and using a target.
func InteractWith(target SaveID) OrderState {
	return OrderState{Kind: OrderInteract, TargetSaveID: target}
}

// WorkingOn marks an in-progress job on a target.
func WorkingOn(target SaveID, remaining float32) OrderState {
	return OrderState{Kind: OrderWorking, TargetSaveID: target, RemainingTime: remaining}
}

// Entity is one simulated object. Gameplay-side runtime tables (health, AI,
// statuses) are keyed by ID and live outside the entity so the scene store
// stays a plain value container.
type Entity struct {
	ID           EntityID
	Transform    core.Transform
	Renderable   core.RenderableDesc
	Selectable   bool
	Actor        bool
	OrderState   OrderState
	Interactable *Interactable
}
