// Package gameplay implements the deterministic per-tick simulation: the
// fixed-order system pipeline, the event bus and intent queue between
// systems, kinematic stepping, and JSON save/restore.
package gameplay

import (
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/content"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/scene"
)

// Tuning constants for the prototype gameplay loop.
const (
	CameraSpeedUnitsPerSecond       float32 = 6.0
	MoveArrivalThreshold            float32 = 0.1
	JobDurationSeconds              float32 = 2.0
	ResourcePileInteractionRadius   float32 = 0.75
	ResourcePileStartingUses        uint32  = 3
	OrderMarkerTTLSeconds           float32 = 0.75
	AIAggroRadiusUnits              float32 = 6.0
	AIAttackRangeUnits              float32 = 0.9
	AIAttackInteractionDurationSecs float32 = 0.5
	AIAttackCooldownSeconds         float32 = 1.0
	AIWanderOffsetUnits             float32 = 1.5
	AIWanderArrivalThreshold        float32 = 0.15
	DefaultMaxHealth                uint32  = 100
	AttackDamagePerHit              uint32  = 25
	StatusSlowDurationSeconds       float32 = 2.0
	StatusSlowMoveMultiplier        float32 = 0.5
)

// StatusSlow is the movement-slow status applied by landed attacks.
const StatusSlow StatusID = "status.slow"

// systemOrderText names the pipeline stages in execution order, for dumps
// and the debug overlay.
const systemOrderText = "InputIntent>Interaction>AI>CombatResolution>StatusEffects>Cleanup"

// StatusID names a status effect.
type StatusID string

// ActiveStatus is one status instance on an entity. Set semantics on the
// id: re-applying refreshes the remaining time.
type ActiveStatus struct {
	ID               StatusID
	RemainingSeconds float32
}

// Health tracks an actor's hit points.
type Health struct {
	Current uint32
	Max     uint32
}

// AIState is the agent's current behavior.
type AIState int

const (
	AIIdle AIState = iota
	AIWander
	AIChase
	AIUseInteraction
)

// String returns a short token for dumps.
func (s AIState) String() string {
	switch s {
	case AIIdle:
		return "idle"
	case AIWander:
		return "wander"
	case AIChase:
		return "chase"
	case AIUseInteraction:
		return "use"
	default:
		return "unknown"
	}
}

// AIAgent is the per-entity AI record. Agents live in a gameplay-side table
// keyed by entity id; iteration is always ascending id.
type AIAgent struct {
	State                 AIState
	HomePosition          core.Vec2
	AggroRadius           float32
	AttackRange           float32
	AttackDamage          uint32
	CooldownSeconds       float32
	CooldownRemaining     float32
	WanderTarget          *core.Vec2
	WanderOnPrimaryOffset bool
}

// InteractionKind distinguishes resource-use jobs from attacks.
type InteractionKind int

const (
	InteractionUse InteractionKind = iota
	InteractionAttack
)

// InteractionID numbers active interactions for debugging.
type InteractionID uint64

// ActiveInteraction is the runtime record of an in-progress Use or Attack.
// RemainingSeconds is nil until the actor first came into range; from then
// on the interaction is "timing" and leaving range cancels it.
type ActiveInteraction struct {
	ActorID          scene.EntityID
	TargetID         scene.EntityID
	ID               InteractionID
	Kind             InteractionKind
	InteractionRange float32
	DurationSeconds  float32
	RemainingSeconds *float32
}

// EventKind tags gameplay events.
type EventKind int

const (
	EventInteractionStarted EventKind = iota
	EventInteractionCompleted
	EventEntityDamaged
	EventEntityDied
	EventStatusApplied
	EventStatusExpired
)

// Event is an observation emitted by a system. Events are read-only within
// the tick that emitted them and reset at the next tick boundary.
type Event struct {
	Kind   EventKind
	Actor  scene.EntityID
	Target scene.EntityID
	Status StatusID
	Amount uint32
}

// EventCounts aggregates one tick's events for the debug overlay.
type EventCounts struct {
	Total                int
	InteractionStarted   int
	InteractionCompleted int
	EntityDamaged        int
	EntityDied           int
	StatusApplied        int
	StatusExpired        int
}

// EventBus accumulates events within a tick. Append-only during the tick;
// BeginTick archives the counts and clears the buffer.
type EventBus struct {
	currentTick    []Event
	lastTickCounts EventCounts
}

// Emit appends an event to the current tick.
func (b *EventBus) Emit(e Event) {
	b.currentTick = append(b.currentTick, e)
}

// CurrentTickEvents returns this tick's events in emission order.
func (b *EventBus) CurrentTickEvents() []Event {
	return b.currentTick
}

// BeginTick rolls the bus over to a new tick.
func (b *EventBus) BeginTick() {
	counts := EventCounts{Total: len(b.currentTick)}
	for _, e := range b.currentTick {
		switch e.Kind {
		case EventInteractionStarted:
			counts.InteractionStarted++
		case EventInteractionCompleted:
			counts.InteractionCompleted++
		case EventEntityDamaged:
			counts.EntityDamaged++
		case EventEntityDied:
			counts.EntityDied++
		case EventStatusApplied:
			counts.StatusApplied++
		case EventStatusExpired:
			counts.StatusExpired++
		}
	}
	b.lastTickCounts = counts
	b.currentTick = b.currentTick[:0]
}

// LastTickCounts returns the archived counts of the previous tick.
func (b *EventBus) LastTickCounts() EventCounts {
	return b.lastTickCounts
}

// IntentKind tags world-mutation commands.
type IntentKind int

const (
	IntentSpawnByArchetypeID IntentKind = iota
	IntentSetMoveTarget
	IntentDespawnEntity
	IntentApplyDamage
	IntentAddStatus
	IntentRemoveStatus
	IntentStartInteraction
	IntentCompleteInteraction
	IntentCancelInteraction
)

// Intent is a queued world mutation. Systems never mutate entities
// directly; all changes flow through the queue and are applied in FIFO
// order at the tick's safe point.
type Intent struct {
	Kind        IntentKind
	ArchetypeID content.EntityDefID
	Position    core.Vec2
	Actor       scene.EntityID
	Target      scene.EntityID
	Point       core.Vec2
	Amount      uint32
	Status      StatusID
	Duration    float32
}

// IntentStats aggregates one drain pass for the debug overlay.
type IntentStats struct {
	Total               int
	SpawnByArchetypeID  int
	SetMoveTarget       int
	DespawnEntity       int
	ApplyDamage         int
	AddStatus           int
	RemoveStatus        int
	StartInteraction    int
	CompleteInteraction int
	CancelInteraction   int
	InvalidTargetCount  int
}

// IntentQueue buffers intents between enqueue and the safe-point drain.
// The queue may grow while draining: intent application (a death despawn,
// for example) can push follow-up intents that run in the same pass.
type IntentQueue struct {
	pending   []Intent
	lastStats IntentStats
}

// Enqueue appends an intent.
func (q *IntentQueue) Enqueue(intent Intent) {
	q.pending = append(q.pending, intent)
}

// Len returns the number of queued intents.
func (q *IntentQueue) Len() int { return len(q.pending) }

// LastApplyStats returns the stats of the most recent drain.
func (q *IntentQueue) LastApplyStats() IntentStats { return q.lastStats }

// Drain applies every queued intent in FIFO order, including intents pushed
// onto the queue by the apply callback itself. The callback reports whether
// the intent's target was still valid.
func (q *IntentQueue) Drain(apply func(Intent) bool) IntentStats {
	var stats IntentStats
	for i := 0; i < len(q.pending); i++ {
		intent := q.pending[i]
		stats.Total++
		switch intent.Kind {
		case IntentSpawnByArchetypeID:
			stats.SpawnByArchetypeID++
		case IntentSetMoveTarget:
			stats.SetMoveTarget++
		case IntentDespawnEntity:
			stats.DespawnEntity++
		case IntentApplyDamage:
			stats.ApplyDamage++
		case IntentAddStatus:
			stats.AddStatus++
		case IntentRemoveStatus:
			stats.RemoveStatus++
		case IntentStartInteraction:
			stats.StartInteraction++
		case IntentCompleteInteraction:
			stats.CompleteInteraction++
		case IntentCancelInteraction:
			stats.CancelInteraction++
		}
		if !apply(intent) {
			stats.InvalidTargetCount++
		}
	}
	q.pending = q.pending[:0]
	q.lastStats = stats
	return stats
}
