package gameplay

import (
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/scene"
)

// systemInputIntent translates this tick's input snapshot into selection
// changes and queued orders. Left click selects or clears; right click
// targets an interactable (Use), another actor (Attack) or the ground
// (move order).
func (s *SceneState) systemInputIntent(fixedDtSeconds float32, input core.InputSnapshot, world *scene.World) {
	if input.LeftClickPressed && input.CursorPx != nil {
		if id, ok := world.PickTopmostSelectableAt(*input.CursorPx, input.WindowWidth, input.WindowHeight); ok {
			picked := id
			s.selected = &picked
		} else {
			s.selected = nil
		}
	}

	if !input.RightClickPressed || input.CursorPx == nil || s.selected == nil {
		return
	}
	actorID := *s.selected
	actor := world.FindEntity(actorID)
	if actor == nil || !actor.Actor {
		return
	}

	if targetID, ok := world.PickTopmostInteractableAt(*input.CursorPx, input.WindowWidth, input.WindowHeight); ok {
		target := world.FindEntity(targetID)
		if target != nil && target.Interactable != nil {
			s.beginInteraction(actorID, targetID, InteractionUse,
				target.Interactable.InteractionRadius, JobDurationSeconds)
		}
		return
	}
	if targetID, ok := world.PickTopmostSelectableAt(*input.CursorPx, input.WindowWidth, input.WindowHeight); ok && targetID != actorID {
		target := world.FindEntity(targetID)
		if target != nil && target.Actor {
			s.beginInteraction(actorID, targetID, InteractionAttack,
				AIAttackRangeUnits, AIAttackInteractionDurationSecs)
		}
		return
	}

	point := world.Camera().ScreenToWorld(*input.CursorPx, input.WindowWidth, input.WindowHeight)
	if _, busy := s.interactions[actorID]; busy {
		s.cancelInteraction(actorID)
	}
	s.intents.Enqueue(Intent{Kind: IntentSetMoveTarget, Actor: actorID, Point: point})
	world.PushDebugMarker(scene.DebugMarker{
		Kind:          scene.MarkerOrder,
		PositionWorld: point,
		TTLSeconds:    OrderMarkerTTLSeconds,
	})
}

// beginInteraction registers an active interaction for an actor and queues
// the order change. A previous interaction is cancelled first so its cancel
// intent drains ahead of the new start.
func (s *SceneState) beginInteraction(actorID, targetID scene.EntityID, kind InteractionKind, interactionRange, duration float32) {
	if _, busy := s.interactions[actorID]; busy {
		s.cancelInteraction(actorID)
	}
	s.nextInteractionID++
	s.interactions[actorID] = &ActiveInteraction{
		ActorID:          actorID,
		TargetID:         targetID,
		ID:               s.nextInteractionID,
		Kind:             kind,
		InteractionRange: interactionRange,
		DurationSeconds:  duration,
	}
	s.bus.Emit(Event{Kind: EventInteractionStarted, Actor: actorID, Target: targetID})
	s.intents.Enqueue(Intent{Kind: IntentStartInteraction, Actor: actorID, Target: targetID})
}

// systemInteraction validates and times active interactions. An interaction
// only starts timing once the actor is in range; leaving range after that
// cancels it rather than pausing it.
func (s *SceneState) systemInteraction(fixedDtSeconds float32, world *scene.World) {
	for _, actorID := range sortedEntityIDs(s.interactions) {
		interaction := s.interactions[actorID]
		actor := world.FindEntity(actorID)
		if actor == nil {
			delete(s.interactions, actorID)
			continue
		}
		target := world.FindEntity(interaction.TargetID)
		targetValid := target != nil
		if targetValid && interaction.Kind == InteractionUse {
			targetValid = target.Interactable != nil && target.Interactable.RemainingUses > 0
		}
		if targetValid && interaction.Kind == InteractionAttack {
			targetValid = target.Actor
		}
		if !targetValid {
			s.cancelInteraction(actorID)
			continue
		}

		rangeSq := interaction.InteractionRange * interaction.InteractionRange
		inRange := core.DistanceSq(actor.Transform.Position, target.Transform.Position) <= rangeSq
		if !inRange {
			if interaction.RemainingSeconds != nil {
				s.cancelInteraction(actorID)
			}
			continue
		}

		if interaction.DurationSeconds <= 0 {
			s.completeInteraction(actorID, interaction)
			continue
		}
		remaining := interaction.DurationSeconds
		if interaction.RemainingSeconds != nil {
			remaining = *interaction.RemainingSeconds
		}
		remaining -= fixedDtSeconds
		if remaining <= 0 {
			s.completeInteraction(actorID, interaction)
			continue
		}
		interaction.RemainingSeconds = &remaining
		if actor.OrderState.Kind == scene.OrderWorking {
			actor.OrderState.RemainingTime = remaining
		}
	}
}

func (s *SceneState) cancelInteraction(actorID scene.EntityID) {
	delete(s.interactions, actorID)
	s.intents.Enqueue(Intent{Kind: IntentCancelInteraction, Actor: actorID})
}

func (s *SceneState) completeInteraction(actorID scene.EntityID, interaction *ActiveInteraction) {
	delete(s.interactions, actorID)
	if interaction.Kind == InteractionAttack {
		s.completedAttacks[attackPair{actor: actorID, target: interaction.TargetID}] = struct{}{}
	}
	s.bus.Emit(Event{Kind: EventInteractionCompleted, Actor: actorID, Target: interaction.TargetID})
	s.intents.Enqueue(Intent{Kind: IntentCompleteInteraction, Actor: actorID, Target: interaction.TargetID})
}

// systemAI drives agents: chase the player inside the aggro radius, attack
// inside attack range once the cooldown allows, and otherwise wander
// between two fixed offsets around home. Agents whose entity is busy with
// an interaction or any in-flight order (move, interact, working) are not
// re-ordered.
func (s *SceneState) systemAI(fixedDtSeconds float32, world *scene.World) {
	var playerPos *core.Vec2
	if s.playerID != nil {
		if player := world.FindEntity(*s.playerID); player != nil {
			pos := player.Transform.Position
			playerPos = &pos
		}
	}

	for _, id := range sortedEntityIDs(s.agents) {
		agent := s.agents[id]
		entity := world.FindEntity(id)
		if entity == nil {
			delete(s.agents, id)
			continue
		}
		if agent.CooldownRemaining > 0 {
			agent.CooldownRemaining -= fixedDtSeconds
			if agent.CooldownRemaining < 0 {
				agent.CooldownRemaining = 0
			}
		}

		_, busy := s.interactions[id]
		orderKind := entity.OrderState.Kind
		blocked := busy || orderKind == scene.OrderMoveTo ||
			orderKind == scene.OrderInteract || orderKind == scene.OrderWorking

		pos := entity.Transform.Position
		if playerPos != nil && s.playerID != nil && *s.playerID != id {
			distSq := core.DistanceSq(pos, *playerPos)
			if distSq <= agent.AggroRadius*agent.AggroRadius {
				if distSq <= agent.AttackRange*agent.AttackRange {
					agent.State = AIUseInteraction
					if !blocked && agent.CooldownRemaining <= 0 {
						s.beginInteraction(id, *s.playerID, InteractionAttack,
							agent.AttackRange, AIAttackInteractionDurationSecs)
						agent.CooldownRemaining = agent.CooldownSeconds
					}
				} else {
					agent.State = AIChase
					if !blocked {
						s.intents.Enqueue(Intent{Kind: IntentSetMoveTarget, Actor: id, Point: *playerPos})
					}
				}
				continue
			}
		}

		s.wander(agent, id, pos, blocked)
	}
}

// wander alternates between home+offset and home-offset. Odd ids start on
// the negative side so neighboring agents drift apart.
func (s *SceneState) wander(agent *AIAgent, id scene.EntityID, pos core.Vec2, blocked bool) {
	sign := float32(1.0)
	if id%2 != 0 {
		sign = -1.0
	}
	primary := agent.HomePosition.Add(core.Vec2{X: AIWanderOffsetUnits * sign})
	secondary := agent.HomePosition.Sub(core.Vec2{X: AIWanderOffsetUnits * sign})

	if agent.WanderTarget == nil {
		target := primary
		agent.WanderTarget = &target
		agent.WanderOnPrimaryOffset = true
	}
	arrivalSq := AIWanderArrivalThreshold * AIWanderArrivalThreshold
	if core.DistanceSq(pos, *agent.WanderTarget) <= arrivalSq {
		// Rest at the waypoint for this tick before turning around.
		agent.State = AIIdle
		agent.WanderOnPrimaryOffset = !agent.WanderOnPrimaryOffset
		next := primary
		if !agent.WanderOnPrimaryOffset {
			next = secondary
		}
		agent.WanderTarget = &next
	} else {
		agent.State = AIWander
	}
	if !blocked {
		s.intents.Enqueue(Intent{Kind: IntentSetMoveTarget, Actor: id, Point: *agent.WanderTarget})
	}
}

// systemCombatResolution turns this tick's completed attack interactions
// into damage and a movement slow on the target.
func (s *SceneState) systemCombatResolution(world *scene.World) {
	for _, event := range s.bus.CurrentTickEvents() {
		if event.Kind != EventInteractionCompleted {
			continue
		}
		if _, ok := s.completedAttacks[attackPair{actor: event.Actor, target: event.Target}]; !ok {
			continue
		}
		damage := AttackDamagePerHit
		if agent, ok := s.agents[event.Actor]; ok {
			damage = agent.AttackDamage
		} else if db := world.DefDatabase(); db != nil {
			if defID, ok := s.defByEntity[event.Actor]; ok {
				if def := db.Def(defID); def != nil && def.BaseDamage != nil {
					damage = *def.BaseDamage
				}
			}
		}
		s.intents.Enqueue(Intent{Kind: IntentApplyDamage, Target: event.Target, Amount: damage})
		s.intents.Enqueue(Intent{
			Kind:     IntentAddStatus,
			Target:   event.Target,
			Status:   StatusSlow,
			Duration: StatusSlowDurationSeconds,
		})
	}
}

// systemStatusEffects counts down status timers and queues removal of
// expired ones. Removal goes through the intent queue so the expiry event
// lands in the same tick's drain as every other mutation.
func (s *SceneState) systemStatusEffects(fixedDtSeconds float32, world *scene.World) {
	for _, id := range sortedEntityIDs(s.statusesByEntity) {
		statuses := s.statusesByEntity[id]
		for i := range statuses {
			statuses[i].RemainingSeconds -= fixedDtSeconds
			if statuses[i].RemainingSeconds <= 0 {
				s.intents.Enqueue(Intent{Kind: IntentRemoveStatus, Target: id, Status: statuses[i].ID})
			}
		}
	}
}

// systemCleanup closes the pipeline. Nothing to do yet; the slot exists so
// end-of-tick sweeps have a fixed position in the order.
func (s *SceneState) systemCleanup(world *scene.World) {}
