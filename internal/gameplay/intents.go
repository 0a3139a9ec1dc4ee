package gameplay

import (
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/core"
	"github.com/lukeporterco/Prototype-Game-Engine-sub001/internal/scene"
)

// applyIntent performs one queued world mutation. Returns false when the
// intent's subject no longer exists; stale intents are counted, not errors.
func (s *SceneState) applyIntent(world *scene.World, intent Intent) bool {
	switch intent.Kind {
	case IntentSpawnByArchetypeID:
		_, ok := s.spawnFromArchetype(world, intent.ArchetypeID, intent.Position)
		return ok

	case IntentSetMoveTarget:
		entity := world.FindEntity(intent.Actor)
		if entity == nil || !entity.Actor {
			return false
		}
		entity.OrderState = scene.MoveTo(intent.Point)
		if path := s.navCache.BuildPathFromWorld(entity.Transform.Position, intent.Point); path != nil {
			s.navPaths[intent.Actor] = path
		} else {
			delete(s.navPaths, intent.Actor)
		}
		return true

	case IntentDespawnEntity:
		return s.despawnEntity(world, intent.Target)

	case IntentApplyDamage:
		return s.applyDamage(world, intent.Target, intent.Amount)

	case IntentAddStatus:
		return s.addStatus(world, intent.Target, intent.Status, intent.Duration)

	case IntentRemoveStatus:
		return s.removeExpiredStatus(intent.Target, intent.Status)

	case IntentStartInteraction:
		entity := world.FindEntity(intent.Actor)
		if entity == nil || !entity.Actor {
			return false
		}
		targetSaveID, ok := s.saveIDByEntity[intent.Target]
		if !ok {
			return false
		}
		entity.OrderState = scene.InteractWith(targetSaveID)
		delete(s.navPaths, intent.Actor)
		return true

	case IntentCompleteInteraction:
		actor := world.FindEntity(intent.Actor)
		if actor != nil && actor.Actor {
			actor.OrderState = scene.Idle()
		}
		delete(s.navPaths, intent.Actor)
		if target := world.FindEntity(intent.Target); target != nil && target.Interactable != nil {
			s.resourceCount++
			if target.Interactable.RemainingUses > 0 {
				target.Interactable.RemainingUses--
			}
			if target.Interactable.RemainingUses == 0 {
				s.despawnEntity(world, target.ID)
			}
		}
		return actor != nil

	// The cancelling system already dropped the runtime interaction; the
	// intent only rolls the order back. Leaving the map alone here keeps a
	// cancel queued ahead of a replacement start from eating the new one.
	case IntentCancelInteraction:
		delete(s.navPaths, intent.Actor)
		entity := world.FindEntity(intent.Actor)
		if entity == nil {
			return false
		}
		if entity.OrderState.Kind == scene.OrderInteract || entity.OrderState.Kind == scene.OrderWorking {
			entity.OrderState = scene.Idle()
		}
		return true

	default:
		return false
	}
}

// applyDamage clamps to remaining health. A dying player heals back to
// full in place; anything else dies and despawns within the same drain.
func (s *SceneState) applyDamage(world *scene.World, target scene.EntityID, amount uint32) bool {
	health, ok := s.healthByEntity[target]
	if !ok || world.FindEntity(target) == nil {
		return false
	}
	dealt := amount
	if dealt > health.Current {
		dealt = health.Current
	}
	health.Current -= dealt
	s.bus.Emit(Event{Kind: EventEntityDamaged, Target: target, Amount: dealt})
	if health.Current == 0 {
		if s.playerID != nil && *s.playerID == target {
			health.Current = health.Max
		} else {
			s.bus.Emit(Event{Kind: EventEntityDied, Target: target})
			s.intents.Enqueue(Intent{Kind: IntentDespawnEntity, Target: target})
		}
	}
	return true
}

// addStatus has set semantics on the status id: a re-apply refreshes the
// remaining time instead of stacking.
func (s *SceneState) addStatus(world *scene.World, target scene.EntityID, status StatusID, duration float32) bool {
	if world.FindEntity(target) == nil {
		return false
	}
	statuses := s.statusesByEntity[target]
	for i := range statuses {
		if statuses[i].ID == status {
			statuses[i].RemainingSeconds = duration
			return true
		}
	}
	s.statusesByEntity[target] = append(statuses, ActiveStatus{ID: status, RemainingSeconds: duration})
	s.bus.Emit(Event{Kind: EventStatusApplied, Target: target, Status: status})
	return true
}

// removeExpiredStatus drops a status only if it is still expired at apply
// time. A refresh queued earlier in the same drain wins over the expiry.
func (s *SceneState) removeExpiredStatus(target scene.EntityID, status StatusID) bool {
	statuses, ok := s.statusesByEntity[target]
	if !ok {
		return false
	}
	for i := range statuses {
		if statuses[i].ID != status {
			continue
		}
		if statuses[i].RemainingSeconds > 0 {
			return true
		}
		s.statusesByEntity[target] = append(statuses[:i], statuses[i+1:]...)
		if len(s.statusesByEntity[target]) == 0 {
			delete(s.statusesByEntity, target)
		}
		s.bus.Emit(Event{Kind: EventStatusExpired, Target: target, Status: status})
		return true
	}
	return false
}

// applyKinematics steps every actor after the drain: path-following or
// direct movement for MoveTo, approach for Interact, and direct keyboard
// movement for an idle player. Iteration follows the entity slice, which
// is always ascending by id.
func (s *SceneState) applyKinematics(fixedDtSeconds float32, input core.InputSnapshot, world *scene.World) {
	entities := world.Entities()
	for i := range entities {
		entity := &entities[i]
		if !entity.Actor {
			continue
		}
		speed := s.moveSpeedFor(world, entity.ID) * s.statusMoveMultiplier(entity.ID)

		switch entity.OrderState.Kind {
		case scene.OrderMoveTo:
			s.stepMoveTo(entity, speed, fixedDtSeconds)

		case scene.OrderInteract:
			s.stepInteract(world, entity, speed, fixedDtSeconds)

		case scene.OrderWorking:
			if s.resolveSaveID(world, entity.OrderState.TargetSaveID) == nil {
				entity.OrderState = scene.Idle()
			}

		case scene.OrderIdle:
			if s.playerID != nil && *s.playerID == entity.ID {
				if _, busy := s.interactions[entity.ID]; !busy {
					delta := core.MovementDelta(input, fixedDtSeconds, speed)
					entity.Transform.Position = entity.Transform.Position.Add(delta)
				}
			}
		}
	}
}

// stepMoveTo follows the actor's navigation waypoints when a path exists,
// then walks straight to the exact order point.
func (s *SceneState) stepMoveTo(entity *scene.Entity, speed, fixedDtSeconds float32) {
	if path, ok := s.navPaths[entity.ID]; ok && !path.IsComplete() {
		waypoint, _ := path.CurrentWaypoint()
		pos, arrived := core.StepToward(entity.Transform.Position, waypoint, speed, fixedDtSeconds, MoveArrivalThreshold)
		entity.Transform.Position = pos
		if arrived {
			path.AdvanceWaypoint()
			if path.IsComplete() {
				delete(s.navPaths, entity.ID)
			}
		}
		return
	}
	pos, arrived := core.StepToward(entity.Transform.Position, entity.OrderState.Point, speed, fixedDtSeconds, MoveArrivalThreshold)
	entity.Transform.Position = pos
	if arrived {
		entity.OrderState = scene.Idle()
		delete(s.navPaths, entity.ID)
	}
}

// stepInteract approaches the interaction target until within range. Use
// interactions then switch the order to Working; attacks hold position and
// let the interaction timer run.
func (s *SceneState) stepInteract(world *scene.World, entity *scene.Entity, speed, fixedDtSeconds float32) {
	target := s.resolveSaveID(world, entity.OrderState.TargetSaveID)
	if target == nil {
		entity.OrderState = scene.Idle()
		return
	}
	interaction, hasInteraction := s.interactions[entity.ID]
	interactionRange := MoveArrivalThreshold
	if hasInteraction {
		interactionRange = interaction.InteractionRange
	} else if target.Interactable != nil {
		interactionRange = target.Interactable.InteractionRadius
	}

	targetPos := target.Transform.Position
	if core.DistanceSq(entity.Transform.Position, targetPos) <= interactionRange*interactionRange {
		if hasInteraction && interaction.Kind == InteractionUse {
			entity.OrderState = scene.WorkingOn(entity.OrderState.TargetSaveID, JobDurationSeconds)
		}
		return
	}
	pos, _ := core.StepToward(entity.Transform.Position, targetPos, speed, fixedDtSeconds, 0)
	entity.Transform.Position = pos
}
