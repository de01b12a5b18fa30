package server

import (
	"context"
	"fmt"

	"ricochet/server/internal/geom"
	"ricochet/server/internal/weapons"
	"ricochet/server/logging"
	combatlog "ricochet/server/logging/combat"
)

// hitRelay forwards bullet impacts from one weapon instance into the logging
// bus and metrics. Damage resolution stays outside the weapon core; the host
// records the hit and moves on.
type hitRelay struct {
	world    *World
	actorID  string
	weaponID string
}

var _ weapons.CombatHook = (*hitRelay)(nil)

func (r *hitRelay) BulletHit(hit weapons.Hit, damage, knockback float64) {
	r.world.metrics.BulletHits.Inc()
	combatlog.BulletHit(context.Background(), r.world.publisher, r.world.currentTick,
		logging.EntityRef{ID: r.actorID, Kind: logging.EntityKindActor},
		r.world.colliderRef(hit.Collider),
		combatlog.BulletHitPayload{
			Weapon:    r.weaponID,
			Collider:  hit.Collider,
			X:         hit.Point.X,
			Y:         hit.Point.Y,
			Z:         hit.Point.Z,
			Damage:    damage,
			Knockback: knockback,
		}, nil)
}

// colliderRef classifies a collider ID for event targets: live actor IDs map
// to actors, everything else is world geometry.
func (w *World) colliderRef(collider string) logging.EntityRef {
	if _, ok := w.actors[collider]; ok {
		return logging.EntityRef{ID: collider, Kind: logging.EntityKindActor}
	}
	return logging.EntityRef{ID: collider, Kind: logging.EntityKindWorld}
}

// newInstance wires a catalog definition to an actor: the actor's provider
// interfaces, a per-shooter collision scene, the shared tracer registry, and
// telemetry hooks for every bullet lifecycle edge.
func (w *World) newInstance(actor *actorState, def *weapons.Definition) (*weapons.Instance, error) {
	actorRef := logging.EntityRef{ID: actor.id, Kind: logging.EntityKindActor}

	hooks := weapons.SimulatorHooks{
		Spawned: func(id uint64) {
			w.metrics.ShotsFired.Inc()
			combatlog.WeaponFired(context.Background(), w.publisher, w.currentTick,
				actorRef, bulletRef(id),
				combatlog.WeaponFiredPayload{Weapon: def.ID}, nil)
		},
		Bounced: func(id uint64, at geom.Vec3, remaining int) {
			w.metrics.BulletsBounced.Inc()
			combatlog.BulletBounced(context.Background(), w.publisher, w.currentTick,
				actorRef, bulletRef(id),
				combatlog.BulletBouncedPayload{
					Weapon:    def.ID,
					X:         at.X,
					Y:         at.Y,
					Z:         at.Z,
					Remaining: remaining,
				}, nil)
		},
		Expired: func(id uint64) {
			w.metrics.BulletsExpired.Inc()
			combatlog.BulletExpired(context.Background(), w.publisher, w.currentTick,
				actorRef, bulletRef(id),
				combatlog.BulletExpiredPayload{Weapon: def.ID}, nil)
		},
	}

	return weapons.NewInstance(def, weapons.Deps{
		Target: actor,
		Muzzle: actor,
		Aim:    actor,
		Scene:  &arenaScene{world: w, owner: actor.id},
		Anim:   actor.anim,
		Combat: &hitRelay{world: w, actorID: actor.id, weaponID: def.ID},
		Trails: w.tracers,
		Hooks:  hooks,
	})
}

func bulletRef(id uint64) logging.EntityRef {
	return logging.EntityRef{ID: fmt.Sprintf("bullet-%d", id), Kind: logging.EntityKindBullet}
}
