package server

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"ricochet/server/catalog"
	"ricochet/server/internal/geom"
	"ricochet/server/internal/weapons"
	"ricochet/server/logging"
	combatlog "ricochet/server/logging/combat"
	lifecyclelog "ricochet/server/logging/lifecycle"
)

// World owns the authoritative arena state: actors, static boxes, and the
// tracer pool. It has no locking of its own; the hub serializes all access.
type World struct {
	actors  map[string]*actorState
	boxes   []Box
	tracers *TracerRegistry
	catalog *catalog.Resolver

	config      Config
	rng         *rand.Rand
	publisher   logging.Publisher
	metrics     *Metrics
	currentTick uint64
}

// newWorld constructs an empty world with a generated box layout.
func newWorld(cfg Config, resolver *catalog.Resolver, publisher logging.Publisher, metrics *Metrics) *World {
	normalized := cfg.normalized()
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	w := &World{
		actors:    make(map[string]*actorState),
		tracers:   NewTracerRegistry(),
		catalog:   resolver,
		config:    normalized,
		rng:       newDeterministicRNG(normalized.Arena.Seed, "actors.spawn"),
		publisher: publisher,
		metrics:   metrics,
	}
	w.boxes = generateBoxes(normalized.Arena)
	return w
}

// SpawnActor places a new actor near the spawn point and equips the default
// loadout. The secondary is equipped first so the final transition lands on
// the primary.
func (w *World) SpawnActor(id, token string, now time.Time) *actorState {
	spawn := w.spawnPosition()
	actor := &actorState{
		id:            id,
		token:         token,
		pos:           spawn,
		aimPoint:      geom.Vec3{X: spawn.X, Y: muzzleHeight, Z: spawn.Z + initialAimDistance},
		anim:          NewAnimationClock(),
		lastHeartbeat: now,
	}
	actor.mount = weapons.NewMount(actor.anim)
	actor.mount.OnWeaponChanged(func(def *weapons.Definition) {
		w.metrics.Equips.Inc()
		lifecyclelog.WeaponChanged(context.Background(), w.publisher, w.currentTick,
			logging.EntityRef{ID: actor.id, Kind: logging.EntityKindActor},
			logging.EntityRef{ID: def.ID, Kind: logging.EntityKindWeapon},
			lifecyclelog.WeaponChangedPayload{Weapon: def.ID, Slot: string(def.Slot)}, nil)
	})
	w.actors[id] = actor

	for _, weaponID := range []string{w.config.Loadout.Secondary, w.config.Loadout.Primary} {
		if err := w.equipFromCatalog(actor, weaponID); err != nil {
			log.Printf("failed to equip %s for %s: %v", weaponID, id, err)
		}
	}

	lifecyclelog.ActorJoined(context.Background(), w.publisher, w.currentTick,
		logging.EntityRef{ID: id, Kind: logging.EntityKindActor},
		lifecyclelog.ActorJoinedPayload{SpawnX: spawn.X, SpawnY: spawn.Y, SpawnZ: spawn.Z}, nil)

	return actor
}

// spawnPosition jitters the shared spawn point so stacked joins do not pile
// on the exact same spot.
func (w *World) spawnPosition() geom.Vec3 {
	base := spawnPoint(w.config.Arena)
	angle := w.rng.Float64() * 2 * math.Pi
	dist := w.rng.Float64() * spawnJitter
	return geom.Vec3{
		X: clamp(base.X+math.Cos(angle)*dist, actorHalf, w.config.Arena.Width-actorHalf),
		Z: clamp(base.Z+math.Sin(angle)*dist, actorHalf, w.config.Arena.Depth-actorHalf),
	}
}

// equipFromCatalog resolves a definition, wires a fresh instance to the
// actor, and hands it to the mount. A disabled instance is still equipped;
// the failure is logged and the actor stays alive.
func (w *World) equipFromCatalog(actor *actorState, weaponID string) error {
	if weaponID == "" {
		return fmt.Errorf("empty weapon id")
	}
	if w.catalog == nil {
		return fmt.Errorf("no weapon catalog configured")
	}
	def, ok := w.catalog.Definition(weaponID)
	if !ok {
		return fmt.Errorf("unknown weapon %q", weaponID)
	}

	inst, err := w.newInstance(actor, def)
	if err != nil {
		lifecyclelog.WeaponDisabled(context.Background(), w.publisher, w.currentTick,
			logging.EntityRef{ID: actor.id, Kind: logging.EntityKindActor},
			logging.EntityRef{ID: def.ID, Kind: logging.EntityKindWeapon},
			lifecyclelog.WeaponDisabledPayload{Weapon: def.ID, Reason: err.Error()}, nil)
	}
	if inst == nil {
		return err
	}
	return actor.mount.Equip(inst)
}

// Step advances the world one tick: apply queued commands, advance animation
// clocks, move actors, update weapons, then prune stale actors. It returns
// the IDs removed by heartbeat timeout.
func (w *World) Step(tick uint64, now time.Time, dt float64, commands []Command) []string {
	w.currentTick = tick

	for _, cmd := range commands {
		w.applyCommand(now, cmd)
	}

	moved := make([]*actorState, 0, len(w.actors))
	for _, actor := range w.actors {
		actor.anim.Advance(dt)
		moved = append(moved, actor)
		if actor.intentX != 0 || actor.intentZ != 0 {
			moveActor(actor, dt, w.boxes, w.config.Arena)
		}
	}
	resolveActorCollisions(moved, w.boxes, w.config.Arena)

	for _, actor := range w.actors {
		actor.mount.UpdateWeapon(dt)
		if swings := actor.anim.DrainSwings(); swings > 0 {
			w.recordSwings(actor, swings)
		}
	}

	removed := w.pruneStale(now)

	w.metrics.ActorsConnected.Set(float64(len(w.actors)))
	w.metrics.BulletsLive.Set(float64(w.liveBullets()))
	w.metrics.TracersLive.Set(float64(w.tracers.Live()))

	return removed
}

func (w *World) applyCommand(now time.Time, cmd Command) {
	actor, ok := w.actors[cmd.ActorID]
	if !ok {
		return
	}

	switch cmd.Type {
	case CommandInput:
		if cmd.Input == nil {
			return
		}
		dx, dz := cmd.Input.MoveX, cmd.Input.MoveZ
		length := math.Hypot(dx, dz)
		if length > 1 {
			dx /= length
			dz /= length
		}
		actor.intentX = dx
		actor.intentZ = dz
		actor.SetOrientation(weapons.Orientation{Yaw: cmd.Input.Yaw, Pitch: cmd.Input.Pitch}.Normalized())
		actor.aimPoint = cmd.Input.Aim
		actor.lastInput = now
	case CommandFire:
		if cmd.Fire == nil {
			return
		}
		if cmd.Fire.Pressed {
			actor.mount.StartFiring()
		} else {
			actor.mount.StopFiring()
		}
	case CommandEquip:
		if cmd.Equip == nil {
			return
		}
		if err := w.equipFromCatalog(actor, cmd.Equip.Weapon); err != nil {
			log.Printf("equip rejected for %s: %v", actor.id, err)
		}
	case CommandHolster:
		if cmd.Holster == nil {
			return
		}
		actor.mount.SetHolstered(cmd.Holster.Stowed)
	}
}

func (w *World) recordSwings(actor *actorState, swings int) {
	weaponID := ""
	if def := actor.mount.Definition(); def != nil {
		weaponID = def.ID
	}
	for i := 0; i < swings; i++ {
		w.metrics.MeleeSwings.Inc()
		combatlog.MeleeSwing(context.Background(), w.publisher, w.currentTick,
			logging.EntityRef{ID: actor.id, Kind: logging.EntityKindActor},
			combatlog.MeleeSwingPayload{Weapon: weaponID}, nil)
	}
}

// pruneStale removes actors whose heartbeat lapsed past the grace window,
// destroying their mounts so bullets clear and tracers release.
func (w *World) pruneStale(now time.Time) []string {
	var removed []string
	grace := w.config.disconnectAfter()
	for id, actor := range w.actors {
		if now.Sub(actor.lastHeartbeat) <= grace {
			continue
		}
		w.removeActor(actor, "heartbeat-timeout")
		removed = append(removed, id)
	}
	return removed
}

func (w *World) removeActor(actor *actorState, reason string) {
	actor.mount.Destroy()
	delete(w.actors, actor.id)
	lifecyclelog.ActorDisconnected(context.Background(), w.publisher, w.currentTick,
		logging.EntityRef{ID: actor.id, Kind: logging.EntityKindActor},
		lifecyclelog.ActorDisconnectedPayload{Reason: reason}, nil)
}

func (w *World) liveBullets() int {
	total := 0
	for _, actor := range w.actors {
		for idx := 0; idx < weapons.SlotCount; idx++ {
			inst := actor.mount.At(weapons.SlotAt(idx))
			if inst == nil {
				continue
			}
			if sim := inst.Bullets(); sim != nil {
				total += sim.Len()
			}
		}
	}
	return total
}

// Snapshot assembles the broadcast view. Mounts poll again on this path so
// equip transitions resolve against the freshest animation progress rather
// than waiting out a full tick.
func (w *World) Snapshot(now time.Time) WorldSnapshot {
	actors := make([]Actor, 0, len(w.actors))
	var bullets []Bullet
	for _, actor := range w.actors {
		actor.mount.Poll()
		actors = append(actors, actor.snapshot())
		bullets = append(bullets, w.bulletViews(actor)...)
	}
	return WorldSnapshot{
		Actors:  actors,
		Bullets: bullets,
		Tracers: w.tracers.Snapshot(),
	}
}

// DrainRetiredTracers hands out the tracer IDs released since the last tick.
// Only the broadcast path calls this; join snapshots must not consume them.
func (w *World) DrainRetiredTracers() []string {
	return w.tracers.DrainReleased()
}

// bulletViews flattens both slots' simulators into wire bullets. IDs are
// qualified by actor and slot because each simulator numbers its bullets
// independently.
func (w *World) bulletViews(actor *actorState) []Bullet {
	var views []Bullet
	for idx := 0; idx < weapons.SlotCount; idx++ {
		slot := weapons.SlotAt(idx)
		inst := actor.mount.At(slot)
		if inst == nil {
			continue
		}
		sim := inst.Bullets()
		if sim == nil {
			continue
		}
		for _, view := range sim.Snapshot() {
			views = append(views, Bullet{
				ID:       fmt.Sprintf("%s-%s-%s", actor.id, slot, view.ID),
				Owner:    actor.id,
				Position: view.Position,
			})
		}
	}
	return views
}
