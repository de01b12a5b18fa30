package weapons

import (
	"fmt"
	"strings"

	"ricochet/server/internal/geom"
)

// TargetProvider supplies the world point the owning actor is aiming at,
// refreshed by the hosting targeting system every frame.
type TargetProvider interface {
	AimPoint() geom.Vec3
}

// MuzzleProvider supplies the world-space point bullets spawn from.
type MuzzleProvider interface {
	MuzzlePoint() geom.Vec3
}

// AimTransform reads and writes the actor's look orientation. Recoil steps
// go through it; so does direct look input on the host side.
type AimTransform interface {
	Orientation() Orientation
	SetOrientation(Orientation)
}

// AnimationDriver is the external animation layer: it plays holster and
// named equip clips, reports the current clip's normalized time, and accepts
// melee attack triggers. Progress is polled, never awaited.
type AnimationDriver interface {
	PlayHolster()
	PlayEquip(clip string)
	Progress() float64
	TriggerAttack()
}

// Deps binds a weapon instance to its external collaborators. Target,
// Muzzle, Aim and Scene are required for ranged kinds; Aim and Anim for all
// kinds. Combat and Trails default to no-op stubs when nil.
type Deps struct {
	Target TargetProvider
	Muzzle MuzzleProvider
	Aim    AimTransform
	Scene  CollisionQuery
	Anim   AnimationDriver
	Combat CombatHook
	Trails TrailSpawner
	Hooks  SimulatorHooks
}

// Instance is the per-actor runtime state of one weapon: recoil cursor, fire
// accumulator, firing and holster flags, and (for ranged kinds) the bullet
// simulator. Instances are single-threaded; the owning world goroutine is
// the only caller.
type Instance struct {
	def    *Definition
	deps   Deps
	recoil *Pattern

	bullets *Simulator
	fire    fireDriver

	firing    bool
	holstered bool
	elapsed   float64
	disabled  bool
}

type fireDriver interface {
	Update(dt float64)
}

// NewInstance wires a definition to its collaborators. Missing required
// collaborators are configuration errors: the instance comes back disabled
// together with an error describing what is absent, so the caller can log
// the problem and keep the actor alive.
func NewInstance(def *Definition, deps Deps) (*Instance, error) {
	if def == nil {
		return nil, fmt.Errorf("weapon instance requires a definition")
	}

	inst := &Instance{
		def:    def,
		deps:   deps,
		recoil: BuildPattern(def.Recoil.Horizontal, def.Recoil.Interval),
	}

	var missing []string
	if deps.Aim == nil {
		missing = append(missing, "aim transform")
	}
	if deps.Anim == nil {
		missing = append(missing, "animation driver")
	}
	if !def.Kind.Melee() {
		if deps.Target == nil {
			missing = append(missing, "aim target")
		}
		if deps.Muzzle == nil {
			missing = append(missing, "muzzle point")
		}
		if deps.Scene == nil {
			missing = append(missing, "collision query")
		}
	}
	if len(missing) > 0 {
		inst.disabled = true
		return inst, fmt.Errorf("weapon %q disabled: missing %s", def.ID, strings.Join(missing, ", "))
	}

	if def.Kind.Melee() {
		inst.fire = &MeleeFireController{inst: inst}
		return inst, nil
	}

	inst.bullets = NewSimulator(SimulatorConfig{
		Definition: def,
		Scene:      deps.Scene,
		Combat:     deps.Combat,
		Trails:     deps.Trails,
		Hooks:      deps.Hooks,
	})
	inst.fire = &FireController{inst: inst}
	return inst, nil
}

// Definition returns the immutable tuning record backing the instance.
func (w *Instance) Definition() *Definition {
	return w.def
}

// Disabled reports whether the instance was created without its required
// collaborators and therefore ignores all input.
func (w *Instance) Disabled() bool {
	return w.disabled
}

// StartFiring latches the trigger and resets the catch-up accumulator. The
// holster gate in Update decides whether shots actually come out.
func (w *Instance) StartFiring() {
	if w.disabled {
		return
	}
	w.firing = true
	w.elapsed = 0
}

// StopFiring releases the trigger. Accumulated time is abandoned; no
// catch-up shots fire on release.
func (w *Instance) StopFiring() {
	w.firing = false
}

// IsFiring reports whether the trigger is held.
func (w *Instance) IsFiring() bool {
	return w.firing
}

// SetHolstered marks the weapon stowed or drawn. A holstered weapon stops
// firing on its next Update but its bullets keep simulating.
func (w *Instance) SetHolstered(v bool) {
	w.holstered = v
}

// Holstered reports whether the weapon is stowed.
func (w *Instance) Holstered() bool {
	return w.holstered
}

// Update advances the instance by dt seconds. Disabled instances do
// nothing.
func (w *Instance) Update(dt float64) {
	if w.disabled {
		return
	}
	w.fire.Update(dt)
}

// Destroy stops the trigger and clears any live bullets, releasing their
// trails. Safe to call more than once.
func (w *Instance) Destroy() {
	w.StopFiring()
	if w.bullets != nil {
		w.bullets.Clear()
	}
}

// Bullets exposes the instance's simulator for snapshots. Melee instances
// return nil.
func (w *Instance) Bullets() *Simulator {
	return w.bullets
}

// applyRecoil rotates the aim orientation by one pattern step.
func (w *Instance) applyRecoil() {
	o := w.deps.Aim.Orientation()
	w.deps.Aim.SetOrientation(o.Kick(w.recoil.Next(), w.def.Recoil.Vertical))
}

// fireBullet spawns one bullet from the muzzle toward the current aim-target
// point at the definition's speed.
func (w *Instance) fireBullet() {
	muzzle := w.deps.Muzzle.MuzzlePoint()
	dir := w.deps.Target.AimPoint().Sub(muzzle).Normalize()
	w.bullets.Spawn(muzzle, dir.Scale(w.def.Ballistics.Speed))
}

// triggerAttack signals one melee swing to the animation layer.
func (w *Instance) triggerAttack() {
	w.deps.Anim.TriggerAttack()
}

// runFireLoop is the shared fire-rate catch-up shared by ranged and melee
// controllers. The gate re-evaluates every tick: releasing the trigger or
// holstering stops the loop no matter how it was entered. While the trigger
// is held the accumulator grows by dt and one shot fires per 1/fireRate
// interval until the accumulator goes negative, so a slow frame emits
// several shots and a fast frame may emit none.
func (w *Instance) runFireLoop(dt float64, shot func()) {
	if !w.firing || w.holstered {
		w.StopFiring()
		return
	}
	w.elapsed += dt
	interval := 1 / w.def.FireRate
	for w.elapsed >= 0 {
		w.applyRecoil()
		shot()
		w.elapsed -= interval
	}
}
