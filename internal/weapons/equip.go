package weapons

import "fmt"

// Phase identifies the stage of an equip transition.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseHolstering Phase = "holstering"
	PhaseActivating Phase = "activating"
)

// transition is the single in-flight equip sequence of a mount: which
// instance is being brought up, which slot it lands in, and which phase the
// sequence is waiting out.
type transition struct {
	instance *Instance
	dest     int
	phase    Phase
}

// Mount is an actor's weapon carry: one instance per slot plus the recorded
// active slot index. Equipping swaps slot contents synchronously, then walks
// a holster/activate sequence gated on the animation layer; the active index
// only moves once the sequence completes.
//
// At most one transition is in flight. A new Equip replaces it and starts
// fresh from the currently-recorded active slot; rapid switches therefore
// race exactly as fast inputs race in play, with the last call winning.
// Sequences are never queued, merged, or cancelled by other input.
type Mount struct {
	anim      AnimationDriver
	slots     [SlotCount]*Instance
	active    int
	current   *transition
	observers []func(*Definition)
}

// NewMount builds an empty mount driven by the given animation layer.
func NewMount(anim AnimationDriver) *Mount {
	return &Mount{anim: anim}
}

// OnWeaponChanged registers an observer invoked with the new definition
// every time Equip records an instance, before any animation plays.
func (m *Mount) OnWeaponChanged(fn func(*Definition)) {
	if fn == nil {
		return
	}
	m.observers = append(m.observers, fn)
}

func (m *Mount) notify(def *Definition) {
	for _, fn := range m.observers {
		fn(def)
	}
}

// Equip stores the instance in its definition's slot and begins the
// holster/activate sequence. The displaced instance, if any, is destroyed
// immediately (its bullets clear, trails release) and the weapon-changed
// notification fires before the first animation frame plays.
func (m *Mount) Equip(inst *Instance) error {
	if inst == nil {
		return fmt.Errorf("equip requires an instance")
	}
	def := inst.Definition()
	idx, ok := SlotIndex(def.Slot)
	if !ok {
		return fmt.Errorf("weapon %q: unknown slot %q", def.ID, def.Slot)
	}

	if prev := m.slots[idx]; prev != nil && prev != inst {
		prev.Destroy()
	}
	m.slots[idx] = inst
	m.notify(def)

	inst.SetHolstered(true)
	if src := m.slots[m.active]; src != nil {
		src.SetHolstered(true)
	}
	if m.anim != nil {
		m.anim.PlayHolster()
	}
	m.current = &transition{instance: inst, dest: idx, phase: PhaseHolstering}
	return nil
}

// Poll advances the in-flight transition when its resume condition is met.
// It runs once per simulation step and again on the snapshot path; calling
// it any number of times per frame is safe. Each call moves at most one
// phase, so even an instantly-complete animation spends a poll in each
// phase.
func (m *Mount) Poll() {
	t := m.current
	if t == nil || m.anim == nil {
		return
	}
	switch t.phase {
	case PhaseHolstering:
		if m.anim.Progress() < 1 {
			return
		}
		m.anim.PlayEquip(t.instance.Definition().EquipAnimation)
		t.phase = PhaseActivating
	case PhaseActivating:
		if m.anim.Progress() < 1 {
			return
		}
		t.instance.SetHolstered(false)
		m.active = t.dest
		m.current = nil
	}
}

// UpdateWeapon is the once-per-frame entry point: resolve any pending
// transition, then advance whichever instance the active slot currently
// holds. Bullets of the active weapon keep simulating through an in-flight
// equip sequence.
func (m *Mount) UpdateWeapon(dt float64) {
	m.Poll()
	if inst := m.slots[m.active]; inst != nil {
		inst.Update(dt)
	}
}

// Active returns the instance in the recorded active slot, or nil.
func (m *Mount) Active() *Instance {
	return m.slots[m.active]
}

// ActiveSlot returns the recorded active slot.
func (m *Mount) ActiveSlot() Slot {
	return SlotAt(m.active)
}

// At returns the instance stored in a slot, or nil.
func (m *Mount) At(slot Slot) *Instance {
	idx, ok := SlotIndex(slot)
	if !ok {
		return nil
	}
	return m.slots[idx]
}

// Phase reports the stage of the in-flight transition, or PhaseIdle.
func (m *Mount) Phase() Phase {
	if m.current == nil {
		return PhaseIdle
	}
	return m.current.phase
}

// Definition returns the active instance's definition, or nil when the
// active slot is empty.
func (m *Mount) Definition() *Definition {
	if inst := m.Active(); inst != nil {
		return inst.Definition()
	}
	return nil
}

// StartFiring latches the active instance's trigger.
func (m *Mount) StartFiring() {
	if inst := m.Active(); inst != nil {
		inst.StartFiring()
	}
}

// StopFiring releases the active instance's trigger.
func (m *Mount) StopFiring() {
	if inst := m.Active(); inst != nil {
		inst.StopFiring()
	}
}

// IsFiring reports whether the active instance's trigger is held.
func (m *Mount) IsFiring() bool {
	if inst := m.Active(); inst != nil {
		return inst.IsFiring()
	}
	return false
}

// SetHolstered stows or draws the active instance outside of an equip
// sequence (sprinting, cutscenes). It does not touch the transition machine.
func (m *Mount) SetHolstered(v bool) {
	if inst := m.Active(); inst != nil {
		inst.SetHolstered(v)
	}
}

// Destroy tears down every instance on the mount, clearing bullets and
// releasing trails. Used when the owning actor leaves the world.
func (m *Mount) Destroy() {
	for i, inst := range m.slots {
		if inst == nil {
			continue
		}
		inst.Destroy()
		m.slots[i] = nil
	}
	m.current = nil
}
