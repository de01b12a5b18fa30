package weapons

import (
	"testing"

	"ricochet/server/internal/geom"
)

// completeEquip drives a mount's in-flight transition to the end by finishing
// both animation clips.
func completeEquip(m *Mount, anim *fakeAnim) {
	anim.progress = 1
	m.Poll()
	anim.progress = 1
	m.Poll()
}

func TestEquipRecordsSlotBeforeAnimationPlays(t *testing.T) {
	anim := &fakeAnim{}
	mount := NewMount(anim)

	var changed []*Definition
	mount.OnWeaponChanged(func(def *Definition) { changed = append(changed, def) })

	def := pistolDefinition()
	deps := rangedDeps(nullScene{}, nil)
	deps.Anim = anim
	inst := newTestInstance(t, def, deps)

	if err := mount.Equip(inst); err != nil {
		t.Fatalf("Equip: %v", err)
	}

	if got := mount.At(SlotSecondary); got != inst {
		t.Fatalf("secondary slot holds %v, want the equipped instance", got)
	}
	if len(changed) != 1 || changed[0] != def {
		t.Fatalf("weapon-changed observers saw %v, want one call with the new definition", changed)
	}
	if len(anim.clips) != 1 || anim.clips[0] != "holster" {
		t.Fatalf("clips = %v, want just the holster clip so far", anim.clips)
	}
	if mount.Phase() != PhaseHolstering {
		t.Fatalf("phase = %v, want %v", mount.Phase(), PhaseHolstering)
	}
	if !inst.Holstered() {
		t.Fatal("freshly equipped instance should start holstered")
	}
}

func TestEquipWalksHolsterThenActivate(t *testing.T) {
	anim := &fakeAnim{}
	mount := NewMount(anim)

	deps := rangedDeps(nullScene{}, nil)
	deps.Anim = anim
	inst := newTestInstance(t, rifleDefinition(), deps)
	if err := mount.Equip(inst); err != nil {
		t.Fatalf("Equip: %v", err)
	}

	// Clip still running: polling changes nothing.
	anim.progress = 0.5
	mount.Poll()
	mount.Poll()
	if mount.Phase() != PhaseHolstering {
		t.Fatalf("phase = %v while holster clip runs, want %v", mount.Phase(), PhaseHolstering)
	}

	// Holster clip done: next poll starts the equip clip.
	anim.progress = 1
	mount.Poll()
	if mount.Phase() != PhaseActivating {
		t.Fatalf("phase = %v after holster finished, want %v", mount.Phase(), PhaseActivating)
	}
	if len(anim.clips) != 2 || anim.clips[1] != "equip_rifle" {
		t.Fatalf("clips = %v, want holster then equip_rifle", anim.clips)
	}
	if inst.Holstered() != true {
		t.Fatal("instance must stay holstered until the equip clip finishes")
	}

	// Equip clip done: weapon comes up.
	anim.progress = 1
	mount.Poll()
	if mount.Phase() != PhaseIdle {
		t.Fatalf("phase = %v after equip finished, want %v", mount.Phase(), PhaseIdle)
	}
	if inst.Holstered() {
		t.Fatal("instance should be drawn once the sequence completes")
	}
	if mount.Active() != inst {
		t.Fatal("active slot should point at the equipped instance")
	}
}

func TestEquipSpendsOnePollPerPhase(t *testing.T) {
	anim := &fakeAnim{}
	mount := NewMount(anim)

	deps := rangedDeps(nullScene{}, nil)
	deps.Anim = anim
	inst := newTestInstance(t, rifleDefinition(), deps)
	if err := mount.Equip(inst); err != nil {
		t.Fatalf("Equip: %v", err)
	}

	// Even when every clip reports complete immediately, one poll advances
	// one phase and no more.
	anim.progress = 1
	mount.Poll()
	if mount.Phase() != PhaseActivating {
		t.Fatalf("first poll landed in %v, want %v", mount.Phase(), PhaseActivating)
	}
	anim.progress = 1
	mount.Poll()
	if mount.Phase() != PhaseIdle {
		t.Fatalf("second poll landed in %v, want %v", mount.Phase(), PhaseIdle)
	}
}

func TestEquipDestroysDisplacedInstanceImmediately(t *testing.T) {
	anim := &fakeAnim{}
	mount := NewMount(anim)

	trails := &trailFactory{}
	deps := rangedDeps(nullScene{}, trails)
	deps.Anim = anim
	old := newTestInstance(t, pistolDefinition(), deps)
	if err := mount.Equip(old); err != nil {
		t.Fatalf("Equip old: %v", err)
	}
	completeEquip(mount, anim)

	// Put bullets in flight on the old weapon.
	old.Bullets().Spawn(geom.Vec3{}, geom.Vec3{X: 30})
	old.Bullets().Spawn(geom.Vec3{}, geom.Vec3{X: 30})
	if old.Bullets().Len() != 2 {
		t.Fatalf("expected 2 live bullets, have %d", old.Bullets().Len())
	}

	replacement := newTestInstance(t, pistolDefinition(), deps)
	if err := mount.Equip(replacement); err != nil {
		t.Fatalf("Equip replacement: %v", err)
	}

	// Destruction is synchronous with the call, not with the animation.
	if old.Bullets().Len() != 0 {
		t.Fatalf("displaced weapon still owns %d bullets", old.Bullets().Len())
	}
	if got := trails.totalReleased(); got != 2 {
		t.Fatalf("released %d trails at equip time, want 2", got)
	}
	if mount.At(SlotSecondary) != replacement {
		t.Fatal("secondary slot should already hold the replacement")
	}
}

func TestActiveSlotMovesOnlyAtCompletion(t *testing.T) {
	anim := &fakeAnim{}
	mount := NewMount(anim)

	rifleDeps := rangedDeps(nullScene{}, nil)
	rifleDeps.Anim = anim
	rifle := newTestInstance(t, rifleDefinition(), rifleDeps)
	if err := mount.Equip(rifle); err != nil {
		t.Fatalf("Equip rifle: %v", err)
	}
	completeEquip(mount, anim)
	if mount.ActiveSlot() != SlotPrimary {
		t.Fatalf("active slot = %v, want %v", mount.ActiveSlot(), SlotPrimary)
	}

	pistolDeps := rangedDeps(nullScene{}, nil)
	pistolDeps.Anim = anim
	pistol := newTestInstance(t, pistolDefinition(), pistolDeps)
	if err := mount.Equip(pistol); err != nil {
		t.Fatalf("Equip pistol: %v", err)
	}

	// Mid-sequence the recorded active slot still names the rifle.
	anim.progress = 1
	mount.Poll()
	if mount.ActiveSlot() != SlotPrimary {
		t.Fatalf("active slot flipped to %v before activation finished", mount.ActiveSlot())
	}
	if mount.Active() != rifle {
		t.Fatal("Active() should still resolve to the rifle mid-sequence")
	}

	anim.progress = 1
	mount.Poll()
	if mount.ActiveSlot() != SlotSecondary {
		t.Fatalf("active slot = %v after completion, want %v", mount.ActiveSlot(), SlotSecondary)
	}
	if mount.Active() != pistol {
		t.Fatal("Active() should resolve to the pistol after completion")
	}
}

func TestRapidReEquipLastCallWins(t *testing.T) {
	anim := &fakeAnim{}
	mount := NewMount(anim)

	pistolDeps := rangedDeps(nullScene{}, nil)
	pistolDeps.Anim = anim
	pistol := newTestInstance(t, pistolDefinition(), pistolDeps)
	if err := mount.Equip(pistol); err != nil {
		t.Fatalf("Equip pistol: %v", err)
	}

	// Second request lands before the first sequence leaves holstering.
	rifleDeps := rangedDeps(nullScene{}, nil)
	rifleDeps.Anim = anim
	rifle := newTestInstance(t, rifleDefinition(), rifleDeps)
	if err := mount.Equip(rifle); err != nil {
		t.Fatalf("Equip rifle: %v", err)
	}
	if mount.Phase() != PhaseHolstering {
		t.Fatalf("phase = %v after re-equip, want a fresh %v", mount.Phase(), PhaseHolstering)
	}

	completeEquip(mount, anim)

	if mount.ActiveSlot() != SlotPrimary || mount.Active() != rifle {
		t.Fatalf("active = %v in slot %v, want the rifle; the later request should win", mount.Active(), mount.ActiveSlot())
	}
	// The first weapon keeps its slot but never came up.
	if mount.At(SlotSecondary) != pistol {
		t.Fatal("pistol should still be stored in the secondary slot")
	}
	if !pistol.Holstered() {
		t.Fatal("superseded weapon should remain holstered")
	}
}

func TestEquipSameInstanceIsNotDestroyed(t *testing.T) {
	anim := &fakeAnim{}
	mount := NewMount(anim)

	trails := &trailFactory{}
	deps := rangedDeps(nullScene{}, trails)
	deps.Anim = anim
	inst := newTestInstance(t, rifleDefinition(), deps)
	if err := mount.Equip(inst); err != nil {
		t.Fatalf("Equip: %v", err)
	}
	completeEquip(mount, anim)

	inst.Bullets().Spawn(geom.Vec3{}, geom.Vec3{X: 40})

	if err := mount.Equip(inst); err != nil {
		t.Fatalf("re-Equip: %v", err)
	}
	if inst.Bullets().Len() != 1 {
		t.Fatal("re-equipping the same instance must not clear its bullets")
	}
	if trails.totalReleased() != 0 {
		t.Fatal("re-equipping the same instance must not release its trails")
	}
}

func TestEquipRejectsNilAndUnknownSlot(t *testing.T) {
	mount := NewMount(&fakeAnim{})

	if err := mount.Equip(nil); err == nil {
		t.Fatal("Equip(nil) should fail")
	}

	def := rifleDefinition()
	def.Slot = "belt"
	inst := &Instance{def: def}
	if err := mount.Equip(inst); err == nil {
		t.Fatal("Equip with an unknown slot should fail")
	}
}

func TestHolsterGateReleasesTriggerDuringTransition(t *testing.T) {
	anim := &fakeAnim{}
	mount := NewMount(anim)

	var shots int
	deps := countingDeps(&shots)
	deps.Anim = anim
	rifle := newTestInstance(t, rifleDefinition(), deps)
	if err := mount.Equip(rifle); err != nil {
		t.Fatalf("Equip rifle: %v", err)
	}
	completeEquip(mount, anim)

	mount.StartFiring()

	pistolDeps := rangedDeps(nullScene{}, nil)
	pistolDeps.Anim = anim
	pistol := newTestInstance(t, pistolDefinition(), pistolDeps)
	if err := mount.Equip(pistol); err != nil {
		t.Fatalf("Equip pistol: %v", err)
	}

	// The rifle is holstered by the sequence, so the next frame drops its
	// trigger instead of firing.
	anim.progress = 0
	mount.UpdateWeapon(0.1)
	if shots != 0 {
		t.Fatalf("holstered rifle fired %d shots during the swap", shots)
	}
	if rifle.IsFiring() {
		t.Fatal("holster gate should have released the rifle trigger")
	}
}

func TestMountDestroyPurgesEverySlot(t *testing.T) {
	anim := &fakeAnim{}
	mount := NewMount(anim)

	trails := &trailFactory{}
	rifleDeps := rangedDeps(nullScene{}, trails)
	rifleDeps.Anim = anim
	rifle := newTestInstance(t, rifleDefinition(), rifleDeps)
	if err := mount.Equip(rifle); err != nil {
		t.Fatalf("Equip rifle: %v", err)
	}
	completeEquip(mount, anim)
	rifle.Bullets().Spawn(geom.Vec3{}, geom.Vec3{X: 40})

	pistolDeps := rangedDeps(nullScene{}, trails)
	pistolDeps.Anim = anim
	pistol := newTestInstance(t, pistolDefinition(), pistolDeps)
	if err := mount.Equip(pistol); err != nil {
		t.Fatalf("Equip pistol: %v", err)
	}

	mount.Destroy()

	if mount.At(SlotPrimary) != nil || mount.At(SlotSecondary) != nil {
		t.Fatal("Destroy should empty both slots")
	}
	if mount.Active() != nil {
		t.Fatal("Destroy should leave no active instance")
	}
	if mount.Phase() != PhaseIdle {
		t.Fatalf("phase = %v after Destroy, want %v", mount.Phase(), PhaseIdle)
	}
	if rifle.Bullets().Len() != 0 {
		t.Fatal("Destroy should clear rifle bullets")
	}
	if trails.totalReleased() != 1 {
		t.Fatalf("released %d trails, want 1", trails.totalReleased())
	}
}
