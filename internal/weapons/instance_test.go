package weapons

import (
	"strings"
	"testing"

	"ricochet/server/internal/geom"
)

func TestNewInstanceRequiresDefinition(t *testing.T) {
	if _, err := NewInstance(nil, rangedDeps(nullScene{}, nil)); err == nil {
		t.Fatal("NewInstance(nil) should fail")
	}
}

func TestMissingCollaboratorsDisableRangedInstance(t *testing.T) {
	deps := rangedDeps(nullScene{}, nil)
	deps.Target = nil
	deps.Scene = nil

	inst, err := NewInstance(rifleDefinition(), deps)
	if err == nil {
		t.Fatal("expected an error naming the missing collaborators")
	}
	for _, want := range []string{"aim target", "collision query"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not name %q", err, want)
		}
	}
	if inst == nil {
		t.Fatal("a disabled instance should still come back for the caller to hold")
	}
	if !inst.Disabled() {
		t.Fatal("instance should report disabled")
	}

	// Disabled instances swallow input instead of panicking on nil deps.
	inst.StartFiring()
	if inst.IsFiring() {
		t.Fatal("disabled instance latched its trigger")
	}
	inst.Update(1)
	inst.Destroy()
}

func TestMissingAimOrAnimDisablesAnyKind(t *testing.T) {
	deps := Deps{Anim: &fakeAnim{}}
	if _, err := NewInstance(swordDefinition(), deps); err == nil {
		t.Fatal("melee instance without an aim transform should be disabled")
	}

	deps = Deps{Aim: &fakeAim{}}
	_, err := NewInstance(swordDefinition(), deps)
	if err == nil {
		t.Fatal("melee instance without an animation driver should be disabled")
	}
	if !strings.Contains(err.Error(), "animation driver") {
		t.Fatalf("error %q does not name the animation driver", err)
	}
}

func TestMeleeInstanceSkipsRangedCollaborators(t *testing.T) {
	inst, err := NewInstance(swordDefinition(), Deps{Aim: &fakeAim{}, Anim: &fakeAnim{}})
	if err != nil {
		t.Fatalf("melee instance should not require target, muzzle or scene: %v", err)
	}
	if inst.Disabled() {
		t.Fatal("melee instance reported disabled")
	}
}

func TestNilOptionalCollaboratorsDefaultToNoops(t *testing.T) {
	deps := rangedDeps(&scriptedScene{hits: []Hit{{Point: geom.Vec3{Z: 1}, Normal: geom.Vec3{Z: -1}}}}, nil)
	deps.Combat = nil
	deps.Trails = nil
	inst := newTestInstance(t, rifleDefinition(), deps)

	// Spawning, hitting and expiring with nil combat and trail hooks must
	// not panic.
	inst.StartFiring()
	inst.Update(0.04)
	inst.Update(1)
	inst.Destroy()
}

func TestDestroyIsIdempotent(t *testing.T) {
	trails := &trailFactory{}
	inst := newTestInstance(t, rifleDefinition(), rangedDeps(nullScene{}, trails))

	inst.StartFiring()
	inst.Update(0.01)
	if inst.Bullets().Len() == 0 {
		t.Fatal("expected a live bullet before Destroy")
	}

	inst.Destroy()
	inst.Destroy()

	if inst.Bullets().Len() != 0 {
		t.Fatal("Destroy left bullets alive")
	}
	if got := trails.totalReleased(); got != 1 {
		t.Fatalf("trails released %d times, want exactly 1", got)
	}
	if inst.IsFiring() {
		t.Fatal("Destroy should release the trigger")
	}
}

func TestFireBulletAimsFromMuzzleTowardTarget(t *testing.T) {
	rig := &staticRig{aim: geom.Vec3{X: 3, Y: 1.5, Z: 4}, muzzle: geom.Vec3{Y: 1.5}}
	deps := rangedDeps(nullScene{}, nil)
	deps.Target = rig
	deps.Muzzle = rig
	def := rifleDefinition()
	def.Ballistics.Drop = 0
	inst := newTestInstance(t, def, deps)

	inst.StartFiring()
	inst.Update(0.01) // one shot, spawned after the advance pass
	inst.Update(0.01) // no second shot yet; the bullet flies 0.01s

	views := inst.Bullets().Snapshot()
	if len(views) != 1 {
		t.Fatalf("expected 1 bullet, have %d", len(views))
	}
	// Direction (3,0,4)/5 scaled by speed 40 gives (24,0,32); after 0.01s
	// of flight the bullet sits at muzzle + velocity*dt.
	want := geom.Vec3{X: 0.24, Y: 1.5, Z: 0.32}
	got := views[0].Position
	if got.Sub(want).Length() > 1e-9 {
		t.Fatalf("bullet at %+v, want %+v", got, want)
	}
}
