package weapons

import (
	"testing"

	"ricochet/server/internal/geom"
)

func rifleDefinition() *Definition {
	return &Definition{
		ID:       "test-rifle",
		Name:     "Test Rifle",
		Slot:     SlotPrimary,
		Kind:     KindRifle,
		FireRate: 25,
		Recoil: RecoilProfile{
			Vertical:   2,
			Horizontal: RecoilSpan{Min: -1, Max: 1},
			Interval:   1,
		},
		Ballistics: Ballistics{
			Speed:               40,
			MaxLifetime:         10,
			Damage:              12,
			MaxBounces:          2,
			BounceSpeedModifier: 0.5,
			Knockback:           1.5,
		},
		ClipSize:       30,
		ReloadTime:     2,
		EquipAnimation: "equip_rifle",
	}
}

func pistolDefinition() *Definition {
	return &Definition{
		ID:       "test-pistol",
		Name:     "Test Pistol",
		Slot:     SlotSecondary,
		Kind:     KindPistol,
		FireRate: 5,
		Recoil: RecoilProfile{
			Vertical: 1,
		},
		Ballistics: Ballistics{
			Speed:               30,
			MaxLifetime:         5,
			Damage:              20,
			BounceSpeedModifier: 0.4,
		},
		ClipSize:       12,
		ReloadTime:     1.5,
		EquipAnimation: "equip_pistol",
	}
}

func swordDefinition() *Definition {
	return &Definition{
		ID:             "test-sword",
		Name:           "Test Sword",
		Slot:           SlotSecondary,
		Kind:           KindSword,
		FireRate:       2,
		EquipAnimation: "equip_sword",
	}
}

type fakeAim struct {
	current Orientation
}

func (a *fakeAim) Orientation() Orientation     { return a.current }
func (a *fakeAim) SetOrientation(o Orientation) { a.current = o }

// staticRig supplies fixed aim-target and muzzle points.
type staticRig struct {
	aim    geom.Vec3
	muzzle geom.Vec3
}

func (r *staticRig) AimPoint() geom.Vec3    { return r.aim }
func (r *staticRig) MuzzlePoint() geom.Vec3 { return r.muzzle }

// nullScene never reports a hit.
type nullScene struct{}

func (nullScene) CastSegment(geom.Vec3, geom.Vec3) (Hit, bool) { return Hit{}, false }

// scriptedScene returns its queued hits one cast at a time, then misses.
type scriptedScene struct {
	hits  []Hit
	casts int
}

func (s *scriptedScene) CastSegment(from, to geom.Vec3) (Hit, bool) {
	s.casts++
	if len(s.hits) == 0 {
		return Hit{}, false
	}
	hit := s.hits[0]
	s.hits = s.hits[1:]
	return hit, true
}

type recordedHit struct {
	hit       Hit
	damage    float64
	knockback float64
}

type recordingCombat struct {
	hits []recordedHit
}

func (c *recordingCombat) BulletHit(hit Hit, damage, knockback float64) {
	c.hits = append(c.hits, recordedHit{hit: hit, damage: damage, knockback: knockback})
}

// trailRecord tracks the endpoints and release count of one trail.
type trailRecord struct {
	points   []geom.Vec3
	released int
}

func (t *trailRecord) Follow(p geom.Vec3) { t.points = append(t.points, p) }
func (t *trailRecord) Release()           { t.released++ }

type trailFactory struct {
	trails []*trailRecord
}

func (f *trailFactory) SpawnTrail(origin geom.Vec3) Trail {
	trail := &trailRecord{points: []geom.Vec3{origin}}
	f.trails = append(f.trails, trail)
	return trail
}

func (f *trailFactory) totalReleased() int {
	total := 0
	for _, trail := range f.trails {
		total += trail.released
	}
	return total
}

// fakeAnim is a hand-driven animation layer. Tests set progress directly to
// simulate clips finishing.
type fakeAnim struct {
	clips    []string
	progress float64
	attacks  int
}

func (a *fakeAnim) PlayHolster() {
	a.clips = append(a.clips, "holster")
	a.progress = 0
}

func (a *fakeAnim) PlayEquip(clip string) {
	a.clips = append(a.clips, clip)
	a.progress = 0
}

func (a *fakeAnim) Progress() float64 { return a.progress }
func (a *fakeAnim) TriggerAttack()    { a.attacks++ }

// rangedDeps assembles a full collaborator set around the given scene and
// trail factory.
func rangedDeps(scene CollisionQuery, trails TrailSpawner) Deps {
	rig := &staticRig{aim: geom.Vec3{Y: 1.5, Z: 50}, muzzle: geom.Vec3{Y: 1.5}}
	return Deps{
		Target: rig,
		Muzzle: rig,
		Aim:    &fakeAim{},
		Scene:  scene,
		Anim:   &fakeAnim{},
		Combat: &recordingCombat{},
		Trails: trails,
	}
}

func newTestInstance(t *testing.T, def *Definition, deps Deps) *Instance {
	t.Helper()
	inst, err := NewInstance(def, deps)
	if err != nil {
		t.Fatalf("NewInstance(%s): %v", def.ID, err)
	}
	return inst
}
