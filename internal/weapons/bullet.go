package weapons

import (
	"fmt"

	"ricochet/server/internal/geom"
)

// Hit describes the nearest surface struck by a bullet segment cast.
type Hit struct {
	Point    geom.Vec3
	Normal   geom.Vec3
	Collider string
}

// CollisionQuery casts a segment against the hosting scene and returns the
// nearest hit, if any.
type CollisionQuery interface {
	CastSegment(from, to geom.Vec3) (Hit, bool)
}

// CombatHook receives every bullet impact together with the definition's
// damage and knockback payload. Damage resolution is not part of the weapon
// core; implementations decide what, if anything, to do with the hit.
type CombatHook interface {
	BulletHit(hit Hit, damage, knockback float64)
}

// Trail is the tracer resource owned by a single bullet. Follow moves its
// endpoint; Release frees it and is called exactly once per bullet.
type Trail interface {
	Follow(p geom.Vec3)
	Release()
}

// TrailSpawner allocates a trail anchored at a bullet's spawn point.
type TrailSpawner interface {
	SpawnTrail(origin geom.Vec3) Trail
}

// NoopCombat is the stub combat hook used when the host does not wire one.
type NoopCombat struct{}

func (NoopCombat) BulletHit(Hit, float64, float64) {}

type noopTrail struct{}

func (noopTrail) Follow(geom.Vec3) {}
func (noopTrail) Release()         {}

type noopTrailSpawner struct{}

func (noopTrailSpawner) SpawnTrail(geom.Vec3) Trail { return noopTrail{} }

// Bullet tracks one projectile between bounces. Position is derived, not
// stored: origin and velocity are rebased at every bounce and elapsed counts
// seconds since that rebase.
type Bullet struct {
	id       uint64
	origin   geom.Vec3
	velocity geom.Vec3
	elapsed  float64
	bounces  int
	pierce   int
	alive    bool
	trail    Trail
}

// SimulatorHooks carries optional lifecycle callbacks so hosts can observe
// bullets without reaching into the simulation. Nil funcs are skipped.
type SimulatorHooks struct {
	Spawned func(id uint64)
	Bounced func(id uint64, at geom.Vec3, remaining int)
	Expired func(id uint64)
}

// SimulatorConfig collects the dependencies of a bullet simulator. Scene is
// required; Combat and Trails fall back to no-op stubs.
type SimulatorConfig struct {
	Definition *Definition
	Scene      CollisionQuery
	Combat     CombatHook
	Trails     TrailSpawner
	Hooks      SimulatorHooks
}

// Simulator owns every live bullet fired by one weapon instance and advances
// them against the scene. It is driven exclusively from the owning world
// goroutine and holds no locks.
type Simulator struct {
	def    *Definition
	scene  CollisionQuery
	combat CombatHook
	trails TrailSpawner
	hooks  SimulatorHooks

	bullets []*Bullet
	nextID  uint64
}

// NewSimulator builds a simulator for one ranged weapon instance.
func NewSimulator(cfg SimulatorConfig) *Simulator {
	combat := cfg.Combat
	if combat == nil {
		combat = NoopCombat{}
	}
	trails := cfg.Trails
	if trails == nil {
		trails = noopTrailSpawner{}
	}
	return &Simulator{
		def:    cfg.Definition,
		scene:  cfg.Scene,
		combat: combat,
		trails: trails,
		hooks:  cfg.Hooks,
	}
}

// Spawn adds a bullet at origin with the given initial velocity. The bullet
// starts with the definition's full bounce and pierce budget and a fresh
// trail anchored at origin.
func (s *Simulator) Spawn(origin, velocity geom.Vec3) {
	s.nextID++
	b := &Bullet{
		id:       s.nextID,
		origin:   origin,
		velocity: velocity,
		bounces:  s.def.Ballistics.MaxBounces,
		pierce:   s.def.Ballistics.Pierce,
		alive:    true,
		trail:    s.trails.SpawnTrail(origin),
	}
	s.bullets = append(s.bullets, b)
	if s.hooks.Spawned != nil {
		s.hooks.Spawned(b.id)
	}
}

// positionAt evaluates the ballistic arc t seconds after the last rebase:
// p(t) = origin + velocity*t + 0.5*g*t^2 with gravity pointing down at the
// definition's drop rate.
func (s *Simulator) positionAt(b *Bullet, t float64) geom.Vec3 {
	p := b.origin.Add(b.velocity.Scale(t))
	p.Y -= 0.5 * s.def.Ballistics.Drop * t * t
	return p
}

// live reports whether the bullet survives a prune pass. The bounce check is
// deliberately >= 0: a bullet configured with zero max bounces still bounces
// once before dying.
func (s *Simulator) live(b *Bullet) bool {
	return b.alive && b.bounces >= 0 && b.elapsed <= s.def.Ballistics.MaxLifetime
}

// Advance steps every bullet by dt seconds: prune the dead, integrate and
// collide the survivors, then prune again so bullets killed this frame are
// gone before the caller observes the simulator.
func (s *Simulator) Advance(dt float64) {
	s.prune()
	for _, b := range s.bullets {
		from := s.positionAt(b, b.elapsed)
		b.elapsed += dt
		to := s.positionAt(b, b.elapsed)

		hit, ok := s.scene.CastSegment(from, to)
		if !ok {
			b.trail.Follow(to)
			continue
		}

		s.combat.BulletHit(hit, s.def.Ballistics.Damage, s.def.Ballistics.Knockback)

		if b.bounces < 0 {
			b.elapsed = s.def.Ballistics.MaxLifetime + 1
			continue
		}

		b.elapsed = 0
		b.origin = hit.Point
		b.velocity = b.velocity.Reflect(hit.Normal).Scale(s.def.Ballistics.BounceSpeedModifier)
		b.bounces--
		b.trail.Follow(hit.Point)
		if s.hooks.Bounced != nil {
			s.hooks.Bounced(b.id, hit.Point, b.bounces)
		}
	}
	s.prune()
}

// prune drops dead bullets in place, releasing each trail exactly once. A
// bullet already released by an earlier pass cannot be revisited because it
// left the slice with its trail cleared.
func (s *Simulator) prune() {
	filtered := s.bullets[:0]
	for _, b := range s.bullets {
		if s.live(b) {
			filtered = append(filtered, b)
			continue
		}
		s.release(b)
		if s.hooks.Expired != nil {
			s.hooks.Expired(b.id)
		}
	}
	s.bullets = filtered
}

func (s *Simulator) release(b *Bullet) {
	b.alive = false
	if b.trail == nil {
		return
	}
	b.trail.Release()
	b.trail = nil
}

// Clear releases every remaining trail and drops all bullets. Instance
// destruction calls this; calling it again is a no-op.
func (s *Simulator) Clear() {
	for _, b := range s.bullets {
		s.release(b)
	}
	s.bullets = s.bullets[:0]
}

// Len returns the number of live bullets.
func (s *Simulator) Len() int {
	return len(s.bullets)
}

// BulletView is the transport-facing snapshot of one live bullet.
type BulletView struct {
	ID       string    `json:"id"`
	Position geom.Vec3 `json:"position"`
}

// Snapshot returns the current bullet positions for broadcast.
func (s *Simulator) Snapshot() []BulletView {
	if len(s.bullets) == 0 {
		return nil
	}
	views := make([]BulletView, 0, len(s.bullets))
	for _, b := range s.bullets {
		views = append(views, BulletView{
			ID:       fmt.Sprintf("bullet-%d", b.id),
			Position: s.positionAt(b, b.elapsed),
		})
	}
	return views
}
