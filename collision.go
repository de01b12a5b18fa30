package server

import (
	"math"

	"ricochet/server/internal/geom"
	"ricochet/server/internal/weapons"
)

// groundColliderID names the arena floor in hit reports.
const groundColliderID = "ground"

// arenaScene casts bullet segments for one shooter. The shooter's own hull
// is excluded so a freshly spawned bullet never strikes its origin actor.
type arenaScene struct {
	world *World
	owner string
}

var _ weapons.CollisionQuery = (*arenaScene)(nil)

// CastSegment returns the nearest surface the segment crosses: the arena
// floor, a box, or another actor's hull.
func (s *arenaScene) CastSegment(from, to geom.Vec3) (weapons.Hit, bool) {
	bestT := math.MaxFloat64
	var best weapons.Hit
	found := false

	consider := func(t float64, normal geom.Vec3, collider string) {
		if t >= bestT {
			return
		}
		bestT = t
		best = weapons.Hit{Point: geom.PointAt(from, to, t), Normal: normal, Collider: collider}
		found = true
	}

	if t, normal, ok := geom.SegmentPlaneY(from, to, 0); ok {
		consider(t, normal, groundColliderID)
	}
	for _, box := range s.world.boxes {
		if t, normal, ok := geom.SegmentAABB(from, to, box.Bounds); ok {
			consider(t, normal, box.ID)
		}
	}
	for id, actor := range s.world.actors {
		if id == s.owner {
			continue
		}
		if t, normal, ok := geom.SegmentAABB(from, to, actor.hull()); ok {
			consider(t, normal, id)
		}
	}

	return best, found
}
