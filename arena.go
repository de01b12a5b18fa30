package server

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"ricochet/server/internal/geom"
)

// Box is one static arena collider. Boxes sit on the ground plane and never
// move after generation.
type Box struct {
	ID     string    `json:"id"`
	Bounds geom.AABB `json:"bounds"`
}

// deterministicSeedValue hashes a root seed and a subsystem label into a
// non-zero RNG seed so each subsystem draws from its own stream.
func deterministicSeedValue(rootSeed, label string) int64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(rootSeed))
	hasher.Write([]byte{0})
	hasher.Write([]byte(label))
	sum := hasher.Sum64()
	if sum == 0 {
		sum = 1
	}
	return int64(sum)
}

func newDeterministicRNG(rootSeed, label string) *rand.Rand {
	return rand.New(rand.NewSource(deterministicSeedValue(rootSeed, label)))
}

// generateBoxes scatters solid cover around the arena floor. Placement skips
// the spawn area and rejects overlapping candidates, so very dense
// configurations can come back short once the attempt budget runs out.
func generateBoxes(cfg ArenaConfig) []Box {
	count := cfg.BoxCount
	if count <= 0 {
		return nil
	}

	rng := newDeterministicRNG(cfg.Seed, "arena.boxes")
	spawn := spawnPoint(cfg)

	boxes := make([]Box, 0, count)
	attempts := 0
	maxAttempts := count * 20

	for len(boxes) < count && attempts < maxAttempts {
		attempts++

		width := boxMinExtent + rng.Float64()*(boxMaxExtent-boxMinExtent)
		depth := boxMinExtent + rng.Float64()*(boxMaxExtent-boxMinExtent)
		height := boxMinHeight + rng.Float64()*(boxMaxHeight-boxMinHeight)

		maxX := cfg.Width - boxSpawnMargin - width
		maxZ := cfg.Depth - boxSpawnMargin - depth
		if maxX <= boxSpawnMargin || maxZ <= boxSpawnMargin {
			break
		}

		x := boxSpawnMargin + rng.Float64()*(maxX-boxSpawnMargin)
		z := boxSpawnMargin + rng.Float64()*(maxZ-boxSpawnMargin)

		candidate := Box{
			ID: fmt.Sprintf("box-%d", len(boxes)+1),
			Bounds: geom.AABB{
				Min: geom.Vec3{X: x, Y: 0, Z: z},
				Max: geom.Vec3{X: x + width, Y: height, Z: z + depth},
			},
		}

		if circleBoxOverlap(spawn.X, spawn.Z, spawnSafeRadius, candidate.Bounds) {
			continue
		}

		overlapsExisting := false
		for _, box := range boxes {
			if footprintsOverlap(candidate.Bounds, box.Bounds, actorHalf*2) {
				overlapsExisting = true
				break
			}
		}
		if overlapsExisting {
			continue
		}

		boxes = append(boxes, candidate)
	}

	return boxes
}

// spawnPoint is where new actors appear: centered on X, near the south edge
// looking into the arena.
func spawnPoint(cfg ArenaConfig) geom.Vec3 {
	return geom.Vec3{
		X: cfg.Width / 2,
		Z: clamp(cfg.Depth*0.15, spawnSafeRadius, cfg.Depth-spawnSafeRadius),
	}
}

// circleBoxOverlap tests a ground-plane circle against a box footprint.
func circleBoxOverlap(cx, cz, radius float64, box geom.AABB) bool {
	closestX := clamp(cx, box.Min.X, box.Max.X)
	closestZ := clamp(cz, box.Min.Z, box.Max.Z)
	dx := cx - closestX
	dz := cz - closestZ
	return dx*dx+dz*dz <= radius*radius
}

// footprintsOverlap tests two box footprints with a gap wide enough for an
// actor to path through.
func footprintsOverlap(a, b geom.AABB, gap float64) bool {
	if a.Max.X+gap <= b.Min.X || b.Max.X+gap <= a.Min.X {
		return false
	}
	if a.Max.Z+gap <= b.Min.Z || b.Max.Z+gap <= a.Min.Z {
		return false
	}
	return true
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
