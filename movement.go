package server

import "math"

// moveActor advances an actor while clamping speed, arena bounds, and box
// walls. Movement resolves one axis at a time so sliding along a wall keeps
// the other axis' progress.
func moveActor(state *actorState, dt float64, boxes []Box, arena ArenaConfig) {
	dx := state.intentX
	dz := state.intentZ
	length := math.Hypot(dx, dz)
	if length != 0 {
		dx /= length
		dz /= length
	}

	deltaX := dx * moveSpeed * dt
	deltaZ := dz * moveSpeed * dt

	newX := clamp(state.pos.X+deltaX, actorHalf, arena.Width-actorHalf)
	if deltaX != 0 {
		newX = resolveAxisMoveX(state.pos.X, state.pos.Z, newX, deltaX, boxes, arena.Width)
	}

	newZ := clamp(state.pos.Z+deltaZ, actorHalf, arena.Depth-actorHalf)
	if deltaZ != 0 {
		newZ = resolveAxisMoveZ(newX, state.pos.Z, newZ, deltaZ, boxes, arena.Depth)
	}

	state.pos.X = newX
	state.pos.Z = newZ

	resolveBoxPenetration(state, boxes, arena)
}

// resolveAxisMoveX applies east-west movement while stopping at box walls.
func resolveAxisMoveX(oldX, oldZ, proposedX, deltaX float64, boxes []Box, width float64) float64 {
	newX := proposedX
	for _, box := range boxes {
		minZ := box.Bounds.Min.Z - actorHalf
		maxZ := box.Bounds.Max.Z + actorHalf
		if oldZ < minZ || oldZ > maxZ {
			continue
		}

		if deltaX > 0 {
			boundary := box.Bounds.Min.X - actorHalf
			if oldX <= boundary && newX > boundary {
				newX = boundary
			}
		} else if deltaX < 0 {
			boundary := box.Bounds.Max.X + actorHalf
			if oldX >= boundary && newX < boundary {
				newX = boundary
			}
		}
	}
	return clamp(newX, actorHalf, width-actorHalf)
}

// resolveAxisMoveZ applies north-south movement while stopping at box walls.
func resolveAxisMoveZ(oldX, oldZ, proposedZ, deltaZ float64, boxes []Box, depth float64) float64 {
	newZ := proposedZ
	for _, box := range boxes {
		minX := box.Bounds.Min.X - actorHalf
		maxX := box.Bounds.Max.X + actorHalf
		if oldX < minX || oldX > maxX {
			continue
		}

		if deltaZ > 0 {
			boundary := box.Bounds.Min.Z - actorHalf
			if oldZ <= boundary && newZ > boundary {
				newZ = boundary
			}
		} else if deltaZ < 0 {
			boundary := box.Bounds.Max.Z + actorHalf
			if oldZ >= boundary && newZ < boundary {
				newZ = boundary
			}
		}
	}
	return clamp(newZ, actorHalf, depth-actorHalf)
}

// resolveBoxPenetration nudges an actor out of any box footprint it overlaps.
func resolveBoxPenetration(state *actorState, boxes []Box, arena ArenaConfig) {
	for _, box := range boxes {
		if !circleBoxOverlap(state.pos.X, state.pos.Z, actorHalf, box.Bounds) {
			continue
		}

		closestX := clamp(state.pos.X, box.Bounds.Min.X, box.Bounds.Max.X)
		closestZ := clamp(state.pos.Z, box.Bounds.Min.Z, box.Bounds.Max.Z)
		dx := state.pos.X - closestX
		dz := state.pos.Z - closestZ
		distSq := dx*dx + dz*dz

		if distSq == 0 {
			west := math.Abs(state.pos.X - box.Bounds.Min.X)
			east := math.Abs(box.Bounds.Max.X - state.pos.X)
			north := math.Abs(state.pos.Z - box.Bounds.Min.Z)
			south := math.Abs(box.Bounds.Max.Z - state.pos.Z)

			minDist := west
			direction := 0
			if east < minDist {
				minDist = east
				direction = 1
			}
			if north < minDist {
				minDist = north
				direction = 2
			}
			if south < minDist {
				direction = 3
			}

			switch direction {
			case 0:
				state.pos.X = box.Bounds.Min.X - actorHalf
			case 1:
				state.pos.X = box.Bounds.Max.X + actorHalf
			case 2:
				state.pos.Z = box.Bounds.Min.Z - actorHalf
			case 3:
				state.pos.Z = box.Bounds.Max.Z + actorHalf
			}
		} else {
			dist := math.Sqrt(distSq)
			if dist < actorHalf {
				overlap := actorHalf - dist
				state.pos.X += dx / dist * overlap
				state.pos.Z += dz / dist * overlap
			}
		}

		state.pos.X = clamp(state.pos.X, actorHalf, arena.Width-actorHalf)
		state.pos.Z = clamp(state.pos.Z, actorHalf, arena.Depth-actorHalf)
	}
}

// resolveActorCollisions separates overlapping actors while respecting boxes
// and arena bounds.
func resolveActorCollisions(actors []*actorState, boxes []Box, arena ArenaConfig) {
	if len(actors) < 2 {
		return
	}

	const iterations = 4
	for iter := 0; iter < iterations; iter++ {
		adjusted := false
		for i := 0; i < len(actors); i++ {
			for j := i + 1; j < len(actors); j++ {
				a := actors[i]
				b := actors[j]
				dx := b.pos.X - a.pos.X
				dz := b.pos.Z - a.pos.Z
				distSq := dx*dx + dz*dz
				minDist := actorHalf * 2

				var dist float64
				if distSq == 0 {
					dx = actorHalf
					dz = 0
					dist = actorHalf
				} else {
					dist = math.Sqrt(distSq)
				}

				if dist >= minDist {
					continue
				}

				overlap := (minDist - dist) / 2
				nx := dx / dist
				nz := dz / dist

				a.pos.X -= nx * overlap
				a.pos.Z -= nz * overlap
				b.pos.X += nx * overlap
				b.pos.Z += nz * overlap

				a.pos.X = clamp(a.pos.X, actorHalf, arena.Width-actorHalf)
				a.pos.Z = clamp(a.pos.Z, actorHalf, arena.Depth-actorHalf)
				b.pos.X = clamp(b.pos.X, actorHalf, arena.Width-actorHalf)
				b.pos.Z = clamp(b.pos.Z, actorHalf, arena.Depth-actorHalf)

				resolveBoxPenetration(a, boxes, arena)
				resolveBoxPenetration(b, boxes, arena)

				adjusted = true
			}
		}

		if !adjusted {
			break
		}
	}
}
