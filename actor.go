package server

import (
	"time"

	"ricochet/server/internal/geom"
	"ricochet/server/internal/weapons"
)

// actorState is the authoritative server-side state of one connected actor.
// It doubles as the weapon core's provider set: aim point, muzzle position,
// and look orientation all resolve against this struct.
type actorState struct {
	id    string
	token string

	pos      geom.Vec3
	intentX  float64
	intentZ  float64
	orient   weapons.Orientation
	aimPoint geom.Vec3

	mount *weapons.Mount
	anim  *AnimationClock

	lastInput     time.Time
	lastHeartbeat time.Time
	lastRTT       time.Duration
}

var (
	_ weapons.TargetProvider = (*actorState)(nil)
	_ weapons.MuzzleProvider = (*actorState)(nil)
	_ weapons.AimTransform   = (*actorState)(nil)
)

// AimPoint returns the world point the actor is aiming at.
func (a *actorState) AimPoint() geom.Vec3 {
	return a.aimPoint
}

// MuzzlePoint returns the bullet spawn position at eye height.
func (a *actorState) MuzzlePoint() geom.Vec3 {
	return geom.Vec3{X: a.pos.X, Y: a.pos.Y + muzzleHeight, Z: a.pos.Z}
}

// Orientation returns the current look orientation.
func (a *actorState) Orientation() weapons.Orientation {
	return a.orient
}

// SetOrientation stores a new look orientation. Recoil kicks land here.
func (a *actorState) SetOrientation(o weapons.Orientation) {
	a.orient = o
}

// hull returns the actor's collision box for bullet casts.
func (a *actorState) hull() geom.AABB {
	return geom.AABB{
		Min: geom.Vec3{X: a.pos.X - actorHalf, Y: a.pos.Y, Z: a.pos.Z - actorHalf},
		Max: geom.Vec3{X: a.pos.X + actorHalf, Y: a.pos.Y + actorHeight, Z: a.pos.Z + actorHalf},
	}
}

// snapshot converts the internal state to its broadcast form.
func (a *actorState) snapshot() Actor {
	actor := Actor{
		ID:         a.id,
		Position:   a.pos,
		Yaw:        a.orient.Yaw,
		Pitch:      a.orient.Pitch,
		ActiveSlot: string(a.mount.ActiveSlot()),
		EquipPhase: string(a.mount.Phase()),
		Clip:       a.anim.Clip(),
	}
	if def := a.mount.Definition(); def != nil {
		actor.Weapon = def.ID
	}
	if inst := a.mount.Active(); inst != nil {
		actor.Holstered = inst.Holstered()
		actor.Firing = inst.IsFiring()
	}
	return actor
}
