package server

import "ricochet/server/internal/weapons"

// holsterClipName is the shared stow clip; equip clips come from weapon
// definitions.
const holsterClipName = "holster"

// AnimationClock is the host-side stand-in for a client animation layer.
// Clips run on fixed nominal durations and progress derives from elapsed
// simulation time, so equip sequences resolve at tick granularity. Melee
// attack triggers accumulate until the world drains them for telemetry.
type AnimationClock struct {
	clip     string
	duration float64
	elapsed  float64
	swings   int
}

var _ weapons.AnimationDriver = (*AnimationClock)(nil)

func NewAnimationClock() *AnimationClock {
	return &AnimationClock{}
}

// PlayHolster starts the shared holster clip from the beginning.
func (c *AnimationClock) PlayHolster() {
	c.clip = holsterClipName
	c.duration = holsterClipSeconds
	c.elapsed = 0
}

// PlayEquip starts the named equip clip from the beginning.
func (c *AnimationClock) PlayEquip(clip string) {
	c.clip = clip
	c.duration = equipClipSeconds
	c.elapsed = 0
}

// Progress reports the normalized time of the current clip. An idle clock
// reports 1 so transition polls never stall on a clip that was never played.
func (c *AnimationClock) Progress() float64 {
	if c.clip == "" || c.duration <= 0 {
		return 1
	}
	p := c.elapsed / c.duration
	if p > 1 {
		return 1
	}
	return p
}

// TriggerAttack records one melee swing for the next drain.
func (c *AnimationClock) TriggerAttack() {
	c.swings++
}

// Advance moves the current clip forward by dt seconds.
func (c *AnimationClock) Advance(dt float64) {
	if c.clip == "" || dt <= 0 {
		return
	}
	c.elapsed += dt
}

// Clip returns the most recently played clip name.
func (c *AnimationClock) Clip() string {
	return c.clip
}

// DrainSwings returns and clears the swings recorded since the last call.
func (c *AnimationClock) DrainSwings() int {
	n := c.swings
	c.swings = 0
	return n
}
