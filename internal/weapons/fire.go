package weapons

// FireController drives a ranged weapon. Bullet simulation always advances
// first, unconditionally, so in-flight bullets keep flying after the trigger
// is released or the weapon is holstered; only then does the catch-up loop
// decide whether new shots come out.
type FireController struct {
	inst *Instance
}

// Update advances bullets by dt and then runs the fire-rate catch-up loop.
func (c *FireController) Update(dt float64) {
	c.inst.bullets.Advance(dt)
	c.inst.runFireLoop(dt, c.inst.fireBullet)
}

// MeleeFireController drives a melee weapon with the same catch-up loop and
// holster gating as the ranged controller; each caught-up shot triggers an
// attack animation signal instead of spawning a bullet.
type MeleeFireController struct {
	inst *Instance
}

// Update runs the fire-rate catch-up loop, emitting attack triggers.
func (c *MeleeFireController) Update(dt float64) {
	c.inst.runFireLoop(dt, c.inst.triggerAttack)
}
