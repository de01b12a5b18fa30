package combat

import (
	"context"

	"ricochet/server/logging"
)

const (
	// EventWeaponFired is emitted for every shot the catch-up loop releases.
	EventWeaponFired logging.EventType = "combat.weapon_fired"
	// EventBulletBounced is emitted when a bullet rebases off a surface.
	EventBulletBounced logging.EventType = "combat.bullet_bounced"
	// EventBulletExpired is emitted when a bullet leaves the simulation.
	EventBulletExpired logging.EventType = "combat.bullet_expired"
	// EventBulletHit is emitted when a bullet strikes a collider.
	EventBulletHit logging.EventType = "combat.bullet_hit"
	// EventMeleeSwing is emitted for every melee attack trigger.
	EventMeleeSwing logging.EventType = "combat.melee_swing"
)

// WeaponFiredPayload names the weapon that released a shot.
type WeaponFiredPayload struct {
	Weapon string `json:"weapon"`
}

// BulletBouncedPayload captures where a bullet rebased and how many bounces
// it has left.
type BulletBouncedPayload struct {
	Weapon    string  `json:"weapon"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Remaining int     `json:"remaining"`
}

// BulletExpiredPayload names the weapon whose bullet left the simulation.
type BulletExpiredPayload struct {
	Weapon string `json:"weapon"`
}

// BulletHitPayload captures an impact and the damage it carried.
type BulletHitPayload struct {
	Weapon    string  `json:"weapon"`
	Collider  string  `json:"collider"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Damage    float64 `json:"damage"`
	Knockback float64 `json:"knockback,omitempty"`
}

// MeleeSwingPayload names the weapon that swung.
type MeleeSwingPayload struct {
	Weapon string `json:"weapon"`
}

// WeaponFired publishes a shot event. Shots are high frequency, so they log
// at debug severity.
func WeaponFired(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, bullet logging.EntityRef, payload WeaponFiredPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventWeaponFired,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{bullet},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// BulletBounced publishes a bounce event.
func BulletBounced(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, bullet logging.EntityRef, payload BulletBouncedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventBulletBounced,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{bullet},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// BulletExpired publishes an expiry event.
func BulletExpired(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, bullet logging.EntityRef, payload BulletExpiredPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventBulletExpired,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{bullet},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// BulletHit publishes an impact event for the struck collider.
func BulletHit(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload BulletHitPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventBulletHit,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// MeleeSwing publishes a melee attack trigger.
func MeleeSwing(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload MeleeSwingPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventMeleeSwing,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
