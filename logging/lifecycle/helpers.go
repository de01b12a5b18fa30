package lifecycle

import (
	"context"

	"ricochet/server/logging"
)

const (
	// EventActorJoined is emitted when an actor joins the arena.
	EventActorJoined logging.EventType = "lifecycle.actor_joined"
	// EventActorDisconnected is emitted when an actor leaves the arena.
	EventActorDisconnected logging.EventType = "lifecycle.actor_disconnected"
	// EventWeaponChanged is emitted when an actor equips a weapon.
	EventWeaponChanged logging.EventType = "lifecycle.weapon_changed"
	// EventWeaponDisabled is emitted when a weapon instance comes up without
	// its required collaborators.
	EventWeaponDisabled logging.EventType = "lifecycle.weapon_disabled"
)

// ActorJoinedPayload captures spawn placement for a new actor.
type ActorJoinedPayload struct {
	SpawnX float64 `json:"spawnX"`
	SpawnY float64 `json:"spawnY"`
	SpawnZ float64 `json:"spawnZ"`
}

// ActorDisconnectedPayload captures the reason an actor left.
type ActorDisconnectedPayload struct {
	Reason string `json:"reason"`
}

// WeaponChangedPayload captures which weapon landed in which slot.
type WeaponChangedPayload struct {
	Weapon string `json:"weapon"`
	Slot   string `json:"slot"`
}

// WeaponDisabledPayload captures why a weapon instance refused input.
type WeaponDisabledPayload struct {
	Weapon string `json:"weapon"`
	Reason string `json:"reason"`
}

// ActorJoined publishes an actor join event.
func ActorJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ActorJoinedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventActorJoined,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// ActorDisconnected publishes an actor disconnect event.
func ActorDisconnected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ActorDisconnectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventActorDisconnected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// WeaponChanged publishes a weapon equip event.
func WeaponChanged(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, weapon logging.EntityRef, payload WeaponChangedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventWeaponChanged,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{weapon},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// WeaponDisabled publishes a weapon disable warning.
func WeaponDisabled(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, weapon logging.EntityRef, payload WeaponDisabledPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventWeaponDisabled,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{weapon},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
