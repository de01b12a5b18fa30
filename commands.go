package server

import (
	"time"

	"ricochet/server/internal/geom"
)

// CommandType enumerates the client intents applied on the next tick.
type CommandType string

const (
	CommandInput   CommandType = "Input"
	CommandFire    CommandType = "Fire"
	CommandEquip   CommandType = "Equip"
	CommandHolster CommandType = "Holster"
)

// Command represents an intent captured for processing on the next tick.
// Exactly one payload pointer matching Type is set.
type Command struct {
	OriginTick uint64
	ActorID    string
	Type       CommandType
	IssuedAt   time.Time
	Input      *InputCommand
	Fire       *FireCommand
	Equip      *EquipCommand
	Holster    *HolsterCommand
}

// InputCommand carries movement intent plus the latest look and aim sample.
type InputCommand struct {
	MoveX float64
	MoveZ float64
	Yaw   float64
	Pitch float64
	Aim   geom.Vec3
}

// FireCommand reflects trigger state, not individual shots; the catch-up
// loop decides how many shots a held trigger releases.
type FireCommand struct {
	Pressed bool
}

// EquipCommand asks for a catalog weapon to be instanced and equipped.
type EquipCommand struct {
	Weapon string
}

// HolsterCommand stows or draws the active weapon outside equip sequences.
type HolsterCommand struct {
	Stowed bool
}
