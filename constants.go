package server

import "time"

const (
	ProtocolVersion = 1
	writeWait       = 10 * time.Second

	defaultAddr     = ":8080"
	defaultTickRate = 30 // simulation ticks per second

	moveSpeed    = 6.0 // meters per second
	actorHalf    = 0.45
	actorHeight  = 1.8
	muzzleHeight = 1.5

	heartbeatInterval      = 2 * time.Second
	heartbeatTimeoutFactor = 3

	maxPendingCommands = 4096

	// Nominal clip lengths for the host-side animation clock. Clients play
	// their own clips; the server only needs a plausible gate duration for
	// the equip sequence.
	holsterClipSeconds = 0.35
	equipClipSeconds   = 0.6

	defaultArenaSeed    = "practice-range"
	defaultArenaWidth   = 120.0
	defaultArenaDepth   = 120.0
	defaultArenaHeight  = 24.0
	defaultBoxCount     = 12
	boxMinExtent        = 1.5
	boxMaxExtent        = 6.0
	boxMinHeight        = 1.0
	boxMaxHeight        = 4.0
	boxSpawnMargin      = 4.0
	spawnSafeRadius     = 10.0
	spawnJitter         = 3.0
	defaultPrimaryID    = "ricochet-rifle"
	defaultSecondaryID  = "sidearm"
	initialAimDistance  = 25.0
)
