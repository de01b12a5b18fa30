package server

import "ricochet/server/internal/geom"

// Actor is the wire representation of one connected actor.
type Actor struct {
	ID         string    `json:"id"`
	Position   geom.Vec3 `json:"position"`
	Yaw        float64   `json:"yaw"`
	Pitch      float64   `json:"pitch"`
	Weapon     string    `json:"weapon,omitempty"`
	ActiveSlot string    `json:"activeSlot"`
	EquipPhase string    `json:"equipPhase"`
	Clip       string    `json:"clip,omitempty"`
	Holstered  bool      `json:"holstered"`
	Firing     bool      `json:"firing"`
}

// Bullet is the wire representation of one live bullet. The ID is qualified
// by owner and slot because each weapon numbers its bullets independently.
type Bullet struct {
	ID       string    `json:"id"`
	Owner    string    `json:"owner"`
	Position geom.Vec3 `json:"position"`
}

// WorldSnapshot gathers everything one state broadcast carries.
type WorldSnapshot struct {
	Actors         []Actor
	Bullets        []Bullet
	Tracers        []TracerView
	RetiredTracers []string
}

// JoinResponse seeds a client with its identity, reconnect token, and the
// static arena.
type JoinResponse struct {
	Ver      int      `json:"ver"`
	ID       string   `json:"id"`
	Token    string   `json:"token"`
	TickRate int      `json:"tickRate"`
	Actors   []Actor  `json:"actors"`
	Boxes    []Box    `json:"boxes"`
	Weapons  []string `json:"weapons,omitempty"`
}

type joinRequest struct {
	Token string `json:"token"`
}

type stateMessage struct {
	Ver            int          `json:"ver"`
	Type           string       `json:"type"`
	Tick           uint64       `json:"t"`
	Actors         []Actor      `json:"actors"`
	Bullets        []Bullet     `json:"bullets,omitempty"`
	Tracers        []TracerView `json:"tracers,omitempty"`
	RetiredTracers []string     `json:"retiredTracers,omitempty"`
	Boxes          []Box        `json:"boxes"`
	ServerTime     int64        `json:"serverTime"`
}

type clientMessage struct {
	Type    string  `json:"type"`
	MoveX   float64 `json:"moveX"`
	MoveZ   float64 `json:"moveZ"`
	Yaw     float64 `json:"yaw"`
	Pitch   float64 `json:"pitch"`
	AimX    float64 `json:"aimX"`
	AimY    float64 `json:"aimY"`
	AimZ    float64 `json:"aimZ"`
	Pressed bool    `json:"pressed"`
	Weapon  string  `json:"weapon"`
	Stowed  bool    `json:"stowed"`
	SentAt  int64   `json:"sentAt"`
}

type heartbeatMessage struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}

type diagnosticsActor struct {
	ID            string `json:"id"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rttMillis"`
}
