package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"ricochet/server/internal/geom"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewHTTPHandler wires the hub's endpoints: join, websocket, health,
// diagnostics, and Prometheus metrics.
func NewHTTPHandler(hub *Hub) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", hub.handleDiagnostics)
	mux.HandleFunc("/join", hub.handleJoin)
	mux.HandleFunc("/ws", hub.handleWS)
	mux.Handle("/metrics", hub.metrics.Handler())

	return mux
}

func (h *Hub) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		Status     string             `json:"status"`
		ServerTime int64              `json:"serverTime"`
		Tick       uint64             `json:"tick"`
		Actors     []diagnosticsActor `json:"actors"`
		TickRate   int                `json:"tickRate"`
		Heartbeat  int64              `json:"heartbeatMillis"`
	}{
		Status:     "ok",
		ServerTime: time.Now().UnixMilli(),
		Tick:       h.tick.Load(),
		Actors:     h.DiagnosticsSnapshot(),
		TickRate:   h.config.TickRate,
		Heartbeat:  h.config.heartbeat().Milliseconds(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *Hub) handleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "malformed join request", http.StatusBadRequest)
		return
	}

	join := h.Join(req.Token)
	data, err := json.Marshal(join)
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	actorID := r.URL.Query().Get("id")
	token := r.URL.Query().Get("token")
	if actorID == "" || token == "" {
		http.Error(w, "missing id or token", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade failed for %s: %v", actorID, err)
		return
	}

	sub, ok := h.Subscribe(actorID, token, conn)
	if !ok {
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown actor")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}

	h.mu.Lock()
	snapshot := h.world.Snapshot(time.Now())
	h.mu.Unlock()

	initial := stateMessage{
		Ver:        ProtocolVersion,
		Type:       "state",
		Tick:       h.tick.Load(),
		Actors:     snapshot.Actors,
		Bullets:    snapshot.Bullets,
		Tracers:    snapshot.Tracers,
		Boxes:      h.world.boxes,
		ServerTime: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(initial)
	if err != nil {
		log.Printf("failed to marshal initial state for %s: %v", actorID, err)
		h.Unsubscribe(actorID, sub)
		return
	}

	sub.mu.Lock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	err = conn.WriteMessage(websocket.TextMessage, data)
	sub.mu.Unlock()
	if err != nil {
		h.Unsubscribe(actorID, sub)
		return
	}

	h.readLoop(actorID, sub, conn)
}

// readLoop parses client messages until the socket dies. Intents queue as
// commands for the next tick; heartbeats are acked synchronously so RTT
// measurement does not wait on the simulation.
func (h *Hub) readLoop(actorID string, sub *subscriber, conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.Unsubscribe(actorID, sub)
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("discarding malformed message from %s: %v", actorID, err)
			continue
		}

		switch msg.Type {
		case "input", "fire", "equip", "holster":
			if ok, reason := h.EnqueueCommand(commandFromMessage(actorID, msg)); !ok {
				log.Printf("%s rejected for %s: %s", msg.Type, actorID, reason)
			}
		case "heartbeat":
			now := time.Now()
			rtt, ok := h.UpdateHeartbeat(actorID, now, msg.SentAt)
			if !ok {
				continue
			}

			ack := heartbeatMessage{
				Type:       "heartbeat",
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			}

			data, err := json.Marshal(ack)
			if err != nil {
				log.Printf("failed to marshal heartbeat ack for %s: %v", actorID, err)
				continue
			}

			sub.mu.Lock()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				sub.mu.Unlock()
				h.Unsubscribe(actorID, sub)
				return
			}
			sub.mu.Unlock()
		default:
			log.Printf("unknown message type %q from %s", msg.Type, actorID)
		}
	}
}

// commandFromMessage translates a parsed client message into its command.
// Only the queueable message types reach here.
func commandFromMessage(actorID string, msg clientMessage) Command {
	cmd := Command{ActorID: actorID}
	switch msg.Type {
	case "input":
		cmd.Type = CommandInput
		cmd.Input = &InputCommand{
			MoveX: msg.MoveX,
			MoveZ: msg.MoveZ,
			Yaw:   msg.Yaw,
			Pitch: msg.Pitch,
			Aim:   geom.Vec3{X: msg.AimX, Y: msg.AimY, Z: msg.AimZ},
		}
	case "fire":
		cmd.Type = CommandFire
		cmd.Fire = &FireCommand{Pressed: msg.Pressed}
	case "equip":
		cmd.Type = CommandEquip
		cmd.Equip = &EquipCommand{Weapon: msg.Weapon}
	case "holster":
		cmd.Type = CommandHolster
		cmd.Holster = &HolsterCommand{Stowed: msg.Stowed}
	}
	return cmd
}
