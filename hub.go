package server

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ricochet/server/catalog"
	"ricochet/server/logging"
)

// Hub owns the authoritative world plus every live subscriber. The
// simulation goroutine and the websocket handlers share the hub mutex; the
// world itself is lock-free and only touched under it.
type Hub struct {
	mu          sync.Mutex
	world       *World
	subscribers map[string]*subscriber
	tokens      map[string]string
	pending     []Command
	nextID      atomic.Uint64
	tick        atomic.Uint64
	config      Config
	metrics     *Metrics
	publisher   logging.Publisher
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewHub creates a hub around a freshly generated world.
func NewHub(cfg Config, resolver *catalog.Resolver, publisher logging.Publisher, metrics *Metrics) *Hub {
	normalized := cfg.normalized()
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Hub{
		world:       newWorld(normalized, resolver, publisher, metrics),
		subscribers: make(map[string]*subscriber),
		tokens:      make(map[string]string),
		config:      normalized,
		metrics:     metrics,
		publisher:   publisher,
	}
}

// Join registers a new actor, or revives the session behind a reconnect
// token while the actor is still inside its heartbeat grace window.
func (h *Hub) Join(token string) JoinResponse {
	now := time.Now()

	h.mu.Lock()
	if token != "" {
		if actorID, ok := h.tokens[token]; ok {
			if actor, live := h.world.actors[actorID]; live {
				actor.lastHeartbeat = now
				resp := h.joinResponseLocked(actorID, token, now)
				h.mu.Unlock()
				return resp
			}
			delete(h.tokens, token)
		}
	}

	id := h.nextID.Add(1)
	actorID := fmt.Sprintf("actor-%d", id)
	token = uuid.NewString()
	h.tokens[token] = actorID
	h.world.SpawnActor(actorID, token, now)
	resp := h.joinResponseLocked(actorID, token, now)
	h.mu.Unlock()

	go h.broadcastState(nil)

	return resp
}

func (h *Hub) joinResponseLocked(actorID, token string, now time.Time) JoinResponse {
	snapshot := h.world.Snapshot(now)
	resp := JoinResponse{
		Ver:      ProtocolVersion,
		ID:       actorID,
		Token:    token,
		TickRate: h.config.TickRate,
		Actors:   snapshot.Actors,
		Boxes:    h.world.boxes,
	}
	if h.world.catalog != nil {
		resp.Weapons = h.world.catalog.IDs()
	}
	return resp
}

// Subscribe associates a WebSocket connection with an existing actor. The
// join token must match; a stale or forged token is rejected.
func (h *Hub) Subscribe(actorID, token string, conn *websocket.Conn) (*subscriber, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	actor, ok := h.world.actors[actorID]
	if !ok || actor.token != token {
		return nil, false
	}

	actor.lastHeartbeat = time.Now()

	if existing, ok := h.subscribers[actorID]; ok {
		existing.conn.Close()
	}

	sub := &subscriber{conn: conn}
	h.subscribers[actorID] = sub
	return sub, true
}

// Unsubscribe drops an actor's socket without removing the actor. The actor
// lingers until its heartbeat grace expires so a reconnect with the join
// token resumes the same session, weapons and bullets intact. The caller
// passes the subscriber it owns so a socket replaced by a newer Subscribe
// cannot tear down its successor.
func (h *Hub) Unsubscribe(actorID string, sub *subscriber) {
	h.mu.Lock()
	current, ok := h.subscribers[actorID]
	if ok && current == sub {
		delete(h.subscribers, actorID)
	} else {
		ok = false
	}
	h.mu.Unlock()

	if ok {
		sub.conn.Close()
	}
}

// UpdateHeartbeat records the latest heartbeat time and RTT for an actor.
func (h *Hub) UpdateHeartbeat(actorID string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	actor, ok := h.world.actors[actorID]
	if !ok {
		return 0, false
	}

	actor.lastHeartbeat = receivedAt

	var rtt time.Duration
	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt = receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			actor.lastRTT = rtt
		}
	}

	return actor.lastRTT, true
}

// EnqueueCommand queues a client intent for the next tick. It reports
// whether the command was accepted and a reason when it was not.
func (h *Hub) EnqueueCommand(cmd Command) (bool, string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cmd.ActorID == "" {
		return false, "missing-actor"
	}
	if _, ok := h.world.actors[cmd.ActorID]; !ok {
		return false, "unknown-actor"
	}
	if len(h.pending) >= maxPendingCommands {
		return false, "queue-full"
	}
	if cmd.IssuedAt.IsZero() {
		cmd.IssuedAt = time.Now()
	}
	cmd.OriginTick = h.tick.Load()
	h.pending = append(h.pending, cmd)
	return true, ""
}

func (h *Hub) drainCommandsLocked() []Command {
	if len(h.pending) == 0 {
		return nil
	}
	commands := h.pending
	h.pending = nil
	return commands
}

// advance runs one simulation step and returns the broadcast snapshot plus
// the subscribers whose actors timed out.
func (h *Hub) advance(now time.Time, dt float64) (WorldSnapshot, []*subscriber) {
	h.mu.Lock()
	tick := h.tick.Add(1)
	commands := h.drainCommandsLocked()
	removed := h.world.Step(tick, now, dt, commands)

	toClose := make([]*subscriber, 0, len(removed))
	for _, id := range removed {
		if sub, ok := h.subscribers[id]; ok {
			toClose = append(toClose, sub)
			delete(h.subscribers, id)
		}
		log.Printf("disconnecting %s due to heartbeat timeout", id)
	}
	if len(removed) > 0 {
		h.pruneTokensLocked()
	}

	snapshot := h.world.Snapshot(now)
	snapshot.RetiredTracers = h.world.DrainRetiredTracers()
	h.mu.Unlock()

	return snapshot, toClose
}

func (h *Hub) pruneTokensLocked() {
	for token, actorID := range h.tokens {
		if _, ok := h.world.actors[actorID]; !ok {
			delete(h.tokens, token)
		}
	}
}

// RunSimulation drives the fixed-rate tick loop until the stop channel
// closes.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	ticker := time.NewTicker(h.config.tickInterval())
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = 1.0 / float64(h.config.TickRate)
			}
			last = now

			started := time.Now()
			snapshot, toClose := h.advance(now, dt)
			h.metrics.TickDuration.Observe(time.Since(started).Seconds())

			for _, sub := range toClose {
				sub.conn.Close()
			}
			h.broadcastState(&snapshot)
		}
	}
}

// DiagnosticsSnapshot exposes heartbeat data for the diagnostics endpoint.
func (h *Hub) DiagnosticsSnapshot() []diagnosticsActor {
	h.mu.Lock()
	defer h.mu.Unlock()

	actors := make([]diagnosticsActor, 0, len(h.world.actors))
	for _, actor := range h.world.actors {
		actors = append(actors, diagnosticsActor{
			ID:            actor.id,
			LastHeartbeat: actor.lastHeartbeat.UnixMilli(),
			RTTMillis:     actor.lastRTT.Milliseconds(),
		})
	}
	return actors
}

// broadcastState sends the latest world snapshot to every subscriber.
func (h *Hub) broadcastState(snapshot *WorldSnapshot) {
	if snapshot == nil {
		h.mu.Lock()
		s := h.world.Snapshot(time.Now())
		h.mu.Unlock()
		snapshot = &s
	}

	msg := stateMessage{
		Ver:            ProtocolVersion,
		Type:           "state",
		Tick:           h.tick.Load(),
		Actors:         snapshot.Actors,
		Bullets:        snapshot.Bullets,
		Tracers:        snapshot.Tracers,
		RetiredTracers: snapshot.RetiredTracers,
		Boxes:          h.world.boxes,
		ServerTime:     time.Now().UnixMilli(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal state message: %v", err)
		return
	}

	h.mu.Lock()
	subs := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			log.Printf("failed to send update to %s: %v", id, err)
			h.Unsubscribe(id, sub)
		}
	}
}
