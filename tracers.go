package server

import (
	"fmt"

	"ricochet/server/internal/geom"
	"ricochet/server/internal/weapons"
)

// TracerView is the transport-facing snapshot of one live tracer.
type TracerView struct {
	ID   string    `json:"id"`
	From geom.Vec3 `json:"from"`
	To   geom.Vec3 `json:"to"`
}

// TracerRegistry pools the tracer effects that follow bullets. Bullets own
// their tracer through the weapons.Trail handle; the registry keeps the live
// endpoints for state broadcasts and remembers released IDs until the next
// drain so clients know which tracers to retire. Access is single-threaded
// under the hub mutex.
type TracerRegistry struct {
	nextID   uint64
	live     map[uint64]*tracerState
	order    []uint64
	released []string
}

type tracerState struct {
	origin geom.Vec3
	head   geom.Vec3
}

// tracerHandle is the per-bullet trail handed to the weapon core. The
// released flag keeps a double Release from retiring a reused ID.
type tracerHandle struct {
	registry *TracerRegistry
	id       uint64
	released bool
}

func NewTracerRegistry() *TracerRegistry {
	return &TracerRegistry{live: make(map[uint64]*tracerState)}
}

var _ weapons.TrailSpawner = (*TracerRegistry)(nil)

// SpawnTrail allocates a tracer anchored at the bullet's spawn point.
func (r *TracerRegistry) SpawnTrail(origin geom.Vec3) weapons.Trail {
	r.nextID++
	id := r.nextID
	r.live[id] = &tracerState{origin: origin, head: origin}
	r.order = append(r.order, id)
	return &tracerHandle{registry: r, id: id}
}

func (h *tracerHandle) Follow(p geom.Vec3) {
	if h.released {
		return
	}
	if state, ok := h.registry.live[h.id]; ok {
		state.head = p
	}
}

func (h *tracerHandle) Release() {
	if h.released {
		return
	}
	h.released = true
	h.registry.release(h.id)
}

func (r *TracerRegistry) release(id uint64) {
	if _, ok := r.live[id]; !ok {
		return
	}
	delete(r.live, id)
	r.released = append(r.released, tracerName(id))
}

// Snapshot returns the live tracer segments in spawn order. Dead entries are
// compacted out of the order slice as a side effect.
func (r *TracerRegistry) Snapshot() []TracerView {
	if len(r.live) == 0 {
		r.order = r.order[:0]
		return nil
	}
	views := make([]TracerView, 0, len(r.live))
	kept := r.order[:0]
	for _, id := range r.order {
		state, ok := r.live[id]
		if !ok {
			continue
		}
		kept = append(kept, id)
		views = append(views, TracerView{ID: tracerName(id), From: state.origin, To: state.head})
	}
	r.order = kept
	return views
}

// DrainReleased returns the tracer IDs released since the last call.
func (r *TracerRegistry) DrainReleased() []string {
	if len(r.released) == 0 {
		return nil
	}
	released := r.released
	r.released = nil
	return released
}

// Live reports how many tracers currently follow a bullet.
func (r *TracerRegistry) Live() int {
	return len(r.live)
}

func tracerName(id uint64) string {
	return fmt.Sprintf("tracer-%d", id)
}
