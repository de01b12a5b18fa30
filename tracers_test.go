package server

import (
	"testing"

	"ricochet/server/internal/geom"
)

func TestTracerFollowMovesHead(t *testing.T) {
	registry := NewTracerRegistry()
	trail := registry.SpawnTrail(geom.Vec3{X: 1, Y: 2, Z: 3})
	trail.Follow(geom.Vec3{X: 4, Y: 5, Z: 6})

	views := registry.Snapshot()
	if len(views) != 1 {
		t.Fatalf("expected one tracer, got %d", len(views))
	}
	if views[0].From != (geom.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("expected origin anchor, got %+v", views[0].From)
	}
	if views[0].To != (geom.Vec3{X: 4, Y: 5, Z: 6}) {
		t.Fatalf("expected moved head, got %+v", views[0].To)
	}
}

func TestTracerReleaseExactlyOnce(t *testing.T) {
	registry := NewTracerRegistry()
	trail := registry.SpawnTrail(geom.Vec3{})

	trail.Release()
	trail.Release()

	if registry.Live() != 0 {
		t.Fatalf("expected no live tracers, got %d", registry.Live())
	}

	released := registry.DrainReleased()
	if len(released) != 1 {
		t.Fatalf("expected a single retirement, got %v", released)
	}
	if released[0] != "tracer-1" {
		t.Fatalf("unexpected tracer id %q", released[0])
	}
	if again := registry.DrainReleased(); again != nil {
		t.Fatalf("expected drain to clear retirements, got %v", again)
	}
}

func TestTracerFollowAfterReleaseIgnored(t *testing.T) {
	registry := NewTracerRegistry()
	trail := registry.SpawnTrail(geom.Vec3{})
	trail.Release()
	trail.Follow(geom.Vec3{X: 9})

	if views := registry.Snapshot(); len(views) != 0 {
		t.Fatalf("expected released tracer to stay gone, got %v", views)
	}
}

func TestTracerSnapshotKeepsSpawnOrder(t *testing.T) {
	registry := NewTracerRegistry()
	registry.SpawnTrail(geom.Vec3{X: 1})
	second := registry.SpawnTrail(geom.Vec3{X: 2})
	registry.SpawnTrail(geom.Vec3{X: 3})

	second.Release()

	views := registry.Snapshot()
	if len(views) != 2 {
		t.Fatalf("expected two live tracers, got %d", len(views))
	}
	if views[0].ID != "tracer-1" || views[1].ID != "tracer-3" {
		t.Fatalf("expected spawn order with the released entry compacted, got %q and %q", views[0].ID, views[1].ID)
	}
}

func TestTracerIDsNeverReused(t *testing.T) {
	registry := NewTracerRegistry()
	registry.SpawnTrail(geom.Vec3{}).Release()
	registry.SpawnTrail(geom.Vec3{})

	views := registry.Snapshot()
	if len(views) != 1 || views[0].ID != "tracer-2" {
		t.Fatalf("expected a fresh id for the second tracer, got %v", views)
	}
}
