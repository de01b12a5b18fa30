package logging_test

import (
	"context"
	"testing"
	"time"

	"ricochet/server/logging"
	"ricochet/server/logging/sinks"
)

func newMemoryRouter(t *testing.T, cfg logging.Config) (*logging.Router, *sinks.MemorySink) {
	t.Helper()
	memory := sinks.NewMemorySink()
	clock := logging.ClockFunc(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	})
	router, err := logging.NewRouter(clock, cfg, []logging.NamedSink{{Name: "memory", Sink: memory}})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return router, memory
}

func closeRouter(t *testing.T, router *logging.Router) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := router.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRouterDeliversToSinks(t *testing.T) {
	router, memory := newMemoryRouter(t, logging.Config{BufferSize: 16})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		router.Publish(ctx, logging.Event{
			Type:     "combat.weapon_fired",
			Tick:     uint64(i),
			Actor:    logging.EntityRef{ID: "actor-1", Kind: logging.EntityKindActor},
			Severity: logging.SeverityInfo,
		})
	}
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 3 {
		t.Fatalf("sink received %d events, want 3", len(events))
	}
	for _, event := range events {
		if event.Time.IsZero() {
			t.Fatalf("event %v missing a timestamp", event.Type)
		}
	}
	if stats := router.Stats(); stats.EventsTotal != 3 || stats.DroppedTotal != 0 {
		t.Fatalf("stats = %+v, want 3 events and no drops", stats)
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	router, memory := newMemoryRouter(t, logging.Config{BufferSize: 16, MinimumSeverity: logging.SeverityInfo})

	ctx := context.Background()
	router.Publish(ctx, logging.Event{Type: "combat.weapon_fired", Severity: logging.SeverityDebug})
	router.Publish(ctx, logging.Event{Type: "combat.bullet_hit", Severity: logging.SeverityInfo})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("sink received %d events, want only the info one", len(events))
	}
	if events[0].Type != "combat.bullet_hit" {
		t.Fatalf("surviving event = %v, want combat.bullet_hit", events[0].Type)
	}
}

func TestRouterIgnoresUntypedAndPostCloseEvents(t *testing.T) {
	router, memory := newMemoryRouter(t, logging.Config{BufferSize: 16})

	ctx := context.Background()
	router.Publish(ctx, logging.Event{Severity: logging.SeverityError})
	closeRouter(t, router)
	router.Publish(ctx, logging.Event{Type: "combat.bullet_hit", Severity: logging.SeverityInfo})

	if got := len(memory.Events()); got != 0 {
		t.Fatalf("sink received %d events, want 0", got)
	}
}

func TestRouterAttachesConfiguredFields(t *testing.T) {
	cfg := logging.Config{BufferSize: 16, Fields: map[string]any{"node": "test-node"}}
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Type: "lifecycle.actor_joined", Severity: logging.SeverityInfo})
	closeRouter(t, router)

	events := memory.Events()
	if len(events) != 1 {
		t.Fatalf("sink received %d events, want 1", len(events))
	}
	if got := events[0].Extra["node"]; got != "test-node" {
		t.Fatalf("Extra[node] = %v, want test-node", got)
	}
}

func TestWithFieldsDoesNotOverrideEventExtra(t *testing.T) {
	var captured logging.Event
	base := logging.PublisherFunc(func(_ context.Context, event logging.Event) {
		captured = event
	})

	pub := logging.WithFields(base, map[string]any{"arena": "alpha", "node": "n1"})
	pub.Publish(context.Background(), logging.Event{
		Type:  "lifecycle.actor_joined",
		Extra: map[string]any{"arena": "beta"},
	})

	if captured.Extra["arena"] != "beta" {
		t.Fatalf("Extra[arena] = %v, event-level value should win", captured.Extra["arena"])
	}
	if captured.Extra["node"] != "n1" {
		t.Fatalf("Extra[node] = %v, want the wrapped field", captured.Extra["node"])
	}
}
