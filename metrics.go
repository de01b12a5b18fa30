package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ricochet/server/logging"
)

// Metrics aggregates the Prometheus instruments the host exports. Each hub
// gets its own registry so tests never trip over duplicate registration.
type Metrics struct {
	registry *prometheus.Registry

	ShotsFired     prometheus.Counter
	MeleeSwings    prometheus.Counter
	BulletsBounced prometheus.Counter
	BulletsExpired prometheus.Counter
	BulletHits     prometheus.Counter
	Equips         prometheus.Counter

	ActorsConnected prometheus.Gauge
	BulletsLive     prometheus.Gauge
	TracersLive     prometheus.Gauge

	TickDuration prometheus.Histogram
}

// NewMetrics builds a dedicated registry with the runtime collectors plus
// the arena instruments. A non-nil stats func additionally exports the
// logging router's drop counter.
func NewMetrics(stats func() logging.RouterStats) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		ShotsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ricochet",
			Name:      "shots_fired_total",
			Help:      "Shots released by the fire catch-up loop.",
		}),
		MeleeSwings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ricochet",
			Name:      "melee_swings_total",
			Help:      "Attack triggers sent to the animation layer.",
		}),
		BulletsBounced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ricochet",
			Name:      "bullets_bounced_total",
			Help:      "Bullet rebases off arena surfaces.",
		}),
		BulletsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ricochet",
			Name:      "bullets_expired_total",
			Help:      "Bullets removed from the simulation.",
		}),
		BulletHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ricochet",
			Name:      "bullet_hits_total",
			Help:      "Bullet impacts reported to the combat hook.",
		}),
		Equips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ricochet",
			Name:      "equips_total",
			Help:      "Weapon instances recorded into mount slots.",
		}),
		ActorsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ricochet",
			Name:      "actors_connected",
			Help:      "Actors currently present in the arena.",
		}),
		BulletsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ricochet",
			Name:      "bullets_live",
			Help:      "Bullets currently in flight.",
		}),
		TracersLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ricochet",
			Name:      "tracers_live",
			Help:      "Tracer effects currently following a bullet.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ricochet",
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent advancing one simulation tick.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}

	registry.MustRegister(
		m.ShotsFired,
		m.MeleeSwings,
		m.BulletsBounced,
		m.BulletsExpired,
		m.BulletHits,
		m.Equips,
		m.ActorsConnected,
		m.BulletsLive,
		m.TracersLive,
		m.TickDuration,
	)

	if stats != nil {
		registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "ricochet",
			Name:      "dropped_log_events_total",
			Help:      "Events the logging router dropped on a full queue.",
		}, func() float64 {
			return float64(stats().DroppedTotal)
		}))
	}

	return m
}

// Handler serves the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
