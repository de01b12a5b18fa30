package logging

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Clock abstracts time so tests can pin event timestamps.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// Sink receives routed events. Write runs on the sink's dedicated worker
// goroutine; implementations never see concurrent calls.
type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

type NamedSink struct {
	Name string
	Sink Sink
}

// Router fans events out to its sinks. Publish never blocks the simulation
// loop: events land in a buffered queue and a dispatch goroutine forwards
// them to one worker per sink. A full queue drops the event and counts it.
type Router struct {
	cfg      Config
	clock    Clock
	intake   chan Event
	workers  []*sinkWorker
	fields   map[string]any
	fallback *log.Logger

	cancel context.CancelFunc
	done   sync.WaitGroup
	closed atomic.Bool

	eventsTotal  atomic.Uint64
	droppedTotal atomic.Uint64
	nextDropWarn atomic.Int64
}

// RouterStats reports delivery counters for diagnostics and metrics.
type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
}

func NewRouter(clock Clock, cfg Config, namedSinks []NamedSink) (*Router, error) {
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 512
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		cfg:      cfg,
		clock:    clock,
		intake:   make(chan Event, buffer),
		fields:   cfg.CloneFields(),
		fallback: log.New(os.Stderr, "[logging] ", log.LstdFlags),
		cancel:   cancel,
	}

	workerBuffer := min(max(buffer, 32), 1024)
	for _, named := range namedSinks {
		if named.Sink == nil {
			continue
		}
		r.workers = append(r.workers, &sinkWorker{
			name:     named.Name,
			sink:     named.Sink,
			events:   make(chan Event, workerBuffer),
			fallback: r.fallback,
		})
	}

	r.done.Add(1)
	go r.pump(ctx)
	for _, w := range r.workers {
		r.done.Add(1)
		go func(w *sinkWorker) {
			defer r.done.Done()
			w.run()
		}(w)
	}
	return r, nil
}

// pump moves events from the intake queue to every worker until the router
// closes, then flushes whatever is still queued. Worker channels close only
// after the flush so nothing queued before Close is lost.
func (r *Router) pump(ctx context.Context) {
	defer func() {
		for _, w := range r.workers {
			close(w.events)
		}
		r.done.Done()
	}()
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case event := <-r.intake:
					r.fanOut(event)
				default:
					return
				}
			}
		case event := <-r.intake:
			r.fanOut(event)
		}
	}
}

func (r *Router) fanOut(event Event) {
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	if len(r.fields) > 0 {
		event = cloneForFields(event)
		if event.Extra == nil {
			event.Extra = make(map[string]any, len(r.fields))
		}
		for k, v := range r.fields {
			if _, ok := event.Extra[k]; !ok {
				event.Extra[k] = v
			}
		}
	}
	r.eventsTotal.Add(1)
	for _, w := range r.workers {
		w.offer(event)
	}
}

// Publish queues one event. Untyped events, events below the configured
// severity, and events arriving after Close are discarded.
func (r *Router) Publish(ctx context.Context, event Event) {
	if event.Type == "" || event.Severity < r.cfg.MinimumSeverity {
		return
	}
	if r.closed.Load() {
		return
	}
	select {
	case r.intake <- event:
	default:
		r.recordDrop(event)
	}
}

// recordDrop counts a lost event and logs at most one warning per
// DropWarnInterval so a sustained overload cannot flood stderr.
func (r *Router) recordDrop(event Event) {
	r.droppedTotal.Add(1)
	interval := r.cfg.DropWarnInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	now := time.Now().UnixNano()
	due := r.nextDropWarn.Load()
	if now < due {
		return
	}
	if r.nextDropWarn.CompareAndSwap(due, now+interval.Nanoseconds()) {
		r.fallback.Printf("queue full, dropping event type=%s tick=%d", event.Type, event.Tick)
	}
}

// Close stops the intake, waits for the workers to finish within the
// context deadline, then closes every sink. Later calls return nil.
func (r *Router) Close(ctx context.Context) error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.cancel()

	finished := make(chan struct{})
	go func() {
		r.done.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-ctx.Done():
		return ctx.Err()
	}

	var firstErr error
	for _, w := range r.workers {
		if err := w.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Router) Stats() RouterStats {
	return RouterStats{
		EventsTotal:  r.eventsTotal.Load(),
		DroppedTotal: r.droppedTotal.Load(),
	}
}

// Sink returns the named sink, or nil when the router does not carry it.
func (r *Router) Sink(name string) Sink {
	for _, w := range r.workers {
		if w.name == name {
			return w.sink
		}
	}
	return nil
}

type sinkWorker struct {
	name     string
	sink     Sink
	events   chan Event
	fallback *log.Logger
	failures int
	retryAt  time.Time
}

// offer hands the worker its own copy so sinks never share Extra maps.
func (w *sinkWorker) offer(event Event) {
	select {
	case w.events <- cloneForFields(event):
	default:
		w.fallback.Printf("sink %s backlog full, dropping event type=%s", w.name, event.Type)
	}
}

// run writes events in arrival order. A failing sink backs off
// exponentially, capped at 32s; the failed event itself is not replayed.
func (w *sinkWorker) run() {
	for event := range w.events {
		if w.failures > 0 {
			if wait := time.Until(w.retryAt); wait > 0 {
				time.Sleep(wait)
			}
		}
		if err := w.sink.Write(event); err != nil {
			w.failures++
			delay := time.Second << min(w.failures-1, 5)
			w.retryAt = time.Now().Add(delay)
			w.fallback.Printf("sink %s write failed: %v (retry in %s)", w.name, err, delay)
			continue
		}
		w.failures = 0
		w.retryAt = time.Time{}
	}
}
