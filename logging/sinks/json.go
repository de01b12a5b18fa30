package sinks

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"ricochet/server/logging"
)

// JSON appends events as JSON lines. Encoding goes through the Event struct
// tags directly, so the file format is the logging package's wire format.
type JSON struct {
	mu      sync.Mutex
	writer  *bufio.Writer
	encoder *json.Encoder
	eager   bool
	stop    chan struct{}
	once    sync.Once
}

// NewJSON writes newline-delimited events to w. A positive flushInterval
// batches writes behind a periodic flush; otherwise every event flushes.
func NewJSON(w io.Writer, flushInterval time.Duration) *JSON {
	if w == nil {
		w = io.Discard
	}
	buf := bufio.NewWriter(w)
	sink := &JSON{
		writer:  buf,
		encoder: json.NewEncoder(buf),
		eager:   flushInterval <= 0,
		stop:    make(chan struct{}),
	}
	if flushInterval > 0 {
		go sink.flushLoop(flushInterval)
	}
	return sink
}

func (s *JSON) Write(event logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.encoder.Encode(event); err != nil {
		return err
	}
	if s.eager {
		return s.writer.Flush()
	}
	return nil
}

// Close stops the flush loop and drains the buffer.
func (s *JSON) Close(context.Context) error {
	s.once.Do(func() { close(s.stop) })
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer.Flush()
}

func (s *JSON) flushLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.writer.Flush()
			s.mu.Unlock()
		}
	}
}
