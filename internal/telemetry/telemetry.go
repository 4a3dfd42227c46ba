// Package telemetry provides a JSONL event stream for game sessions. Every
// core notification (purchases, unlocks, rule firings, prestiges, milestones,
// offline catch-up) and every host lifecycle step (start, autosave, reload,
// stop) is recorded as one JSON line, making runs auditable and replayable.
package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/papapumpkin/idlecore/internal/clock"
	"github.com/papapumpkin/idlecore/internal/events"
)

// Host event kinds. Core kinds are copied from events.Kind verbatim.
const (
	KindSessionStart = "session_start"
	KindSessionStop  = "session_stop"
	KindAutosave     = "autosave"
	KindReload       = "reload"
	KindReloadFailed = "reload_failed"
)

// Event represents a single telemetry record. Value carries the lossless
// bignum text of the notification magnitude, when there is one.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	SessionID string    `json:"session,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Value     string    `json:"value,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes telemetry events to a JSONL file. It is safe for concurrent
// use by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewEmitter creates a new Emitter that writes JSONL events to the file at
// path. The file is created if it does not exist, or appended to if it does.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file: f,
		enc:  json.NewEncoder(f),
	}, nil
}

// Emit writes a single event to the JSONL file. It is safe for concurrent use.
// Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}

// Subscribe records every event published on bus as a telemetry line tagged
// with sessionID. Write failures are dropped; the game loop never blocks on
// telemetry. The returned function detaches the subscription.
func Subscribe(bus *events.Bus, em *Emitter, sessionID string, clk clock.Clock) (cancel func()) {
	if em == nil {
		return func() {}
	}
	clk = clock.OrReal(clk)
	return bus.Subscribe(func(e events.Event) {
		evt := Event{
			Timestamp: clk.Now().UTC(),
			Kind:      string(e.Kind),
			SessionID: sessionID,
			Subject:   e.Subject,
		}
		if !e.Value.IsZero() {
			text, _ := e.Value.MarshalText()
			evt.Value = string(text)
		}
		_ = em.Emit(evt)
	})
}

// Decode reads JSONL events from r and calls fn for each. Blank lines are
// skipped; a malformed line stops decoding with an error naming its line
// number.
func Decode(r io.Reader, fn func(Event) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var evt Event
		if err := json.Unmarshal(text, &evt); err != nil {
			return fmt.Errorf("telemetry: line %d: %w", line, err)
		}
		if err := fn(evt); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("telemetry: read: %w", err)
	}
	return nil
}
