package events

import "guardtoken/core/types"

// Event represents a structured state change emitted by the ledger.
type Event interface {
	EventType() string
	Event() *types.Event
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events. It
// is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Recorder accumulates rendered events in emission order. The ledger drains it
// after every operation so indexers observe an append-only, ordered stream.
type Recorder struct {
	events []types.Event
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt Event) {
	if r == nil || evt == nil {
		return
	}
	rendered := evt.Event()
	if rendered == nil {
		return
	}
	r.events = append(r.events, *rendered)
}

// Drain returns the recorded events and resets the recorder.
func (r *Recorder) Drain() []types.Event {
	if r == nil {
		return nil
	}
	out := r.events
	r.events = nil
	return out
}
