package trace

import (
	"github.com/roach88/bfi/internal/engine"
)

// Event is the serialized form of an engine.StepEvent.
type Event struct {
	Seq    int64  `json:"seq"`
	PC     int    `json:"pc"`
	Op     string `json:"op"`
	Cursor int    `json:"cursor"`
	Cell   int    `json:"cell"`
	Depth  int    `json:"depth"`
}

// FromStep converts an engine step event.
func FromStep(ev engine.StepEvent) Event {
	return Event{
		Seq:    ev.Seq,
		PC:     ev.PC,
		Op:     string(rune(ev.Op)),
		Cursor: ev.Cursor,
		Cell:   int(ev.Cell),
		Depth:  ev.Depth,
	}
}

// Recorder collects step events. It implements engine.Tracer.
//
// With a positive limit the recorder keeps the first limit events and
// counts the rest as dropped.
type Recorder struct {
	limit   int
	events  []Event
	dropped int
}

// NewRecorder creates a recorder. A limit of 0 keeps every event.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// OnStep records ev.
func (r *Recorder) OnStep(ev engine.StepEvent) {
	if r.limit > 0 && len(r.events) >= r.limit {
		r.dropped++
		return
	}
	r.events = append(r.events, FromStep(ev))
}

// Events returns the recorded events.
func (r *Recorder) Events() []Event {
	return r.events
}

// Dropped returns the number of events discarded because of the limit.
func (r *Recorder) Dropped() int {
	return r.dropped
}
