package trace

import (
	"github.com/roach88/bfi/internal/engine"
)

// Snapshot captures the observable result of a run.
type Snapshot struct {
	Name    string  `json:"name"`
	Output  string  `json:"output"`
	Cursor  int     `json:"cursor"`
	TapeLen int     `json:"tape_len"`
	Steps   int64   `json:"steps"`
	Error   string  `json:"error,omitempty"` // runtime error code, if the run failed
	Events  []Event `json:"events,omitempty"`
}

// Capture builds a snapshot from the engine's current state.
// rec may be nil when no events were recorded.
func Capture(name string, e *engine.Engine, rec *Recorder, runErr error) Snapshot {
	s := Snapshot{
		Name:    name,
		Output:  e.Output(),
		Cursor:  e.Cursor(),
		TapeLen: e.TapeLen(),
		Steps:   e.Steps(),
	}
	if runErr != nil {
		s.Error = string(engine.CodeOf(runErr))
		if s.Error == "" {
			s.Error = runErr.Error()
		}
	}
	if rec != nil {
		s.Events = rec.Events()
	}
	return s
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization. Empty optional fields are left out.
func (s Snapshot) toCanonicalMap() map[string]any {
	m := map[string]any{
		"name":     s.Name,
		"output":   s.Output,
		"cursor":   s.Cursor,
		"tape_len": s.TapeLen,
		"steps":    s.Steps,
	}
	if s.Error != "" {
		m["error"] = s.Error
	}
	if len(s.Events) > 0 {
		events := make([]any, len(s.Events))
		for i, ev := range s.Events {
			events[i] = map[string]any{
				"seq":    ev.Seq,
				"pc":     ev.PC,
				"op":     ev.Op,
				"cursor": ev.Cursor,
				"cell":   ev.Cell,
				"depth":  ev.Depth,
			}
		}
		m["events"] = events
	}
	return m
}

// MarshalCanonical serializes the snapshot as canonical JSON.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	return MarshalCanonical(s.toCanonicalMap())
}
