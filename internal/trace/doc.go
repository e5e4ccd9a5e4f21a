// Package trace records executed instructions and serializes run snapshots.
//
// A Recorder plugs into engine.WithTracer and keeps every StepEvent, up to
// an optional limit. Snapshot bundles a run's output, final machine state
// and recorded events; MarshalCanonical turns it into canonical JSON
// (sorted keys, no HTML escaping, NFC-normalized strings) so golden files
// compare byte for byte across runs.
package trace
