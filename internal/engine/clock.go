package engine

// Clock is the engine's logical step clock.
//
// Every executed instruction is stamped with a strictly increasing seq
// number, which orders trace events independently of wall-clock time.
// The clock survives Reset so trace sequences stay unique for the lifetime
// of an engine.
//
// Clock is not safe for concurrent use; it belongs to a single Engine.
type Clock struct {
	seq int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	c.seq++
	return c.seq
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq
}
