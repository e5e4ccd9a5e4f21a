package engine

import "unicode/utf8"

// inputQueue is a FIFO of pending input bytes.
//
// The queue is refilled one line at a time from the engine's InputSource
// and drained one byte per ',' instruction. It is owned by a single Engine
// and needs no locking.
type inputQueue struct {
	values []byte
}

// newInputQueue creates an empty input queue.
func newInputQueue() *inputQueue {
	return &inputQueue{values: make([]byte, 0, 64)}
}

// EnqueueLine appends the code point of every character in line,
// saturating values above 255. A byte that does not start a valid UTF-8
// sequence is appended as is.
func (q *inputQueue) EnqueueLine(line string) {
	for len(line) > 0 {
		r, size := utf8.DecodeRuneInString(line)
		if r == utf8.RuneError && size == 1 {
			q.values = append(q.values, line[0])
		} else {
			q.values = append(q.values, clampCell(int(r)))
		}
		line = line[size:]
	}
}

// TryDequeue removes and returns the front value.
// Returns (0, false) if the queue is empty.
func (q *inputQueue) TryDequeue() (byte, bool) {
	if len(q.values) == 0 {
		return 0, false
	}

	v := q.values[0]

	// Reset to the start of the backing array once drained so a long
	// interactive session does not keep growing it.
	if len(q.values) == 1 {
		q.values = q.values[:0]
	} else {
		q.values = q.values[1:]
	}

	return v, true
}

// Len returns the number of pending values.
func (q *inputQueue) Len() int {
	return len(q.values)
}

// Clear drops all pending values.
func (q *inputQueue) Clear() {
	q.values = q.values[:0]
}
