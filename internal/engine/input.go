package engine

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// InputSource supplies input to the ',' instruction one line at a time.
//
// ReadLine blocks until a line is available and returns it without its
// trailing newline. It returns io.EOF once no more lines will arrive.
type InputSource interface {
	ReadLine() (string, error)
}

// LineReader adapts an io.Reader, typically os.Stdin, to InputSource.
type LineReader struct {
	r *bufio.Reader
}

// NewLineReader creates a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

// ReadLine reads up to and including the next '\n' and returns the line
// without its line terminator ("\n" or "\r\n").
//
// A final line without a terminator is returned with a nil error; the
// following call returns io.EOF.
func (l *LineReader) ReadLine() (string, error) {
	line, err := l.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

// ScriptedInput returns predetermined lines, then io.EOF.
//
// Used by tests, the harness and the CLI's --input flag.
//
// Thread-safety: ScriptedInput is safe for concurrent use via internal mutex.
type ScriptedInput struct {
	mu    sync.Mutex
	lines []string
	idx   int
}

// NewScriptedInput creates an input source that yields lines in order.
func NewScriptedInput(lines ...string) *ScriptedInput {
	return &ScriptedInput{lines: lines}
}

// ReadLine returns the next scripted line or io.EOF when none remain.
func (s *ScriptedInput) ReadLine() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idx >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.idx]
	s.idx++
	return line, nil
}

// Remaining returns the number of lines not yet read.
func (s *ScriptedInput) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) - s.idx
}
