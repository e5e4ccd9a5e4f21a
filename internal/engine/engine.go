package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

const (
	// CellMax is the number of distinct cell values. Cells hold [0, CellMax-1].
	CellMax = 256

	// MaxTapeLen is the maximum number of cells the tape may grow to.
	MaxTapeLen = 300000

	// ctxCheckInterval is how many instructions run between context checks.
	ctxCheckInterval = 4096
)

// IDGenerator generates engine ids for log and trace correlation.
// Implemented by UUIDv7Generator; tests use testutil.FixedIDGenerator.
type IDGenerator interface {
	Generate() string
}

// StepEvent describes one executed instruction.
//
// Cursor, Cell and Depth are observed after the instruction ran; PC is the
// position of the instruction itself, even when a ']' jumped elsewhere.
type StepEvent struct {
	Seq    int64
	PC     int
	Op     byte
	Cursor int
	Cell   byte
	Depth  int
}

// Tracer observes executed instructions.
type Tracer interface {
	OnStep(ev StepEvent)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(ev StepEvent)

// OnStep calls f(ev).
func (f TracerFunc) OnStep(ev StepEvent) {
	f(ev)
}

// Engine executes tape programs.
//
// All state belongs to the Engine value; engines share nothing and any
// number of them can coexist. An Engine is not safe for concurrent use.
//
// INVARIANTS:
//   - 0 <= cursor < len(tape) <= MaxTapeLen
//   - every cell is within [0, CellMax-1]
//   - len(loops) is the number of '[' executed and not yet closed
//     in the current program; every entry is an offset into it
type Engine struct {
	id      string
	program string
	pc      int
	cursor  int
	tape    []byte
	loops   []int
	input   *inputQueue
	output  strings.Builder

	source   InputSource
	tracer   Tracer
	logger   *slog.Logger
	clock    *Clock
	idGen    IDGenerator
	maxSteps int
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithInput sets the source consulted by ',' when the input queue is empty.
// Without one, ',' on an empty queue fails with ErrCodeNoInput.
func WithInput(src InputSource) Option {
	return func(e *Engine) {
		e.source = src
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxSteps caps the number of instructions a single Run may execute.
//
// Default: 0 (unlimited).
// Use WithMaxSteps(10) for testing quota enforcement.
func WithMaxSteps(maxSteps int) Option {
	return func(e *Engine) {
		e.maxSteps = maxSteps
	}
}

// WithTracer registers a tracer that sees every executed instruction.
func WithTracer(t Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithIDGenerator overrides the engine id generator (for testing).
func WithIDGenerator(gen IDGenerator) Option {
	return func(e *Engine) {
		e.idGen = gen
	}
}

// New creates an Engine with an empty program and initial state.
func New(opts ...Option) *Engine {
	e := &Engine{
		input:  newInputQueue(),
		logger: slog.Default(),
		clock:  NewClock(),
		idGen:  UUIDv7Generator{},
	}

	for _, opt := range opts {
		opt(e)
	}

	e.id = e.idGen.Generate()
	e.Reset(true)
	return e
}

// Load reads the program at path and makes it the current program.
// Returns the loaded text.
//
// If the file does not exist the returned error matches ErrNotFound.
// The previous program is kept on error. On success the loop stack is
// cleared, as with SetProgram.
func (e *Engine) Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("load %s: %w: %w", path, ErrNotFound, err)
		}
		return "", fmt.Errorf("load %s: %w", path, err)
	}
	e.SetProgram(string(data))
	return e.program, nil
}

// LoadReader reads r to the end and makes its content the current program.
func (e *Engine) LoadReader(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("load program: %w", err)
	}
	e.SetProgram(string(data))
	return e.program, nil
}

// SetProgram replaces the current program text and empties the loop
// stack, whose entries point into the old text. Tape, cursor, program
// counter, pending input and output are untouched.
func (e *Engine) SetProgram(src string) {
	e.program = src
	e.loops = e.loops[:0]
}

// Program returns the current program text.
func (e *Engine) Program() string {
	return e.program
}

// Reset reinitializes the cursor, program counter, tape, loop stack and
// input queue. Output is cleared only when clearOutput is true. The
// program text is kept.
func (e *Engine) Reset(clearOutput bool) {
	e.pc = 0
	e.cursor = 0
	e.tape = []byte{0}
	e.loops = e.loops[:0]
	e.input.Clear()
	if clearOutput {
		e.output.Reset()
	}
}

// Run executes the current program from the current program counter until
// the counter reaches the end of the program. It returns the full
// accumulated output, including output from earlier runs.
//
// On error the program counter is left on the failing instruction and the
// output produced so far is still returned. The loop stack is kept, so a
// later Run on the same program resumes inside any open loops.
//
// A ctx that is already done stops Run before the first instruction.
// Cancellation during a run is noticed between instructions; a ','
// blocked on its input source is not interrupted.
func (e *Engine) Run(ctx context.Context) (string, error) {
	quota := NewQuotaEnforcer(e.maxSteps)

	e.logger.Debug("run starting",
		"engine_id", e.id,
		"pc", e.pc,
		"program_len", len(e.program),
	)

	if err := ctx.Err(); err != nil {
		return e.fail(err)
	}

	for e.pc < len(e.program) {
		op := e.program[e.pc]
		if !isInstruction(op) {
			e.pc++
			continue
		}

		if err := quota.Check(e.pc); err != nil {
			var se *StepsExceededError
			if errors.As(err, &se) {
				err = se.RuntimeError()
			}
			return e.fail(err)
		}
		if quota.Current()%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return e.fail(err)
			}
		}

		pc := e.pc
		if err := e.step(op); err != nil {
			return e.fail(err)
		}

		seq := e.clock.Next()
		if e.tracer != nil {
			e.tracer.OnStep(StepEvent{
				Seq:    seq,
				PC:     pc,
				Op:     op,
				Cursor: e.cursor,
				Cell:   e.tape[e.cursor],
				Depth:  len(e.loops),
			})
		}

		e.pc++
	}

	e.logger.Debug("run halted",
		"engine_id", e.id,
		"steps", quota.Current(),
		"output_len", e.output.Len(),
	)
	return e.output.String(), nil
}

func (e *Engine) fail(err error) (string, error) {
	e.logger.Debug("run stopped",
		"engine_id", e.id,
		"pc", e.pc,
		"error", err,
	)
	return e.output.String(), err
}

// step executes a single instruction. The caller advances the program
// counter afterwards.
func (e *Engine) step(op byte) error {
	switch op {
	case '>':
		if e.cursor < MaxTapeLen-1 {
			e.cursor++
		}
		if e.cursor == len(e.tape) {
			e.tape = append(e.tape, 0)
		}
	case '<':
		if e.cursor > 0 {
			e.cursor--
		}
	case '+':
		e.tape[e.cursor] = clampCell(int(e.tape[e.cursor]) + 1)
	case '-':
		e.tape[e.cursor] = clampCell(int(e.tape[e.cursor]) - 1)
	case '.':
		e.output.WriteRune(rune(e.tape[e.cursor]))
	case ',':
		return e.readInput()
	case '[':
		e.loops = append(e.loops, e.pc)
	case ']':
		if len(e.loops) == 0 {
			return newUnmatchedLoopError(e.pc)
		}
		if e.tape[e.cursor] == 0 {
			e.loops = e.loops[:len(e.loops)-1]
		} else {
			e.pc = e.loops[len(e.loops)-1]
		}
	}
	return nil
}

// readInput moves one queued input value into the current cell, refilling
// the queue from the input source when it is empty. Empty lines enqueue
// nothing, so another line is requested.
func (e *Engine) readInput() error {
	for e.input.Len() == 0 {
		if e.source == nil {
			return &RuntimeError{
				Code:    ErrCodeNoInput,
				Message: "',' needs input but the engine has no input source",
				PC:      e.pc,
			}
		}
		line, err := e.source.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return newInputError(e.pc, err)
			}
			return fmt.Errorf("read input at pc=%d: %w", e.pc, err)
		}
		e.input.EnqueueLine(line)
	}

	v, _ := e.input.TryDequeue()
	e.tape[e.cursor] = v
	return nil
}

func isInstruction(op byte) bool {
	switch op {
	case '>', '<', '+', '-', '.', ',', '[', ']':
		return true
	}
	return false
}

// clampCell saturates v into [0, CellMax-1].
func clampCell(v int) byte {
	if v < 0 {
		return 0
	}
	if v >= CellMax {
		return CellMax - 1
	}
	return byte(v)
}

// ID returns the engine id used in logs and traces.
func (e *Engine) ID() string {
	return e.id
}

// PC returns the program counter.
func (e *Engine) PC() int {
	return e.pc
}

// SetPC moves the program counter, clamped to [0, len(program)].
// Used for caller-managed continuation between program segments.
func (e *Engine) SetPC(pc int) {
	e.pc = max(0, min(pc, len(e.program)))
}

// Cursor returns the cursor position.
func (e *Engine) Cursor() int {
	return e.cursor
}

// TapeLen returns the current tape length.
func (e *Engine) TapeLen() int {
	return len(e.tape)
}

// Tape returns a copy of the tape.
func (e *Engine) Tape() []byte {
	out := make([]byte, len(e.tape))
	copy(out, e.tape)
	return out
}

// Cell returns the value of cell i. Cells the tape has not grown to yet
// read as zero.
func (e *Engine) Cell(i int) byte {
	if i < 0 || i >= len(e.tape) {
		return 0
	}
	return e.tape[i]
}

// LoopDepth returns the number of open loops.
func (e *Engine) LoopDepth() int {
	return len(e.loops)
}

// Output returns the accumulated output.
func (e *Engine) Output() string {
	return e.output.String()
}

// PendingInput returns the number of queued input values.
func (e *Engine) PendingInput() int {
	return e.input.Len()
}

// Steps returns the number of instructions executed over the engine's
// lifetime.
func (e *Engine) Steps() int64 {
	return e.clock.Current()
}
