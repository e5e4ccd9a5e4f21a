// Package engine implements the bfi execution engine.
//
// The engine interprets programs written in an eight-instruction tape
// language. It owns a tape of byte cells, a cursor into the tape, a program
// counter into the program text, a loop stack, a queue of pending input
// bytes and an accumulated output string.
//
// ARCHITECTURE:
//
// Single-Threaded Dispatch:
// Run reads one character at the program counter, dispatches it through a
// closed switch, then advances the program counter by one. There are no
// goroutines. The only blocking point is the input source read performed by
// ',' when the input queue is empty.
//
// Instruction Set:
//
//	>  move cursor right (grows the tape lazily)
//	<  move cursor left
//	+  increment cell (saturates at 255)
//	-  decrement cell (saturates at 0)
//	.  append the cell as a character to the output
//	,  read one input byte into the cell
//	[  push the program counter onto the loop stack
//	]  pop when the cell is zero, else jump back to the matching '['
//
// Every other character is a comment.
//
// SATURATION:
// Cell arithmetic and cursor movement clamp at their bounds instead of
// wrapping. A cell never leaves [0, 255]; the cursor never leaves
// [0, MaxTapeLen-1].
//
// INPUT:
// ',' takes one value from the input queue. The queue is refilled a line
// at a time: each character of valid UTF-8 becomes its code point,
// saturated at 255, and each byte that is not part of a valid UTF-8
// sequence is queued as itself. Empty lines queue nothing.
//
// CONTINUATION:
// State persists across Run calls. Run starts from the current program
// counter and never rewinds it; callers use Reset or SetPC between program
// segments.
//
// The loop stack belongs to the current program text. SetProgram, Load,
// LoadReader and Reset empty it. Run does not, so a run stopped by
// STEPS_EXCEEDED, cancellation or an input error resumes inside its open
// loops on the next Run. SetPC leaves it alone; its entries stay valid
// offsets because the text has not changed.
package engine
