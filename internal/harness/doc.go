// Package harness runs YAML scenarios against the engine.
//
// A scenario names a program, optional scripted input and optional follow-up
// segments, then asserts on the final machine state:
//
//	name: echo_first_char
//	description: copies one input character to the output
//	program: ",."
//	input: ["hi"]
//	assertions:
//	  - type: output_equals
//	    value: "h"
//	  - type: cell
//	    index: 0
//	    value: 104
//
// Every scenario runs on a fresh engine with a fixed engine id, so runs are
// reproducible and their canonical snapshots can be compared against golden
// files (see RunWithGolden).
//
// A runtime error does not make Run return an error. The error code is
// recorded in the Result and can be asserted with an error_code assertion;
// without one, the scenario fails.
package harness
