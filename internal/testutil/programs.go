package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// HelloWorld prints "Hello, World!" under saturating cell semantics.
const HelloWorld = ">++++++++[<+++++++++>-]<.>++++[<+++++++>-]<+.+++++++..+++.>>++++++[<+++++++>-]<++.------------.>++++++[<+++++++++>-]<+.<.+++.------.--------.>>>++++[<++++++++>-]<+."

// TextProgram returns a program that prints s.
//
// Each character is built up in cell 0 with '+', printed, then cleared
// with "[-]", so the program ends with the cursor on a zero cell 0 and
// the tape one cell long. Characters above 255 print as 255.
func TextProgram(s string) string {
	var b strings.Builder
	for _, r := range s {
		b.WriteString(strings.Repeat("+", min(int(r), 255)))
		b.WriteString(".[-]")
	}
	return b.String()
}

// WriteProgram writes src to dir/name and returns the path.
func WriteProgram(t testing.TB, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write program %s: %v", path, err)
	}
	return path
}
