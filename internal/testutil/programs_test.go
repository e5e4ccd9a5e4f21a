package testutil

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedIDGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedIDGenerator("engine-123")

	assert.Equal(t, "engine-123", gen.Generate())
	assert.Equal(t, "engine-123", gen.Generate())
}

func TestFixedIDGenerator_EmptyIDDefault(t *testing.T) {
	gen := NewFixedIDGenerator("")

	assert.Equal(t, "test-engine-default", gen.Generate())
}

func TestTextProgram_Shape(t *testing.T) {
	prog := TextProgram("AB")

	assert.Equal(t, strings.Repeat("+", 65)+".[-]"+strings.Repeat("+", 66)+".[-]", prog)
}

func TestTextProgram_Empty(t *testing.T) {
	assert.Equal(t, "", TextProgram(""))
}

func TestWriteProgram(t *testing.T) {
	dir := t.TempDir()

	path := WriteProgram(t, dir, "p.bf", "+.")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "+.", string(data))
}
