package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a single program run and the assertions on its outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. Used as the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the program text. Exactly one of Program and ProgramFile
	// must be set.
	Program string `yaml:"program,omitempty"`

	// ProgramFile is a path to the program. Relative paths are resolved
	// against the scenario file's directory by LoadScenario.
	ProgramFile string `yaml:"program_file,omitempty"`

	// Input lists the lines ',' reads, in order.
	Input []string `yaml:"input,omitempty"`

	// MaxSteps caps instructions per run. 0 means unlimited.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Trace records every executed instruction into the snapshot.
	Trace bool `yaml:"trace,omitempty"`

	// Segments are programs run after the first one, on the same engine.
	Segments []Segment `yaml:"segments,omitempty"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`

	// EngineID is an optional fixed engine id.
	// If empty, defaults to "test-engine-default".
	EngineID string `yaml:"engine_id,omitempty"`
}

// Segment is a follow-up program run on the engine of the previous run.
type Segment struct {
	Program string `yaml:"program"`

	// Reset selects what is cleared before the segment runs. See the
	// Reset* constants. Defaults to ResetNone.
	Reset string `yaml:"reset,omitempty"`
}

// Segment reset modes.
const (
	// ResetNone keeps all machine state and rewinds the program counter.
	ResetNone = "none"

	// ResetState calls Engine.Reset(false): tape, cursor, loops and input
	// queue are cleared, output is kept.
	ResetState = "state"

	// ResetAll calls Engine.Reset(true).
	ResetAll = "all"
)

// Assertion validates one aspect of the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "output_equals": output is exactly Value
	// - "output_contains": output contains Value
	// - "cell": cell Index holds Value
	// - "cursor": cursor is Value
	// - "tape_len": tape length is Value
	// - "error_code": the run failed with code Value ("" for success)
	Type string `yaml:"type"`

	// Value is the expected value: a string for output and error_code
	// assertions, an integer otherwise.
	Value any `yaml:"value"`

	// Index is the cell index (used by cell).
	Index int `yaml:"index,omitempty"`
}

// Assertion type constants.
const (
	AssertOutputEquals   = "output_equals"
	AssertOutputContains = "output_contains"
	AssertCell           = "cell"
	AssertCursor         = "cursor"
	AssertTapeLen        = "tape_len"
	AssertErrorCode      = "error_code"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// A relative program_file is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.ProgramFile != "" && !filepath.IsAbs(scenario.ProgramFile) {
		scenario.ProgramFile = filepath.Join(filepath.Dir(path), scenario.ProgramFile)
	}

	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if (s.Program == "") == (s.ProgramFile == "") {
		return fmt.Errorf("exactly one of program and program_file is required")
	}

	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, seg := range s.Segments {
		switch seg.Reset {
		case "", ResetNone, ResetState, ResetAll:
		default:
			return fmt.Errorf("segments[%d]: unknown reset mode %q", i, seg.Reset)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOutputEquals, AssertOutputContains, AssertErrorCode:
		if _, ok := a.Value.(string); !ok {
			return fmt.Errorf("assertions[%d]: value must be a string for %s", index, a.Type)
		}
	case AssertCell, AssertCursor, AssertTapeLen:
		if _, ok := a.Value.(int); !ok {
			return fmt.Errorf("assertions[%d]: value must be an integer for %s", index, a.Type)
		}
		if a.Index < 0 {
			return fmt.Errorf("assertions[%d]: index must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
