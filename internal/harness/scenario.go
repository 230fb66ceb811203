package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/specgraph/internal/meta"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and prefixes its golden files.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Sample seeds the project with testutil.SampleProject.
	Sample bool `yaml:"sample,omitempty"`

	// Project maps slash-separated paths to file contents.
	Project map[string]string `yaml:"project,omitempty"`

	// Steps are applied in order after the session opens.
	Steps []Step `yaml:"steps,omitempty"`

	// Assertions validate the final graph, metadata and journal.
	Assertions []Assertion `yaml:"assertions"`

	// Golden lists view projections compared against golden files.
	Golden []GoldenView `yaml:"golden,omitempty"`
}

// Step is one edit. Exactly one of Edge and Position is set.
type Step struct {
	Edge     *meta.EdgeOp     `yaml:"edge,omitempty"`
	Position *meta.PositionOp `yaml:"position,omitempty"`

	// Expect checks the edit outcome. Nil expects an applied, saved edit.
	Expect *StepExpect `yaml:"expect,omitempty"`
}

// StepExpect is the expected outcome of a step.
type StepExpect struct {
	Applied bool  `yaml:"applied"`
	Saved   *bool `yaml:"saved,omitempty"`
}

// Assertion validates the state after all steps.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// View selects a projection. Empty means the canonical graph.
	View  string `yaml:"view,omitempty"`
	Focus string `yaml:"focus,omitempty"`

	// ID names the node or edge (node_*, edge_*, position, persisted_edge).
	ID string `yaml:"id,omitempty"`

	// Confidence optionally narrows edge_present.
	Confidence string `yaml:"confidence,omitempty"`

	// Count is used by node_count, edge_count and journal_count.
	Count int `yaml:"count,omitempty"`

	// X and Y are used by position.
	X *float64 `yaml:"x,omitempty"`
	Y *float64 `yaml:"y,omitempty"`
}

// GoldenView names one projection to snapshot.
type GoldenView struct {
	Name  string `yaml:"name"`
	View  string `yaml:"view"`
	Focus string `yaml:"focus,omitempty"`
}

// Assertion type constants.
const (
	AssertNodePresent   = "node_present"
	AssertNodeAbsent    = "node_absent"
	AssertEdgePresent   = "edge_present"
	AssertEdgeAbsent    = "edge_absent"
	AssertNodeCount     = "node_count"
	AssertEdgeCount     = "edge_count"
	AssertPosition      = "position"
	AssertPersistedEdge = "persisted_edge"
	AssertJournalCount  = "journal_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields, or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "assertion:"
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
	if !s.Sample && len(s.Project) == 0 {
		return fmt.Errorf("project files are required unless sample is set")
	}
	if len(s.Assertions) == 0 && len(s.Golden) == 0 {
		return fmt.Errorf("assertions or golden views are required")
	}

	for i, step := range s.Steps {
		if (step.Edge == nil) == (step.Position == nil) {
			return fmt.Errorf("steps[%d]: exactly one of edge and position is required", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(s.Golden))
	for i, g := range s.Golden {
		if g.Name == "" {
			return fmt.Errorf("golden[%d]: name is required", i)
		}
		if seen[g.Name] {
			return fmt.Errorf("golden[%d]: duplicate name %q", i, g.Name)
		}
		seen[g.Name] = true
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertNodePresent, AssertNodeAbsent, AssertEdgePresent, AssertEdgeAbsent, AssertPersistedEdge:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for %s", index, a.Type)
		}
	case AssertNodeCount, AssertEdgeCount, AssertJournalCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertPosition:
		if a.ID == "" || a.X == nil || a.Y == nil {
			return fmt.Errorf("assertions[%d]: id, x and y are required for position", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
