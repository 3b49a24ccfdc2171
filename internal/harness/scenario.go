package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cooksync/internal/engine"
)

// Scenario defines one sync scenario: a cook result, a sequence of sync,
// undo and redo steps, and assertions on the resulting scene.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden files.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Cook is the path of the cook result YAML synced by default.
	// Relative paths are resolved against the scenario's base path.
	Cook string `yaml:"cook"`

	// Asset names the asset node. Defaults to the sanitized asset name of
	// the cook result.
	Asset string `yaml:"asset,omitempty"`

	// Modes selects what sync steps rebuild. Nil means every mode.
	Modes *ModeSpec `yaml:"modes,omitempty"`

	// InstancerNode sets the instancing policy. Nil means true.
	InstancerNode *bool `yaml:"instancer_node,omitempty"`

	// Steps are executed in order against one scene.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final scene.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// GoldenScene adds the final scene dump to the golden comparison.
	GoldenScene bool `yaml:"golden_scene,omitempty"`
}

// ModeSpec is the YAML form of engine.Modes. Omitted modes are off.
type ModeSpec struct {
	Attributes    bool `yaml:"attributes"`
	Outputs       bool `yaml:"outputs"`
	Hidden        bool `yaml:"hidden"`
	TemplatedGeos bool `yaml:"templated_geos"`
}

// Modes converts the mode list; nil yields engine.AllModes().
func (m *ModeSpec) Modes() engine.Modes {
	if m == nil {
		return engine.AllModes()
	}
	return engine.Modes{
		Attributes:    m.Attributes,
		Outputs:       m.Outputs,
		Hidden:        m.Hidden,
		TemplatedGeos: m.TemplatedGeos,
	}
}

// Step actions.
const (
	ActionSync = "sync"
	ActionUndo = "undo"
	ActionRedo = "redo"
)

// Step is one action against the scene.
type Step struct {
	// Action is sync, undo or redo.
	Action string `yaml:"action"`

	// Cook overrides the scenario's cook result for a sync step.
	Cook string `yaml:"cook,omitempty"`

	// Modes overrides the scenario's modes for a sync step.
	Modes *ModeSpec `yaml:"modes,omitempty"`

	// Expect validates the outcome of a sync step.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a sync step.
// Only the fields that are set are validated.
type ExpectClause struct {
	Objects     *int  `yaml:"objects,omitempty"`
	Parts       *int  `yaml:"parts,omitempty"`
	Instancers  *int  `yaml:"instancers,omitempty"`
	Materials   *int  `yaml:"materials,omitempty"`
	Failures    *int  `yaml:"failures,omitempty"`
	NeedsResync *bool `yaml:"needs_resync,omitempty"`

	// Aborted expects the host to reject the pass.
	Aborted bool `yaml:"aborted,omitempty"`
}

// Assertion validates the final scene.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Node names the node (node_exists, node_absent).
	Node string `yaml:"node,omitempty"`

	// NodeType filters node_exists and selects the type for type_count.
	NodeType string `yaml:"node_type,omitempty"`

	// Parent is the expected parent name (node_exists).
	Parent string `yaml:"parent,omitempty"`

	// Count is the expected number of nodes (type_count).
	Count int `yaml:"count,omitempty"`

	// Src and Dst are "node.attr" plug names (connected).
	Src string `yaml:"src,omitempty"`
	Dst string `yaml:"dst,omitempty"`

	// Plug and Expect are a "node.attr" plug name and its expected text
	// form (value).
	Plug   string `yaml:"plug,omitempty"`
	Expect string `yaml:"expect,omitempty"`

	// Set and Members name a set and its expected members (set_members).
	Set     string   `yaml:"set,omitempty"`
	Members []string `yaml:"members,omitempty"`

	// Step is the step whose scene the final scene must equal
	// (matches_step). 0 is the scene before any step.
	Step int `yaml:"step,omitempty"`
}

// Assertion type constants.
const (
	AssertNodeExists  = "node_exists"
	AssertNodeAbsent  = "node_absent"
	AssertTypeCount   = "type_count"
	AssertConnected   = "connected"
	AssertValue       = "value"
	AssertSetMembers  = "set_members"
	AssertMatchesStep = "matches_step"
)

// LoadScenario reads and parses a scenario YAML file. Cook paths are
// resolved relative to the file's directory.
//
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving cook paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	scenario.Cook = resolvePath(scenario.Cook, basePath)
	for i := range scenario.Steps {
		scenario.Steps[i].Cook = resolvePath(scenario.Steps[i].Cook, basePath)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolvePath(path, basePath string) string {
	if path == "" || filepath.IsAbs(path) || basePath == "" {
		return path
	}
	return filepath.Join(basePath, path)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Cook == "" {
		return fmt.Errorf("cook is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		switch step.Action {
		case ActionSync:
		case ActionUndo, ActionRedo:
			if step.Cook != "" || step.Modes != nil || step.Expect != nil {
				return fmt.Errorf("step %d: %s takes no cook, modes or expect", i+1, step.Action)
			}
		case "":
			return fmt.Errorf("step %d: action is required", i+1)
		default:
			return fmt.Errorf("step %d: unknown action %q", i+1, step.Action)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a, len(s.Steps)); err != nil {
			return fmt.Errorf("assertion %d: %w", i+1, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion, steps int) error {
	switch a.Type {
	case AssertNodeExists, AssertNodeAbsent:
		if a.Node == "" {
			return fmt.Errorf("%s requires node", a.Type)
		}
	case AssertTypeCount:
		if a.NodeType == "" {
			return fmt.Errorf("%s requires node_type", a.Type)
		}
		if a.Count < 0 {
			return fmt.Errorf("%s count must be >= 0", a.Type)
		}
	case AssertConnected:
		if a.Src == "" || a.Dst == "" {
			return fmt.Errorf("%s requires src and dst", a.Type)
		}
	case AssertValue:
		if a.Plug == "" {
			return fmt.Errorf("%s requires plug", a.Type)
		}
	case AssertSetMembers:
		if a.Set == "" {
			return fmt.Errorf("%s requires set", a.Type)
		}
	case AssertMatchesStep:
		if a.Step < 0 || a.Step > steps {
			return fmt.Errorf("%s step %d out of range 0..%d", a.Type, a.Step, steps)
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
