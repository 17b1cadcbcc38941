package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted run against one subject instance: build the
// subject, execute the steps in order, then check the assertions.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Subject describes the instance the steps operate on.
	Subject Subject `yaml:"subject"`

	// Steps are executed in order against the subject.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and the subject's final field values.
	// Supported types: trace_contains, trace_order, trace_count, final_fields
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Subject names the type of the instance under test and its initial field
// values. Fixture, when set, takes type and fields from a loaded fixture
// instead.
type Subject struct {
	Type    string         `yaml:"type,omitempty"`
	Fields  map[string]any `yaml:"fields,omitempty"`
	Fixture string         `yaml:"fixture,omitempty"`
}

// Step is one operation against the subject.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Target is the field or operation the step addresses.
	Target string `yaml:"target,omitempty"`

	// Value is the input of set and coerce steps.
	Value any `yaml:"value,omitempty"`

	// Args are the arguments of an invoke step.
	Args []any `yaml:"args,omitempty"`

	// Kind selects "reader" or "writer" for accessor steps. Defaults to reader.
	Kind string `yaml:"kind,omitempty"`

	// Expect is checked against the step outcome. If nil, any outcome other
	// than an error passes.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is either an expected value or an expected error code.
type Expect struct {
	Value    any
	HasValue bool
	Error    string
}

// UnmarshalYAML records whether value was present so that `value: null`
// can be told apart from no value at all.
func (e *Expect) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expect must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "value":
			if err := val.Decode(&e.Value); err != nil {
				return err
			}
			e.HasValue = true
		case "error":
			if err := val.Decode(&e.Error); err != nil {
				return err
			}
		default:
			return fmt.Errorf("line %d: field %s not found in type harness.Expect", key.Line, key.Value)
		}
	}
	return nil
}

// Step operations.
const (
	OpFields   = "fields"
	OpOps      = "ops"
	OpFind     = "find"
	OpGet      = "get"
	OpSet      = "set"
	OpInvoke   = "invoke"
	OpAccessor = "accessor"
	OpCoerce   = "coerce"
	OpValues   = "values"
	OpSnapshot = "snapshot"
	OpRestore  = "restore"
)

var targetedOps = map[string]bool{
	OpFind:     true,
	OpGet:      true,
	OpSet:      true,
	OpInvoke:   true,
	OpAccessor: true,
	OpCoerce:   true,
}

var knownOps = map[string]bool{
	OpFields:   true,
	OpOps:      true,
	OpValues:   true,
	OpSnapshot: true,
	OpRestore:  true,
}

// Assertion validates the trace or the subject's final state.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count, final_fields.
	Type string `yaml:"type"`

	// Op and Target select trace events (trace_contains, trace_count).
	// An empty Target matches any target.
	Op     string `yaml:"op,omitempty"`
	Target string `yaml:"target,omitempty"`

	// Ops is the expected op order (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Count is the expected number of matching events (trace_count).
	Count int `yaml:"count,omitempty"`

	// Fields are expected final field values (final_fields). Subset match.
	Fields map[string]any `yaml:"fields,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalFields   = "final_fields"
)

// LoadScenario reads and parses a scenario YAML file. Unknown keys and
// missing required fields are errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML from memory.
func ParseScenario(data []byte) (*Scenario, error) {
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

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Subject.Type == "" && s.Subject.Fixture == "":
		return fmt.Errorf("subject: type or fixture is required")
	case s.Subject.Type != "" && s.Subject.Fixture != "":
		return fmt.Errorf("subject: type and fixture are mutually exclusive")
	case s.Subject.Fixture != "" && s.Subject.Fields != nil:
		return fmt.Errorf("subject: fields cannot be combined with fixture")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *Step) error {
	if step.Op == "" {
		return fmt.Errorf("steps[%d]: op is required", index)
	}
	if !targetedOps[step.Op] && !knownOps[step.Op] {
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}
	if targetedOps[step.Op] && step.Target == "" {
		return fmt.Errorf("steps[%d]: target is required for %s", index, step.Op)
	}
	if step.Args != nil && step.Op != OpInvoke {
		return fmt.Errorf("steps[%d]: args are only allowed on invoke", index)
	}
	if step.Kind != "" {
		if step.Op != OpAccessor {
			return fmt.Errorf("steps[%d]: kind is only allowed on accessor", index)
		}
		if step.Kind != "reader" && step.Kind != "writer" {
			return fmt.Errorf("steps[%d]: kind must be reader or writer, got %q", index, step.Kind)
		}
	}
	if e := step.Expect; e != nil {
		if e.HasValue == (e.Error != "") {
			return fmt.Errorf("steps[%d].expect: exactly one of value or error is required", index)
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalFields:
		if len(a.Fields) == 0 {
			return fmt.Errorf("assertions[%d]: fields are required for final_fields", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
