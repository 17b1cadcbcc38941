package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: child_basics
description: "Reads and writes on a child"
subject:
  type: Child
  fields:
    id: 1
    name: parent
steps:
  - op: get
    target: name
    expect:
      value: parent
  - op: set
    target: age
    value: 7
  - op: get
    target: missing
    expect:
      error: MEMBER_NOT_FOUND
  - op: invoke
    target: greet
    args: [hi]
  - op: accessor
    target: name
    kind: writer
assertions:
  - type: trace_count
    op: get
    count: 2
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "child_basics", scenario.Name)
	assert.Equal(t, "Child", scenario.Subject.Type)
	assert.Equal(t, map[string]any{"id": 1, "name": "parent"}, scenario.Subject.Fields)
	require.Len(t, scenario.Steps, 5)

	get := scenario.Steps[0]
	require.NotNil(t, get.Expect)
	assert.True(t, get.Expect.HasValue)
	assert.Equal(t, "parent", get.Expect.Value)

	assert.Nil(t, scenario.Steps[1].Expect)
	assert.Equal(t, 7, scenario.Steps[1].Value)

	assert.Equal(t, "MEMBER_NOT_FOUND", scenario.Steps[2].Expect.Error)
	assert.False(t, scenario.Steps[2].Expect.HasValue)

	assert.Equal(t, []any{"hi"}, scenario.Steps[3].Args)
	assert.Equal(t, "writer", scenario.Steps[4].Kind)

	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, AssertTraceCount, scenario.Assertions[0].Type)
	assert.Equal(t, 2, scenario.Assertions[0].Count)
}

func TestParseScenario_ExpectNullValue(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: null_value
description: "An explicit null is an expected value"
subject: { type: Measures }
steps:
  - op: get
    target: score
    expect: { value: null }
`))
	require.NoError(t, err)

	e := scenario.Steps[0].Expect
	assert.True(t, e.HasValue)
	assert.Nil(t, e.Value)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"top level", `
name: typo
description: d
subject: { type: Base }
step:
  - op: fields
`},
		{"step", `
name: typo
description: d
subject: { type: Base }
steps:
  - op: get
    targte: name
`},
		{"expect", `
name: typo
description: d
subject: { type: Base }
steps:
  - op: get
    target: name
    expect: { valeu: 1 }
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to parse YAML")
		})
	}
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing name", `
description: d
subject: { type: Base }
steps: [{ op: fields }]
`, "name is required"},
		{"missing description", `
name: n
subject: { type: Base }
steps: [{ op: fields }]
`, "description is required"},
		{"missing subject", `
name: n
description: d
steps: [{ op: fields }]
`, "subject: type or fixture is required"},
		{"type and fixture", `
name: n
description: d
subject: { type: Base, fixture: base }
steps: [{ op: fields }]
`, "mutually exclusive"},
		{"fixture with fields", `
name: n
description: d
subject: { fixture: base, fields: { id: 1 } }
steps: [{ op: fields }]
`, "fields cannot be combined"},
		{"no steps", `
name: n
description: d
subject: { type: Base }
`, "steps list is required"},
		{"unknown op", `
name: n
description: d
subject: { type: Base }
steps: [{ op: delete }]
`, `steps[0]: unknown op "delete"`},
		{"missing target", `
name: n
description: d
subject: { type: Base }
steps: [{ op: get }]
`, "steps[0]: target is required for get"},
		{"args outside invoke", `
name: n
description: d
subject: { type: Base }
steps: [{ op: get, target: id, args: [1] }]
`, "args are only allowed on invoke"},
		{"bad kind", `
name: n
description: d
subject: { type: Base }
steps: [{ op: accessor, target: id, kind: both }]
`, "kind must be reader or writer"},
		{"kind outside accessor", `
name: n
description: d
subject: { type: Base }
steps: [{ op: get, target: id, kind: reader }]
`, "kind is only allowed on accessor"},
		{"value and error", `
name: n
description: d
subject: { type: Base }
steps: [{ op: get, target: id, expect: { value: 1, error: FORMAT_ERROR } }]
`, "exactly one of value or error"},
		{"empty expect", `
name: n
description: d
subject: { type: Base }
steps: [{ op: get, target: id, expect: {} }]
`, "exactly one of value or error"},
		{"unknown assertion", `
name: n
description: d
subject: { type: Base }
steps: [{ op: fields }]
assertions: [{ type: final_state }]
`, `unknown assertion type "final_state"`},
		{"trace_order without ops", `
name: n
description: d
subject: { type: Base }
steps: [{ op: fields }]
assertions: [{ type: trace_order }]
`, "ops list is required"},
		{"negative count", `
name: n
description: d
subject: { type: Base }
steps: [{ op: fields }]
assertions: [{ type: trace_count, op: fields, count: -1 }]
`, "count must be non-negative"},
		{"final_fields without fields", `
name: n
description: d
subject: { type: Base }
steps: [{ op: fields }]
assertions: [{ type: final_fields }]
`, "fields are required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
