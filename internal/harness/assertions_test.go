package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/introspect/internal/ir"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Seq: 1, Op: OpGet, Target: "name", Value: ir.String("a")},
		{Seq: 2, Op: OpSet, Target: "name", Value: ir.String("b")},
		{Seq: 3, Op: OpInvoke, Target: "validate", Error: "INVOCATION_FAILED"},
		{Seq: 4, Op: OpGet, Target: "id", Value: ir.Int(1)},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Op: OpInvoke}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Op: OpGet, Target: "id"}))

	err := assertTraceContains(trace, Assertion{Op: OpGet, Target: "date"})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "get date", ae.Expected)
	assert.Contains(t, err.Error(), "Full trace:")
	assert.Contains(t, err.Error(), "[3] invoke validate -> INVOCATION_FAILED")
	assert.Contains(t, err.Error(), `[1] get name -> "a"`)
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Ops: []string{OpGet, OpSet, OpInvoke}}))
	assert.NoError(t, assertTraceOrder(trace, Assertion{Ops: []string{OpGet, OpInvoke}}))

	err := assertTraceOrder(trace, Assertion{Ops: []string{OpSet, OpGet}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set (pos 2) should be before get (pos 1)")

	err = assertTraceOrder(trace, Assertion{Ops: []string{OpGet, OpCoerce}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing op: coerce")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Op: OpGet, Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Op: OpGet, Target: "name", Count: 1}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Op: OpCoerce, Count: 0}))

	err := assertTraceCount(trace, Assertion{Op: OpSet, Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: 3 occurrences of set")
	assert.Contains(t, err.Error(), "Actual: 1 occurrences")
}

func TestAssertFinalFields(t *testing.T) {
	final := ir.Object{
		"id":   ir.Int(3),
		"name": ir.String("x"),
		"tags": ir.Array{ir.String("a")},
	}

	assert.NoError(t, assertFinalFields(final, Assertion{Fields: map[string]any{"id": 3}}))
	assert.NoError(t, assertFinalFields(final, Assertion{Fields: map[string]any{
		"name": "x",
		"tags": []any{"a"},
	}}))

	err := assertFinalFields(final, Assertion{Fields: map[string]any{"id": 4}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "id" = 4`)
	assert.Contains(t, err.Error(), `field "id" = 3`)

	err = assertFinalFields(final, Assertion{Fields: map[string]any{"nope": 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "nope" to exist`)
}

func TestEvaluateAssertions(t *testing.T) {
	result := &Result{Trace: sampleTrace(), Final: ir.Object{"id": ir.Int(1)}}

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceContains, Op: OpGet},
		{Type: AssertTraceCount, Op: OpGet, Count: 5},
		{Type: AssertFinalFields, Fields: map[string]any{"id": 1}},
		{Type: "bogus"},
	})

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "assertions[1]:")
	assert.Equal(t, `assertions[3]: unknown assertion type "bogus"`, errs[1])
}

func TestRun_AssertionsFailTheResult(t *testing.T) {
	scenario := childScenario(Step{Op: OpGet, Target: "name"})
	scenario.Assertions = []Assertion{
		{Type: AssertFinalFields, Fields: map[string]any{"name": "someone else"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "final_fields")
}
