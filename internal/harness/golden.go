package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/introspect/internal/ir"
)

// TraceSnapshot is the golden-file form of a scenario run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
	Final        ir.Object    `json:"final"`
}

// toValue converts the snapshot to an ir.Object for canonical serialization.
func (s *TraceSnapshot) toValue() ir.Object {
	trace := make(ir.Array, len(s.Trace))
	for i, event := range s.Trace {
		obj := ir.Object{
			"seq": ir.Int(event.Seq),
			"op":  ir.String(event.Op),
		}
		if event.Target != "" {
			obj["target"] = ir.String(event.Target)
		}
		if event.Error != "" {
			obj["error"] = ir.String(event.Error)
		} else if event.Value != nil {
			obj["value"] = event.Value
		}
		trace[i] = obj
	}

	final := s.Final
	if final == nil {
		final = ir.Object{}
	}
	return ir.Object{
		"scenario_name": ir.String(s.ScenarioName),
		"trace":         trace,
		"final":         final,
	}
}

// Canonical returns the snapshot as canonical JSON.
func (s *TraceSnapshot) Canonical() ([]byte, error) {
	return ir.Marshal(s.toValue())
}

// RunWithGolden executes a scenario and compares its trace with the golden
// file testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result with the golden file for
// scenarioName.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		Final:        result.Final,
	}
	data, err := snapshot.Canonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
