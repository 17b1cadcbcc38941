package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/roach88/introspect/internal/fixture"
	"github.com/roach88/introspect/internal/introspect"
	"github.com/roach88/introspect/internal/ir"
	"github.com/roach88/introspect/internal/records"
	"github.com/roach88/introspect/internal/store"
	"github.com/roach88/introspect/internal/testutil"
)

// Harness executes scenarios against one subject at a time.
type Harness struct {
	in       *introspect.Inspector
	factory  fixture.Factory
	fixtures []fixture.Fixture
	logger   *slog.Logger

	store   *store.Store
	clock   *testutil.DeterministicClock
	subject any
	typ     reflect.Type
	last    *store.Snapshot
}

// Option configures a Harness.
type Option func(*Harness)

// WithInspector runs scenarios through in instead of an inspector with the
// sample records registered.
func WithInspector(in *introspect.Inspector) Option {
	return func(h *Harness) { h.in = in }
}

// WithFactory resolves subject type names with f instead of records.New.
func WithFactory(f fixture.Factory) Option {
	return func(h *Harness) { h.factory = f }
}

// WithFixtures makes fixtures available to scenarios that name a subject
// fixture.
func WithFixtures(fixtures []fixture.Fixture) Option {
	return func(h *Harness) { h.fixtures = fixtures }
}

// WithLogger sets the logger. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory store with a deterministic clock,
// so traces and snapshot IDs are reproducible. A step that fails does not
// stop the run; it is recorded in the trace and checked against its expect
// clause. Run itself only fails when the subject cannot be built.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	h := &Harness{
		factory: records.New,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:   testutil.NewDeterministicClock(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.in == nil {
		h.in = introspect.New(introspect.WithLogger(h.logger))
		records.Register(h.in)
	}

	st, err := store.Open(":memory:",
		store.WithClock(testutil.NewDeterministicClock()),
		store.WithTokens(testutil.NewFixedTokens()),
		store.WithLogger(h.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()
	h.store = st

	if err := h.buildSubject(scenario); err != nil {
		return nil, err
	}

	ctx := context.Background()
	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	final, err := h.finalFields()
	if err != nil {
		return nil, fmt.Errorf("failed to read final fields: %w", err)
	}
	result.Final = final

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"steps", len(result.Trace),
	)
	return result, nil
}

func (h *Harness) buildSubject(s *Scenario) error {
	fx := fixture.Fixture{Name: s.Name, Type: s.Subject.Type, Fields: s.Subject.Fields}
	if s.Subject.Fixture != "" {
		found, ok := fixture.Find(h.fixtures, s.Subject.Fixture)
		if !ok {
			return fmt.Errorf("subject fixture %q not found", s.Subject.Fixture)
		}
		fx = found
	}

	subject, err := fx.Build(h.in, h.factory)
	if err != nil {
		return fmt.Errorf("failed to build subject: %w", err)
	}
	h.subject = subject
	h.typ = reflect.TypeOf(subject)
	return nil
}

func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) {
	seq := h.clock.Next()
	v, err := h.apply(ctx, step)

	h.logger.Debug("step executed",
		"seq", seq,
		"op", step.Op,
		"target", step.Target,
		"error", err,
	)

	if err != nil {
		code := string(introspect.CodeOf(err))
		if code == "" {
			code = "ERROR"
		}
		result.AddFailure(seq, step.Op, step.Target, code)
		checkFailure(index, step, code, err, result)
		return
	}

	result.AddValue(seq, step.Op, step.Target, v)
	checkValue(index, step, v, result)
}

// apply runs one step and converts its outcome to a Value.
func (h *Harness) apply(ctx context.Context, step Step) (ir.Value, error) {
	switch step.Op {
	case OpFields:
		fields := h.in.AllFields(h.typ)
		names := make([]string, len(fields))
		for i, f := range fields {
			names[i] = f.Name
		}
		return ir.FromGo(names)

	case OpOps:
		ops := h.in.AllOperations(h.typ)
		names := make([]string, len(ops))
		for i, op := range ops {
			names[i] = op.Name
		}
		return ir.FromGo(names)

	case OpFind:
		f, err := h.in.FieldWithCheck(h.typ, step.Target)
		if err != nil {
			return nil, err
		}
		return ir.Object{
			"name":   ir.String(f.Name),
			"owner":  ir.String(f.Owner),
			"static": ir.Bool(f.Static),
			"type":   ir.String(f.Type.String()),
		}, nil

	case OpGet:
		v, err := h.in.Get(h.subject, step.Target)
		if err != nil {
			return nil, err
		}
		return ir.FromGo(v)

	case OpSet:
		if err := h.in.AssignValues(h.subject, map[string]any{step.Target: step.Value}); err != nil {
			return nil, err
		}
		v, err := h.in.Get(h.subject, step.Target)
		if err != nil {
			return nil, err
		}
		return ir.FromGo(v)

	case OpInvoke:
		v, err := h.in.Invoke(h.subject, step.Target, step.Args...)
		if err != nil {
			return nil, err
		}
		return ir.FromGo(v)

	case OpAccessor:
		kind := introspect.Reader
		if step.Kind == "writer" {
			kind = introspect.Writer
		}
		name, ok := introspect.AccessorName(step.Target, kind)
		if !ok {
			return ir.Null{}, nil
		}
		return ir.String(name), nil

	case OpCoerce:
		v, err := h.in.CoerceField(h.typ, step.Target, step.Value)
		if err != nil {
			return nil, err
		}
		return ir.FromGo(v)

	case OpValues:
		return h.finalFields()

	case OpSnapshot:
		snaps, err := h.store.Capture(h.in, h.subject)
		if err != nil {
			return nil, err
		}
		if err := h.store.Write(ctx, snaps...); err != nil {
			return nil, err
		}
		h.last = &snaps[0]
		return snaps[0].Fields, nil

	case OpRestore:
		if h.last == nil {
			return nil, fmt.Errorf("restore: no snapshot taken yet")
		}
		snap, err := h.store.Read(ctx, h.last.ID)
		if err != nil {
			return nil, err
		}
		if err := h.store.Restore(h.in, snap, h.subject); err != nil {
			return nil, err
		}
		return h.finalFields()
	}

	return nil, fmt.Errorf("unknown op %q", step.Op)
}

func (h *Harness) finalFields() (ir.Object, error) {
	values, err := h.in.FieldValues(h.subject)
	if err != nil {
		return nil, err
	}
	v, err := ir.FromGo(values)
	if err != nil {
		return nil, err
	}
	obj, _ := v.(ir.Object)
	return obj, nil
}

func checkFailure(index int, step Step, code string, err error, result *Result) {
	e := step.Expect
	switch {
	case e == nil || e.HasValue:
		result.AddError(fmt.Sprintf("steps[%d] %s %s: unexpected error: %v", index, step.Op, step.Target, err))
	case e.Error != code:
		result.AddError(fmt.Sprintf("steps[%d] %s %s: expected error %s, got %s", index, step.Op, step.Target, e.Error, code))
	}
}

func checkValue(index int, step Step, got ir.Value, result *Result) {
	e := step.Expect
	if e == nil {
		return
	}
	if e.Error != "" {
		result.AddError(fmt.Sprintf("steps[%d] %s %s: expected error %s, got value %s",
			index, step.Op, step.Target, e.Error, ir.MustMarshal(got)))
		return
	}
	want, err := ir.FromGo(e.Value)
	if err != nil {
		result.AddError(fmt.Sprintf("steps[%d] %s %s: invalid expected value: %v", index, step.Op, step.Target, err))
		return
	}
	if !ir.Equal(want, got) {
		result.AddError(fmt.Sprintf("steps[%d] %s %s: expected %s, got %s",
			index, step.Op, step.Target, ir.MustMarshal(want), ir.MustMarshal(got)))
	}
}
