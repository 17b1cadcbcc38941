// Package fixture loads named record instances from CUE files.
//
// A fixture directory holds one CUE package whose top-level "fixture" struct
// maps fixture names to a record type and its initial field values:
//
//	package fixtures
//
//	fixture: kid: {
//	    type: "Child"
//	    fields: {
//	        id:        1
//	        name:      "parent"
//	        childName: "kid"
//	        age:       4
//	    }
//	}
//
// Field values are assigned through the introspection engine, so CUE ints,
// floats and strings are coerced to the declared Go field types.
package fixture

import (
	"fmt"
	"os"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/introspect/internal/introspect"
)

// Fixture is one named record definition.
type Fixture struct {
	Name   string
	Type   string
	Fields map[string]any
	Pos    token.Pos
}

// Factory returns a new pointer to a zero instance of the named type.
type Factory func(typeName string) (any, bool)

// LoadError is a fixture error with its CUE source position when known.
type LoadError struct {
	Fixture string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Fixture != "" {
		msg = fmt.Sprintf("fixture %q: %s", e.Fixture, e.Message)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), msg)
	}
	return msg
}

// Load reads every fixture defined by the CUE package in dir, sorted by name.
func Load(dir string) ([]Fixture, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("fixtures directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fromCUEError("", inst.Err)
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, fromCUEError("", err)
	}
	return extract(value)
}

// Parse reads fixtures from a single CUE source. filename is used in
// error positions only.
func Parse(filename string, src []byte) ([]Fixture, error) {
	value := cuecontext.New().CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fromCUEError("", err)
	}
	return extract(value)
}

// Find returns the fixture with the given name.
func Find(fixtures []Fixture, name string) (Fixture, bool) {
	i := slices.IndexFunc(fixtures, func(f Fixture) bool { return f.Name == name })
	if i < 0 {
		return Fixture{}, false
	}
	return fixtures[i], true
}

// Build instantiates the fixture's type through newFn and assigns its fields.
func (f Fixture) Build(in *introspect.Inspector, newFn Factory) (any, error) {
	instance, ok := newFn(f.Type)
	if !ok {
		return nil, &LoadError{Fixture: f.Name, Message: fmt.Sprintf("unknown type %q", f.Type), Pos: f.Pos}
	}
	if err := in.AssignValues(instance, f.Fields); err != nil {
		return nil, fmt.Errorf("fixture %q: %w", f.Name, err)
	}
	return instance, nil
}

func extract(value cue.Value) ([]Fixture, error) {
	root := value.LookupPath(cue.ParsePath("fixture"))
	if !root.Exists() {
		return []Fixture{}, nil
	}

	iter, err := root.Fields()
	if err != nil {
		return nil, fromCUEError("", err)
	}

	var fixtures []Fixture
	for iter.Next() {
		f, err := extractOne(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}

	slices.SortFunc(fixtures, func(a, b Fixture) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	if fixtures == nil {
		fixtures = []Fixture{}
	}
	return fixtures, nil
}

func extractOne(name string, v cue.Value) (Fixture, error) {
	f := Fixture{Name: name, Pos: v.Pos(), Fields: map[string]any{}}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return f, &LoadError{Fixture: name, Message: "missing type", Pos: v.Pos()}
	}
	if typeVal.Kind() != cue.StringKind {
		return f, &LoadError{Fixture: name, Message: "type must be a string", Pos: typeVal.Pos()}
	}
	typeName, err := typeVal.String()
	if err != nil {
		return f, fromCUEError(name, err)
	}
	f.Type = typeName

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return f, nil
	}
	iter, err := fieldsVal.Fields()
	if err != nil {
		return f, fromCUEError(name, err)
	}
	for iter.Next() {
		val, err := decode(name, iter.Value())
		if err != nil {
			return f, err
		}
		f.Fields[iter.Selector().Unquoted()] = val
	}
	return f, nil
}

// decode converts a concrete CUE value into the loose shape AssignValues
// accepts: nil, bool, int64, float64, string, []any or map[string]any.
func decode(fixture string, v cue.Value) (any, error) {
	if !v.IsConcrete() {
		return nil, &LoadError{Fixture: fixture, Message: "field values must be concrete", Pos: v.Pos()}
	}

	switch v.Kind() {
	case cue.NullKind:
		return nil, nil
	case cue.BoolKind:
		b, err := v.Bool()
		return b, wrap(fixture, err)
	case cue.IntKind:
		n, err := v.Int64()
		return n, wrap(fixture, err)
	case cue.FloatKind:
		n, err := v.Float64()
		return n, wrap(fixture, err)
	case cue.StringKind:
		s, err := v.String()
		return s, wrap(fixture, err)
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, fromCUEError(fixture, err)
		}
		out := []any{}
		for iter.Next() {
			elem, err := decode(fixture, iter.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, fromCUEError(fixture, err)
		}
		out := map[string]any{}
		for iter.Next() {
			elem, err := decode(fixture, iter.Value())
			if err != nil {
				return nil, err
			}
			out[iter.Selector().Unquoted()] = elem
		}
		return out, nil
	default:
		return nil, &LoadError{Fixture: fixture, Message: fmt.Sprintf("unsupported value kind: %v", v.Kind()), Pos: v.Pos()}
	}
}

func wrap(fixture string, err error) error {
	if err == nil {
		return nil
	}
	return fromCUEError(fixture, err)
}

// fromCUEError keeps the first position CUE reports.
func fromCUEError(fixture string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Fixture: fixture, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Fixture: fixture, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
