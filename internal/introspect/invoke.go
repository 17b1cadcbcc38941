package introspect

import (
	"fmt"
	"reflect"
	"slices"
)

var errorType = reflect.TypeFor[error]()

// AllOperations returns every operation on t's chain, most-derived level
// first. Within a level, registered operations precede methods.
// Returns nil for a nil type.
func (in *Inspector) AllOperations(t reflect.Type) []Operation {
	desc := in.Describe(t)
	if desc == nil {
		return nil
	}
	return slices.Clone(desc.ops)
}

// FindOperation returns the first operation called name on t's chain.
func (in *Inspector) FindOperation(t reflect.Type, name string) (Operation, bool) {
	if isBlank(name) {
		return Operation{}, false
	}
	desc := in.Describe(t)
	if desc == nil {
		return Operation{}, false
	}
	return desc.operation(name)
}

// Invoke calls the named operation on instance with args and returns its
// result: nil for no results, the value for one, []any for several. A
// trailing error result is not part of the returned value; when non-nil it
// fails the call with INVOCATION_FAILED, as does a panic.
//
// Registered operations are resolved level by level, derived first, ahead
// of exported methods. Exported methods dispatch through Go's own method
// promotion, so a method redeclared on a derived type wins.
//
// An instance passed by value only reaches value-receiver methods, which
// run on a copy. Pointer-receiver methods and registered operations on it
// fail with ACCESS_DENIED, as Set does.
//
// A nil instance or blank name returns (nil, nil).
func (in *Inspector) Invoke(instance any, name string, args ...any) (any, error) {
	if isBlank(name) {
		return nil, nil
	}
	tg, ok := in.target(instance)
	if !ok {
		return nil, nil
	}
	op, ok := tg.desc.operation(name)
	if !ok {
		return nil, newMemberNotFound(tg.desc.Name, "method", name)
	}

	var (
		fn   reflect.Value
		recv []reflect.Value
	)
	switch {
	case tg.byValue && op.Registered:
		return nil, newAccessDenied(tg.desc.Name, name, "instance passed by value, pass a pointer")
	case tg.byValue:
		fn = tg.v.MethodByName(name)
		if !fn.IsValid() {
			return nil, newAccessDenied(tg.desc.Name, name, "pointer-receiver method on an instance passed by value, pass a pointer")
		}
	case op.Registered:
		fn = op.fn
		level, ok := walk(tg.v, op.path, false)
		if ok && level.Kind() == reflect.Pointer {
			ok = !level.IsNil()
			if ok {
				level = level.Elem()
			}
		}
		if ok {
			recv = []reflect.Value{expose(level).Addr()}
		} else {
			recv = []reflect.Value{reflect.Zero(fn.Type().In(0))}
		}
	default:
		fn = tg.v.Addr().MethodByName(name)
		if !fn.IsValid() {
			return nil, newMemberNotFound(tg.desc.Name, "method", name)
		}
	}

	in.logger.Debug("invoking operation", "type", tg.desc.Name, "operation", name, "owner", op.Owner)
	return call(tg.desc.Name, name, fn, recv, args)
}

func call(typeName, name string, fn reflect.Value, recv []reflect.Value, args []any) (result any, err error) {
	ft := fn.Type()
	want := ft.NumIn() - len(recv)
	if ft.IsVariadic() {
		if len(args) < want-1 {
			return nil, newTypeMismatch(typeName, name, fmt.Sprintf("want at least %d arguments, got %d", want-1, len(args)))
		}
	} else if len(args) != want {
		return nil, newTypeMismatch(typeName, name, fmt.Sprintf("want %d arguments, got %d", want, len(args)))
	}

	in := append(make([]reflect.Value, 0, len(recv)+len(args)), recv...)
	for i, a := range args {
		idx := i + len(recv)
		var pt reflect.Type
		if ft.IsVariadic() && idx >= ft.NumIn()-1 {
			pt = ft.In(ft.NumIn() - 1).Elem()
		} else {
			pt = ft.In(idx)
		}
		v, ok := adaptArg(a, pt)
		if !ok {
			return nil, newTypeMismatch(typeName, name, fmt.Sprintf("argument %d: cannot use %T as %s", i, a, pt))
		}
		in = append(in, v)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = newInvocationFailed(typeName, name, fmt.Errorf("panic: %v", r))
		}
	}()

	out := fn.Call(in)

	if n := ft.NumOut(); n > 0 && ft.Out(n-1) == errorType {
		if e := out[n-1]; !e.IsNil() {
			return nil, newInvocationFailed(typeName, name, e.Interface().(error))
		}
		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		values := make([]any, len(out))
		for i, o := range out {
			values[i] = o.Interface()
		}
		return values, nil
	}
}

// adaptArg prepares a for a parameter of type t. Numeric arguments are
// converted between numeric kinds, everything else must be assignable.
func adaptArg(a any, t reflect.Type) (reflect.Value, bool) {
	if v, ok := assignable(a, t); ok {
		return v, true
	}
	if a == nil {
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(a)
	if isNumeric(v.Kind()) && isNumeric(t.Kind()) {
		return v.Convert(t), true
	}
	return reflect.Value{}, false
}
