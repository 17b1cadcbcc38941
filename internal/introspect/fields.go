package introspect

import (
	"fmt"
	"reflect"
	"slices"
	"unsafe"
)

// AllFields returns every field declared on t and its ancestors: t's own
// fields first, then the parent's flattened list, recursively. Registered
// statics are included; blank fields, `introspect:"-"` fields and the
// embedded parent slot are not.
//
// Returns nil for a nil type and an empty, non-nil slice for a type with
// no fields.
func (in *Inspector) AllFields(t reflect.Type) []Field {
	desc := in.Describe(t)
	if desc == nil {
		return nil
	}
	return slices.Clone(desc.all)
}

// FindField returns the first field called name on target's chain, so a
// derived declaration shadows an ancestor's. target is either a reflect.Type
// or an instance. A nil target or blank name is reported as not found.
func (in *Inspector) FindField(target any, name string) (Field, bool) {
	if isBlank(name) {
		return Field{}, false
	}
	desc := in.describeTarget(target)
	if desc == nil {
		return Field{}, false
	}
	return desc.field(name)
}

// FieldWithCheck is FindField on a type that fails with MEMBER_NOT_FOUND.
func (in *Inspector) FieldWithCheck(t reflect.Type, name string) (Field, error) {
	f, ok := in.FindField(t, name)
	if !ok {
		return Field{}, newMemberNotFound(nameOf(t), "field", name)
	}
	return f, nil
}

// FieldType returns the declared type of the named field.
func (in *Inspector) FieldType(t reflect.Type, name string) (reflect.Type, error) {
	f, err := in.FieldWithCheck(t, name)
	if err != nil {
		return nil, err
	}
	return f.Type, nil
}

// Get returns the current value of the named field on instance, whether or
// not the field is exported. A nil instance or blank name returns (nil, nil).
// A field behind a nil embedded pointer reads as its zero value.
func (in *Inspector) Get(instance any, name string) (any, error) {
	if isBlank(name) {
		return nil, nil
	}
	tg, ok := in.target(instance)
	if !ok {
		return nil, nil
	}
	f, ok := tg.desc.field(name)
	if !ok {
		return nil, newMemberNotFound(tg.desc.Name, "field", name)
	}
	v, ok := tg.fieldValue(f, false)
	if !ok {
		return reflect.Zero(f.Type).Interface(), nil
	}
	return v.Interface(), nil
}

// Set assigns value to the named field on instance as is; no coercion is
// applied (see Assign). instance must be a pointer unless the field is
// static. A nil instance or blank name is a no-op. Nil embedded pointers on
// the way to the field are allocated.
func (in *Inspector) Set(instance any, name string, value any) error {
	if isBlank(name) {
		return nil
	}
	tg, ok := in.target(instance)
	if !ok {
		return nil
	}
	f, ok := tg.desc.field(name)
	if !ok {
		return newMemberNotFound(tg.desc.Name, "field", name)
	}
	return tg.set(f, value)
}

// Assign coerces raw to the named field's declared type and stores it.
func (in *Inspector) Assign(instance any, name string, raw any) error {
	if isBlank(name) {
		return nil
	}
	tg, ok := in.target(instance)
	if !ok {
		return nil
	}
	f, ok := tg.desc.field(name)
	if !ok {
		return newMemberNotFound(tg.desc.Name, "field", name)
	}
	v, err := Coerce(f.Type, raw)
	if err != nil {
		if ie, ok := err.(*Error); ok {
			ie.Member = name
		}
		return err
	}
	return tg.set(f, v)
}

// FieldValues returns every field name mapped to its current value. When
// names repeat along the chain the most-derived value wins. A nil instance
// returns (nil, nil).
func (in *Inspector) FieldValues(instance any) (map[string]any, error) {
	tg, ok := in.target(instance)
	if !ok {
		return nil, nil
	}
	values := make(map[string]any, len(tg.desc.all))
	for _, f := range tg.desc.all {
		if _, seen := values[f.Name]; seen {
			continue
		}
		v, ok := tg.fieldValue(f, false)
		if !ok {
			values[f.Name] = reflect.Zero(f.Type).Interface()
			continue
		}
		values[f.Name] = v.Interface()
	}
	return values, nil
}

// StaticValue returns the value of a registered static field of t.
func (in *Inspector) StaticValue(t reflect.Type, name string) (any, error) {
	f, err := in.staticField(t, name)
	if err != nil {
		return nil, err
	}
	return f.static.Interface(), nil
}

// SetStatic assigns value to a registered static field of t.
func (in *Inspector) SetStatic(t reflect.Type, name string, value any) error {
	f, err := in.staticField(t, name)
	if err != nil {
		return err
	}
	v, ok := assignable(value, f.Type)
	if !ok {
		return newTypeMismatch(nameOf(t), name, fmt.Sprintf("cannot assign %T to %s", value, f.Type))
	}
	f.static.Set(v)
	return nil
}

func (in *Inspector) staticField(t reflect.Type, name string) (Field, error) {
	f, err := in.FieldWithCheck(t, name)
	if err != nil {
		return Field{}, err
	}
	if !f.Static {
		return Field{}, newTypeMismatch(nameOf(t), name, fmt.Sprintf("field %q is not static", name))
	}
	return f, nil
}

// target is an instance prepared for member access.
type target struct {
	v       reflect.Value // addressable, non-pointer
	desc    *Type
	byValue bool // v is a private copy of a value passed by value
}

func (in *Inspector) target(instance any) (target, bool) {
	if instance == nil {
		return target{}, false
	}
	rv := reflect.ValueOf(instance)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return target{}, false
		}
		rv = rv.Elem()
	}
	tg := target{v: rv, desc: in.Describe(rv.Type())}
	if !rv.CanAddr() {
		cp := reflect.New(rv.Type()).Elem()
		cp.Set(rv)
		tg.v = cp
		tg.byValue = true
	}
	return tg, true
}

func (in *Inspector) describeTarget(target any) *Type {
	switch x := target.(type) {
	case nil:
		return nil
	case reflect.Type:
		return in.Describe(x)
	default:
		rv := reflect.ValueOf(target)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil
		}
		return in.Describe(rv.Type())
	}
}

// fieldValue returns the accessible value of f. With alloc unset, a nil
// embedded pointer on the path reports false.
func (tg target) fieldValue(f Field, alloc bool) (reflect.Value, bool) {
	if f.Static {
		return f.static, true
	}
	v, ok := walk(tg.v, f.path, alloc)
	if !ok {
		return reflect.Value{}, false
	}
	return expose(v), true
}

func (tg target) set(f Field, value any) error {
	if tg.byValue && !f.Static {
		return newAccessDenied(tg.desc.Name, f.Name, "instance passed by value, pass a pointer")
	}
	v, ok := assignable(value, f.Type)
	if !ok {
		return newTypeMismatch(tg.desc.Name, f.Name, fmt.Sprintf("cannot assign %T to %s", value, f.Type))
	}
	dst, _ := tg.fieldValue(f, true)
	if !dst.CanSet() {
		return newAccessDenied(tg.desc.Name, f.Name, "field is not settable")
	}
	dst.Set(v)
	return nil
}

// walk follows path from v, dereferencing embedded pointers between steps.
func walk(v reflect.Value, path []int, alloc bool) (reflect.Value, bool) {
	for _, i := range path {
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !alloc {
					return reflect.Value{}, false
				}
				v = expose(v)
				if !v.CanSet() {
					return reflect.Value{}, false
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	return v, true
}

// expose returns a settable alias of v when v is addressable but was
// reached through an unexported field.
func expose(v reflect.Value) reflect.Value {
	if v.CanSet() || !v.CanAddr() {
		return v
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}

// assignable returns value as a reflect.Value of type t without conversion.
// nil is accepted for nilable kinds only.
func assignable(value any, t reflect.Type) (reflect.Value, bool) {
	if value == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(value)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, false
	}
	return v, true
}

func nameOf(t reflect.Type) string {
	t = indirect(t)
	if t == nil {
		return ""
	}
	return typeName(t)
}
