package introspect

import (
	"fmt"
	"reflect"
	"slices"
	"time"
)

var timeType = reflect.TypeFor[time.Time]()

// AssignValues stores every entry of values into the field of the same name,
// in sorted key order, and stops at the first error.
//
// Input is expected in the loose shape produced by JSON, YAML or CUE
// decoding. Scalars are coerced as by Assign. []any fills slices and arrays
// element by element, map[string]any fills string-keyed maps, RFC 3339
// strings fill time.Time and nil stores the field's zero value.
func (in *Inspector) AssignValues(instance any, values map[string]any) error {
	tg, ok := in.target(instance)
	if !ok {
		return nil
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		f, ok := tg.desc.field(name)
		if !ok {
			return newMemberNotFound(tg.desc.Name, "field", name)
		}
		v, err := convert(f.Type, values[name])
		if err != nil {
			if ie, ok := err.(*Error); ok {
				ie.Type, ie.Member = tg.desc.Name, name
			}
			return err
		}
		if err := tg.set(f, v.Interface()); err != nil {
			return err
		}
	}
	return nil
}

// convert builds a value of type t from loosely typed input.
func convert(t reflect.Type, raw any) (reflect.Value, error) {
	if raw == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	if t == timeType {
		s, ok := raw.(string)
		if !ok {
			return reflect.Value{}, newTypeMismatch("", "", fmt.Sprintf("cannot assign %T to %s", raw, t))
		}
		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return reflect.Value{}, newFormatError(t.String(), raw, err)
		}
		return reflect.ValueOf(ts), nil
	}

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			break
		}
		var out reflect.Value
		if t.Kind() == reflect.Slice {
			out = reflect.MakeSlice(t, rv.Len(), rv.Len())
		} else {
			if rv.Len() != t.Len() {
				return reflect.Value{}, newTypeMismatch("", "", fmt.Sprintf("need %d elements for %s, got %d", t.Len(), t, rv.Len()))
			}
			out = reflect.New(t).Elem()
		}
		for i := 0; i < rv.Len(); i++ {
			ev, err := convert(t.Elem(), rv.Index(i).Interface())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil

	case reflect.Map:
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || t.Key().Kind() != reflect.String {
			break
		}
		out := reflect.MakeMapWithSize(t, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			ev, err := convert(t.Elem(), iter.Value().Interface())
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(iter.Key().Convert(t.Key()), ev)
		}
		return out, nil

	case reflect.String:
		if rv.Kind() == reflect.String {
			return rv.Convert(t), nil
		}
	}

	c, err := Coerce(t, raw)
	if err != nil {
		return reflect.Value{}, err
	}
	v, ok := assignable(c, t)
	if !ok {
		return reflect.Value{}, newTypeMismatch("", "", fmt.Sprintf("cannot assign %T to %s", raw, t))
	}
	return v, nil
}
