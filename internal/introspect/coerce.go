package introspect

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
)

var (
	errOutOfRange = errors.New("value out of range")
	errNotFinite  = errors.New("value is not finite")
)

// Coerce converts input to the representation declared requires. It never
// mutates input.
//
//   - bool: a string is false only when, trimmed, it is "", "0" or
//     case-insensitive "false"; a number is false only when it equals 0.
//   - float32, float64: strings are parsed as decimals, numbers converted to
//     the target precision.
//   - signed and unsigned integers: strings are parsed as base-10 integers
//     of the target width, numbers are truncated toward zero. A value that
//     does not fit the target width, a negative value for an unsigned
//     target, NaN and infinities fail with FORMAT_ERROR.
//   - a pointer to one of the above: the element is coerced and a new
//     pointer returned.
//
// Inputs of any other kind fail these targets with FORMAT_ERROR. A nil input
// is returned as is, and so is any input for a target not listed above.
// Results have exactly the declared type, named types included.
func Coerce(declared reflect.Type, input any) (any, error) {
	if declared == nil || input == nil {
		return input, nil
	}

	if declared.Kind() == reflect.Pointer && isScalar(declared.Elem().Kind()) {
		v, err := Coerce(declared.Elem(), input)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return reflect.Zero(declared).Interface(), nil
		}
		p := reflect.New(declared.Elem())
		p.Elem().Set(reflect.ValueOf(v))
		return p.Interface(), nil
	}

	if !isScalar(declared.Kind()) {
		return input, nil
	}

	iv := reflect.ValueOf(input)
	for iv.Kind() == reflect.Pointer {
		if iv.IsNil() {
			return nil, nil
		}
		iv = iv.Elem()
	}

	switch k := declared.Kind(); {
	case k == reflect.Bool:
		b, err := toBool(iv, declared, input)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(b).Convert(declared).Interface(), nil

	case k == reflect.Float32 || k == reflect.Float64:
		f, err := toFloat(iv, declared, input)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(f).Convert(declared).Interface(), nil

	case isSigned(k):
		n, err := toInt(iv, declared, input)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(n).Convert(declared).Interface(), nil

	default:
		n, err := toUint(iv, declared, input)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(n).Convert(declared).Interface(), nil
	}
}

// CoerceField coerces input to the declared type of the named field of t.
func (in *Inspector) CoerceField(t reflect.Type, name string, input any) (any, error) {
	f, err := in.FieldWithCheck(t, name)
	if err != nil {
		return nil, err
	}
	v, err := Coerce(f.Type, input)
	if err != nil {
		if ie, ok := err.(*Error); ok {
			ie.Member = name
		}
		return nil, err
	}
	return v, nil
}

func toBool(iv reflect.Value, declared reflect.Type, input any) (bool, error) {
	switch k := iv.Kind(); {
	case k == reflect.String:
		s := strings.TrimSpace(iv.String())
		return s != "" && s != "0" && !strings.EqualFold(s, "false"), nil
	case k == reflect.Bool:
		return iv.Bool(), nil
	case isSigned(k):
		return iv.Int() != 0, nil
	case isUnsigned(k):
		return iv.Uint() != 0, nil
	case k == reflect.Float32 || k == reflect.Float64:
		return iv.Float() != 0, nil
	}
	return false, newFormatError(declared.String(), input, nil)
}

func toFloat(iv reflect.Value, declared reflect.Type, input any) (float64, error) {
	var f float64
	switch k := iv.Kind(); {
	case k == reflect.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(iv.String()), declared.Bits())
		if err != nil {
			return 0, newFormatError(declared.String(), input, err)
		}
		return parsed, nil
	case isSigned(k):
		f = float64(iv.Int())
	case isUnsigned(k):
		f = float64(iv.Uint())
	case k == reflect.Float32 || k == reflect.Float64:
		f = iv.Float()
	default:
		return 0, newFormatError(declared.String(), input, nil)
	}
	if !math.IsInf(f, 0) && reflect.Zero(declared).OverflowFloat(f) {
		return 0, newFormatError(declared.String(), input, errOutOfRange)
	}
	return f, nil
}

func toInt(iv reflect.Value, declared reflect.Type, input any) (int64, error) {
	var n int64
	switch k := iv.Kind(); {
	case k == reflect.String:
		parsed, err := strconv.ParseInt(iv.String(), 10, declared.Bits())
		if err != nil {
			return 0, newFormatError(declared.String(), input, err)
		}
		return parsed, nil
	case isSigned(k):
		n = iv.Int()
	case isUnsigned(k):
		u := iv.Uint()
		if u > math.MaxInt64 {
			return 0, newFormatError(declared.String(), input, errOutOfRange)
		}
		n = int64(u)
	case k == reflect.Float32 || k == reflect.Float64:
		f, err := truncate(iv.Float(), declared, input)
		if err != nil {
			return 0, err
		}
		// 2^63 is exactly representable; anything from it up does not fit.
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, newFormatError(declared.String(), input, errOutOfRange)
		}
		n = int64(f)
	default:
		return 0, newFormatError(declared.String(), input, nil)
	}
	if reflect.Zero(declared).OverflowInt(n) {
		return 0, newFormatError(declared.String(), input, errOutOfRange)
	}
	return n, nil
}

func toUint(iv reflect.Value, declared reflect.Type, input any) (uint64, error) {
	var n uint64
	switch k := iv.Kind(); {
	case k == reflect.String:
		parsed, err := strconv.ParseUint(iv.String(), 10, declared.Bits())
		if err != nil {
			return 0, newFormatError(declared.String(), input, err)
		}
		return parsed, nil
	case isSigned(k):
		i := iv.Int()
		if i < 0 {
			return 0, newFormatError(declared.String(), input, errOutOfRange)
		}
		n = uint64(i)
	case isUnsigned(k):
		n = iv.Uint()
	case k == reflect.Float32 || k == reflect.Float64:
		f, err := truncate(iv.Float(), declared, input)
		if err != nil {
			return 0, err
		}
		if f < 0 || f >= math.MaxUint64 {
			return 0, newFormatError(declared.String(), input, errOutOfRange)
		}
		n = uint64(f)
	default:
		return 0, newFormatError(declared.String(), input, nil)
	}
	if reflect.Zero(declared).OverflowUint(n) {
		return 0, newFormatError(declared.String(), input, errOutOfRange)
	}
	return n, nil
}

// truncate drops the fractional part of f, rejecting NaN and infinities.
func truncate(f float64, declared reflect.Type, input any) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, newFormatError(declared.String(), input, errNotFinite)
	}
	return math.Trunc(f), nil
}

func isSigned(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isNumeric(k reflect.Kind) bool {
	return isSigned(k) || isUnsigned(k) || k == reflect.Float32 || k == reflect.Float64
}

func isScalar(k reflect.Kind) bool {
	return k == reflect.Bool || isNumeric(k)
}
