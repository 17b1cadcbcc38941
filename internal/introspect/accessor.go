package introspect

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AccessorKind selects the accessor prefix.
type AccessorKind int

const (
	// Reader accessors are prefixed with "get".
	Reader AccessorKind = iota
	// Writer accessors are prefixed with "set".
	Writer
)

func (k AccessorKind) String() string {
	switch k {
	case Reader:
		return "reader"
	case Writer:
		return "writer"
	default:
		return "unknown"
	}
}

func (k AccessorKind) prefix() string {
	if k == Writer {
		return "set"
	}
	return "get"
}

// AccessorName returns the conventional accessor name for field: the prefix,
// the first character upper-cased, and the rest unchanged. No special case
// applies to boolean-style names, so "isExist" gives "getIsExist". A first
// byte that is not valid UTF-8 is kept as is. A blank field name reports false.
func AccessorName(field string, kind AccessorKind) (string, bool) {
	if isBlank(field) {
		return "", false
	}
	r, size := utf8.DecodeRuneInString(field)
	if r == utf8.RuneError && size == 1 {
		// Not valid UTF-8: nothing to upper-case, keep the bytes.
		return kind.prefix() + field, true
	}
	// Caser is stateful; one per call.
	first := cases.Upper(language.Und).String(string(r))
	return kind.prefix() + first + field[size:], true
}

// GetterName is AccessorName(field, Reader).
func GetterName(field string) (string, bool) {
	return AccessorName(field, Reader)
}

// SetterName is AccessorName(field, Writer).
func SetterName(field string) (string, bool) {
	return AccessorName(field, Writer)
}
