package records

import (
	"reflect"
	"slices"

	"github.com/roach88/introspect/internal/introspect"
)

// Register attaches the unexported operations and static fields of the
// sample types to in.
func Register(in *introspect.Inspector) {
	in.Register(reflect.TypeFor[Base]()).
		Operation("describe", (*Base).describe)
	in.Register(reflect.TypeFor[Child]()).
		Operation("greet", (*Child).greet).
		Operation("validate", (*Child).validate)
	in.Register(reflect.TypeFor[WithStatic]()).
		Static("PREFIX", &prefix)
}

// Catalog maps type names to constructors of zero-valued instances.
var Catalog = map[string]func() any{
	"Base":       func() any { return &Base{} },
	"Child":      func() any { return &Child{} },
	"Alias":      func() any { return &Alias{} },
	"WithStatic": func() any { return &WithStatic{} },
	"Measures":   func() any { return &Measures{} },
	"Listing":    func() any { return &Listing{} },
	"Empty":      func() any { return &Empty{} },
}

// New returns a new zero-valued instance of the named type.
func New(typeName string) (any, bool) {
	ctor, ok := Catalog[typeName]
	if !ok {
		return nil, false
	}
	return ctor(), true
}

// TypeOf returns the reflect.Type of the named type.
func TypeOf(typeName string) (reflect.Type, bool) {
	v, ok := New(typeName)
	if !ok {
		return nil, false
	}
	return reflect.TypeOf(v).Elem(), true
}

// Names returns the catalog's type names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Catalog))
	for name := range Catalog {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
