// Package introspect resolves fields and operations of Go records by name.
//
// A record is any struct. Its parent is the first struct it embeds (directly
// or through a pointer), which gives every record an ancestor chain:
//
//	type Base struct {
//	    id   int64
//	    name string
//	}
//
//	type Child struct {
//	    Base             // parent
//	    childName string
//	}
//
// Lookups walk the chain most-derived first, so a field or operation declared
// on Child shadows one with the same name on Base. Unexported fields are read
// and written like exported ones.
//
// Go reflection cannot call unexported methods, so operations come from two
// places: exported methods, discovered through reflection, and closures
// attached with Inspector.Register. Registration also attaches package-level
// variables as static fields, since Go types carry no storage of their own.
//
// Blank input is not an error: a nil instance or an empty or whitespace-only
// name yields a nil result from Get and Invoke, a no-op from Set, and "not
// found" from FindField. A name missing from the whole chain is a
// MEMBER_NOT_FOUND error.
//
// Coerce converts loosely typed input (strings, numbers, booleans) to a
// field's declared type. Set never coerces; Assign does both.
//
// Descriptors are derived on first use and cached per Inspector.
package introspect
