// Package harness runs YAML scenarios against the introspector and records
// a deterministic trace of every step.
//
// # Scenario Format
//
//	name: child_rename
//	description: "Renaming a child through the inherited name field"
//	subject:
//	  type: Child
//	  fields: { id: 1, name: parent, childName: kid, age: 4 }
//	steps:
//	  - op: get
//	    target: name
//	    expect: { value: parent }
//	  - op: set
//	    target: name
//	    value: renamed
//	  - op: invoke
//	    target: Name
//	    expect: { value: renamed }
//	  - op: get
//	    target: missing
//	    expect: { error: MEMBER_NOT_FOUND }
//	assertions:
//	  - type: final_fields
//	    fields: { name: renamed }
//
// The subject is either an inline type and field map or the name of a CUE
// fixture (see package fixture) supplied with WithFixtures.
//
// # Step Operations
//
//   - fields, ops: list field or operation names along the type chain
//   - find: describe a field (name, owner, static, type)
//   - get, set: read or write a field; set decodes the value like a fixture
//   - invoke: call an operation with args
//   - accessor: derive the reader or writer name for a field
//   - coerce: coerce a value to a field's declared type without storing it
//   - values: read every field value
//   - snapshot, restore: capture the subject into the in-memory store and
//     restore the last capture
//
// A step's expect clause holds either a value, compared canonically, or an
// error code such as MEMBER_NOT_FOUND or FORMAT_ERROR.
//
// # Assertion Types
//
//   - trace_contains: an event with the given op (and target) exists
//   - trace_order: ops first appear in the given order
//   - trace_count: exactly N events match op (and target)
//   - final_fields: the subject's final field values include the given ones
//
// # Determinism
//
// Every run uses a fresh in-memory store, a deterministic clock for step
// and snapshot sequence numbers, and fixed batch tokens, so the trace can
// be compared byte for byte with a golden file (see RunWithGolden).
package harness
