// Package ir provides the canonical value model used to persist, hash and
// compare field snapshots.
//
// Values are a closed set of JSON-shaped types. Every other internal package
// may import ir; ir imports nothing internal.
//
// Key constraints:
//   - Object keys are ordered by UTF-16 code units (RFC 8785)
//   - Strings are NFC normalized at the serialization boundary
//   - Floats must be finite; NaN and infinities are rejected
//   - Times are carried as RFC 3339 strings
package ir
