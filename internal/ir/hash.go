package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainSnapshot separates snapshot hashes from any other content hash.
// The version suffix leaves room for a future algorithm change.
const DomainSnapshot = "introspect/snapshot/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotID computes the content-addressed ID of a field snapshot.
// The same batch, type, fields and sequence always hash to the same ID.
func SnapshotID(batch, typeName string, fields Object, seq int64) (string, error) {
	obj := Object{
		"batch":  String(batch),
		"type":   String(typeName),
		"fields": fields,
		"seq":    Int(seq),
	}

	canonical, err := Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("SnapshotID: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainSnapshot, canonical), nil
}

// MustSnapshotID is like SnapshotID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSnapshotID(batch, typeName string, fields Object, seq int64) string {
	id, err := SnapshotID(batch, typeName, fields, seq)
	if err != nil {
		panic(err)
	}
	return id
}
