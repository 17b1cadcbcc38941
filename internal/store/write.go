package store

import (
	"context"
	"fmt"

	"github.com/roach88/introspect/internal/ir"
)

// Write inserts snapshots in one transaction.
// Uses ON CONFLICT(id) DO NOTHING: an identical snapshot written twice is
// stored once. Fields are serialized as RFC 8785 canonical JSON.
func (s *Store) Write(ctx context.Context, snaps ...Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write snapshots: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshots (id, batch, type_name, seq, fields)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write snapshots: %w", err)
	}
	defer stmt.Close()

	for _, snap := range snaps {
		fields, err := marshalFields(snap.Fields)
		if err != nil {
			return fmt.Errorf("write snapshot %s: %w", snap.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, snap.ID, snap.Batch, snap.TypeName, snap.Seq, fields); err != nil {
			return fmt.Errorf("write snapshot %s: %w", snap.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write snapshots: %w", err)
	}

	s.logger.Debug("wrote snapshots", "count", len(snaps), "batch", snaps[0].Batch)
	return nil
}

// marshalFields serializes fields to canonical JSON. A nil object is stored
// as {} rather than null.
func marshalFields(fields ir.Object) (string, error) {
	if fields == nil {
		fields = ir.Object{}
	}
	b, err := ir.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}
	return string(b), nil
}

func unmarshalFields(data string) (ir.Object, error) {
	if data == "" {
		return ir.Object{}, nil
	}
	v, err := ir.Parse([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	obj, ok := v.(ir.Object)
	if !ok {
		return nil, fmt.Errorf("unmarshal fields: expected object, got %T", v)
	}
	return obj, nil
}
