package store

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/roach88/introspect/internal/introspect"
	"github.com/roach88/introspect/internal/ir"
)

// ErrNotFound is returned when no snapshot has the requested ID.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is the recorded field state of one instance.
type Snapshot struct {
	ID       string    `json:"id"`
	Batch    string    `json:"batch"`
	TypeName string    `json:"type"`
	Seq      int64     `json:"seq"`
	Fields   ir.Object `json:"fields"`
}

// Capture records the instance fields of each instance as snapshots sharing
// one batch token. Static fields are not captured. The snapshots are not
// written; pass them to Write.
func (s *Store) Capture(in *introspect.Inspector, instances ...any) ([]Snapshot, error) {
	batch := s.tokens.Generate()
	snaps := make([]Snapshot, 0, len(instances))

	for i, instance := range instances {
		if instance == nil {
			return nil, fmt.Errorf("capture [%d]: nil instance", i)
		}
		desc := in.Describe(reflect.TypeOf(instance))
		if desc == nil || desc.Go.Kind() != reflect.Struct {
			return nil, fmt.Errorf("capture [%d]: %T is not a struct", i, instance)
		}

		values, err := in.FieldValues(instance)
		if err != nil {
			return nil, fmt.Errorf("capture %s: %w", desc.Name, err)
		}

		fields := make(ir.Object, len(values))
		seen := make(map[string]bool, len(values))
		for _, f := range in.AllFields(desc.Go) {
			if seen[f.Name] || f.Static {
				seen[f.Name] = true
				continue
			}
			seen[f.Name] = true
			v, err := ir.FromGo(values[f.Name])
			if err != nil {
				return nil, fmt.Errorf("capture %s.%s: %w", desc.Name, f.Name, err)
			}
			fields[f.Name] = v
		}

		seq := s.clock.Next()
		id, err := ir.SnapshotID(batch, desc.Name, fields, seq)
		if err != nil {
			return nil, fmt.Errorf("capture %s: %w", desc.Name, err)
		}

		snaps = append(snaps, Snapshot{
			ID:       id,
			Batch:    batch,
			TypeName: desc.Name,
			Seq:      seq,
			Fields:   fields,
		})
	}

	return snaps, nil
}

// Restore writes the snapshot's field values back into instance, which must
// be a pointer to the snapshot's type. Stored values pass through
// Inspector.AssignValues, so JSON numbers are coerced to the declared field
// types and RFC 3339 strings become time.Time again.
func (s *Store) Restore(in *introspect.Inspector, snap Snapshot, instance any) error {
	if instance == nil {
		return fmt.Errorf("restore %s: nil instance", snap.ID)
	}
	desc := in.Describe(reflect.TypeOf(instance))
	if desc == nil || desc.Name != snap.TypeName {
		return fmt.Errorf("restore %s: snapshot of %s cannot be restored into %T", snap.ID, snap.TypeName, instance)
	}

	values, _ := ir.ToGo(snap.Fields).(map[string]any)
	if err := in.AssignValues(instance, values); err != nil {
		return fmt.Errorf("restore %s: %w", snap.ID, err)
	}

	s.logger.Debug("restored snapshot", "id", snap.ID, "type", snap.TypeName, "fields", len(snap.Fields))
	return nil
}
