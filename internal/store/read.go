package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const snapshotColumns = `id, batch, type_name, seq, fields`

// Read returns the snapshot with the given ID, or ErrNotFound.
func (s *Store) Read(ctx context.Context, id string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE id = ?
	`, id)

	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("read snapshot %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot %s: %w", id, err)
	}
	return snap, nil
}

// List returns snapshots of typeName, or of every type when typeName is
// empty, ordered by seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) List(ctx context.Context, typeName string) ([]Snapshot, error) {
	if typeName == "" {
		return s.query(ctx, `
			SELECT `+snapshotColumns+`
			FROM snapshots
			ORDER BY seq ASC, id COLLATE BINARY ASC
		`)
	}
	return s.query(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE type_name = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, typeName)
}

// ListBatch returns the snapshots captured together under one batch token.
func (s *Store) ListBatch(ctx context.Context, batch string) ([]Snapshot, error) {
	return s.query(ctx, `
		SELECT `+snapshotColumns+`
		FROM snapshots
		WHERE batch = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, batch)
}

// LastSeq returns the highest stored seq, or 0 for an empty store.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM snapshots`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snaps, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(sc scanner) (Snapshot, error) {
	var snap Snapshot
	var fields string
	if err := sc.Scan(&snap.ID, &snap.Batch, &snap.TypeName, &snap.Seq, &fields); err != nil {
		return Snapshot{}, err
	}

	obj, err := unmarshalFields(fields)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	snap.Fields = obj
	return snap, nil
}
