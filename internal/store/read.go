package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = `id, asset, seq, cook_hash, flags, pre_snapshot, post_snapshot, status,
		objects, parts, instancers, materials, failures, needs_resync, error`

// GetSnapshot retrieves a snapshot by id.
// Returns ErrNotFound if it does not exist.
func (s *Store) GetSnapshot(ctx context.Context, id string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, asset, body, node_count, seq
		FROM snapshots
		WHERE id = ?
	`, id)
	snap, err := scanSnapshot(row)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return snap, nil
}

// Head returns the current snapshot of asset.
// Returns ErrNotFound if the asset was never synced.
func (s *Store) Head(ctx context.Context, asset string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.asset, s.body, s.node_count, s.seq
		FROM heads h
		JOIN snapshots s ON s.id = h.snapshot_id
		WHERE h.asset = ?
	`, asset)
	snap, err := scanSnapshot(row)
	if err != nil {
		return Snapshot{}, fmt.Errorf("head of %s: %w", asset, err)
	}
	return snap, nil
}

// Assets returns every asset with a head, sorted by name.
// Returns an empty slice (not nil) if none exist.
func (s *Store) Assets(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT asset FROM heads ORDER BY asset COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	assets := []string{}
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return assets, nil
}

// GetRun retrieves a sync run by id.
// Returns ErrNotFound if it does not exist.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM sync_runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the journal of asset, or of every asset when asset is
// empty. Results are ordered deterministically: ORDER BY seq ASC, id ASC
// COLLATE BINARY.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, asset string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM sync_runs
		WHERE ? = '' OR asset = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, asset, asset)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (Snapshot, error) {
	var snap Snapshot
	err := row.Scan(&snap.ID, &snap.Asset, &snap.Body, &snap.NodeCount, &snap.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}
	return snap, nil
}

// scanRun returns sql.ErrNoRows unwrapped so callers can map it.
func scanRun(row scanner) (Run, error) {
	var (
		run         Run
		flags       string
		status      string
		needsResync int
	)
	err := row.Scan(
		&run.ID,
		&run.Asset,
		&run.Seq,
		&run.CookHash,
		&flags,
		&run.PreSnapshot,
		&run.PostSnapshot,
		&status,
		&run.Objects,
		&run.Parts,
		&run.Instancers,
		&run.Materials,
		&run.Failures,
		&needsResync,
		&run.Error,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Flags, err = unmarshalFlags(flags)
	if err != nil {
		return Run{}, err
	}
	run.Status = RunStatus(status)
	run.NeedsResync = needsResync != 0
	return run, nil
}
