package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/cooksync/internal/cook"
)

// SnapshotID returns the content-addressed id of a snapshot body.
func SnapshotID(body []byte) string {
	return cook.HashWithDomain(cook.DomainSnapshot, body)
}

// NextSeq advances the logical clock and returns the new value.
func (s *Store) NextSeq(ctx context.Context) (int64, error) {
	return nextSeq(ctx, s.db)
}

func nextSeq(ctx context.Context, q queryer) (int64, error) {
	var seq int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO clock (id, seq) VALUES (1, 1)
		ON CONFLICT(id) DO UPDATE SET seq = seq + 1
		RETURNING seq
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}

// PutSnapshot stores a snapshot body and returns its id.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - storing identical
// content twice keeps the first record.
func (s *Store) PutSnapshot(ctx context.Context, asset string, body []byte, nodeCount int) (string, error) {
	id := SnapshotID(body)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("put snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	seq, err := nextSeq(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("put snapshot: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, asset, body, node_count, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, asset, body, nodeCount, seq)
	if err != nil {
		return "", fmt.Errorf("put snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("put snapshot: commit: %w", err)
	}
	return id, nil
}

// SetHead makes snapshotID the current state of asset.
// Note: The snapshot must exist (foreign key constraint).
func (s *Store) SetHead(ctx context.Context, asset, snapshotID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set head: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := setHead(ctx, tx, asset, snapshotID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set head: commit: %w", err)
	}
	return nil
}

func setHead(ctx context.Context, q queryer, asset, snapshotID string) error {
	seq, err := nextSeq(ctx, q)
	if err != nil {
		return fmt.Errorf("set head: %w", err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO heads (asset, snapshot_id, seq)
		VALUES (?, ?, ?)
		ON CONFLICT(asset) DO UPDATE SET snapshot_id = excluded.snapshot_id, seq = excluded.seq
	`, asset, snapshotID, seq)
	if err != nil {
		return fmt.Errorf("set head: %w", err)
	}
	return nil
}

// CommitRun records a sync run and returns it with its seq assigned.
//
// An applied run moves the asset's head to its post snapshot and discards
// the asset's undone runs, ending any redo chain. An aborted run is only
// journaled.
//
// Note: Both snapshots must exist (foreign key constraint).
func (s *Store) CommitRun(ctx context.Context, run Run) (Run, error) {
	flags, err := marshalFlags(run.Flags)
	if err != nil {
		return Run{}, fmt.Errorf("commit run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("commit run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	run.Seq, err = nextSeq(ctx, tx)
	if err != nil {
		return Run{}, fmt.Errorf("commit run: %w", err)
	}

	if run.Status == RunApplied {
		_, err = tx.ExecContext(ctx, `
			UPDATE sync_runs SET status = ?
			WHERE asset = ? AND status = ?
		`, string(RunDiscarded), run.Asset, string(RunUndone))
		if err != nil {
			return Run{}, fmt.Errorf("commit run: discard redo chain: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sync_runs
		(id, asset, seq, cook_hash, flags, pre_snapshot, post_snapshot, status,
		 objects, parts, instancers, materials, failures, needs_resync, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Asset,
		run.Seq,
		run.CookHash,
		flags,
		run.PreSnapshot,
		run.PostSnapshot,
		string(run.Status),
		run.Objects,
		run.Parts,
		run.Instancers,
		run.Materials,
		run.Failures,
		boolToInt(run.NeedsResync),
		run.Error,
	)
	if err != nil {
		return Run{}, fmt.Errorf("commit run: insert: %w", err)
	}

	if run.Status == RunApplied {
		if err := setHead(ctx, tx, run.Asset, run.PostSnapshot); err != nil {
			return Run{}, fmt.Errorf("commit run: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit run: commit: %w", err)
	}
	return run, nil
}

// UndoLatest moves the asset's head to the pre snapshot of its latest
// applied run and marks that run undone. Returns ErrNothingToUndo when no
// applied run exists.
func (s *Store) UndoLatest(ctx context.Context, asset string) (Run, error) {
	return s.moveHead(ctx, asset, RunApplied, RunUndone, "DESC", ErrNothingToUndo)
}

// RedoNext moves the asset's head to the post snapshot of its earliest
// undone run and marks that run applied again. Returns ErrNothingToRedo
// when no undone run exists.
func (s *Store) RedoNext(ctx context.Context, asset string) (Run, error) {
	return s.moveHead(ctx, asset, RunUndone, RunApplied, "ASC", ErrNothingToRedo)
}

func (s *Store) moveHead(ctx context.Context, asset string, from, to RunStatus, order string, none error) (Run, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("move head: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	row := tx.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM sync_runs
		WHERE asset = ? AND status = ?
		ORDER BY seq `+order+`, id COLLATE BINARY `+order+`
		LIMIT 1
	`, asset, string(from))
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, none
	}
	if err != nil {
		return Run{}, fmt.Errorf("move head: %w", err)
	}

	target := run.PreSnapshot
	if to == RunApplied {
		target = run.PostSnapshot
	}
	if err := setHead(ctx, tx, asset, target); err != nil {
		return Run{}, fmt.Errorf("move head: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE sync_runs SET status = ? WHERE id = ?`, string(to), run.ID); err != nil {
		return Run{}, fmt.Errorf("move head: update run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("move head: commit: %w", err)
	}
	run.Status = to
	return run, nil
}
