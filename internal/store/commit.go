package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"audiopilot/internal/ledger"
)

// CommitCycle persists the status pointer, the history row (trimmed to the
// history limit), the ledger, and new review items in one transaction.
func (s *Store) CommitCycle(ctx context.Context, commit Commit) error {
	ctx = ensureContext(ctx)
	if commit.LibraryID == "" {
		return errors.New("commit: library id is empty")
	}
	if commit.Cycle.CycleID == "" {
		return errors.New("commit: cycle id is empty")
	}
	return retryOnBusy(ctx, func() error {
		return s.commitOnce(ctx, commit)
	})
}

func (s *Store) commitOnce(ctx context.Context, commit Commit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := formatTime(time.Now())
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO autopilot_status (library_id, cycle_id, status_json, updated_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(library_id) DO UPDATE SET
             cycle_id = excluded.cycle_id, status_json = excluded.status_json, updated_at = excluded.updated_at`,
		commit.LibraryID, commit.Cycle.CycleID, string(commit.StatusJSON), now,
	); err != nil {
		return fmt.Errorf("write status: %w", err)
	}

	if err := insertCycle(ctx, tx, commit.LibraryID, commit.Cycle); err != nil {
		return err
	}
	if commit.HistoryLimit > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM cycle_history WHERE library_id = ? AND id NOT IN (
                 SELECT id FROM cycle_history WHERE library_id = ? ORDER BY id DESC LIMIT ?
             )`,
			commit.LibraryID, commit.LibraryID, commit.HistoryLimit,
		); err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
	}

	if err := replaceLedger(ctx, tx, commit.LibraryID, commit.Ledger); err != nil {
		return err
	}

	for _, item := range commit.Reviews {
		if err := enqueueReview(ctx, tx, commit.LibraryID, commit.Cycle.CycleID, item, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cycle: %w", err)
	}
	return nil
}

func insertCycle(ctx context.Context, tx *sql.Tx, libraryID string, record CycleRecord) error {
	flags, err := json.Marshal(nonNilStrings(record.Flags))
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO cycle_history (
            library_id, cycle_id, mode, outcome, started_at, finished_at,
            before_score, after_score, rooms_touched, changes_applied, changes_blocked,
            flags_json, report_path
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		libraryID,
		record.CycleID,
		record.Mode,
		record.Outcome,
		formatTime(record.StartedAt),
		formatTime(record.FinishedAt),
		record.BeforeScore,
		record.AfterScore,
		record.RoomsTouched,
		record.ChangesApplied,
		record.ChangesBlocked,
		string(flags),
		nullableString(record.ReportPath),
	)
	if err != nil {
		return fmt.Errorf("insert cycle %s: %w", record.CycleID, err)
	}
	return nil
}

func replaceLedger(ctx context.Context, tx *sql.Tx, libraryID string, l ledger.Ledger) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_entries WHERE library_id = ?`, libraryID); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ledger_entries (
            library_id, filename, room_id, source, generated_at,
            last_verified, last_fixed, last_regenerated, confidence, hash, operation_id
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ledger insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range l.Entries() {
		if _, err := stmt.ExecContext(ctx,
			libraryID,
			entry.Filename,
			entry.RoomID,
			entry.Source.String(),
			formatTime(entry.GeneratedAt),
			nullableTime(entry.LastVerified),
			nullableTime(entry.LastFixed),
			nullableTime(entry.LastRegenerated),
			entry.ConfidenceScore,
			nullableString(entry.Hash),
			nullableString(entry.OperationID),
		); err != nil {
			return fmt.Errorf("insert ledger entry %s: %w", entry.Filename, err)
		}
	}
	return nil
}

// enqueueReview inserts a pending review. An item already queued under the
// same operation id keeps its status; a pending one is refreshed.
func enqueueReview(ctx context.Context, tx *sql.Tx, libraryID, cycleID string, item ReviewItem, now string) error {
	opJSON, err := json.Marshal(item.Operation)
	if err != nil {
		return fmt.Errorf("marshal operation: %w", err)
	}
	rules, err := json.Marshal(nonNilStrings(item.Rules))
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}
	op := item.Operation
	_, err = tx.ExecContext(ctx,
		`INSERT INTO review_queue (
            library_id, operation_id, cycle_id, room_id, operation_type, source, target,
            confidence, rules_json, reason, operation_json, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(library_id, operation_id) DO UPDATE SET
            cycle_id = excluded.cycle_id, rules_json = excluded.rules_json,
            reason = excluded.reason, updated_at = excluded.updated_at
        WHERE review_queue.status = 'pending'`,
		libraryID,
		op.ID,
		cycleID,
		nullableString(op.RoomID),
		op.Type.String(),
		nullableString(op.Source),
		nullableString(op.Target),
		op.Confidence,
		string(rules),
		nullableString(item.Reason),
		string(opJSON),
		ReviewPending,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("enqueue review %s: %w", op.ID, err)
	}
	return nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
