package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"audiopilot/internal/ledger"
)

// LoadLedger reads the library's ledger rows into a ledger value using the
// given clock.
func (s *Store) LoadLedger(ctx context.Context, libraryID string, now func() time.Time) (ledger.Ledger, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT filename, room_id, source, generated_at, last_verified, last_fixed,
                last_regenerated, confidence, hash, operation_id
         FROM ledger_entries WHERE library_id = ? ORDER BY filename`, libraryID)
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var (
			entry        ledger.Entry
			sourceRaw    string
			generatedRaw string
			verified     sql.NullString
			fixed        sql.NullString
			regenerated  sql.NullString
			hash         sql.NullString
			operationID  sql.NullString
		)
		if err := rows.Scan(
			&entry.Filename,
			&entry.RoomID,
			&sourceRaw,
			&generatedRaw,
			&verified,
			&fixed,
			&regenerated,
			&entry.ConfidenceScore,
			&hash,
			&operationID,
		); err != nil {
			return ledger.Ledger{}, fmt.Errorf("scan ledger entry: %w", err)
		}
		source, err := ledger.ParseSource(sourceRaw)
		if err != nil {
			return ledger.Ledger{}, fmt.Errorf("ledger entry %s: %w", entry.Filename, err)
		}
		entry.Source = source
		if t, err := parseTimeString(generatedRaw); err == nil {
			entry.GeneratedAt = t
		}
		entry.LastVerified = parseNullableTime(verified)
		entry.LastFixed = parseNullableTime(fixed)
		entry.LastRegenerated = parseNullableTime(regenerated)
		entry.Hash = hash.String
		entry.OperationID = operationID.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return ledger.Ledger{}, fmt.Errorf("iterate ledger: %w", err)
	}
	return ledger.New(now, entries...), nil
}

// RemoveLedgerEntry deletes one ledger row.
func (s *Store) RemoveLedgerEntry(ctx context.Context, libraryID, filename string) error {
	res, err := s.execWithRetry(ctx,
		`DELETE FROM ledger_entries WHERE library_id = ? AND filename = ?`, libraryID, filename)
	if err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("ledger entry %q: %w", filename, ErrNotFound)
	}
	return nil
}
