package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// LoadStatus returns the encoded status document of the library's last cycle.
func (s *Store) LoadStatus(ctx context.Context, libraryID string) ([]byte, error) {
	ctx = ensureContext(ctx)
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT status_json FROM autopilot_status WHERE library_id = ?`, libraryID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("status for library %q: %w", libraryID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load status: %w", err)
	}
	return []byte(raw), nil
}

const cycleColumns = "cycle_id, library_id, mode, outcome, started_at, finished_at, before_score, after_score, rooms_touched, changes_applied, changes_blocked, flags_json, report_path"

// ListHistory returns the library's cycle records, oldest first.
func (s *Store) ListHistory(ctx context.Context, libraryID string) ([]CycleRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cycleColumns+` FROM cycle_history WHERE library_id = ? ORDER BY id`, libraryID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	records := []CycleRecord{}
	for rows.Next() {
		record, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanCycle(scanner interface{ Scan(dest ...any) error }) (CycleRecord, error) {
	var (
		record      CycleRecord
		startedRaw  string
		finishedRaw string
		flagsRaw    sql.NullString
		reportPath  sql.NullString
	)
	if err := scanner.Scan(
		&record.CycleID,
		&record.LibraryID,
		&record.Mode,
		&record.Outcome,
		&startedRaw,
		&finishedRaw,
		&record.BeforeScore,
		&record.AfterScore,
		&record.RoomsTouched,
		&record.ChangesApplied,
		&record.ChangesBlocked,
		&flagsRaw,
		&reportPath,
	); err != nil {
		return CycleRecord{}, fmt.Errorf("scan cycle: %w", err)
	}
	if t, err := parseTimeString(startedRaw); err == nil {
		record.StartedAt = t
	}
	if t, err := parseTimeString(finishedRaw); err == nil {
		record.FinishedAt = t
	}
	record.Flags = []string{}
	if flagsRaw.Valid && flagsRaw.String != "" {
		if err := json.Unmarshal([]byte(flagsRaw.String), &record.Flags); err != nil {
			return CycleRecord{}, fmt.Errorf("decode flags for cycle %s: %w", record.CycleID, err)
		}
	}
	record.ReportPath = reportPath.String
	return record, nil
}
