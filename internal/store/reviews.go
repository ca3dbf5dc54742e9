package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"audiopilot/internal/services"
)

const reviewColumns = "library_id, cycle_id, operation_json, rules_json, reason, status, note, created_at, updated_at"

// ListReviews returns review items for the library, optionally filtered by
// status, oldest first.
func (s *Store) ListReviews(ctx context.Context, libraryID string, statuses ...ReviewStatus) ([]ReviewItem, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + reviewColumns + ` FROM review_queue WHERE library_id = ?`
	args := []any{libraryID}
	if len(statuses) > 0 {
		query += ` AND status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY created_at, operation_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	items := []ReviewItem{}
	for rows.Next() {
		item, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetReview fetches one review item by operation id.
func (s *Store) GetReview(ctx context.Context, libraryID, operationID string) (ReviewItem, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM review_queue WHERE library_id = ? AND operation_id = ?`,
		libraryID, operationID)
	item, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ReviewItem{}, fmt.Errorf("review %q: %w", operationID, ErrNotFound)
	}
	if err != nil {
		return ReviewItem{}, err
	}
	return item, nil
}

// ResolveReview moves a pending review to approved or rejected.
func (s *Store) ResolveReview(ctx context.Context, libraryID, operationID string, status ReviewStatus, note string) (ReviewItem, error) {
	if status != ReviewApproved && status != ReviewRejected {
		return ReviewItem{}, services.Wrap(services.ErrValidation, "review", "resolve", fmt.Sprintf("cannot resolve to %q", status), nil)
	}
	item, err := s.GetReview(ctx, libraryID, operationID)
	if err != nil {
		return ReviewItem{}, err
	}
	if item.Status != ReviewPending {
		return ReviewItem{}, services.Wrap(services.ErrConflict, "review", "resolve",
			fmt.Sprintf("review %s is already %s", operationID, item.Status), nil)
	}
	now := time.Now().UTC()
	if _, err := s.execWithRetry(ctx,
		`UPDATE review_queue SET status = ?, note = ?, updated_at = ?
         WHERE library_id = ? AND operation_id = ? AND status = ?`,
		status, nullableString(note), formatTime(now), libraryID, operationID, ReviewPending,
	); err != nil {
		return ReviewItem{}, fmt.Errorf("resolve review: %w", err)
	}
	item.Status = status
	item.Note = note
	item.UpdatedAt = now
	return item, nil
}

// ReviewCounts returns the number of review items per status.
func (s *Store) ReviewCounts(ctx context.Context, libraryID string) (map[ReviewStatus]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(1) FROM review_queue WHERE library_id = ? GROUP BY status`, libraryID)
	if err != nil {
		return nil, fmt.Errorf("review counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[ReviewStatus]int)
	for rows.Next() {
		var status ReviewStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanReview(scanner interface{ Scan(dest ...any) error }) (ReviewItem, error) {
	var (
		item       ReviewItem
		opRaw      string
		rulesRaw   sql.NullString
		reason     sql.NullString
		statusRaw  string
		note       sql.NullString
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&item.LibraryID,
		&item.CycleID,
		&opRaw,
		&rulesRaw,
		&reason,
		&statusRaw,
		&note,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ReviewItem{}, err
		}
		return ReviewItem{}, fmt.Errorf("scan review: %w", err)
	}
	if err := json.Unmarshal([]byte(opRaw), &item.Operation); err != nil {
		return ReviewItem{}, fmt.Errorf("decode review operation: %w", err)
	}
	item.Rules = []string{}
	if rulesRaw.Valid && rulesRaw.String != "" {
		if err := json.Unmarshal([]byte(rulesRaw.String), &item.Rules); err != nil {
			return ReviewItem{}, fmt.Errorf("decode review rules: %w", err)
		}
	}
	item.Reason = reason.String
	item.Status = ReviewStatus(statusRaw)
	item.Note = note.String
	if t, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = t
	}
	if t, err := parseTimeString(updatedRaw); err == nil {
		item.UpdatedAt = t
	}
	return item, nil
}
