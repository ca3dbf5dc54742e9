package autopilot

import (
	"time"

	"audiopilot/internal/governance"
	"audiopilot/internal/store"
)

// CycleRecord converts a status into its history row.
func CycleRecord(st Status, startedAt, finishedAt time.Time) store.CycleRecord {
	return store.CycleRecord{
		CycleID:        st.CycleID,
		LibraryID:      st.LibraryID,
		Mode:           st.Mode.String(),
		Outcome:        st.Outcome.String(),
		StartedAt:      startedAt,
		FinishedAt:     finishedAt,
		BeforeScore:    st.BeforeIntegrity.AverageScore,
		AfterScore:     st.AfterIntegrity.AverageScore,
		RoomsTouched:   st.RoomsTouched,
		ChangesApplied: st.ChangesApplied,
		ChangesBlocked: st.ChangesBlocked,
		Flags:          st.GovernanceFlags,
		ReportPath:     st.LastReportPath,
	}
}

// HistoryRecords converts stored rows, oldest first. Rows with an
// unrecognized mode or outcome keep the zero value.
func HistoryRecords(rows []store.CycleRecord) []HistoryRecord {
	out := make([]HistoryRecord, 0, len(rows))
	for _, row := range rows {
		rec := HistoryRecord{
			CycleID:        row.CycleID,
			RunAt:          row.StartedAt,
			BeforeScore:    row.BeforeScore,
			AfterScore:     row.AfterScore,
			RoomsTouched:   row.RoomsTouched,
			ChangesApplied: row.ChangesApplied,
			ChangesBlocked: row.ChangesBlocked,
			Flags:          row.Flags,
		}
		if mode, err := ParseMode(row.Mode); err == nil {
			rec.Mode = mode
		}
		_ = rec.Outcome.UnmarshalText([]byte(row.Outcome))
		out = append(out, rec)
	}
	return out
}

// ReviewItems turns requires-review decisions into queue entries.
func ReviewItems(libraryID, cycleID string, decisions []governance.Decision) []store.ReviewItem {
	items := make([]store.ReviewItem, 0, len(decisions))
	for _, d := range decisions {
		items = append(items, store.ReviewItem{
			LibraryID: libraryID,
			CycleID:   cycleID,
			Operation: d.Operation,
			Rules:     d.Rules,
			Reason:    d.Reason,
			Status:    store.ReviewPending,
		})
	}
	return items
}
