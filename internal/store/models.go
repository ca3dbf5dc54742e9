package store

import (
	"fmt"
	"strings"
	"time"

	"audiopilot/internal/ledger"
	"audiopilot/internal/repair"
)

// CycleRecord is one row of the cycle history.
type CycleRecord struct {
	CycleID        string    `json:"cycleId"`
	LibraryID      string    `json:"libraryId"`
	Mode           string    `json:"mode"`
	Outcome        string    `json:"outcome"`
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
	BeforeScore    int       `json:"beforeScore"`
	AfterScore     int       `json:"afterScore"`
	RoomsTouched   int       `json:"roomsTouched"`
	ChangesApplied int       `json:"changesApplied"`
	ChangesBlocked int       `json:"changesBlocked"`
	Flags          []string  `json:"flags"`
	ReportPath     string    `json:"reportPath,omitempty"`
}

// ReviewStatus is the state of a queued review.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ParseReviewStatus converts user input into a ReviewStatus.
func ParseReviewStatus(value string) (ReviewStatus, error) {
	switch ReviewStatus(strings.ToLower(strings.TrimSpace(value))) {
	case ReviewPending:
		return ReviewPending, nil
	case ReviewApproved:
		return ReviewApproved, nil
	case ReviewRejected:
		return ReviewRejected, nil
	default:
		return "", fmt.Errorf("unknown review status %q", value)
	}
}

// ReviewItem is an operation waiting for a human decision.
type ReviewItem struct {
	LibraryID string           `json:"libraryId"`
	CycleID   string           `json:"cycleId"`
	Operation repair.Operation `json:"operation"`
	Rules     []string         `json:"rules"`
	Reason    string           `json:"reason"`
	Status    ReviewStatus     `json:"status"`
	Note      string           `json:"note,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Commit is everything a finished cycle persists.
type Commit struct {
	LibraryID string
	Cycle     CycleRecord
	// StatusJSON is the encoded status document for the library pointer.
	StatusJSON   []byte
	HistoryLimit int
	// Ledger replaces the library's ledger rows.
	Ledger  ledger.Ledger
	Reviews []ReviewItem
}

// DatabaseHealth captures diagnostic information about the state database.
type DatabaseHealth struct {
	DBPath           string   `json:"dbPath"`
	DatabaseExists   bool     `json:"databaseExists"`
	DatabaseReadable bool     `json:"databaseReadable"`
	SchemaVersion    int      `json:"schemaVersion"`
	MissingTables    []string `json:"missingTables,omitempty"`
	IntegrityCheck   bool     `json:"integrityCheck"`
	Error            string   `json:"error,omitempty"`
}
