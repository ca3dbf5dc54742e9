// Package autopilot runs the consistency cycle: scan, plan, fill, attach,
// re-score, govern, and report.
//
// The Orchestrator is pure: it turns a snapshot into operations, decisions,
// a categorized Changeset, an updated ledger value, and a Status record
// without touching disk. The Runner owns the edges. It serializes cycles
// per library with a file lock, tees logs into a per-cycle file, loads the
// snapshot, writes report artifacts atomically, and commits the cycle to the
// store in one transaction.
package autopilot
